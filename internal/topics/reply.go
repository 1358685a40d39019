package topics

import (
	"encoding/json"
	"fmt"

	"github.com/deusflow/newspulse/internal/sentiment"
)

// Prompt asks a chat model for named entities as JSON.
func Prompt(text string) string {
	return `Extract the named entities from the following news text.
Use these types only: ORG, PRODUCT, EVENT, LAW, GPE, PERSON, OTHER.
Answer with a single JSON object and nothing else:
{"entities": [{"text": "<entity as written>", "type": "<TYPE>"}]}

Text:
` + text
}

type entityReply struct {
	Entities []Entity `json:"entities"`
}

// ParseReply decodes a model reply produced from Prompt.
func ParseReply(reply string) ([]Entity, error) {
	var r entityReply
	if err := json.Unmarshal([]byte(sentiment.StripFences(reply)), &r); err != nil {
		return nil, fmt.Errorf("decode entity reply: %w", err)
	}
	return r.Entities, nil
}
