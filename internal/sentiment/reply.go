package sentiment

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Prompt asks a chat model for a binary sentiment verdict as JSON.
func Prompt(text string) string {
	return `Classify the overall sentiment of the following news text toward the company it discusses.
Answer with a single JSON object and nothing else:
{"label": "positive" | "negative", "confidence": <number between 0 and 1>}

Text:
` + text
}

// ParseReply decodes a model reply produced from Prompt. Markdown code
// fences around the JSON are tolerated and confidence is clamped to [0,1].
func ParseReply(reply string) (Prediction, error) {
	var pred Prediction
	if err := json.Unmarshal([]byte(StripFences(reply)), &pred); err != nil {
		return Prediction{}, fmt.Errorf("decode sentiment reply: %w", err)
	}
	pred.Label = strings.ToLower(strings.TrimSpace(pred.Label))
	pred.Confidence = min(max(pred.Confidence, 0), 1)
	return pred, nil
}

// StripFences removes a surrounding ``` or ```json fence.
func StripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimPrefix(s, "json")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
