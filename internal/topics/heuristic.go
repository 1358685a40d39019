package topics

import (
	"context"
	"strings"
	"unicode"
)

// stopwords never start an entity span even when capitalised.
var stopwords = map[string]bool{
	"the": true, "a": true, "an": true, "in": true, "on": true, "at": true,
	"and": true, "or": true, "but": true, "this": true, "that": true, "it": true,
	"its": true, "he": true, "she": true, "they": true, "we": true, "i": true,
	"for": true, "of": true, "to": true, "after": true, "with": true, "as": true,
}

// HeuristicRecognizer types runs of capitalised words as organisations.
// It is offline and deterministic and stands in for a real NER model.
type HeuristicRecognizer struct{}

func (HeuristicRecognizer) Name() string { return "heuristic" }

func (HeuristicRecognizer) Entities(_ context.Context, text string) ([]Entity, error) {
	var out []Entity
	var span []string
	seen := make(map[string]bool)

	flush := func() {
		if len(span) > 0 {
			name := strings.Join(span, " ")
			if !seen[name] {
				seen[name] = true
				out = append(out, Entity{Text: name, Type: "ORG"})
			}
		}
		span = span[:0]
	}

	for _, raw := range strings.Fields(text) {
		word := strings.TrimFunc(raw, notWordRune)
		trailing := raw[len(strings.TrimRightFunc(raw, notWordRune)):]

		if isCapitalised(word) && (len(span) > 0 || !stopwords[strings.ToLower(word)]) {
			span = append(span, word)
		} else {
			flush()
		}
		if strings.ContainsAny(trailing, ".,;:!?)") {
			flush()
		}
	}
	flush()
	return out, nil
}

func isCapitalised(word string) bool {
	for _, r := range word {
		return unicode.IsUpper(r)
	}
	return false
}

func notWordRune(r rune) bool {
	return !unicode.IsLetter(r) && !unicode.IsDigit(r)
}
