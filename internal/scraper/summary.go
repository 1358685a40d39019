package scraper

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	companySentences  = 5
	fallbackSentences = 7
	minSummaryRunes   = 100
	prefixRunes       = 400
	maxSummaryRunes   = 512
	ellipsis          = "..."
)

// Summarize builds a short extract of text centred on company.
func Summarize(text, company string) string {
	sentences := SplitSentences(text)

	lowerCompany := strings.ToLower(company)
	var mentions []string
	for _, s := range sentences {
		if strings.Contains(strings.ToLower(s), lowerCompany) {
			mentions = append(mentions, s)
		}
	}

	var picked []string
	if len(mentions) >= companySentences {
		picked = mentions[:companySentences]
	} else {
		picked = sentences[:min(fallbackSentences, len(sentences))]
	}
	summary := strings.Join(picked, " ")

	textRunes := utf8.RuneCountInString(text)
	if utf8.RuneCountInString(summary) < minSummaryRunes && textRunes > minSummaryRunes {
		summary = text
		if textRunes > prefixRunes {
			summary = truncateRunes(text, prefixRunes) + ellipsis
		}
	}

	if utf8.RuneCountInString(summary) > maxSummaryRunes {
		summary = truncateRunes(summary, maxSummaryRunes-len(ellipsis)) + ellipsis
	}
	return summary
}

// SplitSentences cuts text after '.', '!' or '?' when followed by
// whitespace. The whitespace run is dropped.
func SplitSentences(text string) []string {
	var out []string
	runes := []rune(text)
	start := 0
	for i := 0; i < len(runes)-1; i++ {
		if !isTerminal(runes[i]) || !unicode.IsSpace(runes[i+1]) {
			continue
		}
		out = append(out, string(runes[start:i+1]))
		j := i + 1
		for j < len(runes) && unicode.IsSpace(runes[j]) {
			j++
		}
		start = j
		i = j - 1
	}
	if start < len(runes) {
		out = append(out, string(runes[start:]))
	}
	return out
}

func isTerminal(r rune) bool {
	return r == '.' || r == '!' || r == '?'
}

func truncateRunes(s string, n int) string {
	if n <= 0 {
		return ""
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}
