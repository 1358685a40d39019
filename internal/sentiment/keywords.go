package sentiment

import (
	ahocorasick "github.com/cloudflare/ahocorasick"
)

// keywordSet finds dictionary words in lowercased text in a single pass.
type keywordSet struct {
	words   []string
	matcher *ahocorasick.Matcher
}

func newKeywordSet(words []string) *keywordSet {
	return &keywordSet{
		words:   words,
		matcher: ahocorasick.NewStringMatcher(words),
	}
}

// matches returns the indexes of the words found in text, each once.
func (k *keywordSet) matches(text string) []int {
	if len(k.words) == 0 || text == "" {
		return nil
	}
	return k.matcher.MatchThreadSafe([]byte(text))
}

func (k *keywordSet) any(text string) bool {
	return len(k.matches(text)) > 0
}
