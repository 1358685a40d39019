package topics

import (
	"strings"

	ahocorasick "github.com/cloudflare/ahocorasick"
)

// keywordIndex matches every keyword of the table in one pass and maps the
// hits back to topic rows. A keyword shared by several topics is stored once.
type keywordIndex struct {
	matcher *ahocorasick.Matcher
	owners  [][]int // keyword index -> topic rows
	rows    int
}

func newKeywordIndex(table []Topic) *keywordIndex {
	var words []string
	var owners [][]int
	seen := make(map[string]int)
	for row, topic := range table {
		for _, kw := range topic.Keywords {
			kw = strings.ToLower(strings.TrimSpace(kw))
			if kw == "" {
				continue
			}
			i, ok := seen[kw]
			if !ok {
				i = len(words)
				seen[kw] = i
				words = append(words, kw)
				owners = append(owners, nil)
			}
			owners[i] = append(owners[i], row)
		}
	}
	return &keywordIndex{
		matcher: ahocorasick.NewStringMatcher(words),
		owners:  owners,
		rows:    len(table),
	}
}

// topics reports, per table row, whether any of its keywords occurs in the
// lowercased text.
func (k *keywordIndex) topics(lower string) []bool {
	hit := make([]bool, k.rows)
	if len(k.owners) == 0 || lower == "" {
		return hit
	}
	for _, i := range k.matcher.MatchThreadSafe([]byte(lower)) {
		for _, row := range k.owners[i] {
			hit[row] = true
		}
	}
	return hit
}
