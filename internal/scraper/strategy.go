package scraper

import "strings"

// Strategy is one content-container heuristic. Strategies are tried in
// order and the first one that finds a non-empty container wins; new site
// patterns are added by extending the chain.
type Strategy struct {
	Name     string
	Selector string
}

var contentNames = []string{"article-content", "article-body", "story-content", "post-content", "entry-content"}

// DefaultStrategies: semantic <article>, known content classes, known
// content ids, then <main>.
var DefaultStrategies = []Strategy{
	{Name: "article", Selector: "article"},
	{Name: "content-class", Selector: selectorList("div.", contentNames)},
	{Name: "content-id", Selector: selectorList("div#", contentNames)},
	{Name: "main", Selector: "main"},
}

func selectorList(prefix string, names []string) string {
	parts := make([]string, len(names))
	for i, n := range names {
		parts[i] = prefix + n
	}
	return strings.Join(parts, ", ")
}
