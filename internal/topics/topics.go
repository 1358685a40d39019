// Package topics assigns coarse topic labels to an article summary from
// keyword and named-entity matches.
package topics

import (
	"context"
	"strings"

	"github.com/deusflow/newspulse/internal/logger"
	"github.com/deusflow/newspulse/internal/metrics"
)

// GeneralNews is returned when nothing else matches.
const GeneralNews = "General News"

// Entity is a typed span returned by a Recognizer.
type Entity struct {
	Text string `json:"text"`
	Type string `json:"type"`
}

// Recognizer is an external named-entity recogniser. Implementations must
// be safe for concurrent use once constructed.
type Recognizer interface {
	Name() string
	Entities(ctx context.Context, text string) ([]Entity, error)
}

// Entity types that take part in topic matching.
var relevantTypes = map[string]bool{
	"ORG":     true,
	"PRODUCT": true,
	"EVENT":   true,
	"LAW":     true,
	"GPE":     true,
}

// Topic is one row of the topic table.
type Topic struct {
	Name     string   `yaml:"name"`
	Keywords []string `yaml:"keywords"`
}

// DefaultTable is the built-in topic table.
var DefaultTable = []Topic{
	{Name: "Technology", Keywords: []string{"software", "hardware", "tech", "microsoft", "outlook", "infrastructure", "update", "code"}},
	{Name: "Outages", Keywords: []string{"outage", "downtime", "service disruption", "blocked", "access", "restore"}},
	{Name: "Business", Keywords: []string{"company", "business", "corporate", "deal", "partnership"}},
	{Name: "Financial", Keywords: []string{"revenue", "profit", "sales", "earnings", "stock"}},
	{Name: "Legal", Keywords: []string{"lawsuit", "legal", "court", "dispute", "regulation"}},
	{Name: "Innovation", Keywords: []string{"innovation", "research", "development", "new product"}},
	{Name: "Electric Vehicles", Keywords: []string{"electric vehicle", "ev", "battery", "tesla model", "charging"}},
	{Name: "Autonomous Vehicles", Keywords: []string{"autonomous", "self-driving", "driverless", "autopilot"}},
}

type Tagger struct {
	table      []Topic
	index      *keywordIndex
	recognizer Recognizer
}

// NewTagger builds a tagger over table. A nil recognizer disables the
// entity path.
func NewTagger(table []Topic, recognizer Recognizer) *Tagger {
	if len(table) == 0 {
		table = DefaultTable
	}
	return &Tagger{
		table:      table,
		index:      newKeywordIndex(table),
		recognizer: recognizer,
	}
}

// Tag returns the matched topic names in table order, or GeneralNews.
func (t *Tagger) Tag(ctx context.Context, summary string) []string {
	if summary == "" {
		return []string{GeneralNews}
	}

	lower := strings.ToLower(summary)
	matched := t.index.topics(lower)

	for _, ent := range t.entities(ctx, summary) {
		for ti, hit := range t.index.topics(ent) {
			matched[ti] = matched[ti] || hit
		}
	}

	var out []string
	for i, topic := range t.table {
		if matched[i] {
			out = append(out, topic.Name)
		}
	}
	if len(out) == 0 {
		return []string{GeneralNews}
	}
	return out
}

// entities returns the lowercased texts of relevant entities. Recogniser
// failures are logged and leave only the keyword path.
func (t *Tagger) entities(ctx context.Context, summary string) []string {
	if t.recognizer == nil {
		return nil
	}
	ents, err := t.recognizer.Entities(ctx, summary)
	metrics.Global.RecordModelCall(t.recognizer.Name(), err)
	if err != nil {
		logger.Warn("Entity recognition failed, using keywords only", "backend", t.recognizer.Name(), "error", err)
		return nil
	}

	var out []string
	for _, e := range ents {
		if relevantTypes[strings.ToUpper(e.Type)] {
			if text := strings.ToLower(strings.TrimSpace(e.Text)); text != "" {
				out = append(out, text)
			}
		}
	}
	return out
}
