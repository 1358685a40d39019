// Package report aggregates enriched articles into a comparative summary.
package report

import (
	"context"
	"fmt"
	"strings"

	"github.com/deusflow/newspulse/internal/sentiment"
)

const titlePreviewRunes = 30

// Article is the part of an enriched article the report reads.
type Article struct {
	Title     string
	Summary   string
	Topics    []string
	Sentiment sentiment.Sentiment
}

// Scorer classifies the combined summaries for the verdict.
type Scorer interface {
	Classify(ctx context.Context, text string) sentiment.Sentiment
}

type Distribution struct {
	Positive int `json:"positive"`
	Negative int `json:"negative"`
	Neutral  int `json:"neutral"`
}

func (d Distribution) Total() int { return d.Positive + d.Negative + d.Neutral }

type Difference struct {
	Comparison string `json:"comparison"`
	Impact     string `json:"impact"`
}

type TopicOverlap struct {
	Common []string            `json:"common_topics"`
	Unique map[string][]string `json:"unique_topics"`
}

type Report struct {
	SentimentDistribution Distribution `json:"sentiment_distribution"`
	CoverageDifferences   []Difference `json:"coverage_differences"`
	TopicOverlap          TopicOverlap `json:"topic_overlap"`
	Verdict               string       `json:"-"`
}

// Build recomputes the whole report from articles. scorer is only called
// when there is at least one article.
func Build(ctx context.Context, company string, articles []Article, scorer Scorer) Report {
	dist := Distribute(articles)
	return Report{
		SentimentDistribution: dist,
		CoverageDifferences:   CompareCoverage(articles),
		TopicOverlap:          Overlap(articles),
		Verdict:               Verdict(ctx, company, articles, dist, scorer),
	}
}

// Distribute counts articles per sentiment label. Unknown labels count as
// neutral so the total always equals len(articles).
func Distribute(articles []Article) Distribution {
	var d Distribution
	for _, a := range articles {
		switch a.Sentiment.Label {
		case sentiment.Positive:
			d.Positive++
		case sentiment.Negative:
			d.Negative++
		default:
			d.Neutral++
		}
	}
	return d
}

// CompareCoverage emits one Difference per unordered pair i<j, i outer.
func CompareCoverage(articles []Article) []Difference {
	out := []Difference{}
	for i := 0; i < len(articles); i++ {
		for j := i + 1; j < len(articles); j++ {
			a, b := articles[i], articles[j]
			out = append(out, Difference{
				Comparison: fmt.Sprintf("Article %d (%s...) has %s sentiment on %s, while Article %d (%s...) has %s sentiment on %s.",
					i+1, preview(a.Title), label(a), topTopics(a), j+1, preview(b.Title), label(b), topTopics(b)),
				Impact: fmt.Sprintf("Article %d may %s, while Article %d may %s.",
					i+1, impact(a), j+1, impact(b)),
			})
		}
	}
	return out
}

// Overlap reports the topics shared by every article and, per article, the
// topics no other article has. An article whose topics are all shared
// reports its full set instead.
func Overlap(articles []Article) TopicOverlap {
	o := TopicOverlap{Common: []string{}, Unique: map[string][]string{}}
	if len(articles) == 0 {
		return o
	}

	sets := make([][]string, len(articles))
	counts := make(map[string]int)
	for i, a := range articles {
		sets[i] = dedup(a.Topics)
		for _, t := range sets[i] {
			counts[t]++
		}
	}

	for _, t := range sets[0] {
		if counts[t] == len(articles) {
			o.Common = append(o.Common, t)
		}
	}

	for i, set := range sets {
		var unique []string
		for _, t := range set {
			if counts[t] == 1 {
				unique = append(unique, t)
			}
		}
		if len(unique) == 0 {
			unique = set
		}
		o.Unique[ArticleKey(i)] = unique
	}
	return o
}

// ArticleKey names the i-th (0-based) article for display.
func ArticleKey(i int) string { return fmt.Sprintf("Article %d", i+1) }

// Verdict turns the distribution and the compound score of all summaries
// into a single narrative sentence.
func Verdict(ctx context.Context, company string, articles []Article, dist Distribution, scorer Scorer) string {
	if len(articles) == 0 {
		return fmt.Sprintf("No sufficient data to analyze %s's news coverage.", company)
	}
	total := dist.Total()
	if total == 0 {
		return fmt.Sprintf("%s's news coverage analysis inconclusive.", company)
	}

	posPct := float64(dist.Positive) / float64(total)
	negPct := float64(dist.Negative) / float64(total)

	summaries := make([]string, len(articles))
	for i, a := range articles {
		summaries[i] = a.Summary
	}
	compound := scorer.Classify(ctx, strings.Join(summaries, " ")).Compound

	msg := fmt.Sprintf("%s's news coverage: %d positive, %d negative, %d neutral articles. ",
		company, dist.Positive, dist.Negative, dist.Neutral)

	switch {
	case posPct > 0.6 && compound > 0.2:
		msg += "Strongly positive outlook suggests growth potential."
	case negPct > 0.6 && compound < -0.2:
		msg += "Strongly negative sentiment indicates challenges."
	case posPct > negPct && compound > 0:
		msg += "Generally favorable outlook with stability."
	case negPct > posPct && compound < 0:
		msg += "Caution advised due to challenges."
	default:
		msg += "Mixed outlook with no clear trend."
	}
	return msg
}

func label(a Article) string {
	if a.Sentiment.Label == "" {
		return sentiment.Neutral
	}
	return a.Sentiment.Label
}

func impact(a Article) string {
	if a.Sentiment.Label == sentiment.Positive {
		return "boost confidence"
	}
	return "raise concerns"
}

func topTopics(a Article) string {
	return strings.Join(a.Topics[:min(2, len(a.Topics))], ", ")
}

func preview(title string) string {
	r := []rune(title)
	if len(r) > titlePreviewRunes {
		r = r[:titlePreviewRunes]
	}
	return string(r)
}

func dedup(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}
