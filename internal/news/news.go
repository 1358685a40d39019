// Package news runs one company analysis: search, extract, enrich and
// aggregate, strictly one candidate at a time.
package news

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/deusflow/newspulse/internal/logger"
	"github.com/deusflow/newspulse/internal/metrics"
	"github.com/deusflow/newspulse/internal/report"
	"github.com/deusflow/newspulse/internal/scraper"
	"github.com/deusflow/newspulse/internal/search"
	"github.com/deusflow/newspulse/internal/sentiment"
)

const (
	DefaultArticles = 10
	MinArticles     = 1
	MaxArticles     = 20
)

var (
	// ErrInvalidInput is returned before any network work is done.
	ErrInvalidInput = errors.New("invalid input")
	// ErrNoResults means no candidate produced a valid article.
	ErrNoResults = errors.New("no valid news articles found")
)

// Article is one fully enriched news item. It belongs to a single run.
type Article struct {
	Title     string              `json:"title"`
	URL       string              `json:"url"`
	Summary   string              `json:"summary"`
	FullText  string              `json:"-"`
	Sentiment sentiment.Sentiment `json:"sentiment"`
	Topics    []string            `json:"topics"`
}

// Analysis is the result of one run.
type Analysis struct {
	RunID    string
	Company  string
	Articles []Article
	Report   report.Report
}

type Searcher interface {
	Search(ctx context.Context, company string, limit int) ([]search.Candidate, error)
}

type Extractor interface {
	Extract(ctx context.Context, url, company string) scraper.Result
}

type Tagger interface {
	Tag(ctx context.Context, summary string) []string
}

type Classifier interface {
	Classify(ctx context.Context, text string) sentiment.Sentiment
}

// Throttle paces extraction requests.
type Throttle interface {
	Wait(ctx context.Context) error
}

type noThrottle struct{}

func (noThrottle) Wait(ctx context.Context) error { return ctx.Err() }

// Pipeline holds the long-lived collaborators. The collaborators are shared
// read-only; every Analyze call owns its own article set.
type Pipeline struct {
	searcher   Searcher
	extractor  Extractor
	tagger     Tagger
	classifier Classifier
	throttle   Throttle
}

func NewPipeline(s Searcher, e Extractor, t Tagger, c Classifier, th Throttle) *Pipeline {
	if th == nil {
		th = noThrottle{}
	}
	return &Pipeline{searcher: s, extractor: e, tagger: t, classifier: c, throttle: th}
}

// ValidateRequest checks a request before the pipeline runs.
func ValidateRequest(company string, n int) error {
	if strings.TrimSpace(company) == "" {
		return fmt.Errorf("%w: company name is required", ErrInvalidInput)
	}
	if n < MinArticles || n > MaxArticles {
		return fmt.Errorf("%w: number of articles must be between %d and %d", ErrInvalidInput, MinArticles, MaxArticles)
	}
	return nil
}

// Analyze searches for 2n candidates and processes them in order until n
// valid articles are collected or the candidates run out.
func (p *Pipeline) Analyze(ctx context.Context, company string, n int) (*Analysis, error) {
	if err := ValidateRequest(company, n); err != nil {
		return nil, err
	}
	company = strings.TrimSpace(company)

	start := time.Now()
	runID := uuid.NewString()
	log := logger.With("run_id", runID, "company", company)

	articles, err := p.collect(ctx, log, company, n)
	if err != nil {
		outcome := "no_results"
		if !errors.Is(err, ErrNoResults) {
			outcome = "error"
			metrics.Global.SetError(err.Error())
		}
		metrics.Global.RecordAnalysis(time.Since(start), 0, outcome)
		return nil, err
	}

	reportArticles := make([]report.Article, len(articles))
	for i, a := range articles {
		reportArticles[i] = report.Article{Title: a.Title, Summary: a.Summary, Topics: a.Topics, Sentiment: a.Sentiment}
	}
	rep := report.Build(ctx, company, reportArticles, p.classifier)

	metrics.Global.RecordAnalysis(time.Since(start), len(articles), "ok")
	log.Info("Analysis complete", "articles", len(articles), "duration", time.Since(start).Round(time.Millisecond))

	return &Analysis{
		RunID:    runID,
		Company:  company,
		Articles: articles,
		Report:   rep,
	}, nil
}

func (p *Pipeline) collect(ctx context.Context, log *slog.Logger, company string, n int) ([]Article, error) {
	candidates, err := p.searcher.Search(ctx, company, 2*n)
	if err != nil {
		log.Warn("Search failed", "error", err)
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}
	if len(candidates) == 0 {
		log.Warn("No news articles found")
		return nil, ErrNoResults
	}
	log.Info("Processing candidates", "candidates", len(candidates), "wanted", n)

	articles := make([]Article, 0, n)
	for i, c := range candidates {
		if len(articles) >= n {
			break
		}
		if err := p.throttle.Wait(ctx); err != nil {
			return nil, err
		}

		res := p.extractor.Extract(ctx, c.URL, company)
		if !res.Valid {
			log.Debug("Skipping candidate", "index", i, "url", c.URL, "title", res.Title, "reason", res.Summary)
			continue
		}

		article := Article{
			Title:    res.Title,
			URL:      c.URL,
			Summary:  res.Summary,
			FullText: res.FullText,
			Topics:   p.tagger.Tag(ctx, res.Summary),
		}
		article.Sentiment = p.classifier.Classify(ctx, res.Summary)
		articles = append(articles, article)
		log.Debug("Article added", "index", i, "url", c.URL, "label", article.Sentiment.Label, "topics", article.Topics)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(articles) == 0 {
		log.Warn("No valid news articles found", "candidates", len(candidates))
		return nil, ErrNoResults
	}
	return articles, nil
}
