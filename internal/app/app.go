// Package app builds the long-lived collaborators from configuration once
// and exposes the two entry points: a single analysis and the HTTP server.
package app

import (
	"context"
	"fmt"
	"net/http"

	"github.com/deusflow/newspulse/internal/api"
	"github.com/deusflow/newspulse/internal/cache"
	"github.com/deusflow/newspulse/internal/config"
	"github.com/deusflow/newspulse/internal/gemini"
	"github.com/deusflow/newspulse/internal/gpt"
	"github.com/deusflow/newspulse/internal/logger"
	"github.com/deusflow/newspulse/internal/metrics"
	"github.com/deusflow/newspulse/internal/news"
	"github.com/deusflow/newspulse/internal/ratelimit"
	"github.com/deusflow/newspulse/internal/retry"
	"github.com/deusflow/newspulse/internal/rss"
	"github.com/deusflow/newspulse/internal/scraper"
	"github.com/deusflow/newspulse/internal/search"
	"github.com/deusflow/newspulse/internal/sentiment"
	"github.com/deusflow/newspulse/internal/topics"
)

// App owns the models and the pipeline. Models are read-only after New and
// shared by every analysis.
type App struct {
	cfg      *config.Config
	budget   *ratelimit.Budget
	cache    *cache.Cache
	pipeline *news.Pipeline
	closers  []func()
}

func New(ctx context.Context, cfg *config.Config) (*App, error) {
	a := &App{
		cfg:    cfg,
		budget: ratelimit.NewBudget(cfg.MaxModelRequests),
		cache:  cache.New(cfg.ModelCacheTTL),
	}

	model, recognizer, err := a.buildModels(ctx)
	if err != nil {
		a.Close()
		return nil, err
	}

	table, err := topics.LoadFile(cfg.TopicsConfigPath)
	if err != nil {
		a.Close()
		return nil, err
	}

	httpClient := &http.Client{Timeout: cfg.RequestTimeout}

	searchOpts := []search.Option{search.WithHTTPClient(httpClient)}
	if cfg.SearchBaseURL != "" {
		searchOpts = append(searchOpts, search.WithBaseURL(cfg.SearchBaseURL))
	}
	if cfg.SearchRSSFallback {
		searchOpts = append(searchOpts, search.WithFeed(rss.NewClient(cfg.SearchRSSURL, httpClient, search.UserAgent)))
	}

	classifier := sentiment.NewClassifier(model, sentiment.WithOverrides(cfg.KeywordOverrides))

	a.pipeline = news.NewPipeline(
		search.NewClient(searchOpts...),
		scraper.NewExtractor(scraper.WithHTTPClient(httpClient), scraper.WithMinTextRunes(cfg.MinTextRunes)),
		topics.NewTagger(table, recognizer),
		classifier,
		ratelimit.NewThrottle(cfg.ThrottleMin, cfg.ThrottleMax, cfg.FetchRatePerSec),
	)

	logger.Info("Application ready",
		"model_backend", model.Name(),
		"ner_backend", recognizer.Name(),
		"topics", len(table),
		"model_budget", cfg.MaxModelRequests,
	)
	return a, nil
}

// buildModels creates each backend at most once.
func (a *App) buildModels(ctx context.Context) (sentiment.Model, topics.Recognizer, error) {
	rc := retry.RetryConfig{MaxAttempts: a.cfg.RetryAttempts, Delay: a.cfg.RetryDelay, Backoff: true}

	var gem *gemini.Client
	getGemini := func() (*gemini.Client, error) {
		if gem != nil {
			return gem, nil
		}
		c, err := gemini.NewClient(ctx, a.cfg.GeminiAPIKey,
			gemini.WithModel(a.cfg.GeminiModel), gemini.WithRetry(rc), gemini.WithBudget(a.budget), gemini.WithCache(a.cache))
		if err != nil {
			return nil, err
		}
		gem = c
		a.closers = append(a.closers, c.Close)
		return gem, nil
	}

	var oa *gpt.Client
	getOpenAI := func() *gpt.Client {
		if oa == nil {
			oa = gpt.NewClient(gpt.Options{
				APIKey: a.cfg.OpenAIAPIKey,
				Model:  a.cfg.OpenAIModel,
				Retry:  rc,
				Budget: a.budget,
				Cache:  a.cache,
			})
		}
		return oa
	}

	var model sentiment.Model
	switch a.cfg.ModelBackend {
	case config.BackendGemini:
		c, err := getGemini()
		if err != nil {
			return nil, nil, err
		}
		model = c
	case config.BackendOpenAI:
		model = getOpenAI()
	case config.BackendLexicon:
		model = sentiment.NewLexiconModel()
	default:
		return nil, nil, fmt.Errorf("unknown model backend %q", a.cfg.ModelBackend)
	}

	var recognizer topics.Recognizer
	switch a.cfg.NERBackend {
	case config.BackendGemini:
		c, err := getGemini()
		if err != nil {
			return nil, nil, err
		}
		recognizer = c
	case config.BackendOpenAI:
		recognizer = getOpenAI()
	case config.BackendHeuristic:
		recognizer = topics.HeuristicRecognizer{}
	default:
		return nil, nil, fmt.Errorf("unknown NER backend %q", a.cfg.NERBackend)
	}

	return model, recognizer, nil
}

// Analyze runs one analysis and returns the response document.
func (a *App) Analyze(ctx context.Context, company string, n int) (api.Document, error) {
	analysis, err := a.pipeline.Analyze(ctx, company, n)
	if err != nil {
		return api.Document{}, err
	}
	return api.NewDocument(analysis), nil
}

// Serve runs the HTTP API on addr until ctx is done.
func (a *App) Serve(ctx context.Context, addr string) error {
	router := api.NewRouter(api.NewHandler(a.pipeline, a.cfg.AnalysisTimeout), metrics.Global.Registry())
	return api.Serve(ctx, addr, router)
}

// Stats merges the run counters with the model budget.
func (a *App) Stats() map[string]interface{} {
	stats := metrics.Global.GetStats()
	stats["model_budget"] = a.budget.Stats()
	stats["model_cache"] = a.cache.Stats()
	return stats
}

func (a *App) Close() {
	for _, c := range a.closers {
		c()
	}
}
