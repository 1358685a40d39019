// Package gemini backs the sentiment model and the entity recogniser with
// the Gemini API.
package gemini

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/deusflow/newspulse/internal/cache"
	"github.com/deusflow/newspulse/internal/logger"
	"github.com/deusflow/newspulse/internal/ratelimit"
	"github.com/deusflow/newspulse/internal/retry"
	"github.com/deusflow/newspulse/internal/sentiment"
	"github.com/deusflow/newspulse/internal/topics"
)

const (
	// Backend is the name used for budgets, metrics and logs.
	Backend = "gemini"

	DefaultModel = "gemini-1.5-flash"
)

type generateFunc func(ctx context.Context, prompt string) (string, error)

// Client implements sentiment.Model and topics.Recognizer. It is safe for
// concurrent use.
type Client struct {
	client   *genai.Client
	model    string
	retry    retry.RetryConfig
	budget   *ratelimit.Budget
	cache    *cache.Cache
	generate generateFunc
}

type Option func(*Client)

func WithModel(name string) Option {
	return func(c *Client) {
		if name != "" {
			c.model = name
		}
	}
}

func WithRetry(cfg retry.RetryConfig) Option { return func(c *Client) { c.retry = cfg } }

// WithBudget shares a request budget with other backends.
func WithBudget(b *ratelimit.Budget) Option { return func(c *Client) { c.budget = b } }

// WithCache memoises replies by prompt.
func WithCache(c *cache.Cache) Option { return func(cl *Client) { cl.cache = c } }

func NewClient(ctx context.Context, apiKey string, opts ...Option) (*Client, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	c := newClient(nil, opts...)
	c.client = client
	c.generate = c.generateContent
	return c, nil
}

func newClient(gen generateFunc, opts ...Option) *Client {
	c := &Client{
		model:    DefaultModel,
		retry:    retry.RetryConfig{MaxAttempts: 1},
		generate: gen,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) Close() {
	if c.client != nil {
		c.client.Close()
	}
}

func (c *Client) Name() string { return Backend }

func (c *Client) Predict(ctx context.Context, text string) (sentiment.Prediction, error) {
	var pred sentiment.Prediction
	err := c.complete(ctx, sentiment.Prompt(text), func(reply string) error {
		p, err := sentiment.ParseReply(reply)
		pred = p
		return err
	})
	return pred, err
}

func (c *Client) Entities(ctx context.Context, text string) ([]topics.Entity, error) {
	var ents []topics.Entity
	err := c.complete(ctx, topics.Prompt(text), func(reply string) error {
		e, err := topics.ParseReply(reply)
		ents = e
		return err
	})
	return ents, err
}

// complete sends prompt and hands the reply to parse, retrying transport
// and decode failures. An exhausted budget fails before the first attempt.
// Cached replies skip the network and the budget.
func (c *Client) complete(ctx context.Context, prompt string, parse func(string) error) error {
	key := cache.Key(Backend, c.model, prompt)
	if reply, ok := c.cache.Get(key); ok && parse(reply) == nil {
		return nil
	}
	if !c.budget.Allow() {
		return fmt.Errorf("%s: %w", Backend, ratelimit.ErrBudgetExhausted)
	}

	return retry.WithRetry(ctx, c.retry, func() error {
		if err := c.budget.Use(Backend); err != nil {
			return retry.Permanent(err)
		}
		reply, err := c.generate(ctx, prompt)
		if err != nil {
			return fmt.Errorf("failed to generate content: %w", err)
		}
		if err := parse(reply); err != nil {
			logger.Debug("Unparseable Gemini reply", "reply", reply, "error", err)
			return err
		}
		c.cache.Set(key, reply)
		return nil
	})
}

func (c *Client) generateContent(ctx context.Context, prompt string) (string, error) {
	model := c.client.GenerativeModel(c.model)
	model.SetTemperature(0)
	model.ResponseMIMEType = "application/json"

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", err
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("no response from Gemini")
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if t, ok := part.(genai.Text); ok {
			sb.WriteString(string(t))
		}
	}
	return sb.String(), nil
}
