// Package gpt backs the sentiment model and the entity recogniser with the
// OpenAI chat completion API.
package gpt

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/deusflow/newspulse/internal/cache"
	"github.com/deusflow/newspulse/internal/ratelimit"
	"github.com/deusflow/newspulse/internal/retry"
	"github.com/deusflow/newspulse/internal/sentiment"
	"github.com/deusflow/newspulse/internal/topics"
)

const (
	Backend      = "openai"
	DefaultModel = openai.GPT4oMini
)

// Client implements sentiment.Model and topics.Recognizer.
type Client struct {
	client *openai.Client
	model  string
	retry  retry.RetryConfig
	budget *ratelimit.Budget
	cache  *cache.Cache
}

type Options struct {
	APIKey     string
	Model      string
	BaseURL    string // optional, for proxies and tests
	HTTPClient *http.Client
	Retry      retry.RetryConfig
	Budget     *ratelimit.Budget
	Cache      *cache.Cache
}

func NewClient(opts Options) *Client {
	cfg := openai.DefaultConfig(opts.APIKey)
	if opts.BaseURL != "" {
		cfg.BaseURL = opts.BaseURL
	}
	if opts.HTTPClient != nil {
		cfg.HTTPClient = opts.HTTPClient
	}
	model := opts.Model
	if model == "" {
		model = DefaultModel
	}
	return &Client{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
		retry:  opts.Retry,
		budget: opts.Budget,
		cache:  opts.Cache,
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

		resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
			Model: c.model,
			Messages: []openai.ChatCompletionMessage{
				{Role: openai.ChatMessageRoleUser, Content: prompt},
			},
			ResponseFormat: &openai.ChatCompletionResponseFormat{
				Type: openai.ChatCompletionResponseFormatTypeJSONObject,
			},
			Temperature:         0,
			MaxCompletionTokens: 500,
		})
		if err != nil {
			return classify(err)
		}
		if len(resp.Choices) == 0 {
			return errors.New("no response from OpenAI")
		}
		reply := strings.TrimSpace(resp.Choices[0].Message.Content)
		if err := parse(reply); err != nil {
			return err
		}
		c.cache.Set(key, reply)
		return nil
	})
}

// classify marks client errors other than rate limiting as permanent.
func classify(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) && apiErr.HTTPStatusCode >= 400 && apiErr.HTTPStatusCode < 500 &&
		apiErr.HTTPStatusCode != http.StatusTooManyRequests {
		return retry.Permanent(fmt.Errorf("openai: %w", err))
	}
	return fmt.Errorf("openai: %w", err)
}
