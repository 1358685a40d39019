// Package sentiment maps a black-box binary sentiment model onto a stable
// three-way contract with a signed compound score.
package sentiment

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/deusflow/newspulse/internal/logger"
	"github.com/deusflow/newspulse/internal/metrics"
)

const (
	Positive = "positive"
	Negative = "negative"
	Neutral  = "neutral"

	// MaxInputRunes bounds the prefix handed to the model.
	MaxInputRunes = 512
	// MinConfidence is the decision boundary below which the model is not trusted.
	MinConfidence = 0.6

	minTextRunes = 10
)

// NegativeKeywords flip a positive result; PositiveKeywords flip a negative one.
var (
	NegativeKeywords = []string{"outage", "problem", "issue", "blocked", "failed", "disruption", "revert"}
	PositiveKeywords = []string{"success", "restored", "improved", "launched", "growth"}
)

// Prediction is the raw output of a binary sentiment model.
type Prediction struct {
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
}

// Model is an external sentiment classifier. Implementations must be safe
// for concurrent use once constructed.
type Model interface {
	Name() string
	Predict(ctx context.Context, text string) (Prediction, error)
}

// Sentiment is the three-way result. A neutral label always has Pos and Neg
// at zero; Pos > 0 implies positive and Neg > 0 implies negative.
type Sentiment struct {
	Label    string  `json:"label"`
	Compound float64 `json:"compound"`
	Pos      float64 `json:"pos"`
	Neg      float64 `json:"neg"`
	Neu      float64 `json:"neu"`
}

// Zero is the all-zero neutral result used for short input and model failures.
func Zero() Sentiment { return Sentiment{Label: Neutral} }

func fullyNeutral() Sentiment { return Sentiment{Label: Neutral, Neu: 1} }

func positive(c float64) Sentiment {
	return Sentiment{Label: Positive, Compound: c, Pos: c, Neu: 1 - c}
}

func negative(c float64) Sentiment {
	return Sentiment{Label: Negative, Compound: -c, Neg: c, Neu: 1 - c}
}

// Classifier applies the decision policy around a Model.
type Classifier struct {
	model     Model
	overrides bool
	negative  *keywordSet
	positive  *keywordSet
}

type Option func(*Classifier)

// WithOverrides toggles the keyword override layer (on by default).
func WithOverrides(enabled bool) Option {
	return func(c *Classifier) { c.overrides = enabled }
}

func NewClassifier(model Model, opts ...Option) *Classifier {
	c := &Classifier{
		model:     model,
		overrides: true,
		negative:  newKeywordSet(NegativeKeywords),
		positive:  newKeywordSet(PositiveKeywords),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Classify never fails: a model error degrades to Zero().
func (c *Classifier) Classify(ctx context.Context, text string) Sentiment {
	if utf8.RuneCountInString(strings.TrimSpace(text)) < minTextRunes {
		return Zero()
	}

	pred, err := c.model.Predict(ctx, prefix(text, MaxInputRunes))
	metrics.Global.RecordModelCall(c.model.Name(), err)
	if err != nil {
		logger.Warn("Sentiment model failed, using neutral", "backend", c.model.Name(), "error", err)
		return Zero()
	}

	s := mapPrediction(pred)
	if !c.overrides || s.Label == Neutral {
		return s
	}
	return c.override(s, pred.Confidence, strings.ToLower(text))
}

func mapPrediction(pred Prediction) Sentiment {
	var s Sentiment
	switch strings.ToLower(strings.TrimSpace(pred.Label)) {
	case Positive:
		s = positive(pred.Confidence)
	case Negative:
		s = negative(pred.Confidence)
	default:
		s = Zero()
	}
	if pred.Confidence < MinConfidence {
		return fullyNeutral()
	}
	return s
}

func (c *Classifier) override(s Sentiment, confidence float64, lower string) Sentiment {
	switch {
	case s.Label == Positive && c.negative.any(lower):
		return negative(confidence)
	case s.Label == Negative && c.positive.any(lower):
		return positive(confidence)
	}
	return s
}

func prefix(s string, n int) string {
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}
