package sentiment

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeModel struct {
	mu    sync.Mutex
	pred  Prediction
	err   error
	calls []string
}

func (f *fakeModel) Name() string { return "fake" }

func (f *fakeModel) Predict(_ context.Context, text string) (Prediction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, text)
	return f.pred, f.err
}

func TestClassify_ShortTextSkipsModel(t *testing.T) {
	m := &fakeModel{pred: Prediction{Label: Positive, Confidence: 0.99}}
	c := NewClassifier(m)

	for _, text := range []string{"", "   ", "too short", "  nine  ch "} {
		assert.Equal(t, Zero(), c.Classify(context.Background(), text), "text %q", text)
	}
	assert.Empty(t, m.calls)
}

func assertSentiment(t *testing.T, want, got Sentiment) {
	t.Helper()
	assert.Equal(t, want.Label, got.Label)
	assert.InDelta(t, want.Compound, got.Compound, 1e-9, "compound")
	assert.InDelta(t, want.Pos, got.Pos, 1e-9, "pos")
	assert.InDelta(t, want.Neg, got.Neg, 1e-9, "neg")
	assert.InDelta(t, want.Neu, got.Neu, 1e-9, "neu")
}

func TestClassify_Mapping(t *testing.T) {
	const text = "The quarterly report was published today."

	tests := []struct {
		name string
		pred Prediction
		want Sentiment
	}{
		{"positive", Prediction{"positive", 0.9}, Sentiment{Label: Positive, Compound: 0.9, Pos: 0.9, Neu: 0.1}},
		{"negative", Prediction{"NEGATIVE", 0.75}, Sentiment{Label: Negative, Compound: -0.75, Neg: 0.75, Neu: 0.25}},
		{"unknown label", Prediction{"mixed", 0.8}, Zero()},
		{"low confidence positive", Prediction{"positive", 0.59}, Sentiment{Label: Neutral, Neu: 1}},
		{"low confidence negative", Prediction{"negative", 0.1}, Sentiment{Label: Neutral, Neu: 1}},
		{"low confidence unknown", Prediction{"mixed", 0.3}, Sentiment{Label: Neutral, Neu: 1}},
		{"boundary", Prediction{"positive", 0.6}, Sentiment{Label: Positive, Compound: 0.6, Pos: 0.6, Neu: 0.4}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewClassifier(&fakeModel{pred: tt.pred})
			assertSentiment(t, tt.want, c.Classify(context.Background(), text))
		})
	}
}

func TestClassify_KeywordOverrides(t *testing.T) {
	tests := []struct {
		name      string
		text      string
		pred      Prediction
		overrides bool
		want      string
	}{
		{"positive flipped by outage", "Service OUTAGE hit users for hours", Prediction{"positive", 0.8}, true, Negative},
		{"negative flipped by restored", "Service was restored after the incident", Prediction{"negative", 0.7}, true, Positive},
		{"positive kept", "Record quarter for the company overall", Prediction{"positive", 0.8}, true, Positive},
		{"forced neutral never flipped", "A brief outage was reported this morning", Prediction{"positive", 0.5}, true, Neutral},
		{"overrides disabled", "Service outage hit users for hours", Prediction{"positive", 0.8}, false, Positive},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewClassifier(&fakeModel{pred: tt.pred}, WithOverrides(tt.overrides))
			got := c.Classify(context.Background(), tt.text)
			assert.Equal(t, tt.want, got.Label)
			if got.Label != Neutral {
				assert.InDelta(t, tt.pred.Confidence, got.Pos+got.Neg, 1e-9)
			}
		})
	}
}

func TestClassify_ModelErrorDegrades(t *testing.T) {
	c := NewClassifier(&fakeModel{err: errors.New("quota")})
	assert.Equal(t, Zero(), c.Classify(context.Background(), "Acme reported strong growth this quarter."))
}

func TestClassify_TruncatesInput(t *testing.T) {
	m := &fakeModel{pred: Prediction{Label: Positive, Confidence: 0.9}}
	c := NewClassifier(m)

	c.Classify(context.Background(), strings.Repeat("ü", 2000))
	require.Len(t, m.calls, 1)
	assert.Equal(t, MaxInputRunes, utf8.RuneCountInString(m.calls[0]))
}

func TestClassify_Invariants(t *testing.T) {
	labels := []string{"positive", "negative", "neutral", "weird"}
	texts := []string{
		"Acme shares rose after results.",
		"An outage disrupted service for Acme users.",
		"Growth resumed and service restored.",
	}
	for _, label := range labels {
		for conf := 0.0; conf <= 1.0; conf += 0.05 {
			for _, text := range texts {
				s := NewClassifier(&fakeModel{pred: Prediction{label, conf}}).Classify(context.Background(), text)

				assert.GreaterOrEqual(t, s.Compound, -1.0)
				assert.LessOrEqual(t, s.Compound, 1.0)
				if s.Pos > 0 {
					assert.Equal(t, Positive, s.Label)
				}
				if s.Neg > 0 {
					assert.Equal(t, Negative, s.Label)
				}
				if s.Label == Neutral {
					assert.Zero(t, s.Pos)
					assert.Zero(t, s.Neg)
				}
			}
		}
	}
}

func TestClassify_ConcurrentUse(t *testing.T) {
	c := NewClassifier(&fakeModel{pred: Prediction{Label: Positive, Confidence: 0.9}})

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				got := c.Classify(context.Background(), "Outage reported but the launch went ahead.")
				assert.Equal(t, Negative, got.Label)
			}
		}()
	}
	wg.Wait()
}

func TestLexiconModel(t *testing.T) {
	m := NewLexiconModel()
	ctx := context.Background()

	pred, err := m.Predict(ctx, "Acme posted a record high profit and strong growth.")
	require.NoError(t, err)
	assert.Equal(t, Positive, pred.Label)
	assert.GreaterOrEqual(t, pred.Confidence, MinConfidence)

	pred, err = m.Predict(ctx, "A fraud investigation followed the crash.")
	require.NoError(t, err)
	assert.Equal(t, Negative, pred.Label)
	assert.GreaterOrEqual(t, pred.Confidence, MinConfidence)

	pred, err = m.Predict(ctx, "The board met on Tuesday.")
	require.NoError(t, err)
	assert.Equal(t, Prediction{Label: Neutral}, pred)

	assert.Equal(t, "lexicon", m.Name())
}

func TestLexiconModel_WithClassifier(t *testing.T) {
	c := NewClassifier(NewLexiconModel())
	got := c.Classify(context.Background(), "Acme reported a fraud investigation and a share price crash.")
	assert.Equal(t, Negative, got.Label)
	assert.Less(t, got.Compound, 0.0)
}

func TestParseReply(t *testing.T) {
	pred, err := ParseReply("```json\n{\"label\": \"Positive\", \"confidence\": 0.87}\n```")
	require.NoError(t, err)
	assert.Equal(t, Prediction{Label: Positive, Confidence: 0.87}, pred)

	pred, err = ParseReply(`{"label":"negative","confidence":1.4}`)
	require.NoError(t, err)
	assert.Equal(t, Prediction{Label: Negative, Confidence: 1}, pred)

	_, err = ParseReply("I think it is positive")
	assert.Error(t, err)

	assert.Contains(t, Prompt("Acme grew"), "Acme grew")
}
