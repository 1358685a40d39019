package sentiment

import (
	"context"
	"math"
	"strings"
)

// Offline weighted dictionaries, lowercase.
var positiveWords = map[string]float64{
	"growth": 0.4, "surge": 0.7, "record high": 0.7, "beat": 0.5, "beats estimate": 0.6,
	"profit": 0.3, "strong": 0.4, "launched": 0.5, "success": 0.6, "improved": 0.5,
	"restored": 0.5, "partnership": 0.4, "expansion": 0.4, "upgrade": 0.6, "innovative": 0.5,
	"award": 0.5, "breakthrough": 0.7, "recovery": 0.5, "rally": 0.6, "gains": 0.4,
}

var negativeWords = map[string]float64{
	"outage": 0.7, "disruption": 0.6, "failed": 0.6, "lawsuit": 0.6, "fraud": 0.8,
	"crash": 0.8, "plunge": 0.7, "loss": 0.4, "decline": 0.5, "layoff": 0.6,
	"recall": 0.6, "investigation": 0.5, "downgrade": 0.6, "weak": 0.4, "concern": 0.3,
	"breach": 0.7, "blocked": 0.5, "problem": 0.4, "warning": 0.5,
}

// LexiconModel is a deterministic keyword scorer that needs no network.
type LexiconModel struct {
	words   []string
	weights []float64
	set     *keywordSet
}

func NewLexiconModel() *LexiconModel {
	m := &LexiconModel{}
	for w, weight := range positiveWords {
		m.words = append(m.words, w)
		m.weights = append(m.weights, weight)
	}
	for w, weight := range negativeWords {
		m.words = append(m.words, w)
		m.weights = append(m.weights, -weight)
	}
	m.set = newKeywordSet(m.words)
	return m
}

func (m *LexiconModel) Name() string { return "lexicon" }

// Predict returns positive or negative with a confidence that grows with
// the number of hits and the net balance between the two sides. Text with
// no dictionary hits is reported as neutral with zero confidence.
func (m *LexiconModel) Predict(_ context.Context, text string) (Prediction, error) {
	hits := m.set.matches(strings.ToLower(text))

	var pos, neg float64
	for _, i := range hits {
		if w := m.weights[i]; w > 0 {
			pos += w
		} else {
			neg -= w
		}
	}

	total := pos + neg
	if total == 0 {
		return Prediction{Label: Neutral}, nil
	}

	net := (pos - neg) / total
	confidence := math.Min(0.55+0.1*float64(len(hits)), 0.95) * math.Abs(net)

	label := Positive
	if net < 0 {
		label = Negative
	}
	if net == 0 {
		label = Neutral
	}
	return Prediction{Label: label, Confidence: confidence}, nil
}
