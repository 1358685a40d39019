package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics_Counters(t *testing.T) {
	m := New()

	m.RecordSearch("serp", 4, nil)
	m.RecordSearch("rss", 0, errors.New("down"))
	m.RecordExtraction(true)
	m.RecordExtraction(false)
	m.RecordExtraction(false)
	m.RecordModelCall("gemini", nil)
	m.RecordModelCall("gemini", errors.New("quota"))

	assert.InDelta(t, 4, testutil.ToFloat64(m.candidates), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.searches.WithLabelValues("rss", "error")), 0)
	assert.InDelta(t, 2, testutil.ToFloat64(m.extractions.WithLabelValues("invalid")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.modelCalls.WithLabelValues("gemini", "ok")), 0)

	stats := m.GetStats()
	assert.Equal(t, int64(2), stats["extractions_invalid"])
	assert.Equal(t, int64(1), stats["model_failures"])
}

func TestMetrics_RecordAnalysis(t *testing.T) {
	m := New()
	m.SetError("previous failure")

	m.RecordAnalysis(2*time.Second, 3, "ok")
	m.RecordAnalysis(4*time.Second, 5, "ok")

	stats := m.GetStats()
	assert.Equal(t, int64(2), stats["analyses_run"])
	assert.Equal(t, int64(8), stats["articles_analyzed"])
	assert.Equal(t, int64(3000), stats["average_processing_time_ms"])
	assert.Equal(t, true, stats["is_healthy"])
}
