package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const namespace = "newspulse"

type Metrics struct {
	mu sync.RWMutex

	// Counters
	AnalysesRun        int64
	ArticlesAnalyzed   int64
	ExtractionsInvalid int64
	ModelFailures      int64

	// Timings
	LastProcessingTime    time.Duration
	AverageProcessingTime time.Duration
	TotalProcessingTime   time.Duration
	ProcessingCount       int64

	// Status
	LastRunTime   time.Time
	LastErrorTime time.Time
	LastError     string
	IsHealthy     bool

	registry    *prometheus.Registry
	searches    *prometheus.CounterVec
	candidates  prometheus.Counter
	extractions *prometheus.CounterVec
	modelCalls  *prometheus.CounterVec
	analyses    *prometheus.CounterVec
	duration    prometheus.Histogram
}

var Global = New()

// New builds a Metrics with its own Prometheus registry.
func New() *Metrics {
	m := &Metrics{
		IsHealthy: true,
		registry:  prometheus.NewRegistry(),
		searches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "searches_total",
			Help:      "News searches by outcome.",
		}, []string{"source", "outcome"}),
		candidates: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "candidates_total",
			Help:      "Candidate articles returned by search.",
		}),
		extractions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "extractions_total",
			Help:      "Article extractions by result.",
		}, []string{"result"}),
		modelCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "model_calls_total",
			Help:      "Sentiment and entity model calls by backend and outcome.",
		}, []string{"backend", "outcome"}),
		analyses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "analyses_total",
			Help:      "Company analyses by outcome.",
		}, []string{"outcome"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "analysis_duration_seconds",
			Help:      "Wall-clock duration of a company analysis.",
			Buckets:   []float64{1, 5, 10, 20, 40, 60, 120},
		}),
	}

	m.registry.MustRegister(
		m.searches, m.candidates, m.extractions, m.modelCalls, m.analyses, m.duration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Registry exposes the collectors for a /metrics handler.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) RecordSearch(source string, candidates int, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.searches.WithLabelValues(source, outcome).Inc()
	m.candidates.Add(float64(candidates))
}

func (m *Metrics) RecordExtraction(valid bool) {
	if valid {
		m.extractions.WithLabelValues("valid").Inc()
		return
	}
	m.extractions.WithLabelValues("invalid").Inc()

	m.mu.Lock()
	defer m.mu.Unlock()
	m.ExtractionsInvalid++
}

func (m *Metrics) RecordModelCall(backend string, err error) {
	if err == nil {
		m.modelCalls.WithLabelValues(backend, "ok").Inc()
		return
	}
	m.modelCalls.WithLabelValues(backend, "error").Inc()

	m.mu.Lock()
	defer m.mu.Unlock()
	m.ModelFailures++
}

// RecordAnalysis records one finished analysis. outcome is a short label
// such as "ok", "no_results" or "error".
func (m *Metrics) RecordAnalysis(duration time.Duration, articles int, outcome string) {
	m.analyses.WithLabelValues(outcome).Inc()
	m.duration.Observe(duration.Seconds())

	m.mu.Lock()
	defer m.mu.Unlock()

	m.AnalysesRun++
	m.ArticlesAnalyzed += int64(articles)
	m.LastProcessingTime = duration
	m.TotalProcessingTime += duration
	m.ProcessingCount++
	m.AverageProcessingTime = m.TotalProcessingTime / time.Duration(m.ProcessingCount)
	m.LastRunTime = time.Now()
	if outcome != "error" {
		m.IsHealthy = true
	}
}

func (m *Metrics) SetError(err string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LastError = err
	m.LastErrorTime = time.Now()
	m.IsHealthy = false
}

func (m *Metrics) GetStats() map[string]interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return map[string]interface{}{
		"analyses_run":               m.AnalysesRun,
		"articles_analyzed":          m.ArticlesAnalyzed,
		"extractions_invalid":        m.ExtractionsInvalid,
		"model_failures":             m.ModelFailures,
		"last_processing_time_ms":    m.LastProcessingTime.Milliseconds(),
		"average_processing_time_ms": m.AverageProcessingTime.Milliseconds(),
		"last_run_time":              m.LastRunTime.Format(time.RFC3339),
		"last_error_time":            m.LastErrorTime.Format(time.RFC3339),
		"last_error":                 m.LastError,
		"is_healthy":                 m.IsHealthy,
	}
}
