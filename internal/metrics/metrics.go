package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the qualification engine and its collaborators.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	// Collaborator call latency by task and outcome
	CompletionLatency *prometheus.HistogramVec

	// Verdicts produced by item category and answer
	Verdicts *prometheus.CounterVec

	// Qualification outcomes by status
	Outcomes *prometheus.CounterVec

	// Documents by confirmed type and whether extraction failed
	Documents *prometheus.CounterVec

	// Full run latency
	RunLatency prometheus.Histogram
}

// New creates the metrics and registers them with reg. Passing a fresh
// prometheus.NewRegistry() keeps tests isolated from the default registry.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		CompletionLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "registrum_completion_duration_seconds",
			Help:    "Duration of text-generation collaborator calls by task and outcome",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		}, []string{"task", "outcome"}), // outcome: "ok", "error"

		Verdicts: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "registrum_verdicts_total",
			Help: "Checklist verdicts by category and answer",
		}, []string{"category", "answer"}),

		Outcomes: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "registrum_qualification_outcomes_total",
			Help: "Qualification results by overall status",
		}, []string{"status"}),

		Documents: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "registrum_documents_total",
			Help: "Processed documents by confirmed type and extraction outcome",
		}, []string{"type", "extraction"}), // extraction: "ok", "failed"

		RunLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "registrum_qualification_duration_seconds",
			Help:    "Duration of a full qualification run",
			Buckets: []float64{1, 5, 10, 30, 60, 120, 300, 600},
		}),
	}
}

// ObserveCompletion records one collaborator call.
func (m *Metrics) ObserveCompletion(task string, err error, d time.Duration) {
	if m != nil {
		outcome := "ok"
		if err != nil {
			outcome = "error"
		}
		m.CompletionLatency.WithLabelValues(task, outcome).Observe(d.Seconds())
	}
}

// IncrementVerdict records a produced verdict.
func (m *Metrics) IncrementVerdict(category, answer string) {
	if m != nil {
		m.Verdicts.WithLabelValues(category, answer).Inc()
	}
}

// IncrementOutcome records an overall qualification status.
func (m *Metrics) IncrementOutcome(status string) {
	if m != nil {
		m.Outcomes.WithLabelValues(status).Inc()
	}
}

// IncrementDocument records a processed document.
func (m *Metrics) IncrementDocument(docType string, failed bool) {
	if m != nil {
		extraction := "ok"
		if failed {
			extraction = "failed"
		}
		m.Documents.WithLabelValues(docType, extraction).Inc()
	}
}

// ObserveRunLatency records the duration of a full run.
func (m *Metrics) ObserveRunLatency(d time.Duration) {
	if m != nil {
		m.RunLatency.Observe(d.Seconds())
	}
}
