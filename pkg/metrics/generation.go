package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// GenerationMetrics records question generation runs.
type GenerationMetrics struct {
	runs       *prometheus.CounterVec
	fallbacks  *prometheus.CounterVec
	dropped    *prometheus.CounterVec
	backfilled prometheus.Counter
	questions  prometheus.Histogram
	duration   *prometheus.HistogramVec
}

// NewGenerationMetrics registers the generation metrics on the provided registerer.
func NewGenerationMetrics(reg prometheus.Registerer) *GenerationMetrics {
	if reg == nil {
		return &GenerationMetrics{}
	}
	runs := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "question_generation_runs_total",
		Help: "Question generation runs by the source that produced the result.",
	}, []string{"source"})
	fallbacks := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "question_generation_fallbacks_total",
		Help: "Generative attempts that fell back to rule-based questions.",
	}, []string{"reason"})
	dropped := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "question_generation_sanitize_dropped_total",
		Help: "Values removed from generative output during sanitization.",
	}, []string{"kind"})
	backfilled := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "question_generation_backfilled_total",
		Help: "Rule-based questions appended to short generative results.",
	})
	questions := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "question_generation_questions",
		Help:    "Number of questions in each generation result.",
		Buckets: prometheus.LinearBuckets(1, 1, 7),
	})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "question_generation_duration_seconds",
		Help:    "Duration of question generation runs in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"source"})
	reg.MustRegister(runs, fallbacks, dropped, backfilled, questions, duration)
	return &GenerationMetrics{
		runs:       runs,
		fallbacks:  fallbacks,
		dropped:    dropped,
		backfilled: backfilled,
		questions:  questions,
		duration:   duration,
	}
}

// ObserveRun records a completed run.
func (m *GenerationMetrics) ObserveRun(source string, questions, backfilled int, duration time.Duration) {
	if m == nil || m.runs == nil {
		return
	}
	label := normalizeLabel(source)
	m.runs.WithLabelValues(label).Inc()
	m.duration.WithLabelValues(label).Observe(duration.Seconds())
	m.questions.Observe(float64(questions))
	if backfilled > 0 {
		m.backfilled.Add(float64(backfilled))
	}
}

// IncFallback counts a generative failure by reason.
func (m *GenerationMetrics) IncFallback(reason string) {
	if m == nil || m.fallbacks == nil {
		return
	}
	m.fallbacks.WithLabelValues(normalizeLabel(reason)).Inc()
}

// SanitizeDrops is one run's sanitizer tally.
type SanitizeDrops struct {
	Tags          int
	Types         int
	NarrowedTypes int
	Budgets       int
	Questions     int
}

// AddSanitizeDrops counts values removed by the sanitizer, one kind label per field.
func (m *GenerationMetrics) AddSanitizeDrops(d SanitizeDrops) {
	if m == nil || m.dropped == nil {
		return
	}
	for _, kind := range []struct {
		label string
		n     int
	}{
		{"tag", d.Tags},
		{"type", d.Types},
		{"narrowed_type", d.NarrowedTypes},
		{"budget", d.Budgets},
		{"question", d.Questions},
	} {
		if kind.n > 0 {
			m.dropped.WithLabelValues(kind.label).Add(float64(kind.n))
		}
	}
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
