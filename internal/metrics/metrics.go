package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics groups the collectors of one process. A nil *Metrics is valid and
// records nothing, so components can run without a registry.
type Metrics struct {
	analysisRuns        *prometheus.CounterVec
	analysisDuration    prometheus.Histogram
	analyzerFailures    *prometheus.CounterVec
	serviceRequests     *prometheus.CounterVec
	paragraphsCompleted prometheus.Counter
	coachingTips        *prometheus.CounterVec
	activeSessions      prometheus.Gauge
}

func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		analysisRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "writing_coach",
			Name:      "analysis_runs_total",
			Help:      "Analysis runs by outcome (committed, stale).",
		}, []string{"outcome"}),
		analysisDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "writing_coach",
			Name:      "analysis_duration_seconds",
			Help:      "Wall time of one joint analyzer run.",
			Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		}),
		analyzerFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "writing_coach",
			Name:      "analyzer_failures_total",
			Help:      "Analyzer runs that reported an error, by source.",
		}, []string{"source"}),
		serviceRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "writing_coach",
			Name:      "grammar_service_requests_total",
			Help:      "Grammar service attempts by result (ok, error, cached).",
		}, []string{"result"}),
		paragraphsCompleted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "writing_coach",
			Name:      "paragraphs_completed_total",
			Help:      "Paragraphs that newly became complete.",
		}),
		coachingTips: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "writing_coach",
			Name:      "coaching_tips_total",
			Help:      "Coaching tips by origin (model, fallback).",
		}, []string{"origin"}),
		activeSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "writing_coach",
			Name:      "active_sessions",
			Help:      "Open editing sessions.",
		}),
	}
	if reg != nil {
		reg.MustRegister(
			m.analysisRuns,
			m.analysisDuration,
			m.analyzerFailures,
			m.serviceRequests,
			m.paragraphsCompleted,
			m.coachingTips,
			m.activeSessions,
		)
	}
	return m
}

func (m *Metrics) RunCommitted(d time.Duration) {
	if m == nil {
		return
	}
	m.analysisRuns.WithLabelValues("committed").Inc()
	m.analysisDuration.Observe(d.Seconds())
}

func (m *Metrics) RunDiscarded(d time.Duration) {
	if m == nil {
		return
	}
	m.analysisRuns.WithLabelValues("stale").Inc()
	m.analysisDuration.Observe(d.Seconds())
}

func (m *Metrics) AnalyzerFailed(source string) {
	if m == nil {
		return
	}
	m.analyzerFailures.WithLabelValues(source).Inc()
}

func (m *Metrics) ServiceRequest(result string) {
	if m == nil {
		return
	}
	m.serviceRequests.WithLabelValues(result).Inc()
}

func (m *Metrics) ParagraphsCompleted(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.paragraphsCompleted.Add(float64(n))
}

func (m *Metrics) CoachingTip(fallback bool) {
	if m == nil {
		return
	}
	origin := "model"
	if fallback {
		origin = "fallback"
	}
	m.coachingTips.WithLabelValues(origin).Inc()
}

func (m *Metrics) SessionOpened() {
	if m == nil {
		return
	}
	m.activeSessions.Inc()
}

func (m *Metrics) SessionClosed() {
	if m == nil {
		return
	}
	m.activeSessions.Dec()
}
