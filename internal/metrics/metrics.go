package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	DecisionsTotal      *prometheus.CounterVec
	DecisionSeconds     prometheus.Histogram
	DNCEvaluationsTotal *prometheus.CounterVec
}

func New() *Metrics {
	return &Metrics{
		DecisionsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "pepgate_decisions_total",
			Help: "Total authorizer decisions by effect",
		}, []string{"effect"}),
		DecisionSeconds: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "pepgate_decision_engine_seconds",
			Help:    "Decision engine round trip latency in seconds",
			Buckets: prometheus.DefBuckets,
		}),
		DNCEvaluationsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "pepgate_dnc_evaluations_total",
			Help: "Total Do-Not-Contact evaluations by outcome",
		}, []string{"outcome"}),
	}
}

func (m *Metrics) ObserveDecision(allowed bool, d time.Duration) {
	if m == nil {
		return
	}
	effect := "deny"
	if allowed {
		effect = "allow"
	}
	m.DecisionsTotal.WithLabelValues(effect).Inc()
	m.DecisionSeconds.Observe(d.Seconds())
}

func (m *Metrics) ObserveEvaluation(outcome string) {
	if m == nil {
		return
	}
	m.DNCEvaluationsTotal.WithLabelValues(outcome).Inc()
}
