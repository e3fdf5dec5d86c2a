package orchestrator

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics records orchestrator activity in Prometheus collectors. One
// instance is shared by all tier orchestrators; series are labeled by tier.
type Metrics struct {
	initTotal     *prometheus.CounterVec
	initDuration  *prometheus.HistogramVec
	tierHealth    *prometheus.GaugeVec
	featuresReady *prometheus.GaugeVec
}

// NewMetrics registers the orchestrator collectors on the given registerer.
// Passing nil uses the default registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		initTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "slideforge_feature_init_total",
			Help: "Feature construction attempts by tier and result.",
		}, []string{"tier", "result"}),
		initDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "slideforge_feature_init_duration_seconds",
			Help:    "Feature construction duration by tier.",
			Buckets: prometheus.DefBuckets,
		}, []string{"tier"}),
		tierHealth: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "slideforge_tier_health",
			Help: "Tier health state: 0 healthy, 1 degraded, 2 critical.",
		}, []string{"tier"}),
		featuresReady: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "slideforge_features_ready",
			Help: "Number of ready features by tier.",
		}, []string{"tier"}),
	}
}

func (o *TierOrchestrator) metricsObserveInit(took time.Duration, err error) {
	m := o.opts.Metrics
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.initTotal.WithLabelValues(string(o.tier), result).Inc()
	m.initDuration.WithLabelValues(string(o.tier)).Observe(took.Seconds())
}

// metricsSetTier updates the health gauge and, when ready is non-negative,
// the ready-features gauge.
func (o *TierOrchestrator) metricsSetTier(state TierState, ready int) {
	m := o.opts.Metrics
	if m == nil {
		return
	}
	var level float64
	switch state {
	case TierDegraded:
		level = 1
	case TierCritical:
		level = 2
	}
	m.tierHealth.WithLabelValues(string(o.tier)).Set(level)
	if ready >= 0 {
		m.featuresReady.WithLabelValues(string(o.tier)).Set(float64(ready))
	}
}
