package orchestrator

import (
	"time"

	"go.uber.org/zap"
)

// Hooks are optional callbacks invoked by the orchestrator on lifecycle
// events. All hooks may be nil. Hooks run synchronously on the goroutine
// that produced the event and must not block.
type Hooks struct {
	// OnStatusChange fires whenever a feature transitions between statuses.
	OnStatusChange func(tier Tier, featureID string, from, to Status)
	// OnError fires whenever a feature failure is recorded, during
	// initialization or by the health monitor.
	OnError func(tier Tier, featureID string, err error)
	// OnToggle fires when a feature is enabled or disabled at runtime.
	OnToggle func(tier Tier, featureID string, enabled bool)
	// OnLazyProgress fires after each heavy dependency of a feature is
	// loaded, with completed out of total steps.
	OnLazyProgress func(tier Tier, featureID, dependency string, completed, total int)
}

// Options configures a tier orchestrator and, for the fields that concern
// tier sequencing, the combined orchestrator.
type Options struct {
	// FailFast stops the remaining features of a batch when a critical
	// feature fails in sequential mode.
	FailFast bool
	// InitializeOptional controls whether the combined orchestrator
	// initializes the optional tier at all.
	InitializeOptional bool
	// ContinueOnCoreFailure lets the advanced tier initialize even when the
	// core tier reported failure.
	ContinueOnCoreFailure bool
	// FeatureTimeout is the per-feature construction budget.
	FeatureTimeout time.Duration
	// HealthChecks enables the periodic health monitor after
	// initialization completes.
	HealthChecks bool
	// HealthInterval is the health monitor tick interval.
	HealthInterval time.Duration
	// SequentialBatches forces strictly sequential execution within a
	// batch instead of the default fan-out.
	SequentialBatches bool
	// LazyLoading enables heavy-dependency loading for features that
	// require it. When disabled such features construct immediately and
	// report their heavy dependencies as not loaded.
	LazyLoading bool
	// TierAllowlist restricts which tiers the combined orchestrator
	// initializes. Empty means all tiers.
	TierAllowlist []Tier
	// BatchAllowlist restricts which batch numbers run. Empty means all
	// batches. Features in skipped batches stay pending.
	BatchAllowlist []int
	// Fetcher loads heavy dependencies. Nil selects a no-op fetcher.
	Fetcher AssetFetcher
	// Hooks are the lifecycle event callbacks.
	Hooks Hooks
	// Logger receives structured lifecycle logs. Nil selects zap.NewNop.
	Logger *zap.Logger
	// Metrics records initialization and health metrics. Nil disables
	// metric recording.
	Metrics *Metrics
}

// DefaultOptions returns the options used when a field is left at its zero
// value.
func DefaultOptions() Options {
	return Options{
		InitializeOptional: true,
		FeatureTimeout:     30 * time.Second,
		HealthChecks:       true,
		HealthInterval:     30 * time.Second,
		LazyLoading:        true,
	}
}

// normalize fills the zero values a caller left unset.
func (o Options) normalize() Options {
	if o.FeatureTimeout <= 0 {
		o.FeatureTimeout = 30 * time.Second
	}
	if o.HealthInterval <= 0 {
		o.HealthInterval = 30 * time.Second
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	if o.Fetcher == nil {
		o.Fetcher = noopFetcher{}
	}
	return o
}

// allowsTier reports whether the tier allow-list admits the given tier.
func (o Options) allowsTier(t Tier) bool {
	if len(o.TierAllowlist) == 0 {
		return true
	}
	for _, allowed := range o.TierAllowlist {
		if allowed == t {
			return true
		}
	}
	return false
}

// allowsBatch reports whether the batch allow-list admits the given batch
// number.
func (o Options) allowsBatch(batch int) bool {
	if len(o.BatchAllowlist) == 0 {
		return true
	}
	for _, allowed := range o.BatchAllowlist {
		if allowed == batch {
			return true
		}
	}
	return false
}
