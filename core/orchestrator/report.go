package orchestrator

import "time"

// Verdict is the aggregate health judgment for a tier or for the whole
// platform.
type Verdict string

const (
	// VerdictHealthy means every enabled feature on the critical path is
	// ready.
	VerdictHealthy Verdict = "healthy"
	// VerdictDegraded means some non-critical capability is impaired.
	VerdictDegraded Verdict = "degraded"
	// VerdictCritical means a critical feature failed.
	VerdictCritical Verdict = "critical"
)

// FeatureHealth is the per-feature slice of a health report.
type FeatureHealth struct {
	// ID is the feature identifier.
	ID string `json:"id"`
	// Status is the current lifecycle status.
	Status Status `json:"status"`
	// Healthy is true only when the feature is ready.
	Healthy bool `json:"healthy"`
	// Enabled reflects the runtime feature flag.
	Enabled bool `json:"enabled"`
	// Message carries the last recorded error, if any.
	Message string `json:"message,omitempty"`
	// Timestamp is the time of the last health check, zero before the
	// first tick.
	Timestamp time.Time `json:"timestamp"`
	// HeavyDepsLoaded reports lazy-load completion; only present for
	// features that require heavy dependencies.
	HeavyDepsLoaded *bool `json:"heavy_dependencies_loaded,omitempty"`
}

// TierSummary aggregates feature counts by status.
type TierSummary struct {
	// Total is the number of registered features.
	Total int `json:"total"`
	// Ready counts features holding a live instance.
	Ready int `json:"ready"`
	// Degraded counts demoted non-critical features.
	Degraded int `json:"degraded"`
	// Failed counts failed critical features.
	Failed int `json:"failed"`
	// Disabled counts features switched off by flag.
	Disabled int `json:"disabled"`
	// LazyLoading counts features currently fetching heavy dependencies.
	LazyLoading int `json:"lazy_loading"`
}

func (s *TierSummary) add(other TierSummary) {
	s.Total += other.Total
	s.Ready += other.Ready
	s.Degraded += other.Degraded
	s.Failed += other.Failed
	s.Disabled += other.Disabled
	s.LazyLoading += other.LazyLoading
}

// TierReport is the health snapshot of one tier.
type TierReport struct {
	// Tier identifies the reported tier.
	Tier Tier `json:"tier"`
	// State is the orchestrator's lifecycle state.
	State TierState `json:"state"`
	// Verdict is the tier's aggregate health judgment.
	Verdict Verdict `json:"verdict"`
	// Features holds the per-feature snapshots in registration order.
	Features []FeatureHealth `json:"features"`
	// Summary aggregates feature counts by status.
	Summary TierSummary `json:"summary"`
	// GeneratedAt is when this snapshot was taken.
	GeneratedAt time.Time `json:"generated_at"`
}

// CombinedReport aggregates the health of all tiers.
type CombinedReport struct {
	// Tiers holds per-tier reports in precedence order (core first).
	Tiers []TierReport `json:"tiers"`
	// Summary aggregates feature counts across all tiers.
	Summary TierSummary `json:"summary"`
	// Overall is the platform verdict. It is computed from the core and
	// advanced tiers only; the optional tier never elevates it.
	Overall Verdict `json:"overall"`
	// GeneratedAt is when this snapshot was taken.
	GeneratedAt time.Time `json:"generated_at"`
}

// BatchResult describes the outcome of one batch.
type BatchResult struct {
	// Batch is the batch number.
	Batch int `json:"batch"`
	// Initialized lists features that reached ready.
	Initialized []string `json:"initialized"`
	// Degraded lists non-critical features demoted on error.
	Degraded []string `json:"degraded"`
	// Failed lists critical features that failed.
	Failed []string `json:"failed"`
	// LazyLoaded lists features whose heavy dependencies were loaded.
	LazyLoaded []string `json:"lazy_loaded"`
	// Skipped lists features not attempted (disabled, or cut off by
	// fail-fast).
	Skipped []string `json:"skipped"`
	// Duration is the wall-clock time the batch took.
	Duration time.Duration `json:"duration"`
}

// InitResult is the outcome of initializing one tier. Ordinary feature
// failures are data here, not errors.
type InitResult struct {
	// Tier identifies the initialized tier.
	Tier Tier `json:"tier"`
	// Success is false only when a critical feature failed.
	Success bool `json:"success"`
	// State is the tier state reached after initialization.
	State TierState `json:"state"`
	// Initialized, Degraded, Failed, LazyLoaded and Skipped aggregate the
	// per-batch lists.
	Initialized []string `json:"initialized"`
	Degraded    []string `json:"degraded"`
	Failed      []string `json:"failed"`
	LazyLoaded  []string `json:"lazy_loaded"`
	Skipped     []string `json:"skipped"`
	// Batches holds the per-batch results in execution order.
	Batches []BatchResult `json:"batches"`
	// Duration is the wall-clock time the tier took to initialize.
	Duration time.Duration `json:"duration"`
}

// CombinedResult is the outcome of initializing the whole platform.
type CombinedResult struct {
	// Success is false only when a critical feature of the core or
	// advanced tier failed. The optional tier never flips it.
	Success bool `json:"success"`
	// Overall is the platform health verdict after initialization.
	Overall Verdict `json:"overall"`
	// Tiers maps each initialized tier to its result. Skipped tiers are
	// absent.
	Tiers map[Tier]*InitResult `json:"tiers"`
	// Duration is the wall-clock time of the whole sequence.
	Duration time.Duration `json:"duration"`
}
