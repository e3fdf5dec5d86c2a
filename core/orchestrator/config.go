package orchestrator

import (
	"strconv"
	"strings"
	"time"
)

// Config is the environment-facing configuration for the orchestrator. It
// carries only scalar knobs; code-level options (hooks, fetcher, logger) are
// set by the caller that builds the orchestrators.
type Config struct {
	// FailFast stops the remaining batch when a critical feature fails in
	// sequential mode.
	FailFast bool `mapstructure:"fail_fast" default:"false"`
	// InitializeOptional controls whether the optional tier initializes.
	InitializeOptional bool `mapstructure:"initialize_optional" default:"true"`
	// ContinueOnCoreFailure lets the advanced tier initialize even when
	// the core tier failed.
	ContinueOnCoreFailure bool `mapstructure:"continue_on_core_failure" default:"false"`
	// FeatureTimeoutSeconds is the per-feature construction budget.
	FeatureTimeoutSeconds int `mapstructure:"feature_timeout_seconds" default:"30"`
	// HealthChecks enables the periodic health monitor.
	HealthChecks bool `mapstructure:"health_checks" default:"true"`
	// HealthIntervalSeconds is the health monitor tick interval.
	HealthIntervalSeconds int `mapstructure:"health_interval_seconds" default:"30"`
	// SequentialBatches forces strictly sequential batch execution.
	SequentialBatches bool `mapstructure:"sequential_batches" default:"false"`
	// LazyLoading enables heavy-dependency loading.
	LazyLoading bool `mapstructure:"lazy_loading" default:"true"`
	// TierAllowlist is a comma-separated list of tiers to initialize.
	// Empty means all tiers.
	TierAllowlist string `mapstructure:"tier_allowlist" default:""`
	// BatchAllowlist is a comma-separated list of batch numbers to run.
	// Empty means all batches.
	BatchAllowlist string `mapstructure:"batch_allowlist" default:""`
}

// Options converts the scalar configuration into runtime options. Entries of
// the allowlists that do not parse are dropped.
func (c Config) Options() Options {
	var tiers []Tier
	for _, part := range splitList(c.TierAllowlist) {
		if t, ok := ParseTier(part); ok {
			tiers = append(tiers, t)
		}
	}
	var batches []int
	for _, part := range splitList(c.BatchAllowlist) {
		if n, err := strconv.Atoi(part); err == nil && n >= 0 {
			batches = append(batches, n)
		}
	}

	return Options{
		FailFast:              c.FailFast,
		InitializeOptional:    c.InitializeOptional,
		ContinueOnCoreFailure: c.ContinueOnCoreFailure,
		FeatureTimeout:        time.Duration(c.FeatureTimeoutSeconds) * time.Second,
		HealthChecks:          c.HealthChecks,
		HealthInterval:        time.Duration(c.HealthIntervalSeconds) * time.Second,
		SequentialBatches:     c.SequentialBatches,
		LazyLoading:           c.LazyLoading,
		TierAllowlist:         tiers,
		BatchAllowlist:        batches,
	}
}

func splitList(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
