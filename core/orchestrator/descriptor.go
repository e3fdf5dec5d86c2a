package orchestrator

import (
	"context"
	"sync"
	"time"
)

// Tier identifies one of the three criticality levels of the platform.
// Each tier is governed by its own orchestrator instance.
type Tier string

const (
	// TierCore contains features the platform cannot run without.
	TierCore Tier = "core"
	// TierAdvanced contains features that enrich the platform but whose
	// absence only degrades it.
	TierAdvanced Tier = "advanced"
	// TierOptional contains best-effort features whose failures must never
	// be observable as a fault of the platform.
	TierOptional Tier = "optional"
)

// ParseTier converts a tier name to a Tier, reporting whether it is one of
// the three known tiers.
func ParseTier(s string) (Tier, bool) {
	switch Tier(s) {
	case TierCore, TierAdvanced, TierOptional:
		return Tier(s), true
	default:
		return "", false
	}
}

// Status is the lifecycle state of a single feature.
type Status string

const (
	// StatusPending means the feature is registered but not yet started.
	StatusPending Status = "pending"
	// StatusInitializing means the feature constructor is running.
	StatusInitializing Status = "initializing"
	// StatusLazyLoading means the feature's heavy dependencies are being
	// fetched. Kept distinct from initializing so health reports can tell
	// "slow because fetching heavy assets" from "stuck".
	StatusLazyLoading Status = "lazy_loading"
	// StatusReady means the feature initialized and holds a live instance.
	StatusReady Status = "ready"
	// StatusDegraded means a non-critical feature failed and was demoted.
	StatusDegraded Status = "degraded"
	// StatusFailed means a critical feature failed.
	StatusFailed Status = "failed"
	// StatusDisabled means the feature flag is off.
	StatusDisabled Status = "disabled"
)

// InitFunc constructs a feature instance. It may block; the batch executor
// races it against the configured per-feature timeout.
type InitFunc func(ctx context.Context) (any, error)

// ProbeFunc reports whether a live instance is still healthy. It is optional;
// the baseline probe is instance existence.
type ProbeFunc func(ctx context.Context, instance any) bool

// Descriptor holds the immutable registration metadata for one feature.
type Descriptor struct {
	// ID uniquely identifies the feature within its tier.
	ID string `validate:"required"`
	// Name is the human-readable feature name.
	Name string `validate:"required"`
	// Tier is the criticality level the feature belongs to.
	Tier Tier `validate:"required,oneof=core advanced optional"`
	// Batch groups same-tier features for ordered parallel execution.
	Batch int `validate:"gte=0"`
	// Dependencies lists feature IDs within the same tier that must be
	// ready before this feature may start. Cross-tier dependencies are not
	// supported.
	Dependencies []string
	// Critical features may reach failed status; non-critical features are
	// demoted to degraded instead.
	Critical bool
	// RequiresHeavyDeps marks the feature for lazy loading before
	// construction.
	RequiresHeavyDeps bool
	// HeavyDeps names the heavy runtime dependencies, used for lazy-load
	// fetching and progress reporting.
	HeavyDeps []string
	// Init is the feature constructor.
	Init InitFunc `validate:"required"`
	// Probe is the optional liveness probe used by the health monitor.
	Probe ProbeFunc
}

// entry pairs a descriptor with its mutable runtime state. State is mutated
// only by the tier orchestrator (initializer and health monitor); callers
// read it through accessors.
type entry struct {
	desc Descriptor

	mu          sync.RWMutex
	status      Status
	enabled     bool
	instance    any
	lastErr     error
	lastCheck   time.Time
	heavyLoaded bool
}

func newEntry(d Descriptor) *entry {
	return &entry{desc: d, status: StatusPending, enabled: true}
}

func (e *entry) Status() Status {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.status
}

func (e *entry) Enabled() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.enabled
}

func (e *entry) Instance() any {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.instance
}

func (e *entry) LastError() error {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.lastErr
}

func (e *entry) setStatus(s Status) (old Status) {
	e.mu.Lock()
	old = e.status
	e.status = s
	e.mu.Unlock()
	return old
}

func (e *entry) setEnabled(enabled bool) {
	e.mu.Lock()
	e.enabled = enabled
	e.mu.Unlock()
}

func (e *entry) setInstance(inst any) {
	e.mu.Lock()
	e.instance = inst
	e.mu.Unlock()
}

func (e *entry) setError(err error) {
	e.mu.Lock()
	e.lastErr = err
	e.mu.Unlock()
}

func (e *entry) markHeavyLoaded() {
	e.mu.Lock()
	e.heavyLoaded = true
	e.mu.Unlock()
}

func (e *entry) touchHealthCheck(at time.Time) {
	e.mu.Lock()
	e.lastCheck = at
	e.mu.Unlock()
}

// health builds the point-in-time health snapshot for this feature.
func (e *entry) health() FeatureHealth {
	e.mu.RLock()
	defer e.mu.RUnlock()

	h := FeatureHealth{
		ID:        e.desc.ID,
		Status:    e.status,
		Healthy:   e.status == StatusReady,
		Enabled:   e.enabled,
		Timestamp: e.lastCheck,
	}
	if e.lastErr != nil {
		h.Message = e.lastErr.Error()
	}
	if e.desc.RequiresHeavyDeps {
		loaded := e.heavyLoaded
		h.HeavyDepsLoaded = &loaded
	}
	return h
}
