package orchestrator

import (
	"context"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"
)

// TierState is the lifecycle state of a tier orchestrator instance.
type TierState string

const (
	// TierUninitialized means Initialize has not been called.
	TierUninitialized TierState = "uninitialized"
	// TierInitializing means batches are currently running.
	TierInitializing TierState = "initializing"
	// TierHealthy means initialization completed with every enabled
	// feature ready.
	TierHealthy TierState = "healthy"
	// TierDegraded means some non-critical feature is impaired.
	TierDegraded TierState = "degraded"
	// TierCritical means a critical feature failed.
	TierCritical TierState = "critical"
)

// verdict maps a tier state onto the health verdict scale.
func (s TierState) verdict() Verdict {
	switch s {
	case TierCritical:
		return VerdictCritical
	case TierDegraded:
		return VerdictDegraded
	default:
		return VerdictHealthy
	}
}

// TierOrchestrator owns the registry of one tier and drives its features
// through registration, dependency-ordered batched initialization, lazy
// loading and periodic health monitoring.
type TierOrchestrator struct {
	tier    Tier
	reg     *Registry
	opts    Options
	lazy    *lazyLoader
	logger  *zap.Logger
	monitor *healthMonitor

	stateMu sync.RWMutex
	state   TierState

	initMu  sync.Mutex
	result  *InitResult
	initErr error
}

// New creates a tier orchestrator with its own registry. Most callers want
// Shared; New exists for composition and tests.
func New(tier Tier, opts Options) *TierOrchestrator {
	opts = opts.normalize()
	o := &TierOrchestrator{
		tier:   tier,
		reg:    NewRegistry(tier),
		opts:   opts,
		logger: opts.Logger.Named("orchestrator").With(zap.String("tier", string(tier))),
		state:  TierUninitialized,
	}
	o.lazy = newLazyLoader(tier, opts)
	o.lazy.logger = o.logger
	o.monitor = newHealthMonitor(o, opts.HealthInterval)
	return o
}

// Process-wide shared instances, one per tier, created lazily on first
// access. The explicit slot-plus-reset factory keeps global state out of the
// business logic while still giving every caller one shared lifecycle.
var (
	sharedMu sync.Mutex
	shared   = map[Tier]*TierOrchestrator{}
)

// Shared returns the process-wide orchestrator for a tier, creating it with
// the given options on first access. Later calls return the existing
// instance regardless of options.
func Shared(tier Tier, opts Options) *TierOrchestrator {
	sharedMu.Lock()
	defer sharedMu.Unlock()
	if o, ok := shared[tier]; ok {
		return o
	}
	o := New(tier, opts)
	shared[tier] = o
	return o
}

// ResetShared discards the shared instance of a tier. Only tests call this.
func ResetShared(tier Tier) {
	sharedMu.Lock()
	defer sharedMu.Unlock()
	if o, ok := shared[tier]; ok {
		o.Shutdown()
		delete(shared, tier)
	}
}

// Tier returns the tier this orchestrator governs.
func (o *TierOrchestrator) Tier() Tier { return o.tier }

// Register adds a feature descriptor to the tier.
func (o *TierOrchestrator) Register(d Descriptor) error {
	return o.reg.Register(d)
}

// State returns the current lifecycle state.
func (o *TierOrchestrator) State() TierState {
	o.stateMu.RLock()
	defer o.stateMu.RUnlock()
	return o.state
}

func (o *TierOrchestrator) setState(s TierState) {
	o.stateMu.Lock()
	o.state = s
	o.stateMu.Unlock()
}

// Initialize runs the tier's batches in resolver order and starts the health
// monitor once the last batch settles. It is idempotent: a second call
// without a reset returns the first call's result without re-running any
// constructor. Ordinary feature failures are reported in the result; the
// returned error is reserved for unrecoverable conditions such as a
// dependency cycle.
func (o *TierOrchestrator) Initialize(ctx context.Context) (*InitResult, error) {
	o.initMu.Lock()
	defer o.initMu.Unlock()

	if o.result != nil {
		return o.result, nil
	}
	if o.initErr != nil {
		return nil, o.initErr
	}

	o.setState(TierInitializing)
	start := time.Now()

	order, err := resolveOrder(o.reg)
	if err != nil {
		o.setState(TierCritical)
		o.initErr = err
		o.logger.Error("dependency resolution failed", zap.Error(err))
		return nil, err
	}

	res := &InitResult{
		Tier:        o.tier,
		Initialized: []string{},
		Degraded:    []string{},
		Failed:      []string{},
		LazyLoaded:  []string{},
		Skipped:     []string{},
	}

	groups := groupBatches(o.reg, order)
	pool := o.newPool(groups)
	if pool != nil {
		defer pool.Release()
	}

	for _, g := range groups {
		if !o.opts.allowsBatch(g.number) {
			res.Skipped = append(res.Skipped, g.ids...)
			continue
		}
		br := o.runBatch(ctx, g, pool)
		res.Batches = append(res.Batches, br)
		res.Initialized = append(res.Initialized, br.Initialized...)
		res.Degraded = append(res.Degraded, br.Degraded...)
		res.Failed = append(res.Failed, br.Failed...)
		res.LazyLoaded = append(res.LazyLoaded, br.LazyLoaded...)
		res.Skipped = append(res.Skipped, br.Skipped...)
	}

	res.Duration = time.Since(start)
	res.Success = len(res.Failed) == 0
	state := o.computeState()
	res.State = state
	o.setState(state)
	o.result = res
	o.metricsSetTier(state, len(res.Initialized))

	if o.opts.HealthChecks {
		o.monitor.start()
	}

	o.logger.Info("tier initialized",
		zap.String("state", string(state)),
		zap.Int("ready", len(res.Initialized)),
		zap.Int("degraded", len(res.Degraded)),
		zap.Int("failed", len(res.Failed)),
		zap.Duration("took", res.Duration),
	)
	return res, nil
}

// newPool sizes a goroutine pool for fan-out mode to the largest batch.
func (o *TierOrchestrator) newPool(groups []batchGroup) *ants.Pool {
	if o.opts.SequentialBatches {
		return nil
	}
	size := 0
	for _, g := range groups {
		if len(g.ids) > size {
			size = len(g.ids)
		}
	}
	if size == 0 {
		return nil
	}
	pool, err := ants.NewPool(size)
	if err != nil {
		return nil
	}
	return pool
}

// Result returns the memoized initialization result, or nil before
// Initialize completes.
func (o *TierOrchestrator) Result() *InitResult {
	o.initMu.Lock()
	defer o.initMu.Unlock()
	return o.result
}

// transition moves a feature to a new status and fires the status-change
// hook.
func (o *TierOrchestrator) transition(e *entry, to Status) {
	from := e.setStatus(to)
	if from == to {
		return
	}
	if o.opts.Hooks.OnStatusChange != nil {
		o.opts.Hooks.OnStatusChange(o.tier, e.desc.ID, from, to)
	}
}

// computeState derives the tier state from feature statuses: any enabled
// critical feature failed means critical; any degraded feature means
// degraded; otherwise healthy. Disabled features are excluded.
func (o *TierOrchestrator) computeState() TierState {
	state := TierHealthy
	for _, id := range o.reg.ids() {
		e, _ := o.reg.lookup(id)
		if !e.Enabled() {
			continue
		}
		switch e.Status() {
		case StatusFailed:
			if e.desc.Critical {
				return TierCritical
			}
			state = TierDegraded
		case StatusDegraded:
			state = TierDegraded
		}
	}
	return state
}

// Feature returns the live instance of a ready feature. It returns
// UnknownFeatureError for unregistered IDs, FeatureDisabledError for disabled
// features and NotReadyError otherwise.
func (o *TierOrchestrator) Feature(id string) (any, error) {
	e, ok := o.reg.lookup(id)
	if !ok {
		return nil, &UnknownFeatureError{FeatureID: id}
	}
	if !e.Enabled() || e.Status() == StatusDisabled {
		return nil, &FeatureDisabledError{FeatureID: id}
	}
	if st := e.Status(); st != StatusReady {
		return nil, &NotReadyError{FeatureID: id, Status: st}
	}
	return e.Instance(), nil
}

// FeatureStatus returns the current status of a feature.
func (o *TierOrchestrator) FeatureStatus(id string) (Status, error) {
	e, ok := o.reg.lookup(id)
	if !ok {
		return "", &UnknownFeatureError{FeatureID: id}
	}
	return e.Status(), nil
}

// FeatureHealth returns the health snapshot of a single feature.
func (o *TierOrchestrator) FeatureHealth(id string) (FeatureHealth, error) {
	e, ok := o.reg.lookup(id)
	if !ok {
		return FeatureHealth{}, &UnknownFeatureError{FeatureID: id}
	}
	return e.health(), nil
}

// Enable switches a feature flag on. A previously disabled feature that
// still holds its instance becomes ready again; one that never initialized
// returns to pending.
func (o *TierOrchestrator) Enable(id string) error {
	e, ok := o.reg.lookup(id)
	if !ok {
		return &UnknownFeatureError{FeatureID: id}
	}
	e.setEnabled(true)
	if e.Status() == StatusDisabled {
		if e.Instance() != nil {
			o.transition(e, StatusReady)
		} else {
			o.transition(e, StatusPending)
		}
	}
	if o.opts.Hooks.OnToggle != nil {
		o.opts.Hooks.OnToggle(o.tier, id, true)
	}
	return nil
}

// Disable switches a feature flag off. A ready feature moves to disabled but
// keeps its instance. Dependents are not cascaded; they keep running against
// the instance they already hold.
func (o *TierOrchestrator) Disable(id string) error {
	e, ok := o.reg.lookup(id)
	if !ok {
		return &UnknownFeatureError{FeatureID: id}
	}
	e.setEnabled(false)
	if st := e.Status(); st == StatusReady || st == StatusPending {
		o.transition(e, StatusDisabled)
	}
	if o.opts.Hooks.OnToggle != nil {
		o.opts.Hooks.OnToggle(o.tier, id, false)
	}
	return nil
}

// Healthy reports whether the tier's critical path is intact: no enabled
// critical feature has failed. Disabled features are excluded.
func (o *TierOrchestrator) Healthy() bool {
	for _, id := range o.reg.ids() {
		e, _ := o.reg.lookup(id)
		if e.desc.Critical && e.Enabled() && e.Status() == StatusFailed {
			return false
		}
	}
	return true
}

// HealthReport builds a point-in-time snapshot of the tier.
func (o *TierOrchestrator) HealthReport() TierReport {
	report := TierReport{
		Tier:        o.tier,
		State:       o.State(),
		Features:    make([]FeatureHealth, 0, o.reg.Len()),
		GeneratedAt: time.Now(),
	}

	for _, id := range o.reg.ids() {
		e, _ := o.reg.lookup(id)
		h := e.health()
		report.Features = append(report.Features, h)

		report.Summary.Total++
		switch h.Status {
		case StatusReady:
			report.Summary.Ready++
		case StatusDegraded:
			report.Summary.Degraded++
		case StatusFailed:
			report.Summary.Failed++
		case StatusDisabled:
			report.Summary.Disabled++
		case StatusLazyLoading:
			report.Summary.LazyLoading++
		}
	}

	report.Verdict = o.computeState().verdict()
	return report
}

// Shutdown stops the health monitor. It does not tear down feature
// instances.
func (o *TierOrchestrator) Shutdown() {
	o.monitor.stop()
}

// Reset returns the orchestrator to its uninitialized state so Initialize
// can run again. Only tests use this; production code relies on the
// once-only semantics.
func (o *TierOrchestrator) Reset() {
	o.monitor.stop()
	o.initMu.Lock()
	o.result = nil
	o.initErr = nil
	o.initMu.Unlock()
	o.reg.reset()
	o.setState(TierUninitialized)
	o.monitor = newHealthMonitor(o, o.opts.HealthInterval)
}
