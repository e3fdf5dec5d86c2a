package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Combined composes the three tier orchestrators and sequences their
// initialization: core always first, advanced only after core success (unless
// overridden), optional always and in full isolation. Nothing the optional
// tier does is observable as a fault of the platform.
type Combined struct {
	core     *TierOrchestrator
	advanced *TierOrchestrator
	optional *TierOrchestrator
	opts     Options
	logger   *zap.Logger

	mu      sync.Mutex
	result  *CombinedResult
	initErr error
}

// NewCombined composes three tier orchestrators. The options govern tier
// sequencing; each tier keeps the options it was built with.
func NewCombined(core, advanced, optional *TierOrchestrator, opts Options) *Combined {
	opts = opts.normalize()
	return &Combined{
		core:     core,
		advanced: advanced,
		optional: optional,
		opts:     opts,
		logger:   opts.Logger.Named("orchestrator").With(zap.String("tier", "combined")),
	}
}

// TierOrchestrator returns the orchestrator governing the given tier.
func (c *Combined) TierOrchestrator(t Tier) *TierOrchestrator {
	switch t {
	case TierCore:
		return c.core
	case TierAdvanced:
		return c.advanced
	case TierOptional:
		return c.optional
	default:
		return nil
	}
}

// Initialize runs the tier sequence. It is idempotent like the per-tier
// Initialize. The returned error is reserved for unrecoverable core or
// advanced tier conditions (a dependency cycle); optional tier errors are
// always converted into an all-failed tier result instead.
func (c *Combined) Initialize(ctx context.Context) (*CombinedResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.result != nil {
		return c.result, nil
	}
	if c.initErr != nil {
		return nil, c.initErr
	}

	start := time.Now()
	res := &CombinedResult{Tiers: map[Tier]*InitResult{}}
	coreOK, advancedOK := true, true

	if c.opts.allowsTier(TierCore) {
		coreRes, err := c.core.Initialize(ctx)
		if err != nil {
			c.initErr = err
			return nil, err
		}
		res.Tiers[TierCore] = coreRes
		coreOK = coreRes.Success
	}

	if c.opts.allowsTier(TierAdvanced) {
		if coreOK || c.opts.ContinueOnCoreFailure {
			advRes, err := c.advanced.Initialize(ctx)
			if err != nil {
				c.initErr = err
				return nil, err
			}
			res.Tiers[TierAdvanced] = advRes
			advancedOK = advRes.Success
		} else {
			c.logger.Warn("advanced tier skipped after core failure")
		}
	}

	if c.opts.InitializeOptional && c.opts.allowsTier(TierOptional) {
		res.Tiers[TierOptional] = c.initializeOptional(ctx)
	}

	res.Success = coreOK && advancedOK
	res.Overall = c.overall()
	res.Duration = time.Since(start)
	c.result = res

	c.logger.Info("platform initialized",
		zap.Bool("success", res.Success),
		zap.String("overall", string(res.Overall)),
		zap.Duration("took", res.Duration),
	)
	return res, nil
}

// initializeOptional shields the caller from every possible optional-tier
// outcome: errors and panics become an all-failed result for that tier.
func (c *Combined) initializeOptional(ctx context.Context) (res *InitResult) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("optional tier panicked during initialization",
				zap.Any("panic", r))
			res = c.allFailedOptional(fmt.Errorf("panic: %v", r))
		}
	}()

	optRes, err := c.optional.Initialize(ctx)
	if err != nil {
		c.logger.Error("optional tier failed to initialize", zap.Error(err))
		return c.allFailedOptional(err)
	}
	return optRes
}

func (c *Combined) allFailedOptional(cause error) *InitResult {
	ids := c.optional.reg.ids()
	for _, id := range ids {
		if e, ok := c.optional.reg.lookup(id); ok {
			e.setError(cause)
			c.optional.transition(e, StatusFailed)
		}
	}
	return &InitResult{
		Tier:        TierOptional,
		Success:     false,
		State:       TierCritical,
		Initialized: []string{},
		Degraded:    []string{},
		Failed:      ids,
		LazyLoaded:  []string{},
		Skipped:     []string{},
	}
}

// overall derives the platform verdict with tier precedence: a core critical
// failure dominates, core or advanced impairment degrades, and the optional
// tier never participates. Its health cannot elevate the verdict.
func (c *Combined) overall() Verdict {
	coreState := c.core.computeState()
	advState := c.advanced.computeState()

	if coreState == TierCritical {
		return VerdictCritical
	}
	if coreState == TierDegraded || advState == TierDegraded || advState == TierCritical {
		return VerdictDegraded
	}
	return VerdictHealthy
}

// Healthy reports whether the platform is fit for use: the overall verdict is
// not critical.
func (c *Combined) Healthy() bool {
	return c.overall() != VerdictCritical
}

// HealthReport aggregates the per-tier snapshots into the combined report.
func (c *Combined) HealthReport() CombinedReport {
	report := CombinedReport{
		Tiers:       make([]TierReport, 0, 3),
		Overall:     c.overall(),
		GeneratedAt: time.Now(),
	}
	for _, o := range []*TierOrchestrator{c.core, c.advanced, c.optional} {
		tr := o.HealthReport()
		report.Tiers = append(report.Tiers, tr)
		report.Summary.add(tr.Summary)
	}
	return report
}

// Feature finds a ready feature across the tiers, core first.
func (c *Combined) Feature(id string) (any, error) {
	return combinedLookup(c, id, func(o *TierOrchestrator) (any, error) {
		return o.Feature(id)
	})
}

// FeatureStatus finds a feature's status across the tiers.
func (c *Combined) FeatureStatus(id string) (Status, error) {
	return combinedLookup(c, id, func(o *TierOrchestrator) (Status, error) {
		return o.FeatureStatus(id)
	})
}

// FeatureHealth finds a feature's health snapshot across the tiers.
func (c *Combined) FeatureHealth(id string) (FeatureHealth, error) {
	return combinedLookup(c, id, func(o *TierOrchestrator) (FeatureHealth, error) {
		return o.FeatureHealth(id)
	})
}

// EnableFeature switches a feature flag on, wherever the feature lives.
func (c *Combined) EnableFeature(id string) error {
	_, err := combinedLookup(c, id, func(o *TierOrchestrator) (struct{}, error) {
		return struct{}{}, o.Enable(id)
	})
	return err
}

// DisableFeature switches a feature flag off, wherever the feature lives.
func (c *Combined) DisableFeature(id string) error {
	_, err := combinedLookup(c, id, func(o *TierOrchestrator) (struct{}, error) {
		return struct{}{}, o.Disable(id)
	})
	return err
}

// combinedLookup tries each tier in precedence order, stopping at the first
// tier that knows the feature.
func combinedLookup[T any](c *Combined, id string, fn func(*TierOrchestrator) (T, error)) (T, error) {
	var zero T
	for _, o := range []*TierOrchestrator{c.core, c.advanced, c.optional} {
		out, err := fn(o)
		var unknown *UnknownFeatureError
		if errors.As(err, &unknown) {
			continue
		}
		return out, err
	}
	return zero, &UnknownFeatureError{FeatureID: id}
}

// Shutdown stops the health monitors of all tiers.
func (c *Combined) Shutdown() {
	c.core.Shutdown()
	c.advanced.Shutdown()
	c.optional.Shutdown()
}
