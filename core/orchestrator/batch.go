package orchestrator

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"
)

// batchCollector gathers per-feature outcomes of one batch. Fan-out mode
// writes to it from multiple goroutines.
type batchCollector struct {
	mu  sync.Mutex
	res BatchResult
}

func newBatchCollector(number int) *batchCollector {
	return &batchCollector{res: BatchResult{
		Batch:       number,
		Initialized: []string{},
		Degraded:    []string{},
		Failed:      []string{},
		LazyLoaded:  []string{},
		Skipped:     []string{},
	}}
}

func (c *batchCollector) initialized(id string) {
	c.mu.Lock()
	c.res.Initialized = append(c.res.Initialized, id)
	c.mu.Unlock()
}

func (c *batchCollector) degraded(id string) {
	c.mu.Lock()
	c.res.Degraded = append(c.res.Degraded, id)
	c.mu.Unlock()
}

func (c *batchCollector) failed(id string) {
	c.mu.Lock()
	c.res.Failed = append(c.res.Failed, id)
	c.mu.Unlock()
}

func (c *batchCollector) lazyLoaded(id string) {
	c.mu.Lock()
	c.res.LazyLoaded = append(c.res.LazyLoaded, id)
	c.mu.Unlock()
}

func (c *batchCollector) skipped(id string) {
	c.mu.Lock()
	c.res.Skipped = append(c.res.Skipped, id)
	c.mu.Unlock()
}

// runBatch executes one batch. Fan-out mode issues every feature constructor
// concurrently and joins on completion of all of them ("settle all, then
// report"); one failure never cancels siblings. Sequential mode runs features
// in resolver order and, with fail-fast enabled, stops the remaining batch
// after a critical failure.
func (o *TierOrchestrator) runBatch(ctx context.Context, g batchGroup, pool *ants.Pool) BatchResult {
	start := time.Now()
	col := newBatchCollector(g.number)

	if o.opts.SequentialBatches {
		for i, id := range g.ids {
			e, _ := o.reg.lookup(id)
			ok := o.runFeature(ctx, e, col)
			if !ok && e.desc.Critical && o.opts.FailFast {
				for _, rest := range g.ids[i+1:] {
					col.skipped(rest)
				}
				o.logger.Warn("batch stopped by fail-fast",
					zap.Int("batch", g.number),
					zap.String("feature", id),
				)
				break
			}
		}
	} else {
		var wg sync.WaitGroup
		for _, id := range g.ids {
			e, _ := o.reg.lookup(id)
			wg.Add(1)
			task := func() {
				defer wg.Done()
				o.runFeature(ctx, e, col)
			}
			if pool == nil || pool.Submit(task) != nil {
				go task()
			}
		}
		wg.Wait()
	}

	col.res.Duration = time.Since(start)
	return col.res
}

// runFeature drives a single feature through dependency check, lazy load and
// construction. It returns false when the feature failed or was demoted.
func (o *TierOrchestrator) runFeature(ctx context.Context, e *entry, col *batchCollector) bool {
	d := e.desc

	if !e.Enabled() {
		o.transition(e, StatusDisabled)
		col.skipped(d.ID)
		return true
	}

	// Dependencies are re-checked at the moment construction begins, never
	// assumed from batch ordering.
	for _, dep := range d.Dependencies {
		de, ok := o.reg.lookup(dep)
		if !ok {
			return o.routeFailure(e, col, &DependencyError{
				FeatureID:    d.ID,
				DependencyID: dep,
				Reason:       "not registered in tier",
			})
		}
		if st := de.Status(); st != StatusReady {
			return o.routeFailure(e, col, &DependencyError{
				FeatureID:    d.ID,
				DependencyID: dep,
				Reason:       fmt.Sprintf("status %s", st),
			})
		}
	}

	if d.RequiresHeavyDeps && o.opts.LazyLoading {
		o.transition(e, StatusLazyLoading)
		if err := o.lazy.Load(ctx, d.ID, d.HeavyDeps); err != nil {
			return o.routeFailure(e, col, err)
		}
		e.markHeavyLoaded()
		col.lazyLoaded(d.ID)
	}

	o.transition(e, StatusInitializing)
	started := time.Now()
	inst, err := o.construct(ctx, e)
	o.metricsObserveInit(time.Since(started), err)
	if err != nil {
		return o.routeFailure(e, col, err)
	}

	e.setInstance(inst)
	e.setError(nil)
	o.transition(e, StatusReady)
	col.initialized(d.ID)
	o.logger.Info("feature ready",
		zap.String("feature", d.ID),
		zap.Int("batch", d.Batch),
		zap.Duration("took", time.Since(started)),
	)
	return true
}

// construct races the feature constructor against the per-feature timeout.
// Losing the race does not kill the constructor: it may still complete later
// into the buffered channel, where its result is discarded. This is a known,
// accepted resource-cleanup gap.
func (o *TierOrchestrator) construct(ctx context.Context, e *entry) (any, error) {
	type outcome struct {
		inst any
		err  error
	}
	ch := make(chan outcome, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				ch <- outcome{err: fmt.Errorf("constructor panic: %v", r)}
			}
		}()
		inst, err := e.desc.Init(ctx)
		ch <- outcome{inst: inst, err: err}
	}()

	timer := time.NewTimer(o.opts.FeatureTimeout)
	defer timer.Stop()

	select {
	case out := <-ch:
		return out.inst, out.err
	case <-timer.C:
		return nil, &TimeoutError{FeatureID: e.desc.ID, Timeout: o.opts.FeatureTimeout}
	}
}

// routeFailure applies the criticality rule: critical features fail, optional
// features are demoted to degraded so the batch never aborts on them.
func (o *TierOrchestrator) routeFailure(e *entry, col *batchCollector, err error) bool {
	e.setError(err)
	if e.desc.Critical {
		o.transition(e, StatusFailed)
		col.failed(e.desc.ID)
	} else {
		o.transition(e, StatusDegraded)
		col.degraded(e.desc.ID)
	}

	o.logger.Warn("feature initialization failed",
		zap.String("feature", e.desc.ID),
		zap.Bool("critical", e.desc.Critical),
		zap.Error(err),
	)
	if o.opts.Hooks.OnError != nil {
		o.opts.Hooks.OnError(o.tier, e.desc.ID, err)
	}
	return false
}
