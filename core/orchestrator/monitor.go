package orchestrator

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// healthMonitor re-validates liveness of ready features on a recurring timer,
// decoupled from any in-flight initialization. Overlapping ticks are guarded
// by a tick-in-progress flag: a tick that finds the previous one still
// running is dropped, not queued.
type healthMonitor struct {
	o        *TierOrchestrator
	interval time.Duration

	startOnce sync.Once
	stopOnce  sync.Once
	done      chan struct{}
	ticking   atomic.Bool
}

func newHealthMonitor(o *TierOrchestrator, interval time.Duration) *healthMonitor {
	return &healthMonitor{
		o:        o,
		interval: interval,
		done:     make(chan struct{}),
	}
}

func (m *healthMonitor) start() {
	m.startOnce.Do(func() {
		go m.loop()
	})
}

func (m *healthMonitor) stop() {
	m.stopOnce.Do(func() {
		close(m.done)
	})
}

func (m *healthMonitor) loop() {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-m.done:
			return
		case <-ticker.C:
			if !m.ticking.CompareAndSwap(false, true) {
				continue
			}
			m.tick(context.Background())
			m.ticking.Store(false)
		}
	}
}

// probeConcurrency bounds how many feature probes run at once within a tick.
const probeConcurrency = 4

// tick probes every ready feature once, with bounded concurrency so one slow
// probe does not starve the rest of the tier. A failed probe demotes the
// feature per the criticality rule and fires the error hook; there is no
// retry within the tick, the next tick re-probes. Disabled and
// never-initialized features are skipped.
func (m *healthMonitor) tick(ctx context.Context) {
	o := m.o
	now := time.Now()

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(probeConcurrency)

	for _, id := range o.reg.ids() {
		id := id
		e, _ := o.reg.lookup(id)
		if !e.Enabled() || e.Status() != StatusReady {
			continue
		}

		e.touchHealthCheck(now)
		g.Go(func() error {
			if m.probe(ctx, e) {
				return nil
			}

			e.setError(ErrProbeFailed)
			if e.desc.Critical {
				o.transition(e, StatusFailed)
			} else {
				o.transition(e, StatusDegraded)
			}
			o.logger.Warn("liveness probe failed",
				zap.String("feature", id),
				zap.Bool("critical", e.desc.Critical),
			)
			if o.opts.Hooks.OnError != nil {
				o.opts.Hooks.OnError(o.tier, id, ErrProbeFailed)
			}
			return nil
		})
	}
	_ = g.Wait()

	o.metricsSetTier(o.computeState(), -1)
}

// probe runs the baseline instance-existence check, then the feature's own
// probe when it declares one.
func (m *healthMonitor) probe(ctx context.Context, e *entry) bool {
	inst := e.Instance()
	if inst == nil {
		return false
	}
	if e.desc.Probe == nil {
		return true
	}
	return e.desc.Probe(ctx, inst)
}
