package orchestrator

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
)

// AssetFetcher acquires one heavy runtime dependency by name. The storage
// package provides a bundle-store implementation; tests supply fakes.
type AssetFetcher interface {
	Fetch(ctx context.Context, name string) error
}

// noopFetcher satisfies lazy loading for deployments without an asset store.
type noopFetcher struct{}

func (noopFetcher) Fetch(context.Context, string) error { return nil }

const (
	defaultFetchRetries  = 2
	defaultRetryInterval = 500 * time.Millisecond
)

// lazyLoader fetches the heavy dependencies of a feature just before its
// construction, reporting incremental progress. A fetch failure aborts the
// remaining steps for that feature only; sibling features in the same batch
// are unaffected.
type lazyLoader struct {
	tier          Tier
	fetcher       AssetFetcher
	retries       uint64
	retryInterval time.Duration
	onProgress    func(tier Tier, featureID, dependency string, completed, total int)
	logger        *zap.Logger
}

func newLazyLoader(tier Tier, opts Options) *lazyLoader {
	return &lazyLoader{
		tier:          tier,
		fetcher:       opts.Fetcher,
		retries:       defaultFetchRetries,
		retryInterval: defaultRetryInterval,
		onProgress:    opts.Hooks.OnLazyProgress,
		logger:        opts.Logger,
	}
}

// Load fetches each named dependency in order. Each step is retried a small
// bounded number of times before the failure is wrapped into a LazyLoadError.
func (l *lazyLoader) Load(ctx context.Context, featureID string, deps []string) error {
	total := len(deps)
	for i, dep := range deps {
		op := func() error {
			return l.fetcher.Fetch(ctx, dep)
		}
		policy := backoff.WithContext(
			backoff.WithMaxRetries(backoff.NewConstantBackOff(l.retryInterval), l.retries), ctx)
		if err := backoff.Retry(op, policy); err != nil {
			return &LazyLoadError{FeatureID: featureID, Dependency: dep, Err: err}
		}

		l.logger.Debug("heavy dependency loaded",
			zap.String("feature", featureID),
			zap.String("dependency", dep),
			zap.Int("completed", i+1),
			zap.Int("total", total),
		)
		if l.onProgress != nil {
			l.onProgress(l.tier, featureID, dep, i+1, total)
		}
	}
	return nil
}
