package orchestrator

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCombined(opts Options) *Combined {
	core := newTestTier(TierCore, opts)
	advanced := newTestTier(TierAdvanced, opts)
	optional := newTestTier(TierOptional, opts)
	return NewCombined(core, advanced, optional, opts)
}

// Scenario: core all ready, optional's single feature throws synchronously.
// Combined success=true, overall healthy, optional tier shows one degraded
// feature.
func TestCombined_OptionalFailureIsInvisible(t *testing.T) {
	c := newTestCombined(Options{InitializeOptional: true})

	require.NoError(t, c.core.Register(desc(TierCore, "layout", 1, true)))
	broken := desc(TierOptional, "voice", 1, false)
	broken.Init = failingInit(errors.New("synth offline"))
	require.NoError(t, c.optional.Register(broken))

	res, err := c.Initialize(context.Background())
	require.NoError(t, err)

	assert.True(t, res.Success)
	assert.Equal(t, VerdictHealthy, res.Overall)

	optRes := res.Tiers[TierOptional]
	require.NotNil(t, optRes)
	assert.Equal(t, []string{"voice"}, optRes.Degraded)

	report := c.HealthReport()
	assert.Equal(t, VerdictHealthy, report.Overall)
	assert.Equal(t, 1, report.Summary.Degraded)
}

func TestCombined_OptionalCycleConvertedToAllFailed(t *testing.T) {
	c := newTestCombined(Options{InitializeOptional: true})

	require.NoError(t, c.core.Register(desc(TierCore, "layout", 1, true)))
	require.NoError(t, c.optional.Register(desc(TierOptional, "a", 1, false, "b")))
	require.NoError(t, c.optional.Register(desc(TierOptional, "b", 2, false, "a")))

	res, err := c.Initialize(context.Background())
	require.NoError(t, err)

	// The optional tier's unrecoverable error never propagates.
	assert.True(t, res.Success)
	optRes := res.Tiers[TierOptional]
	require.NotNil(t, optRes)
	assert.False(t, optRes.Success)
	assert.ElementsMatch(t, []string{"a", "b"}, optRes.Failed)
}

func TestCombined_CoreFailureSkipsAdvanced(t *testing.T) {
	c := newTestCombined(Options{InitializeOptional: true})

	down := desc(TierCore, "layout", 1, true)
	down.Init = failingInit(errors.New("down"))
	require.NoError(t, c.core.Register(down))

	var advancedAttempted atomic.Bool
	adv := desc(TierAdvanced, "charts", 1, true)
	adv.Init = func(ctx context.Context) (any, error) {
		advancedAttempted.Store(true)
		return struct{}{}, nil
	}
	require.NoError(t, c.advanced.Register(adv))
	require.NoError(t, c.optional.Register(desc(TierOptional, "voice", 1, false)))

	res, err := c.Initialize(context.Background())
	require.NoError(t, err)

	assert.False(t, res.Success)
	assert.Equal(t, VerdictCritical, res.Overall)
	assert.False(t, advancedAttempted.Load())
	assert.NotContains(t, res.Tiers, TierAdvanced)

	// Optional still initialized, independently of the core outcome.
	optRes := res.Tiers[TierOptional]
	require.NotNil(t, optRes)
	assert.Equal(t, []string{"voice"}, optRes.Initialized)
}

func TestCombined_ContinueOnCoreFailureOverride(t *testing.T) {
	c := newTestCombined(Options{InitializeOptional: true, ContinueOnCoreFailure: true})

	down := desc(TierCore, "layout", 1, true)
	down.Init = failingInit(errors.New("down"))
	require.NoError(t, c.core.Register(down))
	require.NoError(t, c.advanced.Register(desc(TierAdvanced, "charts", 1, true)))

	res, err := c.Initialize(context.Background())
	require.NoError(t, err)

	assert.False(t, res.Success)
	advRes := res.Tiers[TierAdvanced]
	require.NotNil(t, advRes)
	assert.Equal(t, []string{"charts"}, advRes.Initialized)
}

func TestCombined_AdvancedDegradationNeverCritical(t *testing.T) {
	c := newTestCombined(Options{InitializeOptional: true})

	require.NoError(t, c.core.Register(desc(TierCore, "layout", 1, true)))
	down := desc(TierAdvanced, "charts", 1, true)
	down.Init = failingInit(errors.New("down"))
	require.NoError(t, c.advanced.Register(down))

	res, err := c.Initialize(context.Background())
	require.NoError(t, err)

	// An advanced critical failure flips success but degrades, never
	// criticalizes, the overall verdict.
	assert.False(t, res.Success)
	assert.Equal(t, VerdictDegraded, res.Overall)
	assert.True(t, c.Healthy())
}

func TestCombined_InitializeOptionalDisabled(t *testing.T) {
	c := newTestCombined(Options{InitializeOptional: false})

	require.NoError(t, c.core.Register(desc(TierCore, "layout", 1, true)))
	require.NoError(t, c.optional.Register(desc(TierOptional, "voice", 1, false)))

	res, err := c.Initialize(context.Background())
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.NotContains(t, res.Tiers, TierOptional)

	st, err := c.FeatureStatus("voice")
	require.NoError(t, err)
	assert.Equal(t, StatusPending, st)
}

func TestCombined_Idempotent(t *testing.T) {
	c := newTestCombined(Options{InitializeOptional: true})
	require.NoError(t, c.core.Register(desc(TierCore, "layout", 1, true)))

	first, err := c.Initialize(context.Background())
	require.NoError(t, err)
	second, err := c.Initialize(context.Background())
	require.NoError(t, err)
	assert.Same(t, first, second)
}

func TestCombined_FeatureLookupAcrossTiers(t *testing.T) {
	c := newTestCombined(Options{InitializeOptional: true})

	require.NoError(t, c.core.Register(desc(TierCore, "layout", 1, true)))
	require.NoError(t, c.advanced.Register(desc(TierAdvanced, "charts", 1, true)))
	require.NoError(t, c.optional.Register(desc(TierOptional, "voice", 1, false)))

	_, err := c.Initialize(context.Background())
	require.NoError(t, err)

	for _, id := range []string{"layout", "charts", "voice"} {
		got, err := c.Feature(id)
		require.NoError(t, err, id)
		assert.NotNil(t, got, id)
	}

	_, err = c.Feature("ghost")
	var unknown *UnknownFeatureError
	assert.ErrorAs(t, err, &unknown)

	require.NoError(t, c.DisableFeature("charts"))
	_, err = c.Feature("charts")
	var disabled *FeatureDisabledError
	assert.ErrorAs(t, err, &disabled)

	require.NoError(t, c.EnableFeature("charts"))
	_, err = c.Feature("charts")
	assert.NoError(t, err)

	st, err := c.FeatureStatus("voice")
	require.NoError(t, err)
	assert.Equal(t, StatusReady, st)
}

func TestCombined_TierAllowlist(t *testing.T) {
	opts := Options{InitializeOptional: true, TierAllowlist: []Tier{TierCore}}
	c := newTestCombined(opts)

	require.NoError(t, c.core.Register(desc(TierCore, "layout", 1, true)))
	require.NoError(t, c.advanced.Register(desc(TierAdvanced, "charts", 1, true)))
	require.NoError(t, c.optional.Register(desc(TierOptional, "voice", 1, false)))

	res, err := c.Initialize(context.Background())
	require.NoError(t, err)

	assert.Contains(t, res.Tiers, TierCore)
	assert.NotContains(t, res.Tiers, TierAdvanced)
	assert.NotContains(t, res.Tiers, TierOptional)
}
