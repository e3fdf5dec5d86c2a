package orchestrator

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func okInit(ctx context.Context) (any, error) { return struct{}{}, nil }

func desc(tier Tier, id string, batch int, critical bool, deps ...string) Descriptor {
	return Descriptor{
		ID:           id,
		Name:         id,
		Tier:         tier,
		Batch:        batch,
		Critical:     critical,
		Dependencies: deps,
		Init:         okInit,
	}
}

func indexOf(t *testing.T, order []string, id string) int {
	t.Helper()
	for i, v := range order {
		if v == id {
			return i
		}
	}
	t.Fatalf("feature %q not in order %v", id, order)
	return -1
}

func TestResolveOrder_DependenciesFirst(t *testing.T) {
	reg := NewRegistry(TierCore)
	require.NoError(t, reg.Register(desc(TierCore, "d", 3, true, "b", "c")))
	require.NoError(t, reg.Register(desc(TierCore, "b", 1, true, "a")))
	require.NoError(t, reg.Register(desc(TierCore, "c", 2, true, "a")))
	require.NoError(t, reg.Register(desc(TierCore, "a", 0, true)))

	order, err := resolveOrder(reg)
	require.NoError(t, err)
	require.Len(t, order, 4)

	// Every feature appears after all of its transitive dependencies.
	assert.Less(t, indexOf(t, order, "a"), indexOf(t, order, "b"))
	assert.Less(t, indexOf(t, order, "a"), indexOf(t, order, "c"))
	assert.Less(t, indexOf(t, order, "b"), indexOf(t, order, "d"))
	assert.Less(t, indexOf(t, order, "c"), indexOf(t, order, "d"))
}

func TestResolveOrder_Deterministic(t *testing.T) {
	build := func() *Registry {
		reg := NewRegistry(TierCore)
		require.NoError(t, reg.Register(desc(TierCore, "x", 0, true)))
		require.NoError(t, reg.Register(desc(TierCore, "y", 0, true)))
		require.NoError(t, reg.Register(desc(TierCore, "z", 0, true)))
		return reg
	}

	first, err := resolveOrder(build())
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		again, err := resolveOrder(build())
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
	// Ties break by registration order.
	assert.Equal(t, []string{"x", "y", "z"}, first)
}

func TestResolveOrder_CycleDetection(t *testing.T) {
	reg := NewRegistry(TierCore)
	require.NoError(t, reg.Register(desc(TierCore, "a", 0, true, "c")))
	require.NoError(t, reg.Register(desc(TierCore, "b", 1, true, "a")))
	require.NoError(t, reg.Register(desc(TierCore, "c", 2, true, "b")))

	_, err := resolveOrder(reg)
	require.Error(t, err)

	var cycleErr *CycleError
	require.ErrorAs(t, err, &cycleErr)
	assert.Equal(t, TierCore, cycleErr.Tier)
	assert.Contains(t, []string{"a", "b", "c"}, cycleErr.FeatureID)
}

func TestResolveOrder_UnknownDependencyIgnored(t *testing.T) {
	reg := NewRegistry(TierCore)
	require.NoError(t, reg.Register(desc(TierCore, "a", 0, true)))
	require.NoError(t, reg.Register(desc(TierCore, "b", 1, false, "ghost")))

	// Unknown ids do not break resolution; they fail the feature at start.
	order, err := resolveOrder(reg)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, order)
}

func TestGroupBatches_AscendingWithTopoOrderInside(t *testing.T) {
	reg := NewRegistry(TierCore)
	require.NoError(t, reg.Register(desc(TierCore, "late", 5, true)))
	require.NoError(t, reg.Register(desc(TierCore, "first", 0, true)))
	require.NoError(t, reg.Register(desc(TierCore, "second", 0, true)))
	require.NoError(t, reg.Register(desc(TierCore, "mid", 2, true, "first")))

	order, err := resolveOrder(reg)
	require.NoError(t, err)

	groups := groupBatches(reg, order)
	require.Len(t, groups, 3)
	assert.Equal(t, 0, groups[0].number)
	assert.Equal(t, []string{"first", "second"}, groups[0].ids)
	assert.Equal(t, 2, groups[1].number)
	assert.Equal(t, []string{"mid"}, groups[1].ids)
	assert.Equal(t, 5, groups[2].number)
	assert.Equal(t, []string{"late"}, groups[2].ids)
}
