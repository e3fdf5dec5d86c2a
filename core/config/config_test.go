package config

import (
	"testing"
	"time"

	"slideforge/core/orchestrator"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "assets", cfg.Storage.Bucket)

	assert.False(t, cfg.Orchestrator.FailFast)
	assert.True(t, cfg.Orchestrator.InitializeOptional)
	assert.False(t, cfg.Orchestrator.ContinueOnCoreFailure)
	assert.Equal(t, 30, cfg.Orchestrator.FeatureTimeoutSeconds)
	assert.True(t, cfg.Orchestrator.HealthChecks)
	assert.True(t, cfg.Orchestrator.LazyLoading)
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("ORCHESTRATOR_FAIL_FAST", "true")
	t.Setenv("ORCHESTRATOR_FEATURE_TIMEOUT_SECONDS", "5")
	t.Setenv("SERVER_PORT", "9090")

	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.True(t, cfg.Orchestrator.FailFast)
	assert.Equal(t, 5, cfg.Orchestrator.FeatureTimeoutSeconds)
	assert.Equal(t, "9090", cfg.Server.Port)
}

func TestOrchestratorConfig_Options(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	opts := cfg.Orchestrator.Options()
	assert.Equal(t, 30*time.Second, opts.FeatureTimeout)
	assert.Equal(t, 30*time.Second, opts.HealthInterval)
	assert.True(t, opts.HealthChecks)
	assert.True(t, opts.LazyLoading)
	assert.True(t, opts.InitializeOptional)
	assert.Empty(t, opts.TierAllowlist)
	assert.Empty(t, opts.BatchAllowlist)
}

func TestOrchestratorConfig_Allowlists(t *testing.T) {
	t.Setenv("ORCHESTRATOR_TIER_ALLOWLIST", "core, advanced, bogus")
	t.Setenv("ORCHESTRATOR_BATCH_ALLOWLIST", "0,2,notanumber")

	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	opts := cfg.Orchestrator.Options()
	assert.Equal(t, []orchestrator.Tier{orchestrator.TierCore, orchestrator.TierAdvanced}, opts.TierAllowlist)
	assert.Equal(t, []int{0, 2}, opts.BatchAllowlist)
}
