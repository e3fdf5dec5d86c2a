package server_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"testing"

	"slideforge/core/middleware/auth"
	"slideforge/core/orchestrator"
	"slideforge/core/server"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestServer(t *testing.T, apiKey string) *server.Server {
	t.Helper()

	opts := orchestrator.DefaultOptions()
	opts.HealthChecks = false

	core := orchestrator.New(orchestrator.TierCore, opts)
	advanced := orchestrator.New(orchestrator.TierAdvanced, opts)
	optional := orchestrator.New(orchestrator.TierOptional, opts)

	require.NoError(t, core.Register(orchestrator.Descriptor{
		ID:   "deck-engine",
		Name: "Deck Engine",
		Tier: orchestrator.TierCore,
		Init: func(ctx context.Context) (any, error) { return struct{}{}, nil },
	}))
	require.NoError(t, advanced.Register(orchestrator.Descriptor{
		ID:   "charts",
		Name: "Chart Rendering",
		Tier: orchestrator.TierAdvanced,
		Init: func(ctx context.Context) (any, error) { return nil, errors.New("render pack missing") },
	}))

	combined := orchestrator.NewCombined(core, advanced, optional, opts)
	_, err := combined.Initialize(context.Background())
	require.NoError(t, err)
	t.Cleanup(combined.Shutdown)

	registry := prometheus.NewRegistry()
	return server.New(server.Config{Port: "8080", ApiKey: apiKey}, combined, zap.NewNop(), registry)
}

func TestGetHealth(t *testing.T) {
	s := newTestServer(t, "")

	resp, err := s.App().Test(httptest.NewRequest("GET", "/health", nil))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var report orchestrator.CombinedReport
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&report))
	assert.Equal(t, orchestrator.VerdictDegraded, report.Overall)
	assert.Len(t, report.Tiers, 3)
	assert.Equal(t, 2, report.Summary.Total)
}

func TestGetTierHealth(t *testing.T) {
	s := newTestServer(t, "")

	t.Run("KnownTier", func(t *testing.T) {
		resp, err := s.App().Test(httptest.NewRequest("GET", "/health/core", nil))
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)

		var report orchestrator.TierReport
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&report))
		assert.Equal(t, orchestrator.TierCore, report.Tier)
		assert.Equal(t, orchestrator.VerdictHealthy, report.Verdict)
	})

	t.Run("UnknownTier", func(t *testing.T) {
		resp, err := s.App().Test(httptest.NewRequest("GET", "/health/mystery", nil))
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	})
}

func TestGetFeature(t *testing.T) {
	s := newTestServer(t, "")

	t.Run("Ready", func(t *testing.T) {
		resp, err := s.App().Test(httptest.NewRequest("GET", "/features/deck-engine", nil))
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)

		var health orchestrator.FeatureHealth
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&health))
		assert.Equal(t, orchestrator.StatusReady, health.Status)
		assert.True(t, health.Healthy)
	})

	t.Run("Degraded", func(t *testing.T) {
		resp, err := s.App().Test(httptest.NewRequest("GET", "/features/charts", nil))
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)

		var health orchestrator.FeatureHealth
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&health))
		assert.Equal(t, orchestrator.StatusDegraded, health.Status)
		assert.Contains(t, health.Message, "render pack missing")
	})

	t.Run("Unknown", func(t *testing.T) {
		resp, err := s.App().Test(httptest.NewRequest("GET", "/features/nope", nil))
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	})
}

func TestToggleFeature(t *testing.T) {
	s := newTestServer(t, "")

	resp, err := s.App().Test(httptest.NewRequest("POST", "/features/deck-engine/disable", nil))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, false, body["enabled"])
	assert.Equal(t, string(orchestrator.StatusDisabled), body["status"])

	resp, err = s.App().Test(httptest.NewRequest("POST", "/features/deck-engine/enable", nil))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, true, body["enabled"])
	assert.Equal(t, string(orchestrator.StatusReady), body["status"])

	t.Run("UnknownFeature", func(t *testing.T) {
		resp, err := s.App().Test(httptest.NewRequest("POST", "/features/nope/enable", nil))
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	})
}

func TestAuthProtection(t *testing.T) {
	s := newTestServer(t, "hunter2")

	t.Run("HealthRequiresKey", func(t *testing.T) {
		resp, err := s.App().Test(httptest.NewRequest("GET", "/health", nil))
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("HealthWithKey", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/health", nil)
		req.Header.Set(auth.HeaderName, "hunter2")
		resp, err := s.App().Test(req)
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	})

	t.Run("ProbesArePublic", func(t *testing.T) {
		for _, path := range []string{"/live", "/ready", "/metrics"} {
			resp, err := s.App().Test(httptest.NewRequest("GET", path, nil))
			require.NoError(t, err)
			resp.Body.Close()
			assert.Equal(t, fiber.StatusOK, resp.StatusCode, path)
		}
	})
}

func TestReadinessReflectsCoreFailure(t *testing.T) {
	opts := orchestrator.DefaultOptions()
	opts.HealthChecks = false

	core := orchestrator.New(orchestrator.TierCore, opts)
	advanced := orchestrator.New(orchestrator.TierAdvanced, opts)
	optional := orchestrator.New(orchestrator.TierOptional, opts)

	require.NoError(t, core.Register(orchestrator.Descriptor{
		ID:       "deck-engine",
		Name:     "Deck Engine",
		Tier:     orchestrator.TierCore,
		Critical: true,
		Init:     func(ctx context.Context) (any, error) { return nil, errors.New("boot failure") },
	}))

	combined := orchestrator.NewCombined(core, advanced, optional, opts)
	_, err := combined.Initialize(context.Background())
	require.NoError(t, err)
	t.Cleanup(combined.Shutdown)

	s := server.New(server.Config{Port: "8080"}, combined, zap.NewNop(), prometheus.NewRegistry())

	resp, err := s.App().Test(httptest.NewRequest("GET", "/ready", nil))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, fiber.StatusServiceUnavailable, resp.StatusCode)

	resp, err = s.App().Test(httptest.NewRequest("GET", "/health", nil))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, fiber.StatusServiceUnavailable, resp.StatusCode)
}
