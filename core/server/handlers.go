package server

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"slideforge/core/orchestrator"
)

func (s *Server) readinessCheck() error {
	if !s.combined.Healthy() {
		return errors.New("core tier critical")
	}
	return nil
}

// getHealth returns the combined report across all tiers. Concurrent probes
// share a single snapshot via singleflight.
func (s *Server) getHealth(c *fiber.Ctx) error {
	report, _, _ := s.reports.Do("combined", func() (any, error) {
		return s.combined.HealthReport(), nil
	})

	combined := report.(orchestrator.CombinedReport)
	status := fiber.StatusOK
	if combined.Overall == orchestrator.VerdictCritical {
		status = fiber.StatusServiceUnavailable
	}
	return c.Status(status).JSON(combined)
}

func (s *Server) getTierHealth(c *fiber.Ctx) error {
	tier, ok := orchestrator.ParseTier(c.Params("tier"))
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "unknown tier: " + c.Params("tier"),
		})
	}

	report := s.combined.TierOrchestrator(tier).HealthReport()
	status := fiber.StatusOK
	if report.Verdict == orchestrator.VerdictCritical {
		status = fiber.StatusServiceUnavailable
	}
	return c.Status(status).JSON(report)
}

func (s *Server) getFeature(c *fiber.Ctx) error {
	health, err := s.combined.FeatureHealth(c.Params("id"))
	if err != nil {
		return featureError(c, err)
	}
	return c.JSON(health)
}

func (s *Server) enableFeature(c *fiber.Ctx) error {
	id := c.Params("id")
	if err := s.combined.EnableFeature(id); err != nil {
		return featureError(c, err)
	}
	status, _ := s.combined.FeatureStatus(id)
	return c.JSON(fiber.Map{"id": id, "enabled": true, "status": status})
}

func (s *Server) disableFeature(c *fiber.Ctx) error {
	id := c.Params("id")
	if err := s.combined.DisableFeature(id); err != nil {
		return featureError(c, err)
	}
	status, _ := s.combined.FeatureStatus(id)
	return c.JSON(fiber.Map{"id": id, "enabled": false, "status": status})
}

// featureError maps orchestrator lookup errors onto HTTP status codes.
func featureError(c *fiber.Ctx, err error) error {
	var (
		unknown  *orchestrator.UnknownFeatureError
		disabled *orchestrator.FeatureDisabledError
		notReady *orchestrator.NotReadyError
	)
	switch {
	case errors.As(err, &unknown):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	case errors.As(err, &disabled):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
	case errors.As(err, &notReady):
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": err.Error()})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
}
