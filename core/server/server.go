package server

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/heptiolabs/healthcheck"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"slideforge/core/logger"
	"slideforge/core/middleware/auth"
	"slideforge/core/middleware/rayid"
	"slideforge/core/orchestrator"
)

// Server is the management HTTP API over the orchestrator.
type Server struct {
	app      *fiber.App
	cfg      Config
	combined *orchestrator.Combined
	logger   *zap.Logger
	reports  singleflight.Group
}

// New builds the server and registers all routes. The gatherer may be nil,
// in which case the default prometheus registry is exposed on /metrics.
func New(cfg Config, combined *orchestrator.Combined, logg *zap.Logger, gatherer prometheus.Gatherer) *Server {
	s := &Server{
		app: fiber.New(fiber.Config{
			DisableStartupMessage: true,
		}),
		cfg:      cfg,
		combined: combined,
		logger:   logg,
	}
	s.routes(gatherer)
	return s
}

func (s *Server) routes(gatherer prometheus.Gatherer) {
	s.app.Use(rayid.New())

	s.app.Use(func(c *fiber.Ctx) error {
		l := logger.WithRayID(s.logger, c)
		l.Info("Request started",
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.String("ip", c.IP()),
		)
		err := c.Next()
		if err != nil {
			l.Error("Request error", zap.Error(err))
		}
		return err
	})

	// Probe and metrics endpoints stay public so the platform remains
	// observable when the API key rotates.
	health := healthcheck.NewHandler()
	health.AddLivenessCheck("goroutine-threshold", healthcheck.GoroutineCountCheck(500))
	health.AddReadinessCheck("orchestrator", s.readinessCheck)
	s.app.Get("/live", adaptor.HTTPHandlerFunc(health.LiveEndpoint))
	s.app.Get("/ready", adaptor.HTTPHandlerFunc(health.ReadyEndpoint))

	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	s.app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	s.app.Use(auth.New(auth.Config{ApiKey: s.cfg.ApiKey}))

	s.app.Get("/health", s.getHealth)
	s.app.Get("/health/:tier", s.getTierHealth)
	s.app.Get("/features/:id", s.getFeature)
	s.app.Post("/features/:id/enable", s.enableFeature)
	s.app.Post("/features/:id/disable", s.disableFeature)
}

// Listen starts the server on the configured port. It blocks until the
// server stops.
func (s *Server) Listen() error {
	return s.app.Listen(":" + s.cfg.Port)
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

// App exposes the underlying fiber app for tests.
func (s *Server) App() *fiber.App {
	return s.app
}
