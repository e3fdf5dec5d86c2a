package cmd

import (
	"slideforge/core/config"
	"slideforge/core/database"
	"slideforge/core/orchestrator"
	"slideforge/core/storage"
	"slideforge/feature/charts"
	"slideforge/feature/exporter"
	"slideforge/feature/layout"
	"slideforge/feature/marketplace"
	"slideforge/feature/templates"
	"slideforge/feature/theming"
	"slideforge/feature/voice"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// buildPlatform wires the tier orchestrators and registers every built-in
// feature. The database handle may be nil; database-backed features then
// fail their own construction and are demoted without touching the rest of
// the platform.
func buildPlatform(cfg *config.Config, logg *zap.Logger, metrics *orchestrator.Metrics) (*orchestrator.Combined, error) {
	store, err := storage.NewClient(cfg.Storage)
	if err != nil {
		return nil, err
	}

	var db *gorm.DB
	if conn, err := database.Connect(cfg.Database); err != nil {
		logg.Warn("Optional database connection failed", zap.Error(err))
	} else {
		db = conn
		logg.Info("Connected to catalog database")
	}

	opts := cfg.Orchestrator.Options()
	opts.Logger = logg
	opts.Metrics = metrics
	opts.Fetcher = storage.NewBundleFetcher(store, cfg.Storage)
	opts.Hooks = orchestrator.Hooks{
		OnStatusChange: func(tier orchestrator.Tier, id string, from, to orchestrator.Status) {
			logg.Debug("feature status changed",
				zap.String("tier", string(tier)),
				zap.String("feature", id),
				zap.String("from", string(from)),
				zap.String("to", string(to)),
			)
		},
		OnError: func(tier orchestrator.Tier, id string, err error) {
			logg.Warn("feature error",
				zap.String("tier", string(tier)),
				zap.String("feature", id),
				zap.Error(err),
			)
		},
		OnLazyProgress: func(tier orchestrator.Tier, id, dep string, completed, total int) {
			logg.Info("heavy dependency loaded",
				zap.String("feature", id),
				zap.String("dependency", dep),
				zap.Int("completed", completed),
				zap.Int("total", total),
			)
		},
	}

	core := orchestrator.Shared(orchestrator.TierCore, opts)
	advanced := orchestrator.Shared(orchestrator.TierAdvanced, opts)
	optional := orchestrator.Shared(orchestrator.TierOptional, opts)

	registrations := []struct {
		o *orchestrator.TierOrchestrator
		d orchestrator.Descriptor
	}{
		{core, layout.Descriptor(logg)},
		{core, theming.Descriptor(logg)},
		{advanced, charts.Descriptor(store, cfg.Storage, logg)},
		{advanced, templates.Descriptor(db, logg)},
		{advanced, exporter.Descriptor(store, cfg.Storage, logg)},
		{optional, voice.Descriptor(store, cfg.Storage, logg)},
		{optional, marketplace.Descriptor(db, store, cfg.Storage, logg)},
	}
	for _, r := range registrations {
		if err := r.o.Register(r.d); err != nil {
			return nil, err
		}
	}

	return orchestrator.NewCombined(core, advanced, optional, opts), nil
}
