package cmd

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"slideforge/core/config"
	"slideforge/core/logger"
	"slideforge/core/orchestrator"
	"slideforge/core/server"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// startCmd represents the start command
var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the presentation platform",
	Long:  `Initializes all feature tiers through the orchestrator and starts the management HTTP server.`,
	Run: func(cmd *cobra.Command, args []string) {
		// 1. Load Configuration
		cfg, err := config.LoadConfig(".")
		if err != nil {
			log.Fatalf("Failed to load configuration: %v", err)
		}

		// 2. Initialize Logger
		logg, err := logger.New(&cfg.Log)
		if err != nil {
			log.Fatalf("Failed to initialize logger: %v", err)
		}
		defer logg.Sync()
		zap.ReplaceGlobals(logg)

		// 3. Build the platform (storage, database, orchestrators, features)
		metrics := orchestrator.NewMetrics(nil)
		combined, err := buildPlatform(cfg, logg, metrics)
		if err != nil {
			logg.Fatal("Failed to build platform", zap.Error(err))
		}

		// 4. Initialize all tiers
		result, err := combined.Initialize(context.Background())
		if err != nil {
			logg.Fatal("Platform initialization failed", zap.Error(err))
		}
		if !result.Success {
			// Critical features failed but the process stays up so the
			// health API can report what broke.
			logg.Error("Platform started with critical failures",
				zap.String("overall", string(result.Overall)))
		}

		// 5. Start HTTP Server
		srv := server.New(cfg.Server, combined, logg, nil)
		go func() {
			logg.Info("Starting server", zap.String("port", cfg.Server.Port))
			if err := srv.Listen(); err != nil {
				logg.Fatal("Server failed to start", zap.Error(err))
			}
		}()

		// 6. Graceful Shutdown
		c := make(chan os.Signal, 1)
		signal.Notify(c, os.Interrupt, syscall.SIGTERM)
		<-c
		logg.Info("Shutting down server...")
		combined.Shutdown()
		_ = srv.Shutdown()
	},
}

func init() {
	RootCmd.AddCommand(startCmd)
}
