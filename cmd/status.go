package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"slideforge/core/config"
	"slideforge/core/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// statusCmd initializes the platform once and prints the health report.
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Initialize all tiers and print the health report",
	Long: `Runs a one-shot initialization of every feature tier and prints the
combined health report as JSON. Useful for checking a deployment's
configuration without starting the HTTP server.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig(".")
		if err != nil {
			log.Fatalf("Failed to load configuration: %v", err)
		}

		logg, err := logger.New(&cfg.Log)
		if err != nil {
			log.Fatalf("Failed to initialize logger: %v", err)
		}
		defer logg.Sync()

		// The monitor is pointless for a one-shot inspection.
		cfg.Orchestrator.HealthChecks = false

		combined, err := buildPlatform(cfg, logg, nil)
		if err != nil {
			return err
		}
		defer combined.Shutdown()

		if _, err := combined.Initialize(context.Background()); err != nil {
			logg.Error("Initialization failed", zap.Error(err))
			return err
		}

		report := combined.HealthReport()
		out, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
		return nil
	},
}

func init() {
	RootCmd.AddCommand(statusCmd)
}
