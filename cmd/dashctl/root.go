package main

import (
	"context"
	"fmt"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"dwelling-dashboard/internal/bootstrap"
	"dwelling-dashboard/internal/config"
	"dwelling-dashboard/pkg/logging"
	"dwelling-dashboard/pkg/metrics"
)

var (
	logLevel string

	cfg    *config.Config
	logger *logging.StructuredLogger
	metric *metrics.Collector
)

var rootCmd = &cobra.Command{
	Use:   "dashctl",
	Short: "Inspect the dwelling dashboard dataset from the terminal",
	Long: `dashctl loads the same readings as the dashboard server (DATA_* and
DATABASE_* environment variables, or a .env file) and prints the normalized
series, the electricity heatmap and slider windows.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override LOGGING_LEVEL (debug, info, warn, error)")
}

// setup loads configuration and the logger shared by every command
func setup(cmd *cobra.Command, args []string) error {
	loaded, err := config.LoadConfig()
	if err != nil {
		return err
	}
	if logLevel != "" {
		loaded.Logging.Level = logLevel
	}
	if err := loaded.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	cfg = loaded
	logger = bootstrap.NewLogger(cfg, "dashctl")
	logger.SetOutput(os.Stderr)
	metric = metrics.NewCollectorWith("dashctl", prometheus.NewRegistry())
	return nil
}

// loadDashboard builds the dataset for a command
func loadDashboard(ctx context.Context) (*bootstrap.Dashboard, error) {
	dash, err := bootstrap.Load(ctx, cfg, logger, metric)
	if err != nil {
		return nil, fmt.Errorf("loading dataset: %w", err)
	}
	return dash, nil
}
