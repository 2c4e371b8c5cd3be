// Package bootstrap wires configuration, reading source and services into a
// ready dashboard. The HTTP server and dashctl share it.
package bootstrap

import (
	"context"
	"fmt"
	"os"

	"dwelling-dashboard/internal/config"
	"dwelling-dashboard/internal/handlers"
	"dwelling-dashboard/internal/models"
	"dwelling-dashboard/internal/repository"
	"dwelling-dashboard/internal/services"
	"dwelling-dashboard/pkg/database"
	"dwelling-dashboard/pkg/logging"
	"dwelling-dashboard/pkg/metrics"
)

// Dashboard is a built dataset plus the services reading it
type Dashboard struct {
	Dataset *models.Dataset
	Window  *services.WindowService
	Profile models.DwellingProfile

	db *database.DB
}

// HealthChecker returns the database behind the dataset, or nil for CSV input
func (d *Dashboard) HealthChecker() handlers.HealthChecker {
	if d.db == nil {
		return nil
	}
	return d.db
}

// Close releases the database connection, if any
func (d *Dashboard) Close() error {
	if d.db == nil {
		return nil
	}
	return d.db.Close()
}

// NewLogger builds the process logger from the logging settings.
// Local environments default to console output.
func NewLogger(cfg *config.Config, service string) *logging.StructuredLogger {
	level, err := logging.ParseLevel(cfg.Logging.Level)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v, falling back to info\n", err)
	}

	format := logging.Format(cfg.Logging.Format)
	if format == "" {
		format = logging.FormatJSON
		if cfg.IsLocal() {
			format = logging.FormatConsole
		}
	}

	logger := logging.NewStructuredLogger(service, cfg.Version, level)
	logger.SetFormat(format)
	return logger
}

// Load opens the configured reading source and builds the dashboard
func Load(ctx context.Context, cfg *config.Config, logger *logging.StructuredLogger, metricsCollector *metrics.Collector) (*Dashboard, error) {
	dash := &Dashboard{Profile: cfg.Dwelling.Profile()}

	var source repository.ReadingSource
	switch cfg.Data.Source {
	case config.SourceSQL:
		db, err := database.Open(ctx, cfg.Database.Database(), logger, metricsCollector)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		dash.db = db
		source = repository.NewSQLSource(db, logger, metricsCollector)
	default:
		source = repository.NewCSVSource(logger, metricsCollector)
	}

	specs := services.DefaultSpecs(cfg.Data.Indoor, cfg.Data.Outdoor, cfg.Data.Electricity)
	dataset, err := services.NewDatasetService(source, specs, cfg.Data.AllowEmpty, logger, metricsCollector).Build(ctx)
	if err != nil {
		dash.Close()
		return nil, err
	}

	dash.Dataset = dataset
	dash.Window = services.NewWindowService(dataset, logger, metricsCollector)
	return dash, nil
}
