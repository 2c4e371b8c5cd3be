package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"dwelling-dashboard/internal/config"
	"dwelling-dashboard/internal/repository"
	"dwelling-dashboard/internal/services"
	"dwelling-dashboard/pkg/database"
)

var (
	importSource string
	importFile   string
	importLabel  string
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Copy a reading CSV into the sensor_readings table",
	Long: `Reads one CSV table and appends it to sensor_readings in the database
configured by DATABASE_DRIVER and DATABASE_DSN, creating the table if needed.
The stored rows are labelled --label (default: the matching DATA_* value) so
the server can read them back with DATA_SOURCE=sql.`,
	RunE: runImport,
}

func init() {
	importCmd.Flags().StringVar(&importSource, "source", "", "table kind: indoor, outdoor or electricity")
	importCmd.Flags().StringVar(&importFile, "file", "", "CSV file to import")
	importCmd.Flags().StringVar(&importLabel, "label", "", "value of sensor_readings.source")
	importCmd.MarkFlagRequired("source")
	importCmd.MarkFlagRequired("file")
	rootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	if cfg.Database.DSN == "" {
		return fmt.Errorf("DATABASE_DSN is required for import")
	}

	specs := services.DefaultSpecs(importFile, importFile, importFile)
	var spec repository.SourceSpec
	label := importLabel
	switch importSource {
	case "indoor":
		spec = specs.Indoor
		if label == "" {
			label = labelFor(cfg.Data.Indoor)
		}
	case "outdoor":
		spec = specs.Outdoor
		if label == "" {
			label = labelFor(cfg.Data.Outdoor)
		}
	case "electricity":
		spec = specs.Electricity
		if label == "" {
			label = labelFor(cfg.Data.Electricity)
		}
	default:
		return fmt.Errorf("unknown source %q, expected indoor, outdoor or electricity", importSource)
	}

	table, err := repository.NewCSVSource(logger, metric).Load(ctx, spec)
	if err != nil {
		return err
	}

	db, err := database.Open(ctx, cfg.Database.Database(), logger, metric)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	store := repository.NewSQLSource(db, logger, metric)
	if err := store.EnsureSchema(ctx); err != nil {
		return err
	}

	n, err := store.Store(ctx, label, table)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Imported %d readings (%d rows) from %s as %q\n", n, table.Len(), importFile, label)
	return nil
}

// labelFor uses the configured sql label, falling back to the source kind when
// the configuration still points at CSV paths
func labelFor(configured string) string {
	if cfg.Data.Source == config.SourceSQL && configured != "" {
		return configured
	}
	return importSource
}
