package repository

import (
	"context"
	"fmt"
	"time"

	"dwelling-dashboard/internal/models"
	"dwelling-dashboard/pkg/logging"
)

// EnsureSchema creates sensor_readings and its lookup index when missing
func (s *SQLSource) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "create_table", SchemaFor(s.db.Driver())); err != nil {
		return fmt.Errorf("failed to create sensor_readings: %w", err)
	}

	_, err := s.db.ExecContext(ctx, "create_index", `
		CREATE INDEX IF NOT EXISTS idx_sensor_readings_source_time
		ON sensor_readings (source, recorded_at)
	`)
	if err != nil {
		return fmt.Errorf("failed to create sensor_readings index: %w", err)
	}

	return nil
}

// Store appends every cell of table to sensor_readings under label, in one
// transaction. Missing values are stored as NULL. It returns the number of
// rows inserted.
func (s *SQLSource) Store(ctx context.Context, label string, table models.RawTable) (int, error) {
	startTime := time.Now()

	tx, err := s.db.BeginTx(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PreparexContext(ctx, tx.Rebind(`
		INSERT INTO sensor_readings (source, recorded_at, field, value)
		VALUES (?, ?, ?, ?)
	`))
	if err != nil {
		return 0, fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	inserted := 0
	for _, row := range table.Rows {
		for i, field := range table.Fields {
			var value interface{}
			if i < len(row.Values) && !models.Missing(row.Values[i]) {
				value = row.Values[i]
			}

			if _, err := stmt.ExecContext(ctx, label, row.Timestamp, field, value); err != nil {
				s.metrics.RecordDBError("insert_error")
				return 0, fmt.Errorf("failed to insert reading at %d: %w", row.Timestamp, err)
			}
			inserted++
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.logger.Info(ctx, "[SQL_STORE] Readings stored", logging.Fields{
		"source":      table.Source,
		"label":       label,
		"rows":        table.Len(),
		"inserted":    inserted,
		"duration_ms": time.Since(startTime).Milliseconds(),
	})

	return inserted, nil
}
