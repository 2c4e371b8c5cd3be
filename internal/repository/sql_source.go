package repository

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"time"

	"dwelling-dashboard/internal/models"
	"dwelling-dashboard/pkg/database"
	"dwelling-dashboard/pkg/logging"
	"dwelling-dashboard/pkg/metrics"
)

// SensorReadingsSchema is the sqlite flavour of the table SQLSource reads
const SensorReadingsSchema = `
CREATE TABLE IF NOT EXISTS sensor_readings (
	id          INTEGER PRIMARY KEY,
	source      TEXT    NOT NULL,
	recorded_at INTEGER NOT NULL,
	field       TEXT    NOT NULL,
	value       REAL
)`

const postgresSchema = `
CREATE TABLE IF NOT EXISTS sensor_readings (
	id          BIGSERIAL PRIMARY KEY,
	source      TEXT             NOT NULL,
	recorded_at BIGINT           NOT NULL,
	field       TEXT             NOT NULL,
	value       DOUBLE PRECISION
)`

// SchemaFor returns the sensor_readings DDL for a database driver
func SchemaFor(driver string) string {
	if driver == database.DriverPostgres {
		return postgresSchema
	}
	return SensorReadingsSchema
}

// SQLSource reads reading tables from the long-format sensor_readings table.
// source is matched against SourceSpec.Location, recorded_at holds epoch
// seconds and a NULL value is a missing reading.
//
// Rows sharing recorded_at are pivoted into one RawReading. A second value for
// a field already set at that timestamp starts a new reading, so duplicates
// are preserved for the aggregation step.
type SQLSource struct {
	db      *database.DB
	logger  *logging.StructuredLogger
	metrics *metrics.Collector
}

// readingRow is one record of sensor_readings
type readingRow struct {
	RecordedAt int64           `db:"recorded_at"`
	Field      string          `db:"field"`
	Value      sql.NullFloat64 `db:"value"`
}

// NewSQLSource creates a new database reading source
func NewSQLSource(db *database.DB, logger *logging.StructuredLogger, metricsCollector *metrics.Collector) *SQLSource {
	return &SQLSource{
		db:      db,
		logger:  logger,
		metrics: metricsCollector,
	}
}

// Load reads every reading labelled spec.Location
func (s *SQLSource) Load(ctx context.Context, spec SourceSpec) (models.RawTable, error) {
	startTime := time.Now()

	table := models.RawTable{
		Source: spec.Name,
		Fields: append([]string(nil), spec.Fields...),
		Rows:   []models.RawReading{},
	}

	var stored []string
	err := s.db.SelectContext(ctx, "list_fields", &stored, `
		SELECT DISTINCT field
		FROM sensor_readings
		WHERE source = ?
		ORDER BY field
	`, spec.Location)
	if err != nil {
		return models.RawTable{}, fmt.Errorf("failed to list fields of %s: %w", spec.Name, err)
	}

	if len(stored) == 0 {
		return table, nil
	}

	present := make(map[string]bool, len(stored))
	for _, f := range stored {
		present[f] = true
	}

	position := make(map[string]int, len(spec.Fields))
	for i, f := range spec.Fields {
		if !present[f] {
			s.metrics.RecordLoadError("missing_column")
			return models.RawTable{}, &models.MissingColumnError{Source: spec.Name, Column: f}
		}
		position[f] = i
	}

	rows, err := s.db.QueryContext(ctx, "load_readings", `
		SELECT recorded_at, field, value
		FROM sensor_readings
		WHERE source = ?
		ORDER BY recorded_at, id
	`, spec.Location)
	if err != nil {
		return models.RawTable{}, fmt.Errorf("failed to load readings of %s: %w", spec.Name, err)
	}
	defer rows.Close()

	var current *models.RawReading
	for rows.Next() {
		var r readingRow
		if err := rows.StructScan(&r); err != nil {
			s.metrics.RecordDBError("scan_error")
			return models.RawTable{}, fmt.Errorf("failed to scan reading of %s: %w", spec.Name, err)
		}

		idx, ok := position[r.Field]
		if !ok {
			continue
		}

		if current == nil || current.Timestamp != r.RecordedAt || !models.Missing(current.Values[idx]) {
			if current != nil {
				table.Rows = append(table.Rows, *current)
			}
			current = &models.RawReading{
				Timestamp: r.RecordedAt,
				Values:    missingValues(len(spec.Fields)),
			}
		}

		if r.Value.Valid {
			current.Values[idx] = r.Value.Float64
		}
	}
	if err := rows.Err(); err != nil {
		return models.RawTable{}, fmt.Errorf("failed to read readings of %s: %w", spec.Name, err)
	}
	if current != nil {
		table.Rows = append(table.Rows, *current)
	}

	s.logger.Debug(ctx, "[SQL_LOAD] Reading table loaded", logging.Fields{
		"source":      spec.Name,
		"label":       spec.Location,
		"driver":      s.db.Driver(),
		"rows":        table.Len(),
		"duration_ms": time.Since(startTime).Milliseconds(),
	})

	return table, nil
}

// HealthCheck pings the underlying database
func (s *SQLSource) HealthCheck(ctx context.Context) error {
	return s.db.HealthCheck(ctx)
}

func missingValues(n int) []float64 {
	values := make([]float64, n)
	for i := range values {
		values[i] = math.NaN()
	}
	return values
}
