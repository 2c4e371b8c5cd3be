package repository

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"

	"dwelling-dashboard/internal/models"
	"dwelling-dashboard/pkg/logging"
	"dwelling-dashboard/pkg/metrics"
)

// CSVSource reads reading tables from CSV files with a header row.
// The Timestamp column holds epoch seconds; value cells that are empty, not
// numeric or infinite become missing values.
type CSVSource struct {
	logger  *logging.StructuredLogger
	metrics *metrics.Collector
}

// NewCSVSource creates a new CSV reading source
func NewCSVSource(logger *logging.StructuredLogger, metricsCollector *metrics.Collector) *CSVSource {
	return &CSVSource{
		logger:  logger,
		metrics: metricsCollector,
	}
}

// Load reads the file at spec.Location
func (s *CSVSource) Load(ctx context.Context, spec SourceSpec) (models.RawTable, error) {
	if err := ctx.Err(); err != nil {
		return models.RawTable{}, err
	}

	startTime := time.Now()

	file, err := os.Open(spec.Location)
	if err != nil {
		s.metrics.RecordLoadError("file_error")
		return models.RawTable{}, fmt.Errorf("failed to open %s: %w", spec.Location, err)
	}
	defer file.Close()

	table, err := s.Read(spec, file)
	if err != nil {
		return models.RawTable{}, err
	}

	s.logger.Debug(ctx, "[CSV_LOAD] Reading table loaded", logging.Fields{
		"source":      spec.Name,
		"path":        spec.Location,
		"rows":        table.Len(),
		"duration_ms": time.Since(startTime).Milliseconds(),
	})

	return table, nil
}

// Read parses CSV content for spec. A header without data rows yields an
// empty table once the required columns are present.
func (s *CSVSource) Read(spec SourceSpec, r io.Reader) (models.RawTable, error) {
	table := models.RawTable{
		Source: spec.Name,
		Fields: append([]string(nil), spec.Fields...),
		Rows:   []models.RawReading{},
	}

	records, err := csv.NewReader(r).ReadAll()
	if err != nil {
		s.metrics.RecordLoadError("parse_error")
		return models.RawTable{}, fmt.Errorf("failed to parse %s: %w", spec.Name, err)
	}
	if len(records) == 0 {
		s.metrics.RecordLoadError("parse_error")
		return models.RawTable{}, fmt.Errorf("failed to parse %s: no header row", spec.Name)
	}

	if err := s.requireColumns(spec, records[0]); err != nil {
		return models.RawTable{}, err
	}
	if len(records) == 1 {
		return table, nil
	}

	df := dataframe.LoadRecords(records,
		dataframe.HasHeader(true),
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.Float),
		dataframe.WithTypes(map[string]series.Type{
			models.FieldTimestamp: series.String,
		}),
	)
	if df.Err != nil {
		s.metrics.RecordLoadError("parse_error")
		return models.RawTable{}, fmt.Errorf("failed to parse %s: %w", spec.Name, df.Err)
	}

	timestamps := df.Col(models.FieldTimestamp).Records()
	columns := make([][]float64, len(spec.Fields))
	for i, field := range spec.Fields {
		columns[i] = df.Col(field).Float()
	}

	table.Rows = make([]models.RawReading, len(timestamps))
	for row, raw := range timestamps {
		ts, err := parseEpochSeconds(raw)
		if err != nil {
			s.metrics.RecordLoadError("timestamp_error")
			return models.RawTable{}, &models.UnparsableTimestampError{Source: spec.Name, Row: row + 1, Value: raw}
		}

		values := make([]float64, len(columns))
		for i := range columns {
			v := columns[i][row]
			if math.IsInf(v, 0) {
				v = math.NaN()
			}
			values[i] = v
		}
		table.Rows[row] = models.RawReading{Timestamp: ts, Values: values}
	}

	return table, nil
}

// requireColumns checks the header for Timestamp and every field of spec
func (s *CSVSource) requireColumns(spec SourceSpec, header []string) error {
	present := make(map[string]bool, len(header))
	for _, name := range header {
		present[name] = true
	}
	for _, column := range append([]string{models.FieldTimestamp}, spec.Fields...) {
		if !present[column] {
			s.metrics.RecordLoadError("missing_column")
			return &models.MissingColumnError{Source: spec.Name, Column: column}
		}
	}
	return nil
}

// parseEpochSeconds accepts integral or fractional epoch seconds and floors them
func parseEpochSeconds(raw string) (int64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("not a finite number: %q", raw)
	}
	return int64(math.Floor(v)), nil
}
