package services

import (
	"context"
	"fmt"
	"time"

	"dwelling-dashboard/internal/models"
	"dwelling-dashboard/internal/repository"
	"dwelling-dashboard/pkg/logging"
	"dwelling-dashboard/pkg/metrics"
)

// DatasetSpecs names the three reading tables of the dwelling
type DatasetSpecs struct {
	Indoor      repository.SourceSpec
	Outdoor     repository.SourceSpec
	Electricity repository.SourceSpec
}

// DefaultSpecs returns the table layout of the dashboard given where each table lives
func DefaultSpecs(indoor, outdoor, electricity string) DatasetSpecs {
	return DatasetSpecs{
		Indoor: repository.SourceSpec{
			Name:     models.SourceIndoor,
			Location: indoor,
			Fields:   []string{models.FieldTemperature, models.FieldHumidity},
		},
		Outdoor: repository.SourceSpec{
			Name:     models.SourceOutdoor,
			Location: outdoor,
			Fields:   []string{models.FieldTemperature, models.FieldHumidity},
		},
		Electricity: repository.SourceSpec{
			Name:     models.SourceElectricity,
			Location: electricity,
			Fields:   []string{models.FieldElectricity},
		},
	}
}

// DatasetService builds the dashboard Dataset from a reading source
type DatasetService struct {
	source     repository.ReadingSource
	specs      DatasetSpecs
	allowEmpty bool
	logger     *logging.StructuredLogger
	metrics    *metrics.Collector
}

// NewDatasetService creates a new dataset service
func NewDatasetService(
	source repository.ReadingSource,
	specs DatasetSpecs,
	allowEmpty bool,
	logger *logging.StructuredLogger,
	metricsCollector *metrics.Collector,
) *DatasetService {
	return &DatasetService{
		source:     source,
		specs:      specs,
		allowEmpty: allowEmpty,
		logger:     logger,
		metrics:    metricsCollector,
	}
}

// Build loads the three tables, resamples them hourly (mean for indoor and
// outdoor, sum for electricity) and derives the electricity heatmap.
func (s *DatasetService) Build(ctx context.Context) (*models.Dataset, error) {
	timer := s.metrics.NewTimer(s.metrics.LoadDuration)

	s.logger.Info(ctx, "[DATASET_START] Building dataset", logging.Fields{
		"indoor":      s.specs.Indoor.Location,
		"outdoor":     s.specs.Outdoor.Location,
		"electricity": s.specs.Electricity.Location,
		"stage":       "INITIALIZATION",
	})

	indoor, err := s.series(ctx, s.specs.Indoor, models.Mean)
	if err != nil {
		return nil, err
	}

	outdoor, err := s.series(ctx, s.specs.Outdoor, models.Mean)
	if err != nil {
		return nil, err
	}

	electricity, err := s.series(ctx, s.specs.Electricity, models.Sum)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	heatmap, outliers := AggregateDayHourWithStats(electricity, models.FieldElectricity)
	s.metrics.ObserveTransform("day_hour", time.Since(start))
	s.metrics.OutliersRemoved.WithLabelValues(outliers.Field).Add(float64(outliers.Removed))
	s.metrics.HeatmapDays.Set(float64(heatmap.Len()))

	s.logger.Info(ctx, "[DATASET_HEATMAP] Day/hour matrix built", logging.Fields{
		"field":            outliers.Field,
		"observed":         outliers.Observed,
		"outliers_removed": outliers.Removed,
		"mean":             nanToNil(outliers.Mean),
		"std_dev":          nanToNil(outliers.StdDev),
		"days":             heatmap.Len(),
		"stage":            "AGGREGATE",
	})

	dataset := &models.Dataset{
		Indoor:      indoor,
		Outdoor:     outdoor,
		Electricity: electricity,
		Heatmap:     heatmap,
		LoadedAt:    time.Now().UTC(),
	}

	duration := timer.ObserveDuration()
	s.logger.Info(ctx, "[DATASET_COMPLETE] Dataset ready", logging.Fields{
		"indoor_buckets":      indoor.Len(),
		"outdoor_buckets":     outdoor.Len(),
		"electricity_buckets": electricity.Len(),
		"heatmap_days":        heatmap.Len(),
		"duration_seconds":    duration.Seconds(),
		"stage":               "COMPLETE",
	})

	return dataset, nil
}

// series loads and normalizes one table
func (s *DatasetService) series(ctx context.Context, spec repository.SourceSpec, agg models.Aggregation) (models.TimeSeries, error) {
	table, err := s.source.Load(ctx, spec)
	if err != nil {
		s.logger.Error(ctx, "[DATASET_LOAD_ERROR] Failed to load readings", logging.Fields{
			"source":   spec.Name,
			"location": spec.Location,
			"stage":    "LOAD",
		}, err)
		return models.TimeSeries{}, fmt.Errorf("failed to load %s readings: %w", spec.Name, err)
	}

	if table.Len() == 0 && !s.allowEmpty {
		s.metrics.RecordLoadError("empty_input")
		return models.TimeSeries{}, &models.EmptyInputError{Source: spec.Name}
	}

	s.metrics.LoadRowsTotal.WithLabelValues(spec.Name).Add(float64(table.Len()))

	start := time.Now()
	series := Normalize(table, models.HourlyCadence, agg)
	s.metrics.ObserveTransform("normalize", time.Since(start))
	s.metrics.SeriesBuckets.WithLabelValues(spec.Name).Set(float64(series.Len()))

	fields := logging.Fields{
		"source":      spec.Name,
		"rows":        table.Len(),
		"buckets":     series.Len(),
		"aggregation": agg.String(),
		"stage":       "NORMALIZE",
	}
	if !series.Empty() {
		fields["first"] = series.Index[0].Format(time.RFC3339)
		fields["last"] = series.Index[series.Len()-1].Format(time.RFC3339)
	}
	s.logger.Info(ctx, "[DATASET_SERIES] Series normalized", fields)

	return series, nil
}

// nanToNil keeps NaN out of JSON log entries
func nanToNil(v float64) interface{} {
	if models.Missing(v) {
		return nil
	}
	return v
}
