package services

import (
	"context"
	"errors"
	"io"
	"math"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dwelling-dashboard/internal/models"
	"dwelling-dashboard/internal/repository"
	"dwelling-dashboard/pkg/logging"
	"dwelling-dashboard/pkg/metrics"
)

// fakeSource serves tables keyed by location
type fakeSource struct {
	tables map[string]models.RawTable
	err    error
}

func (f *fakeSource) Load(_ context.Context, spec repository.SourceSpec) (models.RawTable, error) {
	if f.err != nil {
		return models.RawTable{}, f.err
	}
	t, ok := f.tables[spec.Location]
	if !ok {
		return models.RawTable{Source: spec.Name, Fields: spec.Fields}, nil
	}
	return t, nil
}

func testDeps(t *testing.T) (*logging.StructuredLogger, *metrics.Collector) {
	t.Helper()
	logger := logging.NewStructuredLogger("dashboard-test", "test", logging.DebugLevel)
	logger.SetOutput(io.Discard)
	return logger, metrics.NewCollectorWith("dashboard_test", prometheus.NewRegistry())
}

func sampleSource() *fakeSource {
	climate := []string{models.FieldTemperature, models.FieldHumidity}
	return &fakeSource{tables: map[string]models.RawTable{
		"indoor.csv": table(climate,
			reading(jan1, 20, 40),
			reading(jan1+1800, 22, 44),
			reading(jan1+2*3600, 19, 41),
		),
		"outdoor.csv": table(climate,
			reading(jan1, 5, 80),
			reading(jan1+3600, 6, 82),
		),
		"electricity.csv": table([]string{models.FieldElectricity},
			reading(jan1, 0.5),
			reading(jan1+900, 0.25),
			reading(jan1+25*3600, 1),
		),
	}}
}

func TestDatasetService_Build(t *testing.T) {
	logger, m := testDeps(t)
	svc := NewDatasetService(sampleSource(), DefaultSpecs("indoor.csv", "outdoor.csv", "electricity.csv"), true, logger, m)

	ds, err := svc.Build(context.Background())
	require.NoError(t, err)

	// indoor: mean per hour, the empty 01:00 hour is missing
	require.Equal(t, 3, ds.Indoor.Len())
	assert.InDelta(t, 21.0, ds.Indoor.Column(models.FieldTemperature)[0], 1e-9)
	assert.True(t, math.IsNaN(ds.Indoor.Column(models.FieldTemperature)[1]))
	assert.Equal(t, models.Mean, ds.Indoor.Aggregation)

	assert.Equal(t, 2, ds.Outdoor.Len())

	// electricity: sum per hour, gaps are zero
	require.Equal(t, 26, ds.Electricity.Len())
	elec := ds.Electricity.Column(models.FieldElectricity)
	assert.Equal(t, 0.75, elec[0])
	assert.Equal(t, 0.0, elec[1])
	assert.Equal(t, 1.0, elec[25])
	assert.Equal(t, models.Sum, ds.Electricity.Aggregation)

	require.Equal(t, 2, ds.Heatmap.Len())
	assert.Equal(t, []string{"2019-1-1", "2019-1-2"}, ds.Heatmap.Keys())
	assert.False(t, ds.LoadedAt.IsZero())

	assert.Equal(t, 26.0, testutil.ToFloat64(m.SeriesBuckets.WithLabelValues(models.SourceElectricity)))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.LoadRowsTotal.WithLabelValues(models.SourceIndoor)))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.HeatmapDays))
}

func TestDatasetService_EmptyInput(t *testing.T) {
	logger, m := testDeps(t)
	specs := DefaultSpecs("missing-indoor", "missing-outdoor", "missing-electricity")

	ds, err := NewDatasetService(&fakeSource{}, specs, true, logger, m).Build(context.Background())
	require.NoError(t, err)
	assert.True(t, ds.Indoor.Empty())
	assert.True(t, ds.Electricity.Empty())
	assert.Equal(t, 0, ds.Heatmap.Len())

	_, err = NewDatasetService(&fakeSource{}, specs, false, logger, m).Build(context.Background())
	var empty *models.EmptyInputError
	require.ErrorAs(t, err, &empty)
	assert.Equal(t, models.SourceIndoor, empty.Source)
	assert.True(t, empty.IsTransient())
}

func TestDatasetService_LoadError(t *testing.T) {
	logger, m := testDeps(t)
	cause := &models.MissingColumnError{Source: models.SourceIndoor, Column: models.FieldHumidity}
	svc := NewDatasetService(&fakeSource{err: cause}, DefaultSpecs("a", "b", "c"), true, logger, m)

	_, err := svc.Build(context.Background())

	require.Error(t, err)
	assert.True(t, errors.Is(err, cause))
	assert.Contains(t, err.Error(), "indoor")
}
