package repository

import (
	"context"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dwelling-dashboard/internal/models"
	"dwelling-dashboard/pkg/logging"
	"dwelling-dashboard/pkg/metrics"
)

func testDeps(t *testing.T) (*logging.StructuredLogger, *metrics.Collector) {
	t.Helper()
	logger := logging.NewStructuredLogger("dashboard-test", "test", logging.DebugLevel)
	logger.SetOutput(io.Discard)
	return logger, metrics.NewCollectorWith("dashboard_test", prometheus.NewRegistry())
}

var climateSpec = SourceSpec{
	Name:   models.SourceIndoor,
	Fields: []string{models.FieldTemperature, models.FieldHumidity},
}

func TestCSVSource_Read(t *testing.T) {
	logger, m := testDeps(t)
	src := NewCSVSource(logger, m)

	in := strings.Join([]string{
		"Timestamp,Temperature,Humidity,Pressure",
		"1546300800,20.5,41,1013",
		"1546302600.9,21,,1012",
		"1546304400,NA,43.5,1011",
	}, "\n")

	table, err := src.Read(climateSpec, strings.NewReader(in))
	require.NoError(t, err)

	assert.Equal(t, models.SourceIndoor, table.Source)
	assert.Equal(t, climateSpec.Fields, table.Fields)
	require.Equal(t, 3, table.Len())

	assert.Equal(t, int64(1546300800), table.Rows[0].Timestamp)
	assert.Equal(t, []float64{20.5, 41}, table.Rows[0].Values)

	assert.Equal(t, int64(1546302600), table.Rows[1].Timestamp)
	assert.Equal(t, 21.0, table.Rows[1].Values[0])
	assert.True(t, math.IsNaN(table.Rows[1].Values[1]))

	assert.True(t, math.IsNaN(table.Rows[2].Values[0]))
	assert.Equal(t, 43.5, table.Rows[2].Values[1])
}

func TestCSVSource_HeaderOnly(t *testing.T) {
	logger, m := testDeps(t)
	src := NewCSVSource(logger, m)

	table, err := src.Read(climateSpec, strings.NewReader("Timestamp,Temperature,Humidity\n"))
	require.NoError(t, err)

	assert.Equal(t, models.SourceIndoor, table.Source)
	assert.Equal(t, climateSpec.Fields, table.Fields)
	assert.Equal(t, 0, table.Len())
}

func TestCSVSource_HeaderOnlyMissingColumn(t *testing.T) {
	logger, m := testDeps(t)
	src := NewCSVSource(logger, m)

	_, err := src.Read(climateSpec, strings.NewReader("Timestamp,Temperature\n"))

	var target *models.MissingColumnError
	require.ErrorAs(t, err, &target)
	assert.Equal(t, models.FieldHumidity, target.Column)
}

func TestCSVSource_NoHeader(t *testing.T) {
	logger, m := testDeps(t)
	src := NewCSVSource(logger, m)

	_, err := src.Read(climateSpec, strings.NewReader(""))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "no header row")
}

func TestCSVSource_InfiniteValuesAreMissing(t *testing.T) {
	logger, m := testDeps(t)
	src := NewCSVSource(logger, m)

	in := "Timestamp,Temperature,Humidity\n1546300800,Inf,40\n1546304400,21,-Inf\n"
	table, err := src.Read(climateSpec, strings.NewReader(in))
	require.NoError(t, err)

	require.Equal(t, 2, table.Len())
	assert.True(t, math.IsNaN(table.Rows[0].Values[0]))
	assert.Equal(t, 40.0, table.Rows[0].Values[1])
	assert.Equal(t, 21.0, table.Rows[1].Values[0])
	assert.True(t, math.IsNaN(table.Rows[1].Values[1]))
}

func TestCSVSource_MissingColumn(t *testing.T) {
	logger, m := testDeps(t)
	src := NewCSVSource(logger, m)

	_, err := src.Read(climateSpec, strings.NewReader("Timestamp,Temperature\n1546300800,20\n"))

	var target *models.MissingColumnError
	require.ErrorAs(t, err, &target)
	assert.Equal(t, models.FieldHumidity, target.Column)
	assert.Equal(t, models.SourceIndoor, target.Source)
}

func TestCSVSource_MissingTimestamp(t *testing.T) {
	logger, m := testDeps(t)
	src := NewCSVSource(logger, m)

	_, err := src.Read(climateSpec, strings.NewReader("Time,Temperature,Humidity\n1,2,3\n"))

	var target *models.MissingColumnError
	require.ErrorAs(t, err, &target)
	assert.Equal(t, models.FieldTimestamp, target.Column)
}

func TestCSVSource_BadTimestamp(t *testing.T) {
	logger, m := testDeps(t)
	src := NewCSVSource(logger, m)

	in := "Timestamp,Temperature,Humidity\n1546300800,20,40\nyesterday,21,41\n"
	_, err := src.Read(climateSpec, strings.NewReader(in))

	var target *models.UnparsableTimestampError
	require.ErrorAs(t, err, &target)
	assert.Equal(t, 2, target.Row)
	assert.Equal(t, "yesterday", target.Value)
}

func TestCSVSource_Load(t *testing.T) {
	logger, m := testDeps(t)
	src := NewCSVSource(logger, m)

	path := filepath.Join(t.TempDir(), "electricity.csv")
	require.NoError(t, os.WriteFile(path, []byte("Timestamp,Electricity\n1546300800,0.5\n1546301700,0.25\n"), 0o644))

	spec := SourceSpec{Name: models.SourceElectricity, Location: path, Fields: []string{models.FieldElectricity}}
	table, err := src.Load(context.Background(), spec)
	require.NoError(t, err)

	require.Equal(t, 2, table.Len())
	assert.Equal(t, []float64{0.25}, table.Rows[1].Values)
}

func TestCSVSource_LoadMissingFile(t *testing.T) {
	logger, m := testDeps(t)
	src := NewCSVSource(logger, m)

	spec := SourceSpec{Name: models.SourceElectricity, Location: filepath.Join(t.TempDir(), "nope.csv")}
	_, err := src.Load(context.Background(), spec)

	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestCSVSource_LoadCancelled(t *testing.T) {
	logger, m := testDeps(t)
	src := NewCSVSource(logger, m)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := src.Load(ctx, climateSpec)
	assert.ErrorIs(t, err, context.Canceled)
}
