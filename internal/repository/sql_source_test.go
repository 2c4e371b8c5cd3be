package repository

import (
	"context"
	"math"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dwelling-dashboard/internal/models"
	"dwelling-dashboard/pkg/database"
)

func openTestDB(t *testing.T) *database.DB {
	t.Helper()
	logger, m := testDeps(t)

	db, err := database.Open(context.Background(), &database.Config{
		Driver:       database.DriverSQLite,
		DSN:          filepath.Join(t.TempDir(), "readings.db"),
		MaxOpenConns: 1,
		MaxIdleConns: 1,
	}, logger, m)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	_, err = db.DB().Exec(SensorReadingsSchema)
	require.NoError(t, err)
	return db
}

func insert(t *testing.T, db *database.DB, source string, ts int64, field string, value interface{}) {
	t.Helper()
	_, err := db.DB().Exec(
		`INSERT INTO sensor_readings (source, recorded_at, field, value) VALUES (?, ?, ?, ?)`,
		source, ts, field, value,
	)
	require.NoError(t, err)
}

func TestSQLSource_Load(t *testing.T) {
	db := openTestDB(t)
	logger, m := testDeps(t)

	insert(t, db, "house-indoor", 1546302600, models.FieldTemperature, 21.0)
	insert(t, db, "house-indoor", 1546300800, models.FieldTemperature, 20.0)
	insert(t, db, "house-indoor", 1546300800, models.FieldHumidity, 40.0)
	insert(t, db, "house-indoor", 1546302600, models.FieldHumidity, nil)
	insert(t, db, "house-outdoor", 1546300800, models.FieldTemperature, 3.0)

	src := NewSQLSource(db, logger, m)
	spec := SourceSpec{Name: models.SourceIndoor, Location: "house-indoor", Fields: []string{models.FieldTemperature, models.FieldHumidity}}

	table, err := src.Load(context.Background(), spec)
	require.NoError(t, err)

	require.Equal(t, 2, table.Len())
	assert.Equal(t, int64(1546300800), table.Rows[0].Timestamp)
	assert.Equal(t, []float64{20, 40}, table.Rows[0].Values)
	assert.Equal(t, int64(1546302600), table.Rows[1].Timestamp)
	assert.Equal(t, 21.0, table.Rows[1].Values[0])
	assert.True(t, math.IsNaN(table.Rows[1].Values[1]))
}

func TestSQLSource_DuplicateTimestamps(t *testing.T) {
	db := openTestDB(t)
	logger, m := testDeps(t)

	insert(t, db, "meter", 1546300800, models.FieldElectricity, 0.5)
	insert(t, db, "meter", 1546300800, models.FieldElectricity, 0.25)

	src := NewSQLSource(db, logger, m)
	spec := SourceSpec{Name: models.SourceElectricity, Location: "meter", Fields: []string{models.FieldElectricity}}

	table, err := src.Load(context.Background(), spec)
	require.NoError(t, err)

	require.Equal(t, 2, table.Len())
	assert.Equal(t, []float64{0.5}, table.Rows[0].Values)
	assert.Equal(t, []float64{0.25}, table.Rows[1].Values)
}

func TestSQLSource_Empty(t *testing.T) {
	db := openTestDB(t)
	logger, m := testDeps(t)

	src := NewSQLSource(db, logger, m)
	table, err := src.Load(context.Background(), SourceSpec{Name: models.SourceOutdoor, Location: "nothing", Fields: []string{models.FieldTemperature}})

	require.NoError(t, err)
	assert.Equal(t, 0, table.Len())
	assert.Equal(t, models.SourceOutdoor, table.Source)
}

func TestSQLSource_MissingField(t *testing.T) {
	db := openTestDB(t)
	logger, m := testDeps(t)

	insert(t, db, "house-indoor", 1546300800, models.FieldTemperature, 20.0)

	src := NewSQLSource(db, logger, m)
	_, err := src.Load(context.Background(), SourceSpec{Name: models.SourceIndoor, Location: "house-indoor", Fields: []string{models.FieldTemperature, models.FieldHumidity}})

	var target *models.MissingColumnError
	require.ErrorAs(t, err, &target)
	assert.Equal(t, models.FieldHumidity, target.Column)
}

func TestSQLSource_HealthCheck(t *testing.T) {
	db := openTestDB(t)
	logger, m := testDeps(t)

	assert.NoError(t, NewSQLSource(db, logger, m).HealthCheck(context.Background()))
}

func TestSQLSource_StoreRoundTrip(t *testing.T) {
	db := openTestDB(t)
	logger, m := testDeps(t)
	src := NewSQLSource(db, logger, m)

	require.NoError(t, src.EnsureSchema(context.Background()))

	fields := []string{models.FieldTemperature, models.FieldHumidity}
	in := models.RawTable{
		Source: models.SourceIndoor,
		Fields: fields,
		Rows: []models.RawReading{
			{Timestamp: 1546300800, Values: []float64{20, 40}},
			{Timestamp: 1546304400, Values: []float64{21, math.NaN()}},
		},
	}

	n, err := src.Store(context.Background(), "house-indoor", in)
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	out, err := src.Load(context.Background(), SourceSpec{Name: models.SourceIndoor, Location: "house-indoor", Fields: fields})
	require.NoError(t, err)
	require.Equal(t, 2, out.Len())
	assert.Equal(t, []float64{20, 40}, out.Rows[0].Values)
	assert.Equal(t, 21.0, out.Rows[1].Values[0])
	assert.True(t, math.IsNaN(out.Rows[1].Values[1]))
}

func TestSchemaFor(t *testing.T) {
	assert.Contains(t, SchemaFor(database.DriverPostgres), "BIGSERIAL")
	assert.Equal(t, SensorReadingsSchema, SchemaFor(database.DriverSQLite))
}
