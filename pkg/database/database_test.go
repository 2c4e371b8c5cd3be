package database

import (
	"context"
	"io"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dwelling-dashboard/pkg/logging"
	"dwelling-dashboard/pkg/metrics"
)

func testDeps() (*logging.StructuredLogger, *metrics.Collector) {
	logger := logging.NewStructuredLogger("database-test", "test", logging.DebugLevel)
	logger.SetOutput(io.Discard)
	return logger, metrics.NewCollectorWith("database_test", prometheus.NewRegistry())
}

func sqliteConfig(t *testing.T) *Config {
	return &Config{
		Driver:       DriverSQLite,
		DSN:          filepath.Join(t.TempDir(), "test.db"),
		MaxOpenConns: 2,
		MaxIdleConns: 1,
	}
}

func TestOpen_SQLite(t *testing.T) {
	logger, m := testDeps()

	db, err := Open(context.Background(), sqliteConfig(t), logger, m)
	require.NoError(t, err)
	defer db.Close()

	assert.Equal(t, DriverSQLite, db.Driver())
	assert.NoError(t, db.HealthCheck(context.Background()))
}

func TestOpen_UnsupportedDriver(t *testing.T) {
	logger, m := testDeps()

	_, err := Open(context.Background(), &Config{Driver: "mysql", DSN: "x"}, logger, m)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported database driver")
}

func TestDB_SelectAndQuery(t *testing.T) {
	logger, m := testDeps()
	db, err := Open(context.Background(), sqliteConfig(t), logger, m)
	require.NoError(t, err)
	defer db.Close()

	_, err = db.DB().Exec(`CREATE TABLE kv (k TEXT, v INTEGER)`)
	require.NoError(t, err)
	_, err = db.DB().Exec(`INSERT INTO kv (k, v) VALUES ('a', 1), ('b', 2)`)
	require.NoError(t, err)

	var keys []string
	require.NoError(t, db.SelectContext(context.Background(), "keys", &keys, `SELECT k FROM kv WHERE v >= ? ORDER BY k`, 1))
	assert.Equal(t, []string{"a", "b"}, keys)

	rows, err := db.QueryContext(context.Background(), "sum", `SELECT SUM(v) FROM kv`)
	require.NoError(t, err)
	defer rows.Close()
	require.True(t, rows.Next())
	var total int
	require.NoError(t, rows.Scan(&total))
	assert.Equal(t, 3, total)

	assert.Equal(t, 2, testutil.CollectAndCount(m.DBQueryDuration))
}

func TestDB_QueryError(t *testing.T) {
	logger, m := testDeps()
	db, err := Open(context.Background(), sqliteConfig(t), logger, m)
	require.NoError(t, err)
	defer db.Close()

	_, err = db.QueryContext(context.Background(), "broken", `SELECT * FROM missing_table`)

	require.Error(t, err)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.DBErrorsTotal.WithLabelValues("query_error")))
}

func TestDB_PoolMonitorStopsOnClose(t *testing.T) {
	logger, m := testDeps()
	cfg := sqliteConfig(t)
	cfg.PoolInterval = 5 * time.Millisecond

	db, err := Open(context.Background(), cfg, logger, m)
	require.NoError(t, err)

	time.Sleep(20 * time.Millisecond)
	assert.NoError(t, db.Close())
	assert.Equal(t, 1.0, testutil.ToFloat64(m.DBConnectionPool.WithLabelValues("total")))
}
