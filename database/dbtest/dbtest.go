// Package dbtest provides a migrated Postgres database to integration tests.
package dbtest

import (
	"database/sql"
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"taxi-fare-model/database"
	"taxi-fare-model/migration"
)

// EnvDSN names the variable holding a postgres:// URL of a disposable database.
const EnvDSN = "TAXIFARE_TEST_DSN"

// Open skips the test unless EnvDSN is set. Otherwise it applies the
// migrations, empties every table and returns a connection closed at cleanup.
func Open(t *testing.T) *sql.DB {
	t.Helper()
	dsn := os.Getenv(EnvDSN)
	if dsn == "" {
		t.Skipf("%s not set", EnvDSN)
	}

	mg, err := migration.New(dsn)
	require.NoError(t, err)
	require.NoError(t, mg.Up())
	require.NoError(t, mg.Close())

	db, err := database.OpenDSN(dsn)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	_, err = db.Exec(`TRUNCATE trips, run_metrics, run_params, runs, experiments RESTART IDENTITY CASCADE`)
	require.NoError(t, err)
	return db
}
