package db

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrations(t *testing.T) {
	conn := filepath.Join(t.TempDir(), "nested", "files.db")
	database, err := Init("sqlite", conn)
	require.NoError(t, err)
	defer database.Close()

	require.NoError(t, RunMigrations(database.DB, "sqlite"))

	var n int
	require.NoError(t, database.Get(&n, `SELECT COUNT(*) FROM files`))
	assert.Zero(t, n)

	var version int64
	require.NoError(t, database.Get(&version, `SELECT MAX(version_id) FROM `+VersionTable))
	assert.Equal(t, int64(1), version)

	require.NoError(t, MigrateDown(database.DB, "sqlite"))
	err = database.Get(&n, `SELECT COUNT(*) FROM files`)
	assert.Error(t, err)

	require.NoError(t, database.Get(&version, `SELECT MAX(version_id) FROM `+VersionTable+` WHERE is_applied`))
	assert.Zero(t, version)
}

func TestGetDialect(t *testing.T) {
	assert.Equal(t, "sqlite3", getDialect("sqlite"))
	assert.Equal(t, "postgres", getDialect("pgx"))
	assert.Equal(t, "mysql", getDialect("mysql"))
}
