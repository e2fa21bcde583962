package database

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRunMigrationsCreatesSchema(t *testing.T) {
	t.Parallel()
	dbPath := filepath.Join(t.TempDir(), "bubbleboard.db")
	migrations, err := filepath.Abs("migrations")
	require.NoError(t, err)

	require.NoError(t, RunMigrations(dbPath, migrations))
	// Re-running with nothing pending is a no-op.
	require.NoError(t, RunMigrations(dbPath, migrations))

	db, err := Open(dbPath)
	require.NoError(t, err)
	defer db.Close()

	ctx := context.Background()
	for _, table := range []string{"boards", "tasks"} {
		var name string
		err := db.QueryRowContext(ctx,
			`SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?`, table,
		).Scan(&name)
		require.NoError(t, err, table)
		require.Equal(t, table, name)
	}
}
