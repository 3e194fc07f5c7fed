package implementation

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "energy_test.db")
	db, err := OpenDatabase(dbPath, 5*time.Second)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, Migrate(context.Background(), db))
	return db
}

// backdate rewrites a row's timestamp, used to simulate old data.
func backdate(t *testing.T, db *sql.DB, table string, id int64, ts time.Time) {
	t.Helper()
	_, err := db.Exec("UPDATE "+table+" SET timestamp = ? WHERE id = ?", formatTime(ts), id)
	require.NoError(t, err)
}
