package implementation

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// Timestamps are stored as UTC text in SQLite's canonical format so that
// lexicographic comparison, DATE() and strftime() all work on them.
const timeLayout = "2006-01-02 15:04:05"

// Schema migrations, applied in order at startup. PRAGMA user_version
// tracks the last applied entry. Each entry is a list of statements run
// inside one transaction.
var migrations = [][]string{
	// v1: base schema
	{
		`CREATE TABLE IF NOT EXISTS energy_data (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp DATETIME DEFAULT CURRENT_TIMESTAMP,
			device_id TEXT,
			power REAL,
			voltage REAL,
			current REAL,
			energy_total REAL,
			cost REAL
		)`,
		`CREATE TABLE IF NOT EXISTS sensor_readings (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp DATETIME DEFAULT CURRENT_TIMESTAMP,
			device_id TEXT,
			temperature REAL,
			humidity REAL,
			light_level INTEGER
		)`,
		`CREATE TABLE IF NOT EXISTS presence_data (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp DATETIME DEFAULT CURRENT_TIMESTAMP,
			device_id TEXT,
			presence BOOLEAN
		)`,
		`CREATE TABLE IF NOT EXISTS actuator_states (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp DATETIME DEFAULT CURRENT_TIMESTAMP,
			device_id TEXT,
			relay1 BOOLEAN,
			relay2 BOOLEAN,
			auto_mode BOOLEAN
		)`,
		`CREATE TABLE IF NOT EXISTS alerts (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp DATETIME DEFAULT CURRENT_TIMESTAMP,
			alert_type TEXT,
			severity TEXT,
			message TEXT,
			resolved BOOLEAN DEFAULT 0
		)`,
		`CREATE INDEX IF NOT EXISTS idx_energy_timestamp ON energy_data(timestamp)`,
		`CREATE INDEX IF NOT EXISTS idx_sensors_timestamp ON sensor_readings(timestamp)`,
	},
	// v2: window contact sensor on the actuator board. Rows written
	// before this version read back as false.
	{
		`ALTER TABLE actuator_states ADD COLUMN "window" BOOLEAN NOT NULL DEFAULT 0`,
	},
}

// OpenDatabase opens the embedded SQLite store at path. SQLite's own
// locking serializes the ingestion writer against the HTTP readers; the
// busy timeout keeps a blocked statement from failing immediately.
func OpenDatabase(path string, busyTimeout time.Duration) (*sql.DB, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(%d)&_pragma=journal_mode(WAL)",
		path, busyTimeout.Milliseconds())
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite store: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite store: %w", err)
	}
	return db, nil
}

// Migrate brings the schema up to the current version. It runs once at
// process start, before any traffic is accepted, and is idempotent.
func Migrate(ctx context.Context, db *sql.DB) error {
	var version int
	if err := db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}

	for v := version; v < len(migrations); v++ {
		if err := applyMigration(ctx, db, v); err != nil {
			return fmt.Errorf("apply schema version %d: %w", v+1, err)
		}
	}
	return nil
}

func applyMigration(ctx context.Context, db *sql.DB, index int) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, stmt := range migrations[index] {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	if _, err := tx.ExecContext(ctx, fmt.Sprintf("PRAGMA user_version = %d", index+1)); err != nil {
		return err
	}
	return tx.Commit()
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse stored timestamp %q: %w", s, err)
	}
	return t, nil
}
