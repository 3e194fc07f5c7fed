package implementation

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	hemmodels "gitlab.com/maplesense1/hem.energy_server/src/production/HEM.Models"
)

// SQLiteAlertRepository stores threshold alerts. Suppression of duplicate
// unresolved alerts is enforced inside the insert statement itself, so
// two concurrent evaluations of the same type cannot both insert.
type SQLiteAlertRepository struct {
	db *sql.DB
}

func NewSQLiteAlertRepository(db *sql.DB) *SQLiteAlertRepository {
	return &SQLiteAlertRepository{db: db}
}

func (r *SQLiteAlertRepository) CreateIfAbsent(ctx context.Context, alertType, severity, message string, window time.Duration) (bool, error) {
	now := time.Now().UTC()
	cutoff := formatTime(now.Add(-window))

	res, err := r.db.ExecContext(ctx, `
		INSERT INTO alerts (timestamp, alert_type, severity, message, resolved)
		SELECT ?, ?, ?, ?, 0
		WHERE NOT EXISTS (
			SELECT 1 FROM alerts
			WHERE alert_type = ? AND resolved = 0 AND timestamp > ?
		)`,
		formatTime(now), alertType, severity, message, alertType, cutoff)
	if err != nil {
		return false, fmt.Errorf("insert alert: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("insert alert: %w", err)
	}
	return affected > 0, nil
}

func (r *SQLiteAlertRepository) ListRecent(ctx context.Context, limit int) ([]hemmodels.AlertRecord, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, timestamp, alert_type, severity, message, resolved
		FROM alerts
		ORDER BY timestamp DESC, id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	alerts := make([]hemmodels.AlertRecord, 0)
	for rows.Next() {
		var a hemmodels.AlertRecord
		var ts string
		if err := rows.Scan(&a.ID, &ts, &a.AlertType, &a.Severity, &a.Message, &a.Resolved); err != nil {
			return nil, err
		}
		if a.Timestamp, err = parseTime(ts); err != nil {
			return nil, err
		}
		alerts = append(alerts, a)
	}
	return alerts, rows.Err()
}

func (r *SQLiteAlertRepository) Resolve(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, `UPDATE alerts SET resolved = 1 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("resolve alert %d: %w", id, err)
	}
	return nil
}
