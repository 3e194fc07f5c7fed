package implementation

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"time"

	hemmodels "gitlab.com/maplesense1/hem.energy_server/src/production/HEM.Models"
)

// SQLiteTelemetryRepository persists telemetry records in the embedded
// SQLite store. Every insert is a single statement, so SQLite's own
// transaction gives append-or-nothing semantics.
type SQLiteTelemetryRepository struct {
	db     *sql.DB
	tariff float64
}

func NewSQLiteTelemetryRepository(db *sql.DB, tariff float64) *SQLiteTelemetryRepository {
	return &SQLiteTelemetryRepository{db: db, tariff: tariff}
}

func (r *SQLiteTelemetryRepository) InsertEnergy(ctx context.Context, rec *hemmodels.EnergyRecord) error {
	now := time.Now().UTC().Truncate(time.Second)
	rec.Cost = rec.EnergyTotal * r.tariff

	res, err := r.db.ExecContext(ctx, `
		INSERT INTO energy_data (timestamp, device_id, power, voltage, current, energy_total, cost)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		formatTime(now), rec.DeviceID, rec.Power, rec.Voltage, rec.Current, rec.EnergyTotal, rec.Cost)
	if err != nil {
		return fmt.Errorf("insert energy record: %w", err)
	}

	rec.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("insert energy record: %w", err)
	}
	rec.Timestamp = now
	return nil
}

func (r *SQLiteTelemetryRepository) InsertSensor(ctx context.Context, rec *hemmodels.SensorRecord) error {
	now := time.Now().UTC().Truncate(time.Second)

	res, err := r.db.ExecContext(ctx, `
		INSERT INTO sensor_readings (timestamp, device_id, temperature, humidity, light_level)
		VALUES (?, ?, ?, ?, ?)`,
		formatTime(now), rec.DeviceID, rec.Temperature, rec.Humidity, rec.LightLevel)
	if err != nil {
		return fmt.Errorf("insert sensor record: %w", err)
	}

	rec.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("insert sensor record: %w", err)
	}
	rec.Timestamp = now
	return nil
}

func (r *SQLiteTelemetryRepository) InsertPresence(ctx context.Context, rec *hemmodels.PresenceRecord) error {
	now := time.Now().UTC().Truncate(time.Second)

	res, err := r.db.ExecContext(ctx, `
		INSERT INTO presence_data (timestamp, device_id, presence)
		VALUES (?, ?, ?)`,
		formatTime(now), rec.DeviceID, rec.Presence)
	if err != nil {
		return fmt.Errorf("insert presence record: %w", err)
	}

	rec.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("insert presence record: %w", err)
	}
	rec.Timestamp = now
	return nil
}

func (r *SQLiteTelemetryRepository) InsertActuator(ctx context.Context, rec *hemmodels.ActuatorRecord) error {
	now := time.Now().UTC().Truncate(time.Second)

	res, err := r.db.ExecContext(ctx, `
		INSERT INTO actuator_states (timestamp, device_id, relay1, relay2, "window", auto_mode)
		VALUES (?, ?, ?, ?, ?, ?)`,
		formatTime(now), rec.DeviceID, rec.Relay1, rec.Relay2, rec.Window, rec.AutoMode)
	if err != nil {
		return fmt.Errorf("insert actuator record: %w", err)
	}

	rec.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("insert actuator record: %w", err)
	}
	rec.Timestamp = now
	return nil
}

func (r *SQLiteTelemetryRepository) LatestEnergy(ctx context.Context) (*hemmodels.EnergyRecord, error) {
	var rec hemmodels.EnergyRecord
	var ts string

	err := r.db.QueryRowContext(ctx, `
		SELECT id, timestamp, device_id, power, voltage, current, energy_total, cost
		FROM energy_data
		ORDER BY timestamp DESC, id DESC
		LIMIT 1`).Scan(&rec.ID, &ts, &rec.DeviceID, &rec.Power, &rec.Voltage, &rec.Current, &rec.EnergyTotal, &rec.Cost)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	if rec.Timestamp, err = parseTime(ts); err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *SQLiteTelemetryRepository) LatestSensor(ctx context.Context) (*hemmodels.SensorRecord, error) {
	var rec hemmodels.SensorRecord
	var ts string

	err := r.db.QueryRowContext(ctx, `
		SELECT id, timestamp, device_id, temperature, humidity, light_level
		FROM sensor_readings
		ORDER BY timestamp DESC, id DESC
		LIMIT 1`).Scan(&rec.ID, &ts, &rec.DeviceID, &rec.Temperature, &rec.Humidity, &rec.LightLevel)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	if rec.Timestamp, err = parseTime(ts); err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *SQLiteTelemetryRepository) LatestPresence(ctx context.Context) (*hemmodels.PresenceRecord, error) {
	var rec hemmodels.PresenceRecord
	var ts string

	err := r.db.QueryRowContext(ctx, `
		SELECT id, timestamp, device_id, presence
		FROM presence_data
		ORDER BY timestamp DESC, id DESC
		LIMIT 1`).Scan(&rec.ID, &ts, &rec.DeviceID, &rec.Presence)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	if rec.Timestamp, err = parseTime(ts); err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *SQLiteTelemetryRepository) LatestActuator(ctx context.Context) (*hemmodels.ActuatorRecord, error) {
	var rec hemmodels.ActuatorRecord
	var ts string

	err := r.db.QueryRowContext(ctx, `
		SELECT id, timestamp, device_id, relay1, relay2, "window", auto_mode
		FROM actuator_states
		ORDER BY timestamp DESC, id DESC
		LIMIT 1`).Scan(&rec.ID, &ts, &rec.DeviceID, &rec.Relay1, &rec.Relay2, &rec.Window, &rec.AutoMode)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	if rec.Timestamp, err = parseTime(ts); err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *SQLiteTelemetryRepository) EnergyHistory(ctx context.Context, hours int) ([]hemmodels.EnergyHistoryPoint, error) {
	cutoff := time.Now().UTC().Add(-time.Duration(hours) * time.Hour)

	rows, err := r.db.QueryContext(ctx, `
		SELECT timestamp, power, energy_total, cost
		FROM energy_data
		WHERE timestamp > ?
		ORDER BY timestamp ASC`, formatTime(cutoff))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	points := make([]hemmodels.EnergyHistoryPoint, 0)
	for rows.Next() {
		var p hemmodels.EnergyHistoryPoint
		var ts string
		if err := rows.Scan(&ts, &p.Power, &p.EnergyTotal, &p.Cost); err != nil {
			return nil, err
		}
		if p.Timestamp, err = parseTime(ts); err != nil {
			return nil, err
		}
		points = append(points, p)
	}
	return points, rows.Err()
}

func (r *SQLiteTelemetryRepository) ConsumptionAnalytics(ctx context.Context) (*hemmodels.ConsumptionAnalytics, error) {
	now := time.Now().UTC()
	todayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	yesterdayStart := todayStart.AddDate(0, 0, -1)
	tomorrowStart := todayStart.AddDate(0, 0, 1)

	today, err := r.dayTotals(ctx, todayStart, tomorrowStart)
	if err != nil {
		return nil, err
	}
	yesterday, err := r.dayTotals(ctx, yesterdayStart, todayStart)
	if err != nil {
		return nil, err
	}

	dayAgo := formatTime(now.Add(-24 * time.Hour))

	var avgPower float64
	if err := r.db.QueryRowContext(ctx, `
		SELECT COALESCE(AVG(power), 0)
		FROM energy_data
		WHERE timestamp > ?`, dayAgo).Scan(&avgPower); err != nil {
		return nil, err
	}

	peak := hemmodels.PeakPower{}
	var peakTS string
	err = r.db.QueryRowContext(ctx, `
		SELECT power, timestamp
		FROM energy_data
		WHERE timestamp > ?
		ORDER BY power DESC
		LIMIT 1`, dayAgo).Scan(&peak.Power, &peakTS)
	switch {
	case err == sql.ErrNoRows:
		// no samples in the window, peak stays zero with a nil time
	case err != nil:
		return nil, err
	default:
		t, err := parseTime(peakTS)
		if err != nil {
			return nil, err
		}
		peak.Time = &t
	}

	return &hemmodels.ConsumptionAnalytics{
		Today:            today,
		Yesterday:        yesterday,
		AveragePower:     avgPower,
		Peak:             peak,
		PotentialSavings: today.Cost * 0.15,
		MonthlyEstimate:  today.Cost * 30,
	}, nil
}

// dayTotals computes consumed energy and cost between two instants as the
// spread of the cumulative counters.
func (r *SQLiteTelemetryRepository) dayTotals(ctx context.Context, from, to time.Time) (hemmodels.PeriodTotals, error) {
	var totals hemmodels.PeriodTotals
	err := r.db.QueryRowContext(ctx, `
		SELECT COALESCE(MAX(energy_total) - MIN(energy_total), 0),
		       COALESCE(MAX(cost) - MIN(cost), 0)
		FROM energy_data
		WHERE timestamp >= ? AND timestamp < ?`,
		formatTime(from), formatTime(to)).Scan(&totals.Energy, &totals.Cost)
	if err != nil {
		return hemmodels.PeriodTotals{}, err
	}
	return totals, nil
}

func (r *SQLiteTelemetryRepository) HourlyStatistics(ctx context.Context) ([]hemmodels.HourlyStat, error) {
	cutoff := formatTime(time.Now().UTC().Add(-24 * time.Hour))

	rows, err := r.db.QueryContext(ctx, `
		SELECT strftime('%H:00', timestamp) AS hour,
		       AVG(power), MAX(power), MIN(power)
		FROM energy_data
		WHERE timestamp > ?
		GROUP BY hour
		ORDER BY hour`, cutoff)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stats := make([]hemmodels.HourlyStat, 0)
	for rows.Next() {
		var s hemmodels.HourlyStat
		if err := rows.Scan(&s.Hour, &s.AvgPower, &s.MaxPower, &s.MinPower); err != nil {
			return nil, err
		}
		stats = append(stats, s)
	}
	return stats, rows.Err()
}

func (r *SQLiteTelemetryRepository) DailyStatistics(ctx context.Context) ([]hemmodels.DailyStat, error) {
	cutoff := formatTime(time.Now().UTC().AddDate(0, 0, -7))

	rows, err := r.db.QueryContext(ctx, `
		SELECT DATE(timestamp) AS day,
		       COALESCE(MAX(energy_total) - MIN(energy_total), 0),
		       COALESCE(MAX(cost) - MIN(cost), 0),
		       COALESCE(AVG(power), 0)
		FROM energy_data
		WHERE timestamp > ?
		GROUP BY day
		ORDER BY day`, cutoff)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stats := make([]hemmodels.DailyStat, 0)
	for rows.Next() {
		var s hemmodels.DailyStat
		if err := rows.Scan(&s.Day, &s.Energy, &s.Cost, &s.AvgPower); err != nil {
			return nil, err
		}
		stats = append(stats, s)
	}
	return stats, rows.Err()
}

func (r *SQLiteTelemetryRepository) RecentActivity(ctx context.Context, limit int) ([]hemmodels.ActivityEntry, error) {
	entries := make([]hemmodels.ActivityEntry, 0, limit)

	collect := func(query string, scan func(*sql.Rows) (hemmodels.ActivityEntry, error)) error {
		rows, err := r.db.QueryContext(ctx, query, limit)
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			entry, err := scan(rows)
			if err != nil {
				return err
			}
			entries = append(entries, entry)
		}
		return rows.Err()
	}

	err := collect(`
		SELECT timestamp, device_id, power, energy_total
		FROM energy_data ORDER BY timestamp DESC, id DESC LIMIT ?`,
		func(rows *sql.Rows) (hemmodels.ActivityEntry, error) {
			var ts string
			var power, total float64
			e := hemmodels.ActivityEntry{Category: "energy"}
			if err := rows.Scan(&ts, &e.DeviceID, &power, &total); err != nil {
				return e, err
			}
			var err error
			if e.Timestamp, err = parseTime(ts); err != nil {
				return e, err
			}
			e.Details = fmt.Sprintf("Power %.2f W, total %.3f kWh", power, total)
			return e, nil
		})
	if err != nil {
		return nil, err
	}

	err = collect(`
		SELECT timestamp, device_id, temperature, humidity, light_level
		FROM sensor_readings ORDER BY timestamp DESC, id DESC LIMIT ?`,
		func(rows *sql.Rows) (hemmodels.ActivityEntry, error) {
			var ts string
			var temp, hum float64
			var light int
			e := hemmodels.ActivityEntry{Category: "sensor"}
			if err := rows.Scan(&ts, &e.DeviceID, &temp, &hum, &light); err != nil {
				return e, err
			}
			var err error
			if e.Timestamp, err = parseTime(ts); err != nil {
				return e, err
			}
			e.Details = fmt.Sprintf("Temperature %.1f C, humidity %.1f%%, light %d%%", temp, hum, light)
			return e, nil
		})
	if err != nil {
		return nil, err
	}

	err = collect(`
		SELECT timestamp, device_id, presence
		FROM presence_data ORDER BY timestamp DESC, id DESC LIMIT ?`,
		func(rows *sql.Rows) (hemmodels.ActivityEntry, error) {
			var ts string
			var present bool
			e := hemmodels.ActivityEntry{Category: "presence"}
			if err := rows.Scan(&ts, &e.DeviceID, &present); err != nil {
				return e, err
			}
			var err error
			if e.Timestamp, err = parseTime(ts); err != nil {
				return e, err
			}
			if present {
				e.Details = "Presence detected"
			} else {
				e.Details = "No presence"
			}
			return e, nil
		})
	if err != nil {
		return nil, err
	}

	err = collect(`
		SELECT timestamp, device_id, relay1, relay2, "window", auto_mode
		FROM actuator_states ORDER BY timestamp DESC, id DESC LIMIT ?`,
		func(rows *sql.Rows) (hemmodels.ActivityEntry, error) {
			var ts string
			var relay1, relay2, window, autoMode bool
			e := hemmodels.ActivityEntry{Category: "actuator"}
			if err := rows.Scan(&ts, &e.DeviceID, &relay1, &relay2, &window, &autoMode); err != nil {
				return e, err
			}
			var err error
			if e.Timestamp, err = parseTime(ts); err != nil {
				return e, err
			}
			e.Details = fmt.Sprintf("Relay1 %s, relay2 %s, window %s, auto mode %s",
				onOff(relay1), onOff(relay2), onOff(window), onOff(autoMode))
			return e, nil
		})
	if err != nil {
		return nil, err
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Timestamp.After(entries[j].Timestamp)
	})
	if len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}
