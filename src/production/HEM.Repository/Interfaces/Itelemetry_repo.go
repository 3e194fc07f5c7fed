package interfaces

import (
	"context"

	hemmodels "gitlab.com/maplesense1/hem.energy_server/src/production/HEM.Models"
)

// TelemetryRepository persists and queries the four telemetry record
// kinds. Inserts are single atomic appends; the repository assigns the
// identifier and the write timestamp, and derives cost for energy rows.
// Latest* reads return (nil, nil) when the table is still empty.
type TelemetryRepository interface {
	InsertEnergy(ctx context.Context, rec *hemmodels.EnergyRecord) error
	InsertSensor(ctx context.Context, rec *hemmodels.SensorRecord) error
	InsertPresence(ctx context.Context, rec *hemmodels.PresenceRecord) error
	InsertActuator(ctx context.Context, rec *hemmodels.ActuatorRecord) error

	LatestEnergy(ctx context.Context) (*hemmodels.EnergyRecord, error)
	LatestSensor(ctx context.Context) (*hemmodels.SensorRecord, error)
	LatestPresence(ctx context.Context) (*hemmodels.PresenceRecord, error)
	LatestActuator(ctx context.Context) (*hemmodels.ActuatorRecord, error)

	// EnergyHistory returns rows newer than now minus the given number
	// of hours, oldest first. An empty store yields an empty slice.
	EnergyHistory(ctx context.Context, hours int) ([]hemmodels.EnergyHistoryPoint, error)

	ConsumptionAnalytics(ctx context.Context) (*hemmodels.ConsumptionAnalytics, error)
	HourlyStatistics(ctx context.Context) ([]hemmodels.HourlyStat, error)
	DailyStatistics(ctx context.Context) ([]hemmodels.DailyStat, error)

	// RecentActivity merges the four record kinds into one feed ordered
	// by timestamp descending, truncated to limit rows.
	RecentActivity(ctx context.Context, limit int) ([]hemmodels.ActivityEntry, error)
}
