package implementation

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	hemmodels "gitlab.com/maplesense1/hem.energy_server/src/production/HEM.Models"
)

func TestInsertEnergyDerivesCost(t *testing.T) {
	db := openTestDB(t)
	repo := NewSQLiteTelemetryRepository(db, 0.15)
	ctx := context.Background()

	rec := hemmodels.EnergyRecord{
		DeviceID:    "d1",
		Power:       2500,
		Voltage:     230,
		Current:     10.8,
		EnergyTotal: 12.0,
	}
	require.NoError(t, repo.InsertEnergy(ctx, &rec))

	assert.Equal(t, 12.0*0.15, rec.Cost)
	assert.InDelta(t, 1.8, rec.Cost, 1e-9)
	assert.NotZero(t, rec.ID)
	assert.False(t, rec.Timestamp.IsZero())

	got, err := repo.LatestEnergy(ctx)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, rec.Cost, got.Cost)
	assert.Equal(t, "d1", got.DeviceID)
}

func TestInsertAssignsIncreasingIDs(t *testing.T) {
	db := openTestDB(t)
	repo := NewSQLiteTelemetryRepository(db, 0.15)
	ctx := context.Background()

	var lastID int64
	for i := 0; i < 5; i++ {
		rec := hemmodels.EnergyRecord{DeviceID: "d1", Power: float64(100 * i)}
		require.NoError(t, repo.InsertEnergy(ctx, &rec))
		assert.Greater(t, rec.ID, lastID)
		lastID = rec.ID
	}
}

func TestLatestReadsReturnNilOnEmptyStore(t *testing.T) {
	db := openTestDB(t)
	repo := NewSQLiteTelemetryRepository(db, 0.15)
	ctx := context.Background()

	energy, err := repo.LatestEnergy(ctx)
	require.NoError(t, err)
	assert.Nil(t, energy)

	sensor, err := repo.LatestSensor(ctx)
	require.NoError(t, err)
	assert.Nil(t, sensor)

	presence, err := repo.LatestPresence(ctx)
	require.NoError(t, err)
	assert.Nil(t, presence)

	actuator, err := repo.LatestActuator(ctx)
	require.NoError(t, err)
	assert.Nil(t, actuator)
}

func TestEnergyHistoryEmptyStore(t *testing.T) {
	db := openTestDB(t)
	repo := NewSQLiteTelemetryRepository(db, 0.15)

	points, err := repo.EnergyHistory(context.Background(), 24)
	require.NoError(t, err)
	assert.NotNil(t, points)
	assert.Empty(t, points)
}

func TestEnergyHistoryBoundsAndOrder(t *testing.T) {
	db := openTestDB(t)
	repo := NewSQLiteTelemetryRepository(db, 0.15)
	ctx := context.Background()

	inWindow := hemmodels.EnergyRecord{DeviceID: "d1", Power: 100, EnergyTotal: 1}
	require.NoError(t, repo.InsertEnergy(ctx, &inWindow))

	old := hemmodels.EnergyRecord{DeviceID: "d1", Power: 50, EnergyTotal: 0.5}
	require.NoError(t, repo.InsertEnergy(ctx, &old))
	backdate(t, db, "energy_data", old.ID, time.Now().UTC().Add(-48*time.Hour))

	points, err := repo.EnergyHistory(ctx, 24)
	require.NoError(t, err)
	require.Len(t, points, 1)
	assert.Equal(t, 100.0, points[0].Power)
}

func TestLatestSensorAndPresence(t *testing.T) {
	db := openTestDB(t)
	repo := NewSQLiteTelemetryRepository(db, 0.15)
	ctx := context.Background()

	sensor := hemmodels.SensorRecord{DeviceID: "s1", Temperature: 22.5, Humidity: 45, LightLevel: 80}
	require.NoError(t, repo.InsertSensor(ctx, &sensor))

	presence := hemmodels.PresenceRecord{DeviceID: "p1", Presence: true}
	require.NoError(t, repo.InsertPresence(ctx, &presence))

	gotSensor, err := repo.LatestSensor(ctx)
	require.NoError(t, err)
	require.NotNil(t, gotSensor)
	assert.Equal(t, 22.5, gotSensor.Temperature)
	assert.Equal(t, 80, gotSensor.LightLevel)

	gotPresence, err := repo.LatestPresence(ctx)
	require.NoError(t, err)
	require.NotNil(t, gotPresence)
	assert.True(t, gotPresence.Presence)
}

func TestConsumptionAnalytics(t *testing.T) {
	db := openTestDB(t)
	repo := NewSQLiteTelemetryRepository(db, 0.15)
	ctx := context.Background()

	first := hemmodels.EnergyRecord{DeviceID: "d1", Power: 1000, EnergyTotal: 10}
	require.NoError(t, repo.InsertEnergy(ctx, &first))
	second := hemmodels.EnergyRecord{DeviceID: "d1", Power: 2000, EnergyTotal: 12}
	require.NoError(t, repo.InsertEnergy(ctx, &second))

	analytics, err := repo.ConsumptionAnalytics(ctx)
	require.NoError(t, err)

	assert.InDelta(t, 2.0, analytics.Today.Energy, 1e-9)
	assert.InDelta(t, 2.0*0.15, analytics.Today.Cost, 1e-9)
	assert.Equal(t, 0.0, analytics.Yesterday.Energy)
	assert.InDelta(t, 1500, analytics.AveragePower, 1e-9)
	assert.InDelta(t, 2000, analytics.Peak.Power, 1e-9)
	require.NotNil(t, analytics.Peak.Time)
	assert.InDelta(t, analytics.Today.Cost*30, analytics.MonthlyEstimate, 1e-9)
	assert.InDelta(t, analytics.Today.Cost*0.15, analytics.PotentialSavings, 1e-9)
}

func TestConsumptionAnalyticsEmptyStore(t *testing.T) {
	db := openTestDB(t)
	repo := NewSQLiteTelemetryRepository(db, 0.15)

	analytics, err := repo.ConsumptionAnalytics(context.Background())
	require.NoError(t, err)

	assert.Zero(t, analytics.Today.Energy)
	assert.Zero(t, analytics.AveragePower)
	assert.Zero(t, analytics.Peak.Power)
	assert.Nil(t, analytics.Peak.Time)
}

func TestHourlyAndDailyStatistics(t *testing.T) {
	db := openTestDB(t)
	repo := NewSQLiteTelemetryRepository(db, 0.15)
	ctx := context.Background()

	for _, power := range []float64{500, 1500} {
		rec := hemmodels.EnergyRecord{DeviceID: "d1", Power: power, EnergyTotal: power / 1000}
		require.NoError(t, repo.InsertEnergy(ctx, &rec))
	}

	hourly, err := repo.HourlyStatistics(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, hourly)
	assert.InDelta(t, 1000, hourly[0].AvgPower, 1e-9)
	assert.InDelta(t, 1500, hourly[0].MaxPower, 1e-9)
	assert.InDelta(t, 500, hourly[0].MinPower, 1e-9)
	assert.Regexp(t, `^\d{2}:00$`, hourly[0].Hour)

	daily, err := repo.DailyStatistics(ctx)
	require.NoError(t, err)
	require.Len(t, daily, 1)
	assert.InDelta(t, 1.0, daily[0].Energy, 1e-9)
	assert.Regexp(t, `^\d{4}-\d{2}-\d{2}$`, daily[0].Day)
}

func TestRecentActivityMergesAndOrders(t *testing.T) {
	db := openTestDB(t)
	repo := NewSQLiteTelemetryRepository(db, 0.15)
	ctx := context.Background()

	energy := hemmodels.EnergyRecord{DeviceID: "d1", Power: 1200, EnergyTotal: 3}
	require.NoError(t, repo.InsertEnergy(ctx, &energy))
	backdate(t, db, "energy_data", energy.ID, time.Now().UTC().Add(-2*time.Hour))

	sensor := hemmodels.SensorRecord{DeviceID: "s1", Temperature: 21, Humidity: 40, LightLevel: 60}
	require.NoError(t, repo.InsertSensor(ctx, &sensor))

	presence := hemmodels.PresenceRecord{DeviceID: "p1", Presence: false}
	require.NoError(t, repo.InsertPresence(ctx, &presence))
	backdate(t, db, "presence_data", presence.ID, time.Now().UTC().Add(-time.Hour))

	actuator := hemmodels.ActuatorRecord{DeviceID: "a1", Relay1: true, Window: true}
	require.NoError(t, repo.InsertActuator(ctx, &actuator))
	backdate(t, db, "actuator_states", actuator.ID, time.Now().UTC().Add(-3*time.Hour))

	entries, err := repo.RecentActivity(ctx, 10)
	require.NoError(t, err)
	require.Len(t, entries, 4)

	// newest first
	for i := 1; i < len(entries); i++ {
		assert.False(t, entries[i].Timestamp.After(entries[i-1].Timestamp))
	}

	assert.Equal(t, "sensor", entries[0].Category)
	assert.Contains(t, entries[0].Details, "Temperature 21.0 C")
	assert.Equal(t, "presence", entries[1].Category)
	assert.Equal(t, "No presence", entries[1].Details)
	assert.Equal(t, "energy", entries[2].Category)
	assert.Contains(t, entries[2].Details, "Power 1200.00 W")
	assert.Equal(t, "actuator", entries[3].Category)
	assert.Contains(t, entries[3].Details, "Relay1 on")
	assert.Contains(t, entries[3].Details, "window on")
}

func TestRecentActivityTruncatesToLimit(t *testing.T) {
	db := openTestDB(t)
	repo := NewSQLiteTelemetryRepository(db, 0.15)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		rec := hemmodels.EnergyRecord{DeviceID: "d1", Power: float64(i)}
		require.NoError(t, repo.InsertEnergy(ctx, &rec))
	}

	entries, err := repo.RecentActivity(ctx, 3)
	require.NoError(t, err)
	assert.Len(t, entries, 3)
}
