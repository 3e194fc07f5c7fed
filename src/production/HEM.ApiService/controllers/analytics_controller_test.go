package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	hemmodels "gitlab.com/maplesense1/hem.energy_server/src/production/HEM.Models"
	implementation "gitlab.com/maplesense1/hem.energy_server/src/production/HEM.Repository/Implementation"
	interfaces "gitlab.com/maplesense1/hem.energy_server/src/production/HEM.Repository/Interfaces"
)

// activityStub records the limit passed down by the controller.
type activityStub struct {
	interfaces.TelemetryRepository
	gotLimit int
}

func (s *activityStub) RecentActivity(ctx context.Context, limit int) ([]hemmodels.ActivityEntry, error) {
	s.gotLimit = limit
	return []hemmodels.ActivityEntry{}, nil
}

func setupAnalyticsRouter(t *testing.T) (*gin.Engine, *implementation.SQLiteTelemetryRepository) {
	t.Helper()
	repo := implementation.NewSQLiteTelemetryRepository(openTestDB(t), 0.15)
	router := gin.New()
	NewAnalyticsController(repo, testLogger()).RegisterRoutes(router)
	return router, repo
}

func TestGetConsumptionAnalyticsEmptyStore(t *testing.T) {
	router, _ := setupAnalyticsRouter(t)

	rec := doRequest(router, http.MethodGet, "/api/analytics/consumption", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body hemmodels.ConsumptionAnalytics
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Zero(t, body.Today.Energy)
	assert.Zero(t, body.AveragePower)
	assert.Nil(t, body.Peak.Time)
}

func TestGetConsumptionAnalyticsRoundsValues(t *testing.T) {
	router, repo := setupAnalyticsRouter(t)
	ctx := context.Background()

	first := hemmodels.EnergyRecord{DeviceID: "d1", Power: 400.456, EnergyTotal: 10.0}
	second := hemmodels.EnergyRecord{DeviceID: "d1", Power: 900.123, EnergyTotal: 11.2344}
	require.NoError(t, repo.InsertEnergy(ctx, &first))
	require.NoError(t, repo.InsertEnergy(ctx, &second))

	rec := doRequest(router, http.MethodGet, "/api/analytics/consumption", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body hemmodels.ConsumptionAnalytics
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.InDelta(t, 1.234, body.Today.Energy, 1e-9)
	assert.InDelta(t, 900.12, body.Peak.Power, 1e-9)
	require.NotNil(t, body.Peak.Time)
}

func TestGetHourlyStatistics(t *testing.T) {
	router, repo := setupAnalyticsRouter(t)

	stored := hemmodels.EnergyRecord{DeviceID: "d1", Power: 750.556}
	require.NoError(t, repo.InsertEnergy(context.Background(), &stored))

	rec := doRequest(router, http.MethodGet, "/api/statistics/hourly", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body []hemmodels.HourlyStat
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body, 1)
	assert.InDelta(t, 750.56, body[0].AvgPower, 1e-9)
}

func TestGetDailyStatistics(t *testing.T) {
	router, repo := setupAnalyticsRouter(t)
	ctx := context.Background()

	first := hemmodels.EnergyRecord{DeviceID: "d1", Power: 500, EnergyTotal: 1.0}
	second := hemmodels.EnergyRecord{DeviceID: "d1", Power: 700, EnergyTotal: 2.5}
	require.NoError(t, repo.InsertEnergy(ctx, &first))
	require.NoError(t, repo.InsertEnergy(ctx, &second))

	rec := doRequest(router, http.MethodGet, "/api/statistics/daily", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body []hemmodels.DailyStat
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body, 1)
	assert.InDelta(t, 1.5, body[0].Energy, 1e-9)
}

func TestGetRecentActivityMergesStreams(t *testing.T) {
	router, repo := setupAnalyticsRouter(t)
	ctx := context.Background()

	energy := hemmodels.EnergyRecord{DeviceID: "d1", Power: 500, EnergyTotal: 1}
	sensor := hemmodels.SensorRecord{DeviceID: "s1", Temperature: 21, Humidity: 40, LightLevel: 70}
	require.NoError(t, repo.InsertEnergy(ctx, &energy))
	require.NoError(t, repo.InsertSensor(ctx, &sensor))

	rec := doRequest(router, http.MethodGet, "/api/activity", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Items []hemmodels.ActivityEntry `json:"items"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Items, 2)
}

func TestGetRecentActivityLimitClamped(t *testing.T) {
	cases := []struct {
		query string
		want  int
	}{
		{"", defaultActivityLimit},
		{"?limit=bogus", defaultActivityLimit},
		{"?limit=0", 1},
		{"?limit=-5", 1},
		{"?limit=200", maxActivityLimit},
		{"?limit=42", 42},
	}
	for _, tc := range cases {
		stub := &activityStub{}
		router := gin.New()
		NewAnalyticsController(stub, testLogger()).RegisterRoutes(router)

		rec := doRequest(router, http.MethodGet, "/api/activity"+tc.query, "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, tc.want, stub.gotLimit, "query %q", tc.query)
	}
}
