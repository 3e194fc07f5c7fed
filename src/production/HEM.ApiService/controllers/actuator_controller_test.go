package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	hemmodels "gitlab.com/maplesense1/hem.energy_server/src/production/HEM.Models"
	implementation "gitlab.com/maplesense1/hem.energy_server/src/production/HEM.Repository/Implementation"
)

type fakePublisher struct {
	published []string
	err       error
}

func (f *fakePublisher) PublishCommand(command string) error {
	if f.err != nil {
		return f.err
	}
	f.published = append(f.published, command)
	return nil
}

func setupActuatorRouter(t *testing.T, publisher CommandPublisher) (*gin.Engine, *implementation.SQLiteTelemetryRepository) {
	t.Helper()
	repo := implementation.NewSQLiteTelemetryRepository(openTestDB(t), 0.15)
	router := gin.New()
	NewActuatorController(repo, publisher, testLogger()).RegisterRoutes(router)
	return router, repo
}

func TestGetActuatorsStatusEmptyStoreReturnsNotFound(t *testing.T) {
	router, _ := setupActuatorRouter(t, &fakePublisher{})

	rec := doRequest(router, http.MethodGet, "/api/actuators/status", "")

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetActuatorsStatusIncludesWindow(t *testing.T) {
	router, repo := setupActuatorRouter(t, &fakePublisher{})

	stored := hemmodels.ActuatorRecord{DeviceID: "a1", Relay1: true, Window: true, AutoMode: true}
	require.NoError(t, repo.InsertActuator(context.Background(), &stored))

	rec := doRequest(router, http.MethodGet, "/api/actuators/status", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, true, body["relay1"])
	assert.Equal(t, false, body["relay2"])
	assert.Equal(t, true, body["window"])
	assert.Equal(t, true, body["auto_mode"])
}

func TestControlRelayPublishesCommand(t *testing.T) {
	publisher := &fakePublisher{}
	router, _ := setupActuatorRouter(t, publisher)

	rec := doRequest(router, http.MethodPost, "/api/control/relay", `{"command":"relay1_on"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"relay1_on"}, publisher.published)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "success", body["status"])
	assert.Equal(t, "relay1_on", body["command"])
}

func TestControlRelayMissingCommandReturnsBadRequest(t *testing.T) {
	publisher := &fakePublisher{}
	router, _ := setupActuatorRouter(t, publisher)

	for _, body := range []string{"", "{}", `{"command":""}`} {
		rec := doRequest(router, http.MethodPost, "/api/control/relay", body)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	}
	assert.Empty(t, publisher.published)
}

func TestControlRelayPublishFailureReturnsServerError(t *testing.T) {
	router, _ := setupActuatorRouter(t, &fakePublisher{err: errors.New("mqtt client is not connected")})

	rec := doRequest(router, http.MethodPost, "/api/control/relay", `{"command":"relay1_on"}`)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
