package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	status "gitlab.com/maplesense1/hem.energy_server/src/production/HEM.Status"
)

// StatusController serves the live device status and process health.
type StatusController struct {
	tracker *status.Tracker
}

func NewStatusController(tracker *status.Tracker) *StatusController {
	return &StatusController{tracker: tracker}
}

// RegisterRoutes registers the status routes with Gin
func (c *StatusController) RegisterRoutes(router *gin.Engine) {
	router.GET("/health", c.GetHealth)
	router.GET("/api/status/live", c.GetLiveStatus)
}

func (c *StatusController) GetHealth(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (c *StatusController) GetLiveStatus(ctx *gin.Context) {
	state, lastSeen := c.tracker.Snapshot()

	label := "DOWN"
	if state == status.StatusOnline {
		label = "LIVE"
	}

	resp := gin.H{"status": state, "label": label}
	if lastSeen.IsZero() {
		resp["last_seen"] = nil
	} else {
		resp["last_seen"] = lastSeen
	}
	ctx.JSON(http.StatusOK, resp)
}
