package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	logger "gitlab.com/maplesense1/hem.energy_server/src/production/HEM.Logger"
	interfaces "gitlab.com/maplesense1/hem.energy_server/src/production/HEM.Repository/Interfaces"
)

// alertListLimit caps the alert listing at the most recent rows.
const alertListLimit = 50

// AlertController serves the alert listing and resolution.
type AlertController struct {
	alerts interfaces.AlertRepository
	logger *logger.Logger
}

func NewAlertController(alerts interfaces.AlertRepository, logger *logger.Logger) *AlertController {
	return &AlertController{alerts: alerts, logger: logger}
}

// RegisterRoutes registers the alert routes with Gin
func (c *AlertController) RegisterRoutes(router *gin.Engine) {
	api := router.Group("/api")
	{
		api.GET("/alerts", c.GetAlerts)
		api.PUT("/alerts/:id/resolve", c.ResolveAlert)
	}
}

func (c *AlertController) GetAlerts(ctx *gin.Context) {
	alerts, err := c.alerts.ListRecent(ctx, alertListLimit)
	if err != nil {
		c.logger.ErrorWithError(err, "Failed to list alerts")
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	ctx.JSON(http.StatusOK, alerts)
}

func (c *AlertController) ResolveAlert(ctx *gin.Context) {
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid alert id"})
		return
	}

	// Resolution is idempotent: unknown ids and repeat calls succeed.
	if err := c.alerts.Resolve(ctx, id); err != nil {
		c.logger.ErrorWithError(err, "Failed to resolve alert")
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"status": "success", "alert_id": id})
}
