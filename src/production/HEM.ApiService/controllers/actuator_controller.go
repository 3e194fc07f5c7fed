package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	logger "gitlab.com/maplesense1/hem.energy_server/src/production/HEM.Logger"
	interfaces "gitlab.com/maplesense1/hem.energy_server/src/production/HEM.Repository/Interfaces"
)

// ActuatorController serves the actuator snapshot and accepts relay
// control commands for republication on the control topic.
type ActuatorController struct {
	telemetry interfaces.TelemetryRepository
	publisher CommandPublisher
	logger    *logger.Logger
}

func NewActuatorController(telemetry interfaces.TelemetryRepository, publisher CommandPublisher, logger *logger.Logger) *ActuatorController {
	return &ActuatorController{telemetry: telemetry, publisher: publisher, logger: logger}
}

// RegisterRoutes registers the actuator routes with Gin
func (c *ActuatorController) RegisterRoutes(router *gin.Engine) {
	api := router.Group("/api")
	{
		api.GET("/actuators/status", c.GetActuatorsStatus)
		api.POST("/control/relay", c.ControlRelay)
	}
}

func (c *ActuatorController) GetActuatorsStatus(ctx *gin.Context) {
	rec, err := c.telemetry.LatestActuator(ctx)
	if err != nil {
		c.logger.ErrorWithError(err, "Failed to read latest actuator record")
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if rec == nil {
		ctx.JSON(http.StatusNotFound, gin.H{"error": "no data available"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"relay1":    rec.Relay1,
		"relay2":    rec.Relay2,
		"window":    rec.Window,
		"auto_mode": rec.AutoMode,
		"timestamp": rec.Timestamp,
	})
}

func (c *ActuatorController) ControlRelay(ctx *gin.Context) {
	var body struct {
		Command string `json:"command"`
	}
	if err := ctx.ShouldBindJSON(&body); err != nil || body.Command == "" {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "command required"})
		return
	}

	if err := c.publisher.PublishCommand(body.Command); err != nil {
		c.logger.ErrorWithError(err, "Failed to publish control command")
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.logger.Logger.Info().Str("command", body.Command).Msg("Control command sent")
	ctx.JSON(http.StatusOK, gin.H{"status": "success", "command": body.Command})
}
