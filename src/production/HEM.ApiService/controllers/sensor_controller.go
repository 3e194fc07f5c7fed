package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	logger "gitlab.com/maplesense1/hem.energy_server/src/production/HEM.Logger"
	interfaces "gitlab.com/maplesense1/hem.energy_server/src/production/HEM.Repository/Interfaces"
)

// SensorController serves the environmental and presence snapshots.
type SensorController struct {
	telemetry interfaces.TelemetryRepository
	logger    *logger.Logger
}

func NewSensorController(telemetry interfaces.TelemetryRepository, logger *logger.Logger) *SensorController {
	return &SensorController{telemetry: telemetry, logger: logger}
}

// RegisterRoutes registers the sensor routes with Gin
func (c *SensorController) RegisterRoutes(router *gin.Engine) {
	api := router.Group("/api")
	{
		api.GET("/sensors/current", c.GetCurrentSensors)
		api.GET("/presence/current", c.GetCurrentPresence)
	}
}

func (c *SensorController) GetCurrentSensors(ctx *gin.Context) {
	rec, err := c.telemetry.LatestSensor(ctx)
	if err != nil {
		c.logger.ErrorWithError(err, "Failed to read latest sensor record")
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if rec == nil {
		ctx.JSON(http.StatusNotFound, gin.H{"error": "no data available"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"temperature": rec.Temperature,
		"humidity":    rec.Humidity,
		"light_level": rec.LightLevel,
		"timestamp":   rec.Timestamp,
	})
}

func (c *SensorController) GetCurrentPresence(ctx *gin.Context) {
	rec, err := c.telemetry.LatestPresence(ctx)
	if err != nil {
		c.logger.ErrorWithError(err, "Failed to read latest presence record")
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if rec == nil {
		ctx.JSON(http.StatusNotFound, gin.H{"error": "no data available"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"presence":  rec.Presence,
		"timestamp": rec.Timestamp,
	})
}
