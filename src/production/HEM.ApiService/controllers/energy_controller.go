package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	logger "gitlab.com/maplesense1/hem.energy_server/src/production/HEM.Logger"
	interfaces "gitlab.com/maplesense1/hem.energy_server/src/production/HEM.Repository/Interfaces"
)

// EnergyController serves the current energy snapshot and the bounded
// energy history.
type EnergyController struct {
	telemetry interfaces.TelemetryRepository
	logger    *logger.Logger
}

func NewEnergyController(telemetry interfaces.TelemetryRepository, logger *logger.Logger) *EnergyController {
	return &EnergyController{telemetry: telemetry, logger: logger}
}

// RegisterRoutes registers the energy routes with Gin
func (c *EnergyController) RegisterRoutes(router *gin.Engine) {
	api := router.Group("/api")
	{
		api.GET("/energy/current", c.GetCurrentEnergy)
		api.GET("/energy/history", c.GetEnergyHistory)
	}
}

func (c *EnergyController) GetCurrentEnergy(ctx *gin.Context) {
	rec, err := c.telemetry.LatestEnergy(ctx)
	if err != nil {
		c.logger.ErrorWithError(err, "Failed to read latest energy record")
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if rec == nil {
		ctx.JSON(http.StatusNotFound, gin.H{"error": "no data available"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"power":        round(rec.Power, 2),
		"voltage":      rec.Voltage,
		"current":      rec.Current,
		"energy_total": round(rec.EnergyTotal, 3),
		"cost":         round(rec.Cost, 3),
		"timestamp":    rec.Timestamp,
	})
}

func (c *EnergyController) GetEnergyHistory(ctx *gin.Context) {
	hours, err := strconv.Atoi(ctx.DefaultQuery("hours", "24"))
	if err != nil || hours <= 0 {
		hours = 24
	}

	points, err := c.telemetry.EnergyHistory(ctx, hours)
	if err != nil {
		c.logger.ErrorWithError(err, "Failed to read energy history")
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	items := make([]gin.H, 0, len(points))
	for _, p := range points {
		items = append(items, gin.H{
			"timestamp":    p.Timestamp,
			"power":        round(p.Power, 2),
			"energy_total": round(p.EnergyTotal, 3),
			"cost":         round(p.Cost, 3),
		})
	}
	ctx.JSON(http.StatusOK, items)
}
