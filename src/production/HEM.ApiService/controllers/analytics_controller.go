package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	logger "gitlab.com/maplesense1/hem.energy_server/src/production/HEM.Logger"
	interfaces "gitlab.com/maplesense1/hem.energy_server/src/production/HEM.Repository/Interfaces"
)

const (
	defaultActivityLimit = 20
	maxActivityLimit     = 100
)

// AnalyticsController serves consumption analytics, aggregate statistics
// and the consolidated activity feed.
type AnalyticsController struct {
	telemetry interfaces.TelemetryRepository
	logger    *logger.Logger
}

func NewAnalyticsController(telemetry interfaces.TelemetryRepository, logger *logger.Logger) *AnalyticsController {
	return &AnalyticsController{telemetry: telemetry, logger: logger}
}

// RegisterRoutes registers the analytics routes with Gin
func (c *AnalyticsController) RegisterRoutes(router *gin.Engine) {
	api := router.Group("/api")
	{
		api.GET("/analytics/consumption", c.GetConsumptionAnalytics)
		api.GET("/statistics/hourly", c.GetHourlyStatistics)
		api.GET("/statistics/daily", c.GetDailyStatistics)
		api.GET("/activity", c.GetRecentActivity)
	}
}

func (c *AnalyticsController) GetConsumptionAnalytics(ctx *gin.Context) {
	analytics, err := c.telemetry.ConsumptionAnalytics(ctx)
	if err != nil {
		c.logger.ErrorWithError(err, "Failed to compute consumption analytics")
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	analytics.Today.Energy = round(analytics.Today.Energy, 3)
	analytics.Today.Cost = round(analytics.Today.Cost, 3)
	analytics.Yesterday.Energy = round(analytics.Yesterday.Energy, 3)
	analytics.Yesterday.Cost = round(analytics.Yesterday.Cost, 3)
	analytics.AveragePower = round(analytics.AveragePower, 2)
	analytics.Peak.Power = round(analytics.Peak.Power, 2)
	analytics.PotentialSavings = round(analytics.PotentialSavings, 3)
	analytics.MonthlyEstimate = round(analytics.MonthlyEstimate, 2)

	ctx.JSON(http.StatusOK, analytics)
}

func (c *AnalyticsController) GetHourlyStatistics(ctx *gin.Context) {
	stats, err := c.telemetry.HourlyStatistics(ctx)
	if err != nil {
		c.logger.ErrorWithError(err, "Failed to compute hourly statistics")
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	for i := range stats {
		stats[i].AvgPower = round(stats[i].AvgPower, 2)
		stats[i].MaxPower = round(stats[i].MaxPower, 2)
		stats[i].MinPower = round(stats[i].MinPower, 2)
	}
	ctx.JSON(http.StatusOK, stats)
}

func (c *AnalyticsController) GetDailyStatistics(ctx *gin.Context) {
	stats, err := c.telemetry.DailyStatistics(ctx)
	if err != nil {
		c.logger.ErrorWithError(err, "Failed to compute daily statistics")
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	for i := range stats {
		stats[i].Energy = round(stats[i].Energy, 3)
		stats[i].Cost = round(stats[i].Cost, 3)
		stats[i].AvgPower = round(stats[i].AvgPower, 2)
	}
	ctx.JSON(http.StatusOK, stats)
}

func (c *AnalyticsController) GetRecentActivity(ctx *gin.Context) {
	limit, err := strconv.Atoi(ctx.DefaultQuery("limit", strconv.Itoa(defaultActivityLimit)))
	if err != nil {
		limit = defaultActivityLimit
	}
	if limit < 1 {
		limit = 1
	}
	if limit > maxActivityLimit {
		limit = maxActivityLimit
	}

	entries, err := c.telemetry.RecentActivity(ctx, limit)
	if err != nil {
		c.logger.ErrorWithError(err, "Failed to read recent activity")
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"items": entries})
}
