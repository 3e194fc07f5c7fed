package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	alerts "gitlab.com/maplesense1/hem.energy_server/src/production/HEM.Alerts"
	"gitlab.com/maplesense1/hem.energy_server/src/production/HEM.ApiService/controllers"
	config "gitlab.com/maplesense1/hem.energy_server/src/production/HEM.Config"
	hemingestor "gitlab.com/maplesense1/hem.energy_server/src/production/HEM.Ingestor"
	logger "gitlab.com/maplesense1/hem.energy_server/src/production/HEM.Logger"
	implementation "gitlab.com/maplesense1/hem.energy_server/src/production/HEM.Repository/Implementation"
	status "gitlab.com/maplesense1/hem.energy_server/src/production/HEM.Status"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load configuration: %v", err))
	}

	log := logger.NewLogger(&cfg.Logging)
	log.Info("Starting home energy management backend")

	// Initialize the embedded store and bring the schema up to date
	// before any traffic is accepted.
	if dir := filepath.Dir(cfg.Database.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			log.FatalWithError(err, "Failed to create data directory")
		}
	}

	db, err := implementation.OpenDatabase(cfg.Database.Path, cfg.Database.BusyTimeout)
	if err != nil {
		log.FatalWithError(err, "Failed to open database")
	}
	defer db.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := implementation.Migrate(ctx, db); err != nil {
		log.FatalWithError(err, "Failed to migrate database schema")
	}
	log.Info("Database initialized")

	// Create repositories and domain services
	telemetryRepo := implementation.NewSQLiteTelemetryRepository(db, cfg.Ingest.ElectricityTariff)
	alertRepo := implementation.NewSQLiteAlertRepository(db)
	tracker := status.NewTracker()
	evaluator := alerts.NewEvaluator(alertRepo, log.WithComponent("alerts"))

	// Start the MQTT ingestor; it owns the transport client for the
	// lifetime of the process.
	ingestor := hemingestor.New(cfg, telemetryRepo, evaluator, tracker, log.WithComponent("ingestor"))
	if err := ingestor.Start(ctx); err != nil {
		log.FatalWithError(err, "Failed to start MQTT ingestor")
	}
	defer ingestor.Stop()

	// Initialize Gin router
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	// Configure CORS from config
	corsConfig := cors.Config{
		AllowOrigins:     cfg.CORS.AllowedOrigins,
		AllowMethods:     cfg.CORS.AllowedMethods,
		AllowHeaders:     cfg.CORS.AllowedHeaders,
		ExposeHeaders:    cfg.CORS.ExposedHeaders,
		AllowCredentials: cfg.CORS.AllowCredentials,
		MaxAge:           time.Duration(cfg.CORS.MaxAge) * time.Second,
	}
	router.Use(cors.New(corsConfig))

	// Create controllers and register routes
	apiLog := log.WithComponent("api")
	controllers.NewEnergyController(telemetryRepo, apiLog).RegisterRoutes(router)
	controllers.NewSensorController(telemetryRepo, apiLog).RegisterRoutes(router)
	controllers.NewActuatorController(telemetryRepo, ingestor, apiLog).RegisterRoutes(router)
	controllers.NewAnalyticsController(telemetryRepo, apiLog).RegisterRoutes(router)
	controllers.NewAlertController(alertRepo, apiLog).RegisterRoutes(router)
	controllers.NewStatusController(tracker).RegisterRoutes(router)

	// Create HTTP server with timeouts
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info("HTTP server starting on port " + cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.FatalWithError(err, "Failed to start HTTP server")
		}
	}()

	// Wait for shutdown signal
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	log.Info("Shutting down...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.ErrorWithError(err, "Server forced to shutdown")
	}
}
