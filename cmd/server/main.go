package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/hazardscope/api/internal/cache"
	"github.com/hazardscope/api/internal/classify"
	"github.com/hazardscope/api/internal/climate"
	"github.com/hazardscope/api/internal/config"
	"github.com/hazardscope/api/internal/handlers"
	"github.com/hazardscope/api/internal/hazard"
	"github.com/hazardscope/api/internal/logger"
	"github.com/hazardscope/api/internal/middleware"
	"github.com/hazardscope/api/internal/observability"
	"github.com/hazardscope/api/internal/reference"
	"github.com/hazardscope/api/internal/services"
)

const (
	shutdownTimeout = 30 * time.Second
)

func main() {
	// Load configuration from environment variables
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize structured logger
	log := logger.New(cfg.Server.Env)
	log.Info("Starting Hazardscope API", map[string]interface{}{
		"version":     handlers.APIVersion,
		"environment": cfg.Server.Env,
		"port":        cfg.Server.Port,
	})

	// Load the optional static reference table
	var refTable *reference.Table
	if cfg.Reference.Path != "" {
		refTable, err = reference.Load(cfg.Reference.Path)
		if err != nil {
			log.Fatal("Failed to load reference table", err, map[string]interface{}{
				"path": cfg.Reference.Path,
			})
		}
		log.Info("Reference table loaded", map[string]interface{}{
			"path":      cfg.Reference.Path,
			"variables": refTable.Variables(),
		})
	} else {
		log.Warn("No reference table configured, region scores disabled", nil)
	}

	// Wire metrics, upstream clients, and the report pipeline
	metrics := observability.NewMetrics()
	responseCache := cache.New(cfg.Cache.MaxEntries, cfg.Cache.TTL)

	climateClient := climate.NewClient(cfg.Climate, log, metrics)
	cachedSeries := climate.NewCachedProvider(climateClient, responseCache, metrics)
	hazardClient := hazard.NewClient(cfg.Hazard, log, metrics)

	reportService := services.NewReportService(
		cachedSeries,
		hazardClient,
		refTable,
		classify.DefaultThresholds(),
		log,
		metrics,
	)

	// Setup Gin router
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	// Add middleware in order: RequestID -> Logger -> Recovery -> CORS
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(log))
	router.Use(middleware.Recovery(log))
	router.Use(middleware.CORS(cfg.CORS.Origins))

	// Register health check and metrics routes
	healthHandler := handlers.NewHealthHandler(refTable, cfg.Server.Env)
	router.GET("/health", healthHandler.Health)
	router.GET("/health/ready", healthHandler.Ready)
	router.GET("/api/v1/info", healthHandler.Info)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Initialize handlers
	reportHandler := handlers.NewReportHandler(reportService)

	// Register API v1 routes
	v1 := router.Group("/api/v1")
	{
		reports := v1.Group("/reports")
		{
			reports.GET("/at-point", reportHandler.AtPoint)
		}
	}

	// Create HTTP server
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: router,
	}

	// Start server in goroutine
	go func() {
		log.Info("Server listening", map[string]interface{}{
			"port": cfg.Server.Port,
			"addr": srv.Addr,
		})
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server failed to start", err, nil)
		}
	}()

	// Wait for interrupt signal (SIGINT or SIGTERM)
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	// Graceful shutdown
	log.Info("Shutting down server...", nil)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", err, map[string]interface{}{
			"timeout": shutdownTimeout.String(),
		})
	}

	log.Info("Server exited", nil)
}
