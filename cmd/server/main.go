package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"dwelling-dashboard/internal/bootstrap"
	"dwelling-dashboard/internal/config"
	"dwelling-dashboard/internal/handlers"
	"dwelling-dashboard/pkg/logging"
	"dwelling-dashboard/pkg/metrics"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	logger := bootstrap.NewLogger(cfg, "dwelling-dashboard")

	ctx := context.Background()
	logger.Info(ctx, "[STARTUP] Starting dwelling dashboard API server", logging.Fields{
		"version":     cfg.Version,
		"environment": cfg.Environment,
		"server_host": cfg.Server.Host,
		"server_port": cfg.Server.Port,
		"data_source": cfg.Data.Source,
	})

	// Initialize metrics collector
	metricsCollector := metrics.NewCollector("dwelling_dashboard")

	// Load readings and build the dataset; nothing is served without it
	dash, err := bootstrap.Load(ctx, cfg, logger, metricsCollector)
	if err != nil {
		logger.Fatal(ctx, "[STARTUP_ERROR] Failed to build dataset", logging.Fields{
			"data_source": cfg.Data.Source,
		}, err)
	}
	defer dash.Close()

	// Initialize handlers
	dashboardHandler := handlers.NewDashboardHandler(
		dash.Dataset,
		dash.Window,
		dash.Profile,
		dash.HealthChecker(),
		logger,
		metricsCollector,
	)

	// Setup router
	router := mux.NewRouter()

	// Register routes
	dashboardHandler.RegisterRoutes(router)

	// Prometheus metrics endpoint
	router.Handle("/metrics", promhttp.Handler())

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      handlers.Middleware(router, cfg.Server.AllowedOrigins, logger),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start server in goroutine
	go func() {
		logger.Info(ctx, "[SERVER_START] HTTP server listening", logging.Fields{
			"address":      server.Addr,
			"slider_max":   dash.Window.Domain(),
			"heatmap_days": dash.Dataset.Heatmap.Len(),
		})

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal(ctx, "[SERVER_ERROR] Server failed", logging.Fields{}, err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info(ctx, "[SHUTDOWN] Shutting down server...", logging.Fields{})

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error(ctx, "[SHUTDOWN_ERROR] Server forced to shutdown", logging.Fields{}, err)
	}

	logger.Info(ctx, "[SHUTDOWN_COMPLETE] Server stopped", logging.Fields{})
}
