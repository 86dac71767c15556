package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"nextplanet-service/internal/infrastructure/config"
	"nextplanet-service/internal/infrastructure/persistence"
	"nextplanet-service/internal/interface/handler"
	"nextplanet-service/internal/usecase"
	"nextplanet-service/pkg/logger"
	"nextplanet-service/pkg/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.NewLogger("info").Fatal("Failed to load config", "error", err)
	}

	// Create logger
	log := logger.NewLogger(cfg.LogLevel)
	defer log.Sync()
	log.Info("Starting NextPlanet Service", "version", cfg.AppVersion, "store", cfg.StoreDriver)

	// Set up context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Set up metrics
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.NewMetrics(cfg.MetricsNamespace, reg)

	// Connect the catalog store once; every request shares it
	catalog, closeCatalog, err := persistence.OpenCatalog(ctx, cfg, log)
	if err != nil {
		log.Fatal("Failed to open catalog store", "error", err)
	}

	queryService := usecase.NewPlanetQueryService(catalog, log)

	router := handler.NewRouter(handler.RouterConfig{
		APIPrefix:       cfg.APIPrefix,
		CORSAllowOrigin: cfg.CORSAllowOrigin,
		Version:         cfg.AppVersion,
		MetricsHandler:  promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}),
	}, queryService, catalog, log, m)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	// Start HTTP server in a goroutine
	go func() {
		log.Info("Starting HTTP server", "port", cfg.Port, "prefix", cfg.APIPrefix)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server error", "error", err)
		}
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan
	log.Info("Received signal", "signal", sig)

	// Graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error", "error", err)
	}

	cancel()

	if err := closeCatalog(shutdownCtx); err != nil {
		log.Error("Catalog store close error", "error", err)
	}

	log.Info("NextPlanet Service stopped")
}
