package handler

import (
	"net/http"

	"nextplanet-service/pkg/logger"
	"nextplanet-service/pkg/metrics"
)

// RouterConfig holds the HTTP surface settings
type RouterConfig struct {
	APIPrefix       string
	CORSAllowOrigin string
	Version         string
	// MetricsHandler is mounted at /metrics when set
	MetricsHandler http.Handler
}

// NewRouter builds the HTTP handler with all routes and middleware.
// Execution order: recovery -> request id -> logging -> cors -> metrics -> mux
func NewRouter(cfg RouterConfig, query PlanetQuerier, catalog Counter, log logger.Logger, m *metrics.Metrics) http.Handler {
	mux := http.NewServeMux()

	mux.Handle("GET /health", NewHealthHandler(catalog, cfg.Version))
	if cfg.MetricsHandler != nil {
		mux.Handle("GET /metrics", cfg.MetricsHandler)
	}

	NewPlanetHandler(query, log).Register(mux, cfg.APIPrefix)

	allowOrigin := cfg.CORSAllowOrigin
	if allowOrigin == "" {
		allowOrigin = "*"
	}

	return applyMiddleware(mux,
		recoveryMiddleware(log),
		requestIDMiddleware,
		loggingMiddleware(log),
		corsMiddleware(allowOrigin),
		metricsMiddleware(m),
	)
}
