package handler

import (
	"context"
	"net/http"
)

// Counter reports the catalog size
type Counter interface {
	Count(ctx context.Context) (int64, error)
}

// HealthHandler serves GET /health
type HealthHandler struct {
	catalog Counter
	version string
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(catalog Counter, version string) *HealthHandler {
	return &HealthHandler{catalog: catalog, version: version}
}

type healthResponse struct {
	OK      bool   `json:"ok"`
	Message string `json:"message"`
	Version string `json:"version,omitempty"`
	Planets *int64 `json:"planets,omitempty"`
	Error   string `json:"error,omitempty"`
}

func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	n, err := h.catalog.Count(r.Context())
	if err != nil {
		writeJSON(w, http.StatusServiceUnavailable, healthResponse{
			OK:      false,
			Message: "Catalog store unavailable",
			Version: h.version,
			Error:   err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, healthResponse{
		OK:      true,
		Message: "NextPlanet backend running",
		Version: h.version,
		Planets: &n,
	})
}
