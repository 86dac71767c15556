package handler

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"strconv"
	"strings"

	"nextplanet-service/internal/domain/entity"
	"nextplanet-service/internal/usecase"
	"nextplanet-service/pkg/logger"
)

// PlanetQuerier is the read side the planet routes depend on
type PlanetQuerier interface {
	List(ctx context.Context, limit int) ([]*entity.Planet, error)
	Recommend(ctx context.Context, count int) ([]*entity.Planet, error)
	Lookup(ctx context.Context, key string) (*entity.Planet, error)
	Search(ctx context.Context, params usecase.SearchParams) ([]*entity.Planet, error)
}

// PlanetHandler serves the catalog query routes
type PlanetHandler struct {
	query  PlanetQuerier
	logger logger.Logger
}

// NewPlanetHandler creates a new planet handler
func NewPlanetHandler(query PlanetQuerier, logger logger.Logger) *PlanetHandler {
	return &PlanetHandler{
		query:  query,
		logger: logger,
	}
}

// Register mounts the planet routes under prefix.
// Literal segments win over {key}, so /planets/search never reaches Lookup.
func (h *PlanetHandler) Register(mux *http.ServeMux, prefix string) {
	mux.HandleFunc("GET "+prefix+"/planets", h.List)
	mux.HandleFunc("GET "+prefix+"/planets/recommended", h.Recommend)
	mux.HandleFunc("GET "+prefix+"/planets/search", h.Search)
	mux.HandleFunc("GET "+prefix+"/planets/{key}", h.Lookup)
}

// List handles GET /planets?limit=
func (h *PlanetHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, err := intParam(r, "limit", 0)
	if err != nil {
		writeBadRequest(w, err)
		return
	}

	planets, err := h.query.List(r.Context(), limit)
	if err != nil {
		h.writeFailure(w, "Failed to fetch planets", err)
		return
	}
	writeJSON(w, http.StatusOK, planets)
}

// Recommend handles GET /planets/recommended?count=
func (h *PlanetHandler) Recommend(w http.ResponseWriter, r *http.Request) {
	count, err := intParam(r, "count", usecase.DefaultRecommendCount)
	if err != nil {
		writeBadRequest(w, err)
		return
	}

	planets, err := h.query.Recommend(r.Context(), count)
	if err != nil {
		h.writeFailure(w, "Failed to fetch recommended planets", err)
		return
	}
	writeJSON(w, http.StatusOK, planets)
}

// Lookup handles GET /planets/{key}
func (h *PlanetHandler) Lookup(w http.ResponseWriter, r *http.Request) {
	planet, err := h.query.Lookup(r.Context(), r.PathValue("key"))
	if err != nil {
		if errors.Is(err, entity.ErrPlanetNotFound) {
			writeJSON(w, http.StatusNotFound, response{OK: false, Message: "Planet not found"})
			return
		}
		h.writeFailure(w, "Failed to fetch planet", err)
		return
	}
	writeJSON(w, http.StatusOK, planet)
}

// Search handles GET /planets/search?q=&maxDistanceMkm=&sort=&limit=
func (h *PlanetHandler) Search(w http.ResponseWriter, r *http.Request) {
	limit, err := intParam(r, "limit", usecase.DefaultSearchLimit)
	if err != nil {
		writeBadRequest(w, err)
		return
	}
	maxDistance, err := floatParam(r, "maxDistanceMkm")
	if err != nil {
		writeBadRequest(w, err)
		return
	}

	query := r.URL.Query()
	planets, err := h.query.Search(r.Context(), usecase.SearchParams{
		Query:          query.Get("q"),
		MaxDistanceMkm: maxDistance,
		Sort:           usecase.ParseSortMode(query.Get("sort")),
		Limit:          limit,
	})
	if err != nil {
		h.writeFailure(w, "Search failed", err)
		return
	}
	writeJSON(w, http.StatusOK, planets)
}

type response struct {
	OK      bool   `json:"ok"`
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}

func (h *PlanetHandler) writeFailure(w http.ResponseWriter, message string, err error) {
	h.logger.Error(message, "error", err)
	writeJSON(w, http.StatusInternalServerError, response{OK: false, Message: message, Error: err.Error()})
}

func writeBadRequest(w http.ResponseWriter, err error) {
	writeJSON(w, http.StatusBadRequest, response{OK: false, Message: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// intParam reads a numeric query parameter truncated toward zero, so "1e3"
// and "10.0" are accepted; absent or blank yields def
func intParam(r *http.Request, name string, def int) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return def, nil
	}
	if v, err := strconv.Atoi(raw); err == nil {
		return v, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, &entity.ValidationError{Field: name, Reason: "must be a number"}
	}
	// callers clamp far below these bounds
	v = math.Max(math.MinInt32, math.Min(math.Trunc(v), math.MaxInt32))
	return int(v), nil
}

func floatParam(r *http.Request, name string) (float64, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, &entity.ValidationError{Field: name, Reason: "must be a number"}
	}
	return v, nil
}
