package usecase

import (
	"context"
	"strings"

	"nextplanet-service/internal/domain/entity"
	"nextplanet-service/internal/domain/repository"
	"nextplanet-service/pkg/logger"
)

// Query limits
const (
	MaxListLimit = 5000

	DefaultRecommendCount = 8
	MinRecommendCount     = 1
	MaxRecommendCount     = 20

	DefaultSearchLimit = 200
	MinSearchLimit     = 1
	MaxSearchLimit     = 500
)

// SortMode is a client-facing search ordering
type SortMode string

const (
	SortShortest SortMode = "shortest"
	SortLongest  SortMode = "longest"
	SortAZ       SortMode = "az"
	SortZA       SortMode = "za"
	// Price is computed client side; these share the distance ordering.
	SortCheapest  SortMode = "cheapest"
	SortExpensive SortMode = "expensive"
)

// ParseSortMode maps a sort parameter to a known mode. Unknown or empty values yield SortShortest.
func ParseSortMode(s string) SortMode {
	switch mode := SortMode(strings.ToLower(strings.TrimSpace(s))); mode {
	case SortShortest, SortLongest, SortAZ, SortZA, SortCheapest, SortExpensive:
		return mode
	default:
		return SortShortest
	}
}

// PlanetSort returns the catalog ordering for the mode
func (m SortMode) PlanetSort() entity.PlanetSort {
	switch m {
	case SortLongest, SortExpensive:
		return entity.PlanetSort{Field: entity.SortByDistanceMkm, Descending: true}
	case SortAZ:
		return entity.PlanetSort{Field: entity.SortByName}
	case SortZA:
		return entity.PlanetSort{Field: entity.SortByName, Descending: true}
	default:
		return entity.PlanetSort{Field: entity.SortByDistanceMkm}
	}
}

// SearchParams are the inputs of a catalog search
type SearchParams struct {
	Query          string
	MaxDistanceMkm float64
	Sort           SortMode
	Limit          int
}

// PlanetQueryService serves read-only catalog queries
type PlanetQueryService struct {
	planetRepo repository.PlanetRepository
	logger     logger.Logger
}

// NewPlanetQueryService creates a new planet query service
func NewPlanetQueryService(planetRepo repository.PlanetRepository, logger logger.Logger) *PlanetQueryService {
	return &PlanetQueryService{
		planetRepo: planetRepo,
		logger:     logger,
	}
}

// List returns planets by ascending distance in parsecs. limit is clamped
// to [0, MaxListLimit] and 0 returns the whole catalog.
func (s *PlanetQueryService) List(ctx context.Context, limit int) ([]*entity.Planet, error) {
	limit = clamp(limit, 0, MaxListLimit)
	return s.planetRepo.List(ctx,
		entity.PlanetFilter{},
		entity.PlanetSort{Field: entity.SortByDistancePc},
		limit)
}

// Recommend returns a random sample of count planets, count clamped to [1, 20]
func (s *PlanetQueryService) Recommend(ctx context.Context, count int) ([]*entity.Planet, error) {
	count = clamp(count, MinRecommendCount, MaxRecommendCount)
	return s.planetRepo.Sample(ctx, count)
}

// Lookup returns the planet stored under key or entity.ErrPlanetNotFound
func (s *PlanetQueryService) Lookup(ctx context.Context, key string) (*entity.Planet, error) {
	return s.planetRepo.FindByKey(ctx, key)
}

// Search filters by name/host star substring and maximum distance
func (s *PlanetQueryService) Search(ctx context.Context, params SearchParams) ([]*entity.Planet, error) {
	filter := entity.PlanetFilter{
		Query: strings.TrimSpace(params.Query),
	}
	if params.MaxDistanceMkm > 0 {
		filter.MaxDistanceMkm = params.MaxDistanceMkm
	}

	mode := ParseSortMode(string(params.Sort))
	limit := clamp(params.Limit, MinSearchLimit, MaxSearchLimit)

	s.logger.Debug("Searching planets",
		"q", filter.Query,
		"maxDistanceMkm", filter.MaxDistanceMkm,
		"sort", string(mode),
		"limit", limit)

	return s.planetRepo.List(ctx, filter, mode.PlanetSort(), limit)
}

func clamp(v, lo, hi int) int {
	return max(lo, min(v, hi))
}
