package repository

import (
	"context"
	"math/rand"
	"sort"
	"strings"
	"sync"
	"time"

	"nextplanet-service/internal/domain/entity"
	"nextplanet-service/internal/domain/repository"
)

// MemoryPlanetRepository keeps the catalog in process memory.
// Used for dry-run syncs, local development and tests.
type MemoryPlanetRepository struct {
	mu      sync.RWMutex
	planets map[string]*entity.Planet
	now     func() time.Time
	rnd     *rand.Rand
	rndMu   sync.Mutex
}

// NewMemoryPlanetRepository creates an empty in-memory catalog
func NewMemoryPlanetRepository() *MemoryPlanetRepository {
	return &MemoryPlanetRepository{
		planets: make(map[string]*entity.Planet),
		now:     time.Now,
		rnd:     rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

var _ repository.PlanetRepository = (*MemoryPlanetRepository)(nil)

// Upsert replaces the planet stored under planet.Key, or inserts it
func (r *MemoryPlanetRepository) Upsert(ctx context.Context, planet *entity.Planet) error {
	if err := ctx.Err(); err != nil {
		return &entity.StoreError{Op: "upsert", Err: err}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now().UTC()
	stored := *planet
	stored.CreatedAt = now
	if existing, ok := r.planets[planet.Key]; ok {
		stored.CreatedAt = existing.CreatedAt
	}
	stored.UpdatedAt = now
	r.planets[planet.Key] = &stored

	planet.CreatedAt = stored.CreatedAt
	planet.UpdatedAt = stored.UpdatedAt
	return nil
}

// FindByKey finds a planet by its key
func (r *MemoryPlanetRepository) FindByKey(ctx context.Context, key string) (*entity.Planet, error) {
	if err := ctx.Err(); err != nil {
		return nil, &entity.StoreError{Op: "find by key", Err: err}
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	planet, ok := r.planets[key]
	if !ok {
		return nil, entity.ErrPlanetNotFound
	}
	out := *planet
	return &out, nil
}

// List finds planets matching filter in sort order
func (r *MemoryPlanetRepository) List(ctx context.Context, filter entity.PlanetFilter, s entity.PlanetSort, limit int) ([]*entity.Planet, error) {
	if err := ctx.Err(); err != nil {
		return nil, &entity.StoreError{Op: "list", Err: err}
	}

	r.mu.RLock()
	planets := make([]*entity.Planet, 0, len(r.planets))
	for _, p := range r.planets {
		if filter.Matches(p) {
			out := *p
			planets = append(planets, &out)
		}
	}
	r.mu.RUnlock()

	sort.Slice(planets, func(i, j int) bool {
		c := comparePlanets(planets[i], planets[j], s.Field)
		if c == 0 {
			return planets[i].Key < planets[j].Key
		}
		if s.Descending {
			return c > 0
		}
		return c < 0
	})

	if limit > 0 && len(planets) > limit {
		planets = planets[:limit]
	}
	return planets, nil
}

// Sample returns min(count, size) distinct planets in random order
func (r *MemoryPlanetRepository) Sample(ctx context.Context, count int) ([]*entity.Planet, error) {
	if err := ctx.Err(); err != nil {
		return nil, &entity.StoreError{Op: "sample", Err: err}
	}

	r.mu.RLock()
	all := make([]*entity.Planet, 0, len(r.planets))
	for _, p := range r.planets {
		out := *p
		all = append(all, &out)
	}
	r.mu.RUnlock()

	// map order is not uniform, so sort before shuffling
	sort.Slice(all, func(i, j int) bool { return all[i].Key < all[j].Key })

	r.rndMu.Lock()
	r.rnd.Shuffle(len(all), func(i, j int) { all[i], all[j] = all[j], all[i] })
	r.rndMu.Unlock()

	if count < 0 {
		count = 0
	}
	if count < len(all) {
		all = all[:count]
	}
	return all, nil
}

// Count returns the catalog size
func (r *MemoryPlanetRepository) Count(ctx context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(len(r.planets)), nil
}

// comparePlanets orders by field with absent values first
func comparePlanets(a, b *entity.Planet, field entity.SortField) int {
	switch field {
	case entity.SortByName:
		return strings.Compare(a.Name, b.Name)
	case entity.SortByDistanceMkm:
		return compareNullable(a.DistanceMkm, b.DistanceMkm)
	default:
		return compareNullable(a.DistancePc, b.DistancePc)
	}
}

func compareNullable[T int64 | float64](a, b *T) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	case *a < *b:
		return -1
	case *a > *b:
		return 1
	}
	return 0
}
