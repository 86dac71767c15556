package repository

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"nextplanet-service/internal/domain/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mkm(v int64) *int64 { return &v }

func pc(v float64) *float64 { return &v }

func seedMemory(t *testing.T, planets ...*entity.Planet) *MemoryPlanetRepository {
	t.Helper()
	repo := NewMemoryPlanetRepository()
	for _, p := range planets {
		require.NoError(t, repo.Upsert(context.Background(), p))
	}
	return repo
}

func TestMemoryUpsertKeepsCreatedAt(t *testing.T) {
	repo := NewMemoryPlanetRepository()
	first := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	second := first.Add(time.Hour)
	ctx := context.Background()

	repo.now = func() time.Time { return first }
	require.NoError(t, repo.Upsert(ctx, &entity.Planet{Key: "earth", Name: "Earth", DistanceMkm: mkm(150)}))

	repo.now = func() time.Time { return second }
	require.NoError(t, repo.Upsert(ctx, &entity.Planet{Key: "earth", Name: "Earth"}))

	got, err := repo.FindByKey(ctx, "earth")
	require.NoError(t, err)
	assert.Equal(t, first, got.CreatedAt)
	assert.Equal(t, second, got.UpdatedAt)
	assert.Nil(t, got.DistanceMkm, "upsert replaces every field")

	n, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestMemoryFindByKeyNotFound(t *testing.T) {
	repo := NewMemoryPlanetRepository()

	_, err := repo.FindByKey(context.Background(), "nope")
	assert.ErrorIs(t, err, entity.ErrPlanetNotFound)
}

func TestMemoryFindByKeyReturnsCopy(t *testing.T) {
	repo := seedMemory(t, &entity.Planet{Key: "earth", Name: "Earth"})

	got, err := repo.FindByKey(context.Background(), "earth")
	require.NoError(t, err)
	got.Name = "mutated"

	again, err := repo.FindByKey(context.Background(), "earth")
	require.NoError(t, err)
	assert.Equal(t, "Earth", again.Name)
}

func TestMemoryListFilterSortLimit(t *testing.T) {
	repo := seedMemory(t,
		&entity.Planet{Key: "earth", Name: "Earth", HostStar: "Sol", DistanceMkm: mkm(150), DistancePc: pc(0.5)},
		&entity.Planet{Key: "mars2", Name: "Mars2", HostStar: "Sol", DistanceMkm: mkm(230), DistancePc: pc(0.2)},
		&entity.Planet{Key: "rogue", Name: "Rogue", HostStar: "Nomad"},
	)
	ctx := context.Background()

	got, err := repo.List(ctx, entity.PlanetFilter{Query: "EARTH"}, entity.PlanetSort{Field: entity.SortByDistanceMkm}, 0)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "earth", got[0].Key)

	got, err = repo.List(ctx, entity.PlanetFilter{Query: "sol"}, entity.PlanetSort{Field: entity.SortByName, Descending: true}, 0)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, []string{"mars2", "earth"}, []string{got[0].Key, got[1].Key})

	got, err = repo.List(ctx, entity.PlanetFilter{MaxDistanceMkm: 200}, entity.PlanetSort{Field: entity.SortByDistanceMkm}, 0)
	require.NoError(t, err)
	require.Len(t, got, 1, "records without a distance never match a distance bound")
	assert.Equal(t, "earth", got[0].Key)

	got, err = repo.List(ctx, entity.PlanetFilter{}, entity.PlanetSort{Field: entity.SortByDistancePc}, 0)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, []string{"rogue", "mars2", "earth"}, []string{got[0].Key, got[1].Key, got[2].Key})

	got, err = repo.List(ctx, entity.PlanetFilter{}, entity.PlanetSort{Field: entity.SortByDistancePc}, 2)
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestMemorySample(t *testing.T) {
	var planets []*entity.Planet
	for i := 0; i < 10; i++ {
		planets = append(planets, &entity.Planet{Key: fmt.Sprintf("p-%d", i), Name: fmt.Sprintf("P %d", i)})
	}
	repo := seedMemory(t, planets...)
	ctx := context.Background()

	got, err := repo.Sample(ctx, 4)
	require.NoError(t, err)
	assert.Len(t, got, 4)

	got, err = repo.Sample(ctx, 50)
	require.NoError(t, err)
	require.Len(t, got, 10)
	seen := map[string]bool{}
	for _, p := range got {
		assert.False(t, seen[p.Key], "duplicate %s", p.Key)
		seen[p.Key] = true
	}

	got, err = repo.Sample(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestMemoryConcurrentUpsertSameKey(t *testing.T) {
	repo := NewMemoryPlanetRepository()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			v := int64(i)
			repo.Upsert(ctx, &entity.Planet{Key: "earth", Name: fmt.Sprintf("Earth %d", i), DistanceMkm: &v, RadiusKm: &v})
		}(i)
	}
	wg.Wait()

	got, err := repo.FindByKey(ctx, "earth")
	require.NoError(t, err)
	assert.Equal(t, fmt.Sprintf("Earth %d", *got.DistanceMkm), got.Name)
	assert.Equal(t, *got.DistanceMkm, *got.RadiusKm)
}

func TestMemoryCanceledContext(t *testing.T) {
	repo := NewMemoryPlanetRepository()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := repo.Upsert(ctx, &entity.Planet{Key: "earth"})
	var storeErr *entity.StoreError
	require.True(t, errors.As(err, &storeErr))
	assert.ErrorIs(t, err, context.Canceled)
}
