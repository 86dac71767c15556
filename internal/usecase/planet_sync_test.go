package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"nextplanet-service/internal/domain/entity"
	"nextplanet-service/internal/domain/repository"
	irepo "nextplanet-service/internal/interface/repository"
	"nextplanet-service/pkg/logger"
	"nextplanet-service/pkg/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubArchive struct {
	rows  []entity.ExoplanetRow
	err   error
	calls int
}

func (s *stubArchive) FetchRows(ctx context.Context) ([]entity.ExoplanetRow, error) {
	s.calls++
	return s.rows, s.err
}

// failingRepo fails the upsert of one key and records every attempted key
type failingRepo struct {
	repository.PlanetRepository
	failKey   string
	attempted []string
}

func (r *failingRepo) Upsert(ctx context.Context, planet *entity.Planet) error {
	r.attempted = append(r.attempted, planet.Key)
	if planet.Key == r.failKey {
		return &entity.StoreError{Op: "upsert", Err: errors.New("connection reset")}
	}
	return r.PlanetRepository.Upsert(ctx, planet)
}

func decodeRows(t *testing.T, raw string) []entity.ExoplanetRow {
	t.Helper()
	var rows []entity.ExoplanetRow
	require.NoError(t, json.Unmarshal([]byte(raw), &rows))
	return rows
}

const archiveFixture = `[
	{"pl_name":"Proxima Cen b","hostname":"Proxima Cen","sy_dist":1.30119,"pl_rade":1.07,"pl_bmasse":1.07,"disc_year":2016},
	{"pl_name":"","hostname":"Nameless","sy_dist":2.0,"pl_rade":null,"pl_bmasse":null,"disc_year":null},
	{"pl_name":"Barnard b","hostname":"Barnard's star","sy_dist":"1.8266","pl_rade":null,"pl_bmasse":0.37,"disc_year":2024},
	{"pl_name":"Broken","hostname":"X","sy_dist":"far","pl_rade":null,"pl_bmasse":null,"disc_year":null},
	{"pl_name":"Lonely","hostname":"","sy_dist":null,"pl_rade":null,"pl_bmasse":null,"disc_year":null}
]`

func newSyncer(t *testing.T, archive repository.ExoplanetArchiveRepository, planets repository.PlanetRepository) (*PlanetSyncer, *metrics.Metrics) {
	t.Helper()
	m := metrics.NewMetrics("test", prometheus.NewRegistry())
	return NewPlanetSyncer(archive, planets, logger.NewNopLogger(), m), m
}

func TestBuildPlanet(t *testing.T) {
	rows := decodeRows(t, archiveFixture)

	planet, err := BuildPlanet(rows[0])
	require.NoError(t, err)
	assert.Equal(t, "proxima-cen-b", planet.Key)
	assert.Equal(t, "Proxima Cen b", planet.Name)
	assert.Equal(t, "Proxima Cen", planet.HostStar)
	assert.Equal(t, entity.PlanetSource, planet.Source)
	require.NotNil(t, planet.DiscoveryYear)
	assert.Equal(t, 2016, *planet.DiscoveryYear)
	require.NotNil(t, planet.DistancePc)
	assert.Equal(t, 1.30119, *planet.DistancePc)
	require.NotNil(t, planet.DistanceLy)
	assert.InDelta(t, 1.30119*3.26156, *planet.DistanceLy, 1e-9)
	require.NotNil(t, planet.DistanceMkm)
	assert.Equal(t, int64(40150352), *planet.DistanceMkm)
	require.NotNil(t, planet.RadiusKm)
	assert.Equal(t, int64(6817), *planet.RadiusKm)
	require.NotNil(t, planet.MassE24)
	assert.Equal(t, 6.39, *planet.MassE24)
}

func TestBuildPlanetAbsentFields(t *testing.T) {
	rows := decodeRows(t, archiveFixture)

	planet, err := BuildPlanet(rows[4])
	require.NoError(t, err)
	assert.Equal(t, "lonely", planet.Key)
	assert.Empty(t, planet.HostStar)
	assert.Nil(t, planet.DistancePc)
	assert.Nil(t, planet.DistanceLy)
	assert.Nil(t, planet.DistanceMkm)
	assert.Nil(t, planet.RadiusKm)
	assert.Nil(t, planet.MassE24)
	assert.Nil(t, planet.DiscoveryYear)
}

func TestBuildPlanetRejects(t *testing.T) {
	rows := decodeRows(t, archiveFixture)

	_, err := BuildPlanet(rows[1])
	var vErr *entity.ValidationError
	require.True(t, errors.As(err, &vErr))
	assert.Equal(t, "pl_name", vErr.Field)

	_, err = BuildPlanet(entity.ExoplanetRow{PlanetName: "  -- "})
	require.True(t, errors.As(err, &vErr))
	assert.Equal(t, "pl_name", vErr.Field)

	_, err = BuildPlanet(rows[3])
	require.True(t, errors.As(err, &vErr))
	assert.Equal(t, "sy_dist", vErr.Field)
	assert.Contains(t, vErr.Reason, "far")
}

func TestPlanetSyncerRun(t *testing.T) {
	archive := &stubArchive{rows: decodeRows(t, archiveFixture)}
	store := irepo.NewMemoryPlanetRepository()
	syncer, m := newSyncer(t, archive, store)
	ctx := context.Background()

	result, err := syncer.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 5, result.Fetched)
	assert.Equal(t, 3, result.Upserted)
	assert.Equal(t, 2, result.Skipped)

	n, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	barnard, err := store.FindByKey(ctx, "barnard-b")
	require.NoError(t, err)
	require.NotNil(t, barnard.MassE24)
	assert.Equal(t, 2.21, *barnard.MassE24)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.SyncRuns.WithLabelValues(metrics.ResultSuccess)))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.PlanetsUpserted))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RowsSkipped.WithLabelValues(SkipMissingName)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RowsSkipped.WithLabelValues(SkipMalformedValue)))
}

func TestPlanetSyncerIdempotent(t *testing.T) {
	archive := &stubArchive{rows: decodeRows(t, archiveFixture)}
	store := irepo.NewMemoryPlanetRepository()
	syncer, _ := newSyncer(t, archive, store)
	ctx := context.Background()

	_, err := syncer.Run(ctx)
	require.NoError(t, err)
	first, err := store.List(ctx, entity.PlanetFilter{}, entity.PlanetSort{}, 0)
	require.NoError(t, err)

	_, err = syncer.Run(ctx)
	require.NoError(t, err)
	second, err := store.List(ctx, entity.PlanetFilter{}, entity.PlanetSort{}, 0)
	require.NoError(t, err)

	require.Len(t, second, len(first))
	for i := range first {
		a, b := *first[i], *second[i]
		assert.Equal(t, a.CreatedAt, b.CreatedAt)
		a.UpdatedAt, b.UpdatedAt = time.Time{}, time.Time{}
		assert.Equal(t, a, b)
	}
}

func TestPlanetSyncerFetchErrorLeavesStore(t *testing.T) {
	fetchErr := &entity.SourceFetchError{StatusCode: http.StatusBadGateway, Status: "502 Bad Gateway", Body: "upstream"}
	archive := &stubArchive{err: fetchErr}
	store := irepo.NewMemoryPlanetRepository()
	syncer, m := newSyncer(t, archive, store)
	ctx := context.Background()

	result, err := syncer.Run(ctx)
	var got *entity.SourceFetchError
	require.True(t, errors.As(err, &got))
	assert.Equal(t, http.StatusBadGateway, got.StatusCode)
	assert.Zero(t, result.Upserted)

	n, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SyncRuns.WithLabelValues(metrics.ResultFailed)))
}

func TestPlanetSyncerAbortsOnStoreError(t *testing.T) {
	archive := &stubArchive{rows: decodeRows(t, archiveFixture)}
	store := &failingRepo{PlanetRepository: irepo.NewMemoryPlanetRepository(), failKey: "barnard-b"}
	syncer, _ := newSyncer(t, archive, store)
	ctx := context.Background()

	result, err := syncer.Run(ctx)
	var storeErr *entity.StoreError
	require.True(t, errors.As(err, &storeErr))
	assert.Contains(t, err.Error(), `upsert planet "barnard-b"`)
	assert.Equal(t, 1, result.Upserted)

	// rows after the failing one are never attempted
	assert.Equal(t, []string{"proxima-cen-b", "barnard-b"}, store.attempted)

	_, err = store.FindByKey(ctx, "proxima-cen-b")
	assert.NoError(t, err)
	_, err = store.FindByKey(ctx, "lonely")
	assert.ErrorIs(t, err, entity.ErrPlanetNotFound)
}

func TestPlanetSyncerSlugCollisionLastWriteWins(t *testing.T) {
	archive := &stubArchive{rows: decodeRows(t, `[
		{"pl_name":"HD 1 b","hostname":"First","sy_dist":1,"pl_rade":null,"pl_bmasse":null,"disc_year":null},
		{"pl_name":"HD-1 b","hostname":"Second","sy_dist":2,"pl_rade":null,"pl_bmasse":null,"disc_year":null}
	]`)}
	store := irepo.NewMemoryPlanetRepository()
	syncer, _ := newSyncer(t, archive, store)
	ctx := context.Background()

	result, err := syncer.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Upserted)

	planet, err := store.FindByKey(ctx, "hd-1-b")
	require.NoError(t, err)
	assert.Equal(t, "HD-1 b", planet.Name)
	assert.Equal(t, "Second", planet.HostStar)
}
