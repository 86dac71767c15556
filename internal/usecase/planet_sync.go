package usecase

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"nextplanet-service/internal/domain/entity"
	"nextplanet-service/internal/domain/repository"
	"nextplanet-service/pkg/logger"
	"nextplanet-service/pkg/metrics"
	"nextplanet-service/pkg/utils"
)

// Row skip reasons reported on the rows-skipped metric
const (
	SkipMissingName    = "missing_name"
	SkipMalformedValue = "malformed_value"
)

// SyncResult summarizes one ingestion run
type SyncResult struct {
	Fetched  int
	Upserted int
	Skipped  int
	Duration time.Duration
}

// PlanetSyncer materializes archive rows into the planet catalog
type PlanetSyncer struct {
	archiveRepo repository.ExoplanetArchiveRepository
	planetRepo  repository.PlanetRepository
	logger      logger.Logger
	metrics     *metrics.Metrics
}

// NewPlanetSyncer creates a new planet syncer
func NewPlanetSyncer(
	archiveRepo repository.ExoplanetArchiveRepository,
	planetRepo repository.PlanetRepository,
	logger logger.Logger,
	metrics *metrics.Metrics,
) *PlanetSyncer {
	return &PlanetSyncer{
		archiveRepo: archiveRepo,
		planetRepo:  planetRepo,
		logger:      logger,
		metrics:     metrics,
	}
}

// Run fetches the archive once and upserts every valid row in order.
// A fetch error leaves the catalog untouched. A store error stops the run at
// that row; rows already upserted stay committed and later rows are not attempted.
func (s *PlanetSyncer) Run(ctx context.Context) (SyncResult, error) {
	start := time.Now()
	var result SyncResult

	rows, err := s.archiveRepo.FetchRows(ctx)
	if err != nil {
		s.logger.Error("Failed to fetch exoplanet rows", "error", err)
		s.finish(&result, start, metrics.ResultFailed)
		return result, err
	}
	result.Fetched = len(rows)

	// key -> name of the row that last wrote it in this run
	written := make(map[string]string, len(rows))

	for i, row := range rows {
		planet, err := BuildPlanet(row)
		if err != nil {
			result.Skipped++
			s.metrics.RowsSkipped.WithLabelValues(skipReason(err)).Inc()
			s.logger.Debug("Skipping archive row", "row", i, "name", row.PlanetName, "reason", err.Error())
			continue
		}

		if prev, ok := written[planet.Key]; ok {
			s.logger.Warn("Slug collision, last write wins",
				"key", planet.Key,
				"previous", prev,
				"current", planet.Name)
		}

		if err := s.planetRepo.Upsert(ctx, planet); err != nil {
			s.logger.Error("Failed to upsert planet, aborting sync",
				"key", planet.Key,
				"row", i,
				"upserted", result.Upserted,
				"error", err)
			s.finish(&result, start, metrics.ResultFailed)
			return result, fmt.Errorf("upsert planet %q: %w", planet.Key, err)
		}

		written[planet.Key] = planet.Name
		result.Upserted++
		s.metrics.PlanetsUpserted.Inc()
	}

	s.finish(&result, start, metrics.ResultSuccess)
	s.logger.Info("Planet sync completed",
		"fetched", result.Fetched,
		"upserted", result.Upserted,
		"skipped", result.Skipped,
		"elapsed", result.Duration.String())

	return result, nil
}

func (s *PlanetSyncer) finish(result *SyncResult, start time.Time, outcome string) {
	result.Duration = time.Since(start)
	s.metrics.SyncRuns.WithLabelValues(outcome).Inc()
	s.metrics.SyncDuration.Observe(result.Duration.Seconds())
}

func skipReason(err error) string {
	var vErr *entity.ValidationError
	if errors.As(err, &vErr) && vErr.Field == "pl_name" {
		return SkipMissingName
	}
	return SkipMalformedValue
}

// BuildPlanet transforms one archive row into a catalog record.
// Rows without a name or with a non-numeric value in a numeric column
// are rejected with a ValidationError.
func BuildPlanet(row entity.ExoplanetRow) (*entity.Planet, error) {
	key := utils.Slugify(row.PlanetName)
	if key == "" {
		return nil, &entity.ValidationError{Field: "pl_name", Reason: "missing name"}
	}

	columns := []struct {
		name  string
		value entity.ArchiveNumber
	}{
		{"sy_dist", row.DistancePc},
		{"pl_rade", row.RadiusEarth},
		{"pl_bmasse", row.MassEarth},
		{"disc_year", row.DiscoveryYear},
	}
	for _, c := range columns {
		if c.value.Malformed {
			return nil, &entity.ValidationError{
				Field:  c.name,
				Reason: fmt.Sprintf("not a number: %q", c.value.Raw),
			}
		}
	}

	distancePc := row.DistancePc.Float()
	distanceLy := utils.ParsecsToLightYears(distancePc)

	return &entity.Planet{
		Key:           key,
		Name:          row.PlanetName,
		HostStar:      row.HostName,
		DiscoveryYear: discoveryYear(row.DiscoveryYear),
		DistancePc:    distancePc,
		DistanceLy:    distanceLy,
		DistanceMkm:   utils.RoundToInt(utils.LightYearsToMillionKm(distanceLy)),
		RadiusKm:      utils.RoundToInt(utils.EarthRadiiToKm(row.RadiusEarth.Float())),
		MassE24:       utils.RoundTo(utils.EarthMassesToE24(row.MassEarth.Float()), 3),
		Source:        entity.PlanetSource,
	}, nil
}

func discoveryYear(n entity.ArchiveNumber) *int {
	if !n.Valid {
		return nil
	}
	year := int(math.Round(n.Value))
	return &year
}
