package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"nextplanet-service/internal/domain/entity"
	"nextplanet-service/internal/domain/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormPlanetRepository implements PlanetRepository on PostgreSQL through GORM
type GormPlanetRepository struct {
	db *gorm.DB
}

// NewGormPlanetRepository creates a new GORM planet repository
func NewGormPlanetRepository(db *gorm.DB) *GormPlanetRepository {
	return &GormPlanetRepository{
		db: db,
	}
}

var _ repository.PlanetRepository = (*GormPlanetRepository)(nil)

// Planets GORM model for database mapping
type Planets struct {
	ID            uint     `gorm:"primaryKey"`
	Key           string   `gorm:"column:key;uniqueIndex;not null"`
	Name          string   `gorm:"column:name;index;not null"`
	HostStar      string   `gorm:"column:host_star;not null;default:''"`
	DiscoveryYear *int     `gorm:"column:discovery_year"`
	DistancePc    *float64 `gorm:"column:distance_pc;index"`
	DistanceLy    *float64 `gorm:"column:distance_ly"`
	DistanceMkm   *int64   `gorm:"column:distance_mkm;index"`
	RadiusKm      *int64   `gorm:"column:radius_km"`
	MassE24       *float64 `gorm:"column:mass_e24"`
	Source        string   `gorm:"column:source"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// TableName overrides the default table name
func (Planets) TableName() string {
	return "planets"
}

// upsertColumns are overwritten on conflict; created_at is kept
var upsertColumns = []string{
	"name", "host_star", "discovery_year",
	"distance_pc", "distance_ly", "distance_mkm",
	"radius_km", "mass_e24", "source", "updated_at",
}

var sortColumns = map[entity.SortField]string{
	entity.SortByDistancePc:  "distance_pc",
	entity.SortByDistanceMkm: "distance_mkm",
	entity.SortByName:        "name",
}

// AutoMigrate creates or updates the planets table and its indexes
func (r *GormPlanetRepository) AutoMigrate(ctx context.Context) error {
	if err := r.db.WithContext(ctx).AutoMigrate(&Planets{}); err != nil {
		return &entity.StoreError{Op: "migrate", Err: err}
	}
	return nil
}

// Upsert inserts the planet or overwrites every column of the row with the same key
func (r *GormPlanetRepository) Upsert(ctx context.Context, planet *entity.Planet) error {
	model := toPlanetModel(planet)

	result := upsertQuery(r.db.WithContext(ctx)).Create(&model)
	if result.Error != nil {
		return &entity.StoreError{Op: "upsert", Err: result.Error}
	}

	// created_at comes back through RETURNING, so a conflict reports the original insert time
	planet.CreatedAt = model.CreatedAt
	planet.UpdatedAt = model.UpdatedAt
	return nil
}

// FindByKey finds a planet by its key
func (r *GormPlanetRepository) FindByKey(ctx context.Context, key string) (*entity.Planet, error) {
	var model Planets
	result := r.db.WithContext(ctx).Where("key = ?", key).First(&model)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, entity.ErrPlanetNotFound
		}
		return nil, &entity.StoreError{Op: "find by key", Err: result.Error}
	}
	return toPlanetEntity(model), nil
}

// List finds planets matching filter in sort order
func (r *GormPlanetRepository) List(ctx context.Context, filter entity.PlanetFilter, sort entity.PlanetSort, limit int) ([]*entity.Planet, error) {
	var models []Planets
	result := listQuery(r.db.WithContext(ctx), filter, sort, limit).Find(&models)
	if result.Error != nil {
		return nil, &entity.StoreError{Op: "list", Err: result.Error}
	}
	return toPlanetEntities(models), nil
}

// Sample returns up to count random planets
func (r *GormPlanetRepository) Sample(ctx context.Context, count int) ([]*entity.Planet, error) {
	if count <= 0 {
		return []*entity.Planet{}, nil
	}

	var models []Planets
	result := sampleQuery(r.db.WithContext(ctx), count).Find(&models)
	if result.Error != nil {
		return nil, &entity.StoreError{Op: "sample", Err: result.Error}
	}
	return toPlanetEntities(models), nil
}

// Count returns the catalog size
func (r *GormPlanetRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&Planets{}).Count(&n).Error; err != nil {
		return 0, &entity.StoreError{Op: "count", Err: err}
	}
	return n, nil
}

func upsertQuery(db *gorm.DB) *gorm.DB {
	return db.Clauses(
		clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			DoUpdates: clause.AssignmentColumns(upsertColumns),
		},
		clause.Returning{Columns: []clause.Column{{Name: "id"}, {Name: "created_at"}}},
	)
}

func sampleQuery(db *gorm.DB, count int) *gorm.DB {
	return db.Model(&Planets{}).Order("RANDOM()").Limit(count)
}

func listQuery(db *gorm.DB, filter entity.PlanetFilter, sort entity.PlanetSort, limit int) *gorm.DB {
	tx := db.Model(&Planets{})

	if filter.Query != "" {
		pattern := "%" + escapeLike(filter.Query) + "%"
		tx = tx.Where("name ILIKE ? OR host_star ILIKE ?", pattern, pattern)
	}
	if filter.MaxDistanceMkm > 0 {
		tx = tx.Where("distance_mkm <= ?", filter.MaxDistanceMkm)
	}

	tx = tx.Order(orderClause(sort)).Order("key ASC")
	if limit > 0 {
		tx = tx.Limit(limit)
	}
	return tx
}

// orderClause sorts nulls the way MongoDB does: first ascending, last descending
func orderClause(sort entity.PlanetSort) string {
	column, ok := sortColumns[sort.Field]
	if !ok {
		column = sortColumns[entity.SortByDistancePc]
	}
	if sort.Descending {
		return column + " DESC NULLS LAST"
	}
	return column + " ASC NULLS FIRST"
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

func toPlanetModel(p *entity.Planet) Planets {
	return Planets{
		Key:           p.Key,
		Name:          p.Name,
		HostStar:      p.HostStar,
		DiscoveryYear: p.DiscoveryYear,
		DistancePc:    p.DistancePc,
		DistanceLy:    p.DistanceLy,
		DistanceMkm:   p.DistanceMkm,
		RadiusKm:      p.RadiusKm,
		MassE24:       p.MassE24,
		Source:        p.Source,
	}
}

// Convert GORM model to domain entity
func toPlanetEntity(m Planets) *entity.Planet {
	return &entity.Planet{
		Key:           m.Key,
		Name:          m.Name,
		HostStar:      m.HostStar,
		DiscoveryYear: m.DiscoveryYear,
		DistancePc:    m.DistancePc,
		DistanceLy:    m.DistanceLy,
		DistanceMkm:   m.DistanceMkm,
		RadiusKm:      m.RadiusKm,
		MassE24:       m.MassE24,
		Source:        m.Source,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
}

func toPlanetEntities(models []Planets) []*entity.Planet {
	planets := make([]*entity.Planet, 0, len(models))
	for _, m := range models {
		planets = append(planets, toPlanetEntity(m))
	}
	return planets
}
