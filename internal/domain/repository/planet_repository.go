package repository

import (
	"context"

	"nextplanet-service/internal/domain/entity"
)

// PlanetRepository defines the catalog store operations
type PlanetRepository interface {
	// Upsert replaces every field of the record with the same key, or inserts it
	Upsert(ctx context.Context, planet *entity.Planet) error
	FindByKey(ctx context.Context, key string) (*entity.Planet, error)
	// List applies filter and sort; limit <= 0 means no cap
	List(ctx context.Context, filter entity.PlanetFilter, sort entity.PlanetSort, limit int) ([]*entity.Planet, error)
	// Sample returns min(count, catalog size) distinct records chosen at random
	Sample(ctx context.Context, count int) ([]*entity.Planet, error)
	Count(ctx context.Context) (int64, error)
}
