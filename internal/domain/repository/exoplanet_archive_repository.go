package repository

import (
	"context"

	"nextplanet-service/internal/domain/entity"
)

// ExoplanetArchiveRepository defines the interface to the external exoplanet archive
type ExoplanetArchiveRepository interface {
	FetchRows(ctx context.Context) ([]entity.ExoplanetRow, error)
}
