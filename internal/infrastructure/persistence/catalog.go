package persistence

import (
	"context"
	"fmt"

	"nextplanet-service/internal/domain/repository"
	"nextplanet-service/internal/infrastructure/config"
	planetRepo "nextplanet-service/internal/interface/repository"
	"nextplanet-service/pkg/logger"
)

// CloseFunc releases the store connection
type CloseFunc func(ctx context.Context) error

func noopClose(context.Context) error { return nil }

// OpenCatalog connects the catalog store selected by cfg.StoreDriver and
// prepares its indexes or schema. The connection is shared by every caller
// until the returned CloseFunc runs.
func OpenCatalog(ctx context.Context, cfg *config.Config, log logger.Logger) (repository.PlanetRepository, CloseFunc, error) {
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	switch cfg.StoreDriver {
	case config.DriverMongo:
		log.Info("Connecting to MongoDB", "database", cfg.MongoDB)
		client, db, err := NewMongoClient(ctx, MongoOptions{
			URI:      cfg.MongoURI,
			Database: cfg.MongoDB,
			Username: cfg.MongoUser,
			Password: cfg.MongoPassword,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("connect mongodb: %w", err)
		}

		repo := planetRepo.NewMongoPlanetRepository(db)
		if err := repo.EnsureIndexes(ctx); err != nil {
			client.Disconnect(context.Background())
			return nil, nil, err
		}
		return repo, client.Disconnect, nil

	case config.DriverPostgres:
		log.Info("Connecting to PostgreSQL")
		db, err := NewPostgresDB(cfg.PostgresDSN)
		if err != nil {
			return nil, nil, err
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, nil, fmt.Errorf("postgres pool: %w", err)
		}

		repo := planetRepo.NewGormPlanetRepository(db)
		if err := repo.AutoMigrate(ctx); err != nil {
			sqlDB.Close()
			return nil, nil, err
		}
		return repo, func(context.Context) error { return sqlDB.Close() }, nil

	default:
		log.Warn("Using in-memory catalog, data is lost on exit")
		return planetRepo.NewMemoryPlanetRepository(), noopClose, nil
	}
}
