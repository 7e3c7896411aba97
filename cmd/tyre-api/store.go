package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/tuanvumaihuynh/tyre-inventory/internal/config"
	"github.com/tuanvumaihuynh/tyre-inventory/internal/repository"
	"github.com/tuanvumaihuynh/tyre-inventory/internal/storage/db"
	"github.com/tuanvumaihuynh/tyre-inventory/internal/storage/docstore"
)

type store struct {
	tyreRepo repository.TyreRepository
	health   repository.HealthChecker
	close    func(ctx context.Context) error
}

// openStore opens the record store selected by cfg.Store. The connection is
// opened once here and released by store.close at shutdown.
func openStore(ctx context.Context, cfg storeConfig, logger *slog.Logger) (store, error) {
	switch cfg.Store.Driver {
	case config.StoreDriverMongo:
		client, err := docstore.NewMongoClient(ctx, cfg.Mongo)
		if err != nil {
			return store{}, fmt.Errorf("error creating mongo client: %w", err)
		}

		coll := docstore.Collection(client, cfg.Mongo)
		if err := repository.EnsureMongoIndexes(ctx, coll); err != nil {
			//nolint:errcheck
			client.Disconnect(ctx)
			return store{}, fmt.Errorf("error ensuring mongo indexes: %w", err)
		}

		repo := repository.NewMongoTyreRepository(coll)
		return store{
			tyreRepo: repo,
			health:   repo.(repository.HealthChecker),
			close:    client.Disconnect,
		}, nil

	case config.StoreDriverPostgres:
		pgxPool, err := db.NewPgxPool(ctx, cfg.Postgres)
		if err != nil {
			return store{}, fmt.Errorf("error creating pgx pool: %w", err)
		}

		dbClient := db.NewClient(pgxPool)
		return store{
			tyreRepo: repository.NewPostgresTyreRepository(dbClient),
			health:   dbClient,
			close: func(context.Context) error {
				pgxPool.Close()
				return nil
			},
		}, nil

	case config.StoreDriverMemory:
		logger.WarnContext(ctx, "using in-memory record store, data is lost on restart")

		repo := repository.NewMemoryTyreRepository()
		return store{
			tyreRepo: repo,
			health:   repo.(repository.HealthChecker),
			close:    func(context.Context) error { return nil },
		}, nil

	default:
		return store{}, fmt.Errorf("unsupported store driver: %s", cfg.Store.Driver)
	}
}
