package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/tuanvumaihuynh/tyre-inventory/internal/config"
	"github.com/tuanvumaihuynh/tyre-inventory/internal/log"
	"github.com/tuanvumaihuynh/tyre-inventory/internal/repository"
	"github.com/tuanvumaihuynh/tyre-inventory/internal/storage/db"
	"github.com/tuanvumaihuynh/tyre-inventory/internal/storage/docstore"
)

func main() {
	if err := run(); err != nil {
		fmt.Printf("error running migrate application: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	time.Local = time.UTC

	type Config struct {
		Log      config.Log
		Store    config.Store
		Mongo    config.Mongo
		Postgres config.Postgres
	}
	cfg, err := config.New[Config]()
	if err != nil {
		return fmt.Errorf("error loading config: %w", err)
	}

	logger := log.NewSlogLogger(cfg.Log)
	logger.InfoContext(ctx, "starting record store migration", slog.String("driver", cfg.Store.Driver.String()))

	switch cfg.Store.Driver {
	case config.StoreDriverPostgres:
		pgxPool, err := db.NewPgxPool(ctx, cfg.Postgres)
		if err != nil {
			return fmt.Errorf("error creating pgx pool: %w", err)
		}
		defer pgxPool.Close()

		if err := db.Migrate(pgxPool); err != nil {
			return fmt.Errorf("error migrating database: %w", err)
		}

	case config.StoreDriverMongo:
		client, err := docstore.NewMongoClient(ctx, cfg.Mongo)
		if err != nil {
			return fmt.Errorf("error creating mongo client: %w", err)
		}
		defer func() {
			if err := client.Disconnect(ctx); err != nil {
				logger.ErrorContext(ctx, "error disconnecting mongo", slog.Any("error", err))
			}
		}()

		if err := repository.EnsureMongoIndexes(ctx, docstore.Collection(client, cfg.Mongo)); err != nil {
			return fmt.Errorf("error creating mongo indexes: %w", err)
		}

	default:
		logger.InfoContext(ctx, "nothing to migrate")
		return nil
	}

	logger.InfoContext(ctx, "record store migration completed successfully")

	return nil
}
