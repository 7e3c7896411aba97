package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/tuanvumaihuynh/tyre-inventory/internal/config"
	"github.com/tuanvumaihuynh/tyre-inventory/internal/event"
	"github.com/tuanvumaihuynh/tyre-inventory/internal/http"
	"github.com/tuanvumaihuynh/tyre-inventory/internal/log"
	"github.com/tuanvumaihuynh/tyre-inventory/internal/service"
	"github.com/tuanvumaihuynh/tyre-inventory/internal/storage/mq"
	"github.com/tuanvumaihuynh/tyre-inventory/internal/telemetry"
	"github.com/tuanvumaihuynh/tyre-inventory/pkg/cmdutil"
	"github.com/tuanvumaihuynh/tyre-inventory/pkg/validator"
)

type storeConfig struct {
	Store    config.Store
	Mongo    config.Mongo
	Postgres config.Postgres
}

func main() {
	if err := run(); err != nil {
		fmt.Printf("error running tyre api: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	time.Local = time.UTC

	type Config struct {
		Store     config.Store
		Mongo     config.Mongo
		Postgres  config.Postgres
		Log       config.Log
		HTTP      config.HTTP
		Inventory config.Inventory
		Kafka     config.Kafka
		Otel      config.Otel
	}
	cfg, err := config.New[Config]()
	if err != nil {
		return fmt.Errorf("error loading config: %w", err)
	}

	logger := log.NewSlogLogger(cfg.Log)

	cleanupTracer, err := telemetry.InitTracer(ctx, cfg.Otel)
	if err != nil {
		return fmt.Errorf("error initializing tracer: %w", err)
	}
	defer func() {
		if err := cleanupTracer(ctx); err != nil {
			logger.ErrorContext(ctx, "error cleaning up tracer", slog.Any("error", err))
		}
	}()

	st, err := openStore(ctx, storeConfig{
		Store:    cfg.Store,
		Mongo:    cfg.Mongo,
		Postgres: cfg.Postgres,
	}, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := st.close(context.Background()); err != nil {
			logger.ErrorContext(ctx, "error closing record store", slog.Any("error", err))
		}
	}()
	logger.InfoContext(ctx, "record store opened", slog.String("driver", cfg.Store.Driver.String()))

	var producer mq.Producer = mq.NopProducer{}
	if cfg.Kafka.Enabled() {
		kafkaProducer, err := mq.NewKafkaProducer(ctx, cfg.Kafka)
		if err != nil {
			return fmt.Errorf("error creating kafka producer: %w", err)
		}
		defer kafkaProducer.Close()
		producer = kafkaProducer
	} else {
		logger.InfoContext(ctx, "kafka is not configured, inventory events are disabled")
	}

	v, err := validator.NewDefaultValidator()
	if err != nil {
		return fmt.Errorf("error creating validator: %w", err)
	}

	tyreService := service.NewTyreService(cfg.Inventory, logger, st.tyreRepo, v, producer)

	interruptChan := cmdutil.InterruptChan()
	var wg sync.WaitGroup

	if cfg.Kafka.Enabled() {
		kafkaConsumer, err := mq.NewKafkaConsumer(ctx, cfg.Kafka, logger)
		if err != nil {
			return fmt.Errorf("error creating kafka consumer: %w", err)
		}

		wg.Go(func() {
			svc := event.New(cfg.Inventory, logger, kafkaConsumer)
			cleanup, err := svc.Run(ctx)
			if err != nil {
				panic(fmt.Errorf("error running event service: %w", err))
			}
			logger.InfoContext(ctx, "event service started")

			<-interruptChan

			logger.InfoContext(ctx, "event service is shutting down")
			// closes the consumer client
			cleanup()

			logger.InfoContext(ctx, "event service is stopped")
		})
	}

	wg.Go(func() {
		svc := http.New(cfg.HTTP, logger, tyreService, st.health)
		cleanup, err := svc.Run(ctx)
		if err != nil {
			panic(fmt.Errorf("error running http service: %w", err))
		}

		logger.InfoContext(ctx, "http service started", slog.String("address", fmt.Sprintf(":%d", cfg.HTTP.Port)))

		<-interruptChan

		logger.InfoContext(ctx, "http service is shutting down")
		if err := cleanup(ctx); err != nil {
			logger.ErrorContext(ctx, "error shutting down http service", slog.Any("error", err))
		}

		logger.InfoContext(ctx, "http service is stopped")
	})

	wg.Wait()

	return nil
}
