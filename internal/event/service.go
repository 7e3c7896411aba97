package event

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/tuanvumaihuynh/tyre-inventory/internal/config"
	"github.com/tuanvumaihuynh/tyre-inventory/internal/storage/mq"
)

// Service is the event service. It consumes inventory events and reports
// low-stock tyres.
type Service struct {
	logger            *slog.Logger
	mqConsumer        mq.Consumer
	lowStockThreshold int
}

// New creates a new event service.
func New(
	cfg config.Inventory,
	logger *slog.Logger,
	mqConsumer mq.Consumer,
) *Service {
	return &Service{
		logger:            logger.With(slog.String("service", "event")),
		mqConsumer:        mqConsumer,
		lowStockThreshold: cfg.LowStockThreshold,
	}
}

type CleanupFunc func()

func (s *Service) Run(ctx context.Context) (CleanupFunc, error) {
	if err := registerJSON(s.mqConsumer, TopicTyreCreated, s.handleTyreCreatedEvent); err != nil {
		return nil, err
	}
	if err := registerJSON(s.mqConsumer, TopicTyreUpdated, s.handleTyreUpdatedEvent); err != nil {
		return nil, err
	}
	if err := registerJSON(s.mqConsumer, TopicTyreDeleted, s.handleTyreDeletedEvent); err != nil {
		return nil, err
	}

	mqCleanup, err := s.mqConsumer.Run(ctx)
	if err != nil {
		return nil, fmt.Errorf("run mq consumer: %w", err)
	}

	cleanup := func() {
		mqCleanup()
	}

	return cleanup, nil
}

func registerJSON[T any](consumer mq.Consumer, topic string, handle func(context.Context, T) error) error {
	if err := consumer.RegisterHandler(
		topic,
		func(ctx context.Context, topic string, payload []byte) error {
			var ev T
			if err := json.Unmarshal(payload, &ev); err != nil {
				return fmt.Errorf("unmarshal %s event: %w", topic, err)
			}

			if err := handle(ctx, ev); err != nil {
				return fmt.Errorf("handle %s event: %w", topic, err)
			}

			return nil
		},
	); err != nil {
		return fmt.Errorf("register %s event handler: %w", topic, err)
	}
	return nil
}
