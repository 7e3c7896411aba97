package service

import (
	"cmp"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/tuanvumaihuynh/tyre-inventory/internal/apperr"
	"github.com/tuanvumaihuynh/tyre-inventory/internal/config"
	"github.com/tuanvumaihuynh/tyre-inventory/internal/event"
	"github.com/tuanvumaihuynh/tyre-inventory/internal/model"
	"github.com/tuanvumaihuynh/tyre-inventory/internal/query"
	"github.com/tuanvumaihuynh/tyre-inventory/internal/repository"
	"github.com/tuanvumaihuynh/tyre-inventory/internal/storage/mq"
	"github.com/tuanvumaihuynh/tyre-inventory/pkg/validator"
)

type TyreService interface {
	ListAllTyres(ctx context.Context) ([]model.Tyre, error)
	SearchTyres(ctx context.Context, params SearchTyresParams) ([]model.Tyre, error)
	CreateTyre(ctx context.Context, params CreateTyreParams) (model.Tyre, error)
	UpdateTyre(ctx context.Context, id string, params UpdateTyreParams) (model.Tyre, error)
	DeleteTyre(ctx context.Context, id string) error
	ListBrands(ctx context.Context) ([]string, error)
}

type tyreService struct {
	logger       *slog.Logger
	tyreRepo     repository.TyreRepository
	validator    validator.Validator
	mqProducer   mq.Producer
	policy       ValidationPolicy
	listLimit    int64
	eventTimeout time.Duration
	now          func() time.Time
}

const defaultEventTimeout = 2 * time.Second

func NewTyreService(
	cfg config.Inventory,
	logger *slog.Logger,
	tyreRepo repository.TyreRepository,
	validator validator.Validator,
	mqProducer mq.Producer,
) TyreService {
	return &tyreService{
		logger:       logger.With(slog.String("service", "tyre")),
		tyreRepo:     tyreRepo,
		validator:    validator,
		mqProducer:   mqProducer,
		policy:       ValidationPolicy{AllowNegative: cfg.AllowNegative},
		listLimit:    cfg.ListLimit,
		eventTimeout: cmp.Or(cfg.EventTimeout, defaultEventTimeout),
		now:          now,
	}
}

// now truncates to milliseconds, the coarsest resolution among the record
// stores, so a returned record equals the one read back later.
func now() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}

func (s *tyreService) ListAllTyres(ctx context.Context) ([]model.Tyre, error) {
	tyres, err := s.tyreRepo.ListTyres(ctx, repository.ListTyresParams{
		Limit: s.listLimit,
	})
	if err != nil {
		return nil, fmt.Errorf("tyre repository list tyres: %w", err)
	}

	return tyres, nil
}

func (s *tyreService) SearchTyres(ctx context.Context, params SearchTyresParams) ([]model.Tyre, error) {
	tyres, err := s.tyreRepo.ListTyres(ctx, repository.ListTyresParams{
		Filter: query.New(params.Brand, params.Size),
		Limit:  s.listLimit,
	})
	if err != nil {
		return nil, fmt.Errorf("tyre repository search tyres: %w", err)
	}

	return tyres, nil
}

func (s *tyreService) CreateTyre(ctx context.Context, params CreateTyreParams) (model.Tyre, error) {
	candidate, err := validateCreate(s.validator, s.policy, params, s.now())
	if err != nil {
		return model.Tyre{}, err
	}

	tyre, err := s.tyreRepo.CreateTyre(ctx, candidate)
	if err != nil {
		return model.Tyre{}, fmt.Errorf("tyre repository create tyre: %w", err)
	}

	s.publish(ctx, event.TopicTyreCreated, tyre.ID, event.TyreCreatedEvent{
		TyreID:  tyre.ID,
		Brand:   tyre.Brand,
		Size:    tyre.Size,
		Type:    tyre.Type,
		Pattern: tyre.Pattern,
		Stock:   tyre.Stock,
		Price:   tyre.Price,
	})

	return tyre, nil
}

func (s *tyreService) UpdateTyre(ctx context.Context, id string, params UpdateTyreParams) (model.Tyre, error) {
	patch, err := validateUpdate(s.policy, params, s.now())
	if err != nil {
		return model.Tyre{}, err
	}

	tyre, err := s.tyreRepo.UpdateTyre(ctx, id, patch)
	if err != nil {
		return model.Tyre{}, fmt.Errorf("tyre repository update tyre: %w", err)
	}

	s.publish(ctx, event.TopicTyreUpdated, tyre.ID, event.TyreUpdatedEvent{
		TyreID:    tyre.ID,
		Brand:     tyre.Brand,
		Size:      tyre.Size,
		Stock:     tyre.Stock,
		Price:     tyre.Price,
		UpdatedAt: tyre.UpdatedAt,
	})

	return tyre, nil
}

// DeleteTyre reports an id the store cannot parse as not found, since no
// record can carry it.
func (s *tyreService) DeleteTyre(ctx context.Context, id string) error {
	if err := s.tyreRepo.DeleteTyre(ctx, id); err != nil {
		if errors.Is(err, apperr.InvalidTyreIDErr) {
			return apperr.TyreNotFoundErr.WrapParent(err)
		}
		return fmt.Errorf("tyre repository delete tyre: %w", err)
	}

	s.publish(ctx, event.TopicTyreDeleted, id, event.TyreDeletedEvent{
		TyreID: id,
	})

	return nil
}

func (s *tyreService) ListBrands(ctx context.Context) ([]string, error) {
	brands, err := s.tyreRepo.ListBrands(ctx)
	if err != nil {
		return nil, fmt.Errorf("tyre repository list brands: %w", err)
	}

	slices.Sort(brands)
	return slices.Compact(brands), nil
}

// publish emits an inventory event after a committed write. The broker gets
// at most eventTimeout, detached from request cancellation. Failures are
// logged and never fail the request.
func (s *tyreService) publish(ctx context.Context, topic, id string, ev any) {
	payload, err := json.Marshal(ev)
	if err != nil {
		s.logger.ErrorContext(ctx, "error marshaling event",
			slog.String("topic", topic), slog.Any("error", err))
		return
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.eventTimeout)
	defer cancel()

	if err := s.mqProducer.Produce(ctx, mq.ProduceMsg{
		Topic:        topic,
		Payload:      payload,
		PartitionKey: &id,
	}); err != nil {
		s.logger.ErrorContext(ctx, "error publishing event",
			slog.String("topic", topic),
			slog.String("tyre_id", id),
			slog.Any("error", err))
	}
}
