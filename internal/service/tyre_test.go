package service_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/tuanvumaihuynh/tyre-inventory/internal/apperr"
	"github.com/tuanvumaihuynh/tyre-inventory/internal/config"
	"github.com/tuanvumaihuynh/tyre-inventory/internal/event"
	"github.com/tuanvumaihuynh/tyre-inventory/internal/model"
	"github.com/tuanvumaihuynh/tyre-inventory/internal/query"
	"github.com/tuanvumaihuynh/tyre-inventory/internal/repository"
	"github.com/tuanvumaihuynh/tyre-inventory/internal/service"
	"github.com/tuanvumaihuynh/tyre-inventory/internal/storage/mq"
	"github.com/tuanvumaihuynh/tyre-inventory/pkg/ptr"
	"github.com/tuanvumaihuynh/tyre-inventory/pkg/validator"
)

// MockTyreRepository is a mock implementation of repository.TyreRepository
type MockTyreRepository struct {
	mock.Mock
}

func (m *MockTyreRepository) CreateTyre(ctx context.Context, tyre model.Tyre) (model.Tyre, error) {
	args := m.Called(ctx, tyre)
	if fn, ok := args.Get(0).(func(model.Tyre) model.Tyre); ok {
		return fn(tyre), args.Error(1)
	}
	return args.Get(0).(model.Tyre), args.Error(1)
}

func (m *MockTyreRepository) ListTyres(ctx context.Context, params repository.ListTyresParams) ([]model.Tyre, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Tyre), args.Error(1)
}

func (m *MockTyreRepository) UpdateTyre(ctx context.Context, id string, patch model.TyrePatch) (model.Tyre, error) {
	args := m.Called(ctx, id, patch)
	return args.Get(0).(model.Tyre), args.Error(1)
}

func (m *MockTyreRepository) DeleteTyre(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockTyreRepository) ListBrands(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

// MockProducer is a mock implementation of mq.Producer
type MockProducer struct {
	mock.Mock
}

func (m *MockProducer) Produce(ctx context.Context, msg mq.ProduceMsg) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

// blockingProducer never acknowledges and returns only once ctx is done.
type blockingProducer struct {
	deadline chan bool
}

func (p *blockingProducer) Produce(ctx context.Context, _ mq.ProduceMsg) error {
	_, ok := ctx.Deadline()
	p.deadline <- ok
	<-ctx.Done()
	return ctx.Err()
}

var ctx = context.Background()

// storedAs mimics a record store assigning id on insert.
func storedAs(id string) func(model.Tyre) model.Tyre {
	return func(tyre model.Tyre) model.Tyre {
		tyre.ID = id
		return tyre
	}
}

func newService(t *testing.T, cfg config.Inventory) (service.TyreService, *MockTyreRepository, *MockProducer) {
	t.Helper()
	v, err := validator.NewDefaultValidator()
	require.NoError(t, err)

	repo := new(MockTyreRepository)
	producer := new(MockProducer)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	return service.NewTyreService(cfg, logger, repo, v, producer), repo, producer
}

func defaultConfig() config.Inventory {
	return config.Inventory{AllowNegative: true, ListLimit: 1000, LowStockThreshold: 2}
}

func validCreateParams() service.CreateTyreParams {
	return service.CreateTyreParams{
		Brand:   "MRF",
		Size:    "400*8",
		Type:    "TY",
		Pattern: "TEST",
		Stock:   ptr.New(5),
		Price:   ptr.New(1000.0),
	}
}

func TestTyreService_ListAllTyres(t *testing.T) {
	svc, repo, _ := newService(t, defaultConfig())

	expected := []model.Tyre{{ID: "64b7f0c2e1d3a4b5c6d7e8f9", Brand: "MRF"}}
	repo.On("ListTyres", ctx, repository.ListTyresParams{Limit: 1000}).Return(expected, nil).Once()

	tyres, err := svc.ListAllTyres(ctx)
	require.NoError(t, err)
	assert.Equal(t, expected, tyres)
	repo.AssertExpectations(t)
}

func TestTyreService_SearchTyres(t *testing.T) {
	svc, repo, _ := newService(t, defaultConfig())

	expected := []model.Tyre{{ID: "64b7f0c2e1d3a4b5c6d7e8f9", Brand: "TVS", Size: "275*18"}}
	repo.On("ListTyres", ctx, repository.ListTyresParams{
		Filter: query.New("TVS", "275*18"),
		Limit:  1000,
	}).Return(expected, nil).Once()

	tyres, err := svc.SearchTyres(ctx, service.SearchTyresParams{Brand: "TVS", Size: "275*18"})
	require.NoError(t, err)
	assert.Equal(t, expected, tyres)
	repo.AssertExpectations(t)
}

func TestTyreService_CreateTyre(t *testing.T) {
	t.Run("Should create tyre and publish event", func(t *testing.T) {
		svc, repo, producer := newService(t, defaultConfig())

		repo.On("CreateTyre", ctx, mock.MatchedBy(func(tyre model.Tyre) bool {
			return tyre.ID == ""
		})).Return(storedAs("64b7f0c2e1d3a4b5c6d7e8f9"), nil).Once()
		producer.On("Produce", mock.Anything, mock.MatchedBy(func(msg mq.ProduceMsg) bool {
			return msg.Topic == event.TopicTyreCreated && *msg.PartitionKey == "64b7f0c2e1d3a4b5c6d7e8f9"
		})).Return(nil).Once()

		tyre, err := svc.CreateTyre(ctx, validCreateParams())
		require.NoError(t, err)
		assert.Equal(t, "64b7f0c2e1d3a4b5c6d7e8f9", tyre.ID)
		assert.Equal(t, "MRF", tyre.Brand)
		assert.Equal(t, 5, tyre.Stock)
		assert.Equal(t, 1000.0, tyre.Price)
		assert.False(t, tyre.CreatedAt.IsZero())
		assert.Equal(t, tyre.CreatedAt, tyre.UpdatedAt)
		repo.AssertExpectations(t)
		producer.AssertExpectations(t)
	})

	t.Run("Should default stock to zero", func(t *testing.T) {
		svc, repo, producer := newService(t, defaultConfig())

		repo.On("CreateTyre", ctx, mock.AnythingOfType("model.Tyre")).Return(storedAs("1"), nil).Once()
		producer.On("Produce", mock.Anything, mock.Anything).Return(nil).Once()

		params := validCreateParams()
		params.Stock = nil
		tyre, err := svc.CreateTyre(ctx, params)
		require.NoError(t, err)
		assert.Equal(t, 0, tyre.Stock)
	})

	t.Run("Should reject missing fields before insert", func(t *testing.T) {
		svc, repo, _ := newService(t, defaultConfig())

		params := validCreateParams()
		params.Brand = ""
		params.Price = nil
		_, err := svc.CreateTyre(ctx, params)
		assert.ErrorIs(t, err, apperr.ValidationErr)
		repo.AssertNotCalled(t, "CreateTyre", mock.Anything, mock.Anything)
	})

	t.Run("Should reject negative values when not allowed", func(t *testing.T) {
		cfg := defaultConfig()
		cfg.AllowNegative = false
		svc, repo, _ := newService(t, cfg)

		params := validCreateParams()
		params.Stock = ptr.New(-1)
		_, err := svc.CreateTyre(ctx, params)
		assert.ErrorIs(t, err, apperr.NegativeValueErr)
		repo.AssertNotCalled(t, "CreateTyre", mock.Anything, mock.Anything)
	})

	t.Run("Should accept negative values by default", func(t *testing.T) {
		svc, repo, producer := newService(t, defaultConfig())

		repo.On("CreateTyre", ctx, mock.AnythingOfType("model.Tyre")).Return(storedAs("1"), nil).Once()
		producer.On("Produce", mock.Anything, mock.Anything).Return(nil).Once()

		params := validCreateParams()
		params.Stock = ptr.New(-3)
		params.Price = ptr.New(-1.5)
		tyre, err := svc.CreateTyre(ctx, params)
		require.NoError(t, err)
		assert.Equal(t, -3, tyre.Stock)
		assert.Equal(t, -1.5, tyre.Price)
	})

	t.Run("Should not fail when publishing fails", func(t *testing.T) {
		svc, repo, producer := newService(t, defaultConfig())

		repo.On("CreateTyre", ctx, mock.AnythingOfType("model.Tyre")).Return(storedAs("1"), nil).Once()
		producer.On("Produce", mock.Anything, mock.Anything).Return(errors.New("broker down")).Once()

		_, err := svc.CreateTyre(ctx, validCreateParams())
		assert.NoError(t, err)
	})

	t.Run("Should return when broker never acknowledges", func(t *testing.T) {
		v, err := validator.NewDefaultValidator()
		require.NoError(t, err)
		cfg := defaultConfig()
		cfg.EventTimeout = 20 * time.Millisecond
		repo := new(MockTyreRepository)
		producer := &blockingProducer{deadline: make(chan bool, 1)}
		svc := service.NewTyreService(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)), repo, v, producer)

		repo.On("CreateTyre", ctx, mock.AnythingOfType("model.Tyre")).Return(storedAs("1"), nil).Once()

		start := time.Now()
		tyre, err := svc.CreateTyre(ctx, validCreateParams())
		require.NoError(t, err)
		assert.Equal(t, "1", tyre.ID)
		assert.Less(t, time.Since(start), time.Second)
		assert.True(t, <-producer.deadline)
	})

	t.Run("Should propagate store errors", func(t *testing.T) {
		svc, repo, producer := newService(t, defaultConfig())

		repo.On("CreateTyre", ctx, mock.AnythingOfType("model.Tyre")).Return(model.Tyre{}, errors.New("connection refused")).Once()

		_, err := svc.CreateTyre(ctx, validCreateParams())
		assert.ErrorContains(t, err, "connection refused")
		producer.AssertNotCalled(t, "Produce", mock.Anything, mock.Anything)
	})
}

func TestTyreService_UpdateTyre(t *testing.T) {
	id := "64b7f0c2e1d3a4b5c6d7e8f9"
	createdAt := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	t.Run("Should apply patch atomically through repository", func(t *testing.T) {
		svc, repo, producer := newService(t, defaultConfig())

		updated := model.Tyre{ID: id, Brand: "MRF", Stock: 10, Price: 1000, CreatedAt: createdAt, UpdatedAt: time.Now().UTC()}
		repo.On("UpdateTyre", ctx, id, mock.MatchedBy(func(p model.TyrePatch) bool {
			return p.Stock != nil && *p.Stock == 10 && p.Price == nil && p.UpdatedAt.After(createdAt)
		})).Return(updated, nil).Once()
		producer.On("Produce", mock.Anything, mock.MatchedBy(func(msg mq.ProduceMsg) bool {
			return msg.Topic == event.TopicTyreUpdated
		})).Return(nil).Once()

		tyre, err := svc.UpdateTyre(ctx, id, service.UpdateTyreParams{Stock: ptr.New(10)})
		require.NoError(t, err)
		assert.Equal(t, updated, tyre)
		repo.AssertExpectations(t)
		producer.AssertExpectations(t)
	})

	t.Run("Should reject empty patch", func(t *testing.T) {
		svc, repo, _ := newService(t, defaultConfig())

		_, err := svc.UpdateTyre(ctx, id, service.UpdateTyreParams{})
		assert.ErrorIs(t, err, apperr.NoFieldsToUpdateErr)
		repo.AssertNotCalled(t, "UpdateTyre", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Should reject negative price when not allowed", func(t *testing.T) {
		cfg := defaultConfig()
		cfg.AllowNegative = false
		svc, _, _ := newService(t, cfg)

		_, err := svc.UpdateTyre(ctx, id, service.UpdateTyreParams{Price: ptr.New(-10.0)})
		assert.ErrorIs(t, err, apperr.NegativeValueErr)
	})

	t.Run("Should return not found", func(t *testing.T) {
		svc, repo, producer := newService(t, defaultConfig())

		repo.On("UpdateTyre", ctx, id, mock.Anything).Return(model.Tyre{}, apperr.TyreNotFoundErr).Once()

		_, err := svc.UpdateTyre(ctx, id, service.UpdateTyreParams{Price: ptr.New(10.0)})
		assert.ErrorIs(t, err, apperr.TyreNotFoundErr)
		producer.AssertNotCalled(t, "Produce", mock.Anything, mock.Anything)
	})
}

func TestTyreService_DeleteTyre(t *testing.T) {
	id := "64b7f0c2e1d3a4b5c6d7e8f9"

	t.Run("Should delete and publish event", func(t *testing.T) {
		svc, repo, producer := newService(t, defaultConfig())

		repo.On("DeleteTyre", ctx, id).Return(nil).Once()
		producer.On("Produce", mock.Anything, mock.MatchedBy(func(msg mq.ProduceMsg) bool {
			return msg.Topic == event.TopicTyreDeleted && *msg.PartitionKey == id
		})).Return(nil).Once()

		require.NoError(t, svc.DeleteTyre(ctx, id))
		repo.AssertExpectations(t)
		producer.AssertExpectations(t)
	})

	t.Run("Should return not found", func(t *testing.T) {
		svc, repo, _ := newService(t, defaultConfig())

		repo.On("DeleteTyre", ctx, id).Return(apperr.TyreNotFoundErr).Once()

		assert.ErrorIs(t, svc.DeleteTyre(ctx, id), apperr.TyreNotFoundErr)
	})

	t.Run("Should report malformed id as not found", func(t *testing.T) {
		svc, repo, producer := newService(t, defaultConfig())

		repo.On("DeleteTyre", ctx, "123").Return(apperr.InvalidTyreIDErr).Once()

		err := svc.DeleteTyre(ctx, "123")
		assert.ErrorIs(t, err, apperr.TyreNotFoundErr)
		producer.AssertNotCalled(t, "Produce", mock.Anything, mock.Anything)
	})
}

func TestTyreService_ListBrands(t *testing.T) {
	svc, repo, _ := newService(t, defaultConfig())

	repo.On("ListBrands", ctx).Return([]string{"TVS", "CEAT", "MRF", "CEAT"}, nil).Once()

	brands, err := svc.ListBrands(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"CEAT", "MRF", "TVS"}, brands)
}
