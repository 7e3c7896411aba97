package repository

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/tuanvumaihuynh/tyre-inventory/internal/apperr"
	"github.com/tuanvumaihuynh/tyre-inventory/internal/model"
)

var (
	_ TyreRepository = (*memoryTyreRepository)(nil)
	_ HealthChecker  = (*memoryTyreRepository)(nil)
)

// memoryTyreRepository keeps tyres in insertion order and assigns UUIDv7 ids.
// Safe for concurrent use.
type memoryTyreRepository struct {
	mu    sync.RWMutex
	order []string
	tyres map[string]model.Tyre
}

// NewMemoryTyreRepository returns a process-local TyreRepository. Data is lost
// on restart.
func NewMemoryTyreRepository() TyreRepository {
	return &memoryTyreRepository{
		tyres: make(map[string]model.Tyre),
	}
}

func (r *memoryTyreRepository) CreateTyre(_ context.Context, tyre model.Tyre) (model.Tyre, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return model.Tyre{}, fmt.Errorf("generate uuid v7: %w", err)
	}
	tyre.ID = id.String()

	r.mu.Lock()
	defer r.mu.Unlock()

	r.tyres[tyre.ID] = tyre
	r.order = append(r.order, tyre.ID)
	return tyre, nil
}

func (r *memoryTyreRepository) ListTyres(_ context.Context, params ListTyresParams) ([]model.Tyre, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tyres := make([]model.Tyre, 0)
	for _, id := range r.order {
		if params.Limit > 0 && int64(len(tyres)) >= params.Limit {
			break
		}
		tyre := r.tyres[id]
		if params.Filter.Match(tyre) {
			tyres = append(tyres, tyre)
		}
	}
	return tyres, nil
}

func (r *memoryTyreRepository) UpdateTyre(_ context.Context, id string, patch model.TyrePatch) (model.Tyre, error) {
	key, err := memoryKey(id)
	if err != nil {
		return model.Tyre{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	tyre, ok := r.tyres[key]
	if !ok {
		return model.Tyre{}, apperr.TyreNotFoundErr
	}

	tyre = patch.Apply(tyre)
	r.tyres[key] = tyre
	return tyre, nil
}

func (r *memoryTyreRepository) DeleteTyre(_ context.Context, id string) error {
	key, err := memoryKey(id)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.tyres[key]; !ok {
		return apperr.TyreNotFoundErr
	}

	delete(r.tyres, key)
	for i, existing := range r.order {
		if existing == key {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

func (r *memoryTyreRepository) ListBrands(_ context.Context) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[string]struct{}, len(r.tyres))
	brands := make([]string, 0)
	for _, id := range r.order {
		brand := r.tyres[id].Brand
		if _, ok := seen[brand]; ok {
			continue
		}
		seen[brand] = struct{}{}
		brands = append(brands, brand)
	}
	return brands, nil
}

func (r *memoryTyreRepository) IsHealthy(_ context.Context) (bool, error) {
	return true, nil
}

// memoryKey normalizes id to the canonical uuid form used as map key.
func memoryKey(id string) (string, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return "", apperr.InvalidTyreIDErr.WrapParent(err)
	}
	return parsed.String(), nil
}
