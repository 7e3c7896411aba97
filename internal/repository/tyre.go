package repository

import (
	"context"

	"github.com/tuanvumaihuynh/tyre-inventory/internal/model"
	"github.com/tuanvumaihuynh/tyre-inventory/internal/query"
)

type ListTyresParams struct {
	Filter query.Filter
	Limit  int64
}

// TyreRepository is the record store holding tyres. Implementations report a
// missing record on UpdateTyre and DeleteTyre with apperr.TyreNotFoundErr, and
// an id that cannot be one of theirs with apperr.InvalidTyreIDErr, before any
// query is sent.
type TyreRepository interface {
	// CreateTyre inserts tyre, ignoring tyre.ID, and returns the record as
	// stored, including the id the store assigned.
	CreateTyre(ctx context.Context, tyre model.Tyre) (model.Tyre, error)
	ListTyres(ctx context.Context, params ListTyresParams) ([]model.Tyre, error)
	// UpdateTyre applies the patch and returns the updated record in a single
	// atomic store operation.
	UpdateTyre(ctx context.Context, id string, patch model.TyrePatch) (model.Tyre, error)
	DeleteTyre(ctx context.Context, id string) error
	// ListBrands returns the distinct brands across all records, unordered.
	ListBrands(ctx context.Context) ([]string, error)
}

type HealthChecker interface {
	IsHealthy(ctx context.Context) (bool, error)
}
