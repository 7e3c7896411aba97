package service

import (
	"fmt"
	"time"

	"github.com/tuanvumaihuynh/tyre-inventory/internal/apperr"
	"github.com/tuanvumaihuynh/tyre-inventory/internal/model"
	"github.com/tuanvumaihuynh/tyre-inventory/pkg/validator"
)

type CreateTyreParams struct {
	Brand   string   `json:"brand" validate:"required,notblank"`
	Size    string   `json:"size" validate:"required,notblank"`
	Type    string   `json:"type" validate:"required,notblank"`
	Pattern string   `json:"pattern" validate:"required,notblank"`
	Stock   *int     `json:"stock"`
	Price   *float64 `json:"price" validate:"required"`
}

type UpdateTyreParams struct {
	Stock *int     `json:"stock"`
	Price *float64 `json:"price"`
}

type SearchTyresParams struct {
	Brand string
	Size  string
}

// ValidationPolicy holds the tunable rules applied to create and update payloads.
type ValidationPolicy struct {
	AllowNegative bool
}

// validateCreate checks a create payload and builds the record to insert.
// Both timestamps are set to now; the id is left for the store.
func validateCreate(v validator.Validator, policy ValidationPolicy, params CreateTyreParams, now time.Time) (model.Tyre, error) {
	if err := v.Validate(params); err != nil {
		return model.Tyre{}, apperr.ValidationErr.WrapParent(err)
	}

	stock := 0
	if params.Stock != nil {
		stock = *params.Stock
	}

	if err := policy.checkSign(&stock, params.Price); err != nil {
		return model.Tyre{}, err
	}

	return model.Tyre{
		Brand:     params.Brand,
		Size:      params.Size,
		Type:      params.Type,
		Pattern:   params.Pattern,
		Stock:     stock,
		Price:     *params.Price,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// validateUpdate builds a patch holding only the supplied fields and a
// refreshed update time.
func validateUpdate(policy ValidationPolicy, params UpdateTyreParams, now time.Time) (model.TyrePatch, error) {
	if params.Stock == nil && params.Price == nil {
		return model.TyrePatch{}, apperr.NoFieldsToUpdateErr
	}

	if err := policy.checkSign(params.Stock, params.Price); err != nil {
		return model.TyrePatch{}, err
	}

	return model.TyrePatch{
		Stock:     params.Stock,
		Price:     params.Price,
		UpdatedAt: now,
	}, nil
}

func (p ValidationPolicy) checkSign(stock *int, price *float64) error {
	if p.AllowNegative {
		return nil
	}
	if stock != nil && *stock < 0 {
		return apperr.NegativeValueErr.WithMsg(fmt.Sprintf("stock must not be negative, got %d", *stock))
	}
	if price != nil && *price < 0 {
		return apperr.NegativeValueErr.WithMsg(fmt.Sprintf("price must not be negative, got %g", *price))
	}
	return nil
}
