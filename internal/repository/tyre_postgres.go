package repository

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/tuanvumaihuynh/tyre-inventory/internal/apperr"
	"github.com/tuanvumaihuynh/tyre-inventory/internal/model"
	"github.com/tuanvumaihuynh/tyre-inventory/internal/storage/db"
)

var _ TyreRepository = (*postgresTyreRepository)(nil)

const (
	tyreColumns = `id, brand, size, type, pattern, stock, price, created_at, updated_at`

	uniqueViolationCode = "23505"
	// dataExceptionClass covers out-of-range and invalid values, e.g. 22003.
	dataExceptionClass = "22"
)

type tyreRow struct {
	ID        uuid.UUID      `db:"id"`
	Brand     string         `db:"brand"`
	Size      string         `db:"size"`
	Type      string         `db:"type"`
	Pattern   string         `db:"pattern"`
	Stock     int32          `db:"stock"`
	Price     pgtype.Numeric `db:"price"`
	CreatedAt time.Time      `db:"created_at"`
	UpdatedAt time.Time      `db:"updated_at"`
}

type postgresTyreRepository struct {
	db db.DB
}

func NewPostgresTyreRepository(db db.DB) TyreRepository {
	return &postgresTyreRepository{db: db}
}

// CreateTyre inserts the tyre and returns the stored row, so the response
// carries the id generated by the database and the price as persisted.
func (r postgresTyreRepository) CreateTyre(ctx context.Context, tyre model.Tyre) (model.Tyre, error) {
	price, err := toNumeric(tyre.Price)
	if err != nil {
		return model.Tyre{}, err
	}

	stock, err := toInt32(tyre.Stock)
	if err != nil {
		return model.Tyre{}, err
	}

	rows, err := r.db.Query(ctx, `
		INSERT INTO tyres (brand, size, type, pattern, stock, price, created_at, updated_at)
		VALUES (@brand, @size, @type, @pattern, @stock, @price, @created_at, @updated_at)
		RETURNING `+tyreColumns, pgx.NamedArgs{
		"brand":      tyre.Brand,
		"size":       tyre.Size,
		"type":       tyre.Type,
		"pattern":    tyre.Pattern,
		"stock":      stock,
		"price":      price,
		"created_at": tyre.CreatedAt,
		"updated_at": tyre.UpdatedAt,
	})
	if err != nil {
		return model.Tyre{}, mapWriteErr("insert tyre", err)
	}

	row, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[tyreRow])
	if err != nil {
		return model.Tyre{}, mapWriteErr("collect inserted tyre", err)
	}

	created, err := rowToModelTyre(row)
	if err != nil {
		return model.Tyre{}, fmt.Errorf("convert row to model tyre: %w", err)
	}

	return created, nil
}

func (r postgresTyreRepository) ListTyres(ctx context.Context, params ListTyresParams) ([]model.Tyre, error) {
	where, args := params.Filter.SQL(1)

	sql := `SELECT ` + tyreColumns + ` FROM tyres WHERE ` + where + ` ORDER BY created_at, id`
	if params.Limit > 0 {
		sql += fmt.Sprintf(` LIMIT $%d`, len(args)+1)
		args = append(args, params.Limit)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("query tyres: %w", err)
	}

	tyreRows, err := pgx.CollectRows(rows, pgx.RowToStructByName[tyreRow])
	if err != nil {
		return nil, fmt.Errorf("collect tyres: %w", err)
	}

	tyres := make([]model.Tyre, 0, len(tyreRows))
	for _, row := range tyreRows {
		tyre, err := rowToModelTyre(row)
		if err != nil {
			return nil, fmt.Errorf("convert row to model tyre: %w", err)
		}
		tyres = append(tyres, tyre)
	}

	return tyres, nil
}

func (r postgresTyreRepository) UpdateTyre(ctx context.Context, id string, patch model.TyrePatch) (model.Tyre, error) {
	tyreID, err := parseUUID(id)
	if err != nil {
		return model.Tyre{}, err
	}

	var stock *int32
	if patch.Stock != nil {
		s, err := toInt32(*patch.Stock)
		if err != nil {
			return model.Tyre{}, err
		}
		stock = &s
	}

	var price pgtype.Numeric
	if patch.Price != nil {
		p, err := toNumeric(*patch.Price)
		if err != nil {
			return model.Tyre{}, err
		}
		price = p
	}

	rows, err := r.db.Query(ctx, `
		UPDATE tyres
		SET
			stock      = COALESCE(@stock, stock),
			price      = COALESCE(@price, price),
			updated_at = @updated_at
		WHERE id = @id
		RETURNING `+tyreColumns, pgx.NamedArgs{
		"id":         tyreID,
		"stock":      stock,
		"price":      price,
		"updated_at": patch.UpdatedAt,
	})
	if err != nil {
		return model.Tyre{}, mapWriteErr("update tyre", err)
	}

	row, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[tyreRow])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Tyre{}, apperr.TyreNotFoundErr.WrapParent(err)
		}
		return model.Tyre{}, mapWriteErr("collect updated tyre", err)
	}

	tyre, err := rowToModelTyre(row)
	if err != nil {
		return model.Tyre{}, fmt.Errorf("convert row to model tyre: %w", err)
	}

	return tyre, nil
}

func (r postgresTyreRepository) DeleteTyre(ctx context.Context, id string) error {
	tyreID, err := parseUUID(id)
	if err != nil {
		return err
	}

	tag, err := r.db.Exec(ctx, `DELETE FROM tyres WHERE id = $1`, tyreID)
	if err != nil {
		return fmt.Errorf("delete tyre: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.TyreNotFoundErr
	}
	return nil
}

func (r postgresTyreRepository) ListBrands(ctx context.Context) ([]string, error) {
	rows, err := r.db.Query(ctx, `SELECT DISTINCT brand FROM tyres`)
	if err != nil {
		return nil, fmt.Errorf("query brands: %w", err)
	}

	brands, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("collect brands: %w", err)
	}

	return brands, nil
}

func toNumeric(v float64) (pgtype.Numeric, error) {
	var n pgtype.Numeric
	if err := n.Scan(strconv.FormatFloat(v, 'f', -1, 64)); err != nil {
		return pgtype.Numeric{}, fmt.Errorf("scan price: %w", err)
	}
	return n, nil
}

func toInt32(v int) (int32, error) {
	if v > math.MaxInt32 || v < math.MinInt32 {
		return 0, apperr.ValidationErr.WithMsg(fmt.Sprintf("stock out of range: %d", v))
	}
	return int32(v), nil
}

func rowToModelTyre(row tyreRow) (model.Tyre, error) {
	price, err := row.Price.Float64Value()
	if err != nil {
		return model.Tyre{}, fmt.Errorf("convert price to float64: %w", err)
	}

	return model.Tyre{
		ID:        row.ID.String(),
		Brand:     row.Brand,
		Size:      row.Size,
		Type:      row.Type,
		Pattern:   row.Pattern,
		Stock:     int(row.Stock),
		Price:     price.Float64,
		CreatedAt: row.CreatedAt.UTC(),
		UpdatedAt: row.UpdatedAt.UTC(),
	}, nil
}

func parseUUID(id string) (uuid.UUID, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return uuid.Nil, apperr.InvalidTyreIDErr.WrapParent(err)
	}
	return parsed, nil
}

// mapWriteErr turns constraint and data errors reported by Postgres into
// client errors.
func mapWriteErr(op string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case pgErr.Code == uniqueViolationCode:
			return apperr.DuplicateTyreErr.WrapParent(err)
		case strings.HasPrefix(pgErr.Code, dataExceptionClass):
			return apperr.ValidationErr.WithMsg(pgErr.Message).WrapParent(err)
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}
