package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type DB interface {
	Exec(context.Context, string, ...any) (pgconn.CommandTag, error)
	Query(context.Context, string, ...any) (pgx.Rows, error)
}

type HealthChecker interface {
	IsHealthy(ctx context.Context) (bool, error)
}

var (
	_ DB            = (*Client)(nil)
	_ HealthChecker = (*Client)(nil)
)

type Client struct {
	*pgxpool.Pool
}

// NewClient creates a new db client.
func NewClient(pool *pgxpool.Pool) *Client {
	return &Client{pool}
}

func (p *Client) IsHealthy(ctx context.Context) (bool, error) {
	err := p.Ping(ctx)
	if err != nil {
		return false, fmt.Errorf("ping database: %w", err)
	}
	return true, nil
}
