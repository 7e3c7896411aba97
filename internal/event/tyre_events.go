package event

import (
	"context"
	"log/slog"
	"time"
)

const (
	TopicTyreCreated = "tyre.created"
	TopicTyreUpdated = "tyre.updated"
	TopicTyreDeleted = "tyre.deleted"
)

type TyreCreatedEvent struct {
	TyreID  string  `json:"tyre_id"`
	Brand   string  `json:"brand"`
	Size    string  `json:"size"`
	Type    string  `json:"type"`
	Pattern string  `json:"pattern"`
	Stock   int     `json:"stock"`
	Price   float64 `json:"price"`
}

type TyreUpdatedEvent struct {
	TyreID    string    `json:"tyre_id"`
	Brand     string    `json:"brand"`
	Size      string    `json:"size"`
	Stock     int       `json:"stock"`
	Price     float64   `json:"price"`
	UpdatedAt time.Time `json:"updated_at"`
}

type TyreDeletedEvent struct {
	TyreID string `json:"tyre_id"`
}

func (s *Service) handleTyreCreatedEvent(ctx context.Context, ev TyreCreatedEvent) error {
	s.logger.InfoContext(ctx, "tyre added to inventory",
		slog.String("tyre_id", ev.TyreID),
		slog.String("brand", ev.Brand),
		slog.String("size", ev.Size),
		slog.Int("stock", ev.Stock))
	s.checkStock(ctx, ev.TyreID, ev.Brand, ev.Size, ev.Stock)
	return nil
}

func (s *Service) handleTyreUpdatedEvent(ctx context.Context, ev TyreUpdatedEvent) error {
	s.logger.InfoContext(ctx, "tyre updated",
		slog.String("tyre_id", ev.TyreID),
		slog.Int("stock", ev.Stock),
		slog.Float64("price", ev.Price))
	s.checkStock(ctx, ev.TyreID, ev.Brand, ev.Size, ev.Stock)
	return nil
}

func (s *Service) handleTyreDeletedEvent(ctx context.Context, ev TyreDeletedEvent) error {
	s.logger.InfoContext(ctx, "tyre removed from inventory", slog.String("tyre_id", ev.TyreID))
	return nil
}

func (s *Service) checkStock(ctx context.Context, tyreID, brand, size string, stock int) {
	if stock > s.lowStockThreshold {
		return
	}
	s.logger.WarnContext(ctx, "low stock",
		slog.String("tyre_id", tyreID),
		slog.String("brand", brand),
		slog.String("size", size),
		slog.Int("stock", stock),
		slog.Int("threshold", s.lowStockThreshold))
}
