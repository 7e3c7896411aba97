package docstore

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/tuanvumaihuynh/tyre-inventory/internal/config"
)

// NewMongoClient connects to MongoDB and verifies the connection with a ping.
// The caller owns the client and must Disconnect it on shutdown.
func NewMongoClient(ctx context.Context, cfg config.Mongo) (*mongo.Client, error) {
	opts := options.Client().
		ApplyURI(cfg.URL).
		SetConnectTimeout(cfg.ConnectTimeout).
		SetServerSelectionTimeout(cfg.ConnectTimeout)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}

	pingCtx, pingCancel := context.WithTimeout(ctx, 5*time.Second)
	defer pingCancel()

	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		//nolint:errcheck
		client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	return client, nil
}

// Collection returns the configured tyre collection.
func Collection(client *mongo.Client, cfg config.Mongo) *mongo.Collection {
	return client.Database(cfg.DBName).Collection(cfg.Collection)
}
