package db

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// ConnectToMongo opens a MongoDB client and verifies it with a ping
func ConnectToMongo(ctx context.Context, uri string, logger *zap.Logger) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	logger.Info("connected to MongoDB")
	return client, nil
}

// EnsureMongoIndexes creates the indexes the repositories query by
func EnsureMongoIndexes(ctx context.Context, client *mongo.Client, database string) error {
	db := client.Database(database)

	_, err := db.Collection("event_logs").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bsonD("created_at", -1),
	})
	if err != nil {
		return fmt.Errorf("failed to create event_logs index: %w", err)
	}

	_, err = db.Collection("cart_lines").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bsonD("cart_id", 1, "product_id", 1),
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("failed to create cart_lines index: %w", err)
	}
	return nil
}
