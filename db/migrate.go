package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Settj76/ecom/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Source streams every record of a local store.
type Source interface {
	EachEventLog(ctx context.Context, fn func(*models.EventLog) error) error
	EachCartLine(ctx context.Context, fn func(*models.CartLine) error) error
}

// MigrationStats counts copied and skipped records.
type MigrationStats struct {
	EventLogs int
	CartLines int
	Skipped   int
}

// Migrate copies event logs and cart lines from src into the destination
// repositories. Records the destination rejects are logged and skipped, so a
// second run only adds what is missing.
func Migrate(ctx context.Context, src Source, events EventLogRepository, carts CartRepository, logger *zap.Logger) (MigrationStats, error) {
	var stats MigrationStats

	logger.Info("migrating event logs")
	err := src.EachEventLog(ctx, func(l *models.EventLog) error {
		if err := events.Create(ctx, l); err != nil {
			logger.Warn("failed to copy event log", zap.String("id", l.ID), zap.Error(err))
			stats.Skipped++
			return nil
		}
		stats.EventLogs++
		return nil
	})
	if err != nil {
		return stats, fmt.Errorf("migrate event logs: %w", err)
	}

	logger.Info("migrating cart lines")
	err = src.EachCartLine(ctx, func(line *models.CartLine) error {
		if _, err := carts.Upsert(ctx, line); err != nil {
			logger.Warn("failed to copy cart line",
				zap.String("cart_id", line.CartID), zap.String("product_id", line.ProductID), zap.Error(err))
			stats.Skipped++
			return nil
		}
		stats.CartLines++
		return nil
	})
	if err != nil {
		return stats, fmt.Errorf("migrate cart lines: %w", err)
	}

	logger.Info("migration completed",
		zap.Int("event_logs", stats.EventLogs),
		zap.Int("cart_lines", stats.CartLines),
		zap.Int("skipped", stats.Skipped))
	return stats, nil
}

// MongoSource reads the collections used by the Mongo repositories.
type MongoSource struct {
	Client   *mongo.Client
	Database string
}

func (s MongoSource) EachEventLog(ctx context.Context, fn func(*models.EventLog) error) error {
	return eachDocument(ctx, s.Client.Database(s.Database).Collection("event_logs"), func(cur *mongo.Cursor) error {
		var l models.EventLog
		if err := cur.Decode(&l); err != nil {
			return err
		}
		return fn(&l)
	})
}

func (s MongoSource) EachCartLine(ctx context.Context, fn func(*models.CartLine) error) error {
	return eachDocument(ctx, s.Client.Database(s.Database).Collection("cart_lines"), func(cur *mongo.Cursor) error {
		var line models.CartLine
		if err := cur.Decode(&line); err != nil {
			return err
		}
		return fn(&line)
	})
}

func eachDocument(ctx context.Context, coll *mongo.Collection, fn func(*mongo.Cursor) error) error {
	cursor, err := coll.Find(ctx, bson.M{})
	if err != nil {
		return err
	}
	defer cursor.Close(ctx)

	for cursor.Next(ctx) {
		if err := fn(cursor); err != nil {
			return err
		}
	}
	return cursor.Err()
}

// SQLiteSource reads the tables created by InitializeSchema.
type SQLiteSource struct {
	DB *sql.DB
}

func (s SQLiteSource) EachEventLog(ctx context.Context, fn func(*models.EventLog) error) error {
	rows, err := s.DB.QueryContext(ctx, `SELECT id, type, description, actor_id, record_id, created_at
		FROM event_logs ORDER BY created_at, rowid`)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		l, err := scanEventLog(rows)
		if err != nil {
			return err
		}
		if err := fn(l); err != nil {
			return err
		}
	}
	return rows.Err()
}

func (s SQLiteSource) EachCartLine(ctx context.Context, fn func(*models.CartLine) error) error {
	rows, err := s.DB.QueryContext(ctx, `SELECT cart_id, product_id, quantity, created_at, updated_at
		FROM cart_lines ORDER BY created_at, rowid`)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var line models.CartLine
		if err := rows.Scan(&line.CartID, &line.ProductID, &line.Quantity, &line.CreatedAt, &line.UpdatedAt); err != nil {
			return err
		}
		if err := fn(&line); err != nil {
			return err
		}
	}
	return rows.Err()
}
