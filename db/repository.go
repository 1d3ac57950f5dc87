package db

import (
	"context"
	"database/sql"
	"errors"

	"github.com/Settj76/ecom/models"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

var (
	ErrNotFound = errors.New("record not found")
)

// Repository defines a common interface for all repositories
type Repository interface {
	Close() error
}

// EventLogRepository defines the interface for admin activity operations
type EventLogRepository interface {
	Repository
	Create(ctx context.Context, eventLog *models.EventLog) error
	FindLatest(ctx context.Context, limit int) ([]*models.EventLog, error)
	FindAllByRecordID(ctx context.Context, recordID string) ([]*models.EventLog, error)
}

// CartRepository defines the interface for cart line operations
type CartRepository interface {
	Repository
	FindByCartID(ctx context.Context, cartID string) ([]*models.CartLine, error)
	FindLine(ctx context.Context, cartID, productID string) (*models.CartLine, error)
	Upsert(ctx context.Context, line *models.CartLine) (*models.CartLine, error)
	DeleteLine(ctx context.Context, cartID, productID string) error
	DeleteCart(ctx context.Context, cartID string) error
}

// RepositoryFactory creates repositories based on the database type
type RepositoryFactory struct {
	SQLiteDB    *sql.DB
	MongoClient *mongo.Client
	DBName      string
	Logger      *zap.Logger
}

// NewRepositoryFactory creates a new repository factory
func NewRepositoryFactory(sqliteDB *sql.DB, mongoClient *mongo.Client, dbName string, logger *zap.Logger) *RepositoryFactory {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RepositoryFactory{
		SQLiteDB:    sqliteDB,
		MongoClient: mongoClient,
		DBName:      dbName,
		Logger:      logger,
	}
}

// NewEventLogRepository creates a new event log repository
func (f *RepositoryFactory) NewEventLogRepository() EventLogRepository {
	if f.SQLiteDB != nil {
		return NewSQLiteEventLogRepository(f.SQLiteDB, f.Logger)
	}
	return NewMongoEventLogRepository(f.MongoClient, f.DBName, "event_logs")
}

// NewCartRepository creates a new cart repository
func (f *RepositoryFactory) NewCartRepository() CartRepository {
	if f.SQLiteDB != nil {
		return NewSQLiteCartRepository(f.SQLiteDB, f.Logger)
	}
	return NewMongoCartRepository(f.MongoClient, f.DBName, "cart_lines")
}

// Ping checks that the configured store answers.
func (f *RepositoryFactory) Ping(ctx context.Context) error {
	if f.SQLiteDB != nil {
		return f.SQLiteDB.PingContext(ctx)
	}
	if f.MongoClient != nil {
		return f.MongoClient.Ping(ctx, nil)
	}
	return errors.New("no database configured")
}

// GenerateID generates a unique ID for a record
func GenerateID() string {
	return uuid.New().String()
}
