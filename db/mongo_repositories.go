package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Settj76/ecom/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// bsonD builds an ordered document from alternating keys and values
func bsonD(pairs ...any) bson.D {
	d := make(bson.D, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		d = append(d, bson.E{Key: pairs[i].(string), Value: pairs[i+1]})
	}
	return d
}

func lineFilter(cartID, productID string) bson.M {
	return bson.M{"cart_id": cartID, "product_id": productID}
}

// lineUpsert sets the quantity and keeps created_at from the first insert.
func lineUpsert(line *models.CartLine) bson.M {
	return bson.M{
		"$set":         bson.M{"quantity": line.Quantity, "updated_at": line.UpdatedAt},
		"$setOnInsert": bson.M{"created_at": line.CreatedAt},
	}
}

// MongoEventLogRepository implements the EventLogRepository interface for MongoDB
type MongoEventLogRepository struct {
	client     *mongo.Client
	database   string
	collection string
}

// NewMongoEventLogRepository creates a new MongoEventLogRepository
func NewMongoEventLogRepository(client *mongo.Client, database, collection string) *MongoEventLogRepository {
	return &MongoEventLogRepository{
		client:     client,
		database:   database,
		collection: collection,
	}
}

func (r *MongoEventLogRepository) coll() *mongo.Collection {
	return r.client.Database(r.database).Collection(r.collection)
}

// Close closes the MongoDB connection
func (r *MongoEventLogRepository) Close() error {
	return r.client.Disconnect(context.Background())
}

// Create creates a new event log
func (r *MongoEventLogRepository) Create(ctx context.Context, eventLog *models.EventLog) error {
	if eventLog.ID == "" {
		eventLog.ID = GenerateID()
	}
	if eventLog.CreatedAt.IsZero() {
		eventLog.CreatedAt = time.Now().UTC()
	}

	if _, err := r.coll().InsertOne(ctx, eventLog); err != nil {
		return fmt.Errorf("error creating event log: %w", err)
	}

	return nil
}

// FindLatest finds the latest event logs
func (r *MongoEventLogRepository) FindLatest(ctx context.Context, limit int) ([]*models.EventLog, error) {
	opts := options.Find().
		SetSort(bsonD("created_at", -1)).
		SetLimit(int64(limit))
	return r.find(ctx, bson.M{}, opts)
}

// FindAllByRecordID finds all event logs touching one backend record
func (r *MongoEventLogRepository) FindAllByRecordID(ctx context.Context, recordID string) ([]*models.EventLog, error) {
	opts := options.Find().SetSort(bsonD("created_at", -1))
	return r.find(ctx, bson.M{"record_id": recordID}, opts)
}

func (r *MongoEventLogRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]*models.EventLog, error) {
	cursor, err := r.coll().Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("error finding event logs: %w", err)
	}
	defer cursor.Close(ctx)

	logs := []*models.EventLog{}
	if err = cursor.All(ctx, &logs); err != nil {
		return nil, fmt.Errorf("error decoding event logs: %w", err)
	}

	return logs, nil
}

// MongoCartRepository implements the CartRepository interface for MongoDB
type MongoCartRepository struct {
	client     *mongo.Client
	database   string
	collection string
}

// NewMongoCartRepository creates a new MongoCartRepository
func NewMongoCartRepository(client *mongo.Client, database, collection string) *MongoCartRepository {
	return &MongoCartRepository{
		client:     client,
		database:   database,
		collection: collection,
	}
}

func (r *MongoCartRepository) coll() *mongo.Collection {
	return r.client.Database(r.database).Collection(r.collection)
}

// Close closes the MongoDB connection
func (r *MongoCartRepository) Close() error {
	return r.client.Disconnect(context.Background())
}

// FindByCartID returns the lines of a cart, oldest first
func (r *MongoCartRepository) FindByCartID(ctx context.Context, cartID string) ([]*models.CartLine, error) {
	opts := options.Find().SetSort(bsonD("created_at", 1))
	cursor, err := r.coll().Find(ctx, bson.M{"cart_id": cartID}, opts)
	if err != nil {
		return nil, fmt.Errorf("error finding cart lines: %w", err)
	}
	defer cursor.Close(ctx)

	lines := []*models.CartLine{}
	if err = cursor.All(ctx, &lines); err != nil {
		return nil, fmt.Errorf("error decoding cart lines: %w", err)
	}
	return lines, nil
}

// FindLine returns one line or ErrNotFound
func (r *MongoCartRepository) FindLine(ctx context.Context, cartID, productID string) (*models.CartLine, error) {
	var line models.CartLine
	err := r.coll().FindOne(ctx, lineFilter(cartID, productID)).Decode(&line)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("error finding cart line: %w", err)
	}
	return &line, nil
}

// Upsert stores the line, replacing the quantity of an existing one
func (r *MongoCartRepository) Upsert(ctx context.Context, line *models.CartLine) (*models.CartLine, error) {
	now := time.Now().UTC()
	if line.CreatedAt.IsZero() {
		line.CreatedAt = now
	}
	line.UpdatedAt = now

	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var saved models.CartLine
	if err := r.coll().FindOneAndUpdate(ctx, lineFilter(line.CartID, line.ProductID), lineUpsert(line), opts).Decode(&saved); err != nil {
		return nil, fmt.Errorf("error upserting cart line: %w", err)
	}
	return &saved, nil
}

// DeleteLine removes one product from a cart
func (r *MongoCartRepository) DeleteLine(ctx context.Context, cartID, productID string) error {
	res, err := r.coll().DeleteOne(ctx, lineFilter(cartID, productID))
	if err != nil {
		return fmt.Errorf("error deleting cart line: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteCart removes every line of a cart
func (r *MongoCartRepository) DeleteCart(ctx context.Context, cartID string) error {
	if _, err := r.coll().DeleteMany(ctx, bson.M{"cart_id": cartID}); err != nil {
		return fmt.Errorf("error deleting cart: %w", err)
	}
	return nil
}
