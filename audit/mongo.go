package audit

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoLog implements Log over a MongoDB collection.
type MongoLog struct {
	client     *mongo.Client
	collection *mongo.Collection
}

var _ Log = (*MongoLog)(nil)

// Config holds MongoDB connection parameters for a MongoLog.
type Config struct {
	URI        string
	Database   string
	Collection string
}

// DefaultConfig returns conservative local defaults.
func DefaultConfig() *Config {
	return &Config{
		URI:        "mongodb://localhost:27017",
		Database:   "plagdetect",
		Collection: "detection_audit",
	}
}

// NewMongoLog connects to MongoDB and ensures the audit collection's index
// exists.
func NewMongoLog(ctx context.Context, cfg *Config) (*MongoLog, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("connect to mongo: %w", err)
	}
	if err := client.Ping(connectCtx, nil); err != nil {
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	collection := client.Database(cfg.Database).Collection(cfg.Collection)
	log := &MongoLog{client: client, collection: collection}
	if err := log.createIndexes(ctx); err != nil {
		return nil, fmt.Errorf("create audit indexes: %w", err)
	}
	return log, nil
}

func (l *MongoLog) createIndexes(ctx context.Context) error {
	_, err := l.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "created_at", Value: -1}},
	})
	return err
}

// Record appends entry to the audit collection. Appends are insert-only:
// an existing RequestID is never overwritten.
func (l *MongoLog) Record(ctx context.Context, entry Entry) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}
	if _, err := l.collection.InsertOne(ctx, entry); err != nil {
		return fmt.Errorf("record audit entry: %w", err)
	}
	return nil
}

// Close disconnects the underlying MongoDB client.
func (l *MongoLog) Close(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	return l.client.Disconnect(ctx)
}
