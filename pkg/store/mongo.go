package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/epitools/tracetab/pkg/observability"
)

const (
	// defaultListLimit bounds ListResults when the caller passes 0.
	defaultListLimit = 50

	resultsCollection = "results"
)

// MongoStore implements Store backed by a MongoDB collection.
type MongoStore struct {
	client  *mongo.Client
	results *mongo.Collection
}

// NewMongoStore connects to MongoDB at uri and uses the given database.
// The connection is verified with a ping before returning.
func NewMongoStore(ctx context.Context, uri, database string) (*MongoStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect %s: %w", uri, err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping %s: %w", uri, err)
	}
	return &MongoStore{
		client:  client,
		results: client.Database(database).Collection(resultsCollection),
	}, nil
}

// SaveResult stores a result document, assigning a fresh UUID if needed.
func (s *MongoStore) SaveResult(ctx context.Context, r Result) (string, error) {
	start := time.Now()
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}
	r.RowCount = r.Rows.Len()

	_, err := s.results.InsertOne(ctx, r)
	observability.Store().OnSave(ctx, r.ID, r.RowCount, time.Since(start), err)
	if err != nil {
		return "", fmt.Errorf("insert result %s: %w", r.ID, err)
	}
	return r.ID, nil
}

// GetResult loads a result by ID.
func (s *MongoStore) GetResult(ctx context.Context, id string) (Result, error) {
	start := time.Now()
	var r Result
	err := s.results.FindOne(ctx, bson.M{"_id": id}).Decode(&r)
	observability.Store().OnLoad(ctx, id, time.Since(start), err)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return Result{}, ErrNotFound
	}
	if err != nil {
		return Result{}, fmt.Errorf("find result %s: %w", id, err)
	}
	return r, nil
}

// ListResults returns summaries of the most recent results, newest first.
func (s *MongoStore) ListResults(ctx context.Context, limit int) ([]Summary, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(int64(limit)).
		SetProjection(bson.M{"rows": 0})

	cur, err := s.results.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("list results: %w", err)
	}
	defer cur.Close(ctx)

	var summaries []Summary
	if err := cur.All(ctx, &summaries); err != nil {
		return nil, fmt.Errorf("decode results: %w", err)
	}
	return summaries, nil
}

// DeleteResult removes a result by ID.
func (s *MongoStore) DeleteResult(ctx context.Context, id string) error {
	res, err := s.results.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete result %s: %w", id, err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Close disconnects from MongoDB.
func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// Ensure MongoStore implements Store.
var _ Store = (*MongoStore)(nil)
