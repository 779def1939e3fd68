// Package store persists flattened network tables so that results can be
// listed, re-exported, and served over the API without re-running the
// flatten pipeline.
//
// The canonical backend is MongoDB ([NewMongoStore]); [MemoryStore] provides
// the same contract in-process for tests and for CLI runs without a
// configured store.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/epitools/tracetab/pkg/network"
)

// ErrNotFound is returned by [Store.GetResult] and [Store.DeleteResult]
// when no result with the given ID exists.
var ErrNotFound = errors.New("result not found")

// Result is a persisted flatten result.
type Result struct {
	ID        string        `bson:"_id" json:"id"`
	Label     string        `bson:"label,omitempty" json:"label,omitempty"`
	InputHash string        `bson:"input_hash" json:"input_hash"`
	CreatedAt time.Time     `bson:"created_at" json:"created_at"`
	RowCount  int           `bson:"row_count" json:"row_count"`
	Rows      network.Table `bson:"rows" json:"rows"`
}

// Summary is the listing view of a result, without the rows.
type Summary struct {
	ID        string    `bson:"_id" json:"id"`
	Label     string    `bson:"label,omitempty" json:"label,omitempty"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	RowCount  int       `bson:"row_count" json:"row_count"`
}

// Store persists flatten results.
type Store interface {
	// SaveResult stores a result and returns its ID. A missing ID is
	// assigned; CreatedAt and RowCount are filled in from the result.
	SaveResult(ctx context.Context, r Result) (string, error)

	// GetResult loads a result by ID. Returns ErrNotFound if absent.
	GetResult(ctx context.Context, id string) (Result, error)

	// ListResults returns summaries of the most recent results, newest
	// first, up to limit (0 means a backend-chosen default).
	ListResults(ctx context.Context, limit int) ([]Summary, error)

	// DeleteResult removes a result by ID. Returns ErrNotFound if absent.
	DeleteResult(ctx context.Context, id string) error

	// Close releases backend resources.
	Close(ctx context.Context) error
}
