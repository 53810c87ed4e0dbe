// Package storage persists generated grid documents by ID.
//
// Two backends implement [Store]: [FileStore] keeps one JSON file per
// document in a directory, [MongoStore] keeps one MongoDB document per grid
// using the bson tags of [graph.Document].
package storage

import (
	"context"
	"errors"

	"github.com/matzehuels/gridder/pkg/graph"
)

// ErrNotFound is returned when no document has the requested ID.
var ErrNotFound = errors.New("grid not found")

// Store persists grid documents. Implementations are safe for concurrent use.
type Store interface {
	// Save inserts or replaces d. d.ID must be set.
	Save(ctx context.Context, d graph.Document) error
	// Load returns the document with the given ID or ErrNotFound.
	Load(ctx context.Context, id string) (graph.Document, error)
	// Delete removes a document. Deleting an unknown ID returns ErrNotFound.
	Delete(ctx context.Context, id string) error
	// List returns all stored IDs in ascending order.
	List(ctx context.Context) ([]string, error)
	Close() error
}
