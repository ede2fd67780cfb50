// Package storage persists rendered diagrams.
//
// The [Store] interface has three implementations:
//   - [MemoryStore]: in-process, for development and tests
//   - [FileStore]: one JSON file per diagram, for the CLI
//   - [MongoStore]: a MongoDB collection, for servers
//
// # Usage
//
//	store, err := storage.NewMongoStore(ctx, storage.MongoConfig{URI: uri})
//	if err != nil {
//	    return err
//	}
//	defer store.Close()
//
//	entry := storage.NewEntry(doc.Title, data, compressed)
//	if err := store.Save(ctx, entry); err != nil {
//	    return err
//	}
//
// Lookups of unknown ids fail with a NOT_FOUND error from pkg/errors.
package storage

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/archdraw/pkg/errors"
)

// DefaultListLimit caps List when the caller passes a non-positive limit.
const DefaultListLimit = 50

// Entry is a stored diagram: the encoded document plus the record set it
// was rendered from, when known.
type Entry struct {
	ID         string          `json:"id" bson:"_id"`
	Title      string          `json:"title" bson:"title"`
	Compressed bool            `json:"compressed" bson:"compressed"`
	Cells      int             `json:"cells" bson:"cells"`
	Document   []byte          `json:"document" bson:"document"`
	Records    json.RawMessage `json:"records,omitempty" bson:"records,omitempty"`
	CreatedAt  time.Time       `json:"created_at" bson:"created_at"`
}

// Summary is the listing view of an entry.
type Summary struct {
	ID        string    `json:"id" bson:"_id"`
	Title     string    `json:"title" bson:"title"`
	Cells     int       `json:"cells" bson:"cells"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
}

// NewEntry creates an entry with a fresh id.
func NewEntry(title string, document []byte, compressed bool) *Entry {
	return &Entry{
		ID:         uuid.NewString(),
		Title:      title,
		Compressed: compressed,
		Document:   document,
		CreatedAt:  time.Now().UTC(),
	}
}

// Summary returns the listing view of e.
func (e *Entry) Summary() Summary {
	return Summary{ID: e.ID, Title: e.Title, Cells: e.Cells, CreatedAt: e.CreatedAt}
}

// Store is the interface for diagram storage backends.
type Store interface {
	// Save inserts or replaces an entry. An empty ID is assigned a new one.
	Save(ctx context.Context, e *Entry) error

	// Get retrieves an entry by id.
	Get(ctx context.Context, id string) (*Entry, error)

	// List returns up to limit summaries, newest first.
	List(ctx context.Context, limit int) ([]Summary, error)

	// Delete removes an entry by id.
	Delete(ctx context.Context, id string) error

	// Close releases backend resources.
	Close() error
}

func prepare(e *Entry) error {
	if e == nil {
		return errors.New(errors.ErrCodeInvalidInput, "entry is nil")
	}
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	return errors.ValidateID(e.ID)
}

func notFound(id string) error {
	return errors.New(errors.ErrCodeNotFound, "diagram %s not found", id)
}

func limitOr(limit int) int {
	if limit <= 0 {
		return DefaultListLimit
	}
	return limit
}
