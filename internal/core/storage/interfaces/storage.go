package interfaces

import (
	"context"
	"errors"
	"time"

	"github.com/salinityengine/salinity/internal/core/document"
)

var ErrNotFound = errors.New("storage: document not found")

// Entry describes a stored document without loading it.
type Entry struct {
	Key         string
	Name        string
	Fingerprint uint64
	Size        int
	UpdatedAt   time.Time
}

// Storage persists project documents by key.
type Storage interface {
	// Put stores doc under key. It reports false when the stored document
	// already had the same fingerprint and nothing was written.
	Put(ctx context.Context, key string, doc document.Document) (bool, error)
	Get(ctx context.Context, key string) (document.Document, error)
	Stat(ctx context.Context, key string) (Entry, error)
	List(ctx context.Context) ([]Entry, error)
	Delete(ctx context.Context, key string) error

	Close() error
}
