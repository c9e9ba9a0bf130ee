package interfaces

import (
	"context"

	"github.com/ternarybob/consilium/internal/models"
)

// ChunkStorage persists the knowledge chunks loaded from the ingestion
// collaborator's NDJSON stream
type ChunkStorage interface {
	// Put stores or replaces a chunk by its chunk ID
	Put(ctx context.Context, chunk *models.Chunk) error

	// PutBatch stores a batch of chunks
	PutBatch(ctx context.Context, chunks []*models.Chunk) error

	// Get retrieves a chunk by ID
	Get(ctx context.Context, chunkID string) (*models.Chunk, error)

	// List returns all stored chunks
	List(ctx context.Context) ([]*models.Chunk, error)

	// Count returns the number of stored chunks
	Count(ctx context.Context) (int, error)
}

// FAQStorage persists FAQ cache entries
type FAQStorage interface {
	// Put stores or replaces an entry keyed by its question
	Put(ctx context.Context, entry *models.FAQEntry) error

	// Delete removes an entry by question
	Delete(ctx context.Context, question string) error

	// List returns all stored entries
	List(ctx context.Context) ([]*models.FAQEntry, error)
}

// StorageManager provides access to all storage implementations
type StorageManager interface {
	ChunkStorage() ChunkStorage
	FAQStorage() FAQStorage
	Close() error
}
