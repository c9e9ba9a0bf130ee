package interfaces

import (
	"context"
)

// EmbeddingService generates vector embeddings for chunks and queries.
// Implementations must be deterministic for identical inputs within a
// process so similarity comparisons stay stable.
type EmbeddingService interface {
	// Generate embedding for raw text
	GenerateEmbedding(ctx context.Context, text string) ([]float32, error)

	// Generate query embedding (may have different handling than document text)
	GenerateQueryEmbedding(ctx context.Context, query string) ([]float32, error)

	// Get model information
	ModelName() string
	Dimension() int

	// Check if a real embedding backbone is available. When false, consumers
	// such as the FAQ cache switch to lexical matching.
	IsAvailable(ctx context.Context) bool
}
