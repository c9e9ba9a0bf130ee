// Package retrieval implements the vector and graph retrievers. Each
// retriever prefers its remote backend and silently falls back to a local
// scan over the cached chunk corpus, so a query always gets an answerable
// evidence set even with every external service down.
package retrieval

import (
	"context"
	"math"
	"sort"
	"sync"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/consilium/internal/interfaces"
	"github.com/ternarybob/consilium/internal/models"
)

// ChunkIndex is the in-memory corpus shared by the local fallback paths.
// Chunks are loaded once at startup; embeddings are computed lazily the
// first time the cosine fallback needs them.
type ChunkIndex struct {
	mu         sync.RWMutex
	chunks     []*models.Chunk
	byID       map[string]*models.Chunk
	embeddings map[string][]float32
	embedder   interfaces.EmbeddingService
	logger     arbor.ILogger
}

// NewChunkIndex builds an index over the given corpus
func NewChunkIndex(chunks []*models.Chunk, embedder interfaces.EmbeddingService, logger arbor.ILogger) *ChunkIndex {
	byID := make(map[string]*models.Chunk, len(chunks))
	for _, chunk := range chunks {
		byID[chunk.ChunkID] = chunk
	}
	return &ChunkIndex{
		chunks:     chunks,
		byID:       byID,
		embeddings: make(map[string][]float32, len(chunks)),
		embedder:   embedder,
		logger:     logger,
	}
}

// Chunks returns the corpus snapshot
func (idx *ChunkIndex) Chunks() []*models.Chunk {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return idx.chunks
}

// Lookup returns the cached chunk for an ID, or nil
func (idx *ChunkIndex) Lookup(chunkID string) *models.Chunk {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return idx.byID[chunkID]
}

// Size returns the number of indexed chunks
func (idx *ChunkIndex) Size() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return len(idx.chunks)
}

// SearchCosine ranks the corpus by cosine similarity against the query
// embedding and returns up to limit annotated copies.
func (idx *ChunkIndex) SearchCosine(ctx context.Context, query string, limit int) ([]*models.Chunk, error) {
	queryVec, err := idx.embedder.GenerateQueryEmbedding(ctx, query)
	if err != nil {
		return nil, err
	}

	if err := idx.ensureEmbeddings(ctx); err != nil {
		return nil, err
	}

	idx.mu.RLock()
	defer idx.mu.RUnlock()

	type scored struct {
		chunk *models.Chunk
		score float64
	}
	candidates := make([]scored, 0, len(idx.chunks))
	for _, chunk := range idx.chunks {
		vec := idx.embeddings[chunk.ChunkID]
		if len(vec) == 0 {
			continue
		}
		score := cosine(queryVec, vec)
		if score <= 0 {
			continue
		}
		candidates = append(candidates, scored{chunk: chunk, score: score})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].score > candidates[j].score
	})

	if limit > len(candidates) {
		limit = len(candidates)
	}
	results := make([]*models.Chunk, 0, limit)
	for _, candidate := range candidates[:limit] {
		copied := candidate.chunk.Copy()
		copied.Score = candidate.score
		results = append(results, copied)
	}
	return results, nil
}

// ensureEmbeddings fills the embedding cache for chunks that have none.
// Chunks shipped with a precomputed embedding keep theirs.
func (idx *ChunkIndex) ensureEmbeddings(ctx context.Context) error {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	for _, chunk := range idx.chunks {
		if len(idx.embeddings[chunk.ChunkID]) > 0 {
			continue
		}
		if len(chunk.Embedding) > 0 {
			idx.embeddings[chunk.ChunkID] = chunk.Embedding
			continue
		}
		vec, err := idx.embedder.GenerateEmbedding(ctx, chunk.Text)
		if err != nil {
			return err
		}
		idx.embeddings[chunk.ChunkID] = vec
	}
	return nil
}

func cosine(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
