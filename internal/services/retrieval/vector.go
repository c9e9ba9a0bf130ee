package retrieval

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/consilium/internal/interfaces"
	"github.com/ternarybob/consilium/internal/models"
)

// VectorRetriever searches the remote vector backend and falls back to a
// local cosine scan over the cached corpus. Retrieve never returns an
// error: a failed backend yields the fallback results, a failed fallback
// yields an empty slice.
type VectorRetriever struct {
	endpoint string
	client   *http.Client
	index    *ChunkIndex
	logger   arbor.ILogger
}

// NewVectorRetriever creates a vector retriever. An empty endpoint disables
// the remote path entirely.
func NewVectorRetriever(endpoint string, timeout time.Duration, index *ChunkIndex, logger arbor.ILogger) interfaces.Retriever {
	return &VectorRetriever{
		endpoint: endpoint,
		client:   &http.Client{Timeout: timeout},
		index:    index,
		logger:   logger,
	}
}

// Name identifies the retriever in logs and timings
func (r *VectorRetriever) Name() string {
	return "vector"
}

// Retrieve returns up to limit chunks ranked by semantic similarity
func (r *VectorRetriever) Retrieve(ctx context.Context, query string, limit int) []*models.Chunk {
	if limit <= 0 || strings.TrimSpace(query) == "" {
		return nil
	}

	if r.endpoint != "" {
		chunks, err := r.retrieveRemote(ctx, query, limit)
		if err != nil {
			r.logger.Warn().
				Err(err).
				Str("endpoint", r.endpoint).
				Msg("Vector backend failed, falling back to local cosine scan")
		} else if len(chunks) > 0 {
			return annotate(chunks, "vector")
		}
	}

	chunks, err := r.index.SearchCosine(ctx, query, limit)
	if err != nil {
		r.logger.Warn().Err(err).Msg("Local cosine fallback failed")
		return nil
	}
	return annotate(chunks, "vector_local")
}

type searchRequest struct {
	Query string `json:"query"`
	Limit int    `json:"limit"`
}

type searchResponse struct {
	Chunks []*models.Chunk `json:"chunks"`
}

func (r *VectorRetriever) retrieveRemote(ctx context.Context, query string, limit int) ([]*models.Chunk, error) {
	payload, err := json.Marshal(searchRequest{Query: query, Limit: limit})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal search request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", r.endpoint, bytes.NewBuffer(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create search request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("vector backend request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("vector backend returned status %d", resp.StatusCode)
	}

	var result searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode vector backend response: %w", err)
	}

	if len(result.Chunks) > limit {
		result.Chunks = result.Chunks[:limit]
	}
	return result.Chunks, nil
}

// annotate tags result copies with their retrieval source. Remote results
// are already fresh instances; cached ones were copied by the index.
func annotate(chunks []*models.Chunk, source string) []*models.Chunk {
	for _, chunk := range chunks {
		if chunk.Metadata == nil {
			chunk.Metadata = make(map[string]string, 1)
		}
		if _, ok := chunk.Metadata["retrieval"]; !ok {
			chunk.Metadata["retrieval"] = source
		}
	}
	return chunks
}
