package retrieval

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/consilium/internal/interfaces"
	"github.com/ternarybob/consilium/internal/models"
)

var keywordSplit = regexp.MustCompile(`[\s,.;:?!]+`)

// GraphRetriever queries the remote knowledge graph backend and falls back
// to a keyword frequency scan over the cached corpus. Like the vector
// retriever it never surfaces errors to callers.
type GraphRetriever struct {
	endpoint string
	client   *http.Client
	index    *ChunkIndex
	logger   arbor.ILogger
}

// NewGraphRetriever creates a graph retriever. An empty endpoint disables
// the remote path entirely.
func NewGraphRetriever(endpoint string, timeout time.Duration, index *ChunkIndex, logger arbor.ILogger) interfaces.Retriever {
	return &GraphRetriever{
		endpoint: endpoint,
		client:   &http.Client{Timeout: timeout},
		index:    index,
		logger:   logger,
	}
}

// Name identifies the retriever in logs and timings
func (r *GraphRetriever) Name() string {
	return "graph"
}

// Retrieve returns up to limit chunks connected to the query's entities
func (r *GraphRetriever) Retrieve(ctx context.Context, query string, limit int) []*models.Chunk {
	if limit <= 0 || strings.TrimSpace(query) == "" {
		return nil
	}

	if r.endpoint != "" {
		chunks, err := r.retrieveRemote(ctx, query, limit)
		if err != nil {
			r.logger.Warn().
				Err(err).
				Str("endpoint", r.endpoint).
				Msg("Graph backend failed, falling back to keyword scan")
		} else if len(chunks) > 0 {
			return annotate(chunks, "graph")
		}
	}

	return r.retrieveFromCache(query, limit)
}

type graphSearchResponse struct {
	Chunks []*models.Chunk `json:"chunks"`
}

func (r *GraphRetriever) retrieveRemote(ctx context.Context, query string, limit int) ([]*models.Chunk, error) {
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
		return nil, fmt.Errorf("graph backend request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("graph backend returned status %d", resp.StatusCode)
	}

	var result graphSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode graph backend response: %w", err)
	}

	// Dedupe by chunk ID, first occurrence wins
	seen := make(map[string]bool, len(result.Chunks))
	deduped := make([]*models.Chunk, 0, len(result.Chunks))
	for _, chunk := range result.Chunks {
		if chunk.ChunkID == "" || seen[chunk.ChunkID] {
			continue
		}
		seen[chunk.ChunkID] = true
		deduped = append(deduped, chunk)
		if len(deduped) >= limit {
			break
		}
	}
	return deduped, nil
}

// retrieveFromCache counts keyword occurrences across the corpus and
// returns the highest scoring chunks.
func (r *GraphRetriever) retrieveFromCache(query string, limit int) []*models.Chunk {
	keywords := extractKeywords(query)
	if len(keywords) == 0 {
		return nil
	}

	type scored struct {
		chunk *models.Chunk
		score int
	}
	var candidates []scored
	for _, chunk := range r.index.Chunks() {
		lowered := strings.ToLower(chunk.Text)
		score := 0
		for _, keyword := range keywords {
			score += strings.Count(lowered, strings.ToLower(keyword))
		}
		if score > 0 {
			candidates = append(candidates, scored{chunk: chunk, score: score})
		}
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
		copied.Score = float64(candidate.score)
		copied.Metadata["retrieval"] = "keyword"
		results = append(results, copied)
	}
	return results
}

// extractKeywords keeps tokens longer than one rune
func extractKeywords(text string) []string {
	tokens := keywordSplit.Split(text, -1)
	keywords := make([]string, 0, len(tokens))
	for _, token := range tokens {
		token = strings.TrimSpace(token)
		if len([]rune(token)) > 1 {
			keywords = append(keywords, token)
		}
	}
	return keywords
}
