// Package faqcache serves answers for frequently asked questions by
// semantic similarity, backed by Badger for persistence.
package faqcache

import (
	"context"
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/consilium/internal/interfaces"
	"github.com/ternarybob/consilium/internal/models"
)

// Cache matches incoming questions against cached entries. The in-memory
// index (entries plus question embeddings) is rebuilt from storage after
// every mutation and swapped in atomically, so readers never see a
// half-updated index.
type Cache struct {
	storage    interfaces.FAQStorage
	embedder   interfaces.EmbeddingService
	threshold  float64
	defaultTTL int
	logger     arbor.ILogger

	mu      sync.RWMutex
	entries []*models.FAQEntry
	vectors [][]float32
}

// NewCache loads the persisted entries and builds the similarity index
func NewCache(ctx context.Context, storage interfaces.FAQStorage, embedder interfaces.EmbeddingService, threshold float64, defaultTTLDays int, logger arbor.ILogger) (*Cache, error) {
	cache := &Cache{
		storage:    storage,
		embedder:   embedder,
		threshold:  threshold,
		defaultTTL: defaultTTLDays,
		logger:     logger,
	}
	if err := cache.rebuild(ctx); err != nil {
		return nil, err
	}
	logger.Info().
		Int("entries", cache.Size()).
		Float64("threshold", threshold).
		Msg("FAQ cache initialized")
	return cache, nil
}

// rebuild reloads entries from storage, embeds their questions, and swaps
// the new index in under the write lock.
func (c *Cache) rebuild(ctx context.Context) error {
	stored, err := c.storage.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to load FAQ entries: %w", err)
	}

	vectors := make([][]float32, len(stored))
	if c.embedder.IsAvailable(ctx) {
		for i, entry := range stored {
			vec, err := c.embedder.GenerateEmbedding(ctx, entry.Question)
			if err != nil {
				c.logger.Warn().
					Err(err).
					Str("question", entry.Question).
					Msg("Failed to embed FAQ question, word overlap matching only")
				vec = nil
			}
			vectors[i] = vec
		}
	} else if len(stored) > 0 {
		c.logger.Warn().
			Int("entries", len(stored)).
			Msg("Embedding service unavailable, FAQ cache falls back to word overlap matching")
	}

	c.mu.Lock()
	c.entries = stored
	c.vectors = vectors
	c.mu.Unlock()
	return nil
}

// Get returns the cached answer for the closest matching question when the
// similarity clears the threshold and the entry has not expired. Expired
// matches are evicted lazily and miss.
func (c *Cache) Get(ctx context.Context, question string) (string, bool) {
	c.mu.RLock()
	entries := c.entries
	vectors := c.vectors
	c.mu.RUnlock()

	if len(entries) == 0 {
		return "", false
	}

	var queryVec []float32
	if c.embedder.IsAvailable(ctx) {
		if vec, err := c.embedder.GenerateQueryEmbedding(ctx, question); err == nil {
			queryVec = vec
		}
	}

	bestIdx := -1
	bestScore := 0.0
	for i, entry := range entries {
		var score float64
		if queryVec != nil && vectors[i] != nil {
			score = cosine(queryVec, vectors[i])
		} else {
			score = jaccard(question, entry.Question)
		}
		if score > bestScore {
			bestScore = score
			bestIdx = i
		}
	}

	if bestIdx < 0 || bestScore < c.threshold {
		return "", false
	}

	matched := entries[bestIdx]
	if matched.Expired(time.Now()) {
		c.logger.Info().
			Str("question", matched.Question).
			Msg("FAQ entry expired, evicting")
		if err := c.storage.Delete(ctx, matched.Question); err != nil {
			c.logger.Warn().Err(err).Msg("Failed to delete expired FAQ entry")
		}
		if err := c.rebuild(ctx); err != nil {
			c.logger.Warn().Err(err).Msg("Failed to rebuild FAQ index after eviction")
		}
		return "", false
	}

	c.logger.Info().
		Str("matched", matched.Question).
		Float64("similarity", bestScore).
		Msg("FAQ cache hit")
	return matched.Answer, true
}

// Set stores or replaces an entry and rebuilds the index. A non-positive
// TTL uses the configured default.
func (c *Cache) Set(ctx context.Context, question, answer string, ttlDays int) error {
	if ttlDays <= 0 {
		ttlDays = c.defaultTTL
	}
	entry := &models.FAQEntry{
		Question: question,
		Answer:   answer,
		CachedAt: time.Now(),
		TTLDays:  ttlDays,
	}
	if err := c.storage.Put(ctx, entry); err != nil {
		return err
	}
	return c.rebuild(ctx)
}

// ClearExpired removes every expired entry and returns how many were evicted
func (c *Cache) ClearExpired(ctx context.Context) (int, error) {
	stored, err := c.storage.List(ctx)
	if err != nil {
		return 0, err
	}

	now := time.Now()
	removed := 0
	for _, entry := range stored {
		if !entry.Expired(now) {
			continue
		}
		if err := c.storage.Delete(ctx, entry.Question); err != nil {
			return removed, err
		}
		removed++
	}
	if removed > 0 {
		if err := c.rebuild(ctx); err != nil {
			return removed, err
		}
		c.logger.Info().Int("removed", removed).Msg("Cleared expired FAQ entries")
	}
	return removed, nil
}

// Size returns the number of indexed entries
func (c *Cache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
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

// jaccard computes word overlap similarity between two questions
func jaccard(a, b string) float64 {
	aWords := wordSet(a)
	bWords := wordSet(b)
	if len(aWords) == 0 || len(bWords) == 0 {
		return 0
	}
	intersection := 0
	for word := range aWords {
		if bWords[word] {
			intersection++
		}
	}
	union := len(aWords) + len(bWords) - intersection
	return float64(intersection) / float64(union)
}

func wordSet(text string) map[string]bool {
	set := make(map[string]bool)
	for _, word := range strings.Fields(strings.ToLower(strings.TrimSpace(text))) {
		set[word] = true
	}
	return set
}
