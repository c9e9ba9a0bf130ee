package llm

import (
	"context"
	"fmt"
	"hash/fnv"
	"math"
	"strings"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/consilium/internal/interfaces"
)

// OfflineService is the provider used when no cloud LLM is configured. It
// has no completion backend: Chat always errors so call sites take their
// deterministic fallbacks. Embed produces a local hashed bag-of-tokens
// vector, which keeps cosine ranking and the semantic FAQ cache functional
// without network access.
type OfflineService struct {
	dimension int
	logger    arbor.ILogger
}

// NewOfflineService creates the deterministic offline provider
func NewOfflineService(dimension int, logger arbor.ILogger) *OfflineService {
	if dimension <= 0 {
		dimension = 768
	}
	logger.Info().
		Int("dimension", dimension).
		Msg("Offline LLM service initialized, completions disabled")
	return &OfflineService{dimension: dimension, logger: logger}
}

// Embed generates a deterministic unit-length embedding by hashing token
// trigrams into fixed buckets. Identical text always yields an identical
// vector, so similarity comparisons remain stable across restarts.
func (s *OfflineService) Embed(ctx context.Context, text string) ([]float32, error) {
	if text == "" {
		return nil, fmt.Errorf("text cannot be empty for embedding generation")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	vector := make([]float32, s.dimension)
	for _, token := range tokenize(text) {
		for _, gram := range trigrams(token) {
			h := fnv.New32a()
			h.Write([]byte(gram))
			bucket := int(h.Sum32()) % s.dimension
			if bucket < 0 {
				bucket += s.dimension
			}
			// Alternate sign by hash parity to spread mass around zero
			if h.Sum32()&1 == 0 {
				vector[bucket]++
			} else {
				vector[bucket]--
			}
		}
	}

	var norm float64
	for _, v := range vector {
		norm += float64(v) * float64(v)
	}
	if norm == 0 {
		return vector, nil
	}
	scale := float32(1 / math.Sqrt(norm))
	for i := range vector {
		vector[i] *= scale
	}

	return vector, nil
}

// Chat always fails: there is no offline completion backend. Callers
// degrade to heuristic rewriting, splitting, or canned guidance.
func (s *OfflineService) Chat(ctx context.Context, messages []interfaces.Message) (string, error) {
	return "", fmt.Errorf("offline provider has no completion backend")
}

// HealthCheck always passes; the embedder has no external dependencies
func (s *OfflineService) HealthCheck(ctx context.Context) error {
	return nil
}

// GetMode returns the operational mode of the LLM service
func (s *OfflineService) GetMode() interfaces.LLMMode {
	return interfaces.LLMModeOffline
}

// Close releases resources and performs cleanup operations
func (s *OfflineService) Close() error {
	return nil
}

func tokenize(text string) []string {
	return strings.Fields(strings.ToLower(text))
}

// trigrams returns rune trigrams of the token, or the whole token when it
// is shorter than three runes. Korean text rarely splits on spaces cleanly,
// so sub-token grams carry most of the signal.
func trigrams(token string) []string {
	runes := []rune(token)
	if len(runes) <= 3 {
		return []string{token}
	}
	grams := make([]string, 0, len(runes)-2)
	for i := 0; i+3 <= len(runes); i++ {
		grams = append(grams, string(runes[i:i+3]))
	}
	return grams
}
