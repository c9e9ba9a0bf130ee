// Package embeddings wraps the configured LLM provider behind the
// EmbeddingService interface and guarantees an embedding is always produced:
// when the provider cannot embed, the local encoder takes over.
package embeddings

import (
	"context"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/consilium/internal/interfaces"
	"github.com/ternarybob/consilium/internal/services/llm"
)

// Service implements EmbeddingService interface
type Service struct {
	llmService interfaces.LLMService
	local      interfaces.LLMService
	dimension  int
	logger     arbor.ILogger
}

// NewService creates a new embedding service. The local encoder is used
// whenever the configured provider fails or does not support embeddings,
// so retrieval and the FAQ cache keep working without network access.
func NewService(llmService interfaces.LLMService, dimension int, logger arbor.ILogger) interfaces.EmbeddingService {
	return &Service{
		llmService: llmService,
		local:      llm.NewOfflineService(dimension, logger),
		dimension:  dimension,
		logger:     logger,
	}
}

// GenerateEmbedding creates a vector embedding for text
func (s *Service) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	if text == "" {
		return nil, fmt.Errorf("text cannot be empty")
	}

	start := time.Now()
	embedding, err := s.llmService.Embed(ctx, text)
	if err != nil || len(embedding) == 0 {
		if err != nil && s.llmService.GetMode() == interfaces.LLMModeCloud {
			s.logger.Warn().
				Err(err).
				Msg("Provider embedding failed, using local encoder")
		}
		embedding, err = s.local.Embed(ctx, text)
		if err != nil {
			return nil, fmt.Errorf("failed to generate embedding: %w", err)
		}
	}

	s.logger.Debug().
		Int("embedding_dim", len(embedding)).
		Dur("duration", time.Since(start)).
		Msg("Generated embedding")

	return embedding, nil
}

// GenerateQueryEmbedding generates embedding for a search query
func (s *Service) GenerateQueryEmbedding(ctx context.Context, query string) ([]float32, error) {
	return s.GenerateEmbedding(ctx, query)
}

// ModelName returns the active provider mode
func (s *Service) ModelName() string {
	return string(s.llmService.GetMode())
}

// Dimension returns the embedding dimension
func (s *Service) Dimension() int {
	return s.dimension
}

// IsAvailable checks if the embedding service is available. The local
// encoder always works, so this reports true unless nothing is wired.
func (s *Service) IsAvailable(ctx context.Context) bool {
	return s.llmService != nil || s.local != nil
}
