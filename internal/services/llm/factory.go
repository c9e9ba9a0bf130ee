// Package llm provides chat completion and embedding providers behind the
// LLMService interface. A provider is selected from configuration; when no
// cloud provider is configured the deterministic offline service is used and
// every call site degrades to its heuristic fallback.
package llm

import (
	"fmt"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/consilium/internal/common"
	"github.com/ternarybob/consilium/internal/interfaces"
)

// NewLLMService creates the LLM service implementation for the configured
// provider, wrapped with the shared completion rate limiter.
func NewLLMService(cfg *common.Config, logger arbor.ILogger) (interfaces.LLMService, error) {
	logger.Info().Str("provider", cfg.LLM.Provider).Msg("Initializing LLM service")

	var (
		service interfaces.LLMService
		err     error
	)
	switch cfg.LLM.Provider {
	case "claude":
		service, err = NewClaudeService(&cfg.Claude, logger)
	case "gemini":
		service, err = NewGeminiService(&cfg.Gemini, logger)
	case "offline":
		service = NewOfflineService(cfg.Gemini.EmbedDimension, logger)
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.LLM.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create %s LLM service: %w", cfg.LLM.Provider, err)
	}

	return newRateLimitedService(service, cfg.LLM.RatePerSecond, cfg.LLM.Burst, logger), nil
}
