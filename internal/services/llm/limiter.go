package llm

import (
	"context"

	"github.com/ternarybob/arbor"
	"golang.org/x/time/rate"

	"github.com/ternarybob/consilium/internal/interfaces"
)

// rateLimitedService throttles chat completions with a token bucket so a
// burst of concurrent sub-questions cannot exhaust the provider quota.
// Embeddings are not throttled; they are cheap relative to completions.
type rateLimitedService struct {
	inner   interfaces.LLMService
	limiter *rate.Limiter
	logger  arbor.ILogger
}

func newRateLimitedService(inner interfaces.LLMService, perSecond float64, burst int, logger arbor.ILogger) interfaces.LLMService {
	if perSecond <= 0 {
		return inner
	}
	if burst <= 0 {
		burst = 1
	}
	logger.Debug().
		Float64("rate_per_second", perSecond).
		Int("burst", burst).
		Msg("Completion rate limiting enabled")
	return &rateLimitedService{
		inner:   inner,
		limiter: rate.NewLimiter(rate.Limit(perSecond), burst),
		logger:  logger,
	}
}

func (s *rateLimitedService) Embed(ctx context.Context, text string) ([]float32, error) {
	return s.inner.Embed(ctx, text)
}

func (s *rateLimitedService) Chat(ctx context.Context, messages []interfaces.Message) (string, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return "", err
	}
	return s.inner.Chat(ctx, messages)
}

func (s *rateLimitedService) HealthCheck(ctx context.Context) error {
	return s.inner.HealthCheck(ctx)
}

func (s *rateLimitedService) GetMode() interfaces.LLMMode {
	return s.inner.GetMode()
}

func (s *rateLimitedService) Close() error {
	return s.inner.Close()
}
