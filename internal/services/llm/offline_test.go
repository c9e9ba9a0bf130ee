package llm

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/consilium/internal/interfaces"
)

func TestOfflineService_EmbedDeterministic(t *testing.T) {
	service := NewOfflineService(128, arbor.NewLogger())
	ctx := context.Background()

	first, err := service.Embed(ctx, "혈당 관리를 위한 운동 방법")
	require.NoError(t, err)
	second, err := service.Embed(ctx, "혈당 관리를 위한 운동 방법")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Len(t, first, 128)
}

func TestOfflineService_EmbedUnitNorm(t *testing.T) {
	service := NewOfflineService(128, arbor.NewLogger())

	vector, err := service.Embed(context.Background(), "식단 조절과 혈당")
	require.NoError(t, err)

	var norm float64
	for _, v := range vector {
		norm += float64(v) * float64(v)
	}
	assert.InDelta(t, 1.0, norm, 1e-4)
}

func TestOfflineService_EmbedDistinguishesText(t *testing.T) {
	service := NewOfflineService(128, arbor.NewLogger())
	ctx := context.Background()

	a, err := service.Embed(ctx, "운동은 얼마나 해야 하나요")
	require.NoError(t, err)
	b, err := service.Embed(ctx, "어떤 음식을 피해야 하나요")
	require.NoError(t, err)

	var dot float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
	}
	// Unrelated questions should not be near-identical
	assert.Less(t, math.Abs(dot), 0.95)
}

func TestOfflineService_EmbedEmptyText(t *testing.T) {
	service := NewOfflineService(128, arbor.NewLogger())

	_, err := service.Embed(context.Background(), "")
	assert.Error(t, err)
}

func TestOfflineService_ChatAlwaysErrors(t *testing.T) {
	service := NewOfflineService(128, arbor.NewLogger())

	_, err := service.Chat(context.Background(), []interfaces.Message{
		{Role: "user", Content: "hello"},
	})
	assert.Error(t, err)
}

func TestOfflineService_Mode(t *testing.T) {
	service := NewOfflineService(0, arbor.NewLogger())

	assert.Equal(t, interfaces.LLMModeOffline, service.GetMode())
	assert.NoError(t, service.HealthCheck(context.Background()))
	assert.NoError(t, service.Close())
}

func TestRateLimitedService_PassThroughWhenDisabled(t *testing.T) {
	inner := NewOfflineService(64, arbor.NewLogger())

	wrapped := newRateLimitedService(inner, 0, 0, arbor.NewLogger())

	// Rate of zero disables limiting entirely
	assert.Same(t, inner, wrapped)
}

func TestRateLimitedService_Throttles(t *testing.T) {
	inner := NewOfflineService(64, arbor.NewLogger())
	wrapped := newRateLimitedService(inner, 50, 1, arbor.NewLogger())

	ctx := context.Background()
	start := time.Now()
	for i := 0; i < 3; i++ {
		// Chat errors offline but still consumes a token first
		_, _ = wrapped.Chat(ctx, []interfaces.Message{{Role: "user", Content: "x"}})
	}

	// Two waits at 50/s after the initial burst token
	assert.GreaterOrEqual(t, time.Since(start), 30*time.Millisecond)
}

func TestRetryConfig_Backoff(t *testing.T) {
	cfg := NewDefaultRetryConfig()

	base := cfg.CalculateBackoff(0, 0)
	assert.Equal(t, cfg.InitialBackoff, base)

	grown := cfg.CalculateBackoff(1, 0)
	assert.Greater(t, grown, base)

	capped := cfg.CalculateBackoff(10, 0)
	assert.Equal(t, cfg.MaxBackoff, capped)
}

func TestExtractRetryDelay(t *testing.T) {
	err := assert.AnError
	assert.Equal(t, time.Duration(0), ExtractRetryDelay(err))

	delay := ExtractRetryDelay(errRetryIn45)
	assert.InDelta(t, 45.387, delay.Seconds(), 0.01)
}

var errRetryIn45 = &apiError{msg: "Error 429, Message: quota exceeded. Please retry in 45.387061394s., Status: RESOURCE_EXHAUSTED"}

type apiError struct{ msg string }

func (e *apiError) Error() string { return e.msg }

func TestIsRateLimitError(t *testing.T) {
	assert.True(t, IsRateLimitError(errRetryIn45))
	assert.False(t, IsRateLimitError(nil))
	assert.False(t, IsRateLimitError(assert.AnError))
}
