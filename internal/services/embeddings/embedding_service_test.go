package embeddings

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/consilium/internal/interfaces"
	"github.com/ternarybob/consilium/internal/services/llm"
)

// failingEmbedder simulates a cloud provider whose embedding path is down
type failingEmbedder struct {
	*llm.OfflineService
}

func (f *failingEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	return nil, assert.AnError
}

func (f *failingEmbedder) GetMode() interfaces.LLMMode {
	return interfaces.LLMModeCloud
}

func TestService_GenerateEmbedding(t *testing.T) {
	logger := arbor.NewLogger()
	service := NewService(llm.NewOfflineService(128, logger), 128, logger)

	embedding, err := service.GenerateEmbedding(context.Background(), "운동과 혈당 관리")
	require.NoError(t, err)
	assert.Len(t, embedding, 128)
}

func TestService_GenerateEmbedding_EmptyText(t *testing.T) {
	logger := arbor.NewLogger()
	service := NewService(llm.NewOfflineService(128, logger), 128, logger)

	_, err := service.GenerateEmbedding(context.Background(), "")
	assert.Error(t, err)
}

func TestService_FallsBackToLocalEncoder(t *testing.T) {
	logger := arbor.NewLogger()
	provider := &failingEmbedder{OfflineService: llm.NewOfflineService(128, logger)}
	service := NewService(provider, 128, logger)

	embedding, err := service.GenerateEmbedding(context.Background(), "식단 관리 질문")
	require.NoError(t, err)
	assert.Len(t, embedding, 128)
}

func TestService_QueryEmbeddingMatchesText(t *testing.T) {
	logger := arbor.NewLogger()
	service := NewService(llm.NewOfflineService(64, logger), 64, logger)
	ctx := context.Background()

	fromText, err := service.GenerateEmbedding(ctx, "혈당 스파이크")
	require.NoError(t, err)
	fromQuery, err := service.GenerateQueryEmbedding(ctx, "혈당 스파이크")
	require.NoError(t, err)

	assert.Equal(t, fromText, fromQuery)
}

func TestService_Metadata(t *testing.T) {
	logger := arbor.NewLogger()
	service := NewService(llm.NewOfflineService(256, logger), 256, logger)

	assert.Equal(t, 256, service.Dimension())
	assert.Equal(t, string(interfaces.LLMModeOffline), service.ModelName())
	assert.True(t, service.IsAvailable(context.Background()))
}
