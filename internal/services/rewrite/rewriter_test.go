package rewrite

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/consilium/internal/interfaces"
	"github.com/ternarybob/consilium/internal/models"
	"github.com/ternarybob/consilium/internal/services/llm"
)

// scriptedLLM returns a fixed completion for every chat call
type scriptedLLM struct {
	*llm.OfflineService
	response string
}

func (s *scriptedLLM) Chat(ctx context.Context, messages []interfaces.Message) (string, error) {
	return s.response, nil
}

func newScriptedLLM(response string) *scriptedLLM {
	return &scriptedLLM{
		OfflineService: llm.NewOfflineService(64, arbor.NewLogger()),
		response:       response,
	}
}

func TestRewriter_VectorStrategySkipsLLM(t *testing.T) {
	rewriter := NewRewriter(newScriptedLLM("이 출력은 사용되면 안 됩니다"), arbor.NewLogger())

	result := rewriter.Rewrite(context.Background(), "  운동은 얼마나 해야 하나요?  ",
		models.Strategy{Name: models.StrategyVector, VectorK: 3})

	assert.Equal(t, "운동은 얼마나 해야 하나요?", result)
}

func TestRewriter_UsesLLMOutput(t *testing.T) {
	rewriter := NewRewriter(newScriptedLLM("운동 빈도 혈당 관리"), arbor.NewLogger())

	result := rewriter.Rewrite(context.Background(), "운동과 혈당의 관계가 궁금해요",
		models.Strategy{Name: models.StrategyGraph, GraphK: 5})

	assert.Equal(t, "운동 빈도 혈당 관리", result)
}

func TestRewriter_LLMFailurePassesThrough(t *testing.T) {
	// Offline service has no completion backend
	rewriter := NewRewriter(llm.NewOfflineService(64, arbor.NewLogger()), arbor.NewLogger())

	result := rewriter.Rewrite(context.Background(), "운동과 혈당의 관계?",
		models.Strategy{Name: models.StrategyGraph, GraphK: 5})

	assert.Equal(t, "운동과 혈당의 관계?", result)
}

func TestRewriter_DegenerateOutputRejected(t *testing.T) {
	tests := []struct {
		name     string
		response string
	}{
		{name: "empty output", response: "   "},
		{name: "prompt echo marker", response: "정제된 질문: 운동 방법"},
		{name: "instruction echo", response: "검색에 유리하게 정제했습니다"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rewriter := NewRewriter(newScriptedLLM(tt.response), arbor.NewLogger())

			result := rewriter.Rewrite(context.Background(), "원래 질문",
				models.Strategy{Name: models.StrategyDecompose, SubLimit: 5})

			assert.Equal(t, "원래 질문", result)
		})
	}
}
