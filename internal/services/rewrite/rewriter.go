// Package rewrite refines counselor questions into retrieval-friendly form
// before they hit the search backends.
package rewrite

import (
	"context"
	"strings"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/consilium/internal/interfaces"
	"github.com/ternarybob/consilium/internal/models"
)

const rewritePrompt = "아래 상담 질문을 검색에 유리하게 1문장으로 정제해 주세요." +
	"\n- 핵심 키워드를 유지하고, 불필요한 감탄/수식어는 제거합니다." +
	"\n- 운동/식단/생활습관과 관련된 세부 용어는 유지합니다." +
	"\n질문: "

// Rewriter refines questions with the LLM. Vector strategy skips rewriting
// entirely, and any LLM failure or degenerate output passes the original
// question through unchanged.
type Rewriter struct {
	llmService interfaces.LLMService
	logger     arbor.ILogger
}

func NewRewriter(llmService interfaces.LLMService, logger arbor.ILogger) *Rewriter {
	return &Rewriter{llmService: llmService, logger: logger}
}

// Rewrite returns the retrieval-friendly form of the question
func (r *Rewriter) Rewrite(ctx context.Context, question string, strategy models.Strategy) string {
	normalized := strings.TrimSpace(question)
	if strategy.Name == models.StrategyVector {
		return normalized
	}

	response, err := r.llmService.Chat(ctx, []interfaces.Message{
		{Role: "user", Content: rewritePrompt + normalized + "\n정제된 질문:"},
	})
	if err != nil {
		r.logger.Debug().Err(err).Msg("Rewrite degraded to pass-through")
		return normalized
	}

	rewritten := strings.TrimSpace(response)
	if degenerate(rewritten) {
		r.logger.Debug().
			Str("output", rewritten).
			Msg("Rewrite output rejected, keeping original question")
		return normalized
	}

	return rewritten
}

// degenerate detects empty output or prompt echo
func degenerate(rewritten string) bool {
	if rewritten == "" {
		return true
	}
	return strings.Contains(rewritten, "정제된 질문") || strings.Contains(rewritten, "검색에 유리")
}
