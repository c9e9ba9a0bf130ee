// Package synthesis turns ranked evidence into a counselor-facing answer
// with chunk citations.
package synthesis

import (
	"context"
	"fmt"
	"strings"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/consilium/internal/interfaces"
	"github.com/ternarybob/consilium/internal/models"
)

// NoEvidenceAnswer is returned when retrieval found nothing usable. The LLM
// is never consulted in that case.
const NoEvidenceAnswer = "현재 확보된 자료에서 직접적인 근거를 찾지 못했습니다. " +
	"일반적인 생활습관 가이드라인을 참고하시고, 필요 시 담당 의사와 상담해 주세요."

// fallbackAnswer covers an LLM failure or empty completion when evidence exists
const fallbackAnswer = "근거 자료를 바탕으로 생활습관 개선을 권장드립니다. 하루 30분 내외의 중등도 운동을 주 5회 정도 " +
	"실천하고, 상담 시 근거 번호를 함께 안내해 주세요."

// Synthesizer composes answers from evidence
type Synthesizer struct {
	llmService  interfaces.LLMService
	maxEvidence int
	logger      arbor.ILogger
}

func NewSynthesizer(llmService interfaces.LLMService, maxEvidence int, logger arbor.ILogger) *Synthesizer {
	return &Synthesizer{
		llmService:  llmService,
		maxEvidence: maxEvidence,
		logger:      logger,
	}
}

// Synthesize returns the answer text and the citation markers for the
// evidence that informed it. With no evidence it returns the canned
// guidance and no citations.
func (s *Synthesizer) Synthesize(ctx context.Context, question string, evidence []*models.Chunk, strategy models.StrategyName) (string, []string) {
	if len(evidence) == 0 {
		return NoEvidenceAnswer, nil
	}

	citations := make([]string, 0, len(evidence))
	for _, chunk := range evidence {
		citations = append(citations, fmt.Sprintf("[%s]", chunk.ChunkID))
	}

	answer := s.generate(ctx, question, evidence, strategy)
	if answer == "" {
		answer = fallbackAnswer
	}

	// Append citation markers unless the model already cited
	if len(citations) > 0 && !strings.Contains(answer, citations[0]) {
		answer = fmt.Sprintf("%s (%s)", answer, strings.Join(citations, ", "))
	}
	return answer, citations
}

func (s *Synthesizer) generate(ctx context.Context, question string, evidence []*models.Chunk, strategy models.StrategyName) string {
	capped := evidence
	if len(capped) > s.maxEvidence {
		capped = capped[:s.maxEvidence]
	}

	var snippets strings.Builder
	for i, chunk := range capped {
		fmt.Fprintf(&snippets, "- (%d) %s: %s\n", i+1, chunk.ChunkID, chunk.Text)
	}

	prompt := "당신은 대사증후군 상담사를 돕는 시스템입니다." +
		"\n다음 근거를 정리하여 2-3문장 답변을 작성하세요." +
		"\n- 구체적인 행동 권장(예: 주 5회 30분 등)을 포함하세요." +
		"\n- 의학적 판단/약물 조언은 피하고 필요한 경우 담당 의사 상담을 안내하세요." +
		"\n- 마지막 문장에 근거 번호를 괄호 형태로 첨부하세요." +
		fmt.Sprintf("\n질문: %s", question) +
		fmt.Sprintf("\n질문 전략: %s", strategy) +
		fmt.Sprintf("\n근거:\n%s답변:", snippets.String())

	response, err := s.llmService.Chat(ctx, []interfaces.Message{
		{Role: "user", Content: prompt},
	})
	if err != nil {
		s.logger.Debug().Err(err).Msg("Synthesis degraded to canned guidance")
		return ""
	}
	return strings.TrimSpace(response)
}
