package orchestrator

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/ternarybob/consilium/internal/interfaces"
	"github.com/ternarybob/consilium/internal/models"
	"github.com/ternarybob/consilium/internal/services/merge"
)

const (
	// prepAnswerLimit caps evidence per expected question
	prepAnswerLimit = 5
	// prepSnippetChunks bounds the evidence excerpt block in answer prompts
	prepSnippetChunks = 3
	// prepSnippetRunes truncates each evidence excerpt
	prepSnippetRunes = 200
	// prepMaxQuestions caps the generated expected-question list
	prepMaxQuestions = 5
)

const (
	prepPatientFallback  = "환자 정보를 확인하세요."
	prepAnswerFallback   = "근거 자료를 바탕으로 생활습관 개선을 권장합니다."
	prepAnswerEmptyValue = "일반적인 생활습관 가이드라인을 참고하여 상담하시면 좋습니다."
)

// prepWarnings ship with every consultation brief
var prepWarnings = []string{
	"의학적 판단이 필요한 질문은 담당 의사에게 에스컬레이션하세요",
	"약물 관련 질문은 절대 답변하지 마세요",
}

// runPreparation executes the five-step consultation-brief flow. Each step
// degrades to a deterministic fallback when the completion backend is
// unavailable, so preparation mode always produces a usable brief.
func (o *Orchestrator) runPreparation(ctx context.Context, state *runState, emit NodeSink) {
	patientState := o.prepAnalyzePatient(ctx, state, emit)
	pattern := o.prepAnalyzeHistory(ctx, state, emit)
	questions := o.prepGenerateQuestions(ctx, state, patientState, pattern, emit)
	expected := o.prepPrepareAnswers(ctx, state, questions, emit)
	examples := o.prepDeliveryExamples(state, emit)

	start := time.Now()
	prepTimings := make(map[string]float64, len(state.timings))
	for stage, duration := range state.timings {
		prepTimings[stage] = duration
	}
	state.preparation = &models.PreparationAnalysis{
		PatientState:      patientState,
		Pattern:           pattern,
		ExpectedQuestions: expected,
		DeliveryExamples:  examples,
		Warnings:          prepWarnings,
		Timings:           prepTimings,
	}
	elapsed := time.Since(start)

	o.recordStage(state, "prep_synthesis", elapsed)
	o.observe(state, emit, "prep_synthesis", durationMS(elapsed), models.Observation{
		Role:    models.ObservationObserve,
		Title:   "상담 준비 완료",
		Content: fmt.Sprintf("총 %d개의 예상 질문 및 답변 준비됨", len(expected)),
	})
}

// prepAnalyzePatient summarizes the patient context (step 1)
func (o *Orchestrator) prepAnalyzePatient(ctx context.Context, state *runState, emit NodeSink) models.PatientStateAnalysis {
	start := time.Now()

	prompt := "아래 환자 정보를 분석하여 현재 상태를 요약하세요.\n" +
		"- 객관적 수치만 전달 (BMI, 혈압, 혈당 등)\n" +
		"- 주요 관리 포인트 3-5개 도출\n" +
		"- 의학적 판단은 하지 말 것\n\n" +
		fmt.Sprintf("환자 정보:\n%s\n\n", state.context) +
		"요약:"

	summary := o.complete(ctx, prompt, prepPatientFallback)

	elapsed := time.Since(start)
	o.recordStage(state, "prep_patient_analysis", elapsed)
	o.observe(state, emit, "prep_patient_analysis", durationMS(elapsed), models.Observation{
		Role:    models.ObservationAction,
		Title:   "환자 상태 분석 완료",
		Content: "현재 상태 요약 완료",
	})

	return models.PatientStateAnalysis{
		Summary:    summary,
		KeyMetrics: map[string]string{},
		Concerns:   []string{},
	}
}

// prepAnalyzeHistory looks for consultation patterns (step 2). Returns nil
// when no prior records exist.
func (o *Orchestrator) prepAnalyzeHistory(ctx context.Context, state *runState, emit NodeSink) *models.ConsultationPattern {
	start := time.Now()

	prompt := "이전 상담 기록을 분석하여 패턴을 파악하세요.\n" +
		"- 다뤘던 주제들\n" +
		"- 환자의 실천 여부\n" +
		"- 어려워했던 부분\n\n" +
		fmt.Sprintf("상담 기록:\n%s\n\n", state.context) +
		"이전 기록이 없다면 '없음'이라고 응답하세요.\n\n" +
		"분석:"

	analysisText := o.complete(ctx, prompt, "없음")

	var pattern *models.ConsultationPattern
	if analysisText != "" && !strings.Contains(analysisText, "없음") {
		pattern = &models.ConsultationPattern{
			PreviousTopics: []string{},
			AdherenceNotes: []string{},
			Difficulties:   []string{},
		}
	}

	content := "이전 기록 없음"
	if pattern != nil {
		content = "이전 패턴 파악됨"
	}

	elapsed := time.Since(start)
	o.recordStage(state, "prep_history_analysis", elapsed)
	o.observe(state, emit, "prep_history_analysis", durationMS(elapsed), models.Observation{
		Role:    models.ObservationAction,
		Title:   "상담 이력 분석 완료",
		Content: content,
	})
	return pattern
}

// prepGenerateQuestions predicts likely counseling questions (step 3)
func (o *Orchestrator) prepGenerateQuestions(ctx context.Context, state *runState, patientState models.PatientStateAnalysis, pattern *models.ConsultationPattern, emit NodeSink) []string {
	start := time.Now()

	contextParts := []string{fmt.Sprintf("환자 상태: %s", patientState.Summary)}
	if pattern != nil {
		contextParts = append(contextParts, "이전 상담: 있음")
	}

	prompt := "아래 환자 정보를 바탕으로 이번 상담에서 나올 가능성이 높은 질문 5개를 생성하세요.\n" +
		"- 운동 관련 질문\n" +
		"- 식단 관련 질문\n" +
		"- 생활습관 관련 질문\n\n" +
		strings.Join(contextParts, "\n") + "\n\n" +
		"예상 질문 목록 (번호 없이 한 줄에 하나씩):"

	questionsText := o.complete(ctx, prompt, "")

	questions := make([]string, 0, prepMaxQuestions)
	for _, line := range strings.Split(questionsText, "\n") {
		normalized := strings.TrimSpace(strings.Trim(strings.TrimSpace(line), "-• "))
		if normalized == "" || !strings.Contains(normalized, "?") {
			continue
		}
		questions = append(questions, normalized)
		if len(questions) >= prepMaxQuestions {
			break
		}
	}

	elapsed := time.Since(start)
	o.recordStage(state, "prep_question_generation", elapsed)
	o.observe(state, emit, "prep_question_generation", durationMS(elapsed), models.Observation{
		Role:    models.ObservationAction,
		Title:   "예상 질문 생성 완료",
		Content: fmt.Sprintf("%d개의 예상 질문 생성됨", len(questions)),
	})
	return questions
}

// prepPrepareAnswers drafts a recommended answer per expected question
// (step 4). Questions are processed concurrently; results keep question
// order.
func (o *Orchestrator) prepPrepareAnswers(ctx context.Context, state *runState, questions []string, emit NodeSink) []models.ExpectedQuestion {
	start := time.Now()

	expected := make([]models.ExpectedQuestion, len(questions))
	var wg sync.WaitGroup
	for i, question := range questions {
		wg.Add(1)
		go func(idx int, text string) {
			defer wg.Done()
			expected[idx] = o.prepareSingleAnswer(ctx, text)
		}(i, question)
	}
	wg.Wait()

	elapsed := time.Since(start)
	o.recordStage(state, "prep_answer_preparation", elapsed)
	o.observe(state, emit, "prep_answer_preparation", durationMS(elapsed), models.Observation{
		Role:    models.ObservationAction,
		Title:   "권장 답변 준비 완료",
		Content: fmt.Sprintf("%d개의 답변 준비됨 (병렬 실행)", len(expected)),
	})
	return expected
}

// prepareSingleAnswer retrieves evidence for one expected question and
// drafts the recommended answer
func (o *Orchestrator) prepareSingleAnswer(ctx context.Context, question string) models.ExpectedQuestion {
	questionAnalysis := o.classifier.Analyze(question, "")

	var chunks []*models.Chunk
	if questionAnalysis.Complexity == models.ComplexitySimple {
		chunks = o.vector.Retrieve(ctx, question, prepAnswerLimit)
	} else {
		vectorChunks := o.vector.Retrieve(ctx, question, prepAnswerLimit)
		graphChunks := o.graph.Retrieve(ctx, question, prepAnswerLimit)
		chunks = merge.Merge(vectorChunks, graphChunks, prepAnswerLimit)
	}

	var snippets strings.Builder
	for idx, chunk := range headChunks(chunks, prepSnippetChunks) {
		if idx > 0 {
			snippets.WriteString("\n")
		}
		snippets.WriteString(fmt.Sprintf("- (%d) %s: %s", idx+1, chunk.ChunkID, truncate(chunk.Text, prepSnippetRunes)))
	}

	prompt := "예상 질문에 대한 권장 답변을 작성하세요.\n" +
		"- 2-3문장으로 간결하게 답변\n" +
		"- 구체적인 행동 권장 포함 (예: 하루 30분, 주 5회)\n" +
		"- 제안의 톤 유지 ('~를 권장드립니다', '~하시면 좋습니다')\n" +
		"- 의학적 판단은 피하고 일반적인 가이드라인만 제공\n\n" +
		fmt.Sprintf("예상 질문: %s\n\n", question) +
		fmt.Sprintf("근거:\n%s\n\n", snippets.String()) +
		"권장 답변:"

	answer := o.complete(ctx, prompt, prepAnswerFallback)
	if answer == "" {
		answer = prepAnswerEmptyValue
	}

	citations := make([]string, 0, prepSnippetChunks)
	for _, chunk := range headChunks(chunks, prepSnippetChunks) {
		docID := chunk.Metadata["document_id"]
		if docID == "" {
			docID = chunk.DocumentID
		}
		if docID == "" {
			continue
		}
		if guideline := chunk.Metadata["guideline_name"]; guideline != "" {
			citations = append(citations, guideline)
		} else {
			citations = append(citations, docID)
		}
	}

	return models.ExpectedQuestion{
		Question:          question,
		RecommendedAnswer: answer,
		EvidenceChunks:    chunks,
		Citations:         citations,
	}
}

// prepDeliveryExamples suggests patient-friendly phrasings (step 5)
func (o *Orchestrator) prepDeliveryExamples(state *runState, emit NodeSink) []models.DeliveryExample {
	start := time.Now()

	examples := []models.DeliveryExample{
		{
			Topic:                  "체중 관리",
			TechnicalVersion:       "BMI 28.5로 과체중 범위입니다",
			PatientFriendlyVersion: "현재 체중이 건강 범위보다 조금 높은 편이에요",
			FramingNotes:           "긍정적으로 프레이밍, '과체중' 대신 완곡한 표현 사용",
		},
	}

	elapsed := time.Since(start)
	o.recordStage(state, "prep_delivery_examples", elapsed)
	o.observe(state, emit, "prep_delivery_examples", durationMS(elapsed), models.Observation{
		Role:    models.ObservationAction,
		Title:   "전달 방식 예시 생성 완료",
		Content: fmt.Sprintf("%d개의 전달 예시 생성됨", len(examples)),
	})
	return examples
}

// complete runs a single-prompt completion with a deterministic fallback
func (o *Orchestrator) complete(ctx context.Context, prompt, fallback string) string {
	response, err := o.llmService.Chat(ctx, []interfaces.Message{
		{Role: "user", Content: prompt},
	})
	if err != nil {
		return fallback
	}
	response = strings.TrimSpace(response)
	if response == "" {
		return fallback
	}
	return response
}

func headChunks(chunks []*models.Chunk, limit int) []*models.Chunk {
	if len(chunks) <= limit {
		return chunks
	}
	return chunks[:limit]
}
