package decompose

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/consilium/internal/interfaces"
	"github.com/ternarybob/consilium/internal/models"
	"github.com/ternarybob/consilium/internal/services/llm"
)

// stubRetriever returns canned chunks and counts calls
type stubRetriever struct {
	name   string
	chunks []*models.Chunk
	calls  atomic.Int64
}

func (s *stubRetriever) Retrieve(ctx context.Context, query string, limit int) []*models.Chunk {
	s.calls.Add(1)
	copies := make([]*models.Chunk, 0, len(s.chunks))
	for _, chunk := range s.chunks {
		copies = append(copies, chunk.Copy())
	}
	return copies
}

func (s *stubRetriever) Name() string { return s.name }

// scriptedLLM returns a fixed completion for every chat call
type scriptedLLM struct {
	*llm.OfflineService
	response string
}

func (s *scriptedLLM) Chat(ctx context.Context, messages []interfaces.Message) (string, error) {
	return s.response, nil
}

func offlineLLM() interfaces.LLMService {
	return llm.NewOfflineService(64, arbor.NewLogger())
}

func TestDecomposer_SplitFromLLM(t *testing.T) {
	scripted := &scriptedLLM{
		OfflineService: llm.NewOfflineService(64, arbor.NewLogger()),
		response:       "- 운동은 얼마나 해야 하나요\n• 식단은 어떻게 바꿔야 하나요\n",
	}
	d := NewDecomposer(scripted, &stubRetriever{}, &stubRetriever{}, 5, arbor.NewLogger())

	subs := d.Split(context.Background(), "운동 그리고 식단 질문")

	require.Len(t, subs, 2)
	assert.Equal(t, "운동은 얼마나 해야 하나요", subs[0])
	assert.Equal(t, "식단은 어떻게 바꿔야 하나요", subs[1])
}

func TestDecomposer_SplitHeuristicFallback(t *testing.T) {
	d := NewDecomposer(offlineLLM(), &stubRetriever{}, &stubRetriever{}, 5, arbor.NewLogger())

	subs := d.Split(context.Background(), "운동은 얼마나 해야 하나요? 식단은 어떻게 해야 하나요?")

	require.Len(t, subs, 2)
	assert.Equal(t, "운동은 얼마나 해야 하나요", subs[0])
}

func TestDecomposer_SplitNeverEmpty(t *testing.T) {
	d := NewDecomposer(offlineLLM(), &stubRetriever{}, &stubRetriever{}, 5, arbor.NewLogger())

	subs := d.Split(context.Background(), "단일 질문입니다")

	require.Len(t, subs, 1)
	assert.Equal(t, "단일 질문입니다", subs[0])
}

func TestDecomposer_SplitCapsAtThree(t *testing.T) {
	scripted := &scriptedLLM{
		OfflineService: llm.NewOfflineService(64, arbor.NewLogger()),
		response:       "하나\n둘\n셋\n넷\n다섯",
	}
	d := NewDecomposer(scripted, &stubRetriever{}, &stubRetriever{}, 5, arbor.NewLogger())

	subs := d.Split(context.Background(), "아주 복잡한 질문")

	assert.Len(t, subs, 3)
}

func TestQuestionType(t *testing.T) {
	assert.Equal(t, models.StrategyGraph, QuestionType("운동과 혈당의 관계"))
	assert.Equal(t, models.StrategyGraph, QuestionType("식단 그리고 수면"))
	assert.Equal(t, models.StrategyGraph, QuestionType("영양소 네트워크 구조"))
	assert.Equal(t, models.StrategyVector, QuestionType("운동 빈도 권장량"))
}

func TestDecomposer_RetrieveTagsAndDedupes(t *testing.T) {
	vector := &stubRetriever{name: "vector", chunks: []*models.Chunk{
		{ChunkID: "a", Text: "운동 근거", Score: 0.8},
		{ChunkID: "b", Text: "식단 근거", Score: 0.5},
	}}
	graph := &stubRetriever{name: "graph"}
	d := NewDecomposer(offlineLLM(), vector, graph, 10, arbor.NewLogger())

	evidence := d.Retrieve(context.Background(), []string{"운동 질문", "식단 질문"}, 5)

	// Both sub-questions return a and b; dedupe keeps first occurrences
	require.Len(t, evidence, 2)
	assert.Equal(t, "a", evidence[0].ChunkID)
	assert.Equal(t, "운동 질문", evidence[0].Metadata["subquestion"])
}

func TestDecomposer_RetrieveFallsBackWhenPrimaryEmpty(t *testing.T) {
	vector := &stubRetriever{name: "vector", chunks: []*models.Chunk{
		{ChunkID: "v-1", Text: "벡터 근거", Score: 0.7},
	}}
	graph := &stubRetriever{name: "graph"}
	d := NewDecomposer(offlineLLM(), vector, graph, 10, arbor.NewLogger())

	// Relationship wording routes to graph first; empty result falls to vector
	evidence := d.Retrieve(context.Background(), []string{"운동과 혈당의 관계"}, 3)

	require.Len(t, evidence, 1)
	assert.Equal(t, "v-1", evidence[0].ChunkID)
	assert.EqualValues(t, 1, graph.calls.Load())
	assert.EqualValues(t, 1, vector.calls.Load())
}

func TestDecomposer_RetrieveCapsEvidence(t *testing.T) {
	vector := &stubRetriever{name: "vector", chunks: []*models.Chunk{
		{ChunkID: "a", Score: 0.9},
		{ChunkID: "b", Score: 0.8},
		{ChunkID: "c", Score: 0.7},
	}}
	d := NewDecomposer(offlineLLM(), vector, &stubRetriever{name: "graph"}, 2, arbor.NewLogger())

	evidence := d.Retrieve(context.Background(), []string{"질문 하나"}, 5)

	assert.Len(t, evidence, 2)
}
