// Package decompose splits compound counselor questions into independent
// sub-questions and fans retrieval out across them concurrently.
package decompose

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/consilium/internal/interfaces"
	"github.com/ternarybob/consilium/internal/models"
)

// maxSubQuestions keeps the retrieval fan-out bounded
const maxSubQuestions = 3

const decomposePrompt = "복잡한 상담 질문을 2~3개의 하위 질문으로 분해하세요.\n" +
	"- 각 하위 질문은 독립적으로 검색 가능해야 합니다.\n" +
	"- 운동/식단/생활습관과 관련된 핵심 키워드를 유지하세요.\n" +
	"질문: "

var splitTokens = []string{"?", "그리고", "및", "또"}

var graphLeaningKeywords = []string{
	"관계", "영향", "연관", "비교", "차이", "상관", "같이", "함께", "동시에", "네트워크", "연결",
}

var graphLeaningConnectors = []string{"그리고", "및", "또", "동시에", "하지만"}

// Decomposer splits questions and retrieves evidence per sub-question with
// a primary retriever chosen by the sub-question's shape and the other
// retriever as fallback when the primary comes back empty.
type Decomposer struct {
	llmService  interfaces.LLMService
	vector      interfaces.Retriever
	graph       interfaces.Retriever
	maxEvidence int
	logger      arbor.ILogger
}

func NewDecomposer(llmService interfaces.LLMService, vector, graph interfaces.Retriever, maxEvidence int, logger arbor.ILogger) *Decomposer {
	return &Decomposer{
		llmService:  llmService,
		vector:      vector,
		graph:       graph,
		maxEvidence: maxEvidence,
		logger:      logger,
	}
}

// Split breaks the question into at most three sub-questions. The LLM path
// is preferred; on failure or empty output a heuristic split on question
// marks and conjunctions takes over, and the original question is the final
// fallback, so Split never returns an empty slice.
func (d *Decomposer) Split(ctx context.Context, question string) []string {
	var candidates []string

	response, err := d.llmService.Chat(ctx, []interfaces.Message{
		{Role: "user", Content: decomposePrompt + question + "\n하위 질문 목록 (번호 없이 한 줄에 하나 씩):"},
	})
	if err == nil {
		for _, line := range strings.Split(response, "\n") {
			normalized := strings.TrimSpace(strings.Trim(line, "-• "))
			if normalized != "" {
				candidates = append(candidates, normalized)
			}
		}
	} else {
		d.logger.Debug().Err(err).Msg("LLM decomposition unavailable, splitting heuristically")
	}

	if len(candidates) == 0 {
		candidates = heuristicSplit(question)
	}
	if len(candidates) == 0 {
		candidates = []string{strings.TrimSpace(question)}
	}
	if len(candidates) > maxSubQuestions {
		candidates = candidates[:maxSubQuestions]
	}
	return candidates
}

// heuristicSplit cuts on the first token that produces multiple parts
func heuristicSplit(question string) []string {
	for _, token := range splitTokens {
		if !strings.Contains(question, token) {
			continue
		}
		var parts []string
		for _, part := range strings.Split(question, token) {
			part = strings.TrimSpace(part)
			if part != "" {
				parts = append(parts, part)
			}
		}
		if len(parts) > 1 {
			return parts
		}
	}
	return nil
}

// Retrieve fans out over the sub-questions concurrently and merges the
// results in sub-question order. Each result is tagged with the
// sub-question that produced it, deduplicated by chunk ID with the first
// occurrence winning, and capped at the evidence limit.
func (d *Decomposer) Retrieve(ctx context.Context, subquestions []string, limit int) []*models.Chunk {
	results := make([][]*models.Chunk, len(subquestions))

	var wg sync.WaitGroup
	for i, subquestion := range subquestions {
		wg.Add(1)
		go func(i int, subquestion string) {
			defer wg.Done()
			results[i] = d.retrieveWithFallback(ctx, subquestion, limit)
		}(i, subquestion)
	}
	wg.Wait()

	var evidence []*models.Chunk
	seen := make(map[string]bool)
	for i, hits := range results {
		for _, chunk := range hits {
			if seen[chunk.ChunkID] {
				continue
			}
			seen[chunk.ChunkID] = true
			if chunk.Metadata == nil {
				chunk.Metadata = make(map[string]string, 2)
			}
			chunk.Metadata["subquestion"] = subquestions[i]
			evidence = append(evidence, chunk)
			if len(evidence) >= d.maxEvidence {
				return evidence
			}
		}
	}
	return evidence
}

// retrieveWithFallback queries the primary retriever for the sub-question
// and falls back to the other when it returns nothing.
func (d *Decomposer) retrieveWithFallback(ctx context.Context, subquestion string, limit int) []*models.Chunk {
	primary, fallback := d.vector, d.graph
	if QuestionType(subquestion) == models.StrategyGraph {
		primary, fallback = d.graph, d.vector
	}

	hits := primary.Retrieve(ctx, subquestion, limit)
	if len(hits) == 0 {
		hits = fallback.Retrieve(ctx, subquestion, limit)
	}

	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Score > hits[j].Score
	})
	if len(hits) > limit {
		hits = hits[:limit]
	}
	return hits
}

// QuestionType decides which retriever leads for a sub-question.
// Relationship wording and conjunctions lean graph; everything else vector.
func QuestionType(text string) models.StrategyName {
	lowered := strings.ToLower(text)
	for _, keyword := range graphLeaningKeywords {
		if strings.Contains(lowered, keyword) {
			return models.StrategyGraph
		}
	}
	for _, connector := range graphLeaningConnectors {
		if strings.Contains(lowered, connector) {
			return models.StrategyGraph
		}
	}
	return models.StrategyVector
}
