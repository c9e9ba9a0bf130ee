// Package orchestrator runs the safety-gated retrieval state machine. A run
// classifies the question, builds the guardrail envelope, and either
// short-circuits on escalation, answers from evidence in live mode, or
// produces a multi-step consultation brief in preparation mode.
package orchestrator

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/consilium/internal/common"
	"github.com/ternarybob/consilium/internal/interfaces"
	"github.com/ternarybob/consilium/internal/models"
	"github.com/ternarybob/consilium/internal/services/analysis"
	"github.com/ternarybob/consilium/internal/services/decompose"
	"github.com/ternarybob/consilium/internal/services/guardrails"
	"github.com/ternarybob/consilium/internal/services/merge"
	"github.com/ternarybob/consilium/internal/services/metrics"
	"github.com/ternarybob/consilium/internal/services/rewrite"
	"github.com/ternarybob/consilium/internal/services/strategy"
	"github.com/ternarybob/consilium/internal/services/synthesis"
)

// NodeSink receives one event per completed orchestration node, in order.
// Used by the streaming surface; a nil sink disables emission.
type NodeSink = func(event models.NodeEvent)

// Dependencies collects the collaborators an Orchestrator wires together
type Dependencies struct {
	Classifier  *analysis.Classifier
	Selector    *strategy.Selector
	Rewriter    *rewrite.Rewriter
	Vector      interfaces.Retriever
	Graph       interfaces.Retriever
	Decomposer  *decompose.Decomposer
	Synthesizer *synthesis.Synthesizer
	FAQCache    interfaces.FAQCache
	LLMService  interfaces.LLMService
	Monitor     *metrics.LatencyMonitor
	Config      *common.Config
	Logger      arbor.ILogger
}

// Orchestrator executes retrieval runs. Safe for concurrent use: all
// per-request state lives in the run, collaborators are read-mostly
// singletons.
type Orchestrator struct {
	classifier    *analysis.Classifier
	selector      *strategy.Selector
	rewriter      *rewrite.Rewriter
	vector        interfaces.Retriever
	graph         interfaces.Retriever
	decomposer    *decompose.Decomposer
	synthesizer   *synthesis.Synthesizer
	faqCache      interfaces.FAQCache
	llmService    interfaces.LLMService
	monitor       *metrics.LatencyMonitor
	evidenceLimit int
	liveSLA       time.Duration
	prepSLA       time.Duration
	logger        arbor.ILogger
}

// New validates the dependency set and returns an orchestrator
func New(deps Dependencies) (*Orchestrator, error) {
	switch {
	case deps.Classifier == nil:
		return nil, fmt.Errorf("orchestrator requires a classifier")
	case deps.Selector == nil:
		return nil, fmt.Errorf("orchestrator requires a strategy selector")
	case deps.Rewriter == nil:
		return nil, fmt.Errorf("orchestrator requires a rewriter")
	case deps.Vector == nil || deps.Graph == nil:
		return nil, fmt.Errorf("orchestrator requires vector and graph retrievers")
	case deps.Decomposer == nil:
		return nil, fmt.Errorf("orchestrator requires a decomposer")
	case deps.Synthesizer == nil:
		return nil, fmt.Errorf("orchestrator requires a synthesizer")
	case deps.LLMService == nil:
		return nil, fmt.Errorf("orchestrator requires an llm service")
	case deps.Config == nil:
		return nil, fmt.Errorf("orchestrator requires configuration")
	}

	if deps.Monitor == nil {
		deps.Monitor = metrics.NewLatencyMonitor()
	}
	if deps.Logger == nil {
		deps.Logger = common.GetLogger()
	}

	return &Orchestrator{
		classifier:    deps.Classifier,
		selector:      deps.Selector,
		rewriter:      deps.Rewriter,
		vector:        deps.Vector,
		graph:         deps.Graph,
		decomposer:    deps.Decomposer,
		synthesizer:   deps.Synthesizer,
		faqCache:      deps.FAQCache,
		llmService:    deps.LLMService,
		monitor:       deps.Monitor,
		evidenceLimit: deps.Config.Retrieval.EvidenceLimit,
		liveSLA:       deps.Config.ModeSLA(models.ModeLive),
		prepSLA:       deps.Config.ModeSLA(models.ModePreparation),
		logger:        deps.Logger,
	}, nil
}

// runState is the mutable per-request state threaded through the nodes
type runState struct {
	question     string
	context      string
	mode         string
	rewritten    string
	analysis     models.QuestionAnalysis
	strategy     models.Strategy
	safety       models.SafetyEnvelope
	observations []models.Observation
	timings      map[string]float64
	evidence     []*models.Chunk
	answer       string
	citations    []string
	preparation  *models.PreparationAnalysis
}

// Monitor exposes the latency monitor for the metrics surface
func (o *Orchestrator) Monitor() *metrics.LatencyMonitor {
	return o.monitor
}

// Run executes one orchestration for the question. Mode defaults to live.
// The returned output is fully scrubbed and safe to serialize; emit, when
// non-nil, receives a node event per completed stage.
func (o *Orchestrator) Run(ctx context.Context, question, contextText, mode string, emit NodeSink) (*models.RetrievalOutput, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, fmt.Errorf("question cannot be blank")
	}
	if mode == "" {
		mode = models.ModeLive
	}
	if mode != models.ModeLive && mode != models.ModePreparation {
		return nil, fmt.Errorf("unknown retrieval mode: %s", mode)
	}

	startTotal := time.Now()
	requestID := common.NewRequestID()

	state := &runState{
		question: question,
		context:  contextText,
		mode:     mode,
		timings:  make(map[string]float64),
	}

	// FAQ pre-check short-circuits the full graph in live mode
	if mode == models.ModeLive && o.faqCache != nil {
		if output := o.checkFAQ(ctx, requestID, question, startTotal, emit); output != nil {
			return output, nil
		}
	}

	o.nodeAnalyze(state, emit)
	o.nodeSafety(state, emit)

	if state.safety.Level == models.SafetyEscalate {
		state.answer = state.safety.AnswerOverride
		state.citations = nil
		state.evidence = nil
		return o.finalize(state, requestID, startTotal), nil
	}

	if mode == models.ModePreparation {
		o.runPreparation(ctx, state, emit)
		return o.finalize(state, requestID, startTotal), nil
	}

	o.nodeRewrite(ctx, state, emit)

	var vectorResults, graphResults []*models.Chunk
	switch state.strategy.Name {
	case models.StrategyDecompose:
		o.nodeDecompose(ctx, state, emit)
	case models.StrategyGraph:
		graphResults = o.nodeGraph(ctx, state, emit)
	default:
		vectorResults = o.nodeVector(ctx, state, emit)
	}

	o.nodeMerge(state, vectorResults, graphResults, emit)
	o.nodeSynthesize(ctx, state, emit)

	return o.finalize(state, requestID, startTotal), nil
}

// checkFAQ returns a completed output on cache hit, nil on miss
func (o *Orchestrator) checkFAQ(ctx context.Context, requestID, question string, startTotal time.Time, emit NodeSink) *models.RetrievalOutput {
	answer, hit := o.faqCache.Get(ctx, question)
	elapsed := time.Since(startTotal)
	if !hit {
		return nil
	}

	o.logger.Info().
		Str("prefix", truncate(question, 50)).
		Float64("lookup_ms", durationMS(elapsed)).
		Msg("FAQ cache hit")
	o.monitor.Record("cache_lookup", elapsed)

	cachedAnalysis := models.QuestionAnalysis{
		Domain:     models.DomainLifestyle,
		Complexity: models.ComplexitySimple,
		Safety:     models.SafetyClear,
		Reasons:    []string{"Cached FAQ response"},
	}
	observation := models.Observation{
		Role:    models.ObservationObserve,
		Title:   "FAQ 캐시 적중",
		Content: "캐시된 답변을 즉시 반환합니다",
	}
	sendEvent(emit, "cache_lookup", durationMS(elapsed), observation)

	totalMS := durationMS(time.Since(startTotal))
	return &models.RetrievalOutput{
		RequestID:    requestID,
		Analysis:     cachedAnalysis,
		Answer:       answer,
		Citations:    []string{"FAQ Cache"},
		Observations: []models.Observation{observation},
		Safety:       guardrails.BuildSafetyEnvelope(cachedAnalysis),
		Timings: map[string]float64{
			"cache_lookup": durationMS(elapsed),
			"total":        totalMS,
		},
		Evidence: []*models.Chunk{},
	}
}

func (o *Orchestrator) nodeAnalyze(state *runState, emit NodeSink) {
	start := time.Now()
	state.analysis = o.classifier.Analyze(state.question, state.context)
	elapsed := time.Since(start)

	o.recordStage(state, "analysis", elapsed)
	o.observe(state, emit, "analysis", durationMS(elapsed), models.Observation{
		Role:    models.ObservationReasoning,
		Title:   "질문 분석",
		Content: fmt.Sprintf("도메인: %s, 복잡도: %s, 안전도: %s", state.analysis.Domain, state.analysis.Complexity, state.analysis.Safety),
	})

	state.strategy = o.selector.Select(state.analysis, state.question, state.mode)
	o.observe(state, emit, "strategy", 0, models.Observation{
		Role:    models.ObservationAction,
		Title:   "검색 전략 선택",
		Content: fmt.Sprintf("선택된 전략: %s (모드: %s)", state.strategy.Name, state.mode),
	})
}

func (o *Orchestrator) nodeSafety(state *runState, emit NodeSink) {
	start := time.Now()
	state.safety = guardrails.BuildSafetyEnvelope(state.analysis)
	elapsed := time.Since(start)

	o.recordStage(state, "safety", elapsed)
	o.observe(state, emit, "safety", durationMS(elapsed), models.Observation{
		Role:    models.ObservationAction,
		Title:   "안전성 검증",
		Content: fmt.Sprintf("안전 수준: %s", state.analysis.Safety),
	})
}

func (o *Orchestrator) nodeRewrite(ctx context.Context, state *runState, emit NodeSink) {
	start := time.Now()
	state.rewritten = o.rewriter.Rewrite(ctx, state.question, state.strategy)
	elapsed := time.Since(start)

	o.recordStage(state, "rewrite", elapsed)
	o.observe(state, emit, "rewrite", durationMS(elapsed), models.Observation{
		Role:    models.ObservationAction,
		Title:   "질문 재작성",
		Content: fmt.Sprintf("재작성된 질문: %s", state.rewritten),
	})
}

func (o *Orchestrator) nodeVector(ctx context.Context, state *runState, emit NodeSink) []*models.Chunk {
	start := time.Now()
	results := o.vector.Retrieve(ctx, state.retrievalQuery(), state.strategy.VectorK)
	elapsed := time.Since(start)

	o.recordStage(state, "retrieval_vector", elapsed)
	o.observe(state, emit, "vector", durationMS(elapsed), models.Observation{
		Role:    models.ObservationAction,
		Title:   "Vector 검색 실행",
		Content: fmt.Sprintf("%d개의 관련 문서를 찾았습니다", len(results)),
	})
	return results
}

func (o *Orchestrator) nodeGraph(ctx context.Context, state *runState, emit NodeSink) []*models.Chunk {
	start := time.Now()
	results := o.graph.Retrieve(ctx, state.retrievalQuery(), state.strategy.GraphK)
	elapsed := time.Since(start)

	o.recordStage(state, "retrieval_graph", elapsed)
	o.observe(state, emit, "graph", durationMS(elapsed), models.Observation{
		Role:    models.ObservationAction,
		Title:   "Graph 검색 실행",
		Content: fmt.Sprintf("%d개의 관계 문서를 찾았습니다", len(results)),
	})
	return results
}

func (o *Orchestrator) nodeDecompose(ctx context.Context, state *runState, emit NodeSink) {
	start := time.Now()
	subquestions := o.decomposer.Split(ctx, state.retrievalQuery())
	state.evidence = o.decomposer.Retrieve(ctx, subquestions, state.strategy.SubLimit)
	elapsed := time.Since(start)

	o.recordStage(state, "decompose", elapsed)
	o.observe(state, emit, "decompose", durationMS(elapsed), models.Observation{
		Role:    models.ObservationAction,
		Title:   "질문 분해 및 병렬 검색",
		Content: fmt.Sprintf("%d개의 하위 질문으로 분해, %d개의 증거 수집 (병렬 실행)", len(subquestions), len(state.evidence)),
	})
}

func (o *Orchestrator) nodeMerge(state *runState, vectorResults, graphResults []*models.Chunk, emit NodeSink) {
	if state.strategy.Name == models.StrategyDecompose && len(state.evidence) > 0 {
		o.observe(state, emit, "merge", 0, models.Observation{
			Role:    models.ObservationObserve,
			Title:   "증거 병합",
			Content: "분해된 질문의 증거를 재사용",
		})
		return
	}

	state.evidence = merge.Merge(vectorResults, graphResults, o.evidenceLimit)
	o.observe(state, emit, "merge", 0, models.Observation{
		Role:    models.ObservationObserve,
		Title:   "증거 병합 완료",
		Content: fmt.Sprintf("Vector: %d개, Graph: %d개, 고유: %d개", len(vectorResults), len(graphResults), len(state.evidence)),
	})
}

func (o *Orchestrator) nodeSynthesize(ctx context.Context, state *runState, emit NodeSink) {
	start := time.Now()
	state.answer, state.citations = o.synthesizer.Synthesize(ctx, state.question, state.evidence, state.strategy.Name)
	elapsed := time.Since(start)

	o.recordStage(state, "synthesis", elapsed)
	o.observe(state, emit, "synthesize", durationMS(elapsed), models.Observation{
		Role:    models.ObservationObserve,
		Title:   "답변 생성 완료",
		Content: fmt.Sprintf("증거 %d개를 기반으로 답변을 생성했습니다", len(state.evidence)),
	})
}

// finalize closes the timing ledger, applies caution guidance, and scrubs
// all counselor-facing text
func (o *Orchestrator) finalize(state *runState, requestID string, startTotal time.Time) *models.RetrievalOutput {
	total := time.Since(startTotal)
	state.timings["total"] = durationMS(total)
	if _, ok := state.timings["retrieval"]; !ok {
		state.timings["retrieval"] = state.timings["retrieval_vector"] + state.timings["retrieval_graph"]
	}
	o.monitor.Record("total", total)
	o.warnSLA(state, total)

	answer := state.answer
	if state.analysis.Safety == models.SafetyCaution && state.safety.Level != models.SafetyEscalate {
		answer = guardrails.AppendCautionGuidance(answer, state.safety)
	}

	output := &models.RetrievalOutput{
		RequestID:    requestID,
		Analysis:     state.analysis,
		Answer:       guardrails.ScrubText(answer),
		Citations:    state.citations,
		Observations: guardrails.ScrubObservations(state.observations),
		Safety:       state.safety,
		Timings:      state.timings,
		Evidence:     state.evidence,
	}
	if state.mode == models.ModePreparation {
		output.Answer = ""
		output.Citations = nil
		output.Evidence = nil
		output.Preparation = state.preparation
	}
	return output
}

func (o *Orchestrator) warnSLA(state *runState, total time.Duration) {
	budget := o.liveSLA
	if state.mode == models.ModePreparation {
		budget = o.prepSLA
	}
	if budget > 0 && total > budget {
		o.logger.Warn().
			Str("mode", state.mode).
			Float64("total_ms", durationMS(total)).
			Float64("budget_ms", durationMS(budget)).
			Msg("Retrieval run exceeded mode SLA")
	}
}

// observe appends to the timeline and emits the node event
func (o *Orchestrator) observe(state *runState, emit NodeSink, node string, durationMS float64, observation models.Observation) {
	state.observations = append(state.observations, observation)
	sendEvent(emit, node, durationMS, observation)
}

func (o *Orchestrator) recordStage(state *runState, stage string, elapsed time.Duration) {
	state.timings[stage] = durationMS(elapsed)
	o.monitor.Record(stage, elapsed)
}

func (s *runState) retrievalQuery() string {
	if s.rewritten != "" {
		return s.rewritten
	}
	return s.question
}

func sendEvent(emit NodeSink, node string, durationMS float64, observation models.Observation) {
	if emit == nil {
		return
	}
	emit(models.NodeEvent{
		Node:        node,
		DurationMS:  durationMS,
		Observation: observation,
	})
}

func durationMS(d time.Duration) float64 {
	return float64(d.Microseconds()) / 1000.0
}

func truncate(text string, limit int) string {
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit])
}
