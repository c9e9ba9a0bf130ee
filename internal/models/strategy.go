package models

// StrategyName identifies the retrieval plan for a question
type StrategyName string

const (
	StrategyVector    StrategyName = "vector"
	StrategyGraph     StrategyName = "graph"
	StrategyDecompose StrategyName = "decompose"
)

// Strategy is the retrieval plan chosen by the selector. Parameters are
// scaled up in preparation mode, which is more thorough and latency-tolerant
// than live mode.
type Strategy struct {
	Name     StrategyName `json:"name"`
	VectorK  int          `json:"vector_k,omitempty"`
	GraphK   int          `json:"graph_k,omitempty"`
	SubLimit int          `json:"sub_limit,omitempty"` // per-sub-question retrieval limit for decompose
}

// Retrieval modes
const (
	ModeLive        = "live"
	ModePreparation = "preparation"
)
