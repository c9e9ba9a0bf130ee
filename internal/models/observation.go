package models

// Observation roles for the counselor-facing timeline
const (
	ObservationReasoning = "reasoning"
	ObservationAction    = "action"
	ObservationObserve   = "observation"
)

// Observation is a single structured entry in the orchestration timeline
type Observation struct {
	Role    string `json:"role"` // reasoning, action, observation
	Title   string `json:"title"`
	Content string `json:"content"`
}

// NodeEvent describes one orchestrator node transition, emitted on the
// streaming surface as each stage completes.
type NodeEvent struct {
	Node        string      `json:"node"`
	DurationMS  float64     `json:"duration_ms"`
	Observation Observation `json:"observation"`
}
