package models

// SafetyLevel classifies how much medical caution a question demands.
// Levels are ordered: clear < caution < escalate.
type SafetyLevel string

const (
	SafetyClear    SafetyLevel = "clear"
	SafetyCaution  SafetyLevel = "caution"
	SafetyEscalate SafetyLevel = "escalate"
)

// Question domains, checked in this order with first match winning
const (
	DomainExercise  = "exercise"
	DomainDiet      = "diet"
	DomainMedical   = "medical"
	DomainLifestyle = "lifestyle"
)

// Question complexity buckets
const (
	ComplexitySimple   = "simple"
	ComplexityCompound = "compound"
	ComplexityMultiHop = "multi-hop"
)

// QuestionAnalysis is the structured output of the question classifier.
// Created once per incoming question and immutable afterwards.
type QuestionAnalysis struct {
	Domain     string      `json:"domain"`
	Complexity string      `json:"complexity"`
	Safety     SafetyLevel `json:"safety"`
	Reasons    []string    `json:"reasons"` // ordered audit trail of heuristic hits
	LatencyMS  float64     `json:"latency_ms"`
}
