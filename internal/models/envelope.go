package models

// SafetyEnvelope carries counselor-facing guardrail messaging derived from a
// QuestionAnalysis. When Level is escalate, AnswerOverride is non-empty and
// the answer pipeline short-circuits.
type SafetyEnvelope struct {
	Level          SafetyLevel `json:"level"`
	BannerTitle    string      `json:"bannerTitle"`
	BannerBody     string      `json:"bannerBody"`
	EscalationCopy string      `json:"escalationCopy"`
	AnswerOverride string      `json:"answerOverride,omitempty"`
}
