package models

// PatientStateAnalysis summarizes the patient's current state (preparation
// step 1). The summary sticks to objective metrics and avoids medical
// judgment.
type PatientStateAnalysis struct {
	Summary    string            `json:"summary"`
	KeyMetrics map[string]string `json:"keyMetrics"`
	Concerns   []string          `json:"concerns"`
}

// ConsultationPattern captures themes from previous consultations
// (preparation step 2). Nil when no prior records exist.
type ConsultationPattern struct {
	PreviousTopics []string `json:"previousTopics"`
	AdherenceNotes []string `json:"adherenceNotes"`
	Difficulties   []string `json:"difficulties"`
}

// ExpectedQuestion pairs a likely counseling question with a prepared answer
// and its supporting evidence (preparation steps 3-4).
type ExpectedQuestion struct {
	Question          string   `json:"question"`
	RecommendedAnswer string   `json:"recommendedAnswer"`
	EvidenceChunks    []*Chunk `json:"-"`
	Citations         []string `json:"citations"`
}

// DeliveryExample shows how to phrase a finding for the patient
// (preparation step 5).
type DeliveryExample struct {
	Topic                  string `json:"topic"`
	TechnicalVersion       string `json:"technicalVersion"`
	PatientFriendlyVersion string `json:"patientFriendlyVersion"`
	FramingNotes           string `json:"framingNotes"`
}

// PreparationAnalysis is the complete multi-step consultation brief produced
// in preparation mode.
type PreparationAnalysis struct {
	PatientState      PatientStateAnalysis `json:"patientState"`
	Pattern           *ConsultationPattern `json:"consultationPattern,omitempty"`
	ExpectedQuestions []ExpectedQuestion   `json:"expectedQuestions"`
	DeliveryExamples  []DeliveryExample    `json:"deliveryExamples"`
	Warnings          []string             `json:"warnings"`
	Timings           map[string]float64   `json:"timings"` // stage -> milliseconds
}
