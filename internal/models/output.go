package models

// RetrievalOutput is the aggregated orchestration result for counselor
// consumption. In live mode Answer carries the synthesized reply; in
// preparation mode Answer is empty and Preparation holds the consultation
// brief.
type RetrievalOutput struct {
	RequestID    string               `json:"request_id"`
	Analysis     QuestionAnalysis     `json:"analysis"`
	Answer       string               `json:"answer"`
	Citations    []string             `json:"citations"`
	Observations []Observation        `json:"observations"`
	Safety       SafetyEnvelope       `json:"safety"`
	Timings      map[string]float64   `json:"timings"` // stage -> milliseconds
	Evidence     []*Chunk             `json:"evidence"`
	Preparation  *PreparationAnalysis `json:"preparationAnalysis,omitempty"`
}

// EvidenceView is the serialized form of a chunk on the HTTP surface
type EvidenceView struct {
	ChunkID     string            `json:"chunk_id"`
	Text        string            `json:"text"`
	SectionPath []string          `json:"sectionPath"`
	Source      string            `json:"source"`
	Score       float64           `json:"score"`
	Metadata    map[string]string `json:"metadata"`
}

// RetrievalResponse is the HTTP payload shape for a retrieval output
type RetrievalResponse struct {
	RequestID    string               `json:"request_id"`
	Analysis     QuestionAnalysis     `json:"analysis"`
	Answer       string               `json:"answer"`
	Citations    []string             `json:"citations"`
	Observations []Observation        `json:"observations"`
	Safety       SafetyEnvelope       `json:"safety"`
	Timings      map[string]float64   `json:"timings"`
	Evidence     []EvidenceView       `json:"evidence"`
	Preparation  *PreparationAnalysis `json:"preparationAnalysis,omitempty"`
}

// ToResponse converts a retrieval output into its HTTP payload shape
func (o *RetrievalOutput) ToResponse() *RetrievalResponse {
	evidence := make([]EvidenceView, 0, len(o.Evidence))
	for _, chunk := range o.Evidence {
		evidence = append(evidence, EvidenceView{
			ChunkID:     chunk.ChunkID,
			Text:        chunk.Text,
			SectionPath: chunk.SectionPath,
			Source:      chunk.Source(),
			Score:       chunk.Score,
			Metadata:    chunk.Metadata,
		})
	}
	return &RetrievalResponse{
		RequestID:    o.RequestID,
		Analysis:     o.Analysis,
		Answer:       o.Answer,
		Citations:    o.Citations,
		Observations: o.Observations,
		Safety:       o.Safety,
		Timings:      o.Timings,
		Evidence:     evidence,
		Preparation:  o.Preparation,
	}
}
