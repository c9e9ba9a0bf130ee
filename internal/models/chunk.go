package models

// Chunk represents a retrievable unit of knowledge. Chunks are produced by the
// ingestion collaborator as an append-only NDJSON stream (one JSON object per
// line) and loaded into the retriever fallback caches at startup.
//
// ChunkID is stable across retrieval calls. Score and the retrieval metadata
// tags are query-scoped: retrievers must annotate a fresh Copy, never the
// cached instance.
type Chunk struct {
	ChunkID     string            `json:"chunk_id" badgerhold:"key"`
	DocumentID  string            `json:"document_id"`
	SectionPath []string          `json:"section_path"` // heading strings, outer to inner
	SourcePath  string            `json:"source_path"`
	Text        string            `json:"text"`
	TokenCount  int               `json:"token_count"`
	Embedding   []float32         `json:"embedding,omitempty"`
	Score       float64           `json:"score,omitempty"` // backend-assigned relevance, higher = more relevant
	Metadata    map[string]string `json:"metadata,omitempty"`
}

// Copy returns a fresh chunk sharing the immutable content fields but with an
// independent metadata map, safe to annotate with query-scoped score and
// retrieval tags.
func (c *Chunk) Copy() *Chunk {
	copied := *c
	copied.Metadata = make(map[string]string, len(c.Metadata)+2)
	for k, v := range c.Metadata {
		copied.Metadata[k] = v
	}
	return &copied
}

// Source returns the origin path for citation display
func (c *Chunk) Source() string {
	return c.SourcePath
}
