package models

// ContextChunk represents one retrieved unit of itinerary document content.
// Scores are only comparable within a single retrieval call.
type ContextChunk struct {
	ChunkID        string  `json:"chunk_id"`
	SourceName     string  `json:"source_name"` // Originating document, e.g. "hotel_confirmation.pdf"
	Locator        string  `json:"locator"`     // Position within the source, e.g. "p.1" or "lines 10-24"
	Text           string  `json:"text"`
	RelevanceScore float32 `json:"relevance_score"` // Higher is more relevant
}

// PromptEnvelope is the assembled, size-bounded input handed to the LLM
type PromptEnvelope struct {
	Text      string         // Full prompt text: instructions, history, chunks, question
	Chunks    []ContextChunk // Chunks that survived truncation, in rendered order
	Truncated bool           // True when chunks or history turns were dropped to fit the budget
}

// Validate checks that a chunk is well formed before indexing
func (c *ContextChunk) Validate() error {
	if c.ChunkID == "" {
		return &ValidationError{Field: "chunk_id", Message: "chunk ID is required"}
	}
	if c.SourceName == "" {
		return &ValidationError{Field: "source_name", Message: "source name is required"}
	}
	if c.Text == "" {
		return &ValidationError{Field: "text", Message: "text is required"}
	}
	return nil
}
