package repositories

import (
	"context"
)

// VectorRepository abstracts the vector store so the retrieval pipeline and
// tests do not depend on ChromaDB directly.
type VectorRepository interface {
	// EnsureCollection creates the collection if it does not exist yet
	EnsureCollection(ctx context.Context, name string) error

	// CollectionExists checks whether a collection is present
	CollectionExists(ctx context.Context, name string) (bool, error)

	// StoreChunks stores embedded itinerary chunks in a collection
	StoreChunks(ctx context.Context, collectionName string, chunks []*IndexedChunk) error

	// SearchChunks returns the topK chunks most similar to the query embedding
	SearchChunks(ctx context.Context, collectionName string, queryEmbedding []float32, topK int) ([]*SearchResult, error)

	// DeleteDocument removes all chunks belonging to a document
	DeleteDocument(ctx context.Context, collectionName string, documentID string) error

	// CountChunks returns the number of chunks stored in a collection
	CountChunks(ctx context.Context, collectionName string) (int, error)

	// Ping verifies the vector store is reachable
	Ping(ctx context.Context) error
}

// IndexedChunk represents an itinerary text chunk ready to be stored
type IndexedChunk struct {
	ID         string    `json:"id"`
	DocumentID string    `json:"document_id"`
	SourceName string    `json:"source_name"`
	Locator    string    `json:"locator"`
	Text       string    `json:"text"`
	Embedding  []float32 `json:"embedding"`
	ChunkIndex int       `json:"chunk_index"`
}

// SearchResult represents a single vector similarity hit
type SearchResult struct {
	ChunkID    string  `json:"chunk_id"`
	DocumentID string  `json:"document_id"`
	SourceName string  `json:"source_name"`
	Locator    string  `json:"locator"`
	Text       string  `json:"text"`
	Score      float32 `json:"score"` // Similarity score (0-1, higher is better)
	Distance   float32 `json:"distance"`
}

// VectorRepositoryError represents errors from the vector repository
type VectorRepositoryError struct {
	Operation string
	Err       error
	Message   string
}

func (e *VectorRepositoryError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Operation + ": " + e.Err.Error()
	}
	return e.Operation + ": unknown error"
}

func (e *VectorRepositoryError) Unwrap() error {
	return e.Err
}

// NewVectorRepositoryError creates a new vector repository error
func NewVectorRepositoryError(operation string, err error, message string) *VectorRepositoryError {
	return &VectorRepositoryError{
		Operation: operation,
		Err:       err,
		Message:   message,
	}
}

// CollectionNotFoundError reports a missing collection
func CollectionNotFoundError(name string) error {
	return NewVectorRepositoryError("get_collection", nil, "collection not found: "+name)
}
