package repositories

import (
	"context"
	"fmt"

	"github.com/craigsakuma/travelroboto/internal/db"
)

// ChromaVectorRepository implements VectorRepository using ChromaDB
type ChromaVectorRepository struct {
	client *db.ChromaDBClient
}

// NewChromaVectorRepository creates a new ChromaDB-backed vector repository
func NewChromaVectorRepository(client *db.ChromaDBClient) VectorRepository {
	return &ChromaVectorRepository{
		client: client,
	}
}

// EnsureCollection creates the collection if it does not exist
func (r *ChromaVectorRepository) EnsureCollection(ctx context.Context, name string) error {
	exists, err := r.CollectionExists(ctx, name)
	if err != nil {
		return NewVectorRepositoryError("ensure_collection", err, "")
	}
	if exists {
		return nil
	}

	if _, err := r.client.CreateCollection(ctx, name, nil); err != nil {
		return NewVectorRepositoryError("ensure_collection", err, "failed to create collection: "+name)
	}
	return nil
}

// CollectionExists checks if a collection exists
func (r *ChromaVectorRepository) CollectionExists(ctx context.Context, name string) (bool, error) {
	// Chroma returns an error for missing collections; treat any lookup
	// failure as absent rather than distinguishing 404 from transport faults
	if _, err := r.client.GetCollection(ctx, name); err != nil {
		return false, nil
	}
	return true, nil
}

// StoreChunks stores embedded chunks in a collection
func (r *ChromaVectorRepository) StoreChunks(ctx context.Context, collectionName string, chunks []*IndexedChunk) error {
	if len(chunks) == 0 {
		return nil
	}

	exists, err := r.CollectionExists(ctx, collectionName)
	if err != nil {
		return NewVectorRepositoryError("store_chunks", err, "")
	}
	if !exists {
		return CollectionNotFoundError(collectionName)
	}

	ids := make([]string, len(chunks))
	documents := make([]string, len(chunks))
	embeddings := make([][]float32, len(chunks))
	metadatas := make([]map[string]interface{}, len(chunks))

	for i, chunk := range chunks {
		ids[i] = chunk.ID
		documents[i] = chunk.Text
		embeddings[i] = chunk.Embedding
		metadatas[i] = map[string]interface{}{
			"document_id": chunk.DocumentID,
			"source_name": chunk.SourceName,
			"locator":     chunk.Locator,
			"chunk_index": chunk.ChunkIndex,
		}
	}

	if err := r.client.AddDocuments(ctx, collectionName, ids, documents, embeddings, metadatas); err != nil {
		return NewVectorRepositoryError("store_chunks", err, fmt.Sprintf("failed to store %d chunks", len(chunks)))
	}

	return nil
}

// SearchChunks searches for chunks similar to the query embedding
func (r *ChromaVectorRepository) SearchChunks(ctx context.Context, collectionName string, queryEmbedding []float32, topK int) ([]*SearchResult, error) {
	resp, err := r.client.Query(ctx, collectionName, queryEmbedding, topK, nil)
	if err != nil {
		return nil, NewVectorRepositoryError("search_chunks", err, "")
	}

	// Single query embedding, so only the first result set matters
	if len(resp.IDs) == 0 {
		return []*SearchResult{}, nil
	}

	ids := resp.IDs[0]
	results := make([]*SearchResult, 0, len(ids))
	for i := range ids {
		result := &SearchResult{
			ChunkID: ids[i],
		}
		if len(resp.Documents) > 0 && i < len(resp.Documents[0]) {
			result.Text = resp.Documents[0][i]
		}
		if len(resp.Distances) > 0 && i < len(resp.Distances[0]) {
			result.Distance = resp.Distances[0][i]
			// Cosine distance to similarity
			result.Score = 1 - resp.Distances[0][i]
		}
		if len(resp.Metadatas) > 0 && i < len(resp.Metadatas[0]) {
			meta := resp.Metadatas[0][i]
			if v, ok := meta["document_id"].(string); ok {
				result.DocumentID = v
			}
			if v, ok := meta["source_name"].(string); ok {
				result.SourceName = v
			}
			if v, ok := meta["locator"].(string); ok {
				result.Locator = v
			}
		}
		results = append(results, result)
	}

	return results, nil
}

// DeleteDocument removes all chunks belonging to a document
func (r *ChromaVectorRepository) DeleteDocument(ctx context.Context, collectionName string, documentID string) error {
	where := map[string]interface{}{
		"document_id": documentID,
	}
	if err := r.client.DeleteWhere(ctx, collectionName, where); err != nil {
		return NewVectorRepositoryError("delete_document", err, "failed to delete document: "+documentID)
	}
	return nil
}

// CountChunks returns the number of chunks in a collection
func (r *ChromaVectorRepository) CountChunks(ctx context.Context, collectionName string) (int, error) {
	count, err := r.client.CountCollection(ctx, collectionName)
	if err != nil {
		return 0, NewVectorRepositoryError("count_chunks", err, "")
	}
	return count, nil
}

// Ping verifies ChromaDB is reachable
func (r *ChromaVectorRepository) Ping(ctx context.Context) error {
	if err := r.client.Heartbeat(ctx); err != nil {
		return NewVectorRepositoryError("ping", err, "")
	}
	return nil
}
