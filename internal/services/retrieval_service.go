package services

import (
	"context"
	"log"
	"sort"
	"time"

	"github.com/craigsakuma/travelroboto/internal/models"
	"github.com/craigsakuma/travelroboto/internal/repositories"
)

// Limits live with the request model so validation and the retriever agree
const (
	DefaultRetrievalLimit = models.DefaultRetrievalLimit
	MaxRetrievalLimit     = models.MaxRetrievalLimit
)

// Embedder is the slice of the LLM capability the retriever needs
type Embedder interface {
	CreateEmbedding(ctx context.Context, texts []string) ([][]float32, error)
}

// RetrievalService issues similarity queries against the vector store and
// returns ranked, deduplicated context chunks.
type RetrievalService struct {
	embedder    Embedder
	vectorRepo  repositories.VectorRepository
	collection  string
	logger      *log.Logger
	maxAttempts int
	backoff     time.Duration
}

// NewRetrievalService creates a new retrieval service
func NewRetrievalService(embedder Embedder, vectorRepo repositories.VectorRepository, collection string, logger *log.Logger) *RetrievalService {
	return &RetrievalService{
		embedder:    embedder,
		vectorRepo:  vectorRepo,
		collection:  collection,
		logger:      logger,
		maxAttempts: 3,
		backoff:     200 * time.Millisecond,
	}
}

// Retrieve embeds the query, searches the collection and returns at most k
// chunks, highest relevance first. Zero hits is a valid result, not an error;
// a store that stays unreachable through retries surfaces as RetrievalError.
func (s *RetrievalService) Retrieve(ctx context.Context, query string, k int) ([]models.ContextChunk, error) {
	if k <= 0 {
		k = DefaultRetrievalLimit
	}
	if k > MaxRetrievalLimit {
		k = MaxRetrievalLimit
	}

	var (
		results []*repositories.SearchResult
		lastErr error
	)

	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		results, lastErr = s.search(ctx, query, k)
		if lastErr == nil {
			break
		}

		s.logger.Printf("Retrieval attempt %d/%d failed: %v", attempt, s.maxAttempts, lastErr)

		if ctx.Err() != nil {
			// Request cancelled; abandon rather than retry
			return nil, &models.RetrievalError{Query: query, Err: ctx.Err()}
		}
		if attempt < s.maxAttempts {
			if err := sleepContext(ctx, s.backoff*time.Duration(attempt)); err != nil {
				return nil, &models.RetrievalError{Query: query, Err: err}
			}
		}
	}

	if lastErr != nil {
		return nil, &models.RetrievalError{Query: query, Err: lastErr}
	}

	chunks := dedupeAndRank(results, k)
	s.logger.Printf("Retrieved %d chunks for query (raw hits: %d)", len(chunks), len(results))
	return chunks, nil
}

// search performs one embed-and-query round trip
func (s *RetrievalService) search(ctx context.Context, query string, k int) ([]*repositories.SearchResult, error) {
	embeddings, err := s.embedder.CreateEmbedding(ctx, []string{query})
	if err != nil {
		return nil, err
	}
	if len(embeddings) == 0 {
		return []*repositories.SearchResult{}, nil
	}

	// Over-fetch so post-dedup truncation still fills K
	results, err := s.vectorRepo.SearchChunks(ctx, s.collection, embeddings[0], k*2)
	if err != nil {
		return nil, err
	}
	return results, nil
}

// dedupeAndRank collapses duplicate chunk IDs keeping the highest score,
// sorts descending by score and truncates to k. Ties break on chunk ID so
// the ordering is deterministic.
func dedupeAndRank(results []*repositories.SearchResult, k int) []models.ContextChunk {
	best := make(map[string]*repositories.SearchResult, len(results))
	for _, r := range results {
		if existing, ok := best[r.ChunkID]; !ok || r.Score > existing.Score {
			best[r.ChunkID] = r
		}
	}

	deduped := make([]*repositories.SearchResult, 0, len(best))
	for _, r := range best {
		deduped = append(deduped, r)
	}

	sort.Slice(deduped, func(i, j int) bool {
		if deduped[i].Score != deduped[j].Score {
			return deduped[i].Score > deduped[j].Score
		}
		return deduped[i].ChunkID < deduped[j].ChunkID
	})

	if len(deduped) > k {
		deduped = deduped[:k]
	}

	chunks := make([]models.ContextChunk, len(deduped))
	for i, r := range deduped {
		chunks[i] = models.ContextChunk{
			ChunkID:        r.ChunkID,
			SourceName:     r.SourceName,
			Locator:        r.Locator,
			Text:           r.Text,
			RelevanceScore: r.Score,
		}
	}
	return chunks
}

// sleepContext waits for d or until the context is done
func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
