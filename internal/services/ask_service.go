package services

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/craigsakuma/travelroboto/internal/models"
)

// Retriever is the retrieval stage as the pipeline sees it
type Retriever interface {
	Retrieve(ctx context.Context, query string, k int) ([]models.ContextChunk, error)
}

// Generator is the generation stage as the pipeline sees it
type Generator interface {
	Generate(ctx context.Context, envelope *models.PromptEnvelope) (string, error)
}

// AskService runs the full question-answering pipeline. Every request gets
// its own pipeline execution over request-scoped data; nothing is shared or
// persisted between requests.
type AskService struct {
	retriever Retriever
	assembler *PromptAssembler
	generator Generator
	logger    *log.Logger
}

// NewAskService creates the pipeline service
func NewAskService(retriever Retriever, assembler *PromptAssembler, generator Generator, logger *log.Logger) *AskService {
	return &AskService{
		retriever: retriever,
		assembler: assembler,
		generator: generator,
		logger:    logger,
	}
}

// Ask answers a question grounded in retrieved itinerary context and the
// client-supplied conversation history. Retrieval failure degrades to a
// history-only answer; generation failure is fatal to the request.
func (s *AskService) Ask(ctx context.Context, req *models.AskRequest) (*models.AskResponse, error) {
	start := time.Now()

	if err := req.Validate(); err != nil {
		return nil, err
	}

	limit := req.RetrievalLimit
	if limit == 0 {
		limit = DefaultRetrievalLimit
	}

	query := BuildRetrievalQuery(req.Question, req.History)

	degraded := false
	chunks, err := s.retriever.Retrieve(ctx, query, limit)
	if err != nil {
		var retrievalErr *models.RetrievalError
		if !errors.As(err, &retrievalErr) {
			return nil, err
		}
		// Degraded mode: answer from history alone and say so in diagnostics
		s.logger.Printf("Retrieval unavailable, continuing without context: %v", err)
		degraded = true
		chunks = nil
	}

	envelope, err := s.assembler.Assemble(req.History, chunks, req.Question)
	if err != nil {
		return nil, err
	}

	text, err := s.generator.Generate(ctx, envelope)
	if err != nil {
		return nil, err
	}

	citations, exact := ResolveCitations(text, envelope.Chunks)
	if !exact {
		s.logger.Printf("No source tags in generated answer; citing all %d supplied chunks", len(citations))
	}

	response := &models.AskResponse{
		Answer:         StripSourceTags(text),
		Citations:      citations,
		LatencyMs:      float64(time.Since(start).Microseconds()) / 1000,
		RetrievedCount: len(chunks),
		Degraded:       degraded,
		Truncated:      envelope.Truncated,
	}

	s.logger.Printf("Ask completed: latency=%.1fms retrieved=%d citations=%d degraded=%v truncated=%v",
		response.LatencyMs, response.RetrievedCount, len(response.Citations), response.Degraded, response.Truncated)

	return response, nil
}
