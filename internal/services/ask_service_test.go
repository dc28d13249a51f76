package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/craigsakuma/travelroboto/internal/llm"
	"github.com/craigsakuma/travelroboto/internal/models"
)

// ============================================================================
// Stubs
// ============================================================================

// stubRetriever returns canned chunks or a canned error
type stubRetriever struct {
	chunks []models.ContextChunk
	err    error
	query  string
	limit  int
}

func (r *stubRetriever) Retrieve(ctx context.Context, query string, k int) ([]models.ContextChunk, error) {
	r.query = query
	r.limit = k
	if r.err != nil {
		return nil, r.err
	}
	return r.chunks, nil
}

// stubGenerator returns a canned answer and records the envelope it saw
type stubGenerator struct {
	answer   string
	err      error
	envelope *models.PromptEnvelope
}

func (g *stubGenerator) Generate(ctx context.Context, envelope *models.PromptEnvelope) (string, error) {
	g.envelope = envelope
	if g.err != nil {
		return "", g.err
	}
	return g.answer, nil
}

// ============================================================================
// Test Setup
// ============================================================================

func setupTestAskService(retriever Retriever, generator Generator) *AskService {
	assembler := NewPromptAssembler("", 0)
	return NewAskService(retriever, assembler, generator, testLogger())
}

func hotelChunk() models.ContextChunk {
	return models.ContextChunk{
		ChunkID:        "doc1_chunk_0",
		SourceName:     "hotel_confirmation.pdf",
		Locator:        "p.1",
		Text:           "Fairmont Banff Springs. Check-in time: 3:00 PM. Check-out: 11:00 AM.",
		RelevanceScore: 0.95,
	}
}

// ============================================================================
// Tests
// ============================================================================

// A question with history flows through retrieval, assembly, generation and
// citation resolution; the tagged source comes back as a citation and the tag
// itself never reaches the user.
func TestAsk_AnswerWithCitation(t *testing.T) {
	retriever := &stubRetriever{chunks: []models.ContextChunk{hotelChunk()}}
	generator := &stubGenerator{
		answer: "Check-in at the Fairmont is at 3:00 PM [source: hotel_confirmation.pdf @ p.1].",
	}
	service := setupTestAskService(retriever, generator)

	resp, err := service.Ask(context.Background(), &models.AskRequest{
		Question: "What time can we check in?",
		History: []models.Turn{
			{Role: models.RoleHuman, Content: "We land in Calgary around noon."},
			{Role: models.RoleAI, Content: "Plenty of time to reach the hotel in Banff."},
		},
	})

	require.NoError(t, err)
	assert.Equal(t, "Check-in at the Fairmont is at 3:00 PM.", resp.Answer)
	assert.NotContains(t, resp.Answer, "[source:")

	require.Len(t, resp.Citations, 1)
	assert.Equal(t, "hotel_confirmation.pdf", resp.Citations[0].SourceName)
	assert.Equal(t, "p.1", resp.Citations[0].Locator)
	assert.Contains(t, resp.Citations[0].Excerpt, "3:00 PM")

	assert.Equal(t, 1, resp.RetrievedCount)
	assert.False(t, resp.Degraded)
	assert.False(t, resp.Truncated)
	assert.GreaterOrEqual(t, resp.LatencyMs, 0.0)

	// The envelope handed to the generator carried the retrieved context
	assert.Contains(t, generator.envelope.Text, "Check-in time: 3:00 PM")
	assert.Contains(t, generator.envelope.Text, "Conversation so far:")
}

// Zero retrieval hits is a valid outcome: the model still answers, with no
// citations and without the degraded flag.
func TestAsk_EmptyRetrievalStillAnswers(t *testing.T) {
	retriever := &stubRetriever{chunks: nil}
	generator := &stubGenerator{
		answer: "I could not find that in the itinerary. Could you share more detail?",
	}
	service := setupTestAskService(retriever, generator)

	resp, err := service.Ask(context.Background(), &models.AskRequest{
		Question: "Where is the karaoke bar?",
	})

	require.NoError(t, err)
	assert.NotEmpty(t, resp.Answer)
	assert.Empty(t, resp.Citations)
	assert.Equal(t, 0, resp.RetrievedCount)
	assert.False(t, resp.Degraded)
	assert.NotContains(t, generator.envelope.Text, "Itinerary context:")
}

// An unreachable vector store is absorbed: the pipeline answers from history
// alone and flags the response as degraded.
func TestAsk_RetrievalFailureDegrades(t *testing.T) {
	retriever := &stubRetriever{
		err: &models.RetrievalError{Query: "q", Err: errors.New("connection refused")},
	}
	generator := &stubGenerator{answer: "Answering from what we discussed earlier."}
	service := setupTestAskService(retriever, generator)

	resp, err := service.Ask(context.Background(), &models.AskRequest{
		Question: "What time is dinner?",
		History: []models.Turn{
			{Role: models.RoleHuman, Content: "Dinner is at the Bison, right?"},
		},
	})

	require.NoError(t, err)
	assert.True(t, resp.Degraded)
	assert.Equal(t, 0, resp.RetrievedCount)
	assert.Empty(t, resp.Citations)
	assert.NotContains(t, generator.envelope.Text, "Itinerary context:")
}

// Generation failure after all retries and fallback is fatal to the request
func TestAsk_GenerationFailureIsFatal(t *testing.T) {
	retriever := &stubRetriever{chunks: []models.ContextChunk{hotelChunk()}}
	provider := &scriptedProvider{
		name:   "openai",
		script: []error{transientErr("openai"), transientErr("openai"), transientErr("openai")},
	}
	generator := NewAnswerGenerator(provider, nil, llm.GenerateOptions{}, fastRetryConfig(), testLogger())
	service := setupTestAskService(retriever, generator)

	resp, err := service.Ask(context.Background(), &models.AskRequest{
		Question: "What time can we check in?",
	})

	assert.Nil(t, resp)

	var genErr *models.GenerationError
	require.ErrorAs(t, err, &genErr)
	assert.Equal(t, 3, genErr.Attempts)
}

func TestAsk_ValidationRejectsEmptyQuestion(t *testing.T) {
	service := setupTestAskService(&stubRetriever{}, &stubGenerator{answer: "unused"})

	resp, err := service.Ask(context.Background(), &models.AskRequest{Question: ""})

	assert.Nil(t, resp)

	var validationErr *models.ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, "question", validationErr.Field)
}

func TestAsk_ValidationRejectsUnknownRole(t *testing.T) {
	service := setupTestAskService(&stubRetriever{}, &stubGenerator{answer: "unused"})

	resp, err := service.Ask(context.Background(), &models.AskRequest{
		Question: "hello?",
		History:  []models.Turn{{Role: models.Role("narrator"), Content: "hi"}},
	})

	assert.Nil(t, resp)

	var validationErr *models.ValidationError
	require.ErrorAs(t, err, &validationErr)
}

func TestAsk_DefaultsRetrievalLimit(t *testing.T) {
	retriever := &stubRetriever{}
	service := setupTestAskService(retriever, &stubGenerator{answer: "ok"})

	_, err := service.Ask(context.Background(), &models.AskRequest{Question: "anything?"})

	require.NoError(t, err)
	assert.Equal(t, DefaultRetrievalLimit, retriever.limit)
}

func TestAsk_FallbackCitationsWhenModelOmitsTags(t *testing.T) {
	retriever := &stubRetriever{chunks: []models.ContextChunk{hotelChunk()}}
	generator := &stubGenerator{answer: "Check-in is at 3:00 PM."}
	service := setupTestAskService(retriever, generator)

	resp, err := service.Ask(context.Background(), &models.AskRequest{
		Question: "What time can we check in?",
	})

	require.NoError(t, err)
	// No tags in the answer: every supplied chunk is cited instead
	require.Len(t, resp.Citations, 1)
	assert.Equal(t, "hotel_confirmation.pdf", resp.Citations[0].SourceName)
}

func TestAsk_NonRetrievalErrorPropagates(t *testing.T) {
	retriever := &stubRetriever{err: errors.New("programming error")}
	service := setupTestAskService(retriever, &stubGenerator{answer: "unused"})

	resp, err := service.Ask(context.Background(), &models.AskRequest{Question: "hm?"})

	assert.Nil(t, resp)
	assert.EqualError(t, err, "programming error")
}
