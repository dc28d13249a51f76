package services

import (
	"context"
	"errors"
	"log"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/craigsakuma/travelroboto/internal/llm"
	"github.com/craigsakuma/travelroboto/internal/models"
)

// scriptedProvider returns its scripted errors in order, then succeeds
type scriptedProvider struct {
	name    string
	script  []error
	answer  string
	calls   int
	prompts []string
}

func (p *scriptedProvider) Name() string { return p.name }

func (p *scriptedProvider) Generate(ctx context.Context, prompt string, opts llm.GenerateOptions) (string, error) {
	p.prompts = append(p.prompts, prompt)
	p.calls++
	if p.calls <= len(p.script) {
		return "", p.script[p.calls-1]
	}
	return p.answer, nil
}

func (p *scriptedProvider) CreateEmbedding(ctx context.Context, texts []string) ([][]float32, error) {
	return nil, errors.New("not implemented")
}

func transientErr(provider string) error {
	return &llm.ProviderError{Provider: provider, StatusCode: 503, Transient: true, Err: errors.New("service unavailable")}
}

func fatalErr(provider string) error {
	return &llm.ProviderError{Provider: provider, StatusCode: 401, Transient: false, Err: errors.New("invalid API key")}
}

func fastRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:    3,
		InitialBackoff: time.Millisecond,
		MaxBackoff:     5 * time.Millisecond,
	}
}

func testLogger() *log.Logger {
	return log.New(os.Stdout, "[TEST] ", log.LstdFlags)
}

func testEnvelope() *models.PromptEnvelope {
	return &models.PromptEnvelope{Text: "the assembled prompt"}
}

func TestGenerate_SucceedsFirstAttempt(t *testing.T) {
	primary := &scriptedProvider{name: "openai", answer: "Check-in is at 3:00 PM."}
	gen := NewAnswerGenerator(primary, nil, llm.GenerateOptions{}, fastRetryConfig(), testLogger())

	text, err := gen.Generate(context.Background(), testEnvelope())

	require.NoError(t, err)
	assert.Equal(t, "Check-in is at 3:00 PM.", text)
	assert.Equal(t, 1, primary.calls)
	assert.Equal(t, "the assembled prompt", primary.prompts[0])
}

func TestGenerate_RetriesTransientThenSucceeds(t *testing.T) {
	primary := &scriptedProvider{
		name:   "openai",
		script: []error{transientErr("openai"), transientErr("openai")},
		answer: "eventually fine",
	}
	gen := NewAnswerGenerator(primary, nil, llm.GenerateOptions{}, fastRetryConfig(), testLogger())

	text, err := gen.Generate(context.Background(), testEnvelope())

	require.NoError(t, err)
	assert.Equal(t, "eventually fine", text)
	assert.Equal(t, 3, primary.calls)
}

func TestGenerate_FatalErrorStopsRetrying(t *testing.T) {
	primary := &scriptedProvider{
		name:   "openai",
		script: []error{fatalErr("openai"), fatalErr("openai"), fatalErr("openai")},
	}
	gen := NewAnswerGenerator(primary, nil, llm.GenerateOptions{}, fastRetryConfig(), testLogger())

	text, err := gen.Generate(context.Background(), testEnvelope())

	assert.Error(t, err)
	assert.Empty(t, text)
	// Fatal on the first attempt; no retries burned
	assert.Equal(t, 1, primary.calls)

	var genErr *models.GenerationError
	require.ErrorAs(t, err, &genErr)
	assert.Equal(t, "openai", genErr.Provider)
	assert.Equal(t, 1, genErr.Attempts)
}

func TestGenerate_ExhaustedRetriesYieldGenerationError(t *testing.T) {
	primary := &scriptedProvider{
		name:   "openai",
		script: []error{transientErr("openai"), transientErr("openai"), transientErr("openai")},
	}
	gen := NewAnswerGenerator(primary, nil, llm.GenerateOptions{}, fastRetryConfig(), testLogger())

	_, err := gen.Generate(context.Background(), testEnvelope())

	var genErr *models.GenerationError
	require.ErrorAs(t, err, &genErr)
	assert.Equal(t, "openai", genErr.Provider)
	assert.Equal(t, 3, genErr.Attempts)
	assert.Equal(t, 3, primary.calls)
}

func TestGenerate_FallbackAfterPrimaryExhausted(t *testing.T) {
	primary := &scriptedProvider{
		name:   "openai",
		script: []error{transientErr("openai"), transientErr("openai"), transientErr("openai")},
	}
	fallback := &scriptedProvider{name: "lmstudio", answer: "from the fallback"}
	gen := NewAnswerGenerator(primary, fallback, llm.GenerateOptions{}, fastRetryConfig(), testLogger())

	text, err := gen.Generate(context.Background(), testEnvelope())

	require.NoError(t, err)
	assert.Equal(t, "from the fallback", text)
	assert.Equal(t, 3, primary.calls)
	assert.Equal(t, 1, fallback.calls)
}

func TestGenerate_FallbackAfterPrimaryFatal(t *testing.T) {
	primary := &scriptedProvider{name: "openai", script: []error{fatalErr("openai")}}
	fallback := &scriptedProvider{name: "lmstudio", answer: "fallback answer"}
	gen := NewAnswerGenerator(primary, fallback, llm.GenerateOptions{}, fastRetryConfig(), testLogger())

	text, err := gen.Generate(context.Background(), testEnvelope())

	require.NoError(t, err)
	assert.Equal(t, "fallback answer", text)
	assert.Equal(t, 1, primary.calls)
}

func TestGenerate_BothProvidersFail(t *testing.T) {
	primary := &scriptedProvider{
		name:   "openai",
		script: []error{transientErr("openai"), transientErr("openai"), transientErr("openai")},
	}
	fallback := &scriptedProvider{
		name:   "lmstudio",
		script: []error{fatalErr("lmstudio")},
	}
	gen := NewAnswerGenerator(primary, fallback, llm.GenerateOptions{}, fastRetryConfig(), testLogger())

	_, err := gen.Generate(context.Background(), testEnvelope())

	var genErr *models.GenerationError
	require.ErrorAs(t, err, &genErr)
	assert.Equal(t, "lmstudio", genErr.Provider)
	assert.Equal(t, 4, genErr.Attempts)
}

func TestGenerate_CancelledContextSkipsFallback(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	primary := &scriptedProvider{
		name:   "openai",
		script: []error{errors.New("context canceled")},
	}
	fallback := &scriptedProvider{name: "lmstudio", answer: "never used"}
	gen := NewAnswerGenerator(primary, fallback, llm.GenerateOptions{}, fastRetryConfig(), testLogger())

	_, err := gen.Generate(ctx, testEnvelope())

	assert.Error(t, err)
	assert.Equal(t, 0, fallback.calls)
}

func TestBackoffDelay_DoublesAndCaps(t *testing.T) {
	gen := NewAnswerGenerator(&scriptedProvider{name: "p"}, nil, llm.GenerateOptions{}, RetryConfig{
		MaxAttempts:    5,
		InitialBackoff: 100 * time.Millisecond,
		MaxBackoff:     300 * time.Millisecond,
	}, testLogger())

	// Jitter adds up to 50% on top of the base delay
	d1 := gen.backoffDelay(1)
	assert.GreaterOrEqual(t, d1, 100*time.Millisecond)
	assert.LessOrEqual(t, d1, 150*time.Millisecond)

	d2 := gen.backoffDelay(2)
	assert.GreaterOrEqual(t, d2, 200*time.Millisecond)
	assert.LessOrEqual(t, d2, 300*time.Millisecond)

	d4 := gen.backoffDelay(4)
	assert.GreaterOrEqual(t, d4, 300*time.Millisecond)
	assert.LessOrEqual(t, d4, 450*time.Millisecond)
}
