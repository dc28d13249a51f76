package services

import (
	"context"
	"log"
	"math/rand"
	"time"

	"github.com/craigsakuma/travelroboto/internal/llm"
	"github.com/craigsakuma/travelroboto/internal/models"
)

// generationState tracks one generation cycle through its lifecycle:
// Pending -> Invoking -> {Succeeded, RetryableFailure, FatalFailure}.
// RetryableFailure loops back to Invoking until attempts run out.
type generationState int

const (
	statePending generationState = iota
	stateInvoking
	stateSucceeded
	stateRetryableFailure
	stateFatalFailure
)

func (s generationState) String() string {
	switch s {
	case statePending:
		return "pending"
	case stateInvoking:
		return "invoking"
	case stateSucceeded:
		return "succeeded"
	case stateRetryableFailure:
		return "retryable_failure"
	case stateFatalFailure:
		return "fatal_failure"
	default:
		return "unknown"
	}
}

// RetryConfig controls the generation retry policy
type RetryConfig struct {
	MaxAttempts    int           // Attempts per provider before giving up
	InitialBackoff time.Duration // First retry delay; doubles each attempt
	MaxBackoff     time.Duration // Backoff ceiling
}

// DefaultRetryConfig returns the production retry policy
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:    3,
		InitialBackoff: 500 * time.Millisecond,
		MaxBackoff:     8 * time.Second,
	}
}

// AnswerGenerator invokes the LLM capability with retry, backoff and an
// optional fallback provider. A fatal failure on the primary triggers one
// full retry cycle against the fallback before the request is given up.
type AnswerGenerator struct {
	primary  llm.Provider
	fallback llm.Provider // may be nil
	opts     llm.GenerateOptions
	retry    RetryConfig
	logger   *log.Logger
}

// NewAnswerGenerator creates a generator; fallback may be nil
func NewAnswerGenerator(primary, fallback llm.Provider, opts llm.GenerateOptions, retry RetryConfig, logger *log.Logger) *AnswerGenerator {
	if retry.MaxAttempts <= 0 {
		retry = DefaultRetryConfig()
	}
	return &AnswerGenerator{
		primary:  primary,
		fallback: fallback,
		opts:     opts,
		retry:    retry,
		logger:   logger,
	}
}

// Generate submits the envelope and returns the raw generated text. Plain
// text is the baseline contract; no structured output is required of the
// provider. Exhausting all providers yields a GenerationError.
func (g *AnswerGenerator) Generate(ctx context.Context, envelope *models.PromptEnvelope) (string, error) {
	text, attempts, err := g.runCycle(ctx, g.primary, envelope.Text)
	if err == nil {
		return text, nil
	}

	if g.fallback != nil && ctx.Err() == nil {
		g.logger.Printf("Primary provider %s exhausted (%d attempts), trying fallback %s: %v",
			g.primary.Name(), attempts, g.fallback.Name(), err)

		fbText, fbAttempts, fbErr := g.runCycle(ctx, g.fallback, envelope.Text)
		if fbErr == nil {
			return fbText, nil
		}
		return "", &models.GenerationError{
			Provider: g.fallback.Name(),
			Attempts: attempts + fbAttempts,
			Err:      fbErr,
		}
	}

	return "", &models.GenerationError{
		Provider: g.primary.Name(),
		Attempts: attempts,
		Err:      err,
	}
}

// runCycle drives the attempt state machine against one provider
func (g *AnswerGenerator) runCycle(ctx context.Context, provider llm.Provider, prompt string) (string, int, error) {
	state := statePending
	var lastErr error

	for attempt := 1; attempt <= g.retry.MaxAttempts; attempt++ {
		state = stateInvoking
		text, err := provider.Generate(ctx, prompt, g.opts)
		if err == nil {
			return text, attempt, nil
		}
		lastErr = err

		if !llm.IsTransient(err) {
			state = stateFatalFailure
			g.logger.Printf("Generation attempt %d on %s: %s: %v", attempt, provider.Name(), state, err)
			return "", attempt, lastErr
		}

		state = stateRetryableFailure
		g.logger.Printf("Generation attempt %d/%d on %s: %s: %v",
			attempt, g.retry.MaxAttempts, provider.Name(), state, err)

		if attempt < g.retry.MaxAttempts {
			if err := sleepContext(ctx, g.backoffDelay(attempt)); err != nil {
				return "", attempt, lastErr
			}
		}
	}

	// Attempts exhausted: retryable failures harden into a fatal one
	state = stateFatalFailure
	g.logger.Printf("Provider %s: %s after %d attempts", provider.Name(), state, g.retry.MaxAttempts)
	return "", g.retry.MaxAttempts, lastErr
}

// backoffDelay doubles the initial delay per attempt, capped, with up to 50%
// jitter so concurrent pipelines don't hammer a recovering provider in step
func (g *AnswerGenerator) backoffDelay(attempt int) time.Duration {
	delay := g.retry.InitialBackoff << (attempt - 1)
	if delay > g.retry.MaxBackoff {
		delay = g.retry.MaxBackoff
	}
	jitter := time.Duration(rand.Int63n(int64(delay)/2 + 1))
	return delay + jitter
}
