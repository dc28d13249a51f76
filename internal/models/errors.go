package models

import "strconv"

// Stable error codes surfaced to API clients
const (
	ErrCodeValidation = "validation_error"
	ErrCodeRetrieval  = "retrieval_failed"
	ErrCodeGeneration = "generation_failed"
	ErrCodeInternal   = "internal_error"
)

// ValidationError represents malformed input rejected before any external call
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

// RetrievalError signals the vector store was unusable after retries.
// It is absorbed by the pipeline (degraded mode), never surfaced directly.
type RetrievalError struct {
	Query string
	Err   error
}

func (e *RetrievalError) Error() string {
	msg := "retrieval failed for query " + strconv.Quote(truncate(e.Query, 60))
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *RetrievalError) Unwrap() error {
	return e.Err
}

// GenerationError signals the LLM capability was unusable after retries and
// fallback. Fatal to the request; surfaced with a 5xx-class status.
type GenerationError struct {
	Provider string
	Attempts int
	Err      error
}

func (e *GenerationError) Error() string {
	msg := "generation failed after " + strconv.Itoa(e.Attempts) + " attempts"
	if e.Provider != "" {
		msg += " (provider: " + e.Provider + ")"
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
