package llm

import (
	"context"
	"errors"
	"net"
	"os"
	"strconv"
	"time"
)

// Client represents the supported LLM providers
type Client string

const (
	OpenAI   Client = "openai"
	LMStudio Client = "lmstudio"
)

// GenerateOptions controls a single generation call
type GenerateOptions struct {
	MaxTokens   int     // Maximum output length; 0 means provider default
	Temperature float64 // Sampling temperature
}

// Provider is the interface all LLM implementations must satisfy
type Provider interface {
	// Name identifies the provider for diagnostics and error reporting
	Name() string

	// Generate submits a prompt and returns the raw generated text
	Generate(ctx context.Context, prompt string, opts GenerateOptions) (string, error)

	// CreateEmbedding generates embedding vectors for the given texts
	CreateEmbedding(ctx context.Context, texts []string) ([][]float32, error)
}

// ProviderError carries enough detail to decide whether a call is retryable
type ProviderError struct {
	Provider   string
	StatusCode int // HTTP status from the provider, 0 for transport errors
	Transient  bool
	Err        error
}

func (e *ProviderError) Error() string {
	msg := e.Provider + " provider error"
	if e.StatusCode != 0 {
		msg += " (status " + strconv.Itoa(e.StatusCode) + ")"
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// IsTransient reports whether an error is worth retrying: timeouts, rate
// limits and 5xx-class provider responses. Context cancellation is never
// transient, the caller has given up.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe.Transient
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return netErr.Timeout()
	}

	return false
}

// retryableStatus classifies provider HTTP statuses worth retrying
func retryableStatus(code int) bool {
	return code == 429 || code >= 500
}

// NewProvider creates an LLM client based on the provider name
func NewProvider(client Client) (Provider, error) {
	switch client {
	case OpenAI:
		apiKey := os.Getenv("OPENAI_API_KEY")
		if apiKey == "" {
			return nil, errors.New("OPENAI_API_KEY not set")
		}
		model := os.Getenv("OPENAI_MODEL")
		if model == "" {
			model = "gpt-4o-mini"
		}
		return NewOpenAIClient(apiKey, model, "text-embedding-3-small", 0.2, 1024, 30*time.Second), nil
	case LMStudio:
		baseURL := os.Getenv("LMSTUDIO_BASE_URL")
		if baseURL == "" {
			baseURL = "http://localhost:1234/v1"
		}
		model := os.Getenv("LMSTUDIO_MODEL")
		if model == "" {
			model = "llama-3.2-3b-instruct"
		}
		return NewLMStudioClient(baseURL, model, 120*time.Second), nil
	default:
		return nil, errors.New("unsupported LLM provider: " + string(client))
	}
}
