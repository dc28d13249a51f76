package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// LMStudioClient implements Provider against a local LM Studio instance,
// which exposes an OpenAI-compatible API on localhost.
type LMStudioClient struct {
	baseURL    string
	model      string
	httpClient *http.Client
}

// NewLMStudioClient creates a new LM Studio client
func NewLMStudioClient(baseURL, model string, timeout time.Duration) *LMStudioClient {
	return &LMStudioClient{
		baseURL: baseURL,
		model:   model,
		httpClient: &http.Client{
			Timeout: timeout, // local models can be slow
		},
	}
}

// Name identifies the provider
func (c *LMStudioClient) Name() string {
	return string(LMStudio)
}

// Generate submits the prompt to the local chat completions endpoint
func (c *LMStudioClient) Generate(ctx context.Context, prompt string, opts GenerateOptions) (string, error) {
	temperature := opts.Temperature
	if temperature == 0 {
		temperature = 0.2
	}
	maxTokens := opts.MaxTokens
	if maxTokens == 0 {
		maxTokens = -1 // LM Studio convention for "no limit"
	}

	reqBody := chatRequest{
		Model:       c.model,
		Messages:    []chatMessage{{Role: "user", Content: prompt}},
		Temperature: temperature,
		MaxTokens:   maxTokens,
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/chat/completions", bytes.NewBuffer(jsonBody))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", &ProviderError{Provider: c.Name(), Transient: true, Err: fmt.Errorf("LM Studio not reachable: %w", err)}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &ProviderError{Provider: c.Name(), Transient: true, Err: err}
	}

	if resp.StatusCode != http.StatusOK {
		return "", &ProviderError{
			Provider:   c.Name(),
			StatusCode: resp.StatusCode,
			Transient:  retryableStatus(resp.StatusCode),
			Err:        fmt.Errorf("LM Studio returned status %d: %s", resp.StatusCode, truncateBody(body)),
		}
	}

	var completion chatResponse
	if err := json.Unmarshal(body, &completion); err != nil {
		return "", fmt.Errorf("failed to parse response: %w", err)
	}

	if len(completion.Choices) == 0 {
		return "", &ProviderError{Provider: c.Name(), Err: fmt.Errorf("no response from LM Studio")}
	}

	return completion.Choices[0].Message.Content, nil
}

// CreateEmbedding generates embeddings through the local embeddings endpoint
func (c *LMStudioClient) CreateEmbedding(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	requestBody := map[string]interface{}{
		"model": c.model,
		"input": texts,
	}

	jsonData, err := json.Marshal(requestBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/embeddings", bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &ProviderError{Provider: c.Name(), Transient: true, Err: fmt.Errorf("LM Studio not reachable: %w", err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, &ProviderError{
			Provider:   c.Name(),
			StatusCode: resp.StatusCode,
			Transient:  retryableStatus(resp.StatusCode),
			Err:        fmt.Errorf("LM Studio returned status %d: %s", resp.StatusCode, truncateBody(body)),
		}
	}

	var embResp struct {
		Data []struct {
			Embedding []float32 `json:"embedding"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&embResp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	vecs := make([][]float32, len(embResp.Data))
	for i, d := range embResp.Data {
		vecs[i] = d.Embedding
	}
	return vecs, nil
}

// HealthCheck verifies LM Studio is running and has a model loaded
func (c *LMStudioClient) HealthCheck(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, "GET", c.baseURL+"/models", nil)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("LM Studio not reachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("LM Studio returned status %d", resp.StatusCode)
	}

	return nil
}
