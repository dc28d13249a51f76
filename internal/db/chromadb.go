package db

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// ChromaDBClient wraps HTTP calls to the ChromaDB v2 API.
// The official Go client (v0.3.0-alpha.1) has v1/v2 API compatibility issues,
// so the production path talks to the REST API directly.
type ChromaDBClient struct {
	baseURL    string
	rootURL    string
	httpClient *http.Client
}

// ChromaDBConfig holds configuration for the ChromaDB connection
type ChromaDBConfig struct {
	Host     string
	Port     int
	Tenant   string // default: "default_tenant"
	Database string // default: "default_database"
	Timeout  time.Duration
}

// Collection represents a ChromaDB collection
type Collection struct {
	ID       string                 `json:"id"`
	Name     string                 `json:"name"`
	Metadata map[string]interface{} `json:"metadata"`
}

// QueryResponse represents the response from a similarity query.
// Outer slices are per query embedding, inner slices per result.
type QueryResponse struct {
	IDs       [][]string                 `json:"ids"`
	Documents [][]string                 `json:"documents"`
	Metadatas [][]map[string]interface{} `json:"metadatas"`
	Distances [][]float32                `json:"distances"`
}

// NewChromaDBClient creates a new ChromaDB client with v2 API support
func NewChromaDBClient(config ChromaDBConfig) *ChromaDBClient {
	if config.Tenant == "" {
		config.Tenant = "default_tenant"
	}
	if config.Database == "" {
		config.Database = "default_database"
	}
	if config.Timeout == 0 {
		config.Timeout = 30 * time.Second
	}

	rootURL := fmt.Sprintf("http://%s:%d", config.Host, config.Port)
	baseURL := fmt.Sprintf("%s/api/v2/tenants/%s/databases/%s", rootURL, config.Tenant, config.Database)

	return &ChromaDBClient{
		baseURL: baseURL,
		rootURL: rootURL,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
	}
}

// do issues a request and decodes the JSON response into out (if non-nil)
func (c *ChromaDBClient) do(ctx context.Context, method, url string, payload interface{}, out interface{}) error {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("%s %s failed (status %d): %s", method, url, resp.StatusCode, string(respBody))
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}

// Heartbeat checks if ChromaDB is alive
func (c *ChromaDBClient) Heartbeat(ctx context.Context) error {
	return c.do(ctx, "GET", c.rootURL+"/api/v2/heartbeat", nil, nil)
}

// GetCollection retrieves a collection by name
func (c *ChromaDBClient) GetCollection(ctx context.Context, name string) (*Collection, error) {
	var collection Collection
	url := fmt.Sprintf("%s/collections/%s", c.baseURL, name)
	if err := c.do(ctx, "GET", url, nil, &collection); err != nil {
		return nil, err
	}
	return &collection, nil
}

// CreateCollection creates a new collection with cosine similarity by default
func (c *ChromaDBClient) CreateCollection(ctx context.Context, name string, metadata map[string]interface{}) (*Collection, error) {
	if metadata == nil {
		metadata = map[string]interface{}{
			"hnsw:space": "cosine",
		}
	}

	payload := map[string]interface{}{
		"name":     name,
		"metadata": metadata,
	}

	var collection Collection
	if err := c.do(ctx, "POST", c.baseURL+"/collections", payload, &collection); err != nil {
		return nil, err
	}
	return &collection, nil
}

// DeleteCollection deletes a collection
func (c *ChromaDBClient) DeleteCollection(ctx context.Context, name string) error {
	url := fmt.Sprintf("%s/collections/%s", c.baseURL, name)
	return c.do(ctx, "DELETE", url, nil, nil)
}

// CountCollection returns the number of chunks stored in a collection
func (c *ChromaDBClient) CountCollection(ctx context.Context, name string) (int, error) {
	collection, err := c.GetCollection(ctx, name)
	if err != nil {
		return 0, fmt.Errorf("failed to get collection: %w", err)
	}

	var count int
	url := fmt.Sprintf("%s/collections/%s/count", c.baseURL, collection.ID)
	if err := c.do(ctx, "GET", url, nil, &count); err != nil {
		return 0, err
	}
	return count, nil
}

// AddDocuments adds embedded chunks to a collection
func (c *ChromaDBClient) AddDocuments(ctx context.Context, collectionName string, ids []string, documents []string, embeddings [][]float32, metadatas []map[string]interface{}) error {
	collection, err := c.GetCollection(ctx, collectionName)
	if err != nil {
		return fmt.Errorf("failed to get collection: %w", err)
	}

	payload := map[string]interface{}{
		"ids":        ids,
		"documents":  documents,
		"embeddings": embeddings,
	}
	if metadatas != nil {
		payload["metadatas"] = metadatas
	}

	url := fmt.Sprintf("%s/collections/%s/add", c.baseURL, collection.ID)
	return c.do(ctx, "POST", url, payload, nil)
}

// Query searches for chunks similar to the query embedding
func (c *ChromaDBClient) Query(ctx context.Context, collectionName string, queryEmbedding []float32, nResults int, where map[string]interface{}) (*QueryResponse, error) {
	collection, err := c.GetCollection(ctx, collectionName)
	if err != nil {
		return nil, fmt.Errorf("failed to get collection: %w", err)
	}

	payload := map[string]interface{}{
		"query_embeddings": [][]float32{queryEmbedding},
		"n_results":        nResults,
		"include":          []string{"documents", "metadatas", "distances"},
	}
	if where != nil {
		payload["where"] = where
	}

	var queryResp QueryResponse
	url := fmt.Sprintf("%s/collections/%s/query", c.baseURL, collection.ID)
	if err := c.do(ctx, "POST", url, payload, &queryResp); err != nil {
		return nil, err
	}
	return &queryResp, nil
}

// DeleteWhere deletes chunks matching a metadata filter
func (c *ChromaDBClient) DeleteWhere(ctx context.Context, collectionName string, where map[string]interface{}) error {
	collection, err := c.GetCollection(ctx, collectionName)
	if err != nil {
		return fmt.Errorf("failed to get collection: %w", err)
	}

	payload := map[string]interface{}{
		"where": where,
	}

	url := fmt.Sprintf("%s/collections/%s/delete", c.baseURL, collection.ID)
	return c.do(ctx, "POST", url, payload, nil)
}
