package models

import "strconv"

// Role identifies who authored a conversation turn
type Role string

const (
	RoleHuman  Role = "human"
	RoleAI     Role = "ai"
	RoleSystem Role = "system"
)

// IsValid checks if the role is one of the known values
func (r Role) IsValid() bool {
	switch r {
	case RoleHuman, RoleAI, RoleSystem:
		return true
	default:
		return false
	}
}

// String returns the string representation of the role
func (r Role) String() string {
	return string(r)
}

// Turn represents a single prior exchange supplied by the client.
// Turns are never persisted server-side; the client carries the history.
type Turn struct {
	Role      Role   `json:"role"`                // "human", "ai", or "system"
	Content   string `json:"content"`             // The message text
	Timestamp string `json:"timestamp,omitempty"` // Optional RFC3339 stamp, caller bookkeeping only
}

const (
	// DefaultRetrievalLimit is used when a request does not set one
	DefaultRetrievalLimit = 5
	// MaxRetrievalLimit bounds how many chunks a request may ask for;
	// the retriever enforces the same cap
	MaxRetrievalLimit = 10
)

// AskRequest represents the incoming question request from the frontend
type AskRequest struct {
	Question       string `json:"question"`                  // The current user question
	History        []Turn `json:"history,omitempty"`         // Previous conversation turns, oldest first
	RetrievalLimit int    `json:"retrieval_limit,omitempty"` // Max chunks to retrieve (default 5, max 10)
}

// Citation points an answer back at the source chunk that justified it
type Citation struct {
	SourceName string `json:"source_name"`       // e.g. "hotel_confirmation.pdf"
	Locator    string `json:"locator"`           // e.g. "p.1"
	Excerpt    string `json:"excerpt,omitempty"` // Chunk text excerpt
}

// AskResponse represents the answer sent back to the frontend
type AskResponse struct {
	Answer         string     `json:"answer"`
	Citations      []Citation `json:"citations"` // Ordered by first reference in the answer
	LatencyMs      float64    `json:"latency_ms"`
	RetrievedCount int        `json:"retrieved_count"`
	Degraded       bool       `json:"degraded"`  // Retrieval failed, answered from history only
	Truncated      bool       `json:"truncated"` // Prompt exceeded budget and was trimmed
}

// ErrorResponse is the stable error payload returned for failed requests
type ErrorResponse struct {
	Error   string `json:"error"`   // Stable error code, e.g. "validation_error"
	Message string `json:"message"` // Human-readable detail
}

// Validate checks the request before any external call is made
func (r *AskRequest) Validate() error {
	if r.Question == "" {
		return &ValidationError{Field: "question", Message: "question is required"}
	}
	for _, turn := range r.History {
		if !turn.Role.IsValid() {
			return &ValidationError{Field: "history", Message: "unknown role: " + string(turn.Role)}
		}
	}
	if r.RetrievalLimit < 0 {
		return &ValidationError{Field: "retrieval_limit", Message: "retrieval limit cannot be negative"}
	}
	if r.RetrievalLimit > MaxRetrievalLimit {
		return &ValidationError{Field: "retrieval_limit", Message: "retrieval limit cannot exceed " + strconv.Itoa(MaxRetrievalLimit)}
	}
	return nil
}
