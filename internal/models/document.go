package models

import (
	"time"
)

// ItineraryDocument represents an ingested travel document (hotel confirmation,
// flight manifest, activity booking) tracked through the indexing pipeline.
type ItineraryDocument struct {
	ID         string                 `json:"document_id"`
	SourceName string                 `json:"source_name"` // Stable name cited back to users
	Kind       DocumentKind           `json:"kind"`
	ChunkCount int                    `json:"chunk_count"`
	Status     DocumentStatus         `json:"status"`
	CreatedAt  time.Time              `json:"created_at"`
	UpdatedAt  time.Time              `json:"updated_at"`
	Metadata   map[string]interface{} `json:"metadata,omitempty"`
}

// DocumentKind classifies the itinerary source
type DocumentKind string

const (
	DocumentKindHotel    DocumentKind = "hotel"
	DocumentKindFlight   DocumentKind = "flight"
	DocumentKindActivity DocumentKind = "activity"
	DocumentKindGeneric  DocumentKind = "generic"
)

// DocumentStatus represents the indexing status of a document
type DocumentStatus string

const (
	DocumentStatusPending   DocumentStatus = "pending"
	DocumentStatusIndexing  DocumentStatus = "indexing"
	DocumentStatusIndexed   DocumentStatus = "indexed"
	DocumentStatusFailed    DocumentStatus = "failed"
)

// IngestRequest is the payload for indexing extracted itinerary text.
// Text extraction (PDF/email parsing) happens upstream; this endpoint
// receives plain text with a stable source name.
type IngestRequest struct {
	SourceName string `json:"source_name"`
	Kind       string `json:"kind,omitempty"`
	Text       string `json:"text"`
}

// IngestResponse acknowledges an accepted ingestion job
type IngestResponse struct {
	JobID      string `json:"job_id"`
	DocumentID string `json:"document_id"`
	Status     string `json:"status"`
}

// Validate checks the ingestion request
func (r *IngestRequest) Validate() error {
	if r.SourceName == "" {
		return &ValidationError{Field: "source_name", Message: "source name is required"}
	}
	if r.Text == "" {
		return &ValidationError{Field: "text", Message: "text is required"}
	}
	if r.Kind != "" {
		switch DocumentKind(r.Kind) {
		case DocumentKindHotel, DocumentKindFlight, DocumentKindActivity, DocumentKindGeneric:
		default:
			return &ValidationError{Field: "kind", Message: "unknown document kind: " + r.Kind}
		}
	}
	return nil
}

// Validate checks the document record
func (d *ItineraryDocument) Validate() error {
	if d.ID == "" {
		return &ValidationError{Field: "document_id", Message: "document ID is required"}
	}
	if d.SourceName == "" {
		return &ValidationError{Field: "source_name", Message: "source name is required"}
	}
	if d.ChunkCount < 0 {
		return &ValidationError{Field: "chunk_count", Message: "chunk count cannot be negative"}
	}
	return nil
}
