package repositories

import (
	"context"
	"errors"

	"github.com/craigsakuma/travelroboto/internal/models"
)

// ErrDocumentNotFound marks missing document records so callers can match with errors.Is
var ErrDocumentNotFound = errors.New("document not found")

// DocumentRepository tracks itinerary document records through ingestion
type DocumentRepository interface {
	// CreateDocument stores a new document record
	CreateDocument(ctx context.Context, doc *models.ItineraryDocument) error

	// GetDocument retrieves a document by ID
	GetDocument(ctx context.Context, documentID string) (*models.ItineraryDocument, error)

	// UpdateDocument persists document state changes
	UpdateDocument(ctx context.Context, doc *models.ItineraryDocument) error

	// DeleteDocument removes a document record
	DeleteDocument(ctx context.Context, documentID string) error

	// ListDocuments returns all tracked documents
	ListDocuments(ctx context.Context) ([]*models.ItineraryDocument, error)
}

// DocumentRepositoryError represents errors from the document repository
type DocumentRepositoryError struct {
	Operation  string
	DocumentID string
	Err        error
	Message    string
}

func (e *DocumentRepositoryError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	msg := e.Operation
	if e.DocumentID != "" {
		msg += " (document " + e.DocumentID + ")"
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *DocumentRepositoryError) Unwrap() error {
	return e.Err
}

// NewDocumentRepositoryError creates a new document repository error
func NewDocumentRepositoryError(operation, documentID string, err error, message string) *DocumentRepositoryError {
	return &DocumentRepositoryError{
		Operation:  operation,
		DocumentID: documentID,
		Err:        err,
		Message:    message,
	}
}

// DocumentNotFoundError reports a missing document record
func DocumentNotFoundError(documentID string) error {
	return NewDocumentRepositoryError("get_document", documentID, ErrDocumentNotFound, "document not found: "+documentID)
}
