package services

import (
	"context"
	"fmt"
	"log"

	"github.com/google/uuid"

	"github.com/craigsakuma/travelroboto/internal/models"
	"github.com/craigsakuma/travelroboto/internal/repositories"
)

// IngestService accepts extracted itinerary text and queues it for async
// chunking, embedding and indexing. Text extraction (PDF/email parsing)
// happens upstream; this service receives plain text with a stable source
// name that later shows up verbatim in citations.
type IngestService struct {
	docRepo repositories.DocumentRepository
	jobRepo repositories.JobRepository
	logger  *log.Logger
}

// NewIngestService creates a new ingestion service
func NewIngestService(docRepo repositories.DocumentRepository, jobRepo repositories.JobRepository, logger *log.Logger) *IngestService {
	return &IngestService{
		docRepo: docRepo,
		jobRepo: jobRepo,
		logger:  logger,
	}
}

// SubmitDocument registers the document and enqueues an ingest job
func (s *IngestService) SubmitDocument(ctx context.Context, req *models.IngestRequest) (*models.IngestResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	kind := models.DocumentKind(req.Kind)
	if kind == "" {
		kind = models.DocumentKindGeneric
	}

	doc := &models.ItineraryDocument{
		ID:         uuid.NewString(),
		SourceName: req.SourceName,
		Kind:       kind,
		Status:     models.DocumentStatusPending,
	}
	if err := s.docRepo.CreateDocument(ctx, doc); err != nil {
		return nil, fmt.Errorf("failed to create document record: %w", err)
	}

	job := &models.Job{
		ID:         uuid.NewString(),
		Type:       models.JobTypeDocumentIngest,
		Status:     models.JobStatusPending,
		MaxRetries: 3,
		Payload: map[string]interface{}{
			"document_id": doc.ID,
			"source_name": doc.SourceName,
			"text":        req.Text,
		},
	}
	if err := s.jobRepo.CreateJob(ctx, job); err != nil {
		return nil, fmt.Errorf("failed to enqueue ingest job: %w", err)
	}

	s.logger.Printf("Queued ingest job %s for document %s (%s, %d bytes)",
		job.ID, doc.ID, doc.SourceName, len(req.Text))

	return &models.IngestResponse{
		JobID:      job.ID,
		DocumentID: doc.ID,
		Status:     string(job.Status),
	}, nil
}

// JobStatus returns the current state of an ingest job
func (s *IngestService) JobStatus(ctx context.Context, jobID string) (*models.Job, error) {
	return s.jobRepo.GetJob(ctx, jobID)
}

// ListDocuments returns all tracked itinerary documents
func (s *IngestService) ListDocuments(ctx context.Context) ([]*models.ItineraryDocument, error) {
	return s.docRepo.ListDocuments(ctx)
}

// DeleteDocument removes a document record; its chunks are removed from the
// vector store by the worker processing the delete job
func (s *IngestService) DeleteDocument(ctx context.Context, documentID string) error {
	if _, err := s.docRepo.GetDocument(ctx, documentID); err != nil {
		return err
	}

	job := &models.Job{
		ID:         uuid.NewString(),
		Type:       models.JobTypeDocumentDelete,
		Status:     models.JobStatusPending,
		MaxRetries: 3,
		Payload: map[string]interface{}{
			"document_id": documentID,
		},
	}
	if err := s.jobRepo.CreateJob(ctx, job); err != nil {
		return fmt.Errorf("failed to enqueue delete job: %w", err)
	}

	s.logger.Printf("Queued delete job %s for document %s", job.ID, documentID)
	return nil
}
