package workers

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/craigsakuma/travelroboto/internal/models"
	"github.com/craigsakuma/travelroboto/internal/repositories"
	"github.com/craigsakuma/travelroboto/internal/services"
)

// Embedder is the slice of the LLM capability the worker needs
type Embedder interface {
	CreateEmbedding(ctx context.Context, texts []string) ([][]float32, error)
}

// IngestWorker drains the job queue: chunking, embedding and indexing
// itinerary documents, and removing deleted ones from the vector store.
type IngestWorker struct {
	*BaseWorker
	jobRepo    repositories.JobRepository
	docRepo    repositories.DocumentRepository
	vectorRepo repositories.VectorRepository
	embedder   Embedder
	collection string
	logger     *log.Logger
}

// IngestWorkerConfig bundles the worker's dependencies
type IngestWorkerConfig struct {
	WorkerConfig WorkerConfig
	JobRepo      repositories.JobRepository
	DocRepo      repositories.DocumentRepository
	VectorRepo   repositories.VectorRepository
	Embedder     Embedder
	Collection   string
	Logger       *log.Logger
}

// NewIngestWorker creates a new ingest worker
func NewIngestWorker(config IngestWorkerConfig) *IngestWorker {
	return &IngestWorker{
		BaseWorker: NewBaseWorker(config.WorkerConfig),
		jobRepo:    config.JobRepo,
		docRepo:    config.DocRepo,
		vectorRepo: config.VectorRepo,
		embedder:   config.Embedder,
		collection: config.Collection,
		logger:     config.Logger,
	}
}

// Start begins draining the job queue until the context is cancelled
func (w *IngestWorker) Start(ctx context.Context) error {
	if w.IsRunning() {
		return NewWorkerError(w.Name(), "start", nil, "worker already running")
	}

	w.setRunning(true)
	w.logger.Printf("Starting ingest worker %s (concurrency: %d)", w.Name(), w.config.Concurrency)

	for i := 0; i < w.config.Concurrency; i++ {
		go w.pollLoop(ctx, i)
	}
	return nil
}

// Stop marks the worker stopped; poll loops exit with the context
func (w *IngestWorker) Stop() {
	w.setRunning(false)
}

func (w *IngestWorker) pollLoop(ctx context.Context, slot int) {
	ticker := time.NewTicker(w.config.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.setRunning(false)
			return
		case <-ticker.C:
			if !w.IsRunning() {
				return
			}
			w.processNext(ctx, slot)
		}
	}
}

// processNext claims one job from the queue and runs it to completion
func (w *IngestWorker) processNext(ctx context.Context, slot int) {
	jobID, err := w.jobRepo.DequeueJob(ctx)
	if err != nil {
		w.logger.Printf("Worker %s[%d]: dequeue failed: %v", w.Name(), slot, err)
		return
	}
	if jobID == "" {
		return
	}

	job, err := w.jobRepo.GetJob(ctx, jobID)
	if err != nil {
		w.logger.Printf("Worker %s[%d]: failed to load job %s: %v", w.Name(), slot, jobID, err)
		return
	}

	job.MarkStarted(fmt.Sprintf("%s[%d]", w.Name(), slot))
	if err := w.jobRepo.UpdateJob(ctx, job); err != nil {
		w.logger.Printf("Worker %s[%d]: failed to mark job %s started: %v", w.Name(), slot, jobID, err)
		return
	}

	var procErr error
	switch job.Type {
	case models.JobTypeDocumentIngest:
		procErr = w.processIngest(ctx, job)
	case models.JobTypeDocumentDelete:
		procErr = w.processDelete(ctx, job)
	default:
		procErr = fmt.Errorf("unknown job type: %s", job.Type)
	}

	if procErr != nil {
		w.logger.Printf("Worker %s[%d]: job %s failed: %v", w.Name(), slot, job.ID, procErr)
		job.MarkFailed(procErr)
		// Persist the retrying status before the job ID reappears on the
		// queue, so another poll slot never loads a stale processing record
		if err := w.jobRepo.UpdateJob(ctx, job); err != nil {
			w.logger.Printf("Worker %s[%d]: failed to persist job %s failure: %v", w.Name(), slot, job.ID, err)
		}
		if job.Status == models.JobStatusRetrying {
			// Delay the requeue without holding the poll slot
			jobID := job.ID
			time.AfterFunc(w.config.RetryDelay, func() {
				if err := w.jobRepo.RequeueJob(ctx, jobID); err != nil {
					w.logger.Printf("Worker %s[%d]: requeue of job %s failed: %v", w.Name(), slot, jobID, err)
				}
			})
		}
		w.recordJob(false)
		return
	}

	if err := w.jobRepo.UpdateJob(ctx, job); err != nil {
		w.logger.Printf("Worker %s[%d]: failed to persist job %s result: %v", w.Name(), slot, job.ID, err)
	}
	w.recordJob(true)
}

// processIngest chunks, embeds and indexes one itinerary document
func (w *IngestWorker) processIngest(ctx context.Context, job *models.Job) error {
	documentID, _ := job.Payload["document_id"].(string)
	sourceName, _ := job.Payload["source_name"].(string)
	text, _ := job.Payload["text"].(string)
	if documentID == "" || sourceName == "" || text == "" {
		return fmt.Errorf("ingest job %s has incomplete payload", job.ID)
	}

	doc, err := w.docRepo.GetDocument(ctx, documentID)
	if err != nil {
		return err
	}
	doc.Status = models.DocumentStatusIndexing
	if err := w.docRepo.UpdateDocument(ctx, doc); err != nil {
		return err
	}

	textChunks := services.ChunkText(text, services.DefaultChunkSize, services.DefaultChunkOverlap)
	if len(textChunks) == 0 {
		return fmt.Errorf("document %s produced no chunks", documentID)
	}

	texts := make([]string, len(textChunks))
	for i, tc := range textChunks {
		texts[i] = tc.Text
	}

	embeddings, err := w.embedder.CreateEmbedding(ctx, texts)
	if err != nil {
		return fmt.Errorf("embedding failed: %w", err)
	}
	if len(embeddings) != len(textChunks) {
		return fmt.Errorf("embedding count mismatch: got %d for %d chunks", len(embeddings), len(textChunks))
	}

	indexed := make([]*repositories.IndexedChunk, len(textChunks))
	for i, tc := range textChunks {
		indexed[i] = &repositories.IndexedChunk{
			ID:         fmt.Sprintf("%s_chunk_%d", documentID, i),
			DocumentID: documentID,
			SourceName: sourceName,
			Locator:    tc.Locator,
			Text:       tc.Text,
			Embedding:  embeddings[i],
			ChunkIndex: i,
		}
	}

	if err := w.vectorRepo.EnsureCollection(ctx, w.collection); err != nil {
		return err
	}
	if err := w.vectorRepo.StoreChunks(ctx, w.collection, indexed); err != nil {
		return err
	}

	doc.Status = models.DocumentStatusIndexed
	doc.ChunkCount = len(indexed)
	if err := w.docRepo.UpdateDocument(ctx, doc); err != nil {
		return err
	}

	job.MarkCompleted(map[string]interface{}{
		"chunk_count": len(indexed),
	})
	w.logger.Printf("Indexed document %s (%s): %d chunks", documentID, sourceName, len(indexed))
	return nil
}

// processDelete removes a document's chunks and its record
func (w *IngestWorker) processDelete(ctx context.Context, job *models.Job) error {
	documentID, _ := job.Payload["document_id"].(string)
	if documentID == "" {
		return fmt.Errorf("delete job %s has no document_id", job.ID)
	}

	if err := w.vectorRepo.DeleteDocument(ctx, w.collection, documentID); err != nil {
		return err
	}
	if err := w.docRepo.DeleteDocument(ctx, documentID); err != nil {
		return err
	}

	job.MarkCompleted(map[string]interface{}{
		"document_id": documentID,
	})
	w.logger.Printf("Deleted document %s and its chunks", documentID)
	return nil
}
