package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/craigsakuma/travelroboto/internal/models"
	"github.com/craigsakuma/travelroboto/internal/repositories"
	"github.com/craigsakuma/travelroboto/internal/services"
)

// IngestHandler handles HTTP requests for itinerary document ingestion
type IngestHandler struct {
	ingestService *services.IngestService
	logger        *log.Logger
}

// NewIngestHandler creates a new ingest handler
func NewIngestHandler(ingestService *services.IngestService, logger *log.Logger) *IngestHandler {
	return &IngestHandler{
		ingestService: ingestService,
		logger:        logger,
	}
}

// SubmitDocument handles document ingestion requests
// SubmitDocument godoc
// @Summary Submit an itinerary document
// @Description Queues a document for chunking, embedding, and indexing
// @Tags documents
// @Accept json
// @Produce json
// @Param request body models.IngestRequest true "Document source name, kind, and text"
// @Success 202 {object} models.IngestResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /api/v1/documents [post]
func (h *IngestHandler) SubmitDocument(w http.ResponseWriter, r *http.Request) {
	var request models.IngestRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		writeError(w, http.StatusBadRequest, models.ErrCodeValidation, "Invalid request body: "+err.Error())
		return
	}

	response, err := h.ingestService.SubmitDocument(r.Context(), &request)
	if err != nil {
		var validationErr *models.ValidationError
		if errors.As(err, &validationErr) {
			writeError(w, http.StatusBadRequest, models.ErrCodeValidation, validationErr.Error())
			return
		}
		h.logger.Printf("Failed to submit document: %v", err)
		writeError(w, http.StatusInternalServerError, models.ErrCodeInternal, "Failed to submit document")
		return
	}

	h.logger.Printf("Queued document %s (job %s)", response.DocumentID, response.JobID)
	writeJSON(w, http.StatusAccepted, response)
}

// JobStatus handles job status lookups
// JobStatus godoc
// @Summary Get ingestion job status
// @Description Returns the current state of an ingestion job
// @Tags documents
// @Accept json
// @Produce json
// @Param id path string true "Job ID"
// @Success 200 {object} models.Job
// @Failure 404 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /api/v1/jobs/{id} [get]
func (h *IngestHandler) JobStatus(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	jobID := vars["id"]

	job, err := h.ingestService.JobStatus(r.Context(), jobID)
	if err != nil {
		if errors.Is(err, repositories.ErrJobNotFound) {
			writeError(w, http.StatusNotFound, models.ErrCodeValidation, "Job not found: "+jobID)
			return
		}
		h.logger.Printf("Failed to fetch job %s: %v", jobID, err)
		writeError(w, http.StatusInternalServerError, models.ErrCodeInternal, "Failed to fetch job")
		return
	}

	writeJSON(w, http.StatusOK, job)
}

// ListDocuments handles document listing requests
// ListDocuments godoc
// @Summary List itinerary documents
// @Description Returns all tracked itinerary documents and their indexing status
// @Tags documents
// @Accept json
// @Produce json
// @Success 200 {array} models.ItineraryDocument
// @Failure 500 {object} models.ErrorResponse
// @Router /api/v1/documents [get]
func (h *IngestHandler) ListDocuments(w http.ResponseWriter, r *http.Request) {
	docs, err := h.ingestService.ListDocuments(r.Context())
	if err != nil {
		h.logger.Printf("Failed to list documents: %v", err)
		writeError(w, http.StatusInternalServerError, models.ErrCodeInternal, "Failed to list documents")
		return
	}

	if docs == nil {
		docs = []*models.ItineraryDocument{}
	}
	writeJSON(w, http.StatusOK, docs)
}

// DeleteDocument handles document deletion requests
// DeleteDocument godoc
// @Summary Delete an itinerary document
// @Description Queues removal of a document and its indexed chunks
// @Tags documents
// @Accept json
// @Produce json
// @Param id path string true "Document ID"
// @Success 202 {object} models.BasicResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /api/v1/documents/{id} [delete]
func (h *IngestHandler) DeleteDocument(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	documentID := vars["id"]

	if err := h.ingestService.DeleteDocument(r.Context(), documentID); err != nil {
		if errors.Is(err, repositories.ErrDocumentNotFound) {
			writeError(w, http.StatusNotFound, models.ErrCodeValidation, "Document not found: "+documentID)
			return
		}
		h.logger.Printf("Failed to delete document %s: %v", documentID, err)
		writeError(w, http.StatusInternalServerError, models.ErrCodeInternal, "Failed to delete document")
		return
	}

	writeJSON(w, http.StatusAccepted, models.BasicResponse{
		Message: "Document deletion queued",
		Status:  "success",
	})
}
