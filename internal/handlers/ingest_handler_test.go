package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/craigsakuma/travelroboto/internal/models"
	"github.com/craigsakuma/travelroboto/internal/repositories"
	"github.com/craigsakuma/travelroboto/internal/services"
)

// ============================================================================
// Mocks
// ============================================================================

type MockDocumentRepository struct {
	mock.Mock
}

func (m *MockDocumentRepository) CreateDocument(ctx context.Context, doc *models.ItineraryDocument) error {
	args := m.Called(ctx, doc)
	return args.Error(0)
}

func (m *MockDocumentRepository) GetDocument(ctx context.Context, documentID string) (*models.ItineraryDocument, error) {
	args := m.Called(ctx, documentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ItineraryDocument), args.Error(1)
}

func (m *MockDocumentRepository) UpdateDocument(ctx context.Context, doc *models.ItineraryDocument) error {
	args := m.Called(ctx, doc)
	return args.Error(0)
}

func (m *MockDocumentRepository) DeleteDocument(ctx context.Context, documentID string) error {
	args := m.Called(ctx, documentID)
	return args.Error(0)
}

func (m *MockDocumentRepository) ListDocuments(ctx context.Context) ([]*models.ItineraryDocument, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.ItineraryDocument), args.Error(1)
}

type MockJobRepository struct {
	mock.Mock
}

func (m *MockJobRepository) CreateJob(ctx context.Context, job *models.Job) error {
	args := m.Called(ctx, job)
	return args.Error(0)
}

func (m *MockJobRepository) GetJob(ctx context.Context, jobID string) (*models.Job, error) {
	args := m.Called(ctx, jobID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Job), args.Error(1)
}

func (m *MockJobRepository) UpdateJob(ctx context.Context, job *models.Job) error {
	args := m.Called(ctx, job)
	return args.Error(0)
}

func (m *MockJobRepository) DequeueJob(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

func (m *MockJobRepository) RequeueJob(ctx context.Context, jobID string) error {
	args := m.Called(ctx, jobID)
	return args.Error(0)
}

func (m *MockJobRepository) ListJobsByStatus(ctx context.Context, status models.JobStatus) ([]*models.Job, error) {
	args := m.Called(ctx, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Job), args.Error(1)
}

func (m *MockJobRepository) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// ============================================================================
// Test Setup
// ============================================================================

func setupIngestHandler() (*IngestHandler, *MockDocumentRepository, *MockJobRepository) {
	mockDocRepo := new(MockDocumentRepository)
	mockJobRepo := new(MockJobRepository)
	logger := log.New(os.Stdout, "[TEST] ", log.LstdFlags)
	service := services.NewIngestService(mockDocRepo, mockJobRepo, logger)
	return NewIngestHandler(service, logger), mockDocRepo, mockJobRepo
}

// ============================================================================
// Tests
// ============================================================================

func TestSubmitDocument_Accepted(t *testing.T) {
	handler, mockDocRepo, mockJobRepo := setupIngestHandler()

	mockDocRepo.On("CreateDocument", mock.Anything, mock.AnythingOfType("*models.ItineraryDocument")).Return(nil)
	mockJobRepo.On("CreateJob", mock.Anything, mock.AnythingOfType("*models.Job")).Return(nil)

	body, _ := json.Marshal(models.IngestRequest{
		SourceName: "hotel_confirmation.pdf",
		Kind:       "hotel",
		Text:       "Fairmont Banff Springs. Check-in time: 3:00 PM.",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/documents", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	handler.SubmitDocument(rec, req)

	assert.Equal(t, http.StatusAccepted, rec.Code)

	var resp models.IngestResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.JobID)
	assert.NotEmpty(t, resp.DocumentID)
	assert.Equal(t, string(models.JobStatusPending), resp.Status)

	mockDocRepo.AssertExpectations(t)
	mockJobRepo.AssertExpectations(t)
}

func TestSubmitDocument_MissingText(t *testing.T) {
	handler, _, _ := setupIngestHandler()

	body, _ := json.Marshal(models.IngestRequest{SourceName: "x.pdf"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/documents", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	handler.SubmitDocument(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var resp models.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, models.ErrCodeValidation, resp.Error)
}

func TestSubmitDocument_InvalidJSON(t *testing.T) {
	handler, _, _ := setupIngestHandler()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/documents", bytes.NewBufferString("{oops"))
	rec := httptest.NewRecorder()

	handler.SubmitDocument(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestJobStatus_Found(t *testing.T) {
	handler, _, mockJobRepo := setupIngestHandler()

	job := &models.Job{ID: "job-1", Type: models.JobTypeDocumentIngest, Status: models.JobStatusCompleted}
	mockJobRepo.On("GetJob", mock.Anything, "job-1").Return(job, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/jobs/job-1", nil)
	req = mux.SetURLVars(req, map[string]string{"id": "job-1"})
	rec := httptest.NewRecorder()

	handler.JobStatus(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp models.Job
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, models.JobStatusCompleted, resp.Status)
}

func TestJobStatus_NotFound(t *testing.T) {
	handler, _, mockJobRepo := setupIngestHandler()

	mockJobRepo.On("GetJob", mock.Anything, "missing").Return(nil, repositories.JobNotFoundError("missing"))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/jobs/missing", nil)
	req = mux.SetURLVars(req, map[string]string{"id": "missing"})
	rec := httptest.NewRecorder()

	handler.JobStatus(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListDocuments_EmptyIsAnArray(t *testing.T) {
	handler, mockDocRepo, _ := setupIngestHandler()

	mockDocRepo.On("ListDocuments", mock.Anything).Return([]*models.ItineraryDocument{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/documents", nil)
	rec := httptest.NewRecorder()

	handler.ListDocuments(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "[]\n", rec.Body.String())
}

func TestDeleteDocument_QueuesJob(t *testing.T) {
	handler, mockDocRepo, mockJobRepo := setupIngestHandler()

	doc := &models.ItineraryDocument{ID: "doc-1", SourceName: "x.pdf", Status: models.DocumentStatusIndexed}
	mockDocRepo.On("GetDocument", mock.Anything, "doc-1").Return(doc, nil)
	mockJobRepo.On("CreateJob", mock.Anything, mock.AnythingOfType("*models.Job")).Return(nil)

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/documents/doc-1", nil)
	req = mux.SetURLVars(req, map[string]string{"id": "doc-1"})
	rec := httptest.NewRecorder()

	handler.DeleteDocument(rec, req)

	assert.Equal(t, http.StatusAccepted, rec.Code)
	mockJobRepo.AssertExpectations(t)
}

func TestDeleteDocument_NotFound(t *testing.T) {
	handler, mockDocRepo, _ := setupIngestHandler()

	mockDocRepo.On("GetDocument", mock.Anything, "ghost").Return(nil, repositories.DocumentNotFoundError("ghost"))

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/documents/ghost", nil)
	req = mux.SetURLVars(req, map[string]string{"id": "ghost"})
	rec := httptest.NewRecorder()

	handler.DeleteDocument(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
