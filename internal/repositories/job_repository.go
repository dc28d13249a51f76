package repositories

import (
	"context"
	"errors"

	"github.com/craigsakuma/travelroboto/internal/models"
)

// ErrJobNotFound marks missing job records so callers can match with errors.Is
var ErrJobNotFound = errors.New("job not found")

// JobRepository tracks asynchronous ingestion jobs
type JobRepository interface {
	// CreateJob stores a new job and enqueues it for processing
	CreateJob(ctx context.Context, job *models.Job) error

	// GetJob retrieves a job by ID
	GetJob(ctx context.Context, jobID string) (*models.Job, error)

	// UpdateJob persists job state changes
	UpdateJob(ctx context.Context, job *models.Job) error

	// DequeueJob pops the next pending job ID, or returns empty when idle
	DequeueJob(ctx context.Context) (string, error)

	// RequeueJob puts a retrying job back on the queue
	RequeueJob(ctx context.Context, jobID string) error

	// ListJobsByStatus returns jobs currently in the given status
	ListJobsByStatus(ctx context.Context, status models.JobStatus) ([]*models.Job, error)

	// Ping verifies the backing store is reachable
	Ping(ctx context.Context) error
}

// JobRepositoryError represents errors from the job repository
type JobRepositoryError struct {
	Operation string
	JobID     string
	Err       error
	Message   string
}

func (e *JobRepositoryError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	msg := e.Operation
	if e.JobID != "" {
		msg += " (job " + e.JobID + ")"
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *JobRepositoryError) Unwrap() error {
	return e.Err
}

// NewJobRepositoryError creates a new job repository error
func NewJobRepositoryError(operation, jobID string, err error, message string) *JobRepositoryError {
	return &JobRepositoryError{
		Operation: operation,
		JobID:     jobID,
		Err:       err,
		Message:   message,
	}
}

// JobNotFoundError reports a missing job
func JobNotFoundError(jobID string) error {
	return NewJobRepositoryError("get_job", jobID, ErrJobNotFound, "job not found: "+jobID)
}

// JobAlreadyExistsError reports a duplicate job ID
func JobAlreadyExistsError(jobID string) error {
	return NewJobRepositoryError("create_job", jobID, nil, "job already exists: "+jobID)
}
