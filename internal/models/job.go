package models

import (
	"time"
)

// Job represents a background ingestion job in the queue
type Job struct {
	ID          string                 `json:"id"`
	Type        JobType                `json:"type"`
	Status      JobStatus              `json:"status"`
	Progress    int                    `json:"progress"` // 0-100
	Message     string                 `json:"message"`
	Payload     map[string]interface{} `json:"payload"` // Input data
	Result      map[string]interface{} `json:"result"`  // Output data
	Error       string                 `json:"error,omitempty"`
	RetryCount  int                    `json:"retry_count"`
	MaxRetries  int                    `json:"max_retries"`
	CreatedAt   time.Time              `json:"created_at"`
	StartedAt   *time.Time             `json:"started_at,omitempty"`
	CompletedAt *time.Time             `json:"completed_at,omitempty"`
	UpdatedAt   time.Time              `json:"updated_at"`
	WorkerID    string                 `json:"worker_id,omitempty"`
}

// JobType represents the type of job
type JobType string

const (
	JobTypeDocumentIngest JobType = "document_ingest"
	JobTypeDocumentDelete JobType = "document_delete"
)

// JobStatus represents the current status of a job
type JobStatus string

const (
	JobStatusPending    JobStatus = "pending"
	JobStatusProcessing JobStatus = "processing"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusFailed     JobStatus = "failed"
	JobStatusRetrying   JobStatus = "retrying"
)

// IsValid checks if the job status is a known value
func (s JobStatus) IsValid() bool {
	switch s {
	case JobStatusPending, JobStatusProcessing, JobStatusCompleted, JobStatusFailed, JobStatusRetrying:
		return true
	default:
		return false
	}
}

// IsTerminal reports whether the job has finished processing
func (s JobStatus) IsTerminal() bool {
	return s == JobStatusCompleted || s == JobStatusFailed
}

// Validate checks if the job is valid
func (j *Job) Validate() error {
	if j.ID == "" {
		return &ValidationError{Field: "id", Message: "job ID is required"}
	}
	if j.Type == "" {
		return &ValidationError{Field: "type", Message: "job type is required"}
	}
	if j.Status != "" && !j.Status.IsValid() {
		return &ValidationError{Field: "status", Message: "unknown job status: " + string(j.Status)}
	}
	if j.Progress < 0 || j.Progress > 100 {
		return &ValidationError{Field: "progress", Message: "progress must be between 0 and 100"}
	}
	return nil
}

// MarkStarted transitions the job into processing
func (j *Job) MarkStarted(workerID string) {
	now := time.Now()
	j.Status = JobStatusProcessing
	j.StartedAt = &now
	j.UpdatedAt = now
	j.WorkerID = workerID
}

// MarkCompleted transitions the job into its terminal success state
func (j *Job) MarkCompleted(result map[string]interface{}) {
	now := time.Now()
	j.Status = JobStatusCompleted
	j.Progress = 100
	j.Result = result
	j.CompletedAt = &now
	j.UpdatedAt = now
}

// MarkFailed records the error and transitions to failed or retrying
func (j *Job) MarkFailed(err error) {
	now := time.Now()
	j.Error = err.Error()
	j.UpdatedAt = now
	if j.RetryCount < j.MaxRetries {
		j.RetryCount++
		j.Status = JobStatusRetrying
		return
	}
	j.Status = JobStatusFailed
	j.CompletedAt = &now
}
