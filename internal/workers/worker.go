package workers

import (
	"sync"
	"time"
)

// WorkerConfig holds configuration for background workers
type WorkerConfig struct {
	// WorkerName is a unique identifier for this worker instance
	WorkerName string

	// Concurrency is the number of jobs to process concurrently
	Concurrency int

	// PollInterval is how often to check for new jobs
	PollInterval time.Duration

	// RetryDelay is the delay before a retrying job is requeued
	RetryDelay time.Duration
}

// DefaultWorkerConfig returns a worker configuration with sensible defaults
func DefaultWorkerConfig(workerName string) WorkerConfig {
	return WorkerConfig{
		WorkerName:   workerName,
		Concurrency:  2,
		PollInterval: 2 * time.Second,
		RetryDelay:   5 * time.Second,
	}
}

// WorkerStats represents statistics about a worker
type WorkerStats struct {
	WorkerName    string    `json:"worker_name"`
	JobsProcessed int64     `json:"jobs_processed"`
	JobsSucceeded int64     `json:"jobs_succeeded"`
	JobsFailed    int64     `json:"jobs_failed"`
	LastJobTime   time.Time `json:"last_job_time,omitempty"`
	IsRunning     bool      `json:"is_running"`
}

// BaseWorker provides run-state tracking and counters shared by workers
type BaseWorker struct {
	config  WorkerConfig
	mu      sync.RWMutex
	running bool
	stats   WorkerStats
}

// NewBaseWorker creates the shared worker core
func NewBaseWorker(config WorkerConfig) *BaseWorker {
	return &BaseWorker{
		config: config,
		stats:  WorkerStats{WorkerName: config.WorkerName},
	}
}

// Name returns the worker's name
func (w *BaseWorker) Name() string {
	return w.config.WorkerName
}

// IsRunning returns whether the worker is currently running
func (w *BaseWorker) IsRunning() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.running
}

// Stats returns a snapshot of worker statistics
func (w *BaseWorker) Stats() WorkerStats {
	w.mu.RLock()
	defer w.mu.RUnlock()
	stats := w.stats
	stats.IsRunning = w.running
	return stats
}

func (w *BaseWorker) setRunning(running bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.running = running
}

func (w *BaseWorker) recordJob(succeeded bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.stats.JobsProcessed++
	if succeeded {
		w.stats.JobsSucceeded++
	} else {
		w.stats.JobsFailed++
	}
	w.stats.LastJobTime = time.Now()
}

// WorkerError represents errors from worker operations
type WorkerError struct {
	WorkerName string
	Operation  string
	Err        error
	Message    string
}

func (e *WorkerError) Error() string {
	if e.Message != "" {
		return e.WorkerName + ": " + e.Message
	}
	msg := e.WorkerName + ": " + e.Operation
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *WorkerError) Unwrap() error {
	return e.Err
}

// NewWorkerError creates a new worker error
func NewWorkerError(workerName, operation string, err error, message string) *WorkerError {
	return &WorkerError{
		WorkerName: workerName,
		Operation:  operation,
		Err:        err,
		Message:    message,
	}
}
