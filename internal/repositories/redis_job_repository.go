package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/craigsakuma/travelroboto/internal/models"
)

const (
	// Redis key layout for ingestion jobs
	jobKeyPrefix    = "job:"
	jobQueueKey     = "jobs:queue"
	jobIndexKey     = "jobs:index"
	jobStatusPrefix = "job:status:"
)

// RedisJobRepository implements JobRepository using Redis
type RedisJobRepository struct {
	client *redis.Client
}

// NewRedisJobRepository creates a new Redis-based job repository
func NewRedisJobRepository(client *redis.Client) *RedisJobRepository {
	return &RedisJobRepository{
		client: client,
	}
}

// CreateJob creates a new job and pushes it onto the processing queue
func (r *RedisJobRepository) CreateJob(ctx context.Context, job *models.Job) error {
	if err := job.Validate(); err != nil {
		return err
	}

	exists, err := r.client.Exists(ctx, jobKeyPrefix+job.ID).Result()
	if err != nil {
		return NewJobRepositoryError("create_job", job.ID, err, "")
	}
	if exists > 0 {
		return JobAlreadyExistsError(job.ID)
	}

	now := time.Now()
	job.CreatedAt = now
	job.UpdatedAt = now
	if job.Status == "" {
		job.Status = models.JobStatusPending
	}

	jobJSON, err := json.Marshal(job)
	if err != nil {
		return NewJobRepositoryError("create_job", job.ID, err, "failed to marshal job")
	}

	// Transaction keeps the record, indexes and queue consistent
	pipe := r.client.TxPipeline()
	pipe.Set(ctx, jobKeyPrefix+job.ID, jobJSON, 0)
	pipe.SAdd(ctx, jobIndexKey, job.ID)
	pipe.SAdd(ctx, jobStatusPrefix+string(job.Status), job.ID)
	pipe.RPush(ctx, jobQueueKey, job.ID)

	if _, err := pipe.Exec(ctx); err != nil {
		return NewJobRepositoryError("create_job", job.ID, err, "")
	}
	return nil
}

// GetJob retrieves a job by ID
func (r *RedisJobRepository) GetJob(ctx context.Context, jobID string) (*models.Job, error) {
	data, err := r.client.Get(ctx, jobKeyPrefix+jobID).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, JobNotFoundError(jobID)
		}
		return nil, NewJobRepositoryError("get_job", jobID, err, "")
	}

	var job models.Job
	if err := json.Unmarshal([]byte(data), &job); err != nil {
		return nil, NewJobRepositoryError("get_job", jobID, err, "failed to unmarshal job")
	}
	return &job, nil
}

// UpdateJob persists job state and keeps the status indexes in sync
func (r *RedisJobRepository) UpdateJob(ctx context.Context, job *models.Job) error {
	if err := job.Validate(); err != nil {
		return err
	}

	existing, err := r.GetJob(ctx, job.ID)
	if err != nil {
		return err
	}

	job.UpdatedAt = time.Now()

	jobJSON, err := json.Marshal(job)
	if err != nil {
		return NewJobRepositoryError("update_job", job.ID, err, "failed to marshal job")
	}

	pipe := r.client.TxPipeline()
	pipe.Set(ctx, jobKeyPrefix+job.ID, jobJSON, 0)
	if existing.Status != job.Status {
		pipe.SRem(ctx, jobStatusPrefix+string(existing.Status), job.ID)
		pipe.SAdd(ctx, jobStatusPrefix+string(job.Status), job.ID)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return NewJobRepositoryError("update_job", job.ID, err, "")
	}
	return nil
}

// DequeueJob pops the next pending job ID; empty string when the queue is idle
func (r *RedisJobRepository) DequeueJob(ctx context.Context) (string, error) {
	jobID, err := r.client.LPop(ctx, jobQueueKey).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", nil
		}
		return "", NewJobRepositoryError("dequeue_job", "", err, "")
	}
	return jobID, nil
}

// RequeueJob puts a retrying job back at the end of the queue
func (r *RedisJobRepository) RequeueJob(ctx context.Context, jobID string) error {
	if err := r.client.RPush(ctx, jobQueueKey, jobID).Err(); err != nil {
		return NewJobRepositoryError("requeue_job", jobID, err, "")
	}
	return nil
}

// ListJobsByStatus returns all jobs currently in the given status
func (r *RedisJobRepository) ListJobsByStatus(ctx context.Context, status models.JobStatus) ([]*models.Job, error) {
	ids, err := r.client.SMembers(ctx, jobStatusPrefix+string(status)).Result()
	if err != nil {
		return nil, NewJobRepositoryError("list_jobs_by_status", "", err, "")
	}

	jobs := make([]*models.Job, 0, len(ids))
	for _, id := range ids {
		job, err := r.GetJob(ctx, id)
		if err != nil {
			// Index can lag behind deletions; skip dangling IDs
			continue
		}
		jobs = append(jobs, job)
	}
	return jobs, nil
}

// Ping verifies Redis is reachable
func (r *RedisJobRepository) Ping(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return NewJobRepositoryError("ping", "", err, "")
	}
	return nil
}
