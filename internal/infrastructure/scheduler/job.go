package scheduler

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type JobStatus string

const (
	JobStatusPending JobStatus = "PENDING"
	JobStatusRunning JobStatus = "RUNNING"
	JobStatusSuccess JobStatus = "SUCCESS"
	JobStatusFailed  JobStatus = "FAILED"
)

// JobKind names a type of job. Each kind has exactly one executor.
type JobKind string

const JobKindExchangeRateRefresh JobKind = "EXCHANGE_RATE_REFRESH"

// Job is one unit of background work. A failed job is re-queued until it
// has been retried MaxRetries times.
type Job struct {
	ID   uuid.UUID
	Kind JobKind
	// TenantID scopes the job to one organization; nil means all of them.
	TenantID    *uuid.UUID
	Status      JobStatus
	Error       string
	RetryCount  int
	MaxRetries  int
	StartedAt   *time.Time
	CompletedAt *time.Time
	NextRetryAt *time.Time
}

func NewJob(kind JobKind, tenantID *uuid.UUID, maxRetries int) *Job {
	return &Job{
		ID:         uuid.New(),
		Kind:       kind,
		TenantID:   tenantID,
		Status:     JobStatusPending,
		MaxRetries: maxRetries,
	}
}

func (j *Job) Start() {
	now := time.Now()
	j.Status, j.StartedAt, j.CompletedAt, j.Error = JobStatusRunning, &now, nil, ""
}

func (j *Job) Complete() { j.finish(JobStatusSuccess, "") }

func (j *Job) Fail(reason string) { j.finish(JobStatusFailed, reason) }

func (j *Job) finish(status JobStatus, reason string) {
	now := time.Now()
	j.Status, j.CompletedAt, j.Error = status, &now, reason
}

// ShouldRetry reports whether a failed job has retries left.
func (j *Job) ShouldRetry() bool {
	return j.Status == JobStatusFailed && j.RetryCount < j.MaxRetries
}

// ScheduleRetry puts the job back to pending, due after delay.
func (j *Job) ScheduleRetry(delay time.Duration) {
	due := time.Now().Add(delay)
	j.RetryCount++
	j.Status, j.NextRetryAt, j.Error = JobStatusPending, &due, ""
}

// Duration is how long the last attempt ran.
func (j *Job) Duration() time.Duration {
	if j.StartedAt == nil || j.CompletedAt == nil {
		return 0
	}
	return j.CompletedAt.Sub(*j.StartedAt)
}

type JobExecutor interface {
	Execute(ctx context.Context, job *Job) error
}

// JobExecutorFunc lets a plain function serve as a JobExecutor.
type JobExecutorFunc func(ctx context.Context, job *Job) error

func (f JobExecutorFunc) Execute(ctx context.Context, job *Job) error {
	return f(ctx, job)
}
