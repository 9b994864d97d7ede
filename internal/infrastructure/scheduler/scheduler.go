// Package scheduler runs background jobs on a bounded worker pool with
// retries and interval triggers.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fintermediary/backoffice/internal/infrastructure/config"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrSchedulerNotRunning = errors.New("scheduler: not running")
	ErrJobQueueFull        = errors.New("scheduler: job queue full")
	ErrUnknownJobKind      = errors.New("scheduler: no executor for job kind")
	ErrInvalidConfig       = errors.New("scheduler: invalid configuration")
)

const defaultQueueSize = 100

// JobObserver is told about every finished attempt, e.g. by a metrics collector.
type JobObserver interface {
	ObserveJob(kind string, status string, duration time.Duration)
}

// Stats is a point-in-time view of the scheduler counters.
type Stats struct {
	Running   bool
	Queued    int
	Succeeded int64
	Failed    int64
	Retried   int64
}

type interval struct {
	kind     JobKind
	every    time.Duration
	tenantID *uuid.UUID
}

type Option func(*Scheduler)

func WithObserver(o JobObserver) Option {
	return func(s *Scheduler) { s.observer = o }
}

func WithQueueSize(n int) Option {
	return func(s *Scheduler) {
		if n > 0 {
			s.queueSize = n
		}
	}
}

// Scheduler owns a fixed set of workers draining one job queue. Executors
// and intervals are registered before Start.
type Scheduler struct {
	cfg       config.SchedulerConfig
	log       *zap.Logger
	observer  JobObserver
	queueSize int

	mu        sync.RWMutex
	executors map[JobKind]JobExecutor
	intervals []interval
	queue     chan *Job
	stop      context.CancelFunc
	running   bool
	wg        sync.WaitGroup

	succeeded, failed, retried atomic.Int64
}

func NewScheduler(cfg config.SchedulerConfig, logger *zap.Logger, opts ...Option) *Scheduler {
	cfg.MaxConcurrentJobs = max(cfg.MaxConcurrentJobs, 1)
	if cfg.JobTimeout <= 0 {
		cfg.JobTimeout = 5 * time.Minute
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = time.Minute
	}
	s := &Scheduler{
		cfg:       cfg,
		log:       logger.Named("scheduler"),
		queueSize: defaultQueueSize,
		executors: make(map[JobKind]JobExecutor),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Scheduler) Register(kind JobKind, executor JobExecutor) {
	s.mu.Lock()
	s.executors[kind] = executor
	s.mu.Unlock()
}

// Every queues a job of kind once when the scheduler starts and again on
// each tick of every.
func (s *Scheduler) Every(kind JobKind, every time.Duration, tenantID *uuid.UUID) error {
	if every <= 0 {
		return fmt.Errorf("%w: interval for %s must be positive", ErrInvalidConfig, kind)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.executors[kind]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownJobKind, kind)
	}
	s.intervals = append(s.intervals, interval{kind: kind, every: every, tenantID: tenantID})
	return nil
}

// Start is a no-op when the scheduler is already running.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return nil
	}

	ctx, s.stop = context.WithCancel(ctx)
	s.queue = make(chan *Job, s.queueSize)
	s.running = true

	s.wg.Add(s.cfg.MaxConcurrentJobs + len(s.intervals))
	for range s.cfg.MaxConcurrentJobs {
		go s.work(ctx, s.queue)
	}
	for _, iv := range s.intervals {
		go s.tick(ctx, iv)
	}

	s.log.Info("Scheduler started",
		zap.Int("workers", s.cfg.MaxConcurrentJobs),
		zap.Int("intervals", len(s.intervals)),
		zap.Duration("job_timeout", s.cfg.JobTimeout))
	return nil
}

// Stop cancels running jobs, drops queued ones and waits for the workers
// until ctx expires.
func (s *Scheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	s.stop()
	close(s.queue)
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		s.log.Info("Scheduler stopped")
		return nil
	case <-ctx.Done():
		s.log.Warn("Scheduler stop timed out", zap.Error(ctx.Err()))
		return ctx.Err()
	}
}

func (s *Scheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.running
}

func (s *Scheduler) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st := Stats{
		Running:   s.running,
		Succeeded: s.succeeded.Load(),
		Failed:    s.failed.Load(),
		Retried:   s.retried.Load(),
	}
	if s.running {
		st.Queued = len(s.queue)
	}
	return st
}

// SubmitJob queues job without blocking.
func (s *Scheduler) SubmitJob(job *Job) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	switch _, known := s.executors[job.Kind]; {
	case !s.running:
		return ErrSchedulerNotRunning
	case !known:
		return fmt.Errorf("%w: %s", ErrUnknownJobKind, job.Kind)
	}

	select {
	case s.queue <- job:
		s.log.Debug("Job queued", jobFields(job)...)
		return nil
	default:
		return ErrJobQueueFull
	}
}

// Trigger queues a one-off job with the configured retry budget.
func (s *Scheduler) Trigger(kind JobKind, tenantID *uuid.UUID) (*Job, error) {
	job := NewJob(kind, tenantID, s.cfg.RetryAttempts)
	if err := s.SubmitJob(job); err != nil {
		return nil, err
	}
	return job, nil
}

func (s *Scheduler) tick(ctx context.Context, iv interval) {
	defer s.wg.Done()
	ticker := time.NewTicker(iv.every)
	defer ticker.Stop()

	for {
		if _, err := s.Trigger(iv.kind, iv.tenantID); err != nil && ctx.Err() == nil {
			s.log.Warn("Interval job not queued", zap.String("kind", string(iv.kind)), zap.Error(err))
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (s *Scheduler) work(ctx context.Context, queue <-chan *Job) {
	defer s.wg.Done()
	for job := range queue {
		if ctx.Err() != nil {
			return
		}
		s.run(ctx, job)
	}
}

func (s *Scheduler) run(ctx context.Context, job *Job) {
	s.mu.RLock()
	executor := s.executors[job.Kind]
	s.mu.RUnlock()

	job.Start()
	jobCtx, cancel := context.WithTimeout(ctx, s.cfg.JobTimeout)
	err := execute(jobCtx, executor, job)
	cancel()

	if err == nil {
		job.Complete()
		s.succeeded.Add(1)
		s.observe(job)
		s.log.Info("Job succeeded", append(jobFields(job), zap.Duration("duration", job.Duration()))...)
		return
	}

	job.Fail(err.Error())
	s.failed.Add(1)
	s.observe(job)
	s.log.Error("Job failed", append(jobFields(job), zap.Error(err))...)

	if !job.ShouldRetry() || ctx.Err() != nil {
		return
	}
	job.ScheduleRetry(s.cfg.RetryDelay)
	s.retried.Add(1)
	s.log.Info("Job retry scheduled", append(jobFields(job), zap.Time("at", *job.NextRetryAt))...)
	time.AfterFunc(s.cfg.RetryDelay, func() {
		if err := s.SubmitJob(job); err != nil && !errors.Is(err, ErrSchedulerNotRunning) {
			s.log.Warn("Job retry not queued", append(jobFields(job), zap.Error(err))...)
		}
	})
}

// execute turns an executor panic into a job failure.
func execute(ctx context.Context, executor JobExecutor, job *Job) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("job panicked: %v", r)
		}
	}()
	return executor.Execute(ctx, job)
}

func (s *Scheduler) observe(job *Job) {
	if s.observer != nil {
		s.observer.ObserveJob(string(job.Kind), string(job.Status), job.Duration())
	}
}

func jobFields(job *Job) []zap.Field {
	fields := []zap.Field{
		zap.String("job_id", job.ID.String()),
		zap.String("kind", string(job.Kind)),
		zap.Int("retry", job.RetryCount),
	}
	if job.TenantID != nil {
		fields = append(fields, zap.String("organization_id", job.TenantID.String()))
	}
	return fields
}
