package scheduler

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fintermediary/backoffice/internal/infrastructure/config"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testConfig() config.SchedulerConfig {
	return config.SchedulerConfig{
		Enabled:           true,
		MaxConcurrentJobs: 2,
		JobTimeout:        time.Second,
		RetryAttempts:     2,
		RetryDelay:        10 * time.Millisecond,
	}
}

type recordingObserver struct {
	mu       sync.Mutex
	statuses []string
}

func (o *recordingObserver) ObserveJob(_ string, status string, _ time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.statuses = append(o.statuses, status)
}

func (o *recordingObserver) count() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.statuses)
}

func TestJob_Lifecycle(t *testing.T) {
	job := NewJob(JobKindExchangeRateRefresh, nil, 1)
	assert.Equal(t, JobStatusPending, job.Status)

	job.Start()
	assert.Equal(t, JobStatusRunning, job.Status)
	require.NotNil(t, job.StartedAt)

	job.Fail("boom")
	assert.Equal(t, "boom", job.Error)
	assert.True(t, job.ShouldRetry())

	job.ScheduleRetry(time.Minute)
	assert.Equal(t, 1, job.RetryCount)
	assert.Equal(t, JobStatusPending, job.Status)
	assert.Empty(t, job.Error)

	job.Start()
	job.Fail("again")
	assert.False(t, job.ShouldRetry(), "retries are exhausted")

	job.Complete()
	assert.GreaterOrEqual(t, job.Duration(), time.Duration(0))
}

func TestScheduler_SubmitJob_NotRunning(t *testing.T) {
	s := NewScheduler(testConfig(), zap.NewNop())
	s.Register(JobKindExchangeRateRefresh, JobExecutorFunc(func(context.Context, *Job) error { return nil }))

	err := s.SubmitJob(NewJob(JobKindExchangeRateRefresh, nil, 0))
	assert.ErrorIs(t, err, ErrSchedulerNotRunning)
}

func TestScheduler_SubmitJob_UnknownKind(t *testing.T) {
	s := NewScheduler(testConfig(), zap.NewNop())
	require.NoError(t, s.Start(context.Background()))
	defer s.Stop(context.Background())

	err := s.SubmitJob(NewJob("UNKNOWN", nil, 0))
	assert.ErrorIs(t, err, ErrUnknownJobKind)
}

func TestScheduler_RunsJobs(t *testing.T) {
	obs := &recordingObserver{}
	s := NewScheduler(testConfig(), zap.NewNop(), WithObserver(obs))

	var runs atomic.Int32
	s.Register(JobKindExchangeRateRefresh, JobExecutorFunc(func(context.Context, *Job) error {
		runs.Add(1)
		return nil
	}))

	require.NoError(t, s.Start(context.Background()))
	_, err := s.Trigger(JobKindExchangeRateRefresh, nil)
	require.NoError(t, err)

	assert.Eventually(t, func() bool { return runs.Load() == 1 }, time.Second, 5*time.Millisecond)
	assert.Eventually(t, func() bool { return obs.count() == 1 }, time.Second, 5*time.Millisecond)
	require.NoError(t, s.Stop(context.Background()))

	stats := s.Stats()
	assert.False(t, stats.Running)
	assert.Equal(t, int64(1), stats.Succeeded)
}

func TestScheduler_RetriesFailedJobs(t *testing.T) {
	s := NewScheduler(testConfig(), zap.NewNop())

	var attempts atomic.Int32
	s.Register(JobKindExchangeRateRefresh, JobExecutorFunc(func(context.Context, *Job) error {
		if attempts.Add(1) < 3 {
			return errors.New("provider unavailable")
		}
		return nil
	}))

	require.NoError(t, s.Start(context.Background()))
	defer s.Stop(context.Background())

	_, err := s.Trigger(JobKindExchangeRateRefresh, nil)
	require.NoError(t, err)

	assert.Eventually(t, func() bool { return s.Stats().Succeeded == 1 }, 2*time.Second, 5*time.Millisecond)
	assert.Equal(t, int32(3), attempts.Load())
	assert.Equal(t, int64(2), s.Stats().Failed)
	assert.Equal(t, int64(2), s.Stats().Retried)
}

func TestScheduler_RecoversFromPanic(t *testing.T) {
	cfg := testConfig()
	cfg.RetryAttempts = 0
	s := NewScheduler(cfg, zap.NewNop())
	s.Register(JobKindExchangeRateRefresh, JobExecutorFunc(func(context.Context, *Job) error {
		panic("bad executor")
	}))

	require.NoError(t, s.Start(context.Background()))
	defer s.Stop(context.Background())

	job, err := s.Trigger(JobKindExchangeRateRefresh, nil)
	require.NoError(t, err)
	assert.Eventually(t, func() bool { return s.Stats().Failed == 1 }, time.Second, 5*time.Millisecond)
	assert.Contains(t, job.Error, "panicked")
}

func TestScheduler_Every(t *testing.T) {
	s := NewScheduler(testConfig(), zap.NewNop())

	assert.ErrorIs(t, s.Every(JobKindExchangeRateRefresh, time.Second, nil), ErrUnknownJobKind)

	var runs atomic.Int32
	s.Register(JobKindExchangeRateRefresh, JobExecutorFunc(func(context.Context, *Job) error {
		runs.Add(1)
		return nil
	}))
	assert.ErrorIs(t, s.Every(JobKindExchangeRateRefresh, 0, nil), ErrInvalidConfig)
	require.NoError(t, s.Every(JobKindExchangeRateRefresh, 20*time.Millisecond, nil))

	require.NoError(t, s.Start(context.Background()))
	assert.Eventually(t, func() bool { return runs.Load() >= 3 }, 2*time.Second, 5*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, s.Stop(ctx))
}

func TestScheduler_StopIsIdempotent(t *testing.T) {
	s := NewScheduler(testConfig(), zap.NewNop())
	require.NoError(t, s.Start(context.Background()))
	require.NoError(t, s.Start(context.Background()))
	assert.True(t, s.IsRunning())

	require.NoError(t, s.Stop(context.Background()))
	require.NoError(t, s.Stop(context.Background()))
	assert.False(t, s.IsRunning())
}

type mockRefresher struct {
	mock.Mock
}

func (m *mockRefresher) RefreshRates(ctx context.Context, tenantID uuid.UUID) (int, error) {
	args := m.Called(ctx, tenantID)
	return args.Int(0), args.Error(1)
}

type mockTenants struct {
	mock.Mock
}

func (m *mockTenants) ActiveOrganizationIDs(ctx context.Context) ([]uuid.UUID, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]uuid.UUID), args.Error(1)
}

func TestRateRefreshExecutor(t *testing.T) {
	t.Run("refreshes a single organization", func(t *testing.T) {
		refresher := new(mockRefresher)
		tenants := new(mockTenants)
		orgID := uuid.New()
		refresher.On("RefreshRates", mock.Anything, orgID).Return(4, nil)

		exec := NewRateRefreshExecutor(refresher, tenants, zap.NewNop())
		err := exec.Execute(context.Background(), NewJob(JobKindExchangeRateRefresh, &orgID, 0))

		require.NoError(t, err)
		refresher.AssertExpectations(t)
		tenants.AssertNotCalled(t, "ActiveOrganizationIDs", mock.Anything)
	})

	t.Run("refreshes every active organization and joins failures", func(t *testing.T) {
		refresher := new(mockRefresher)
		tenants := new(mockTenants)
		ok, broken := uuid.New(), uuid.New()
		tenants.On("ActiveOrganizationIDs", mock.Anything).Return([]uuid.UUID{ok, broken}, nil)
		refresher.On("RefreshRates", mock.Anything, ok).Return(3, nil)
		refresher.On("RefreshRates", mock.Anything, broken).Return(0, errors.New("timeout"))

		exec := NewRateRefreshExecutor(refresher, tenants, zap.NewNop())
		err := exec.Execute(context.Background(), NewJob(JobKindExchangeRateRefresh, nil, 0))

		require.Error(t, err)
		assert.Contains(t, err.Error(), broken.String())
		assert.NotContains(t, err.Error(), ok.String())
		refresher.AssertExpectations(t)
	})

	t.Run("fails when organizations cannot be listed", func(t *testing.T) {
		tenants := new(mockTenants)
		tenants.On("ActiveOrganizationIDs", mock.Anything).Return(nil, errors.New("db down"))

		exec := NewRateRefreshExecutor(new(mockRefresher), tenants, zap.NewNop())
		err := exec.Execute(context.Background(), NewJob(JobKindExchangeRateRefresh, nil, 0))
		assert.ErrorContains(t, err, "list organizations")
	})
}
