package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type mockSweeper struct {
	mock.Mock
}

func (m *mockSweeper) SweepDue(ctx context.Context, tenantID uuid.UUID, now time.Time) (int64, error) {
	args := m.Called(ctx, tenantID, now)
	return args.Get(0).(int64), args.Error(1)
}

type mockTenantProvider struct {
	mock.Mock
}

func (m *mockTenantProvider) TenantsWithOverdue(ctx context.Context, now time.Time) ([]uuid.UUID, error) {
	args := m.Called(ctx, now)
	if ids := args.Get(0); ids != nil {
		return ids.([]uuid.UUID), args.Error(1)
	}
	return nil, args.Error(1)
}

// recordingExecutor counts calls and fails the first failFirst of them
type recordingExecutor struct {
	mu        sync.Mutex
	calls     int
	failFirst int
	done      chan *Job
}

func (e *recordingExecutor) Execute(_ context.Context, job *Job) error {
	e.mu.Lock()
	e.calls++
	n := e.calls
	e.mu.Unlock()
	if n <= e.failFirst {
		return errors.New("boom")
	}
	e.done <- job
	return nil
}

func TestJob_Lifecycle(t *testing.T) {
	job := NewJob(uuid.New(), JobKindEntryDueSweep, time.Now(), 2)
	assert.Equal(t, JobStatusPending, job.Status)

	job.Start()
	assert.Equal(t, JobStatusRunning, job.Status)
	require.NotNil(t, job.StartedAt)

	job.Fail("db down")
	assert.Equal(t, JobStatusFailed, job.Status)
	assert.Equal(t, "db down", job.Error)
	assert.True(t, job.ShouldRetry())

	job.ScheduleRetry(time.Second)
	assert.Equal(t, JobStatusPending, job.Status)
	assert.Equal(t, 1, job.RetryCount)
	assert.Empty(t, job.Error)
	require.NotNil(t, job.NextRetryAt)

	job.RetryCount = 2
	job.Fail("again")
	assert.False(t, job.ShouldRetry())

	job.Start()
	job.Complete()
	assert.Equal(t, JobStatusSuccess, job.Status)
	assert.NotNil(t, job.CompletedAt)
}

func TestScheduler_SubmitRequiresRunning(t *testing.T) {
	s := NewScheduler(DefaultConfig(), &recordingExecutor{done: make(chan *Job, 1)}, zap.NewNop())
	err := s.SubmitJob(NewJob(uuid.New(), JobKindEntryDueSweep, time.Now(), 0))
	assert.ErrorIs(t, err, ErrSchedulerNotRunning)
}

func TestScheduler_RunsAndRetries(t *testing.T) {
	exec := &recordingExecutor{failFirst: 1, done: make(chan *Job, 1)}
	cfg := DefaultConfig()
	cfg.Workers = 1
	cfg.RetryDelay = 10 * time.Millisecond
	s := NewScheduler(cfg, exec, zap.NewNop())
	require.NoError(t, s.Start(context.Background()))
	defer func() {
		_ = s.Stop(context.Background())
	}()

	job := NewJob(uuid.New(), JobKindEntryDueSweep, time.Now(), 1)
	require.NoError(t, s.SubmitJob(job))

	select {
	case got := <-exec.done:
		assert.Equal(t, job.ID, got.ID)
		assert.Equal(t, 1, got.RetryCount)
	case <-time.After(2 * time.Second):
		t.Fatal("job was not retried")
	}
}

func TestScheduler_StopIsIdempotent(t *testing.T) {
	s := NewScheduler(Config{Workers: 2}, &recordingExecutor{done: make(chan *Job, 1)}, nil)
	require.NoError(t, s.Start(context.Background()))
	require.NoError(t, s.Start(context.Background()))
	require.NoError(t, s.Stop(context.Background()))
	require.NoError(t, s.Stop(context.Background()))
}

func TestDueSweepExecutor(t *testing.T) {
	tenantID := uuid.New()
	asOf := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

	t.Run("sweeps the job's tenant as of its timestamp", func(t *testing.T) {
		sweeper := new(mockSweeper)
		sweeper.On("SweepDue", mock.Anything, tenantID, asOf).Return(int64(3), nil).Once()

		err := NewDueSweepExecutor(sweeper, zap.NewNop()).Execute(context.Background(), NewJob(tenantID, JobKindEntryDueSweep, asOf, 0))
		require.NoError(t, err)
		sweeper.AssertExpectations(t)
	})

	t.Run("propagates sweep errors", func(t *testing.T) {
		sweeper := new(mockSweeper)
		sweeper.On("SweepDue", mock.Anything, tenantID, asOf).Return(int64(0), errors.New("db down"))

		err := NewDueSweepExecutor(sweeper, nil).Execute(context.Background(), NewJob(tenantID, JobKindEntryDueSweep, asOf, 0))
		assert.EqualError(t, err, "db down")
	})

	t.Run("rejects other kinds", func(t *testing.T) {
		sweeper := new(mockSweeper)
		err := NewDueSweepExecutor(sweeper, nil).Execute(context.Background(), NewJob(tenantID, JobKind("OTHER"), asOf, 0))
		assert.ErrorIs(t, err, ErrUnknownJobKind)
		sweeper.AssertNotCalled(t, "SweepDue", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestDueSweepTrigger_SubmitsOneJobPerTenant(t *testing.T) {
	now := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	a, b := uuid.New(), uuid.New()

	tenants := new(mockTenantProvider)
	tenants.On("TenantsWithOverdue", mock.Anything, now).Return([]uuid.UUID{a, b}, nil).Once()

	sweeper := new(mockSweeper)
	var wg sync.WaitGroup
	wg.Add(2)
	sweeper.On("SweepDue", mock.Anything, mock.Anything, now).
		Run(func(mock.Arguments) { wg.Done() }).
		Return(int64(1), nil)

	s := NewScheduler(Config{Workers: 2}, NewDueSweepExecutor(sweeper, nil), nil)
	require.NoError(t, s.Start(context.Background()))
	defer func() {
		_ = s.Stop(context.Background())
	}()

	trigger := NewDueSweepTrigger(time.Hour, s, tenants, nil)
	trigger.now = func() time.Time { return now }
	assert.Equal(t, 2, trigger.Trigger(context.Background()))

	waitFor(t, &wg)
	sweeper.AssertCalled(t, "SweepDue", mock.Anything, a, now)
	sweeper.AssertCalled(t, "SweepDue", mock.Anything, b, now)
	tenants.AssertExpectations(t)
}

func TestDueSweepTrigger_ProviderError(t *testing.T) {
	tenants := new(mockTenantProvider)
	tenants.On("TenantsWithOverdue", mock.Anything, mock.Anything).Return(nil, errors.New("db down"))

	s := NewScheduler(Config{Workers: 1}, NewDueSweepExecutor(new(mockSweeper), nil), nil)
	trigger := NewDueSweepTrigger(time.Hour, s, tenants, zap.NewNop())
	assert.Zero(t, trigger.Trigger(context.Background()))
}

func TestDueSweepTrigger_StartSweepsImmediately(t *testing.T) {
	tenantID := uuid.New()
	tenants := new(mockTenantProvider)
	tenants.On("TenantsWithOverdue", mock.Anything, mock.Anything).Return([]uuid.UUID{tenantID}, nil)

	sweeper := new(mockSweeper)
	swept := make(chan struct{}, 1)
	sweeper.On("SweepDue", mock.Anything, tenantID, mock.Anything).
		Run(func(mock.Arguments) {
			select {
			case swept <- struct{}{}:
			default:
			}
		}).
		Return(int64(0), nil)

	s := NewScheduler(Config{Workers: 1}, NewDueSweepExecutor(sweeper, nil), nil)
	require.NoError(t, s.Start(context.Background()))
	trigger := NewDueSweepTrigger(time.Hour, s, tenants, nil)
	require.NoError(t, trigger.Start(context.Background()))

	select {
	case <-swept:
	case <-time.After(2 * time.Second):
		t.Fatal("no sweep on start")
	}

	require.NoError(t, trigger.Stop(context.Background()))
	require.NoError(t, s.Stop(context.Background()))
}

func waitFor(t *testing.T, wg *sync.WaitGroup) {
	t.Helper()
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for jobs")
	}
}
