package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// TenantProvider lists the tenants that currently have past-due entries
type TenantProvider interface {
	TenantsWithOverdue(ctx context.Context, now time.Time) ([]uuid.UUID, error)
}

// EntrySweeper moves one tenant's past-due SCHEDULED entries to DUE
type EntrySweeper interface {
	SweepDue(ctx context.Context, tenantID uuid.UUID, now time.Time) (int64, error)
}

// DueSweepExecutor runs JobKindEntryDueSweep jobs
type DueSweepExecutor struct {
	sweeper EntrySweeper
	logger  *zap.Logger
}

// NewDueSweepExecutor creates a new DueSweepExecutor
func NewDueSweepExecutor(sweeper EntrySweeper, logger *zap.Logger) *DueSweepExecutor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DueSweepExecutor{sweeper: sweeper, logger: logger}
}

// Execute implements JobExecutor
func (e *DueSweepExecutor) Execute(ctx context.Context, job *Job) error {
	if job.Kind != JobKindEntryDueSweep {
		return ErrUnknownJobKind
	}
	n, err := e.sweeper.SweepDue(ctx, job.TenantID, job.AsOf)
	if err != nil {
		return err
	}
	if n > 0 {
		e.logger.Info("Finance entries became due",
			zap.String("tenant_id", job.TenantID.String()),
			zap.Int64("count", n),
		)
	}
	return nil
}

// DueSweepTrigger submits one sweep job per tenant with past-due entries on
// every tick
type DueSweepTrigger struct {
	interval  time.Duration
	scheduler *Scheduler
	tenants   TenantProvider
	logger    *zap.Logger
	now       func() time.Time

	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool
}

// NewDueSweepTrigger creates a new DueSweepTrigger
func NewDueSweepTrigger(interval time.Duration, scheduler *Scheduler, tenants TenantProvider, logger *zap.Logger) *DueSweepTrigger {
	if interval <= 0 {
		interval = DefaultConfig().Interval
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DueSweepTrigger{
		interval:  interval,
		scheduler: scheduler,
		tenants:   tenants,
		logger:    logger,
		now:       time.Now,
	}
}

// Start runs a first sweep right away and then one per interval
func (d *DueSweepTrigger) Start(ctx context.Context) error {
	d.mu.Lock()
	if d.isRunning {
		d.mu.Unlock()
		return nil
	}
	d.isRunning = true
	d.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	d.cancel = cancel

	d.wg.Add(1)
	go d.runLoop(ctx)

	d.logger.Info("Due sweep trigger started", zap.Duration("interval", d.interval))
	return nil
}

// Stop stops the trigger loop
func (d *DueSweepTrigger) Stop(ctx context.Context) error {
	d.mu.Lock()
	if !d.isRunning {
		d.mu.Unlock()
		return nil
	}
	d.isRunning = false
	d.mu.Unlock()

	if d.cancel != nil {
		d.cancel()
	}

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *DueSweepTrigger) runLoop(ctx context.Context) {
	defer d.wg.Done()

	d.Trigger(ctx)
	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			d.Trigger(ctx)
		}
	}
}

// Trigger submits the sweep jobs for the current moment and returns how
// many were queued
func (d *DueSweepTrigger) Trigger(ctx context.Context) int {
	now := d.now()
	tenantIDs, err := d.tenants.TenantsWithOverdue(ctx, now)
	if err != nil {
		d.logger.Error("Failed to list tenants with overdue entries", zap.Error(err))
		return 0
	}

	queued := 0
	for _, tenantID := range tenantIDs {
		job := NewJob(tenantID, JobKindEntryDueSweep, now, d.scheduler.config.RetryAttempts)
		if err := d.scheduler.SubmitJob(job); err != nil {
			d.logger.Warn("Failed to submit due sweep",
				zap.String("tenant_id", tenantID.String()),
				zap.Error(err),
			)
			continue
		}
		queued++
	}
	return queued
}
