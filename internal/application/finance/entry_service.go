package finance

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/retail/backoffice/internal/application/uow"
	"github.com/retail/backoffice/internal/domain/finance"
	"github.com/retail/backoffice/internal/domain/shared"
	"github.com/retail/backoffice/internal/infrastructure/logger"
	"github.com/retail/backoffice/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// EntryService handles manual finance entries and the due-date sweep
type EntryService struct {
	scope uow.TransactionScope
	reads uow.Repositories
}

// NewEntryService creates a new EntryService
func NewEntryService(scope uow.TransactionScope, reads uow.Repositories) *EntryService {
	return &EntryService{scope: scope, reads: reads}
}

// CreateEntry records an expense, income, capital movement or transfer
func (s *EntryService) CreateEntry(ctx context.Context, tenantID uuid.UUID, input CreateEntryInput) (*EntryResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "finance_entry", "create",
		telemetry.WithAttribute(telemetry.SpanAttrTenantID, tenantID.String()),
		telemetry.WithAttribute(telemetry.SpanAttrAccountID, input.AccountID.String()),
		telemetry.WithAttribute(telemetry.SpanAttrAmount, input.Amount.String()),
	)
	defer span.End()

	params := finance.NewFinanceEntryParams{
		Type:        finance.EntryType(input.Type),
		CategoryID:  input.CategoryID,
		AccountID:   input.AccountID,
		Description: input.Description,
		Amount:      input.Amount,
		DueDate:     input.DueDate,
	}

	var entry *finance.FinanceEntry
	err := s.scope.Execute(ctx, func(repos uow.Repositories) error {
		if err := ensureAccount(ctx, repos, tenantID, input.AccountID); err != nil {
			return err
		}
		var err error
		if input.Paid {
			entry, err = finance.NewPaidEntry(tenantID, params, time.Now())
		} else {
			entry, err = finance.NewScheduledEntry(tenantID, params)
		}
		if err != nil {
			return err
		}
		if err := repos.Entries().Create(ctx, entry); err != nil {
			return fmt.Errorf("failed to create finance entry: %w", err)
		}
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	logger.L(ctx).Info("Finance entry created",
		zap.String("entry_id", entry.ID.String()),
		zap.String("type", string(entry.Type)),
		zap.String("status", string(entry.Status)),
		zap.String("amount", entry.Amount.String()),
	)
	resp := ToEntryResponse(entry)
	return &resp, nil
}

// SweepDue moves every SCHEDULED entry whose due date is before now to DUE.
// It is a single conditional update and can run any number of times.
func (s *EntryService) SweepDue(ctx context.Context, tenantID uuid.UUID, now time.Time) (int64, error) {
	n, err := s.reads.Entries().MarkDueBefore(ctx, tenantID, now)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		logger.L(ctx).Info("Finance entries became due", zap.Int64("count", n))
	}
	return n, nil
}

// ListDueEntries sweeps and then returns the DUE entries, oldest due date first
func (s *EntryService) ListDueEntries(ctx context.Context, tenantID uuid.UUID, now time.Time, page, pageSize int) ([]EntryResponse, int64, error) {
	if _, err := s.SweepDue(ctx, tenantID, now); err != nil {
		return nil, 0, err
	}
	filter := finance.EntryFilter{
		Filter: shared.Filter{Page: page, PageSize: pageSize, OrderBy: "due_date", OrderDir: "asc"}.Normalize(),
		Status: finance.EntryStatusDue,
	}
	rows, total, err := s.reads.Entries().List(ctx, tenantID, filter)
	if err != nil {
		return nil, 0, err
	}
	out := make([]EntryResponse, len(rows))
	for i := range rows {
		out[i] = ToEntryResponse(&rows[i])
	}
	return out, total, nil
}

// PayEntry settles a SCHEDULED or DUE entry
func (s *EntryService) PayEntry(ctx context.Context, tenantID, entryID uuid.UUID, paidAt time.Time) (*EntryResponse, error) {
	return s.transition(ctx, tenantID, entryID, "pay", func(e *finance.FinanceEntry) error {
		return e.Pay(paidAt)
	})
}

// CancelEntry voids an entry that has not been paid
func (s *EntryService) CancelEntry(ctx context.Context, tenantID, entryID uuid.UUID) (*EntryResponse, error) {
	return s.transition(ctx, tenantID, entryID, "cancel", func(e *finance.FinanceEntry) error {
		if e.Status == finance.EntryStatusPaid {
			return shared.NewDomainError(shared.CodeInvalidState, "paid entries cannot be cancelled")
		}
		return e.Cancel()
	})
}

func (s *EntryService) transition(ctx context.Context, tenantID, entryID uuid.UUID, op string, apply func(*finance.FinanceEntry) error) (*EntryResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "finance_entry", op,
		telemetry.WithAttribute(telemetry.SpanAttrTenantID, tenantID.String()),
		telemetry.WithAttribute(telemetry.SpanAttrEntryID, entryID.String()),
	)
	defer span.End()

	var entry *finance.FinanceEntry
	err := s.scope.Execute(ctx, func(repos uow.Repositories) error {
		var err error
		entry, err = repos.Entries().FindByIDForTenant(ctx, tenantID, entryID)
		if err != nil {
			return err
		}
		if err := apply(entry); err != nil {
			return err
		}
		return repos.Entries().SaveWithLock(ctx, entry)
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	logger.L(ctx).Info("Finance entry updated",
		zap.String("entry_id", entryID.String()),
		zap.String("op", op),
		zap.String("status", string(entry.Status)),
	)
	resp := ToEntryResponse(entry)
	return &resp, nil
}
