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

// ClosureOption configures a ClosureService
type ClosureOption func(*ClosureService)

// WithLocation sets the timezone month boundaries are computed in
func WithLocation(loc *time.Location) ClosureOption {
	return func(s *ClosureService) {
		if loc != nil {
			s.loc = loc
		}
	}
}

// WithUniqueClosures rejects a second closure of the same account and month
func WithUniqueClosures(enforce bool) ClosureOption {
	return func(s *ClosureService) {
		s.enforceUnique = enforce
	}
}

// ClosureService computes monthly closures per account
type ClosureService struct {
	scope         uow.TransactionScope
	reads         uow.Repositories
	loc           *time.Location
	enforceUnique bool
}

// NewClosureService creates a new ClosureService
func NewClosureService(scope uow.TransactionScope, reads uow.Repositories, opts ...ClosureOption) *ClosureService {
	s := &ClosureService{scope: scope, reads: reads, loc: time.UTC}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateClosure snapshots an account for a month. The opening balance comes
// from the latest earlier closure of the account; the period totals are the
// PAID entries of the account dated inside the month.
func (s *ClosureService) CreateClosure(ctx context.Context, tenantID uuid.UUID, input CreateClosureInput) (*ClosureResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "closure", "create",
		telemetry.WithAttribute(telemetry.SpanAttrTenantID, tenantID.String()),
		telemetry.WithAttribute(telemetry.SpanAttrAccountID, input.AccountID.String()),
		telemetry.WithAttribute(telemetry.SpanAttrMonth, input.Month),
	)
	defer span.End()

	from, to, err := finance.MonthRange(input.Month, s.loc)
	if err != nil {
		return nil, err
	}

	var closure *finance.MonthlyClosure
	err = s.scope.Execute(ctx, func(repos uow.Repositories) error {
		if err := ensureAccount(ctx, repos, tenantID, input.AccountID); err != nil {
			return err
		}
		if s.enforceUnique {
			exists, err := repos.Closures().ExistsForMonth(ctx, tenantID, input.AccountID, input.Month)
			if err != nil {
				return err
			}
			if exists {
				return shared.NewDomainError(shared.CodeAlreadyExists,
					fmt.Sprintf("account already closed for %s", input.Month))
			}
		}

		prior, err := repos.Closures().FindLatestBefore(ctx, tenantID, input.AccountID, input.Month)
		if err != nil {
			return err
		}
		sums, err := repos.Entries().SumPaidByType(ctx, tenantID, input.AccountID, from, to)
		if err != nil {
			return err
		}
		totals := finance.PeriodTotals{
			Income:  sums[finance.EntryTypeIncome].Add(sums[finance.EntryTypeAporte]),
			Expense: sums[finance.EntryTypeExpense].Add(sums[finance.EntryTypeRetirada]),
		}

		closure, err = finance.NewMonthlyClosure(tenantID, input.Month, input.AccountID, prior, totals, input.CountedClosing, input.Notes)
		if err != nil {
			return err
		}
		if err := repos.Closures().Create(ctx, closure); err != nil {
			return fmt.Errorf("failed to create monthly closure: %w", err)
		}
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	logger.L(ctx).Info("Monthly closure created",
		zap.String("closure_id", closure.ID.String()),
		zap.String("account_id", input.AccountID.String()),
		zap.String("month", input.Month),
		zap.String("opening", closure.OpeningBalance.String()),
		zap.String("expected_closing", closure.ExpectedClosing.String()),
	)
	resp := ToClosureResponse(closure)
	return &resp, nil
}

// ListClosures returns the account's closures ordered by month
func (s *ClosureService) ListClosures(ctx context.Context, tenantID, accountID uuid.UUID) ([]ClosureResponse, error) {
	exists, err := s.reads.Accounts().ExistsByID(ctx, tenantID, accountID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, shared.NotFound("account", accountID)
	}
	rows, err := s.reads.Closures().FindByAccount(ctx, tenantID, accountID)
	if err != nil {
		return nil, err
	}
	out := make([]ClosureResponse, len(rows))
	for i := range rows {
		out[i] = ToClosureResponse(&rows[i])
	}
	return out, nil
}
