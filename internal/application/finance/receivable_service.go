package finance

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/retail/backoffice/internal/application/uow"
	"github.com/retail/backoffice/internal/domain/finance"
	"github.com/retail/backoffice/internal/domain/shared"
	"github.com/retail/backoffice/internal/infrastructure/logger"
	"github.com/retail/backoffice/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// ReceivableOption configures a ReceivableService
type ReceivableOption func(*ReceivableService)

// WithMoneyEpsilon sets the tolerance used when a settlement is compared
// against the remaining balance. Negative values are ignored.
func WithMoneyEpsilon(epsilon decimal.Decimal) ReceivableOption {
	return func(s *ReceivableService) {
		if !epsilon.IsNegative() {
			s.epsilon = epsilon
		}
	}
}

// ReceivableService manages receivables and their settlements
type ReceivableService struct {
	scope   uow.TransactionScope
	locker  uow.Locker
	reads   uow.Repositories
	poster  *PaymentPoster
	metrics *telemetry.LedgerMetrics
	epsilon decimal.Decimal
}

// NewReceivableService creates a new ReceivableService
func NewReceivableService(scope uow.TransactionScope, locker uow.Locker, reads uow.Repositories, poster *PaymentPoster, metrics *telemetry.LedgerMetrics, opts ...ReceivableOption) *ReceivableService {
	if metrics == nil {
		metrics = telemetry.NoopLedgerMetrics()
	}
	s := &ReceivableService{
		scope:   scope,
		locker:  locker,
		reads:   reads,
		poster:  poster,
		metrics: metrics,
		epsilon: shared.DefaultMoneyEpsilon(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateReceivable records money owed outside of a sale, split into
// installments when a count is given
func (s *ReceivableService) CreateReceivable(ctx context.Context, tenantID uuid.UUID, input CreateReceivableInput) ([]ReceivableResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "receivable", "create",
		telemetry.WithAttribute(telemetry.SpanAttrTenantID, tenantID.String()),
	)
	defer span.End()

	kind := finance.ReceivableKind(input.Kind)
	if kind == "" {
		kind = finance.ReceivableKindManual
	}
	if !kind.IsValid() || kind == finance.ReceivableKindCardInstallment {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, fmt.Sprintf("invalid receivable kind %q", input.Kind))
	}
	if input.CustomerID == uuid.Nil {
		return nil, shared.NewDomainError(shared.CodeMissingRequiredAssociation, "a receivable requires a customer")
	}
	if !shared.IsPositive(input.Amount) {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "receivable amount must be positive")
	}

	count := input.InstallmentCount
	if count < 1 {
		count = 1
	}
	interval := input.IntervalDays
	if interval <= 0 {
		interval = s.poster.defaultIntervalDays
	}
	// the first installment falls on the given due date
	schedule := finance.GenerateInstallments(input.Amount, count, interval, input.DueDate.AddDate(0, 0, -interval))

	var out []ReceivableResponse
	err := s.scope.Execute(ctx, func(repos uow.Repositories) error {
		exists, err := repos.Customers().ExistsByID(ctx, tenantID, input.CustomerID)
		if err != nil {
			return err
		}
		if !exists {
			return shared.NotFound("customer", input.CustomerID)
		}
		out, err = s.poster.createReceivables(ctx, repos, tenantID, nil, input.CustomerID, kind, schedule, input.Notes)
		return err
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	logger.L(ctx).Info("Receivable created",
		zap.String("customer_id", input.CustomerID.String()),
		zap.String("amount", input.Amount.String()),
		zap.Int("installments", count),
	)
	return out, nil
}

// GetReceivable returns a receivable with its settlements
func (s *ReceivableService) GetReceivable(ctx context.Context, tenantID, id uuid.UUID) (*ReceivableDetailResponse, error) {
	r, err := s.reads.Receivables().FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	settlements, err := s.reads.Receivables().FindSettlements(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	resp := &ReceivableDetailResponse{
		ReceivableResponse: ToReceivableResponse(r),
		Settlements:        make([]SettlementResponse, len(settlements)),
	}
	for i, st := range settlements {
		resp.Settlements[i] = SettlementResponse{ID: st.ID, PaymentID: st.PaymentID, Amount: st.Amount, PaidAt: st.PaidAt}
	}
	return resp, nil
}

// ListReceivables returns a page of receivables
func (s *ReceivableService) ListReceivables(ctx context.Context, tenantID uuid.UUID, filter ReceivableListFilter) ([]ReceivableResponse, int64, error) {
	if filter.OrderBy == "" {
		filter.OrderBy = "due_date"
		if filter.OrderDir == "" {
			filter.OrderDir = "asc"
		}
	}
	domainFilter := finance.ReceivableFilter{
		Filter: shared.Filter{
			Page:     filter.Page,
			PageSize: filter.PageSize,
			OrderBy:  filter.OrderBy,
			OrderDir: filter.OrderDir,
		}.Normalize(),
		CustomerID: filter.CustomerID,
		SaleID:     filter.SaleID,
		Status:     finance.ReceivableStatus(filter.Status),
		DueFrom:    filter.DueFrom,
		DueTo:      filter.DueTo,
	}
	rows, total, err := s.reads.Receivables().List(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	out := make([]ReceivableResponse, len(rows))
	for i := range rows {
		out[i] = ToReceivableResponse(&rows[i])
	}
	return out, total, nil
}

// SettleReceivable applies money to an OPEN receivable. The payment, the
// settlement row, the status change and the INCOME entry commit together,
// serialized per receivable.
func (s *ReceivableService) SettleReceivable(ctx context.Context, tenantID, receivableID uuid.UUID, input SettleInput) (*SettleResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "receivable", "settle",
		telemetry.WithAttribute(telemetry.SpanAttrTenantID, tenantID.String()),
		telemetry.WithAttribute(telemetry.SpanAttrReceivableID, receivableID.String()),
		telemetry.WithAttribute(telemetry.SpanAttrAmount, input.Amount.String()),
	)
	defer span.End()

	method := finance.PaymentMethod(input.Method)
	if !method.IsValid() {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, fmt.Sprintf("invalid payment method %q", input.Method))
	}
	if !shared.IsPositive(input.Amount) {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "settlement amount must be positive")
	}
	paidAt := time.Now()
	if input.PaidAt != nil && !input.PaidAt.IsZero() {
		paidAt = *input.PaidAt
	}

	var result SettleResult
	keys := []string{uow.ReceivableKey(tenantID, receivableID)}
	err := uow.WithLocks(ctx, s.locker, s.scope, keys, func(repos uow.Repositories) error {
		r, err := repos.Receivables().FindByIDForUpdate(ctx, tenantID, receivableID)
		if err != nil {
			return err
		}
		if r.Status != finance.ReceivableStatusOpen {
			return shared.NewDomainError(shared.CodeInvalidState, fmt.Sprintf("cannot settle receivable in %s status", r.Status))
		}
		if err := ensureAccount(ctx, repos, tenantID, input.AccountID); err != nil {
			return err
		}
		settled, err := repos.Receivables().SumSettlements(ctx, tenantID, receivableID)
		if err != nil {
			return err
		}

		rid := r.ID
		payment, err := finance.NewPayment(tenantID, finance.NewPaymentParams{
			ReceivableID: &rid,
			SaleID:       r.SaleID,
			Date:         paidAt,
			Method:       method,
			Amount:       input.Amount,
			AccountID:    input.AccountID,
			Notes:        input.Notes,
		})
		if err != nil {
			return err
		}
		settlement, err := r.SettleWithin(s.epsilon, settled, payment.Amount, payment.ID, paidAt)
		if err != nil {
			return err
		}

		if err := repos.Payments().Create(ctx, payment); err != nil {
			return fmt.Errorf("failed to create payment: %w", err)
		}
		if err := repos.Receivables().CreateSettlement(ctx, settlement); err != nil {
			return fmt.Errorf("failed to create settlement: %w", err)
		}
		if err := repos.Receivables().SaveWithLock(ctx, r); err != nil {
			return err
		}
		entry, err := s.poster.postPaidEntry(ctx, repos, tenantID, payment, finance.EntryTypeIncome, "Receivable settlement "+method.String())
		if err != nil {
			return err
		}

		result = SettleResult{
			Receivable: ToReceivableResponse(r),
			Settlement: SettlementResponse{ID: settlement.ID, PaymentID: payment.ID, Amount: settlement.Amount, PaidAt: settlement.PaidAt},
			Payment:    ToPaymentResponse(payment),
			Entry:      ToEntryResponse(entry),
		}
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.metrics.RecordSettlement(ctx, tenantID, method.String(), input.Amount)
	logger.L(ctx).Info("Receivable settled",
		zap.String("receivable_id", receivableID.String()),
		zap.String("amount", input.Amount.String()),
		zap.String("status", result.Receivable.Status),
	)
	return &result, nil
}
