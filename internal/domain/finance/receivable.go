package finance

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/retail/backoffice/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// ReceivableStatus represents the status of a receivable
type ReceivableStatus string

const (
	ReceivableStatusOpen      ReceivableStatus = "OPEN"
	ReceivableStatusPaid      ReceivableStatus = "PAID"
	ReceivableStatusCancelled ReceivableStatus = "CANCELLED"
)

// IsValid checks if the status is a valid ReceivableStatus
func (s ReceivableStatus) IsValid() bool {
	switch s {
	case ReceivableStatusOpen, ReceivableStatusPaid, ReceivableStatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of ReceivableStatus
func (s ReceivableStatus) String() string {
	return string(s)
}

// IsTerminal returns true if the receivable is in a terminal state
func (s ReceivableStatus) IsTerminal() bool {
	return s == ReceivableStatusPaid || s == ReceivableStatusCancelled
}

// ReceivableKind records which payment arrangement produced a receivable
type ReceivableKind string

const (
	ReceivableKindCrediario       ReceivableKind = "CREDIARIO"
	ReceivableKindBoleto          ReceivableKind = "BOLETO"
	ReceivableKindCheque          ReceivableKind = "CHEQUE"
	ReceivableKindCardInstallment ReceivableKind = "CARD_INSTALLMENT"
	ReceivableKindManual          ReceivableKind = "MANUAL"
)

// IsValid checks if the kind is known
func (k ReceivableKind) IsValid() bool {
	switch k {
	case ReceivableKindCrediario,
		ReceivableKindBoleto,
		ReceivableKindCheque,
		ReceivableKindCardInstallment,
		ReceivableKindManual:
		return true
	}
	return false
}

// Receivable is money a customer owes. Amount is fixed at creation; the
// receivable is PAID once its settlements reach the amount within a money
// epsilon.
type Receivable struct {
	shared.TenantAggregateRoot
	SaleID            *uuid.UUID
	CustomerID        uuid.UUID
	DueDate           time.Time
	Amount            decimal.Decimal
	PaidAmount        decimal.Decimal
	Status            ReceivableStatus
	Kind              ReceivableKind
	InstallmentNumber int
	InstallmentCount  int
	Notes             string
	PaidAt            *time.Time
	CancelledAt       *time.Time
}

// NewReceivableParams carries the fields of a new receivable
type NewReceivableParams struct {
	SaleID            *uuid.UUID
	CustomerID        uuid.UUID
	DueDate           time.Time
	Amount            decimal.Decimal
	Kind              ReceivableKind
	InstallmentNumber int
	InstallmentCount  int
	Notes             string
}

// NewReceivable creates an OPEN receivable. A customer is mandatory.
func NewReceivable(tenantID uuid.UUID, p NewReceivableParams) (*Receivable, error) {
	if p.CustomerID == uuid.Nil {
		return nil, shared.NewDomainError(shared.CodeMissingRequiredAssociation, "a receivable requires a customer")
	}
	if !shared.IsPositive(p.Amount) {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "receivable amount must be positive")
	}
	if !p.Kind.IsValid() {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, fmt.Sprintf("invalid receivable kind %q", p.Kind))
	}
	if p.DueDate.IsZero() {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "receivable due date is required")
	}
	number, count := p.InstallmentNumber, p.InstallmentCount
	if number < 1 {
		number = 1
	}
	if count < number {
		count = number
	}
	return &Receivable{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		SaleID:              p.SaleID,
		CustomerID:          p.CustomerID,
		DueDate:             p.DueDate,
		Amount:              p.Amount,
		PaidAmount:          decimal.Zero,
		Status:              ReceivableStatusOpen,
		Kind:                p.Kind,
		InstallmentNumber:   number,
		InstallmentCount:    count,
		Notes:               p.Notes,
	}, nil
}

// Remaining returns amount minus what has been settled so far
func (r *Receivable) Remaining(settled decimal.Decimal) decimal.Decimal {
	return r.Amount.Sub(settled)
}

// Settle is SettleWithin using shared.DefaultMoneyEpsilon
func (r *Receivable) Settle(settled, amount decimal.Decimal, paymentID uuid.UUID, paidAt time.Time) (*ReceivableSettlement, error) {
	return r.SettleWithin(shared.DefaultMoneyEpsilon(), settled, amount, paymentID, paidAt)
}

// SettleWithin applies a settlement of amount on top of the already settled
// sum. settled must be the sum of every existing settlement of this
// receivable. It rejects amounts above the remaining balance plus epsilon
// without mutating anything, and flips the receivable to PAID when the new
// sum reaches the amount minus epsilon.
func (r *Receivable) SettleWithin(epsilon, settled, amount decimal.Decimal, paymentID uuid.UUID, paidAt time.Time) (*ReceivableSettlement, error) {
	if epsilon.IsNegative() {
		epsilon = decimal.Zero
	}
	if r.Status != ReceivableStatusOpen {
		return nil, shared.NewDomainError(shared.CodeInvalidState, fmt.Sprintf("cannot settle receivable in %s status", r.Status))
	}
	if !shared.IsPositive(amount) {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "settlement amount must be positive")
	}
	remaining := r.Remaining(settled)
	if amount.GreaterThan(remaining.Add(epsilon)) {
		return nil, shared.NewDomainError(shared.CodeInvalidState,
			fmt.Sprintf("settlement amount %s exceeds remaining balance %s", amount.StringFixed(2), remaining.StringFixed(2)))
	}
	if paidAt.IsZero() {
		paidAt = time.Now()
	}

	settlement := &ReceivableSettlement{
		TenantEntity: shared.NewTenantEntity(r.TenantID),
		ReceivableID: r.ID,
		PaymentID:    paymentID,
		Amount:       amount,
		PaidAt:       paidAt,
	}

	r.PaidAmount = settled.Add(amount)
	if r.PaidAmount.GreaterThanOrEqual(r.Amount.Sub(epsilon)) {
		r.Status = ReceivableStatusPaid
		r.PaidAt = &paidAt
	}
	r.UpdatedAt = time.Now()

	return settlement, nil
}

// Cancel moves an OPEN receivable to CANCELLED
func (r *Receivable) Cancel() error {
	if r.Status != ReceivableStatusOpen {
		return shared.NewDomainError(shared.CodeInvalidState, fmt.Sprintf("cannot cancel receivable in %s status", r.Status))
	}
	now := time.Now()
	r.Status = ReceivableStatusCancelled
	r.CancelledAt = &now
	r.UpdatedAt = now
	return nil
}

// IsOverdue reports whether an open receivable is past its due date
func (r *Receivable) IsOverdue(now time.Time) bool {
	return r.Status == ReceivableStatusOpen && r.DueDate.Before(now)
}

// ReceivableSettlement is an append-only record of money applied to a receivable
type ReceivableSettlement struct {
	shared.TenantEntity
	ReceivableID uuid.UUID
	PaymentID    uuid.UUID
	Amount       decimal.Decimal
	PaidAt       time.Time
}

// SumSettlements totals settlement amounts
func SumSettlements(settlements []ReceivableSettlement) decimal.Decimal {
	sum := decimal.Zero
	for _, s := range settlements {
		sum = sum.Add(s.Amount)
	}
	return sum
}
