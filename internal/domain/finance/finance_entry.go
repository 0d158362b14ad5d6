package finance

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/retail/backoffice/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// EntryType classifies a cash movement on an account
type EntryType string

const (
	EntryTypeExpense  EntryType = "EXPENSE"
	EntryTypeIncome   EntryType = "INCOME"
	EntryTypeAporte   EntryType = "APORTE"   // owner capital injection
	EntryTypeRetirada EntryType = "RETIRADA" // owner withdrawal
	EntryTypeTransfer EntryType = "TRANSFER"
)

// IsValid returns true if the entry type is known
func (t EntryType) IsValid() bool {
	switch t {
	case EntryTypeExpense, EntryTypeIncome, EntryTypeAporte, EntryTypeRetirada, EntryTypeTransfer:
		return true
	}
	return false
}

// Sign returns +1 for inflows, -1 for outflows and 0 for transfers
func (t EntryType) Sign() int {
	switch t {
	case EntryTypeIncome, EntryTypeAporte:
		return 1
	case EntryTypeExpense, EntryTypeRetirada:
		return -1
	}
	return 0
}

// EntryStatus is the lifecycle of a finance entry
type EntryStatus string

const (
	EntryStatusScheduled EntryStatus = "SCHEDULED"
	EntryStatusDue       EntryStatus = "DUE"
	EntryStatusPaid      EntryStatus = "PAID"
	EntryStatusCancelled EntryStatus = "CANCELLED"
)

// IsValid returns true if the status is known
func (s EntryStatus) IsValid() bool {
	switch s {
	case EntryStatusScheduled, EntryStatusDue, EntryStatusPaid, EntryStatusCancelled:
		return true
	}
	return false
}

// IsOpen returns true while the entry still awaits payment
func (s EntryStatus) IsOpen() bool {
	return s == EntryStatusScheduled || s == EntryStatusDue
}

// FinanceEntry is a cash-basis posting against an account
type FinanceEntry struct {
	shared.TenantAggregateRoot
	Type        EntryType
	CategoryID  *uuid.UUID
	AccountID   uuid.UUID
	PaymentID   *uuid.UUID
	Description string
	Amount      decimal.Decimal
	DueDate     *time.Time
	Status      EntryStatus
	PaidAt      *time.Time
}

// NewFinanceEntryParams carries the fields of a new entry
type NewFinanceEntryParams struct {
	Type        EntryType
	CategoryID  *uuid.UUID
	AccountID   uuid.UUID
	PaymentID   *uuid.UUID
	Description string
	Amount      decimal.Decimal
	DueDate     *time.Time
}

func newFinanceEntry(tenantID uuid.UUID, p NewFinanceEntryParams) (*FinanceEntry, error) {
	if !p.Type.IsValid() {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, fmt.Sprintf("invalid entry type %q", p.Type))
	}
	if p.AccountID == uuid.Nil {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "entry account is required")
	}
	if !shared.IsPositive(p.Amount) {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "entry amount must be positive")
	}
	return &FinanceEntry{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Type:                p.Type,
		CategoryID:          p.CategoryID,
		AccountID:           p.AccountID,
		PaymentID:           p.PaymentID,
		Description:         p.Description,
		Amount:              shared.RoundMoney(p.Amount),
		DueDate:             p.DueDate,
	}, nil
}

// NewPaidEntry creates an entry already PAID at paidAt
func NewPaidEntry(tenantID uuid.UUID, p NewFinanceEntryParams, paidAt time.Time) (*FinanceEntry, error) {
	e, err := newFinanceEntry(tenantID, p)
	if err != nil {
		return nil, err
	}
	if paidAt.IsZero() {
		paidAt = time.Now()
	}
	e.Status = EntryStatusPaid
	e.PaidAt = &paidAt
	return e, nil
}

// NewScheduledEntry creates an entry waiting for its due date
func NewScheduledEntry(tenantID uuid.UUID, p NewFinanceEntryParams) (*FinanceEntry, error) {
	if p.DueDate == nil {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "scheduled entries require a due date")
	}
	e, err := newFinanceEntry(tenantID, p)
	if err != nil {
		return nil, err
	}
	e.Status = EntryStatusScheduled
	return e, nil
}

// MarkDueIfPast flips a SCHEDULED entry to DUE once its due date has passed.
// It returns whether the status changed.
func (e *FinanceEntry) MarkDueIfPast(now time.Time) bool {
	if e.Status != EntryStatusScheduled || e.DueDate == nil || !e.DueDate.Before(now) {
		return false
	}
	e.Status = EntryStatusDue
	e.UpdatedAt = time.Now()
	return true
}

// Pay settles a SCHEDULED or DUE entry
func (e *FinanceEntry) Pay(paidAt time.Time) error {
	if !e.Status.IsOpen() {
		return shared.NewDomainError(shared.CodeInvalidState, fmt.Sprintf("cannot pay entry in %s status", e.Status))
	}
	if paidAt.IsZero() {
		paidAt = time.Now()
	}
	e.Status = EntryStatusPaid
	e.PaidAt = &paidAt
	e.UpdatedAt = time.Now()
	return nil
}

// Cancel voids an entry that is not already cancelled
func (e *FinanceEntry) Cancel() error {
	if e.Status == EntryStatusCancelled {
		return shared.NewDomainError(shared.CodeInvalidState, "entry is already cancelled")
	}
	e.Status = EntryStatusCancelled
	e.UpdatedAt = time.Now()
	return nil
}

// SignedAmount returns the amount with the entry type's sign applied
func (e *FinanceEntry) SignedAmount() decimal.Decimal {
	return e.Amount.Mul(decimal.NewFromInt(int64(e.Type.Sign())))
}
