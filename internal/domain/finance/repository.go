package finance

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/retail/backoffice/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// AccountRepository persists cash/bank accounts
type AccountRepository interface {
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Account, error)
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID) ([]Account, error)
	ExistsByID(ctx context.Context, tenantID, id uuid.UUID) (bool, error)
	Save(ctx context.Context, account *Account) error
}

// PaymentRepository persists payments
type PaymentRepository interface {
	Create(ctx context.Context, payment *Payment) error
	FindBySale(ctx context.Context, tenantID, saleID uuid.UUID) ([]Payment, error)
	FindByPurchase(ctx context.Context, tenantID, purchaseID uuid.UUID) ([]Payment, error)
}

// ReceivableFilter narrows a receivable listing
type ReceivableFilter struct {
	shared.Filter
	CustomerID *uuid.UUID
	SaleID     *uuid.UUID
	Status     ReceivableStatus
	DueFrom    *time.Time
	DueTo      *time.Time
}

// ReceivableRepository persists receivables and their settlements
type ReceivableRepository interface {
	Create(ctx context.Context, receivable *Receivable) error
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Receivable, error)
	// FindByIDForUpdate loads the receivable row-locked for the rest of the transaction
	FindByIDForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*Receivable, error)
	FindBySale(ctx context.Context, tenantID, saleID uuid.UUID) ([]Receivable, error)
	List(ctx context.Context, tenantID uuid.UUID, filter ReceivableFilter) ([]Receivable, int64, error)
	// SaveWithLock updates the receivable when its version still matches
	SaveWithLock(ctx context.Context, receivable *Receivable) error

	CreateSettlement(ctx context.Context, settlement *ReceivableSettlement) error
	FindSettlements(ctx context.Context, tenantID, receivableID uuid.UUID) ([]ReceivableSettlement, error)
	SumSettlements(ctx context.Context, tenantID, receivableID uuid.UUID) (decimal.Decimal, error)
}

// EntryFilter narrows a finance entry listing
type EntryFilter struct {
	shared.Filter
	AccountID *uuid.UUID
	Status    EntryStatus
	Type      EntryType
}

// FinanceEntryRepository persists finance entries
type FinanceEntryRepository interface {
	Create(ctx context.Context, entry *FinanceEntry) error
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*FinanceEntry, error)
	FindByPaymentIDs(ctx context.Context, tenantID uuid.UUID, paymentIDs []uuid.UUID) ([]FinanceEntry, error)
	List(ctx context.Context, tenantID uuid.UUID, filter EntryFilter) ([]FinanceEntry, int64, error)
	SaveWithLock(ctx context.Context, entry *FinanceEntry) error
	// MarkDueBefore moves SCHEDULED entries with due_date < now to DUE and
	// returns how many rows changed. Running it twice is harmless.
	MarkDueBefore(ctx context.Context, tenantID uuid.UUID, now time.Time) (int64, error)
	// TenantsWithOverdue lists the tenants that have SCHEDULED entries with
	// due_date < now. It is the only query that crosses tenants.
	TenantsWithOverdue(ctx context.Context, now time.Time) ([]uuid.UUID, error)
	// SumPaidByType totals PAID entries of an account with paid_at in [from, to)
	SumPaidByType(ctx context.Context, tenantID, accountID uuid.UUID, from, to time.Time) (map[EntryType]decimal.Decimal, error)
}

// MonthlyClosureRepository persists monthly closures
type MonthlyClosureRepository interface {
	Create(ctx context.Context, closure *MonthlyClosure) error
	// FindLatestBefore returns the closure with the greatest month < month for the account
	FindLatestBefore(ctx context.Context, tenantID, accountID uuid.UUID, month string) (*MonthlyClosure, error)
	ExistsForMonth(ctx context.Context, tenantID, accountID uuid.UUID, month string) (bool, error)
	FindByAccount(ctx context.Context, tenantID, accountID uuid.UUID) ([]MonthlyClosure, error)
}
