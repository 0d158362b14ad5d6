package finance

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/retail/backoffice/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// MonthLayout is the zero-padded month key; lexical order equals calendar order
const MonthLayout = "2006-01"

// ParseMonth parses a YYYY-MM key
func ParseMonth(month string) (time.Time, error) {
	t, err := time.Parse(MonthLayout, month)
	if err != nil {
		return time.Time{}, shared.NewDomainError(shared.CodeInvalidInput, fmt.Sprintf("month %q must be formatted as YYYY-MM", month))
	}
	return t, nil
}

// MonthRange returns [first instant of month, first instant of next month) in loc
func MonthRange(month string, loc *time.Location) (time.Time, time.Time, error) {
	t, err := ParseMonth(month)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	if loc == nil {
		loc = time.UTC
	}
	start := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, loc)
	return start, start.AddDate(0, 1, 0), nil
}

// MonthlyClosure snapshots one account for one calendar month, chained from
// the prior month's closure of the same account
type MonthlyClosure struct {
	shared.TenantEntity
	Month           string
	AccountID       uuid.UUID
	OpeningBalance  decimal.Decimal
	TotalIncome     decimal.Decimal
	TotalExpense    decimal.Decimal
	ExpectedClosing decimal.Decimal
	CountedClosing  *decimal.Decimal
	Notes           string
}

// PeriodTotals are the PAID inflows and outflows of an account in a month
type PeriodTotals struct {
	Income  decimal.Decimal
	Expense decimal.Decimal
}

// NewMonthlyClosure computes expected closing = opening + income − expense.
// prior is the closure of the latest earlier month for the account, or nil.
func NewMonthlyClosure(tenantID uuid.UUID, month string, accountID uuid.UUID, prior *MonthlyClosure, totals PeriodTotals, counted *decimal.Decimal, notes string) (*MonthlyClosure, error) {
	if _, err := ParseMonth(month); err != nil {
		return nil, err
	}
	if accountID == uuid.Nil {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "closure account is required")
	}
	opening := decimal.Zero
	if prior != nil {
		if prior.Month >= month {
			return nil, shared.NewDomainError(shared.CodeInvalidInput, "prior closure must be for an earlier month")
		}
		opening = prior.ClosingBalance()
	}
	return &MonthlyClosure{
		TenantEntity:    shared.NewTenantEntity(tenantID),
		Month:           month,
		AccountID:       accountID,
		OpeningBalance:  opening,
		TotalIncome:     totals.Income,
		TotalExpense:    totals.Expense,
		ExpectedClosing: opening.Add(totals.Income).Sub(totals.Expense),
		CountedClosing:  counted,
		Notes:           notes,
	}, nil
}

// ClosingBalance is the counted closing when present, else the expected one.
// The next month's opening balance is taken from here.
func (c *MonthlyClosure) ClosingBalance() decimal.Decimal {
	if c.CountedClosing != nil {
		return *c.CountedClosing
	}
	return c.ExpectedClosing
}

// Difference returns counted − expected, or nil when nothing was counted
func (c *MonthlyClosure) Difference() *decimal.Decimal {
	if c.CountedClosing == nil {
		return nil
	}
	d := c.CountedClosing.Sub(c.ExpectedClosing)
	return &d
}
