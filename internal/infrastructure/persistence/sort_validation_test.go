package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/retail/backoffice/internal/domain/finance"
	"github.com/retail/backoffice/internal/domain/shared"
	"github.com/retail/backoffice/tests/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateSortOrder(t *testing.T) {
	assert.Equal(t, "ASC", ValidateSortOrder("asc"))
	assert.Equal(t, "ASC", ValidateSortOrder("  ASC "))
	assert.Equal(t, "DESC", ValidateSortOrder(""))
	assert.Equal(t, "DESC", ValidateSortOrder("ASC; DROP TABLE receivables;--"))
}

// Each listing falls back to the field its repository passes to paginate.
func TestLedgerSortFields(t *testing.T) {
	tests := []struct {
		name         string
		allowed      map[string]bool
		defaultField string
		requested    string
		expected     string
	}{
		{"receivables by due date", ReceivableSortFields, "due_date", "due_date", "due_date"},
		{"receivables by paid amount", ReceivableSortFields, "due_date", "paid_amount", "paid_amount"},
		{"receivables reject entry column", ReceivableSortFields, "due_date", "paid_at", "due_date"},
		{"entries by paid at", FinanceEntrySortFields, "created_at", "paid_at", "paid_at"},
		{"entries by type", FinanceEntrySortFields, "created_at", "type", "type"},
		{"movements by base quantity", MovementSortFields, "date", "quantity_base", "quantity_base"},
		{"movements reject unit quantity", MovementSortFields, "date", "quantity", "date"},
		{"sales by coupon", SaleSortFields, "date", "coupon_number", "coupon_number"},
		{"purchases reject coupon", PurchaseSortFields, "date", "coupon_number", "date"},
		{"products by code", ProductSortFields, "code", " code ", "code"},
		{"customers by document", CustomerSortFields, "name", "document", "document"},
		{"column names are case sensitive", ReceivableSortFields, "due_date", "DUE_DATE", "due_date"},
		{"empty uses default", SaleSortFields, "date", "", "date"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.True(t, tt.allowed[tt.defaultField], "default %q must be sortable", tt.defaultField)
			assert.Equal(t, tt.expected, ValidateSortField(tt.requested, tt.allowed, tt.defaultField))
		})
	}
}

func TestLedgerSortFields_RejectExpressions(t *testing.T) {
	payloads := []string{
		"due_date; DROP TABLE receivables;--",
		"due_date' OR '1'='1",
		"due_date, (SELECT amount FROM finance_entries)",
		"CASE WHEN 1=1 THEN amount ELSE paid_amount END",
		"due_date\n; DROP TABLE receivables",
	}
	for _, payload := range payloads {
		assert.Equal(t, "due_date", ValidateSortField(payload, ReceivableSortFields, "due_date"), payload)
	}
}

func TestReceivableRepository_ListOrdersByDueDate(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	ctx := context.Background()
	tenantID := uuid.New()
	customerID := uuid.New()
	repo := NewGormReceivableRepository(db)

	for i, day := range []int{20, 5, 12} {
		rec, err := finance.NewReceivable(tenantID, finance.NewReceivableParams{
			CustomerID:        customerID,
			DueDate:           time.Date(2024, 6, day, 0, 0, 0, 0, time.UTC),
			Amount:            decimal.NewFromInt(int64(10 * (i + 1))),
			Kind:              finance.ReceivableKindCrediario,
			InstallmentNumber: i + 1,
			InstallmentCount:  3,
		})
		require.NoError(t, err)
		require.NoError(t, repo.Create(ctx, rec))
	}

	days := func(rows []finance.Receivable) []int {
		out := make([]int, 0, len(rows))
		for _, r := range rows {
			out = append(out, r.DueDate.Day())
		}
		return out
	}

	rows, total, err := repo.List(ctx, tenantID, finance.ReceivableFilter{
		Filter: shared.Filter{Page: 1, PageSize: 10, OrderBy: "due_date", OrderDir: "asc"},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Equal(t, []int{5, 12, 20}, days(rows))

	// an unknown column falls back to due_date, newest first
	rows, _, err = repo.List(ctx, tenantID, finance.ReceivableFilter{
		Filter: shared.Filter{Page: 1, PageSize: 10, OrderBy: "due_date; DROP TABLE receivables;--"},
	})
	require.NoError(t, err)
	assert.Equal(t, []int{20, 12, 5}, days(rows))

	rows, total, err = repo.List(ctx, tenantID, finance.ReceivableFilter{
		Filter: shared.Filter{Page: 2, PageSize: 2, OrderBy: "amount", OrderDir: "asc"},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, rows, 1)
	assert.True(t, rows[0].Amount.Equal(decimal.NewFromInt(30)))
}
