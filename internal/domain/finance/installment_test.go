package finance

import (
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateInstallments(t *testing.T) {
	start := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)

	t.Run("non-positive count yields no installments", func(t *testing.T) {
		assert.Empty(t, GenerateInstallments(decimal.NewFromInt(100), 0, 30, start))
		assert.Empty(t, GenerateInstallments(decimal.NewFromInt(100), -2, 30, start))
	})

	t.Run("last installment absorbs the remainder", func(t *testing.T) {
		got := GenerateInstallments(decimal.NewFromInt(100), 3, 30, start)
		require.Len(t, got, 3)
		assert.Equal(t, "33.33", got[0].Amount.StringFixed(2))
		assert.Equal(t, "33.33", got[1].Amount.StringFixed(2))
		assert.Equal(t, "33.34", got[2].Amount.StringFixed(2))
		assert.True(t, decimal.NewFromInt(100).Equal(SumInstallments(got)))
	})

	t.Run("due dates start one interval after the start date", func(t *testing.T) {
		got := GenerateInstallments(decimal.NewFromInt(90), 3, 15, start)
		assert.Equal(t, start.AddDate(0, 0, 15), got[0].DueDate)
		assert.Equal(t, start.AddDate(0, 0, 30), got[1].DueDate)
		assert.Equal(t, start.AddDate(0, 0, 45), got[2].DueDate)
		for i, inst := range got {
			assert.Equal(t, i+1, inst.Number)
			assert.False(t, inst.DueDate.Equal(start))
		}
	})

	t.Run("single installment equals total", func(t *testing.T) {
		got := GenerateInstallments(decimal.RequireFromString("19.99"), 1, 30, start)
		require.Len(t, got, 1)
		assert.Equal(t, "19.99", got[0].Amount.StringFixed(2))
	})
}

func TestGenerateInstallments_SumEqualsTotal(t *testing.T) {
	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	totals := []string{"0.01", "0.05", "1", "10.10", "99.99", "100", "333.33", "1000.01", "12345.67"}
	for _, raw := range totals {
		total := decimal.RequireFromString(raw)
		for n := 1; n <= 24; n++ {
			t.Run(fmt.Sprintf("%s/%d", raw, n), func(t *testing.T) {
				got := GenerateInstallments(total, n, 30, start)
				require.Len(t, got, n)
				assert.True(t, total.Equal(SumInstallments(got)), "sum %s != total %s", SumInstallments(got), total)
				for _, inst := range got[:n-1] {
					assert.True(t, inst.Amount.Equal(got[0].Amount))
					assert.True(t, inst.Amount.Equal(inst.Amount.Round(2)))
				}
			})
		}
	}
}
