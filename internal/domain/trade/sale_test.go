package trade

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/retail/backoffice/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestSale(t *testing.T) *Sale {
	t.Helper()
	customerID := uuid.New()
	sale := NewSale(uuid.New(), &customerID, time.Now(), "counter sale")
	require.NoError(t, sale.ReplaceItems([]SaleItemInput{
		{ProductID: uuid.New(), UnitID: uuid.New(), Quantity: decimal.NewFromInt(2), UnitPrice: decimal.RequireFromString("12.50")},
		{ProductID: uuid.New(), UnitID: uuid.New(), Quantity: decimal.NewFromInt(1), UnitPrice: decimal.NewFromInt(5)},
	}))
	return sale
}

func TestSaleStatus_CanTransitionTo(t *testing.T) {
	tests := []struct {
		from, to SaleStatus
		want     bool
	}{
		{SaleStatusDraft, SaleStatusConfirmed, true},
		{SaleStatusDraft, SaleStatusCancelled, true},
		{SaleStatusConfirmed, SaleStatusCancelled, true},
		{SaleStatusConfirmed, SaleStatusDraft, false},
		{SaleStatusCancelled, SaleStatusDraft, false},
		{SaleStatusCancelled, SaleStatusConfirmed, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestNewSale(t *testing.T) {
	nilID := uuid.Nil
	sale := NewSale(uuid.New(), &nilID, time.Time{}, "")
	assert.Nil(t, sale.CustomerID)
	assert.Equal(t, SaleStatusDraft, sale.Status)
	assert.False(t, sale.Date.IsZero())
	assert.Equal(t, 1, sale.Version)
	assert.Nil(t, sale.CouponNumber)
}

func TestSale_ReplaceItems(t *testing.T) {
	sale := createTestSale(t)
	assert.Len(t, sale.Items, 2)
	assert.Equal(t, "30.00", sale.Total.StringFixed(2))
	for _, item := range sale.Items {
		assert.Equal(t, sale.ID, item.SaleID)
	}

	require.NoError(t, sale.ReplaceItems([]SaleItemInput{
		{ProductID: uuid.New(), UnitID: uuid.New(), Quantity: decimal.NewFromInt(3), UnitPrice: decimal.NewFromInt(2)},
	}))
	assert.Len(t, sale.Items, 1)
	assert.Equal(t, "6", sale.Total.String())

	t.Run("invalid line leaves items untouched", func(t *testing.T) {
		err := sale.ReplaceItems([]SaleItemInput{{ProductID: uuid.New(), UnitID: uuid.New(), Quantity: decimal.Zero}})
		assert.True(t, errors.Is(err, shared.ErrInvalidInput))
		assert.Len(t, sale.Items, 1)
	})

	t.Run("rejected once confirmed", func(t *testing.T) {
		require.NoError(t, sale.Confirm(7, time.Now()))
		err := sale.ReplaceItems(nil)
		assert.True(t, errors.Is(err, shared.ErrInvalidState))
	})
}

func TestSale_UpdateNotes(t *testing.T) {
	sale := createTestSale(t)
	require.NoError(t, sale.UpdateNotes("draft note"))
	require.NoError(t, sale.Confirm(1, time.Now()))
	require.NoError(t, sale.UpdateNotes("after confirm"))
	assert.Equal(t, "after confirm", sale.Notes)

	_, err := sale.Cancel("customer gave up")
	require.NoError(t, err)
	assert.True(t, errors.Is(sale.UpdateNotes("late"), shared.ErrInvalidState))
}

func TestSale_Confirm(t *testing.T) {
	t.Run("requires items", func(t *testing.T) {
		sale := NewSale(uuid.New(), nil, time.Now(), "")
		assert.True(t, errors.Is(sale.Confirm(1, time.Now()), shared.ErrInvalidState))
	})

	t.Run("assigns coupon once", func(t *testing.T) {
		sale := createTestSale(t)
		require.NoError(t, sale.Confirm(42, time.Now()))
		assert.Equal(t, SaleStatusConfirmed, sale.Status)
		require.NotNil(t, sale.CouponNumber)
		assert.Equal(t, int64(42), *sale.CouponNumber)
		assert.NotNil(t, sale.ConfirmedAt)

		assert.True(t, errors.Is(sale.Confirm(43, time.Now()), shared.ErrInvalidState))
		assert.Equal(t, int64(42), *sale.CouponNumber)
	})
}

func TestSale_Cancel(t *testing.T) {
	t.Run("draft", func(t *testing.T) {
		sale := createTestSale(t)
		prev, err := sale.Cancel("typo")
		require.NoError(t, err)
		assert.Equal(t, SaleStatusDraft, prev)
		assert.Equal(t, "typo", sale.CancelReason)
	})

	t.Run("confirmed keeps its coupon", func(t *testing.T) {
		sale := createTestSale(t)
		require.NoError(t, sale.Confirm(9, time.Now()))
		prev, err := sale.Cancel("returned")
		require.NoError(t, err)
		assert.Equal(t, SaleStatusConfirmed, prev)
		assert.True(t, sale.IsCancelled())
		assert.Equal(t, int64(9), *sale.CouponNumber)
	})

	t.Run("cancelled twice", func(t *testing.T) {
		sale := createTestSale(t)
		_, err := sale.Cancel("")
		require.NoError(t, err)
		_, err = sale.Cancel("")
		assert.True(t, errors.Is(err, shared.ErrInvalidState))
	})
}
