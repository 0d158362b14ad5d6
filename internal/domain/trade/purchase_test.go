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

func TestPurchase_AddItemAndCost(t *testing.T) {
	p := NewPurchase(uuid.New(), nil, time.Now(), "")
	assert.Equal(t, PurchaseStatusConfirmed, p.Status)

	productID := uuid.New()
	item, err := p.AddItem(productID, uuid.New(), decimal.NewFromInt(5), decimal.NewFromInt(24), 60)
	require.NoError(t, err)
	assert.Equal(t, p.ID, item.PurchaseID)
	assert.Equal(t, "120", item.LineTotal.String())
	assert.Equal(t, int64(60), item.QuantityBase)

	_, err = p.AddItem(productID, uuid.New(), decimal.NewFromInt(1), decimal.NewFromInt(3), 1)
	require.NoError(t, err)
	require.NoError(t, p.AddCost("freight", decimal.NewFromInt(15)))

	assert.Equal(t, "138", p.Total.String())
	assert.Len(t, p.ProductIDs(), 1)
}

func TestPurchase_AddItemValidation(t *testing.T) {
	p := NewPurchase(uuid.New(), nil, time.Now(), "")
	_, err := p.AddItem(uuid.New(), uuid.New(), decimal.Zero, decimal.NewFromInt(1), 1)
	assert.True(t, errors.Is(err, shared.ErrInvalidInput))
	_, err = p.AddItem(uuid.New(), uuid.New(), decimal.NewFromInt(1), decimal.NewFromInt(1), 0)
	assert.True(t, errors.Is(err, shared.ErrInvalidInput))
	_, err = p.AddItem(uuid.New(), uuid.New(), decimal.NewFromInt(1), decimal.NewFromInt(-1), 1)
	assert.True(t, errors.Is(err, shared.ErrInvalidInput))
	assert.True(t, errors.Is(p.AddCost("", decimal.NewFromInt(1)), shared.ErrInvalidInput))
	assert.Empty(t, p.Items)
}

func TestPurchase_Cancel(t *testing.T) {
	p := NewPurchase(uuid.New(), nil, time.Now(), "")
	require.NoError(t, p.Cancel("wrong supplier"))
	assert.Equal(t, PurchaseStatusCancelled, p.Status)
	assert.NotNil(t, p.CancelledAt)
	assert.True(t, errors.Is(p.Cancel("again"), shared.ErrInvalidState))
}
