package inventory_test

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	appinventory "github.com/retail/backoffice/internal/application/inventory"
	"github.com/retail/backoffice/internal/domain/inventory"
	"github.com/retail/backoffice/internal/domain/shared"
	"github.com/retail/backoffice/internal/infrastructure/strategy/cost"
	"github.com/retail/backoffice/internal/infrastructure/telemetry"
	"github.com/retail/backoffice/tests/ledgertest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	*ledgertest.Env
	engine  *appinventory.CostLotEngine
	service *appinventory.InventoryService
}

func newFixture(t *testing.T, strategy inventory.CostConsumptionStrategy) *fixture {
	t.Helper()
	env := ledgertest.New(t)
	if strategy == nil {
		strategy = cost.NewFIFOCostStrategy()
	}
	engine := appinventory.NewCostLotEngine(env.Scope, env.Locker, env.Reads, strategy, telemetry.NoopLedgerMetrics())
	service := appinventory.NewInventoryService(env.Scope, env.Locker, env.Reads, appinventory.NewMovementLedger(), engine)
	return &fixture{Env: env, engine: engine, service: service}
}

func TestInventoryService_RecordMovementAndStock(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	p := f.Product(t, "arroz", nil)

	_, err := f.service.RecordMovement(ctx, f.TenantID, appinventory.RecordMovementInput{
		ProductID: p.ID, Direction: "IN", QuantityBase: 10, ReasonType: "ADJUSTMENT", ReasonID: "opening-stock",
	})
	require.NoError(t, err)
	_, err = f.service.RecordMovement(ctx, f.TenantID, appinventory.RecordMovementInput{
		ProductID: p.ID, Direction: "OUT", QuantityBase: 4, ReasonType: "ADJUSTMENT",
	})
	require.NoError(t, err)
	// negative stock is allowed
	_, err = f.service.RecordMovement(ctx, f.TenantID, appinventory.RecordMovementInput{
		ProductID: p.ID, Direction: "OUT", QuantityBase: 9,
	})
	require.NoError(t, err)

	stock, err := f.service.CurrentStock(ctx, f.TenantID, p.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(10-4-9), stock.QuantityBase)

	movements, total, err := f.service.ListMovements(ctx, f.TenantID, appinventory.MovementListFilter{ProductID: &p.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, movements, 3)

	var sum int64
	for _, m := range movements {
		if m.Direction == "IN" {
			sum += m.QuantityBase
		} else {
			sum -= m.QuantityBase
		}
	}
	assert.Equal(t, stock.QuantityBase, sum)

	manual, _, err := f.service.ListMovements(ctx, f.TenantID, appinventory.MovementListFilter{ReasonType: "MANUAL"})
	require.NoError(t, err)
	require.Len(t, manual, 1)
	assert.Equal(t, int64(9), manual[0].QuantityBase)
}

func TestInventoryService_RecordMovementValidation(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	p := f.Product(t, "feijao", nil)

	tests := []struct {
		name  string
		input appinventory.RecordMovementInput
		code  string
	}{
		{"zero quantity", appinventory.RecordMovementInput{ProductID: p.ID, Direction: "IN", QuantityBase: 0}, shared.CodeInvalidInput},
		{"negative quantity", appinventory.RecordMovementInput{ProductID: p.ID, Direction: "IN", QuantityBase: -3}, shared.CodeInvalidInput},
		{"unknown direction", appinventory.RecordMovementInput{ProductID: p.ID, Direction: "SIDEWAYS", QuantityBase: 1}, shared.CodeInvalidInput},
		{"unknown reason", appinventory.RecordMovementInput{ProductID: p.ID, Direction: "IN", QuantityBase: 1, ReasonType: "GIFT"}, shared.CodeInvalidInput},
		{"sale reason", appinventory.RecordMovementInput{ProductID: p.ID, Direction: "OUT", QuantityBase: 1, ReasonType: "SALE", ReasonID: uuid.NewString()}, shared.CodeInvalidInput},
		{"purchase reason", appinventory.RecordMovementInput{ProductID: p.ID, Direction: "IN", QuantityBase: 1, ReasonType: "PURCHASE"}, shared.CodeInvalidInput},
		{"sale cancellation reason", appinventory.RecordMovementInput{ProductID: p.ID, Direction: "IN", QuantityBase: 1, ReasonType: "SALE_CANCELLATION"}, shared.CodeInvalidInput},
		{"count reason", appinventory.RecordMovementInput{ProductID: p.ID, Direction: "IN", QuantityBase: 1, ReasonType: "INVENTORY_COUNT"}, shared.CodeInvalidInput},
		{"missing product", appinventory.RecordMovementInput{ProductID: uuid.New(), Direction: "IN", QuantityBase: 1}, shared.CodeNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.service.RecordMovement(ctx, f.TenantID, tt.input)
			require.Error(t, err)
			var de *shared.DomainError
			require.ErrorAs(t, err, &de)
			assert.Equal(t, tt.code, de.Code)
		})
	}
	assert.Equal(t, int64(0), f.Stock(t, p.ID))

	_, err := f.service.CurrentStock(ctx, f.TenantID, uuid.New())
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestCostLotEngine_ConsumeFIFO(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	p := f.Product(t, "cafe", nil)

	first := f.Lot(t, p.ID, 5, "50")   // 10 per unit
	second := f.Lot(t, p.ID, 5, "100") // 20 per unit

	result, err := f.engine.ConsumeFIFO(ctx, f.TenantID, p.ID, 7)
	require.NoError(t, err)
	assert.True(t, result.TotalCost.Equal(ledgertest.Dec("90")), "got %s", result.TotalCost)
	assert.Equal(t, int64(7), result.ConsumedBase)
	assert.Equal(t, int64(0), result.UncostedBase)
	require.Len(t, result.Draws, 2)
	assert.Equal(t, first.ID, result.Draws[0].LotID)
	assert.Equal(t, int64(5), result.Draws[0].QuantityBase)
	assert.Equal(t, second.ID, result.Draws[1].LotID)
	assert.Equal(t, int64(2), result.Draws[1].QuantityBase)

	lots, err := f.engine.ListLots(ctx, f.TenantID, p.ID, false)
	require.NoError(t, err)
	require.Len(t, lots, 2)
	assert.Equal(t, int64(0), lots[0].RemainingQuantityBase)
	assert.Equal(t, int64(3), lots[1].RemainingQuantityBase)

	open, err := f.engine.ListLots(ctx, f.TenantID, p.ID, true)
	require.NoError(t, err)
	require.Len(t, open, 1)
	assert.Equal(t, second.ID, open[0].ID)
}

func TestCostLotEngine_ShortfallIsUncosted(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	p := f.Product(t, "acucar", nil)
	f.Lot(t, p.ID, 3, "30")

	result, err := f.engine.ConsumeFIFO(ctx, f.TenantID, p.ID, 8)
	require.NoError(t, err)
	assert.Equal(t, int64(3), result.ConsumedBase)
	assert.Equal(t, int64(5), result.UncostedBase)
	assert.True(t, result.TotalCost.Equal(ledgertest.Dec("30")))

	again, err := f.engine.ConsumeFIFO(ctx, f.TenantID, p.ID, 2)
	require.NoError(t, err)
	assert.True(t, again.TotalCost.IsZero())
	assert.Equal(t, int64(2), again.UncostedBase)
}

func TestCostLotEngine_StrictStrategyRejectsShortfall(t *testing.T) {
	f := newFixture(t, cost.NewStrictFIFOCostStrategy())
	ctx := context.Background()
	p := f.Product(t, "sal", nil)
	f.Lot(t, p.ID, 3, "30")

	_, err := f.engine.ConsumeFIFO(ctx, f.TenantID, p.ID, 4)
	assert.ErrorIs(t, err, shared.ErrInsufficientStock)

	lots, err := f.engine.ListLots(ctx, f.TenantID, p.ID, true)
	require.NoError(t, err)
	require.Len(t, lots, 1)
	assert.Equal(t, int64(3), lots[0].RemainingQuantityBase, "a rejected draw leaves lots untouched")
}

func TestCostLotEngine_CreateAndZeroLots(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	p := f.Product(t, "oleo", nil)

	lot, err := f.engine.CreateLot(ctx, f.TenantID, appinventory.CreateLotInput{
		ProductID: p.ID, PurchaseID: uuid.New(), SourceLineID: uuid.New(),
		QuantityBase: 3, LineTotalCost: ledgertest.Dec("10"),
	})
	require.NoError(t, err)
	assert.True(t, lot.UnitCostBase.Equal(ledgertest.Dec("3.333333")), "got %s", lot.UnitCostBase)

	_, err = f.engine.CreateLot(ctx, f.TenantID, appinventory.CreateLotInput{
		ProductID: uuid.New(), SourceLineID: uuid.New(), QuantityBase: 1, LineTotalCost: ledgertest.Dec("1"),
	})
	assert.ErrorIs(t, err, shared.ErrNotFound)

	n, err := f.engine.ZeroLots(ctx, f.TenantID, []uuid.UUID{lot.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	// zeroing never moves stock
	assert.Equal(t, int64(0), f.Stock(t, p.ID))
	open, err := f.engine.ListLots(ctx, f.TenantID, p.ID, true)
	require.NoError(t, err)
	assert.Empty(t, open)
}

func TestInventoryService_RecordInventoryCount(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	p := f.Product(t, "leite", nil)
	f.Lot(t, p.ID, 10, "40")
	_, err := f.service.RecordMovement(ctx, f.TenantID, appinventory.RecordMovementInput{
		ProductID: p.ID, Direction: "IN", QuantityBase: 10, ReasonType: "ADJUSTMENT",
	})
	require.NoError(t, err)

	shrink, err := f.service.RecordInventoryCount(ctx, f.TenantID, appinventory.InventoryCountInput{
		ProductID: p.ID, CountedQuantityBase: 7, DeviceID: "pos-1",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(10), shrink.PreviousStock)
	assert.Equal(t, int64(-3), shrink.Delta)
	require.NotNil(t, shrink.Movement)
	assert.Equal(t, "OUT", shrink.Movement.Direction)
	assert.Equal(t, "INVENTORY_COUNT", shrink.Movement.ReasonType)
	require.NotNil(t, shrink.Consumption)
	assert.True(t, shrink.Consumption.TotalCost.Equal(ledgertest.Dec("12")))
	assert.Equal(t, int64(7), f.Stock(t, p.ID))

	same, err := f.service.RecordInventoryCount(ctx, f.TenantID, appinventory.InventoryCountInput{ProductID: p.ID, CountedQuantityBase: 7})
	require.NoError(t, err)
	assert.Equal(t, int64(0), same.Delta)
	assert.Nil(t, same.Movement)

	gain, err := f.service.RecordInventoryCount(ctx, f.TenantID, appinventory.InventoryCountInput{ProductID: p.ID, CountedQuantityBase: 9})
	require.NoError(t, err)
	assert.Equal(t, "IN", gain.Movement.Direction)
	assert.Nil(t, gain.Consumption)
	assert.Equal(t, int64(9), f.Stock(t, p.ID))
}

func TestCostLotEngine_ConcurrentConsumersNeverOverdraw(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	p := f.Product(t, "vinho", nil)
	f.Lot(t, p.ID, 20, "200")

	var wg sync.WaitGroup
	results := make([]*inventory.ConsumptionResult, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			r, err := f.engine.ConsumeFIFO(ctx, f.TenantID, p.ID, 3)
			if assert.NoError(t, err) {
				results[i] = r
			}
		}(i)
	}
	wg.Wait()

	var consumed, uncosted int64
	for _, r := range results {
		require.NotNil(t, r)
		consumed += r.ConsumedBase
		uncosted += r.UncostedBase
	}
	assert.Equal(t, int64(20), consumed)
	assert.Equal(t, int64(4), uncosted)
}
