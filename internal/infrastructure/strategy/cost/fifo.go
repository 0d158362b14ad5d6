package cost

import (
	"context"

	"github.com/google/uuid"
	"github.com/retail/backoffice/internal/domain/inventory"
	"github.com/retail/backoffice/internal/domain/shared/strategy"
	"github.com/shopspring/decimal"
)

// Strategy names accepted by ledger.cost_strategy
const (
	NameFIFO       = "fifo"
	NameFIFOStrict = "fifo_strict"
)

// FIFOCostStrategy draws from the oldest lots first. Demand beyond the
// available lots is reported as uncosted and contributes zero cost.
type FIFOCostStrategy struct {
	strategy.BaseStrategy
}

// NewFIFOCostStrategy creates a new FIFO cost strategy
func NewFIFOCostStrategy() *FIFOCostStrategy {
	return &FIFOCostStrategy{
		BaseStrategy: strategy.NewBaseStrategy(
			NameFIFO,
			strategy.StrategyTypeCost,
			"First-In-First-Out lot consumption, shortfall left uncosted",
		),
	}
}

// Consume draws needBase units from lots in the given order
func (s *FIFOCostStrategy) Consume(_ context.Context, productID uuid.UUID, lots []*inventory.CostLot, needBase int64) (inventory.ConsumptionResult, error) {
	return drawFIFO(productID, lots, needBase), nil
}

// drawFIFO takes min(remaining, needed) from each lot in turn, mutating the
// lots in place
func drawFIFO(productID uuid.UUID, lots []*inventory.CostLot, needBase int64) inventory.ConsumptionResult {
	result := inventory.ConsumptionResult{
		ProductID:     productID,
		RequestedBase: needBase,
		TotalCost:     decimal.Zero,
		Draws:         make([]inventory.LotDraw, 0),
	}
	if needBase <= 0 {
		return result
	}

	remaining := needBase
	for _, lot := range lots {
		if remaining == 0 {
			break
		}
		taken := lot.Take(remaining)
		if taken == 0 {
			continue
		}
		cost := lot.UnitCostBase.Mul(decimal.NewFromInt(taken))
		result.TotalCost = result.TotalCost.Add(cost)
		result.Draws = append(result.Draws, inventory.LotDraw{
			LotID:        lot.ID,
			QuantityBase: taken,
			UnitCostBase: lot.UnitCostBase,
			Cost:         cost,
		})
		remaining -= taken
	}

	result.ConsumedBase = needBase - remaining
	result.UncostedBase = remaining
	return result
}

// available sums the remaining quantity of lots
func available(lots []*inventory.CostLot) int64 {
	var total int64
	for _, lot := range lots {
		if lot.RemainingQuantityBase > 0 {
			total += lot.RemainingQuantityBase
		}
	}
	return total
}
