package cost

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/retail/backoffice/internal/domain/inventory"
	"github.com/retail/backoffice/internal/domain/shared"
	"github.com/retail/backoffice/internal/domain/shared/strategy"
)

// StrictFIFOCostStrategy behaves like FIFOCostStrategy but refuses to
// consume anything when the lots cannot cover the whole request
type StrictFIFOCostStrategy struct {
	strategy.BaseStrategy
}

// NewStrictFIFOCostStrategy creates a new strict FIFO cost strategy
func NewStrictFIFOCostStrategy() *StrictFIFOCostStrategy {
	return &StrictFIFOCostStrategy{
		BaseStrategy: strategy.NewBaseStrategy(
			NameFIFOStrict,
			strategy.StrategyTypeCost,
			"First-In-First-Out lot consumption, fails on insufficient lots",
		),
	}
}

// Consume returns INSUFFICIENT_STOCK without touching any lot when the
// available quantity is below needBase
func (s *StrictFIFOCostStrategy) Consume(_ context.Context, productID uuid.UUID, lots []*inventory.CostLot, needBase int64) (inventory.ConsumptionResult, error) {
	if have := available(lots); have < needBase {
		return inventory.ConsumptionResult{}, shared.NewDomainError(shared.CodeInsufficientStock,
			fmt.Sprintf("product %s has %d base units in cost lots, %d requested", productID, have, needBase))
	}
	return drawFIFO(productID, lots, needBase), nil
}
