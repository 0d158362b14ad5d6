package inventory

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LotDraw records how much was taken from one lot
type LotDraw struct {
	LotID        uuid.UUID       `json:"lot_id"`
	QuantityBase int64           `json:"quantity_base"`
	UnitCostBase decimal.Decimal `json:"unit_cost_base"`
	Cost         decimal.Decimal `json:"cost"`
}

// ConsumptionResult is the outcome of consuming quantity from a product's lots
type ConsumptionResult struct {
	ProductID     uuid.UUID       `json:"product_id"`
	RequestedBase int64           `json:"requested_base"`
	ConsumedBase  int64           `json:"consumed_base"`
	UncostedBase  int64           `json:"uncosted_base"`
	TotalCost     decimal.Decimal `json:"total_cost"`
	Draws         []LotDraw       `json:"draws"`
}

// HasShortfall reports whether part of the request could not be costed
func (r ConsumptionResult) HasShortfall() bool {
	return r.UncostedBase > 0
}

// CostConsumptionStrategy decides how a quantity is drawn from lots and what
// happens when the lots run out. Implementations mutate the passed lots in
// place; the caller persists them.
type CostConsumptionStrategy interface {
	// Name returns the configuration name of the strategy
	Name() string
	// Consume draws needBase units from lots, which must be in FIFO order
	Consume(ctx context.Context, productID uuid.UUID, lots []*CostLot, needBase int64) (ConsumptionResult, error)
}
