package inventory

import (
	"github.com/google/uuid"
	"github.com/retail/backoffice/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// unitCostPlaces is the precision kept for per-base-unit costs
const unitCostPlaces = 6

// CostLot is the cost provenance of one purchase line. Lots are ordered by
// creation for FIFO; the remaining quantity only ever goes down.
type CostLot struct {
	shared.TenantEntity
	ProductID             uuid.UUID
	PurchaseID            uuid.UUID
	SourceLineID          uuid.UUID
	InitialQuantityBase   int64
	RemainingQuantityBase int64
	UnitCostBase          decimal.Decimal
}

// NewCostLotParams carries the fields of a new lot
type NewCostLotParams struct {
	ProductID     uuid.UUID
	PurchaseID    uuid.UUID
	SourceLineID  uuid.UUID
	QuantityBase  int64
	LineTotalCost decimal.Decimal
}

// NewCostLot builds a lot whose unit cost is the line total divided by the
// base quantity. Extra purchase costs are never folded in.
func NewCostLot(tenantID uuid.UUID, p NewCostLotParams) (*CostLot, error) {
	if p.ProductID == uuid.Nil {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "product id is required")
	}
	if p.SourceLineID == uuid.Nil {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "source line id is required")
	}
	if p.QuantityBase <= 0 {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "lot quantity must be positive")
	}
	if p.LineTotalCost.IsNegative() {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "lot cost cannot be negative")
	}
	return &CostLot{
		TenantEntity:          shared.NewTenantEntity(tenantID),
		ProductID:             p.ProductID,
		PurchaseID:            p.PurchaseID,
		SourceLineID:          p.SourceLineID,
		InitialQuantityBase:   p.QuantityBase,
		RemainingQuantityBase: p.QuantityBase,
		UnitCostBase:          UnitCost(p.LineTotalCost, p.QuantityBase),
	}, nil
}

// UnitCost divides a line total by its base quantity
func UnitCost(lineTotal decimal.Decimal, quantityBase int64) decimal.Decimal {
	if quantityBase <= 0 {
		return decimal.Zero
	}
	return lineTotal.DivRound(decimal.NewFromInt(quantityBase), unitCostPlaces)
}

// Take removes up to qty from the lot and returns what was actually taken
func (l *CostLot) Take(qty int64) int64 {
	if qty <= 0 || l.RemainingQuantityBase <= 0 {
		return 0
	}
	taken := qty
	if taken > l.RemainingQuantityBase {
		taken = l.RemainingQuantityBase
	}
	l.RemainingQuantityBase -= taken
	l.Touch()
	return taken
}

// Zero forces the remaining quantity to zero. No inventory moves.
func (l *CostLot) Zero() {
	l.RemainingQuantityBase = 0
	l.Touch()
}

// IsAvailable returns true while the lot has quantity left
func (l *CostLot) IsAvailable() bool {
	return l.RemainingQuantityBase > 0
}

// ConsumedQuantity returns how much has been drawn from the lot
func (l *CostLot) ConsumedQuantity() int64 {
	return l.InitialQuantityBase - l.RemainingQuantityBase
}
