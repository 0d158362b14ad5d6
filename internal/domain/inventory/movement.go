package inventory

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/retail/backoffice/internal/domain/shared"
)

// Direction is the sign of a stock movement
type Direction string

const (
	DirectionIn  Direction = "IN"
	DirectionOut Direction = "OUT"
)

// String returns the string representation of Direction
func (d Direction) String() string {
	return string(d)
}

// IsValid returns true if the direction is IN or OUT
func (d Direction) IsValid() bool {
	return d == DirectionIn || d == DirectionOut
}

// Opposite returns the reversing direction
func (d Direction) Opposite() Direction {
	if d == DirectionIn {
		return DirectionOut
	}
	return DirectionIn
}

// ReasonType identifies the workflow that produced a movement
type ReasonType string

const (
	ReasonPurchase         ReasonType = "PURCHASE"
	ReasonSale             ReasonType = "SALE"
	ReasonSaleCancellation ReasonType = "SALE_CANCELLATION"
	ReasonAdjustment       ReasonType = "ADJUSTMENT"
	ReasonInventoryCount   ReasonType = "INVENTORY_COUNT"
	ReasonManual           ReasonType = "MANUAL"
)

// String returns the string representation of ReasonType
func (r ReasonType) String() string {
	return string(r)
}

// IsValid returns true if the reason type is known
func (r ReasonType) IsValid() bool {
	switch r {
	case ReasonPurchase,
		ReasonSale,
		ReasonSaleCancellation,
		ReasonAdjustment,
		ReasonInventoryCount,
		ReasonManual:
		return true
	}
	return false
}

// IsDirect reports whether callers may record the reason by hand. The other
// reasons belong to the sale, purchase and count workflows, whose ids they
// carry.
func (r ReasonType) IsDirect() bool {
	return r == ReasonManual || r == ReasonAdjustment
}

// InventoryMovement is an immutable stock fact. Current stock of a product is
// the sum of its IN quantities minus the sum of its OUT quantities.
type InventoryMovement struct {
	shared.TenantEntity
	ProductID    uuid.UUID
	Date         time.Time
	Direction    Direction
	QuantityBase int64
	ReasonType   ReasonType
	// ReasonID correlates the movement with its cause (sale id, purchase id).
	// It is advisory only and never joined on.
	ReasonID string
	Notes    string
	DeviceID string
}

// NewMovementParams carries the fields of a new movement
type NewMovementParams struct {
	ProductID    uuid.UUID
	Date         time.Time
	Direction    Direction
	QuantityBase int64
	ReasonType   ReasonType
	ReasonID     string
	Notes        string
	DeviceID     string
}

// NewInventoryMovement validates and builds a movement.
// Stock sufficiency is not checked: negative stock is allowed.
func NewInventoryMovement(tenantID uuid.UUID, p NewMovementParams) (*InventoryMovement, error) {
	if p.ProductID == uuid.Nil {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "product id is required")
	}
	if !p.Direction.IsValid() {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, fmt.Sprintf("invalid movement direction %q", p.Direction))
	}
	if p.QuantityBase <= 0 {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "movement quantity must be a positive number of base units")
	}
	if !p.ReasonType.IsValid() {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, fmt.Sprintf("invalid reason type %q", p.ReasonType))
	}
	date := p.Date
	if date.IsZero() {
		date = time.Now()
	}
	return &InventoryMovement{
		TenantEntity: shared.NewTenantEntity(tenantID),
		ProductID:    p.ProductID,
		Date:         date,
		Direction:    p.Direction,
		QuantityBase: p.QuantityBase,
		ReasonType:   p.ReasonType,
		ReasonID:     p.ReasonID,
		Notes:        p.Notes,
		DeviceID:     p.DeviceID,
	}, nil
}

// SignedQuantity returns the quantity with its stock sign applied
func (m *InventoryMovement) SignedQuantity() int64 {
	if m.Direction == DirectionOut {
		return -m.QuantityBase
	}
	return m.QuantityBase
}

// StockOf folds a set of movements into a stock figure
func StockOf(movements []InventoryMovement) int64 {
	var total int64
	for i := range movements {
		total += movements[i].SignedQuantity()
	}
	return total
}
