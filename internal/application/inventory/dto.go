package inventory

import (
	"time"

	"github.com/google/uuid"
	"github.com/retail/backoffice/internal/domain/inventory"
	"github.com/shopspring/decimal"
)

// RecordMovementInput is a manual or workflow stock movement
type RecordMovementInput struct {
	ProductID    uuid.UUID  `json:"product_id" binding:"required"`
	Direction    string     `json:"direction" binding:"required,oneof=IN OUT"`
	QuantityBase int64      `json:"quantity_base" binding:"required"`
	ReasonType   string     `json:"reason_type" binding:"omitempty,oneof=MANUAL ADJUSTMENT"`
	ReasonID     string     `json:"reason_id"`
	Notes        string     `json:"notes" binding:"max=500"`
	DeviceID     string     `json:"device_id" binding:"max=100"`
	Date         *time.Time `json:"date"`
}

// MovementResponse represents a movement in API responses
type MovementResponse struct {
	ID           uuid.UUID `json:"id"`
	ProductID    uuid.UUID `json:"product_id"`
	Date         time.Time `json:"date"`
	Direction    string    `json:"direction"`
	QuantityBase int64     `json:"quantity_base"`
	ReasonType   string    `json:"reason_type"`
	ReasonID     string    `json:"reason_id,omitempty"`
	Notes        string    `json:"notes,omitempty"`
	DeviceID     string    `json:"device_id,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// ToMovementResponse converts a domain movement
func ToMovementResponse(m *inventory.InventoryMovement) MovementResponse {
	return MovementResponse{
		ID:           m.ID,
		ProductID:    m.ProductID,
		Date:         m.Date,
		Direction:    m.Direction.String(),
		QuantityBase: m.QuantityBase,
		ReasonType:   m.ReasonType.String(),
		ReasonID:     m.ReasonID,
		Notes:        m.Notes,
		DeviceID:     m.DeviceID,
		CreatedAt:    m.CreatedAt,
	}
}

// MovementListFilter represents filter options for the movement list
type MovementListFilter struct {
	ProductID  *uuid.UUID `form:"product_id"`
	Direction  string     `form:"direction" binding:"omitempty,oneof=IN OUT"`
	ReasonType string     `form:"reason_type"`
	ReasonID   string     `form:"reason_id"`
	From       *time.Time `form:"from" time_format:"2006-01-02"`
	To         *time.Time `form:"to" time_format:"2006-01-02"`
	Page       int        `form:"page" binding:"omitempty,min=1"`
	PageSize   int        `form:"page_size" binding:"omitempty,min=1,max=200"`
}

// StockResponse is the current stock of a product
type StockResponse struct {
	ProductID    uuid.UUID `json:"product_id"`
	QuantityBase int64     `json:"quantity_base"`
}

// InventoryCountInput is a physical count of one product
type InventoryCountInput struct {
	ProductID           uuid.UUID `json:"-"`
	CountedQuantityBase int64     `json:"counted_quantity_base" binding:"min=0"`
	DeviceID            string    `json:"device_id" binding:"max=100"`
	Notes               string    `json:"notes" binding:"max=500"`
}

// InventoryCountResult reports what a count changed
type InventoryCountResult struct {
	ProductID     uuid.UUID                    `json:"product_id"`
	PreviousStock int64                        `json:"previous_stock"`
	CountedStock  int64                        `json:"counted_stock"`
	Delta         int64                        `json:"delta"`
	Movement      *MovementResponse            `json:"movement,omitempty"`
	Consumption   *inventory.ConsumptionResult `json:"consumption,omitempty"`
}

// CreateLotInput describes a lot opened by a purchase line
type CreateLotInput struct {
	ProductID     uuid.UUID       `json:"product_id"`
	PurchaseID    uuid.UUID       `json:"purchase_id"`
	SourceLineID  uuid.UUID       `json:"source_line_id"`
	QuantityBase  int64           `json:"quantity_base"`
	LineTotalCost decimal.Decimal `json:"line_total_cost"`
}

// LotResponse represents a cost lot in API responses
type LotResponse struct {
	ID                    uuid.UUID       `json:"id"`
	ProductID             uuid.UUID       `json:"product_id"`
	PurchaseID            uuid.UUID       `json:"purchase_id"`
	SourceLineID          uuid.UUID       `json:"source_line_id"`
	InitialQuantityBase   int64           `json:"initial_quantity_base"`
	RemainingQuantityBase int64           `json:"remaining_quantity_base"`
	UnitCostBase          decimal.Decimal `json:"unit_cost_base"`
	CreatedAt             time.Time       `json:"created_at"`
}

// ToLotResponse converts a domain lot
func ToLotResponse(l *inventory.CostLot) LotResponse {
	return LotResponse{
		ID:                    l.ID,
		ProductID:             l.ProductID,
		PurchaseID:            l.PurchaseID,
		SourceLineID:          l.SourceLineID,
		InitialQuantityBase:   l.InitialQuantityBase,
		RemainingQuantityBase: l.RemainingQuantityBase,
		UnitCostBase:          l.UnitCostBase,
		CreatedAt:             l.CreatedAt,
	}
}
