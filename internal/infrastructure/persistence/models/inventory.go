package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/retail/backoffice/internal/domain/inventory"
	"github.com/shopspring/decimal"
)

// InventoryMovementModel is the persistence model for the append-only movement log.
type InventoryMovementModel struct {
	TenantModel
	ProductID    uuid.UUID            `gorm:"type:uuid;not null;index"`
	Date         time.Time            `gorm:"not null;index"`
	Direction    inventory.Direction  `gorm:"type:varchar(3);not null"`
	QuantityBase int64                `gorm:"not null"`
	ReasonType   inventory.ReasonType `gorm:"type:varchar(30);not null"`
	ReasonID     string               `gorm:"type:varchar(100);index"`
	Notes        string               `gorm:"type:text"`
	DeviceID     string               `gorm:"type:varchar(100)"`
}

// TableName returns the table name for GORM
func (InventoryMovementModel) TableName() string {
	return "inventory_movements"
}

// ToDomain converts the persistence model to a domain InventoryMovement.
func (m *InventoryMovementModel) ToDomain() *inventory.InventoryMovement {
	return &inventory.InventoryMovement{
		TenantEntity: m.ToTenantEntity(),
		ProductID:    m.ProductID,
		Date:         m.Date,
		Direction:    m.Direction,
		QuantityBase: m.QuantityBase,
		ReasonType:   m.ReasonType,
		ReasonID:     m.ReasonID,
		Notes:        m.Notes,
		DeviceID:     m.DeviceID,
	}
}

// InventoryMovementModelFromDomain creates a new persistence model from a domain movement.
func InventoryMovementModelFromDomain(mv *inventory.InventoryMovement) *InventoryMovementModel {
	m := &InventoryMovementModel{
		ProductID:    mv.ProductID,
		Date:         mv.Date,
		Direction:    mv.Direction,
		QuantityBase: mv.QuantityBase,
		ReasonType:   mv.ReasonType,
		ReasonID:     mv.ReasonID,
		Notes:        mv.Notes,
		DeviceID:     mv.DeviceID,
	}
	m.FromDomainTenantEntity(mv.TenantEntity)
	return m
}

// CostLotModel is the persistence model for a cost lot.
type CostLotModel struct {
	TenantModel
	ProductID             uuid.UUID       `gorm:"type:uuid;not null;index"`
	PurchaseID            uuid.UUID       `gorm:"type:uuid;not null;index"`
	SourceLineID          uuid.UUID       `gorm:"type:uuid;not null;index"`
	InitialQuantityBase   int64           `gorm:"not null"`
	RemainingQuantityBase int64           `gorm:"not null"`
	UnitCostBase          decimal.Decimal `gorm:"type:decimal(18,6);not null"`
}

// TableName returns the table name for GORM
func (CostLotModel) TableName() string {
	return "cost_lots"
}

// ToDomain converts the persistence model to a domain CostLot.
func (m *CostLotModel) ToDomain() *inventory.CostLot {
	return &inventory.CostLot{
		TenantEntity:          m.ToTenantEntity(),
		ProductID:             m.ProductID,
		PurchaseID:            m.PurchaseID,
		SourceLineID:          m.SourceLineID,
		InitialQuantityBase:   m.InitialQuantityBase,
		RemainingQuantityBase: m.RemainingQuantityBase,
		UnitCostBase:          m.UnitCostBase,
	}
}

// CostLotModelFromDomain creates a new persistence model from a domain CostLot.
func CostLotModelFromDomain(l *inventory.CostLot) *CostLotModel {
	m := &CostLotModel{
		ProductID:             l.ProductID,
		PurchaseID:            l.PurchaseID,
		SourceLineID:          l.SourceLineID,
		InitialQuantityBase:   l.InitialQuantityBase,
		RemainingQuantityBase: l.RemainingQuantityBase,
		UnitCostBase:          l.UnitCostBase,
	}
	m.FromDomainTenantEntity(l.TenantEntity)
	return m
}
