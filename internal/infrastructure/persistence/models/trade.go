package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/retail/backoffice/internal/domain/trade"
	"github.com/shopspring/decimal"
)

// SaleModel is the persistence model for the Sale aggregate root.
type SaleModel struct {
	TenantAggregateModel
	CustomerID   *uuid.UUID       `gorm:"type:uuid;index"`
	Date         time.Time        `gorm:"not null;index"`
	Status       trade.SaleStatus `gorm:"type:varchar(20);not null;default:'DRAFT';index"`
	CouponNumber *int64           `gorm:"index"`
	Notes        string           `gorm:"type:text"`
	Total        decimal.Decimal  `gorm:"type:decimal(18,4);not null;default:0"`
	ConfirmedAt  *time.Time
	CancelledAt  *time.Time
	CancelReason string          `gorm:"type:varchar(500)"`
	Items        []SaleItemModel `gorm:"foreignKey:SaleID;references:ID"`
}

// TableName returns the table name for GORM
func (SaleModel) TableName() string {
	return "sales"
}

// ToDomain converts the persistence model to a domain Sale.
func (m *SaleModel) ToDomain() *trade.Sale {
	s := &trade.Sale{
		TenantAggregateRoot: m.ToTenantAggregateRoot(),
		CustomerID:          m.CustomerID,
		Date:                m.Date,
		Status:              m.Status,
		CouponNumber:        m.CouponNumber,
		Notes:               m.Notes,
		Total:               m.Total,
		ConfirmedAt:         m.ConfirmedAt,
		CancelledAt:         m.CancelledAt,
		CancelReason:        m.CancelReason,
		Items:               make([]trade.SaleItem, len(m.Items)),
	}
	for i := range m.Items {
		s.Items[i] = *m.Items[i].ToDomain()
	}
	return s
}

// FromDomain populates the persistence model from a domain Sale.
func (m *SaleModel) FromDomain(s *trade.Sale) {
	m.FromDomainTenantAggregateRoot(s.TenantAggregateRoot)
	m.CustomerID = s.CustomerID
	m.Date = s.Date
	m.Status = s.Status
	m.CouponNumber = s.CouponNumber
	m.Notes = s.Notes
	m.Total = s.Total
	m.ConfirmedAt = s.ConfirmedAt
	m.CancelledAt = s.CancelledAt
	m.CancelReason = s.CancelReason
	m.Items = make([]SaleItemModel, len(s.Items))
	for i := range s.Items {
		m.Items[i] = *SaleItemModelFromDomain(s.TenantID, &s.Items[i])
	}
}

// SaleModelFromDomain creates a new persistence model from a domain Sale.
func SaleModelFromDomain(s *trade.Sale) *SaleModel {
	m := &SaleModel{}
	m.FromDomain(s)
	return m
}

// SaleItemModel is the persistence model for a sale line.
type SaleItemModel struct {
	ID        uuid.UUID       `gorm:"type:uuid;primary_key"`
	TenantID  uuid.UUID       `gorm:"type:uuid;not null;index"`
	SaleID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID uuid.UUID       `gorm:"type:uuid;not null;index"`
	UnitID    uuid.UUID       `gorm:"type:uuid;not null"`
	Quantity  decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	UnitPrice decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	LineTotal decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	CreatedAt time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (SaleItemModel) TableName() string {
	return "sale_items"
}

// ToDomain converts the persistence model to a domain SaleItem.
func (m *SaleItemModel) ToDomain() *trade.SaleItem {
	return &trade.SaleItem{
		ID:        m.ID,
		SaleID:    m.SaleID,
		ProductID: m.ProductID,
		UnitID:    m.UnitID,
		Quantity:  m.Quantity,
		UnitPrice: m.UnitPrice,
		LineTotal: m.LineTotal,
		CreatedAt: m.CreatedAt,
	}
}

// SaleItemModelFromDomain creates a new persistence model from a domain SaleItem.
func SaleItemModelFromDomain(tenantID uuid.UUID, i *trade.SaleItem) *SaleItemModel {
	return &SaleItemModel{
		ID:        i.ID,
		TenantID:  tenantID,
		SaleID:    i.SaleID,
		ProductID: i.ProductID,
		UnitID:    i.UnitID,
		Quantity:  i.Quantity,
		UnitPrice: i.UnitPrice,
		LineTotal: i.LineTotal,
		CreatedAt: i.CreatedAt,
	}
}

// PurchaseModel is the persistence model for the Purchase aggregate root.
type PurchaseModel struct {
	TenantAggregateModel
	SupplierID   *uuid.UUID           `gorm:"type:uuid;index"`
	Date         time.Time            `gorm:"not null;index"`
	Status       trade.PurchaseStatus `gorm:"type:varchar(20);not null;default:'CONFIRMED';index"`
	Notes        string               `gorm:"type:text"`
	Total        decimal.Decimal      `gorm:"type:decimal(18,4);not null;default:0"`
	CancelledAt  *time.Time
	CancelReason string              `gorm:"type:varchar(500)"`
	Items        []PurchaseItemModel `gorm:"foreignKey:PurchaseID;references:ID"`
	Costs        []PurchaseCostModel `gorm:"foreignKey:PurchaseID;references:ID"`
}

// TableName returns the table name for GORM
func (PurchaseModel) TableName() string {
	return "purchases"
}

// ToDomain converts the persistence model to a domain Purchase.
func (m *PurchaseModel) ToDomain() *trade.Purchase {
	p := &trade.Purchase{
		TenantAggregateRoot: m.ToTenantAggregateRoot(),
		SupplierID:          m.SupplierID,
		Date:                m.Date,
		Status:              m.Status,
		Notes:               m.Notes,
		Total:               m.Total,
		CancelledAt:         m.CancelledAt,
		CancelReason:        m.CancelReason,
		Items:               make([]trade.PurchaseItem, len(m.Items)),
		Costs:               make([]trade.PurchaseCost, len(m.Costs)),
	}
	for i := range m.Items {
		p.Items[i] = *m.Items[i].ToDomain()
	}
	for i := range m.Costs {
		p.Costs[i] = *m.Costs[i].ToDomain()
	}
	return p
}

// FromDomain populates the persistence model from a domain Purchase.
func (m *PurchaseModel) FromDomain(p *trade.Purchase) {
	m.FromDomainTenantAggregateRoot(p.TenantAggregateRoot)
	m.SupplierID = p.SupplierID
	m.Date = p.Date
	m.Status = p.Status
	m.Notes = p.Notes
	m.Total = p.Total
	m.CancelledAt = p.CancelledAt
	m.CancelReason = p.CancelReason
	m.Items = make([]PurchaseItemModel, len(p.Items))
	for i := range p.Items {
		m.Items[i] = *PurchaseItemModelFromDomain(p.TenantID, &p.Items[i])
	}
	m.Costs = make([]PurchaseCostModel, len(p.Costs))
	for i := range p.Costs {
		m.Costs[i] = *PurchaseCostModelFromDomain(p.TenantID, &p.Costs[i])
	}
}

// PurchaseModelFromDomain creates a new persistence model from a domain Purchase.
func PurchaseModelFromDomain(p *trade.Purchase) *PurchaseModel {
	m := &PurchaseModel{}
	m.FromDomain(p)
	return m
}

// PurchaseItemModel is the persistence model for a purchase line.
type PurchaseItemModel struct {
	ID           uuid.UUID       `gorm:"type:uuid;primary_key"`
	TenantID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	PurchaseID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	UnitID       uuid.UUID       `gorm:"type:uuid;not null"`
	Quantity     decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	UnitCost     decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	LineTotal    decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	QuantityBase int64           `gorm:"not null"`
	CreatedAt    time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (PurchaseItemModel) TableName() string {
	return "purchase_items"
}

// ToDomain converts the persistence model to a domain PurchaseItem.
func (m *PurchaseItemModel) ToDomain() *trade.PurchaseItem {
	return &trade.PurchaseItem{
		ID:           m.ID,
		PurchaseID:   m.PurchaseID,
		ProductID:    m.ProductID,
		UnitID:       m.UnitID,
		Quantity:     m.Quantity,
		UnitCost:     m.UnitCost,
		LineTotal:    m.LineTotal,
		QuantityBase: m.QuantityBase,
		CreatedAt:    m.CreatedAt,
	}
}

// PurchaseItemModelFromDomain creates a new persistence model from a domain PurchaseItem.
func PurchaseItemModelFromDomain(tenantID uuid.UUID, i *trade.PurchaseItem) *PurchaseItemModel {
	return &PurchaseItemModel{
		ID:           i.ID,
		TenantID:     tenantID,
		PurchaseID:   i.PurchaseID,
		ProductID:    i.ProductID,
		UnitID:       i.UnitID,
		Quantity:     i.Quantity,
		UnitCost:     i.UnitCost,
		LineTotal:    i.LineTotal,
		QuantityBase: i.QuantityBase,
		CreatedAt:    i.CreatedAt,
	}
}

// PurchaseCostModel is the persistence model for an extra purchase cost.
type PurchaseCostModel struct {
	ID          uuid.UUID       `gorm:"type:uuid;primary_key"`
	TenantID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	PurchaseID  uuid.UUID       `gorm:"type:uuid;not null;index"`
	Description string          `gorm:"type:varchar(200);not null"`
	Amount      decimal.Decimal `gorm:"type:decimal(18,4);not null"`
}

// TableName returns the table name for GORM
func (PurchaseCostModel) TableName() string {
	return "purchase_costs"
}

// ToDomain converts the persistence model to a domain PurchaseCost.
func (m *PurchaseCostModel) ToDomain() *trade.PurchaseCost {
	return &trade.PurchaseCost{
		ID:          m.ID,
		PurchaseID:  m.PurchaseID,
		Description: m.Description,
		Amount:      m.Amount,
	}
}

// PurchaseCostModelFromDomain creates a new persistence model from a domain PurchaseCost.
func PurchaseCostModelFromDomain(tenantID uuid.UUID, c *trade.PurchaseCost) *PurchaseCostModel {
	return &PurchaseCostModel{
		ID:          c.ID,
		TenantID:    tenantID,
		PurchaseID:  c.PurchaseID,
		Description: c.Description,
		Amount:      c.Amount,
	}
}

// CouponSequenceModel holds the last coupon number handed out per tenant.
type CouponSequenceModel struct {
	TenantID   uuid.UUID `gorm:"type:uuid;primary_key"`
	CurrentVal int64     `gorm:"not null;default:0"`
	UpdatedAt  time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (CouponSequenceModel) TableName() string {
	return "coupon_sequences"
}
