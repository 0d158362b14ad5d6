package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/retail/backoffice/internal/domain/catalog"
)

// ProductModel is the persistence model for the Product domain entity.
type ProductModel struct {
	TenantAggregateModel
	Code     string                `gorm:"type:varchar(50);not null;index"`
	Name     string                `gorm:"type:varchar(200);not null"`
	BaseUnit string                `gorm:"type:varchar(50);not null"`
	Status   catalog.ProductStatus `gorm:"type:varchar(20);not null;default:'active'"`
	Units    []ProductUnitModel    `gorm:"foreignKey:ProductID;references:ID"`
}

// TableName returns the table name for GORM
func (ProductModel) TableName() string {
	return "products"
}

// ToDomain converts the persistence model to a domain Product entity.
func (m *ProductModel) ToDomain() *catalog.Product {
	p := &catalog.Product{
		TenantAggregateRoot: m.ToTenantAggregateRoot(),
		Code:                m.Code,
		Name:                m.Name,
		BaseUnit:            m.BaseUnit,
		Status:              m.Status,
		Units:               make([]catalog.ProductUnit, len(m.Units)),
	}
	for i := range m.Units {
		p.Units[i] = *m.Units[i].ToDomain()
	}
	return p
}

// FromDomain populates the persistence model from a domain Product entity.
func (m *ProductModel) FromDomain(p *catalog.Product) {
	m.FromDomainTenantAggregateRoot(p.TenantAggregateRoot)
	m.Code = p.Code
	m.Name = p.Name
	m.BaseUnit = p.BaseUnit
	m.Status = p.Status
	m.Units = make([]ProductUnitModel, len(p.Units))
	for i := range p.Units {
		m.Units[i] = *ProductUnitModelFromDomain(&p.Units[i])
	}
}

// ProductModelFromDomain creates a new persistence model from a domain Product entity.
func ProductModelFromDomain(p *catalog.Product) *ProductModel {
	m := &ProductModel{}
	m.FromDomain(p)
	return m
}

// ProductUnitModel is the persistence model for a product unit
type ProductUnitModel struct {
	ID           uuid.UUID `gorm:"type:uuid;primary_key"`
	TenantID     uuid.UUID `gorm:"type:uuid;not null;index"`
	ProductID    uuid.UUID `gorm:"type:uuid;not null;index"`
	Name         string    `gorm:"type:varchar(50);not null"`
	FactorToBase int64     `gorm:"not null;default:1"`
	CreatedAt    time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (ProductUnitModel) TableName() string {
	return "product_units"
}

// ToDomain converts the persistence model to a domain ProductUnit
func (m *ProductUnitModel) ToDomain() *catalog.ProductUnit {
	return &catalog.ProductUnit{
		ID:           m.ID,
		TenantID:     m.TenantID,
		ProductID:    m.ProductID,
		Name:         m.Name,
		FactorToBase: m.FactorToBase,
		CreatedAt:    m.CreatedAt,
	}
}

// ProductUnitModelFromDomain creates a new persistence model from a domain ProductUnit
func ProductUnitModelFromDomain(u *catalog.ProductUnit) *ProductUnitModel {
	return &ProductUnitModel{
		ID:           u.ID,
		TenantID:     u.TenantID,
		ProductID:    u.ProductID,
		Name:         u.Name,
		FactorToBase: u.FactorToBase,
		CreatedAt:    u.CreatedAt,
	}
}
