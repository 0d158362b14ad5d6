package catalog

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/retail/backoffice/internal/domain/shared"
)

// ProductStatus represents the status of a product
type ProductStatus string

const (
	ProductStatusActive   ProductStatus = "active"
	ProductStatusInactive ProductStatus = "inactive"
)

// Product is a sellable item. Stock for it is counted in its base unit.
type Product struct {
	shared.TenantAggregateRoot
	Code     string
	Name     string
	BaseUnit string
	Status   ProductStatus
	Units    []ProductUnit
}

// NewProduct creates a new product together with its base unit (factor 1)
func NewProduct(tenantID uuid.UUID, code, name, baseUnit string) (*Product, error) {
	code = strings.TrimSpace(code)
	name = strings.TrimSpace(name)
	baseUnit = strings.TrimSpace(baseUnit)
	if code == "" || len(code) > 50 {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "product code must be 1-50 characters")
	}
	if name == "" || len(name) > 200 {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "product name must be 1-200 characters")
	}
	if baseUnit == "" {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "base unit is required")
	}

	p := &Product{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Code:                strings.ToUpper(code),
		Name:                name,
		BaseUnit:            baseUnit,
		Status:              ProductStatusActive,
	}
	base, _ := NewProductUnit(tenantID, p.ID, baseUnit, 1)
	p.Units = append(p.Units, *base)
	return p, nil
}

// AddUnit attaches a selling/purchasing unit to the product
func (p *Product) AddUnit(name string, factorToBase int64) (*ProductUnit, error) {
	for _, u := range p.Units {
		if strings.EqualFold(u.Name, name) {
			return nil, shared.NewDomainError(shared.CodeAlreadyExists, "unit "+name+" already exists for product")
		}
	}
	unit, err := NewProductUnit(p.TenantID, p.ID, name, factorToBase)
	if err != nil {
		return nil, err
	}
	p.Units = append(p.Units, *unit)
	p.UpdatedAt = time.Now()
	return unit, nil
}

// Deactivate hides the product from new documents
func (p *Product) Deactivate() {
	p.Status = ProductStatusInactive
	p.UpdatedAt = time.Now()
}

// IsActive returns true if the product is active
func (p *Product) IsActive() bool {
	return p.Status == ProductStatusActive
}
