package catalog

import (
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/retail/backoffice/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// ProductUnit is a selling or purchasing unit of a product. FactorToBase is
// used only to convert document quantities to base units, never for storage.
type ProductUnit struct {
	ID           uuid.UUID
	TenantID     uuid.UUID
	ProductID    uuid.UUID
	Name         string
	FactorToBase int64
	CreatedAt    time.Time
}

// NewProductUnit creates a new product unit
func NewProductUnit(tenantID, productID uuid.UUID, name string, factorToBase int64) (*ProductUnit, error) {
	name = strings.TrimSpace(name)
	if name == "" || len(name) > 50 {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "unit name must be 1-50 characters")
	}
	if factorToBase < 1 {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "unit factor to base must be at least 1")
	}
	return &ProductUnit{
		ID:           uuid.New(),
		TenantID:     tenantID,
		ProductID:    productID,
		Name:         name,
		FactorToBase: factorToBase,
		CreatedAt:    time.Now(),
	}, nil
}

// ToBase converts a quantity in this unit to base units, rounded half away
// from zero to the nearest whole base unit
func (u *ProductUnit) ToBase(quantity decimal.Decimal) int64 {
	return quantity.Mul(decimal.NewFromInt(u.FactorToBase)).Round(0).IntPart()
}

// FromBase converts base units back into this unit for display
func (u *ProductUnit) FromBase(quantityBase int64) float64 {
	if u.FactorToBase == 0 {
		return math.NaN()
	}
	return float64(quantityBase) / float64(u.FactorToBase)
}
