package catalog

import (
	"context"

	"github.com/google/uuid"
	"github.com/retail/backoffice/internal/domain/shared"
)

// ProductRepository defines persistence operations for products and their units
type ProductRepository interface {
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Product, error)
	FindByCode(ctx context.Context, tenantID uuid.UUID, code string) (*Product, error)
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]Product, int64, error)
	ExistsByID(ctx context.Context, tenantID, id uuid.UUID) (bool, error)
	// Save creates or updates a product and its units
	Save(ctx context.Context, product *Product) error
}

// ProductUnitRepository reads product units
type ProductUnitRepository interface {
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*ProductUnit, error)
	FindByProductID(ctx context.Context, tenantID, productID uuid.UUID) ([]ProductUnit, error)
}
