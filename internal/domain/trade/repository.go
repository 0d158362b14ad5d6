package trade

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/retail/backoffice/internal/domain/shared"
)

// SaleFilter narrows a sale listing
type SaleFilter struct {
	shared.Filter
	CustomerID *uuid.UUID
	Status     SaleStatus
	From       *time.Time
	To         *time.Time
}

// SaleRepository defines the interface for sale persistence
type SaleRepository interface {
	// FindByIDForTenant loads a sale with its items
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Sale, error)

	// List returns a page of sales (without items) and the total count
	List(ctx context.Context, tenantID uuid.UUID, filter SaleFilter) ([]Sale, int64, error)

	// Create inserts a new sale and its items
	Create(ctx context.Context, sale *Sale) error

	// SaveWithLock updates the sale header with an optimistic version check
	// and, when replaceItems is set, replaces its item rows
	SaveWithLock(ctx context.Context, sale *Sale, replaceItems bool) error

	// MaxCouponNumber returns the highest coupon number ever assigned, or 0
	MaxCouponNumber(ctx context.Context, tenantID uuid.UUID) (int64, error)
}

// CouponSequence hands out per-tenant coupon numbers. Next must be called
// inside the confirming transaction; numbers are never reused.
type CouponSequence interface {
	Next(ctx context.Context, tenantID uuid.UUID) (int64, error)
}

// PurchaseFilter narrows a purchase listing
type PurchaseFilter struct {
	shared.Filter
	SupplierID *uuid.UUID
	Status     PurchaseStatus
}

// PurchaseRepository defines the interface for purchase persistence
type PurchaseRepository interface {
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Purchase, error)
	List(ctx context.Context, tenantID uuid.UUID, filter PurchaseFilter) ([]Purchase, int64, error)
	// Create inserts the purchase with its items and costs
	Create(ctx context.Context, purchase *Purchase) error
	// SaveWithLock updates the purchase header with an optimistic version check
	SaveWithLock(ctx context.Context, purchase *Purchase) error
}
