package inventory

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/retail/backoffice/internal/domain/shared"
)

// MovementFilter narrows a movement listing
type MovementFilter struct {
	shared.Filter
	ProductID  *uuid.UUID
	Direction  Direction
	ReasonType ReasonType
	ReasonID   string
	From       *time.Time
	To         *time.Time
}

// MovementRepository persists the append-only movement log
type MovementRepository interface {
	// Create inserts a movement. Movements are never updated or deleted.
	Create(ctx context.Context, movement *InventoryMovement) error
	// SumStock returns Σ IN − Σ OUT for a product
	SumStock(ctx context.Context, tenantID, productID uuid.UUID) (int64, error)
	// List returns a page of movements and the total count
	List(ctx context.Context, tenantID uuid.UUID, filter MovementFilter) ([]InventoryMovement, int64, error)
	// FindByReason returns the movements correlated with a reason
	FindByReason(ctx context.Context, tenantID uuid.UUID, reasonType ReasonType, reasonID string) ([]InventoryMovement, error)
}

// CostLotRepository persists cost lots
type CostLotRepository interface {
	Create(ctx context.Context, lot *CostLot) error
	// FindAvailableForUpdate returns lots with remaining > 0 in FIFO order,
	// row-locked for the rest of the transaction
	FindAvailableForUpdate(ctx context.Context, tenantID, productID uuid.UUID) ([]*CostLot, error)
	// FindBySourceLine returns every lot created from a purchase line
	FindBySourceLine(ctx context.Context, tenantID, sourceLineID uuid.UUID) ([]*CostLot, error)
	FindByProduct(ctx context.Context, tenantID, productID uuid.UUID, onlyAvailable bool) ([]CostLot, error)
	// UpdateRemaining persists the remaining quantity of lots
	UpdateRemaining(ctx context.Context, lots []*CostLot) error
	// ZeroByIDs forces remaining to zero for the given lots
	ZeroByIDs(ctx context.Context, tenantID uuid.UUID, lotIDs []uuid.UUID) (int64, error)
}
