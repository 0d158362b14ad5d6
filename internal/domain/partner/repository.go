package partner

import (
	"context"

	"github.com/google/uuid"
	"github.com/retail/backoffice/internal/domain/shared"
)

// CustomerRepository defines persistence operations for customers
type CustomerRepository interface {
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Customer, error)
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]Customer, int64, error)
	ExistsByID(ctx context.Context, tenantID, id uuid.UUID) (bool, error)
	Save(ctx context.Context, customer *Customer) error
}
