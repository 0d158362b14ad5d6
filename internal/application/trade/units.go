package trade

import (
	"context"

	"github.com/google/uuid"
	"github.com/retail/backoffice/internal/application/uow"
	"github.com/retail/backoffice/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// toBaseQuantity converts a line quantity into the product's base unit. The
// unit must belong to the line's product.
func toBaseQuantity(ctx context.Context, repos uow.Repositories, tenantID, productID, unitID uuid.UUID, quantity decimal.Decimal) (int64, error) {
	unit, err := repos.ProductUnits().FindByIDForTenant(ctx, tenantID, unitID)
	if err != nil {
		return 0, err
	}
	if unit.ProductID != productID {
		return 0, shared.NotFound("unit", unitID)
	}
	return unit.ToBase(quantity), nil
}

func ensureCustomer(ctx context.Context, repos uow.Repositories, tenantID uuid.UUID, customerID *uuid.UUID) error {
	if customerID == nil {
		return nil
	}
	exists, err := repos.Customers().ExistsByID(ctx, tenantID, *customerID)
	if err != nil {
		return err
	}
	if !exists {
		return shared.NotFound("customer", *customerID)
	}
	return nil
}
