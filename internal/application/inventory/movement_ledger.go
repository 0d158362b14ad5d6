package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/retail/backoffice/internal/application/uow"
	"github.com/retail/backoffice/internal/domain/inventory"
	"github.com/retail/backoffice/internal/domain/shared"
)

// MovementLedger appends stock movements. It never checks stock levels:
// negative stock is a legal state.
type MovementLedger struct{}

// NewMovementLedger creates a new MovementLedger
func NewMovementLedger() *MovementLedger {
	return &MovementLedger{}
}

// Record validates and inserts one movement inside repos' transaction
func (l *MovementLedger) Record(ctx context.Context, repos uow.Repositories, tenantID uuid.UUID, input RecordMovementInput) (*inventory.InventoryMovement, error) {
	if err := ensureProduct(ctx, repos, tenantID, input.ProductID); err != nil {
		return nil, err
	}

	reason := inventory.ReasonType(input.ReasonType)
	if reason == "" {
		reason = inventory.ReasonManual
	}
	var date time.Time
	if input.Date != nil {
		date = *input.Date
	}
	movement, err := inventory.NewInventoryMovement(tenantID, inventory.NewMovementParams{
		ProductID:    input.ProductID,
		Date:         date,
		Direction:    inventory.Direction(input.Direction),
		QuantityBase: input.QuantityBase,
		ReasonType:   reason,
		ReasonID:     input.ReasonID,
		Notes:        input.Notes,
		DeviceID:     input.DeviceID,
	})
	if err != nil {
		return nil, err
	}
	if err := repos.Movements().Create(ctx, movement); err != nil {
		return nil, fmt.Errorf("failed to record movement: %w", err)
	}
	return movement, nil
}

// Stock returns Σ IN − Σ OUT for a product using repos
func (l *MovementLedger) Stock(ctx context.Context, repos uow.Repositories, tenantID, productID uuid.UUID) (int64, error) {
	return repos.Movements().SumStock(ctx, tenantID, productID)
}

// List returns a page of movements, newest first
func (l *MovementLedger) List(ctx context.Context, repos uow.Repositories, tenantID uuid.UUID, filter MovementListFilter) ([]MovementResponse, int64, error) {
	if filter.Direction != "" && !inventory.Direction(filter.Direction).IsValid() {
		return nil, 0, shared.NewDomainError(shared.CodeInvalidInput, fmt.Sprintf("invalid movement direction %q", filter.Direction))
	}
	if filter.ReasonType != "" && !inventory.ReasonType(filter.ReasonType).IsValid() {
		return nil, 0, shared.NewDomainError(shared.CodeInvalidInput, fmt.Sprintf("invalid reason type %q", filter.ReasonType))
	}
	domainFilter := inventory.MovementFilter{
		Filter: shared.Filter{
			Page:     filter.Page,
			PageSize: filter.PageSize,
			OrderBy:  "date",
			OrderDir: "desc",
		}.Normalize(),
		ProductID:  filter.ProductID,
		Direction:  inventory.Direction(filter.Direction),
		ReasonType: inventory.ReasonType(filter.ReasonType),
		ReasonID:   filter.ReasonID,
		From:       filter.From,
		To:         filter.To,
	}

	movements, total, err := repos.Movements().List(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	out := make([]MovementResponse, len(movements))
	for i := range movements {
		out[i] = ToMovementResponse(&movements[i])
	}
	return out, total, nil
}
