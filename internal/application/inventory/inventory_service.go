package inventory

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/retail/backoffice/internal/application/uow"
	"github.com/retail/backoffice/internal/domain/inventory"
	"github.com/retail/backoffice/internal/domain/shared"
	"github.com/retail/backoffice/internal/infrastructure/logger"
	"github.com/retail/backoffice/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// InventoryService exposes the movement ledger and physical counts
type InventoryService struct {
	scope  uow.TransactionScope
	locker uow.Locker
	reads  uow.Repositories
	ledger *MovementLedger
	lots   *CostLotEngine
}

// NewInventoryService creates a new InventoryService
func NewInventoryService(scope uow.TransactionScope, locker uow.Locker, reads uow.Repositories, ledger *MovementLedger, lots *CostLotEngine) *InventoryService {
	return &InventoryService{
		scope:  scope,
		locker: locker,
		reads:  reads,
		ledger: ledger,
		lots:   lots,
	}
}

// RecordMovement inserts one movement. No stock check is made.
func (s *InventoryService) RecordMovement(ctx context.Context, tenantID uuid.UUID, input RecordMovementInput) (*MovementResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "inventory", "record_movement",
		telemetry.WithAttribute(telemetry.SpanAttrTenantID, tenantID.String()),
		telemetry.WithAttribute(telemetry.SpanAttrProductID, input.ProductID.String()),
		telemetry.WithAttribute(telemetry.SpanAttrQuantity, input.QuantityBase),
	)
	defer span.End()

	if reason := inventory.ReasonType(input.ReasonType); reason != "" && !reason.IsDirect() {
		err := shared.NewDomainError(shared.CodeInvalidInput,
			fmt.Sprintf("reason type %q is reserved for ledger workflows", input.ReasonType))
		telemetry.RecordError(span, err)
		return nil, err
	}

	var movement *inventory.InventoryMovement
	err := s.scope.Execute(ctx, func(repos uow.Repositories) error {
		var err error
		movement, err = s.ledger.Record(ctx, repos, tenantID, input)
		return err
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	logger.L(ctx).Debug("Movement recorded",
		zap.String("movement_id", movement.ID.String()),
		zap.String("product_id", movement.ProductID.String()),
		zap.String("direction", movement.Direction.String()),
		zap.Int64("quantity_base", movement.QuantityBase),
		zap.String("reason_type", movement.ReasonType.String()),
	)
	resp := ToMovementResponse(movement)
	return &resp, nil
}

// CurrentStock returns the product's stock in base units
func (s *InventoryService) CurrentStock(ctx context.Context, tenantID, productID uuid.UUID) (*StockResponse, error) {
	if err := ensureProduct(ctx, s.reads, tenantID, productID); err != nil {
		return nil, err
	}
	qty, err := s.ledger.Stock(ctx, s.reads, tenantID, productID)
	if err != nil {
		return nil, err
	}
	return &StockResponse{ProductID: productID, QuantityBase: qty}, nil
}

// ListMovements returns a page of movements, newest first
func (s *InventoryService) ListMovements(ctx context.Context, tenantID uuid.UUID, filter MovementListFilter) ([]MovementResponse, int64, error) {
	return s.ledger.List(ctx, s.reads, tenantID, filter)
}

// ListLots lists the product's cost lots oldest first
func (s *InventoryService) ListLots(ctx context.Context, tenantID, productID uuid.UUID, onlyAvailable bool) ([]LotResponse, error) {
	return s.lots.ListLots(ctx, tenantID, productID, onlyAvailable)
}

// RecordInventoryCount brings the ledger in line with a physical count by
// recording the difference as one INVENTORY_COUNT movement. A shrinkage is
// costed against the product's lots.
func (s *InventoryService) RecordInventoryCount(ctx context.Context, tenantID uuid.UUID, input InventoryCountInput) (*InventoryCountResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "inventory", "record_count",
		telemetry.WithAttribute(telemetry.SpanAttrTenantID, tenantID.String()),
		telemetry.WithAttribute(telemetry.SpanAttrProductID, input.ProductID.String()),
	)
	defer span.End()

	if input.CountedQuantityBase < 0 {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "counted quantity cannot be negative")
	}

	result := &InventoryCountResult{ProductID: input.ProductID, CountedStock: input.CountedQuantityBase}
	keys := []string{uow.ProductKey(tenantID, input.ProductID)}
	err := uow.WithLocks(ctx, s.locker, s.scope, keys, func(repos uow.Repositories) error {
		if err := ensureProduct(ctx, repos, tenantID, input.ProductID); err != nil {
			return err
		}
		current, err := s.ledger.Stock(ctx, repos, tenantID, input.ProductID)
		if err != nil {
			return err
		}
		result.PreviousStock = current
		result.Delta = input.CountedQuantityBase - current
		if result.Delta == 0 {
			return nil
		}

		direction, qty := inventory.DirectionIn, result.Delta
		if result.Delta < 0 {
			direction, qty = inventory.DirectionOut, -result.Delta
		}
		movement, err := s.ledger.Record(ctx, repos, tenantID, RecordMovementInput{
			ProductID:    input.ProductID,
			Direction:    direction.String(),
			QuantityBase: qty,
			ReasonType:   inventory.ReasonInventoryCount.String(),
			Notes:        input.Notes,
			DeviceID:     input.DeviceID,
		})
		if err != nil {
			return err
		}
		mv := ToMovementResponse(movement)
		result.Movement = &mv

		if direction == inventory.DirectionOut {
			consumption, err := s.lots.Consume(ctx, repos, tenantID, input.ProductID, qty)
			if err != nil {
				return err
			}
			result.Consumption = &consumption
		}
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	logger.L(ctx).Info("Inventory count recorded",
		zap.String("product_id", input.ProductID.String()),
		zap.Int64("previous_stock", result.PreviousStock),
		zap.Int64("counted_stock", result.CountedStock),
		zap.Int64("delta", result.Delta),
	)
	return result, nil
}
