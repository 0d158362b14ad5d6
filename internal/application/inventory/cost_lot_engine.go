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

// CostLotEngine opens cost lots for received goods and draws them down in
// FIFO order when goods leave. The shortfall policy belongs to the
// configured CostConsumptionStrategy.
//
// Methods taking a uow.Repositories run inside the caller's transaction and
// expect the caller to hold the product lock. The others open their own.
type CostLotEngine struct {
	scope    uow.TransactionScope
	locker   uow.Locker
	reads    uow.Repositories
	strategy inventory.CostConsumptionStrategy
	metrics  *telemetry.LedgerMetrics
}

// NewCostLotEngine creates a new CostLotEngine
func NewCostLotEngine(scope uow.TransactionScope, locker uow.Locker, reads uow.Repositories, strategy inventory.CostConsumptionStrategy, metrics *telemetry.LedgerMetrics) *CostLotEngine {
	if metrics == nil {
		metrics = telemetry.NoopLedgerMetrics()
	}
	return &CostLotEngine{
		scope:    scope,
		locker:   locker,
		reads:    reads,
		strategy: strategy,
		metrics:  metrics,
	}
}

// StrategyName returns the name of the consumption strategy in use
func (e *CostLotEngine) StrategyName() string {
	return e.strategy.Name()
}

// Create opens a lot inside repos' transaction
func (e *CostLotEngine) Create(ctx context.Context, repos uow.Repositories, tenantID uuid.UUID, input CreateLotInput) (*inventory.CostLot, error) {
	lot, err := inventory.NewCostLot(tenantID, inventory.NewCostLotParams{
		ProductID:     input.ProductID,
		PurchaseID:    input.PurchaseID,
		SourceLineID:  input.SourceLineID,
		QuantityBase:  input.QuantityBase,
		LineTotalCost: input.LineTotalCost,
	})
	if err != nil {
		return nil, err
	}
	if err := repos.CostLots().Create(ctx, lot); err != nil {
		return nil, fmt.Errorf("failed to create cost lot: %w", err)
	}
	return lot, nil
}

// CreateLot opens a lot in its own transaction
func (e *CostLotEngine) CreateLot(ctx context.Context, tenantID uuid.UUID, input CreateLotInput) (*LotResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "cost_lot", "create",
		telemetry.WithAttribute(telemetry.SpanAttrTenantID, tenantID.String()),
		telemetry.WithAttribute(telemetry.SpanAttrProductID, input.ProductID.String()),
	)
	defer span.End()

	var lot *inventory.CostLot
	err := e.scope.Execute(ctx, func(repos uow.Repositories) error {
		if err := ensureProduct(ctx, repos, tenantID, input.ProductID); err != nil {
			return err
		}
		var err error
		lot, err = e.Create(ctx, repos, tenantID, input)
		return err
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	resp := ToLotResponse(lot)
	return &resp, nil
}

// Consume draws needBase units of a product from its open lots, oldest
// first, inside repos' transaction. The lots are row-locked for the rest of
// the transaction.
func (e *CostLotEngine) Consume(ctx context.Context, repos uow.Repositories, tenantID, productID uuid.UUID, needBase int64) (inventory.ConsumptionResult, error) {
	if needBase <= 0 {
		return inventory.ConsumptionResult{}, shared.NewDomainError(shared.CodeInvalidInput, "quantity to consume must be positive")
	}
	lots, err := repos.CostLots().FindAvailableForUpdate(ctx, tenantID, productID)
	if err != nil {
		return inventory.ConsumptionResult{}, fmt.Errorf("failed to load cost lots: %w", err)
	}

	result, err := e.strategy.Consume(ctx, productID, lots, needBase)
	if err != nil {
		return inventory.ConsumptionResult{}, err
	}

	touched := make(map[uuid.UUID]struct{}, len(result.Draws))
	for _, d := range result.Draws {
		touched[d.LotID] = struct{}{}
	}
	changed := make([]*inventory.CostLot, 0, len(touched))
	for _, lot := range lots {
		if _, ok := touched[lot.ID]; ok {
			changed = append(changed, lot)
		}
	}
	if err := repos.CostLots().UpdateRemaining(ctx, changed); err != nil {
		return inventory.ConsumptionResult{}, err
	}

	if result.HasShortfall() {
		logger.L(ctx).Warn("FIFO consumption exceeded available lots, remainder left uncosted",
			zap.String("product_id", productID.String()),
			zap.Int64("requested_base", result.RequestedBase),
			zap.Int64("uncosted_base", result.UncostedBase),
			zap.String("strategy", e.strategy.Name()),
		)
		e.metrics.RecordUncosted(ctx, tenantID, e.strategy.Name(), result.UncostedBase)
	}
	return result, nil
}

// ConsumeFIFO serializes on the product and consumes in its own transaction
func (e *CostLotEngine) ConsumeFIFO(ctx context.Context, tenantID, productID uuid.UUID, needBase int64) (*inventory.ConsumptionResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "cost_lot", "consume_fifo",
		telemetry.WithAttribute(telemetry.SpanAttrTenantID, tenantID.String()),
		telemetry.WithAttribute(telemetry.SpanAttrProductID, productID.String()),
		telemetry.WithAttribute(telemetry.SpanAttrQuantity, needBase),
	)
	defer span.End()

	var result inventory.ConsumptionResult
	err := uow.WithLocks(ctx, e.locker, e.scope, []string{uow.ProductKey(tenantID, productID)}, func(repos uow.Repositories) error {
		if err := ensureProduct(ctx, repos, tenantID, productID); err != nil {
			return err
		}
		var err error
		result, err = e.Consume(ctx, repos, tenantID, productID, needBase)
		return err
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	telemetry.SetAttributes(span, "total_cost", result.TotalCost.String(), "uncosted_base", result.UncostedBase)
	return &result, nil
}

// Zero forces the given lots to zero remaining inside repos' transaction
func (e *CostLotEngine) Zero(ctx context.Context, repos uow.Repositories, tenantID uuid.UUID, lotIDs []uuid.UUID) (int64, error) {
	n, err := repos.CostLots().ZeroByIDs(ctx, tenantID, lotIDs)
	if err != nil {
		return 0, fmt.Errorf("failed to zero cost lots: %w", err)
	}
	return n, nil
}

// ZeroLots forces lots to zero remaining without moving inventory
func (e *CostLotEngine) ZeroLots(ctx context.Context, tenantID uuid.UUID, lotIDs []uuid.UUID) (int64, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "cost_lot", "zero",
		telemetry.WithAttribute(telemetry.SpanAttrTenantID, tenantID.String()),
		telemetry.WithAttribute("lot_count", len(lotIDs)),
	)
	defer span.End()

	var n int64
	err := e.scope.Execute(ctx, func(repos uow.Repositories) error {
		var err error
		n, err = e.Zero(ctx, repos, tenantID, lotIDs)
		return err
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return 0, err
	}
	logger.L(ctx).Info("Cost lots zeroed", zap.Int("requested", len(lotIDs)), zap.Int64("zeroed", n))
	return n, nil
}

// ListLots lists a product's lots in FIFO order
func (e *CostLotEngine) ListLots(ctx context.Context, tenantID, productID uuid.UUID, onlyAvailable bool) ([]LotResponse, error) {
	if err := ensureProduct(ctx, e.reads, tenantID, productID); err != nil {
		return nil, err
	}
	lots, err := e.reads.CostLots().FindByProduct(ctx, tenantID, productID, onlyAvailable)
	if err != nil {
		return nil, err
	}
	out := make([]LotResponse, len(lots))
	for i := range lots {
		out[i] = ToLotResponse(&lots[i])
	}
	return out, nil
}

func ensureProduct(ctx context.Context, repos uow.Repositories, tenantID, productID uuid.UUID) error {
	exists, err := repos.Products().ExistsByID(ctx, tenantID, productID)
	if err != nil {
		return err
	}
	if !exists {
		return shared.NotFound("product", productID)
	}
	return nil
}
