package trade

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	appfinance "github.com/retail/backoffice/internal/application/finance"
	appinventory "github.com/retail/backoffice/internal/application/inventory"
	"github.com/retail/backoffice/internal/application/uow"
	"github.com/retail/backoffice/internal/domain/inventory"
	"github.com/retail/backoffice/internal/domain/shared"
	"github.com/retail/backoffice/internal/domain/trade"
	"github.com/retail/backoffice/internal/infrastructure/logger"
	"github.com/retail/backoffice/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// PurchaseService records goods received and reverses them on cancellation
type PurchaseService struct {
	scope   uow.TransactionScope
	locker  uow.Locker
	reads   uow.Repositories
	ledger  *appinventory.MovementLedger
	lots    *appinventory.CostLotEngine
	poster  *appfinance.PaymentPoster
	metrics *telemetry.LedgerMetrics
}

// NewPurchaseService creates a new PurchaseService
func NewPurchaseService(
	scope uow.TransactionScope,
	locker uow.Locker,
	reads uow.Repositories,
	ledger *appinventory.MovementLedger,
	lots *appinventory.CostLotEngine,
	poster *appfinance.PaymentPoster,
	metrics *telemetry.LedgerMetrics,
) *PurchaseService {
	if metrics == nil {
		metrics = telemetry.NoopLedgerMetrics()
	}
	return &PurchaseService{
		scope:   scope,
		locker:  locker,
		reads:   reads,
		ledger:  ledger,
		lots:    lots,
		poster:  poster,
		metrics: metrics,
	}
}

// CreatePurchase records a CONFIRMED purchase. Each line opens a cost lot
// priced at its own line total and brings stock in; extra costs are kept on
// the purchase only. Payments must be immediate and post EXPENSE entries.
func (s *PurchaseService) CreatePurchase(ctx context.Context, tenantID uuid.UUID, input CreatePurchaseInput) (*PurchaseCreationResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "purchase", "create",
		telemetry.WithAttribute(telemetry.SpanAttrTenantID, tenantID.String()),
	)
	defer span.End()

	if len(input.Items) == 0 {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "a purchase needs at least one item")
	}
	var date time.Time
	if input.Date != nil {
		date = *input.Date
	}
	purchase := trade.NewPurchase(tenantID, input.SupplierID, date, input.Notes)
	telemetry.SetAttributes(span, telemetry.SpanAttrPurchaseID, purchase.ID.String())

	result := &PurchaseCreationResult{}
	err := s.scope.Execute(ctx, func(repos uow.Repositories) error {
		// Build lines in base units
		for _, in := range input.Items {
			qtyBase, err := toBaseQuantity(ctx, repos, tenantID, in.ProductID, in.UnitID, in.Quantity)
			if err != nil {
				return err
			}
			if _, err := purchase.AddItem(in.ProductID, in.UnitID, in.Quantity, in.UnitCost, qtyBase); err != nil {
				return err
			}
		}
		for _, c := range input.Costs {
			if err := purchase.AddCost(c.Description, c.Amount); err != nil {
				return err
			}
		}
		if err := repos.Purchases().Create(ctx, purchase); err != nil {
			return fmt.Errorf("failed to create purchase: %w", err)
		}

		// Open a lot and bring stock in per line
		date := purchase.Date
		for _, item := range purchase.Items {
			lot, err := s.lots.Create(ctx, repos, tenantID, appinventory.CreateLotInput{
				ProductID:     item.ProductID,
				PurchaseID:    purchase.ID,
				SourceLineID:  item.ID,
				QuantityBase:  item.QuantityBase,
				LineTotalCost: item.LineTotal,
			})
			if err != nil {
				return err
			}
			if _, err := s.ledger.Record(ctx, repos, tenantID, appinventory.RecordMovementInput{
				ProductID:    item.ProductID,
				Direction:    inventory.DirectionIn.String(),
				QuantityBase: item.QuantityBase,
				ReasonType:   inventory.ReasonPurchase.String(),
				ReasonID:     purchase.ID.String(),
				Date:         &date,
			}); err != nil {
				return err
			}
			result.Lots = append(result.Lots, LotRef{
				LotID:        lot.ID,
				SourceLineID: item.ID,
				QuantityBase: lot.InitialQuantityBase,
				UnitCostBase: lot.UnitCostBase,
			})
		}

		// Post payments
		for _, p := range input.Payments {
			posted, err := s.poster.PostPurchasePayment(ctx, repos, tenantID, purchase.ID, purchase.Date, p)
			if err != nil {
				return err
			}
			result.Payments = append(result.Payments, *posted)
		}
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	result.Purchase = ToPurchaseResponse(purchase)
	logger.L(ctx).Info("Purchase recorded",
		zap.String("purchase_id", purchase.ID.String()),
		zap.Int("items", len(purchase.Items)),
		zap.String("total", purchase.Total.String()),
	)
	return result, nil
}

// GetPurchase returns a purchase with its lines and costs
func (s *PurchaseService) GetPurchase(ctx context.Context, tenantID, purchaseID uuid.UUID) (*PurchaseResponse, error) {
	p, err := s.reads.Purchases().FindByIDForTenant(ctx, tenantID, purchaseID)
	if err != nil {
		return nil, err
	}
	resp := ToPurchaseResponse(p)
	return &resp, nil
}

// ListPurchases returns a page of purchases
func (s *PurchaseService) ListPurchases(ctx context.Context, tenantID uuid.UUID, filter PurchaseListFilter) ([]PurchaseResponse, int64, error) {
	if filter.OrderBy == "" {
		filter.OrderBy = "date"
	}
	domainFilter := trade.PurchaseFilter{
		Filter: shared.Filter{
			Page:     filter.Page,
			PageSize: filter.PageSize,
			OrderBy:  filter.OrderBy,
			OrderDir: filter.OrderDir,
		}.Normalize(),
		SupplierID: filter.SupplierID,
		Status:     trade.PurchaseStatus(filter.Status),
	}
	rows, total, err := s.reads.Purchases().List(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	out := make([]PurchaseResponse, len(rows))
	for i := range rows {
		out[i] = ToPurchaseResponse(&rows[i])
	}
	return out, total, nil
}

// CancelPurchase takes every line's stock back out and zeroes the lots the
// line opened, whether or not they were already consumed. The expense
// entries of the purchase's payments are voided.
func (s *PurchaseService) CancelPurchase(ctx context.Context, tenantID, purchaseID uuid.UUID, reason string) (*PurchaseCancellationResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "purchase", "cancel",
		telemetry.WithAttribute(telemetry.SpanAttrTenantID, tenantID.String()),
		telemetry.WithAttribute(telemetry.SpanAttrPurchaseID, purchaseID.String()),
	)
	defer span.End()

	current, err := s.reads.Purchases().FindByIDForTenant(ctx, tenantID, purchaseID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	keys := make([]string, 0, len(current.Items))
	for _, id := range current.ProductIDs() {
		keys = append(keys, uow.ProductKey(tenantID, id))
	}

	result := &PurchaseCancellationResult{}
	err = uow.WithLocks(ctx, s.locker, s.scope, keys, func(repos uow.Repositories) error {
		purchase, err := repos.Purchases().FindByIDForTenant(ctx, tenantID, purchaseID)
		if err != nil {
			return err
		}
		if err := purchase.Cancel(reason); err != nil {
			return err
		}

		now := time.Now()
		for _, item := range purchase.Items {
			if _, err := s.ledger.Record(ctx, repos, tenantID, appinventory.RecordMovementInput{
				ProductID:    item.ProductID,
				Direction:    inventory.DirectionOut.String(),
				QuantityBase: item.QuantityBase,
				ReasonType:   inventory.ReasonAdjustment.String(),
				ReasonID:     purchase.ID.String(),
				Notes:        reason,
				Date:         &now,
			}); err != nil {
				return err
			}
			result.MovementsRecorded++

			lots, err := repos.CostLots().FindBySourceLine(ctx, tenantID, item.ID)
			if err != nil {
				return err
			}
			ids := make([]uuid.UUID, len(lots))
			for i, lot := range lots {
				ids[i] = lot.ID
			}
			zeroed, err := s.lots.Zero(ctx, repos, tenantID, ids)
			if err != nil {
				return err
			}
			result.LotsZeroed += zeroed
		}

		if err := repos.Purchases().SaveWithLock(ctx, purchase); err != nil {
			return err
		}
		result.EntriesCancelled, err = s.poster.ReversePurchase(ctx, repos, tenantID, purchase.ID)
		if err != nil {
			return err
		}
		result.Purchase = ToPurchaseResponse(purchase)
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.metrics.RecordPurchaseCancelled(ctx, tenantID)
	logger.L(ctx).Info("Purchase cancelled",
		zap.String("purchase_id", purchaseID.String()),
		zap.Int("movements", result.MovementsRecorded),
		zap.Int64("lots_zeroed", result.LotsZeroed),
		zap.Int("entries_cancelled", result.EntriesCancelled),
	)
	return result, nil
}
