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

// SaleService runs the sale lifecycle. Confirmation and cancellation touch
// stock, cost lots, receivables and finance entries in one transaction.
type SaleService struct {
	scope   uow.TransactionScope
	locker  uow.Locker
	reads   uow.Repositories
	ledger  *appinventory.MovementLedger
	lots    *appinventory.CostLotEngine
	poster  *appfinance.PaymentPoster
	metrics *telemetry.LedgerMetrics
}

// NewSaleService creates a new SaleService
func NewSaleService(
	scope uow.TransactionScope,
	locker uow.Locker,
	reads uow.Repositories,
	ledger *appinventory.MovementLedger,
	lots *appinventory.CostLotEngine,
	poster *appfinance.PaymentPoster,
	metrics *telemetry.LedgerMetrics,
) *SaleService {
	if metrics == nil {
		metrics = telemetry.NoopLedgerMetrics()
	}
	return &SaleService{
		scope:   scope,
		locker:  locker,
		reads:   reads,
		ledger:  ledger,
		lots:    lots,
		poster:  poster,
		metrics: metrics,
	}
}

// CreateDraft creates a DRAFT sale
func (s *SaleService) CreateDraft(ctx context.Context, tenantID uuid.UUID, input CreateSaleInput) (*SaleResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "sale", "create_draft",
		telemetry.WithAttribute(telemetry.SpanAttrTenantID, tenantID.String()),
	)
	defer span.End()

	sale, err := newSaleFromInput(tenantID, input)
	if err != nil {
		return nil, err
	}
	err = s.scope.Execute(ctx, func(repos uow.Repositories) error {
		if err := ensureCustomer(ctx, repos, tenantID, sale.CustomerID); err != nil {
			return err
		}
		return repos.Sales().Create(ctx, sale)
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	logger.L(ctx).Info("Sale draft created",
		zap.String("sale_id", sale.ID.String()),
		zap.Int("items", len(sale.Items)),
		zap.String("total", sale.Total.String()),
	)
	resp := ToSaleResponse(sale)
	return &resp, nil
}

// GetSale returns a sale with its items
func (s *SaleService) GetSale(ctx context.Context, tenantID, saleID uuid.UUID) (*SaleResponse, error) {
	sale, err := s.reads.Sales().FindByIDForTenant(ctx, tenantID, saleID)
	if err != nil {
		return nil, err
	}
	resp := ToSaleResponse(sale)
	return &resp, nil
}

// ListSales returns a page of sales, newest first by default
func (s *SaleService) ListSales(ctx context.Context, tenantID uuid.UUID, filter SaleListFilter) ([]SaleResponse, int64, error) {
	if filter.OrderBy == "" {
		filter.OrderBy = "date"
	}
	domainFilter := trade.SaleFilter{
		Filter: shared.Filter{
			Page:     filter.Page,
			PageSize: filter.PageSize,
			OrderBy:  filter.OrderBy,
			OrderDir: filter.OrderDir,
		}.Normalize(),
		CustomerID: filter.CustomerID,
		Status:     trade.SaleStatus(filter.Status),
		From:       filter.From,
		To:         filter.To,
	}
	sales, total, err := s.reads.Sales().List(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	out := make([]SaleResponse, len(sales))
	for i := range sales {
		out[i] = ToSaleResponse(&sales[i])
	}
	return out, total, nil
}

// ReplaceItems swaps the item list of a DRAFT sale
func (s *SaleService) ReplaceItems(ctx context.Context, tenantID, saleID uuid.UUID, input ReplaceItemsInput) (*SaleResponse, error) {
	var sale *trade.Sale
	err := s.scope.Execute(ctx, func(repos uow.Repositories) error {
		var err error
		sale, err = repos.Sales().FindByIDForTenant(ctx, tenantID, saleID)
		if err != nil {
			return err
		}
		if err := sale.ReplaceItems(toSaleItemInputs(input.Items)); err != nil {
			return err
		}
		return repos.Sales().SaveWithLock(ctx, sale, true)
	})
	if err != nil {
		return nil, err
	}
	resp := ToSaleResponse(sale)
	return &resp, nil
}

// UpdateNotes changes the notes of a sale that is not cancelled
func (s *SaleService) UpdateNotes(ctx context.Context, tenantID, saleID uuid.UUID, input UpdateNotesInput) (*SaleResponse, error) {
	var sale *trade.Sale
	err := s.scope.Execute(ctx, func(repos uow.Repositories) error {
		var err error
		sale, err = repos.Sales().FindByIDForTenant(ctx, tenantID, saleID)
		if err != nil {
			return err
		}
		if err := sale.UpdateNotes(input.Notes); err != nil {
			return err
		}
		return repos.Sales().SaveWithLock(ctx, sale, false)
	})
	if err != nil {
		return nil, err
	}
	resp := ToSaleResponse(sale)
	return &resp, nil
}

// ConfirmSale confirms a DRAFT sale: stock leaves, lots are consumed, a coupon
// number is assigned and every payment is posted. All of it commits or none.
func (s *SaleService) ConfirmSale(ctx context.Context, tenantID, saleID uuid.UUID, payments []appfinance.PaymentInput) (*ConfirmationResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "sale", "confirm",
		telemetry.WithAttribute(telemetry.SpanAttrTenantID, tenantID.String()),
		telemetry.WithAttribute(telemetry.SpanAttrSaleID, saleID.String()),
	)
	defer span.End()

	// the item set decides which products to lock
	draft, err := s.reads.Sales().FindByIDForTenant(ctx, tenantID, saleID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if err := draft.CheckConfirmable(); err != nil {
		return nil, err
	}
	keys := productKeys(tenantID, draft.Items)

	var result *ConfirmationResult
	err = uow.WithLocks(ctx, s.locker, s.scope, keys, func(repos uow.Repositories) error {
		sale, err := repos.Sales().FindByIDForTenant(ctx, tenantID, saleID)
		if err != nil {
			return err
		}
		if !coveredBy(productKeys(tenantID, sale.Items), keys) {
			return shared.NewDomainError(shared.CodeConcurrentModification, "sale items changed while confirming")
		}
		result, err = s.confirm(ctx, repos, tenantID, sale, payments)
		return err
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.afterConfirm(ctx, tenantID, result)
	return result, nil
}

// CreateConfirmedSale creates a sale and confirms it in the same transaction
func (s *SaleService) CreateConfirmedSale(ctx context.Context, tenantID uuid.UUID, input CreateSaleInput) (*ConfirmationResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "sale", "create_confirmed",
		telemetry.WithAttribute(telemetry.SpanAttrTenantID, tenantID.String()),
	)
	defer span.End()

	sale, err := newSaleFromInput(tenantID, input)
	if err != nil {
		return nil, err
	}
	if err := sale.CheckConfirmable(); err != nil {
		return nil, err
	}
	telemetry.SetAttributes(span, telemetry.SpanAttrSaleID, sale.ID.String())

	var result *ConfirmationResult
	err = uow.WithLocks(ctx, s.locker, s.scope, productKeys(tenantID, sale.Items), func(repos uow.Repositories) error {
		if err := repos.Sales().Create(ctx, sale); err != nil {
			return fmt.Errorf("failed to create sale: %w", err)
		}
		var err error
		result, err = s.confirm(ctx, repos, tenantID, sale, input.Payments)
		return err
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.afterConfirm(ctx, tenantID, result)
	return result, nil
}

// confirm runs inside the caller's transaction with the products locked
func (s *SaleService) confirm(ctx context.Context, repos uow.Repositories, tenantID uuid.UUID, sale *trade.Sale, payments []appfinance.PaymentInput) (*ConfirmationResult, error) {
	if err := sale.CheckConfirmable(); err != nil {
		return nil, err
	}
	if err := ensureCustomer(ctx, repos, tenantID, sale.CustomerID); err != nil {
		return nil, err
	}

	result := &ConfirmationResult{
		Costs:    make([]inventory.ConsumptionResult, 0, len(sale.Items)),
		Payments: make([]appfinance.PostingResult, 0, len(payments)),
	}

	// Stock out and cost each line
	for _, item := range sale.Items {
		qtyBase, err := toBaseQuantity(ctx, repos, tenantID, item.ProductID, item.UnitID, item.Quantity)
		if err != nil {
			return nil, err
		}
		date := sale.Date
		if _, err := s.ledger.Record(ctx, repos, tenantID, appinventory.RecordMovementInput{
			ProductID:    item.ProductID,
			Direction:    inventory.DirectionOut.String(),
			QuantityBase: qtyBase,
			ReasonType:   inventory.ReasonSale.String(),
			ReasonID:     sale.ID.String(),
			Date:         &date,
		}); err != nil {
			return nil, err
		}
		consumption, err := s.lots.Consume(ctx, repos, tenantID, item.ProductID, qtyBase)
		if err != nil {
			return nil, err
		}
		result.Costs = append(result.Costs, consumption)
	}

	// Assign the coupon number
	coupon, err := repos.Coupons().Next(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to allocate coupon number: %w", err)
	}
	if err := sale.Confirm(coupon, time.Now()); err != nil {
		return nil, err
	}
	if err := repos.Sales().SaveWithLock(ctx, sale, false); err != nil {
		return nil, err
	}

	// Post payments
	ref := appfinance.SaleRef{SaleID: sale.ID, CustomerID: sale.CustomerID, Date: sale.Date}
	for _, p := range payments {
		posted, err := s.poster.PostSalePayment(ctx, repos, tenantID, ref, p)
		if err != nil {
			return nil, err
		}
		result.Payments = append(result.Payments, *posted)
	}

	result.Sale = ToSaleResponse(sale)
	return result, nil
}

func (s *SaleService) afterConfirm(ctx context.Context, tenantID uuid.UUID, result *ConfirmationResult) {
	s.metrics.RecordSaleConfirmed(ctx, tenantID)
	var coupon int64
	if result.Sale.CouponNumber != nil {
		coupon = *result.Sale.CouponNumber
	}
	logger.L(ctx).Info("Sale confirmed",
		zap.String("sale_id", result.Sale.ID.String()),
		zap.Int64("coupon_number", coupon),
		zap.String("total", result.Sale.Total.String()),
		zap.Int("payments", len(result.Payments)),
	)
}

// CancelSale cancels a DRAFT or CONFIRMED sale. A confirmed sale gets its
// stock back, its open receivables cancelled and its entries voided; cost
// lots are not restored and the coupon number stays assigned.
func (s *SaleService) CancelSale(ctx context.Context, tenantID, saleID uuid.UUID, reason string) (*CancellationResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "sale", "cancel",
		telemetry.WithAttribute(telemetry.SpanAttrTenantID, tenantID.String()),
		telemetry.WithAttribute(telemetry.SpanAttrSaleID, saleID.String()),
	)
	defer span.End()

	receivables, err := s.reads.Receivables().FindBySale(ctx, tenantID, saleID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	keys := make([]string, len(receivables))
	for i := range receivables {
		keys[i] = uow.ReceivableKey(tenantID, receivables[i].ID)
	}

	result := &CancellationResult{}
	err = uow.WithLocks(ctx, s.locker, s.scope, keys, func(repos uow.Repositories) error {
		sale, err := repos.Sales().FindByIDForTenant(ctx, tenantID, saleID)
		if err != nil {
			return err
		}
		previous, err := sale.Cancel(reason)
		if err != nil {
			return err
		}
		result.PreviousStatus = previous.String()

		if previous == trade.SaleStatusConfirmed {
			now := time.Now()
			for _, item := range sale.Items {
				qtyBase, err := toBaseQuantity(ctx, repos, tenantID, item.ProductID, item.UnitID, item.Quantity)
				if err != nil {
					return err
				}
				if _, err := s.ledger.Record(ctx, repos, tenantID, appinventory.RecordMovementInput{
					ProductID:    item.ProductID,
					Direction:    inventory.DirectionIn.String(),
					QuantityBase: qtyBase,
					ReasonType:   inventory.ReasonSaleCancellation.String(),
					ReasonID:     sale.ID.String(),
					Notes:        reason,
					Date:         &now,
				}); err != nil {
					return err
				}
				result.MovementsRecorded++
			}
			result.Reversal, err = s.poster.ReverseSale(ctx, repos, tenantID, sale.ID)
			if err != nil {
				return err
			}
		}

		if err := repos.Sales().SaveWithLock(ctx, sale, false); err != nil {
			return err
		}
		result.Sale = ToSaleResponse(sale)
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.metrics.RecordSaleCancelled(ctx, tenantID, result.PreviousStatus)
	logger.L(ctx).Info("Sale cancelled",
		zap.String("sale_id", saleID.String()),
		zap.String("previous_status", result.PreviousStatus),
		zap.Int("movements", result.MovementsRecorded),
		zap.Int("receivables_cancelled", result.Reversal.ReceivablesCancelled),
		zap.Int("entries_cancelled", result.Reversal.EntriesCancelled),
	)
	return result, nil
}

func newSaleFromInput(tenantID uuid.UUID, input CreateSaleInput) (*trade.Sale, error) {
	var date time.Time
	if input.Date != nil {
		date = *input.Date
	}
	sale := trade.NewSale(tenantID, input.CustomerID, date, input.Notes)
	if err := sale.ReplaceItems(toSaleItemInputs(input.Items)); err != nil {
		return nil, err
	}
	return sale, nil
}

func toSaleItemInputs(items []SaleItemInput) []trade.SaleItemInput {
	out := make([]trade.SaleItemInput, len(items))
	for i, item := range items {
		out[i] = trade.SaleItemInput{
			ProductID: item.ProductID,
			UnitID:    item.UnitID,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
		}
	}
	return out
}

func productKeys(tenantID uuid.UUID, items []trade.SaleItem) []string {
	keys := make([]string, len(items))
	for i, item := range items {
		keys[i] = uow.ProductKey(tenantID, item.ProductID)
	}
	return uow.SortedUnique(keys)
}

// coveredBy reports whether every key of need is in held
func coveredBy(need, held []string) bool {
	set := make(map[string]struct{}, len(held))
	for _, k := range held {
		set[k] = struct{}{}
	}
	for _, k := range need {
		if _, ok := set[k]; !ok {
			return false
		}
	}
	return true
}
