package telemetry

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

// ErrMeterNil is returned when a metrics constructor gets a nil meter.
var ErrMeterNil = errors.New("NewLedgerMetrics: meter cannot be nil")

// LedgerMetrics counts ledger workflow outcomes.
type LedgerMetrics struct {
	salesConfirmed     *Counter
	salesCancelled     *Counter
	purchasesCancelled *Counter
	settlements        *Counter
	settledAmount      *FloatCounter
	fifoUncosted       *Counter
}

// NewLedgerMetrics registers the ledger instruments on meter.
func NewLedgerMetrics(meter metric.Meter) (*LedgerMetrics, error) {
	if meter == nil {
		return nil, ErrMeterNil
	}

	var (
		m   LedgerMetrics
		err error
	)
	if m.salesConfirmed, err = NewCounter(meter, "ledger_sales_confirmed_total", "Sales confirmed", "{sale}"); err != nil {
		return nil, err
	}
	if m.salesCancelled, err = NewCounter(meter, "ledger_sales_cancelled_total", "Sales cancelled", "{sale}"); err != nil {
		return nil, err
	}
	if m.purchasesCancelled, err = NewCounter(meter, "ledger_purchases_cancelled_total", "Purchases cancelled", "{purchase}"); err != nil {
		return nil, err
	}
	if m.settlements, err = NewCounter(meter, "ledger_receivable_settlements_total", "Receivable settlements recorded", "{settlement}"); err != nil {
		return nil, err
	}
	if m.settledAmount, err = NewFloatCounter(meter, "ledger_receivable_settled_amount_total", "Money applied to receivables", "1"); err != nil {
		return nil, err
	}
	if m.fifoUncosted, err = NewCounter(meter, "ledger_fifo_uncosted_quantity_total", "Base units consumed without a cost lot", "{unit}"); err != nil {
		return nil, err
	}
	return &m, nil
}

// NoopLedgerMetrics returns metrics backed by the no-op meter, for tests and
// for wiring without a collector.
func NoopLedgerMetrics() *LedgerMetrics {
	m, _ := NewLedgerMetrics(noop.NewMeterProvider().Meter("noop"))
	return m
}

// RecordSaleConfirmed counts a confirmed sale
func (m *LedgerMetrics) RecordSaleConfirmed(ctx context.Context, tenantID uuid.UUID) {
	m.salesConfirmed.Inc(ctx, AttrTenantID.String(tenantID.String()))
}

// RecordSaleCancelled counts a cancelled sale by the status it left
func (m *LedgerMetrics) RecordSaleCancelled(ctx context.Context, tenantID uuid.UUID, previousStatus string) {
	m.salesCancelled.Inc(ctx,
		AttrTenantID.String(tenantID.String()),
		AttrPrevStatus.String(previousStatus),
	)
}

// RecordPurchaseCancelled counts a cancelled purchase
func (m *LedgerMetrics) RecordPurchaseCancelled(ctx context.Context, tenantID uuid.UUID) {
	m.purchasesCancelled.Inc(ctx, AttrTenantID.String(tenantID.String()))
}

// RecordSettlement counts a settlement and the money it applied
func (m *LedgerMetrics) RecordSettlement(ctx context.Context, tenantID uuid.UUID, method string, amount decimal.Decimal) {
	attrs := []attribute.KeyValue{AttrTenantID.String(tenantID.String()), AttrPaymentMethod.String(method)}
	m.settlements.Inc(ctx, attrs...)
	m.settledAmount.Add(ctx, amount.InexactFloat64(), attrs...)
}

// RecordUncosted adds base units that FIFO could not cost
func (m *LedgerMetrics) RecordUncosted(ctx context.Context, tenantID uuid.UUID, strategy string, quantityBase int64) {
	if quantityBase <= 0 {
		return
	}
	m.fifoUncosted.Add(ctx, quantityBase,
		AttrTenantID.String(tenantID.String()),
		AttrStrategy.String(strategy),
	)
}
