package telemetry

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Aggregation {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	out := make(map[string]metricdata.Aggregation)
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			out[m.Name] = m.Data
		}
	}
	return out
}

func intSum(t *testing.T, data metricdata.Aggregation) int64 {
	t.Helper()
	sum, ok := data.(metricdata.Sum[int64])
	require.True(t, ok)
	var total int64
	for _, dp := range sum.DataPoints {
		total += dp.Value
	}
	return total
}

func TestNewLedgerMetrics_NilMeter(t *testing.T) {
	m, err := NewLedgerMetrics(nil)
	assert.ErrorIs(t, err, ErrMeterNil)
	assert.Nil(t, m)
}

func TestLedgerMetrics_Records(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	m, err := NewLedgerMetrics(provider.Meter("test"))
	require.NoError(t, err)

	ctx := context.Background()
	tenantID := uuid.New()

	m.RecordSaleConfirmed(ctx, tenantID)
	m.RecordSaleConfirmed(ctx, tenantID)
	m.RecordSaleCancelled(ctx, tenantID, "CONFIRMED")
	m.RecordPurchaseCancelled(ctx, tenantID)
	m.RecordSettlement(ctx, tenantID, "PIX", decimal.NewFromInt(60))
	m.RecordUncosted(ctx, tenantID, "fifo", 7)
	m.RecordUncosted(ctx, tenantID, "fifo", 0)

	data := collect(t, reader)
	assert.Equal(t, int64(2), intSum(t, data["ledger_sales_confirmed_total"]))
	assert.Equal(t, int64(1), intSum(t, data["ledger_sales_cancelled_total"]))
	assert.Equal(t, int64(1), intSum(t, data["ledger_purchases_cancelled_total"]))
	assert.Equal(t, int64(1), intSum(t, data["ledger_receivable_settlements_total"]))
	assert.Equal(t, int64(7), intSum(t, data["ledger_fifo_uncosted_quantity_total"]))

	amount, ok := data["ledger_receivable_settled_amount_total"].(metricdata.Sum[float64])
	require.True(t, ok)
	require.Len(t, amount.DataPoints, 1)
	assert.InDelta(t, 60.0, amount.DataPoints[0].Value, 0.0001)
}

func TestNoopLedgerMetrics(t *testing.T) {
	m := NoopLedgerMetrics()
	require.NotNil(t, m)
	m.RecordSaleConfirmed(context.Background(), uuid.New())
}
