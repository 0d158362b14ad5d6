package telemetry

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func installRecorder(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() { otel.SetTracerProvider(prev) })
	return recorder
}

func attrMap(attrs []attribute.KeyValue) map[string]string {
	out := make(map[string]string, len(attrs))
	for _, a := range attrs {
		out[string(a.Key)] = a.Value.Emit()
	}
	return out
}

func TestStartServiceSpan(t *testing.T) {
	recorder := installRecorder(t)
	saleID := uuid.New()

	ctx, span := StartServiceSpan(context.Background(), "sale", "confirm",
		WithAttribute(SpanAttrSaleID, saleID),
		WithAttribute(SpanAttrQuantity, int64(24)),
	)
	assert.NotEmpty(t, GetTraceID(ctx))
	span.End()

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "sale.confirm", spans[0].Name())
	attrs := attrMap(spans[0].Attributes())
	assert.Equal(t, saleID.String(), attrs[SpanAttrSaleID])
	assert.Equal(t, "24", attrs[SpanAttrQuantity])
}

func TestRecordError(t *testing.T) {
	recorder := installRecorder(t)

	_, span := StartSpan(context.Background(), "receivable.settle")
	RecordError(span, errors.New("boom"))
	RecordError(span, nil)
	span.End()

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, codes.Error, spans[0].Status().Code)
	assert.Equal(t, "boom", spans[0].Status().Description)
	require.Len(t, spans[0].Events(), 1)
}

func TestSetAttributesAndEvents(t *testing.T) {
	recorder := installRecorder(t)

	_, span := StartSpan(context.Background(), "lots.consume")
	SetAttributes(span, "product_id", "p-1", 42, "ignored", "short", true)
	AddEvent(span, "fifo_shortfall", "uncosted", int64(3))
	span.End()

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	attrs := attrMap(spans[0].Attributes())
	assert.Equal(t, "p-1", attrs["product_id"])
	assert.Equal(t, "true", attrs["short"])
	require.Len(t, spans[0].Events(), 1)
	assert.Equal(t, "fifo_shortfall", spans[0].Events()[0].Name)
}

func TestGetTraceID_NoSpan(t *testing.T) {
	assert.Empty(t, GetTraceID(context.Background()))
}
