package logger

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func contextWithSpan() context.Context {
	sc := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    trace.TraceID{0x0a, 0x0b, 0x0c, 0x0d, 0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08, 0x09, 0x10, 0x11, 0x12},
		SpanID:     trace.SpanID{0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08},
		TraceFlags: trace.FlagsSampled,
	})
	return trace.ContextWithSpanContext(context.Background(), sc)
}

func TestFromContext(t *testing.T) {
	t.Run("returns attached logger", func(t *testing.T) {
		l := zap.NewExample()
		assert.Same(t, l, FromContext(WithContext(context.Background(), l)))
	})

	t.Run("falls back to nop", func(t *testing.T) {
		l := FromContext(context.Background())
		require.NotNil(t, l)
		assert.NotPanics(t, func() { l.Info("nothing") })
	})
}

func TestContextValues(t *testing.T) {
	tenantID := uuid.New()
	ctx := WithRequestID(context.Background(), "req-1")
	ctx = WithTenantID(ctx, tenantID)
	ctx = WithDeviceID(ctx, "pos-7")

	assert.Equal(t, "req-1", GetRequestID(ctx))
	assert.Equal(t, tenantID.String(), GetTenantID(ctx))
	assert.Equal(t, "pos-7", GetDeviceID(ctx))

	empty := context.Background()
	assert.Empty(t, GetRequestID(empty))
	assert.Empty(t, GetTenantID(empty))
	assert.Empty(t, GetDeviceID(empty))
}

func TestGetTraceID(t *testing.T) {
	assert.Empty(t, GetTraceID(context.Background()))
	assert.Equal(t, "0a0b0c0d010203040506070809101112", GetTraceID(contextWithSpan()))
}

func TestContextLogger_EnrichesWithContextFields(t *testing.T) {
	core, recorded := observer.New(zapcore.DebugLevel)
	tenantID := uuid.New()

	ctx := WithContext(contextWithSpan(), zap.New(core))
	ctx = WithRequestID(ctx, "req-42")
	ctx = WithTenantID(ctx, tenantID)

	L(ctx).With(zap.String("sale_id", "s-1")).Info("sale confirmed", zap.Int64("coupon", 7))

	require.Equal(t, 1, recorded.Len())
	fields := recorded.All()[0].ContextMap()
	assert.Equal(t, "0a0b0c0d010203040506070809101112", fields["trace_id"])
	assert.Equal(t, "0102030405060708", fields["span_id"])
	assert.Equal(t, "req-42", fields["request_id"])
	assert.Equal(t, tenantID.String(), fields["tenant_id"])
	assert.Equal(t, "s-1", fields["sale_id"])
	assert.Equal(t, int64(7), fields["coupon"])
	assert.NotContains(t, fields, "device_id")
}

func TestContextLogger_Levels(t *testing.T) {
	core, recorded := observer.New(zapcore.DebugLevel)
	cl := L(WithContext(context.Background(), zap.New(core)))

	cl.Debug("d")
	cl.Info("i")
	cl.Warn("w")
	cl.Error("e")
	cl.Zap().Info("z")

	levels := make([]zapcore.Level, 0, recorded.Len())
	for _, e := range recorded.All() {
		levels = append(levels, e.Level)
	}
	assert.Equal(t, []zapcore.Level{zapcore.DebugLevel, zapcore.InfoLevel, zapcore.WarnLevel, zapcore.ErrorLevel, zapcore.InfoLevel}, levels)
}

func TestContextLogger_NilLogger(t *testing.T) {
	cl := &ContextLogger{ctx: context.Background()}
	assert.NotPanics(t, func() { cl.Info("no logger") })
}
