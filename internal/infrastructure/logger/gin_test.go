package logger

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func newTestRouter(l *zap.Logger) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(Recovery(l), GinMiddleware(l))
	return router
}

func findEntry(t *testing.T, logs *observer.ObservedLogs, msg string) observer.LoggedEntry {
	t.Helper()
	entries := logs.FilterMessage(msg).All()
	require.NotEmpty(t, entries, "expected a %q log entry", msg)
	return entries[0]
}

func TestGinMiddleware(t *testing.T) {
	core, recorded := observer.New(zapcore.DebugLevel)
	router := newTestRouter(zap.New(core))

	var seenRequestID string
	router.GET("/api/v1/products/:id/stock", func(c *gin.Context) {
		seenRequestID = GetRequestID(c.Request.Context())
		L(c.Request.Context()).Debug("inside handler")
		c.JSON(http.StatusOK, gin.H{"stock": 24})
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/products/p-1/stock", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, seenRequestID)
	assert.Equal(t, seenRequestID, w.Header().Get(RequestIDHeader))

	handlerLog := findEntry(t, recorded, "inside handler")
	assert.Equal(t, seenRequestID, handlerLog.ContextMap()["request_id"])

	httpLog := findEntry(t, recorded, "HTTP Request")
	assert.Equal(t, zapcore.InfoLevel, httpLog.Level)
	assert.Equal(t, int64(http.StatusOK), httpLog.ContextMap()["status"])
}

func TestGinMiddleware_PropagatesIncomingRequestID(t *testing.T) {
	core, recorded := observer.New(zapcore.InfoLevel)
	router := newTestRouter(zap.New(core))
	router.GET("/x", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set(RequestIDHeader, "req-from-pos")
	router.ServeHTTP(w, req)

	assert.Equal(t, "req-from-pos", w.Header().Get(RequestIDHeader))
	assert.Equal(t, "req-from-pos", findEntry(t, recorded, "HTTP Request").ContextMap()["request_id"])
}

func TestGinMiddleware_LevelByStatus(t *testing.T) {
	tests := []struct {
		status int
		level  zapcore.Level
	}{
		{http.StatusOK, zapcore.InfoLevel},
		{http.StatusUnprocessableEntity, zapcore.WarnLevel},
		{http.StatusInternalServerError, zapcore.ErrorLevel},
	}
	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			core, recorded := observer.New(zapcore.InfoLevel)
			router := newTestRouter(zap.New(core))
			router.GET("/s", func(c *gin.Context) { c.Status(tt.status) })

			router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/s", nil))
			assert.Equal(t, tt.level, findEntry(t, recorded, "HTTP Request").Level)
		})
	}
}

func TestRecovery(t *testing.T) {
	core, recorded := observer.New(zapcore.InfoLevel)
	router := newTestRouter(zap.New(core))
	router.GET("/boom", func(c *gin.Context) { panic("lot table corrupted") })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "INTERNAL_ERROR")
	entry := findEntry(t, recorded, "Panic recovered")
	assert.Equal(t, "lot table corrupted", entry.ContextMap()["error"])
}
