package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/retail/backoffice/internal/infrastructure/logger"
	"github.com/retail/backoffice/internal/interfaces/http/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte("test-secret")

func tenantRouter(cfg TenantConfig) (*gin.Engine, *uuid.UUID) {
	var seen uuid.UUID
	router := gin.New()
	router.Use(Tenant(cfg))
	handler := func(c *gin.Context) {
		id, _ := GetTenantID(c)
		seen = id
		if logger.GetTenantID(c.Request.Context()) != id.String() {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.Status(http.StatusOK)
	}
	router.GET("/test", handler)
	router.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })
	return router, &seen
}

func TestTenant_Header(t *testing.T) {
	router, seen := tenantRouter(TenantConfig{})
	tenantID := uuid.New()

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set(TenantHeaderKey, tenantID.String())
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, tenantID, *seen)
}

func TestTenant_Missing(t *testing.T) {
	router, _ := tenantRouter(TenantConfig{})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.Error)
	assert.Equal(t, dto.ErrCodeTenantRequired, resp.Error.Code)
}

func TestTenant_InvalidHeader(t *testing.T) {
	router, _ := tenantRouter(TenantConfig{})

	for _, raw := range []string{"not-a-uuid", uuid.Nil.String()} {
		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.Header.Set(TenantHeaderKey, raw)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code, raw)
	}
}

func TestTenant_BearerToken(t *testing.T) {
	cfg := TenantConfig{Secret: testSecret, Issuer: "backoffice"}
	router, seen := tenantRouter(cfg)
	tenantID := uuid.New()

	token, err := SignTenantToken(tenantID, testSecret, "backoffice")
	require.NoError(t, err)

	t.Run("valid token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.Header.Set(AuthHeaderKey, BearerPrefix+token)
		// the token wins over the header
		req.Header.Set(TenantHeaderKey, uuid.New().String())
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, tenantID, *seen)
	})

	t.Run("wrong secret", func(t *testing.T) {
		bad, err := SignTenantToken(tenantID, []byte("other"), "backoffice")
		require.NoError(t, err)
		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.Header.Set(AuthHeaderKey, BearerPrefix+bad)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("wrong issuer", func(t *testing.T) {
		bad, err := SignTenantToken(tenantID, testSecret, "someone-else")
		require.NoError(t, err)
		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.Header.Set(AuthHeaderKey, BearerPrefix+bad)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestTenant_SkipPaths(t *testing.T) {
	router, _ := tenantRouter(TenantConfig{SkipPaths: []string{"/health"}})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestParseTenantToken_MissingClaim(t *testing.T) {
	token, err := SignTenantToken(uuid.Nil, testSecret, "")
	require.NoError(t, err)

	// uuid.Nil still renders as a string, so the claim is present
	raw, err := ParseTenantToken(token, testSecret, "")
	require.NoError(t, err)
	_, err = parseTenantID(raw)
	assert.Error(t, err)
}

func TestGetTenantID_Unset(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	_, ok := GetTenantID(c)
	assert.False(t, ok)
}
