package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/retail/backoffice/internal/infrastructure/logger"
	"github.com/retail/backoffice/internal/interfaces/http/dto"
)

// Context keys and headers used to carry the tenant
const (
	TenantIDKey     = "tenant_id"
	TenantHeaderKey = "X-Tenant-ID"
	AuthHeaderKey   = "Authorization"
	BearerPrefix    = "Bearer "
)

var (
	errTokenInvalid  = errors.New("invalid bearer token")
	errTenantMissing = errors.New("token carries no tenant_id")
)

// TenantClaims are the claims read from bearer tokens
type TenantClaims struct {
	TenantID string `json:"tenant_id"`
	jwt.RegisteredClaims
}

// TenantConfig holds configuration for the tenant middleware
type TenantConfig struct {
	// Secret validates HS256 bearer tokens. Empty disables tokens.
	Secret []byte
	// Issuer is checked when set
	Issuer string
	// SkipPaths don't need a tenant
	SkipPaths []string
}

// Tenant resolves the tenant of every request, from the bearer token when a
// secret is configured and from X-Tenant-ID otherwise. A request without a
// usable tenant is answered with 400 TENANT_REQUIRED.
func Tenant(cfg TenantConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		for _, skip := range cfg.SkipPaths {
			if path == skip {
				c.Next()
				return
			}
		}

		tenantID, err := resolveTenant(c, cfg)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, dto.NewErrorResponseWithRequestID(
				dto.ErrCodeTenantRequired, err.Error(), logger.GetRequestID(c.Request.Context()),
			))
			return
		}

		c.Set(TenantIDKey, tenantID)
		c.Request = c.Request.WithContext(logger.WithTenantID(c.Request.Context(), tenantID))
		c.Next()
	}
}

func resolveTenant(c *gin.Context, cfg TenantConfig) (uuid.UUID, error) {
	if header := c.GetHeader(AuthHeaderKey); len(cfg.Secret) > 0 && strings.HasPrefix(header, BearerPrefix) {
		raw, err := ParseTenantToken(strings.TrimPrefix(header, BearerPrefix), cfg.Secret, cfg.Issuer)
		if err != nil {
			return uuid.Nil, err
		}
		return parseTenantID(raw)
	}
	raw := c.GetHeader(TenantHeaderKey)
	if raw == "" {
		return uuid.Nil, errors.New("tenant is required: send a bearer token or the X-Tenant-ID header")
	}
	return parseTenantID(raw)
}

func parseTenantID(raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil || id == uuid.Nil {
		return uuid.Nil, errors.New("tenant id must be a UUID")
	}
	return id, nil
}

// ParseTenantToken validates an HS256 token and returns its tenant_id claim
func ParseTenantToken(token string, secret []byte, issuer string) (string, error) {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if issuer != "" {
		opts = append(opts, jwt.WithIssuer(issuer))
	}
	claims := &TenantClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return secret, nil
	}, opts...)
	if err != nil || !parsed.Valid {
		return "", errTokenInvalid
	}
	if claims.TenantID == "" {
		return "", errTenantMissing
	}
	return claims.TenantID, nil
}

// SignTenantToken issues an HS256 token for a tenant. Used by tooling and tests.
func SignTenantToken(tenantID uuid.UUID, secret []byte, issuer string) (string, error) {
	claims := TenantClaims{
		TenantID:         tenantID.String(),
		RegisteredClaims: jwt.RegisteredClaims{Issuer: issuer},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

// GetTenantID returns the tenant resolved by Tenant
func GetTenantID(c *gin.Context) (uuid.UUID, bool) {
	v, ok := c.Get(TenantIDKey)
	if !ok {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok
}
