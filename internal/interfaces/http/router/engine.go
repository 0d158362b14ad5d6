package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/retail/backoffice/internal/infrastructure/logger"
	"github.com/retail/backoffice/internal/interfaces/http/dto"
	"github.com/retail/backoffice/internal/interfaces/http/handler"
	"github.com/retail/backoffice/internal/interfaces/http/middleware"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// EngineConfig holds what the middleware stack needs
type EngineConfig struct {
	ServiceName    string
	TracingEnabled bool
	// Meter records HTTP metrics; nil disables them
	Meter          metric.Meter
	CORSOrigins    []string
	TrustedProxies []string
	MaxBodySize    int64
	Tenant         middleware.TenantConfig
}

// NewEngine builds the gin engine with the middleware stack in order:
// recovery, request logging, tracing, metrics, security headers, CORS,
// body limit and device tagging. Tenant resolution only guards the API group.
func NewEngine(cfg EngineConfig, log *zap.Logger, system *handler.SystemHandler, h Handlers) (*gin.Engine, error) {
	if err := middleware.SetupValidator(); err != nil {
		return nil, err
	}

	engine := gin.New()
	if len(cfg.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	httpMetrics, err := middleware.HTTPMetrics(cfg.Meter)
	if err != nil {
		return nil, err
	}

	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Tracing(middleware.TracingConfig{
		ServiceName: cfg.ServiceName,
		Enabled:     cfg.TracingEnabled,
	}))
	engine.Use(httpMetrics)
	engine.Use(middleware.Secure())
	engine.Use(middleware.CORS(middleware.DefaultCORSConfig(cfg.CORSOrigins)))
	if cfg.MaxBodySize > 0 {
		engine.Use(middleware.BodyLimit(cfg.MaxBodySize))
	}
	engine.Use(middleware.Device())

	engine.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, dto.NewErrorResponseWithRequestID(
			dto.ErrCodeRouteNotFound, "route not found", logger.GetRequestID(c.Request.Context()),
		))
	})

	engine.GET("/health", system.Health)
	engine.GET("/ready", system.Ready)

	NewRouter(engine, WithAPIVersion("v1")).
		Use(middleware.Tenant(cfg.Tenant), middleware.SpanEnricher()).
		Register(LedgerRoutes(h)...).
		Setup()

	return engine, nil
}
