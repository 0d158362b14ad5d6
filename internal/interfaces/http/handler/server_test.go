package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	appcatalog "github.com/retail/backoffice/internal/application/catalog"
	appfinance "github.com/retail/backoffice/internal/application/finance"
	appinventory "github.com/retail/backoffice/internal/application/inventory"
	apppartner "github.com/retail/backoffice/internal/application/partner"
	appreport "github.com/retail/backoffice/internal/application/report"
	appsync "github.com/retail/backoffice/internal/application/sync"
	apptrade "github.com/retail/backoffice/internal/application/trade"
	"github.com/retail/backoffice/internal/infrastructure/cache"
	"github.com/retail/backoffice/internal/infrastructure/strategy/cost"
	"github.com/retail/backoffice/internal/infrastructure/telemetry"
	"github.com/retail/backoffice/internal/interfaces/http/dto"
	"github.com/retail/backoffice/internal/interfaces/http/handler"
	"github.com/retail/backoffice/internal/interfaces/http/middleware"
	"github.com/retail/backoffice/internal/interfaces/http/router"
	"github.com/retail/backoffice/tests/ledgertest"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// envelope is dto.Response with the data left raw for typed decoding
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *dto.ErrorInfo  `json:"error"`
	Meta    *dto.Meta       `json:"meta"`
}

type server struct {
	*ledgertest.Env
	engine *gin.Engine
}

type failingPinger struct{}

func (failingPinger) PingContext(context.Context) error { return errors.New("connection refused") }

func newServer(t *testing.T) *server {
	t.Helper()
	env := ledgertest.New(t)
	metrics := telemetry.NoopLedgerMetrics()

	ledger := appinventory.NewMovementLedger()
	lots := appinventory.NewCostLotEngine(env.Scope, env.Locker, env.Reads, cost.NewFIFOCostStrategy(), metrics)
	poster := appfinance.NewPaymentPoster(30)
	inventoryService := appinventory.NewInventoryService(env.Scope, env.Locker, env.Reads, ledger, lots)
	saleService := apptrade.NewSaleService(env.Scope, env.Locker, env.Reads, ledger, lots, poster, metrics)
	purchaseService := apptrade.NewPurchaseService(env.Scope, env.Locker, env.Reads, ledger, lots, poster, metrics)
	receivableService := appfinance.NewReceivableService(env.Scope, env.Locker, env.Reads, poster, metrics)
	entryService := appfinance.NewEntryService(env.Scope, env.Reads)
	closureService := appfinance.NewClosureService(env.Scope, env.Reads)

	store := cache.NewInMemoryIdempotencyStore(time.Minute)
	t.Cleanup(func() { _ = store.Close() })
	dispatcher := appsync.NewDispatcher(appsync.Handlers{
		Movements:   inventoryService,
		Sales:       saleService,
		Settlements: receivableService,
		Purchases:   purchaseService,
		Closures:    closureService,
		Entries:     entryService,
	}, store)

	h := router.Handlers{
		Inventory:  handler.NewInventoryHandler(inventoryService),
		Product:    handler.NewProductHandler(appcatalog.NewProductService(env.Reads.Products(), env.Reads.ProductUnits())),
		Customer:   handler.NewCustomerHandler(apppartner.NewCustomerService(env.Reads.Customers())),
		Sale:       handler.NewSaleHandler(saleService),
		Purchase:   handler.NewPurchaseHandler(purchaseService),
		Receivable: handler.NewReceivableHandler(receivableService),
		Finance: handler.NewFinanceHandler(
			appfinance.NewAccountService(env.Reads.Accounts()), entryService, closureService, 30,
		),
		Report: handler.NewReportHandler(appreport.NewExportService(closureService)),
		Sync:   handler.NewSyncHandler(dispatcher),
	}
	engine, err := router.NewEngine(router.EngineConfig{ServiceName: "test"}, zap.NewNop(),
		handler.NewSystemHandler("backoffice", "test", failingPinger{}), h)
	require.NoError(t, err)
	return &server{Env: env, engine: engine}
}

// do sends body as JSON with the server's tenant and decodes the envelope
func (s *server) do(t *testing.T, method, path string, body any) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(middleware.TenantHeaderKey, s.TenantID.String())

	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)

	var env envelope
	if w.Header().Get("Content-Type") == "application/json; charset=utf-8" {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	}
	return w, env
}

func decode[T any](t *testing.T, env envelope) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(env.Data, &out), string(env.Data))
	return out
}
