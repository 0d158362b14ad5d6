package integration

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	appfinance "github.com/retail/backoffice/internal/application/finance"
	appinventory "github.com/retail/backoffice/internal/application/inventory"
	apptrade "github.com/retail/backoffice/internal/application/trade"
	"github.com/retail/backoffice/internal/domain/shared"
	"github.com/retail/backoffice/internal/infrastructure/lock"
	"github.com/retail/backoffice/internal/infrastructure/migration"
	"github.com/retail/backoffice/internal/infrastructure/persistence"
	"github.com/retail/backoffice/internal/infrastructure/strategy/cost"
	"github.com/retail/backoffice/internal/infrastructure/telemetry"
	"github.com/retail/backoffice/migrations"
	"github.com/retail/backoffice/tests/ledgertest"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestMain(m *testing.M) {
	code := m.Run()
	CleanupSharedContainer()
	os.Exit(code)
}

type services struct {
	*ledgertest.Env
	inventory   *appinventory.InventoryService
	sales       *apptrade.SaleService
	receivables *appfinance.ReceivableService
}

func newServices(t *testing.T) *services {
	t.Helper()
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
	tdb := NewSharedTestDB(t)
	env := &ledgertest.Env{
		DB:       tdb.DB,
		Scope:    persistence.NewGormTransactionScope(tdb.DB),
		Reads:    persistence.NewGormRepositories(tdb.DB),
		Locker:   lock.NewLocalLocker(5 * time.Second),
		TenantID: uuid.New(),
	}

	metrics := telemetry.NoopLedgerMetrics()
	ledger := appinventory.NewMovementLedger()
	lots := appinventory.NewCostLotEngine(env.Scope, env.Locker, env.Reads, cost.NewFIFOCostStrategy(), metrics)
	poster := appfinance.NewPaymentPoster(30)
	return &services{
		Env:         env,
		inventory:   appinventory.NewInventoryService(env.Scope, env.Locker, env.Reads, ledger, lots),
		sales:       apptrade.NewSaleService(env.Scope, env.Locker, env.Reads, ledger, lots, poster, metrics),
		receivables: appfinance.NewReceivableService(env.Scope, env.Locker, env.Reads, poster, metrics),
	}
}

func (s *services) remaining(t *testing.T, productID, lotID uuid.UUID) int64 {
	t.Helper()
	lots, err := s.inventory.ListLots(context.Background(), s.TenantID, productID, false)
	require.NoError(t, err)
	for _, l := range lots {
		if l.ID == lotID {
			return l.RemainingQuantityBase
		}
	}
	require.FailNow(t, "lot not found", lotID.String())
	return 0
}

func TestConcurrentConfirmationsShareOneLot(t *testing.T) {
	s := newServices(t)
	ctx := context.Background()
	p := s.Product(t, "cafe", nil)
	un := ledgertest.Unit(t, p, "UN")
	lot := s.Lot(t, p.ID, 10, "50")

	const workers = 2
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		results []*apptrade.ConfirmationResult
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := s.sales.CreateConfirmedSale(ctx, s.TenantID, apptrade.CreateSaleInput{
				Items: []apptrade.SaleItemInput{{
					ProductID: p.ID, UnitID: un.ID, Quantity: decimal.NewFromInt(6), UnitPrice: decimal.NewFromInt(9),
				}},
			})
			if !assert.NoError(t, err) {
				return
			}
			mu.Lock()
			results = append(results, res)
			mu.Unlock()
		}()
	}
	wg.Wait()
	require.Len(t, results, workers)

	var consumed, uncosted int64
	coupons := map[int64]bool{}
	for _, r := range results {
		require.Len(t, r.Costs, 1)
		consumed += r.Costs[0].ConsumedBase
		uncosted += r.Costs[0].UncostedBase
		require.NotNil(t, r.Sale.CouponNumber)
		coupons[*r.Sale.CouponNumber] = true
	}
	assert.Equal(t, int64(10), consumed)
	assert.Equal(t, int64(2), uncosted)
	assert.Len(t, coupons, workers, "coupon numbers must be distinct")

	assert.Equal(t, int64(0), s.remaining(t, p.ID, lot.ID))

	stock, err := s.inventory.CurrentStock(ctx, s.TenantID, p.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(-12), stock.QuantityBase)
}

func TestConcurrentSettlementsNeverOverpay(t *testing.T) {
	s := newServices(t)
	ctx := context.Background()
	customer := s.Customer(t, "Joana")
	account := s.Account(t, "Caixa")

	created, err := s.receivables.CreateReceivable(ctx, s.TenantID, appfinance.CreateReceivableInput{
		CustomerID: customer.ID,
		Amount:     decimal.NewFromInt(100),
		DueDate:    time.Now().AddDate(0, 1, 0),
	})
	require.NoError(t, err)
	require.Len(t, created, 1)

	const workers = 3
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		settled int
		refused int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.receivables.SettleReceivable(ctx, s.TenantID, created[0].ID, appfinance.SettleInput{
				Amount: decimal.NewFromInt(60), AccountID: account.ID, Method: "CASH",
			})
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				settled++
				return
			}
			refused++
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, settled)
	assert.Equal(t, workers-1, refused)

	detail, err := s.receivables.GetReceivable(ctx, s.TenantID, created[0].ID)
	require.NoError(t, err)
	assert.True(t, detail.PaidAmount.Equal(decimal.NewFromInt(60)))
	assert.Len(t, detail.Settlements, 1)
}

func TestSaleCancellationReturnsStockButNotLots(t *testing.T) {
	s := newServices(t)
	ctx := context.Background()
	p := s.Product(t, "leite", map[string]int64{"CX": 12})
	box := ledgertest.Unit(t, p, "CX")
	account := s.Account(t, "Caixa")
	lot := s.Lot(t, p.ID, 24, "48")

	confirmed, err := s.sales.CreateConfirmedSale(ctx, s.TenantID, apptrade.CreateSaleInput{
		Items: []apptrade.SaleItemInput{{
			ProductID: p.ID, UnitID: box.ID, Quantity: decimal.NewFromInt(1), UnitPrice: decimal.NewFromInt(40),
		}},
		Payments: []appfinance.PaymentInput{{Method: "CASH", Amount: decimal.NewFromInt(40), AccountID: account.ID}},
	})
	require.NoError(t, err)
	assert.True(t, confirmed.Costs[0].TotalCost.Equal(decimal.NewFromInt(24)))

	cancelled, err := s.sales.CancelSale(ctx, s.TenantID, confirmed.Sale.ID, "customer returned")
	require.NoError(t, err)
	assert.Equal(t, "CANCELLED", cancelled.Sale.Status)

	assert.Equal(t, int64(12), s.remaining(t, p.ID, lot.ID), "lots never increase")
	assert.Equal(t, int64(0), s.Stock(t, p.ID))
	require.NotNil(t, cancelled.Sale.CouponNumber)

	_, err = s.sales.CancelSale(ctx, s.TenantID, confirmed.Sale.ID, "again")
	assert.ErrorIs(t, err, shared.ErrInvalidState)
}

func TestTenantsDoNotSeeEachOther(t *testing.T) {
	a := newServices(t)
	b := newServices(t)
	ctx := context.Background()

	p := a.Product(t, "pao", nil)
	un := ledgertest.Unit(t, p, "UN")
	draft, err := a.sales.CreateDraft(ctx, a.TenantID, apptrade.CreateSaleInput{
		Items: []apptrade.SaleItemInput{{ProductID: p.ID, UnitID: un.ID, Quantity: decimal.NewFromInt(1)}},
	})
	require.NoError(t, err)

	_, err = b.sales.GetSale(ctx, b.TenantID, draft.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)

	_, err = b.inventory.RecordMovement(ctx, b.TenantID, appinventory.RecordMovementInput{
		ProductID: p.ID, Direction: "IN", QuantityBase: 5,
	})
	assert.ErrorIs(t, err, shared.ErrNotFound)
	assert.Equal(t, int64(0), a.Stock(t, p.ID))
}

func TestMigrationsRoundTrip(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
	tdb := NewTestDB(t)

	m, err := migration.New(tdb.SqlDB, migrations.FS, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, m.Up())

	version, dirty, err := m.Version()
	require.NoError(t, err)
	assert.False(t, dirty)
	assert.NotZero(t, version)

	require.NoError(t, m.Down())
	var tables int
	require.NoError(t, tdb.SqlDB.QueryRow(
		`SELECT count(*) FROM pg_tables WHERE schemaname = 'public' AND tablename <> $1`, migration.TableName,
	).Scan(&tables))
	assert.Zero(t, tables)

	require.NoError(t, m.Up())
}
