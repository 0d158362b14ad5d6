// Package ledgertest builds a migrated SQLite ledger with the GORM
// repositories, a local locker and seeding helpers for service tests.
package ledgertest

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/retail/backoffice/internal/application/uow"
	"github.com/retail/backoffice/internal/domain/catalog"
	"github.com/retail/backoffice/internal/domain/finance"
	"github.com/retail/backoffice/internal/domain/inventory"
	"github.com/retail/backoffice/internal/domain/partner"
	"github.com/retail/backoffice/internal/infrastructure/lock"
	"github.com/retail/backoffice/internal/infrastructure/persistence"
	"github.com/retail/backoffice/tests/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// Env is one isolated tenant on a fresh database
type Env struct {
	DB       *gorm.DB
	Scope    uow.TransactionScope
	Reads    uow.Repositories
	Locker   uow.Locker
	TenantID uuid.UUID
}

// New opens a fresh database and a tenant id
func New(t testing.TB) *Env {
	t.Helper()
	db := testutil.NewSQLiteDB(t)
	return &Env{
		DB:       db,
		Scope:    persistence.NewGormTransactionScope(db),
		Reads:    persistence.NewGormRepositories(db),
		Locker:   lock.NewLocalLocker(2 * time.Second),
		TenantID: uuid.New(),
	}
}

// Product saves a product with extra units given as name to factor pairs.
// The base unit is "UN".
func (e *Env) Product(t testing.TB, code string, units map[string]int64) *catalog.Product {
	t.Helper()
	p, err := catalog.NewProduct(e.TenantID, code, "Product "+code, "UN")
	require.NoError(t, err)
	for name, factor := range units {
		_, err := p.AddUnit(name, factor)
		require.NoError(t, err)
	}
	require.NoError(t, e.Reads.Products().Save(context.Background(), p))
	return p
}

// Unit returns the product's unit with the given name
func Unit(t testing.TB, p *catalog.Product, name string) catalog.ProductUnit {
	t.Helper()
	for _, u := range p.Units {
		if u.Name == name {
			return u
		}
	}
	require.FailNow(t, "unit not found", name)
	return catalog.ProductUnit{}
}

// Customer saves a customer
func (e *Env) Customer(t testing.TB, name string) *partner.Customer {
	t.Helper()
	c, err := partner.NewCustomer(e.TenantID, name, "")
	require.NoError(t, err)
	require.NoError(t, e.Reads.Customers().Save(context.Background(), c))
	return c
}

// Account saves a cash account
func (e *Env) Account(t testing.TB, name string) *finance.Account {
	t.Helper()
	a, err := finance.NewAccount(e.TenantID, name, finance.AccountTypeCash)
	require.NoError(t, err)
	require.NoError(t, e.Reads.Accounts().Save(context.Background(), a))
	return a
}

// Lot saves a cost lot directly, bypassing any purchase
func (e *Env) Lot(t testing.TB, productID uuid.UUID, qty int64, lineTotal string) *inventory.CostLot {
	t.Helper()
	lot, err := inventory.NewCostLot(e.TenantID, inventory.NewCostLotParams{
		ProductID:     productID,
		PurchaseID:    uuid.New(),
		SourceLineID:  uuid.New(),
		QuantityBase:  qty,
		LineTotalCost: decimal.RequireFromString(lineTotal),
	})
	require.NoError(t, err)
	require.NoError(t, e.Reads.CostLots().Create(context.Background(), lot))
	// FIFO order is by created_at; keep consecutive lots strictly ordered
	time.Sleep(2 * time.Millisecond)
	return lot
}

// Stock returns the product's current stock
func (e *Env) Stock(t testing.TB, productID uuid.UUID) int64 {
	t.Helper()
	qty, err := e.Reads.Movements().SumStock(context.Background(), e.TenantID, productID)
	require.NoError(t, err)
	return qty
}

// Dec parses a decimal literal
func Dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}
