// Package uow defines the unit-of-work seam used by every composite ledger
// operation: a transaction scope handing out repositories bound to one
// database transaction, and a keyed locker serializing writers per product
// or per receivable.
package uow

import (
	"context"

	"github.com/retail/backoffice/internal/domain/catalog"
	"github.com/retail/backoffice/internal/domain/finance"
	"github.com/retail/backoffice/internal/domain/inventory"
	"github.com/retail/backoffice/internal/domain/partner"
	"github.com/retail/backoffice/internal/domain/trade"
)

// TransactionScope defines the interface for executing operations within a transaction.
type TransactionScope interface {
	// Execute runs the given function within a database transaction.
	// If the function returns an error, the transaction is rolled back.
	// If the function succeeds, the transaction is committed.
	Execute(ctx context.Context, fn func(repos Repositories) error) error
}

// Repositories provides access to every repository. Inside Execute all of
// them share the same underlying database transaction.
type Repositories interface {
	Products() catalog.ProductRepository
	ProductUnits() catalog.ProductUnitRepository
	Customers() partner.CustomerRepository
	Accounts() finance.AccountRepository
	Movements() inventory.MovementRepository
	CostLots() inventory.CostLotRepository
	Sales() trade.SaleRepository
	Purchases() trade.PurchaseRepository
	Coupons() trade.CouponSequence
	Payments() finance.PaymentRepository
	Receivables() finance.ReceivableRepository
	Entries() finance.FinanceEntryRepository
	Closures() finance.MonthlyClosureRepository
}
