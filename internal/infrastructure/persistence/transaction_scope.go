package persistence

import (
	"context"

	"github.com/retail/backoffice/internal/application/uow"
	"github.com/retail/backoffice/internal/domain/catalog"
	"github.com/retail/backoffice/internal/domain/finance"
	"github.com/retail/backoffice/internal/domain/inventory"
	"github.com/retail/backoffice/internal/domain/partner"
	"github.com/retail/backoffice/internal/domain/trade"
	"gorm.io/gorm"
)

// GormTransactionScope implements TransactionScope using GORM transactions.
// Every repository handed to fn shares the one transaction.
type GormTransactionScope struct {
	db *gorm.DB
}

// NewGormTransactionScope creates a new GormTransactionScope.
func NewGormTransactionScope(db *gorm.DB) *GormTransactionScope {
	return &GormTransactionScope{db: db}
}

// Execute runs the given function within a database transaction.
// If the function returns an error, the transaction is rolled back.
// If the function succeeds, the transaction is committed.
func (s *GormTransactionScope) Execute(ctx context.Context, fn func(repos uow.Repositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewGormRepositories(tx))
	})
}

// GormRepositories hands out repositories bound to one *gorm.DB, which is
// either the pool (for reads) or a transaction (inside Execute).
type GormRepositories struct {
	db *gorm.DB
}

// NewGormRepositories creates repositories bound to db
func NewGormRepositories(db *gorm.DB) *GormRepositories {
	return &GormRepositories{db: db}
}

func (r *GormRepositories) Products() catalog.ProductRepository {
	return NewGormProductRepository(r.db)
}

func (r *GormRepositories) ProductUnits() catalog.ProductUnitRepository {
	return NewGormProductUnitRepository(r.db)
}

func (r *GormRepositories) Customers() partner.CustomerRepository {
	return NewGormCustomerRepository(r.db)
}

func (r *GormRepositories) Accounts() finance.AccountRepository {
	return NewGormAccountRepository(r.db)
}

func (r *GormRepositories) Movements() inventory.MovementRepository {
	return NewGormMovementRepository(r.db)
}

func (r *GormRepositories) CostLots() inventory.CostLotRepository {
	return NewGormCostLotRepository(r.db)
}

func (r *GormRepositories) Sales() trade.SaleRepository {
	return NewGormSaleRepository(r.db)
}

func (r *GormRepositories) Purchases() trade.PurchaseRepository {
	return NewGormPurchaseRepository(r.db)
}

func (r *GormRepositories) Coupons() trade.CouponSequence {
	return NewGormCouponSequence(r.db)
}

func (r *GormRepositories) Payments() finance.PaymentRepository {
	return NewGormPaymentRepository(r.db)
}

func (r *GormRepositories) Receivables() finance.ReceivableRepository {
	return NewGormReceivableRepository(r.db)
}

func (r *GormRepositories) Entries() finance.FinanceEntryRepository {
	return NewGormFinanceEntryRepository(r.db)
}

func (r *GormRepositories) Closures() finance.MonthlyClosureRepository {
	return NewGormMonthlyClosureRepository(r.db)
}

// Ensure GormTransactionScope implements TransactionScope
var _ uow.TransactionScope = (*GormTransactionScope)(nil)

// Ensure GormRepositories implements Repositories
var _ uow.Repositories = (*GormRepositories)(nil)
