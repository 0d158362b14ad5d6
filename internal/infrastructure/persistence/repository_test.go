package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/retail/backoffice/internal/application/uow"
	"github.com/retail/backoffice/internal/domain/catalog"
	"github.com/retail/backoffice/internal/domain/finance"
	"github.com/retail/backoffice/internal/domain/inventory"
	"github.com/retail/backoffice/internal/domain/shared"
	"github.com/retail/backoffice/internal/domain/trade"
	"github.com/retail/backoffice/tests/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newProduct(t *testing.T, db *gorm.DB, tenantID uuid.UUID, code string) *catalog.Product {
	t.Helper()
	p, err := catalog.NewProduct(tenantID, code, "Product "+code, "UN")
	require.NoError(t, err)
	require.NoError(t, NewGormProductRepository(db).Save(context.Background(), p))
	return p
}

func TestProductRepository_FindByCode(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	ctx := context.Background()
	tenantID := uuid.New()
	repo := NewGormProductRepository(db)

	p := newProduct(t, db, tenantID, "cafe-500")
	_, err := p.AddUnit("CX", 12)
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, p))

	found, err := repo.FindByCode(ctx, tenantID, " cafe-500 ")
	require.NoError(t, err)
	assert.Equal(t, p.ID, found.ID)
	assert.Len(t, found.Units, 2)

	_, err = repo.FindByCode(ctx, uuid.New(), "CAFE-500")
	assert.ErrorIs(t, err, shared.ErrNotFound)

	_, err = repo.FindByIDForTenant(ctx, tenantID, uuid.New())
	assert.ErrorIs(t, err, shared.ErrNotFound)

	units, err := NewGormProductUnitRepository(db).FindByProductID(ctx, tenantID, p.ID)
	require.NoError(t, err)
	require.Len(t, units, 2)
	assert.Equal(t, int64(1), units[0].FactorToBase)
	assert.Equal(t, int64(12), units[1].FactorToBase)
}

func TestMovementRepository_SumStockAndList(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	ctx := context.Background()
	tenantID, productID := uuid.New(), uuid.New()
	repo := NewGormMovementRepository(db)

	stock, err := repo.SumStock(ctx, tenantID, productID)
	require.NoError(t, err)
	assert.Zero(t, stock)

	base := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	for i, mv := range []struct {
		dir    inventory.Direction
		qty    int64
		reason inventory.ReasonType
	}{
		{inventory.DirectionIn, 24, inventory.ReasonPurchase},
		{inventory.DirectionOut, 5, inventory.ReasonSale},
		{inventory.DirectionOut, 30, inventory.ReasonSale},
	} {
		m, err := inventory.NewInventoryMovement(tenantID, inventory.NewMovementParams{
			ProductID:    productID,
			Date:         base.Add(time.Duration(i) * time.Hour),
			Direction:    mv.dir,
			QuantityBase: mv.qty,
			ReasonType:   mv.reason,
			ReasonID:     "r-1",
		})
		require.NoError(t, err)
		require.NoError(t, repo.Create(ctx, m))
	}

	stock, err = repo.SumStock(ctx, tenantID, productID)
	require.NoError(t, err)
	assert.Equal(t, int64(-11), stock)

	other, err := repo.SumStock(ctx, uuid.New(), productID)
	require.NoError(t, err)
	assert.Zero(t, other)

	list, total, err := repo.List(ctx, tenantID, inventory.MovementFilter{
		Filter:    shared.Filter{Page: 1, PageSize: 10},
		ProductID: &productID,
		Direction: inventory.DirectionOut,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, list, 2)

	byReason, err := repo.FindByReason(ctx, tenantID, inventory.ReasonSale, "r-1")
	require.NoError(t, err)
	assert.Len(t, byReason, 2)
}

func newLot(t *testing.T, tenantID, productID uuid.UUID, qty int64, total string) *inventory.CostLot {
	t.Helper()
	lot, err := inventory.NewCostLot(tenantID, inventory.NewCostLotParams{
		ProductID:     productID,
		PurchaseID:    uuid.New(),
		SourceLineID:  uuid.New(),
		QuantityBase:  qty,
		LineTotalCost: decimal.RequireFromString(total),
	})
	require.NoError(t, err)
	return lot
}

func TestCostLotRepository_RemainingOnlyDecreases(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	ctx := context.Background()
	tenantID, productID := uuid.New(), uuid.New()
	repo := NewGormCostLotRepository(db)

	first := newLot(t, tenantID, productID, 10, "50")
	require.NoError(t, repo.Create(ctx, first))
	second := newLot(t, tenantID, productID, 5, "40")
	second.CreatedAt = first.CreatedAt.Add(time.Second)
	require.NoError(t, repo.Create(ctx, second))

	lots, err := repo.FindAvailableForUpdate(ctx, tenantID, productID)
	require.NoError(t, err)
	require.Len(t, lots, 2)
	assert.Equal(t, first.ID, lots[0].ID)
	assert.True(t, lots[0].UnitCostBase.Equal(decimal.NewFromInt(5)))

	assert.Equal(t, int64(4), lots[0].Take(4))
	require.NoError(t, repo.UpdateRemaining(ctx, lots[:1]))

	lots[0].RemainingQuantityBase = 8
	err = repo.UpdateRemaining(ctx, lots[:1])
	assert.ErrorIs(t, err, shared.ErrConcurrentModification)

	n, err := repo.ZeroByIDs(ctx, tenantID, []uuid.UUID{first.ID, second.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	n, err = repo.ZeroByIDs(ctx, tenantID, []uuid.UUID{first.ID})
	require.NoError(t, err)
	assert.Zero(t, n)

	available, err := repo.FindByProduct(ctx, tenantID, productID, true)
	require.NoError(t, err)
	assert.Empty(t, available)

	bySource, err := repo.FindBySourceLine(ctx, tenantID, second.SourceLineID)
	require.NoError(t, err)
	require.Len(t, bySource, 1)
	assert.Equal(t, int64(5), bySource[0].InitialQuantityBase)
}

func TestSaleRepository_SaveWithLock(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	ctx := context.Background()
	tenantID := uuid.New()
	repo := NewGormSaleRepository(db)

	sale := trade.NewSale(tenantID, nil, time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), "")
	require.NoError(t, sale.ReplaceItems([]trade.SaleItemInput{
		{ProductID: uuid.New(), UnitID: uuid.New(), Quantity: decimal.NewFromInt(2), UnitPrice: decimal.RequireFromString("9.90")},
	}))
	require.NoError(t, repo.Create(ctx, sale))

	stale, err := repo.FindByIDForTenant(ctx, tenantID, sale.ID)
	require.NoError(t, err)
	require.Len(t, stale.Items, 1)
	assert.True(t, stale.Total.Equal(decimal.RequireFromString("19.80")))

	require.NoError(t, sale.ReplaceItems([]trade.SaleItemInput{
		{ProductID: uuid.New(), UnitID: uuid.New(), Quantity: decimal.NewFromInt(1), UnitPrice: decimal.NewFromInt(3)},
		{ProductID: uuid.New(), UnitID: uuid.New(), Quantity: decimal.NewFromInt(1), UnitPrice: decimal.NewFromInt(4)},
	}))
	require.NoError(t, repo.SaveWithLock(ctx, sale, true))
	assert.Equal(t, 2, sale.Version)

	require.NoError(t, stale.UpdateNotes("late writer"))
	err = repo.SaveWithLock(ctx, stale, false)
	assert.ErrorIs(t, err, shared.ErrConcurrentModification)

	reloaded, err := repo.FindByIDForTenant(ctx, tenantID, sale.ID)
	require.NoError(t, err)
	assert.Len(t, reloaded.Items, 2)
	assert.True(t, reloaded.Total.Equal(decimal.NewFromInt(7)))
	assert.Empty(t, reloaded.Notes)

	_, err = repo.FindByIDForTenant(ctx, uuid.New(), sale.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestCouponSequence_MonotonicPerTenant(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	ctx := context.Background()
	tenantA, tenantB := uuid.New(), uuid.New()
	seq := NewGormCouponSequence(db)

	for want := int64(1); want <= 3; want++ {
		got, err := seq.Next(ctx, tenantA)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	got, err := seq.Next(ctx, tenantB)
	require.NoError(t, err)
	assert.Equal(t, int64(1), got)

	_, err = seq.Next(ctx, uuid.Nil)
	assert.Error(t, err)
}

func TestCouponSequence_FloorFromExistingSales(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	ctx := context.Background()
	tenantID := uuid.New()

	sale := trade.NewSale(tenantID, nil, time.Now().UTC(), "")
	require.NoError(t, sale.ReplaceItems([]trade.SaleItemInput{
		{ProductID: uuid.New(), UnitID: uuid.New(), Quantity: decimal.NewFromInt(1), UnitPrice: decimal.NewFromInt(1)},
	}))
	require.NoError(t, sale.Confirm(57, time.Now().UTC()))
	require.NoError(t, NewGormSaleRepository(db).Create(ctx, sale))

	got, err := NewGormCouponSequence(db).Next(ctx, tenantID)
	require.NoError(t, err)
	assert.Equal(t, int64(58), got)
}

func TestReceivableRepository_Settlements(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	ctx := context.Background()
	tenantID := uuid.New()
	repo := NewGormReceivableRepository(db)

	rec, err := finance.NewReceivable(tenantID, finance.NewReceivableParams{
		CustomerID: uuid.New(),
		DueDate:    time.Date(2024, 4, 10, 0, 0, 0, 0, time.UTC),
		Amount:     decimal.NewFromInt(100),
		Kind:       finance.ReceivableKindCrediario,
	})
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, rec))

	sum, err := repo.SumSettlements(ctx, tenantID, rec.ID)
	require.NoError(t, err)
	assert.True(t, sum.IsZero())

	for _, amount := range []string{"33.33", "33.33"} {
		settled, err := repo.SumSettlements(ctx, tenantID, rec.ID)
		require.NoError(t, err)
		s, err := rec.Settle(settled, decimal.RequireFromString(amount), uuid.New(), time.Now().UTC())
		require.NoError(t, err)
		require.NoError(t, repo.CreateSettlement(ctx, s))
		require.NoError(t, repo.SaveWithLock(ctx, rec))
	}

	sum, err = repo.SumSettlements(ctx, tenantID, rec.ID)
	require.NoError(t, err)
	assert.True(t, sum.Equal(decimal.RequireFromString("66.66")), sum.String())

	locked, err := repo.FindByIDForUpdate(ctx, tenantID, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, finance.ReceivableStatusOpen, locked.Status)
	assert.Equal(t, 3, locked.Version)

	settlements, err := repo.FindSettlements(ctx, tenantID, rec.ID)
	require.NoError(t, err)
	assert.Len(t, settlements, 2)
}

func TestFinanceEntryRepository_MarkDueAndSums(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	ctx := context.Background()
	tenantID, accountID := uuid.New(), uuid.New()
	repo := NewGormFinanceEntryRepository(db)

	past := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	future := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	for _, due := range []time.Time{past, future} {
		due := due
		e, err := finance.NewScheduledEntry(tenantID, finance.NewFinanceEntryParams{
			Type: finance.EntryTypeExpense, AccountID: accountID, Description: "rent", Amount: decimal.NewFromInt(800), DueDate: &due,
		})
		require.NoError(t, err)
		require.NoError(t, repo.Create(ctx, e))
	}

	now := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)
	tenants, err := repo.TenantsWithOverdue(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{tenantID}, tenants)

	n, err := repo.MarkDueBefore(ctx, tenantID, now)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	tenants, err = repo.TenantsWithOverdue(ctx, now)
	require.NoError(t, err)
	assert.Empty(t, tenants)

	n, err = repo.MarkDueBefore(ctx, tenantID, now)
	require.NoError(t, err)
	assert.Zero(t, n)

	paidAt := time.Date(2024, 3, 20, 9, 0, 0, 0, time.UTC)
	for _, p := range []struct {
		typ    finance.EntryType
		amount string
	}{
		{finance.EntryTypeIncome, "150.50"},
		{finance.EntryTypeIncome, "49.50"},
		{finance.EntryTypeExpense, "30"},
		{finance.EntryTypeAporte, "1000"},
	} {
		e, err := finance.NewPaidEntry(tenantID, finance.NewFinanceEntryParams{
			Type: p.typ, AccountID: accountID, Description: "x", Amount: decimal.RequireFromString(p.amount),
		}, paidAt)
		require.NoError(t, err)
		require.NoError(t, repo.Create(ctx, e))
	}

	from, to, err := finance.MonthRange("2024-03", time.UTC)
	require.NoError(t, err)
	totals, err := repo.SumPaidByType(ctx, tenantID, accountID, from, to)
	require.NoError(t, err)
	assert.True(t, totals[finance.EntryTypeIncome].Equal(decimal.NewFromInt(200)))
	assert.True(t, totals[finance.EntryTypeExpense].Equal(decimal.NewFromInt(30)))
	assert.True(t, totals[finance.EntryTypeAporte].Equal(decimal.NewFromInt(1000)))

	from, to, err = finance.MonthRange("2024-04", time.UTC)
	require.NoError(t, err)
	totals, err = repo.SumPaidByType(ctx, tenantID, accountID, from, to)
	require.NoError(t, err)
	assert.Empty(t, totals)
}

func TestMonthlyClosureRepository_FindLatestBefore(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	ctx := context.Background()
	tenantID, accountID := uuid.New(), uuid.New()
	repo := NewGormMonthlyClosureRepository(db)

	none, err := repo.FindLatestBefore(ctx, tenantID, accountID, "2024-03")
	require.NoError(t, err)
	assert.Nil(t, none)

	var prior *finance.MonthlyClosure
	for _, month := range []string{"2024-01", "2024-02"} {
		c, err := finance.NewMonthlyClosure(tenantID, month, accountID, prior, finance.PeriodTotals{
			Income: decimal.NewFromInt(100), Expense: decimal.NewFromInt(40),
		}, nil, "")
		require.NoError(t, err)
		require.NoError(t, repo.Create(ctx, c))
		prior = c
	}

	latest, err := repo.FindLatestBefore(ctx, tenantID, accountID, "2024-03")
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, "2024-02", latest.Month)
	assert.True(t, latest.ExpectedClosing.Equal(decimal.NewFromInt(120)))

	exists, err := repo.ExistsForMonth(ctx, tenantID, accountID, "2024-01")
	require.NoError(t, err)
	assert.True(t, exists)

	all, err := repo.FindByAccount(ctx, tenantID, accountID)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestTransactionScope_RollsBackOnError(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	ctx := context.Background()
	tenantID := uuid.New()
	scope := NewGormTransactionScope(db)

	p, err := catalog.NewProduct(tenantID, "ROLL", "Rollback", "UN")
	require.NoError(t, err)

	err = scope.Execute(ctx, func(repos uow.Repositories) error {
		if err := repos.Products().Save(ctx, p); err != nil {
			return err
		}
		return shared.NewDomainError(shared.CodeInvalidState, "abort")
	})
	require.Error(t, err)

	exists, err := NewGormProductRepository(db).ExistsByID(ctx, tenantID, p.ID)
	require.NoError(t, err)
	assert.False(t, exists)
}
