package persistence

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/retail/backoffice/internal/domain/trade"
	"github.com/retail/backoffice/tests/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// These tests pin the Postgres statements the ledger relies on for
// serialization: row locks on lots and receivables and the coupon upsert.

func TestCostLotRepository_FindAvailableForUpdate_LocksRows(t *testing.T) {
	m := testutil.NewMockDB(t)
	defer m.Close()

	tenantID, productID := uuid.New(), uuid.New()
	m.Mock.ExpectQuery(`SELECT \* FROM "cost_lots" WHERE .*product_id = \$\d.*tenant_id = \$\d.* ORDER BY created_at ASC, id ASC FOR UPDATE`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "tenant_id", "product_id", "remaining_quantity_base"}))

	lots, err := NewGormCostLotRepository(m.DB).FindAvailableForUpdate(context.Background(), tenantID, productID)
	require.NoError(t, err)
	assert.Empty(t, lots)
	m.ExpectationsWereMet(t)
}

func TestCostLotRepository_FindBySourceLine_LocksRows(t *testing.T) {
	m := testutil.NewMockDB(t)
	defer m.Close()

	tenantID, lineID := uuid.New(), uuid.New()
	m.Mock.ExpectQuery(`SELECT \* FROM "cost_lots" WHERE .*source_line_id = \$\d.* ORDER BY created_at ASC, id ASC FOR UPDATE`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := NewGormCostLotRepository(m.DB).FindBySourceLine(context.Background(), tenantID, lineID)
	require.NoError(t, err)
	m.ExpectationsWereMet(t)
}

func TestReceivableRepository_FindByIDForUpdate_LocksRow(t *testing.T) {
	m := testutil.NewMockDB(t)
	defer m.Close()

	tenantID, id := uuid.New(), uuid.New()
	m.Mock.ExpectQuery(`SELECT \* FROM "receivables" WHERE .*id = \$\d.* LIMIT .*FOR UPDATE`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "tenant_id", "status"}).AddRow(id, tenantID, "OPEN"))

	r, err := NewGormReceivableRepository(m.DB).FindByIDForUpdate(context.Background(), tenantID, id)
	require.NoError(t, err)
	assert.Equal(t, id, r.ID)
	m.ExpectationsWereMet(t)
}

func TestCouponSequence_Next_UsesUpsert(t *testing.T) {
	m := testutil.NewMockDB(t)
	defer m.Close()

	tenantID := uuid.New()
	m.Mock.ExpectQuery(`SELECT COALESCE\(MAX\(coupon_number\), 0\) FROM "sales" WHERE tenant_id = \$1`).
		WithArgs(tenantID).
		WillReturnRows(sqlmock.NewRows([]string{"coalesce"}).AddRow(41))
	m.Mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO coupon_sequences (tenant_id, current_val, updated_at) VALUES ($1, $2, $3)`) +
		`\s+ON CONFLICT \(tenant_id\) DO UPDATE[\s\S]+RETURNING current_val`).
		WithArgs(tenantID, int64(42), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"current_val"}).AddRow(42))

	next, err := NewGormCouponSequence(m.DB).Next(context.Background(), tenantID)
	require.NoError(t, err)
	assert.Equal(t, int64(42), next)
	m.ExpectationsWereMet(t)
}

func TestSaleRepository_SaveWithLock_ChecksVersion(t *testing.T) {
	m := testutil.NewMockDB(t)
	defer m.Close()

	sale := trade.NewSale(uuid.New(), nil, time.Now(), "counter")
	m.Mock.ExpectBegin()
	m.Mock.ExpectExec(`UPDATE "sales" SET .* WHERE tenant_id = \$\d+ AND id = \$\d+ AND version = \$\d+`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	m.Mock.ExpectRollback()

	err := NewGormSaleRepository(m.DB).SaveWithLock(context.Background(), sale, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "modified by another user")
	assert.Equal(t, 1, sale.Version)
	m.ExpectationsWereMet(t)
}
