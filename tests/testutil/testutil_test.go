package testutil

import (
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/retail/backoffice/internal/infrastructure/persistence/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMockDB(t *testing.T) {
	mockDB := NewMockDB(t)
	defer mockDB.Close()

	assert.NotNil(t, mockDB.DB)
	assert.NotNil(t, mockDB.Mock)
	mockDB.ExpectationsWereMet(t)
}

func TestNewSQLiteDB_IsolatedAndMigrated(t *testing.T) {
	a := NewSQLiteDB(t)
	b := NewSQLiteDB(t)

	require.NoError(t, a.Create(&models.CouponSequenceModel{TenantID: TestTenantID(), CurrentVal: 3, UpdatedAt: time.Now()}).Error)

	var countA, countB int64
	require.NoError(t, a.Model(&models.CouponSequenceModel{}).Count(&countA).Error)
	require.NoError(t, b.Model(&models.CouponSequenceModel{}).Count(&countB).Error)
	assert.Equal(t, int64(1), countA)
	assert.Equal(t, int64(0), countB)
}

func TestNewTestUUID(t *testing.T) {
	assert.Equal(t, NewTestUUID("x"), NewTestUUID("x"))
	assert.NotEqual(t, NewTestUUID("x"), NewTestUUID("y"))
}

func TestRequireEventually(t *testing.T) {
	calls := 0
	RequireEventually(t, func() bool {
		calls++
		return calls >= 3
	}, time.Second, time.Millisecond)
	assert.Equal(t, 3, calls)
}

func TestRunHTTPTestCase(t *testing.T) {
	handler := func(c *gin.Context) { c.JSON(200, map[string]any{"success": true}) }
	RunHTTPTestCase(t, handler, HTTPTestCase{
		Name:           "ok",
		ExpectedStatus: 200,
		ExpectedBody:   map[string]any{"success": true},
	})
}
