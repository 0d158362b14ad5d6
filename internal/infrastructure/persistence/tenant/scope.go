// Package tenant provides multi-tenant database scoping for GORM.
//
// Every ledger table carries a tenant_id column. Repositories never issue a
// query without one of the scopes below, so rows of one tenant are invisible
// to another.
//
// Usage:
//
//	db.WithContext(ctx).Scopes(tenant.TenantScope(tenantID)).Find(&rows)
package tenant

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ErrTenantIDRequired is returned when a query is attempted without a tenant
var ErrTenantIDRequired = errors.New("tenant_id is required")

// TenantScope applies tenant filtering to GORM queries
func TenantScope(tenantID uuid.UUID) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if tenantID == uuid.Nil {
			_ = db.AddError(ErrTenantIDRequired)
			return db
		}
		return db.Where("tenant_id = ?", tenantID)
	}
}

// QualifiedTenantScope filters on table.tenant_id, for queries that join
func QualifiedTenantScope(table string, tenantID uuid.UUID) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if tenantID == uuid.Nil {
			_ = db.AddError(ErrTenantIDRequired)
			return db
		}
		return db.Where(table+".tenant_id = ?", tenantID)
	}
}

// ForTenant returns a session bound to ctx and scoped to tenantID
func ForTenant(ctx context.Context, db *gorm.DB, tenantID uuid.UUID) *gorm.DB {
	return db.WithContext(ctx).Scopes(TenantScope(tenantID))
}
