package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/retail/backoffice/internal/domain/finance"
	"github.com/retail/backoffice/internal/infrastructure/persistence/models"
	"github.com/retail/backoffice/internal/infrastructure/persistence/tenant"
	"gorm.io/gorm"
)

// GormMonthlyClosureRepository implements MonthlyClosureRepository using GORM
type GormMonthlyClosureRepository struct {
	db *gorm.DB
}

// NewGormMonthlyClosureRepository creates a new GormMonthlyClosureRepository
func NewGormMonthlyClosureRepository(db *gorm.DB) *GormMonthlyClosureRepository {
	return &GormMonthlyClosureRepository{db: db}
}

// Create inserts a closure
func (r *GormMonthlyClosureRepository) Create(ctx context.Context, closure *finance.MonthlyClosure) error {
	return r.db.WithContext(ctx).Create(models.MonthlyClosureModelFromDomain(closure)).Error
}

// FindLatestBefore returns the closure with the greatest month strictly
// before month, or nil when the account has none
func (r *GormMonthlyClosureRepository) FindLatestBefore(ctx context.Context, tenantID, accountID uuid.UUID, month string) (*finance.MonthlyClosure, error) {
	var model models.MonthlyClosureModel
	if err := r.db.WithContext(ctx).
		Scopes(tenant.TenantScope(tenantID)).
		Where("account_id = ? AND month < ?", accountID, month).
		Order("month DESC, created_at DESC").
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// ExistsForMonth checks whether the account already has a closure for month
func (r *GormMonthlyClosureRepository) ExistsForMonth(ctx context.Context, tenantID, accountID uuid.UUID, month string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.MonthlyClosureModel{}).
		Scopes(tenant.TenantScope(tenantID)).
		Where("account_id = ? AND month = ?", accountID, month).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// FindByAccount lists the closures of an account in month order
func (r *GormMonthlyClosureRepository) FindByAccount(ctx context.Context, tenantID, accountID uuid.UUID) ([]finance.MonthlyClosure, error) {
	var rows []models.MonthlyClosureModel
	if err := r.db.WithContext(ctx).
		Scopes(tenant.TenantScope(tenantID)).
		Where("account_id = ?", accountID).
		Order("month ASC, created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	closures := make([]finance.MonthlyClosure, len(rows))
	for i := range rows {
		closures[i] = *rows[i].ToDomain()
	}
	return closures, nil
}
