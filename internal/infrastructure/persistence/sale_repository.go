package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/retail/backoffice/internal/domain/shared"
	"github.com/retail/backoffice/internal/domain/trade"
	"github.com/retail/backoffice/internal/infrastructure/persistence/models"
	"github.com/retail/backoffice/internal/infrastructure/persistence/tenant"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormSaleRepository implements SaleRepository using GORM
type GormSaleRepository struct {
	db *gorm.DB
}

// NewGormSaleRepository creates a new GormSaleRepository
func NewGormSaleRepository(db *gorm.DB) *GormSaleRepository {
	return &GormSaleRepository{db: db}
}

// FindByIDForTenant finds a sale with its items within a tenant
func (r *GormSaleRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*trade.Sale, error) {
	var model models.SaleModel
	if err := r.db.WithContext(ctx).
		Scopes(tenant.TenantScope(tenantID)).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC, id ASC") }).
		Where("id = ?", id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NotFound("sale", id)
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// List returns a page of sale headers and the total count
func (r *GormSaleRepository) List(ctx context.Context, tenantID uuid.UUID, filter trade.SaleFilter) ([]trade.Sale, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.SaleModel{}).
		Scopes(tenant.TenantScope(tenantID))
	if filter.CustomerID != nil {
		query = query.Where("customer_id = ?", *filter.CustomerID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.From != nil {
		query = query.Where("date >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("date < ?", *filter.To)
	}
	query = query.Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.SaleModel
	if err := paginate(query, filter.Filter, SaleSortFields, "date").Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	sales := make([]trade.Sale, len(rows))
	for i := range rows {
		sales[i] = *rows[i].ToDomain()
	}
	return sales, total, nil
}

// Create inserts a new sale and its items
func (r *GormSaleRepository) Create(ctx context.Context, sale *trade.Sale) error {
	model := models.SaleModelFromDomain(sale)
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(model).Error; err != nil {
			return err
		}
		if len(model.Items) > 0 {
			return tx.Create(&model.Items).Error
		}
		return nil
	})
}

// SaveWithLock saves the header with optimistic locking (version check).
// When replaceItems is set the stored item rows are replaced by sale.Items.
func (r *GormSaleRepository) SaveWithLock(ctx context.Context, sale *trade.Sale, replaceItems bool) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := updateWithVersion(tx, &models.SaleModel{}, "sale", sale.TenantID, sale.ID, sale.Version, map[string]any{
			"customer_id":   sale.CustomerID,
			"date":          sale.Date,
			"status":        sale.Status,
			"coupon_number": sale.CouponNumber,
			"notes":         sale.Notes,
			"total":         sale.Total,
			"confirmed_at":  sale.ConfirmedAt,
			"cancelled_at":  sale.CancelledAt,
			"cancel_reason": sale.CancelReason,
			"updated_at":    sale.UpdatedAt,
		}); err != nil {
			return err
		}
		if !replaceItems {
			return nil
		}

		if err := tx.Where("tenant_id = ? AND sale_id = ?", sale.TenantID, sale.ID).
			Delete(&models.SaleItemModel{}).Error; err != nil {
			return err
		}
		if len(sale.Items) == 0 {
			return nil
		}
		items := make([]models.SaleItemModel, len(sale.Items))
		for i := range sale.Items {
			items[i] = *models.SaleItemModelFromDomain(sale.TenantID, &sale.Items[i])
		}
		return tx.Create(&items).Error
	})
	if err != nil {
		return err
	}
	sale.IncrementVersion()
	return nil
}

// MaxCouponNumber returns the highest coupon number ever assigned, or 0
func (r *GormSaleRepository) MaxCouponNumber(ctx context.Context, tenantID uuid.UUID) (int64, error) {
	var maxNumber int64
	if err := r.db.WithContext(ctx).Model(&models.SaleModel{}).
		Scopes(tenant.TenantScope(tenantID)).
		Select("COALESCE(MAX(coupon_number), 0)").
		Scan(&maxNumber).Error; err != nil {
		return 0, err
	}
	return maxNumber, nil
}
