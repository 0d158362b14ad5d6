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

// GormPurchaseRepository implements PurchaseRepository using GORM
type GormPurchaseRepository struct {
	db *gorm.DB
}

// NewGormPurchaseRepository creates a new GormPurchaseRepository
func NewGormPurchaseRepository(db *gorm.DB) *GormPurchaseRepository {
	return &GormPurchaseRepository{db: db}
}

// FindByIDForTenant finds a purchase with its items and extra costs
func (r *GormPurchaseRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*trade.Purchase, error) {
	var model models.PurchaseModel
	if err := r.db.WithContext(ctx).
		Scopes(tenant.TenantScope(tenantID)).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC, id ASC") }).
		Preload("Costs").
		Where("id = ?", id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NotFound("purchase", id)
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// List returns a page of purchase headers and the total count
func (r *GormPurchaseRepository) List(ctx context.Context, tenantID uuid.UUID, filter trade.PurchaseFilter) ([]trade.Purchase, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.PurchaseModel{}).
		Scopes(tenant.TenantScope(tenantID))
	if filter.SupplierID != nil {
		query = query.Where("supplier_id = ?", *filter.SupplierID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	query = query.Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.PurchaseModel
	if err := paginate(query, filter.Filter, PurchaseSortFields, "date").Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	purchases := make([]trade.Purchase, len(rows))
	for i := range rows {
		purchases[i] = *rows[i].ToDomain()
	}
	return purchases, total, nil
}

// Create inserts the purchase with its items and costs
func (r *GormPurchaseRepository) Create(ctx context.Context, purchase *trade.Purchase) error {
	model := models.PurchaseModelFromDomain(purchase)
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(model).Error; err != nil {
			return err
		}
		if len(model.Items) > 0 {
			if err := tx.Create(&model.Items).Error; err != nil {
				return err
			}
		}
		if len(model.Costs) > 0 {
			if err := tx.Create(&model.Costs).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// SaveWithLock updates the purchase header with optimistic locking.
// Lines and costs are immutable once the purchase exists.
func (r *GormPurchaseRepository) SaveWithLock(ctx context.Context, purchase *trade.Purchase) error {
	if err := updateWithVersion(r.db.WithContext(ctx), &models.PurchaseModel{}, "purchase", purchase.TenantID, purchase.ID, purchase.Version, map[string]any{
		"status":        purchase.Status,
		"notes":         purchase.Notes,
		"cancelled_at":  purchase.CancelledAt,
		"cancel_reason": purchase.CancelReason,
		"updated_at":    purchase.UpdatedAt,
	}); err != nil {
		return err
	}
	purchase.IncrementVersion()
	return nil
}
