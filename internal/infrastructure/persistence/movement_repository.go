package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/retail/backoffice/internal/domain/inventory"
	"github.com/retail/backoffice/internal/infrastructure/persistence/models"
	"github.com/retail/backoffice/internal/infrastructure/persistence/tenant"
	"gorm.io/gorm"
)

// GormMovementRepository implements MovementRepository using GORM.
// The movement table is append-only: there is no update or delete path.
type GormMovementRepository struct {
	db *gorm.DB
}

// NewGormMovementRepository creates a new GormMovementRepository
func NewGormMovementRepository(db *gorm.DB) *GormMovementRepository {
	return &GormMovementRepository{db: db}
}

// Create inserts a movement
func (r *GormMovementRepository) Create(ctx context.Context, movement *inventory.InventoryMovement) error {
	return r.db.WithContext(ctx).Create(models.InventoryMovementModelFromDomain(movement)).Error
}

// SumStock returns Σ IN − Σ OUT in base units for a product
func (r *GormMovementRepository) SumStock(ctx context.Context, tenantID, productID uuid.UUID) (int64, error) {
	var stock int64
	if err := r.db.WithContext(ctx).Model(&models.InventoryMovementModel{}).
		Scopes(tenant.TenantScope(tenantID)).
		Where("product_id = ?", productID).
		Select("COALESCE(SUM(CASE WHEN direction = ? THEN quantity_base ELSE -quantity_base END), 0)", inventory.DirectionIn).
		Scan(&stock).Error; err != nil {
		return 0, err
	}
	return stock, nil
}

// List returns a page of movements, newest first by default
func (r *GormMovementRepository) List(ctx context.Context, tenantID uuid.UUID, filter inventory.MovementFilter) ([]inventory.InventoryMovement, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.InventoryMovementModel{}).
		Scopes(tenant.TenantScope(tenantID))
	if filter.ProductID != nil {
		query = query.Where("product_id = ?", *filter.ProductID)
	}
	if filter.Direction != "" {
		query = query.Where("direction = ?", filter.Direction)
	}
	if filter.ReasonType != "" {
		query = query.Where("reason_type = ?", filter.ReasonType)
	}
	if filter.ReasonID != "" {
		query = query.Where("reason_id = ?", filter.ReasonID)
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

	var rows []models.InventoryMovementModel
	if err := paginate(query, filter.Filter, MovementSortFields, "date").Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	movements := make([]inventory.InventoryMovement, len(rows))
	for i := range rows {
		movements[i] = *rows[i].ToDomain()
	}
	return movements, total, nil
}

// FindByReason returns the movements correlated with a reason in insertion order
func (r *GormMovementRepository) FindByReason(ctx context.Context, tenantID uuid.UUID, reasonType inventory.ReasonType, reasonID string) ([]inventory.InventoryMovement, error) {
	var rows []models.InventoryMovementModel
	if err := r.db.WithContext(ctx).
		Scopes(tenant.TenantScope(tenantID)).
		Where("reason_type = ? AND reason_id = ?", reasonType, reasonID).
		Order("created_at ASC, id ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	movements := make([]inventory.InventoryMovement, len(rows))
	for i := range rows {
		movements[i] = *rows[i].ToDomain()
	}
	return movements, nil
}
