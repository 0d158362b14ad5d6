package persistence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/retail/backoffice/internal/domain/inventory"
	"github.com/retail/backoffice/internal/domain/shared"
	"github.com/retail/backoffice/internal/infrastructure/persistence/models"
	"github.com/retail/backoffice/internal/infrastructure/persistence/tenant"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormCostLotRepository implements CostLotRepository using GORM
type GormCostLotRepository struct {
	db *gorm.DB
}

// NewGormCostLotRepository creates a new GormCostLotRepository
func NewGormCostLotRepository(db *gorm.DB) *GormCostLotRepository {
	return &GormCostLotRepository{db: db}
}

// Create inserts a cost lot
func (r *GormCostLotRepository) Create(ctx context.Context, lot *inventory.CostLot) error {
	return r.db.WithContext(ctx).Create(models.CostLotModelFromDomain(lot)).Error
}

// FindAvailableForUpdate returns open lots oldest first and locks them with
// SELECT ... FOR UPDATE until the surrounding transaction ends.
func (r *GormCostLotRepository) FindAvailableForUpdate(ctx context.Context, tenantID, productID uuid.UUID) ([]*inventory.CostLot, error) {
	var rows []models.CostLotModel
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Scopes(tenant.TenantScope(tenantID)).
		Where("product_id = ? AND remaining_quantity_base > 0", productID).
		Order("created_at ASC, id ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return toCostLots(rows), nil
}

// FindBySourceLine returns the lots created from a purchase line, locked for update
func (r *GormCostLotRepository) FindBySourceLine(ctx context.Context, tenantID, sourceLineID uuid.UUID) ([]*inventory.CostLot, error) {
	var rows []models.CostLotModel
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Scopes(tenant.TenantScope(tenantID)).
		Where("source_line_id = ?", sourceLineID).
		Order("created_at ASC, id ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return toCostLots(rows), nil
}

// FindByProduct lists the lots of a product in FIFO order
func (r *GormCostLotRepository) FindByProduct(ctx context.Context, tenantID, productID uuid.UUID, onlyAvailable bool) ([]inventory.CostLot, error) {
	query := r.db.WithContext(ctx).
		Scopes(tenant.TenantScope(tenantID)).
		Where("product_id = ?", productID)
	if onlyAvailable {
		query = query.Where("remaining_quantity_base > 0")
	}
	var rows []models.CostLotModel
	if err := query.Order("created_at ASC, id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	lots := make([]inventory.CostLot, len(rows))
	for i := range rows {
		lots[i] = *rows[i].ToDomain()
	}
	return lots, nil
}

// UpdateRemaining writes back the remaining quantity of each lot. A lot's
// remaining quantity only ever decreases; a write that would raise it or
// that finds the row gone is reported as a concurrent modification.
func (r *GormCostLotRepository) UpdateRemaining(ctx context.Context, lots []*inventory.CostLot) error {
	db := r.db.WithContext(ctx)
	for _, lot := range lots {
		result := db.Model(&models.CostLotModel{}).
			Where("tenant_id = ? AND id = ? AND remaining_quantity_base >= ?", lot.TenantID, lot.ID, lot.RemainingQuantityBase).
			Updates(map[string]any{
				"remaining_quantity_base": lot.RemainingQuantityBase,
				"updated_at":              lot.UpdatedAt,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.NewDomainError(shared.CodeConcurrentModification, "cost lot "+lot.ID.String()+" was modified by another process")
		}
	}
	return nil
}

// ZeroByIDs forces remaining to zero for the given lots and returns how many changed
func (r *GormCostLotRepository) ZeroByIDs(ctx context.Context, tenantID uuid.UUID, lotIDs []uuid.UUID) (int64, error) {
	if len(lotIDs) == 0 {
		return 0, nil
	}
	result := r.db.WithContext(ctx).Model(&models.CostLotModel{}).
		Scopes(tenant.TenantScope(tenantID)).
		Where("id IN ? AND remaining_quantity_base > 0", lotIDs).
		Updates(map[string]any{
			"remaining_quantity_base": 0,
			"updated_at":              time.Now(),
		})
	return result.RowsAffected, result.Error
}

func toCostLots(rows []models.CostLotModel) []*inventory.CostLot {
	lots := make([]*inventory.CostLot, len(rows))
	for i := range rows {
		lots[i] = rows[i].ToDomain()
	}
	return lots
}
