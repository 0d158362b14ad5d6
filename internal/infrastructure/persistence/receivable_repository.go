package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/retail/backoffice/internal/domain/finance"
	"github.com/retail/backoffice/internal/domain/shared"
	"github.com/retail/backoffice/internal/infrastructure/persistence/models"
	"github.com/retail/backoffice/internal/infrastructure/persistence/tenant"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// moneyScale is the scale of every stored money column
const moneyScale = 4

// GormReceivableRepository implements ReceivableRepository using GORM
type GormReceivableRepository struct {
	db *gorm.DB
}

// NewGormReceivableRepository creates a new GormReceivableRepository
func NewGormReceivableRepository(db *gorm.DB) *GormReceivableRepository {
	return &GormReceivableRepository{db: db}
}

// Create inserts a receivable
func (r *GormReceivableRepository) Create(ctx context.Context, receivable *finance.Receivable) error {
	return r.db.WithContext(ctx).Create(models.ReceivableModelFromDomain(receivable)).Error
}

// FindByIDForTenant finds a receivable by ID within a tenant
func (r *GormReceivableRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*finance.Receivable, error) {
	return r.findOne(r.db.WithContext(ctx), tenantID, id)
}

// FindByIDForUpdate finds a receivable and locks its row with SELECT ... FOR UPDATE
func (r *GormReceivableRepository) FindByIDForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*finance.Receivable, error) {
	return r.findOne(r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}), tenantID, id)
}

func (r *GormReceivableRepository) findOne(db *gorm.DB, tenantID, id uuid.UUID) (*finance.Receivable, error) {
	var model models.ReceivableModel
	if err := db.Scopes(tenant.TenantScope(tenantID)).
		Where("id = ?", id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NotFound("receivable", id)
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindBySale returns the receivables of a sale in installment order
func (r *GormReceivableRepository) FindBySale(ctx context.Context, tenantID, saleID uuid.UUID) ([]finance.Receivable, error) {
	var rows []models.ReceivableModel
	if err := r.db.WithContext(ctx).
		Scopes(tenant.TenantScope(tenantID)).
		Where("sale_id = ?", saleID).
		Order("installment_number ASC, due_date ASC, id ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return toReceivables(rows), nil
}

// List returns a page of receivables and the total count
func (r *GormReceivableRepository) List(ctx context.Context, tenantID uuid.UUID, filter finance.ReceivableFilter) ([]finance.Receivable, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.ReceivableModel{}).
		Scopes(tenant.TenantScope(tenantID))
	if filter.CustomerID != nil {
		query = query.Where("customer_id = ?", *filter.CustomerID)
	}
	if filter.SaleID != nil {
		query = query.Where("sale_id = ?", *filter.SaleID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.DueFrom != nil {
		query = query.Where("due_date >= ?", *filter.DueFrom)
	}
	if filter.DueTo != nil {
		query = query.Where("due_date < ?", *filter.DueTo)
	}
	query = query.Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.ReceivableModel
	if err := paginate(query, filter.Filter, ReceivableSortFields, "due_date").Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return toReceivables(rows), total, nil
}

// SaveWithLock updates the receivable with optimistic locking
func (r *GormReceivableRepository) SaveWithLock(ctx context.Context, receivable *finance.Receivable) error {
	if err := updateWithVersion(r.db.WithContext(ctx), &models.ReceivableModel{}, "receivable", receivable.TenantID, receivable.ID, receivable.Version, map[string]any{
		"paid_amount":  receivable.PaidAmount,
		"status":       receivable.Status,
		"notes":        receivable.Notes,
		"paid_at":      receivable.PaidAt,
		"cancelled_at": receivable.CancelledAt,
		"updated_at":   receivable.UpdatedAt,
	}); err != nil {
		return err
	}
	receivable.IncrementVersion()
	return nil
}

// CreateSettlement appends a settlement row
func (r *GormReceivableRepository) CreateSettlement(ctx context.Context, settlement *finance.ReceivableSettlement) error {
	return r.db.WithContext(ctx).Create(models.ReceivableSettlementModelFromDomain(settlement)).Error
}

// FindSettlements returns the settlements of a receivable, oldest first
func (r *GormReceivableRepository) FindSettlements(ctx context.Context, tenantID, receivableID uuid.UUID) ([]finance.ReceivableSettlement, error) {
	var rows []models.ReceivableSettlementModel
	if err := r.db.WithContext(ctx).
		Scopes(tenant.TenantScope(tenantID)).
		Where("receivable_id = ?", receivableID).
		Order("paid_at ASC, created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	settlements := make([]finance.ReceivableSettlement, len(rows))
	for i := range rows {
		settlements[i] = *rows[i].ToDomain()
	}
	return settlements, nil
}

// SumSettlements totals the settlements of a receivable
func (r *GormReceivableRepository) SumSettlements(ctx context.Context, tenantID, receivableID uuid.UUID) (decimal.Decimal, error) {
	var out struct {
		Total decimal.Decimal
	}
	if err := r.db.WithContext(ctx).Model(&models.ReceivableSettlementModel{}).
		Scopes(tenant.TenantScope(tenantID)).
		Where("receivable_id = ?", receivableID).
		Select("COALESCE(SUM(amount), 0) AS total").
		Scan(&out).Error; err != nil {
		return decimal.Zero, err
	}
	return out.Total.Round(moneyScale), nil
}

func toReceivables(rows []models.ReceivableModel) []finance.Receivable {
	receivables := make([]finance.Receivable, len(rows))
	for i := range rows {
		receivables[i] = *rows[i].ToDomain()
	}
	return receivables
}
