package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/retail/backoffice/internal/domain/finance"
	"github.com/retail/backoffice/internal/domain/shared"
	"github.com/retail/backoffice/internal/infrastructure/persistence/models"
	"github.com/retail/backoffice/internal/infrastructure/persistence/tenant"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormFinanceEntryRepository implements FinanceEntryRepository using GORM
type GormFinanceEntryRepository struct {
	db *gorm.DB
}

// NewGormFinanceEntryRepository creates a new GormFinanceEntryRepository
func NewGormFinanceEntryRepository(db *gorm.DB) *GormFinanceEntryRepository {
	return &GormFinanceEntryRepository{db: db}
}

// Create inserts a finance entry
func (r *GormFinanceEntryRepository) Create(ctx context.Context, entry *finance.FinanceEntry) error {
	return r.db.WithContext(ctx).Create(models.FinanceEntryModelFromDomain(entry)).Error
}

// FindByIDForTenant finds an entry by ID within a tenant
func (r *GormFinanceEntryRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*finance.FinanceEntry, error) {
	var model models.FinanceEntryModel
	if err := r.db.WithContext(ctx).
		Scopes(tenant.TenantScope(tenantID)).
		Where("id = ?", id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NotFound("finance entry", id)
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByPaymentIDs returns the entries posted for any of the payments
func (r *GormFinanceEntryRepository) FindByPaymentIDs(ctx context.Context, tenantID uuid.UUID, paymentIDs []uuid.UUID) ([]finance.FinanceEntry, error) {
	if len(paymentIDs) == 0 {
		return nil, nil
	}
	var rows []models.FinanceEntryModel
	if err := r.db.WithContext(ctx).
		Scopes(tenant.TenantScope(tenantID)).
		Where("payment_id IN ?", paymentIDs).
		Order("created_at ASC, id ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return toFinanceEntries(rows), nil
}

// List returns a page of entries and the total count
func (r *GormFinanceEntryRepository) List(ctx context.Context, tenantID uuid.UUID, filter finance.EntryFilter) ([]finance.FinanceEntry, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.FinanceEntryModel{}).
		Scopes(tenant.TenantScope(tenantID))
	if filter.AccountID != nil {
		query = query.Where("account_id = ?", *filter.AccountID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Type != "" {
		query = query.Where("type = ?", filter.Type)
	}
	query = query.Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.FinanceEntryModel
	if err := paginate(query, filter.Filter, FinanceEntrySortFields, "created_at").Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return toFinanceEntries(rows), total, nil
}

// SaveWithLock updates the entry with optimistic locking
func (r *GormFinanceEntryRepository) SaveWithLock(ctx context.Context, entry *finance.FinanceEntry) error {
	if err := updateWithVersion(r.db.WithContext(ctx), &models.FinanceEntryModel{}, "finance entry", entry.TenantID, entry.ID, entry.Version, map[string]any{
		"status":      entry.Status,
		"description": entry.Description,
		"due_date":    entry.DueDate,
		"paid_at":     entry.PaidAt,
		"updated_at":  entry.UpdatedAt,
	}); err != nil {
		return err
	}
	entry.IncrementVersion()
	return nil
}

// MarkDueBefore moves SCHEDULED entries whose due date has passed to DUE in one statement
func (r *GormFinanceEntryRepository) MarkDueBefore(ctx context.Context, tenantID uuid.UUID, now time.Time) (int64, error) {
	result := r.db.WithContext(ctx).Model(&models.FinanceEntryModel{}).
		Scopes(tenant.TenantScope(tenantID)).
		Where("status = ? AND due_date IS NOT NULL AND due_date < ?", finance.EntryStatusScheduled, now).
		Updates(map[string]any{
			"status":     finance.EntryStatusDue,
			"version":    gorm.Expr("version + 1"),
			"updated_at": now,
		})
	return result.RowsAffected, result.Error
}

// TenantsWithOverdue lists tenants owning SCHEDULED entries that are past due
func (r *GormFinanceEntryRepository) TenantsWithOverdue(ctx context.Context, now time.Time) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).Model(&models.FinanceEntryModel{}).
		Where("status = ? AND due_date IS NOT NULL AND due_date < ?", finance.EntryStatusScheduled, now).
		Distinct().
		Pluck("tenant_id", &ids).Error
	return ids, err
}

// SumPaidByType totals PAID entries of an account with paid_at in [from, to)
func (r *GormFinanceEntryRepository) SumPaidByType(ctx context.Context, tenantID, accountID uuid.UUID, from, to time.Time) (map[finance.EntryType]decimal.Decimal, error) {
	var rows []struct {
		Type  finance.EntryType
		Total decimal.Decimal
	}
	if err := r.db.WithContext(ctx).Model(&models.FinanceEntryModel{}).
		Scopes(tenant.TenantScope(tenantID)).
		Where("account_id = ? AND status = ? AND paid_at >= ? AND paid_at < ?", accountID, finance.EntryStatusPaid, from, to).
		Select("type, COALESCE(SUM(amount), 0) AS total").
		Group("type").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	totals := make(map[finance.EntryType]decimal.Decimal, len(rows))
	for _, row := range rows {
		totals[row.Type] = row.Total.Round(moneyScale)
	}
	return totals, nil
}

func toFinanceEntries(rows []models.FinanceEntryModel) []finance.FinanceEntry {
	entries := make([]finance.FinanceEntry, len(rows))
	for i := range rows {
		entries[i] = *rows[i].ToDomain()
	}
	return entries
}
