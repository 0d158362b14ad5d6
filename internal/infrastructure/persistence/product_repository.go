package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/retail/backoffice/internal/domain/catalog"
	"github.com/retail/backoffice/internal/domain/shared"
	"github.com/retail/backoffice/internal/infrastructure/persistence/models"
	"github.com/retail/backoffice/internal/infrastructure/persistence/tenant"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormProductRepository implements ProductRepository using GORM
type GormProductRepository struct {
	db *gorm.DB
}

// NewGormProductRepository creates a new GormProductRepository
func NewGormProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

// FindByIDForTenant finds a product by ID within a tenant
func (r *GormProductRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*catalog.Product, error) {
	var model models.ProductModel
	if err := r.db.WithContext(ctx).
		Scopes(tenant.TenantScope(tenantID)).
		Preload("Units", func(db *gorm.DB) *gorm.DB { return db.Order("factor_to_base ASC") }).
		Where("id = ?", id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NotFound("product", id)
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByCode finds a product by its code within a tenant
func (r *GormProductRepository) FindByCode(ctx context.Context, tenantID uuid.UUID, code string) (*catalog.Product, error) {
	var model models.ProductModel
	if err := r.db.WithContext(ctx).
		Scopes(tenant.TenantScope(tenantID)).
		Preload("Units").
		Where("code = ?", strings.ToUpper(strings.TrimSpace(code))).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAllForTenant returns a page of products and the total count
func (r *GormProductRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]catalog.Product, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.ProductModel{}).Scopes(tenant.TenantScope(tenantID)).
		Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.ProductModel
	if err := paginate(query.Preload("Units"), filter, ProductSortFields, "code").Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	products := make([]catalog.Product, len(rows))
	for i := range rows {
		products[i] = *rows[i].ToDomain()
	}
	return products, total, nil
}

// ExistsByID checks if a product exists within a tenant
func (r *GormProductRepository) ExistsByID(ctx context.Context, tenantID, id uuid.UUID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.ProductModel{}).
		Scopes(tenant.TenantScope(tenantID)).
		Where("id = ?", id).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Save creates or updates a product and upserts its units
func (r *GormProductRepository) Save(ctx context.Context, product *catalog.Product) error {
	model := models.ProductModelFromDomain(product)
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Save(model).Error; err != nil {
			return err
		}
		for i := range model.Units {
			if err := tx.Save(&model.Units[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// GormProductUnitRepository implements ProductUnitRepository using GORM
type GormProductUnitRepository struct {
	db *gorm.DB
}

// NewGormProductUnitRepository creates a new GormProductUnitRepository
func NewGormProductUnitRepository(db *gorm.DB) *GormProductUnitRepository {
	return &GormProductUnitRepository{db: db}
}

// FindByIDForTenant finds a unit by ID within a tenant
func (r *GormProductUnitRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*catalog.ProductUnit, error) {
	var model models.ProductUnitModel
	if err := r.db.WithContext(ctx).
		Scopes(tenant.TenantScope(tenantID)).
		Where("id = ?", id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NotFound("unit", id)
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByProductID lists the units of a product, base unit first
func (r *GormProductUnitRepository) FindByProductID(ctx context.Context, tenantID, productID uuid.UUID) ([]catalog.ProductUnit, error) {
	var rows []models.ProductUnitModel
	if err := r.db.WithContext(ctx).
		Scopes(tenant.TenantScope(tenantID)).
		Where("product_id = ?", productID).
		Order("factor_to_base ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	units := make([]catalog.ProductUnit, len(rows))
	for i := range rows {
		units[i] = *rows[i].ToDomain()
	}
	return units, nil
}
