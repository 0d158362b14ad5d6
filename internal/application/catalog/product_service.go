package catalog

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/retail/backoffice/internal/domain/catalog"
	"github.com/retail/backoffice/internal/domain/shared"
	"github.com/retail/backoffice/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// ProductService handles products and their units
type ProductService struct {
	productRepo catalog.ProductRepository
	unitRepo    catalog.ProductUnitRepository
}

// NewProductService creates a new ProductService
func NewProductService(productRepo catalog.ProductRepository, unitRepo catalog.ProductUnitRepository) *ProductService {
	return &ProductService{productRepo: productRepo, unitRepo: unitRepo}
}

// CreateProduct creates a product with its base unit and any extra units
func (s *ProductService) CreateProduct(ctx context.Context, tenantID uuid.UUID, input CreateProductInput) (*ProductResponse, error) {
	// Check if code already exists
	existing, err := s.productRepo.FindByCode(ctx, tenantID, input.Code)
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}
	if existing != nil {
		return nil, shared.NewDomainError(shared.CodeAlreadyExists, "product with this code already exists")
	}

	product, err := catalog.NewProduct(tenantID, input.Code, input.Name, input.BaseUnit)
	if err != nil {
		return nil, err
	}
	for _, u := range input.Units {
		if _, err := product.AddUnit(u.Name, u.FactorToBase); err != nil {
			return nil, err
		}
	}
	if err := s.productRepo.Save(ctx, product); err != nil {
		return nil, err
	}

	logger.L(ctx).Info("Product created",
		zap.String("product_id", product.ID.String()),
		zap.String("code", product.Code),
	)
	resp := ToProductResponse(product)
	return &resp, nil
}

// AddUnit attaches another unit to an existing product
func (s *ProductService) AddUnit(ctx context.Context, tenantID, productID uuid.UUID, input UnitInput) (*UnitResponse, error) {
	product, err := s.productRepo.FindByIDForTenant(ctx, tenantID, productID)
	if err != nil {
		return nil, err
	}
	unit, err := product.AddUnit(input.Name, input.FactorToBase)
	if err != nil {
		return nil, err
	}
	if err := s.productRepo.Save(ctx, product); err != nil {
		return nil, err
	}
	resp := ToUnitResponse(*unit)
	return &resp, nil
}

// GetProduct returns a product by ID
func (s *ProductService) GetProduct(ctx context.Context, tenantID, productID uuid.UUID) (*ProductResponse, error) {
	product, err := s.productRepo.FindByIDForTenant(ctx, tenantID, productID)
	if err != nil {
		return nil, err
	}
	resp := ToProductResponse(product)
	return &resp, nil
}

// ListUnits returns the units of a product, smallest factor first
func (s *ProductService) ListUnits(ctx context.Context, tenantID, productID uuid.UUID) ([]UnitResponse, error) {
	exists, err := s.productRepo.ExistsByID(ctx, tenantID, productID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, shared.NotFound("product", productID)
	}
	units, err := s.unitRepo.FindByProductID(ctx, tenantID, productID)
	if err != nil {
		return nil, err
	}
	out := make([]UnitResponse, len(units))
	for i, u := range units {
		out[i] = ToUnitResponse(u)
	}
	return out, nil
}

// ListProducts returns a page of products
func (s *ProductService) ListProducts(ctx context.Context, tenantID uuid.UUID, filter ProductListFilter) ([]ProductResponse, int64, error) {
	if filter.OrderBy == "" {
		filter.OrderBy, filter.OrderDir = "code", "asc"
	}
	products, total, err := s.productRepo.FindAllForTenant(ctx, tenantID, shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		OrderBy:  filter.OrderBy,
		OrderDir: filter.OrderDir,
	}.Normalize())
	if err != nil {
		return nil, 0, err
	}
	out := make([]ProductResponse, len(products))
	for i := range products {
		out[i] = ToProductResponse(&products[i])
	}
	return out, total, nil
}
