package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/retail/backoffice/internal/domain/catalog"
)

// UnitInput describes an extra unit of a product
type UnitInput struct {
	Name         string `json:"name" binding:"required,max=50"`
	FactorToBase int64  `json:"factor_to_base" binding:"required,min=1"`
}

// CreateProductInput represents input for creating a product
type CreateProductInput struct {
	Code     string      `json:"code" binding:"required,max=50"`
	Name     string      `json:"name" binding:"required,max=200"`
	BaseUnit string      `json:"base_unit" binding:"required,max=50"`
	Units    []UnitInput `json:"units" binding:"dive"`
}

// ProductListFilter represents filter options for the product list
type ProductListFilter struct {
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=200"`
	OrderBy  string `form:"order_by"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// UnitResponse represents a product unit in API responses
type UnitResponse struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	FactorToBase int64     `json:"factor_to_base"`
}

// ProductResponse represents a product in API responses
type ProductResponse struct {
	ID        uuid.UUID      `json:"id"`
	Code      string         `json:"code"`
	Name      string         `json:"name"`
	BaseUnit  string         `json:"base_unit"`
	Status    string         `json:"status"`
	Units     []UnitResponse `json:"units"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// ToUnitResponse converts a domain unit
func ToUnitResponse(u catalog.ProductUnit) UnitResponse {
	return UnitResponse{ID: u.ID, Name: u.Name, FactorToBase: u.FactorToBase}
}

// ToProductResponse converts a domain product
func ToProductResponse(p *catalog.Product) ProductResponse {
	resp := ProductResponse{
		ID:        p.ID,
		Code:      p.Code,
		Name:      p.Name,
		BaseUnit:  p.BaseUnit,
		Status:    string(p.Status),
		Units:     make([]UnitResponse, len(p.Units)),
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
	for i, u := range p.Units {
		resp.Units[i] = ToUnitResponse(u)
	}
	return resp
}
