package catalog

import (
	"time"

	"github.com/erp/manufacturing/internal/domain/catalog"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateUomRequest represents a request to create a unit of measure
type CreateUomRequest struct {
	Name     string `json:"name" binding:"required,min=1,max=100"`
	Symbol   string `json:"symbol" binding:"required,min=1,max=10"`
	Category string `json:"category" binding:"max=100"`
}

// UomResponse represents a unit of measure in API responses
type UomResponse struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	Symbol   string    `json:"symbol"`
	Category string    `json:"category"`
}

// CreateProductRequest represents a request to create a new product
type CreateProductRequest struct {
	Code         string           `json:"code" binding:"max=50"`
	Name         string           `json:"name" binding:"required,min=1,max=200"`
	DefaultUomID uuid.UUID        `json:"default_uom_id" binding:"required"`
	Producible   bool             `json:"producible"`
	CostPrice    *decimal.Decimal `json:"cost_price"`
}

// ProductListFilter represents filter options for the product list
type ProductListFilter struct {
	Search   string `form:"search"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// ProductResponse represents a product in API responses
type ProductResponse struct {
	ID           uuid.UUID       `json:"id"`
	TenantID     uuid.UUID       `json:"tenant_id"`
	Code         string          `json:"code"`
	Name         string          `json:"name"`
	RecName      string          `json:"rec_name"`
	DefaultUomID uuid.UUID       `json:"default_uom_id"`
	Producible   bool            `json:"producible"`
	CostPrice    decimal.Decimal `json:"cost_price"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
	Version      int             `json:"version"`
}

// AddProductBomRequest represents a request to associate a BOM with a product
type AddProductBomRequest struct {
	BomID    uuid.UUID  `json:"bom_id" binding:"required"`
	RouteID  *uuid.UUID `json:"route_id"`
	Sequence *int       `json:"sequence"`
}

// ProductBomResponse represents a product-bom association in API responses
type ProductBomResponse struct {
	ID        uuid.UUID  `json:"id"`
	ProductID uuid.UUID  `json:"product_id"`
	Sequence  int        `json:"sequence"`
	BomID     uuid.UUID  `json:"bom_id"`
	RouteID   *uuid.UUID `json:"route_id,omitempty"`
	ProcessID *uuid.UUID `json:"process_id,omitempty"`
}

// ToUomResponse converts a domain Uom to UomResponse
func ToUomResponse(u *catalog.Uom) UomResponse {
	return UomResponse{
		ID:       u.ID,
		Name:     u.Name,
		Symbol:   u.Symbol,
		Category: u.Category,
	}
}

// ToProductResponse converts a domain Product to ProductResponse
func ToProductResponse(p *catalog.Product) ProductResponse {
	return ProductResponse{
		ID:           p.ID,
		TenantID:     p.TenantID,
		Code:         p.Code,
		Name:         p.Name,
		RecName:      p.RecName(),
		DefaultUomID: p.DefaultUomID,
		Producible:   p.Producible,
		CostPrice:    p.CostPrice,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
		Version:      p.Version,
	}
}

// ToProductBomResponse converts a domain ProductBom to ProductBomResponse
func ToProductBomResponse(pb *catalog.ProductBom) ProductBomResponse {
	return ProductBomResponse{
		ID:        pb.ID,
		ProductID: pb.ProductID,
		Sequence:  pb.Sequence,
		BomID:     pb.BomID,
		RouteID:   pb.RouteID,
		ProcessID: pb.ProcessID,
	}
}
