package models

import (
	"github.com/erp/manufacturing/internal/domain/catalog"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// UomModel is the persistence model for units of measure
type UomModel struct {
	TenantAggregateModel
	Name     string `gorm:"type:varchar(100);not null"`
	Symbol   string `gorm:"type:varchar(10);not null"`
	Category string `gorm:"type:varchar(50)"`
}

// TableName returns the table name for GORM
func (UomModel) TableName() string {
	return "uoms"
}

// ToDomain converts the persistence model to a domain Uom
func (m *UomModel) ToDomain() *catalog.Uom {
	return &catalog.Uom{
		TenantAggregateRoot: m.ToTenantAggregateRoot(),
		Name:                m.Name,
		Symbol:              m.Symbol,
		Category:            m.Category,
	}
}

// UomModelFromDomain creates a persistence model from a domain Uom
func UomModelFromDomain(u *catalog.Uom) *UomModel {
	m := &UomModel{Name: u.Name, Symbol: u.Symbol, Category: u.Category}
	m.FromDomainTenantAggregateRoot(u.TenantAggregateRoot)
	return m
}

// ProductModel is the persistence model for products
type ProductModel struct {
	TenantAggregateModel
	Code         string          `gorm:"type:varchar(50);not null;index"`
	Name         string          `gorm:"type:varchar(200);not null"`
	DefaultUomID uuid.UUID       `gorm:"type:uuid;not null"`
	Producible   bool            `gorm:"not null;default:false"`
	CostPrice    decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
}

// TableName returns the table name for GORM
func (ProductModel) TableName() string {
	return "products"
}

// ToDomain converts the persistence model to a domain Product
func (m *ProductModel) ToDomain() *catalog.Product {
	return &catalog.Product{
		TenantAggregateRoot: m.ToTenantAggregateRoot(),
		Code:                m.Code,
		Name:                m.Name,
		DefaultUomID:        m.DefaultUomID,
		Producible:          m.Producible,
		CostPrice:           m.CostPrice,
	}
}

// ProductModelFromDomain creates a persistence model from a domain Product
func ProductModelFromDomain(p *catalog.Product) *ProductModel {
	m := &ProductModel{
		Code:         p.Code,
		Name:         p.Name,
		DefaultUomID: p.DefaultUomID,
		Producible:   p.Producible,
		CostPrice:    p.CostPrice,
	}
	m.FromDomainTenantAggregateRoot(p.TenantAggregateRoot)
	return m
}

// ProductBomModel is the persistence model for product-BOM associations
type ProductBomModel struct {
	BaseModel
	TenantID  uuid.UUID  `gorm:"type:uuid;not null;index"`
	ProductID uuid.UUID  `gorm:"type:uuid;not null;index"`
	Sequence  int        `gorm:"not null;default:10"`
	BomID     uuid.UUID  `gorm:"type:uuid;not null"`
	RouteID   *uuid.UUID `gorm:"type:uuid"`
	ProcessID *uuid.UUID `gorm:"type:uuid;index"`
}

// TableName returns the table name for GORM
func (ProductBomModel) TableName() string {
	return "product_boms"
}

// ToDomain converts the persistence model to a domain ProductBom
func (m *ProductBomModel) ToDomain() *catalog.ProductBom {
	return &catalog.ProductBom{
		BaseEntity: m.BaseModel.ToDomain(),
		TenantID:   m.TenantID,
		ProductID:  m.ProductID,
		Sequence:   m.Sequence,
		BomID:      m.BomID,
		RouteID:    m.RouteID,
		ProcessID:  m.ProcessID,
	}
}

// ProductBomModelFromDomain creates a persistence model from a domain ProductBom
func ProductBomModelFromDomain(pb *catalog.ProductBom) *ProductBomModel {
	m := &ProductBomModel{
		TenantID:  pb.TenantID,
		ProductID: pb.ProductID,
		Sequence:  pb.Sequence,
		BomID:     pb.BomID,
		RouteID:   pb.RouteID,
		ProcessID: pb.ProcessID,
	}
	m.FromDomainBaseEntity(pb.BaseEntity)
	return m
}
