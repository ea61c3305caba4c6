package catalog

import (
	"fmt"
	"strings"

	"github.com/erp/manufacturing/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product represents a product that can be costed and produced
type Product struct {
	shared.TenantAggregateRoot
	Code         string
	Name         string
	DefaultUomID uuid.UUID
	Producible   bool
	CostPrice    decimal.Decimal
}

// NewProduct creates a new product
func NewProduct(tenantID uuid.UUID, code, name string, defaultUomID uuid.UUID) (*Product, error) {
	if err := validateProductCode(code); err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Product name cannot be empty")
	}
	if len(name) > 200 {
		return nil, shared.NewDomainError("INVALID_NAME", "Product name cannot exceed 200 characters")
	}
	if defaultUomID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_UOM", "Product default unit is required")
	}

	product := &Product{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Code:                strings.ToUpper(strings.TrimSpace(code)),
		Name:                name,
		DefaultUomID:        defaultUomID,
		CostPrice:           decimal.Zero,
	}
	product.AddDomainEvent(NewProductCreatedEvent(product))

	return product, nil
}

// SetProducible marks whether the product can be manufactured
func (p *Product) SetProducible(producible bool) {
	p.Producible = producible
	p.IncrementVersion()
}

// SetCostPrice sets the unit cost price
func (p *Product) SetCostPrice(price decimal.Decimal) error {
	if price.IsNegative() {
		return shared.NewDomainError("INVALID_PRICE", "Cost price cannot be negative")
	}
	p.CostPrice = price
	p.IncrementVersion()
	return nil
}

// RecName returns the display name of the product
func (p *Product) RecName() string {
	if p.Code == "" {
		return p.Name
	}
	return fmt.Sprintf("[%s] %s", p.Code, p.Name)
}

func validateProductCode(code string) error {
	code = strings.TrimSpace(code)
	if len(code) > 50 {
		return shared.NewDomainError("INVALID_CODE", "Product code cannot exceed 50 characters")
	}
	for _, r := range code {
		if !isValidCodeChar(r) {
			return shared.NewDomainError("INVALID_CODE", "Product code can only contain letters, numbers, underscores, and hyphens")
		}
	}
	return nil
}

func isValidCodeChar(r rune) bool {
	return (r >= 'a' && r <= 'z') ||
		(r >= 'A' && r <= 'Z') ||
		(r >= '0' && r <= '9') ||
		r == '_' || r == '-'
}
