package catalog

import (
	"strings"

	"github.com/erp/manufacturing/internal/domain/shared"
	"github.com/google/uuid"
)

// Uom is a unit of measure
type Uom struct {
	shared.TenantAggregateRoot
	Name     string
	Symbol   string
	Category string
}

// NewUom creates a new unit of measure
func NewUom(tenantID uuid.UUID, name, symbol, category string) (*Uom, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Unit name cannot be empty")
	}
	symbol = strings.TrimSpace(symbol)
	if symbol == "" {
		return nil, shared.NewDomainError("INVALID_SYMBOL", "Unit symbol cannot be empty")
	}
	if len(symbol) > 10 {
		return nil, shared.NewDomainError("INVALID_SYMBOL", "Unit symbol cannot exceed 10 characters")
	}

	return &Uom{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Name:                name,
		Symbol:              symbol,
		Category:            strings.TrimSpace(category),
	}, nil
}
