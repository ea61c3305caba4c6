package catalog

import (
	"context"

	"github.com/erp/manufacturing/internal/domain/shared"
	"github.com/google/uuid"
)

// UomRepository defines the interface for unit of measure persistence
type UomRepository interface {
	// FindByIDForTenant finds a unit by ID within a tenant
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Uom, error)

	// FindAllForTenant finds all units for a tenant
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]Uom, error)

	// Save creates or updates a unit
	Save(ctx context.Context, uom *Uom) error
}

// ProductRepository defines the interface for product persistence
type ProductRepository interface {
	// FindByIDForTenant finds a product by ID within a tenant
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Product, error)

	// FindAllForTenant finds all products for a tenant
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]Product, error)

	// CountForTenant counts products for a tenant
	CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error)

	// ExistsByCode checks if a product with the given code exists in the tenant
	ExistsByCode(ctx context.Context, tenantID uuid.UUID, code string) (bool, error)

	// Save creates or updates a product
	Save(ctx context.Context, product *Product) error
}

// ProductBomRepository defines the interface for product-bom association persistence
type ProductBomRepository interface {
	// FindByID finds an association by ID within a tenant
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*ProductBom, error)

	// FindByProduct returns the product's associations ordered by sequence
	FindByProduct(ctx context.Context, tenantID, productID uuid.UUID) ([]ProductBom, error)

	// Save creates or updates an association
	Save(ctx context.Context, productBom *ProductBom) error
}
