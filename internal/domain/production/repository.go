package production

import (
	"context"

	"github.com/erp/manufacturing/internal/domain/shared"
	"github.com/google/uuid"
)

// BomRepository defines the interface for bill of materials persistence
type BomRepository interface {
	// FindByIDForTenant loads a BOM with its lines
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Bom, error)

	// Save creates or updates a BOM and its lines
	Save(ctx context.Context, bom *Bom) error
}

// RouteRepository defines the interface for route persistence
type RouteRepository interface {
	// FindByIDForTenant loads a route with its operations
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Route, error)

	// Save creates or updates a route and its operations
	Save(ctx context.Context, route *Route) error
}

// ProcessRepository defines the interface for process persistence
type ProcessRepository interface {
	// FindByIDForTenant loads a process with its steps
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Process, error)

	// FindAllForTenant finds all processes for a tenant
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]Process, error)

	// CountForTenant counts processes for a tenant
	CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error)

	// Save creates or updates a process and its steps
	Save(ctx context.Context, process *Process) error
}
