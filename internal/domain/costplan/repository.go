package costplan

import (
	"context"

	"github.com/erp/manufacturing/internal/domain/shared"
	"github.com/google/uuid"
)

// PlanRepository defines the interface for cost plan persistence
type PlanRepository interface {
	// FindByIDForTenant loads a plan with all its lines
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Plan, error)

	// FindAllForTenant lists plans. Supports Filters["product_id"] and Search on number or name.
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]Plan, error)

	// CountForTenant counts plans matching the filter
	CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error)

	// Save creates or updates a plan and replaces its lines
	Save(ctx context.Context, plan *Plan) error

	// DeleteForTenant deletes a plan and its lines
	DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error

	// DeleteBomLines deletes derived BOM lines of a plan by id
	DeleteBomLines(ctx context.Context, tenantID, planID uuid.UUID, ids []uuid.UUID) (int64, error)

	// GenerateNumber returns the next plan number, e.g. CP-2026-00001
	GenerateNumber(ctx context.Context, tenantID uuid.UUID) (string, error)
}
