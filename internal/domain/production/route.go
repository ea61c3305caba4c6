package production

import (
	"strings"

	"github.com/erp/manufacturing/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RouteOperation is one operation of a route
type RouteOperation struct {
	ID                 uuid.UUID
	RouteID            uuid.UUID
	Sequence           int
	Name               string
	WorkCenterCategory string
	Time               decimal.Decimal
	TimeUom            string
	Quantity           decimal.Decimal
	StepID             *uuid.UUID
}

// Route is an ordered list of manufacturing operations
type Route struct {
	shared.TenantAggregateRoot
	Name       string
	UomID      uuid.UUID
	Operations []RouteOperation
}

// OperationSpec describes an operation to append to a route
type OperationSpec struct {
	Name               string
	WorkCenterCategory string
	Time               decimal.Decimal
	TimeUom            string
	Quantity           decimal.Decimal
}

// NewRoute creates an empty route
func NewRoute(tenantID uuid.UUID, name string, uomID uuid.UUID) (*Route, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Route name cannot be empty")
	}
	if uomID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_UOM", "Route unit is required")
	}
	return &Route{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Name:                name,
		UomID:               uomID,
	}, nil
}

// AddOperation appends an operation with the next sequence
func (r *Route) AddOperation(spec OperationSpec) (*RouteOperation, error) {
	if strings.TrimSpace(spec.Name) == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Operation name cannot be empty")
	}
	if spec.Time.IsNegative() {
		return nil, shared.NewDomainError("INVALID_TIME", "Operation time cannot be negative")
	}
	quantity := spec.Quantity
	if quantity.IsZero() {
		quantity = decimal.NewFromInt(1)
	}
	timeUom := spec.TimeUom
	if timeUom == "" {
		timeUom = "h"
	}

	op := RouteOperation{
		ID:                 uuid.New(),
		RouteID:            r.ID,
		Sequence:           (len(r.Operations) + 1) * 10,
		Name:               strings.TrimSpace(spec.Name),
		WorkCenterCategory: spec.WorkCenterCategory,
		Time:               spec.Time,
		TimeUom:            timeUom,
		Quantity:           quantity,
	}
	r.Operations = append(r.Operations, op)
	return &r.Operations[len(r.Operations)-1], nil
}

// OperationIDs returns the ids of the operations in order
func (r *Route) OperationIDs() []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(r.Operations))
	for _, op := range r.Operations {
		ids = append(ids, op.ID)
	}
	return ids
}

// AssignStep marks every operation of the route as owned by the step
func (r *Route) AssignStep(stepID uuid.UUID) {
	for i := range r.Operations {
		id := stepID
		r.Operations[i].StepID = &id
	}
	r.IncrementVersion()
}
