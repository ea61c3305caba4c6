package production

import (
	"strings"

	"github.com/erp/manufacturing/internal/domain/shared"
	"github.com/google/uuid"
)

// Step is one stage of a process holding the lines it consumes, produces and performs
type Step struct {
	ID         uuid.UUID
	ProcessID  uuid.UUID
	Name       string
	Sequence   int
	Inputs     []uuid.UUID
	Outputs    []uuid.UUID
	Operations []uuid.UUID
}

// Process combines one BOM and one route, broken into steps
type Process struct {
	shared.TenantAggregateRoot
	Name    string
	UomID   uuid.UUID
	BomID   uuid.UUID
	RouteID uuid.UUID
	Active  bool
	Steps   []Step
}

// NewProcess creates a new active process
func NewProcess(tenantID uuid.UUID, name string, uomID, bomID, routeID uuid.UUID) (*Process, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Process name cannot be empty")
	}
	if uomID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_UOM", "Process unit is required")
	}
	if bomID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_BOM", "Process BOM is required")
	}
	if routeID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ROUTE", "Process route is required")
	}

	process := &Process{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Name:                name,
		UomID:               uomID,
		BomID:               bomID,
		RouteID:             routeID,
		Active:              true,
	}
	process.AddDomainEvent(NewProcessCreatedEvent(process))

	return process, nil
}

// AddStep appends a step populated with the lines of bom and route.
// The lines are marked as owned by the new step.
func (p *Process) AddStep(name string, bom *Bom, route *Route) (*Step, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Step name cannot be empty")
	}
	if bom == nil || bom.ID != p.BomID {
		return nil, shared.NewDomainError("INVALID_BOM", "Step BOM must be the process BOM")
	}
	if route == nil || route.ID != p.RouteID {
		return nil, shared.NewDomainError("INVALID_ROUTE", "Step route must be the process route")
	}

	step := Step{
		ID:         uuid.New(),
		ProcessID:  p.ID,
		Name:       name,
		Sequence:   (len(p.Steps) + 1) * 10,
		Inputs:     bom.InputIDs(),
		Outputs:    bom.OutputIDs(),
		Operations: route.OperationIDs(),
	}
	bom.AssignStep(step.ID)
	route.AssignStep(step.ID)

	p.Steps = append(p.Steps, step)
	p.IncrementVersion()

	return &p.Steps[len(p.Steps)-1], nil
}
