package production

import (
	"github.com/erp/manufacturing/internal/domain/shared"
	"github.com/google/uuid"
)

// Aggregate type constant
const AggregateTypeProcess = "Process"

// Event type constants
const (
	EventTypeProcessCreated = "ProcessCreated"
)

// ProcessCreatedEvent is published when a new process is created
type ProcessCreatedEvent struct {
	shared.BaseDomainEvent
	ProcessID uuid.UUID `json:"process_id"`
	Name      string    `json:"name"`
	UomID     uuid.UUID `json:"uom_id"`
	BomID     uuid.UUID `json:"bom_id"`
	RouteID   uuid.UUID `json:"route_id"`
}

// NewProcessCreatedEvent creates a new ProcessCreatedEvent
func NewProcessCreatedEvent(p *Process) *ProcessCreatedEvent {
	return &ProcessCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeProcessCreated, AggregateTypeProcess, p.ID, p.TenantID),
		ProcessID:       p.ID,
		Name:            p.Name,
		UomID:           p.UomID,
		BomID:           p.BomID,
		RouteID:         p.RouteID,
	}
}
