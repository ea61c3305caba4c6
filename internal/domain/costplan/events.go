package costplan

import (
	"github.com/erp/manufacturing/internal/domain/shared"
	"github.com/google/uuid"
)

// Aggregate type constant
const AggregateTypePlan = "CostPlan"

// Event type constants
const (
	EventTypePlanCreated         = "CostPlanCreated"
	EventTypePlanProcessAssigned = "PlanProcessAssigned"
)

// PlanCreatedEvent is published when a cost plan is created
type PlanCreatedEvent struct {
	shared.BaseDomainEvent
	PlanID uuid.UUID `json:"plan_id"`
	Number string    `json:"number"`
}

// NewPlanCreatedEvent creates a new PlanCreatedEvent
func NewPlanCreatedEvent(p *Plan) *PlanCreatedEvent {
	return &PlanCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePlanCreated, AggregateTypePlan, p.ID, p.TenantID),
		PlanID:          p.ID,
		Number:          p.Number,
	}
}

// PlanProcessAssignedEvent is published when a process created from a plan is linked to it
type PlanProcessAssignedEvent struct {
	shared.BaseDomainEvent
	PlanID    uuid.UUID  `json:"plan_id"`
	Number    string     `json:"number"`
	ProcessID uuid.UUID  `json:"process_id"`
	ProductID *uuid.UUID `json:"product_id,omitempty"`
}

// NewPlanProcessAssignedEvent creates a new PlanProcessAssignedEvent
func NewPlanProcessAssignedEvent(p *Plan, processID uuid.UUID) *PlanProcessAssignedEvent {
	return &PlanProcessAssignedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePlanProcessAssigned, AggregateTypePlan, p.ID, p.TenantID),
		PlanID:          p.ID,
		Number:          p.Number,
		ProcessID:       processID,
		ProductID:       copyRef(p.ProductID),
	}
}
