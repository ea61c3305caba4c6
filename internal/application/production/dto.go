package production

import (
	"time"

	"github.com/erp/manufacturing/internal/domain/production"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BomLineRequest describes a BOM input or output
type BomLineRequest struct {
	ProductID uuid.UUID       `json:"product_id" binding:"required"`
	Quantity  decimal.Decimal `json:"quantity"`
	UomID     uuid.UUID       `json:"uom_id" binding:"required"`
}

// CreateBomRequest represents a request to create a bill of materials
type CreateBomRequest struct {
	Name    string           `json:"name" binding:"required,min=1,max=200"`
	Inputs  []BomLineRequest `json:"inputs" binding:"dive"`
	Outputs []BomLineRequest `json:"outputs" binding:"dive"`
}

// RouteOperationRequest describes a route operation
type RouteOperationRequest struct {
	Name               string          `json:"name" binding:"required,min=1,max=200"`
	WorkCenterCategory string          `json:"work_center_category" binding:"max=100"`
	Time               decimal.Decimal `json:"time"`
	TimeUom            string          `json:"time_uom" binding:"max=10"`
	Quantity           decimal.Decimal `json:"quantity"`
}

// CreateRouteRequest represents a request to create a route
type CreateRouteRequest struct {
	Name       string                  `json:"name" binding:"required,min=1,max=200"`
	UomID      uuid.UUID               `json:"uom_id" binding:"required"`
	Operations []RouteOperationRequest `json:"operations" binding:"dive"`
}

// ProcessListFilter represents filter options for the process list
type ProcessListFilter struct {
	Search   string `form:"search"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// BomLineResponse represents a BOM line in API responses
type BomLineResponse struct {
	ID        uuid.UUID       `json:"id"`
	ProductID uuid.UUID       `json:"product_id"`
	Quantity  decimal.Decimal `json:"quantity"`
	UomID     uuid.UUID       `json:"uom_id"`
	StepID    *uuid.UUID      `json:"step_id,omitempty"`
}

// BomResponse represents a bill of materials in API responses
type BomResponse struct {
	ID        uuid.UUID         `json:"id"`
	Name      string            `json:"name"`
	Inputs    []BomLineResponse `json:"inputs"`
	Outputs   []BomLineResponse `json:"outputs"`
	CreatedAt time.Time         `json:"created_at"`
}

// RouteOperationResponse represents a route operation in API responses
type RouteOperationResponse struct {
	ID                 uuid.UUID       `json:"id"`
	Sequence           int             `json:"sequence"`
	Name               string          `json:"name"`
	WorkCenterCategory string          `json:"work_center_category"`
	Time               decimal.Decimal `json:"time"`
	TimeUom            string          `json:"time_uom"`
	Quantity           decimal.Decimal `json:"quantity"`
	StepID             *uuid.UUID      `json:"step_id,omitempty"`
}

// RouteResponse represents a route in API responses
type RouteResponse struct {
	ID         uuid.UUID                `json:"id"`
	Name       string                   `json:"name"`
	UomID      uuid.UUID                `json:"uom_id"`
	Operations []RouteOperationResponse `json:"operations"`
	CreatedAt  time.Time                `json:"created_at"`
}

// StepResponse represents a process step in API responses
type StepResponse struct {
	ID         uuid.UUID   `json:"id"`
	Name       string      `json:"name"`
	Sequence   int         `json:"sequence"`
	Inputs     []uuid.UUID `json:"inputs"`
	Outputs    []uuid.UUID `json:"outputs"`
	Operations []uuid.UUID `json:"operations"`
}

// ProcessResponse represents a process in API responses
type ProcessResponse struct {
	ID        uuid.UUID      `json:"id"`
	TenantID  uuid.UUID      `json:"tenant_id"`
	Name      string         `json:"name"`
	UomID     uuid.UUID      `json:"uom_id"`
	BomID     uuid.UUID      `json:"bom_id"`
	RouteID   uuid.UUID      `json:"route_id"`
	Active    bool           `json:"active"`
	Steps     []StepResponse `json:"steps"`
	CreatedAt time.Time      `json:"created_at"`
	Version   int            `json:"version"`
}

// ToBomResponse converts a domain Bom to BomResponse
func ToBomResponse(b *production.Bom) BomResponse {
	return BomResponse{
		ID:        b.ID,
		Name:      b.Name,
		Inputs:    toBomLineResponses(b.Inputs),
		Outputs:   toBomLineResponses(b.Outputs),
		CreatedAt: b.CreatedAt,
	}
}

func toBomLineResponses(lines []production.BomLine) []BomLineResponse {
	responses := make([]BomLineResponse, len(lines))
	for i, l := range lines {
		responses[i] = BomLineResponse{
			ID:        l.ID,
			ProductID: l.ProductID,
			Quantity:  l.Quantity,
			UomID:     l.UomID,
			StepID:    l.StepID,
		}
	}
	return responses
}

// ToRouteResponse converts a domain Route to RouteResponse
func ToRouteResponse(r *production.Route) RouteResponse {
	ops := make([]RouteOperationResponse, len(r.Operations))
	for i, op := range r.Operations {
		ops[i] = RouteOperationResponse{
			ID:                 op.ID,
			Sequence:           op.Sequence,
			Name:               op.Name,
			WorkCenterCategory: op.WorkCenterCategory,
			Time:               op.Time,
			TimeUom:            op.TimeUom,
			Quantity:           op.Quantity,
			StepID:             op.StepID,
		}
	}
	return RouteResponse{
		ID:         r.ID,
		Name:       r.Name,
		UomID:      r.UomID,
		Operations: ops,
		CreatedAt:  r.CreatedAt,
	}
}

// ToProcessResponse converts a domain Process to ProcessResponse
func ToProcessResponse(p *production.Process) ProcessResponse {
	steps := make([]StepResponse, len(p.Steps))
	for i, s := range p.Steps {
		steps[i] = StepResponse{
			ID:         s.ID,
			Name:       s.Name,
			Sequence:   s.Sequence,
			Inputs:     s.Inputs,
			Outputs:    s.Outputs,
			Operations: s.Operations,
		}
	}
	return ProcessResponse{
		ID:        p.ID,
		TenantID:  p.TenantID,
		Name:      p.Name,
		UomID:     p.UomID,
		BomID:     p.BomID,
		RouteID:   p.RouteID,
		Active:    p.Active,
		Steps:     steps,
		CreatedAt: p.CreatedAt,
		Version:   p.Version,
	}
}
