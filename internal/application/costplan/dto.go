package costplan

import (
	"time"

	"github.com/erp/manufacturing/internal/domain/costplan"
	"github.com/erp/manufacturing/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProductLineRequest describes a material line, with optional child lines
type ProductLineRequest struct {
	ProductID uuid.UUID            `json:"product_id" binding:"required"`
	Name      string               `json:"name" binding:"max=200"`
	Quantity  decimal.Decimal      `json:"quantity"`
	UomID     uuid.UUID            `json:"uom_id" binding:"required"`
	CostPrice *decimal.Decimal     `json:"cost_price"`
	Children  []ProductLineRequest `json:"children" binding:"dive"`
}

// OperationLineRequest describes an operation line
type OperationLineRequest struct {
	Name               string          `json:"name" binding:"required,min=1,max=200"`
	WorkCenterCategory string          `json:"work_center_category" binding:"max=100"`
	Time               decimal.Decimal `json:"time"`
	TimeUom            string          `json:"time_uom" binding:"max=10"`
	Quantity           decimal.Decimal `json:"quantity"`
	CostPerHour        decimal.Decimal `json:"cost_per_hour"`
}

// CreatePlanRequest represents a request to create a cost plan
type CreatePlanRequest struct {
	Name       string                 `json:"name" binding:"max=200"`
	ProductID  *uuid.UUID             `json:"product_id"`
	Quantity   *decimal.Decimal       `json:"quantity"`
	BomID      *uuid.UUID             `json:"bom_id"`
	RouteID    *uuid.UUID             `json:"route_id"`
	Products   []ProductLineRequest   `json:"products" binding:"dive"`
	Operations []OperationLineRequest `json:"operations" binding:"dive"`
}

// UpdatePlanRequest represents a request to update a cost plan.
// Nil fields are left unchanged; non-nil line lists replace the current lines.
// ClearProcess unlinks the process and cannot be combined with ProcessID.
type UpdatePlanRequest struct {
	Name         *string                 `json:"name" binding:"omitempty,max=200"`
	ProductID    *uuid.UUID              `json:"product_id"`
	Quantity     *decimal.Decimal        `json:"quantity"`
	BomID        *uuid.UUID              `json:"bom_id"`
	RouteID      *uuid.UUID              `json:"route_id"`
	ProcessID    *uuid.UUID              `json:"process_id"`
	ClearProcess bool                    `json:"clear_process"`
	Products     *[]ProductLineRequest   `json:"products"`
	Operations   *[]OperationLineRequest `json:"operations"`
}

// CopyPlansRequest represents a request to duplicate cost plans
type CopyPlansRequest struct {
	IDs []uuid.UUID `json:"ids" binding:"required,min=1,max=100"`
}

// CreateProcessRequest represents a request to convert a cost plan into a process
type CreateProcessRequest struct {
	Name string `json:"name" binding:"required,min=1,max=200"`
}

// PlanListFilter represents filter options for the cost plan list
type PlanListFilter struct {
	Search    string `form:"search"`
	ProductID string `form:"product_id" binding:"omitempty,uuid"`
	State     string `form:"state" binding:"omitempty,oneof=draft computed done"`
	Page      int    `form:"page" binding:"omitempty,min=1"`
	PageSize  int    `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// PlanBomLineDTO is a derived BOM line of a cost plan
type PlanBomLineDTO struct {
	ID        uuid.UUID  `json:"id"`
	ProductID uuid.UUID  `json:"product_id"`
	BomID     *uuid.UUID `json:"bom_id"`
}

// PlanProductLineResponse represents a material line in API responses
type PlanProductLineResponse struct {
	ID        uuid.UUID       `json:"id"`
	ProductID uuid.UUID       `json:"product_id"`
	Name      string          `json:"name"`
	Quantity  decimal.Decimal `json:"quantity"`
	UomID     uuid.UUID       `json:"uom_id"`
	CostPrice decimal.Decimal `json:"cost_price"`
	ParentID  *uuid.UUID      `json:"parent_id,omitempty"`
	Sequence  int             `json:"sequence"`
}

// PlanOperationLineResponse represents an operation line in API responses
type PlanOperationLineResponse struct {
	ID                 uuid.UUID       `json:"id"`
	Name               string          `json:"name"`
	WorkCenterCategory string          `json:"work_center_category"`
	Time               decimal.Decimal `json:"time"`
	TimeUom            string          `json:"time_uom"`
	Quantity           decimal.Decimal `json:"quantity"`
	CostPerHour        decimal.Decimal `json:"cost_per_hour"`
	Sequence           int             `json:"sequence"`
}

// PlanResponse represents a cost plan in API responses
type PlanResponse struct {
	ID            uuid.UUID                      `json:"id"`
	TenantID      uuid.UUID                      `json:"tenant_id"`
	Number        string                         `json:"number"`
	Name          string                         `json:"name"`
	RecName       string                         `json:"rec_name"`
	ProductID     *uuid.UUID                     `json:"product_id"`
	Quantity      decimal.Decimal                `json:"quantity"`
	UomID         *uuid.UUID                     `json:"uom_id"`
	BomID         *uuid.UUID                     `json:"bom_id"`
	RouteID       *uuid.UUID                     `json:"route_id"`
	ProcessID     *uuid.UUID                     `json:"process_id"`
	State         string                         `json:"state"`
	Products      []PlanProductLineResponse      `json:"products"`
	Operations    []PlanOperationLineResponse    `json:"operations"`
	Boms          []PlanBomLineDTO               `json:"boms"`
	MaterialCost  decimal.Decimal                `json:"material_cost"`
	OperationCost decimal.Decimal                `json:"operation_cost"`
	TotalCost     decimal.Decimal                `json:"total_cost"`
	UnitCost      decimal.Decimal                `json:"unit_cost"`
	FieldStates   map[string]costplan.FieldState `json:"field_states"`
	CreatedAt     time.Time                      `json:"created_at"`
	UpdatedAt     time.Time                      `json:"updated_at"`
	Version       int                            `json:"version"`
}

// PlanListItemResponse represents a cost plan in list responses
type PlanListItemResponse struct {
	ID        uuid.UUID       `json:"id"`
	Number    string          `json:"number"`
	Name      string          `json:"name"`
	ProductID *uuid.UUID      `json:"product_id"`
	ProcessID *uuid.UUID      `json:"process_id"`
	State     string          `json:"state"`
	TotalCost decimal.Decimal `json:"total_cost"`
	CreatedAt time.Time       `json:"created_at"`
}

// PlanForm is the editable state of a cost plan sent to the on-change endpoints.
// ID is set when the form edits a stored plan.
type PlanForm struct {
	ID        *uuid.UUID       `json:"id"`
	ProductID *uuid.UUID       `json:"product_id"`
	Quantity  decimal.Decimal  `json:"quantity"`
	UomID     *uuid.UUID       `json:"uom_id"`
	BomID     *uuid.UUID       `json:"bom_id"`
	RouteID   *uuid.UUID       `json:"route_id"`
	ProcessID *uuid.UUID       `json:"process_id"`
	Boms      []PlanBomLineDTO `json:"boms"`
}

// PlanFormResponse is the recomputed form state
type PlanFormResponse struct {
	PlanForm
	FieldStates     map[string]costplan.FieldState `json:"field_states"`
	DeletedBomLines int64                          `json:"deleted_bom_lines"`
}

// toPlan builds a transient plan carrying the form state
func (f PlanForm) toPlan(tenantID uuid.UUID) *costplan.Plan {
	plan := &costplan.Plan{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		ProductID:           f.ProductID,
		Quantity:            f.Quantity,
		UomID:               f.UomID,
		BomID:               f.BomID,
		RouteID:             f.RouteID,
		ProcessID:           f.ProcessID,
		State:               costplan.PlanStateDraft,
	}
	if f.ID != nil {
		plan.ID = *f.ID
	}
	for _, b := range f.Boms {
		id := b.ID
		if id == uuid.Nil {
			id = uuid.New()
		}
		plan.Boms = append(plan.Boms, costplan.PlanBomLine{ID: id, ProductID: b.ProductID, BomID: b.BomID})
	}
	return plan
}

// ToPlanFormResponse converts a plan back into form state
func ToPlanFormResponse(formID *uuid.UUID, plan *costplan.Plan, deleted int64) PlanFormResponse {
	return PlanFormResponse{
		PlanForm: PlanForm{
			ID:        formID,
			ProductID: plan.ProductID,
			Quantity:  plan.Quantity,
			UomID:     plan.UomID,
			BomID:     plan.BomID,
			RouteID:   plan.RouteID,
			ProcessID: plan.ProcessID,
			Boms:      toBomLineDTOs(plan.Boms),
		},
		FieldStates:     plan.FieldStates(),
		DeletedBomLines: deleted,
	}
}

// ToPlanResponse converts a domain Plan to PlanResponse
func ToPlanResponse(p *costplan.Plan) PlanResponse {
	products := make([]PlanProductLineResponse, len(p.Products))
	for i, l := range p.Products {
		products[i] = PlanProductLineResponse{
			ID:        l.ID,
			ProductID: l.ProductID,
			Name:      l.Name,
			Quantity:  l.Quantity,
			UomID:     l.UomID,
			CostPrice: l.CostPrice,
			ParentID:  l.ParentID,
			Sequence:  l.Sequence,
		}
	}
	operations := make([]PlanOperationLineResponse, len(p.Operations))
	for i, l := range p.Operations {
		operations[i] = PlanOperationLineResponse{
			ID:                 l.ID,
			Name:               l.Name,
			WorkCenterCategory: l.WorkCenterCategory,
			Time:               l.Time,
			TimeUom:            l.TimeUom,
			Quantity:           l.Quantity,
			CostPerHour:        l.CostPerHour,
			Sequence:           l.Sequence,
		}
	}
	return PlanResponse{
		ID:            p.ID,
		TenantID:      p.TenantID,
		Number:        p.Number,
		Name:          p.Name,
		RecName:       p.RecName(),
		ProductID:     p.ProductID,
		Quantity:      p.Quantity,
		UomID:         p.UomID,
		BomID:         p.BomID,
		RouteID:       p.RouteID,
		ProcessID:     p.ProcessID,
		State:         string(p.State),
		Products:      products,
		Operations:    operations,
		Boms:          toBomLineDTOs(p.Boms),
		MaterialCost:  p.MaterialCost,
		OperationCost: p.OperationCost,
		TotalCost:     p.TotalCost,
		UnitCost:      p.UnitCost,
		FieldStates:   p.FieldStates(),
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
		Version:       p.Version,
	}
}

// ToPlanListItemResponse converts a domain Plan to PlanListItemResponse
func ToPlanListItemResponse(p *costplan.Plan) PlanListItemResponse {
	return PlanListItemResponse{
		ID:        p.ID,
		Number:    p.Number,
		Name:      p.Name,
		ProductID: p.ProductID,
		ProcessID: p.ProcessID,
		State:     string(p.State),
		TotalCost: p.TotalCost,
		CreatedAt: p.CreatedAt,
	}
}

func toBomLineDTOs(lines []costplan.PlanBomLine) []PlanBomLineDTO {
	dtos := make([]PlanBomLineDTO, len(lines))
	for i, l := range lines {
		dtos[i] = PlanBomLineDTO{ID: l.ID, ProductID: l.ProductID, BomID: l.BomID}
	}
	return dtos
}
