package handler

import (
	"context"

	appcostplan "github.com/erp/manufacturing/internal/application/costplan"
	appproduction "github.com/erp/manufacturing/internal/application/production"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// CostPlanService is the cost plan use case surface used by CostPlanHandler
type CostPlanService interface {
	Create(ctx context.Context, tenantID uuid.UUID, req appcostplan.CreatePlanRequest) (*appcostplan.PlanResponse, error)
	GetByID(ctx context.Context, tenantID, planID uuid.UUID) (*appcostplan.PlanResponse, error)
	List(ctx context.Context, tenantID uuid.UUID, filter appcostplan.PlanListFilter) ([]appcostplan.PlanListItemResponse, int64, error)
	Update(ctx context.Context, tenantID, planID uuid.UUID, req appcostplan.UpdatePlanRequest) (*appcostplan.PlanResponse, error)
	Delete(ctx context.Context, tenantID, planID uuid.UUID) error
	Compute(ctx context.Context, tenantID, planID uuid.UUID) (*appcostplan.PlanResponse, error)
	Copy(ctx context.Context, tenantID uuid.UUID, planIDs []uuid.UUID) ([]appcostplan.PlanResponse, error)
	OnChangeProduct(ctx context.Context, tenantID uuid.UUID, form appcostplan.PlanForm) (*appcostplan.PlanFormResponse, error)
	OnChangeProcess(ctx context.Context, tenantID uuid.UUID, form appcostplan.PlanForm) (*appcostplan.PlanFormResponse, error)
	CreateProcess(ctx context.Context, tenantID, userID, planID uuid.UUID, name string) (*appproduction.ProcessResponse, error)
}

// CostPlanHandler handles cost plans and their conversion into processes
type CostPlanHandler struct {
	BaseHandler
	service CostPlanService
}

// NewCostPlanHandler creates a new CostPlanHandler
func NewCostPlanHandler(service CostPlanService) *CostPlanHandler {
	return &CostPlanHandler{service: service}
}

// Create godoc
// @Summary      Create a cost plan
// @Tags         cost-plans
// @Accept       json
// @Produce      json
// @Param        request body appcostplan.CreatePlanRequest true "Cost plan"
// @Success      201 {object} APIResponse[appcostplan.PlanResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /cost-plans [post]
func (h *CostPlanHandler) Create(c *gin.Context) {
	var req appcostplan.CreatePlanRequest
	if !h.bindJSON(c, &req) {
		return
	}
	plan, err := h.service.Create(c.Request.Context(), getTenantID(c), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, plan)
}

// GetByID godoc
// @Summary      Get a cost plan with its lines
// @Tags         cost-plans
// @Produce      json
// @Param        id path string true "Cost plan ID"
// @Success      200 {object} APIResponse[appcostplan.PlanResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /cost-plans/{id} [get]
func (h *CostPlanHandler) GetByID(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	plan, err := h.service.GetByID(c.Request.Context(), getTenantID(c), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, plan)
}

// List godoc
// @Summary      List cost plans
// @Tags         cost-plans
// @Produce      json
// @Param        search query string false "Number or name"
// @Param        product_id query string false "Product ID"
// @Param        state query string false "State" Enums(draft, computed, done)
// @Param        page query int false "Page" default(1)
// @Param        page_size query int false "Page size" default(20)
// @Success      200 {object} APIResponse[[]appcostplan.PlanListItemResponse]
// @Failure      400 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /cost-plans [get]
func (h *CostPlanHandler) List(c *gin.Context) {
	var filter appcostplan.PlanListFilter
	if !h.bindQuery(c, &filter) {
		return
	}
	plans, total, err := h.service.List(c.Request.Context(), getTenantID(c), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, plans, total, filter.Page, filter.PageSize)
}

// Update godoc
// @Summary      Update a cost plan
// @Tags         cost-plans
// @Accept       json
// @Produce      json
// @Param        id path string true "Cost plan ID"
// @Param        request body appcostplan.UpdatePlanRequest true "Changes"
// @Success      200 {object} APIResponse[appcostplan.PlanResponse]
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /cost-plans/{id} [put]
func (h *CostPlanHandler) Update(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	var req appcostplan.UpdatePlanRequest
	if !h.bindJSON(c, &req) {
		return
	}
	plan, err := h.service.Update(c.Request.Context(), getTenantID(c), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, plan)
}

// Delete godoc
// @Summary      Delete a cost plan
// @Tags         cost-plans
// @Param        id path string true "Cost plan ID"
// @Success      204
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /cost-plans/{id} [delete]
func (h *CostPlanHandler) Delete(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	if err := h.service.Delete(c.Request.Context(), getTenantID(c), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// Compute godoc
// @Summary      Recompute the cost of a plan
// @Tags         cost-plans
// @Produce      json
// @Param        id path string true "Cost plan ID"
// @Success      200 {object} APIResponse[appcostplan.PlanResponse]
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /cost-plans/{id}/compute [post]
func (h *CostPlanHandler) Compute(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	plan, err := h.service.Compute(c.Request.Context(), getTenantID(c), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, plan)
}

// Copy godoc
// @Summary      Duplicate cost plans
// @Description  The copies get new numbers and never keep the source process.
// @Tags         cost-plans
// @Accept       json
// @Produce      json
// @Param        request body appcostplan.CopyPlansRequest true "Plans to copy"
// @Success      201 {object} APIResponse[[]appcostplan.PlanResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /cost-plans/copy [post]
func (h *CostPlanHandler) Copy(c *gin.Context) {
	var req appcostplan.CopyPlansRequest
	if !h.bindJSON(c, &req) {
		return
	}
	plans, err := h.service.Copy(c.Request.Context(), getTenantID(c), req.IDs)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, plans)
}

// OnChangeProduct godoc
// @Summary      Recompute the form after the product changed
// @Description  Clears the process field when the product changes.
// @Tags         cost-plans
// @Accept       json
// @Produce      json
// @Param        request body appcostplan.PlanForm true "Form state"
// @Success      200 {object} APIResponse[appcostplan.PlanFormResponse]
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /cost-plans/on-change/product [post]
func (h *CostPlanHandler) OnChangeProduct(c *gin.Context) {
	var form appcostplan.PlanForm
	if !h.bindJSON(c, &form) {
		return
	}
	resp, err := h.service.OnChangeProduct(c.Request.Context(), getTenantID(c), form)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// OnChangeProcess godoc
// @Summary      Recompute the form after the process changed
// @Description  Copies the process BOM and route into the plan and rebuilds the derived BOM lines.
// @Tags         cost-plans
// @Accept       json
// @Produce      json
// @Param        request body appcostplan.PlanForm true "Form state"
// @Success      200 {object} APIResponse[appcostplan.PlanFormResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /cost-plans/on-change/process [post]
func (h *CostPlanHandler) OnChangeProcess(c *gin.Context) {
	var form appcostplan.PlanForm
	if !h.bindJSON(c, &form) {
		return
	}
	resp, err := h.service.OnChangeProcess(c.Request.Context(), getTenantID(c), form)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// CreateProcess godoc
// @Summary      Convert a cost plan into a production process
// @Description  Returns 409 with a warning_key when the plan already has a process.
// @Description  Acknowledge the key through POST /warnings and retry to create another one.
// @Tags         cost-plans
// @Accept       json
// @Produce      json
// @Param        id path string true "Cost plan ID"
// @Param        request body appcostplan.CreateProcessRequest true "Process name"
// @Success      201 {object} APIResponse[appproduction.ProcessResponse]
// @Failure      404 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /cost-plans/{id}/create-process [post]
func (h *CostPlanHandler) CreateProcess(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	var req appcostplan.CreateProcessRequest
	if !h.bindJSON(c, &req) {
		return
	}
	process, err := h.service.CreateProcess(c.Request.Context(), getTenantID(c), getUserID(c), id, req.Name)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, process)
}
