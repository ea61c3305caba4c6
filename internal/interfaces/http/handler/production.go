package handler

import (
	"context"

	appproduction "github.com/erp/manufacturing/internal/application/production"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ProductionService is the production use case surface used by ProductionHandler
type ProductionService interface {
	CreateBom(ctx context.Context, tenantID uuid.UUID, req appproduction.CreateBomRequest) (*appproduction.BomResponse, error)
	GetBom(ctx context.Context, tenantID, id uuid.UUID) (*appproduction.BomResponse, error)
	CreateRoute(ctx context.Context, tenantID uuid.UUID, req appproduction.CreateRouteRequest) (*appproduction.RouteResponse, error)
	GetRoute(ctx context.Context, tenantID, id uuid.UUID) (*appproduction.RouteResponse, error)
	GetProcess(ctx context.Context, tenantID, id uuid.UUID) (*appproduction.ProcessResponse, error)
	ListProcesses(ctx context.Context, tenantID uuid.UUID, filter appproduction.ProcessListFilter) ([]appproduction.ProcessResponse, int64, error)
}

// ProductionHandler handles BOMs, routes and processes
type ProductionHandler struct {
	BaseHandler
	service ProductionService
}

// NewProductionHandler creates a new ProductionHandler
func NewProductionHandler(service ProductionService) *ProductionHandler {
	return &ProductionHandler{service: service}
}

// CreateBom godoc
// @Summary      Create a bill of materials
// @Tags         production
// @Accept       json
// @Produce      json
// @Param        request body appproduction.CreateBomRequest true "BOM"
// @Success      201 {object} APIResponse[appproduction.BomResponse]
// @Failure      400 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /production/boms [post]
func (h *ProductionHandler) CreateBom(c *gin.Context) {
	var req appproduction.CreateBomRequest
	if !h.bindJSON(c, &req) {
		return
	}
	bom, err := h.service.CreateBom(c.Request.Context(), getTenantID(c), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, bom)
}

// GetBom godoc
// @Summary      Get a bill of materials
// @Tags         production
// @Produce      json
// @Param        id path string true "BOM ID"
// @Success      200 {object} APIResponse[appproduction.BomResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /production/boms/{id} [get]
func (h *ProductionHandler) GetBom(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	bom, err := h.service.GetBom(c.Request.Context(), getTenantID(c), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, bom)
}

// CreateRoute godoc
// @Summary      Create a route
// @Tags         production
// @Accept       json
// @Produce      json
// @Param        request body appproduction.CreateRouteRequest true "Route"
// @Success      201 {object} APIResponse[appproduction.RouteResponse]
// @Failure      400 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /production/routes [post]
func (h *ProductionHandler) CreateRoute(c *gin.Context) {
	var req appproduction.CreateRouteRequest
	if !h.bindJSON(c, &req) {
		return
	}
	route, err := h.service.CreateRoute(c.Request.Context(), getTenantID(c), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, route)
}

// GetRoute godoc
// @Summary      Get a route
// @Tags         production
// @Produce      json
// @Param        id path string true "Route ID"
// @Success      200 {object} APIResponse[appproduction.RouteResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /production/routes/{id} [get]
func (h *ProductionHandler) GetRoute(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	route, err := h.service.GetRoute(c.Request.Context(), getTenantID(c), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, route)
}

// GetProcess godoc
// @Summary      Get a production process with its steps
// @Tags         production
// @Produce      json
// @Param        id path string true "Process ID"
// @Success      200 {object} APIResponse[appproduction.ProcessResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /production/processes/{id} [get]
func (h *ProductionHandler) GetProcess(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	process, err := h.service.GetProcess(c.Request.Context(), getTenantID(c), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, process)
}

// ListProcesses godoc
// @Summary      List production processes
// @Tags         production
// @Produce      json
// @Param        search query string false "Name"
// @Param        page query int false "Page" default(1)
// @Param        page_size query int false "Page size" default(20)
// @Success      200 {object} APIResponse[[]appproduction.ProcessResponse]
// @Security     BearerAuth
// @Router       /production/processes [get]
func (h *ProductionHandler) ListProcesses(c *gin.Context) {
	var filter appproduction.ProcessListFilter
	if !h.bindQuery(c, &filter) {
		return
	}
	processes, total, err := h.service.ListProcesses(c.Request.Context(), getTenantID(c), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, processes, total, filter.Page, filter.PageSize)
}
