package handler

import (
	"context"

	catalogapp "github.com/erp/manufacturing/internal/application/catalog"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// CatalogService is the catalog use case surface used by CatalogHandler
type CatalogService interface {
	CreateUom(ctx context.Context, tenantID uuid.UUID, req catalogapp.CreateUomRequest) (*catalogapp.UomResponse, error)
	ListUoms(ctx context.Context, tenantID uuid.UUID) ([]catalogapp.UomResponse, error)
	CreateProduct(ctx context.Context, tenantID uuid.UUID, req catalogapp.CreateProductRequest) (*catalogapp.ProductResponse, error)
	GetProduct(ctx context.Context, tenantID, productID uuid.UUID) (*catalogapp.ProductResponse, error)
	ListProducts(ctx context.Context, tenantID uuid.UUID, filter catalogapp.ProductListFilter) ([]catalogapp.ProductResponse, int64, error)
	AddProductBom(ctx context.Context, tenantID, productID uuid.UUID, req catalogapp.AddProductBomRequest) (*catalogapp.ProductBomResponse, error)
	ListProductBoms(ctx context.Context, tenantID, productID uuid.UUID) ([]catalogapp.ProductBomResponse, error)
}

// CatalogHandler handles units of measure, products and product BOMs
type CatalogHandler struct {
	BaseHandler
	service CatalogService
}

// NewCatalogHandler creates a new CatalogHandler
func NewCatalogHandler(service CatalogService) *CatalogHandler {
	return &CatalogHandler{service: service}
}

// CreateUom godoc
// @Summary      Create a unit of measure
// @Tags         catalog
// @Accept       json
// @Produce      json
// @Param        request body catalogapp.CreateUomRequest true "Unit"
// @Success      201 {object} APIResponse[catalogapp.UomResponse]
// @Failure      400 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /catalog/uoms [post]
func (h *CatalogHandler) CreateUom(c *gin.Context) {
	var req catalogapp.CreateUomRequest
	if !h.bindJSON(c, &req) {
		return
	}
	uom, err := h.service.CreateUom(c.Request.Context(), getTenantID(c), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, uom)
}

// ListUoms godoc
// @Summary      List units of measure
// @Tags         catalog
// @Produce      json
// @Success      200 {object} APIResponse[[]catalogapp.UomResponse]
// @Security     BearerAuth
// @Router       /catalog/uoms [get]
func (h *CatalogHandler) ListUoms(c *gin.Context) {
	uoms, err := h.service.ListUoms(c.Request.Context(), getTenantID(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, uoms)
}

// CreateProduct godoc
// @Summary      Create a product
// @Tags         catalog
// @Accept       json
// @Produce      json
// @Param        request body catalogapp.CreateProductRequest true "Product"
// @Success      201 {object} APIResponse[catalogapp.ProductResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /catalog/products [post]
func (h *CatalogHandler) CreateProduct(c *gin.Context) {
	var req catalogapp.CreateProductRequest
	if !h.bindJSON(c, &req) {
		return
	}
	product, err := h.service.CreateProduct(c.Request.Context(), getTenantID(c), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, product)
}

// GetProduct godoc
// @Summary      Get a product
// @Tags         catalog
// @Produce      json
// @Param        id path string true "Product ID"
// @Success      200 {object} APIResponse[catalogapp.ProductResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /catalog/products/{id} [get]
func (h *CatalogHandler) GetProduct(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	product, err := h.service.GetProduct(c.Request.Context(), getTenantID(c), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, product)
}

// ListProducts godoc
// @Summary      List products
// @Tags         catalog
// @Produce      json
// @Param        search query string false "Code or name"
// @Param        page query int false "Page" default(1)
// @Param        page_size query int false "Page size" default(20)
// @Success      200 {object} APIResponse[[]catalogapp.ProductResponse]
// @Security     BearerAuth
// @Router       /catalog/products [get]
func (h *CatalogHandler) ListProducts(c *gin.Context) {
	var filter catalogapp.ProductListFilter
	if !h.bindQuery(c, &filter) {
		return
	}
	products, total, err := h.service.ListProducts(c.Request.Context(), getTenantID(c), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, products, total, filter.Page, filter.PageSize)
}

// AddProductBom godoc
// @Summary      Associate a BOM with a product
// @Tags         catalog
// @Accept       json
// @Produce      json
// @Param        id path string true "Product ID"
// @Param        request body catalogapp.AddProductBomRequest true "Association"
// @Success      201 {object} APIResponse[catalogapp.ProductBomResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /catalog/products/{id}/boms [post]
func (h *CatalogHandler) AddProductBom(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	var req catalogapp.AddProductBomRequest
	if !h.bindJSON(c, &req) {
		return
	}
	pb, err := h.service.AddProductBom(c.Request.Context(), getTenantID(c), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, pb)
}

// ListProductBoms godoc
// @Summary      List the BOMs of a product
// @Tags         catalog
// @Produce      json
// @Param        id path string true "Product ID"
// @Success      200 {object} APIResponse[[]catalogapp.ProductBomResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /catalog/products/{id}/boms [get]
func (h *CatalogHandler) ListProductBoms(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	boms, err := h.service.ListProductBoms(c.Request.Context(), getTenantID(c), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, boms)
}
