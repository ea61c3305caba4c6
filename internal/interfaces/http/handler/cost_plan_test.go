package handler

import (
	"net/http"
	"testing"

	appcostplan "github.com/erp/manufacturing/internal/application/costplan"
	appproduction "github.com/erp/manufacturing/internal/application/production"
	"github.com/erp/manufacturing/internal/domain/shared"
	"github.com/erp/manufacturing/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func setupCostPlanEngine() (*gin.Engine, *MockCostPlanService) {
	svc := new(MockCostPlanService)
	h := NewCostPlanHandler(svc)
	engine := newTestEngine()
	plans := engine.Group("/api/v1/cost-plans")
	plans.POST("", h.Create)
	plans.GET("", h.List)
	plans.POST("/copy", h.Copy)
	plans.POST("/on-change/product", h.OnChangeProduct)
	plans.POST("/on-change/process", h.OnChangeProcess)
	plans.GET("/:id", h.GetByID)
	plans.PUT("/:id", h.Update)
	plans.DELETE("/:id", h.Delete)
	plans.POST("/:id/compute", h.Compute)
	plans.POST("/:id/create-process", h.CreateProcess)
	return engine, svc
}

func TestCostPlanHandler_Create(t *testing.T) {
	t.Run("created", func(t *testing.T) {
		engine, svc := setupCostPlanEngine()
		productID := uuid.New()
		qty := decimal.NewFromInt(10)
		req := appcostplan.CreatePlanRequest{Name: "Widget", ProductID: &productID, Quantity: &qty}
		svc.On("Create", mock.Anything, testTenantID, mock.MatchedBy(func(r appcostplan.CreatePlanRequest) bool {
			return r.Name == "Widget" && r.ProductID != nil && *r.ProductID == productID && r.Quantity.Equal(qty)
		})).Return(&appcostplan.PlanResponse{ID: uuid.New(), Number: "CP-2026-00001", Name: "Widget", State: "draft"}, nil)

		w := doRequest(t, engine, http.MethodPost, "/api/v1/cost-plans", req)
		require.Equal(t, http.StatusCreated, w.Code)

		var plan appcostplan.PlanResponse
		resp := decodeResponse(t, w, &plan)
		assert.True(t, resp.Success)
		assert.Equal(t, "CP-2026-00001", plan.Number)
		svc.AssertExpectations(t)
	})

	t.Run("invalid json", func(t *testing.T) {
		engine, svc := setupCostPlanEngine()

		w := doRequest(t, engine, http.MethodPost, "/api/v1/cost-plans", "{not json")
		assert.Equal(t, http.StatusBadRequest, w.Code)
		svc.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestCostPlanHandler_GetByID(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		engine, svc := setupCostPlanEngine()
		id := uuid.New()
		svc.On("GetByID", mock.Anything, testTenantID, id).
			Return(&appcostplan.PlanResponse{ID: id, Number: "CP-2026-00002"}, nil)

		w := doRequest(t, engine, http.MethodGet, "/api/v1/cost-plans/"+id.String(), nil)
		require.Equal(t, http.StatusOK, w.Code)
		var plan appcostplan.PlanResponse
		decodeResponse(t, w, &plan)
		assert.Equal(t, id, plan.ID)
	})

	t.Run("not found", func(t *testing.T) {
		engine, svc := setupCostPlanEngine()
		id := uuid.New()
		svc.On("GetByID", mock.Anything, testTenantID, id).
			Return(nil, shared.NewDomainError("PLAN_NOT_FOUND", "Cost plan not found"))

		w := doRequest(t, engine, http.MethodGet, "/api/v1/cost-plans/"+id.String(), nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("malformed id", func(t *testing.T) {
		engine, svc := setupCostPlanEngine()

		w := doRequest(t, engine, http.MethodGet, "/api/v1/cost-plans/abc", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		svc.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestCostPlanHandler_List(t *testing.T) {
	t.Run("paginated", func(t *testing.T) {
		engine, svc := setupCostPlanEngine()
		items := []appcostplan.PlanListItemResponse{{ID: uuid.New(), Number: "CP-2026-00003", State: "draft"}}
		svc.On("List", mock.Anything, testTenantID, appcostplan.PlanListFilter{State: "draft", Page: 2, PageSize: 5}).
			Return(items, int64(11), nil)

		w := doRequest(t, engine, http.MethodGet, "/api/v1/cost-plans?state=draft&page=2&page_size=5", nil)
		require.Equal(t, http.StatusOK, w.Code)

		var got []appcostplan.PlanListItemResponse
		resp := decodeResponse(t, w, &got)
		require.Len(t, got, 1)
		require.NotNil(t, resp.Meta)
		assert.Equal(t, int64(11), resp.Meta.Total)
		assert.Equal(t, 2, resp.Meta.Page)
		assert.Equal(t, 5, resp.Meta.PageSize)
		assert.Equal(t, 3, resp.Meta.TotalPages)
	})

	t.Run("default page", func(t *testing.T) {
		engine, svc := setupCostPlanEngine()
		svc.On("List", mock.Anything, testTenantID, appcostplan.PlanListFilter{}).
			Return([]appcostplan.PlanListItemResponse{}, int64(0), nil)

		w := doRequest(t, engine, http.MethodGet, "/api/v1/cost-plans", nil)
		require.Equal(t, http.StatusOK, w.Code)
		resp := decodeResponse(t, w, nil)
		assert.Equal(t, dto.DefaultPage, resp.Meta.Page)
		assert.Equal(t, dto.DefaultPageSize, resp.Meta.PageSize)
	})

	t.Run("invalid state", func(t *testing.T) {
		engine, svc := setupCostPlanEngine()

		w := doRequest(t, engine, http.MethodGet, "/api/v1/cost-plans?state=archived", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		resp := decodeResponse(t, w, nil)
		assert.Equal(t, dto.ErrCodeValidation, resp.Error.Code)
		svc.AssertNotCalled(t, "List", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestCostPlanHandler_UpdateDeleteCompute(t *testing.T) {
	engine, svc := setupCostPlanEngine()
	id := uuid.New()
	name := "Renamed"
	svc.On("Update", mock.Anything, testTenantID, id, mock.MatchedBy(func(r appcostplan.UpdatePlanRequest) bool {
		return r.Name != nil && *r.Name == name && r.Products == nil
	})).Return(&appcostplan.PlanResponse{ID: id, Name: name}, nil)
	svc.On("Compute", mock.Anything, testTenantID, id).
		Return(&appcostplan.PlanResponse{ID: id, State: "computed"}, nil)
	svc.On("Delete", mock.Anything, testTenantID, id).Return(nil)

	w := doRequest(t, engine, http.MethodPut, "/api/v1/cost-plans/"+id.String(), appcostplan.UpdatePlanRequest{Name: &name})
	assert.Equal(t, http.StatusOK, w.Code)

	w = doRequest(t, engine, http.MethodPost, "/api/v1/cost-plans/"+id.String()+"/compute", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	var plan appcostplan.PlanResponse
	decodeResponse(t, w, &plan)
	assert.Equal(t, "computed", plan.State)

	w = doRequest(t, engine, http.MethodDelete, "/api/v1/cost-plans/"+id.String(), nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	svc.AssertExpectations(t)
}

func TestCostPlanHandler_Copy(t *testing.T) {
	t.Run("copies", func(t *testing.T) {
		engine, svc := setupCostPlanEngine()
		ids := []uuid.UUID{uuid.New(), uuid.New()}
		svc.On("Copy", mock.Anything, testTenantID, ids).
			Return([]appcostplan.PlanResponse{{ID: uuid.New()}, {ID: uuid.New()}}, nil)

		w := doRequest(t, engine, http.MethodPost, "/api/v1/cost-plans/copy", appcostplan.CopyPlansRequest{IDs: ids})
		require.Equal(t, http.StatusCreated, w.Code)
		var copies []appcostplan.PlanResponse
		decodeResponse(t, w, &copies)
		assert.Len(t, copies, 2)
	})

	t.Run("requires ids", func(t *testing.T) {
		engine, _ := setupCostPlanEngine()

		w := doRequest(t, engine, http.MethodPost, "/api/v1/cost-plans/copy", map[string]any{"ids": []string{}})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestCostPlanHandler_OnChange(t *testing.T) {
	engine, svc := setupCostPlanEngine()
	productID, processID := uuid.New(), uuid.New()
	form := appcostplan.PlanForm{ProductID: &productID, ProcessID: &processID, Quantity: decimal.NewFromInt(1)}

	svc.On("OnChangeProduct", mock.Anything, testTenantID, mock.MatchedBy(func(f appcostplan.PlanForm) bool {
		return f.ProductID != nil && *f.ProductID == productID
	})).Return(&appcostplan.PlanFormResponse{PlanForm: appcostplan.PlanForm{ProductID: &productID}}, nil)
	svc.On("OnChangeProcess", mock.Anything, testTenantID, mock.MatchedBy(func(f appcostplan.PlanForm) bool {
		return f.ProcessID != nil && *f.ProcessID == processID
	})).Return(&appcostplan.PlanFormResponse{PlanForm: form, DeletedBomLines: 2}, nil)

	w := doRequest(t, engine, http.MethodPost, "/api/v1/cost-plans/on-change/product", form)
	require.Equal(t, http.StatusOK, w.Code)
	var cleared appcostplan.PlanFormResponse
	decodeResponse(t, w, &cleared)
	assert.Nil(t, cleared.ProcessID)

	w = doRequest(t, engine, http.MethodPost, "/api/v1/cost-plans/on-change/process", form)
	require.Equal(t, http.StatusOK, w.Code)
	var filled appcostplan.PlanFormResponse
	decodeResponse(t, w, &filled)
	assert.Equal(t, int64(2), filled.DeletedBomLines)
	svc.AssertExpectations(t)
}

func TestCostPlanHandler_CreateProcess(t *testing.T) {
	t.Run("created", func(t *testing.T) {
		engine, svc := setupCostPlanEngine()
		planID, processID := uuid.New(), uuid.New()
		svc.On("CreateProcess", mock.Anything, testTenantID, testUserID, planID, "Widget line").
			Return(&appproduction.ProcessResponse{ID: processID, Name: "Widget line", Active: true}, nil)

		w := doRequest(t, engine, http.MethodPost, "/api/v1/cost-plans/"+planID.String()+"/create-process",
			appcostplan.CreateProcessRequest{Name: "Widget line"})
		require.Equal(t, http.StatusCreated, w.Code)

		var process appproduction.ProcessResponse
		decodeResponse(t, w, &process)
		assert.Equal(t, processID, process.ID)
		svc.AssertExpectations(t)
	})

	t.Run("warns when a process exists", func(t *testing.T) {
		engine, svc := setupCostPlanEngine()
		planID := uuid.New()
		svc.On("CreateProcess", mock.Anything, testTenantID, testUserID, planID, "Again").
			Return(nil, shared.NewUserWarning("process_already_exists"+planID.String(), "PROCESS_ALREADY_EXISTS",
				"Cost plan already has a process"))

		w := doRequest(t, engine, http.MethodPost, "/api/v1/cost-plans/"+planID.String()+"/create-process",
			appcostplan.CreateProcessRequest{Name: "Again"})
		require.Equal(t, http.StatusConflict, w.Code)

		resp := decodeResponse(t, w, nil)
		require.NotNil(t, resp.Error)
		assert.Equal(t, dto.ErrCodeProcessAlreadyExists, resp.Error.Code)
		assert.Equal(t, "process_already_exists"+planID.String(), resp.Error.WarningKey)
	})

	t.Run("missing product", func(t *testing.T) {
		engine, svc := setupCostPlanEngine()
		planID := uuid.New()
		svc.On("CreateProcess", mock.Anything, testTenantID, testUserID, planID, "P").
			Return(nil, shared.NewDomainError("MISSING_PRODUCT", "Cost plan has no product"))

		w := doRequest(t, engine, http.MethodPost, "/api/v1/cost-plans/"+planID.String()+"/create-process",
			appcostplan.CreateProcessRequest{Name: "P"})
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		resp := decodeResponse(t, w, nil)
		assert.Equal(t, dto.ErrCodeMissingProduct, resp.Error.Code)
	})

	t.Run("unknown plan", func(t *testing.T) {
		engine, svc := setupCostPlanEngine()
		planID := uuid.New()
		svc.On("CreateProcess", mock.Anything, testTenantID, testUserID, planID, "P").
			Return(nil, shared.NewDomainError("PLAN_NOT_FOUND", "Cost plan not found"))

		w := doRequest(t, engine, http.MethodPost, "/api/v1/cost-plans/"+planID.String()+"/create-process",
			appcostplan.CreateProcessRequest{Name: "P"})
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("name is required", func(t *testing.T) {
		engine, svc := setupCostPlanEngine()

		w := doRequest(t, engine, http.MethodPost, "/api/v1/cost-plans/"+uuid.NewString()+"/create-process",
			map[string]string{})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		resp := decodeResponse(t, w, nil)
		require.NotEmpty(t, resp.Error.Details)
		assert.Equal(t, "name", resp.Error.Details[0].Field)
		svc.AssertNotCalled(t, "CreateProcess", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}
