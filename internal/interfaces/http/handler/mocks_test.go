package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	catalogapp "github.com/erp/manufacturing/internal/application/catalog"
	appcostplan "github.com/erp/manufacturing/internal/application/costplan"
	appproduction "github.com/erp/manufacturing/internal/application/production"
	appwarning "github.com/erp/manufacturing/internal/application/warning"
	"github.com/erp/manufacturing/internal/interfaces/http/dto"
	"github.com/erp/manufacturing/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
	middleware.SetupValidator()
}

var (
	testTenantID = uuid.MustParse("6f1c1c52-2f4e-4c39-9d5a-0d3a8f6f0a11")
	testUserID   = uuid.MustParse("9b2e7f0c-8a55-4b7e-a4c9-3f1d2e6b7c22")
)

// newTestEngine returns an engine with the identity middleware used in production
func newTestEngine() *gin.Engine {
	engine := gin.New()
	engine.Use(middleware.RequestID(), middleware.JWTAuth(middleware.JWTConfig{}))
	return engine
}

func doRequest(t *testing.T, engine *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		if s, ok := body.(string); ok {
			reader = bytes.NewBufferString(s)
		} else {
			data, err := json.Marshal(body)
			require.NoError(t, err)
			reader = bytes.NewReader(data)
		}
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(middleware.TenantHeader, testTenantID.String())
	req.Header.Set(middleware.UserHeader, testUserID.String())
	req.Header.Set(middleware.RequestIDHeader, "req-test")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

// decodeResponse decodes the envelope and, when data is non-nil, its payload
func decodeResponse(t *testing.T, w *httptest.ResponseRecorder, data any) dto.Response {
	t.Helper()
	var raw struct {
		dto.Response
		Data json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &raw))
	if data != nil {
		require.NoError(t, json.Unmarshal(raw.Data, data))
	}
	return raw.Response
}

type MockCostPlanService struct {
	mock.Mock
}

func (m *MockCostPlanService) Create(ctx context.Context, tenantID uuid.UUID, req appcostplan.CreatePlanRequest) (*appcostplan.PlanResponse, error) {
	args := m.Called(ctx, tenantID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*appcostplan.PlanResponse), args.Error(1)
}

func (m *MockCostPlanService) GetByID(ctx context.Context, tenantID, planID uuid.UUID) (*appcostplan.PlanResponse, error) {
	args := m.Called(ctx, tenantID, planID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*appcostplan.PlanResponse), args.Error(1)
}

func (m *MockCostPlanService) List(ctx context.Context, tenantID uuid.UUID, filter appcostplan.PlanListFilter) ([]appcostplan.PlanListItemResponse, int64, error) {
	args := m.Called(ctx, tenantID, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]appcostplan.PlanListItemResponse), args.Get(1).(int64), args.Error(2)
}

func (m *MockCostPlanService) Update(ctx context.Context, tenantID, planID uuid.UUID, req appcostplan.UpdatePlanRequest) (*appcostplan.PlanResponse, error) {
	args := m.Called(ctx, tenantID, planID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*appcostplan.PlanResponse), args.Error(1)
}

func (m *MockCostPlanService) Delete(ctx context.Context, tenantID, planID uuid.UUID) error {
	return m.Called(ctx, tenantID, planID).Error(0)
}

func (m *MockCostPlanService) Compute(ctx context.Context, tenantID, planID uuid.UUID) (*appcostplan.PlanResponse, error) {
	args := m.Called(ctx, tenantID, planID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*appcostplan.PlanResponse), args.Error(1)
}

func (m *MockCostPlanService) Copy(ctx context.Context, tenantID uuid.UUID, planIDs []uuid.UUID) ([]appcostplan.PlanResponse, error) {
	args := m.Called(ctx, tenantID, planIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]appcostplan.PlanResponse), args.Error(1)
}

func (m *MockCostPlanService) OnChangeProduct(ctx context.Context, tenantID uuid.UUID, form appcostplan.PlanForm) (*appcostplan.PlanFormResponse, error) {
	args := m.Called(ctx, tenantID, form)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*appcostplan.PlanFormResponse), args.Error(1)
}

func (m *MockCostPlanService) OnChangeProcess(ctx context.Context, tenantID uuid.UUID, form appcostplan.PlanForm) (*appcostplan.PlanFormResponse, error) {
	args := m.Called(ctx, tenantID, form)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*appcostplan.PlanFormResponse), args.Error(1)
}

func (m *MockCostPlanService) CreateProcess(ctx context.Context, tenantID, userID, planID uuid.UUID, name string) (*appproduction.ProcessResponse, error) {
	args := m.Called(ctx, tenantID, userID, planID, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*appproduction.ProcessResponse), args.Error(1)
}

type MockWizard struct {
	mock.Mock
}

func (m *MockWizard) Start(ctx context.Context, tenantID uuid.UUID, planID *uuid.UUID) (*appcostplan.WizardView, error) {
	args := m.Called(ctx, tenantID, planID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*appcostplan.WizardView), args.Error(1)
}

func (m *MockWizard) Process(ctx context.Context, tenantID, userID uuid.UUID, planID *uuid.UUID, name string) (*appcostplan.WizardResult, error) {
	args := m.Called(ctx, tenantID, userID, planID, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*appcostplan.WizardResult), args.Error(1)
}

type MockWarningAcknowledger struct {
	mock.Mock
}

func (m *MockWarningAcknowledger) Acknowledge(ctx context.Context, tenantID, userID uuid.UUID, req appwarning.AcknowledgeRequest) error {
	return m.Called(ctx, tenantID, userID, req).Error(0)
}

type MockCatalogService struct {
	mock.Mock
}

func (m *MockCatalogService) CreateUom(ctx context.Context, tenantID uuid.UUID, req catalogapp.CreateUomRequest) (*catalogapp.UomResponse, error) {
	args := m.Called(ctx, tenantID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalogapp.UomResponse), args.Error(1)
}

func (m *MockCatalogService) ListUoms(ctx context.Context, tenantID uuid.UUID) ([]catalogapp.UomResponse, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]catalogapp.UomResponse), args.Error(1)
}

func (m *MockCatalogService) CreateProduct(ctx context.Context, tenantID uuid.UUID, req catalogapp.CreateProductRequest) (*catalogapp.ProductResponse, error) {
	args := m.Called(ctx, tenantID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalogapp.ProductResponse), args.Error(1)
}

func (m *MockCatalogService) GetProduct(ctx context.Context, tenantID, productID uuid.UUID) (*catalogapp.ProductResponse, error) {
	args := m.Called(ctx, tenantID, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalogapp.ProductResponse), args.Error(1)
}

func (m *MockCatalogService) ListProducts(ctx context.Context, tenantID uuid.UUID, filter catalogapp.ProductListFilter) ([]catalogapp.ProductResponse, int64, error) {
	args := m.Called(ctx, tenantID, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]catalogapp.ProductResponse), args.Get(1).(int64), args.Error(2)
}

func (m *MockCatalogService) AddProductBom(ctx context.Context, tenantID, productID uuid.UUID, req catalogapp.AddProductBomRequest) (*catalogapp.ProductBomResponse, error) {
	args := m.Called(ctx, tenantID, productID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalogapp.ProductBomResponse), args.Error(1)
}

func (m *MockCatalogService) ListProductBoms(ctx context.Context, tenantID, productID uuid.UUID) ([]catalogapp.ProductBomResponse, error) {
	args := m.Called(ctx, tenantID, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]catalogapp.ProductBomResponse), args.Error(1)
}

type MockProductionService struct {
	mock.Mock
}

func (m *MockProductionService) CreateBom(ctx context.Context, tenantID uuid.UUID, req appproduction.CreateBomRequest) (*appproduction.BomResponse, error) {
	args := m.Called(ctx, tenantID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*appproduction.BomResponse), args.Error(1)
}

func (m *MockProductionService) GetBom(ctx context.Context, tenantID, id uuid.UUID) (*appproduction.BomResponse, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*appproduction.BomResponse), args.Error(1)
}

func (m *MockProductionService) CreateRoute(ctx context.Context, tenantID uuid.UUID, req appproduction.CreateRouteRequest) (*appproduction.RouteResponse, error) {
	args := m.Called(ctx, tenantID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*appproduction.RouteResponse), args.Error(1)
}

func (m *MockProductionService) GetRoute(ctx context.Context, tenantID, id uuid.UUID) (*appproduction.RouteResponse, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*appproduction.RouteResponse), args.Error(1)
}

func (m *MockProductionService) GetProcess(ctx context.Context, tenantID, id uuid.UUID) (*appproduction.ProcessResponse, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*appproduction.ProcessResponse), args.Error(1)
}

func (m *MockProductionService) ListProcesses(ctx context.Context, tenantID uuid.UUID, filter appproduction.ProcessListFilter) ([]appproduction.ProcessResponse, int64, error) {
	args := m.Called(ctx, tenantID, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]appproduction.ProcessResponse), args.Get(1).(int64), args.Error(2)
}
