package production

import (
	"context"
	"errors"

	"github.com/erp/manufacturing/internal/domain/production"
	"github.com/erp/manufacturing/internal/domain/shared"
	"github.com/google/uuid"
)

// ProductionService handles BOMs, routes and processes
type ProductionService struct {
	bomRepo     production.BomRepository
	routeRepo   production.RouteRepository
	processRepo production.ProcessRepository
}

// NewProductionService creates a new ProductionService
func NewProductionService(
	bomRepo production.BomRepository,
	routeRepo production.RouteRepository,
	processRepo production.ProcessRepository,
) *ProductionService {
	return &ProductionService{
		bomRepo:     bomRepo,
		routeRepo:   routeRepo,
		processRepo: processRepo,
	}
}

// CreateBom creates a bill of materials with its lines
func (s *ProductionService) CreateBom(ctx context.Context, tenantID uuid.UUID, req CreateBomRequest) (*BomResponse, error) {
	bom, err := production.NewBom(tenantID, req.Name)
	if err != nil {
		return nil, err
	}
	for _, in := range req.Inputs {
		if _, err := bom.AddInput(in.ProductID, in.Quantity, in.UomID); err != nil {
			return nil, err
		}
	}
	for _, out := range req.Outputs {
		if _, err := bom.AddOutput(out.ProductID, out.Quantity, out.UomID); err != nil {
			return nil, err
		}
	}
	if err := s.bomRepo.Save(ctx, bom); err != nil {
		return nil, err
	}
	response := ToBomResponse(bom)
	return &response, nil
}

// GetBom retrieves a bill of materials by ID
func (s *ProductionService) GetBom(ctx context.Context, tenantID, id uuid.UUID) (*BomResponse, error) {
	bom, err := s.bomRepo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("BOM_NOT_FOUND", "BOM not found")
		}
		return nil, err
	}
	response := ToBomResponse(bom)
	return &response, nil
}

// CreateRoute creates a route with its operations
func (s *ProductionService) CreateRoute(ctx context.Context, tenantID uuid.UUID, req CreateRouteRequest) (*RouteResponse, error) {
	route, err := production.NewRoute(tenantID, req.Name, req.UomID)
	if err != nil {
		return nil, err
	}
	for _, op := range req.Operations {
		_, err := route.AddOperation(production.OperationSpec{
			Name:               op.Name,
			WorkCenterCategory: op.WorkCenterCategory,
			Time:               op.Time,
			TimeUom:            op.TimeUom,
			Quantity:           op.Quantity,
		})
		if err != nil {
			return nil, err
		}
	}
	if err := s.routeRepo.Save(ctx, route); err != nil {
		return nil, err
	}
	response := ToRouteResponse(route)
	return &response, nil
}

// GetRoute retrieves a route by ID
func (s *ProductionService) GetRoute(ctx context.Context, tenantID, id uuid.UUID) (*RouteResponse, error) {
	route, err := s.routeRepo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("ROUTE_NOT_FOUND", "Route not found")
		}
		return nil, err
	}
	response := ToRouteResponse(route)
	return &response, nil
}

// GetProcess retrieves a process with its steps
func (s *ProductionService) GetProcess(ctx context.Context, tenantID, id uuid.UUID) (*ProcessResponse, error) {
	process, err := s.processRepo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("PROCESS_NOT_FOUND", "Process not found")
		}
		return nil, err
	}
	response := ToProcessResponse(process)
	return &response, nil
}

// ListProcesses lists processes with pagination
func (s *ProductionService) ListProcesses(ctx context.Context, tenantID uuid.UUID, filter ProcessListFilter) ([]ProcessResponse, int64, error) {
	domainFilter := shared.DefaultFilter()
	if filter.Page > 0 {
		domainFilter.Page = filter.Page
	}
	if filter.PageSize > 0 {
		domainFilter.PageSize = filter.PageSize
	}
	domainFilter.Search = filter.Search

	processes, err := s.processRepo.FindAllForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.processRepo.CountForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]ProcessResponse, len(processes))
	for i := range processes {
		responses[i] = ToProcessResponse(&processes[i])
	}
	return responses, total, nil
}
