package costplan

import (
	"context"
	"errors"
	"fmt"

	"github.com/erp/manufacturing/internal/domain/catalog"
	"github.com/erp/manufacturing/internal/domain/costplan"
	"github.com/erp/manufacturing/internal/domain/production"
	"github.com/erp/manufacturing/internal/domain/shared"
	"github.com/erp/manufacturing/internal/domain/warning"
	"github.com/erp/manufacturing/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// PlanService handles cost plan operations, including conversion into a production process
type PlanService struct {
	planRepo       costplan.PlanRepository
	productRepo    catalog.ProductRepository
	productBomRepo catalog.ProductBomRepository
	bomRepo        production.BomRepository
	routeRepo      production.RouteRepository
	processRepo    production.ProcessRepository
	txScope        TransactionScope
	warnings       warning.Checker
	localizer      Localizer
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// PlanServiceConfig holds the collaborators of PlanService
type PlanServiceConfig struct {
	PlanRepo       costplan.PlanRepository
	ProductRepo    catalog.ProductRepository
	ProductBomRepo catalog.ProductBomRepository
	BomRepo        production.BomRepository
	RouteRepo      production.RouteRepository
	ProcessRepo    production.ProcessRepository
	TxScope        TransactionScope
	Warnings       warning.Checker
	Localizer      Localizer
	EventPublisher shared.EventPublisher
	Logger         *zap.Logger
}

// NewPlanService creates a new PlanService
func NewPlanService(cfg PlanServiceConfig) *PlanService {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PlanService{
		planRepo:       cfg.PlanRepo,
		productRepo:    cfg.ProductRepo,
		productBomRepo: cfg.ProductBomRepo,
		bomRepo:        cfg.BomRepo,
		routeRepo:      cfg.RouteRepo,
		processRepo:    cfg.ProcessRepo,
		txScope:        cfg.TxScope,
		warnings:       cfg.Warnings,
		localizer:      cfg.Localizer,
		eventPublisher: cfg.EventPublisher,
		logger:         logger,
	}
}

// Create creates a new cost plan
func (s *PlanService) Create(ctx context.Context, tenantID uuid.UUID, req CreatePlanRequest) (*PlanResponse, error) {
	number, err := s.planRepo.GenerateNumber(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to generate cost plan number: %w", err)
	}

	plan, err := costplan.NewPlan(tenantID, number, req.Name)
	if err != nil {
		return nil, err
	}
	if req.ProductID != nil {
		product, err := s.findProduct(ctx, tenantID, *req.ProductID)
		if err != nil {
			return nil, err
		}
		if err := plan.SetProduct(product); err != nil {
			return nil, err
		}
	}
	if req.Quantity != nil {
		if err := plan.SetQuantity(*req.Quantity); err != nil {
			return nil, err
		}
	}
	if err := s.changeBomAndRoute(ctx, tenantID, plan, req.BomID, req.RouteID); err != nil {
		return nil, err
	}
	if err := addProductLines(plan, req.Products, nil); err != nil {
		return nil, err
	}
	if err := addOperationLines(plan, req.Operations); err != nil {
		return nil, err
	}

	if err := s.planRepo.Save(ctx, plan); err != nil {
		return nil, err
	}
	s.publishEvents(ctx, plan.GetDomainEvents())
	plan.ClearDomainEvents()

	response := ToPlanResponse(plan)
	return &response, nil
}

// GetByID retrieves a cost plan by ID
func (s *PlanService) GetByID(ctx context.Context, tenantID, planID uuid.UUID) (*PlanResponse, error) {
	plan, err := s.findPlan(ctx, tenantID, planID)
	if err != nil {
		return nil, err
	}
	response := ToPlanResponse(plan)
	return &response, nil
}

// List lists cost plans with pagination
func (s *PlanService) List(ctx context.Context, tenantID uuid.UUID, filter PlanListFilter) ([]PlanListItemResponse, int64, error) {
	domainFilter := shared.DefaultFilter()
	if filter.Page > 0 {
		domainFilter.Page = filter.Page
	}
	if filter.PageSize > 0 {
		domainFilter.PageSize = filter.PageSize
	}
	domainFilter.Search = filter.Search
	if filter.ProductID != "" {
		productID, err := uuid.Parse(filter.ProductID)
		if err != nil {
			return nil, 0, shared.NewDomainError("INVALID_INPUT", "Invalid product ID")
		}
		domainFilter.Filters["product_id"] = productID
	}
	if filter.State != "" {
		domainFilter.Filters["state"] = filter.State
	}

	plans, err := s.planRepo.FindAllForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.planRepo.CountForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	items := make([]PlanListItemResponse, len(plans))
	for i := range plans {
		items[i] = ToPlanListItemResponse(&plans[i])
	}
	return items, total, nil
}

// Update updates a cost plan. BOM and route cannot change while a process is linked.
func (s *PlanService) Update(ctx context.Context, tenantID, planID uuid.UUID, req UpdatePlanRequest) (*PlanResponse, error) {
	if req.ClearProcess && req.ProcessID != nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "process_id and clear_process cannot be combined")
	}
	plan, err := s.findPlan(ctx, tenantID, planID)
	if err != nil {
		return nil, err
	}

	if req.ProductID != nil && (plan.ProductID == nil || *plan.ProductID != *req.ProductID) {
		product, err := s.findProduct(ctx, tenantID, *req.ProductID)
		if err != nil {
			return nil, err
		}
		if err := plan.SetProduct(product); err != nil {
			return nil, err
		}
	}
	if req.Name != nil {
		if err := plan.SetName(*req.Name); err != nil {
			return nil, err
		}
	}
	if req.Quantity != nil {
		if err := plan.SetQuantity(*req.Quantity); err != nil {
			return nil, err
		}
	}
	if req.ProcessID != nil && (plan.ProcessID == nil || *plan.ProcessID != *req.ProcessID) {
		if _, err := s.changeProcess(ctx, tenantID, plan, req.ProcessID, false); err != nil {
			return nil, err
		}
	}
	if req.ClearProcess && plan.ProcessID != nil {
		if _, err := s.changeProcess(ctx, tenantID, plan, nil, false); err != nil {
			return nil, err
		}
	}
	if err := s.changeBomAndRoute(ctx, tenantID, plan, req.BomID, req.RouteID); err != nil {
		return nil, err
	}
	if req.Products != nil {
		if err := plan.ClearProductLines(); err != nil {
			return nil, err
		}
		if err := addProductLines(plan, *req.Products, nil); err != nil {
			return nil, err
		}
	}
	if req.Operations != nil {
		if err := plan.ClearOperationLines(); err != nil {
			return nil, err
		}
		if err := addOperationLines(plan, *req.Operations); err != nil {
			return nil, err
		}
	}

	plan.IncrementVersion()
	if err := s.planRepo.Save(ctx, plan); err != nil {
		return nil, err
	}

	response := ToPlanResponse(plan)
	return &response, nil
}

// Delete deletes a cost plan
func (s *PlanService) Delete(ctx context.Context, tenantID, planID uuid.UUID) error {
	if err := s.planRepo.DeleteForTenant(ctx, tenantID, planID); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return shared.NewDomainError("PLAN_NOT_FOUND", "Cost plan not found")
		}
		return err
	}
	return nil
}

// Compute recalculates the costs of a plan
func (s *PlanService) Compute(ctx context.Context, tenantID, planID uuid.UUID) (_ *PlanResponse, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "cost_plan", "compute",
		telemetry.SpanAttrTenantID, tenantID,
		telemetry.SpanAttrPlanID, planID,
	)
	defer func() {
		telemetry.RecordError(span, err)
		span.End()
	}()

	plan, err := s.findPlan(ctx, tenantID, planID)
	if err != nil {
		return nil, err
	}
	if err := plan.Compute(); err != nil {
		return nil, err
	}
	if err := s.planRepo.Save(ctx, plan); err != nil {
		return nil, err
	}
	response := ToPlanResponse(plan)
	return &response, nil
}

// Copy duplicates plans. The duplicates never carry the source's process.
func (s *PlanService) Copy(ctx context.Context, tenantID uuid.UUID, planIDs []uuid.UUID) ([]PlanResponse, error) {
	var copies []*costplan.Plan
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		for _, id := range planIDs {
			plan, err := repos.PlanRepo().FindByIDForTenant(ctx, tenantID, id)
			if err != nil {
				if errors.Is(err, shared.ErrNotFound) {
					return shared.NewDomainError("PLAN_NOT_FOUND", "Cost plan not found")
				}
				return err
			}
			number, err := repos.PlanRepo().GenerateNumber(ctx, tenantID)
			if err != nil {
				return fmt.Errorf("failed to generate cost plan number: %w", err)
			}
			dup, err := plan.Copy(number)
			if err != nil {
				return err
			}
			if err := repos.PlanRepo().Save(ctx, dup); err != nil {
				return err
			}
			copies = append(copies, dup)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	responses := make([]PlanResponse, len(copies))
	for i, dup := range copies {
		s.publishEvents(ctx, dup.GetDomainEvents())
		dup.ClearDomainEvents()
		responses[i] = ToPlanResponse(dup)
	}
	return responses, nil
}

// changeBomAndRoute applies explicit BOM and route changes and rebuilds the derived BOM lines
func (s *PlanService) changeBomAndRoute(ctx context.Context, tenantID uuid.UUID, plan *costplan.Plan, bomID, routeID *uuid.UUID) error {
	if bomID != nil {
		bom, err := s.findBom(ctx, tenantID, *bomID)
		if err != nil {
			return err
		}
		previous := plan.BomID
		if err := plan.ChangeBom(bomID); err != nil {
			return err
		}
		if previous == nil || *previous != *bomID {
			lines, err := costplan.DefaultBomLines(ctx, s.bomSource(tenantID), bom)
			if err != nil {
				return err
			}
			plan.ReplaceBomLines(lines)
		}
	}
	if routeID != nil {
		if _, err := s.routeRepo.FindByIDForTenant(ctx, tenantID, *routeID); err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return shared.NewDomainError("ROUTE_NOT_FOUND", "Route not found")
			}
			return err
		}
		if err := plan.ChangeRoute(routeID); err != nil {
			return err
		}
	}
	return nil
}

func addProductLines(plan *costplan.Plan, lines []ProductLineRequest, parentID *uuid.UUID) error {
	for _, req := range lines {
		costPrice := decimal.Zero
		if req.CostPrice != nil {
			costPrice = *req.CostPrice
		}
		line, err := plan.AddProductLine(costplan.ProductLineSpec{
			ProductID: req.ProductID,
			Name:      req.Name,
			Quantity:  req.Quantity,
			UomID:     req.UomID,
			CostPrice: costPrice,
			ParentID:  parentID,
		})
		if err != nil {
			return err
		}
		if len(req.Children) > 0 {
			id := line.ID
			if err := addProductLines(plan, req.Children, &id); err != nil {
				return err
			}
		}
	}
	return nil
}

func addOperationLines(plan *costplan.Plan, lines []OperationLineRequest) error {
	for _, req := range lines {
		_, err := plan.AddOperationLine(costplan.OperationLineSpec{
			Name:               req.Name,
			WorkCenterCategory: req.WorkCenterCategory,
			Time:               req.Time,
			TimeUom:            req.TimeUom,
			Quantity:           req.Quantity,
			CostPerHour:        req.CostPerHour,
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func (s *PlanService) findPlan(ctx context.Context, tenantID, planID uuid.UUID) (*costplan.Plan, error) {
	plan, err := s.planRepo.FindByIDForTenant(ctx, tenantID, planID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("PLAN_NOT_FOUND", "Cost plan not found")
		}
		return nil, err
	}
	return plan, nil
}

func (s *PlanService) findProduct(ctx context.Context, tenantID, productID uuid.UUID) (*catalog.Product, error) {
	product, err := s.productRepo.FindByIDForTenant(ctx, tenantID, productID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("PRODUCT_NOT_FOUND", "Product not found")
		}
		return nil, err
	}
	return product, nil
}

func (s *PlanService) findBom(ctx context.Context, tenantID, bomID uuid.UUID) (*production.Bom, error) {
	bom, err := s.bomRepo.FindByIDForTenant(ctx, tenantID, bomID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("BOM_NOT_FOUND", "BOM not found")
		}
		return nil, err
	}
	return bom, nil
}

func (s *PlanService) findProcess(ctx context.Context, tenantID, processID uuid.UUID) (*production.Process, error) {
	process, err := s.processRepo.FindByIDForTenant(ctx, tenantID, processID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("PROCESS_NOT_FOUND", "Process not found")
		}
		return nil, err
	}
	return process, nil
}

func (s *PlanService) publishEvents(ctx context.Context, events []shared.DomainEvent) {
	if s.eventPublisher == nil || len(events) == 0 {
		return
	}
	if err := s.eventPublisher.Publish(ctx, events...); err != nil {
		s.logger.Warn("Failed to publish domain events",
			zap.Int("count", len(events)),
			zap.Error(err))
	}
}

// repoBomSource reads the records walked when deriving BOM lines
type repoBomSource struct {
	tenantID    uuid.UUID
	products    catalog.ProductRepository
	productBoms catalog.ProductBomRepository
	boms        production.BomRepository
}

func (s *PlanService) bomSource(tenantID uuid.UUID) costplan.BomSource {
	return &repoBomSource{
		tenantID:    tenantID,
		products:    s.productRepo,
		productBoms: s.productBomRepo,
		boms:        s.bomRepo,
	}
}

func (r *repoBomSource) Product(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	return r.products.FindByIDForTenant(ctx, r.tenantID, id)
}

func (r *repoBomSource) ProductBoms(ctx context.Context, productID uuid.UUID) ([]catalog.ProductBom, error) {
	return r.productBoms.FindByProduct(ctx, r.tenantID, productID)
}

func (r *repoBomSource) Bom(ctx context.Context, id uuid.UUID) (*production.Bom, error) {
	return r.boms.FindByIDForTenant(ctx, r.tenantID, id)
}
