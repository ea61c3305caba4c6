package costplan

import (
	"context"
	"errors"
	"fmt"
	"strings"

	appproduction "github.com/erp/manufacturing/internal/application/production"
	"github.com/erp/manufacturing/internal/domain/catalog"
	"github.com/erp/manufacturing/internal/domain/costplan"
	"github.com/erp/manufacturing/internal/domain/production"
	"github.com/erp/manufacturing/internal/domain/shared"
	"github.com/erp/manufacturing/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// Error codes raised while converting a plan into a process
const (
	ErrCodeMissingProduct        = "MISSING_PRODUCT"
	ErrCodeProcessAlreadyExists  = "PROCESS_ALREADY_EXISTS"
	ErrCodeCannotAssignProcess   = "CANNOT_ASSIGN_PROCESS"
	processAlreadyExistsKeyStart = "process_already_exists"
)

// ProcessWarningKey returns the warning key guarding a second conversion of the plan
func ProcessWarningKey(planID uuid.UUID) string {
	return processAlreadyExistsKeyStart + planID.String()
}

// CreateProcess converts the plan into a production process.
// The plan's BOM and route are reused or created from its lines, a process with one
// step is created and linked to the plan and to the product's matching BOM association.
// The writes run in one transaction.
func (s *PlanService) CreateProcess(ctx context.Context, tenantID, userID, planID uuid.UUID, name string) (resp *appproduction.ProcessResponse, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "cost_plan", "create_process",
		telemetry.SpanAttrTenantID, tenantID,
		telemetry.SpanAttrPlanID, planID,
	)
	defer func() {
		telemetry.RecordError(span, err)
		span.End()
	}()

	labels := telemetry.OperationLabels("cost_plan", "create_process", map[string]string{
		telemetry.ProfilingLabelTenantID: tenantID.String(),
	})
	telemetry.WithProfilingLabels(ctx, labels, func(ctx context.Context) {
		resp, err = s.createProcess(ctx, span, tenantID, userID, planID, name)
	})
	return resp, err
}

func (s *PlanService) createProcess(
	ctx context.Context,
	span trace.Span,
	tenantID, userID, planID uuid.UUID,
	name string,
) (*appproduction.ProcessResponse, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "Process name is required")
	}

	// warnings are checked before the conversion transaction opens
	current, err := s.loadPlan(ctx, tenantID, planID)
	if err != nil {
		return nil, err
	}
	if err := s.checkConvertible(ctx, current); err != nil {
		return nil, err
	}
	warned := false
	if current.HasProcess() {
		if err := s.checkProcessWarning(ctx, tenantID, userID, current); err != nil {
			return nil, err
		}
		warned = true
	}

	var (
		process *production.Process
		events  []shared.DomainEvent
	)
	err = s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		plan, err := repos.PlanRepo().FindByIDForTenant(ctx, tenantID, planID)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return shared.NewDomainError("PLAN_NOT_FOUND", "Cost plan not found")
			}
			return err
		}
		if err := s.checkConvertible(ctx, plan); err != nil {
			return err
		}
		// linked by a concurrent conversion after the check above
		if plan.HasProcess() && !warned {
			return s.processExistsWarning(ctx, plan)
		}

		product, err := repos.ProductRepo().FindByIDForTenant(ctx, tenantID, *plan.ProductID)
		if err != nil {
			return fmt.Errorf("failed to load plan product: %w", err)
		}

		bom, err := s.resolveBom(ctx, repos, plan, product, name)
		if err != nil {
			return err
		}
		route, err := s.resolveRoute(ctx, repos, plan, product, bom, name)
		if err != nil {
			return err
		}

		var uomID uuid.UUID
		if plan.UomID != nil {
			uomID = *plan.UomID
		}
		process, err = production.NewProcess(tenantID, name, uomID, bom.ID, route.ID)
		if err != nil {
			return err
		}
		if err := repos.ProcessRepo().Save(ctx, process); err != nil {
			return fmt.Errorf("failed to save process: %w", err)
		}

		if err := plan.LinkProcess(process); err != nil {
			return err
		}
		if err := repos.PlanRepo().Save(ctx, plan); err != nil {
			return fmt.Errorf("failed to save cost plan: %w", err)
		}

		stepName := s.localizer.Translate(ctx, MsgStepsFieldLabel)
		if _, err := process.AddStep(stepName, bom, route); err != nil {
			return err
		}
		if err := repos.ProcessRepo().Save(ctx, process); err != nil {
			return fmt.Errorf("failed to save process step: %w", err)
		}
		if err := repos.BomRepo().Save(ctx, bom); err != nil {
			return fmt.Errorf("failed to save bom: %w", err)
		}
		if err := repos.RouteRepo().Save(ctx, route); err != nil {
			return fmt.Errorf("failed to save route: %w", err)
		}

		if err := s.assignProcessToProduct(ctx, repos, plan, product, process); err != nil {
			return err
		}

		events = append(events, process.GetDomainEvents()...)
		events = append(events, plan.GetDomainEvents()...)
		return nil
	})
	if err != nil {
		return nil, err
	}

	telemetry.SetAttributes(span, telemetry.SpanAttrProcessID, process.ID)
	s.logger.Info("Process created from cost plan",
		zap.String("tenant_id", tenantID.String()),
		zap.String("plan_id", planID.String()),
		zap.String("process_id", process.ID.String()),
		zap.String("name", process.Name))

	s.publishEvents(ctx, events)
	process.ClearDomainEvents()

	response := appproduction.ToProcessResponse(process)
	return &response, nil
}

// loadPlan reads the plan outside of any transaction
func (s *PlanService) loadPlan(ctx context.Context, tenantID, planID uuid.UUID) (*costplan.Plan, error) {
	plan, err := s.planRepo.FindByIDForTenant(ctx, tenantID, planID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("PLAN_NOT_FOUND", "Cost plan not found")
		}
		return nil, err
	}
	return plan, nil
}

func (s *PlanService) checkConvertible(ctx context.Context, plan *costplan.Plan) error {
	if !plan.HasProduct() {
		return shared.NewDomainError(ErrCodeMissingProduct,
			s.localizer.Translate(ctx, MsgLacksTheProduct, plan.RecName()))
	}
	return nil
}

// checkProcessWarning fails unless the user acknowledged converting the plan again.
// A one-shot acknowledgement is consumed.
func (s *PlanService) checkProcessWarning(ctx context.Context, tenantID, userID uuid.UUID, plan *costplan.Plan) error {
	mustWarn, err := s.warnings.Check(ctx, tenantID, userID, ProcessWarningKey(plan.ID))
	if err != nil {
		return err
	}
	if mustWarn {
		return s.processExistsWarning(ctx, plan)
	}
	return nil
}

func (s *PlanService) processExistsWarning(ctx context.Context, plan *costplan.Plan) error {
	return shared.NewUserWarning(ProcessWarningKey(plan.ID), ErrCodeProcessAlreadyExists,
		s.localizer.Translate(ctx, MsgProcessAlreadyExists, plan.RecName()))
}

// resolveBom returns the plan BOM, creating one from the plan lines when missing
func (s *PlanService) resolveBom(
	ctx context.Context,
	repos TransactionalRepositories,
	plan *costplan.Plan,
	product *catalog.Product,
	name string,
) (*production.Bom, error) {
	if plan.BomID != nil {
		bom, err := repos.BomRepo().FindByIDForTenant(ctx, plan.TenantID, *plan.BomID)
		if err != nil {
			return nil, fmt.Errorf("failed to load plan bom: %w", err)
		}
		return bom, nil
	}
	return s.createBom(ctx, repos, plan, product, name)
}

// createBom builds a BOM consuming the plan's top-level material lines and
// producing the plan quantity of the product, and associates it with the product
func (s *PlanService) createBom(
	ctx context.Context,
	repos TransactionalRepositories,
	plan *costplan.Plan,
	product *catalog.Product,
	name string,
) (*production.Bom, error) {
	if plan.UomID == nil {
		return nil, shared.NewDomainError("INVALID_UOM", "Cost plan unit is required")
	}

	bom, err := production.NewBom(plan.TenantID, name)
	if err != nil {
		return nil, err
	}
	for _, line := range plan.TopLevelProducts() {
		if _, err := bom.AddInput(line.ProductID, line.Quantity, line.UomID); err != nil {
			return nil, err
		}
	}
	if _, err := bom.AddOutput(product.ID, plan.Quantity, *plan.UomID); err != nil {
		return nil, err
	}
	if err := repos.BomRepo().Save(ctx, bom); err != nil {
		return nil, fmt.Errorf("failed to save bom: %w", err)
	}

	existing, err := repos.ProductBomRepo().FindByProduct(ctx, plan.TenantID, product.ID)
	if err != nil {
		return nil, err
	}
	pb, err := catalog.NewProductBom(plan.TenantID, product.ID, bom.ID, nil, catalog.NextSequence(existing))
	if err != nil {
		return nil, err
	}
	if err := repos.ProductBomRepo().Save(ctx, pb); err != nil {
		return nil, fmt.Errorf("failed to save product bom: %w", err)
	}

	plan.AttachBom(bom.ID)
	return bom, nil
}

// resolveRoute returns the plan route, creating one from the plan operations when missing
func (s *PlanService) resolveRoute(
	ctx context.Context,
	repos TransactionalRepositories,
	plan *costplan.Plan,
	product *catalog.Product,
	bom *production.Bom,
	name string,
) (*production.Route, error) {
	if plan.RouteID != nil {
		route, err := repos.RouteRepo().FindByIDForTenant(ctx, plan.TenantID, *plan.RouteID)
		if err != nil {
			return nil, fmt.Errorf("failed to load plan route: %w", err)
		}
		return route, nil
	}
	return s.createRoute(ctx, repos, plan, product, bom, name)
}

// createRoute builds a route from the plan operations. The product association
// holding the BOM without a route receives it; otherwise a new association is added.
func (s *PlanService) createRoute(
	ctx context.Context,
	repos TransactionalRepositories,
	plan *costplan.Plan,
	product *catalog.Product,
	bom *production.Bom,
	name string,
) (*production.Route, error) {
	if plan.UomID == nil {
		return nil, shared.NewDomainError("INVALID_UOM", "Cost plan unit is required")
	}

	route, err := production.NewRoute(plan.TenantID, name, *plan.UomID)
	if err != nil {
		return nil, err
	}
	for _, op := range plan.SortedOperations() {
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
	if err := repos.RouteRepo().Save(ctx, route); err != nil {
		return nil, fmt.Errorf("failed to save route: %w", err)
	}

	existing, err := repos.ProductBomRepo().FindByProduct(ctx, plan.TenantID, product.ID)
	if err != nil {
		return nil, err
	}
	var target *catalog.ProductBom
	for i := range existing {
		if existing[i].Matches(bom.ID, nil) {
			target = &existing[i]
			break
		}
	}
	if target != nil {
		target.AssignRoute(route.ID)
	} else {
		routeID := route.ID
		target, err = catalog.NewProductBom(plan.TenantID, product.ID, bom.ID, &routeID, catalog.NextSequence(existing))
		if err != nil {
			return nil, err
		}
	}
	if err := repos.ProductBomRepo().Save(ctx, target); err != nil {
		return nil, fmt.Errorf("failed to save product bom: %w", err)
	}

	plan.AttachRoute(route.ID)
	return route, nil
}

// assignProcessToProduct links the process to the product association using the same BOM and route
func (s *PlanService) assignProcessToProduct(
	ctx context.Context,
	repos TransactionalRepositories,
	plan *costplan.Plan,
	product *catalog.Product,
	process *production.Process,
) error {
	productBoms, err := repos.ProductBomRepo().FindByProduct(ctx, plan.TenantID, product.ID)
	if err != nil {
		return err
	}
	routeID := process.RouteID
	for i := range productBoms {
		pb := &productBoms[i]
		if !pb.Matches(process.BomID, &routeID) {
			continue
		}
		pb.AssignProcess(process.ID)
		if err := repos.ProductBomRepo().Save(ctx, pb); err != nil {
			return fmt.Errorf("failed to save product bom: %w", err)
		}
		return nil
	}
	return shared.NewDomainError(ErrCodeCannotAssignProcess,
		s.localizer.Translate(ctx, MsgCannotAssignProcess, plan.RecName(), product.RecName()))
}
