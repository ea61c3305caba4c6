package costplan

import (
	"context"
	"fmt"

	"github.com/erp/manufacturing/internal/domain/catalog"
	"github.com/erp/manufacturing/internal/domain/costplan"
	"github.com/erp/manufacturing/internal/domain/production"
	"github.com/erp/manufacturing/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// OnChangeProduct recomputes the form after the product changed.
// Process, BOM, route and derived BOM lines are reset; when one of the product's
// BOM associations carries a process, the first one is selected.
func (s *PlanService) OnChangeProduct(ctx context.Context, tenantID uuid.UUID, form PlanForm) (*PlanFormResponse, error) {
	plan := form.toPlan(tenantID)

	var product *catalog.Product
	if form.ProductID != nil {
		p, err := s.findProduct(ctx, tenantID, *form.ProductID)
		if err != nil {
			return nil, err
		}
		product = p
	}
	if err := plan.SetProduct(product); err != nil {
		return nil, err
	}

	var deleted int64
	if product != nil {
		productBoms, err := s.productBomRepo.FindByProduct(ctx, tenantID, product.ID)
		if err != nil {
			return nil, err
		}
		if pb := catalog.FirstWithProcess(productBoms); pb != nil {
			deleted, err = s.changeProcess(ctx, tenantID, plan, pb.ProcessID, form.ID != nil)
			if err != nil {
				return nil, err
			}
		}
	}

	response := ToPlanFormResponse(form.ID, plan, deleted)
	return &response, nil
}

// OnChangeProcess recomputes the form after the process changed.
// Stale derived BOM lines of a stored plan are deleted right away in an
// independent transaction, whether or not the form is saved afterwards.
func (s *PlanService) OnChangeProcess(ctx context.Context, tenantID uuid.UUID, form PlanForm) (*PlanFormResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "cost_plan", "on_change_process", telemetry.SpanAttrTenantID, tenantID)
	defer span.End()

	plan := form.toPlan(tenantID)

	var (
		deleted int64
		err     error
	)
	labels := telemetry.OperationLabels("cost_plan", "on_change_process", map[string]string{
		telemetry.ProfilingLabelTenantID: tenantID.String(),
	})
	telemetry.WithProfilingLabels(ctx, labels, func(ctx context.Context) {
		deleted, err = s.changeProcess(ctx, tenantID, plan, form.ProcessID, form.ID != nil)
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	telemetry.SetAttributes(span, "bom_lines.deleted", deleted)

	response := ToPlanFormResponse(form.ID, plan, deleted)
	return &response, nil
}

// changeProcess selects processID (or clears the process when nil), rebuilds the
// derived BOM lines and, for stored plans, deletes the lines that were replaced.
func (s *PlanService) changeProcess(
	ctx context.Context,
	tenantID uuid.UUID,
	plan *costplan.Plan,
	processID *uuid.UUID,
	persisted bool,
) (int64, error) {
	var bom *production.Bom
	if processID != nil {
		process, err := s.findProcess(ctx, tenantID, *processID)
		if err != nil {
			return 0, err
		}
		if err := plan.ApplyProcess(process); err != nil {
			return 0, err
		}
		bom, err = s.findBom(ctx, tenantID, process.BomID)
		if err != nil {
			return 0, err
		}
	} else {
		plan.ClearProcess()
		if plan.BomID != nil {
			b, err := s.findBom(ctx, tenantID, *plan.BomID)
			if err != nil {
				return 0, err
			}
			bom = b
		}
	}

	lines, err := costplan.DefaultBomLines(ctx, s.bomSource(tenantID), bom)
	if err != nil {
		return 0, err
	}
	removed := plan.ReplaceBomLines(lines)
	if !persisted || len(removed) == 0 {
		return 0, nil
	}
	return s.deleteStaleBomLines(ctx, tenantID, plan.ID, removed)
}

func (s *PlanService) deleteStaleBomLines(ctx context.Context, tenantID, planID uuid.UUID, lines []costplan.PlanBomLine) (int64, error) {
	ids := make([]uuid.UUID, len(lines))
	for i, l := range lines {
		ids[i] = l.ID
	}

	var deleted int64
	err := s.txScope.Autocommit(ctx, func(repos TransactionalRepositories) error {
		n, err := repos.PlanRepo().DeleteBomLines(ctx, tenantID, planID, ids)
		if err != nil {
			return err
		}
		deleted = n
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to delete stale cost plan bom lines: %w", err)
	}

	s.logger.Info("Deleted stale cost plan bom lines",
		zap.String("plan_id", planID.String()),
		zap.Int64("deleted", deleted))
	return deleted, nil
}
