package persistence

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/erp/manufacturing/internal/domain/costplan"
	"github.com/erp/manufacturing/internal/domain/shared"
	"github.com/erp/manufacturing/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormCostPlanRepository implements PlanRepository using GORM
type GormCostPlanRepository struct {
	db *gorm.DB
}

// NewGormCostPlanRepository creates a new GormCostPlanRepository
func NewGormCostPlanRepository(db *gorm.DB) *GormCostPlanRepository {
	return &GormCostPlanRepository{db: db}
}

// FindByIDForTenant loads a plan with all its lines
func (r *GormCostPlanRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*costplan.Plan, error) {
	db := r.db.WithContext(ctx)

	var rows models.CostPlanRows
	if err := db.Where("tenant_id = ? AND id = ?", tenantID, id).First(&rows.Plan).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	if err := db.Where("plan_id = ?", id).Order("sequence ASC").Find(&rows.Products).Error; err != nil {
		return nil, err
	}
	if err := db.Where("plan_id = ?", id).Order("sequence ASC").Find(&rows.Operations).Error; err != nil {
		return nil, err
	}
	if err := db.Where("plan_id = ?", id).Order("position ASC").Find(&rows.Boms).Error; err != nil {
		return nil, err
	}
	return rows.ToDomain(), nil
}

// FindAllForTenant lists plan headers without their lines
func (r *GormCostPlanRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]costplan.Plan, error) {
	var headers []models.CostPlanModel
	if err := paginate(r.filtered(ctx, tenantID, filter), filter, CostPlanSortFields).Find(&headers).Error; err != nil {
		return nil, err
	}

	plans := make([]costplan.Plan, len(headers))
	for i := range headers {
		rows := models.CostPlanRows{Plan: headers[i]}
		plans[i] = *rows.ToDomain()
	}
	return plans, nil
}

// CountForTenant counts plans matching the filter
func (r *GormCostPlanRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error) {
	var count int64
	if err := r.filtered(ctx, tenantID, filter).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Save creates or updates a plan and replaces its lines
func (r *GormCostPlanRepository) Save(ctx context.Context, plan *costplan.Plan) error {
	rows := models.CostPlanRowsFromDomain(plan)

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(&rows.Plan).Error; err != nil {
			return err
		}
		if err := replaceChildren(tx, "plan_id", plan.ID, productLineIDs(plan), rows.Products); err != nil {
			return err
		}
		if err := replaceChildren(tx, "plan_id", plan.ID, operationLineIDs(plan), rows.Operations); err != nil {
			return err
		}
		return replaceChildren(tx, "plan_id", plan.ID, bomLineIDs(plan.Boms), rows.Boms)
	})
}

// DeleteForTenant deletes a plan and its lines
func (r *GormCostPlanRepository) DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Where("tenant_id = ? AND id = ?", tenantID, id).Delete(&models.CostPlanModel{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		for _, child := range []any{&models.CostPlanProductModel{}, &models.CostPlanOperationModel{}, &models.CostPlanBomModel{}} {
			if err := tx.Where("plan_id = ?", id).Delete(child).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// DeleteBomLines deletes derived BOM lines of a plan by id
func (r *GormCostPlanRepository) DeleteBomLines(ctx context.Context, tenantID, planID uuid.UUID, ids []uuid.UUID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	result := r.db.WithContext(ctx).
		Where("plan_id = ? AND id IN ?", planID, ids).
		Where("EXISTS (SELECT 1 FROM cost_plans WHERE cost_plans.id = cost_plan_boms.plan_id AND cost_plans.tenant_id = ?)", tenantID).
		Delete(&models.CostPlanBomModel{})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

// GenerateNumber generates the next plan number for a tenant.
// Format: CP-YYYY-NNNNN (e.g., CP-2026-00001)
func (r *GormCostPlanRepository) GenerateNumber(ctx context.Context, tenantID uuid.UUID) (string, error) {
	prefix := fmt.Sprintf("CP-%d-", time.Now().Year())

	var last models.CostPlanModel
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND number LIKE ?", tenantID, prefix+"%").
		Order("number DESC").
		First(&last).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", err
	}

	next := 1
	if err == nil {
		var n int
		if _, scanErr := fmt.Sscanf(strings.TrimPrefix(last.Number, prefix), "%d", &n); scanErr == nil {
			next = n + 1
		}
	}
	return fmt.Sprintf("%s%05d", prefix, next), nil
}

func (r *GormCostPlanRepository) filtered(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) *gorm.DB {
	query := r.db.WithContext(ctx).Model(&models.CostPlanModel{}).Where("tenant_id = ?", tenantID)
	if filter.Search != "" {
		pattern := likePattern(filter.Search)
		query = query.Where("LOWER(number) LIKE ? OR LOWER(name) LIKE ?", pattern, pattern)
	}
	if productID, ok := filter.Filters["product_id"].(uuid.UUID); ok {
		query = query.Where("product_id = ?", productID)
	}
	if state, ok := filter.Filters["state"].(string); ok && state != "" {
		query = query.Where("state = ?", state)
	}
	return query
}

func productLineIDs(plan *costplan.Plan) []uuid.UUID {
	ids := make([]uuid.UUID, len(plan.Products))
	for i, l := range plan.Products {
		ids[i] = l.ID
	}
	return ids
}

func operationLineIDs(plan *costplan.Plan) []uuid.UUID {
	ids := make([]uuid.UUID, len(plan.Operations))
	for i, l := range plan.Operations {
		ids[i] = l.ID
	}
	return ids
}

func bomLineIDs(lines []costplan.PlanBomLine) []uuid.UUID {
	ids := make([]uuid.UUID, len(lines))
	for i, l := range lines {
		ids[i] = l.ID
	}
	return ids
}

var _ costplan.PlanRepository = (*GormCostPlanRepository)(nil)
