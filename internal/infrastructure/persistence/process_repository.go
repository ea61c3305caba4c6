package persistence

import (
	"context"
	"errors"

	"github.com/erp/manufacturing/internal/domain/production"
	"github.com/erp/manufacturing/internal/domain/shared"
	"github.com/erp/manufacturing/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormProcessRepository implements ProcessRepository using GORM
type GormProcessRepository struct {
	db *gorm.DB
}

// NewGormProcessRepository creates a new GormProcessRepository
func NewGormProcessRepository(db *gorm.DB) *GormProcessRepository {
	return &GormProcessRepository{db: db}
}

// FindByIDForTenant loads a process with its steps
func (r *GormProcessRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*production.Process, error) {
	var model models.ProcessModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return r.load(ctx, &model)
}

// FindAllForTenant finds processes for a tenant with filtering and pagination.
// Supports Filters["active"] (bool) and Filters["bom_id"] (uuid).
func (r *GormProcessRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]production.Process, error) {
	var rows []models.ProcessModel
	if err := paginate(r.filtered(ctx, tenantID, filter), filter, ProcessSortFields).Find(&rows).Error; err != nil {
		return nil, err
	}

	processes := make([]production.Process, 0, len(rows))
	for i := range rows {
		p, err := r.load(ctx, &rows[i])
		if err != nil {
			return nil, err
		}
		processes = append(processes, *p)
	}
	return processes, nil
}

// CountForTenant counts processes matching the filter
func (r *GormProcessRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error) {
	var count int64
	if err := r.filtered(ctx, tenantID, filter).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Save creates or updates a process and replaces its steps.
// Step membership is saved with the BOM lines and route operations.
func (r *GormProcessRepository) Save(ctx context.Context, process *production.Process) error {
	model, steps := models.ProcessModelFromDomain(process)
	keep := make([]uuid.UUID, len(steps))
	for i, s := range steps {
		keep[i] = s.ID
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(model).Error; err != nil {
			return err
		}
		return replaceChildren(tx, "process_id", process.ID, keep, steps)
	})
}

func (r *GormProcessRepository) filtered(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) *gorm.DB {
	query := r.db.WithContext(ctx).Model(&models.ProcessModel{}).Where("tenant_id = ?", tenantID)
	if filter.Search != "" {
		query = query.Where("LOWER(name) LIKE ?", likePattern(filter.Search))
	}
	if active, ok := filter.Filters["active"].(bool); ok {
		query = query.Where("active = ?", active)
	}
	if bomID, ok := filter.Filters["bom_id"].(uuid.UUID); ok {
		query = query.Where("bom_id = ?", bomID)
	}
	return query
}

func (r *GormProcessRepository) load(ctx context.Context, model *models.ProcessModel) (*production.Process, error) {
	db := r.db.WithContext(ctx)

	var steps []models.StepModel
	if err := db.Where("process_id = ?", model.ID).Order("sequence ASC").Find(&steps).Error; err != nil {
		return nil, err
	}
	if len(steps) == 0 {
		return model.ToDomain(nil, nil, nil), nil
	}

	stepIDs := make([]uuid.UUID, len(steps))
	for i, s := range steps {
		stepIDs[i] = s.ID
	}
	var lines []models.BomLineModel
	if err := db.Where("step_id IN ?", stepIDs).Order("kind ASC, position ASC").Find(&lines).Error; err != nil {
		return nil, err
	}
	var ops []models.RouteOperationModel
	if err := db.Where("step_id IN ?", stepIDs).Order("sequence ASC").Find(&ops).Error; err != nil {
		return nil, err
	}
	return model.ToDomain(steps, lines, ops), nil
}

var _ production.ProcessRepository = (*GormProcessRepository)(nil)
