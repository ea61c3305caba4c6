package persistence

import (
	"context"
	"errors"

	"github.com/erp/manufacturing/internal/domain/catalog"
	"github.com/erp/manufacturing/internal/domain/shared"
	"github.com/erp/manufacturing/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormUomRepository implements UomRepository using GORM
type GormUomRepository struct {
	db *gorm.DB
}

// NewGormUomRepository creates a new GormUomRepository
func NewGormUomRepository(db *gorm.DB) *GormUomRepository {
	return &GormUomRepository{db: db}
}

// FindByIDForTenant finds a unit by ID within a tenant
func (r *GormUomRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*catalog.Uom, error) {
	var model models.UomModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAllForTenant finds all units for a tenant ordered by name
func (r *GormUomRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]catalog.Uom, error) {
	var rows []models.UomModel
	query := r.db.WithContext(ctx).Where("tenant_id = ?", tenantID)
	if filter.Search != "" {
		query = query.Where("LOWER(name) LIKE ? OR LOWER(symbol) LIKE ?", likePattern(filter.Search), likePattern(filter.Search))
	}
	if err := query.Order("name ASC").Find(&rows).Error; err != nil {
		return nil, err
	}

	uoms := make([]catalog.Uom, len(rows))
	for i := range rows {
		uoms[i] = *rows[i].ToDomain()
	}
	return uoms, nil
}

// Save creates or updates a unit
func (r *GormUomRepository) Save(ctx context.Context, uom *catalog.Uom) error {
	return r.db.WithContext(ctx).Save(models.UomModelFromDomain(uom)).Error
}

var _ catalog.UomRepository = (*GormUomRepository)(nil)
