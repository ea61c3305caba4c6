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

// GormProductBomRepository implements ProductBomRepository using GORM
type GormProductBomRepository struct {
	db *gorm.DB
}

// NewGormProductBomRepository creates a new GormProductBomRepository
func NewGormProductBomRepository(db *gorm.DB) *GormProductBomRepository {
	return &GormProductBomRepository{db: db}
}

// FindByID finds an association by ID within a tenant
func (r *GormProductBomRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*catalog.ProductBom, error) {
	var model models.ProductBomModel
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

// FindByProduct returns the product's associations ordered by sequence
func (r *GormProductBomRepository) FindByProduct(ctx context.Context, tenantID, productID uuid.UUID) ([]catalog.ProductBom, error) {
	var rows []models.ProductBomModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND product_id = ?", tenantID, productID).
		Order("sequence ASC, created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}

	boms := make([]catalog.ProductBom, len(rows))
	for i := range rows {
		boms[i] = *rows[i].ToDomain()
	}
	return boms, nil
}

// Save creates or updates an association
func (r *GormProductBomRepository) Save(ctx context.Context, pb *catalog.ProductBom) error {
	return r.db.WithContext(ctx).Save(models.ProductBomModelFromDomain(pb)).Error
}

var _ catalog.ProductBomRepository = (*GormProductBomRepository)(nil)
