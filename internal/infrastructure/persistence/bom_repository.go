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

// GormBomRepository implements BomRepository using GORM
type GormBomRepository struct {
	db *gorm.DB
}

// NewGormBomRepository creates a new GormBomRepository
func NewGormBomRepository(db *gorm.DB) *GormBomRepository {
	return &GormBomRepository{db: db}
}

// FindByIDForTenant loads a BOM with its lines
func (r *GormBomRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*production.Bom, error) {
	db := r.db.WithContext(ctx)

	var model models.BomModel
	if err := db.Where("tenant_id = ? AND id = ?", tenantID, id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}

	var lines []models.BomLineModel
	if err := db.Where("bom_id = ?", id).Order("kind ASC, position ASC").Find(&lines).Error; err != nil {
		return nil, err
	}
	return model.ToDomain(lines), nil
}

// Save creates or updates a BOM and replaces its lines
func (r *GormBomRepository) Save(ctx context.Context, bom *production.Bom) error {
	model, lines := models.BomModelFromDomain(bom)
	keep := make([]uuid.UUID, len(lines))
	for i, l := range lines {
		keep[i] = l.ID
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(model).Error; err != nil {
			return err
		}
		return replaceChildren(tx, "bom_id", bom.ID, keep, lines)
	})
}

var _ production.BomRepository = (*GormBomRepository)(nil)
