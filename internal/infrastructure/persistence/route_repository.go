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

// GormRouteRepository implements RouteRepository using GORM
type GormRouteRepository struct {
	db *gorm.DB
}

// NewGormRouteRepository creates a new GormRouteRepository
func NewGormRouteRepository(db *gorm.DB) *GormRouteRepository {
	return &GormRouteRepository{db: db}
}

// FindByIDForTenant loads a route with its operations
func (r *GormRouteRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*production.Route, error) {
	db := r.db.WithContext(ctx)

	var model models.RouteModel
	if err := db.Where("tenant_id = ? AND id = ?", tenantID, id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}

	var ops []models.RouteOperationModel
	if err := db.Where("route_id = ?", id).Order("sequence ASC").Find(&ops).Error; err != nil {
		return nil, err
	}
	return model.ToDomain(ops), nil
}

// Save creates or updates a route and replaces its operations
func (r *GormRouteRepository) Save(ctx context.Context, route *production.Route) error {
	model, ops := models.RouteModelFromDomain(route)
	keep := make([]uuid.UUID, len(ops))
	for i, o := range ops {
		keep[i] = o.ID
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(model).Error; err != nil {
			return err
		}
		return replaceChildren(tx, "route_id", route.ID, keep, ops)
	})
}

var _ production.RouteRepository = (*GormRouteRepository)(nil)
