package persistence

import (
	"context"

	appcostplan "github.com/erp/manufacturing/internal/application/costplan"
	"github.com/erp/manufacturing/internal/domain/catalog"
	"github.com/erp/manufacturing/internal/domain/costplan"
	"github.com/erp/manufacturing/internal/domain/production"
	"gorm.io/gorm"
)

// GormTransactionScope implements the cost plan TransactionScope using GORM transactions
type GormTransactionScope struct {
	db *gorm.DB
}

// NewGormTransactionScope creates a new GormTransactionScope
func NewGormTransactionScope(db *gorm.DB) *GormTransactionScope {
	return &GormTransactionScope{db: db}
}

// Execute runs fn within a database transaction, rolled back when fn fails
func (s *GormTransactionScope) Execute(ctx context.Context, fn func(repos appcostplan.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormTransactionalRepositories{tx: tx})
	})
}

// Autocommit runs fn in its own transaction on a fresh session, so its commit
// does not depend on any transaction the caller may be part of.
func (s *GormTransactionScope) Autocommit(ctx context.Context, fn func(repos appcostplan.TransactionalRepositories) error) error {
	root := s.db.Session(&gorm.Session{NewDB: true, Context: context.WithoutCancel(ctx)})
	return root.Transaction(func(tx *gorm.DB) error {
		return fn(&gormTransactionalRepositories{tx: tx})
	})
}

// gormTransactionalRepositories provides repositories bound to one transaction
type gormTransactionalRepositories struct {
	tx *gorm.DB
}

func (r *gormTransactionalRepositories) PlanRepo() costplan.PlanRepository {
	return NewGormCostPlanRepository(r.tx)
}

func (r *gormTransactionalRepositories) ProductRepo() catalog.ProductRepository {
	return NewGormProductRepository(r.tx)
}

func (r *gormTransactionalRepositories) ProductBomRepo() catalog.ProductBomRepository {
	return NewGormProductBomRepository(r.tx)
}

func (r *gormTransactionalRepositories) BomRepo() production.BomRepository {
	return NewGormBomRepository(r.tx)
}

func (r *gormTransactionalRepositories) RouteRepo() production.RouteRepository {
	return NewGormRouteRepository(r.tx)
}

func (r *gormTransactionalRepositories) ProcessRepo() production.ProcessRepository {
	return NewGormProcessRepository(r.tx)
}

var (
	_ appcostplan.TransactionScope          = (*GormTransactionScope)(nil)
	_ appcostplan.TransactionalRepositories = (*gormTransactionalRepositories)(nil)
)
