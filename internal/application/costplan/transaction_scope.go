package costplan

import (
	"context"

	"github.com/erp/manufacturing/internal/domain/catalog"
	"github.com/erp/manufacturing/internal/domain/costplan"
	"github.com/erp/manufacturing/internal/domain/production"
)

// TransactionScope provides transactional access to the repositories touched by cost plans.
type TransactionScope interface {
	// Execute runs fn within a database transaction.
	// If fn returns an error, the transaction is rolled back.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error

	// Autocommit runs fn in its own transaction, committed on success
	// independently of any transaction the caller may have open.
	Autocommit(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides repositories bound to one transaction.
type TransactionalRepositories interface {
	PlanRepo() costplan.PlanRepository
	ProductRepo() catalog.ProductRepository
	ProductBomRepo() catalog.ProductBomRepository
	BomRepo() production.BomRepository
	RouteRepo() production.RouteRepository
	ProcessRepo() production.ProcessRepository
}
