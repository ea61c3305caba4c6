package catalog

import (
	"context"
	"errors"

	"github.com/erp/manufacturing/internal/domain/catalog"
	"github.com/erp/manufacturing/internal/domain/production"
	"github.com/erp/manufacturing/internal/domain/shared"
	"github.com/google/uuid"
)

// CatalogService handles units, products and their BOM associations
type CatalogService struct {
	uomRepo        catalog.UomRepository
	productRepo    catalog.ProductRepository
	productBomRepo catalog.ProductBomRepository
	bomRepo        production.BomRepository
	routeRepo      production.RouteRepository
}

// NewCatalogService creates a new CatalogService
func NewCatalogService(
	uomRepo catalog.UomRepository,
	productRepo catalog.ProductRepository,
	productBomRepo catalog.ProductBomRepository,
	bomRepo production.BomRepository,
	routeRepo production.RouteRepository,
) *CatalogService {
	return &CatalogService{
		uomRepo:        uomRepo,
		productRepo:    productRepo,
		productBomRepo: productBomRepo,
		bomRepo:        bomRepo,
		routeRepo:      routeRepo,
	}
}

// CreateUom creates a new unit of measure
func (s *CatalogService) CreateUom(ctx context.Context, tenantID uuid.UUID, req CreateUomRequest) (*UomResponse, error) {
	uom, err := catalog.NewUom(tenantID, req.Name, req.Symbol, req.Category)
	if err != nil {
		return nil, err
	}
	if err := s.uomRepo.Save(ctx, uom); err != nil {
		return nil, err
	}
	response := ToUomResponse(uom)
	return &response, nil
}

// ListUoms lists the tenant's units of measure
func (s *CatalogService) ListUoms(ctx context.Context, tenantID uuid.UUID) ([]UomResponse, error) {
	filter := shared.DefaultFilter()
	filter.PageSize = 1000
	filter.OrderBy = "name"
	filter.OrderDir = "asc"

	uoms, err := s.uomRepo.FindAllForTenant(ctx, tenantID, filter)
	if err != nil {
		return nil, err
	}
	responses := make([]UomResponse, len(uoms))
	for i := range uoms {
		responses[i] = ToUomResponse(&uoms[i])
	}
	return responses, nil
}

// CreateProduct creates a new product
func (s *CatalogService) CreateProduct(ctx context.Context, tenantID uuid.UUID, req CreateProductRequest) (*ProductResponse, error) {
	if req.Code != "" {
		exists, err := s.productRepo.ExistsByCode(ctx, tenantID, req.Code)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, shared.NewDomainError("ALREADY_EXISTS", "Product with this code already exists")
		}
	}

	if _, err := s.uomRepo.FindByIDForTenant(ctx, tenantID, req.DefaultUomID); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("INVALID_UOM", "Unit of measure not found")
		}
		return nil, err
	}

	product, err := catalog.NewProduct(tenantID, req.Code, req.Name, req.DefaultUomID)
	if err != nil {
		return nil, err
	}
	if req.Producible {
		product.SetProducible(true)
	}
	if req.CostPrice != nil {
		if err := product.SetCostPrice(*req.CostPrice); err != nil {
			return nil, err
		}
	}

	if err := s.productRepo.Save(ctx, product); err != nil {
		return nil, err
	}

	response := ToProductResponse(product)
	return &response, nil
}

// GetProduct retrieves a product by ID
func (s *CatalogService) GetProduct(ctx context.Context, tenantID, productID uuid.UUID) (*ProductResponse, error) {
	product, err := s.findProduct(ctx, tenantID, productID)
	if err != nil {
		return nil, err
	}
	response := ToProductResponse(product)
	return &response, nil
}

// ListProducts lists products with pagination
func (s *CatalogService) ListProducts(ctx context.Context, tenantID uuid.UUID, filter ProductListFilter) ([]ProductResponse, int64, error) {
	domainFilter := shared.DefaultFilter()
	if filter.Page > 0 {
		domainFilter.Page = filter.Page
	}
	if filter.PageSize > 0 {
		domainFilter.PageSize = filter.PageSize
	}
	domainFilter.Search = filter.Search
	domainFilter.OrderBy = "code"
	domainFilter.OrderDir = "asc"

	products, err := s.productRepo.FindAllForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.productRepo.CountForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]ProductResponse, len(products))
	for i := range products {
		responses[i] = ToProductResponse(&products[i])
	}
	return responses, total, nil
}

// AddProductBom associates a BOM (and optionally a route) with a product
func (s *CatalogService) AddProductBom(ctx context.Context, tenantID, productID uuid.UUID, req AddProductBomRequest) (*ProductBomResponse, error) {
	if _, err := s.findProduct(ctx, tenantID, productID); err != nil {
		return nil, err
	}
	if _, err := s.bomRepo.FindByIDForTenant(ctx, tenantID, req.BomID); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("INVALID_BOM", "BOM not found")
		}
		return nil, err
	}
	if req.RouteID != nil {
		if _, err := s.routeRepo.FindByIDForTenant(ctx, tenantID, *req.RouteID); err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return nil, shared.NewDomainError("INVALID_ROUTE", "Route not found")
			}
			return nil, err
		}
	}

	existing, err := s.productBomRepo.FindByProduct(ctx, tenantID, productID)
	if err != nil {
		return nil, err
	}
	sequence := catalog.NextSequence(existing)
	if req.Sequence != nil {
		sequence = *req.Sequence
	}

	pb, err := catalog.NewProductBom(tenantID, productID, req.BomID, req.RouteID, sequence)
	if err != nil {
		return nil, err
	}
	if err := s.productBomRepo.Save(ctx, pb); err != nil {
		return nil, err
	}

	response := ToProductBomResponse(pb)
	return &response, nil
}

// ListProductBoms lists the BOM associations of a product by sequence
func (s *CatalogService) ListProductBoms(ctx context.Context, tenantID, productID uuid.UUID) ([]ProductBomResponse, error) {
	if _, err := s.findProduct(ctx, tenantID, productID); err != nil {
		return nil, err
	}
	boms, err := s.productBomRepo.FindByProduct(ctx, tenantID, productID)
	if err != nil {
		return nil, err
	}
	responses := make([]ProductBomResponse, len(boms))
	for i := range boms {
		responses[i] = ToProductBomResponse(&boms[i])
	}
	return responses, nil
}

func (s *CatalogService) findProduct(ctx context.Context, tenantID, productID uuid.UUID) (*catalog.Product, error) {
	product, err := s.productRepo.FindByIDForTenant(ctx, tenantID, productID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("PRODUCT_NOT_FOUND", "Product not found")
		}
		return nil, err
	}
	return product, nil
}
