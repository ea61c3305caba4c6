package costplan

import (
	"context"

	"github.com/erp/manufacturing/internal/domain/catalog"
	"github.com/erp/manufacturing/internal/domain/production"
	"github.com/google/uuid"
)

// BomSource gives read access to the records walked by DefaultBomLines
type BomSource interface {
	Product(ctx context.Context, id uuid.UUID) (*catalog.Product, error)
	ProductBoms(ctx context.Context, productID uuid.UUID) ([]catalog.ProductBom, error)
	Bom(ctx context.Context, id uuid.UUID) (*production.Bom, error)
}

// DefaultBomLines walks the inputs of bom. Every producible input product yields
// one line with the first BOM of that product, and the walk recurses into it.
// Products are listed once, in discovery order.
func DefaultBomLines(ctx context.Context, src BomSource, bom *production.Bom) ([]PlanBomLine, error) {
	if bom == nil {
		return nil, nil
	}
	seen := make(map[uuid.UUID]struct{})
	visited := map[uuid.UUID]struct{}{bom.ID: {}}
	var lines []PlanBomLine
	if err := collectBomLines(ctx, src, bom, seen, visited, &lines); err != nil {
		return nil, err
	}
	return lines, nil
}

func collectBomLines(
	ctx context.Context,
	src BomSource,
	bom *production.Bom,
	seen, visited map[uuid.UUID]struct{},
	lines *[]PlanBomLine,
) error {
	for _, input := range bom.Inputs {
		if _, ok := seen[input.ProductID]; ok {
			continue
		}
		product, err := src.Product(ctx, input.ProductID)
		if err != nil {
			return err
		}
		if !product.Producible {
			continue
		}
		seen[product.ID] = struct{}{}

		productBoms, err := src.ProductBoms(ctx, product.ID)
		if err != nil {
			return err
		}
		if len(productBoms) == 0 {
			*lines = append(*lines, NewPlanBomLine(product.ID, nil))
			continue
		}
		first := productBoms[0]
		*lines = append(*lines, NewPlanBomLine(product.ID, &first.BomID))

		if _, ok := visited[first.BomID]; ok {
			continue
		}
		visited[first.BomID] = struct{}{}
		child, err := src.Bom(ctx, first.BomID)
		if err != nil {
			return err
		}
		if err := collectBomLines(ctx, src, child, seen, visited, lines); err != nil {
			return err
		}
	}
	return nil
}
