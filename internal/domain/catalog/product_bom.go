package catalog

import (
	"github.com/erp/manufacturing/internal/domain/shared"
	"github.com/google/uuid"
)

// ProductBom associates a product with a bill of materials and, optionally,
// the route and process used to manufacture it
type ProductBom struct {
	shared.BaseEntity
	TenantID  uuid.UUID
	ProductID uuid.UUID
	Sequence  int
	BomID     uuid.UUID
	RouteID   *uuid.UUID
	ProcessID *uuid.UUID
}

// NewProductBom creates a new product-bom association
func NewProductBom(tenantID, productID, bomID uuid.UUID, routeID *uuid.UUID, sequence int) (*ProductBom, error) {
	if productID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product is required")
	}
	if bomID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_BOM", "BOM is required")
	}
	return &ProductBom{
		BaseEntity: shared.NewBaseEntity(),
		TenantID:   tenantID,
		ProductID:  productID,
		Sequence:   sequence,
		BomID:      bomID,
		RouteID:    routeID,
	}, nil
}

// Matches reports whether the association references exactly this bom and route
func (pb *ProductBom) Matches(bomID uuid.UUID, routeID *uuid.UUID) bool {
	return pb.BomID == bomID && sameRef(pb.RouteID, routeID)
}

// HasProcess reports whether a process is linked to the association
func (pb *ProductBom) HasProcess() bool {
	return pb.ProcessID != nil
}

// AssignRoute sets the route of the association
func (pb *ProductBom) AssignRoute(routeID uuid.UUID) {
	pb.RouteID = &routeID
	pb.Touch()
}

// AssignProcess links a process to the association
func (pb *ProductBom) AssignProcess(processID uuid.UUID) {
	pb.ProcessID = &processID
	pb.Touch()
}

func sameRef(a, b *uuid.UUID) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// FirstWithProcess returns the first association, by sequence, that carries a process
func FirstWithProcess(boms []ProductBom) *ProductBom {
	var found *ProductBom
	for i := range boms {
		if !boms[i].HasProcess() {
			continue
		}
		if found == nil || boms[i].Sequence < found.Sequence {
			found = &boms[i]
		}
	}
	return found
}

// NextSequence returns the sequence for a new association appended after boms
func NextSequence(boms []ProductBom) int {
	next := 10
	for _, b := range boms {
		if b.Sequence >= next {
			next = b.Sequence + 10
		}
	}
	return next
}
