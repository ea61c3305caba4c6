package costplan

import (
	"strings"

	"github.com/erp/manufacturing/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const costPrecision = 4

// PlanProductLine is a material line of a cost plan.
// Lines form a tree through ParentID; only top-level lines are costed.
type PlanProductLine struct {
	ID        uuid.UUID
	ProductID uuid.UUID
	Name      string
	Quantity  decimal.Decimal
	UomID     uuid.UUID
	CostPrice decimal.Decimal
	ParentID  *uuid.UUID
	Sequence  int
}

// ProductLineSpec describes a material line to add
type ProductLineSpec struct {
	ProductID uuid.UUID
	Name      string
	Quantity  decimal.Decimal
	UomID     uuid.UUID
	CostPrice decimal.Decimal
	ParentID  *uuid.UUID
}

func newProductLine(spec ProductLineSpec, sequence int) (*PlanProductLine, error) {
	if spec.ProductID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Line product is required")
	}
	if spec.UomID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_UOM", "Line unit is required")
	}
	if spec.Quantity.IsNegative() {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Line quantity cannot be negative")
	}
	if spec.CostPrice.IsNegative() {
		return nil, shared.NewDomainError("INVALID_PRICE", "Line cost price cannot be negative")
	}
	return &PlanProductLine{
		ID:        uuid.New(),
		ProductID: spec.ProductID,
		Name:      strings.TrimSpace(spec.Name),
		Quantity:  spec.Quantity,
		UomID:     spec.UomID,
		CostPrice: spec.CostPrice,
		ParentID:  copyRef(spec.ParentID),
		Sequence:  sequence,
	}, nil
}

// Cost returns quantity times cost price
func (l PlanProductLine) Cost() decimal.Decimal {
	return l.Quantity.Mul(l.CostPrice)
}

// PlanOperationLine is an operation line of a cost plan
type PlanOperationLine struct {
	ID                 uuid.UUID
	Name               string
	WorkCenterCategory string
	Time               decimal.Decimal
	TimeUom            string
	Quantity           decimal.Decimal
	CostPerHour        decimal.Decimal
	Sequence           int
}

// OperationLineSpec describes an operation line to add
type OperationLineSpec struct {
	Name               string
	WorkCenterCategory string
	Time               decimal.Decimal
	TimeUom            string
	Quantity           decimal.Decimal
	CostPerHour        decimal.Decimal
}

func newOperationLine(spec OperationLineSpec, sequence int) (*PlanOperationLine, error) {
	name := strings.TrimSpace(spec.Name)
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Operation name cannot be empty")
	}
	if spec.Time.IsNegative() {
		return nil, shared.NewDomainError("INVALID_TIME", "Operation time cannot be negative")
	}
	if spec.CostPerHour.IsNegative() {
		return nil, shared.NewDomainError("INVALID_PRICE", "Operation cost per hour cannot be negative")
	}
	quantity := spec.Quantity
	if quantity.IsZero() {
		quantity = decimal.NewFromInt(1)
	}
	timeUom := spec.TimeUom
	if timeUom == "" {
		timeUom = "h"
	}
	return &PlanOperationLine{
		ID:                 uuid.New(),
		Name:               name,
		WorkCenterCategory: spec.WorkCenterCategory,
		Time:               spec.Time,
		TimeUom:            timeUom,
		Quantity:           quantity,
		CostPerHour:        spec.CostPerHour,
		Sequence:           sequence,
	}, nil
}

// Cost returns time times cost per hour
func (l PlanOperationLine) Cost() decimal.Decimal {
	return l.Time.Mul(l.CostPerHour)
}

// PlanBomLine records the BOM used for a producible input product
type PlanBomLine struct {
	ID        uuid.UUID
	ProductID uuid.UUID
	BomID     *uuid.UUID
}

// NewPlanBomLine creates a derived BOM line
func NewPlanBomLine(productID uuid.UUID, bomID *uuid.UUID) PlanBomLine {
	return PlanBomLine{
		ID:        uuid.New(),
		ProductID: productID,
		BomID:     copyRef(bomID),
	}
}
