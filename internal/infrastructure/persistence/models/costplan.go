package models

import (
	"github.com/erp/manufacturing/internal/domain/costplan"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CostPlanModel is the persistence model for cost plans
type CostPlanModel struct {
	TenantAggregateModel
	Number        string             `gorm:"type:varchar(50);not null;index"`
	Name          string             `gorm:"type:varchar(200)"`
	ProductID     *uuid.UUID         `gorm:"type:uuid;index"`
	Quantity      decimal.Decimal    `gorm:"type:decimal(18,4);not null;default:1"`
	UomID         *uuid.UUID         `gorm:"type:uuid"`
	BomID         *uuid.UUID         `gorm:"type:uuid"`
	RouteID       *uuid.UUID         `gorm:"type:uuid"`
	ProcessID     *uuid.UUID         `gorm:"type:uuid;index"`
	State         costplan.PlanState `gorm:"type:varchar(20);not null;default:'draft'"`
	MaterialCost  decimal.Decimal    `gorm:"type:decimal(18,4);not null;default:0"`
	OperationCost decimal.Decimal    `gorm:"type:decimal(18,4);not null;default:0"`
	TotalCost     decimal.Decimal    `gorm:"type:decimal(18,4);not null;default:0"`
	UnitCost      decimal.Decimal    `gorm:"type:decimal(18,4);not null;default:0"`
}

// TableName returns the table name for GORM
func (CostPlanModel) TableName() string {
	return "cost_plans"
}

// CostPlanProductModel is the persistence model for material lines
type CostPlanProductModel struct {
	ID        uuid.UUID       `gorm:"type:uuid;primary_key"`
	PlanID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID uuid.UUID       `gorm:"type:uuid;not null"`
	Name      string          `gorm:"type:varchar(200)"`
	Quantity  decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	UomID     uuid.UUID       `gorm:"type:uuid;not null"`
	CostPrice decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	ParentID  *uuid.UUID      `gorm:"type:uuid;index"`
	Sequence  int             `gorm:"not null"`
}

// TableName returns the table name for GORM
func (CostPlanProductModel) TableName() string {
	return "cost_plan_products"
}

// CostPlanOperationModel is the persistence model for operation lines
type CostPlanOperationModel struct {
	ID                 uuid.UUID       `gorm:"type:uuid;primary_key"`
	PlanID             uuid.UUID       `gorm:"type:uuid;not null;index"`
	Name               string          `gorm:"type:varchar(200);not null"`
	WorkCenterCategory string          `gorm:"type:varchar(100)"`
	Time               decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	TimeUom            string          `gorm:"type:varchar(10);not null"`
	Quantity           decimal.Decimal `gorm:"type:decimal(18,4);not null;default:1"`
	CostPerHour        decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Sequence           int             `gorm:"not null"`
}

// TableName returns the table name for GORM
func (CostPlanOperationModel) TableName() string {
	return "cost_plan_operations"
}

// CostPlanBomModel is the persistence model for derived BOM lines
type CostPlanBomModel struct {
	ID        uuid.UUID  `gorm:"type:uuid;primary_key"`
	PlanID    uuid.UUID  `gorm:"type:uuid;not null;index"`
	Position  int        `gorm:"not null;default:0"`
	ProductID uuid.UUID  `gorm:"type:uuid;not null"`
	BomID     *uuid.UUID `gorm:"type:uuid"`
}

// TableName returns the table name for GORM
func (CostPlanBomModel) TableName() string {
	return "cost_plan_boms"
}

// CostPlanRows holds the rows of one cost plan
type CostPlanRows struct {
	Plan       CostPlanModel
	Products   []CostPlanProductModel
	Operations []CostPlanOperationModel
	Boms       []CostPlanBomModel
}

// ToDomain rebuilds the cost plan aggregate
func (r *CostPlanRows) ToDomain() *costplan.Plan {
	m := &r.Plan
	plan := &costplan.Plan{
		TenantAggregateRoot: m.ToTenantAggregateRoot(),
		Number:              m.Number,
		Name:                m.Name,
		ProductID:           m.ProductID,
		Quantity:            m.Quantity,
		UomID:               m.UomID,
		BomID:               m.BomID,
		RouteID:             m.RouteID,
		ProcessID:           m.ProcessID,
		State:               m.State,
		MaterialCost:        m.MaterialCost,
		OperationCost:       m.OperationCost,
		TotalCost:           m.TotalCost,
		UnitCost:            m.UnitCost,
	}
	for _, p := range r.Products {
		plan.Products = append(plan.Products, costplan.PlanProductLine{
			ID:        p.ID,
			ProductID: p.ProductID,
			Name:      p.Name,
			Quantity:  p.Quantity,
			UomID:     p.UomID,
			CostPrice: p.CostPrice,
			ParentID:  p.ParentID,
			Sequence:  p.Sequence,
		})
	}
	for _, o := range r.Operations {
		plan.Operations = append(plan.Operations, costplan.PlanOperationLine{
			ID:                 o.ID,
			Name:               o.Name,
			WorkCenterCategory: o.WorkCenterCategory,
			Time:               o.Time,
			TimeUom:            o.TimeUom,
			Quantity:           o.Quantity,
			CostPerHour:        o.CostPerHour,
			Sequence:           o.Sequence,
		})
	}
	for _, b := range r.Boms {
		plan.Boms = append(plan.Boms, costplan.PlanBomLine{ID: b.ID, ProductID: b.ProductID, BomID: b.BomID})
	}
	return plan
}

// CostPlanRowsFromDomain splits a cost plan into its rows
func CostPlanRowsFromDomain(p *costplan.Plan) *CostPlanRows {
	rows := &CostPlanRows{
		Plan: CostPlanModel{
			Number:        p.Number,
			Name:          p.Name,
			ProductID:     p.ProductID,
			Quantity:      p.Quantity,
			UomID:         p.UomID,
			BomID:         p.BomID,
			RouteID:       p.RouteID,
			ProcessID:     p.ProcessID,
			State:         p.State,
			MaterialCost:  p.MaterialCost,
			OperationCost: p.OperationCost,
			TotalCost:     p.TotalCost,
			UnitCost:      p.UnitCost,
		},
	}
	rows.Plan.FromDomainTenantAggregateRoot(p.TenantAggregateRoot)

	for _, l := range p.Products {
		rows.Products = append(rows.Products, CostPlanProductModel{
			ID:        l.ID,
			PlanID:    p.ID,
			ProductID: l.ProductID,
			Name:      l.Name,
			Quantity:  l.Quantity,
			UomID:     l.UomID,
			CostPrice: l.CostPrice,
			ParentID:  l.ParentID,
			Sequence:  l.Sequence,
		})
	}
	for _, l := range p.Operations {
		rows.Operations = append(rows.Operations, CostPlanOperationModel{
			ID:                 l.ID,
			PlanID:             p.ID,
			Name:               l.Name,
			WorkCenterCategory: l.WorkCenterCategory,
			Time:               l.Time,
			TimeUom:            l.TimeUom,
			Quantity:           l.Quantity,
			CostPerHour:        l.CostPerHour,
			Sequence:           l.Sequence,
		})
	}
	for i, l := range p.Boms {
		rows.Boms = append(rows.Boms, CostPlanBomModel{
			ID:        l.ID,
			PlanID:    p.ID,
			Position:  i,
			ProductID: l.ProductID,
			BomID:     l.BomID,
		})
	}
	return rows
}
