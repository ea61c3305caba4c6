package models

import (
	"github.com/erp/manufacturing/internal/domain/production"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BomModel is the persistence model for bills of materials
type BomModel struct {
	TenantAggregateModel
	Name string `gorm:"type:varchar(200);not null"`
}

// TableName returns the table name for GORM
func (BomModel) TableName() string {
	return "boms"
}

// BomLineModel stores both input and output lines of a BOM
type BomLineModel struct {
	ID        uuid.UUID              `gorm:"type:uuid;primary_key"`
	BomID     uuid.UUID              `gorm:"type:uuid;not null;index"`
	Kind      production.BomLineKind `gorm:"type:varchar(10);not null"`
	Position  int                    `gorm:"not null;default:0"`
	ProductID uuid.UUID              `gorm:"type:uuid;not null"`
	Quantity  decimal.Decimal        `gorm:"type:decimal(18,4);not null"`
	UomID     uuid.UUID              `gorm:"type:uuid;not null"`
	StepID    *uuid.UUID             `gorm:"type:uuid;index"`
}

// TableName returns the table name for GORM
func (BomLineModel) TableName() string {
	return "bom_lines"
}

// ToDomain rebuilds a BOM from its row and its lines ordered by position
func (m *BomModel) ToDomain(lines []BomLineModel) *production.Bom {
	bom := &production.Bom{
		TenantAggregateRoot: m.ToTenantAggregateRoot(),
		Name:                m.Name,
	}
	for _, l := range lines {
		line := production.BomLine{
			ID:        l.ID,
			BomID:     l.BomID,
			Kind:      l.Kind,
			ProductID: l.ProductID,
			Quantity:  l.Quantity,
			UomID:     l.UomID,
			StepID:    l.StepID,
		}
		if l.Kind == production.BomLineOutput {
			bom.Outputs = append(bom.Outputs, line)
		} else {
			bom.Inputs = append(bom.Inputs, line)
		}
	}
	return bom
}

// BomModelFromDomain splits a domain BOM into its row and line rows
func BomModelFromDomain(b *production.Bom) (*BomModel, []BomLineModel) {
	m := &BomModel{Name: b.Name}
	m.FromDomainTenantAggregateRoot(b.TenantAggregateRoot)

	lines := make([]BomLineModel, 0, len(b.Inputs)+len(b.Outputs))
	for _, group := range [][]production.BomLine{b.Inputs, b.Outputs} {
		for i, l := range group {
			lines = append(lines, BomLineModel{
				ID:        l.ID,
				BomID:     b.ID,
				Kind:      l.Kind,
				Position:  i,
				ProductID: l.ProductID,
				Quantity:  l.Quantity,
				UomID:     l.UomID,
				StepID:    l.StepID,
			})
		}
	}
	return m, lines
}

// RouteModel is the persistence model for routes
type RouteModel struct {
	TenantAggregateModel
	Name  string    `gorm:"type:varchar(200);not null"`
	UomID uuid.UUID `gorm:"type:uuid;not null"`
}

// TableName returns the table name for GORM
func (RouteModel) TableName() string {
	return "routes"
}

// RouteOperationModel is the persistence model for route operations
type RouteOperationModel struct {
	ID                 uuid.UUID       `gorm:"type:uuid;primary_key"`
	RouteID            uuid.UUID       `gorm:"type:uuid;not null;index"`
	Sequence           int             `gorm:"not null"`
	Name               string          `gorm:"type:varchar(200);not null"`
	WorkCenterCategory string          `gorm:"type:varchar(100)"`
	Time               decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	TimeUom            string          `gorm:"type:varchar(10);not null"`
	Quantity           decimal.Decimal `gorm:"type:decimal(18,4);not null;default:1"`
	StepID             *uuid.UUID      `gorm:"type:uuid;index"`
}

// TableName returns the table name for GORM
func (RouteOperationModel) TableName() string {
	return "route_operations"
}

// ToDomain rebuilds a route from its row and operations ordered by sequence
func (m *RouteModel) ToDomain(ops []RouteOperationModel) *production.Route {
	route := &production.Route{
		TenantAggregateRoot: m.ToTenantAggregateRoot(),
		Name:                m.Name,
		UomID:               m.UomID,
	}
	for _, o := range ops {
		route.Operations = append(route.Operations, production.RouteOperation{
			ID:                 o.ID,
			RouteID:            o.RouteID,
			Sequence:           o.Sequence,
			Name:               o.Name,
			WorkCenterCategory: o.WorkCenterCategory,
			Time:               o.Time,
			TimeUom:            o.TimeUom,
			Quantity:           o.Quantity,
			StepID:             o.StepID,
		})
	}
	return route
}

// RouteModelFromDomain splits a domain route into its row and operation rows
func RouteModelFromDomain(r *production.Route) (*RouteModel, []RouteOperationModel) {
	m := &RouteModel{Name: r.Name, UomID: r.UomID}
	m.FromDomainTenantAggregateRoot(r.TenantAggregateRoot)

	ops := make([]RouteOperationModel, len(r.Operations))
	for i, o := range r.Operations {
		ops[i] = RouteOperationModel{
			ID:                 o.ID,
			RouteID:            r.ID,
			Sequence:           o.Sequence,
			Name:               o.Name,
			WorkCenterCategory: o.WorkCenterCategory,
			Time:               o.Time,
			TimeUom:            o.TimeUom,
			Quantity:           o.Quantity,
			StepID:             o.StepID,
		}
	}
	return m, ops
}

// ProcessModel is the persistence model for production processes
type ProcessModel struct {
	TenantAggregateModel
	Name    string    `gorm:"type:varchar(200);not null"`
	UomID   uuid.UUID `gorm:"type:uuid;not null"`
	BomID   uuid.UUID `gorm:"type:uuid;not null;index"`
	RouteID uuid.UUID `gorm:"type:uuid;not null;index"`
	Active  bool      `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (ProcessModel) TableName() string {
	return "processes"
}

// StepModel is the persistence model for process steps.
// Step membership of BOM lines and operations is stored on those rows.
type StepModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key"`
	ProcessID uuid.UUID `gorm:"type:uuid;not null;index"`
	Name      string    `gorm:"type:varchar(200);not null"`
	Sequence  int       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (StepModel) TableName() string {
	return "process_steps"
}

// ToDomain rebuilds a process. Step members are looked up in the given
// BOM lines and route operations by step id.
func (m *ProcessModel) ToDomain(steps []StepModel, lines []BomLineModel, ops []RouteOperationModel) *production.Process {
	process := &production.Process{
		TenantAggregateRoot: m.ToTenantAggregateRoot(),
		Name:                m.Name,
		UomID:               m.UomID,
		BomID:               m.BomID,
		RouteID:             m.RouteID,
		Active:              m.Active,
	}
	for _, s := range steps {
		step := production.Step{ID: s.ID, ProcessID: s.ProcessID, Name: s.Name, Sequence: s.Sequence}
		for _, l := range lines {
			if l.StepID == nil || *l.StepID != s.ID {
				continue
			}
			if l.Kind == production.BomLineOutput {
				step.Outputs = append(step.Outputs, l.ID)
			} else {
				step.Inputs = append(step.Inputs, l.ID)
			}
		}
		for _, o := range ops {
			if o.StepID != nil && *o.StepID == s.ID {
				step.Operations = append(step.Operations, o.ID)
			}
		}
		process.Steps = append(process.Steps, step)
	}
	return process
}

// ProcessModelFromDomain splits a domain process into its row and step rows
func ProcessModelFromDomain(p *production.Process) (*ProcessModel, []StepModel) {
	m := &ProcessModel{
		Name:    p.Name,
		UomID:   p.UomID,
		BomID:   p.BomID,
		RouteID: p.RouteID,
		Active:  p.Active,
	}
	m.FromDomainTenantAggregateRoot(p.TenantAggregateRoot)

	steps := make([]StepModel, len(p.Steps))
	for i, s := range p.Steps {
		steps[i] = StepModel{ID: s.ID, ProcessID: p.ID, Name: s.Name, Sequence: s.Sequence}
	}
	return m, steps
}
