package costplan

import (
	"sort"
	"strings"

	"github.com/erp/manufacturing/internal/domain/catalog"
	"github.com/erp/manufacturing/internal/domain/production"
	"github.com/erp/manufacturing/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PlanState represents the lifecycle state of a cost plan
type PlanState string

const (
	PlanStateDraft    PlanState = "draft"
	PlanStateComputed PlanState = "computed"
	PlanStateDone     PlanState = "done"
)

// IsValid checks if the state is a known plan state
func (s PlanState) IsValid() bool {
	switch s {
	case PlanStateDraft, PlanStateComputed, PlanStateDone:
		return true
	}
	return false
}

// Field names exposed through FieldStates
const (
	FieldBom   = "bom"
	FieldRoute = "route"
)

// FieldState describes how a plan field may be edited
type FieldState struct {
	Readonly bool `json:"readonly"`
}

// Plan is a costing estimate for manufacturing one product
type Plan struct {
	shared.TenantAggregateRoot
	Number        string
	Name          string
	ProductID     *uuid.UUID
	Quantity      decimal.Decimal
	UomID         *uuid.UUID
	BomID         *uuid.UUID
	RouteID       *uuid.UUID
	ProcessID     *uuid.UUID
	State         PlanState
	Products      []PlanProductLine
	Operations    []PlanOperationLine
	Boms          []PlanBomLine
	MaterialCost  decimal.Decimal
	OperationCost decimal.Decimal
	TotalCost     decimal.Decimal
	UnitCost      decimal.Decimal
}

// NewPlan creates a new draft cost plan
func NewPlan(tenantID uuid.UUID, number, name string) (*Plan, error) {
	number = strings.TrimSpace(number)
	if number == "" {
		return nil, shared.NewDomainError("INVALID_NUMBER", "Cost plan number cannot be empty")
	}
	if len(name) > 200 {
		return nil, shared.NewDomainError("INVALID_NAME", "Cost plan name cannot exceed 200 characters")
	}

	plan := &Plan{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Number:              number,
		Name:                strings.TrimSpace(name),
		Quantity:            decimal.NewFromInt(1),
		State:               PlanStateDraft,
		MaterialCost:        decimal.Zero,
		OperationCost:       decimal.Zero,
		TotalCost:           decimal.Zero,
		UnitCost:            decimal.Zero,
	}
	plan.AddDomainEvent(NewPlanCreatedEvent(plan))

	return plan, nil
}

// RecName returns the display name of the plan
func (p *Plan) RecName() string {
	if p.Number != "" {
		return p.Number
	}
	return p.Name
}

// HasProduct reports whether a product is set
func (p *Plan) HasProduct() bool {
	return p.ProductID != nil
}

// HasProcess reports whether a process is linked
func (p *Plan) HasProcess() bool {
	return p.ProcessID != nil
}

// FieldStates returns the edit state of the plan's production fields
func (p *Plan) FieldStates() map[string]FieldState {
	readonly := p.HasProcess()
	return map[string]FieldState{
		FieldBom:   {Readonly: readonly},
		FieldRoute: {Readonly: readonly},
	}
}

// SetProduct changes the product and resets everything derived from the previous one.
// The unit follows the product default unit and a zero quantity becomes one.
func (p *Plan) SetProduct(product *catalog.Product) error {
	if err := p.ensureEditable(); err != nil {
		return err
	}
	if product != nil && !product.Producible {
		return shared.NewDomainError("PRODUCT_NOT_PRODUCIBLE", "Product "+product.RecName()+" is not producible")
	}

	p.ProcessID = nil
	p.BomID = nil
	p.RouteID = nil
	p.Boms = nil

	if product == nil {
		p.ProductID = nil
		p.UomID = nil
	} else {
		id := product.ID
		uomID := product.DefaultUomID
		p.ProductID = &id
		p.UomID = &uomID
		if p.Quantity.IsZero() {
			p.Quantity = decimal.NewFromInt(1)
		}
	}
	p.Touch()
	return nil
}

// SetQuantity sets the quantity the plan is costed for
func (p *Plan) SetQuantity(quantity decimal.Decimal) error {
	if err := p.ensureEditable(); err != nil {
		return err
	}
	if quantity.IsNegative() {
		return shared.NewDomainError("INVALID_QUANTITY", "Quantity cannot be negative")
	}
	p.Quantity = quantity
	p.Touch()
	return nil
}

// SetName sets the descriptive name
func (p *Plan) SetName(name string) error {
	if len(name) > 200 {
		return shared.NewDomainError("INVALID_NAME", "Cost plan name cannot exceed 200 characters")
	}
	p.Name = strings.TrimSpace(name)
	p.Touch()
	return nil
}

// ChangeBom sets the plan BOM. Rejected while a process is linked.
func (p *Plan) ChangeBom(bomID *uuid.UUID) error {
	if sameRef(p.BomID, bomID) {
		return nil
	}
	if p.HasProcess() {
		return shared.NewDomainError("FIELD_READONLY", "The BOM cannot be changed while a process is linked")
	}
	p.BomID = copyRef(bomID)
	p.Touch()
	return nil
}

// ChangeRoute sets the plan route. Rejected while a process is linked.
func (p *Plan) ChangeRoute(routeID *uuid.UUID) error {
	if sameRef(p.RouteID, routeID) {
		return nil
	}
	if p.HasProcess() {
		return shared.NewDomainError("FIELD_READONLY", "The route cannot be changed while a process is linked")
	}
	p.RouteID = copyRef(routeID)
	p.Touch()
	return nil
}

// ApplyProcess selects a process and takes its BOM and route
func (p *Plan) ApplyProcess(process *production.Process) error {
	if err := p.checkProcessUom(process); err != nil {
		return err
	}
	processID, bomID, routeID := process.ID, process.BomID, process.RouteID
	p.ProcessID = &processID
	p.BomID = &bomID
	p.RouteID = &routeID
	p.Touch()
	return nil
}

// ClearProcess unlinks the process, keeping the current BOM and route
func (p *Plan) ClearProcess() {
	p.ProcessID = nil
	p.Touch()
}

// AttachBom sets the BOM resolved while converting the plan into a process
func (p *Plan) AttachBom(bomID uuid.UUID) {
	p.BomID = &bomID
	p.Touch()
}

// AttachRoute sets the route resolved while converting the plan into a process
func (p *Plan) AttachRoute(routeID uuid.UUID) {
	p.RouteID = &routeID
	p.Touch()
}

// LinkProcess links a process created from this plan
func (p *Plan) LinkProcess(process *production.Process) error {
	if err := p.checkProcessUom(process); err != nil {
		return err
	}
	id := process.ID
	p.ProcessID = &id
	p.IncrementVersion()
	p.AddDomainEvent(NewPlanProcessAssignedEvent(p, process.ID))
	return nil
}

func (p *Plan) checkProcessUom(process *production.Process) error {
	if process == nil {
		return shared.NewDomainError("INVALID_PROCESS", "Process is required")
	}
	if p.UomID == nil || *p.UomID != process.UomID {
		return shared.NewDomainError("INVALID_PROCESS_UOM", "The process unit must match the cost plan unit")
	}
	return nil
}

// ReplaceBomLines swaps the derived BOM lines and returns the previous lines
// that are not part of the new collection
func (p *Plan) ReplaceBomLines(lines []PlanBomLine) []PlanBomLine {
	keep := make(map[uuid.UUID]struct{}, len(lines))
	for _, l := range lines {
		keep[l.ID] = struct{}{}
	}
	var removed []PlanBomLine
	for _, l := range p.Boms {
		if _, ok := keep[l.ID]; !ok {
			removed = append(removed, l)
		}
	}
	p.Boms = lines
	p.Touch()
	return removed
}

// AddProductLine appends a material line
func (p *Plan) AddProductLine(spec ProductLineSpec) (*PlanProductLine, error) {
	if err := p.ensureEditable(); err != nil {
		return nil, err
	}
	line, err := newProductLine(spec, (len(p.Products)+1)*10)
	if err != nil {
		return nil, err
	}
	if line.ParentID != nil && p.findProductLine(*line.ParentID) == nil {
		return nil, shared.NewDomainError("INVALID_PARENT", "Parent line does not belong to the cost plan")
	}
	p.Products = append(p.Products, *line)
	p.Touch()
	return &p.Products[len(p.Products)-1], nil
}

// AddOperationLine appends an operation line
func (p *Plan) AddOperationLine(spec OperationLineSpec) (*PlanOperationLine, error) {
	if err := p.ensureEditable(); err != nil {
		return nil, err
	}
	line, err := newOperationLine(spec, (len(p.Operations)+1)*10)
	if err != nil {
		return nil, err
	}
	p.Operations = append(p.Operations, *line)
	p.Touch()
	return &p.Operations[len(p.Operations)-1], nil
}

// ClearProductLines removes every material line
func (p *Plan) ClearProductLines() error {
	if err := p.ensureEditable(); err != nil {
		return err
	}
	p.Products = nil
	p.Touch()
	return nil
}

// ClearOperationLines removes every operation line
func (p *Plan) ClearOperationLines() error {
	if err := p.ensureEditable(); err != nil {
		return err
	}
	p.Operations = nil
	p.Touch()
	return nil
}

// TopLevelProducts returns the material lines without a parent, by sequence
func (p *Plan) TopLevelProducts() []PlanProductLine {
	var lines []PlanProductLine
	for _, l := range p.Products {
		if l.ParentID == nil {
			lines = append(lines, l)
		}
	}
	sort.SliceStable(lines, func(i, j int) bool { return lines[i].Sequence < lines[j].Sequence })
	return lines
}

// SortedOperations returns the operation lines by sequence
func (p *Plan) SortedOperations() []PlanOperationLine {
	lines := make([]PlanOperationLine, len(p.Operations))
	copy(lines, p.Operations)
	sort.SliceStable(lines, func(i, j int) bool { return lines[i].Sequence < lines[j].Sequence })
	return lines
}

// Compute recalculates the plan costs and marks the plan as computed
func (p *Plan) Compute() error {
	if p.State == PlanStateDone {
		return shared.NewDomainError("INVALID_STATE", "Cannot compute a cost plan that is done")
	}

	material := decimal.Zero
	for _, l := range p.TopLevelProducts() {
		material = material.Add(l.Cost())
	}
	operation := decimal.Zero
	for _, l := range p.Operations {
		operation = operation.Add(l.Cost())
	}

	p.MaterialCost = material.Round(costPrecision)
	p.OperationCost = operation.Round(costPrecision)
	p.TotalCost = material.Add(operation).Round(costPrecision)
	if p.Quantity.IsZero() {
		p.UnitCost = decimal.Zero
	} else {
		p.UnitCost = material.Add(operation).Div(p.Quantity).Round(costPrecision)
	}
	p.State = PlanStateComputed
	p.IncrementVersion()
	return nil
}

// MarkDone closes the plan
func (p *Plan) MarkDone() error {
	if p.State != PlanStateComputed {
		return shared.NewDomainError("INVALID_STATE", "Only computed cost plans can be closed")
	}
	p.State = PlanStateDone
	p.IncrementVersion()
	return nil
}

// Copy duplicates the plan under a new number. The copy never carries the process.
func (p *Plan) Copy(number string) (*Plan, error) {
	dup, err := NewPlan(p.TenantID, number, p.Name)
	if err != nil {
		return nil, err
	}
	dup.ProductID = copyRef(p.ProductID)
	dup.Quantity = p.Quantity
	dup.UomID = copyRef(p.UomID)
	dup.BomID = copyRef(p.BomID)
	dup.RouteID = copyRef(p.RouteID)
	dup.ProcessID = nil

	ids := make(map[uuid.UUID]uuid.UUID, len(p.Products))
	for _, l := range p.Products {
		ids[l.ID] = uuid.New()
	}
	for _, l := range p.Products {
		l.ID = ids[l.ID]
		if l.ParentID != nil {
			parent := ids[*l.ParentID]
			l.ParentID = &parent
		}
		dup.Products = append(dup.Products, l)
	}
	for _, l := range p.Operations {
		l.ID = uuid.New()
		dup.Operations = append(dup.Operations, l)
	}
	for _, l := range p.Boms {
		l.ID = uuid.New()
		l.BomID = copyRef(l.BomID)
		dup.Boms = append(dup.Boms, l)
	}
	return dup, nil
}

func (p *Plan) ensureEditable() error {
	if p.State == PlanStateDone {
		return shared.NewDomainError("INVALID_STATE", "Cannot modify a cost plan that is done")
	}
	return nil
}

func (p *Plan) findProductLine(id uuid.UUID) *PlanProductLine {
	for i := range p.Products {
		if p.Products[i].ID == id {
			return &p.Products[i]
		}
	}
	return nil
}

func sameRef(a, b *uuid.UUID) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func copyRef(id *uuid.UUID) *uuid.UUID {
	if id == nil {
		return nil
	}
	v := *id
	return &v
}
