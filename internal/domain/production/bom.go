package production

import (
	"strings"

	"github.com/erp/manufacturing/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BomLineKind tells whether a line is consumed or produced
type BomLineKind string

const (
	BomLineInput  BomLineKind = "input"
	BomLineOutput BomLineKind = "output"
)

// BomLine is a material consumed (input) or produced (output) by a BOM
type BomLine struct {
	ID        uuid.UUID
	BomID     uuid.UUID
	Kind      BomLineKind
	ProductID uuid.UUID
	Quantity  decimal.Decimal
	UomID     uuid.UUID
	StepID    *uuid.UUID
}

// Bom is a bill of materials
type Bom struct {
	shared.TenantAggregateRoot
	Name    string
	Inputs  []BomLine
	Outputs []BomLine
}

// NewBom creates an empty bill of materials
func NewBom(tenantID uuid.UUID, name string) (*Bom, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "BOM name cannot be empty")
	}
	bom := &Bom{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Name:                name,
	}
	return bom, nil
}

// AddInput appends a consumed material
func (b *Bom) AddInput(productID uuid.UUID, quantity decimal.Decimal, uomID uuid.UUID) (*BomLine, error) {
	line, err := b.newLine(BomLineInput, productID, quantity, uomID)
	if err != nil {
		return nil, err
	}
	b.Inputs = append(b.Inputs, *line)
	return &b.Inputs[len(b.Inputs)-1], nil
}

// AddOutput appends a produced material
func (b *Bom) AddOutput(productID uuid.UUID, quantity decimal.Decimal, uomID uuid.UUID) (*BomLine, error) {
	line, err := b.newLine(BomLineOutput, productID, quantity, uomID)
	if err != nil {
		return nil, err
	}
	b.Outputs = append(b.Outputs, *line)
	return &b.Outputs[len(b.Outputs)-1], nil
}

func (b *Bom) newLine(kind BomLineKind, productID uuid.UUID, quantity decimal.Decimal, uomID uuid.UUID) (*BomLine, error) {
	if productID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "BOM line product is required")
	}
	if uomID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_UOM", "BOM line unit is required")
	}
	if quantity.IsNegative() {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "BOM line quantity cannot be negative")
	}
	return &BomLine{
		ID:        uuid.New(),
		BomID:     b.ID,
		Kind:      kind,
		ProductID: productID,
		Quantity:  quantity,
		UomID:     uomID,
	}, nil
}

// InputIDs returns the ids of the input lines in order
func (b *Bom) InputIDs() []uuid.UUID {
	return lineIDs(b.Inputs)
}

// OutputIDs returns the ids of the output lines in order
func (b *Bom) OutputIDs() []uuid.UUID {
	return lineIDs(b.Outputs)
}

// AssignStep marks every line of the BOM as owned by the step
func (b *Bom) AssignStep(stepID uuid.UUID) {
	for i := range b.Inputs {
		id := stepID
		b.Inputs[i].StepID = &id
	}
	for i := range b.Outputs {
		id := stepID
		b.Outputs[i].StepID = &id
	}
	b.IncrementVersion()
}

func lineIDs(lines []BomLine) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(lines))
	for _, l := range lines {
		ids = append(ids, l.ID)
	}
	return ids
}
