package costplan

import (
	"errors"
	"testing"

	"github.com/erp/manufacturing/internal/domain/catalog"
	"github.com/erp/manufacturing/internal/domain/production"
	"github.com/erp/manufacturing/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestProduct(t *testing.T, tenantID uuid.UUID, producible bool) *catalog.Product {
	t.Helper()
	p, err := catalog.NewProduct(tenantID, "W1", "Widget", uuid.New())
	require.NoError(t, err)
	p.SetProducible(producible)
	return p
}

func newTestPlan(t *testing.T) *Plan {
	t.Helper()
	plan, err := NewPlan(uuid.New(), "CP-2026-00001", "Widget plan")
	require.NoError(t, err)
	return plan
}

func assertCode(t *testing.T, err error, code string) {
	t.Helper()
	var de *shared.DomainError
	require.True(t, errors.As(err, &de), "expected domain error, got %v", err)
	assert.Equal(t, code, de.Code)
}

func TestNewPlan(t *testing.T) {
	plan := newTestPlan(t)
	assert.Equal(t, PlanStateDraft, plan.State)
	assert.True(t, plan.Quantity.Equal(decimal.NewFromInt(1)))
	assert.Equal(t, "CP-2026-00001", plan.RecName())
	require.Len(t, plan.GetDomainEvents(), 1)

	_, err := NewPlan(uuid.New(), "", "x")
	assertCode(t, err, "INVALID_NUMBER")
}

func TestPlan_RecNameFallsBackToName(t *testing.T) {
	plan := newTestPlan(t)
	plan.Number = ""
	assert.Equal(t, "Widget plan", plan.RecName())
}

func TestPlan_SetProduct(t *testing.T) {
	plan := newTestPlan(t)
	product := newTestProduct(t, plan.TenantID, true)
	bomID, routeID, processID := uuid.New(), uuid.New(), uuid.New()
	plan.BomID, plan.RouteID, plan.ProcessID = &bomID, &routeID, &processID
	plan.Boms = []PlanBomLine{NewPlanBomLine(uuid.New(), nil)}
	plan.Quantity = decimal.Zero

	require.NoError(t, plan.SetProduct(product))

	require.NotNil(t, plan.ProductID)
	assert.Equal(t, product.ID, *plan.ProductID)
	require.NotNil(t, plan.UomID)
	assert.Equal(t, product.DefaultUomID, *plan.UomID)
	assert.True(t, plan.Quantity.Equal(decimal.NewFromInt(1)))
	assert.Nil(t, plan.BomID)
	assert.Nil(t, plan.RouteID)
	assert.Nil(t, plan.ProcessID)
	assert.Empty(t, plan.Boms)
}

func TestPlan_SetProductRejectsNonProducible(t *testing.T) {
	plan := newTestPlan(t)
	err := plan.SetProduct(newTestProduct(t, plan.TenantID, false))
	assertCode(t, err, "PRODUCT_NOT_PRODUCIBLE")
	assert.Nil(t, plan.ProductID)
}

func TestPlan_ApplyProcess(t *testing.T) {
	plan := newTestPlan(t)
	product := newTestProduct(t, plan.TenantID, true)
	require.NoError(t, plan.SetProduct(product))

	t.Run("uom mismatch", func(t *testing.T) {
		process, err := production.NewProcess(plan.TenantID, "P", uuid.New(), uuid.New(), uuid.New())
		require.NoError(t, err)
		assertCode(t, plan.ApplyProcess(process), "INVALID_PROCESS_UOM")
		assert.Nil(t, plan.ProcessID)
	})

	t.Run("takes bom and route", func(t *testing.T) {
		process, err := production.NewProcess(plan.TenantID, "P", *plan.UomID, uuid.New(), uuid.New())
		require.NoError(t, err)
		require.NoError(t, plan.ApplyProcess(process))
		assert.Equal(t, process.ID, *plan.ProcessID)
		assert.Equal(t, process.BomID, *plan.BomID)
		assert.Equal(t, process.RouteID, *plan.RouteID)
		assert.True(t, plan.FieldStates()[FieldBom].Readonly)
		assert.True(t, plan.FieldStates()[FieldRoute].Readonly)
	})
}

func TestPlan_ReadonlyBomAndRoute(t *testing.T) {
	plan := newTestPlan(t)
	bomID := uuid.New()
	require.NoError(t, plan.ChangeBom(&bomID))
	assert.False(t, plan.FieldStates()[FieldBom].Readonly)

	processID := uuid.New()
	plan.ProcessID = &processID

	other := uuid.New()
	assertCode(t, plan.ChangeBom(&other), "FIELD_READONLY")
	assertCode(t, plan.ChangeRoute(&other), "FIELD_READONLY")
	assert.Equal(t, bomID, *plan.BomID)

	same := bomID
	assert.NoError(t, plan.ChangeBom(&same))

	plan.ClearProcess()
	assert.NoError(t, plan.ChangeRoute(&other))
}

func TestPlan_LinkProcess(t *testing.T) {
	plan := newTestPlan(t)
	require.NoError(t, plan.SetProduct(newTestProduct(t, plan.TenantID, true)))
	plan.ClearDomainEvents()

	process, err := production.NewProcess(plan.TenantID, "P", *plan.UomID, uuid.New(), uuid.New())
	require.NoError(t, err)
	require.NoError(t, plan.LinkProcess(process))

	assert.Equal(t, process.ID, *plan.ProcessID)
	require.Len(t, plan.GetDomainEvents(), 1)
	evt, ok := plan.GetDomainEvents()[0].(*PlanProcessAssignedEvent)
	require.True(t, ok)
	assert.Equal(t, process.ID, evt.ProcessID)
}

func TestPlan_ReplaceBomLines(t *testing.T) {
	plan := newTestPlan(t)
	a := NewPlanBomLine(uuid.New(), nil)
	b := NewPlanBomLine(uuid.New(), nil)
	plan.Boms = []PlanBomLine{a, b}

	c := NewPlanBomLine(uuid.New(), nil)
	removed := plan.ReplaceBomLines([]PlanBomLine{b, c})

	require.Len(t, removed, 1)
	assert.Equal(t, a.ID, removed[0].ID)
	assert.Equal(t, []PlanBomLine{b, c}, plan.Boms)
	assert.Empty(t, plan.ReplaceBomLines(plan.Boms))
}

func TestPlan_Compute(t *testing.T) {
	plan := newTestPlan(t)
	plan.Quantity = decimal.NewFromInt(3)

	top, err := plan.AddProductLine(ProductLineSpec{
		ProductID: uuid.New(), Quantity: decimal.NewFromInt(2), UomID: uuid.New(), CostPrice: decimal.RequireFromString("1.5"),
	})
	require.NoError(t, err)
	_, err = plan.AddProductLine(ProductLineSpec{
		ProductID: uuid.New(), Quantity: decimal.NewFromInt(10), UomID: uuid.New(), CostPrice: decimal.NewFromInt(100), ParentID: &top.ID,
	})
	require.NoError(t, err)
	_, err = plan.AddOperationLine(OperationLineSpec{
		Name: "Assemble", Time: decimal.RequireFromString("0.5"), CostPerHour: decimal.NewFromInt(20),
	})
	require.NoError(t, err)

	require.NoError(t, plan.Compute())

	assert.Equal(t, PlanStateComputed, plan.State)
	assert.Equal(t, "3", plan.MaterialCost.String())
	assert.Equal(t, "10", plan.OperationCost.String())
	assert.Equal(t, "13", plan.TotalCost.String())
	assert.Equal(t, "4.3333", plan.UnitCost.String())

	plan.Quantity = decimal.Zero
	require.NoError(t, plan.Compute())
	assert.True(t, plan.UnitCost.IsZero())

	require.NoError(t, plan.MarkDone())
	assertCode(t, plan.Compute(), "INVALID_STATE")
	_, err = plan.AddOperationLine(OperationLineSpec{Name: "x"})
	assertCode(t, err, "INVALID_STATE")
}

func TestPlan_AddProductLineRejectsUnknownParent(t *testing.T) {
	plan := newTestPlan(t)
	parent := uuid.New()
	_, err := plan.AddProductLine(ProductLineSpec{ProductID: uuid.New(), UomID: uuid.New(), ParentID: &parent})
	assertCode(t, err, "INVALID_PARENT")
}

func TestPlan_CopyNeverCarriesProcess(t *testing.T) {
	plan := newTestPlan(t)
	require.NoError(t, plan.SetProduct(newTestProduct(t, plan.TenantID, true)))
	process, err := production.NewProcess(plan.TenantID, "P", *plan.UomID, uuid.New(), uuid.New())
	require.NoError(t, err)
	require.NoError(t, plan.ApplyProcess(process))

	top, err := plan.AddProductLine(ProductLineSpec{ProductID: uuid.New(), Quantity: decimal.NewFromInt(1), UomID: uuid.New()})
	require.NoError(t, err)
	_, err = plan.AddProductLine(ProductLineSpec{ProductID: uuid.New(), Quantity: decimal.NewFromInt(1), UomID: uuid.New(), ParentID: &top.ID})
	require.NoError(t, err)
	plan.Boms = []PlanBomLine{NewPlanBomLine(uuid.New(), nil)}

	dup, err := plan.Copy("CP-2026-00002")
	require.NoError(t, err)

	assert.NotEqual(t, plan.ID, dup.ID)
	assert.Equal(t, "CP-2026-00002", dup.Number)
	assert.Nil(t, dup.ProcessID)
	assert.Equal(t, *plan.BomID, *dup.BomID)
	assert.Equal(t, PlanStateDraft, dup.State)
	require.Len(t, dup.Products, 2)
	assert.NotEqual(t, plan.Products[0].ID, dup.Products[0].ID)
	require.NotNil(t, dup.Products[1].ParentID)
	assert.Equal(t, dup.Products[0].ID, *dup.Products[1].ParentID)
	require.Len(t, dup.Boms, 1)
	assert.NotEqual(t, plan.Boms[0].ID, dup.Boms[0].ID)
	assert.NotNil(t, plan.ProcessID)
}
