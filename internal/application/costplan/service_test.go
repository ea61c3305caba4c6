package costplan

import (
	"strings"
	"testing"

	"github.com/erp/manufacturing/internal/domain/costplan"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlanService_Create(t *testing.T) {
	f := newFixture(t)
	bolt := f.newProduct("BOLT", "Bolt", false)
	qty := decimal.NewFromInt(10)
	price := decimal.RequireFromString("0.25")

	resp, err := f.service.Create(f.ctx, f.tenantID, CreatePlanRequest{
		Name:      "Bolted widget",
		ProductID: &f.product.ID,
		Quantity:  &qty,
		Products: []ProductLineRequest{{
			ProductID: bolt.ID,
			Quantity:  decimal.NewFromInt(8),
			UomID:     f.uomID,
			CostPrice: &price,
		}},
		Operations: []OperationLineRequest{{Name: "Fasten", Time: decimal.NewFromInt(1), CostPerHour: decimal.NewFromInt(12)}},
	})
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(resp.Number, "CP-2026-"))
	assert.Equal(t, "Bolted widget", resp.Name)
	assert.Equal(t, f.product.ID, *resp.ProductID)
	assert.Equal(t, f.uomID, *resp.UomID)
	assert.True(t, resp.Quantity.Equal(qty))
	assert.Len(t, resp.Products, 1)
	require.Len(t, resp.Operations, 1)
	assert.Equal(t, "h", resp.Operations[0].TimeUom)
	assert.Equal(t, string(costplan.PlanStateDraft), resp.State)
	assert.Contains(t, f.publisher.types(), costplan.EventTypePlanCreated)

	stored, err := f.store.PlanRepo().FindByIDForTenant(f.ctx, f.tenantID, resp.ID)
	require.NoError(t, err)
	assert.Equal(t, resp.Number, stored.Number)
}

func TestPlanService_CreateWithBomDerivesBomLines(t *testing.T) {
	f := newFixture(t)
	setup := f.newProcessSetup()

	resp, err := f.service.Create(f.ctx, f.tenantID, CreatePlanRequest{
		ProductID: &f.product.ID,
		BomID:     &setup.bom.ID,
	})
	require.NoError(t, err)

	assert.Equal(t, setup.bom.ID, *resp.BomID)
	require.Len(t, resp.Boms, 1)
	assert.Equal(t, setup.subBom.ID, *resp.Boms[0].BomID)
}

func TestPlanService_CreateRejectsNonProducible(t *testing.T) {
	f := newFixture(t)
	raw := f.newProduct("RAW", "Raw", false)

	_, err := f.service.Create(f.ctx, f.tenantID, CreatePlanRequest{ProductID: &raw.ID})
	requireDomainCode(t, err, "PRODUCT_NOT_PRODUCIBLE")
}

func TestPlanService_GetByIDNotFound(t *testing.T) {
	f := newFixture(t)

	_, err := f.service.GetByID(f.ctx, f.tenantID, uuid.New())
	requireDomainCode(t, err, "PLAN_NOT_FOUND")

	_, err = f.service.GetByID(f.ctx, uuid.New(), f.plan.ID)
	requireDomainCode(t, err, "PLAN_NOT_FOUND")
}

func TestPlanService_List(t *testing.T) {
	f := newFixture(t)
	other := f.newProduct("W2", "Gadget", true)
	_, err := f.service.Create(f.ctx, f.tenantID, CreatePlanRequest{Name: "Gadget plan", ProductID: &other.ID})
	require.NoError(t, err)

	all, total, err := f.service.List(f.ctx, f.tenantID, PlanListFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)
	assert.Equal(t, int64(2), total)

	filtered, total, err := f.service.List(f.ctx, f.tenantID, PlanListFilter{ProductID: f.product.ID.String()})
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, f.plan.ID, filtered[0].ID)

	_, _, err = f.service.List(f.ctx, f.tenantID, PlanListFilter{ProductID: "not-a-uuid"})
	requireDomainCode(t, err, "INVALID_INPUT")
}

func TestPlanService_UpdateAssignsProcess(t *testing.T) {
	f := newFixture(t)
	setup := f.newProcessSetup()

	resp, err := f.service.Update(f.ctx, f.tenantID, f.plan.ID, UpdatePlanRequest{ProcessID: &setup.process.ID})
	require.NoError(t, err)

	assert.Equal(t, setup.process.ID, *resp.ProcessID)
	assert.Equal(t, setup.bom.ID, *resp.BomID)
	assert.Equal(t, setup.route.ID, *resp.RouteID)
	assert.True(t, resp.FieldStates[costplan.FieldBom].Readonly)
	assert.Zero(t, f.store.autocommits)
	assert.Equal(t, f.plan.Version+1, resp.Version)
}

func TestPlanService_UpdateClearsProcess(t *testing.T) {
	f := newFixture(t)
	setup := f.newProcessSetup()
	plan := f.reloadPlan()
	require.NoError(t, plan.ApplyProcess(setup.process))
	f.savePlan(plan)

	// a nil process id leaves the link untouched
	name := "Renamed"
	resp, err := f.service.Update(f.ctx, f.tenantID, plan.ID, UpdatePlanRequest{Name: &name})
	require.NoError(t, err)
	require.NotNil(t, resp.ProcessID)

	_, err = f.service.Update(f.ctx, f.tenantID, plan.ID, UpdatePlanRequest{
		ProcessID:    &setup.process.ID,
		ClearProcess: true,
	})
	requireDomainCode(t, err, "INVALID_INPUT")

	resp, err = f.service.Update(f.ctx, f.tenantID, plan.ID, UpdatePlanRequest{ClearProcess: true})
	require.NoError(t, err)
	assert.Nil(t, resp.ProcessID)
	assert.Nil(t, f.reloadPlan().ProcessID)
	assert.False(t, resp.FieldStates[costplan.FieldBom].Readonly)
}

func TestPlanService_UpdateRejectsBomChangeWhileProcessLinked(t *testing.T) {
	f := newFixture(t)
	setup := f.newProcessSetup()
	plan := f.reloadPlan()
	require.NoError(t, plan.ApplyProcess(setup.process))
	f.savePlan(plan)

	otherBom := f.newBom("Other BOM", f.product)
	_, err := f.service.Update(f.ctx, f.tenantID, plan.ID, UpdatePlanRequest{BomID: &otherBom.ID})
	requireDomainCode(t, err, "FIELD_READONLY")

	// unchanged values are accepted
	name := "Renamed"
	resp, err := f.service.Update(f.ctx, f.tenantID, plan.ID, UpdatePlanRequest{Name: &name, BomID: &setup.bom.ID})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", resp.Name)
}

func TestPlanService_UpdateReplacesLines(t *testing.T) {
	f := newFixture(t)
	bolt := f.newProduct("BOLT", "Bolt", false)
	products := []ProductLineRequest{{ProductID: bolt.ID, Quantity: decimal.NewFromInt(1), UomID: f.uomID}}
	operations := []OperationLineRequest{}

	resp, err := f.service.Update(f.ctx, f.tenantID, f.plan.ID, UpdatePlanRequest{
		Products:   &products,
		Operations: &operations,
	})
	require.NoError(t, err)

	require.Len(t, resp.Products, 1)
	assert.Equal(t, bolt.ID, resp.Products[0].ProductID)
	assert.Empty(t, resp.Operations)
}

func TestPlanService_Compute(t *testing.T) {
	f := newFixture(t)

	resp, err := f.service.Compute(f.ctx, f.tenantID, f.plan.ID)
	require.NoError(t, err)

	assert.True(t, resp.MaterialCost.Equal(decimal.NewFromInt(10)), resp.MaterialCost.String())
	assert.True(t, resp.OperationCost.Equal(decimal.NewFromInt(20)), resp.OperationCost.String())
	assert.True(t, resp.TotalCost.Equal(decimal.NewFromInt(30)), resp.TotalCost.String())
	assert.True(t, resp.UnitCost.Equal(decimal.NewFromInt(6)), resp.UnitCost.String())
	assert.Equal(t, costplan.PlanStateComputed, f.reloadPlan().State)
}

func TestPlanService_Delete(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.service.Delete(f.ctx, f.tenantID, f.plan.ID))
	_, err := f.service.GetByID(f.ctx, f.tenantID, f.plan.ID)
	requireDomainCode(t, err, "PLAN_NOT_FOUND")

	err = f.service.Delete(f.ctx, f.tenantID, f.plan.ID)
	requireDomainCode(t, err, "PLAN_NOT_FOUND")
}

func TestPlanService_CopyDropsProcess(t *testing.T) {
	f := newFixture(t)
	setup := f.newProcessSetup()
	plan := f.reloadPlan()
	require.NoError(t, plan.LinkProcess(setup.process))
	f.savePlan(plan)

	copies, err := f.service.Copy(f.ctx, f.tenantID, []uuid.UUID{plan.ID})
	require.NoError(t, err)
	require.Len(t, copies, 1)

	dup := copies[0]
	assert.NotEqual(t, plan.ID, dup.ID)
	assert.NotEqual(t, plan.Number, dup.Number)
	assert.Nil(t, dup.ProcessID)
	assert.Len(t, dup.Products, len(plan.Products))
	assert.Len(t, dup.Operations, len(plan.Operations))

	original := f.reloadPlan()
	require.NotNil(t, original.ProcessID)
	assert.Equal(t, setup.process.ID, *original.ProcessID)
}

func TestPlanService_CopyRollsBackOnMissingPlan(t *testing.T) {
	f := newFixture(t)

	_, err := f.service.Copy(f.ctx, f.tenantID, []uuid.UUID{f.plan.ID, uuid.New()})
	requireDomainCode(t, err, "PLAN_NOT_FOUND")

	_, total, err := f.service.List(f.ctx, f.tenantID, PlanListFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
}
