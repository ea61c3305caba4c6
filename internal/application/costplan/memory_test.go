package costplan

import (
	"context"
	"fmt"
	"runtime/pprof"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/erp/manufacturing/internal/domain/catalog"
	"github.com/erp/manufacturing/internal/domain/costplan"
	"github.com/erp/manufacturing/internal/domain/production"
	"github.com/erp/manufacturing/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// memStore is an in-memory backing store whose Execute rolls back on error
type memStore struct {
	mu          sync.Mutex
	plans       map[uuid.UUID]*costplan.Plan
	products    map[uuid.UUID]*catalog.Product
	productBoms map[uuid.UUID]*catalog.ProductBom
	boms        map[uuid.UUID]*production.Bom
	routes      map[uuid.UUID]*production.Route
	processes   map[uuid.UUID]*production.Process
	seq         int
	autocommits int
	// operation profiling label seen by each Execute
	labels []string
}

func newMemStore() *memStore {
	return &memStore{
		plans:       map[uuid.UUID]*costplan.Plan{},
		products:    map[uuid.UUID]*catalog.Product{},
		productBoms: map[uuid.UUID]*catalog.ProductBom{},
		boms:        map[uuid.UUID]*production.Bom{},
		routes:      map[uuid.UUID]*production.Route{},
		processes:   map[uuid.UUID]*production.Process{},
	}
}

func (s *memStore) Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error {
	label, _ := pprof.Label(ctx, "operation")
	s.mu.Lock()
	s.labels = append(s.labels, label)
	s.mu.Unlock()

	snap := s.snapshot()
	if err := fn(s); err != nil {
		s.restore(snap)
		return err
	}
	return nil
}

func (s *memStore) Autocommit(ctx context.Context, fn func(repos TransactionalRepositories) error) error {
	s.mu.Lock()
	s.autocommits++
	s.mu.Unlock()
	return s.Execute(ctx, fn)
}

func (s *memStore) PlanRepo() costplan.PlanRepository            { return &memPlanRepo{s} }
func (s *memStore) ProductRepo() catalog.ProductRepository       { return &memProductRepo{s} }
func (s *memStore) ProductBomRepo() catalog.ProductBomRepository { return &memProductBomRepo{s} }
func (s *memStore) BomRepo() production.BomRepository            { return &memBomRepo{s} }
func (s *memStore) RouteRepo() production.RouteRepository        { return &memRouteRepo{s} }
func (s *memStore) ProcessRepo() production.ProcessRepository    { return &memProcessRepo{s} }

type memSnapshot struct {
	plans       map[uuid.UUID]*costplan.Plan
	products    map[uuid.UUID]*catalog.Product
	productBoms map[uuid.UUID]*catalog.ProductBom
	boms        map[uuid.UUID]*production.Bom
	routes      map[uuid.UUID]*production.Route
	processes   map[uuid.UUID]*production.Process
	seq         int
}

func (s *memStore) snapshot() memSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := memSnapshot{
		plans:       map[uuid.UUID]*costplan.Plan{},
		products:    map[uuid.UUID]*catalog.Product{},
		productBoms: map[uuid.UUID]*catalog.ProductBom{},
		boms:        map[uuid.UUID]*production.Bom{},
		routes:      map[uuid.UUID]*production.Route{},
		processes:   map[uuid.UUID]*production.Process{},
		seq:         s.seq,
	}
	for k, v := range s.plans {
		snap.plans[k] = clonePlan(v)
	}
	for k, v := range s.products {
		c := *v
		snap.products[k] = &c
	}
	for k, v := range s.productBoms {
		c := *v
		snap.productBoms[k] = &c
	}
	for k, v := range s.boms {
		snap.boms[k] = cloneBom(v)
	}
	for k, v := range s.routes {
		snap.routes[k] = cloneRoute(v)
	}
	for k, v := range s.processes {
		snap.processes[k] = cloneProcess(v)
	}
	return snap
}

func (s *memStore) restore(snap memSnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.plans = snap.plans
	s.products = snap.products
	s.productBoms = snap.productBoms
	s.boms = snap.boms
	s.routes = snap.routes
	s.processes = snap.processes
	s.seq = snap.seq
}

func clonePlan(p *costplan.Plan) *costplan.Plan {
	c := *p
	c.Products = append([]costplan.PlanProductLine(nil), p.Products...)
	c.Operations = append([]costplan.PlanOperationLine(nil), p.Operations...)
	c.Boms = append([]costplan.PlanBomLine(nil), p.Boms...)
	c.ClearDomainEvents()
	return &c
}

func cloneBom(b *production.Bom) *production.Bom {
	c := *b
	c.Inputs = append([]production.BomLine(nil), b.Inputs...)
	c.Outputs = append([]production.BomLine(nil), b.Outputs...)
	c.ClearDomainEvents()
	return &c
}

func cloneRoute(r *production.Route) *production.Route {
	c := *r
	c.Operations = append([]production.RouteOperation(nil), r.Operations...)
	c.ClearDomainEvents()
	return &c
}

func cloneProcess(p *production.Process) *production.Process {
	c := *p
	c.Steps = nil
	for _, st := range p.Steps {
		st.Inputs = append([]uuid.UUID(nil), st.Inputs...)
		st.Outputs = append([]uuid.UUID(nil), st.Outputs...)
		st.Operations = append([]uuid.UUID(nil), st.Operations...)
		c.Steps = append(c.Steps, st)
	}
	c.ClearDomainEvents()
	return &c
}

type memPlanRepo struct{ s *memStore }

func (r *memPlanRepo) FindByIDForTenant(_ context.Context, tenantID, id uuid.UUID) (*costplan.Plan, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.plans[id]
	if !ok || p.TenantID != tenantID {
		return nil, shared.ErrNotFound
	}
	return clonePlan(p), nil
}

func (r *memPlanRepo) FindAllForTenant(_ context.Context, tenantID uuid.UUID, filter shared.Filter) ([]costplan.Plan, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var plans []costplan.Plan
	for _, p := range r.s.plans {
		if p.TenantID != tenantID || !matchesPlanFilter(p, filter) {
			continue
		}
		plans = append(plans, *clonePlan(p))
	}
	sort.Slice(plans, func(i, j int) bool { return plans[i].Number < plans[j].Number })
	return plans, nil
}

func (r *memPlanRepo) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error) {
	plans, err := r.FindAllForTenant(ctx, tenantID, filter)
	return int64(len(plans)), err
}

func matchesPlanFilter(p *costplan.Plan, filter shared.Filter) bool {
	if productID, ok := filter.Filters["product_id"].(uuid.UUID); ok {
		if p.ProductID == nil || *p.ProductID != productID {
			return false
		}
	}
	if filter.Search != "" && !strings.Contains(p.Number+" "+p.Name, filter.Search) {
		return false
	}
	return true
}

func (r *memPlanRepo) Save(_ context.Context, plan *costplan.Plan) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.plans[plan.ID] = clonePlan(plan)
	return nil
}

func (r *memPlanRepo) DeleteForTenant(_ context.Context, tenantID, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.plans[id]
	if !ok || p.TenantID != tenantID {
		return shared.ErrNotFound
	}
	delete(r.s.plans, id)
	return nil
}

func (r *memPlanRepo) DeleteBomLines(_ context.Context, tenantID, planID uuid.UUID, ids []uuid.UUID) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.plans[planID]
	if !ok || p.TenantID != tenantID {
		return 0, nil
	}
	drop := map[uuid.UUID]bool{}
	for _, id := range ids {
		drop[id] = true
	}
	var kept []costplan.PlanBomLine
	var n int64
	for _, l := range p.Boms {
		if drop[l.ID] {
			n++
			continue
		}
		kept = append(kept, l)
	}
	p.Boms = kept
	return n, nil
}

func (r *memPlanRepo) GenerateNumber(_ context.Context, _ uuid.UUID) (string, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.seq++
	return fmt.Sprintf("CP-2026-%05d", r.s.seq), nil
}

type memProductRepo struct{ s *memStore }

func (r *memProductRepo) FindByIDForTenant(_ context.Context, tenantID, id uuid.UUID) (*catalog.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.products[id]
	if !ok || p.TenantID != tenantID {
		return nil, shared.ErrNotFound
	}
	c := *p
	return &c, nil
}

func (r *memProductRepo) FindAllForTenant(_ context.Context, tenantID uuid.UUID, _ shared.Filter) ([]catalog.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var products []catalog.Product
	for _, p := range r.s.products {
		if p.TenantID == tenantID {
			products = append(products, *p)
		}
	}
	return products, nil
}

func (r *memProductRepo) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error) {
	products, err := r.FindAllForTenant(ctx, tenantID, filter)
	return int64(len(products)), err
}

func (r *memProductRepo) ExistsByCode(_ context.Context, tenantID uuid.UUID, code string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, p := range r.s.products {
		if p.TenantID == tenantID && p.Code == code {
			return true, nil
		}
	}
	return false, nil
}

func (r *memProductRepo) Save(_ context.Context, product *catalog.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c := *product
	c.ClearDomainEvents()
	r.s.products[product.ID] = &c
	return nil
}

type memProductBomRepo struct{ s *memStore }

func (r *memProductBomRepo) FindByID(_ context.Context, tenantID, id uuid.UUID) (*catalog.ProductBom, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	pb, ok := r.s.productBoms[id]
	if !ok || pb.TenantID != tenantID {
		return nil, shared.ErrNotFound
	}
	c := *pb
	return &c, nil
}

func (r *memProductBomRepo) FindByProduct(_ context.Context, tenantID, productID uuid.UUID) ([]catalog.ProductBom, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var boms []catalog.ProductBom
	for _, pb := range r.s.productBoms {
		if pb.TenantID == tenantID && pb.ProductID == productID {
			boms = append(boms, *pb)
		}
	}
	sort.Slice(boms, func(i, j int) bool { return boms[i].Sequence < boms[j].Sequence })
	return boms, nil
}

func (r *memProductBomRepo) Save(_ context.Context, pb *catalog.ProductBom) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c := *pb
	r.s.productBoms[pb.ID] = &c
	return nil
}

type memBomRepo struct{ s *memStore }

func (r *memBomRepo) FindByIDForTenant(_ context.Context, tenantID, id uuid.UUID) (*production.Bom, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	b, ok := r.s.boms[id]
	if !ok || b.TenantID != tenantID {
		return nil, shared.ErrNotFound
	}
	return cloneBom(b), nil
}

func (r *memBomRepo) Save(_ context.Context, bom *production.Bom) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.boms[bom.ID] = cloneBom(bom)
	return nil
}

type memRouteRepo struct{ s *memStore }

func (r *memRouteRepo) FindByIDForTenant(_ context.Context, tenantID, id uuid.UUID) (*production.Route, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	rt, ok := r.s.routes[id]
	if !ok || rt.TenantID != tenantID {
		return nil, shared.ErrNotFound
	}
	return cloneRoute(rt), nil
}

func (r *memRouteRepo) Save(_ context.Context, route *production.Route) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.routes[route.ID] = cloneRoute(route)
	return nil
}

type memProcessRepo struct{ s *memStore }

func (r *memProcessRepo) FindByIDForTenant(_ context.Context, tenantID, id uuid.UUID) (*production.Process, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.processes[id]
	if !ok || p.TenantID != tenantID {
		return nil, shared.ErrNotFound
	}
	return cloneProcess(p), nil
}

func (r *memProcessRepo) FindAllForTenant(_ context.Context, tenantID uuid.UUID, _ shared.Filter) ([]production.Process, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var processes []production.Process
	for _, p := range r.s.processes {
		if p.TenantID == tenantID {
			processes = append(processes, *cloneProcess(p))
		}
	}
	return processes, nil
}

func (r *memProcessRepo) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error) {
	processes, err := r.FindAllForTenant(ctx, tenantID, filter)
	return int64(len(processes)), err
}

func (r *memProcessRepo) Save(_ context.Context, process *production.Process) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.processes[process.ID] = cloneProcess(process)
	return nil
}

// keyLocalizer renders messages as "key|arg1|arg2" so tests can assert on keys and arguments
type keyLocalizer struct{}

func (keyLocalizer) Translate(_ context.Context, key string, args ...interface{}) string {
	if key == MsgStepsFieldLabel {
		return "Steps"
	}
	parts := []string{key}
	for _, a := range args {
		parts = append(parts, fmt.Sprint(a))
	}
	return strings.Join(parts, "|")
}

type MockWarningChecker struct {
	mock.Mock
}

func (m *MockWarningChecker) Check(ctx context.Context, tenantID, userID uuid.UUID, key string) (bool, error) {
	args := m.Called(ctx, tenantID, userID, key)
	return args.Bool(0), args.Error(1)
}

type recordingPublisher struct {
	events []shared.DomainEvent
}

func (p *recordingPublisher) Publish(_ context.Context, events ...shared.DomainEvent) error {
	p.events = append(p.events, events...)
	return nil
}

func (p *recordingPublisher) types() []string {
	types := make([]string, len(p.events))
	for i, e := range p.events {
		types[i] = e.EventType()
	}
	return types
}

// fixture holds a tenant with a producible product and a plan costing it
type fixture struct {
	t         *testing.T
	ctx       context.Context
	store     *memStore
	warnings  *MockWarningChecker
	publisher *recordingPublisher
	service   *PlanService
	tenantID  uuid.UUID
	userID    uuid.UUID
	uomID     uuid.UUID
	product   *catalog.Product
	plan      *costplan.Plan
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		t:         t,
		ctx:       context.Background(),
		store:     newMemStore(),
		warnings:  new(MockWarningChecker),
		publisher: &recordingPublisher{},
		tenantID:  uuid.New(),
		userID:    uuid.New(),
		uomID:     uuid.New(),
	}
	f.service = NewPlanService(PlanServiceConfig{
		PlanRepo:       f.store.PlanRepo(),
		ProductRepo:    f.store.ProductRepo(),
		ProductBomRepo: f.store.ProductBomRepo(),
		BomRepo:        f.store.BomRepo(),
		RouteRepo:      f.store.RouteRepo(),
		ProcessRepo:    f.store.ProcessRepo(),
		TxScope:        f.store,
		Warnings:       f.warnings,
		Localizer:      keyLocalizer{},
		EventPublisher: f.publisher,
	})

	f.product = f.newProduct("W1", "Widget", true)

	plan, err := costplan.NewPlan(f.tenantID, "CP-2026-00100", "Widget plan")
	require.NoError(t, err)
	require.NoError(t, plan.SetProduct(f.product))
	require.NoError(t, plan.SetQuantity(decimal.NewFromInt(5)))
	steel := f.newProduct("STEEL", "Steel", false)
	paint := f.newProduct("PAINT", "Paint", false)
	top, err := plan.AddProductLine(costplan.ProductLineSpec{
		ProductID: steel.ID, Quantity: decimal.NewFromInt(2), UomID: f.uomID, CostPrice: decimal.NewFromInt(3),
	})
	require.NoError(t, err)
	_, err = plan.AddProductLine(costplan.ProductLineSpec{
		ProductID: paint.ID, Quantity: decimal.NewFromInt(1), UomID: f.uomID, CostPrice: decimal.NewFromInt(1), ParentID: &top.ID,
	})
	require.NoError(t, err)
	_, err = plan.AddProductLine(costplan.ProductLineSpec{
		ProductID: paint.ID, Quantity: decimal.NewFromInt(4), UomID: f.uomID, CostPrice: decimal.NewFromInt(1),
	})
	require.NoError(t, err)
	_, err = plan.AddOperationLine(costplan.OperationLineSpec{
		Name: "Assemble", WorkCenterCategory: "assembly", Time: decimal.NewFromInt(2), CostPerHour: decimal.NewFromInt(10),
	})
	require.NoError(t, err)
	f.savePlan(plan)
	f.plan = plan

	return f
}

func (f *fixture) newProduct(code, name string, producible bool) *catalog.Product {
	f.t.Helper()
	p, err := catalog.NewProduct(f.tenantID, code, name, f.uomID)
	require.NoError(f.t, err)
	p.SetProducible(producible)
	require.NoError(f.t, f.store.ProductRepo().Save(f.ctx, p))
	return p
}

func (f *fixture) newBom(name string, output *catalog.Product, inputs ...*catalog.Product) *production.Bom {
	f.t.Helper()
	bom, err := production.NewBom(f.tenantID, name)
	require.NoError(f.t, err)
	for _, in := range inputs {
		_, err := bom.AddInput(in.ID, decimal.NewFromInt(1), f.uomID)
		require.NoError(f.t, err)
	}
	_, err = bom.AddOutput(output.ID, decimal.NewFromInt(1), f.uomID)
	require.NoError(f.t, err)
	require.NoError(f.t, f.store.BomRepo().Save(f.ctx, bom))
	return bom
}

func (f *fixture) newRoute(name string) *production.Route {
	f.t.Helper()
	route, err := production.NewRoute(f.tenantID, name, f.uomID)
	require.NoError(f.t, err)
	_, err = route.AddOperation(production.OperationSpec{Name: "Cut", Time: decimal.NewFromInt(1)})
	require.NoError(f.t, err)
	require.NoError(f.t, f.store.RouteRepo().Save(f.ctx, route))
	return route
}

func (f *fixture) associate(product *catalog.Product, bom *production.Bom, route *production.Route, sequence int) *catalog.ProductBom {
	f.t.Helper()
	var routeID *uuid.UUID
	if route != nil {
		id := route.ID
		routeID = &id
	}
	pb, err := catalog.NewProductBom(f.tenantID, product.ID, bom.ID, routeID, sequence)
	require.NoError(f.t, err)
	require.NoError(f.t, f.store.ProductBomRepo().Save(f.ctx, pb))
	return pb
}

func (f *fixture) savePlan(plan *costplan.Plan) {
	f.t.Helper()
	require.NoError(f.t, f.store.PlanRepo().Save(f.ctx, plan))
}

func (f *fixture) reloadPlan() *costplan.Plan {
	f.t.Helper()
	plan, err := f.store.PlanRepo().FindByIDForTenant(f.ctx, f.tenantID, f.plan.ID)
	require.NoError(f.t, err)
	return plan
}

func (f *fixture) productBoms() []catalog.ProductBom {
	f.t.Helper()
	boms, err := f.store.ProductBomRepo().FindByProduct(f.ctx, f.tenantID, f.product.ID)
	require.NoError(f.t, err)
	return boms
}
