package event

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/erp/manufacturing/internal/domain/costplan"
	"github.com/erp/manufacturing/internal/domain/production"
	"github.com/erp/manufacturing/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// recordingHandler implements EventHandler for testing
type recordingHandler struct {
	eventTypes []string
	err        error
	panicWith  any
	mu         sync.Mutex
	handled    []shared.DomainEvent
}

func (h *recordingHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	if h.panicWith != nil {
		panic(h.panicWith)
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.handled = append(h.handled, event)
	return h.err
}

func (h *recordingHandler) EventTypes() []string {
	return h.eventTypes
}

func (h *recordingHandler) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.handled)
}

func processCreated(t *testing.T) shared.DomainEvent {
	t.Helper()
	p, err := production.NewProcess(uuid.New(), "Widget", uuid.New(), uuid.New(), uuid.New())
	require.NoError(t, err)
	return production.NewProcessCreatedEvent(p)
}

func planAssigned(t *testing.T) shared.DomainEvent {
	t.Helper()
	plan, err := costplan.NewPlan(uuid.New(), "CP-2026-00001", "")
	require.NoError(t, err)
	return costplan.NewPlanProcessAssignedEvent(plan, uuid.New())
}

func TestInMemoryEventBus_Publish(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	handler := &recordingHandler{eventTypes: []string{production.EventTypeProcessCreated}}
	bus.Subscribe(handler)

	require.NoError(t, bus.Publish(context.Background(), processCreated(t), planAssigned(t)))
	assert.Equal(t, 1, handler.count())

	delivered, failed := bus.Stats()
	assert.Equal(t, int64(1), delivered)
	assert.Zero(t, failed)
}

func TestInMemoryEventBus_ExplicitTypesOverrideHandlerTypes(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	handler := &recordingHandler{eventTypes: []string{production.EventTypeProcessCreated}}
	bus.Subscribe(handler, costplan.EventTypePlanProcessAssigned)

	require.NoError(t, bus.Publish(context.Background(), processCreated(t), planAssigned(t)))
	require.Equal(t, 1, handler.count())
	assert.Equal(t, costplan.EventTypePlanProcessAssigned, handler.handled[0].EventType())
}

func TestInMemoryEventBus_WildcardHandler(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	handler := &recordingHandler{}
	bus.Subscribe(handler)

	require.NoError(t, bus.Publish(context.Background(), processCreated(t), planAssigned(t)))
	assert.Equal(t, 2, handler.count())
}

func TestInMemoryEventBus_FailuresDoNotStopDelivery(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	bus := NewInMemoryEventBus(zap.New(core))

	failing := &recordingHandler{err: errors.New("handler error")}
	panicking := &recordingHandler{panicWith: "boom"}
	healthy := &recordingHandler{}
	bus.Subscribe(failing)
	bus.Subscribe(panicking)
	bus.Subscribe(healthy)

	require.NoError(t, bus.Publish(context.Background(), processCreated(t)))
	assert.Equal(t, 1, failing.count())
	assert.Equal(t, 1, healthy.count())

	delivered, failed := bus.Stats()
	assert.Equal(t, int64(1), delivered)
	assert.Equal(t, int64(2), failed)

	entries := logs.FilterMessage("handler failed to process event").All()
	require.Len(t, entries, 2)
	assert.Contains(t, entries[1].ContextMap()["error"], "handler panicked")
}

func TestInMemoryEventBus_Unsubscribe(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	handler := &recordingHandler{}
	bus.Subscribe(handler)

	require.NoError(t, bus.Publish(context.Background(), processCreated(t)))
	bus.Unsubscribe(handler)
	require.NoError(t, bus.Publish(context.Background(), processCreated(t)))

	assert.Equal(t, 1, handler.count())
}

func TestInMemoryEventBus_StartStop(t *testing.T) {
	bus := NewInMemoryEventBus(nil)
	handler := &recordingHandler{}
	bus.Subscribe(handler)
	ctx := context.Background()

	require.NoError(t, bus.Start(ctx))
	require.NoError(t, bus.Publish(ctx, processCreated(t)))

	require.NoError(t, bus.Stop(ctx))
	assert.ErrorIs(t, bus.Publish(ctx, processCreated(t)), ErrBusStopped)

	require.NoError(t, bus.Start(ctx))
	require.NoError(t, bus.Publish(ctx, processCreated(t)))
	assert.Equal(t, 2, handler.count())
}

func TestHandlerRegistry(t *testing.T) {
	registry := NewHandlerRegistry()
	typed := &recordingHandler{}
	wildcard := &recordingHandler{}

	registry.Register(typed, production.EventTypeProcessCreated, costplan.EventTypePlanProcessAssigned)
	registry.Register(wildcard)

	assert.Len(t, registry.GetHandlers(production.EventTypeProcessCreated), 2)
	assert.Len(t, registry.GetHandlers("Unknown"), 1)
	assert.Equal(t, 2, registry.Len())

	registry.Unregister(typed)
	assert.Len(t, registry.GetHandlers(production.EventTypeProcessCreated), 1)
	assert.Equal(t, 1, registry.Len())
}
