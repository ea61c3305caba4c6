package costplan

import (
	"context"
	"errors"
	"testing"

	"github.com/erp/manufacturing/internal/domain/costplan"
	"github.com/erp/manufacturing/internal/domain/production"
	"github.com/erp/manufacturing/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type MockProcessAssignedNotifier struct {
	mock.Mock
}

func (m *MockProcessAssignedNotifier) NotifyProcessAssigned(ctx context.Context, notification ProcessAssignedNotification) error {
	args := m.Called(ctx, notification)
	return args.Error(0)
}

func newAssignedEvent(t *testing.T) (*costplan.PlanProcessAssignedEvent, *costplan.Plan) {
	t.Helper()
	plan, err := costplan.NewPlan(uuid.New(), "CP-2026-00100", "")
	require.NoError(t, err)
	productID := uuid.New()
	plan.ProductID = &productID
	return costplan.NewPlanProcessAssignedEvent(plan, uuid.New()), plan
}

func TestProcessAssignedHandler_EventTypes(t *testing.T) {
	h := NewProcessAssignedHandler(zap.NewNop())
	assert.ElementsMatch(t, []string{production.EventTypeProcessCreated, costplan.EventTypePlanProcessAssigned}, h.EventTypes())
}

func TestProcessAssignedHandler_ProcessCreated(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	h := NewProcessAssignedHandler(zap.New(core))

	process, err := production.NewProcess(uuid.New(), "Widget", uuid.New(), uuid.New(), uuid.New())
	require.NoError(t, err)

	require.NoError(t, h.Handle(context.Background(), production.NewProcessCreatedEvent(process)))
	entries := logs.FilterMessage("process created").All()
	require.Len(t, entries, 1)
	assert.Equal(t, process.ID.String(), entries[0].ContextMap()["process_id"])
}

func TestProcessAssignedHandler_NotifiesAssignment(t *testing.T) {
	event, plan := newAssignedEvent(t)
	notifier := new(MockProcessAssignedNotifier)
	notifier.On("NotifyProcessAssigned", mock.Anything, ProcessAssignedNotification{
		TenantID:  plan.TenantID.String(),
		PlanID:    plan.ID.String(),
		Number:    "CP-2026-00100",
		ProcessID: event.ProcessID.String(),
		ProductID: plan.ProductID.String(),
	}).Return(nil)

	h := NewProcessAssignedHandler(zap.NewNop()).WithNotifier(notifier)
	require.NoError(t, h.Handle(context.Background(), event))
	notifier.AssertExpectations(t)
}

func TestProcessAssignedHandler_NotifierFailureIsLogged(t *testing.T) {
	event, _ := newAssignedEvent(t)
	notifier := new(MockProcessAssignedNotifier)
	notifier.On("NotifyProcessAssigned", mock.Anything, mock.Anything).Return(errors.New("smtp down"))

	core, logs := observer.New(zapcore.ErrorLevel)
	h := NewProcessAssignedHandler(zap.New(core)).WithNotifier(notifier)

	assert.NoError(t, h.Handle(context.Background(), event))
	assert.Equal(t, 1, logs.FilterMessage("failed to send process assigned notification").Len())
}

func TestProcessAssignedHandler_RejectsOtherEvents(t *testing.T) {
	h := NewProcessAssignedHandler(zap.NewNop())
	plan, err := costplan.NewPlan(uuid.New(), "CP-2026-00100", "")
	require.NoError(t, err)

	var event shared.DomainEvent = costplan.NewPlanCreatedEvent(plan)
	assert.Error(t, h.Handle(context.Background(), event))
}

func TestLoggingProcessAssignedNotifier(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	n := NewLoggingProcessAssignedNotifier(zap.New(core))

	require.NoError(t, n.NotifyProcessAssigned(context.Background(), ProcessAssignedNotification{Number: "CP-1"}))
	assert.Equal(t, 1, logs.FilterMessage("cost plan process ready").Len())
}
