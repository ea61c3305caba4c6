package costplan

import (
	"context"
	"fmt"

	"github.com/erp/manufacturing/internal/domain/costplan"
	"github.com/erp/manufacturing/internal/domain/production"
	"github.com/erp/manufacturing/internal/domain/shared"
	"go.uber.org/zap"
)

// ProcessAssignedHandler handles ProcessCreated and PlanProcessAssigned events
// and notifies other contexts that a plan now has a production process
type ProcessAssignedHandler struct {
	logger   *zap.Logger
	notifier ProcessAssignedNotifier
}

// ProcessAssignedNotifier is the interface for notifying about processes created from plans
type ProcessAssignedNotifier interface {
	NotifyProcessAssigned(ctx context.Context, notification ProcessAssignedNotification) error
}

// ProcessAssignedNotification represents a process linked to a cost plan
type ProcessAssignedNotification struct {
	TenantID  string `json:"tenant_id"`
	PlanID    string `json:"plan_id"`
	Number    string `json:"number"`
	ProcessID string `json:"process_id"`
	ProductID string `json:"product_id,omitempty"`
}

// NewProcessAssignedHandler creates a new handler
func NewProcessAssignedHandler(logger *zap.Logger) *ProcessAssignedHandler {
	return &ProcessAssignedHandler{logger: logger}
}

// WithNotifier sets the notifier for sending notifications
func (h *ProcessAssignedHandler) WithNotifier(notifier ProcessAssignedNotifier) *ProcessAssignedHandler {
	h.notifier = notifier
	return h
}

// EventTypes returns the event types this handler is interested in
func (h *ProcessAssignedHandler) EventTypes() []string {
	return []string{production.EventTypeProcessCreated, costplan.EventTypePlanProcessAssigned}
}

// Handle processes the events
func (h *ProcessAssignedHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	switch e := event.(type) {
	case *production.ProcessCreatedEvent:
		h.logger.Info("process created",
			zap.String("tenant_id", event.TenantID().String()),
			zap.String("process_id", e.ProcessID.String()),
			zap.String("name", e.Name),
			zap.String("bom_id", e.BomID.String()),
			zap.String("route_id", e.RouteID.String()),
		)
		return nil

	case *costplan.PlanProcessAssignedEvent:
		notification := ProcessAssignedNotification{
			TenantID:  event.TenantID().String(),
			PlanID:    e.PlanID.String(),
			Number:    e.Number,
			ProcessID: e.ProcessID.String(),
		}
		if e.ProductID != nil {
			notification.ProductID = e.ProductID.String()
		}
		h.logger.Info("process assigned to cost plan",
			zap.String("tenant_id", notification.TenantID),
			zap.String("plan_id", notification.PlanID),
			zap.String("number", notification.Number),
			zap.String("process_id", notification.ProcessID),
		)

		if h.notifier != nil {
			if err := h.notifier.NotifyProcessAssigned(ctx, notification); err != nil {
				h.logger.Error("failed to send process assigned notification",
					zap.String("plan_id", notification.PlanID),
					zap.Error(err),
				)
			}
		}
		return nil

	default:
		h.logger.Error("unexpected event type", zap.String("actual", event.EventType()))
		return fmt.Errorf("unexpected event type: %s", event.EventType())
	}
}

var _ shared.EventHandler = (*ProcessAssignedHandler)(nil)

// LoggingProcessAssignedNotifier logs notifications; used when no other channel is configured
type LoggingProcessAssignedNotifier struct {
	logger *zap.Logger
}

// NewLoggingProcessAssignedNotifier creates a new logging notifier
func NewLoggingProcessAssignedNotifier(logger *zap.Logger) *LoggingProcessAssignedNotifier {
	return &LoggingProcessAssignedNotifier{logger: logger}
}

// NotifyProcessAssigned logs the notification
func (n *LoggingProcessAssignedNotifier) NotifyProcessAssigned(ctx context.Context, notification ProcessAssignedNotification) error {
	n.logger.Info("cost plan process ready",
		zap.String("number", notification.Number),
		zap.String("process_id", notification.ProcessID),
		zap.String("product_id", notification.ProductID),
	)
	return nil
}

var _ ProcessAssignedNotifier = (*LoggingProcessAssignedNotifier)(nil)
