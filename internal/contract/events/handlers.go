package events

import (
	"context"
	"fmt"
	"time"

	"github.com/gartstein/contracto/internal/contract/domain"
	"go.uber.org/zap"
)

// AuditRecorder is the capability the audit handler needs from the audit
// subsystem. Implementations live outside this package.
type AuditRecorder interface {
	Record(ctx context.Context, entityType, entityID, action string, occurredAt time.Time, eventID string, details map[string]interface{}) error
}

// NotificationSender is the capability the notification handler needs from
// the notification subsystem.
type NotificationSender interface {
	Send(ctx context.Context, message string, recipients []string, category string) error
}

// NopAuditRecorder is the explicit stand-in for an unconfigured audit
// service. Using it keeps nil checks out of the handlers.
type NopAuditRecorder struct{}

// Record does nothing.
func (NopAuditRecorder) Record(context.Context, string, string, string, time.Time, string, map[string]interface{}) error {
	return nil
}

// NopNotificationSender is the explicit stand-in for an unconfigured
// notification service.
type NopNotificationSender struct{}

// Send does nothing.
func (NopNotificationSender) Send(context.Context, string, []string, string) error {
	return nil
}

// HandlerFunc is the handling logic wrapped by LoggedHandler.
type HandlerFunc func(ctx context.Context, event domain.Event) error

// LoggedHandler wraps handling logic with structured start/success/failure
// logging. The publisher additionally logs failures; this logging carries the
// handler's own context.
type LoggedHandler struct {
	name   string
	fn     HandlerFunc
	logger *zap.Logger
}

// NewLoggedHandler builds a named handler around fn.
func NewLoggedHandler(name string, logger *zap.Logger, fn HandlerFunc) *LoggedHandler {
	return &LoggedHandler{name: name, fn: fn, logger: logger.Named(name)}
}

// Name implements Handler.
func (h *LoggedHandler) Name() string { return h.name }

// Handle implements Handler.
func (h *LoggedHandler) Handle(ctx context.Context, event domain.Event) error {
	h.logger.Debug("handling event",
		zap.String("event_type", event.EventType()),
		zap.String("event_id", event.EventID().String()),
	)
	if err := h.fn(ctx, event); err != nil {
		h.logger.Error("handler failed",
			zap.Error(err),
			zap.String("event_type", event.EventType()),
		)
		return err
	}
	h.logger.Debug("handled event", zap.String("event_type", event.EventType()))
	return nil
}

// AuditHandler writes an audit entry for every contract lifecycle event.
// Registered as a global handler.
type AuditHandler struct {
	*LoggedHandler
	recorder AuditRecorder
}

// NewAuditHandler builds the audit handler. Pass nil when no audit service is
// configured; recording then degrades to a no-op.
func NewAuditHandler(recorder AuditRecorder, logger *zap.Logger) *AuditHandler {
	if recorder == nil {
		recorder = NopAuditRecorder{}
	}
	h := &AuditHandler{recorder: recorder}
	h.LoggedHandler = NewLoggedHandler("audit", logger, h.handle)
	return h
}

func (h *AuditHandler) handle(ctx context.Context, event domain.Event) error {
	details := map[string]interface{}{
		"event_type": event.EventType(),
	}
	return h.recorder.Record(ctx,
		"contract",
		event.AggregateID().String(),
		event.EventType(),
		event.OccurredAt(),
		event.EventID().String(),
		details,
	)
}

// NotificationHandler turns lifecycle events into human-facing messages.
// Recipients are configured at construction; per-event routing is out of scope.
type NotificationHandler struct {
	*LoggedHandler
	sender     NotificationSender
	recipients []string
}

// NewNotificationHandler builds the notification handler. Pass a nil sender
// when no notification service is configured.
func NewNotificationHandler(sender NotificationSender, recipients []string, logger *zap.Logger) *NotificationHandler {
	if sender == nil {
		sender = NopNotificationSender{}
	}
	h := &NotificationHandler{sender: sender, recipients: recipients}
	h.LoggedHandler = NewLoggedHandler("notification", logger, h.handle)
	return h
}

func (h *NotificationHandler) handle(ctx context.Context, event domain.Event) error {
	var message, category string
	switch ev := event.(type) {
	case domain.ContractCreated:
		message = fmt.Sprintf("Contract %q was created for %s", ev.Title, ev.ClientName)
		category = "contract_created"
	case domain.ContractActivated:
		message = fmt.Sprintf("Contract %s was activated by %s", ev.AggregateID(), ev.ActivatedBy)
		category = "contract_activated"
	case domain.ContractCompleted:
		message = fmt.Sprintf("Contract %s was completed by %s", ev.AggregateID(), ev.CompletedBy)
		category = "contract_completed"
	case domain.ContractTerminated:
		message = fmt.Sprintf("Contract %s was terminated: %s", ev.AggregateID(), ev.TerminationReason)
		category = "contract_terminated"
	default:
		// Content-generation and future events carry no user-facing message.
		return nil
	}
	return h.sender.Send(ctx, message, h.recipients, category)
}
