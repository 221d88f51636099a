package events

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Audit event types for mutations that operators want a trail for.
const (
	EventUserCreated       = "user.created"
	EventUserDeleted       = "user.deleted"
	EventUserRoleChanged   = "user.role_changed"
	EventUserStatusToggled = "user.status_toggled"
	EventPatientsCleared   = "patients.cleared"
	EventSettingUpdated    = "setting.updated"
)

// NewAuditEvent builds an event recording who did what to whom.
func NewAuditEvent(eventType, actor, target string, extra map[string]interface{}) BaseEvent {
	data := map[string]interface{}{
		"actor":  actor,
		"target": target,
	}
	for k, v := range extra {
		data[k] = v
	}
	return BaseEvent{
		ID:        uuid.NewString(),
		Type:      eventType,
		Timestamp: time.Now(),
		Data:      data,
	}
}

// RegisterAuditLogger subscribes a logging handler for every audit event
// type, so destructive actions always leave a structured log line.
func RegisterAuditLogger(bus *EventBus, logger *slog.Logger) {
	types := []string{
		EventUserCreated,
		EventUserDeleted,
		EventUserRoleChanged,
		EventUserStatusToggled,
		EventPatientsCleared,
		EventSettingUpdated,
	}
	for _, t := range types {
		bus.Subscribe(t, func(ctx context.Context, event Event) error {
			logger.Info("audit",
				"event_type", event.EventType(),
				"event_id", event.EventID(),
				"occurred_at", event.OccurredAt(),
				"data", event.Payload())
			return nil
		})
	}
}
