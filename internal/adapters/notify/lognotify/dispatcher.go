package lognotify

import (
	"context"
	"time"

	"pet-care-reminders/internal/domain/reminders"
	"pet-care-reminders/internal/platform/logger"
)

// Dispatcher sólo registra la notificación en el log.
// Se usa cuando no hay NOTIFY_BASE_URL configurado (dev).
type Dispatcher struct {
	log logger.Logger
}

var _ reminders.Dispatcher = (*Dispatcher)(nil)

func New(log logger.Logger) *Dispatcher {
	if log == nil {
		log = logger.Nop()
	}
	return &Dispatcher{log: log.With(map[string]any{"component": "lognotify"})}
}

func (d *Dispatcher) NotifyCreated(_ context.Context, r reminders.Reminder) reminders.Outcome {
	d.log.Info("reminder notification", record(reminders.ActionCreated, r))
	return reminders.Sent(reminders.ActionCreated, r.ID)
}

func (d *Dispatcher) NotifyUpdated(_ context.Context, r reminders.Reminder) reminders.Outcome {
	d.log.Info("reminder notification", record(reminders.ActionUpdated, r))
	return reminders.Sent(reminders.ActionUpdated, r.ID)
}

func (d *Dispatcher) NotifyCancelled(_ context.Context, reminderID string) reminders.Outcome {
	d.log.Info("reminder notification", map[string]any{
		"action":      string(reminders.ActionCancelled),
		"reminder_id": reminderID,
	})
	return reminders.Sent(reminders.ActionCancelled, reminderID)
}

func record(action reminders.DispatchAction, r reminders.Reminder) map[string]any {
	return map[string]any{
		"action":      string(action),
		"reminder_id": r.ID,
		"owner":       r.Owner,
		"title":       r.Title,
		"category":    string(r.Category),
		"due_at":      r.DueAt.UTC().Format(time.RFC3339),
	}
}
