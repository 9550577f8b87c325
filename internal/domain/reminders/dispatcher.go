package reminders

import (
	"context"
	"fmt"
)

type DispatchAction string

const (
	ActionCreated   DispatchAction = "created"
	ActionUpdated   DispatchAction = "updated"
	ActionCancelled DispatchAction = "cancelled"
)

type DispatchStatus string

const (
	DispatchSent   DispatchStatus = "sent"
	DispatchFailed DispatchStatus = "failed"
)

// Outcome es el resultado de una notificación. Failed nunca revierte la escritura en el store.
type Outcome struct {
	Action     DispatchAction
	ReminderID string
	Status     DispatchStatus
	Reason     string
}

func Sent(action DispatchAction, reminderID string) Outcome {
	return Outcome{Action: action, ReminderID: reminderID, Status: DispatchSent}
}

func Failed(action DispatchAction, reminderID, reason string) Outcome {
	return Outcome{Action: action, ReminderID: reminderID, Status: DispatchFailed, Reason: reason}
}

func (o Outcome) OK() bool { return o.Status == DispatchSent }

// Err devuelve nil si se envió; si no, un error que wrapea ErrDispatchFailed.
func (o Outcome) Err() error {
	if o.OK() {
		return nil
	}
	return fmt.Errorf("%w: %s %s: %s", ErrDispatchFailed, o.Action, o.ReminderID, o.Reason)
}

// Dispatcher envía/actualiza/cancela la notificación externa de un recordatorio.
// Sin estado e idempotente por llamada: repetir la misma acción no es un error.
type Dispatcher interface {
	NotifyCreated(ctx context.Context, r Reminder) Outcome
	NotifyUpdated(ctx context.Context, r Reminder) Outcome
	NotifyCancelled(ctx context.Context, reminderID string) Outcome
}
