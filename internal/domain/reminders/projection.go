package reminders

import (
	"sort"
	"time"
)

// DefaultUpcomingLimit es el largo por defecto de la lista "próximos".
const DefaultUpcomingLimit = 5

// CalendarEvent es una entrada del calendario. El ID viaja junto al label para que la
// selección se resuelva por identidad y no parseando el texto mostrado.
type CalendarEvent struct {
	ID    string
	Label string
	Start time.Time
}

// ToCalendarEvents genera exactamente una entrada por recordatorio. No ordena:
// el calendario renderiza por fecha.
func ToCalendarEvents(s Snapshot) []CalendarEvent {
	out := make([]CalendarEvent, 0, len(s.Reminders))
	for _, r := range s.Reminders {
		out = append(out, CalendarEvent{
			ID:    r.ID,
			Label: r.Label(),
			Start: r.DueAt,
		})
	}
	return out
}

// ToUpcoming filtra DueAt > now, ordena ascendente por DueAt y corta en limit.
// Determinística: empates por DueAt se resuelven por ID.
func ToUpcoming(s Snapshot, now time.Time, limit int) []Reminder {
	if limit <= 0 {
		limit = DefaultUpcomingLimit
	}

	out := make([]Reminder, 0, len(s.Reminders))
	for _, r := range s.Reminders {
		if r.DueAt.After(now) {
			out = append(out, r)
		}
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].DueAt.Equal(out[j].DueAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].DueAt.Before(out[j].DueAt)
	})

	if len(out) > limit {
		out = out[:limit]
	}
	return out
}
