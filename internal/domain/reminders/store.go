package reminders

import "context"

// Store es el gateway hacia la colección persistente de recordatorios.
// Todas las operaciones quedan acotadas al owner; nunca habla con el Dispatcher.
//
// Errores esperados: ErrValidation, ErrNotFound, ErrStoreUnavailable (wrapeados).
type Store interface {
	// List devuelve slice vacío (no error) si el owner no tiene recordatorios.
	List(ctx context.Context, owner string) ([]Reminder, error)
	// Create asigna ID y CreatedAt.
	Create(ctx context.Context, in NewReminder) (Reminder, error)
	Update(ctx context.Context, owner, id string, p Patch) error
	Delete(ctx context.Context, owner, id string) error
}
