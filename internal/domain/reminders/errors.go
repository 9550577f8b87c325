package reminders

import (
	"errors"
	"strings"
)

var (
	// ErrValidation: campo requerido ausente o mal formado. Se detecta antes de cualquier llamada de red.
	ErrValidation = errors.New("validation error")
	// ErrNotFound: el recordatorio ya no existe para el owner (p.ej. borrado desde otra sesión).
	ErrNotFound = errors.New("reminder not found")
	// ErrStoreUnavailable: fallo de transporte/auth contra el store. La operación se aborta.
	ErrStoreUnavailable = errors.New("reminder store unavailable")
	// ErrDispatchFailed: falló la notificación externa. El efecto durable se mantiene.
	ErrDispatchFailed = errors.New("notification dispatch failed")
)

// ValidationError lista los campos que no pasaron la validación.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return ErrValidation.Error()
	}
	return ErrValidation.Error() + ": missing or invalid " + strings.Join(e.Fields, ", ")
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

func invalid(fields ...string) error {
	return &ValidationError{Fields: fields}
}
