package auth

import "context"

// Claims es lo que el proveedor de identidad nos dice del usuario autenticado.
// Email, si viene, es la identidad dueña de los recordatorios y el destinatario de las notificaciones.
type Claims struct {
	UserID string
	Email  string
}

// AuthVerifier verifica un bearer token y devuelve claims o error.
type AuthVerifier interface {
	Verify(ctx context.Context, token string) (Claims, error)
}
