package middleware

import (
	"context"
	"net/http"
	"strings"

	"pet-care-reminders/internal/ports/auth"
)

type ctxKey string

const claimsKey ctxKey = "claims"

const (
	DebugUserIDHeader    = "X-Debug-User-ID"
	DebugUserEmailHeader = "X-Debug-User-Email"
)

// AuthContext:
// - Si verifier != nil y viene Bearer token => intenta Verify() y setea claims.
// - Si verifier == nil => modo dev: X-Debug-User-ID / X-Debug-User-Email setean claims.
// - Si no hay claims, el request sigue igual; los handlers deciden si exigen auth.
func AuthContext(verifier auth.AuthVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if verifier == nil {
				uid := strings.TrimSpace(r.Header.Get(DebugUserIDHeader))
				email := strings.TrimSpace(r.Header.Get(DebugUserEmailHeader))
				if uid == "" && email == "" {
					next.ServeHTTP(w, r)
					return
				}
				if uid == "" {
					uid = email
				}
				next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), auth.Claims{UserID: uid, Email: email})))
				return
			}

			token := bearerToken(r.Header.Get("Authorization"))
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}

			claims, err := verifier.Verify(r.Context(), token)
			if err != nil {
				// No cortamos aquí; el handler decide 401.
				next.ServeHTTP(w, r)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
		})
	}
}

func WithClaims(ctx context.Context, c auth.Claims) context.Context {
	return context.WithValue(ctx, claimsKey, c)
}

func GetClaims(ctx context.Context) (auth.Claims, bool) {
	c, ok := ctx.Value(claimsKey).(auth.Claims)
	return c, ok
}

// Owner devuelve la identidad dueña de los recordatorios: el email si la identidad lo trae,
// si no el user id.
func Owner(ctx context.Context) (string, bool) {
	c, ok := GetClaims(ctx)
	if !ok {
		return "", false
	}
	if email := strings.TrimSpace(c.Email); email != "" {
		return strings.ToLower(email), true
	}
	if uid := strings.TrimSpace(c.UserID); uid != "" {
		return uid, true
	}
	return "", false
}

func bearerToken(authHeader string) string {
	parts := strings.SplitN(strings.TrimSpace(authHeader), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
