package middleware

import (
	"net/http"
	"time"

	"pet-care-reminders/internal/platform/logger"

	chimw "github.com/go-chi/chi/v5/middleware"
)

// RequestLog loguea una línea por request con el request id de chi.
// Va después de RequestID y AuthContext para tener ambos.
func RequestLog(log logger.Logger) func(http.Handler) http.Handler {
	if log == nil {
		log = logger.Nop()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			fields := map[string]any{
				"method":      r.Method,
				"path":        r.URL.Path,
				"status":      status,
				"duration_ms": time.Since(start).Milliseconds(),
				"request_id":  chimw.GetReqID(r.Context()),
			}
			if owner, ok := Owner(r.Context()); ok {
				fields["owner"] = owner
			}

			switch {
			case status >= 500:
				log.Error("http request", fields)
			case status >= 400:
				log.Warn("http request", fields)
			default:
				log.Debug("http request", fields)
			}
		})
	}
}
