package realtime

import (
	"net/http"

	"pet-care-reminders/internal/middleware"

	ws "github.com/coder/websocket"
)

// Handler godoc
// @Summary      Stream de cambios de recordatorios
// @Description  Websocket que emite un mensaje snapshot_published cada vez que cambia el cache del usuario.
// @Tags         reminders
// @Success      101
// @Failure      401  {string}  string  "unauthorized"
// @Router       /reminders/ws [get]
func Handler(hub *Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		owner, ok := middleware.Owner(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		conn, err := ws.Accept(w, r, &ws.AcceptOptions{InsecureSkipVerify: true})
		if err != nil {
			hub.log.Warn("websocket accept", map[string]any{"owner": owner, "error": err.Error()})
			return
		}

		NewClient(hub, owner, conn).Run(r.Context())
	}
}
