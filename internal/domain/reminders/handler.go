package reminders

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"pet-care-reminders/internal/middleware"

	"github.com/go-chi/chi/v5"
)

// HandlerOptions: Now es el reloj para /upcoming cuando no viene ?now=;
// UpcomingLimit el límite cuando no viene ?limit= (<= 0 usa DefaultUpcomingLimit).
// Stream, si viene, se monta en GET /reminders/ws.
type HandlerOptions struct {
	Now           func() time.Time
	UpcomingLimit int
	Stream        http.HandlerFunc
}

// RegisterRoutes monta la API de consumo.
func RegisterRoutes(r chi.Router, sessions *Sessions, opts HandlerOptions) {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	defLimit := opts.UpcomingLimit
	if defLimit <= 0 {
		defLimit = DefaultUpcomingLimit
	}

	r.Route("/session", func(sr chi.Router) {
		sr.Post("/", openSessionHandler(sessions))
		sr.Delete("/", closeSessionHandler(sessions))
	})

	r.Route("/reminders", func(rr chi.Router) {
		rr.Get("/", listRemindersHandler(sessions))
		rr.Post("/", submitDraftHandler(sessions))
		rr.Post("/refresh", refreshHandler(sessions))

		rr.Get("/calendar", calendarHandler(sessions))
		rr.Get("/upcoming", upcomingHandler(sessions, now, defLimit))

		rr.Put("/{reminderID}", submitEditHandler(sessions))
		rr.Delete("/{reminderID}", deleteReminderHandler(sessions))

		if opts.Stream != nil {
			rr.Get("/ws", opts.Stream)
		}

		// Editor (form state machine)
		rr.Route("/editor", func(er chi.Router) {
			er.Get("/", editorViewHandler(sessions))
			er.Put("/fields", editorFieldsHandler(sessions))
			er.Post("/select/{reminderID}", editorSelectHandler(sessions))
			er.Post("/cancel", editorCancelHandler(sessions))
			er.Post("/submit", editorSubmitHandler(sessions))
			er.Post("/delete", editorDeleteHandler(sessions))
		})
	})
}

// draftRequest son los campos del formulario. due_at: RFC3339 o "2006-01-02T15:04".
type draftRequest struct {
	Title    string `json:"title"`
	Category string `json:"category" enums:"Doctor Appointment,Vaccination,Medication,Grooming"`
	DueAt    string `json:"due_at"`
}

func (d draftRequest) toDraft() Draft {
	return Draft{Title: d.Title, Category: d.Category, DueAt: d.DueAt}
}

// reminderResponse representa un recordatorio devuelto por la API.
type reminderResponse struct {
	ID        string    `json:"id"`
	Owner     string    `json:"owner"`
	Title     string    `json:"title"`
	Category  Category  `json:"category"`
	DueAt     time.Time `json:"due_at"`
	CreatedAt time.Time `json:"created_at"`
}

type calendarEventResponse struct {
	ID    string    `json:"id"`
	Label string    `json:"label"`
	Start time.Time `json:"start"`
}

type snapshotResponse struct {
	Owner     string             `json:"owner"`
	Version   uint64             `json:"version"`
	Reminders []reminderResponse `json:"reminders"`
}

// mutationResponse: notice es el aviso transitorio; warning solo viene si falló la notificación.
type mutationResponse struct {
	Reminder reminderResponse `json:"reminder"`
	Notice   string           `json:"notice"`
	Warning  string           `json:"warning,omitempty"`
}

type editorResponse struct {
	State      EditorState  `json:"state"`
	SelectedID string       `json:"selected_id,omitempty"`
	Fields     draftRequest `json:"fields"`
}

// openSessionHandler godoc
// @Summary Abrir sesión de recordatorios
// @Description Construye el cache del usuario autenticado y lo carga desde el store (equivale al login). Idempotente.
// @Tags session
// @Produce json
// @Param X-Debug-User-Email header string false "Solo en modo dev, email del usuario"
// @Param Authorization header string false "Bearer token en producción"
// @Success 200 {object} snapshotResponse
// @Failure 401 {string} string "unauthorized"
// @Failure 503 {string} string "store unavailable"
// @Router /session [post]
func openSessionHandler(sessions *Sessions) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := openSession(w, r, sessions)
		if !ok {
			return
		}
		writeJSON(w, http.StatusOK, toSnapshotResponse(sess.Repository().Snapshot()))
	}
}

// closeSessionHandler godoc
// @Summary Cerrar sesión de recordatorios
// @Description Descarta el cache del usuario (logout). El próximo acceso lo reconstruye desde el store.
// @Tags session
// @Success 204
// @Failure 401 {string} string "unauthorized"
// @Router /session [delete]
func closeSessionHandler(sessions *Sessions) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		owner, ok := middleware.Owner(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		sessions.Close(owner)
		w.WriteHeader(http.StatusNoContent)
	}
}

// listRemindersHandler godoc
// @Summary Snapshot completo
// @Description Devuelve el último snapshot publicado para el usuario.
// @Tags reminders
// @Produce json
// @Success 200 {object} snapshotResponse
// @Router /reminders [get]
func listRemindersHandler(sessions *Sessions) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := openSession(w, r, sessions)
		if !ok {
			return
		}
		writeJSON(w, http.StatusOK, toSnapshotResponse(sess.Repository().Snapshot()))
	}
}

// refreshHandler godoc
// @Summary Recargar desde el store
// @Description Reemplaza el cache completo con el contenido del store y publica un snapshot nuevo.
// @Tags reminders
// @Produce json
// @Success 200 {object} snapshotResponse
// @Failure 503 {string} string "store unavailable"
// @Router /reminders/refresh [post]
func refreshHandler(sessions *Sessions) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := openSession(w, r, sessions)
		if !ok {
			return
		}
		if err := sess.Refresh(r.Context()); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toSnapshotResponse(sess.Repository().Snapshot()))
	}
}

// calendarHandler godoc
// @Summary Eventos de calendario
// @Description Una entrada por recordatorio con label "<categoría>: <título>". Sin orden garantizado.
// @Tags reminders
// @Produce json
// @Success 200 {array} calendarEventResponse
// @Router /reminders/calendar [get]
func calendarHandler(sessions *Sessions) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := openSession(w, r, sessions)
		if !ok {
			return
		}
		events := sess.ListCalendarEvents()
		out := make([]calendarEventResponse, 0, len(events))
		for _, e := range events {
			out = append(out, calendarEventResponse{ID: e.ID, Label: e.Label, Start: e.Start})
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// upcomingHandler godoc
// @Summary Próximos recordatorios
// @Description Recordatorios con due_at posterior a now, ascendente, truncado a limit.
// @Tags reminders
// @Produce json
// @Param limit query int false "Máximo a devolver (1-100). Por defecto UPCOMING_LIMIT"
// @Param now query string false "Instante de referencia (RFC3339). Por defecto el reloj del servidor"
// @Success 200 {array} reminderResponse
// @Failure 400 {string} string "now inválido"
// @Router /reminders/upcoming [get]
func upcomingHandler(sessions *Sessions, clock func() time.Time, defLimit int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := openSession(w, r, sessions)
		if !ok {
			return
		}

		limit := defLimit
		if v := r.URL.Query().Get("limit"); v != "" {
			if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 100 {
				limit = n
			}
		}

		now := clock()
		if v := strings.TrimSpace(r.URL.Query().Get("now")); v != "" {
			t, err := time.Parse(time.RFC3339, v)
			if err != nil {
				http.Error(w, "now must be RFC3339", http.StatusBadRequest)
				return
			}
			now = t
		}

		items := sess.ListUpcoming(now, limit)
		out := make([]reminderResponse, 0, len(items))
		for _, it := range items {
			out = append(out, toReminderResponse(it))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// submitDraftHandler godoc
// @Summary Crear recordatorio
// @Description Valida, persiste y dispara la notificación. Si la notificación falla el recordatorio queda creado y se informa warning.
// @Tags reminders
// @Accept json
// @Produce json
// @Param payload body draftRequest true "Campos del formulario"
// @Success 201 {object} mutationResponse
// @Failure 400 {string} string "validation error"
// @Failure 503 {string} string "store unavailable"
// @Router /reminders [post]
func submitDraftHandler(sessions *Sessions) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := openSession(w, r, sessions)
		if !ok {
			return
		}
		var req draftRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		res, err := sess.SubmitDraft(r.Context(), req.toDraft())
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, toMutationResponse(res))
	}
}

// submitEditHandler godoc
// @Summary Actualizar recordatorio
// @Description Actualiza título, categoría y fecha. id, owner y created_at no cambian.
// @Tags reminders
// @Accept json
// @Produce json
// @Param reminderID path string true "ID del recordatorio"
// @Param payload body draftRequest true "Campos del formulario"
// @Success 200 {object} mutationResponse
// @Failure 400 {string} string "validation error"
// @Failure 404 {string} string "reminder not found"
// @Failure 503 {string} string "store unavailable"
// @Router /reminders/{reminderID} [put]
func submitEditHandler(sessions *Sessions) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := openSession(w, r, sessions)
		if !ok {
			return
		}
		var req draftRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		res, err := sess.SubmitEdit(r.Context(), chi.URLParam(r, "reminderID"), req.toDraft())
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toMutationResponse(res))
	}
}

// deleteReminderHandler godoc
// @Summary Borrar recordatorio
// @Description Borrado permanente. Repetirlo devuelve 404.
// @Tags reminders
// @Produce json
// @Param reminderID path string true "ID del recordatorio"
// @Success 200 {object} mutationResponse
// @Failure 404 {string} string "reminder not found"
// @Failure 503 {string} string "store unavailable"
// @Router /reminders/{reminderID} [delete]
func deleteReminderHandler(sessions *Sessions) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := openSession(w, r, sessions)
		if !ok {
			return
		}
		res, err := sess.DeleteReminder(r.Context(), chi.URLParam(r, "reminderID"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toMutationResponse(res))
	}
}

// editorViewHandler godoc
// @Summary Estado del editor
// @Description Estado (composing/editing), selección y campos del formulario de la sesión.
// @Tags editor
// @Produce json
// @Success 200 {object} editorResponse
// @Failure 401 {string} string "unauthorized"
// @Router /reminders/editor [get]
func editorViewHandler(sessions *Sessions) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := openSession(w, r, sessions)
		if !ok {
			return
		}
		writeJSON(w, http.StatusOK, toEditorResponse(sess.Editor().View()))
	}
}

// editorFieldsHandler godoc
// @Summary Reemplazar campos del formulario
// @Description No valida ni persiste; la validación ocurre en submit.
// @Tags editor
// @Accept json
// @Produce json
// @Param payload body draftRequest true "Campos del formulario"
// @Success 200 {object} editorResponse
// @Failure 400 {string} string "invalid json"
// @Router /reminders/editor/fields [put]
func editorFieldsHandler(sessions *Sessions) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := openSession(w, r, sessions)
		if !ok {
			return
		}
		var req draftRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		sess.Editor().SetFields(req.toDraft())
		writeJSON(w, http.StatusOK, toEditorResponse(sess.Editor().View()))
	}
}

// editorSelectHandler godoc
// @Summary Seleccionar recordatorio
// @Description Pasa a editing con los campos del recordatorio en cache.
// @Tags editor
// @Produce json
// @Param reminderID path string true "ID del recordatorio"
// @Success 200 {object} editorResponse
// @Failure 404 {string} string "reminder not found"
// @Router /reminders/editor/select/{reminderID} [post]
func editorSelectHandler(sessions *Sessions) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := openSession(w, r, sessions)
		if !ok {
			return
		}
		view, err := sess.Editor().Select(chi.URLParam(r, "reminderID"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toEditorResponse(view))
	}
}

// editorCancelHandler godoc
// @Summary Cancelar edición
// @Tags editor
// @Produce json
// @Success 200 {object} editorResponse
// @Router /reminders/editor/cancel [post]
func editorCancelHandler(sessions *Sessions) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := openSession(w, r, sessions)
		if !ok {
			return
		}
		writeJSON(w, http.StatusOK, toEditorResponse(sess.Editor().Cancel()))
	}
}

// editorSubmitHandler godoc
// @Summary Enviar formulario
// @Description En composing crea (201); en editing actualiza (200). Si falla, el formulario queda intacto.
// @Tags editor
// @Produce json
// @Success 200 {object} mutationResponse
// @Success 201 {object} mutationResponse
// @Failure 400 {string} string "validation error"
// @Failure 404 {string} string "reminder not found"
// @Failure 503 {string} string "store unavailable"
// @Router /reminders/editor/submit [post]
func editorSubmitHandler(sessions *Sessions) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := openSession(w, r, sessions)
		if !ok {
			return
		}
		res, err := sess.Editor().Submit(r.Context())
		if err != nil {
			writeError(w, err)
			return
		}
		status := http.StatusOK
		if res.Action == ActionCreated {
			status = http.StatusCreated
		}
		writeJSON(w, status, toMutationResponse(res))
	}
}

// editorDeleteHandler godoc
// @Summary Borrar el recordatorio seleccionado
// @Description Solo en editing; sin selección devuelve 400.
// @Tags editor
// @Produce json
// @Success 200 {object} mutationResponse
// @Failure 400 {string} string "no reminder selected"
// @Failure 404 {string} string "reminder not found"
// @Failure 503 {string} string "store unavailable"
// @Router /reminders/editor/delete [post]
func editorDeleteHandler(sessions *Sessions) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := openSession(w, r, sessions)
		if !ok {
			return
		}
		res, err := sess.Editor().Delete(r.Context())
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toMutationResponse(res))
	}
}

// openSession resuelve el owner del request y devuelve su sesión (la abre si hace falta).
// Si devuelve false ya escribió la respuesta.
func openSession(w http.ResponseWriter, r *http.Request, sessions *Sessions) (*Session, bool) {
	owner, ok := middleware.Owner(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return nil, false
	}
	sess, err := sessions.Open(r.Context(), owner)
	if err != nil {
		writeError(w, err)
		return nil, false
	}
	return sess, true
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrValidation):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, ErrNotFound):
		http.Error(w, "reminder not found", http.StatusNotFound)
	case errors.Is(err, ErrStoreUnavailable):
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func toReminderResponse(r Reminder) reminderResponse {
	return reminderResponse{
		ID:        r.ID,
		Owner:     r.Owner,
		Title:     r.Title,
		Category:  r.Category,
		DueAt:     r.DueAt,
		CreatedAt: r.CreatedAt,
	}
}

func toSnapshotResponse(s Snapshot) snapshotResponse {
	out := snapshotResponse{
		Owner:     s.Owner,
		Version:   s.Version,
		Reminders: make([]reminderResponse, 0, len(s.Reminders)),
	}
	for _, r := range s.Reminders {
		out.Reminders = append(out.Reminders, toReminderResponse(r))
	}
	return out
}

func toMutationResponse(res Result) mutationResponse {
	out := mutationResponse{
		Reminder: toReminderResponse(res.Reminder),
		Notice:   res.Notice(),
	}
	if err := res.Warning(); err != nil {
		out.Warning = err.Error()
	}
	return out
}

func toEditorResponse(v EditorView) editorResponse {
	return editorResponse{
		State:      v.State,
		SelectedID: v.SelectedID,
		Fields: draftRequest{
			Title:    v.Fields.Title,
			Category: v.Fields.Category,
			DueAt:    v.Fields.DueAt,
		},
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
