package router_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"pet-care-reminders/internal/adapters/storage/memory"
	"pet-care-reminders/internal/domain/reminders"
	"pet-care-reminders/internal/realtime"
	"pet-care-reminders/internal/router"

	ws "github.com/coder/websocket"
)

type reminderJSON struct {
	ID        string    `json:"id"`
	Owner     string    `json:"owner"`
	Title     string    `json:"title"`
	Category  string    `json:"category"`
	DueAt     time.Time `json:"due_at"`
	CreatedAt time.Time `json:"created_at"`
}

type mutationJSON struct {
	Reminder reminderJSON `json:"reminder"`
	Notice   string       `json:"notice"`
	Warning  string       `json:"warning"`
}

type eventJSON struct {
	ID    string    `json:"id"`
	Label string    `json:"label"`
	Start time.Time `json:"start"`
}

type editorJSON struct {
	State      string `json:"state"`
	SelectedID string `json:"selected_id"`
	Fields     struct {
		Title    string `json:"title"`
		Category string `json:"category"`
		DueAt    string `json:"due_at"`
	} `json:"fields"`
}

// recordingDispatcher registra las llamadas y puede fallar a pedido.
type recordingDispatcher struct {
	mu    sync.Mutex
	calls []string
	fail  bool
}

func (d *recordingDispatcher) record(action reminders.DispatchAction, id string) reminders.Outcome {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.calls = append(d.calls, string(action)+":"+id)
	if d.fail {
		return reminders.Failed(action, id, "notification service returned 500")
	}
	return reminders.Sent(action, id)
}

func (d *recordingDispatcher) NotifyCreated(_ context.Context, r reminders.Reminder) reminders.Outcome {
	return d.record(reminders.ActionCreated, r.ID)
}

func (d *recordingDispatcher) NotifyUpdated(_ context.Context, r reminders.Reminder) reminders.Outcome {
	return d.record(reminders.ActionUpdated, r.ID)
}

func (d *recordingDispatcher) NotifyCancelled(_ context.Context, id string) reminders.Outcome {
	return d.record(reminders.ActionCancelled, id)
}

func (d *recordingDispatcher) Calls() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.calls...)
}

// downStore simula el store caído.
type downStore struct{}

var errDown = errors.New("connection refused")

func (downStore) List(context.Context, string) ([]reminders.Reminder, error) { return nil, errDown }
func (downStore) Create(context.Context, reminders.NewReminder) (reminders.Reminder, error) {
	return reminders.Reminder{}, errDown
}
func (downStore) Update(context.Context, string, string, reminders.Patch) error { return errDown }
func (downStore) Delete(context.Context, string, string) error                 { return errDown }

func newServer(t *testing.T, opts router.Options) (*httptest.Server, *router.Router) {
	t.Helper()
	rt := router.NewRouter(opts)
	ts := httptest.NewServer(rt)
	t.Cleanup(ts.Close)
	return ts, rt
}

func TestHTTP_EndToEnd_CalendarAndUpcoming(t *testing.T) {
	disp := &recordingDispatcher{}
	ts, _ := newServer(t, router.Options{Dispatcher: disp})

	user := "ana@example.com"

	// 1) Login: cache vacío
	{
		st, body := doReq(t, ts.URL, "POST", "/session", user, nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 open session, got %d body=%s", st, string(body))
		}
	}

	// 2) Tres recordatorios, uno en el pasado
	vacc := createReminder(t, ts.URL, user, "Rabies shot", "Vaccination", "2030-03-01T10:00")
	groom := createReminder(t, ts.URL, user, "Bath", "Grooming", "2030-02-01T09:00")
	_ = createReminder(t, ts.URL, user, "Old pills", "Medication", "2020-01-01T08:00")

	// 3) Calendario: una entrada por recordatorio con "<categoría>: <título>"
	{
		st, body := doReq(t, ts.URL, "GET", "/reminders/calendar", user, nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 calendar, got %d body=%s", st, string(body))
		}
		var events []eventJSON
		_ = json.Unmarshal(body, &events)
		if len(events) != 3 {
			t.Fatalf("expected 3 events, got %d", len(events))
		}
		labels := map[string]string{}
		for _, e := range events {
			labels[e.ID] = e.Label
		}
		if labels[vacc] != "Vaccination: Rabies shot" || labels[groom] != "Grooming: Bath" {
			t.Fatalf("unexpected labels: %v", labels)
		}
	}

	// 4) Upcoming: sólo futuros, ascendente
	{
		st, body := doReq(t, ts.URL, "GET", "/reminders/upcoming?now=2025-01-01T00:00:00Z", user, nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 upcoming, got %d body=%s", st, string(body))
		}
		var items []reminderJSON
		_ = json.Unmarshal(body, &items)
		if len(items) != 2 || items[0].ID != groom || items[1].ID != vacc {
			t.Fatalf("unexpected upcoming: %+v", items)
		}
	}

	// 5) limit=1
	{
		_, body := doReq(t, ts.URL, "GET", "/reminders/upcoming?now=2025-01-01T00:00:00Z&limit=1", user, nil)
		var items []reminderJSON
		_ = json.Unmarshal(body, &items)
		if len(items) != 1 || items[0].ID != groom {
			t.Fatalf("unexpected upcoming with limit: %+v", items)
		}
	}

	// 6) now inválido
	{
		st, _ := doReq(t, ts.URL, "GET", "/reminders/upcoming?now=yesterday", user, nil)
		if st != http.StatusBadRequest {
			t.Fatalf("expected 400 for invalid now, got %d", st)
		}
	}

	if got := len(disp.Calls()); got != 3 {
		t.Fatalf("expected 3 dispatches, got %d", got)
	}
}

func TestHTTP_EditAndDelete(t *testing.T) {
	disp := &recordingDispatcher{}
	ts, _ := newServer(t, router.Options{Dispatcher: disp})

	user := "ana@example.com"
	id := createReminder(t, ts.URL, user, "Vet visit", "Doctor Appointment", "2030-04-10T15:30")

	// 1) Edit: id/owner/created_at no cambian
	{
		st, body := doReq(t, ts.URL, "PUT", "/reminders/"+id, user, map[string]any{
			"title":    "Vet visit (annual)",
			"category": "Doctor Appointment",
			"due_at":   "2030-04-11T15:30",
		})
		if st != http.StatusOK {
			t.Fatalf("expected 200 edit, got %d body=%s", st, string(body))
		}
		var resp mutationJSON
		_ = json.Unmarshal(body, &resp)
		if resp.Reminder.ID != id || resp.Reminder.Owner != user || resp.Reminder.Title != "Vet visit (annual)" {
			t.Fatalf("unexpected edit response: %+v", resp)
		}
		if resp.Notice != "Reminder updated!" || resp.Warning != "" {
			t.Fatalf("unexpected notice: %+v", resp)
		}
	}

	// 2) Edit inválido
	{
		st, _ := doReq(t, ts.URL, "PUT", "/reminders/"+id, user, map[string]any{
			"title": " ", "category": "Doctor Appointment", "due_at": "2030-04-11T15:30",
		})
		if st != http.StatusBadRequest {
			t.Fatalf("expected 400 for blank title, got %d", st)
		}
	}

	// 3) Delete dos veces: la segunda es 404
	{
		st, body := doReq(t, ts.URL, "DELETE", "/reminders/"+id, user, nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 delete, got %d body=%s", st, string(body))
		}
		st, _ = doReq(t, ts.URL, "DELETE", "/reminders/"+id, user, nil)
		if st != http.StatusNotFound {
			t.Fatalf("expected 404 on second delete, got %d", st)
		}
	}

	want := []string{"created:" + id, "updated:" + id, "cancelled:" + id}
	if got := disp.Calls(); strings.Join(got, ",") != strings.Join(want, ",") {
		t.Fatalf("dispatch calls = %v, want %v", got, want)
	}
}

func TestHTTP_DispatchFailureIsWarning(t *testing.T) {
	disp := &recordingDispatcher{fail: true}
	ts, _ := newServer(t, router.Options{Dispatcher: disp})

	user := "ana@example.com"
	st, body := doReq(t, ts.URL, "POST", "/reminders", user, map[string]any{
		"title": "Flea pill", "category": "Medication", "due_at": "2030-01-05T08:00",
	})
	if st != http.StatusCreated {
		t.Fatalf("expected 201 even if notification fails, got %d body=%s", st, string(body))
	}
	var resp mutationJSON
	_ = json.Unmarshal(body, &resp)
	if resp.Warning == "" || !strings.Contains(resp.Notice, "Warning") {
		t.Fatalf("expected warning, got %+v", resp)
	}

	// El recordatorio quedó persistido
	_, body = doReq(t, ts.URL, "GET", "/reminders/calendar", user, nil)
	var events []eventJSON
	_ = json.Unmarshal(body, &events)
	if len(events) != 1 || events[0].Label != "Medication: Flea pill" {
		t.Fatalf("unexpected calendar: %+v", events)
	}
}

func TestHTTP_ValidationAndAuth(t *testing.T) {
	disp := &recordingDispatcher{}
	ts, _ := newServer(t, router.Options{Dispatcher: disp})

	// Sin identidad
	{
		st, _ := doReq(t, ts.URL, "GET", "/reminders/calendar", "", nil)
		if st != http.StatusUnauthorized {
			t.Fatalf("expected 401 without identity, got %d", st)
		}
	}

	// Campos faltantes: no se llama al dispatcher
	{
		st, _ := doReq(t, ts.URL, "POST", "/reminders", "ana@example.com", map[string]any{
			"title": "", "category": "Vaccination", "due_at": "2030-01-01T10:00",
		})
		if st != http.StatusBadRequest {
			t.Fatalf("expected 400 for empty title, got %d", st)
		}
		st, _ = doReq(t, ts.URL, "POST", "/reminders", "ana@example.com", map[string]any{
			"title": "X", "category": "Surgery", "due_at": "2030-01-01T10:00",
		})
		if st != http.StatusBadRequest {
			t.Fatalf("expected 400 for unknown category, got %d", st)
		}
	}
	if got := len(disp.Calls()); got != 0 {
		t.Fatalf("expected no dispatch for invalid drafts, got %d", got)
	}

	// Edit de un id desconocido
	{
		st, _ := doReq(t, ts.URL, "PUT", "/reminders/nope", "ana@example.com", map[string]any{
			"title": "X", "category": "Vaccination", "due_at": "2030-01-01T10:00",
		})
		if st != http.StatusNotFound {
			t.Fatalf("expected 404 for unknown id, got %d", st)
		}
	}
}

func TestHTTP_OwnerIsolation(t *testing.T) {
	ts, _ := newServer(t, router.Options{Dispatcher: &recordingDispatcher{}})

	id := createReminder(t, ts.URL, "ana@example.com", "Bath", "Grooming", "2030-02-01T09:00")

	// Otro usuario no lo ve ni lo puede borrar
	{
		_, body := doReq(t, ts.URL, "GET", "/reminders/calendar", "bob@example.com", nil)
		var events []eventJSON
		_ = json.Unmarshal(body, &events)
		if len(events) != 0 {
			t.Fatalf("expected empty calendar for other user, got %+v", events)
		}
		st, _ := doReq(t, ts.URL, "DELETE", "/reminders/"+id, "bob@example.com", nil)
		if st != http.StatusNotFound {
			t.Fatalf("expected 404 deleting another user's reminder, got %d", st)
		}
	}
}

func TestHTTP_StoreUnavailable(t *testing.T) {
	ts, _ := newServer(t, router.Options{Store: downStore{}, Dispatcher: &recordingDispatcher{}})

	st, _ := doReq(t, ts.URL, "POST", "/session", "ana@example.com", nil)
	if st != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 when store is down, got %d", st)
	}
}

func TestHTTP_LogoutDiscardsCache(t *testing.T) {
	store := memory.NewRemindersStore()
	ts, rt := newServer(t, router.Options{Store: store, Dispatcher: &recordingDispatcher{}})

	user := "ana@example.com"
	_ = createReminder(t, ts.URL, user, "Bath", "Grooming", "2030-02-01T09:00")
	if rt.Sessions.Len() != 1 {
		t.Fatalf("expected 1 open session")
	}

	st, _ := doReq(t, ts.URL, "DELETE", "/session", user, nil)
	if st != http.StatusNoContent {
		t.Fatalf("expected 204 logout, got %d", st)
	}
	if rt.Sessions.Len() != 0 {
		t.Fatalf("expected session discarded")
	}

	// El próximo acceso recarga desde el store
	_, body := doReq(t, ts.URL, "GET", "/reminders", user, nil)
	var snap struct {
		Version   uint64         `json:"version"`
		Reminders []reminderJSON `json:"reminders"`
	}
	_ = json.Unmarshal(body, &snap)
	if len(snap.Reminders) != 1 || snap.Version != 1 {
		t.Fatalf("unexpected snapshot after re-login: %+v", snap)
	}
}

func TestHTTP_EditorFlow(t *testing.T) {
	disp := &recordingDispatcher{}
	ts, _ := newServer(t, router.Options{Dispatcher: disp})

	user := "ana@example.com"

	// Dos recordatorios con el mismo label: la selección es por id
	first := createReminder(t, ts.URL, user, "Bath", "Grooming", "2030-02-01T09:00")
	second := createReminder(t, ts.URL, user, "Bath", "Grooming", "2030-03-01T09:00")

	{
		st, body := doReq(t, ts.URL, "POST", "/reminders/editor/select/"+second, user, nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 select, got %d body=%s", st, string(body))
		}
		var ed editorJSON
		_ = json.Unmarshal(body, &ed)
		if ed.State != "editing" || ed.SelectedID != second || ed.Fields.DueAt != "2030-03-01T09:00" {
			t.Fatalf("unexpected editor after select: %+v", ed)
		}
	}

	{
		st, _ := doReq(t, ts.URL, "PUT", "/reminders/editor/fields", user, map[string]any{
			"title": "Bath and nails", "category": "Grooming", "due_at": "2030-03-01T09:00",
		})
		if st != http.StatusOK {
			t.Fatalf("expected 200 set fields, got %d", st)
		}
		st, body := doReq(t, ts.URL, "POST", "/reminders/editor/submit", user, nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 submit, got %d body=%s", st, string(body))
		}
		var resp mutationJSON
		_ = json.Unmarshal(body, &resp)
		if resp.Reminder.ID != second || resp.Reminder.Title != "Bath and nails" {
			t.Fatalf("unexpected submit response: %+v", resp)
		}
	}

	// Vuelve a Composing con los defaults
	{
		_, body := doReq(t, ts.URL, "GET", "/reminders/editor", user, nil)
		var ed editorJSON
		_ = json.Unmarshal(body, &ed)
		if ed.State != "composing" || ed.SelectedID != "" || ed.Fields.Category != "Doctor Appointment" {
			t.Fatalf("unexpected editor after submit: %+v", ed)
		}
	}

	// Delete sin selección
	{
		st, _ := doReq(t, ts.URL, "POST", "/reminders/editor/delete", user, nil)
		if st != http.StatusBadRequest {
			t.Fatalf("expected 400 delete without selection, got %d", st)
		}
	}

	// Select + cancel
	{
		_, _ = doReq(t, ts.URL, "POST", "/reminders/editor/select/"+first, user, nil)
		st, body := doReq(t, ts.URL, "POST", "/reminders/editor/cancel", user, nil)
		var ed editorJSON
		_ = json.Unmarshal(body, &ed)
		if st != http.StatusOK || ed.State != "composing" {
			t.Fatalf("unexpected cancel: %d %+v", st, ed)
		}
	}

	// Select desconocido
	{
		st, _ := doReq(t, ts.URL, "POST", "/reminders/editor/select/nope", user, nil)
		if st != http.StatusNotFound {
			t.Fatalf("expected 404 selecting unknown id, got %d", st)
		}
	}
}

func TestHTTP_WebsocketSnapshotPush(t *testing.T) {
	ts, rt := newServer(t, router.Options{Dispatcher: &recordingDispatcher{}})

	user := "ana@example.com"
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	h := http.Header{}
	h.Set("X-Debug-User-ID", user)
	conn, _, err := ws.Dial(ctx, "ws"+strings.TrimPrefix(ts.URL, "http")+"/reminders/ws", &ws.DialOptions{HTTPHeader: h})
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close(ws.StatusNormalClosure, "")

	for rt.Hub.ClientCount(user) == 0 {
		if ctx.Err() != nil {
			t.Fatalf("client never registered")
		}
		time.Sleep(5 * time.Millisecond)
	}

	_ = createReminder(t, ts.URL, user, "Bath", "Grooming", "2030-02-01T09:00")

	// refresh inicial (v1) + add (v2)
	var msg realtime.Message
	for msg.Version < 2 {
		_, data, err := conn.Read(ctx)
		if err != nil {
			t.Fatalf("read: %v", err)
		}
		if err := json.Unmarshal(data, &msg); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if msg.Type != realtime.TypeSnapshotPublished {
			t.Fatalf("unexpected message type %q", msg.Type)
		}
	}
	if msg.Count != 1 {
		t.Fatalf("expected count 1, got %d", msg.Count)
	}
}

func TestHTTP_WebsocketRequiresIdentity(t *testing.T) {
	ts, _ := newServer(t, router.Options{})

	st, _ := doReq(t, ts.URL, "GET", "/reminders/ws", "", nil)
	if st != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", st)
	}
}

func TestHTTP_Health(t *testing.T) {
	ts, _ := newServer(t, router.Options{})

	st, body := doReq(t, ts.URL, "GET", "/health", "", nil)
	if st != http.StatusOK || string(body) != "ok" {
		t.Fatalf("unexpected health: %d %s", st, string(body))
	}
}

func TestHTTP_SwaggerDocListsEditorRoutes(t *testing.T) {
	ts, _ := newServer(t, router.Options{})

	st, body := doReq(t, ts.URL, "GET", "/swagger/doc.json", "", nil)
	if st != http.StatusOK {
		t.Fatalf("swagger doc: expected 200, got %d", st)
	}

	var doc struct {
		Paths map[string]map[string]any `json:"paths"`
	}
	if err := json.Unmarshal(body, &doc); err != nil {
		t.Fatalf("swagger doc is not json: %v", err)
	}
	want := map[string]string{
		"/reminders/editor":                     "get",
		"/reminders/editor/fields":              "put",
		"/reminders/editor/select/{reminderID}": "post",
		"/reminders/editor/cancel":              "post",
		"/reminders/editor/submit":              "post",
		"/reminders/editor/delete":              "post",
	}
	for path, method := range want {
		if _, ok := doc.Paths[path][method]; !ok {
			t.Errorf("swagger doc missing %s %s", strings.ToUpper(method), path)
		}
	}
}

func createReminder(t *testing.T, baseURL, userID, title, category, dueAt string) string {
	t.Helper()

	st, body := doReq(t, baseURL, "POST", "/reminders", userID, map[string]any{
		"title":    title,
		"category": category,
		"due_at":   dueAt,
	})
	if st != http.StatusCreated {
		t.Fatalf("create reminder: expected 201, got %d body=%s", st, string(body))
	}

	var resp mutationJSON
	_ = json.Unmarshal(body, &resp)
	if resp.Reminder.ID == "" {
		t.Fatalf("create reminder: missing id body=%s", string(body))
	}
	if resp.Notice != "Reminder added!" {
		t.Fatalf("create reminder: unexpected notice %q", resp.Notice)
	}
	return resp.Reminder.ID
}

func doReq(t *testing.T, baseURL, method, path, debugUserID string, body any) (int, []byte) {
	t.Helper()

	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("json marshal: %v", err)
		}
		rdr = bytes.NewReader(b)
	}

	req, err := http.NewRequest(method, baseURL+path, rdr)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if debugUserID != "" {
		req.Header.Set("X-Debug-User-ID", debugUserID)
	}

	res, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer res.Body.Close()

	respBody, _ := io.ReadAll(res.Body)
	return res.StatusCode, respBody
}
