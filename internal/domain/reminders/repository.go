package reminders

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"pet-care-reminders/internal/platform/logger"
)

// Snapshot es el conjunto completo de recordatorios del owner en un instante dado,
// tal como se publica a los consumidores. Es inmutable una vez publicado: Snapshot()
// entrega una copia del slice y los observers de Subscribe no deben modificarlo.
type Snapshot struct {
	Owner       string
	Version     uint64
	Reminders   []Reminder
	PublishedAt time.Time
}

func (s Snapshot) Len() int { return len(s.Reminders) }

// Find busca por ID (nunca por label).
func (s Snapshot) Find(id string) (Reminder, bool) {
	for _, r := range s.Reminders {
		if r.ID == id {
			return r, true
		}
	}
	return Reminder{}, false
}

// Result es lo que devuelve una mutación exitosa. Dispatch puede venir Failed:
// eso se informa como warning, no como error.
type Result struct {
	Action   DispatchAction
	Reminder Reminder
	Dispatch Outcome
}

func (r Result) Warning() error { return r.Dispatch.Err() }

// Notice arma el aviso transitorio para el usuario (éxito + warning de notificación si aplica).
func (r Result) Notice() string {
	var msg string
	switch r.Action {
	case ActionCreated:
		msg = "Reminder added!"
	case ActionUpdated:
		msg = "Reminder updated!"
	case ActionCancelled:
		msg = "Reminder deleted!"
	default:
		msg = "Done."
	}
	if !r.Dispatch.OK() {
		msg += " Warning: notification could not be sent (" + r.Dispatch.Reason + ")."
	}
	return msg
}

type Option func(*Repository)

func WithLogger(l logger.Logger) Option {
	return func(r *Repository) {
		if l != nil {
			r.log = l
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(r *Repository) {
		if now != nil {
			r.now = now
		}
	}
}

// WithLocation fija la zona horaria con la que se interpretan las fechas del formulario.
func WithLocation(loc *time.Location) Option {
	return func(r *Repository) {
		if loc != nil {
			r.loc = loc
		}
	}
}

// WithResync relista el store después de cada mutación exitosa.
// Si el relistado falla, se conserva el cache ya actualizado y solo se loguea.
func WithResync() Option {
	return func(r *Repository) { r.resync = true }
}

// Repository es la vista autoritativa en memoria de los recordatorios de UNA sesión autenticada.
// Orquesta Store (escritura durable) y Dispatcher (efecto best-effort) y publica snapshots.
//
// Las operaciones mutantes (Add, Update, Remove, Refresh) se serializan: una segunda llamada
// espera a que termine la primera. Las lecturas (Snapshot, CalendarEvents, Upcoming) no bloquean.
type Repository struct {
	owner      string
	store      Store
	dispatcher Dispatcher
	log        logger.Logger
	now        func() time.Time
	loc        *time.Location
	resync     bool

	opMu  sync.Mutex
	items []Reminder // solo se toca con opMu

	current atomic.Pointer[Snapshot]

	obsMu     sync.Mutex
	observers map[int]func(Snapshot)
	nextObs   int
}

func NewRepository(owner string, store Store, dispatcher Dispatcher, opts ...Option) *Repository {
	if dispatcher == nil {
		dispatcher = nopDispatcher{}
	}
	r := &Repository{
		owner:      strings.TrimSpace(owner),
		store:      store,
		dispatcher: dispatcher,
		log:        logger.Nop(),
		now:        time.Now,
		loc:        time.UTC,
		observers:  map[int]func(Snapshot){},
	}
	for _, opt := range opts {
		opt(r)
	}
	r.log = r.log.With(map[string]any{"owner": r.owner})
	r.current.Store(&Snapshot{Owner: r.owner, Reminders: []Reminder{}, PublishedAt: r.now()})
	return r
}

func (r *Repository) Owner() string            { return r.owner }
func (r *Repository) Location() *time.Location { return r.loc }

// Snapshot devuelve una copia del último snapshot publicado. Nunca refleja una operación a medias.
func (r *Repository) Snapshot() Snapshot {
	s := *r.current.Load()
	s.Reminders = append([]Reminder(nil), s.Reminders...)
	return s
}

func (r *Repository) CalendarEvents() []CalendarEvent {
	return ToCalendarEvents(r.Snapshot())
}

func (r *Repository) Upcoming(now time.Time, limit int) []Reminder {
	return ToUpcoming(r.Snapshot(), now, limit)
}

// Subscribe registra fn para cada publicación. fn corre con la operación todavía en curso:
// no debe llamar operaciones mutantes del mismo Repository.
func (r *Repository) Subscribe(fn func(Snapshot)) (unsubscribe func()) {
	r.obsMu.Lock()
	id := r.nextObs
	r.nextObs++
	r.observers[id] = fn
	r.obsMu.Unlock()

	return func() {
		r.obsMu.Lock()
		delete(r.observers, id)
		r.obsMu.Unlock()
	}
}

// Add valida el borrador localmente, lo persiste, notifica y publica.
func (r *Repository) Add(ctx context.Context, d Draft) (Result, error) {
	in, err := d.ToNew(r.owner, r.loc)
	if err != nil {
		return Result{}, err
	}

	// Una vez aceptada, la operación corre hasta el final aunque el caller cancele.
	ctx = context.WithoutCancel(ctx)

	r.opMu.Lock()
	defer r.opMu.Unlock()

	created, err := r.store.Create(ctx, in)
	if err != nil {
		return Result{}, storeError("create", err)
	}

	r.items = append(r.items, created)
	out := r.dispatcher.NotifyCreated(ctx, created)
	r.logDispatch(out)

	r.resyncLocked(ctx)
	r.publishLocked()

	return Result{Action: ActionCreated, Reminder: created, Dispatch: out}, nil
}

// Update aplica el patch sobre un recordatorio que ya está en cache.
// ID, Owner y CreatedAt se preservan siempre.
func (r *Repository) Update(ctx context.Context, id string, p Patch) (Result, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Result{}, invalid("id")
	}
	if err := ValidatePatch(p); err != nil {
		return Result{}, err
	}

	ctx = context.WithoutCancel(ctx)

	r.opMu.Lock()
	defer r.opMu.Unlock()

	idx := r.indexLocked(id)
	if idx < 0 {
		return Result{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	if err := r.store.Update(ctx, r.owner, id, p); err != nil {
		return Result{}, storeError("update", err)
	}

	updated := p.Apply(r.items[idx])
	r.items[idx] = updated

	out := r.dispatcher.NotifyUpdated(ctx, updated)
	r.logDispatch(out)

	r.resyncLocked(ctx)
	r.publishLocked()

	return Result{Action: ActionUpdated, Reminder: updated, Dispatch: out}, nil
}

// Remove borra en el store y recién entonces desaloja del cache.
// Repetirlo sobre el mismo id devuelve ErrNotFound (lo decide el store).
func (r *Repository) Remove(ctx context.Context, id string) (Result, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Result{}, invalid("id")
	}

	ctx = context.WithoutCancel(ctx)

	r.opMu.Lock()
	defer r.opMu.Unlock()

	if err := r.store.Delete(ctx, r.owner, id); err != nil {
		return Result{}, storeError("delete", err)
	}

	var removed Reminder
	if idx := r.indexLocked(id); idx >= 0 {
		removed = r.items[idx]
		r.items = append(r.items[:idx:idx], r.items[idx+1:]...)
	} else {
		removed = Reminder{ID: id, Owner: r.owner}
	}

	out := r.dispatcher.NotifyCancelled(ctx, id)
	r.logDispatch(out)

	r.resyncLocked(ctx)
	r.publishLocked()

	return Result{Action: ActionCancelled, Reminder: removed, Dispatch: out}, nil
}

// Refresh reemplaza el cache completo con lo que hay en el store (sin diff incremental).
func (r *Repository) Refresh(ctx context.Context) error {
	r.opMu.Lock()
	defer r.opMu.Unlock()

	items, err := r.store.List(ctx, r.owner)
	if err != nil {
		return storeError("list", err)
	}
	r.items = r.ownedOnly(items)
	r.publishLocked()
	return nil
}

func (r *Repository) resyncLocked(ctx context.Context) {
	if !r.resync {
		return
	}
	items, err := r.store.List(ctx, r.owner)
	if err != nil {
		r.log.Warn("reminder resync failed, keeping local cache", map[string]any{"error": err.Error()})
		return
	}
	r.items = r.ownedOnly(items)
}

// ownedOnly descarta cualquier documento de otro owner (no debe haber fuga entre usuarios).
func (r *Repository) ownedOnly(items []Reminder) []Reminder {
	out := make([]Reminder, 0, len(items))
	for _, it := range items {
		if it.Owner != r.owner {
			r.log.Warn("store returned reminder of another owner", map[string]any{"reminder_id": it.ID})
			continue
		}
		out = append(out, it)
	}
	return out
}

func (r *Repository) indexLocked(id string) int {
	for i, it := range r.items {
		if it.ID == id {
			return i
		}
	}
	return -1
}

func (r *Repository) publishLocked() {
	prev := r.current.Load()

	items := make([]Reminder, len(r.items))
	copy(items, r.items)

	snap := &Snapshot{
		Owner:       r.owner,
		Version:     prev.Version + 1,
		Reminders:   items,
		PublishedAt: r.now(),
	}
	r.current.Store(snap)

	r.obsMu.Lock()
	fns := make([]func(Snapshot), 0, len(r.observers))
	for _, fn := range r.observers {
		fns = append(fns, fn)
	}
	r.obsMu.Unlock()

	for _, fn := range fns {
		fn(*snap)
	}
}

func (r *Repository) logDispatch(out Outcome) {
	fields := map[string]any{
		"action":      string(out.Action),
		"reminder_id": out.ReminderID,
	}
	if out.OK() {
		r.log.Debug("reminder notification sent", fields)
		return
	}
	fields["reason"] = out.Reason
	r.log.Warn("reminder notification failed", fields)
}

// storeError normaliza errores del store a la taxonomía del dominio.
// Cualquier error desconocido se trata como ErrStoreUnavailable.
func storeError(op string, err error) error {
	switch {
	case errors.Is(err, ErrValidation), errors.Is(err, ErrNotFound), errors.Is(err, ErrStoreUnavailable):
		return err
	default:
		return fmt.Errorf("%w: %s: %v", ErrStoreUnavailable, op, err)
	}
}

type nopDispatcher struct{}

func (nopDispatcher) NotifyCreated(_ context.Context, r Reminder) Outcome {
	return Sent(ActionCreated, r.ID)
}

func (nopDispatcher) NotifyUpdated(_ context.Context, r Reminder) Outcome {
	return Sent(ActionUpdated, r.ID)
}

func (nopDispatcher) NotifyCancelled(_ context.Context, id string) Outcome {
	return Sent(ActionCancelled, id)
}
