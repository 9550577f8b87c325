package reminders

import (
	"context"
	"strings"
	"sync"
	"time"
)

// Session es la API de consumo de una sesión autenticada: un Repository (cache)
// y un Editor que le emite comandos. Se descarta completa en logout.
type Session struct {
	repo   *Repository
	editor *Editor
}

func NewSession(repo *Repository) *Session {
	return &Session{repo: repo, editor: NewEditor(repo)}
}

func (s *Session) Owner() string            { return s.repo.Owner() }
func (s *Session) Repository() *Repository { return s.repo }
func (s *Session) Editor() *Editor         { return s.editor }

func (s *Session) ListCalendarEvents() []CalendarEvent {
	return s.repo.CalendarEvents()
}

func (s *Session) ListUpcoming(now time.Time, limit int) []Reminder {
	return s.repo.Upcoming(now, limit)
}

func (s *Session) SubmitDraft(ctx context.Context, d Draft) (Result, error) {
	return s.editor.SubmitDraft(ctx, d)
}

func (s *Session) SubmitEdit(ctx context.Context, id string, d Draft) (Result, error) {
	return s.editor.SubmitEdit(ctx, id, d)
}

func (s *Session) DeleteReminder(ctx context.Context, id string) (Result, error) {
	return s.editor.DeleteByID(ctx, id)
}

func (s *Session) Refresh(ctx context.Context) error {
	return s.repo.Refresh(ctx)
}

// Sessions es el registro de sesiones vivas por owner.
// Open equivale al login (construye el cache y hace el refresh inicial); Close al logout.
type Sessions struct {
	newRepo func(owner string) *Repository

	mu      sync.Mutex
	byOwner map[string]*Session
	onOpen  []func(*Session)
}

func NewSessions(newRepo func(owner string) *Repository) *Sessions {
	return &Sessions{
		newRepo: newRepo,
		byOwner: map[string]*Session{},
	}
}

// OnOpen registra un hook que corre una vez por sesión nueva, antes del refresh inicial.
func (s *Sessions) OnOpen(fn func(*Session)) {
	s.mu.Lock()
	s.onOpen = append(s.onOpen, fn)
	s.mu.Unlock()
}

// Open devuelve la sesión del owner, creándola si no existe.
// Si el refresh inicial falla la sesión no se registra.
func (s *Sessions) Open(ctx context.Context, owner string) (*Session, error) {
	owner = strings.TrimSpace(owner)
	if owner == "" {
		return nil, invalid("owner")
	}

	if sess, ok := s.Get(owner); ok {
		return sess, nil
	}

	sess := NewSession(s.newRepo(owner))

	s.mu.Lock()
	hooks := append([]func(*Session){}, s.onOpen...)
	s.mu.Unlock()
	for _, fn := range hooks {
		fn(sess)
	}

	if err := sess.Refresh(ctx); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	// Otro request pudo abrir la misma sesión mientras refrescábamos.
	if existing, ok := s.byOwner[owner]; ok {
		return existing, nil
	}
	s.byOwner[owner] = sess
	return sess, nil
}

func (s *Sessions) Get(owner string) (*Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.byOwner[strings.TrimSpace(owner)]
	return sess, ok
}

// Close descarta la sesión y su cache. Devuelve false si no había sesión.
func (s *Sessions) Close(owner string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	owner = strings.TrimSpace(owner)
	if _, ok := s.byOwner[owner]; !ok {
		return false
	}
	delete(s.byOwner, owner)
	return true
}

func (s *Sessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.byOwner)
}
