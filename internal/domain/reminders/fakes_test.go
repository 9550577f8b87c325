package reminders

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"
)

// -------------------------
// Test store (in-memory)
// -------------------------

var errTransport = errors.New("connection reset")

type testStore struct {
	mu     sync.Mutex
	byID   map[string]Reminder
	nextID int
	now    time.Time

	// fallas forzadas por operación
	failList, failCreate, failUpdate, failDelete bool

	creates int
	// hook opcional que corre dentro de Create (tests de serialización)
	onCreate func()
}

func newTestStore() *testStore {
	return &testStore{
		byID: map[string]Reminder{},
		now:  time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC),
	}
}

func (s *testStore) List(_ context.Context, owner string) ([]Reminder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failList {
		return nil, errTransport
	}
	out := make([]Reminder, 0)
	for _, r := range s.byID {
		if r.Owner == owner {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *testStore) Create(_ context.Context, in NewReminder) (Reminder, error) {
	if s.onCreate != nil {
		s.onCreate()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failCreate {
		return Reminder{}, errTransport
	}
	if err := ValidateNew(in); err != nil {
		return Reminder{}, err
	}
	s.nextID++
	s.creates++
	r := Reminder{
		ID:        fmt.Sprintf("r%d", s.nextID),
		Owner:     in.Owner,
		Title:     in.Title,
		Category:  in.Category,
		DueAt:     in.DueAt,
		CreatedAt: s.now,
	}
	s.byID[r.ID] = r
	return r, nil
}

func (s *testStore) Update(_ context.Context, owner, id string, p Patch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failUpdate {
		return errTransport
	}
	r, ok := s.byID[id]
	if !ok || r.Owner != owner {
		return ErrNotFound
	}
	s.byID[id] = p.Apply(r)
	return nil
}

func (s *testStore) Delete(_ context.Context, owner, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failDelete {
		return errTransport
	}
	r, ok := s.byID[id]
	if !ok || r.Owner != owner {
		return ErrNotFound
	}
	delete(s.byID, id)
	return nil
}

// put inserta directo en el store (simula otra sesión).
func (s *testStore) put(r Reminder) {
	s.mu.Lock()
	s.byID[r.ID] = r
	s.mu.Unlock()
}

// -------------------------
// Test dispatcher
// -------------------------

type testDispatcher struct {
	mu    sync.Mutex
	calls []string
	fail  bool
}

func (d *testDispatcher) record(action DispatchAction, id string) Outcome {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.calls = append(d.calls, string(action)+":"+id)
	if d.fail {
		return Failed(action, id, "service down")
	}
	return Sent(action, id)
}

func (d *testDispatcher) NotifyCreated(_ context.Context, r Reminder) Outcome {
	return d.record(ActionCreated, r.ID)
}

func (d *testDispatcher) NotifyUpdated(_ context.Context, r Reminder) Outcome {
	return d.record(ActionUpdated, r.ID)
}

func (d *testDispatcher) NotifyCancelled(_ context.Context, id string) Outcome {
	return d.record(ActionCancelled, id)
}

func (d *testDispatcher) Calls() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.calls...)
}

const testOwner = "ana@example.com"

func newTestRepository(opts ...Option) (*Repository, *testStore, *testDispatcher) {
	st := newTestStore()
	d := &testDispatcher{}
	return NewRepository(testOwner, st, d, opts...), st, d
}

func draft(title string, cat Category, due string) Draft {
	return Draft{Title: title, Category: string(cat), DueAt: due}
}
