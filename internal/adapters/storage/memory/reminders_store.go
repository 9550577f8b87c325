package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"pet-care-reminders/internal/domain/reminders"

	"github.com/google/uuid"
)

// RemindersStore es un reminders.Store en memoria (modo dev y tests).
type RemindersStore struct {
	mu   sync.RWMutex
	byID map[string]reminders.Reminder
	now  func() time.Time
}

func NewRemindersStore() *RemindersStore {
	return &RemindersStore{
		byID: make(map[string]reminders.Reminder),
		now:  time.Now,
	}
}

func (s *RemindersStore) List(ctx context.Context, owner string) ([]reminders.Reminder, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]reminders.Reminder, 0)
	for _, r := range s.byID {
		if r.Owner == owner {
			out = append(out, r)
		}
	}

	// Mismo orden que los stores SQL: due_at asc.
	sort.Slice(out, func(i, j int) bool {
		if out[i].DueAt.Equal(out[j].DueAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].DueAt.Before(out[j].DueAt)
	})
	return out, nil
}

func (s *RemindersStore) Create(ctx context.Context, in reminders.NewReminder) (reminders.Reminder, error) {
	if err := reminders.ValidateNew(in); err != nil {
		return reminders.Reminder{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	r := reminders.Reminder{
		ID:        uuid.NewString(),
		Owner:     strings.TrimSpace(in.Owner),
		Title:     strings.TrimSpace(in.Title),
		Category:  in.Category,
		DueAt:     in.DueAt,
		CreatedAt: s.now(),
	}
	s.byID[r.ID] = r
	return r, nil
}

func (s *RemindersStore) Update(ctx context.Context, owner, id string, p reminders.Patch) error {
	if err := reminders.ValidatePatch(p); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.byID[id]
	if !ok || r.Owner != owner {
		return fmt.Errorf("%w: %s", reminders.ErrNotFound, id)
	}
	s.byID[id] = p.Apply(r)
	return nil
}

func (s *RemindersStore) Delete(ctx context.Context, owner, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.byID[id]
	if !ok || r.Owner != owner {
		return fmt.Errorf("%w: %s", reminders.ErrNotFound, id)
	}
	delete(s.byID, id)
	return nil
}
