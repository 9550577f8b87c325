// Package storetest tiene el contrato de reminders.Store que cumplen todos los adapters.
package storetest

import (
	"context"
	"errors"
	"testing"
	"time"

	"pet-care-reminders/internal/domain/reminders"
)

// Run ejecuta el contrato completo. newStore debe devolver un store vacío en cada llamada.
func Run(t *testing.T, newStore func(t *testing.T) reminders.Store) {
	t.Helper()

	t.Run("ListEmpty", func(t *testing.T) { testListEmpty(t, newStore(t)) })
	t.Run("CreateAndList", func(t *testing.T) { testCreateAndList(t, newStore(t)) })
	t.Run("CreateRejectsMissingFields", func(t *testing.T) { testCreateValidation(t, newStore(t)) })
	t.Run("UpdatePatchedFieldsOnly", func(t *testing.T) { testUpdate(t, newStore(t)) })
	t.Run("OwnerScope", func(t *testing.T) { testOwnerScope(t, newStore(t)) })
	t.Run("DeleteTwice", func(t *testing.T) { testDeleteTwice(t, newStore(t)) })
}

var due = time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

func mustCreate(t *testing.T, s reminders.Store, in reminders.NewReminder) reminders.Reminder {
	t.Helper()
	r, err := s.Create(context.Background(), in)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	return r
}

func testListEmpty(t *testing.T, s reminders.Store) {
	got, err := s.List(context.Background(), "nobody@example.com")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", got)
	}
}

func testCreateAndList(t *testing.T, s reminders.Store) {
	ctx := context.Background()
	r := mustCreate(t, s, reminders.NewReminder{
		Owner: "ana@example.com", Title: "Rabies shot", Category: reminders.CategoryVaccination, DueAt: due,
	})
	if r.ID == "" || r.CreatedAt.IsZero() {
		t.Fatalf("expected id and created_at to be assigned, got %#v", r)
	}

	later := mustCreate(t, s, reminders.NewReminder{
		Owner: "ana@example.com", Title: "Nail trim", Category: reminders.CategoryGrooming, DueAt: due.Add(48 * time.Hour),
	})

	got, err := s.List(ctx, "ana@example.com")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 reminders, got %d", len(got))
	}
	if got[0].ID != r.ID || got[1].ID != later.ID {
		t.Fatalf("expected due_at ascending order, got %s, %s", got[0].ID, got[1].ID)
	}
	if got[0].Title != "Rabies shot" || got[0].Category != reminders.CategoryVaccination || !got[0].DueAt.Equal(due) {
		t.Fatalf("fields not persisted: %#v", got[0])
	}
	if got[0].Owner != "ana@example.com" {
		t.Fatalf("owner = %q", got[0].Owner)
	}
}

func testCreateValidation(t *testing.T, s reminders.Store) {
	_, err := s.Create(context.Background(), reminders.NewReminder{Owner: "ana@example.com", Category: reminders.CategoryGrooming, DueAt: due})
	if !errors.Is(err, reminders.ErrValidation) {
		t.Fatalf("expected ErrValidation for missing title, got %v", err)
	}
	_, err = s.Create(context.Background(), reminders.NewReminder{Title: "x", Category: reminders.CategoryGrooming, DueAt: due})
	if !errors.Is(err, reminders.ErrValidation) {
		t.Fatalf("expected ErrValidation for missing owner, got %v", err)
	}
}

func testUpdate(t *testing.T, s reminders.Store) {
	ctx := context.Background()
	r := mustCreate(t, s, reminders.NewReminder{
		Owner: "ana@example.com", Title: "Brush", Category: reminders.CategoryGrooming, DueAt: due,
	})

	cat := reminders.CategoryMedication
	if err := s.Update(ctx, "ana@example.com", r.ID, reminders.Patch{Category: &cat}); err != nil {
		t.Fatalf("update: %v", err)
	}

	got, err := s.List(ctx, "ana@example.com")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 reminder, got %d", len(got))
	}
	u := got[0]
	if u.Category != reminders.CategoryMedication {
		t.Fatalf("category = %q, want Medication", u.Category)
	}
	if u.ID != r.ID || u.Title != "Brush" || !u.DueAt.Equal(due) || !u.CreatedAt.Equal(r.CreatedAt) {
		t.Fatalf("unpatched fields changed: before=%#v after=%#v", r, u)
	}

	if err := s.Update(ctx, "ana@example.com", "missing", reminders.Patch{Category: &cat}); !errors.Is(err, reminders.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func testOwnerScope(t *testing.T, s reminders.Store) {
	ctx := context.Background()
	r := mustCreate(t, s, reminders.NewReminder{
		Owner: "ana@example.com", Title: "Vet", Category: reminders.CategoryDoctorAppointment, DueAt: due,
	})

	got, err := s.List(ctx, "bo@example.com")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("cross-owner leak: %#v", got)
	}

	title := "hijacked"
	if err := s.Update(ctx, "bo@example.com", r.ID, reminders.Patch{Title: &title}); !errors.Is(err, reminders.ErrNotFound) {
		t.Fatalf("update from another owner: expected ErrNotFound, got %v", err)
	}
	if err := s.Delete(ctx, "bo@example.com", r.ID); !errors.Is(err, reminders.ErrNotFound) {
		t.Fatalf("delete from another owner: expected ErrNotFound, got %v", err)
	}
}

func testDeleteTwice(t *testing.T, s reminders.Store) {
	ctx := context.Background()
	r := mustCreate(t, s, reminders.NewReminder{
		Owner: "ana@example.com", Title: "Pill", Category: reminders.CategoryMedication, DueAt: due,
	})

	if err := s.Delete(ctx, "ana@example.com", r.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := s.Delete(ctx, "ana@example.com", r.ID); !errors.Is(err, reminders.ErrNotFound) {
		t.Fatalf("second delete: expected ErrNotFound, got %v", err)
	}
	got, _ := s.List(ctx, "ana@example.com")
	if len(got) != 0 {
		t.Fatalf("expected empty list after delete, got %d", len(got))
	}
}
