package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"pet-care-reminders/internal/domain/reminders"

	"github.com/google/uuid"
)

// Dialect resuelve las diferencias de placeholders entre drivers.
type Dialect struct {
	Name        string
	Placeholder func(n int) string
}

var (
	Postgres = Dialect{Name: "postgres", Placeholder: func(n int) string { return fmt.Sprintf("$%d", n) }}
	SQLite   = Dialect{Name: "sqlite", Placeholder: func(int) string { return "?" }}
)

// RemindersStore implementa reminders.Store sobre database/sql (tabla reminders).
// Los tiempos se guardan en UTC con precisión de microsegundos (la de timestamptz).
type RemindersStore struct {
	db  *sql.DB
	d   Dialect
	now func() time.Time
}

func NewRemindersStore(db *sql.DB, d Dialect) *RemindersStore {
	return &RemindersStore{db: db, d: d, now: time.Now}
}

// rebind reemplaza cada "?" por el placeholder del dialecto.
func (s *RemindersStore) rebind(q string) string {
	var sb strings.Builder
	n := 0
	for _, c := range q {
		if c == '?' {
			n++
			sb.WriteString(s.d.Placeholder(n))
			continue
		}
		sb.WriteRune(c)
	}
	return sb.String()
}

func unavailable(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", reminders.ErrStoreUnavailable, op, err)
}

func (s *RemindersStore) List(ctx context.Context, owner string) ([]reminders.Reminder, error) {
	rows, err := s.db.QueryContext(ctx, s.rebind(`
		SELECT id, owner, title, category, due_at, created_at
		FROM reminders
		WHERE owner = ?
		ORDER BY due_at ASC, id ASC
	`), owner)
	if err != nil {
		return nil, unavailable("list", err)
	}
	defer rows.Close()

	out := make([]reminders.Reminder, 0)
	for rows.Next() {
		var r reminders.Reminder
		var category string
		if err := rows.Scan(&r.ID, &r.Owner, &r.Title, &category, &r.DueAt, &r.CreatedAt); err != nil {
			return nil, unavailable("scan", err)
		}
		r.Category = reminders.Category(category)
		r.DueAt = r.DueAt.UTC()
		r.CreatedAt = r.CreatedAt.UTC()
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable("list", err)
	}
	return out, nil
}

func (s *RemindersStore) Create(ctx context.Context, in reminders.NewReminder) (reminders.Reminder, error) {
	if err := reminders.ValidateNew(in); err != nil {
		return reminders.Reminder{}, err
	}

	r := reminders.Reminder{
		ID:        uuid.NewString(),
		Owner:     strings.TrimSpace(in.Owner),
		Title:     strings.TrimSpace(in.Title),
		Category:  in.Category,
		DueAt:     in.DueAt.UTC().Truncate(time.Microsecond),
		CreatedAt: s.now().UTC().Truncate(time.Microsecond),
	}

	_, err := s.db.ExecContext(ctx, s.rebind(`
		INSERT INTO reminders (id, owner, title, category, due_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`), r.ID, r.Owner, r.Title, string(r.Category), r.DueAt, r.CreatedAt)
	if err != nil {
		return reminders.Reminder{}, unavailable("insert", err)
	}
	return r, nil
}

func (s *RemindersStore) Update(ctx context.Context, owner, id string, p reminders.Patch) error {
	if err := reminders.ValidatePatch(p); err != nil {
		return err
	}

	sets := make([]string, 0, 3)
	args := make([]any, 0, 5)
	if p.Title != nil {
		sets = append(sets, "title = ?")
		args = append(args, strings.TrimSpace(*p.Title))
	}
	if p.Category != nil {
		sets = append(sets, "category = ?")
		args = append(args, string(*p.Category))
	}
	if p.DueAt != nil {
		sets = append(sets, "due_at = ?")
		args = append(args, p.DueAt.UTC().Truncate(time.Microsecond))
	}
	args = append(args, id, owner)

	q := "UPDATE reminders SET " + strings.Join(sets, ", ") + " WHERE id = ? AND owner = ?"
	res, err := s.db.ExecContext(ctx, s.rebind(q), args...)
	if err != nil {
		return unavailable("update", err)
	}
	return affectedOne(res, id)
}

func (s *RemindersStore) Delete(ctx context.Context, owner, id string) error {
	res, err := s.db.ExecContext(ctx, s.rebind(`
		DELETE FROM reminders WHERE id = ? AND owner = ?
	`), id, owner)
	if err != nil {
		return unavailable("delete", err)
	}
	return affectedOne(res, id)
}

func affectedOne(res sql.Result, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return unavailable("rows affected", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", reminders.ErrNotFound, id)
	}
	return nil
}
