package reminders

import (
	"strings"
	"time"
)

// DueAtLayout es el formato "datetime-local" que usa el formulario del editor.
const DueAtLayout = "2006-01-02T15:04"

// ParseDueAt acepta RFC3339 o el formato del formulario (interpretado en loc).
func ParseDueAt(s string, loc *time.Location) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	if loc == nil {
		loc = time.UTC
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, true
	}
	for _, layout := range []string{DueAtLayout, "2006-01-02T15:04:05"} {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// FormatDueAt es la inversa de ParseDueAt para el formulario. Los segundos solo aparecen si no son cero.
func FormatDueAt(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	t = t.In(loc)
	if t.Second() != 0 {
		return t.Format(DueAtLayout + ":05")
	}
	return t.Format(DueAtLayout)
}

// ValidateNew verifica los invariantes de un recordatorio antes de persistirlo.
// Los stores la llaman también: un recordatorio incompleto nunca llega al store.
func ValidateNew(in NewReminder) error {
	var bad []string
	if strings.TrimSpace(in.Owner) == "" {
		bad = append(bad, "owner")
	}
	if strings.TrimSpace(in.Title) == "" {
		bad = append(bad, "title")
	}
	if !in.Category.Valid() {
		bad = append(bad, "category")
	}
	if in.DueAt.IsZero() {
		bad = append(bad, "due_at")
	}
	if len(bad) > 0 {
		return invalid(bad...)
	}
	return nil
}

// ValidatePatch exige al menos un campo y que los presentes sean válidos.
func ValidatePatch(p Patch) error {
	if p.IsEmpty() {
		return invalid("patch")
	}
	var bad []string
	if p.Title != nil && strings.TrimSpace(*p.Title) == "" {
		bad = append(bad, "title")
	}
	if p.Category != nil && !p.Category.Valid() {
		bad = append(bad, "category")
	}
	if p.DueAt != nil && p.DueAt.IsZero() {
		bad = append(bad, "due_at")
	}
	if len(bad) > 0 {
		return invalid(bad...)
	}
	return nil
}

// Draft son los campos crudos del formulario (lo que escribe el usuario).
type Draft struct {
	Title    string
	Category string
	DueAt    string
}

// EmptyDraft es el estado inicial del formulario.
func EmptyDraft() Draft {
	return Draft{Category: string(DefaultCategory)}
}

func (d Draft) parse(loc *time.Location) (string, Category, time.Time, error) {
	var bad []string

	title := strings.TrimSpace(d.Title)
	if title == "" {
		bad = append(bad, "title")
	}
	cat, ok := ParseCategory(d.Category)
	if !ok {
		bad = append(bad, "category")
	}
	due, ok := ParseDueAt(d.DueAt, loc)
	if !ok {
		bad = append(bad, "due_at")
	}
	if len(bad) > 0 {
		return "", "", time.Time{}, invalid(bad...)
	}
	return title, cat, due, nil
}

// ToNew valida el borrador y lo convierte en un NewReminder del owner.
func (d Draft) ToNew(owner string, loc *time.Location) (NewReminder, error) {
	title, cat, due, err := d.parse(loc)
	if err != nil {
		return NewReminder{}, err
	}
	in := NewReminder{Owner: strings.TrimSpace(owner), Title: title, Category: cat, DueAt: due}
	if err := ValidateNew(in); err != nil {
		return NewReminder{}, err
	}
	return in, nil
}

// ToPatch valida el borrador completo y lo convierte en un patch de los tres campos editables.
func (d Draft) ToPatch(loc *time.Location) (Patch, error) {
	title, cat, due, err := d.parse(loc)
	if err != nil {
		return Patch{}, err
	}
	return Patch{Title: &title, Category: &cat, DueAt: &due}, nil
}

// DraftFrom reconstruye los campos del formulario a partir de un recordatorio guardado.
func DraftFrom(r Reminder, loc *time.Location) Draft {
	return Draft{
		Title:    r.Title,
		Category: string(r.Category),
		DueAt:    FormatDueAt(r.DueAt, loc),
	}
}
