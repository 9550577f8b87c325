package reminders

import (
	"strings"
	"time"
)

// Category es la clase de cuidado a la que se refiere el recordatorio.
// Los valores son los mismos que ve el usuario en el formulario.
type Category string

const (
	CategoryDoctorAppointment Category = "Doctor Appointment"
	CategoryVaccination       Category = "Vaccination"
	CategoryMedication        Category = "Medication"
	CategoryGrooming          Category = "Grooming"
)

// DefaultCategory es la categoría con la que arranca un borrador nuevo.
const DefaultCategory = CategoryDoctorAppointment

var categories = []Category{
	CategoryDoctorAppointment,
	CategoryVaccination,
	CategoryMedication,
	CategoryGrooming,
}

// Categories devuelve el enum completo en orden de presentación.
func Categories() []Category {
	out := make([]Category, len(categories))
	copy(out, categories)
	return out
}

func (c Category) Valid() bool {
	for _, known := range categories {
		if c == known {
			return true
		}
	}
	return false
}

// ParseCategory acepta el valor visible ("Doctor Appointment") o el identificador
// compacto ("DoctorAppointment", "doctor_appointment"), sin importar mayúsculas.
func ParseCategory(s string) (Category, bool) {
	key := categoryKey(s)
	if key == "" {
		return "", false
	}
	for _, c := range categories {
		if categoryKey(string(c)) == key {
			return c, true
		}
	}
	return "", false
}

func categoryKey(s string) string {
	r := strings.NewReplacer(" ", "", "_", "", "-", "")
	return strings.ToLower(r.Replace(strings.TrimSpace(s)))
}

// Reminder es un evento de cuidado programado que pertenece a un único usuario.
type Reminder struct {
	ID    string
	Owner string

	Title    string
	Category Category

	DueAt     time.Time
	CreatedAt time.Time
}

// NewReminder es un recordatorio todavía sin persistir (sin ID ni CreatedAt).
type NewReminder struct {
	Owner    string
	Title    string
	Category Category
	DueAt    time.Time
}

// Patch describe una actualización parcial. nil = no tocar.
// Owner, ID y CreatedAt no son actualizables.
type Patch struct {
	Title    *string
	Category *Category
	DueAt    *time.Time
}

func (p Patch) IsEmpty() bool {
	return p.Title == nil && p.Category == nil && p.DueAt == nil
}

// Apply devuelve una copia de r con los campos del patch aplicados.
func (p Patch) Apply(r Reminder) Reminder {
	if p.Title != nil {
		r.Title = strings.TrimSpace(*p.Title)
	}
	if p.Category != nil {
		r.Category = *p.Category
	}
	if p.DueAt != nil {
		r.DueAt = *p.DueAt
	}
	return r
}

// Label es el texto que se muestra en el calendario: "<categoría>: <título>".
func (r Reminder) Label() string {
	return string(r.Category) + ": " + r.Title
}
