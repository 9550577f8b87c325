package reminders

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

type EditorState string

const (
	// StateComposing: sin selección, el formulario arma un recordatorio nuevo.
	StateComposing EditorState = "composing"
	// StateEditing: hay un ID seleccionado; submit actualiza y existe la acción de borrar.
	StateEditing EditorState = "editing"
)

var ErrNoSelection = fmt.Errorf("%w: no reminder selected", ErrValidation)

// EditorView es una foto consistente del estado del editor.
type EditorView struct {
	State      EditorState
	SelectedID string
	Fields     Draft
}

// Editor es la máquina de estados del formulario crear/editar de una sesión.
// Los comandos se serializan: mientras un submit está en vuelo no se acepta otro comando.
type Editor struct {
	repo *Repository

	mu         sync.Mutex
	selectedID string
	original   Reminder
	fields     Draft
}

func NewEditor(repo *Repository) *Editor {
	return &Editor{repo: repo, fields: EmptyDraft()}
}

func (e *Editor) View() EditorView {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.viewLocked()
}

func (e *Editor) State() EditorState { return e.View().State }

func (e *Editor) viewLocked() EditorView {
	st := StateComposing
	if e.selectedID != "" {
		st = StateEditing
	}
	return EditorView{State: st, SelectedID: e.selectedID, Fields: e.fields}
}

// SetFields reemplaza los campos del formulario sin cambiar de estado.
func (e *Editor) SetFields(d Draft) {
	e.mu.Lock()
	e.fields = d
	e.mu.Unlock()
}

// Select pasa a Editing con los campos derivados del recordatorio en cache (match por ID).
func (e *Editor) Select(id string) (EditorView, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	err := e.selectLocked(id)
	return e.viewLocked(), err
}

// Cancel vuelve a Composing con el formulario en blanco.
func (e *Editor) Cancel() EditorView {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.resetLocked()
	return e.viewLocked()
}

// Submit crea (Composing) o actualiza (Editing). Si falla, estado y campos quedan intactos.
func (e *Editor) Submit(ctx context.Context) (Result, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	var (
		res Result
		err error
	)
	if e.selectedID == "" {
		res, err = e.repo.Add(ctx, e.fields)
	} else {
		var p Patch
		p, err = e.patchLocked(e.fields)
		if err != nil {
			return Result{}, err
		}
		res, err = e.repo.Update(ctx, e.selectedID, p)
	}
	if err != nil {
		return Result{}, err
	}

	e.resetLocked()
	return res, nil
}

// Delete solo existe en Editing.
func (e *Editor) Delete(ctx context.Context) (Result, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.selectedID == "" {
		return Result{}, ErrNoSelection
	}
	res, err := e.repo.Remove(ctx, e.selectedID)
	if err != nil {
		return Result{}, err
	}

	e.resetLocked()
	return res, nil
}

func (e *Editor) resetLocked() {
	e.selectedID = ""
	e.original = Reminder{}
	e.fields = EmptyDraft()
}

// patchLocked arma el patch del formulario. Si due_at sigue mostrando el valor del
// recordatorio seleccionado, no se envía: el formulario no tiene precisión sub-minuto.
func (e *Editor) patchLocked(d Draft) (Patch, error) {
	loc := e.repo.Location()
	p, err := d.ToPatch(loc)
	if err != nil {
		return Patch{}, err
	}
	if strings.TrimSpace(d.DueAt) == FormatDueAt(e.original.DueAt, loc) {
		p.DueAt = nil
	}
	return p, nil
}

// SubmitDraft descarta cualquier selección y crea un recordatorio con d.
// Si falla, el formulario queda en Composing con d para que el usuario corrija.
func (e *Editor) SubmitDraft(ctx context.Context, d Draft) (Result, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.selectedID = ""
	e.fields = d

	res, err := e.repo.Add(ctx, d)
	if err != nil {
		return Result{}, err
	}
	e.resetLocked()
	return res, nil
}

// SubmitEdit selecciona id y lo actualiza con d en un solo paso.
func (e *Editor) SubmitEdit(ctx context.Context, id string, d Draft) (Result, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.selectLocked(id); err != nil {
		return Result{}, err
	}
	e.fields = d

	p, err := e.patchLocked(d)
	if err != nil {
		return Result{}, err
	}
	res, err := e.repo.Update(ctx, e.selectedID, p)
	if err != nil {
		return Result{}, err
	}
	e.resetLocked()
	return res, nil
}

// DeleteByID borra id. No exige que esté en cache: si ya no existe, el store responde ErrNotFound.
func (e *Editor) DeleteByID(ctx context.Context, id string) (Result, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	res, err := e.repo.Remove(ctx, id)
	if err != nil {
		return Result{}, err
	}
	if e.selectedID == res.Reminder.ID {
		e.resetLocked()
	}
	return res, nil
}

func (e *Editor) selectLocked(id string) error {
	id = strings.TrimSpace(id)
	r, ok := e.repo.Snapshot().Find(id)
	if id == "" || !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	e.selectedID = r.ID
	e.original = r
	e.fields = DraftFrom(r, e.repo.Location())
	return nil
}
