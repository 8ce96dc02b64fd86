package ui

import (
	"context"
	"fmt"
	"log/slog"
	"unicode/utf8"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/nhle/todoboard/internal/model"
	"github.com/nhle/todoboard/internal/theme"
	"github.com/nhle/todoboard/internal/todos"
)

// editDraftKey is the storage key for the in-progress edit draft.
const editDraftKey = "todo-edit-form"

// editDraft is the persisted shape of an in-progress edit, written on
// every change so an interrupted session can resume where it left off.
type editDraft struct {
	ID          int    `json:"id"`
	Description string `json:"description"`
	Completed   bool   `json:"completed"`
}

// createFormState holds the create field values on the heap so huh's
// Value pointers remain valid across Bubble Tea model copies.
type createFormState struct {
	form        *huh.Form
	author      string
	email       string
	description string
}

// editFormState holds the edit form and its bindings.
type editFormState struct {
	form        *huh.Form
	id          int
	description string
	completed   bool
	loading     bool
	lastDraft   editDraft
}

// --- create ---

// startCreate opens the submission form. Creation is open to anonymous
// users.
func (m Model) startCreate() (tea.Model, tea.Cmd) {
	fs := &createFormState{}
	fs.form = buildCreateForm(fs)
	m.createForm = fs
	m.currentView = ViewCreate
	return m, fs.form.Init()
}

func buildCreateForm(fs *createFormState) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Your name").
				Placeholder("Jane Doe").
				Value(&fs.author).
				Validate(runeRange(model.AuthorMinLen, model.AuthorMaxLen, "name")),
			huh.NewInput().
				Title("Email").
				Placeholder("jane@example.com").
				Value(&fs.email).
				Validate(emailShaped),
			huh.NewText().
				Title("Task").
				Placeholder("What needs doing?").
				Value(&fs.description).
				Validate(runeRange(model.DescriptionMinLen, model.DescriptionMaxLen, "task")),
		),
	)
}

// updateCreate feeds input to the create form and submits on
// completion.
func (m Model) updateCreate(msg tea.Msg) (tea.Model, tea.Cmd) {
	fs := m.createForm
	if fs == nil || fs.form == nil {
		m.currentView = ViewList
		return m, nil
	}

	mdl, cmd := fs.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		fs.form = f
	}

	switch fs.form.State {
	case huh.StateCompleted:
		return m, m.createTodoCmd(model.CreateTodoInput{
			Author:      fs.author,
			Email:       fs.email,
			Description: fs.description,
		})
	case huh.StateAborted:
		m.createForm = nil
		m.currentView = ViewList
		return m, nil
	}

	return m, cmd
}

// handleCreateResult returns to the list on success; on failure the
// form reopens with its values and the error rendered alongside.
func (m Model) handleCreateResult(msg createResultMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		fs := m.createForm
		if fs == nil {
			fs = &createFormState{}
		}
		retry := &createFormState{
			author:      fs.author,
			email:       fs.email,
			description: fs.description,
		}
		retry.form = buildCreateForm(retry)
		m.createForm = retry
		m.currentView = ViewCreate
		return m, retry.form.Init()
	}

	m.createForm = nil
	m.currentView = ViewList
	m.cursor = 0
	m.statusMsg = "todo created"
	return m, nil
}

// createView renders the submission form.
func (m Model) createView() string {
	if m.createForm == nil || m.createForm.form == nil {
		return ""
	}

	content := theme.HeaderStyle.Render("New todo") + "\n\n" + m.createForm.form.View()

	if st := m.todos.Snapshot().Create; st.Status == todos.StatusFailed {
		content += "\n" + theme.ErrorStyle.Render(st.Err.Error())
	}

	return theme.PanelStyle.Render(content)
}

// --- edit ---

// startEdit switches to the edit view and fetches the record. The form
// itself is built once the detail fetch resolves.
func (m Model) startEdit(id int) (tea.Model, tea.Cmd) {
	m.editForm = &editFormState{id: id, loading: true}
	m.currentView = ViewEdit
	return m, m.fetchDetail(id)
}

// handleDetailFetched builds the edit form from the fetched record,
// letting a matching persisted draft take precedence over the server
// values.
func (m Model) handleDetailFetched(msg detailFetchedMsg) (tea.Model, tea.Cmd) {
	fs := m.editForm
	if fs == nil || m.currentView != ViewEdit || fs.id != msg.id {
		return m, nil
	}

	if msg.err != nil {
		m.editForm = nil
		m.currentView = ViewList
		return m, nil
	}

	current := m.todos.Snapshot().Current
	if current == nil {
		m.editForm = nil
		m.currentView = ViewList
		return m, nil
	}

	fs.description = current.Description
	fs.completed = current.Completed

	var draft editDraft
	if ok, _ := m.kv.GetJSON(context.Background(), editDraftKey, &draft); ok && draft.ID == fs.id {
		fs.description = draft.Description
		fs.completed = draft.Completed
	}

	fs.loading = false
	fs.lastDraft = editDraft{ID: fs.id, Description: fs.description, Completed: fs.completed}
	fs.form = huh.NewForm(
		huh.NewGroup(
			huh.NewText().
				Title("Task").
				Value(&fs.description).
				Validate(runeRange(model.DescriptionMinLen, model.DescriptionMaxLen, "task")),
			huh.NewConfirm().
				Title("Completed").
				Affirmative("Done").
				Negative("Open").
				Value(&fs.completed),
		),
	)

	return m, fs.form.Init()
}

// updateEdit feeds input to the edit form, persisting a draft on every
// change so an accidental exit loses nothing.
func (m Model) updateEdit(msg tea.Msg) (tea.Model, tea.Cmd) {
	fs := m.editForm
	if fs == nil {
		m.currentView = ViewList
		return m, nil
	}
	if fs.loading || fs.form == nil {
		return m, nil
	}

	mdl, cmd := fs.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		fs.form = f
	}

	m.persistEditDraft(fs)

	switch fs.form.State {
	case huh.StateCompleted:
		description := fs.description
		completed := fs.completed
		return m, m.updateTodoCmd(fs.id, model.TodoPatch{
			Description: &description,
			Completed:   &completed,
		})
	case huh.StateAborted:
		m.removeEditDraft()
		m.editForm = nil
		m.todos.ClearCurrent()
		m.currentView = ViewList
		return m, nil
	}

	return m, cmd
}

// handleUpdateResult closes the edit view on success. On failure the
// form reopens with its values retained, as does the draft.
func (m Model) handleUpdateResult(msg updateResultMsg) (tea.Model, tea.Cmd) {
	fs := m.editForm
	if fs == nil {
		// Completion toggle from the list view.
		return m, nil
	}

	if msg.err != nil {
		retry := &editFormState{
			id:          fs.id,
			description: fs.description,
			completed:   fs.completed,
			lastDraft:   fs.lastDraft,
		}
		retry.form = huh.NewForm(
			huh.NewGroup(
				huh.NewText().
					Title("Task").
					Value(&retry.description).
					Validate(runeRange(model.DescriptionMinLen, model.DescriptionMaxLen, "task")),
				huh.NewConfirm().
					Title("Completed").
					Affirmative("Done").
					Negative("Open").
					Value(&retry.completed),
			),
		)
		m.editForm = retry
		m.currentView = ViewEdit
		return m, retry.form.Init()
	}

	m.removeEditDraft()
	m.editForm = nil
	m.todos.ClearCurrent()
	m.currentView = ViewList
	m.statusMsg = "todo updated"
	return m, nil
}

// editView renders the edit form with the record's immutable fields.
func (m Model) editView() string {
	fs := m.editForm
	if fs == nil {
		return ""
	}

	title := theme.HeaderStyle.Render(fmt.Sprintf("Edit todo #%d", fs.id))

	if fs.loading || fs.form == nil {
		return theme.PanelStyle.Render(title + "\n\n" + m.spinner.View() + " loading...")
	}

	content := title
	if current := m.todos.Snapshot().Current; current != nil {
		content += "\n" + theme.HelpStyle.Render(
			fmt.Sprintf("by %s <%s>", current.Author, current.Email))
	}
	content += "\n\n" + fs.form.View()

	if st := m.todos.Snapshot().Update; st.Status == todos.StatusFailed {
		content += "\n" + theme.ErrorStyle.Render(st.Err.Error())
	}

	return theme.PanelStyle.Render(content)
}

// persistEditDraft writes the draft when the bound values changed.
func (m *Model) persistEditDraft(fs *editFormState) {
	draft := editDraft{ID: fs.id, Description: fs.description, Completed: fs.completed}
	if draft == fs.lastDraft {
		return
	}
	fs.lastDraft = draft
	if err := m.kv.SetJSON(context.Background(), editDraftKey, draft); err != nil {
		m.log.Warn("persisting edit draft", slog.String("error", err.Error()))
	}
}

// removeEditDraft clears the draft on clean unmount.
func (m *Model) removeEditDraft() {
	if err := m.kv.Remove(context.Background(), editDraftKey); err != nil {
		m.log.Warn("removing edit draft", slog.String("error", err.Error()))
	}
}

// --- store commands ---

func (m Model) createTodoCmd(in model.CreateTodoInput) tea.Cmd {
	store := m.todos
	return func() tea.Msg {
		return createResultMsg{err: store.Create(context.Background(), in)}
	}
}

func (m Model) updateTodoCmd(id int, patch model.TodoPatch) tea.Cmd {
	store := m.todos
	return func() tea.Msg {
		return updateResultMsg{err: store.Update(context.Background(), id, patch)}
	}
}

// --- validators ---

// runeRange validates a field length in runes.
func runeRange(minLen, maxLen int, field string) func(string) error {
	return func(s string) error {
		n := utf8.RuneCountInString(s)
		if n < minLen {
			return fmt.Errorf("%s must be at least %d characters", field, minLen)
		}
		if n > maxLen {
			return fmt.Errorf("%s must be at most %d characters", field, maxLen)
		}
		return nil
	}
}

func emailShaped(s string) error {
	if !model.ValidEmail(s) {
		return fmt.Errorf("enter a valid email address")
	}
	return nil
}
