package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/todoboard/internal/model"
	"github.com/nhle/todoboard/internal/theme"
	"github.com/nhle/todoboard/internal/todos"
)

// sortCycle is the order in which the sort key rotates.
var sortCycle = []model.SortField{
	model.SortNone,
	model.SortAuthor,
	model.SortEmail,
	model.SortCompleted,
}

// updateList handles key input for the list view. Every query
// parameter change dispatches exactly one fetch command.
func (m Model) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	snap := m.todos.Snapshot()
	m.statusMsg = ""

	switch {
	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil

	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(snap.Todos)-1 {
			m.cursor++
		}
		return m, nil

	case key.Matches(msg, m.keys.NextPage):
		if snap.Query.Page >= m.todos.PageCount() {
			return m, nil
		}
		m.todos.SetPage(snap.Query.Page + 1)
		m.cursor = 0
		return m, m.fetchPage()

	case key.Matches(msg, m.keys.PrevPage):
		if snap.Query.Page <= 1 {
			return m, nil
		}
		m.todos.SetPage(snap.Query.Page - 1)
		m.cursor = 0
		return m, m.fetchPage()

	case key.Matches(msg, m.keys.CycleSort):
		m.todos.SetSort(nextSort(snap.Query.Sort))
		return m, m.fetchPage()

	case key.Matches(msg, m.keys.ToggleOrder):
		// With no sort field selected the order is not in effect; keep
		// the stored value instead of issuing a no-op fetch.
		if snap.Query.Sort == model.SortNone {
			return m, nil
		}
		order := model.OrderAsc
		if snap.Query.Order == model.OrderAsc {
			order = model.OrderDesc
		}
		m.todos.SetOrder(order)
		return m, m.fetchPage()

	case key.Matches(msg, m.keys.Refresh):
		return m, m.fetchPage()

	case key.Matches(msg, m.keys.New):
		return m.startCreate()

	case key.Matches(msg, m.keys.Select):
		if !m.session.Snapshot().IsAdmin {
			m.statusMsg = "sign in to edit todos"
			return m, nil
		}
		if m.cursor >= len(snap.Todos) {
			return m, nil
		}
		return m.startEdit(snap.Todos[m.cursor].ID)

	case key.Matches(msg, m.keys.ToggleComplete):
		if !m.session.Snapshot().IsAdmin {
			m.statusMsg = "sign in to complete todos"
			return m, nil
		}
		if m.cursor >= len(snap.Todos) {
			return m, nil
		}
		todo := snap.Todos[m.cursor]
		completed := !todo.Completed
		return m, m.updateTodoCmd(todo.ID, model.TodoPatch{Completed: &completed})

	case key.Matches(msg, m.keys.SignIn):
		if m.session.IsAuthenticated() {
			return m, m.logoutCmd()
		}
		return m.startLogin()

	case key.Matches(msg, m.keys.Theme):
		return m, m.toggleThemeCmd()
	}

	return m, nil
}

// nextSort returns the sort field following f in the cycle.
func nextSort(f model.SortField) model.SortField {
	for i, field := range sortCycle {
		if field == f {
			return sortCycle[(i+1)%len(sortCycle)]
		}
	}
	return model.SortNone
}

// listView renders the current page of todos.
func (m Model) listView() string {
	snap := m.todos.Snapshot()

	var b strings.Builder
	b.WriteString("\n")

	if len(snap.Todos) == 0 {
		b.WriteString(theme.HelpStyle.Render("  no todos on this page"))
		b.WriteString("\n")
	}

	for i, todo := range snap.Todos {
		b.WriteString(m.renderTodoLine(todo, i == m.cursor))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString("  " + m.paginatorView(snap))
	b.WriteString("  " + sortLabel(snap.Query))
	b.WriteString("\n")

	return b.String()
}

// renderTodoLine draws a single todo row.
func (m Model) renderTodoLine(todo model.Todo, selected bool) string {
	marker := "○"
	if todo.Completed {
		marker = "✓"
	}
	marker = theme.CompletedStyle(todo.Completed).Render(marker)

	line := fmt.Sprintf("%s #%d %s", marker, todo.ID, todo.Description)
	if todo.Completed {
		line = fmt.Sprintf("%s #%d %s", marker, todo.ID,
			theme.DimmedStyle.Render(todo.Description))
	}

	line += theme.HelpStyle.Render(fmt.Sprintf("  — %s <%s>", todo.Author, todo.Email))
	if todo.UpdatedByAdmin {
		line += theme.AdminBadgeStyle.Render("  [edited]")
	}

	if selected {
		return theme.SelectedItemStyle.Render(line)
	}
	return theme.ListItemStyle.Render(line)
}

// paginatorView renders the page dots for the fetched total.
func (m Model) paginatorView(snap todos.Snapshot) string {
	pg := m.paginator
	pg.PerPage = snap.Query.PageSize
	pg.SetTotalPages(max(1, snap.TotalCount))
	pg.Page = snap.Query.Page - 1
	if pg.Page < 0 {
		pg.Page = 0
	}
	return pg.View()
}

// sortLabel describes the active sort parameters.
func sortLabel(q model.Query) string {
	if q.Sort == model.SortNone {
		return theme.HelpStyle.Render("sort: none")
	}
	return theme.HelpStyle.Render(fmt.Sprintf("sort: %s %s", q.Sort, q.Order))
}
