// Package ui is the Bubble Tea presentation layer. It renders store
// snapshots and dispatches intents; all state lives in the session and
// todo stores.
package ui

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/paginator"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/todoboard/internal/keys"
	"github.com/nhle/todoboard/internal/session"
	"github.com/nhle/todoboard/internal/storage"
	"github.com/nhle/todoboard/internal/theme"
	"github.com/nhle/todoboard/internal/todos"
)

// ViewState represents the current active view in the application.
type ViewState int

const (
	ViewList ViewState = iota
	ViewLogin
	ViewCreate
	ViewEdit
)

// Messages produced by store commands.
type (
	pageFetchedMsg   struct{ err error }
	identityMsg      struct{ err error }
	loginResultMsg   struct{ err error }
	loggedOutMsg     struct{}
	createResultMsg  struct{ err error }
	updateResultMsg  struct{ err error }
	detailFetchedMsg struct {
		id  int
		err error
	}
	themeToggledMsg struct{ mode theme.Mode }
)

// Model is the root Bubble Tea model that manages view routing and
// dispatches intents to the stores.
type Model struct {
	currentView ViewState

	session *session.Store
	todos   *todos.Store
	themes  *theme.Manager
	kv      *storage.Store
	keys    *keys.KeyMap
	log     *slog.Logger

	// List view state.
	cursor    int
	paginator paginator.Model

	// Form state; bindings live on the heap so huh's Value pointers
	// stay valid across Bubble Tea model copies.
	createForm *createFormState
	editForm   *editFormState
	loginForm  *loginFormState

	help      help.Model
	spinner   spinner.Model
	themeMode theme.Mode
	statusMsg string
	width     int
	height    int
	ready     bool
	quitting  bool
}

// New creates the root application model.
func New(
	sess *session.Store,
	todoStore *todos.Store,
	themes *theme.Manager,
	kv *storage.Store,
	log *slog.Logger,
) Model {
	if log == nil {
		log = slog.Default()
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.ColorBlue)

	pg := paginator.New()
	pg.Type = paginator.Dots
	pg.ActiveDot = lipgloss.NewStyle().Foreground(theme.ColorBlue).Render("•")
	pg.InactiveDot = lipgloss.NewStyle().Foreground(theme.ColorSubtle).Render("•")

	return Model{
		currentView: ViewList,
		session:     sess,
		todos:       todoStore,
		themes:      themes,
		kv:          kv,
		keys:        keys.DefaultKeyMap(),
		log:         log,
		help:        help.New(),
		spinner:     sp,
		paginator:   pg,
		themeMode:   themes.Current(context.Background()),
	}
}

// Init fetches the first page and, when a persisted token was restored,
// confirms the identity before any protected affordance is trusted.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.spinner.Tick, m.fetchPage()}
	if m.session.Snapshot().State == session.StateIdentityPending {
		cmds = append(cmds, m.confirmIdentity())
	}
	return tea.Batch(cmds...)
}

// Update handles messages and dispatches to the active view.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.ready = true

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case pageFetchedMsg:
		m.clampCursor()
		if msg.err != nil {
			m.log.Warn("list fetch failed", slog.String("error", msg.err.Error()))
		}
		return m, nil

	case identityMsg:
		if msg.err != nil {
			m.log.Warn("identity confirmation failed", slog.String("error", msg.err.Error()))
		}
		return m, nil

	case loginResultMsg:
		return m.handleLoginResult(msg)

	case loggedOutMsg:
		m.statusMsg = "signed out"
		return m, nil

	case createResultMsg:
		return m.handleCreateResult(msg)

	case updateResultMsg:
		return m.handleUpdateResult(msg)

	case detailFetchedMsg:
		return m.handleDetailFetched(msg)

	case themeToggledMsg:
		m.themeMode = msg.mode
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

// handleKey routes key input to the active view.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Forms own almost all key input while active.
	switch m.currentView {
	case ViewLogin:
		return m.updateLogin(msg)
	case ViewCreate:
		return m.updateCreate(msg)
	case ViewEdit:
		return m.updateEdit(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	}

	return m.updateList(msg)
}

// View renders the header, the active view, and the status bar.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if !m.ready {
		return "loading..."
	}

	var content string
	switch m.currentView {
	case ViewLogin:
		content = m.loginView()
	case ViewCreate:
		content = m.createView()
	case ViewEdit:
		content = m.editView()
	default:
		content = m.listView()
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		m.headerView(),
		content,
		m.statusView(),
		m.help.View(m.keys),
	)
}

// headerView renders the title bar with the session identity.
func (m Model) headerView() string {
	title := theme.HeaderStyle.Render("todoboard")

	sess := m.session.Snapshot()
	who := "anonymous"
	switch {
	case sess.User != nil:
		who = sess.User.Username + " (admin)"
	case sess.IsAuthenticated:
		who = "confirming identity..."
	}

	right := theme.HelpStyle.Render(fmt.Sprintf("%s · %s", who, m.themeMode))
	gap := m.width - lipgloss.Width(title) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}

	return title + lipgloss.NewStyle().Width(gap).Render("") + right
}

// statusView renders in-flight operations and the most relevant error
// adjacent to the list; form errors render inside their forms.
func (m Model) statusView() string {
	snap := m.todos.Snapshot()

	if snap.List.Status == todos.StatusPending ||
		snap.Create.Status == todos.StatusPending ||
		snap.Update.Status == todos.StatusPending ||
		snap.Detail.Status == todos.StatusPending {
		return theme.StatusBarStyle.Render(m.spinner.View() + " working...")
	}

	if err := firstError(snap.List, snap.Update, snap.Detail); err != nil {
		return theme.StatusBarStyle.Render(theme.ErrorStyle.Render(err.Error()))
	}

	if sessErr := m.session.Snapshot().Err; sessErr != nil && m.currentView == ViewList {
		return theme.StatusBarStyle.Render(theme.ErrorStyle.Render(sessErr.Error()))
	}

	if m.statusMsg != "" {
		return theme.StatusBarStyle.Render(m.statusMsg)
	}

	q := snap.Query
	return theme.StatusBarStyle.Render(fmt.Sprintf(
		"%d todos · page %d/%d", snap.TotalCount, q.Page, max(1, m.todos.PageCount()),
	))
}

func firstError(states ...todos.OpState) error {
	for _, st := range states {
		if st.Status == todos.StatusFailed {
			return st.Err
		}
	}
	return nil
}

// clampCursor keeps the list cursor inside the fetched page.
func (m *Model) clampCursor() {
	n := len(m.todos.Snapshot().Todos)
	if n == 0 {
		m.cursor = 0
		return
	}
	if m.cursor >= n {
		m.cursor = n - 1
	}
}

// --- store commands ---

func (m Model) fetchPage() tea.Cmd {
	store := m.todos
	return func() tea.Msg {
		return pageFetchedMsg{err: store.FetchPage(context.Background())}
	}
}

func (m Model) confirmIdentity() tea.Cmd {
	sess := m.session
	return func() tea.Msg {
		return identityMsg{err: sess.ConfirmIdentity(context.Background())}
	}
}

func (m Model) loginCmd(username, password string) tea.Cmd {
	sess := m.session
	return func() tea.Msg {
		ctx := context.Background()
		if err := sess.Login(ctx, username, password); err != nil {
			return loginResultMsg{err: err}
		}
		return loginResultMsg{err: sess.ConfirmIdentity(ctx)}
	}
}

func (m Model) logoutCmd() tea.Cmd {
	sess := m.session
	return func() tea.Msg {
		sess.Logout(context.Background())
		return loggedOutMsg{}
	}
}

func (m Model) fetchDetail(id int) tea.Cmd {
	store := m.todos
	return func() tea.Msg {
		return detailFetchedMsg{id: id, err: store.FetchByID(context.Background(), id)}
	}
}

func (m Model) toggleThemeCmd() tea.Cmd {
	themes := m.themes
	log := m.log
	return func() tea.Msg {
		mode, err := themes.Toggle(context.Background())
		if err != nil {
			log.Warn("persisting theme", slog.String("error", err.Error()))
		}
		return themeToggledMsg{mode: mode}
	}
}
