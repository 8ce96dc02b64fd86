// Package theme holds the lipgloss styles and the persisted light/dark
// preference.
package theme

import (
	"context"

	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/todoboard/internal/storage"
)

// storageKey is where the preference is persisted.
const storageKey = "theme"

// Mode is the color scheme preference.
type Mode string

const (
	ModeLight Mode = "light"
	ModeDark  Mode = "dark"
)

// Adaptive color pairs (dark terminal value, light terminal value).
var (
	ColorBlue    = lipgloss.AdaptiveColor{Dark: "#5B9BD5", Light: "#2B6CB0"}
	ColorGreen   = lipgloss.AdaptiveColor{Dark: "#6BCB77", Light: "#2F855A"}
	ColorYellow  = lipgloss.AdaptiveColor{Dark: "#FFD93D", Light: "#B7791F"}
	ColorRed     = lipgloss.AdaptiveColor{Dark: "#FF6B6B", Light: "#C53030"}
	ColorGray    = lipgloss.AdaptiveColor{Dark: "#868E96", Light: "#718096"}
	ColorWhite   = lipgloss.AdaptiveColor{Dark: "#F8F9FA", Light: "#1A202C"}
	ColorSubtle  = lipgloss.AdaptiveColor{Dark: "#495057", Light: "#CBD5E0"}
	ColorBorder  = lipgloss.AdaptiveColor{Dark: "#495057", Light: "#E2E8F0"}
	ColorMagenta = lipgloss.AdaptiveColor{Dark: "#CC5DE8", Light: "#805AD5"}
)

// HeaderStyle is used for the application title bar.
var HeaderStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(ColorWhite).
	Background(ColorBlue).
	Padding(0, 1)

// StatusBarStyle is used for the bottom status bar.
var StatusBarStyle = lipgloss.NewStyle().
	Foreground(ColorWhite).
	Background(ColorSubtle).
	Padding(0, 1)

// ListItemStyle is the base style for items in the todo list.
var ListItemStyle = lipgloss.NewStyle().
	PaddingLeft(2)

// SelectedItemStyle highlights the currently focused list item.
var SelectedItemStyle = lipgloss.NewStyle().
	PaddingLeft(1).
	Bold(true).
	Foreground(ColorBlue).
	Border(lipgloss.NormalBorder(), false, false, false, true).
	BorderForeground(ColorBlue)

// DimmedStyle renders completed todos.
var DimmedStyle = lipgloss.NewStyle().
	Foreground(ColorGray).
	Strikethrough(true)

// ErrorStyle renders operation failures next to their affordance.
var ErrorStyle = lipgloss.NewStyle().
	Foreground(ColorRed)

// HelpStyle is used for keyboard shortcut hints.
var HelpStyle = lipgloss.NewStyle().
	Foreground(ColorGray).
	Italic(true)

// PanelStyle wraps form and detail content.
var PanelStyle = lipgloss.NewStyle().
	Padding(1, 2).
	Border(lipgloss.RoundedBorder()).
	BorderForeground(ColorBorder)

// AdminBadgeStyle marks records that were edited by an administrator.
var AdminBadgeStyle = lipgloss.NewStyle().
	Foreground(ColorMagenta).
	Bold(true)

// CompletedStyle returns the style for a todo's completion marker.
func CompletedStyle(completed bool) lipgloss.Style {
	if completed {
		return lipgloss.NewStyle().Bold(true).Foreground(ColorGreen)
	}
	return lipgloss.NewStyle().Bold(true).Foreground(ColorYellow)
}

// Manager persists the light/dark preference and applies it to the
// lipgloss renderer so adaptive colors resolve against the right
// background.
type Manager struct {
	kv *storage.Store
}

// NewManager creates a theme manager over the given storage.
func NewManager(kv *storage.Store) *Manager {
	return &Manager{kv: kv}
}

// Current returns the persisted mode, defaulting to light when the key
// is absent or holds an unknown value.
func (m *Manager) Current(ctx context.Context) Mode {
	value, ok, err := m.kv.Get(ctx, storageKey)
	if err != nil || !ok {
		return ModeLight
	}
	if Mode(value) == ModeDark {
		return ModeDark
	}
	return ModeLight
}

// Set persists and applies the given mode.
func (m *Manager) Set(ctx context.Context, mode Mode) error {
	Apply(mode)
	return m.kv.Set(ctx, storageKey, string(mode))
}

// Toggle switches between light and dark, returning the new mode.
func (m *Manager) Toggle(ctx context.Context) (Mode, error) {
	next := ModeDark
	if m.Current(ctx) == ModeDark {
		next = ModeLight
	}
	return next, m.Set(ctx, next)
}

// Apply points the adaptive colors at the right palette half.
func Apply(mode Mode) {
	lipgloss.SetHasDarkBackground(mode == ModeDark)
}
