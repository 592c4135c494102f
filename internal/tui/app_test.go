package tui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/f3rmion/objectify/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func update(t *testing.T, m AppModel, msg tea.Msg) (AppModel, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	app, ok := next.(AppModel)
	require.True(t, ok)
	return app, cmd
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func newTestApp(t *testing.T) AppModel {
	m := NewApp(nil, config.Default(), "", nil)
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 120, Height: 40})
	return m
}

func TestApp_QWhileTypingIsText(t *testing.T) {
	m := newTestApp(t)

	m, _ = update(t, m, runes("q"))
	assert.True(t, m.analyzeView.Typing())
	assert.Contains(t, m.View(), "Analyze Prompt")
}

func TestApp_QuitOutsideEditor(t *testing.T) {
	m := newTestApp(t)

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	_, cmd := update(t, m, runes("q"))
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}

func TestApp_CtrlCAlwaysQuits(t *testing.T) {
	m := newTestApp(t)
	_, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}

func TestApp_HelpOverlay(t *testing.T) {
	m := newTestApp(t)
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})

	m, _ = update(t, m, runes("?"))
	assert.Contains(t, m.View(), "Copy alternative N")

	m, _ = update(t, m, runes("x"))
	assert.NotContains(t, m.View(), "Copy alternative N")
}

func TestApp_SwitchToSettings(t *testing.T) {
	m := newTestApp(t)

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyTab})
	assert.True(t, m.sidebarActive)

	m, _ = update(t, m, runes("2"))
	assert.Equal(t, ViewSettings, m.currentView)
	assert.False(t, m.sidebarActive)

	view := m.View()
	assert.Contains(t, view, "Settings")
	assert.Contains(t, view, "http://localhost:5001")
}

func TestApp_SidebarNavigation(t *testing.T) {
	m := newTestApp(t)
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.True(t, m.sidebarActive)

	m, _ = update(t, m, runes("j"))
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, ViewSettings, m.currentView)

	m, _ = update(t, m, ViewSwitchMsg{View: ViewAnalyze})
	assert.Equal(t, ViewAnalyze, m.currentView)
	assert.Equal(t, 0, m.selectedMenu)
}
