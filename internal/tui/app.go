package tui

import (
	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/f3rmion/objectify/internal/api"
	"github.com/f3rmion/objectify/internal/config"
	"github.com/f3rmion/objectify/internal/tui/views"
	"go.uber.org/zap"
)

// ViewType represents the current active view
type ViewType int

const (
	ViewAnalyze ViewType = iota
	ViewSettings
)

// MenuItem represents a sidebar menu entry
type MenuItem struct {
	Label    string
	View     ViewType
	Shortcut string
}

// ViewSwitchMsg requests a view change
type ViewSwitchMsg struct {
	View ViewType
}

// AppModel is the main TUI model
type AppModel struct {
	logger *zap.Logger

	// Layout state
	width        int
	height       int
	sidebarWidth int
	ready        bool

	// Navigation
	currentView   ViewType
	menuItems     []MenuItem
	selectedMenu  int
	sidebarActive bool

	// Sub-models (views)
	analyzeView  views.AnalyzeModel
	settingsView views.SettingsModel

	// Help overlay
	showHelp bool
}

// NewApp creates the TUI application. client may be nil, in which case
// requests fail with the usual service error messages.
func NewApp(client *api.Client, cfg *config.Config, configPath string, logger *zap.Logger) AppModel {
	if logger == nil {
		logger = zap.NewNop()
	}

	// A nil *api.Client must not become a non-nil interface.
	var (
		analyzer views.Analyzer
		checker  views.HealthChecker
	)
	if client != nil {
		analyzer = client
		checker = client
	}

	menuItems := []MenuItem{
		{Label: "Analyze", View: ViewAnalyze, Shortcut: "1"},
		{Label: "Settings", View: ViewSettings, Shortcut: "2"},
	}

	return AppModel{
		logger:       logger,
		sidebarWidth: 18,
		currentView:  ViewAnalyze,
		menuItems:    menuItems,

		analyzeView:  views.NewAnalyzeModel(analyzer, cfg, logger.Named("analyze")),
		settingsView: views.NewSettingsModel(cfg, configPath, checker, logger.Named("settings")),
	}
}

// Init initializes the model
func (m AppModel) Init() tea.Cmd {
	return textarea.Blink
}

// typing reports whether plain keys belong to a text editor.
func (m AppModel) typing() bool {
	return !m.sidebarActive && m.currentView == ViewAnalyze && m.analyzeView.Typing()
}

// Update handles messages
func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		// Help overlay - any key closes it
		if m.showHelp {
			m.showHelp = false
			return m, nil
		}

		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}

		if !m.typing() {
			switch msg.String() {
			case "q":
				return m, tea.Quit
			case "?":
				m.showHelp = true
				return m, nil
			case "esc":
				// Esc goes back to sidebar or quits
				if m.sidebarActive {
					return m, tea.Quit
				}
				m.sidebarActive = true
				return m, nil
			case "tab":
				m.sidebarActive = !m.sidebarActive
				return m, nil
			}
		}

		// Sidebar navigation when active
		if m.sidebarActive {
			switch msg.String() {
			case "j", "down":
				if m.selectedMenu < len(m.menuItems)-1 {
					m.selectedMenu++
				}
				return m, nil
			case "k", "up":
				if m.selectedMenu > 0 {
					m.selectedMenu--
				}
				return m, nil
			case "enter", "l", "right":
				return m.switchTo(m.menuItems[m.selectedMenu].View)
			}
			for _, item := range m.menuItems {
				if msg.String() == item.Shortcut {
					return m.switchTo(item.View)
				}
			}
			return m, nil
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true

		// Update view sizes
		contentWidth := m.width - m.sidebarWidth - 8
		contentHeight := m.height - 4

		m.analyzeView.SetSize(contentWidth, contentHeight)
		m.settingsView.SetSize(contentWidth, contentHeight)

		return m, nil

	case ViewSwitchMsg:
		return m.switchTo(msg.View)
	}

	// Async results go to their owner regardless of which view is showing.
	var cmd tea.Cmd
	switch msg.(type) {
	case tea.KeyMsg:
		switch m.currentView {
		case ViewAnalyze:
			m.analyzeView, cmd = m.analyzeView.Update(msg)
		case ViewSettings:
			m.settingsView, cmd = m.settingsView.Update(msg)
		}
	default:
		var analyzeCmd, settingsCmd tea.Cmd
		m.analyzeView, analyzeCmd = m.analyzeView.Update(msg)
		m.settingsView, settingsCmd = m.settingsView.Update(msg)
		cmd = tea.Batch(analyzeCmd, settingsCmd)
	}

	return m, cmd
}

// switchTo activates a view; opening Settings re-checks the service.
func (m AppModel) switchTo(v ViewType) (tea.Model, tea.Cmd) {
	m.currentView = v
	m.sidebarActive = false
	for i, item := range m.menuItems {
		if item.View == v {
			m.selectedMenu = i
			break
		}
	}

	m.logger.Debug("switching view", zap.Int("view", int(v)))

	if v == ViewSettings {
		cmd := m.settingsView.Refresh()
		return m, cmd
	}
	return m, nil
}

// View renders the UI
func (m AppModel) View() string {
	if !m.ready {
		return "Loading..."
	}

	// Show help overlay if active
	if m.showHelp {
		return m.renderHelp()
	}

	sidebar := m.renderSidebar()

	var content string
	switch m.currentView {
	case ViewAnalyze:
		content = m.analyzeView.View()
	case ViewSettings:
		content = m.settingsView.View()
	}

	contentWidth := m.width - m.sidebarWidth - 4
	mainContent := ContentStyle.
		Width(contentWidth).
		Height(m.height - 2).
		Render(content)

	return lipgloss.JoinHorizontal(lipgloss.Top, sidebar, mainContent)
}

// renderSidebar renders the sidebar navigation
func (m AppModel) renderSidebar() string {
	var items []string

	items = append(items, SidebarTitleStyle.Render(" objectify "))
	items = append(items, "")

	for i, item := range m.menuItems {
		label := item.Shortcut + ". " + item.Label

		var style lipgloss.Style
		if i == m.selectedMenu {
			if m.sidebarActive {
				style = SidebarItemActiveStyle
			} else {
				// Indicate current view but not focused
				style = SidebarItemStyle.Bold(true).Foreground(ColorSecondary)
			}
		} else {
			style = SidebarItemStyle
		}

		items = append(items, style.Render(label))
	}

	// Spacer
	usedHeight := len(items) + 4
	if m.height > usedHeight {
		for i := 0; i < m.height-usedHeight-2; i++ {
			items = append(items, "")
		}
	}

	items = append(items, SidebarHelpStyle.Render("? Help  q Quit"))

	content := lipgloss.JoinVertical(lipgloss.Left, items...)

	return SidebarStyle.
		Width(m.sidebarWidth).
		Height(m.height - 2).
		Render(content)
}

// renderHelp renders the help overlay
func (m AppModel) renderHelp() string {
	key := func(k, desc string) string {
		return HelpKeyStyle.Render(k) + HelpDescStyle.Render(desc) + "\n"
	}

	helpText := HelpTitleStyle.Render("objectify - prompt bias checker") + "\n\n"

	helpText += HelpSectionStyle.Render("Global Keys") + "\n"
	helpText += key("tab", "Toggle sidebar focus")
	helpText += key("1-2", "Switch views (sidebar)")
	helpText += key("?", "Show this help")
	helpText += key("q", "Quit (outside the editor)")
	helpText += key("ctrl+c", "Quit")

	helpText += HelpSectionStyle.Render("Analyze View") + "\n"
	helpText += key("ctrl+s", "Analyze prompt")
	helpText += key("ctrl+d", "Cycle domain / mode")
	helpText += key("esc", "Leave the editor")
	helpText += key("enter", "Edit prompt again")
	helpText += key("↑/↓ pgup", "Scroll results")
	helpText += key("y", "Copy rewritten prompt")
	helpText += key("1-9", "Copy alternative N")

	helpText += HelpSectionStyle.Render("Settings View") + "\n"
	helpText += key("r", "Re-check service health")

	helpText += "\n" + lipgloss.NewStyle().
		Foreground(ColorMuted).
		Italic(true).
		Render("Press any key to close")

	helpBox := HelpBoxStyle.Render(helpText)
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, helpBox)
}
