package views

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/f3rmion/objectify/internal/api"
	"github.com/f3rmion/objectify/internal/config"
	"go.uber.org/zap"
)

// Settings view styles
var (
	settingsPathStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#666666")).
				Italic(true).
				MarginBottom(1)

	settingsHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("#a8dadc"))
)

// HealthChecker probes the analysis service.
type HealthChecker interface {
	Health(ctx context.Context) (*api.Health, error)
}

type healthMsg struct {
	seq    int
	health *api.Health
	err    error
}

// SettingsModel is the read-only configuration and service status view.
type SettingsModel struct {
	config     *config.Config
	configPath string
	checker    HealthChecker
	logger     *zap.Logger
	spinner    spinner.Model

	checking bool
	seq      int
	health   *api.Health
	err      string
	checked  time.Time

	width  int
	height int
}

// NewSettingsModel creates a new settings model.
func NewSettingsModel(cfg *config.Config, configPath string, checker HealthChecker, logger *zap.Logger) SettingsModel {
	if cfg == nil {
		cfg = config.Default()
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = loadingStyle

	return SettingsModel{
		config:     cfg,
		configPath: configPath,
		checker:    checker,
		logger:     logger,
		spinner:    sp,
	}
}

// SetSize updates the view dimensions.
func (m *SettingsModel) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// Refresh starts a health check.
func (m *SettingsModel) Refresh() tea.Cmd {
	if m.checker == nil {
		m.err = api.FallbackHealth
		return nil
	}

	m.seq++
	m.checking = true
	seq := m.seq
	checker := m.checker

	check := func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		h, err := checker.Health(ctx)
		return healthMsg{seq: seq, health: h, err: err}
	}
	return tea.Batch(check, m.spinner.Tick)
}

// Update handles messages.
func (m SettingsModel) Update(msg tea.Msg) (SettingsModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "r" {
			cmd := m.Refresh()
			return m, cmd
		}

	case healthMsg:
		if msg.seq != m.seq {
			return m, nil
		}
		m.checking = false
		m.checked = time.Now()
		if msg.err != nil {
			m.logger.Warn("health check failed", zap.Error(msg.err))
			m.health = nil
			m.err = api.UserMessage(msg.err, api.FallbackHealth)
		} else {
			m.health = msg.health
			m.err = ""
		}
		return m, nil

	case spinner.TickMsg:
		if !m.checking {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

// View renders the settings view.
func (m SettingsModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Settings"))
	b.WriteString("\n")

	path := m.configPath
	if path == "" {
		path = "(defaults)"
	}
	b.WriteString(settingsPathStyle.Render("Config: " + path))
	b.WriteString("\n\n")

	b.WriteString(settingsHeaderStyle.Render("Service"))
	b.WriteString("\n")
	b.WriteString(m.row("URL", m.config.APIURL))
	b.WriteString(m.row("Status", m.status()))
	b.WriteString("\n")

	b.WriteString(settingsHeaderStyle.Render("Configuration"))
	b.WriteString("\n")
	for _, kv := range m.rows() {
		b.WriteString(m.row(kv[0], kv[1]))
	}

	b.WriteString("\n")
	b.WriteString(helpStyle.Render("r: re-check service • edit the config file or set OBJECTIFY_* to change settings"))
	return b.String()
}

func (m SettingsModel) status() string {
	switch {
	case m.checking:
		return m.spinner.View() + loadingStyle.Render("checking...")
	case m.err != "":
		return errorStyle.Render(m.err)
	case m.health != nil:
		s := okStyle.Render(m.health.Status)
		if m.health.Message != "" {
			s += " " + valueStyle.Render(m.health.Message)
		}
		if !m.checked.IsZero() {
			s += helpStyle.Render(" (" + m.checked.Format("15:04:05") + ")")
		}
		return s
	default:
		return helpStyle.Render("not checked")
	}
}

func (m SettingsModel) rows() [][2]string {
	c := m.config
	live := "off"
	if c.LiveDetect {
		live = fmt.Sprintf("on (after %s)", c.LiveDetectDelay)
	}
	cache := "off"
	if c.CacheTTL > 0 {
		cache = c.CacheTTL.String()
	}
	limit := "off"
	if c.RateLimit > 0 {
		limit = fmt.Sprintf("%g/s, burst %d", c.RateLimit, c.RateBurst)
	}
	logFile := c.LogFile
	if logFile == "" {
		logFile = "(disabled)"
	}

	return [][2]string{
		{"Selector", c.Selector},
		{"Default " + c.Selector, c.DefaultAxis},
		{"Timeout", c.Timeout.String()},
		{"Response cache", cache},
		{"Rate limit", limit},
		{"Live detection", live},
		{"Log file", logFile},
	}
}

func (m SettingsModel) row(label, value string) string {
	return labelStyle.Render(label+":") + " " + valueStyle.Render(value) + "\n"
}
