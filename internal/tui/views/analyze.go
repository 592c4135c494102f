package views

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/f3rmion/objectify/internal/api"
	"github.com/f3rmion/objectify/internal/bias"
	"github.com/f3rmion/objectify/internal/clipboard"
	"github.com/f3rmion/objectify/internal/config"
	"github.com/f3rmion/objectify/internal/render"
	"github.com/f3rmion/objectify/internal/session"
	"github.com/f3rmion/objectify/internal/tui/bigscore"
	"go.uber.org/zap"
)

// Analyzer is the part of the API client the analyze view needs.
type Analyzer interface {
	Analyze(ctx context.Context, prompt, axis string) (*bias.Result, error)
	Detect(ctx context.Context, prompt string) (*bias.Detection, error)
}

// Message types
type analyzeResultMsg struct {
	ticket session.Ticket
	result *bias.Result
	err    error
}

type detectResultMsg struct {
	ticket    session.Ticket
	detection *bias.Detection
	err       error
}

type detectTickMsg struct {
	seq int
}

// copyText is swapped in tests.
var copyText = clipboard.Write

const inputHeight = 5

// AnalyzeModel is the prompt analysis view model.
type AnalyzeModel struct {
	input    textarea.Model
	spinner  spinner.Model
	viewport viewport.Model

	client   Analyzer
	selector api.Selector
	axes     []string
	axis     int
	logger   *zap.Logger

	analysis    session.State[bias.Result]
	highlighted render.Highlighted // Segments of the current result
	cancel      context.CancelFunc
	content     string

	// Live detection while typing
	live         session.State[bias.Detection]
	liveEnabled  bool
	liveDelay    time.Duration
	liveSeq      int
	lastInput    string
	lastDetected string

	// Clipboard
	copied    string
	copyError string

	width  int
	height int
}

// NewAnalyzeModel creates a new analyze view model. client may be nil when the
// service URL is unusable; submissions then fail with a message.
func NewAnalyzeModel(client Analyzer, cfg *config.Config, logger *zap.Logger) AnalyzeModel {
	if cfg == nil {
		cfg = config.Default()
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	ta := textarea.New()
	ta.Placeholder = "Paste or type a prompt to check for bias..."
	ta.ShowLineNumbers = false
	ta.CharLimit = 10000
	ta.SetHeight(inputHeight)
	ta.SetWidth(60)
	ta.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = loadingStyle

	sel, err := api.ParseSelector(cfg.Selector)
	if err != nil {
		sel = api.SelectorDomain
	}
	axes := sel.Axes()
	axis := 0
	for i, a := range axes {
		if a == cfg.DefaultAxis {
			axis = i
			break
		}
	}

	return AnalyzeModel{
		input:       ta,
		spinner:     sp,
		viewport:    viewport.New(60, 10),
		client:      client,
		selector:    sel,
		axes:        axes,
		axis:        axis,
		logger:      logger,
		liveEnabled: cfg.LiveDetect && client != nil,
		liveDelay:   cfg.LiveDetectDelay,
	}
}

// SetSize updates the view dimensions.
func (m *AnalyzeModel) SetSize(width, height int) {
	m.width = width
	m.height = height

	m.input.SetWidth(max(width-2, 20))

	// input box, axis bar, status line and help
	vh := height - inputHeight - 8
	m.viewport.Width = max(width, 20)
	m.viewport.Height = max(vh, 3)
	m.refreshContent()
}

// Typing reports whether the prompt editor has focus, in which case plain
// keys belong to the editor.
func (m AnalyzeModel) Typing() bool {
	return m.input.Focused()
}

// Axis returns the selected domain or mode.
func (m AnalyzeModel) Axis() string {
	return m.axes[m.axis]
}

// Update handles messages.
func (m AnalyzeModel) Update(msg tea.Msg) (AnalyzeModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+s":
			return m.submit()
		case "ctrl+d":
			m.axis = (m.axis + 1) % len(m.axes)
			return m, nil
		}

		if !m.input.Focused() {
			return m.handleResultKey(msg)
		}

		if msg.String() == "esc" {
			m.input.Blur()
			return m, nil
		}

	case analyzeResultMsg:
		return m.applyAnalysis(msg), nil

	case detectTickMsg:
		return m.detectIfSettled(msg)

	case detectResultMsg:
		m.applyDetection(msg)
		return m, nil

	case spinner.TickMsg:
		if !m.analysis.Loading() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case clearCopiedMsg:
		m.copied = ""
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	detect := m.scheduleDetect()
	return m, tea.Batch(cmd, detect)
}

func (m AnalyzeModel) handleResultKey(msg tea.KeyMsg) (AnalyzeModel, tea.Cmd) {
	key := msg.String()
	switch key {
	case "enter", "i", "e":
		cmd := m.input.Focus()
		return m, cmd
	case "y":
		if res := m.analysis.Result(); res != nil && res.RewrittenPrompt != "" {
			return m.copy(res.RewrittenPrompt, "rewritten prompt")
		}
		return m, nil
	}

	if len(key) == 1 && key[0] >= '1' && key[0] <= '9' {
		n := int(key[0] - '0')
		if res := m.analysis.Result(); res != nil && n <= len(res.AlternativeSuggestions) {
			return m.copy(res.AlternativeSuggestions[n-1], fmt.Sprintf("alternative %d", n))
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m AnalyzeModel) copy(text, what string) (AnalyzeModel, tea.Cmd) {
	if err := copyText(text); err != nil {
		m.logger.Warn("clipboard write failed", zap.Error(err))
		m.copyError = "Could not copy to clipboard: " + err.Error()
		m.copied = ""
		return m, nil
	}
	m.copyError = ""
	m.copied = what
	return m, clearCopiedAfter(2 * time.Second)
}

// submit starts an analysis of the current input.
func (m AnalyzeModel) submit() (AnalyzeModel, tea.Cmd) {
	prompt := m.input.Value()
	if strings.TrimSpace(prompt) == "" {
		return m, nil
	}

	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}

	ticket := m.analysis.Begin(prompt)
	m.copied = ""
	m.copyError = ""
	m.input.Blur()
	m.refreshContent()

	if m.client == nil {
		m.analysis.Fail(ticket, api.FallbackAnalyze)
		return m, nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel
	client := m.client
	axis := m.Axis()

	m.logger.Debug("submitting analysis",
		zap.Uint64("ticket", uint64(ticket)),
		zap.String("axis", axis),
		zap.Int("prompt_len", len([]rune(prompt))))

	analyze := func() tea.Msg {
		res, err := client.Analyze(ctx, prompt, axis)
		return analyzeResultMsg{ticket: ticket, result: res, err: err}
	}
	return m, tea.Batch(analyze, m.spinner.Tick)
}

func (m AnalyzeModel) applyAnalysis(msg analyzeResultMsg) AnalyzeModel {
	if msg.err != nil {
		if api.IsCanceled(msg.err) && !m.analysis.Current(msg.ticket) {
			return m
		}
		if m.analysis.Fail(msg.ticket, api.UserMessage(msg.err, api.FallbackAnalyze)) {
			m.logger.Warn("analysis failed", zap.Uint64("ticket", uint64(msg.ticket)), zap.Error(msg.err))
			m.cancel = nil
		} else {
			m.logger.Debug("dropping stale analysis error", zap.Uint64("ticket", uint64(msg.ticket)))
		}
		m.refreshContent()
		return m
	}

	if !m.analysis.Complete(msg.ticket, msg.result) {
		m.logger.Debug("dropping stale analysis", zap.Uint64("ticket", uint64(msg.ticket)))
		return m
	}
	m.cancel = nil

	m.highlighted = render.HighlightOrPlain(msg.result.OriginalPrompt, msg.result.BiasesByCategory)
	if m.highlighted.Err != nil {
		m.logger.Warn("highlighting unavailable", zap.Error(m.highlighted.Err))
	}

	m.refreshContent()
	m.viewport.GotoTop()
	return m
}

// scheduleDetect starts the debounce timer when the input changed.
func (m *AnalyzeModel) scheduleDetect() tea.Cmd {
	value := m.input.Value()
	if value == m.lastInput {
		return nil
	}
	m.lastInput = value
	if !m.liveEnabled {
		return nil
	}

	m.liveSeq++
	seq := m.liveSeq
	return tea.Tick(m.liveDelay, func(time.Time) tea.Msg {
		return detectTickMsg{seq: seq}
	})
}

// detectIfSettled runs a detection when no keystroke arrived since the tick
// was scheduled.
func (m AnalyzeModel) detectIfSettled(msg detectTickMsg) (AnalyzeModel, tea.Cmd) {
	if msg.seq != m.liveSeq || m.client == nil {
		return m, nil
	}

	prompt := m.input.Value()
	if strings.TrimSpace(prompt) == "" {
		m.live.Reset()
		m.lastDetected = ""
		return m, nil
	}
	if prompt == m.lastDetected {
		return m, nil
	}
	m.lastDetected = prompt

	ticket := m.live.Begin(prompt)
	client := m.client
	return m, func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		det, err := client.Detect(ctx, prompt)
		return detectResultMsg{ticket: ticket, detection: det, err: err}
	}
}

func (m *AnalyzeModel) applyDetection(msg detectResultMsg) {
	if msg.err != nil {
		if m.live.Fail(msg.ticket, api.UserMessage(msg.err, api.FallbackDetect)) {
			m.logger.Debug("live detection failed", zap.Error(msg.err))
		}
		return
	}
	if msg.detection != nil && msg.detection.Prompt == "" {
		msg.detection.Prompt = m.live.Prompt()
	}
	if !m.live.Complete(msg.ticket, msg.detection) {
		m.logger.Debug("dropping stale detection", zap.Uint64("ticket", uint64(msg.ticket)))
	}
}

// refreshContent re-renders the result panel into the viewport.
func (m *AnalyzeModel) refreshContent() {
	m.content = ""
	if res := m.analysis.Result(); res != nil {
		m.content = renderResult(res, m.highlighted, m.viewport.Width)
	}
	m.viewport.SetContent(m.content)
}

// View renders the analyze view.
func (m AnalyzeModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Analyze Prompt"))
	b.WriteString("  ")
	b.WriteString(m.renderAxisBar())
	b.WriteString("\n")

	box := inputBoxStyle
	if m.input.Focused() {
		box = inputBoxFocusedStyle
	}
	b.WriteString(box.Render(m.input.View()))
	b.WriteString("\n")

	b.WriteString(m.renderStatus())
	b.WriteString("\n")

	if m.content != "" {
		b.WriteString(m.viewport.View())
		b.WriteString("\n")
	}

	b.WriteString(helpStyle.Render(m.helpLine()))
	return b.String()
}

func (m AnalyzeModel) renderAxisBar() string {
	parts := []string{subtitleStyle.Render(string(m.selector) + ":")}
	for i, a := range m.axes {
		if i == m.axis {
			parts = append(parts, axisActiveStyle.Render(a))
		} else {
			parts = append(parts, axisStyle.Render(a))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Center, parts...)
}

func (m AnalyzeModel) renderStatus() string {
	var parts []string

	switch {
	case m.analysis.Loading():
		parts = append(parts, m.spinner.View()+loadingStyle.Render("Analyzing prompt..."))
	case m.analysis.Err() != "":
		parts = append(parts, errorBoxStyle.Render(errorStyle.Render(m.analysis.Err())))
	}

	if live := m.liveBadge(); live != "" {
		parts = append(parts, live)
	}
	if m.copied != "" {
		parts = append(parts, copiedStyle.Render("Copied "+m.copied+"!"))
	}
	if m.copyError != "" {
		parts = append(parts, errorStyle.Render(m.copyError))
	}

	return strings.Join(parts, "  ")
}

// liveBadge is the running score shown while typing.
func (m AnalyzeModel) liveBadge() string {
	if !m.liveEnabled {
		return ""
	}
	if m.live.Loading() && m.live.Result() == nil {
		return helpStyle.Render("live: …")
	}
	det := m.live.Result()
	if det == nil {
		return ""
	}
	return helpStyle.Render("live: ") + render.ScoreLine(det.BiasScore, det.BiasesByCategory, true)
}

func (m AnalyzeModel) helpLine() string {
	parts := []string{"ctrl+s: analyze", "ctrl+d: " + string(m.selector)}
	if m.input.Focused() {
		parts = append(parts, "esc: results")
	} else {
		parts = append(parts, "enter: edit", "↑/↓: scroll")
		if res := m.analysis.Result(); res != nil {
			parts = append(parts, "y: copy rewrite")
			if len(res.AlternativeSuggestions) > 0 {
				parts = append(parts, fmt.Sprintf("1-%d: copy alternative", min(len(res.AlternativeSuggestions), 9)))
			}
		}
	}
	return strings.Join(parts, " • ")
}

// renderResult lays out a full analysis for the result panel: the big score
// header, then the same sections the CLI report prints.
func renderResult(res *bias.Result, h render.Highlighted, width int) string {
	if width < 20 {
		width = 20
	}

	score := render.ScoreStyle(res.BiasScore)
	big := score.Render(bigscore.Score(int(res.BiasScore)))
	summary := lipgloss.JoinVertical(lipgloss.Left,
		score.Render(res.BiasScore.Level().String()),
		helpStyle.Render(bias.IndicatorSummary(res.BiasesByCategory.Total())),
		helpStyle.Render("Domain: ")+valueStyle.Render(render.DomainLine(res)),
	)
	header := lipgloss.JoinHorizontal(lipgloss.Center, big, "   ", summary)

	return header + "\n" + render.ReportBody(res, h, render.Options{Width: width, Color: true})
}
