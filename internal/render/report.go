package render

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/f3rmion/objectify/internal/bias"
)

// Highlighted is a prompt split into display segments. When the service sent
// spans that do not fit the prompt, Segments falls back to the plain text and
// Err says why; the rest of the result still renders.
type Highlighted struct {
	Segments []bias.Segment
	Err      error
}

// HighlightOrPlain runs the highlighter and contains its failure.
func HighlightOrPlain(text string, cats bias.Categories) Highlighted {
	segs, err := bias.Highlight(text, cats)
	if err != nil {
		return Highlighted{Segments: bias.Plain(text), Err: err}
	}
	return Highlighted{Segments: segs}
}

// Options controls text reports.
type Options struct {
	Width int  // Wrap width in cells; 0 means 80
	Color bool // Styled output; false gives marker text
}

type styleFunc func(string) string

type theme struct {
	title, section, label, value, muted, rewrite, warn styleFunc
	color                                              bool
}

func styled(s lipgloss.Style) styleFunc {
	return func(text string) string { return s.Render(text) }
}

func unstyled(text string) string { return text }

func newTheme(color bool) theme {
	if !color {
		return theme{unstyled, unstyled, unstyled, unstyled, unstyled, unstyled, unstyled, false}
	}
	return theme{
		styled(TitleStyle), styled(SectionStyle), styled(LabelStyle), styled(ValueStyle),
		styled(MutedStyle), styled(RewriteStyle), styled(ErrorStyle), true,
	}
}

func (t theme) segments(segs []bias.Segment) string {
	if t.color {
		return Segments(segs)
	}
	return Marked(segs)
}

func (t theme) score(score bias.Score) string {
	label := fmt.Sprintf("%d  %s", score, score.Level())
	if t.color {
		return ScoreStyle(score).Render(label)
	}
	return label
}

// ScoreLine is "47  Moderate Bias · 3 bias indicators detected".
func ScoreLine(score bias.Score, cats bias.Categories, color bool) string {
	t := newTheme(color)
	return t.score(score) + t.muted(" · "+bias.IndicatorSummary(cats.Total()))
}

// Breakdown lists each non-empty category with its count and terms.
func Breakdown(cats bias.Categories, color bool) string {
	t := newTheme(color)
	var b strings.Builder
	for _, item := range cats.Breakdown() {
		fmt.Fprintf(&b, "%s %d\n", t.label(Sanitize(item.Heading)+":"), item.Count)
		for _, term := range item.Terms {
			fmt.Fprintf(&b, "    - %s\n", t.value(Sanitize(term)))
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

// HighlightSection renders the highlighted prompt plus legend, or a warning
// and plain text when highlighting failed.
func HighlightSection(h Highlighted, width int, color bool) string {
	t := newTheme(color)
	var b strings.Builder

	body := t.segments(h.Segments)
	if color {
		body = lipgloss.NewStyle().Width(width).Render(body)
	} else {
		body = Wrap(body, width)
	}
	b.WriteString(body)

	if h.Err != nil {
		b.WriteString("\n")
		b.WriteString(t.warn("Highlights unavailable: service sent spans outside the prompt."))
	} else if color {
		if legend := Legend(h.Segments); legend != "" {
			b.WriteString("\n\n")
			b.WriteString(legend)
		}
	}

	return b.String()
}

// Report renders a full analysis.
func Report(res *bias.Result, opts Options) string {
	t := newTheme(opts.Color)
	var b strings.Builder

	b.WriteString(t.title("Bias Analysis"))
	b.WriteString("\n")
	b.WriteString(ScoreLine(res.BiasScore, res.BiasesByCategory, opts.Color))
	b.WriteString("\n")
	b.WriteString(t.label("Domain: ") + t.value(DomainLine(res)))
	b.WriteString("\n")

	h := HighlightOrPlain(res.OriginalPrompt, res.BiasesByCategory)
	b.WriteString(ReportBody(res, h, opts))
	return b.String()
}

// ReportBody renders every section of an analysis below the score summary:
// highlights, breakdown, both prompts, changes and alternatives. h is the
// highlighted original prompt, so callers that already ran the highlighter
// do not run it twice.
func ReportBody(res *bias.Result, h Highlighted, opts Options) string {
	width := opts.Width
	if width <= 0 {
		width = 80
	}
	t := newTheme(opts.Color)
	var b strings.Builder

	section := func(title string) {
		b.WriteString("\n")
		b.WriteString(t.section(title))
		b.WriteString("\n")
	}

	if res.BiasesByCategory.Total() > 0 {
		section("Highlighted Biases")
		b.WriteString(HighlightSection(h, width, opts.Color))
		b.WriteString("\n")

		section("Bias Breakdown")
		b.WriteString(Breakdown(res.BiasesByCategory, opts.Color))
		b.WriteString("\n")
	}

	section("Original Prompt")
	b.WriteString(Wrap(Sanitize(res.OriginalPrompt), width))
	b.WriteString("\n")

	section("Rewritten Prompt")
	b.WriteString(t.rewrite(Wrap(Sanitize(res.RewrittenPrompt), width)))
	b.WriteString("\n")

	if len(res.ChangesMade) > 0 {
		section("Changes Applied")
		for _, c := range res.ChangesMade {
			b.WriteString("  • " + Wrap(Sanitize(c), width-4) + "\n")
		}
	}

	if len(res.AlternativeSuggestions) > 0 {
		section("Alternative Suggestions")
		for i, alt := range res.AlternativeSuggestions {
			fmt.Fprintf(&b, "  %d. %s\n", i+1, Wrap(Sanitize(alt), width-5))
		}
	}

	return b.String()
}

// DetectionReport renders a detect-only result.
func DetectionReport(det *bias.Detection, opts Options) string {
	width := opts.Width
	if width <= 0 {
		width = 80
	}
	t := newTheme(opts.Color)
	var b strings.Builder

	b.WriteString(t.title("Bias Detection"))
	b.WriteString("\n")
	b.WriteString(ScoreLine(det.BiasScore, det.BiasesByCategory, opts.Color))
	b.WriteString("\n")

	if det.BiasesByCategory.Total() > 0 {
		b.WriteString("\n")
		b.WriteString(HighlightSection(HighlightOrPlain(det.Prompt, det.BiasesByCategory), width, opts.Color))
		b.WriteString("\n\n")
		b.WriteString(Breakdown(det.BiasesByCategory, opts.Color))
		b.WriteString("\n")
	}

	return b.String()
}

// DomainLine is the detected domain with its confidence, e.g.
// "medical (high confidence)".
func DomainLine(res *bias.Result) string {
	d := string(res.Domain)
	if d == "" {
		d = string(bias.DomainUnknown)
	}
	if res.DomainConfidence != "" {
		return fmt.Sprintf("%s (%s confidence)", d, res.DomainConfidence)
	}
	return d
}

// JSONReport is the machine-readable output of analyze and detect.
type JSONReport struct {
	Prompt         string          `json:"prompt"`
	Result         *bias.Result    `json:"result,omitempty"`
	Detection      *bias.Detection `json:"detection,omitempty"`
	Level          string          `json:"level,omitempty"`
	Segments       []bias.Segment  `json:"segments,omitempty"`
	HighlightError string          `json:"highlight_error,omitempty"`
	Error          string          `json:"error,omitempty"`
}

// NewJSONReport builds the JSON view of an analysis.
func NewJSONReport(prompt string, res *bias.Result) JSONReport {
	h := HighlightOrPlain(res.OriginalPrompt, res.BiasesByCategory)
	r := JSONReport{
		Prompt:   prompt,
		Result:   res,
		Level:    res.BiasScore.Level().String(),
		Segments: h.Segments,
	}
	if h.Err != nil {
		r.HighlightError = h.Err.Error()
	}
	return r
}

// NewJSONDetection builds the JSON view of a detection.
func NewJSONDetection(prompt string, det *bias.Detection) JSONReport {
	h := HighlightOrPlain(det.Prompt, det.BiasesByCategory)
	r := JSONReport{
		Prompt:    prompt,
		Detection: det,
		Level:     det.BiasScore.Level().String(),
		Segments:  h.Segments,
	}
	if h.Err != nil {
		r.HighlightError = h.Err.Error()
	}
	return r
}

// WriteJSON writes v as indented JSON.
func WriteJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encoding JSON: %w", err)
	}
	return nil
}
