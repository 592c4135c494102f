// Package render turns analysis results into terminal output.
//
// Highlighted text is always built from bias.Segment values, one styled
// fragment per segment. Segment text and category names come from the
// service, so terminal control sequences are stripped before styling.
package render

import (
	"fmt"
	"hash/fnv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/f3rmion/objectify/internal/bias"
	"github.com/mattn/go-runewidth"
)

// Color palette
var (
	ColorPrimary   = lipgloss.Color("#FF6B6B") // Red - titles
	ColorSecondary = lipgloss.Color("#4ecdc4") // Teal - section headers
	ColorAccent    = lipgloss.Color("#ffe66d") // Yellow - highlights
	ColorMuted     = lipgloss.Color("#666666") // Gray - help text
	ColorSuccess   = lipgloss.Color("#a8e6cf") // Green - rewrite
	ColorText      = lipgloss.Color("#f1faee") // Light text
	ColorLabel     = lipgloss.Color("#a8dadc") // Label color
	ColorBorder    = lipgloss.Color("#3d5a80") // Border color
)

// Highlight backgrounds, picked per category.
var highlightPalette = []lipgloss.Color{
	"#ffe66d", "#ff9f9f", "#a8e6cf", "#9ad0ff", "#f7b2f7", "#ffc48c", "#c3b1e1",
}

var (
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorPrimary)

	SectionStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorSecondary)

	LabelStyle = lipgloss.NewStyle().
			Foreground(ColorLabel).
			Bold(true)

	ValueStyle = lipgloss.NewStyle().
			Foreground(ColorText)

	MutedStyle = lipgloss.NewStyle().
			Foreground(ColorMuted)

	RewriteStyle = lipgloss.NewStyle().
			Foreground(ColorSuccess)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(ColorPrimary).
			Bold(true)

	BoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorBorder).
			Padding(0, 1)
)

// CategoryColor returns a stable highlight colour for a category.
func CategoryColor(category string) lipgloss.Color {
	h := fnv.New32a()
	_, _ = h.Write([]byte(category))
	return highlightPalette[h.Sum32()%uint32(len(highlightPalette))]
}

// CategoryStyle is the style of a highlighted span.
func CategoryStyle(category string) lipgloss.Style {
	return lipgloss.NewStyle().
		Background(CategoryColor(category)).
		Foreground(lipgloss.Color("#1a1a2e")).
		Bold(true)
}

// ScoreStyle colours a score by its level.
func ScoreStyle(score bias.Score) lipgloss.Style {
	return lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color(score.Level().Color()))
}

// Sanitize removes terminal control characters, keeping newlines and tabs.
func Sanitize(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r == '\n' || r == '\t':
			return r
		case r < 0x20 || r == 0x7f || (r >= 0x80 && r < 0xa0):
			return -1
		default:
			return r
		}
	}, s)
}

// Segments renders segments as styled terminal text.
func Segments(segments []bias.Segment) string {
	var b strings.Builder
	for _, s := range segments {
		text := Sanitize(s.Text)
		if s.Kind == bias.SegmentHighlighted {
			b.WriteString(CategoryStyle(s.Category).Render(text))
		} else {
			b.WriteString(text)
		}
	}
	return b.String()
}

// Marked renders segments without colour, wrapping highlighted spans as
// [text]{category label}.
func Marked(segments []bias.Segment) string {
	var b strings.Builder
	for _, s := range segments {
		text := Sanitize(s.Text)
		if s.Kind == bias.SegmentHighlighted {
			fmt.Fprintf(&b, "[%s]{%s}", text, Sanitize(bias.CategoryLabel(s.Category)))
		} else {
			b.WriteString(text)
		}
	}
	return b.String()
}

// Legend lists the categories present in segments with their colour, the
// terminal's stand-in for a hover tooltip.
func Legend(segments []bias.Segment) string {
	var parts []string
	for _, c := range bias.SegmentCategories(segments) {
		swatch := CategoryStyle(c).Render("  ")
		parts = append(parts, swatch+" "+MutedStyle.Render(Sanitize(bias.CategoryLabel(c))))
	}
	return strings.Join(parts, "   ")
}

// Wrap wraps plain text to width display cells.
func Wrap(s string, width int) string {
	if width <= 0 {
		width = 60
	}
	var out []string
	for _, para := range strings.Split(s, "\n") {
		out = append(out, wrapLine(para, width))
	}
	return strings.Join(out, "\n")
}

func wrapLine(s string, width int) string {
	var lines []string
	var currentLine strings.Builder
	currentWidth := 0

	for _, word := range strings.Fields(s) {
		wordWidth := runewidth.StringWidth(word)
		if currentWidth+wordWidth+1 > width && currentWidth > 0 {
			lines = append(lines, currentLine.String())
			currentLine.Reset()
			currentWidth = 0
		}
		if currentWidth > 0 {
			currentLine.WriteString(" ")
			currentWidth++
		}
		currentLine.WriteString(word)
		currentWidth += wordWidth
	}
	if currentLine.Len() > 0 {
		lines = append(lines, currentLine.String())
	}
	return strings.Join(lines, "\n")
}

// Truncate shortens s to at most width display cells, adding an ellipsis.
func Truncate(s string, width int) string {
	return runewidth.Truncate(s, width, "…")
}
