package render

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/f3rmion/objectify/internal/bias"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleResult() *bias.Result {
	return &bias.Result{
		OriginalPrompt: "Obviously this is a terrible idea",
		BiasScore:      25,
		BiasesByCategory: bias.Categories{
			{Name: "subjective_language", Occurrences: []bias.Occurrence{{Term: "obviously", Position: 0, Length: 9}}},
			{Name: "loaded_terms", Occurrences: []bias.Occurrence{{Term: "terrible", Position: 20, Length: 8}}},
		},
		Domain:                 bias.DomainGeneral,
		DomainConfidence:       bias.ConfidenceHigh,
		RewrittenPrompt:        "What are the strengths and weaknesses of this idea?",
		ChangesMade:            []string{"Removed subjective language: 'obviously'"},
		AlternativeSuggestions: []string{"How might this idea be evaluated?", "What evidence exists about this idea?"},
	}
}

func TestMarked(t *testing.T) {
	segs := []bias.Segment{
		{Kind: bias.SegmentHighlighted, Text: "Obviously", Category: "subjective_language"},
		{Kind: bias.SegmentPlain, Text: " fine"},
	}
	assert.Equal(t, "[Obviously]{subjective language} fine", Marked(segs))
}

func TestSanitize(t *testing.T) {
	assert.Equal(t, "red[31mtext", Sanitize("red\x1b[31mtext"))
	assert.Equal(t, "a\nb\tc", Sanitize("a\nb\tc"))
	assert.Equal(t, "bell", Sanitize("be\x07ll"))
	assert.Equal(t, "héllo", Sanitize("héllo"))
}

func TestSegments_StripsControlSequences(t *testing.T) {
	segs := []bias.Segment{
		{Kind: bias.SegmentPlain, Text: "safe \x1b]0;pwned\x07"},
		{Kind: bias.SegmentHighlighted, Text: "\x1b[2Jbad", Category: "x"},
	}
	out := Segments(segs)
	assert.NotContains(t, out, "]0;pwned\x07")
	assert.Contains(t, out, "bad")
}

func TestWrap(t *testing.T) {
	assert.Equal(t, "one two\nthree", Wrap("one two three", 8))
	assert.Equal(t, "a\n\nb", Wrap("a\n\nb", 10))
	assert.Equal(t, "", Wrap("", 10))
}

func TestHighlightOrPlain(t *testing.T) {
	h := HighlightOrPlain("abc", bias.Categories{{Name: "x", Occurrences: []bias.Occurrence{{Position: 1, Length: 1}}}})
	require.NoError(t, h.Err)
	assert.Len(t, h.Segments, 3)

	h = HighlightOrPlain("abc", bias.Categories{{Name: "x", Occurrences: []bias.Occurrence{{Position: 2, Length: 5}}}})
	require.Error(t, h.Err)
	assert.Equal(t, bias.Plain("abc"), h.Segments)
}

func TestReport_Plain(t *testing.T) {
	out := Report(sampleResult(), Options{Width: 80})

	assert.Contains(t, out, "Bias Analysis")
	assert.Contains(t, out, "25  Low Bias")
	assert.Contains(t, out, "2 bias indicators detected")
	assert.Contains(t, out, "general (high confidence)")
	assert.Contains(t, out, "[Obviously]{subjective language} this is a [terrible]{loaded terms} idea")
	assert.Contains(t, out, "SUBJECTIVE LANGUAGE: 1")
	assert.Contains(t, out, "    - terrible")
	assert.Contains(t, out, "What are the strengths and weaknesses of this idea?")
	assert.Contains(t, out, "  • Removed subjective language: 'obviously'")
	assert.Contains(t, out, "  2. What evidence exists about this idea?")
}

func TestReport_NoBiases(t *testing.T) {
	res := sampleResult()
	res.BiasesByCategory = nil
	res.ChangesMade = nil
	res.AlternativeSuggestions = nil

	out := Report(res, Options{})
	assert.NotContains(t, out, "Highlighted Biases")
	assert.NotContains(t, out, "Changes Applied")
	assert.Contains(t, out, "0 bias indicators detected")
}

func TestReport_InvalidSpansStillRenderRest(t *testing.T) {
	res := sampleResult()
	res.BiasesByCategory = bias.Categories{{Name: "x", Occurrences: []bias.Occurrence{{Position: 30, Length: 10}}}}

	out := Report(res, Options{})
	assert.Contains(t, out, "Highlights unavailable")
	assert.Contains(t, out, res.RewrittenPrompt)
	assert.Contains(t, out, "Alternative Suggestions")
}

func TestReport_EndsWithBody(t *testing.T) {
	res := sampleResult()
	h := HighlightOrPlain(res.OriginalPrompt, res.BiasesByCategory)

	for _, color := range []bool{false, true} {
		opts := Options{Width: 70, Color: color}
		out := Report(res, opts)
		assert.True(t, strings.HasSuffix(out, ReportBody(res, h, opts)), "color=%v", color)
	}
}

func TestReportBody_UsesGivenSegments(t *testing.T) {
	res := sampleResult()
	h := Highlighted{Segments: bias.Plain(res.OriginalPrompt)}

	out := ReportBody(res, h, Options{})
	assert.Contains(t, out, "Highlighted Biases")
	assert.NotContains(t, out, "[Obviously]")
	assert.Contains(t, out, "Bias Breakdown")
}

func TestDomainLine(t *testing.T) {
	res := &bias.Result{Domain: bias.DomainMedical, DomainConfidence: bias.ConfidenceHigh}
	assert.Equal(t, "medical (high confidence)", DomainLine(res))

	res = &bias.Result{}
	assert.Equal(t, string(bias.DomainUnknown), DomainLine(res))
}

func TestReport_Color(t *testing.T) {
	out := Report(sampleResult(), Options{Width: 60, Color: true})
	assert.Contains(t, out, "Obviously")
	assert.Contains(t, out, "loaded terms")
	assert.NotContains(t, out, "]{")
}

func TestDetectionReport(t *testing.T) {
	det := &bias.Detection{
		Prompt:    "never again",
		BiasScore: 12,
		BiasesByCategory: bias.Categories{
			{Name: "absolutist_language", Occurrences: []bias.Occurrence{{Term: "never", Position: 0, Length: 5}}},
		},
	}
	out := DetectionReport(det, Options{})
	assert.Contains(t, out, "[never]{absolutist language} again")
	assert.Contains(t, out, "1 bias indicator detected")
}

func TestJSONReport(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, NewJSONReport("p", sampleResult())))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "Low Bias", decoded["level"])

	segs := decoded["segments"].([]any)
	require.Len(t, segs, 4)
	first := segs[0].(map[string]any)
	assert.Equal(t, "highlighted", first["kind"])
	assert.Equal(t, "subjective_language", first["category"])

	result := decoded["result"].(map[string]any)
	assert.Contains(t, result, "biases_detected")
	assert.True(t, strings.HasPrefix(buf.String(), "{\n"))
}

func TestCategoryColorStable(t *testing.T) {
	assert.Equal(t, CategoryColor("loaded_terms"), CategoryColor("loaded_terms"))
}
