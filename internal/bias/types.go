// Package bias provides the data model returned by the analysis service and the
// span highlighter that turns detected occurrences into renderable segments.
package bias

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Domain is the coarse subject classification of a prompt.
type Domain string

const (
	DomainGeneral   Domain = "general"
	DomainPolitical Domain = "political"
	DomainScience   Domain = "science"
	DomainMedical   Domain = "medical"
	DomainUnknown   Domain = "unknown"
)

// Domains lists the domains the service accepts, in selector order.
var Domains = []Domain{DomainGeneral, DomainPolitical, DomainScience, DomainMedical}

// ParseDomain maps a wire value to a Domain. Anything outside the closed set
// becomes DomainUnknown.
func ParseDomain(s string) Domain {
	switch d := Domain(strings.ToLower(strings.TrimSpace(s))); d {
	case DomainGeneral, DomainPolitical, DomainScience, DomainMedical:
		return d
	default:
		return DomainUnknown
	}
}

// UnmarshalJSON keeps unrecognised domains from failing the whole result.
func (d *Domain) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("decoding domain: %w", err)
	}
	*d = ParseDomain(s)
	return nil
}

// Confidence is how sure the service is about the detected domain.
type Confidence string

const (
	ConfidenceLow    Confidence = "low"
	ConfidenceMedium Confidence = "medium"
	ConfidenceHigh   Confidence = "high"
)

// Occurrence is a single flagged span. Position and Length are rune offsets
// into the original prompt.
type Occurrence struct {
	Term     string `json:"term"`     // Literal text, for display only
	Position int    `json:"position"` // Zero-based rune offset
	Length   int    `json:"length"`   // Rune count, must be >= 1
}

// End returns the exclusive end offset.
func (o Occurrence) End() int {
	return o.Position + o.Length
}

// Category groups the occurrences of one bias type.
type Category struct {
	Name        string
	Occurrences []Occurrence
}

// Categories is the biases_detected object with the service's key order kept.
// Order matters: when two occurrences start at the same offset the one from
// the earlier category wins.
type Categories []Category

// UnmarshalJSON decodes a JSON object of category -> occurrence list, keeping
// key order.
func (c *Categories) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*c = nil
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("decoding categories: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("decoding categories: expected object, got %v", tok)
	}

	var out Categories
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("decoding categories: %w", err)
		}
		name, ok := tok.(string)
		if !ok {
			return fmt.Errorf("decoding categories: expected key, got %v", tok)
		}

		var occs []Occurrence
		if err := dec.Decode(&occs); err != nil {
			return fmt.Errorf("decoding category %q: %w", name, err)
		}
		out = append(out, Category{Name: name, Occurrences: occs})
	}

	if _, err := dec.Token(); err != nil {
		return fmt.Errorf("decoding categories: %w", err)
	}

	*c = out
	return nil
}

// MarshalJSON encodes the categories back into an object in the same order.
func (c Categories) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, cat := range c {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(cat.Name)
		if err != nil {
			return nil, err
		}
		occs := cat.Occurrences
		if occs == nil {
			occs = []Occurrence{}
		}
		val, err := json.Marshal(occs)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Get returns the occurrences for a category name.
func (c Categories) Get(name string) []Occurrence {
	for _, cat := range c {
		if cat.Name == name {
			return cat.Occurrences
		}
	}
	return nil
}

// Total counts every occurrence across all categories.
func (c Categories) Total() int {
	n := 0
	for _, cat := range c {
		n += len(cat.Occurrences)
	}
	return n
}

// BreakdownItem is one line of the per-category breakdown.
type BreakdownItem struct {
	Category string
	Heading  string
	Count    int
	Terms    []string
}

// Breakdown lists the non-empty categories in wire order.
func (c Categories) Breakdown() []BreakdownItem {
	var items []BreakdownItem
	for _, cat := range c {
		if len(cat.Occurrences) == 0 {
			continue
		}
		terms := make([]string, 0, len(cat.Occurrences))
		for _, o := range cat.Occurrences {
			terms = append(terms, o.Term)
		}
		items = append(items, BreakdownItem{
			Category: cat.Name,
			Heading:  CategoryHeading(cat.Name),
			Count:    len(cat.Occurrences),
			Terms:    terms,
		})
	}
	return items
}

// Result is the full analysis returned by /api/analyze.
type Result struct {
	OriginalPrompt         string     `json:"original_prompt"`
	BiasScore              Score      `json:"bias_score"`
	BiasesByCategory       Categories `json:"biases_detected"`
	Domain                 Domain     `json:"domain"`
	DomainConfidence       Confidence `json:"domain_confidence,omitempty"`
	RewrittenPrompt        string     `json:"rewritten_prompt"`
	ChangesMade            []string   `json:"changes_made"`
	AlternativeSuggestions []string   `json:"alternative_suggestions"`
}

// Detection is the subset returned by /api/detect.
type Detection struct {
	Prompt           string     `json:"prompt"`
	BiasScore        Score      `json:"bias_score"`
	BiasesByCategory Categories `json:"biases_detected"`
}

// IndicatorSummary reads like "3 bias indicators detected".
func IndicatorSummary(n int) string {
	if n == 1 {
		return "1 bias indicator detected"
	}
	return fmt.Sprintf("%d bias indicators detected", n)
}

// CategoryLabel turns a category key into display words: "loaded_terms" ->
// "loaded terms".
func CategoryLabel(name string) string {
	return strings.TrimSpace(strings.ReplaceAll(name, "_", " "))
}

// CategoryHeading is the upper-cased label used in the breakdown list.
func CategoryHeading(name string) string {
	return strings.ToUpper(CategoryLabel(name))
}
