package bias

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrInvalidOccurrence is matched by every *InvalidOccurrenceError.
var ErrInvalidOccurrence = errors.New("invalid bias occurrence")

// InvalidOccurrenceError reports an occurrence that does not fit the text.
type InvalidOccurrenceError struct {
	Category   string
	Index      int // Index within the category's list
	Occurrence Occurrence
	TextLength int // Rune count of the text
}

func (e *InvalidOccurrenceError) Error() string {
	o := e.Occurrence
	return fmt.Sprintf("%s: %s[%d] position=%d length=%d text length=%d",
		ErrInvalidOccurrence, e.Category, e.Index, o.Position, o.Length, e.TextLength)
}

// Is makes errors.Is(err, ErrInvalidOccurrence) work.
func (e *InvalidOccurrenceError) Is(target error) bool {
	return target == ErrInvalidOccurrence
}

// SegmentKind distinguishes pass-through text from highlighted spans.
type SegmentKind int

const (
	SegmentPlain SegmentKind = iota
	SegmentHighlighted
)

func (k SegmentKind) String() string {
	if k == SegmentHighlighted {
		return "highlighted"
	}
	return "plain"
}

// MarshalText encodes the kind by name.
func (k SegmentKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Segment is a contiguous slice of the original text.
type Segment struct {
	Kind     SegmentKind `json:"kind"`
	Text     string      `json:"text"`
	Category string      `json:"category,omitempty"` // Set only for highlighted segments
}

// Tagged is an occurrence together with the category it came from.
type Tagged struct {
	Occurrence
	Category string
}

// Resolve flattens every category into one list, sorts it by position and
// keeps the first of any overlapping occurrences. The result is sorted and
// pairwise disjoint. Invalid occurrences fail the whole call.
func Resolve(text string, cats Categories) ([]Tagged, error) {
	n := len([]rune(text))

	var all []Tagged
	for _, cat := range cats {
		for i, o := range cat.Occurrences {
			// Compared without adding, so huge offsets cannot wrap around.
			if o.Length < 1 || o.Position < 0 || o.Position > n || o.Length > n-o.Position {
				return nil, &InvalidOccurrenceError{
					Category:   cat.Name,
					Index:      i,
					Occurrence: o,
					TextLength: n,
				}
			}
			all = append(all, Tagged{Occurrence: o, Category: cat.Name})
		}
	}

	// Stable: equal positions keep category order, then list order.
	sort.SliceStable(all, func(i, j int) bool {
		return all[i].Position < all[j].Position
	})

	// Accepted spans are disjoint and sorted, so checking the last accepted
	// end is enough.
	accepted := all[:0]
	end := 0
	for _, t := range all {
		if len(accepted) > 0 && t.Position < end {
			continue
		}
		accepted = append(accepted, t)
		end = t.End()
	}

	return accepted, nil
}

// Highlight splits text into plain and highlighted segments. Concatenating
// the segment texts always gives back the original text. Empty text yields no
// segments; text without occurrences yields a single plain segment.
func Highlight(text string, cats Categories) ([]Segment, error) {
	accepted, err := Resolve(text, cats)
	if err != nil {
		return nil, err
	}

	runes := []rune(text)
	var segments []Segment
	cursor := 0
	for _, t := range accepted {
		if t.Position > cursor {
			segments = append(segments, Segment{
				Kind: SegmentPlain,
				Text: string(runes[cursor:t.Position]),
			})
		}
		segments = append(segments, Segment{
			Kind:     SegmentHighlighted,
			Text:     string(runes[t.Position:t.End()]),
			Category: t.Category,
		})
		cursor = t.End()
	}
	if cursor < len(runes) {
		segments = append(segments, Segment{
			Kind: SegmentPlain,
			Text: string(runes[cursor:]),
		})
	}

	return segments, nil
}

// Plain is the fallback decomposition used when highlighting fails.
func Plain(text string) []Segment {
	if text == "" {
		return nil
	}
	return []Segment{{Kind: SegmentPlain, Text: text}}
}

// Join concatenates segment texts.
func Join(segments []Segment) string {
	var b strings.Builder
	for _, s := range segments {
		b.WriteString(s.Text)
	}
	return b.String()
}

// SegmentCategories returns the distinct categories of highlighted segments in
// order of first appearance.
func SegmentCategories(segments []Segment) []string {
	seen := make(map[string]bool)
	var out []string
	for _, s := range segments {
		if s.Kind != SegmentHighlighted || seen[s.Category] {
			continue
		}
		seen[s.Category] = true
		out = append(out, s.Category)
	}
	return out
}
