package bias

import (
	"encoding/json"
	"fmt"
	"math"
)

// Score is a bias score in [0, 100]. The service sometimes sends it as a
// float, so decoding rounds and clamps.
type Score int

// UnmarshalJSON accepts integer or fractional numbers.
func (s *Score) UnmarshalJSON(data []byte) error {
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("decoding bias score: %w", err)
	}
	*s = ClampScore(int(math.Round(f)))
	return nil
}

// ClampScore forces n into [0, 100].
func ClampScore(n int) Score {
	switch {
	case n < 0:
		return 0
	case n > 100:
		return 100
	default:
		return Score(n)
	}
}

// Level buckets a score for display.
type Level int

const (
	LevelLow Level = iota
	LevelModerate
	LevelHigh
)

// Level returns the display bucket: below 30 is low, below 60 moderate.
func (s Score) Level() Level {
	switch {
	case s < 30:
		return LevelLow
	case s < 60:
		return LevelModerate
	default:
		return LevelHigh
	}
}

// String returns the label shown under the score.
func (l Level) String() string {
	switch l {
	case LevelLow:
		return "Low Bias"
	case LevelModerate:
		return "Moderate Bias"
	default:
		return "High Bias"
	}
}

// Color returns the hex colour used for the score.
func (l Level) Color() string {
	switch l {
	case LevelLow:
		return "#4caf50"
	case LevelModerate:
		return "#ff9800"
	default:
		return "#f44336"
	}
}
