package sentiment

import (
	"context"
	"errors"
	"math"
)

const (
	// MinPolarity is the most negative polarity a scorer may return
	MinPolarity = -1.0
	// MaxPolarity is the most positive polarity a scorer may return
	MaxPolarity = 1.0
)

// ErrUnavailable is returned when an external scorer cannot produce a polarity
var ErrUnavailable = errors.New("sentiment scorer unavailable")

// Scorer maps free text to a polarity in [MinPolarity, MaxPolarity].
// Implementations must return 0 for empty or whitespace-only text and must be
// deterministic for identical input.
type Scorer interface {
	Score(ctx context.Context, text string) (float64, error)
}

// ScorerFunc adapts a plain function to the Scorer interface
type ScorerFunc func(ctx context.Context, text string) (float64, error)

// Score calls f(ctx, text)
func (f ScorerFunc) Score(ctx context.Context, text string) (float64, error) {
	return f(ctx, text)
}

// Clamp bounds v to the polarity range. NaN is treated as neutral.
func Clamp(v float64) float64 {
	switch {
	case math.IsNaN(v):
		return 0
	case v < MinPolarity:
		return MinPolarity
	case v > MaxPolarity:
		return MaxPolarity
	}
	return v
}
