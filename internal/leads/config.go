package leads

import (
	"fmt"
	"math"
)

// WeightingMode selects how sentiment contributes to a lead score
type WeightingMode string

const (
	// WeightingUnweighted adds the raw sentiment to the base score
	WeightingUnweighted WeightingMode = "unweighted"
	// WeightingWeighted adds sentiment multiplied by SentimentWeight
	WeightingWeighted WeightingMode = "weighted"
)

// UnknownCategoryPolicy decides what happens to news types outside the known set
type UnknownCategoryPolicy string

const (
	// UnknownCategoryFail rejects the record with ErrInvalidCategory
	UnknownCategoryFail UnknownCategoryPolicy = "fail"
	// UnknownCategoryNeutral scores the record with a base of zero
	UnknownCategoryNeutral UnknownCategoryPolicy = "treat_as_neutral"
)

// DefaultSentimentWeight is the damping factor used by weighted scoring
const DefaultSentimentWeight = 0.5

// ScoringConfig holds the scoring policy
type ScoringConfig struct {
	WeightingMode     WeightingMode         `json:"weighting_mode" yaml:"weighting_mode" validate:"omitempty,oneof=unweighted weighted"`
	SentimentWeight   float64               `json:"sentiment_weight" yaml:"sentiment_weight" validate:"gte=0"`
	OnUnknownCategory UnknownCategoryPolicy `json:"on_unknown_category" yaml:"on_unknown_category" validate:"omitempty,oneof=fail treat_as_neutral"`
}

// DefaultScoringConfig returns weighted scoring with the default weight that
// rejects unknown categories
func DefaultScoringConfig() ScoringConfig {
	return ScoringConfig{
		WeightingMode:     WeightingWeighted,
		SentimentWeight:   DefaultSentimentWeight,
		OnUnknownCategory: UnknownCategoryFail,
	}
}

// Validate checks that every field holds a supported value
func (c ScoringConfig) Validate() error {
	switch c.WeightingMode {
	case WeightingUnweighted, WeightingWeighted:
	default:
		return fmt.Errorf("unsupported weighting mode %q", c.WeightingMode)
	}

	switch c.OnUnknownCategory {
	case UnknownCategoryFail, UnknownCategoryNeutral:
	default:
		return fmt.Errorf("unsupported unknown category policy %q", c.OnUnknownCategory)
	}

	if math.IsNaN(c.SentimentWeight) || math.IsInf(c.SentimentWeight, 0) || c.SentimentWeight < 0 {
		return fmt.Errorf("sentiment weight must be a finite non-negative number, got %v", c.SentimentWeight)
	}

	return nil
}

// WithDefaults fills an empty mode and policy from DefaultScoringConfig.
// The weight is only defaulted together with the mode; an explicit weighted mode
// keeps whatever weight the caller passed, zero included.
func (c ScoringConfig) WithDefaults() ScoringConfig {
	def := DefaultScoringConfig()
	if c.WeightingMode == "" {
		c.WeightingMode = def.WeightingMode
		if c.SentimentWeight == 0 {
			c.SentimentWeight = def.SentimentWeight
		}
	}
	if c.OnUnknownCategory == "" {
		c.OnUnknownCategory = def.OnUnknownCategory
	}
	return c
}
