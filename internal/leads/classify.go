package leads

import (
	"math"

	"leadscout/pkg/contracts/domain"
)

// Headline tier thresholds, each the inclusive lower edge of its band
const (
	HeadlineHighThreshold    = 3.0
	HeadlineMidThreshold     = 1.0
	HeadlineNeutralThreshold = 0.0
)

// Company priority bin edges, each the inclusive upper edge of its bin
const (
	CompanyLowCeiling    = 0.0
	CompanyMediumCeiling = 3.0
	CompanyHighCeiling   = 6.0
)

// ClassifyHeadline buckets the lead score of a single record.
// The ladder is evaluated top-down: >=3 High, >=1 Mid, >=0 Neutral, otherwise Caution.
func ClassifyHeadline(score float64) domain.HeadlineTier {
	switch {
	case score >= HeadlineHighThreshold:
		return domain.HeadlineTierHigh
	case score >= HeadlineMidThreshold:
		return domain.HeadlineTierMid
	case score >= HeadlineNeutralThreshold:
		return domain.HeadlineTierNeutral
	default:
		// NaN lands here as well
		return domain.HeadlineTierCaution
	}
}

// ClassifyCompany buckets the summed lead score of a company:
// (-inf,0] Low, (0,3] Medium, (3,6] High, (6,inf) Critical.
func ClassifyCompany(total float64) domain.CompanyPriority {
	switch {
	case math.IsNaN(total) || total <= CompanyLowCeiling:
		return domain.CompanyPriorityLow
	case total <= CompanyMediumCeiling:
		return domain.CompanyPriorityMedium
	case total <= CompanyHighCeiling:
		return domain.CompanyPriorityHigh
	default:
		return domain.CompanyPriorityCritical
	}
}
