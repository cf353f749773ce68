package leads

import (
	"sort"

	"leadscout/pkg/contracts/domain"
)

// TopN returns the n highest scoring records, keeping the original relative order
// of records with equal scores. n <= 0 yields an empty result. The input slice is
// left untouched.
func TopN(records []domain.ScoredRecord, n int) []domain.ScoredRecord {
	if n <= 0 || len(records) == 0 {
		return []domain.ScoredRecord{}
	}

	sorted := make([]domain.ScoredRecord, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].LeadScore > sorted[j].LeadScore
	})

	if n > len(sorted) {
		n = len(sorted)
	}
	return sorted[:n]
}

// TopCompanies returns the first n aggregates of an already ordered Aggregate result
func TopCompanies(aggregates []domain.CompanyAggregate, n int) []domain.CompanyAggregate {
	if n <= 0 || len(aggregates) == 0 {
		return []domain.CompanyAggregate{}
	}
	if n > len(aggregates) {
		n = len(aggregates)
	}
	out := make([]domain.CompanyAggregate, n)
	copy(out, aggregates[:n])
	return out
}
