package leads

import (
	"context"
	"sort"

	"leadscout/pkg/contracts/domain"
)

// Summary holds the dashboard counters of a scored dataset
type Summary struct {
	UniqueCompanies int                            `json:"unique_companies"`
	TotalArticles   int                            `json:"total_articles"`
	HotLeads        int                            `json:"hot_leads"`
	CautionCount    int                            `json:"caution_count"`
	AverageScore    float64                        `json:"average_score"`
	TierCounts      map[domain.HeadlineTier]int    `json:"tier_counts"`
	PriorityCounts  map[domain.CompanyPriority]int `json:"priority_counts"`
	NewsTypeCounts  map[domain.NewsType]int        `json:"news_type_counts"`
}

// Summarize computes dashboard counters. Hot leads are records in the High tier.
// Every tier, priority and news type key is present even when its count is zero.
func Summarize(records []domain.ScoredRecord, aggregates []domain.CompanyAggregate) Summary {
	s := Summary{
		UniqueCompanies: len(aggregates),
		TotalArticles:   len(records),
		TierCounts: map[domain.HeadlineTier]int{
			domain.HeadlineTierHigh:    0,
			domain.HeadlineTierMid:     0,
			domain.HeadlineTierNeutral: 0,
			domain.HeadlineTierCaution: 0,
		},
		PriorityCounts: make(map[domain.CompanyPriority]int, 4),
		NewsTypeCounts: make(map[domain.NewsType]int, 6),
	}
	for _, p := range domain.AllCompanyPriorities() {
		s.PriorityCounts[p] = 0
	}
	for _, t := range domain.AllNewsTypes() {
		s.NewsTypeCounts[t] = 0
	}

	total := 0.0
	for _, rec := range records {
		s.TierCounts[rec.Tier]++
		s.NewsTypeCounts[rec.NewsType]++
		total += rec.LeadScore
	}
	s.HotLeads = s.TierCounts[domain.HeadlineTierHigh]
	s.CautionCount = s.TierCounts[domain.HeadlineTierCaution]
	if len(records) > 0 {
		s.AverageScore = total / float64(len(records))
	}

	for _, agg := range aggregates {
		s.PriorityCounts[agg.Priority]++
	}

	return s
}

// CompanyHistory returns the records of one company, newest first. Records with
// the same date keep their input order. Matching is exact.
func CompanyHistory(records []domain.ScoredRecord, company string) []domain.ScoredRecord {
	out := make([]domain.ScoredRecord, 0)
	for _, rec := range records {
		if rec.Company == company {
			out = append(out, rec)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.After(out[j].Date)
	})
	return out
}

// Analysis is the full result of one scoring run
type Analysis struct {
	Records      []domain.ScoredRecord     `json:"records"`
	Companies    []domain.CompanyAggregate `json:"companies"`
	TopHeadlines []domain.ScoredRecord     `json:"top_headlines"`
	Summary      Summary                   `json:"summary"`
	Config       ScoringConfig             `json:"config"`
}

// Analyze scores the records, aggregates them per company and picks the topN
// headlines in one pass
func (e *Engine) Analyze(ctx context.Context, records []domain.NewsRecord, topN int) (*Analysis, error) {
	scored, err := e.ScoreAll(ctx, records)
	if err != nil {
		return nil, err
	}

	companies := Aggregate(scored)
	return &Analysis{
		Records:      scored,
		Companies:    companies,
		TopHeadlines: TopN(scored, topN),
		Summary:      Summarize(scored, companies),
		Config:       e.config,
	}, nil
}
