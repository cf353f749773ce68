package leads

import (
	"sort"

	"leadscout/pkg/contracts/domain"
)

// Aggregate groups scored records by company (exact, case-sensitive match).
//
// Each group carries the summed lead score, the number of records and the most
// recent date. The result is ordered by total score descending, then company name
// ascending, and every aggregate is classified with ClassifyCompany. Scores are
// summed in sorted order so the totals do not depend on input order.
func Aggregate(records []domain.ScoredRecord) []domain.CompanyAggregate {
	if len(records) == 0 {
		return []domain.CompanyAggregate{}
	}

	type group struct {
		agg    domain.CompanyAggregate
		scores []float64
	}

	groups := make(map[string]*group)
	for _, rec := range records {
		g, ok := groups[rec.Company]
		if !ok {
			g = &group{agg: domain.CompanyAggregate{Company: rec.Company, LatestNews: rec.Date}}
			groups[rec.Company] = g
		}
		g.scores = append(g.scores, rec.LeadScore)
		g.agg.ArticleCount++
		if rec.Date.After(g.agg.LatestNews) {
			g.agg.LatestNews = rec.Date
		}
	}

	out := make([]domain.CompanyAggregate, 0, len(groups))
	for _, g := range groups {
		sort.Float64s(g.scores)
		total := 0.0
		for _, s := range g.scores {
			total += s
		}
		g.agg.TotalScore = total
		g.agg.Priority = ClassifyCompany(total)
		out = append(out, g.agg)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].TotalScore != out[j].TotalScore {
			return out[i].TotalScore > out[j].TotalScore
		}
		return out[i].Company < out[j].Company
	})

	return out
}
