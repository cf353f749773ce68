package leads_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"leadscout/internal/leads"
	"leadscout/pkg/contracts/domain"
)

func scored(company, date string, score float64) domain.ScoredRecord {
	return domain.ScoredRecord{
		NewsRecord: domain.NewsRecord{
			Company:  company,
			Date:     domain.MustParseDate(date),
			NewsType: domain.NewsTypeNeutral,
		},
		LeadScore: score,
		Tier:      leads.ClassifyHeadline(score),
	}
}

func TestAggregate_Empty(t *testing.T) {
	got := leads.Aggregate(nil)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestAggregate(t *testing.T) {
	input := []domain.ScoredRecord{
		scored("TechNova", "2024-03-01", 3.5),
		scored("ByteCraft", "2024-03-04", -2.5),
		scored("TechNova", "2024-03-10", 2.25),
		scored("TechNova", "2024-02-11", 1.0),
		scored("ByteCraft", "2024-02-01", 0.5),
		scored("VisionAI", "2024-01-20", 2.0),
	}

	got := leads.Aggregate(input)
	require.Len(t, got, 3)

	assert.Equal(t, "TechNova", got[0].Company)
	assert.InDelta(t, 6.75, got[0].TotalScore, 1e-9)
	assert.Equal(t, 3, got[0].ArticleCount)
	assert.Equal(t, domain.MustParseDate("2024-03-10"), got[0].LatestNews)
	assert.Equal(t, domain.CompanyPriorityCritical, got[0].Priority)

	assert.Equal(t, "VisionAI", got[1].Company)
	assert.Equal(t, domain.CompanyPriorityMedium, got[1].Priority)

	assert.Equal(t, "ByteCraft", got[2].Company)
	assert.InDelta(t, -2.0, got[2].TotalScore, 1e-9)
	assert.Equal(t, 2, got[2].ArticleCount)
	assert.Equal(t, domain.MustParseDate("2024-03-04"), got[2].LatestNews)
	assert.Equal(t, domain.CompanyPriorityLow, got[2].Priority)

	// Counts add up to the input size
	total := 0
	for _, a := range got {
		total += a.ArticleCount
	}
	assert.Equal(t, len(input), total)
}

func TestAggregate_TieBreaksByCompanyName(t *testing.T) {
	got := leads.Aggregate([]domain.ScoredRecord{
		scored("B", "2024-01-01", 2),
		scored("A", "2024-01-01", 2),
	})

	require.Len(t, got, 2)
	assert.Equal(t, "A", got[0].Company)
	assert.Equal(t, "B", got[1].Company)
}

func TestAggregate_CaseSensitive(t *testing.T) {
	got := leads.Aggregate([]domain.ScoredRecord{
		scored("TechNova", "2024-01-01", 1),
		scored("technova", "2024-01-01", 1),
		scored("TechNova ", "2024-01-01", 1),
	})

	assert.Len(t, got, 3)
}

func TestAggregate_OrderIndependent(t *testing.T) {
	forward := []domain.ScoredRecord{
		scored("A", "2024-01-01", 0.1),
		scored("A", "2024-01-02", 0.2),
		scored("A", "2024-01-03", 0.3),
		scored("B", "2024-01-03", -1),
	}
	reversed := make([]domain.ScoredRecord, len(forward))
	for i := range forward {
		reversed[len(forward)-1-i] = forward[i]
	}

	assert.Equal(t, leads.Aggregate(forward), leads.Aggregate(reversed))
}

func TestAggregate_DoesNotMutateInput(t *testing.T) {
	input := []domain.ScoredRecord{
		scored("B", "2024-01-01", 1),
		scored("A", "2024-01-02", 5),
	}
	before := make([]domain.ScoredRecord, len(input))
	copy(before, input)

	leads.Aggregate(input)
	assert.Equal(t, before, input)
}
