package leads_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"leadscout/internal/leads"
	"leadscout/internal/sentiment"
	"leadscout/pkg/contracts/domain"
)

// fixedScorer returns the polarity registered for a headline, 0 otherwise
func fixedScorer(polarities map[string]float64) sentiment.Scorer {
	return sentiment.ScorerFunc(func(_ context.Context, text string) (float64, error) {
		return polarities[text], nil
	})
}

func record(company, date string, t domain.NewsType, headline string) domain.NewsRecord {
	return domain.NewsRecord{
		Date:     domain.MustParseDate(date),
		Company:  company,
		Headline: headline,
		NewsType: t,
	}
}

func newEngine(t *testing.T, cfg leads.ScoringConfig, scorer sentiment.Scorer, opts ...leads.Option) *leads.Engine {
	t.Helper()
	e, err := leads.NewEngine(cfg, scorer, opts...)
	require.NoError(t, err)
	return e
}

func TestBaseScore(t *testing.T) {
	tests := []struct {
		newsType domain.NewsType
		want     float64
		known    bool
	}{
		{domain.NewsTypeFunding, 3, true},
		{domain.NewsTypeProduct, 2, true},
		{domain.NewsTypeHire, 1, true},
		{domain.NewsTypeLayoff, -2, true},
		{domain.NewsTypeScandal, -2, true},
		{domain.NewsTypeNeutral, 0, true},
		{"merger", 0, false},
		{"Funding", 0, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.newsType), func(t *testing.T) {
			got, ok := leads.BaseScore(tt.newsType)
			assert.Equal(t, tt.known, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestScoreRecord(t *testing.T) {
	weighted := leads.DefaultScoringConfig()
	unweighted := leads.ScoringConfig{
		WeightingMode:     leads.WeightingUnweighted,
		OnUnknownCategory: leads.UnknownCategoryFail,
	}
	lenient := weighted
	lenient.OnUnknownCategory = leads.UnknownCategoryNeutral

	tests := []struct {
		name     string
		cfg      leads.ScoringConfig
		newsType domain.NewsType
		polarity float64
		want     float64
		wantErr  error
	}{
		{"weighted funding positive", weighted, domain.NewsTypeFunding, 1.0, 3.5, nil},
		{"weighted layoff negative", weighted, domain.NewsTypeLayoff, -1.0, -2.5, nil},
		{"weighted neutral zero", weighted, domain.NewsTypeNeutral, 0, 0, nil},
		{"unweighted funding positive", unweighted, domain.NewsTypeFunding, 1.0, 4.0, nil},
		{"unweighted scandal mild", unweighted, domain.NewsTypeScandal, -0.25, -2.25, nil},
		{"unweighted hire", unweighted, domain.NewsTypeHire, 0.4, 1.4, nil},
		{"unknown fails", weighted, "merger", 0.5, 0, leads.ErrInvalidCategory},
		{"unknown as neutral", lenient, "merger", 0.5, 0.25, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := leads.ScoreRecord(tt.cfg, tt.newsType, tt.polarity)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestScoreRecordCustomWeight(t *testing.T) {
	cfg := leads.DefaultScoringConfig()
	cfg.SentimentWeight = 2

	got, err := leads.ScoreRecord(cfg, domain.NewsTypeProduct, -0.5)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, got, 1e-9)
}

func TestNewEngine_InvalidConfig(t *testing.T) {
	_, err := leads.NewEngine(leads.ScoringConfig{WeightingMode: "double"}, nil)
	assert.Error(t, err)

	cfg := leads.DefaultScoringConfig()
	cfg.SentimentWeight = -1
	_, err = leads.NewEngine(cfg, nil)
	assert.Error(t, err)
}

func TestEngine_ScoreAll(t *testing.T) {
	scorer := fixedScorer(map[string]float64{
		"TechNova raised $40 million": 1.0,
		"ByteCraft announced layoffs": -1.0,
		"VisionAI won award":          0.2,
	})
	e := newEngine(t, leads.DefaultScoringConfig(), scorer)

	input := []domain.NewsRecord{
		record("TechNova", "2024-03-01", domain.NewsTypeFunding, "TechNova raised $40 million"),
		record("ByteCraft", "2024-03-02", domain.NewsTypeLayoff, "ByteCraft announced layoffs"),
		record("VisionAI", "2024-03-03", domain.NewsTypeNeutral, "VisionAI won award"),
	}
	before := make([]domain.NewsRecord, len(input))
	copy(before, input)

	got, err := e.ScoreAll(context.Background(), input)
	require.NoError(t, err)
	require.Len(t, got, 3)

	assert.InDelta(t, 3.5, got[0].LeadScore, 1e-9)
	assert.Equal(t, domain.HeadlineTierHigh, got[0].Tier)
	assert.InDelta(t, 1.0, got[0].Sentiment, 1e-9)

	assert.InDelta(t, -2.5, got[1].LeadScore, 1e-9)
	assert.Equal(t, domain.HeadlineTierCaution, got[1].Tier)

	assert.InDelta(t, 0.1, got[2].LeadScore, 1e-9)
	assert.Equal(t, domain.HeadlineTierNeutral, got[2].Tier)

	// Input order and content are preserved
	for i := range input {
		assert.Equal(t, input[i], got[i].NewsRecord)
	}
	assert.Equal(t, before, input)
}

func TestEngine_ScoreAll_Empty(t *testing.T) {
	e := newEngine(t, leads.DefaultScoringConfig(), nil)

	got, err := e.ScoreAll(context.Background(), nil)
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)

	got, err = e.ScoreAll(context.Background(), []domain.NewsRecord{})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestEngine_ScoreAll_Malformed(t *testing.T) {
	valid := record("TechNova", "2024-03-01", domain.NewsTypeFunding, "x")

	tests := []struct {
		name  string
		bad   domain.NewsRecord
		field string
	}{
		{"missing company", domain.NewsRecord{Date: valid.Date, NewsType: domain.NewsTypeHire}, "company"},
		{"blank company", domain.NewsRecord{Company: "  ", Date: valid.Date, NewsType: domain.NewsTypeHire}, "company"},
		{"missing date", domain.NewsRecord{Company: "A", NewsType: domain.NewsTypeHire}, "date"},
		{"missing news type", domain.NewsRecord{Company: "A", Date: valid.Date}, "news_type"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newEngine(t, leads.DefaultScoringConfig(), nil)

			_, err := e.ScoreAll(context.Background(), []domain.NewsRecord{valid, tt.bad, valid})
			require.Error(t, err)
			assert.ErrorIs(t, err, leads.ErrMalformedRecord)

			var recErr *leads.RecordError
			require.True(t, errors.As(err, &recErr))
			assert.Equal(t, 1, recErr.Index)
			assert.Equal(t, tt.field, recErr.Field)
		})
	}
}

func TestEngine_ScoreAll_FirstErrorWins(t *testing.T) {
	e := newEngine(t, leads.DefaultScoringConfig(), nil)

	input := []domain.NewsRecord{
		record("A", "2024-01-01", domain.NewsTypeHire, ""),
		record("B", "2024-01-01", "rumour", ""),
		{Company: "C", NewsType: domain.NewsTypeHire},
	}

	_, err := e.ScoreAll(context.Background(), input)
	require.Error(t, err)
	assert.ErrorIs(t, err, leads.ErrInvalidCategory)

	var recErr *leads.RecordError
	require.ErrorAs(t, err, &recErr)
	assert.Equal(t, 1, recErr.Index)
	assert.Equal(t, "rumour", recErr.Value)
}

func TestEngine_ScoreAll_UnknownCategoryPolicy(t *testing.T) {
	input := []domain.NewsRecord{
		record("DataSphere", "2024-05-01", "acquisition", "DataSphere acquired"),
	}
	scorer := fixedScorer(map[string]float64{"DataSphere acquired": 0.6})

	t.Run("fail", func(t *testing.T) {
		e := newEngine(t, leads.DefaultScoringConfig(), scorer)
		_, err := e.ScoreAll(context.Background(), input)
		assert.ErrorIs(t, err, leads.ErrInvalidCategory)
	})

	t.Run("treat as neutral", func(t *testing.T) {
		cfg := leads.DefaultScoringConfig()
		cfg.OnUnknownCategory = leads.UnknownCategoryNeutral
		e := newEngine(t, cfg, scorer)

		got, err := e.ScoreAll(context.Background(), input)
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, domain.NewsTypeNeutral, got[0].NewsType)
		assert.Equal(t, "acquisition", got[0].RawNewsType)
		assert.InDelta(t, 0.3, got[0].LeadScore, 1e-9)
		assert.Equal(t, domain.NewsType("acquisition"), input[0].NewsType)
	})
}

func TestEngine_ScoreAll_ScorerError(t *testing.T) {
	boom := errors.New("boom")
	scorer := sentiment.ScorerFunc(func(_ context.Context, text string) (float64, error) {
		if text == "bad" {
			return 0, boom
		}
		return 0.1, nil
	})
	e := newEngine(t, leads.DefaultScoringConfig(), scorer, leads.WithBatchSize(1), leads.WithWorkers(2))

	input := []domain.NewsRecord{
		record("A", "2024-01-01", domain.NewsTypeHire, "ok"),
		record("B", "2024-01-01", domain.NewsTypeHire, "bad"),
	}

	_, err := e.ScoreAll(context.Background(), input)
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)

	var recErr *leads.RecordError
	require.ErrorAs(t, err, &recErr)
	assert.Equal(t, "headline", recErr.Field)
}

func TestEngine_ScoreAll_ParallelMatchesSequential(t *testing.T) {
	input := make([]domain.NewsRecord, 0, 500)
	types := domain.AllNewsTypes()
	for i := 0; i < 500; i++ {
		headline := "steady growth"
		if i%3 == 0 {
			headline = "accused of fraud"
		}
		input = append(input, record(
			[]string{"TechNova", "CloudForge", "NexaTech"}[i%3],
			"2024-02-01",
			types[i%len(types)],
			headline,
		))
	}

	var calls atomic.Int64
	lex := sentiment.NewLexicon()
	counting := sentiment.ScorerFunc(func(ctx context.Context, text string) (float64, error) {
		calls.Add(1)
		return lex.Score(ctx, text)
	})

	seq := newEngine(t, leads.DefaultScoringConfig(), lex, leads.WithWorkers(1), leads.WithBatchSize(len(input)))
	par := newEngine(t, leads.DefaultScoringConfig(), counting, leads.WithWorkers(8), leads.WithBatchSize(7))

	want, err := seq.ScoreAll(context.Background(), input)
	require.NoError(t, err)
	got, err := par.ScoreAll(context.Background(), input)
	require.NoError(t, err)

	assert.Equal(t, want, got)
	assert.Equal(t, int64(len(input)), calls.Load())
	assert.Equal(t, leads.Aggregate(want), leads.Aggregate(got))
}

func TestEngine_ScoreAll_CanceledContext(t *testing.T) {
	e := newEngine(t, leads.DefaultScoringConfig(), nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := e.ScoreAll(ctx, []domain.NewsRecord{record("A", "2024-01-01", domain.NewsTypeHire, "x")})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestEngine_WithConfig(t *testing.T) {
	e := newEngine(t, leads.DefaultScoringConfig(), fixedScorer(map[string]float64{"x": 1}))

	unweighted, err := e.WithConfig(leads.ScoringConfig{
		WeightingMode:     leads.WeightingUnweighted,
		OnUnknownCategory: leads.UnknownCategoryFail,
	})
	require.NoError(t, err)

	in := []domain.NewsRecord{record("A", "2024-01-01", domain.NewsTypeFunding, "x")}
	a, err := e.ScoreAll(context.Background(), in)
	require.NoError(t, err)
	b, err := unweighted.ScoreAll(context.Background(), in)
	require.NoError(t, err)

	assert.InDelta(t, 3.5, a[0].LeadScore, 1e-9)
	assert.InDelta(t, 4.0, b[0].LeadScore, 1e-9)
	assert.Equal(t, leads.WeightingWeighted, e.Config().WeightingMode)

	_, err = e.WithConfig(leads.ScoringConfig{})
	assert.Error(t, err)
}
