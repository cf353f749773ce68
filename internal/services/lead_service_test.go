package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"leadscout/internal/dataprocessing"
	"leadscout/internal/infrastructure"
	"leadscout/internal/leads"
	"leadscout/internal/sentiment"
	"leadscout/internal/synthetic"
	ws "leadscout/internal/websocket"
	"leadscout/pkg/contracts/domain"
)

type mockBroadcaster struct {
	mock.Mock
}

func (m *mockBroadcaster) Broadcast(ctx context.Context, msgType string, data any) {
	m.Called(ctx, msgType, data)
}

var testNow = time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)

const newsCSV = `date,company,headline,news_type,industry
2024-03-01,TechNova,TechNova raised $40 million in AI/ML sector,funding,AI/ML
2024-03-02,CloudForge,CloudForge announced layoffs in SaaS sector,layoff,SaaS
2024-03-05,TechNova,TechNova launched new platform in AI/ML sector,product,AI/ML
`

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// zeroScorer keeps lead scores equal to the base scores
var zeroScorer = sentiment.ScorerFunc(func(context.Context, string) (float64, error) { return 0, nil })

func newLeadService(t *testing.T, opts ...LeadServiceOption) (*LeadService, *DatasetStore) {
	t.Helper()

	engine, err := leads.NewEngine(leads.DefaultScoringConfig(), zeroScorer)
	require.NoError(t, err)

	clock := clockwork.NewFakeClockAt(testNow)
	store := NewDatasetStore(clock)
	gen := synthetic.NewGenerator(synthetic.WithClock(clock), synthetic.WithSeed(7), synthetic.WithCount(25))

	opts = append([]LeadServiceOption{WithGenerator(gen), WithServiceLogger(discardLogger())}, opts...)
	return NewLeadService(engine, store, opts...), store
}

func TestLeadService_NoDataset(t *testing.T) {
	svc, _ := newLeadService(t)
	ctx := context.Background()

	_, err := svc.Dataset(ctx)
	assert.ErrorIs(t, err, ErrNoDataset)
	_, err = svc.Records(ctx)
	assert.ErrorIs(t, err, ErrNoDataset)
	_, err = svc.Companies(ctx)
	assert.ErrorIs(t, err, ErrNoDataset)
	_, err = svc.Top(ctx, 3)
	assert.ErrorIs(t, err, ErrNoDataset)
	_, err = svc.Summary(ctx)
	assert.ErrorIs(t, err, ErrNoDataset)
	_, err = svc.CompanyNews(ctx, "TechNova")
	assert.ErrorIs(t, err, ErrNoDataset)
	assert.ErrorIs(t, svc.Export(ctx, io.Discard, ViewRecords, dataprocessing.FormatCSV, nil), ErrNoDataset)
}

func TestLeadService_Upload(t *testing.T) {
	hub := &mockBroadcaster{}
	hub.On("Broadcast", mock.Anything, ws.TypeLeadsRefresh, mock.AnythingOfType("services.RefreshEvent")).Once()

	svc, _ := newLeadService(t, WithBroadcaster(hub))
	ctx := context.Background()

	info, err := svc.Upload(ctx, "news.csv", strings.NewReader(newsCSV))
	require.NoError(t, err)
	assert.Equal(t, "upload:news.csv", info.Source)
	assert.Equal(t, 3, info.Records)
	assert.True(t, testNow.Equal(info.LoadedAt))
	assert.Len(t, info.Version, 36)
	hub.AssertExpectations(t)

	event := hub.Calls[0].Arguments.Get(2).(RefreshEvent)
	assert.Equal(t, info, event.Dataset)
	assert.Equal(t, 2, event.Summary.UniqueCompanies)

	companies, err := svc.Companies(ctx)
	require.NoError(t, err)
	require.Len(t, companies, 2)
	assert.Equal(t, "TechNova", companies[0].Company)
	assert.InDelta(t, 5.0, companies[0].TotalScore, 1e-9)
	assert.Equal(t, domain.CompanyPriorityHigh, companies[0].Priority)
	assert.Equal(t, domain.CompanyPriorityLow, companies[1].Priority)

	news, err := svc.CompanyNews(ctx, "TechNova")
	require.NoError(t, err)
	require.Len(t, news, 2)
	assert.Equal(t, domain.NewDate(2024, 3, 5), news[0].Date)

	_, err = svc.CompanyNews(ctx, "technova")
	assert.ErrorIs(t, err, ErrCompanyNotFound)

	top, err := svc.Top(ctx, 1)
	require.NoError(t, err)
	require.Len(t, top, 1)
	assert.Equal(t, domain.NewsTypeFunding, top[0].NewsType)
}

func TestLeadService_UploadErrors(t *testing.T) {
	hub := &mockBroadcaster{}
	svc, _ := newLeadService(t, WithBroadcaster(hub))
	ctx := context.Background()

	_, err := svc.Upload(ctx, "news.json", strings.NewReader("{}"))
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	_, err = svc.Upload(ctx, "news.csv", strings.NewReader("date,company,news_type\nnope,A,hire\n"))
	assert.ErrorIs(t, err, leads.ErrMalformedRecord)

	_, err = svc.Upload(ctx, "news.csv", strings.NewReader("date,company,news_type\n2024-01-01,A,merger\n"))
	assert.ErrorIs(t, err, leads.ErrInvalidCategory)

	// nothing was published and nothing was announced
	_, err = svc.Dataset(ctx)
	assert.ErrorIs(t, err, ErrNoDataset)
	hub.AssertNotCalled(t, "Broadcast", mock.Anything, mock.Anything, mock.Anything)
}

func TestLeadService_FailedRefreshKeepsDataset(t *testing.T) {
	svc, _ := newLeadService(t)
	ctx := context.Background()

	first, err := svc.Upload(ctx, "news.csv", strings.NewReader(newsCSV))
	require.NoError(t, err)

	boom := errors.New("feed down")
	_, err = svc.Load(ctx, "feed", leads.SourceFunc(func(context.Context) ([]domain.NewsRecord, error) {
		return nil, boom
	}))
	assert.ErrorIs(t, err, boom)

	current, err := svc.Dataset(ctx)
	require.NoError(t, err)
	assert.Equal(t, first.Version, current.Version)
}

func TestLeadService_Generate(t *testing.T) {
	svc, _ := newLeadService(t)
	ctx := context.Background()

	info, err := svc.Refresh(ctx)
	require.NoError(t, err)
	assert.Equal(t, SourceSynthetic, info.Source)
	assert.Equal(t, 25, info.Records)

	info, err = svc.Generate(ctx, 10, 42)
	require.NoError(t, err)
	assert.Equal(t, 10, info.Records)
	firstRecords, err := svc.Records(ctx)
	require.NoError(t, err)

	_, err = svc.Generate(ctx, 10, 42)
	require.NoError(t, err)
	secondRecords, err := svc.Records(ctx)
	require.NoError(t, err)
	assert.Equal(t, firstRecords, secondRecords)

	_, err = svc.Generate(ctx, synthetic.MaxCount+1, 0)
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.ErrorIs(t, err, synthetic.ErrInvalidCount)
}

func TestLeadService_GenerateSeedWithDefaultCount(t *testing.T) {
	svc, _ := newLeadService(t)
	ctx := context.Background()

	info, err := svc.Generate(ctx, 0, 42)
	require.NoError(t, err)
	assert.Equal(t, 25, info.Records)

	want, err := synthetic.NewGenerator(synthetic.WithClock(clockwork.NewFakeClockAt(testNow))).GenerateWithSeed(25, 42)
	require.NoError(t, err)

	got, err := svc.Records(ctx)
	require.NoError(t, err)
	require.Len(t, got, len(want))
	for i := range want {
		assert.Equal(t, want[i], got[i].NewsRecord, "record %d", i)
	}

	// zero seed keeps the generator seed
	_, err = svc.Generate(ctx, 0, 0)
	require.NoError(t, err)
	fromDefault, err := svc.Records(ctx)
	require.NoError(t, err)
	seeded, err := synthetic.NewGenerator(synthetic.WithClock(clockwork.NewFakeClockAt(testNow))).GenerateWithSeed(25, 7)
	require.NoError(t, err)
	assert.Equal(t, seeded[0], fromDefault[0].NewsRecord)
}

func TestLeadService_GenerateConcurrent(t *testing.T) {
	svc, _ := newLeadService(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	versions := make([]string, 8)
	for i := range versions {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			info, err := svc.Generate(ctx, 50, 3)
			assert.NoError(t, err)
			versions[i] = info.Version
		}(i)
	}
	wg.Wait()

	current, err := svc.Dataset(ctx)
	require.NoError(t, err)
	for _, v := range versions {
		assert.NotEmpty(t, v)
	}
	assert.Contains(t, versions, current.Version)
}

func TestLeadService_GenerateCancelled(t *testing.T) {
	svc, _ := newLeadService(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.Generate(ctx, 5, 1)
	// the caller gives up, though the shared generation may still publish
	if err != nil {
		assert.ErrorIs(t, err, context.Canceled)
	}
}

func TestLeadService_LoadFile(t *testing.T) {
	svc, _ := newLeadService(t)

	path := filepath.Join(t.TempDir(), "feed.csv")
	require.NoError(t, os.WriteFile(path, []byte(newsCSV), 0o644))

	info, err := svc.LoadFile(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "file:feed.csv", info.Source)
	assert.Equal(t, 3, info.Records)
}

func TestLeadService_Score(t *testing.T) {
	svc, store := newLeadService(t)
	ctx := context.Background()

	records := []domain.NewsRecord{
		{Date: domain.NewDate(2024, 1, 1), Company: "A", NewsType: domain.NewsTypeFunding},
		{Date: domain.NewDate(2024, 1, 2), Company: "B", NewsType: "merger"},
	}

	_, err := svc.Score(ctx, records, nil, 0)
	assert.ErrorIs(t, err, leads.ErrInvalidCategory)

	cfg := leads.ScoringConfig{OnUnknownCategory: leads.UnknownCategoryNeutral}
	analysis, err := svc.Score(ctx, records, &cfg, 1)
	require.NoError(t, err)
	require.Len(t, analysis.Records, 2)
	assert.Equal(t, domain.NewsTypeNeutral, analysis.Records[1].NewsType)
	assert.Equal(t, "merger", analysis.Records[1].RawNewsType)
	assert.Len(t, analysis.TopHeadlines, 1)
	assert.Equal(t, leads.WeightingWeighted, analysis.Config.WeightingMode)

	bad := leads.ScoringConfig{WeightingMode: "cubic"}
	_, err = svc.Score(ctx, records, &bad, 1)
	assert.ErrorIs(t, err, ErrInvalidInput)

	// stateless scoring never publishes
	assert.False(t, store.Loaded())

	empty, err := svc.Score(ctx, nil, nil, 0)
	require.NoError(t, err)
	assert.Empty(t, empty.Records)
	assert.Empty(t, empty.Companies)
}

func TestLeadService_Export(t *testing.T) {
	svc, _ := newLeadService(t)
	ctx := context.Background()
	_, err := svc.Upload(ctx, "news.csv", strings.NewReader(newsCSV))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, svc.Export(ctx, &buf, ViewCompanies, dataprocessing.FormatCSV, []string{"company", "priority"}))

	rows, err := csv.NewReader(strings.NewReader(strings.TrimPrefix(buf.String(), "\ufeff"))).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"company", "priority"},
		{"TechNova", "High"},
		{"CloudForge", "Low"},
	}, rows)

	buf.Reset()
	require.NoError(t, svc.Export(ctx, &buf, ViewRecords, dataprocessing.FormatXLSX, nil))
	assert.NotZero(t, buf.Len())

	assert.ErrorIs(t, svc.Export(ctx, io.Discard, "people", dataprocessing.FormatCSV, nil), ErrInvalidInput)
	assert.Error(t, svc.Export(ctx, io.Discard, ViewRecords, dataprocessing.FormatCSV, []string{"nope"}))
	assert.ErrorIs(t, svc.Export(ctx, io.Discard, ViewRecords, "pdf", nil), ErrUnsupportedFormat)
}

func TestLeadService_Metrics(t *testing.T) {
	providers, err := infrastructure.InitializeOTel(&infrastructure.OTelConfig{
		ServiceName:   "leadscout-test",
		EnableMetrics: true,
	}, discardLogger())
	require.NoError(t, err)
	defer providers.Shutdown(context.Background())

	metrics, err := infrastructure.CreateBusinessMetrics(providers.Meter)
	require.NoError(t, err)

	engine, err := leads.NewEngine(leads.DefaultScoringConfig(), NewMeteredScorer(sentiment.NewLexicon(), "lexicon", metrics))
	require.NoError(t, err)
	svc := NewLeadService(engine, NewDatasetStore(nil), WithMetrics(metrics), WithServiceLogger(discardLogger()))

	_, err = svc.Upload(context.Background(), "news.csv", strings.NewReader(newsCSV))
	require.NoError(t, err)

	rec := newRecorder(t, providers)
	assert.Contains(t, rec, "leads_scoring_runs_total")
	assert.Contains(t, rec, "sentiment_calls_total")
	assert.Contains(t, rec, `dataset_refreshes_total{`)
	assert.Contains(t, rec, `source="upload"`)
}
