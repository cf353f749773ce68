package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"leadscout/internal/dataprocessing"
	"leadscout/internal/exporter"
	"leadscout/internal/infrastructure"
	"leadscout/internal/leads"
	"leadscout/internal/synthetic"
	ws "leadscout/internal/websocket"
	"leadscout/pkg/contracts/domain"
)

// Export views
const (
	ViewRecords   = "records"
	ViewCompanies = "companies"
)

// Dataset sources
const (
	SourceSynthetic = "synthetic"
	SourceUpload    = "upload"
	SourceFile      = "file"
)

// DefaultTopN is used when no positive top N is configured
const DefaultTopN = 5

// Broadcaster publishes events to live clients
type Broadcaster interface {
	Broadcast(ctx context.Context, msgType string, data any)
}

// RefreshEvent is broadcast after every dataset replacement
type RefreshEvent struct {
	Dataset domain.DatasetInfo    `json:"dataset"`
	Summary leads.Summary         `json:"summary"`
	Top     []domain.ScoredRecord `json:"top"`
}

// LeadService owns the served news dataset and answers lead queries over it
type LeadService struct {
	engine    *leads.Engine
	store     *DatasetStore
	generator *synthetic.Generator
	topN      int

	hub     Broadcaster
	metrics *infrastructure.BusinessMetrics
	logger  *slog.Logger

	refresh singleflight.Group
}

// LeadServiceOption configures a LeadService
type LeadServiceOption func(*LeadService)

// WithGenerator sets the synthetic generator used by Refresh and Generate
func WithGenerator(g *synthetic.Generator) LeadServiceOption {
	return func(s *LeadService) { s.generator = g }
}

// WithBroadcaster sends refresh events to b
func WithBroadcaster(b Broadcaster) LeadServiceOption {
	return func(s *LeadService) { s.hub = b }
}

// WithMetrics records scoring and refresh metrics
func WithMetrics(m *infrastructure.BusinessMetrics) LeadServiceOption {
	return func(s *LeadService) { s.metrics = m }
}

// WithTopN sets how many headlines a dataset keeps as top leads
func WithTopN(n int) LeadServiceOption {
	return func(s *LeadService) {
		if n > 0 {
			s.topN = n
		}
	}
}

// WithServiceLogger sets the service logger
func WithServiceLogger(logger *slog.Logger) LeadServiceOption {
	return func(s *LeadService) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewLeadService creates a lead service with injected dependencies
func NewLeadService(engine *leads.Engine, store *DatasetStore, opts ...LeadServiceOption) *LeadService {
	s := &LeadService{
		engine: engine,
		store:  store,
		topN:   DefaultTopN,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.generator == nil {
		s.generator = synthetic.NewGenerator(synthetic.WithLogger(s.logger))
	}
	s.logger = s.logger.With(slog.String("component", "services.leads"))
	return s
}

// Load reads records from src, scores them and publishes the result. The
// served dataset is untouched when any step fails.
func (s *LeadService) Load(ctx context.Context, source string, src leads.RecordSource) (domain.DatasetInfo, error) {
	records, err := src.LoadRecords(ctx)
	if err != nil {
		s.metrics.RecordDatasetRefresh(ctx, sourceKind(source), err)
		return domain.DatasetInfo{}, fmt.Errorf("load %s dataset: %w", source, err)
	}
	return s.publish(ctx, source, records)
}

func (s *LeadService) publish(ctx context.Context, source string, records []domain.NewsRecord) (domain.DatasetInfo, error) {
	analysis, err := s.analyze(ctx, s.engine, records, s.topN)
	if err != nil {
		s.metrics.RecordDatasetRefresh(ctx, sourceKind(source), err)
		return domain.DatasetInfo{}, err
	}

	info := s.store.Publish(source, analysis)
	s.metrics.RecordDatasetRefresh(ctx, sourceKind(source), nil)

	s.logger.InfoContext(ctx, "Dataset published",
		slog.String("version", info.Version),
		slog.String("source", info.Source),
		slog.Int("records", info.Records),
		slog.Int("companies", len(analysis.Companies)))

	if s.hub != nil {
		s.hub.Broadcast(ctx, ws.TypeLeadsRefresh, RefreshEvent{
			Dataset: info,
			Summary: analysis.Summary,
			Top:     analysis.TopHeadlines,
		})
	}
	return info, nil
}

// sourceKind strips the file name from a source label for metric attributes
func sourceKind(source string) string {
	kind, _, _ := strings.Cut(source, ":")
	return kind
}

func (s *LeadService) analyze(ctx context.Context, engine *leads.Engine, records []domain.NewsRecord, topN int) (*leads.Analysis, error) {
	start := time.Now()
	analysis, err := engine.Analyze(ctx, records, topN)
	s.metrics.RecordScoringRun(ctx, len(records), time.Since(start), err)
	if err != nil {
		infrastructure.RecordError(ctx, err)
		return nil, fmt.Errorf("score dataset: %w", err)
	}
	return analysis, nil
}

// Refresh regenerates the synthetic dataset with the generator defaults
func (s *LeadService) Refresh(ctx context.Context) (domain.DatasetInfo, error) {
	return s.Generate(ctx, 0, 0)
}

// Generate replaces the dataset with count synthetic records. Zero count means
// the generator default; zero seed means the generator seed. Concurrent calls
// with the same arguments share one generation.
func (s *LeadService) Generate(ctx context.Context, count int, seed int64) (domain.DatasetInfo, error) {
	key := fmt.Sprintf("%d/%d", count, seed)

	ch := s.refresh.DoChan(key, func() (any, error) {
		// the shared run must not die with the first caller's request
		runCtx := infrastructure.DetachedContext(ctx)

		src := leads.SourceFunc(func(ctx context.Context) ([]domain.NewsRecord, error) {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			n := count
			if n == 0 {
				n = s.generator.Count()
			}
			if seed != 0 {
				return s.generator.GenerateWithSeed(n, seed)
			}
			return s.generator.Generate(n)
		})
		return s.Load(runCtx, SourceSynthetic, src)
	})

	select {
	case <-ctx.Done():
		return domain.DatasetInfo{}, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return domain.DatasetInfo{}, mapGenerateError(res.Err)
		}
		return res.Val.(domain.DatasetInfo), nil
	}
}

func mapGenerateError(err error) error {
	if errors.Is(err, synthetic.ErrInvalidCount) {
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	return err
}

// Upload replaces the dataset with a CSV or Excel file. The format is taken
// from filename.
func (s *LeadService) Upload(ctx context.Context, filename string, r io.Reader) (domain.DatasetInfo, error) {
	format, err := dataprocessing.FormatFromName(filename)
	if err != nil {
		return domain.DatasetInfo{}, err
	}

	records, err := dataprocessing.ParseNews(r, format)
	if err != nil {
		s.metrics.RecordDatasetRefresh(ctx, SourceUpload, err)
		return domain.DatasetInfo{}, fmt.Errorf("parse %s: %w", filepath.Base(filename), err)
	}

	return s.publish(ctx, SourceUpload+":"+filepath.Base(filename), records)
}

// LoadFile replaces the dataset with a CSV or Excel file on disk
func (s *LeadService) LoadFile(ctx context.Context, path string) (domain.DatasetInfo, error) {
	return s.Load(ctx, SourceFile+":"+filepath.Base(path), dataprocessing.FileSource{Path: path})
}

// Dataset returns metadata of the served dataset
func (s *LeadService) Dataset(_ context.Context) (domain.DatasetInfo, error) {
	ds, err := s.store.Current()
	if err != nil {
		return domain.DatasetInfo{}, err
	}
	return ds.Info, nil
}

// Records returns every scored record of the served dataset
func (s *LeadService) Records(_ context.Context) ([]domain.ScoredRecord, error) {
	ds, err := s.store.Current()
	if err != nil {
		return nil, err
	}
	return slices.Clone(ds.Analysis.Records), nil
}

// Companies returns the per-company aggregates, highest total first
func (s *LeadService) Companies(_ context.Context) ([]domain.CompanyAggregate, error) {
	ds, err := s.store.Current()
	if err != nil {
		return nil, err
	}
	return slices.Clone(ds.Analysis.Companies), nil
}

// CompanyNews returns one company's records, newest first
func (s *LeadService) CompanyNews(_ context.Context, company string) ([]domain.ScoredRecord, error) {
	ds, err := s.store.Current()
	if err != nil {
		return nil, err
	}

	history := leads.CompanyHistory(ds.Analysis.Records, company)
	if len(history) == 0 {
		return nil, fmt.Errorf("%w: %q", ErrCompanyNotFound, company)
	}
	return history, nil
}

// Top returns the n highest scored headlines
func (s *LeadService) Top(_ context.Context, n int) ([]domain.ScoredRecord, error) {
	ds, err := s.store.Current()
	if err != nil {
		return nil, err
	}
	return leads.TopN(ds.Analysis.Records, n), nil
}

// Summary returns the dashboard figures of the served dataset
func (s *LeadService) Summary(_ context.Context) (leads.Summary, error) {
	ds, err := s.store.Current()
	if err != nil {
		return leads.Summary{}, err
	}
	return ds.Analysis.Summary, nil
}

// Score analyses records without touching the served dataset. A non-nil cfg is
// taken as a complete policy, so build it from leads.DefaultScoringConfig. A nil
// cfg uses the service's scoring policy; a non-positive topN uses the service
// default.
func (s *LeadService) Score(ctx context.Context, records []domain.NewsRecord, cfg *leads.ScoringConfig, topN int) (*leads.Analysis, error) {
	engine := s.engine
	if cfg != nil {
		var err error
		engine, err = s.engine.WithConfig(cfg.WithDefaults())
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
		}
	}
	if topN <= 0 {
		topN = s.topN
	}
	return s.analyze(ctx, engine, records, topN)
}

// Export writes a view of the served dataset to w
func (s *LeadService) Export(_ context.Context, w io.Writer, view string, format dataprocessing.Format, columns []string) error {
	ds, err := s.store.Current()
	if err != nil {
		return err
	}

	table, err := s.table(ds.Analysis, view, columns)
	if err != nil {
		return err
	}
	return exporter.Encode(w, format, table, view)
}

func (s *LeadService) table(analysis *leads.Analysis, view string, columns []string) (exporter.Table, error) {
	switch view {
	case "", ViewRecords:
		return exporter.RecordsTable(analysis.Records, columns)
	case ViewCompanies:
		return exporter.CompaniesTable(analysis.Companies, columns)
	}
	return exporter.Table{}, fmt.Errorf("%w: unknown view %q", ErrInvalidInput, view)
}
