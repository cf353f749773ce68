package http

import (
	"context"
	"io"

	"leadscout/internal/dataprocessing"
	"leadscout/internal/directory"
	"leadscout/internal/leads"
	"leadscout/internal/services"
	"leadscout/pkg/contracts/domain"
)

// LeadService defines the dataset and scoring operations served under /api/leads
type LeadService interface {
	Generate(ctx context.Context, count int, seed int64) (domain.DatasetInfo, error)
	Upload(ctx context.Context, filename string, r io.Reader) (domain.DatasetInfo, error)
	Dataset(ctx context.Context) (domain.DatasetInfo, error)
	Records(ctx context.Context) ([]domain.ScoredRecord, error)
	Companies(ctx context.Context) ([]domain.CompanyAggregate, error)
	CompanyNews(ctx context.Context, company string) ([]domain.ScoredRecord, error)
	Top(ctx context.Context, n int) ([]domain.ScoredRecord, error)
	Summary(ctx context.Context) (leads.Summary, error)
	Score(ctx context.Context, records []domain.NewsRecord, cfg *leads.ScoringConfig, topN int) (*leads.Analysis, error)
	Export(ctx context.Context, w io.Writer, view string, format dataprocessing.Format, columns []string) error
}

// DirectoryService defines the company directory operations served under /api/companies
type DirectoryService interface {
	Dashboard(ctx context.Context) directory.Dashboard
	Search(ctx context.Context, by, term string) ([]domain.CompanyProfile, error)
	Leads(ctx context.Context, filter directory.LeadFilter) []domain.CompanyProfile
	Company(ctx context.Context, name string) (domain.CompanyProfile, error)
	Export(ctx context.Context, w io.Writer, filter directory.LeadFilter, format dataprocessing.Format, columns []string) error
}

// HealthService defines the probes served under /api/health
type HealthService interface {
	HealthCheck(ctx context.Context) services.HealthStatus
	ReadinessCheck(ctx context.Context) services.HealthStatus
	LivenessCheck(ctx context.Context) services.HealthStatus
	Version() map[string]any
}

var (
	_ LeadService      = (*services.LeadService)(nil)
	_ DirectoryService = (*services.DirectoryService)(nil)
	_ HealthService    = (*services.HealthService)(nil)
)
