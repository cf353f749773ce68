package http

import (
	"context"
	"io"
	"log/slog"

	"github.com/stretchr/testify/mock"

	"leadscout/internal/dataprocessing"
	"leadscout/internal/directory"
	apierrors "leadscout/internal/errors"
	"leadscout/internal/leads"
	"leadscout/internal/services"
	"leadscout/pkg/contracts/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testErrorHandler() *apierrors.ErrorHandler {
	return apierrors.NewErrorHandler(testLogger(), false)
}

// MockLeadService is a mock implementation of LeadService
type MockLeadService struct {
	mock.Mock
}

func (m *MockLeadService) Generate(ctx context.Context, count int, seed int64) (domain.DatasetInfo, error) {
	args := m.Called(ctx, count, seed)
	return args.Get(0).(domain.DatasetInfo), args.Error(1)
}

func (m *MockLeadService) Upload(ctx context.Context, filename string, r io.Reader) (domain.DatasetInfo, error) {
	body, _ := io.ReadAll(r)
	args := m.Called(ctx, filename, string(body))
	return args.Get(0).(domain.DatasetInfo), args.Error(1)
}

func (m *MockLeadService) Dataset(ctx context.Context) (domain.DatasetInfo, error) {
	args := m.Called(ctx)
	return args.Get(0).(domain.DatasetInfo), args.Error(1)
}

func (m *MockLeadService) Records(ctx context.Context) ([]domain.ScoredRecord, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ScoredRecord), args.Error(1)
}

func (m *MockLeadService) Companies(ctx context.Context) ([]domain.CompanyAggregate, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.CompanyAggregate), args.Error(1)
}

func (m *MockLeadService) CompanyNews(ctx context.Context, company string) ([]domain.ScoredRecord, error) {
	args := m.Called(ctx, company)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ScoredRecord), args.Error(1)
}

func (m *MockLeadService) Top(ctx context.Context, n int) ([]domain.ScoredRecord, error) {
	args := m.Called(ctx, n)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ScoredRecord), args.Error(1)
}

func (m *MockLeadService) Summary(ctx context.Context) (leads.Summary, error) {
	args := m.Called(ctx)
	return args.Get(0).(leads.Summary), args.Error(1)
}

func (m *MockLeadService) Score(ctx context.Context, records []domain.NewsRecord, cfg *leads.ScoringConfig, topN int) (*leads.Analysis, error) {
	args := m.Called(ctx, records, cfg, topN)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*leads.Analysis), args.Error(1)
}

func (m *MockLeadService) Export(ctx context.Context, w io.Writer, view string, format dataprocessing.Format, columns []string) error {
	args := m.Called(ctx, view, format, columns)
	if s := args.String(1); s != "" {
		_, _ = io.WriteString(w, s)
	}
	return args.Error(0)
}

// MockDirectoryService is a mock implementation of DirectoryService
type MockDirectoryService struct {
	mock.Mock
}

func (m *MockDirectoryService) Dashboard(ctx context.Context) directory.Dashboard {
	return m.Called(ctx).Get(0).(directory.Dashboard)
}

func (m *MockDirectoryService) Search(ctx context.Context, by, term string) ([]domain.CompanyProfile, error) {
	args := m.Called(ctx, by, term)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.CompanyProfile), args.Error(1)
}

func (m *MockDirectoryService) Leads(ctx context.Context, filter directory.LeadFilter) []domain.CompanyProfile {
	return m.Called(ctx, filter).Get(0).([]domain.CompanyProfile)
}

func (m *MockDirectoryService) Company(ctx context.Context, name string) (domain.CompanyProfile, error) {
	args := m.Called(ctx, name)
	return args.Get(0).(domain.CompanyProfile), args.Error(1)
}

func (m *MockDirectoryService) Export(ctx context.Context, w io.Writer, filter directory.LeadFilter, format dataprocessing.Format, columns []string) error {
	args := m.Called(ctx, filter, format, columns)
	if s := args.String(1); s != "" {
		_, _ = io.WriteString(w, s)
	}
	return args.Error(0)
}

// MockHealthService is a mock implementation of HealthService
type MockHealthService struct {
	mock.Mock
}

func (m *MockHealthService) HealthCheck(ctx context.Context) services.HealthStatus {
	return m.Called(ctx).Get(0).(services.HealthStatus)
}

func (m *MockHealthService) ReadinessCheck(ctx context.Context) services.HealthStatus {
	return m.Called(ctx).Get(0).(services.HealthStatus)
}

func (m *MockHealthService) LivenessCheck(ctx context.Context) services.HealthStatus {
	return m.Called(ctx).Get(0).(services.HealthStatus)
}

func (m *MockHealthService) Version() map[string]any {
	return m.Called().Get(0).(map[string]any)
}
