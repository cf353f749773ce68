package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"leadscout/internal/dataprocessing"
	"leadscout/internal/directory"
	"leadscout/internal/exporter"
	"leadscout/pkg/contracts/domain"
)

// DirectoryService answers company directory queries
type DirectoryService struct {
	dir    *directory.Directory
	logger *slog.Logger
}

// NewDirectoryService creates a directory service. A nil directory serves an
// empty one.
func NewDirectoryService(dir *directory.Directory, logger *slog.Logger) *DirectoryService {
	if dir == nil {
		dir = directory.New(nil)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &DirectoryService{
		dir:    dir,
		logger: logger.With(slog.String("component", "services.directory")),
	}
}

// NewDirectoryServiceFromFile loads profiles from a CSV file. An empty path
// yields an empty directory.
func NewDirectoryServiceFromFile(path string, logger *slog.Logger) (*DirectoryService, error) {
	if path == "" {
		return NewDirectoryService(nil, logger), nil
	}

	profiles, err := dataprocessing.LoadCompanies(path)
	if err != nil {
		return nil, fmt.Errorf("load company directory: %w", err)
	}

	svc := NewDirectoryService(directory.New(profiles), logger)
	svc.logger.Info("Company directory loaded",
		slog.String("path", path),
		slog.Int("companies", len(profiles)))
	return svc, nil
}

// Dashboard returns directory totals and distributions
func (s *DirectoryService) Dashboard(_ context.Context) directory.Dashboard {
	return s.dir.Dashboard()
}

// Search matches term against the field named by by ("name" or "sphere")
func (s *DirectoryService) Search(_ context.Context, by, term string) ([]domain.CompanyProfile, error) {
	field, err := directory.ParseSearchField(by)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	return s.dir.Search(field, term), nil
}

// Leads returns the profiles passing filter
func (s *DirectoryService) Leads(_ context.Context, filter directory.LeadFilter) []domain.CompanyProfile {
	return s.dir.Filter(filter)
}

// Company returns the profile with exactly this name
func (s *DirectoryService) Company(_ context.Context, name string) (domain.CompanyProfile, error) {
	profile, ok := s.dir.Lookup(name)
	if !ok {
		return domain.CompanyProfile{}, fmt.Errorf("%w: %q", ErrCompanyNotFound, name)
	}
	return profile, nil
}

// Export writes the profiles passing filter to w
func (s *DirectoryService) Export(_ context.Context, w io.Writer, filter directory.LeadFilter, format dataprocessing.Format, columns []string) error {
	table, err := exporter.ProfilesTable(s.dir.Filter(filter), columns)
	if err != nil {
		return err
	}
	return exporter.Encode(w, format, table, "companies")
}
