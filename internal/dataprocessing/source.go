package dataprocessing

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"leadscout/internal/leads"
	"leadscout/pkg/contracts/domain"
)

// ErrUnsupportedFormat is returned for files that are neither CSV nor Excel
var ErrUnsupportedFormat = errors.New("unsupported file format")

// Format identifies a tabular file format
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// FormatFromName picks the format from a file name extension
func FormatFromName(name string) (Format, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv":
		return FormatCSV, nil
	case ".xlsx", ".xlsm":
		return FormatXLSX, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(name))
}

// ParseNews reads news records in the given format
func ParseNews(r io.Reader, format Format) ([]domain.NewsRecord, error) {
	switch format {
	case FormatCSV:
		return ParseNewsCSV(r)
	case FormatXLSX:
		return ParseNewsExcelReader(r)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
}

// FileSource loads news records from a CSV or Excel file on disk
type FileSource struct {
	Path string
}

var _ leads.RecordSource = FileSource{}

// LoadRecords implements leads.RecordSource
func (s FileSource) LoadRecords(ctx context.Context) ([]domain.NewsRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	format, err := FormatFromName(s.Path)
	if err != nil {
		return nil, err
	}
	if format == FormatXLSX {
		return ParseNewsExcel(s.Path)
	}

	f, err := os.Open(s.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", s.Path, err)
	}
	defer f.Close()

	return ParseNewsCSV(f)
}

// LoadCompanies reads a company directory CSV from disk
func LoadCompanies(path string) ([]domain.CompanyProfile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	return ParseCompaniesCSV(f)
}
