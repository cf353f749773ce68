package dataprocessing

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"leadscout/internal/leads"
	"leadscout/pkg/contracts/domain"
)

// ParseCompaniesCSV reads a company directory export. The header must contain a
// name column; the remaining profile columns are optional.
func ParseCompaniesCSV(r io.Reader) ([]domain.CompanyProfile, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV: %w", err)
	}
	if isBlankTable(rows) {
		return []domain.CompanyProfile{}, nil
	}

	columns := make(map[string]int)
	for j, header := range rows[0] {
		h := normalizeHeader(header)
		switch h {
		case "company", "company_name":
			h = "name"
		case "country":
			h = "country_code"
		case "size":
			h = "company_size"
		}
		if _, seen := columns[h]; !seen {
			columns[h] = j
		}
	}
	if _, ok := columns["name"]; !ok {
		return nil, fmt.Errorf("%w: %w: need a name column", leads.ErrMalformedRecord, ErrNoHeader)
	}

	profiles := make([]domain.CompanyProfile, 0, len(rows)-1)
	for i := 1; i < len(rows); i++ {
		row := rows[i]
		if isBlankRow(row) {
			continue
		}
		rowNum := i + 1

		p := domain.CompanyProfile{
			Name:        cell(row, columns, "name"),
			CountryCode: strings.ToUpper(cell(row, columns, "country_code")),
			Industries:  cell(row, columns, "industries"),
			Sphere:      cell(row, columns, "sphere"),
			CompanySize: cell(row, columns, "company_size"),
			Founded:     cell(row, columns, "founded"),
			Website:     cell(row, columns, "website"),
			About:       cell(row, columns, "about"),
			Specialties: cell(row, columns, "specialties"),
		}
		if p.Name == "" {
			return nil, rowError(len(profiles), rowNum, "name", "", "name is required")
		}

		if p.Employees, err = parseCount(cell(row, columns, "employees")); err != nil {
			return nil, rowError(len(profiles), rowNum, "employees", cell(row, columns, "employees"), err.Error())
		}
		if p.Followers, err = parseCount(cell(row, columns, "followers")); err != nil {
			return nil, rowError(len(profiles), rowNum, "followers", cell(row, columns, "followers"), err.Error())
		}

		profiles = append(profiles, p)
	}

	return profiles, nil
}

// parseCount parses non-negative counts such as "1,200" or "350.0". Empty is zero.
func parseCount(s string) (int, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if s == "" {
		return 0, nil
	}
	if n, err := strconv.Atoi(s); err == nil {
		if n < 0 {
			return 0, fmt.Errorf("negative count %d", n)
		}
		return n, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid count %q", s)
	}
	if f < 0 {
		return 0, fmt.Errorf("negative count %v", f)
	}
	return int(f), nil
}
