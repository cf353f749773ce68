package exporter

import (
	"errors"
	"fmt"
	"strings"

	"leadscout/pkg/contracts/domain"
)

// ErrUnknownColumn is returned when a requested column does not exist in the view
var ErrUnknownColumn = errors.New("unknown column")

// Table is a rendered export: one header row and string cells
type Table struct {
	Headers []string
	Rows    [][]string
}

// Column extracts one exported field from an item
type Column[T any] struct {
	Name  string
	Value func(T) string
}

// RecordColumns lists every exportable field of a scored record
var RecordColumns = []Column[domain.ScoredRecord]{
	{"date", func(r domain.ScoredRecord) string { return formatDate(r.Date) }},
	{"company", func(r domain.ScoredRecord) string { return r.Company }},
	{"headline", func(r domain.ScoredRecord) string { return r.Headline }},
	{"news_type", func(r domain.ScoredRecord) string { return string(r.NewsType) }},
	{"raw_news_type", func(r domain.ScoredRecord) string { return r.RawNewsType }},
	{"industry", func(r domain.ScoredRecord) string { return r.Industry }},
	{"sentiment", func(r domain.ScoredRecord) string { return formatPolarity(r.Sentiment) }},
	{"lead_score", func(r domain.ScoredRecord) string { return formatFloat(r.LeadScore) }},
	{"tier", func(r domain.ScoredRecord) string { return string(r.Tier) }},
	{"lead_category", func(r domain.ScoredRecord) string { return r.Tier.Label() }},
}

// CompanyColumns lists every exportable field of a company aggregate
var CompanyColumns = []Column[domain.CompanyAggregate]{
	{"company", func(a domain.CompanyAggregate) string { return a.Company }},
	{"total_score", func(a domain.CompanyAggregate) string { return formatFloat(a.TotalScore) }},
	{"article_count", func(a domain.CompanyAggregate) string { return formatInt(a.ArticleCount) }},
	{"latest_news", func(a domain.CompanyAggregate) string { return formatDate(a.LatestNews) }},
	{"priority", func(a domain.CompanyAggregate) string { return string(a.Priority) }},
}

// ProfileColumns lists every exportable field of a directory profile
var ProfileColumns = []Column[domain.CompanyProfile]{
	{"name", func(p domain.CompanyProfile) string { return p.Name }},
	{"country_code", func(p domain.CompanyProfile) string { return p.CountryCode }},
	{"industries", func(p domain.CompanyProfile) string { return p.Industries }},
	{"sphere", func(p domain.CompanyProfile) string { return p.Sphere }},
	{"company_size", func(p domain.CompanyProfile) string { return p.CompanySize }},
	{"employees", func(p domain.CompanyProfile) string { return formatInt(p.Employees) }},
	{"followers", func(p domain.CompanyProfile) string { return formatInt(p.Followers) }},
	{"founded", func(p domain.CompanyProfile) string { return p.Founded }},
	{"website", func(p domain.CompanyProfile) string { return p.Website }},
	{"about", func(p domain.CompanyProfile) string { return p.About }},
	{"specialties", func(p domain.CompanyProfile) string { return p.Specialties }},
}

// Default column sets used when the caller does not pick columns
var (
	DefaultRecordColumns  = []string{"date", "company", "headline", "news_type", "industry", "sentiment", "lead_score", "lead_category"}
	DefaultCompanyColumns = []string{"company", "total_score", "article_count", "latest_news", "priority"}
	DefaultProfileColumns = []string{"name", "country_code", "industries", "employees", "followers", "website"}
)

// SelectColumns picks the named columns in the requested order. Names are matched
// case-insensitively; an empty selection yields defaults.
func SelectColumns[T any](all []Column[T], names, defaults []string) ([]Column[T], error) {
	if len(names) == 0 {
		names = defaults
	}

	byName := make(map[string]Column[T], len(all))
	for _, c := range all {
		byName[c.Name] = c
	}

	selected := make([]Column[T], 0, len(names))
	for _, name := range names {
		key := strings.ToLower(strings.TrimSpace(name))
		c, ok := byName[key]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownColumn, name)
		}
		selected = append(selected, c)
	}
	return selected, nil
}

// BuildTable renders items with the given columns
func BuildTable[T any](items []T, columns []Column[T]) Table {
	t := Table{
		Headers: make([]string, len(columns)),
		Rows:    make([][]string, 0, len(items)),
	}
	for i, c := range columns {
		t.Headers[i] = c.Name
	}
	for _, item := range items {
		row := make([]string, len(columns))
		for i, c := range columns {
			row[i] = c.Value(item)
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

// RecordsTable renders scored records with the selected columns
func RecordsTable(records []domain.ScoredRecord, columns []string) (Table, error) {
	cols, err := SelectColumns(RecordColumns, columns, DefaultRecordColumns)
	if err != nil {
		return Table{}, err
	}
	return BuildTable(records, cols), nil
}

// CompaniesTable renders company aggregates with the selected columns
func CompaniesTable(aggregates []domain.CompanyAggregate, columns []string) (Table, error) {
	cols, err := SelectColumns(CompanyColumns, columns, DefaultCompanyColumns)
	if err != nil {
		return Table{}, err
	}
	return BuildTable(aggregates, cols), nil
}

// ProfilesTable renders directory profiles with the selected columns
func ProfilesTable(profiles []domain.CompanyProfile, columns []string) (Table, error) {
	cols, err := SelectColumns(ProfileColumns, columns, DefaultProfileColumns)
	if err != nil {
		return Table{}, err
	}
	return BuildTable(profiles, cols), nil
}

// ParseColumns splits a comma separated column list, dropping blanks
func ParseColumns(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
