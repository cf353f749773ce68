package exporter

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"leadscout/internal/dataprocessing"
	"leadscout/pkg/contracts/domain"
)

func sampleRecords() []domain.ScoredRecord {
	return []domain.ScoredRecord{
		{
			NewsRecord: domain.NewsRecord{
				Date:     domain.NewDate(2024, 3, 1),
				Company:  "TechNova",
				Headline: "TechNova raised $40 million, again",
				NewsType: domain.NewsTypeFunding,
				Industry: "AI/ML",
			},
			Sentiment: 0.3,
			LeadScore: 3.15,
			Tier:      domain.HeadlineTierHigh,
		},
		{
			NewsRecord: domain.NewsRecord{
				Date:     domain.NewDate(2024, 3, 2),
				Company:  "ByteCraft",
				Headline: "ByteCraft announced layoffs",
				NewsType: domain.NewsTypeLayoff,
			},
			Sentiment: -0.5,
			LeadScore: -2.25,
			Tier:      domain.HeadlineTierCaution,
		},
	}
}

func TestSelectColumns(t *testing.T) {
	tests := []struct {
		name    string
		columns []string
		want    []string
		wantErr bool
	}{
		{"defaults", nil, DefaultRecordColumns, false},
		{"custom order", []string{"lead_score", "Company"}, []string{"lead_score", "company"}, false},
		{"unknown", []string{"company", "ceo"}, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table, err := RecordsTable(sampleRecords(), tt.columns)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnknownColumn)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, table.Headers)
			assert.Len(t, table.Rows, 2)
		})
	}
}

func TestRecordsTable_Values(t *testing.T) {
	table, err := RecordsTable(sampleRecords(), nil)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"2024-03-01", "TechNova", "TechNova raised $40 million, again", "funding", "AI/ML",
		"0.300", "3.15", "High Potential Lead",
	}, table.Rows[0])
	assert.Equal(t, "-2.25", table.Rows[1][6])
	assert.Equal(t, "Caution", table.Rows[1][7])
}

func TestCompaniesAndProfilesTables(t *testing.T) {
	companies, err := CompaniesTable([]domain.CompanyAggregate{{
		Company:      "TechNova",
		TotalScore:   6.5,
		ArticleCount: 3,
		LatestNews:   domain.NewDate(2024, 3, 9),
		Priority:     domain.CompanyPriorityCritical,
	}}, nil)
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"TechNova", "6.50", "3", "2024-03-09", "Critical"}}, companies.Rows)

	profiles, err := ProfilesTable([]domain.CompanyProfile{{Name: "Acme", Employees: 12}}, []string{"name", "employees"})
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"Acme", "12"}}, profiles.Rows)

	_, err = ProfilesTable(nil, []string{"revenue"})
	assert.ErrorIs(t, err, ErrUnknownColumn)
}

func TestBuildTable_Empty(t *testing.T) {
	table, err := RecordsTable(nil, nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultRecordColumns, table.Headers)
	assert.Empty(t, table.Rows)

	var buf bytes.Buffer
	require.NoError(t, EncodeCSV(&buf, table, false))
	assert.Equal(t, "date,company,headline,news_type,industry,sentiment,lead_score,lead_category\n", buf.String())
}

func TestEncodeCSV(t *testing.T) {
	table, err := RecordsTable(sampleRecords(), []string{"company", "headline"})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, EncodeCSV(&buf, table, true))
	require.True(t, bytes.HasPrefix(buf.Bytes(), utf8BOM))

	rows, err := csv.NewReader(bytes.NewReader(buf.Bytes()[len(utf8BOM):])).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"company", "headline"},
		{"TechNova", "TechNova raised $40 million, again"},
		{"ByteCraft", "ByteCraft announced layoffs"},
	}, rows)
}

func TestEncodeExcel(t *testing.T) {
	table, err := RecordsTable(sampleRecords(), []string{"company", "lead_score"})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, EncodeExcel(&buf, table, "Leads"))

	f, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Leads")
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"company", "lead_score"},
		{"TechNova", "3.15"},
		{"ByteCraft", "-2.25"},
	}, rows)
}

func TestEncodedExcelParsesBack(t *testing.T) {
	table, err := RecordsTable(sampleRecords(), []string{"date", "company", "headline", "news_type", "industry"})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, dataprocessing.FormatXLSX, table, ""))

	records, err := dataprocessing.ParseNewsExcelReader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, sampleRecords()[0].NewsRecord, records[0])
}

func TestEncode_UnsupportedFormat(t *testing.T) {
	err := Encode(&bytes.Buffer{}, "pdf", Table{}, "")
	assert.ErrorIs(t, err, dataprocessing.ErrUnsupportedFormat)
	assert.Equal(t, "text/csv; charset=utf-8", ContentType(dataprocessing.FormatCSV))
}

func TestCSVWriter_Files(t *testing.T) {
	dir := t.TempDir()
	w := NewCSVWriter(dir)

	table, err := CompaniesTable([]domain.CompanyAggregate{{Company: "A", Priority: domain.CompanyPriorityLow}}, []string{"company", "priority"})
	require.NoError(t, err)

	path, err := w.WriteCSV(filepath.Join("reports", "companies.csv"), table, WriteOptions{BOMPrefix: true})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "reports", "companies.csv"), path)

	_, err = w.WriteCSV(filepath.Join("reports", "companies.csv"), table, WriteOptions{Append: true})
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, string(utf8BOM)+"company,priority\nA,Low\nA,Low\n", string(data))

	xlsx, err := w.WriteExcel("companies.xlsx", table, "Companies")
	require.NoError(t, err)
	f, err := excelize.OpenFile(xlsx)
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, []string{"Companies"}, f.GetSheetList())

	abs := filepath.Join(t.TempDir(), "abs.csv")
	got, err := w.WriteCSV(abs, table, WriteOptions{})
	require.NoError(t, err)
	assert.Equal(t, abs, got)
}
