package dataprocessing

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"leadscout/internal/leads"
	"leadscout/pkg/contracts/domain"
)

const newsCSV = `date,company,headline,news_type,industry
2024-03-01,TechNova,TechNova raised $40 million in AI/ML sector,funding,AI/ML
2024-03-02 09:15:00,ByteCraft,ByteCraft announced layoffs in SaaS sector, Layoff ,SaaS

15/03/2024,VisionAI,,neutral,
`

func TestParseNewsCSV(t *testing.T) {
	records, err := ParseNewsCSV(strings.NewReader(newsCSV))
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, domain.NewsRecord{
		Date:     domain.NewDate(2024, 3, 1),
		Company:  "TechNova",
		Headline: "TechNova raised $40 million in AI/ML sector",
		NewsType: domain.NewsTypeFunding,
		Industry: "AI/ML",
	}, records[0])

	assert.Equal(t, domain.NewDate(2024, 3, 2), records[1].Date)
	assert.Equal(t, domain.NewsTypeLayoff, records[1].NewsType)

	assert.Equal(t, domain.NewDate(2024, 3, 15), records[2].Date)
	assert.Empty(t, records[2].Headline)
	assert.Empty(t, records[2].Industry)
}

func TestParseNewsCSV_HeaderVariants(t *testing.T) {
	input := "\ufeffNews export\n" +
		"Title,Company Name,Category,Published,Sector,Source\n" +
		"Acme hired CFO,Acme,hire,2024-01-09,Fintech,wire\n"

	records, err := ParseNewsCSV(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "Acme", records[0].Company)
	assert.Equal(t, "Acme hired CFO", records[0].Headline)
	assert.Equal(t, domain.NewsTypeHire, records[0].NewsType)
	assert.Equal(t, "Fintech", records[0].Industry)
}

func TestParseNewsCSV_Empty(t *testing.T) {
	records, err := ParseNewsCSV(strings.NewReader(""))
	require.NoError(t, err)
	assert.NotNil(t, records)
	assert.Empty(t, records)

	records, err = ParseNewsCSV(strings.NewReader("date,company,headline,news_type\n"))
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestParseNewsCSV_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		row   int
		field string
	}{
		{
			name:  "bad date",
			input: "date,company,news_type\n2024-01-01,A,hire\nyesterday,B,hire\n",
			row:   3,
			field: "date",
		},
		{
			name:  "missing company",
			input: "date,company,news_type\n2024-01-01,,hire\n",
			row:   2,
			field: "company",
		},
		{
			name:  "missing type",
			input: "date,company,news_type\n2024-01-01,A,\n",
			row:   2,
			field: "news_type",
		},
		{
			name:  "short row",
			input: "date,company,news_type\n2024-01-01,A\n",
			row:   2,
			field: "news_type",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseNewsCSV(strings.NewReader(tt.input))
			require.Error(t, err)
			assert.ErrorIs(t, err, leads.ErrMalformedRecord)

			var recErr *leads.RecordError
			require.ErrorAs(t, err, &recErr)
			assert.Equal(t, tt.row, recErr.Row)
			assert.Equal(t, tt.field, recErr.Field)
			assert.Contains(t, err.Error(), "row")
		})
	}
}

func TestParseNewsCSV_MissingColumns(t *testing.T) {
	_, err := ParseNewsCSV(strings.NewReader("date,headline\n2024-01-01,x\n"))
	assert.ErrorIs(t, err, leads.ErrMalformedRecord)
	assert.ErrorIs(t, err, ErrNoHeader)
}

func TestParseFlexibleDate(t *testing.T) {
	tests := []struct {
		in      string
		want    domain.Date
		wantErr bool
	}{
		{"2024-02-29", domain.NewDate(2024, 2, 29), false},
		{"2024-02-29 23:59:59", domain.NewDate(2024, 2, 29), false},
		{"29/02/2024", domain.NewDate(2024, 2, 29), false},
		{"2024-02-29T10:00:00Z", domain.NewDate(2024, 2, 29), false},
		{"45351", domain.NewDate(2024, 2, 29), false},
		{"", domain.Date{}, true},
		{"02/29/2024", domain.Date{}, true},
		{"soon", domain.Date{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFlexibleDate(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func buildNewsWorkbook(t *testing.T) *excelize.File {
	t.Helper()

	f := excelize.NewFile()
	// A leading sheet without news data must be skipped
	require.NoError(t, f.SetSheetName(f.GetSheetName(0), "Notes"))
	require.NoError(t, f.SetCellValue("Notes", "A1", "exported from the newsroom"))

	_, err := f.NewSheet("News")
	require.NoError(t, err)

	rows := [][]interface{}{
		{"Weekly digest"},
		{"Date", "Company", "Headline", "News Type", "Industry"},
		{"2024-04-01", "QuantumLeap", "QuantumLeap closed Series A in Fintech sector", "funding", "Fintech"},
		{"2024-04-02", "RoboWorks", "RoboWorks facing investigation in IoT sector", "scandal", "IoT"},
	}
	for i, row := range rows {
		cellRef, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("News", cellRef, &row))
	}
	return f
}

func TestParseNewsExcel(t *testing.T) {
	f := buildNewsWorkbook(t)
	path := filepath.Join(t.TempDir(), "news.xlsx")
	require.NoError(t, f.SaveAs(path))

	records, err := ParseNewsExcel(path)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "QuantumLeap", records[0].Company)
	assert.Equal(t, domain.NewsTypeScandal, records[1].NewsType)
	assert.Equal(t, domain.NewDate(2024, 4, 2), records[1].Date)
}

func TestParseNewsExcelReader(t *testing.T) {
	f := buildNewsWorkbook(t)
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	records, err := ParseNewsExcelReader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	assert.Len(t, records, 2)
}

func TestParseNewsExcel_NoNewsSheet(t *testing.T) {
	f := excelize.NewFile()
	require.NoError(t, f.SetCellValue("Sheet1", "A1", "nothing here"))
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	_, err = ParseNewsExcelReader(bytes.NewReader(buf.Bytes()))
	assert.ErrorIs(t, err, ErrNoHeader)
}

func TestFileSource(t *testing.T) {
	dir := t.TempDir()

	csvPath := filepath.Join(dir, "news.csv")
	require.NoError(t, os.WriteFile(csvPath, []byte(newsCSV), 0o644))

	xlsxPath := filepath.Join(dir, "news.xlsx")
	require.NoError(t, buildNewsWorkbook(t).SaveAs(xlsxPath))

	tests := []struct {
		name    string
		path    string
		want    int
		wantErr error
	}{
		{"csv", csvPath, 3, nil},
		{"xlsx", xlsxPath, 2, nil},
		{"unsupported", filepath.Join(dir, "news.json"), 0, ErrUnsupportedFormat},
		{"missing", filepath.Join(dir, "gone.csv"), 0, os.ErrNotExist},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var source leads.RecordSource = FileSource{Path: tt.path}
			records, err := source.LoadRecords(context.Background())
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Len(t, records, tt.want)
		})
	}
}

func TestFormatFromName(t *testing.T) {
	f, err := FormatFromName("upload.CSV")
	require.NoError(t, err)
	assert.Equal(t, FormatCSV, f)

	f, err = FormatFromName("book.xlsx")
	require.NoError(t, err)
	assert.Equal(t, FormatXLSX, f)

	_, err = FormatFromName("book.xls")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	_, err = ParseNews(strings.NewReader(""), "json")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}
