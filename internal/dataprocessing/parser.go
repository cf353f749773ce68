package dataprocessing

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"leadscout/internal/leads"
	"leadscout/pkg/contracts/domain"
)

// headerScanRows is how many leading rows are searched for the header row
const headerScanRows = 10

// ErrNoHeader is returned when no row looks like a news header
var ErrNoHeader = errors.New("could not find header row")

// dateLayouts lists the accepted textual date formats, tried in order
var dateLayouts = []string{
	domain.DateLayout,
	"2006-01-02 15:04:05",
	"02/01/2006",
	time.RFC3339,
}

// ParseNewsCSV reads news records from CSV. The first row matching the news
// header (date, company, news_type; headline and industry optional) starts the data.
func ParseNewsCSV(r io.Reader) ([]domain.NewsRecord, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV: %w", err)
	}
	if len(rows) > 0 && len(rows[0]) > 0 {
		rows[0][0] = strings.TrimPrefix(rows[0][0], "\ufeff")
	}

	return rowsToNews(rows)
}

// ParseNewsExcel reads news records from the first sheet of a workbook that carries
// a news header
func ParseNewsExcel(filePath string) ([]domain.NewsRecord, error) {
	f, err := excelize.OpenFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	return parseWorkbook(f)
}

// ParseNewsExcelReader is like ParseNewsExcel for an in-memory workbook
func ParseNewsExcelReader(r io.Reader) ([]domain.NewsRecord, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	return parseWorkbook(f)
}

func parseWorkbook(f *excelize.File) ([]domain.NewsRecord, error) {
	empty := true
	for _, name := range f.GetSheetList() {
		rows, err := f.GetRows(name)
		if err != nil {
			continue
		}
		if !isBlankTable(rows) {
			empty = false
		}
		if _, _, ok := findNewsHeader(rows); !ok {
			continue
		}

		slog.Debug("Found news sheet",
			slog.String("sheet_name", name),
			slog.Int("total_rows", len(rows)))
		return rowsToNews(rows)
	}
	if empty {
		return []domain.NewsRecord{}, nil
	}
	return nil, fmt.Errorf("%w: %w in any sheet", leads.ErrMalformedRecord, ErrNoHeader)
}

// findNewsHeader locates the header row and maps column names to positions
func findNewsHeader(rows [][]string) (int, map[string]int, bool) {
	for i := 0; i < len(rows) && i < headerScanRows; i++ {
		columns := make(map[string]int)
		for j, header := range rows[i] {
			h := normalizeHeader(header)

			var key string
			switch {
			case h == "date" || strings.HasSuffix(h, "_date") || h == "published":
				key = "date"
			case h == "company" || h == "company_name" || h == "name":
				key = "company"
			case h == "headline" || h == "title":
				key = "headline"
			case h == "news_type" || h == "type" || h == "category":
				key = "news_type"
			case h == "industry" || h == "sector":
				key = "industry"
			default:
				continue
			}
			if _, seen := columns[key]; !seen {
				columns[key] = j
			}
		}

		_, hasDate := columns["date"]
		_, hasCompany := columns["company"]
		_, hasType := columns["news_type"]
		if hasDate && hasCompany && hasType {
			return i, columns, true
		}
	}
	return -1, nil, false
}

func rowsToNews(rows [][]string) ([]domain.NewsRecord, error) {
	if isBlankTable(rows) {
		return []domain.NewsRecord{}, nil
	}

	headerRow, columns, ok := findNewsHeader(rows)
	if !ok {
		return nil, fmt.Errorf("%w: %w: need date, company and news_type columns", leads.ErrMalformedRecord, ErrNoHeader)
	}

	records := make([]domain.NewsRecord, 0, len(rows)-headerRow-1)
	for i := headerRow + 1; i < len(rows); i++ {
		row := rows[i]
		if isBlankRow(row) {
			continue
		}
		rowNum := i + 1

		rec := domain.NewsRecord{
			Company:  cell(row, columns, "company"),
			Headline: cell(row, columns, "headline"),
			NewsType: domain.NewsType(strings.ToLower(cell(row, columns, "news_type"))),
			Industry: cell(row, columns, "industry"),
		}

		if rec.Company == "" {
			return nil, rowError(len(records), rowNum, "company", "", "company is required")
		}
		if rec.NewsType == "" {
			return nil, rowError(len(records), rowNum, "news_type", "", "news type is required")
		}

		raw := cell(row, columns, "date")
		date, err := ParseFlexibleDate(raw)
		if err != nil {
			return nil, rowError(len(records), rowNum, "date", raw, err.Error())
		}
		rec.Date = date

		records = append(records, rec)
	}

	return records, nil
}

// ParseFlexibleDate parses the date formats found in news exports, including
// Excel serial day numbers
func ParseFlexibleDate(raw string) (domain.Date, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return domain.Date{}, errors.New("date is required")
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return domain.DateOf(t), nil
		}
	}

	if serial, err := strconv.ParseFloat(s, 64); err == nil && serial > 0 {
		t, err := excelize.ExcelDateToTime(serial, false)
		if err == nil {
			return domain.DateOf(t), nil
		}
	}

	return domain.Date{}, fmt.Errorf("unrecognised date %q", s)
}

func rowError(index, row int, field, value, reason string) error {
	err := leads.NewMalformedError(index, field, value, reason)
	err.Row = row
	return err
}

func cell(row []string, columns map[string]int, key string) string {
	idx, ok := columns[key]
	if !ok || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func normalizeHeader(h string) string {
	h = strings.ToLower(strings.TrimSpace(h))
	h = strings.TrimPrefix(h, "\ufeff")
	return strings.NewReplacer(" ", "_", "-", "_").Replace(h)
}

func isBlankTable(rows [][]string) bool {
	for _, row := range rows {
		if !isBlankRow(row) {
			return false
		}
	}
	return true
}

func isBlankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
