package testutil

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"leadscout/pkg/contracts/domain"
)

// NewsRecord builds a record dated day days after 2024-03-01
func NewsRecord(company string, newsType domain.NewsType, day int, headline string) domain.NewsRecord {
	return domain.NewsRecord{
		Date:     domain.NewDate(2024, time.March, 1+day),
		Company:  company,
		Headline: headline,
		NewsType: newsType,
		Industry: "SaaS",
	}
}

// SampleNews returns a small dataset touching every base score sign:
// TechNova (funding, product), CloudForge (layoff) and ByteCraft (hire).
func SampleNews() []domain.NewsRecord {
	return []domain.NewsRecord{
		NewsRecord("TechNova", domain.NewsTypeFunding, 0, "TechNova raised $40 million"),
		NewsRecord("CloudForge", domain.NewsTypeLayoff, 1, "CloudForge announced layoffs"),
		NewsRecord("TechNova", domain.NewsTypeProduct, 4, "TechNova launched new platform"),
		NewsRecord("ByteCraft", domain.NewsTypeHire, 6, "ByteCraft hired new CTO"),
	}
}

// WriteNewsCSV writes records as a news CSV file under t.TempDir and returns its path
func WriteNewsCSV(t *testing.T, name string, records []domain.NewsRecord) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	rows := [][]string{{"date", "company", "headline", "news_type", "industry"}}
	for _, r := range records {
		rows = append(rows, []string{r.Date.String(), r.Company, r.Headline, string(r.NewsType), r.Industry})
	}
	if err := w.WriteAll(rows); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}
