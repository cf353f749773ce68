package exporter

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"
)

const maxColumnWidth = 60

// EncodeExcel writes a table as a single sheet workbook with a bold, frozen header row
func EncodeExcel(out io.Writer, table Table, sheet string) error {
	f, err := buildWorkbook(table, sheet)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := f.WriteTo(out); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

// WriteExcel saves a table as a workbook and returns the full path written
func (w *CSVWriter) WriteExcel(filePath string, table Table, sheet string) (string, error) {
	fullPath := resolvePath(w.baseDir, filePath)

	slog.Info("Writing Excel file",
		slog.String("file_path", filePath),
		slog.String("full_path", fullPath),
		slog.Int("record_count", len(table.Rows)))

	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}

	f, err := buildWorkbook(table, sheet)
	if err != nil {
		return "", err
	}
	defer f.Close()

	if err := f.SaveAs(fullPath); err != nil {
		return "", fmt.Errorf("failed to save workbook: %w", err)
	}
	return fullPath, nil
}

func buildWorkbook(table Table, sheet string) (*excelize.File, error) {
	if sheet == "" {
		sheet = "Export"
	}

	f := excelize.NewFile()
	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to name sheet: %w", err)
	}

	widths := make([]int, len(table.Headers))
	writeRow := func(rowIdx int, values []string) error {
		cellRef, err := excelize.CoordinatesToCellName(1, rowIdx)
		if err != nil {
			return err
		}
		cells := make([]interface{}, len(values))
		for i, v := range values {
			cells[i] = v
			if i < len(widths) && len(v) > widths[i] {
				widths[i] = len(v)
			}
		}
		return f.SetSheetRow(sheet, cellRef, &cells)
	}

	if err := writeRow(1, table.Headers); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to write headers: %w", err)
	}
	for i, row := range table.Rows {
		if err := writeRow(i+2, row); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}

	if len(table.Headers) > 0 {
		if err := styleHeader(f, sheet, len(table.Headers), widths); err != nil {
			f.Close()
			return nil, err
		}
	}

	return f, nil
}

func styleHeader(f *excelize.File, sheet string, cols int, widths []int) error {
	style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}
	last, err := excelize.CoordinatesToCellName(cols, 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", last, style); err != nil {
		return fmt.Errorf("failed to style header: %w", err)
	}

	if err := f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return fmt.Errorf("failed to freeze header: %w", err)
	}

	for i, w := range widths {
		name, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(sheet, name, name, float64(min(w+2, maxColumnWidth))); err != nil {
			return fmt.Errorf("failed to size column %s: %w", name, err)
		}
	}
	return nil
}
