package exporter

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
)

// utf8BOM helps Excel recognise UTF-8 CSV files
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// CSVWriter writes tables to CSV files below a base directory
type CSVWriter struct {
	baseDir string
}

// NewCSVWriter creates a CSV writer. Relative paths are resolved against baseDir.
func NewCSVWriter(baseDir string) *CSVWriter {
	return &CSVWriter{baseDir: baseDir}
}

// WriteOptions configures CSV writing behavior
type WriteOptions struct {
	Append    bool
	BOMPrefix bool // Add UTF-8 BOM for Excel compatibility
}

// WriteCSV writes a table to a CSV file and returns the full path written
func (w *CSVWriter) WriteCSV(filePath string, table Table, options WriteOptions) (string, error) {
	fullPath := resolvePath(w.baseDir, filePath)

	slog.Info("Writing CSV file",
		slog.String("file_path", filePath),
		slog.String("full_path", fullPath),
		slog.Int("record_count", len(table.Rows)))

	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}

	flags := os.O_CREATE | os.O_WRONLY
	if options.Append {
		flags |= os.O_APPEND
	} else {
		flags |= os.O_TRUNC
	}

	file, err := os.OpenFile(fullPath, flags, 0644)
	if err != nil {
		return "", fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	if options.Append {
		// Headers and BOM belong to the first write only
		return fullPath, writeRows(file, nil, table.Rows)
	}
	return fullPath, EncodeCSV(file, table, options.BOMPrefix)
}

// EncodeCSV streams a table as CSV, optionally prefixed with a UTF-8 BOM
func EncodeCSV(out io.Writer, table Table, bom bool) error {
	if bom {
		if _, err := out.Write(utf8BOM); err != nil {
			return fmt.Errorf("failed to write BOM: %w", err)
		}
	}
	return writeRows(out, table.Headers, table.Rows)
}

func writeRows(out io.Writer, headers []string, rows [][]string) error {
	writer := csv.NewWriter(out)

	if len(headers) > 0 {
		if err := writer.Write(headers); err != nil {
			return fmt.Errorf("failed to write headers: %w", err)
		}
	}

	for i, record := range rows {
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// resolvePath keeps absolute paths and places relative ones below baseDir
func resolvePath(baseDir, filePath string) string {
	if filepath.IsAbs(filePath) || baseDir == "" {
		return filePath
	}
	return filepath.Join(baseDir, filePath)
}
