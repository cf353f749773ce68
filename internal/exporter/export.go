package exporter

import (
	"fmt"
	"io"

	"leadscout/internal/dataprocessing"
)

// Encode writes a table in the requested format. CSV output carries a BOM so the
// file opens cleanly in Excel.
func Encode(out io.Writer, format dataprocessing.Format, table Table, sheet string) error {
	switch format {
	case dataprocessing.FormatCSV:
		return EncodeCSV(out, table, true)
	case dataprocessing.FormatXLSX:
		return EncodeExcel(out, table, sheet)
	}
	return fmt.Errorf("%w: %q", dataprocessing.ErrUnsupportedFormat, format)
}

// ContentType returns the MIME type of an export format
func ContentType(format dataprocessing.Format) string {
	if format == dataprocessing.FormatXLSX {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "text/csv; charset=utf-8"
}
