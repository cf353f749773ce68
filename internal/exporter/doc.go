// Package exporter renders scored records, company aggregates and directory
// profiles as CSV or Excel.
//
// Every view has a full column list and a default selection. Callers may pick
// columns by name; an unknown name fails with ErrUnknownColumn.
//
//	table, err := exporter.CompaniesTable(aggregates, []string{"company", "priority"})
//	if err != nil {
//	    return err
//	}
//	err = exporter.EncodeCSV(w, table, true)
//
// CSVWriter saves the same tables below a base directory, as CSV with an optional
// UTF-8 BOM or as a workbook.
package exporter
