// Package workbook reads spreadsheet workbooks into a uniform, string-typed view.
//
// It wraps excelize so that the reconciliation code never touches cell types:
// numeric, boolean, formula and date cells all arrive as strings and unreadable
// cells arrive as the empty string.
//
// # Model
//
//   - Workbook: an opened .xlsx file; sheets are loaded lazily by name.
//   - Sheet: an ordered set of rows with a last row index (-1 when empty).
//   - Row: a dense slice of cell strings indexed by column, "" for blank cells.
//   - Grid: an in-memory Sheet used by uploads and tests.
//
// # Usage
//
//	wb, err := workbook.Open("attendance.xlsx")
//	defer wb.Close()
//	for _, name := range wb.SheetNames() {
//	    sheet, err := wb.Sheet(name)
//	    ...
//	}
package workbook
