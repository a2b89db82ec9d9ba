package roster

import (
	"strings"

	"attendance-reconciler/core/workbook"
)

const (
	// NoColumn marks a column that was not found.
	NoColumn = -1

	headerScanRows = 20
	sniffRows      = 10
	sniffMinEmails = 2
)

// Schema locates the header row and the identity columns of one sheet.
type Schema struct {
	HeaderRow int `json:"header_row"`
	NameCol   int `json:"name_col"`
	EmailCol  int `json:"email_col"`
}

// HasName reports whether a name column was found.
func (s Schema) HasName() bool { return s.NameCol != NoColumn }

// HasEmail reports whether an email column was found.
func (s Schema) HasEmail() bool { return s.EmailCol != NoColumn }

// DetectSchema finds the header row of sheet and the columns holding names and
// emails. It returns false when no row in the first 21 looks like a header.
//
// When no header names an email column, each header column is sampled over the
// rows directly below it and the leftmost column holding at least two valid
// emails is used.
func DetectSchema(sheet workbook.Sheet) (Schema, bool) {
	header, ok := findHeaderRow(sheet)
	if !ok {
		return Schema{}, false
	}

	schema := Schema{HeaderRow: header, NameCol: NoColumn, EmailCol: NoColumn}
	row := sheet.Row(header)
	for col, cell := range row {
		key := NormalizeHeader(strings.TrimSpace(cell))
		if key == "" {
			continue
		}
		if schema.NameCol == NoColumn && IsNameColumn(key) {
			schema.NameCol = col
		}
		if schema.EmailCol == NoColumn && IsEmailColumn(key) {
			schema.EmailCol = col
		}
	}

	if schema.EmailCol == NoColumn {
		for col, cell := range row {
			if strings.TrimSpace(cell) == "" {
				continue
			}
			if columnHoldsEmails(sheet, header, col) {
				schema.EmailCol = col
				break
			}
		}
	}

	return schema, true
}

func findHeaderRow(sheet workbook.Sheet) (int, bool) {
	last := min(headerScanRows, sheet.LastRow())
	for i := 0; i <= last; i++ {
		if isLikelyHeader(sheet.Row(i)) {
			return i, true
		}
	}
	return 0, false
}

func isLikelyHeader(row workbook.Row) bool {
	for _, cell := range row {
		value := strings.TrimSpace(cell)
		if value == "" {
			continue
		}
		key := NormalizeHeader(value)
		if IsNameColumn(key) || IsEmailColumn(key) || IsHeaderNoise(key) {
			return true
		}
	}
	return false
}

func columnHoldsEmails(sheet workbook.Sheet, header, col int) bool {
	found := 0
	limit := min(sniffRows, sheet.LastRow()-header)
	for i := 1; i <= limit; i++ {
		if IsValidEmail(sheet.Row(header + i).Cell(col)) {
			found++
			if found >= sniffMinEmails {
				return true
			}
		}
	}
	return false
}
