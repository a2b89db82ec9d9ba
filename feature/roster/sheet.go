package roster

import (
	"context"
	"strings"
	"unicode/utf8"

	"attendance-reconciler/core/reconcile"
	"attendance-reconciler/core/utils"
	"attendance-reconciler/core/workbook"
)

const minNameLength = 3

// ReconcileSheet folds the rows of one sheet into state for the given pass and
// returns the number of rows that were counted.
//
// The email pass only handles sheets with an email column; the name-only pass
// only handles sheets with a name column and no email column. An email counts at
// most once per sheet. The walk stops early when ctx is cancelled.
func ReconcileSheet(ctx context.Context, sheet workbook.Sheet, pass reconcile.Pass, state *reconcile.State) int {
	schema, ok := DetectSchema(sheet)
	if !ok || !accepts(schema, pass) {
		return 0
	}

	seen := make(map[string]struct{})
	counted := 0
	for i := schema.HeaderRow + 1; i <= sheet.LastRow(); i++ {
		if ctx.Err() != nil {
			break
		}

		row := sheet.Row(i)
		if isFillerRow(row) {
			continue
		}
		name := extractName(row, schema.NameCol)
		if name == "" {
			continue
		}

		email, ok := resolveEmail(row, schema, pass, name, state.Names)
		if !ok {
			continue
		}
		if _, dup := seen[email]; dup {
			continue
		}
		seen[email] = struct{}{}

		state.Identities.Upsert(email, name)
		counted++
	}
	return counted
}

func accepts(schema Schema, pass reconcile.Pass) bool {
	switch pass {
	case reconcile.PassEmailRequired:
		return schema.HasEmail()
	case reconcile.PassNameOnly:
		return !schema.HasEmail() && schema.HasName()
	default:
		return false
	}
}

func resolveEmail(row workbook.Row, schema Schema, pass reconcile.Pass, name string, names *reconcile.NameIndex) (string, bool) {
	key := NormalizeName(name)

	if pass == reconcile.PassEmailRequired {
		email := strings.ToLower(strings.TrimSpace(row.Cell(schema.EmailCol)))
		if !IsValidEmail(email) {
			return "", false
		}
		names.BindIfAbsent(key, email)
		return email, true
	}

	if email, ok := names.Lookup(key); ok {
		return email, true
	}
	// Another worker may bind the key between the lookup and here; the winner's
	// email is the one to use.
	email, _ := names.BindIfAbsent(key, SynthesizeEmail(name))
	return email, true
}

// isFillerRow reports whether row carries nothing but blanks and numbers, as
// serial-number-only rows do.
func isFillerRow(row workbook.Row) bool {
	for _, cell := range row {
		v := strings.TrimSpace(cell)
		if v != "" && !utils.IsDigits(v) {
			return false
		}
	}
	return true
}

func extractName(row workbook.Row, col int) string {
	if col == NoColumn {
		return ""
	}
	name := strings.TrimSpace(row.Cell(col))
	if name == "" || utils.IsDigits(name) || utf8.RuneCountInString(name) < minNameLength {
		return ""
	}
	return name
}
