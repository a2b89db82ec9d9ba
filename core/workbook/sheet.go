package workbook

// Sheet is a read-only, row-addressable view over one worksheet.
type Sheet interface {
	// Name returns the worksheet name.
	Name() string
	// LastRow returns the index of the last row, or -1 for an empty sheet.
	LastRow() int
	// Row returns the row at index i. Missing rows are returned as nil.
	Row(i int) Row
}

// Row holds the cell text of one row indexed by column.
type Row []string

// Cell returns the text at column col, or "" when the column is out of range.
func (r Row) Cell(col int) string {
	if col < 0 || col >= len(r) {
		return ""
	}
	return r[col]
}

// Grid is an in-memory Sheet.
type Grid struct {
	name string
	rows []Row
}

// NewGrid creates a Grid from string rows.
func NewGrid(name string, rows [][]string) *Grid {
	g := &Grid{name: name, rows: make([]Row, len(rows))}
	for i, r := range rows {
		g.rows[i] = Row(r)
	}
	return g
}

func (g *Grid) Name() string { return g.name }

func (g *Grid) LastRow() int { return len(g.rows) - 1 }

func (g *Grid) Row(i int) Row {
	if i < 0 || i >= len(g.rows) {
		return nil
	}
	return g.rows[i]
}
