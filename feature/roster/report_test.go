package roster

import (
	"bytes"
	"path/filepath"
	"testing"

	"attendance-reconciler/core/reconcile"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestRank(t *testing.T) {
	records := map[string]reconcile.Identity{
		"carol@x.com": {Name: "Carol", Email: "carol@x.com", Count: 1},
		"bob@x.com":   {Name: "Bob", Email: "bob@x.com", Count: 3},
		"alice@x.com": {Name: "Alice", Email: "alice@x.com", Count: 3},
		"dan@x.com":   {Name: "Dan", Email: "dan@x.com", Count: 2},
	}

	got := Rank(records)
	assert.Equal(t, []Entry{
		{Rank: 1, Name: "Alice", Email: "alice@x.com", Count: 3},
		{Rank: 2, Name: "Bob", Email: "bob@x.com", Count: 3},
		{Rank: 3, Name: "Dan", Email: "dan@x.com", Count: 2},
		{Rank: 4, Name: "Carol", Email: "carol@x.com", Count: 1},
	}, got)

	assert.Empty(t, Rank(nil))
}

func TestWriteReport(t *testing.T) {
	entries := []Entry{
		{Rank: 1, Name: "Alice Smith", Email: "alice@x.com", Count: 3},
		{Rank: 2, Name: "Bob Lee", Email: "bob@y.com", Count: 1},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteReport(&buf, entries))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{ReportSheet}, f.GetSheetList())
	rows, err := f.GetRows(ReportSheet)
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"Rank", "Name", "Email", "Total_Count"},
		{"1", "Alice Smith", "alice@x.com", "3"},
		{"2", "Bob Lee", "bob@y.com", "1"},
	}, rows)
}

// failingSheet fails the named layout step and delegates the rest.
type failingSheet struct {
	*excelize.File
	step string
}

func (s failingSheet) fail(step string) error {
	if s.step == step {
		return assert.AnError
	}
	return nil
}

func (s failingSheet) NewStyle(style *excelize.Style) (int, error) {
	if style.Font == nil {
		if err := s.fail("style"); err != nil {
			return 0, err
		}
	}
	return s.File.NewStyle(style)
}

func (s failingSheet) SetSheetRow(sheet, cell string, slice interface{}) error {
	if cell != "A1" {
		if err := s.fail("row"); err != nil {
			return err
		}
	}
	return s.File.SetSheetRow(sheet, cell, slice)
}

func (s failingSheet) SetCellStyle(sheet, top, bottom string, styleID int) error {
	if err := s.fail("cellstyle"); err != nil {
		return err
	}
	return s.File.SetCellStyle(sheet, top, bottom, styleID)
}

func (s failingSheet) SetRowHeight(sheet string, row int, height float64) error {
	if err := s.fail("height"); err != nil {
		return err
	}
	return s.File.SetRowHeight(sheet, row, height)
}

func (s failingSheet) SetColWidth(sheet, start, end string, width float64) error {
	if err := s.fail("width"); err != nil {
		return err
	}
	return s.File.SetColWidth(sheet, start, end, width)
}

func TestFillReport_Errors(t *testing.T) {
	entries := []Entry{{Rank: 1, Name: "Alice Smith", Email: "alice@x.com", Count: 3}}

	tests := []struct {
		step string
		want string
	}{
		{"style", "create data style"},
		{"row", "write report row 2"},
		{"cellstyle", "style report header"},
		{"height", "size report header"},
		{"width", "size column A"},
	}
	for _, tt := range tests {
		t.Run(tt.step, func(t *testing.T) {
			f := excelize.NewFile()
			defer f.Close()

			err := fillReport(failingSheet{File: f, step: tt.step}, entries)
			require.ErrorIs(t, err, assert.AnError)
			assert.ErrorContains(t, err, tt.want)
		})
	}
	f := excelize.NewFile()
	defer f.Close()
	assert.NoError(t, fillReport(failingSheet{File: f}, entries))
}

func TestSaveReport(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.xlsx")
	require.NoError(t, SaveReport(path, nil))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(ReportSheet)
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"Rank", "Name", "Email", "Total_Count"}}, rows)
}
