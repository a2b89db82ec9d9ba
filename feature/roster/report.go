package roster

import (
	"io"
	"sort"
	"strconv"

	"attendance-reconciler/core/reconcile"

	"github.com/cockroachdb/errors"
	"github.com/xuri/excelize/v2"
)

// ReportSheet is the name of the worksheet in the generated report.
const ReportSheet = "Attendance Report"

var reportHeaders = []string{"Rank", "Name", "Email", "Total_Count"}

// Entry is one ranked line of the final roster.
type Entry struct {
	Rank  int    `json:"rank"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Count int    `json:"count"`
}

// Rank orders identities by attendance count, highest first. Ties are broken by
// email so the order is stable across runs.
func Rank(records map[string]reconcile.Identity) []Entry {
	ids := make([]reconcile.Identity, 0, len(records))
	for _, rec := range records {
		ids = append(ids, rec)
	}
	sort.Slice(ids, func(i, j int) bool {
		if ids[i].Count != ids[j].Count {
			return ids[i].Count > ids[j].Count
		}
		return ids[i].Email < ids[j].Email
	})

	entries := make([]Entry, len(ids))
	for i, rec := range ids {
		entries[i] = Entry{Rank: i + 1, Name: rec.Name, Email: rec.Email, Count: rec.Count}
	}
	return entries
}

// BuildReport renders entries as a styled workbook. The caller owns the returned
// file and must close it.
func BuildReport(entries []Entry) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := fillReport(f, entries); err != nil {
		f.Close()
		return nil, err
	}
	return f, nil
}

// reportSheet is the subset of *excelize.File used to lay out the report.
type reportSheet interface {
	SetSheetName(source, target string) error
	NewStyle(style *excelize.Style) (int, error)
	SetSheetRow(sheet, cell string, slice interface{}) error
	SetCellStyle(sheet, topLeftCell, bottomRightCell string, styleID int) error
	SetRowHeight(sheet string, row int, height float64) error
	SetColWidth(sheet, startCol, endCol string, width float64) error
}

func fillReport(f reportSheet, entries []Entry) error {
	if err := f.SetSheetName("Sheet1", ReportSheet); err != nil {
		return errors.Wrap(err, "rename report sheet")
	}

	border := []excelize.Border{
		{Type: "left", Color: "#000000", Style: 1},
		{Type: "top", Color: "#000000", Style: 1},
		{Type: "right", Color: "#000000", Style: 1},
		{Type: "bottom", Color: "#000000", Style: 1},
	}
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 12, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#1F3864"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border:    border,
	})
	if err != nil {
		return errors.Wrap(err, "create header style")
	}
	dataStyle, err := f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{Horizontal: "left", Vertical: "center"},
		Border:    border,
	})
	if err != nil {
		return errors.Wrap(err, "create data style")
	}
	rankStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border:    border,
	})
	if err != nil {
		return errors.Wrap(err, "create rank style")
	}

	if err := f.SetSheetRow(ReportSheet, "A1", &reportHeaders); err != nil {
		return errors.Wrap(err, "write report header")
	}
	if err := f.SetCellStyle(ReportSheet, "A1", "D1", headerStyle); err != nil {
		return errors.Wrap(err, "style report header")
	}
	if err := f.SetRowHeight(ReportSheet, 1, 25); err != nil {
		return errors.Wrap(err, "size report header")
	}

	for i, e := range entries {
		row := i + 2
		values := []any{e.Rank, e.Name, e.Email, e.Count}
		first, err := excelize.CoordinatesToCellName(1, row)
		if err != nil {
			return errors.Wrapf(err, "report row %d", row)
		}
		if err := f.SetSheetRow(ReportSheet, first, &values); err != nil {
			return errors.Wrapf(err, "write report row %d", row)
		}
		if err := f.SetCellStyle(ReportSheet, first, "D"+strconv.Itoa(row), rankStyle); err != nil {
			return errors.Wrapf(err, "style report row %d", row)
		}
		if err := f.SetCellStyle(ReportSheet, "B"+strconv.Itoa(row), "C"+strconv.Itoa(row), dataStyle); err != nil {
			return errors.Wrapf(err, "style report row %d", row)
		}
	}

	widths := []struct {
		col   string
		width float64
	}{{"A", 10}, {"B", 32}, {"C", 36}, {"D", 14}}
	for _, w := range widths {
		if err := f.SetColWidth(ReportSheet, w.col, w.col, w.width); err != nil {
			return errors.Wrapf(err, "size column %s", w.col)
		}
	}
	return nil
}

// WriteReport renders entries and writes the workbook to w.
func WriteReport(w io.Writer, entries []Entry) error {
	f, err := BuildReport(entries)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := f.WriteTo(w); err != nil {
		return errors.Wrap(err, "write report")
	}
	return nil
}

// SaveReport renders entries into the workbook at path.
func SaveReport(path string, entries []Entry) error {
	f, err := BuildReport(entries)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.SaveAs(path); err != nil {
		return errors.Wrapf(err, "save report to %s", path)
	}
	return nil
}
