package workbook

import (
	"io"

	"github.com/cockroachdb/errors"
	"github.com/xuri/excelize/v2"
)

// Workbook is an opened spreadsheet file.
type Workbook struct {
	file *excelize.File
}

// Open opens the workbook at path.
func Open(path string) (*Workbook, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open workbook %s", path)
	}
	return &Workbook{file: f}, nil
}

// OpenReader reads a workbook from r.
func OpenReader(r io.Reader) (*Workbook, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, errors.Wrap(err, "read workbook")
	}
	return &Workbook{file: f}, nil
}

// SheetNames returns the worksheet names in workbook order.
func (w *Workbook) SheetNames() []string {
	return w.file.GetSheetList()
}

// Sheet loads the named worksheet. Cell values are the formatted strings excelize
// produces, so dates and numbers follow the cell's number format.
func (w *Workbook) Sheet(name string) (Sheet, error) {
	rows, err := w.file.GetRows(name)
	if err != nil {
		return nil, errors.Wrapf(err, "read sheet %q", name)
	}
	return NewGrid(name, rows), nil
}

// Close releases the workbook's temporary resources.
func (w *Workbook) Close() error {
	return w.file.Close()
}
