// Package xlsx provides read-only access to the sheets and rows of .xlsx
// workbooks.
package xlsx

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"github.com/xuri/excelize/v2"
)

// Sheet represents a single worksheet's data.
type Sheet struct {
	Name string     `json:"name"`
	Rows [][]string `json:"rows"`
}

// Workbook represents a parsed Excel file with all its sheets.
type Workbook struct {
	Path   string  `json:"path"`
	Sheets []Sheet `json:"sheets"`
}

// Options controls how a workbook is opened.
type Options struct {
	Password string // for encrypted workbooks
}

// ReadFile reads an .xlsx file and returns its structured data.
func ReadFile(path string, opts Options) (*Workbook, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("file not found: %s — check that the path is correct", path)
	}

	f, err := excelize.OpenFile(path, excelize.Options{Password: opts.Password})
	if err != nil {
		return nil, fmt.Errorf("could not open %s — is this a valid .xlsx file? %w", path, err)
	}
	defer f.Close()

	wb, err := readWorkbook(f)
	if err != nil {
		return nil, err
	}
	wb.Path = path
	return wb, nil
}

// SheetNames returns the worksheet names of the file in workbook order
// without reading any rows.
func SheetNames(path string, opts Options) ([]string, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("file not found: %s — check that the path is correct", path)
	}
	f, err := excelize.OpenFile(path, excelize.Options{Password: opts.Password})
	if err != nil {
		return nil, fmt.Errorf("could not open %s — is this a valid .xlsx file? %w", path, err)
	}
	defer f.Close()
	return f.GetSheetList(), nil
}

func readWorkbook(f *excelize.File) (*Workbook, error) {
	wb := &Workbook{}
	for _, name := range f.GetSheetList() {
		rows, err := f.GetRows(name)
		if err != nil {
			return nil, fmt.Errorf("could not read sheet %q: %w", name, err)
		}
		wb.Sheets = append(wb.Sheets, Sheet{Name: name, Rows: rows})
	}

	return wb, nil
}

// GetSheet returns a specific sheet by name. Returns an error if the sheet is not found.
func (wb *Workbook) GetSheet(name string) (*Sheet, error) {
	for i := range wb.Sheets {
		if wb.Sheets[i].Name == name {
			return &wb.Sheets[i], nil
		}
	}

	available := make([]string, len(wb.Sheets))
	for i, s := range wb.Sheets {
		available[i] = s.Name
	}
	return nil, fmt.Errorf("sheet %q not found — available sheets: %v", name, available)
}

// First returns the first sheet, or an error for a workbook without sheets.
func (wb *Workbook) First() (*Sheet, error) {
	if len(wb.Sheets) == 0 {
		return nil, fmt.Errorf("no sheets found in %s", wb.Path)
	}
	return &wb.Sheets[0], nil
}

// WriteCSV writes rows [from, from+n) of the sheet as CSV. A negative n
// writes every remaining row.
func (s *Sheet) WriteCSV(w io.Writer, from, n int) error {
	cw := csv.NewWriter(w)
	rows := s.Rows
	if from > len(rows) {
		from = len(rows)
	}
	rows = rows[from:]
	if n >= 0 && n < len(rows) {
		rows = rows[:n]
	}
	if err := cw.WriteAll(rows); err != nil {
		return fmt.Errorf("could not write CSV for sheet %q: %w", s.Name, err)
	}
	return nil
}

// RowCount returns the total number of data rows (excluding empty rows).
func (s *Sheet) RowCount() int {
	count := 0
	for _, row := range s.Rows {
		for _, cell := range row {
			if cell != "" {
				count++
				break
			}
		}
	}
	return count
}
