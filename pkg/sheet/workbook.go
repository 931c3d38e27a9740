// Package sheet reads spreadsheet workbooks into ordered, header-keyed rows.
package sheet

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/tealeg/xlsx"

	"github.com/yahsan2/sheet2jira/pkg/importerr"
)

// Row is one data row keyed by header text
type Row struct {
	// Number is the 1-based spreadsheet row; the header is row 1.
	Number int
	Values map[string]string
}

// Get returns the cell under header, or "" when absent
func (r Row) Get(header string) string {
	return r.Values[header]
}

// Table is a sheet split into its header and data rows
type Table struct {
	Name    string
	Headers []string
	Rows    []Row
}

// Workbook is an opened spreadsheet file
type Workbook struct {
	path string
	file *xlsx.File
}

// Open parses the workbook at path
func Open(path string) (*Workbook, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, importerr.Wrap(importerr.KindFileNotFound, fmt.Sprintf("file %s not found", path), err)
		}
		return nil, importerr.Wrap(importerr.KindFileNotFound, fmt.Sprintf("cannot access %s", path), err)
	}

	file, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, importerr.Wrap(importerr.KindUnreadableFormat, fmt.Sprintf("cannot read %s as a spreadsheet", path), err)
	}

	return &Workbook{path: path, file: file}, nil
}

// Path returns the file the workbook was opened from
func (w *Workbook) Path() string {
	return w.path
}

// SheetNames returns sheet names in workbook order
func (w *Workbook) SheetNames() []string {
	names := make([]string, 0, len(w.file.Sheets))
	for _, s := range w.file.Sheets {
		names = append(names, s.Name)
	}
	return names
}

// Table returns the named sheet as a header plus ordered data rows
func (w *Workbook) Table(name string) (*Table, error) {
	var target *xlsx.Sheet
	for _, s := range w.file.Sheets {
		if s.Name == name {
			target = s
			break
		}
	}
	if target == nil {
		return nil, importerr.New(importerr.KindSheetNotFound,
			fmt.Sprintf("sheet %q does not exist. Available sheets: %s", name, strings.Join(w.SheetNames(), ", ")))
	}

	table := &Table{Name: name}
	if len(target.Rows) == 0 {
		return table, nil
	}

	table.Headers = rowValues(target.Rows[0])

	// First occurrence of a header wins; blank headers are not addressable.
	columns := make(map[string]int, len(table.Headers))
	order := make([]string, 0, len(table.Headers))
	for i, h := range table.Headers {
		if strings.TrimSpace(h) == "" {
			continue
		}
		if _, seen := columns[h]; seen {
			continue
		}
		columns[h] = i
		order = append(order, h)
	}

	for i, r := range target.Rows[1:] {
		cells := rowValues(r)
		values := make(map[string]string, len(order))
		for _, h := range order {
			idx := columns[h]
			if idx < len(cells) {
				values[h] = cells[idx]
			} else {
				values[h] = ""
			}
		}
		table.Rows = append(table.Rows, Row{Number: i + 2, Values: values})
	}

	return table, nil
}

func rowValues(r *xlsx.Row) []string {
	if r == nil {
		return nil
	}
	values := make([]string, len(r.Cells))
	for i, c := range r.Cells {
		values[i] = cellText(c)
	}
	return values
}

// cellText returns the stored value of numeric cells and the displayed
// text of everything else, so a number format never rounds an estimate.
func cellText(c *xlsx.Cell) string {
	if c == nil {
		return ""
	}
	if c.Type() == xlsx.CellTypeNumeric {
		if n, err := c.Float(); err == nil {
			return strconv.FormatFloat(n, 'f', -1, 64)
		}
		return c.Value
	}
	text, err := c.FormattedValue()
	if err != nil {
		return c.Value
	}
	return text
}
