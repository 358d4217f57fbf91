package dataset

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

// XLSXOptions controls FromXLSX.
type XLSXOptions struct {
	// Sheet names the worksheet to read; empty selects the first one.
	Sheet string
	// Typed converts numeric cells with ParseValue.
	Typed bool
}

// FromXLSX reads a worksheet whose first row names the columns. Rows shorter
// than the header are padded with empty cells; fully empty rows are skipped.
func FromXLSX(r io.Reader, opts XLSXOptions) (*Dataset, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open xlsx: %w", err)
	}
	defer f.Close()
	return fromWorkbook(f, opts)
}

// FromXLSXFile is FromXLSX over the workbook at path.
func FromXLSXFile(path string, opts XLSXOptions) (*Dataset, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open xlsx: %w", err)
	}
	defer f.Close()
	return fromWorkbook(f, opts)
}

func fromWorkbook(f *excelize.File, opts XLSXOptions) (*Dataset, error) {
	sheet := opts.Sheet
	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, fmt.Errorf("workbook has no sheets: %w", ErrNoHeader)
		}
		sheet = sheets[0]
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("sheet %q: %w", sheet, ErrNoHeader)
	}
	d := New(rows[0]...)
	for i, cells := range rows[1:] {
		if len(cells) == 0 {
			continue
		}
		if len(cells) > len(d.columns) {
			return nil, fmt.Errorf("sheet %q row %d has %d cells for %d columns: %w", sheet, i+2, len(cells), len(d.columns), ErrRaggedColumns)
		}
		row := make([]any, len(d.columns))
		for c := range row {
			v := ""
			if c < len(cells) {
				v = cells[c]
			}
			if opts.Typed && v != "" {
				row[c] = ParseValue(v)
			} else {
				row[c] = v
			}
		}
		d.rows = append(d.rows, row)
	}
	return d, nil
}
