// Package dataset holds the tabular input of a report: ordered, named columns
// of equal length whose cells are scalars of any type. Loaders read datasets
// from CSV, XLSX and SQL sources.
package dataset

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"strconv"
	"time"
)

var (
	// ErrRaggedColumns indicates columns or rows of unequal length.
	ErrRaggedColumns = errors.New("columns have unequal lengths")
	// ErrNoHeader indicates a source without a header row.
	ErrNoHeader = errors.New("missing header row")
)

// Dataset is a read-only table. It satisfies layout.Tabular.
type Dataset struct {
	columns []string
	rows    [][]any
}

// New returns an empty dataset with the given column names.
func New(columns ...string) *Dataset {
	return &Dataset{columns: append([]string(nil), columns...)}
}

// FromColumns builds a dataset from column vectors. All columns must have
// the same length.
func FromColumns(names []string, columns [][]any) (*Dataset, error) {
	if len(names) != len(columns) {
		return nil, fmt.Errorf("%d names for %d columns: %w", len(names), len(columns), ErrRaggedColumns)
	}
	d := New(names...)
	if len(columns) == 0 {
		return d, nil
	}
	n := len(columns[0])
	for i, col := range columns {
		if len(col) != n {
			return nil, fmt.Errorf("column %q has %d values, want %d: %w", names[i], len(col), n, ErrRaggedColumns)
		}
	}
	d.rows = make([][]any, n)
	for r := range d.rows {
		row := make([]any, len(columns))
		for c := range columns {
			row[c] = columns[c][r]
		}
		d.rows[r] = row
	}
	return d, nil
}

// FromRecords builds a dataset of strings. Every record must have one value
// per column.
func FromRecords(header []string, records [][]string) (*Dataset, error) {
	d := New(header...)
	for i, rec := range records {
		row := make([]any, len(rec))
		for j, v := range rec {
			row[j] = v
		}
		if err := d.Append(row...); err != nil {
			return nil, fmt.Errorf("record %d: %w", i+1, err)
		}
	}
	return d, nil
}

// Append adds one row.
func (d *Dataset) Append(values ...any) error {
	if len(values) != len(d.columns) {
		return fmt.Errorf("row has %d values for %d columns: %w", len(values), len(d.columns), ErrRaggedColumns)
	}
	d.rows = append(d.rows, append([]any(nil), values...))
	return nil
}

func (d *Dataset) Columns() []string { return d.columns }

func (d *Dataset) Rows() int { return len(d.rows) }

// Value returns the raw cell value.
func (d *Dataset) Value(row, col int) any { return d.rows[row][col] }

// Cell returns the cell rendered as text.
func (d *Dataset) Cell(row, col int) string { return Format(d.rows[row][col]) }

// Column returns the values of the named column.
func (d *Dataset) Column(name string) ([]any, bool) {
	for c, n := range d.columns {
		if n != name {
			continue
		}
		out := make([]any, len(d.rows))
		for r, row := range d.rows {
			out[r] = row[c]
		}
		return out, true
	}
	return nil, false
}

// Format renders a cell value. Floats use the shortest exact representation
// and times are printed as "2006-01-02 15:04:05". Driver types such as
// pgtype.Numeric are rendered through their driver.Valuer value.
func Format(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case []byte:
		return string(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32)
	case time.Time:
		return x.Format(time.DateTime)
	case driver.Valuer:
		dv, err := x.Value()
		if err != nil {
			return fmt.Sprint(v)
		}
		if _, again := dv.(driver.Valuer); again {
			return fmt.Sprint(dv)
		}
		return Format(dv)
	case fmt.Stringer:
		return x.String()
	}
	return fmt.Sprint(v)
}

// ParseValue converts text to int64 or float64 where it parses as one and
// returns it unchanged otherwise.
func ParseValue(s string) any {
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	return s
}
