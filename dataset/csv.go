package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
)

// CSVOptions controls FromCSV.
type CSVOptions struct {
	// Comma is the field delimiter; zero means ','.
	Comma rune
	// Typed converts numeric fields with ParseValue.
	Typed bool
}

// FromCSV reads a dataset whose first record names the columns.
func FromCSV(r io.Reader, opts CSVOptions) (*Dataset, error) {
	cr := csv.NewReader(r)
	if opts.Comma != 0 {
		cr.Comma = opts.Comma
	}
	cr.TrimLeadingSpace = true
	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrNoHeader
	}
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	d := New(header...)
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return d, nil
		}
		if err != nil {
			if errors.Is(err, csv.ErrFieldCount) {
				err = fmt.Errorf("%w: %w", err, ErrRaggedColumns)
			}
			return nil, fmt.Errorf("read csv: %w", err)
		}
		row := make([]any, len(rec))
		for i, v := range rec {
			if opts.Typed {
				row[i] = ParseValue(v)
			} else {
				row[i] = v
			}
		}
		if err := d.Append(row...); err != nil {
			return nil, err
		}
	}
}

// FromCSVFile is FromCSV over the file at path.
func FromCSVFile(path string, opts CSVOptions) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return FromCSV(f, opts)
}
