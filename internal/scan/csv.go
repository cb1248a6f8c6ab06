package scan

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/ironsheep/laser-lines/internal/lines"
)

// WriteCSVTo writes one "col,row" record per contour point in traversal
// order. There is no header row.
func WriteCSVTo(w io.Writer, res *lines.Result) error {
	cw := csv.NewWriter(w)
	rows, cols := res.Flatten()
	for i := range rows {
		record := []string{
			strconv.FormatFloat(cols[i], 'g', -1, 64),
			strconv.FormatFloat(rows[i], 'g', -1, 64),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write csv: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("failed to write csv: %w", err)
	}
	return nil
}

// WriteCSV writes the result to path, creating parent directories.
func WriteCSV(path string, res *lines.Result) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create csv: %w", err)
	}
	if err := WriteCSVTo(f, res); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// ReadCSV reads points written by WriteCSVTo and returns them as parallel
// row and column sequences.
func ReadCSV(r io.Reader) (rows, cols []float64, err error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = 2
	records, err := cr.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read csv: %w", err)
	}
	rows = make([]float64, len(records))
	cols = make([]float64, len(records))
	for i, rec := range records {
		if cols[i], err = strconv.ParseFloat(rec[0], 64); err != nil {
			return nil, nil, fmt.Errorf("record %d: %w", i+1, err)
		}
		if rows[i], err = strconv.ParseFloat(rec[1], 64); err != nil {
			return nil, nil, fmt.Errorf("record %d: %w", i+1, err)
		}
	}
	return rows, cols, nil
}
