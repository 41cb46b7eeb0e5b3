// Package export writes output tables as CSV or JSON.
package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/natefinch/atomic"

	"github.com/san-kum/loopsim/internal/storage"
	"github.com/san-kum/loopsim/internal/table"
)

var ErrMalformedCSV = errors.New("export: malformed csv")

// Document is the JSON form of an exported table.
type Document struct {
	Metadata *storage.Metadata `json:"metadata,omitempty"`
	Columns  []string          `json:"columns"`
	Rows     [][]float64       `json:"rows"`
}

func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// WriteCSV writes a header line with the column names followed by one line
// per row.
func WriteCSV(w io.Writer, tbl *table.Table) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(tbl.Columns); err != nil {
		return err
	}

	record := make([]string, len(tbl.Columns))
	for _, row := range tbl.Rows {
		for i, v := range row {
			record[i] = formatValue(v)
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// ReadCSV parses a table written by WriteCSV.
func ReadCSV(r io.Reader) (*table.Table, error) {
	records, err := csv.NewReader(r).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedCSV, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: missing header", ErrMalformedCSV)
	}

	tbl := table.New(records[0], len(records)-1)
	for i, record := range records[1:] {
		row := make([]float64, len(record))
		for j, field := range record {
			v, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
			if err != nil {
				return nil, fmt.Errorf("%w: line %d: %v", ErrMalformedCSV, i+2, err)
			}
			row[j] = v
		}
		tbl.Append(row)
	}
	return tbl, nil
}

// WriteJSON writes tbl and the optional run metadata as one indented
// document.
func WriteJSON(w io.Writer, tbl *table.Table, meta *storage.Metadata) error {
	doc := Document{
		Metadata: meta,
		Columns:  tbl.Columns,
		Rows:     tbl.Rows,
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(doc)
}

// ToFile renders fn into memory and atomically replaces path with the
// result, so readers never see a partial file.
func ToFile(path string, fn func(w io.Writer) error) error {
	var buf bytes.Buffer
	if err := fn(&buf); err != nil {
		return err
	}
	return atomic.WriteFile(path, &buf)
}

// ByExtension picks WriteCSV or WriteJSON from the extension of path.
func ByExtension(path string, tbl *table.Table, meta *storage.Metadata) (func(w io.Writer) error, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return func(w io.Writer) error { return WriteCSV(w, tbl) }, nil
	case ".json":
		return func(w io.Writer) error { return WriteJSON(w, tbl, meta) }, nil
	}
	return nil, fmt.Errorf("export: unsupported file type %q", filepath.Ext(path))
}
