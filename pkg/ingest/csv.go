package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

// table is a parsed CSV file addressed by header name.
type table struct {
	name    string
	columns map[string]int
	rows    [][]string
}

func readTable(name string, r io.Reader, required ...string) (*table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("%s: empty file", name)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: read header: %w", name, err)
	}

	t := &table{name: name, columns: make(map[string]int, len(header))}
	for i, h := range header {
		h = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		if _, ok := t.columns[h]; !ok {
			t.columns[h] = i
		}
	}
	for _, col := range required {
		if _, ok := t.columns[col]; !ok {
			return nil, fmt.Errorf("%s: missing column %q", name, col)
		}
	}

	t.rows, err = reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return t, nil
}

// row reads typed cells out of one CSV record. Line numbers are 1-based and
// count the header.
type row struct {
	t      *table
	line   int
	fields []string
}

func (t *table) each(fn func(r row) error) error {
	for i, fields := range t.rows {
		if err := fn(row{t: t, line: i + 2, fields: fields}); err != nil {
			return err
		}
	}
	return nil
}

func (r row) str(col string) string {
	i, ok := r.t.columns[col]
	if !ok || i >= len(r.fields) {
		return ""
	}
	return strings.TrimSpace(r.fields[i])
}

// optional treats blank cells and pandas missing markers as absent.
func (r row) optional(col string) string {
	v := r.str(col)
	switch strings.ToLower(v) {
	case "", "nan", "none", "null":
		return ""
	}
	return v
}

func (r row) errorf(col, format string, args ...interface{}) error {
	return fmt.Errorf("%s line %d column %s: %s", r.t.name, r.line, col, fmt.Sprintf(format, args...))
}

func (r row) float(col string) (float64, error) {
	v := r.optional(col)
	if v == "" {
		return 0, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, r.errorf(col, "invalid number %q", v)
	}
	return f, nil
}

func (r row) optFloat(col string) (*float64, error) {
	v := r.optional(col)
	if v == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return nil, r.errorf(col, "invalid number %q", v)
	}
	return &f, nil
}

// int accepts integral floats such as "3.0" written by spreadsheet exports.
func (r row) int(col string) (int, error) {
	v := r.optional(col)
	if v == "" {
		return 0, nil
	}
	if n, err := strconv.Atoi(v); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f != math.Trunc(f) {
		return 0, r.errorf(col, "invalid integer %q", v)
	}
	return int(f), nil
}

func (r row) bool(col string) (bool, error) {
	v := strings.ToLower(r.optional(col))
	switch v {
	case "1", "1.0", "true", "t", "yes":
		return true, nil
	case "", "0", "0.0", "false", "f", "no":
		return false, nil
	}
	return false, r.errorf(col, "invalid boolean %q", v)
}
