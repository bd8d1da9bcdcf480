// Package models defines data structures for minilake
package models

import (
	"fmt"
	"strconv"
	"strings"
)

// Frame is an ordered set of column labels with rows of cells. It is the
// in-memory shape of every parquet artifact in the lake. Cells are one of
// string, float64, int64, or nil.
type Frame struct {
	Columns []string
	Rows    [][]any
}

// NewFrame creates an empty frame with the given column labels.
func NewFrame(columns ...string) *Frame {
	return &Frame{Columns: columns}
}

// NumRows returns the number of rows in the frame.
func (f *Frame) NumRows() int {
	return len(f.Rows)
}

// Col returns the index of the column with the given label, or -1.
func (f *Frame) Col(label string) int {
	for i, c := range f.Columns {
		if c == label {
			return i
		}
	}
	return -1
}

// Append adds a row. The row length must match the column count.
func (f *Frame) Append(row []any) error {
	if len(row) != len(f.Columns) {
		return fmt.Errorf("row has %d cells, frame has %d columns", len(row), len(f.Columns))
	}
	f.Rows = append(f.Rows, row)
	return nil
}

// Cell returns the cell at (row, col index of label), or nil when the label
// is absent.
func (f *Frame) Cell(row int, label string) any {
	i := f.Col(label)
	if i < 0 || row < 0 || row >= len(f.Rows) {
		return nil
	}
	return f.Rows[row][i]
}

// AsString coerces a cell to its string form. Nil cells yield "".
func AsString(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case []byte:
		return string(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case int64:
		return strconv.FormatInt(x, 10)
	default:
		return fmt.Sprintf("%v", x)
	}
}

// AsFloat coerces a numeric cell to float64. The second return reports
// whether the cell held a usable number.
func AsFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case int64:
		return float64(x), true
	case int32:
		return float64(x), true
	case string:
		n, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return 0, false
		}
		return n, true
	default:
		return 0, false
	}
}
