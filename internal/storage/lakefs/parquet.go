package lakefs

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/parquet-go/parquet-go"

	"github.com/chevalinn/minilake/internal/models"
)

// encodeParquetFrame serializes a frame with a schema built at runtime from
// the frame's column labels and cell types. Column labels pass through
// verbatim, including composite "('Field', 'TICKER')" labels, so staged
// artifacts preserve the raw artifact's encoding. The writer is
// deterministic: identical frames encode to identical bytes.
func encodeParquetFrame(frame *models.Frame) ([]byte, error) {
	group := parquet.Group{}
	for i, col := range frame.Columns {
		group[col] = parquet.Optional(columnNode(frame, i))
	}
	schema := parquet.NewSchema("minilake", group)

	var buf bytes.Buffer
	writer := parquet.NewGenericWriter[map[string]any](&buf, schema)

	if len(frame.Rows) > 0 {
		rows := make([]map[string]any, 0, len(frame.Rows))
		for _, r := range frame.Rows {
			m := make(map[string]any, len(frame.Columns))
			for i, col := range frame.Columns {
				if r[i] != nil {
					m[col] = r[i]
				}
			}
			rows = append(rows, m)
		}
		if _, err := writer.Write(rows); err != nil {
			return nil, fmt.Errorf("failed to write parquet rows: %w", err)
		}
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to close parquet writer: %w", err)
	}
	return buf.Bytes(), nil
}

// columnNode picks the physical type for a column from its first non-nil
// cell. Columns with no values default to strings.
func columnNode(frame *models.Frame, col int) parquet.Node {
	for _, row := range frame.Rows {
		switch row[col].(type) {
		case string:
			return parquet.String()
		case float64:
			return parquet.Leaf(parquet.DoubleType)
		case int64:
			return parquet.Int(64)
		case nil:
			continue
		}
	}
	return parquet.String()
}

// readParquetFrame reads a parquet artifact back into a frame. Column order
// follows the file's schema.
func readParquetFrame(path string) (*models.Frame, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("artifact %s not found", path)
		}
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	pf, err := parquet.OpenFile(f, info.Size())
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	// A schema option is required here: the reader cannot derive a parquet
	// schema from map[string]any, so it reads with the file's own schema.
	reader := parquet.NewGenericReader[map[string]any](f, pf.Schema())
	defer reader.Close()

	fields := reader.Schema().Fields()
	columns := make([]string, len(fields))
	for i, field := range fields {
		columns[i] = field.Name()
	}

	frame := models.NewFrame(columns...)
	for {
		batch := make([]map[string]any, 128)
		for i := range batch {
			batch[i] = make(map[string]any, len(columns))
		}
		n, err := reader.Read(batch)
		for _, m := range batch[:n] {
			row := make([]any, len(columns))
			for i, col := range columns {
				row[i] = normalizeCell(m[col])
			}
			frame.Rows = append(frame.Rows, row)
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
		if n == 0 {
			break
		}
	}
	return frame, nil
}

// normalizeCell folds reader output into the frame cell types: string,
// float64, int64, or nil.
func normalizeCell(v any) any {
	switch x := v.(type) {
	case []byte:
		return string(x)
	case int32:
		return int64(x)
	case int:
		return int64(x)
	case float32:
		return float64(x)
	default:
		return x
	}
}
