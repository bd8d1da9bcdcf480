package lakefs

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/chevalinn/minilake/internal/models"
)

// Fundamentals artifacts are a single flattened row: ticker and timestamp
// columns plus, per metric in sorted order, a value column named after the
// metric, a "_source" column, and "_filed_date"/"_end_date" columns when
// the source reported them.

const (
	colTicker    = "ticker"
	colTimestamp = "timestamp"

	suffixSource    = "_source"
	suffixFiledDate = "_filed_date"
	suffixEndDate   = "_end_date"
)

// WriteFundamentals replaces the persisted fundamentals artifact wholesale.
func (s *Store) WriteFundamentals(_ context.Context, rec *models.FundamentalsRecord) error {
	frame := flattenFundamentals(rec)
	if err := s.writeFrame(s.FundamentalsPath(rec.Ticker), frame); err != nil {
		return fmt.Errorf("failed to write fundamentals for %s: %w", rec.Ticker, err)
	}
	s.logger.Debug().Str("ticker", rec.Ticker).Int("metrics", len(rec.Metrics)).Msg("Fundamentals saved")
	return nil
}

// ReadFundamentals loads and unflattens the persisted fundamentals record.
func (s *Store) ReadFundamentals(_ context.Context, ticker string) (*models.FundamentalsRecord, error) {
	frame, err := readParquetFrame(s.FundamentalsPath(ticker))
	if err != nil {
		return nil, err
	}
	return unflattenFundamentals(frame)
}

func flattenFundamentals(rec *models.FundamentalsRecord) *models.Frame {
	columns := []string{colTicker, colTimestamp}
	row := []any{strings.ToUpper(rec.Ticker), rec.Timestamp.Format(time.RFC3339)}

	for _, name := range rec.MetricNames() {
		m := rec.Metrics[name]
		columns = append(columns, name, name+suffixSource)
		row = append(row, m.Value, m.Source)
		if m.FiledDate != "" {
			columns = append(columns, name+suffixFiledDate)
			row = append(row, m.FiledDate)
		}
		if m.EndDate != "" {
			columns = append(columns, name+suffixEndDate)
			row = append(row, m.EndDate)
		}
	}

	frame := models.NewFrame(columns...)
	frame.Rows = append(frame.Rows, row)
	return frame
}

func unflattenFundamentals(frame *models.Frame) (*models.FundamentalsRecord, error) {
	if frame.NumRows() == 0 {
		return nil, fmt.Errorf("fundamentals artifact is empty")
	}

	rec := &models.FundamentalsRecord{
		Ticker:  models.AsString(frame.Cell(0, colTicker)),
		Metrics: map[string]models.MetricValue{},
	}

	ts, err := time.Parse(time.RFC3339, models.AsString(frame.Cell(0, colTimestamp)))
	if err != nil {
		return nil, fmt.Errorf("fundamentals artifact has invalid timestamp: %w", err)
	}
	rec.Timestamp = ts

	metric := func(name string) models.MetricValue {
		return rec.Metrics[name]
	}

	for i, col := range frame.Columns {
		cell := frame.Rows[0][i]
		switch {
		case col == colTicker || col == colTimestamp:
			continue
		case strings.HasSuffix(col, suffixSource):
			name := strings.TrimSuffix(col, suffixSource)
			m := metric(name)
			m.Source = models.AsString(cell)
			rec.Metrics[name] = m
		case strings.HasSuffix(col, suffixFiledDate):
			name := strings.TrimSuffix(col, suffixFiledDate)
			m := metric(name)
			m.FiledDate = models.AsString(cell)
			rec.Metrics[name] = m
		case strings.HasSuffix(col, suffixEndDate):
			name := strings.TrimSuffix(col, suffixEndDate)
			m := metric(name)
			m.EndDate = models.AsString(cell)
			rec.Metrics[name] = m
		default:
			v, ok := models.AsFloat(cell)
			if !ok {
				continue
			}
			m := metric(col)
			m.Value = v
			rec.Metrics[col] = m
		}
	}

	return rec, nil
}
