package pipeline

import (
	"context"
	"fmt"
	"strings"

	"github.com/chevalinn/minilake/internal/models"
)

// Raw artifacts use the provider's flat column labels plus an injected
// Symbol column for downstream joins.
var rawColumns = []string{"Date", "Open", "High", "Low", "Close", "Volume", "Symbol"}

// Extract fetches daily history for the window and overwrites the raw
// artifact wholesale. The raw artifact is "latest history as last observed",
// not versioned per window. An empty provider response performs no write:
// a prior raw artifact is not invalidated by an empty refresh.
func (s *Service) Extract(ctx context.Context, ticker, start, end string) (int, error) {
	ticker = strings.ToUpper(ticker)
	startT, endT, err := parseWindow(ticker, start, end)
	if err != nil {
		return 0, err
	}

	bars, err := s.prices.GetDailyHistory(ctx, ticker, startT, endT)
	if err != nil {
		return 0, fmt.Errorf("extract %s [%s, %s]: %w", ticker, start, end, err)
	}
	if len(bars) == 0 {
		s.logger.Warn().Str("ticker", ticker).Str("start", start).Str("end", end).
			Msg("No data downloaded")
		return 0, &models.NoDataError{Ticker: ticker, Start: start, End: end}
	}

	frame := models.NewFrame(rawColumns...)
	for _, bar := range bars {
		frame.Rows = append(frame.Rows, []any{
			bar.Date.Format(models.DateLayout),
			bar.Open,
			bar.High,
			bar.Low,
			bar.Close,
			bar.Volume,
			ticker,
		})
	}

	if err := s.store.WriteRaw(ctx, ticker, frame); err != nil {
		return 0, fmt.Errorf("extract %s [%s, %s]: %w", ticker, start, end, err)
	}

	s.logger.Info().Str("ticker", ticker).Int("rows", frame.NumRows()).
		Str("path", s.store.RawPath(ticker)).Msg("Raw artifact extracted")
	return frame.NumRows(), nil
}
