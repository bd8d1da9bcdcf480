package pipeline

import (
	"context"
	"fmt"
	"strings"

	"github.com/chevalinn/minilake/internal/engine"
	"github.com/chevalinn/minilake/internal/models"
	"github.com/chevalinn/minilake/internal/schema"
)

// factColumns is the canonical fact-table column order.
var factColumns = []string{"Open", "High", "Low", "Close", "Volume"}

// Transform derives the staged, fact, and dim artifacts for an exact window
// from the existing raw artifact. Re-running with unchanged raw data yields
// byte-identical artifacts.
func (s *Service) Transform(ctx context.Context, ticker, start, end string) (*models.TransformResult, error) {
	ticker = strings.ToUpper(ticker)
	if _, _, err := parseWindow(ticker, start, end); err != nil {
		return nil, err
	}
	key := models.StagedKey{Ticker: ticker, Start: start, End: end}

	if !s.store.HasRaw(ticker) {
		return nil, &models.MissingRawDataError{Ticker: ticker}
	}
	raw, err := s.store.ReadRaw(ctx, ticker)
	if err != nil {
		return nil, fmt.Errorf("transform %s [%s, %s]: %w", ticker, start, end, err)
	}

	dateLabel, err := schema.Resolve(raw.Columns, "date")
	if err != nil {
		return nil, fmt.Errorf("transform %s [%s, %s]: %w", ticker, start, end, err)
	}

	// One engine handle per transform, released on every exit path.
	eng, err := engine.Open(ctx)
	if err != nil {
		return nil, fmt.Errorf("transform %s [%s, %s]: %w", ticker, start, end, err)
	}
	defer eng.Close()

	// Stage: filter raw to the inclusive window, preserving the raw schema.
	if err := eng.Register(ctx, "raw", raw); err != nil {
		return nil, fmt.Errorf("transform %s [%s, %s]: %w", ticker, start, end, err)
	}
	staged, err := eng.Query(ctx, fmt.Sprintf(
		`SELECT * FROM "raw" WHERE substr(%s, 1, 10) BETWEEN ? AND ?`,
		engine.QuoteIdent(dateLabel)), start, end)
	if err != nil {
		return nil, fmt.Errorf("transform %s [%s, %s]: %w", ticker, start, end, err)
	}
	if err := s.store.WriteStaged(ctx, key, staged); err != nil {
		return nil, fmt.Errorf("transform %s [%s, %s]: %w", ticker, start, end, err)
	}

	// Fact: project to canonical columns via the schema normalizer. The
	// encoding is detected once for the artifact, not per lookup.
	encoding := schema.DetectEncoding(staged.Columns)
	s.logger.Debug().Str("ticker", ticker).Stringer("encoding", encoding).Msg("Schema encoding detected")

	selectList, warnings, err := buildFactProjection(staged.Columns, encoding, dateLabel, ticker)
	if err != nil {
		return nil, fmt.Errorf("transform %s [%s, %s]: %w", ticker, start, end, err)
	}
	for _, w := range warnings {
		s.logger.Warn().Str("ticker", ticker).Msg(w)
	}

	if err := eng.Register(ctx, "staged", staged); err != nil {
		return nil, fmt.Errorf("transform %s [%s, %s]: %w", ticker, start, end, err)
	}
	fact, err := eng.Query(ctx, fmt.Sprintf(`SELECT %s FROM "staged"`, selectList))
	if err != nil {
		return nil, fmt.Errorf("transform %s [%s, %s]: %w", ticker, start, end, err)
	}
	if err := s.store.WriteFact(ctx, key, fact); err != nil {
		return nil, fmt.Errorf("transform %s [%s, %s]: %w", ticker, start, end, err)
	}

	// Dim: distinct dates only, no gap filling for weekends or holidays.
	if err := eng.Register(ctx, "fact", fact); err != nil {
		return nil, fmt.Errorf("transform %s [%s, %s]: %w", ticker, start, end, err)
	}
	dim, err := eng.Query(ctx,
		`SELECT DISTINCT "date",
			CAST(substr("date", 1, 4) AS INTEGER) AS year,
			CAST(substr("date", 6, 2) AS INTEGER) AS month,
			CAST(substr("date", 9, 2) AS INTEGER) AS day
		FROM "fact" ORDER BY "date"`)
	if err != nil {
		return nil, fmt.Errorf("transform %s [%s, %s]: %w", ticker, start, end, err)
	}
	if err := s.store.WriteDim(ctx, key, dim); err != nil {
		return nil, fmt.Errorf("transform %s [%s, %s]: %w", ticker, start, end, err)
	}

	s.logger.Info().Str("ticker", ticker).Str("start", start).Str("end", end).
		Int("staged", staged.NumRows()).Int("fact", fact.NumRows()).Int("dim", dim.NumRows()).
		Msg("Star schema derived")

	return &models.TransformResult{
		Ticker:     ticker,
		Start:      start,
		End:        end,
		StagedRows: staged.NumRows(),
		FactRows:   fact.NumRows(),
		DimRows:    dim.NumRows(),
		Warnings:   warnings,
	}, nil
}

// buildFactProjection resolves the canonical fact columns against the
// staged artifact's labels and renders the SELECT list. Missing price
// columns degrade per policy: open/high/low fall back to close; a column
// with no physical label at all projects as NULL. An artifact with no price
// columns whatsoever fails.
func buildFactProjection(labels []string, encoding schema.Encoding, dateLabel, ticker string) (string, []string, error) {
	resolved := map[string]string{}
	for _, logical := range []string{"open", "high", "low", "close", "volume"} {
		if label, err := schema.Resolve(labels, logical); err == nil {
			resolved[logical] = label
		}
	}
	if len(resolved) == 0 {
		return "", nil, &models.ColumnNotFoundError{Column: "close", Labels: labels}
	}

	var warnings []string
	if _, ok := resolved["close"]; ok {
		ohlc, err := schema.ResolveOHLC(labels)
		if err != nil {
			return "", nil, err
		}
		resolved["open"], resolved["high"], resolved["low"] = ohlc.Open, ohlc.High, ohlc.Low
		warnings = ohlc.Warnings
	}

	parts := []string{
		fmt.Sprintf(`substr(%s, 1, 10) AS "date"`, engine.QuoteIdent(dateLabel)),
		tickerExpr(labels, encoding, ticker),
	}
	for _, name := range factColumns {
		label, ok := resolved[strings.ToLower(name)]
		if !ok {
			parts = append(parts, fmt.Sprintf(`NULL AS %q`, name))
			warnings = append(warnings, fmt.Sprintf("column %q not found: projecting NULL", strings.ToLower(name)))
			continue
		}
		parts = append(parts, fmt.Sprintf(`%s AS %q`, engine.QuoteIdent(label), name))
	}
	return strings.Join(parts, ", "), warnings, nil
}

// tickerExpr sources the fact ticker column from a flat symbol column when
// one exists, otherwise from the requested ticker literal. Composite
// artifacts carry the ticker inside their labels, not as a column.
func tickerExpr(labels []string, encoding schema.Encoding, ticker string) string {
	if encoding == schema.EncodingFlat {
		if label, err := schema.Resolve(labels, "symbol"); err == nil {
			return fmt.Sprintf(`%s AS "ticker"`, engine.QuoteIdent(label))
		}
	}
	return fmt.Sprintf(`'%s' AS "ticker"`, strings.ReplaceAll(ticker, "'", "''"))
}
