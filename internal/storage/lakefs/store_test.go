package lakefs

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chevalinn/minilake/internal/common"
	"github.com/chevalinn/minilake/internal/models"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(common.NewSilentLogger(), t.TempDir())
	require.NoError(t, err)
	return store
}

func priceFrame() *models.Frame {
	f := models.NewFrame("Date", "Open", "High", "Low", "Close", "Volume", "Symbol")
	f.Rows = [][]any{
		{"2023-01-03", 130.28, 130.90, 124.17, 125.07, int64(112117500), "AAPL"},
		{"2023-01-04", 126.89, 128.66, 125.08, 126.36, int64(89113600), "AAPL"},
	}
	return f
}

func TestPathLayout(t *testing.T) {
	store := newTestStore(t)
	root := store.DataPath()
	key := models.StagedKey{Ticker: "AAPL", Start: "2023-01-01", End: "2023-03-01"}

	assert.Equal(t, filepath.Join(root, "raw", "AAPL.parquet"), store.RawPath("aapl"))
	assert.Equal(t, filepath.Join(root, "staged", "AAPL_2023-01-01_2023-03-01.parquet"), store.StagedPath(key))
	assert.Equal(t, filepath.Join(root, "analytics", "fact_price_AAPL_2023-01-01_2023-03-01.parquet"), store.FactPath(key))
	assert.Equal(t, filepath.Join(root, "analytics", "dim_date_AAPL_2023-01-01_2023-03-01.parquet"), store.DimPath(key))
	assert.Equal(t, filepath.Join(root, "fundamentals", "AAPL_fundamentals.parquet"), store.FundamentalsPath("AAPL"))
}

func TestRawRoundtrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	assert.False(t, store.HasRaw("AAPL"))

	require.NoError(t, store.WriteRaw(ctx, "AAPL", priceFrame()))
	assert.True(t, store.HasRaw("AAPL"))

	got, err := store.ReadRaw(ctx, "AAPL")
	require.NoError(t, err)
	assert.Equal(t, 2, got.NumRows())
	assert.ElementsMatch(t,
		[]string{"Date", "Open", "High", "Low", "Close", "Volume", "Symbol"},
		got.Columns)

	row := got.Rows[0]
	assert.Equal(t, "2023-01-03", models.AsString(got.Cell(0, "Date")))
	assert.Equal(t, "AAPL", models.AsString(got.Cell(0, "Symbol")))
	closeVal, ok := models.AsFloat(got.Cell(0, "Close"))
	require.True(t, ok)
	assert.InDelta(t, 125.07, closeVal, 1e-9)
	assert.Len(t, row, len(got.Columns))
}

func TestCompositeLabelsSurviveRoundtrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	f := models.NewFrame("Date", "('Close', 'AAPL')", "('Volume', 'AAPL')")
	f.Rows = [][]any{{"2023-01-03", 125.07, int64(112117500)}}
	require.NoError(t, store.WriteRaw(ctx, "AAPL", f))

	got, err := store.ReadRaw(ctx, "AAPL")
	require.NoError(t, err)
	assert.Contains(t, got.Columns, "('Close', 'AAPL')")
	assert.Contains(t, got.Columns, "('Volume', 'AAPL')")
}

func TestNullCellsRoundtrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	f := models.NewFrame("date", "Close", "Volume")
	f.Rows = [][]any{
		{"2023-01-03", 125.07, nil},
		{"2023-01-04", nil, int64(10)},
	}
	key := models.StagedKey{Ticker: "AAPL", Start: "2023-01-03", End: "2023-01-04"}
	require.NoError(t, store.WriteFact(ctx, key, f))

	got, err := store.ReadFact(ctx, key)
	require.NoError(t, err)
	require.Equal(t, 2, got.NumRows())
	assert.Nil(t, got.Cell(0, "Volume"))
	assert.Nil(t, got.Cell(1, "Close"))
}

func TestDeterministicEncoding(t *testing.T) {
	a, err := encodeParquetFrame(priceFrame())
	require.NoError(t, err)
	b, err := encodeParquetFrame(priceFrame())
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestWriteRawOverwrites(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.WriteRaw(ctx, "AAPL", priceFrame()))

	small := models.NewFrame("Date", "Close", "Symbol")
	small.Rows = [][]any{{"2023-02-01", 145.43, "AAPL"}}
	require.NoError(t, store.WriteRaw(ctx, "AAPL", small))

	got, err := store.ReadRaw(ctx, "AAPL")
	require.NoError(t, err)
	assert.Equal(t, 1, got.NumRows())
}

func TestFundamentalsRoundtrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	ts := time.Date(2023, 6, 1, 12, 0, 0, 0, time.UTC)
	rec := &models.FundamentalsRecord{
		Ticker:    "AAPL",
		Timestamp: ts,
		Metrics: map[string]models.MetricValue{
			"EPS":     {Value: 5.89, Source: models.SourceMarketData},
			"Revenue": {Value: 394328000000, Source: models.SourceRegulatory, FiledDate: "2022-10-28", EndDate: "2022-09-24"},
		},
	}
	require.NoError(t, store.WriteFundamentals(ctx, rec))

	got, err := store.ReadFundamentals(ctx, "AAPL")
	require.NoError(t, err)
	assert.Equal(t, "AAPL", got.Ticker)
	assert.True(t, got.Timestamp.Equal(ts))
	require.Len(t, got.Metrics, 2)

	eps := got.Metrics["EPS"]
	assert.InDelta(t, 5.89, eps.Value, 1e-9)
	assert.Equal(t, models.SourceMarketData, eps.Source)
	assert.Empty(t, eps.FiledDate)

	rev := got.Metrics["Revenue"]
	assert.Equal(t, models.SourceRegulatory, rev.Source)
	assert.Equal(t, "2022-10-28", rev.FiledDate)
	assert.Equal(t, "2022-09-24", rev.EndDate)
}

func TestTickerCIKMapRoundtrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.ReadTickerCIKMap(ctx)
	require.Error(t, err)

	m := map[string]string{"AAPL": "0000320193", "MSFT": "0000789019"}
	require.NoError(t, store.WriteTickerCIKMap(ctx, m))

	got, err := store.ReadTickerCIKMap(ctx)
	require.NoError(t, err)
	assert.Equal(t, m, got)

	// cache file lives at the canonical path
	_, err = os.Stat(filepath.Join(store.DataPath(), "cache", "ticker_cik_map.json"))
	require.NoError(t, err)
}
