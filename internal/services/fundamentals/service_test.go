package fundamentals

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chevalinn/minilake/internal/common"
	"github.com/chevalinn/minilake/internal/models"
	"github.com/chevalinn/minilake/internal/storage/lakefs"
)

type stubPrices struct {
	snapshot map[string]float64
	err      error
	calls    int
}

func (s *stubPrices) GetDailyHistory(_ context.Context, _ string, _, _ time.Time) ([]models.PriceBar, error) {
	return nil, nil
}

func (s *stubPrices) GetSnapshot(_ context.Context, _ string) (map[string]float64, error) {
	s.calls++
	return s.snapshot, s.err
}

type stubFilings struct {
	directory      map[string]string
	facts          *models.CompanyFacts
	factsErr       error
	directoryCalls int
	factsCalls     int
}

func (s *stubFilings) GetTickerDirectory(_ context.Context) (map[string]string, error) {
	s.directoryCalls++
	return s.directory, nil
}

func (s *stubFilings) GetCompanyFacts(_ context.Context, _ string) (*models.CompanyFacts, error) {
	s.factsCalls++
	return s.facts, s.factsErr
}

func appleFacts() *models.CompanyFacts {
	return &models.CompanyFacts{
		CIK:        320193,
		EntityName: "Apple Inc.",
		Facts: map[string]map[string]models.Concept{
			"us-gaap": {
				"Revenue": {Units: map[string][]models.FilingFact{
					"USD": {
						{Value: 365_817_000_000, End: "2021-09-25", Filed: "2021-10-29", Form: "10-K"},
						{Value: 394_328_000_000, End: "2022-09-24", Filed: "2022-10-28", Form: "10-K"},
						{Value: 82_959_000_000, End: "2022-06-25", Filed: "2022-07-29", Form: "10-Q"},
					},
				}},
				"NetIncomeLoss": {Units: map[string][]models.FilingFact{
					"USD": {
						{Value: 99_803_000_000, End: "2022-09-24", Filed: "2022-10-28", Form: "10-K"},
					},
				}},
			},
		},
	}
}

func newTestService(t *testing.T, prices *stubPrices, filings *stubFilings) (*Service, *lakefs.Store) {
	t.Helper()
	store, err := lakefs.NewStore(common.NewSilentLogger(), t.TempDir())
	require.NoError(t, err)
	return NewService(store, prices, filings, 24*time.Hour, common.NewSilentLogger()), store
}

func TestGetOrUpdate_MergesBothSources(t *testing.T) {
	prices := &stubPrices{snapshot: map[string]float64{
		"PE_Ratio":  28.5,
		"MarketCap": 2.8e12,
		"Revenue":   1.0, // stale market-data figure, regulatory must win
	}}
	filings := &stubFilings{directory: map[string]string{"AAPL": "0000320193"}, facts: appleFacts()}
	svc, _ := newTestService(t, prices, filings)

	rec, err := svc.GetOrUpdate(context.Background(), "aapl", false)
	require.NoError(t, err)
	assert.Equal(t, "AAPL", rec.Ticker)

	// regulatory overwrites market data on collision
	revenue := rec.Metrics["Revenue"]
	assert.Equal(t, models.SourceRegulatory, revenue.Source)
	assert.Equal(t, 394_328_000_000.0, revenue.Value)
	assert.Equal(t, "2022-10-28", revenue.FiledDate)
	assert.Equal(t, "2022-09-24", revenue.EndDate)

	// market-only metrics pass through untouched
	pe := rec.Metrics["PE_Ratio"]
	assert.Equal(t, models.SourceMarketData, pe.Source)
	assert.Equal(t, 28.5, pe.Value)
	assert.Empty(t, pe.FiledDate)

	ni := rec.Metrics["NetIncome"]
	assert.Equal(t, models.SourceRegulatory, ni.Source)
	assert.Equal(t, 99_803_000_000.0, ni.Value)
}

func TestGetOrUpdate_LatestAnnualFilingWins(t *testing.T) {
	// the 10-Q filed latest of all must not be selected
	prices := &stubPrices{}
	filings := &stubFilings{directory: map[string]string{"AAPL": "0000320193"}, facts: appleFacts()}
	svc, _ := newTestService(t, prices, filings)

	rec, err := svc.GetOrUpdate(context.Background(), "AAPL", false)
	require.NoError(t, err)
	assert.Equal(t, 394_328_000_000.0, rec.Metrics["Revenue"].Value)
}

func TestGetOrUpdate_RevenueConceptFallback(t *testing.T) {
	facts := appleFacts()
	gaap := facts.Facts["us-gaap"]
	gaap["SalesRevenueNet"] = gaap["Revenue"]
	delete(gaap, "Revenue")

	filings := &stubFilings{directory: map[string]string{"AAPL": "0000320193"}, facts: facts}
	svc, _ := newTestService(t, &stubPrices{}, filings)

	rec, err := svc.GetOrUpdate(context.Background(), "AAPL", false)
	require.NoError(t, err)
	assert.Equal(t, 394_328_000_000.0, rec.Metrics["Revenue"].Value)
}

func TestGetOrUpdate_RegulatoryFailureDegradesToMarketOnly(t *testing.T) {
	prices := &stubPrices{snapshot: map[string]float64{"PE_Ratio": 28.5}}
	filings := &stubFilings{
		directory: map[string]string{"AAPL": "0000320193"},
		factsErr:  &models.ProviderError{Provider: "EDGAR", StatusCode: 404, Message: "no facts"},
	}
	svc, _ := newTestService(t, prices, filings)

	rec, err := svc.GetOrUpdate(context.Background(), "AAPL", false)
	require.NoError(t, err)
	require.Len(t, rec.Metrics, 1)
	assert.Equal(t, models.SourceMarketData, rec.Metrics["PE_Ratio"].Source)
}

func TestGetOrUpdate_UnknownTickerDegrades(t *testing.T) {
	prices := &stubPrices{snapshot: map[string]float64{"Beta": 1.2}}
	filings := &stubFilings{directory: map[string]string{"AAPL": "0000320193"}}
	svc, _ := newTestService(t, prices, filings)

	rec, err := svc.GetOrUpdate(context.Background(), "ZZZZ", false)
	require.NoError(t, err)
	assert.Len(t, rec.Metrics, 1)
	assert.Zero(t, filings.factsCalls)
}

func TestGetOrUpdate_EmptyMergeNotPersisted(t *testing.T) {
	filings := &stubFilings{directory: map[string]string{}}
	svc, store := newTestService(t, &stubPrices{}, filings)

	_, err := svc.GetOrUpdate(context.Background(), "ZZZZ", false)
	require.Error(t, err)
	assert.True(t, models.IsNoData(err))

	_, statErr := os.Stat(store.FundamentalsPath("ZZZZ"))
	assert.True(t, os.IsNotExist(statErr), "empty merge must not create an artifact")
}

func TestGetOrUpdate_FreshRecordSkipsProviders(t *testing.T) {
	prices := &stubPrices{snapshot: map[string]float64{"PE_Ratio": 28.5}}
	filings := &stubFilings{directory: map[string]string{"AAPL": "0000320193"}, facts: appleFacts()}
	svc, store := newTestService(t, prices, filings)
	ctx := context.Background()

	require.NoError(t, store.WriteFundamentals(ctx, &models.FundamentalsRecord{
		Ticker:    "AAPL",
		Timestamp: time.Now().Add(-23 * time.Hour),
		Metrics:   map[string]models.MetricValue{"Beta": {Value: 1.2, Source: models.SourceMarketData}},
	}))

	rec, err := svc.GetOrUpdate(ctx, "AAPL", false)
	require.NoError(t, err)
	assert.Contains(t, rec.Metrics, "Beta")
	assert.Zero(t, prices.calls)
	assert.Zero(t, filings.factsCalls)
}

func TestGetOrUpdate_StaleRecordRefreshes(t *testing.T) {
	prices := &stubPrices{snapshot: map[string]float64{"PE_Ratio": 28.5}}
	filings := &stubFilings{directory: map[string]string{"AAPL": "0000320193"}, facts: appleFacts()}
	svc, store := newTestService(t, prices, filings)
	ctx := context.Background()

	require.NoError(t, store.WriteFundamentals(ctx, &models.FundamentalsRecord{
		Ticker:    "AAPL",
		Timestamp: time.Now().Add(-25 * time.Hour),
		Metrics:   map[string]models.MetricValue{"Beta": {Value: 1.2, Source: models.SourceMarketData}},
	}))

	rec, err := svc.GetOrUpdate(ctx, "AAPL", false)
	require.NoError(t, err)
	assert.Equal(t, 1, prices.calls)
	assert.NotContains(t, rec.Metrics, "Beta", "stale record is replaced wholesale")
	assert.Contains(t, rec.Metrics, "Revenue")
}

func TestGetOrUpdate_ForceBypassesFreshRecord(t *testing.T) {
	prices := &stubPrices{snapshot: map[string]float64{"PE_Ratio": 28.5}}
	filings := &stubFilings{directory: map[string]string{"AAPL": "0000320193"}, facts: appleFacts()}
	svc, store := newTestService(t, prices, filings)
	ctx := context.Background()

	require.NoError(t, store.WriteFundamentals(ctx, &models.FundamentalsRecord{
		Ticker:    "AAPL",
		Timestamp: time.Now(),
		Metrics:   map[string]models.MetricValue{"Beta": {Value: 1.2, Source: models.SourceMarketData}},
	}))

	_, err := svc.GetOrUpdate(ctx, "AAPL", true)
	require.NoError(t, err)
	assert.Equal(t, 1, prices.calls)
}

func TestTickerDirectoryFetchedOnce(t *testing.T) {
	filings := &stubFilings{directory: map[string]string{"AAPL": "0000320193"}, facts: appleFacts()}
	svc, _ := newTestService(t, &stubPrices{}, filings)
	ctx := context.Background()

	_, err := svc.GetOrUpdate(ctx, "AAPL", true)
	require.NoError(t, err)
	_, err = svc.GetOrUpdate(ctx, "AAPL", true)
	require.NoError(t, err)

	assert.Equal(t, 1, filings.directoryCalls, "directory must be served from the persisted map after first fetch")
}

func TestLoad_ReturnsPersistedRecord(t *testing.T) {
	svc, store := newTestService(t, &stubPrices{}, &stubFilings{})
	ctx := context.Background()

	written := &models.FundamentalsRecord{
		Ticker:    "AAPL",
		Timestamp: time.Now().Add(-48 * time.Hour),
		Metrics:   map[string]models.MetricValue{"Beta": {Value: 1.2, Source: models.SourceMarketData}},
	}
	require.NoError(t, store.WriteFundamentals(ctx, written))

	// Load ignores freshness entirely
	rec, err := svc.Load(ctx, "aapl")
	require.NoError(t, err)
	assert.Equal(t, 1.2, rec.Metrics["Beta"].Value)
}
