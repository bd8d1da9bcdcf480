// Package fundamentals aggregates fundamental metrics from the market-data
// and regulatory providers into one merged, TTL-cached record per ticker.
package fundamentals

import (
	"context"
	"strings"
	"time"

	"github.com/chevalinn/minilake/internal/cache"
	"github.com/chevalinn/minilake/internal/common"
	"github.com/chevalinn/minilake/internal/interfaces"
	"github.com/chevalinn/minilake/internal/models"
)

// regulatoryConcepts maps each canonical metric name to the provider concept
// tags that can supply it, in preference order. Only the first concept
// present in the filer's facts is used.
var regulatoryConcepts = []struct {
	Metric   string
	Concepts []string
}{
	{"Revenue", []string{"Revenue", "SalesRevenueNet"}},
	{"NetIncome", []string{"NetIncomeLoss"}},
	{"TotalAssets", []string{"Assets"}},
	{"TotalLiabilities", []string{"Liabilities"}},
}

// annualForm is the only filing form considered for regulatory metrics.
const annualForm = "10-K"

// Service implements FundamentalsService
type Service struct {
	store    interfaces.LakeStore
	prices   interfaces.PriceClient
	filings  interfaces.FilingsClient
	resolver *cache.Resolver
	ttl      time.Duration
	logger   *common.Logger
}

// NewService creates a new fundamentals service
func NewService(store interfaces.LakeStore, prices interfaces.PriceClient, filings interfaces.FilingsClient, ttl time.Duration, logger *common.Logger) *Service {
	if ttl <= 0 {
		ttl = common.FreshnessFundamentals
	}
	return &Service{
		store:    store,
		prices:   prices,
		filings:  filings,
		resolver: cache.NewResolver(store, logger),
		ttl:      ttl,
		logger:   logger,
	}
}

// GetOrUpdate returns the persisted record when it is within the TTL,
// otherwise re-aggregates from both providers and persists the merge. Either
// provider may fail without failing the aggregation; only an empty merge is
// an error, and an empty merge is never persisted.
func (s *Service) GetOrUpdate(ctx context.Context, ticker string, force bool) (*models.FundamentalsRecord, error) {
	ticker = strings.ToUpper(ticker)

	if rec, fresh := s.resolver.FundamentalsFresh(ctx, ticker, s.ttl, force); fresh {
		s.logger.Debug().Str("ticker", ticker).Time("assembled", rec.Timestamp).Msg("Fundamentals cache hit")
		return rec, nil
	}

	metrics := s.fromMarketData(ctx, ticker)
	for name, value := range s.fromFilings(ctx, ticker) {
		// regulatory values overwrite market-data values on collision
		metrics[name] = value
	}

	if len(metrics) == 0 {
		return nil, &models.NoDataError{Ticker: ticker}
	}

	rec := &models.FundamentalsRecord{
		Ticker:    ticker,
		Timestamp: time.Now(),
		Metrics:   metrics,
	}
	if err := s.store.WriteFundamentals(ctx, rec); err != nil {
		return nil, err
	}

	s.logger.Info().Str("ticker", ticker).Int("metrics", len(metrics)).
		Str("path", s.store.FundamentalsPath(ticker)).Msg("Fundamentals assembled")
	return rec, nil
}

// Load returns the persisted record without any freshness decision.
func (s *Service) Load(ctx context.Context, ticker string) (*models.FundamentalsRecord, error) {
	return s.store.ReadFundamentals(ctx, strings.ToUpper(ticker))
}

// fromMarketData collects the market-data provider's snapshot metrics. A
// provider failure degrades to an empty contribution.
func (s *Service) fromMarketData(ctx context.Context, ticker string) map[string]models.MetricValue {
	snapshot, err := s.prices.GetSnapshot(ctx, ticker)
	if err != nil {
		s.logger.Warn().Err(err).Str("ticker", ticker).Msg("Market-data snapshot unavailable")
		return map[string]models.MetricValue{}
	}

	metrics := make(map[string]models.MetricValue, len(snapshot))
	for name, value := range snapshot {
		metrics[name] = models.MetricValue{Value: value, Source: models.SourceMarketData}
	}
	return metrics
}

// fromFilings collects annual regulatory metrics for the ticker's filer. Any
// failure along the way degrades to an empty contribution.
func (s *Service) fromFilings(ctx context.Context, ticker string) map[string]models.MetricValue {
	cik, err := s.tickerCIK(ctx, ticker)
	if err != nil {
		s.logger.Warn().Err(err).Str("ticker", ticker).Msg("Filer identifier unavailable")
		return map[string]models.MetricValue{}
	}

	facts, err := s.filings.GetCompanyFacts(ctx, cik)
	if err != nil {
		s.logger.Warn().Err(err).Str("ticker", ticker).Str("cik", cik).Msg("Company facts unavailable")
		return map[string]models.MetricValue{}
	}

	gaap, ok := facts.Facts["us-gaap"]
	if !ok {
		return map[string]models.MetricValue{}
	}

	metrics := map[string]models.MetricValue{}
	for _, mapping := range regulatoryConcepts {
		for _, concept := range mapping.Concepts {
			c, ok := gaap[concept]
			if !ok {
				continue
			}
			if latest, ok := latestAnnual(c.Units["USD"]); ok {
				metrics[mapping.Metric] = models.MetricValue{
					Value:     latest.Value,
					Source:    models.SourceRegulatory,
					FiledDate: latest.Filed,
					EndDate:   latest.End,
				}
			}
			break
		}
	}
	return metrics
}

// latestAnnual picks the annual filing with the most recent filed date.
func latestAnnual(series []models.FilingFact) (models.FilingFact, bool) {
	var latest models.FilingFact
	found := false
	for _, fact := range series {
		if fact.Form != annualForm {
			continue
		}
		if !found || fact.Filed > latest.Filed {
			latest = fact
			found = true
		}
	}
	return latest, found
}

// tickerCIK resolves a ticker to its zero-padded filer identifier, fetching
// and persisting the directory on first use. The persisted map never expires.
func (s *Service) tickerCIK(ctx context.Context, ticker string) (string, error) {
	mapping, err := s.store.ReadTickerCIKMap(ctx)
	if err != nil {
		mapping, err = s.filings.GetTickerDirectory(ctx)
		if err != nil {
			return "", err
		}
		if err := s.store.WriteTickerCIKMap(ctx, mapping); err != nil {
			s.logger.Warn().Err(err).Msg("Failed to persist ticker directory")
		}
		s.logger.Info().Int("tickers", len(mapping)).Msg("Ticker directory fetched")
	}

	cik, ok := mapping[ticker]
	if !ok {
		return "", &models.IdentifierNotFoundError{Ticker: ticker}
	}
	return cik, nil
}

// Ensure Service implements FundamentalsService
var _ interfaces.FundamentalsService = (*Service)(nil)
