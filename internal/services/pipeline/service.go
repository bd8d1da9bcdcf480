// Package pipeline runs the price side of the lake: raw extraction and
// star-schema derivation, with cache decisions delegated to the resolver.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/chevalinn/minilake/internal/cache"
	"github.com/chevalinn/minilake/internal/common"
	"github.com/chevalinn/minilake/internal/interfaces"
	"github.com/chevalinn/minilake/internal/models"
)

// Service implements PipelineService
type Service struct {
	store    interfaces.LakeStore
	prices   interfaces.PriceClient
	resolver *cache.Resolver
	logger   *common.Logger
}

// NewService creates a new pipeline service
func NewService(store interfaces.LakeStore, prices interfaces.PriceClient, logger *common.Logger) *Service {
	return &Service{
		store:    store,
		prices:   prices,
		resolver: cache.NewResolver(store, logger),
		logger:   logger,
	}
}

// GetDailyPrices returns the staged frame for the exact window, deriving it
// on a cache miss. An existing staged artifact is permanently fresh. When
// the provider has no rows for the window but a prior raw artifact exists,
// the transform still runs against that raw data.
func (s *Service) GetDailyPrices(ctx context.Context, ticker, start, end string) (*models.Frame, error) {
	ticker = strings.ToUpper(ticker)
	key := models.StagedKey{Ticker: ticker, Start: start, End: end}

	if s.resolver.StagedFresh(key) {
		return s.store.ReadStaged(ctx, key)
	}

	_, extractErr := s.Extract(ctx, ticker, start, end)
	if extractErr != nil && !models.IsNoData(extractErr) {
		return nil, extractErr
	}

	if _, err := s.Transform(ctx, ticker, start, end); err != nil {
		var missing *models.MissingRawDataError
		if extractErr != nil && errors.As(err, &missing) {
			// nothing upstream and nothing on disk: empty state
			return nil, extractErr
		}
		return nil, err
	}

	return s.store.ReadStaged(ctx, key)
}

// parseWindow validates a (start, end) window in the wire date format.
func parseWindow(ticker, start, end string) (time.Time, time.Time, error) {
	startT, err := time.Parse(models.DateLayout, start)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid start date %q for %s: %w", start, ticker, err)
	}
	endT, err := time.Parse(models.DateLayout, end)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid end date %q for %s: %w", end, ticker, err)
	}
	if endT.Before(startT) {
		return time.Time{}, time.Time{}, fmt.Errorf("window end %s precedes start %s for %s", end, start, ticker)
	}
	return startT, endT, nil
}

// Ensure Service implements PipelineService
var _ interfaces.PipelineService = (*Service)(nil)
