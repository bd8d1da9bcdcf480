// Package interfaces defines service contracts for minilake
package interfaces

import (
	"context"
	"time"

	"github.com/chevalinn/minilake/internal/models"
)

// PriceClient provides access to the upstream price and market-data API.
type PriceClient interface {
	// GetDailyHistory retrieves daily OHLCV bars for an inclusive date range.
	GetDailyHistory(ctx context.Context, ticker string, start, end time.Time) ([]models.PriceBar, error)

	// GetSnapshot retrieves the provider's point-in-time named fundamental
	// attributes for a ticker, keyed by display metric name.
	GetSnapshot(ctx context.Context, ticker string) (map[string]float64, error)
}

// FilingsClient provides access to the regulatory-filings API.
type FilingsClient interface {
	// GetTickerDirectory retrieves the static ticker to filer-identifier
	// directory. Identifiers are zero-padded to ten digits.
	GetTickerDirectory(ctx context.Context) (map[string]string, error)

	// GetCompanyFacts retrieves the per-metric per-filing series for a filer.
	GetCompanyFacts(ctx context.Context, cik string) (*models.CompanyFacts, error)
}
