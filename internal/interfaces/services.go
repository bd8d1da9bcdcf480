package interfaces

import (
	"context"

	"github.com/chevalinn/minilake/internal/models"
)

// PipelineService runs the price side of the lake: extraction of raw
// history and derivation of the staged/fact/dim star schema.
type PipelineService interface {
	// Extract fetches raw daily history for the window and overwrites the
	// raw artifact. Returns the number of rows written. An empty provider
	// response yields a NoDataError and leaves any prior artifact untouched.
	Extract(ctx context.Context, ticker, start, end string) (int, error)

	// Transform derives staged, fact, and dim artifacts for the exact
	// window from the existing raw artifact.
	Transform(ctx context.Context, ticker, start, end string) (*models.TransformResult, error)

	// GetDailyPrices is the consumer read path: returns the staged frame for
	// the window, extracting and transforming on a cache miss.
	GetDailyPrices(ctx context.Context, ticker, start, end string) (*models.Frame, error)
}

// FundamentalsService assembles and caches merged fundamentals records.
type FundamentalsService interface {
	// GetOrUpdate returns the persisted record when fresh, otherwise
	// re-aggregates from both providers and persists the merge.
	GetOrUpdate(ctx context.Context, ticker string, force bool) (*models.FundamentalsRecord, error)

	// Load returns the persisted record without any freshness decision.
	Load(ctx context.Context, ticker string) (*models.FundamentalsRecord, error)
}
