package interfaces

import (
	"context"

	"github.com/chevalinn/minilake/internal/models"
)

// LakeStore is the file-backed artifact store. The existence of an artifact
// at its canonical path is the cache entry; there is no separate index.
// Each artifact is owned by the pipeline stage that produces it.
type LakeStore interface {
	// Raw price artifacts: full history as of last extraction, one per ticker.
	HasRaw(ticker string) bool
	ReadRaw(ctx context.Context, ticker string) (*models.Frame, error)
	WriteRaw(ctx context.Context, ticker string, frame *models.Frame) error

	// Staged artifacts: raw filtered to an exact-match window.
	HasStaged(key models.StagedKey) bool
	ReadStaged(ctx context.Context, key models.StagedKey) (*models.Frame, error)
	WriteStaged(ctx context.Context, key models.StagedKey, frame *models.Frame) error

	// Analytics artifacts: fact and date-dimension tables.
	ReadFact(ctx context.Context, key models.StagedKey) (*models.Frame, error)
	WriteFact(ctx context.Context, key models.StagedKey, frame *models.Frame) error
	ReadDim(ctx context.Context, key models.StagedKey) (*models.Frame, error)
	WriteDim(ctx context.Context, key models.StagedKey, frame *models.Frame) error

	// Fundamentals records: one flattened row per ticker, replaced wholesale.
	ReadFundamentals(ctx context.Context, ticker string) (*models.FundamentalsRecord, error)
	WriteFundamentals(ctx context.Context, rec *models.FundamentalsRecord) error

	// Ticker to filer-identifier map, cached indefinitely once fetched.
	ReadTickerCIKMap(ctx context.Context) (map[string]string, error)
	WriteTickerCIKMap(ctx context.Context, m map[string]string) error

	// DataPath returns the lake root directory.
	DataPath() string

	// Artifact paths (the wire format between pipeline stages).
	RawPath(ticker string) string
	StagedPath(key models.StagedKey) string
	FactPath(key models.StagedKey) string
	DimPath(key models.StagedKey) string
	FundamentalsPath(ticker string) string
}
