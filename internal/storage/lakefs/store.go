// Package lakefs implements the file-based artifact store for the lake.
// Artifacts live at canonical paths under the lake root; the existence of a
// file at its path is the cache entry, with no separate index.
package lakefs

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/chevalinn/minilake/internal/common"
	"github.com/chevalinn/minilake/internal/interfaces"
	"github.com/chevalinn/minilake/internal/models"
)

const tickerCIKMapFile = "ticker_cik_map.json"

// Store provides file-based parquet and JSON storage for lake artifacts.
type Store struct {
	basePath        string
	rawDir          string
	stagedDir       string
	analyticsDir    string
	fundamentalsDir string
	cacheDir        string
	logger          *common.Logger
}

// NewStore creates a lake store rooted at path.
func NewStore(logger *common.Logger, path string) (*Store, error) {
	if err := os.MkdirAll(path, 0755); err != nil {
		return nil, fmt.Errorf("failed to create lake store path %s: %w", path, err)
	}

	s := &Store{
		basePath:        path,
		rawDir:          filepath.Join(path, "raw"),
		stagedDir:       filepath.Join(path, "staged"),
		analyticsDir:    filepath.Join(path, "analytics"),
		fundamentalsDir: filepath.Join(path, "fundamentals"),
		cacheDir:        filepath.Join(path, "cache"),
		logger:          logger,
	}
	for _, dir := range []string{s.rawDir, s.stagedDir, s.analyticsDir, s.fundamentalsDir, s.cacheDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	logger.Info().Str("path", path).Msg("Lake store opened")
	return s, nil
}

// DataPath returns the lake root directory.
func (s *Store) DataPath() string {
	return s.basePath
}

// RawPath returns the canonical path of a raw price artifact.
func (s *Store) RawPath(ticker string) string {
	return filepath.Join(s.rawDir, sanitizeKey(strings.ToUpper(ticker))+".parquet")
}

// StagedPath returns the canonical path of a staged price artifact.
func (s *Store) StagedPath(key models.StagedKey) string {
	name := fmt.Sprintf("%s_%s_%s.parquet", strings.ToUpper(key.Ticker), key.Start, key.End)
	return filepath.Join(s.stagedDir, sanitizeKey(name))
}

// FactPath returns the canonical path of a fact table artifact.
func (s *Store) FactPath(key models.StagedKey) string {
	name := fmt.Sprintf("fact_price_%s_%s_%s.parquet", strings.ToUpper(key.Ticker), key.Start, key.End)
	return filepath.Join(s.analyticsDir, sanitizeKey(name))
}

// DimPath returns the canonical path of a date dimension artifact.
func (s *Store) DimPath(key models.StagedKey) string {
	name := fmt.Sprintf("dim_date_%s_%s_%s.parquet", strings.ToUpper(key.Ticker), key.Start, key.End)
	return filepath.Join(s.analyticsDir, sanitizeKey(name))
}

// FundamentalsPath returns the canonical path of a fundamentals artifact.
func (s *Store) FundamentalsPath(ticker string) string {
	return filepath.Join(s.fundamentalsDir, sanitizeKey(strings.ToUpper(ticker))+"_fundamentals.parquet")
}

// HasRaw reports whether a raw artifact exists for the ticker.
func (s *Store) HasRaw(ticker string) bool {
	return fileExists(s.RawPath(ticker))
}

// HasStaged reports whether a staged artifact exists for the exact key.
func (s *Store) HasStaged(key models.StagedKey) bool {
	return fileExists(s.StagedPath(key))
}

// ReadRaw reads the raw price artifact for a ticker.
func (s *Store) ReadRaw(_ context.Context, ticker string) (*models.Frame, error) {
	return readParquetFrame(s.RawPath(ticker))
}

// WriteRaw overwrites the raw price artifact for a ticker wholesale.
func (s *Store) WriteRaw(_ context.Context, ticker string, frame *models.Frame) error {
	if err := s.writeFrame(s.RawPath(ticker), frame); err != nil {
		return fmt.Errorf("failed to write raw artifact for %s: %w", ticker, err)
	}
	s.logger.Debug().Str("ticker", ticker).Int("rows", frame.NumRows()).Msg("Raw artifact saved")
	return nil
}

// ReadStaged reads the staged artifact for an exact window key.
func (s *Store) ReadStaged(_ context.Context, key models.StagedKey) (*models.Frame, error) {
	return readParquetFrame(s.StagedPath(key))
}

// WriteStaged writes the staged artifact for an exact window key.
func (s *Store) WriteStaged(_ context.Context, key models.StagedKey, frame *models.Frame) error {
	if err := s.writeFrame(s.StagedPath(key), frame); err != nil {
		return fmt.Errorf("failed to write staged artifact for %s: %w", key.Ticker, err)
	}
	return nil
}

// ReadFact reads the fact table artifact for a window key.
func (s *Store) ReadFact(_ context.Context, key models.StagedKey) (*models.Frame, error) {
	return readParquetFrame(s.FactPath(key))
}

// WriteFact writes the fact table artifact for a window key.
func (s *Store) WriteFact(_ context.Context, key models.StagedKey, frame *models.Frame) error {
	if err := s.writeFrame(s.FactPath(key), frame); err != nil {
		return fmt.Errorf("failed to write fact artifact for %s: %w", key.Ticker, err)
	}
	return nil
}

// ReadDim reads the date dimension artifact for a window key.
func (s *Store) ReadDim(_ context.Context, key models.StagedKey) (*models.Frame, error) {
	return readParquetFrame(s.DimPath(key))
}

// WriteDim writes the date dimension artifact for a window key.
func (s *Store) WriteDim(_ context.Context, key models.StagedKey, frame *models.Frame) error {
	if err := s.writeFrame(s.DimPath(key), frame); err != nil {
		return fmt.Errorf("failed to write dim artifact for %s: %w", key.Ticker, err)
	}
	return nil
}

// ReadTickerCIKMap reads the cached ticker to filer-identifier map.
func (s *Store) ReadTickerCIKMap(_ context.Context) (map[string]string, error) {
	path := filepath.Join(s.cacheDir, tickerCIKMapFile)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("ticker map not cached")
		}
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	var m map[string]string
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return m, nil
}

// WriteTickerCIKMap caches the ticker to filer-identifier map. The map has
// no TTL: the directory changes rarely and is only refetched when absent.
func (s *Store) WriteTickerCIKMap(_ context.Context, m map[string]string) error {
	data, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("failed to marshal ticker map: %w", err)
	}
	path := filepath.Join(s.cacheDir, tickerCIKMapFile)
	if err := atomicWrite(path, data); err != nil {
		return fmt.Errorf("failed to write ticker map: %w", err)
	}
	s.logger.Debug().Int("tickers", len(m)).Msg("Ticker map cached")
	return nil
}

// writeFrame encodes a frame to parquet and writes it atomically.
func (s *Store) writeFrame(path string, frame *models.Frame) error {
	data, err := encodeParquetFrame(frame)
	if err != nil {
		return err
	}
	return atomicWrite(path, data)
}

// --- helpers ---

func sanitizeKey(key string) string {
	r := strings.NewReplacer("/", "_", "\\", "_", ":", "_", "..", "_")
	return r.Replace(key)
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func atomicWrite(target string, data []byte) error {
	dir := filepath.Dir(target)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	tmpFile, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	if _, err := tmpFile.Write(data); err != nil {
		tmpFile.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, target); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to rename temp file: %w", err)
	}
	return nil
}

// Ensure Store implements LakeStore
var _ interfaces.LakeStore = (*Store)(nil)
