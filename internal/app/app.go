// Package app wires configuration, storage, clients, and services into one
// initialized core shared by every command.
package app

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/chevalinn/minilake/internal/clients/edgar"
	"github.com/chevalinn/minilake/internal/clients/yahoo"
	"github.com/chevalinn/minilake/internal/common"
	"github.com/chevalinn/minilake/internal/interfaces"
	"github.com/chevalinn/minilake/internal/services/fundamentals"
	"github.com/chevalinn/minilake/internal/services/pipeline"
	"github.com/chevalinn/minilake/internal/storage/lakefs"
)

// App holds all initialized services and clients.
type App struct {
	Config       *common.Config
	Logger       *common.Logger
	Store        interfaces.LakeStore
	PriceClient  interfaces.PriceClient
	FilingClient interfaces.FilingsClient
	Pipeline     interfaces.PipelineService
	Fundamentals interfaces.FundamentalsService
	RunID        string
}

// getBinaryDir returns the directory containing the executable.
func getBinaryDir() string {
	exe, err := os.Executable()
	if err != nil {
		return "."
	}
	return filepath.Dir(exe)
}

// NewApp initializes storage, clients, and services. configPath may be
// empty, in which case MINILAKE_CONFIG, then minilake.toml next to the
// binary, then config/minilake.toml are tried; a missing file falls back to
// defaults plus environment overrides.
func NewApp(configPath string) (*App, error) {
	binDir := getBinaryDir()

	if configPath == "" {
		configPath = os.Getenv("MINILAKE_CONFIG")
	}
	if configPath == "" {
		for _, candidate := range []string{filepath.Join(binDir, "minilake.toml"), "config/minilake.toml"} {
			if _, err := os.Stat(candidate); err == nil {
				configPath = candidate
				break
			}
		}
	}

	config, err := common.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	runID := uuid.NewString()
	logger := common.NewLogger(config.Logging.Level).WithRunID(runID)

	store, err := lakefs.NewStore(logger, config.Storage.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize lake storage: %w", err)
	}

	priceClient := yahoo.NewClient(
		yahoo.WithBaseURL(config.Clients.Prices.BaseURL),
		yahoo.WithRateLimit(config.Clients.Prices.RateLimit),
		yahoo.WithTimeout(config.Clients.Prices.GetTimeout()),
		yahoo.WithLogger(logger),
	)

	filingClient := edgar.NewClient(config.Clients.Edgar.Contact,
		edgar.WithBaseURL(config.Clients.Edgar.BaseURL),
		edgar.WithDirectoryURL(config.Clients.Edgar.DirectoryURL),
		edgar.WithPacing(config.Clients.Edgar.GetPacing()),
		edgar.WithTimeout(config.Clients.Edgar.GetTimeout()),
		edgar.WithLogger(logger),
	)

	logger.Info().
		Str("version", common.GetVersion()).
		Str("data_path", store.DataPath()).
		Msg("Lake initialized")

	return &App{
		Config:       config,
		Logger:       logger,
		Store:        store,
		PriceClient:  priceClient,
		FilingClient: filingClient,
		Pipeline:     pipeline.NewService(store, priceClient, logger),
		Fundamentals: fundamentals.NewService(store, priceClient, filingClient, config.Fundamentals.GetTTL(), logger),
		RunID:        runID,
	}, nil
}
