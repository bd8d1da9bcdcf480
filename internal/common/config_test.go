package common

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	assert.Equal(t, "data", config.Storage.Path)
	assert.Equal(t, "https://query1.finance.yahoo.com", config.Clients.Prices.BaseURL)
	assert.Equal(t, 100*time.Millisecond, config.Clients.Edgar.GetPacing())
	assert.Equal(t, 24*time.Hour, config.Fundamentals.GetTTL())
	assert.NotEmpty(t, config.Clients.Edgar.Contact)
}

func TestLoadConfig_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "minilake.toml")
	content := `
[storage]
path = "/srv/lake"

[clients.edgar]
contact = "test-suite/1.0 (ops@example.com)"
pacing = "250ms"

[fundamentals]
ttl = "6h"

[logging]
level = "debug"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	config, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "/srv/lake", config.Storage.Path)
	assert.Equal(t, "test-suite/1.0 (ops@example.com)", config.Clients.Edgar.Contact)
	assert.Equal(t, 250*time.Millisecond, config.Clients.Edgar.GetPacing())
	assert.Equal(t, 6*time.Hour, config.Fundamentals.GetTTL())
	assert.Equal(t, "debug", config.Logging.Level)

	// unset sections keep their defaults
	assert.Equal(t, "https://query1.finance.yahoo.com", config.Clients.Prices.BaseURL)
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.toml"))
	assert.Error(t, err)
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("MINILAKE_DATA_PATH", "/tmp/envlake")
	t.Setenv("MINILAKE_CONTACT", "env-contact/1.0 (env@example.com)")
	t.Setenv("MINILAKE_FUNDAMENTALS_TTL", "1h")

	config, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, "/tmp/envlake", config.Storage.Path)
	assert.Equal(t, "env-contact/1.0 (env@example.com)", config.Clients.Edgar.Contact)
	assert.Equal(t, time.Hour, config.Fundamentals.GetTTL())
}

func TestDurationFallbacks(t *testing.T) {
	prices := PricesConfig{Timeout: "garbage"}
	assert.Equal(t, 30*time.Second, prices.GetTimeout())

	edgar := EdgarConfig{Pacing: "-5ms"}
	assert.Equal(t, 100*time.Millisecond, edgar.GetPacing())

	fund := FundamentalsConfig{}
	assert.Equal(t, FreshnessFundamentals, fund.GetTTL())
}
