// Package edgar provides a client for the SEC EDGAR APIs: the static
// ticker-to-CIK directory and per-filer company facts.
package edgar

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/chevalinn/minilake/internal/common"
	"github.com/chevalinn/minilake/internal/interfaces"
	"github.com/chevalinn/minilake/internal/models"
)

const (
	DefaultBaseURL      = "https://data.sec.gov/api/xbrl/companyfacts"
	DefaultDirectoryURL = "https://www.sec.gov/files/company_tickers.json"
	DefaultTimeout      = 30 * time.Second

	// DefaultPacing is the mandatory delay between requests. EDGAR rate
	// limits aggressively; pacing is a correctness requirement here, not an
	// optimization.
	DefaultPacing = 100 * time.Millisecond
)

// Client implements the FilingsClient interface
type Client struct {
	baseURL      string
	directoryURL string
	contact      string
	httpClient   *http.Client
	logger       *common.Logger
	limiter      *rate.Limiter
}

// ClientOption configures the client
type ClientOption func(*Client)

// WithBaseURL sets the company-facts base URL
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// WithDirectoryURL sets the ticker directory URL
func WithDirectoryURL(directoryURL string) ClientOption {
	return func(c *Client) {
		c.directoryURL = directoryURL
	}
}

// WithLogger sets the logger
func WithLogger(logger *common.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithPacing sets the minimum interval between requests
func WithPacing(interval time.Duration) ClientOption {
	return func(c *Client) {
		if interval <= 0 {
			c.limiter = nil
			return
		}
		c.limiter = rate.NewLimiter(rate.Every(interval), 1)
	}
}

// WithTimeout sets the HTTP timeout
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// NewClient creates a new EDGAR client. The contact string identifies the
// caller on every request; the provider requires it.
func NewClient(contact string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:      DefaultBaseURL,
		directoryURL: DefaultDirectoryURL,
		contact:      contact,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		limiter: rate.NewLimiter(rate.Every(DefaultPacing), 1),
		logger:  common.NewSilentLogger(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// get performs a paced GET request carrying the identification header.
func (c *Client) get(ctx context.Context, reqURL string, result interface{}) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("pacing wait: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", c.contact)
	req.Header.Set("Accept", "application/json")

	c.logger.Debug().Str("url", reqURL).Msg("EDGAR API request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &models.ProviderError{Provider: "edgar", Endpoint: reqURL, Message: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return &models.ProviderError{
			Provider:   "edgar",
			StatusCode: resp.StatusCode,
			Endpoint:   reqURL,
			Message:    string(body),
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}

// GetTickerDirectory fetches the static ticker-to-CIK directory. CIKs are
// stored upstream without leading zeros but the facts API requires ten
// digits, so identifiers are zero-padded here.
func (c *Client) GetTickerDirectory(ctx context.Context) (map[string]string, error) {
	var raw map[string]struct {
		CIK    int64  `json:"cik_str"`
		Ticker string `json:"ticker"`
		Title  string `json:"title"`
	}
	if err := c.get(ctx, c.directoryURL, &raw); err != nil {
		return nil, err
	}

	directory := make(map[string]string, len(raw))
	for _, company := range raw {
		if company.Ticker == "" {
			continue
		}
		directory[strings.ToUpper(company.Ticker)] = fmt.Sprintf("%010d", company.CIK)
	}

	c.logger.Debug().Int("tickers", len(directory)).Msg("Ticker directory fetched")
	return directory, nil
}

// GetCompanyFacts retrieves the nested per-metric per-filing series for a
// ten-digit filer identifier.
func (c *Client) GetCompanyFacts(ctx context.Context, cik string) (*models.CompanyFacts, error) {
	reqURL := fmt.Sprintf("%s/CIK%s.json", c.baseURL, cik)

	var facts models.CompanyFacts
	if err := c.get(ctx, reqURL, &facts); err != nil {
		return nil, err
	}

	return &facts, nil
}

// Ensure Client implements FilingsClient
var _ interfaces.FilingsClient = (*Client)(nil)
