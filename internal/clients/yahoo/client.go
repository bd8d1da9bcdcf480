// Package yahoo provides a client for the Yahoo Finance API: daily price
// history and point-in-time quote snapshots.
package yahoo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"github.com/chevalinn/minilake/internal/common"
	"github.com/chevalinn/minilake/internal/interfaces"
	"github.com/chevalinn/minilake/internal/models"
)

const (
	DefaultBaseURL   = "https://query1.finance.yahoo.com"
	DefaultTimeout   = 30 * time.Second
	DefaultRateLimit = 5 // requests per second
)

// Client implements the PriceClient interface
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *common.Logger
	limiter    *rate.Limiter
}

// ClientOption configures the client
type ClientOption func(*Client)

// WithBaseURL sets the base URL
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// WithLogger sets the logger
func WithLogger(logger *common.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithRateLimit sets the rate limit
func WithRateLimit(requestsPerSecond int) ClientOption {
	return func(c *Client) {
		c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond)
	}
}

// WithTimeout sets the HTTP timeout
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// NewClient creates a new Yahoo Finance client
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		limiter: rate.NewLimiter(rate.Limit(DefaultRateLimit), DefaultRateLimit),
		logger:  common.NewSilentLogger(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// get performs a rate-limited GET request
func (c *Client) get(ctx context.Context, path string, params url.Values, result interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}

	reqURL := c.baseURL + path
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	c.logger.Debug().Str("url", c.baseURL+path).Msg("Yahoo API request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &models.ProviderError{Provider: "yahoo", Endpoint: path, Message: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return &models.ProviderError{
			Provider:   "yahoo",
			StatusCode: resp.StatusCode,
			Endpoint:   path,
			Message:    string(body),
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}

// GetDailyHistory retrieves daily OHLCV bars for an inclusive date range.
// An empty window is not an error: callers decide how to treat no data.
func (c *Client) GetDailyHistory(ctx context.Context, ticker string, start, end time.Time) ([]models.PriceBar, error) {
	params := url.Values{}
	params.Set("period1", strconv.FormatInt(start.Unix(), 10))
	// period2 is exclusive upstream; push it one day past the window end
	params.Set("period2", strconv.FormatInt(end.AddDate(0, 0, 1).Unix(), 10))
	params.Set("interval", "1d")
	params.Set("events", "history")

	path := fmt.Sprintf("/v8/finance/chart/%s", url.PathEscape(ticker))

	var resp chartResponse
	if err := c.get(ctx, path, params, &resp); err != nil {
		return nil, err
	}
	if resp.Chart.Error != nil {
		return nil, &models.ProviderError{
			Provider: "yahoo",
			Endpoint: path,
			Message:  resp.Chart.Error.Description,
		}
	}
	if len(resp.Chart.Result) == 0 {
		return nil, nil
	}

	result := resp.Chart.Result[0]
	if len(result.Indicators.Quote) == 0 {
		return nil, nil
	}
	quote := result.Indicators.Quote[0]

	bars := make([]models.PriceBar, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		bar := models.PriceBar{Date: time.Unix(ts, 0).UTC().Truncate(24 * time.Hour)}
		if v := at(quote.Open, i); v != nil {
			bar.Open = *v
		}
		if v := at(quote.High, i); v != nil {
			bar.High = *v
		}
		if v := at(quote.Low, i); v != nil {
			bar.Low = *v
		}
		if v := at(quote.Close, i); v != nil {
			bar.Close = *v
		}
		if v := at(quote.Volume, i); v != nil {
			bar.Volume = int64(*v)
		}
		bars = append(bars, bar)
	}

	return bars, nil
}

func at(vals []*float64, i int) *float64 {
	if i < len(vals) {
		return vals[i]
	}
	return nil
}

type chartResponse struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []*float64 `json:"open"`
					High   []*float64 `json:"high"`
					Low    []*float64 `json:"low"`
					Close  []*float64 `json:"close"`
					Volume []*float64 `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// snapshotFields maps upstream quote attribute names to display metric names.
var snapshotFields = map[string]string{
	"epsTrailingTwelveMonths":    "EPS",
	"epsForward":                 "Forward_EPS",
	"trailingPE":                 "PE_Ratio",
	"forwardPE":                  "Forward_PE",
	"priceToBook":                "Price_to_Book",
	"marketCap":                  "MarketCap",
	"beta":                       "Beta",
	"dividendYield":              "Dividend_Yield",
	"trailingAnnualDividendRate": "Dividend_Rate",
	"fiftyTwoWeekHigh":           "Year_High",
	"fiftyTwoWeekLow":            "Year_Low",
}

// GetSnapshot retrieves the provider's named fundamental attributes for a
// ticker, keyed by display metric name. Attributes the provider omits are
// simply absent from the result.
func (c *Client) GetSnapshot(ctx context.Context, ticker string) (map[string]float64, error) {
	params := url.Values{}
	params.Set("symbols", ticker)

	path := "/v7/finance/quote"

	var resp quoteResponse
	if err := c.get(ctx, path, params, &resp); err != nil {
		return nil, err
	}
	if len(resp.QuoteResponse.Result) == 0 {
		return nil, &models.ProviderError{
			Provider: "yahoo",
			Endpoint: path,
			Message:  fmt.Sprintf("no quote returned for %s", ticker),
		}
	}

	raw := resp.QuoteResponse.Result[0]
	metrics := make(map[string]float64, len(snapshotFields))
	for field, display := range snapshotFields {
		v, ok := raw[field]
		if !ok {
			continue
		}
		if num, ok := asNumber(v); ok {
			metrics[display] = num
		}
	}

	c.logger.Debug().Str("ticker", ticker).Int("metrics", len(metrics)).Msg("Snapshot fetched")
	return metrics, nil
}

func asNumber(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case json.Number:
		n, err := x.Float64()
		return n, err == nil
	default:
		return 0, false
	}
}

type quoteResponse struct {
	QuoteResponse struct {
		Result []map[string]any `json:"result"`
	} `json:"quoteResponse"`
}

// Ensure Client implements PriceClient
var _ interfaces.PriceClient = (*Client)(nil)
