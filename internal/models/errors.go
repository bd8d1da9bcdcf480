package models

import (
	"errors"
	"fmt"
	"strings"
)

// NoDataError reports that a provider returned nothing for the requested
// ticker and window. Non-fatal: callers show an empty state.
type NoDataError struct {
	Ticker string
	Start  string
	End    string
}

func (e *NoDataError) Error() string {
	if e.Start == "" && e.End == "" {
		return fmt.Sprintf("no data available for %s", e.Ticker)
	}
	return fmt.Sprintf("no data available for %s between %s and %s", e.Ticker, e.Start, e.End)
}

// IsNoData reports whether err is a NoDataError.
func IsNoData(err error) bool {
	var e *NoDataError
	return errors.As(err, &e)
}

// ColumnNotFoundError reports that schema normalization failed to resolve a
// logical column against an artifact's labels.
type ColumnNotFoundError struct {
	Column string
	Labels []string
}

func (e *ColumnNotFoundError) Error() string {
	return fmt.Sprintf("column %q not found in [%s]", e.Column, strings.Join(e.Labels, ", "))
}

// MissingRawDataError reports a transform requested before extraction: the
// raw artifact for the ticker does not exist. Fatal for the request.
type MissingRawDataError struct {
	Ticker string
}

func (e *MissingRawDataError) Error() string {
	return fmt.Sprintf("no raw data for %s: run extract first", e.Ticker)
}

// ProviderError reports an HTTP or network failure from an upstream
// provider. Per-source failures in fundamentals aggregation are non-fatal.
type ProviderError struct {
	Provider   string
	StatusCode int
	Endpoint   string
	Message    string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s API error: %s (status: %d, endpoint: %s)", e.Provider, e.Message, e.StatusCode, e.Endpoint)
}

// IdentifierNotFoundError reports a ticker absent from the regulatory
// filer directory. Non-fatal: the regulatory contribution is empty.
type IdentifierNotFoundError struct {
	Ticker string
}

func (e *IdentifierNotFoundError) Error() string {
	return fmt.Sprintf("no filer identifier found for %s", e.Ticker)
}
