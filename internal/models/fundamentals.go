package models

import (
	"sort"
	"time"
)

// Metric sources as recorded in persisted fundamentals artifacts.
const (
	SourceMarketData = "Yahoo Finance"
	SourceRegulatory = "SEC EDGAR"
)

// MetricValue is one fundamental metric as reported by a source. FiledDate
// and EndDate are only present for regulatory metrics.
type MetricValue struct {
	Value     float64 `json:"value"`
	Source    string  `json:"source"`
	FiledDate string  `json:"filed_date,omitempty"`
	EndDate   string  `json:"end_date,omitempty"`
}

// FundamentalsRecord is the merged point-in-time metric mapping for one
// ticker. Timestamp marks when the record was assembled and is the cache
// freshness clock. Records are only ever replaced wholesale.
type FundamentalsRecord struct {
	Ticker    string
	Timestamp time.Time
	Metrics   map[string]MetricValue
}

// MetricNames returns the metric names in sorted order.
func (r *FundamentalsRecord) MetricNames() []string {
	names := make([]string, 0, len(r.Metrics))
	for name := range r.Metrics {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// CompanyFacts is the regulatory provider's nested per-metric per-filing
// time series for one filer.
type CompanyFacts struct {
	CIK        any                           `json:"cik"`
	EntityName string                        `json:"entityName"`
	Facts      map[string]map[string]Concept `json:"facts"`
}

// Concept holds the filing series for one reported concept, keyed by unit.
type Concept struct {
	Units map[string][]FilingFact `json:"units"`
}

// FilingFact is a single filed value for a concept.
type FilingFact struct {
	Value float64 `json:"val"`
	End   string  `json:"end"`
	Filed string  `json:"filed"`
	Form  string  `json:"form"`
	FY    int     `json:"fy"`
	FP    string  `json:"fp"`
}
