package models

import "time"

// PriceBar represents a single day's price data from the upstream provider.
type PriceBar struct {
	Date   time.Time `json:"date"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume int64     `json:"volume"`
}

// DateLayout is the wire format for dates in artifact keys and columns.
const DateLayout = "2006-01-02"

// StagedKey identifies a staged price artifact. The key is an exact-match
// window: a staged artifact for a superset window is never reused.
type StagedKey struct {
	Ticker string
	Start  string
	End    string
}

// TransformResult summarizes one star-schema derivation. Warnings carry the
// degraded-mode normalization decisions (for example open/high/low falling
// back to close) so callers can distinguish them from a clean run.
type TransformResult struct {
	Ticker     string
	Start      string
	End        string
	StagedRows int
	FactRows   int
	DimRows    int
	Warnings   []string
}

// Degraded reports whether the transform used any degraded-mode column
// substitution.
func (r *TransformResult) Degraded() bool {
	return len(r.Warnings) > 0
}
