// Package schema resolves logical column names against the physical column
// labels of lake artifacts. Two physical encodings exist: flat labels
// ("Close", "close") and composite labels, where an upstream provider
// serializes a (field, ticker) pair into a single string such as
// "('Close', 'AAPL')".
package schema

import (
	"fmt"
	"strings"

	"github.com/chevalinn/minilake/internal/models"
)

// Encoding is the physical column-label shape of an artifact, determined
// once per artifact rather than re-sniffed per lookup.
type Encoding int

const (
	EncodingFlat Encoding = iota
	EncodingComposite
)

func (e Encoding) String() string {
	if e == EncodingComposite {
		return "composite"
	}
	return "flat"
}

// DetectEncoding classifies an artifact's column labels. A single composite
// label makes the whole artifact composite.
func DetectEncoding(labels []string) Encoding {
	for _, l := range labels {
		if strings.Contains(l, "',") {
			return EncodingComposite
		}
	}
	return EncodingFlat
}

// Resolve maps a logical column name to a physical label. Case-insensitive
// exact matches always win; otherwise composite labels embedding the
// capitalized or upper-cased logical name are scanned in order. Returns
// ColumnNotFoundError when no label matches.
func Resolve(labels []string, logical string) (string, error) {
	for _, l := range labels {
		if strings.EqualFold(l, logical) {
			return l, nil
		}
	}

	// Composite scan: a label like "('Close', 'AAPL')" embeds the field
	// name in its serialized tuple head.
	for _, embedded := range compositeForms(logical) {
		for _, l := range labels {
			if strings.Contains(l, embedded) {
				return l, nil
			}
		}
	}

	return "", &models.ColumnNotFoundError{Column: logical, Labels: labels}
}

func compositeForms(logical string) []string {
	capitalized := capitalize(logical)
	upper := strings.ToUpper(logical)
	forms := []string{
		fmt.Sprintf("('%s'", capitalized),
		fmt.Sprintf(`("%s"`, capitalized),
	}
	if upper != capitalized {
		forms = append(forms,
			fmt.Sprintf("('%s'", upper),
			fmt.Sprintf(`("%s"`, upper),
		)
	}
	return forms
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + strings.ToLower(s[1:])
}

// OHLC holds the resolved physical labels for the price columns. A label is
// empty when the logical column could not be resolved at all. Warnings
// record degraded-mode substitutions so callers can distinguish them from a
// clean resolution.
type OHLC struct {
	Open     string
	High     string
	Low      string
	Close    string
	Warnings []string
}

// ResolveOHLC resolves the open/high/low/close columns. When only close
// resolves, open/high/low fall back to the close label: a degraded mode the
// caller surfaces as a warning, not a failure. An artifact without even a
// close column fails.
func ResolveOHLC(labels []string) (*OHLC, error) {
	closeLabel, err := Resolve(labels, "close")
	if err != nil {
		return nil, err
	}

	out := &OHLC{Close: closeLabel}
	for _, col := range []struct {
		logical string
		dest    *string
	}{
		{"open", &out.Open},
		{"high", &out.High},
		{"low", &out.Low},
	} {
		label, err := Resolve(labels, col.logical)
		if err != nil {
			*col.dest = closeLabel
			out.Warnings = append(out.Warnings,
				fmt.Sprintf("column %q not found: using %q", col.logical, closeLabel))
			continue
		}
		*col.dest = label
	}

	return out, nil
}
