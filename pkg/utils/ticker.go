// Package utils provides ticker normalization and Brazilian number
// formatting helpers shared across the application.
package utils

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrMalformedTicker is returned when a ticker identifier is empty or does
// not look like a B3 symbol. It is the only reportable error of the
// analysis engine and is surfaced before any computation runs.
var ErrMalformedTicker = errors.New("malformed ticker")

// b3Pattern matches common B3 symbols: four letters plus one or two digits
// (PETR4, VALE3, ITUB4, BOVA11, and BDRs like AAPL34).
var b3Pattern = regexp.MustCompile(`^[A-Z]{4}\d{1,2}$`)

// NormalizeTicker uppercases the input and strips the Yahoo ".SA" suffix,
// producing the base B3 symbol (e.g. "petr4.sa" → "PETR4").
func NormalizeTicker(ticker string) string {
	t := strings.ToUpper(strings.TrimSpace(ticker))
	return strings.TrimSuffix(t, ".SA")
}

// ValidateTicker checks that the input resolves to a plausible B3 symbol.
func ValidateTicker(ticker string) error {
	base := NormalizeTicker(ticker)
	if base == "" {
		return fmt.Errorf("%w: empty", ErrMalformedTicker)
	}
	if !b3Pattern.MatchString(base) {
		return fmt.Errorf("%w: %q", ErrMalformedTicker, ticker)
	}
	return nil
}

// TickerVariants holds the per-source spellings of one ticker. Fundamentus
// and Finnhub use the bare B3 symbol while Yahoo Finance expects the ".SA"
// suffix for Brazilian listings.
type TickerVariants struct {
	Original    string
	Base        string
	Fundamentus string
	Finnhub     string
	Yahoo       string
}

// PrepareTickerVariants derives the per-source spellings from user input.
func PrepareTickerVariants(ticker string) TickerVariants {
	base := NormalizeTicker(ticker)
	yahoo := base
	if b3Pattern.MatchString(base) {
		yahoo = base + ".SA"
	}
	return TickerVariants{
		Original:    ticker,
		Base:        base,
		Fundamentus: base,
		Finnhub:     base,
		Yahoo:       yahoo,
	}
}
