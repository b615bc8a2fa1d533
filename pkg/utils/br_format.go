package utils

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseBRNumber converts a Fundamentus-style numeric cell into a float64.
// Fundamentus uses "." as the thousands separator and "," as the decimal
// separator, prefixes currency with "R$" and suffixes percentages with
// "%". Percentages are returned as fractions (e.g. "12,5%" → 0.125).
// Dashes and empty cells are reported as not-present rather than zero so
// the reconciler can tell a missing value from a legitimate zero.
func ParseBRNumber(text string) (float64, bool, error) {
	s := strings.TrimSpace(text)
	if s == "" || s == "-" {
		return 0, false, nil
	}

	s = strings.TrimSpace(strings.ReplaceAll(s, "R$", ""))

	isPercent := strings.Contains(s, "%")
	if isPercent {
		s = strings.TrimSpace(strings.ReplaceAll(s, "%", ""))
	}

	// Thousands dots first, then the decimal comma.
	s = strings.ReplaceAll(s, ".", "")
	s = strings.ReplaceAll(s, ",", ".")

	// Strip any leftover non-numeric noise (nbsp, units).
	var b strings.Builder
	for _, r := range s {
		if (r >= '0' && r <= '9') || r == '.' || r == '-' {
			b.WriteRune(r)
		}
	}
	s = b.String()
	if s == "" || s == "-" {
		return 0, false, nil
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false, fmt.Errorf("parse %q: %w", text, err)
	}
	if isPercent {
		v /= 100
	}
	return v, true, nil
}

// FormatBRL renders a value as Brazilian currency for CLI output.
func FormatBRL(v float64) string {
	s := strconv.FormatFloat(v, 'f', 2, 64)
	parts := strings.SplitN(s, ".", 2)
	intPart, frac := parts[0], parts[1]

	neg := strings.HasPrefix(intPart, "-")
	intPart = strings.TrimPrefix(intPart, "-")

	var groups []string
	for len(intPart) > 3 {
		groups = append([]string{intPart[len(intPart)-3:]}, groups...)
		intPart = intPart[:len(intPart)-3]
	}
	groups = append([]string{intPart}, groups...)

	out := "R$ " + strings.Join(groups, ".") + "," + frac
	if neg {
		out = "-" + out
	}
	return out
}

// FormatPct renders a fraction as a percentage for CLI output.
func FormatPct(v float64) string {
	return strconv.FormatFloat(v*100, 'f', 2, 64) + "%"
}
