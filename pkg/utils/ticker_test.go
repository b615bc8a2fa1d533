package utils

import (
	"errors"
	"testing"
)

func TestNormalizeTicker(t *testing.T) {
	cases := map[string]string{
		"petr4":    "PETR4",
		" PETR4 ":  "PETR4",
		"PETR4.SA": "PETR4",
		"vale3.sa": "VALE3",
	}
	for in, want := range cases {
		if got := NormalizeTicker(in); got != want {
			t.Errorf("NormalizeTicker(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestValidateTicker(t *testing.T) {
	valid := []string{"PETR4", "VALE3", "BOVA11", "AAPL34", "xpto3", "ITUB4.SA"}
	for _, tk := range valid {
		if err := ValidateTicker(tk); err != nil {
			t.Errorf("ValidateTicker(%q) = %v, want nil", tk, err)
		}
	}

	invalid := []string{"", "  ", "PETROBRAS", "P4", "1234", "PETR", "PETR444"}
	for _, tk := range invalid {
		err := ValidateTicker(tk)
		if err == nil {
			t.Errorf("ValidateTicker(%q) = nil, want error", tk)
			continue
		}
		if !errors.Is(err, ErrMalformedTicker) {
			t.Errorf("ValidateTicker(%q) error = %v, want ErrMalformedTicker", tk, err)
		}
	}
}

func TestPrepareTickerVariants(t *testing.T) {
	v := PrepareTickerVariants("petr4")
	if v.Base != "PETR4" || v.Fundamentus != "PETR4" || v.Finnhub != "PETR4" {
		t.Errorf("unexpected variants: %+v", v)
	}
	if v.Yahoo != "PETR4.SA" {
		t.Errorf("Yahoo variant = %q, want PETR4.SA", v.Yahoo)
	}

	// Already-suffixed input must not double the suffix.
	v = PrepareTickerVariants("PETR4.SA")
	if v.Yahoo != "PETR4.SA" {
		t.Errorf("Yahoo variant = %q, want PETR4.SA", v.Yahoo)
	}
}
