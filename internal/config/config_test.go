package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaults(t *testing.T) {
	cfg := Default()

	if len(cfg.Sources.Priority) != 3 || cfg.Sources.Priority[0] != "fundamentus" {
		t.Errorf("unexpected default priority: %v", cfg.Sources.Priority)
	}
	if cfg.Valuation.RequiredReturn != 0.12 {
		t.Errorf("required_return = %v, want 0.12", cfg.Valuation.RequiredReturn)
	}

	var sum float64
	for _, w := range cfg.Valuation.Weights {
		sum += w
	}
	if sum < 0.999 || sum > 1.001 {
		t.Errorf("default valuation weights sum to %v, want 1", sum)
	}

	if cfg.Scoring.SellBelow >= cfg.Scoring.BuyAbove {
		t.Errorf("band boundaries out of order: sell_below=%v buy_above=%v",
			cfg.Scoring.SellBelow, cfg.Scoring.BuyAbove)
	}
	if cfg.Valuation.MinPEMultiple >= cfg.Valuation.MaxPEMultiple {
		t.Errorf("P/E clamp out of order: min=%v max=%v",
			cfg.Valuation.MinPEMultiple, cfg.Valuation.MaxPEMultiple)
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yaml := `
sources:
  priority: ["finnhub", "fundamentus"]
  fetch_timeout_sec: 10
scoring:
  sell_below: 30
  buy_above: 70
`
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile: %v", err)
	}
	if cfg.Sources.Priority[0] != "finnhub" {
		t.Errorf("priority not overridden: %v", cfg.Sources.Priority)
	}
	if cfg.Sources.FetchTimeoutSec != 10 {
		t.Errorf("fetch_timeout_sec = %d, want 10", cfg.Sources.FetchTimeoutSec)
	}
	if cfg.Scoring.SellBelow != 30 || cfg.Scoring.BuyAbove != 70 {
		t.Errorf("band override failed: %+v", cfg.Scoring)
	}
	// Untouched sections keep defaults.
	if cfg.Valuation.RequiredReturn != 0.12 {
		t.Errorf("defaults lost on partial file: %+v", cfg.Valuation)
	}
}

func TestFinnhubKeyFromEnv(t *testing.T) {
	t.Setenv("FUNDAMENTALISTA_SOURCES_FINNHUB_API_KEY", "test-key-123")
	cfg := Default()
	overrideFromEnv(cfg)
	if cfg.Sources.FinnhubAPIKey != "test-key-123" {
		t.Errorf("env override failed: %q", cfg.Sources.FinnhubAPIKey)
	}
}
