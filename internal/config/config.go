// Package config handles configuration loading for the Analisador
// Fundamentalista PRO. It supports YAML config files with environment
// variable overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config represents the complete application configuration.
type Config struct {
	Sources   SourcesConfig   `mapstructure:"sources"   yaml:"sources"`
	Valuation ValuationConfig `mapstructure:"valuation" yaml:"valuation"`
	Scoring   ScoringConfig   `mapstructure:"scoring"   yaml:"scoring"`
	Export    ExportConfig    `mapstructure:"export"    yaml:"export"`
	API       APIConfig       `mapstructure:"api"       yaml:"api"`
	Logging   LoggingConfig   `mapstructure:"logging"   yaml:"logging"`
}

// SourcesConfig holds data source selection and credentials.
type SourcesConfig struct {
	// Priority is the ordered list of source ids. It drives both fetch
	// fallback and field reconciliation: the first source with a valid
	// value for a field wins.
	Priority        []string `mapstructure:"priority"          yaml:"priority"`
	FinnhubAPIKey   string   `mapstructure:"finnhub_api_key"   yaml:"finnhub_api_key"`
	FetchTimeoutSec int      `mapstructure:"fetch_timeout_sec" yaml:"fetch_timeout_sec"`
	CacheTTLSec     int      `mapstructure:"cache_ttl_sec"     yaml:"cache_ttl_sec"`
	NewsLimit       int      `mapstructure:"news_limit"        yaml:"news_limit"`
}

// ValuationConfig holds model parameters and aggregation weights.
type ValuationConfig struct {
	// Weights maps model name → base weight for the aggregated fair price.
	Weights map[string]float64 `mapstructure:"weights" yaml:"weights"`

	// RequiredReturn is the DDM discount rate (decimal).
	RequiredReturn float64 `mapstructure:"required_return" yaml:"required_return"`
	// DDMPriceCapMultiple caps the DDM estimate at this multiple of the
	// current price to keep a runaway growth assumption from dominating.
	DDMPriceCapMultiple float64 `mapstructure:"ddm_price_cap_multiple" yaml:"ddm_price_cap_multiple"`

	// Adjusted P/E: fair multiple starts at PEBaseMultiple, earns
	// PEStepMultiple per quality point and is clamped to [Min,Max].
	PEBaseMultiple float64 `mapstructure:"pe_base_multiple" yaml:"pe_base_multiple"`
	PEStepMultiple float64 `mapstructure:"pe_step_multiple" yaml:"pe_step_multiple"`
	MinPEMultiple  float64 `mapstructure:"min_pe_multiple"  yaml:"min_pe_multiple"`
	MaxPEMultiple  float64 `mapstructure:"max_pe_multiple"  yaml:"max_pe_multiple"`

	// Adjusted P/VP: ROE-tiered book multiples.
	PVPBaseMultiple float64 `mapstructure:"pvp_base_multiple" yaml:"pvp_base_multiple"`
	PVPTier1ROE     float64 `mapstructure:"pvp_tier1_roe"     yaml:"pvp_tier1_roe"`
	PVPTier1        float64 `mapstructure:"pvp_tier1"         yaml:"pvp_tier1"`
	PVPTier2ROE     float64 `mapstructure:"pvp_tier2_roe"     yaml:"pvp_tier2_roe"`
	PVPTier2        float64 `mapstructure:"pvp_tier2"         yaml:"pvp_tier2"`
	PVPTier3ROE     float64 `mapstructure:"pvp_tier3_roe"     yaml:"pvp_tier3_roe"`
	PVPTier3        float64 `mapstructure:"pvp_tier3"         yaml:"pvp_tier3"`
}

// ScoringConfig holds scorer weights and recommendation band boundaries.
// Scores live on a fixed 0–100 scale; SellBelow and BuyAbove split it
// into the three ordered recommendation bands.
type ScoringConfig struct {
	SellBelow float64 `mapstructure:"sell_below" yaml:"sell_below"`
	BuyAbove  float64 `mapstructure:"buy_above"  yaml:"buy_above"`

	UpsideWeight        float64 `mapstructure:"upside_weight"         yaml:"upside_weight"`
	ProfitabilityWeight float64 `mapstructure:"profitability_weight"  yaml:"profitability_weight"`
	BalanceWeight       float64 `mapstructure:"balance_weight"        yaml:"balance_weight"`
	MagicFormulaWeight  float64 `mapstructure:"magic_formula_weight"  yaml:"magic_formula_weight"`
}

// ExportConfig holds analysis export settings.
type ExportConfig struct {
	Dir string `mapstructure:"dir" yaml:"dir"`
}

// APIConfig holds HTTP API server settings.
type APIConfig struct {
	Host        string   `mapstructure:"host"         yaml:"host"`
	Port        int      `mapstructure:"port"         yaml:"port"`
	CORSOrigins []string `mapstructure:"cors_origins" yaml:"cors_origins"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level        string `mapstructure:"level"         yaml:"level"`
	Format       string `mapstructure:"format"        yaml:"format"`
	ActivityFile string `mapstructure:"activity_file" yaml:"activity_file"`
}

// Load reads the configuration from file and environment variables.
// Config file search order:
//  1. ./config/config.yaml (project root)
//  2. ~/.fundamentalista/config.yaml (home directory)
//  3. /etc/fundamentalista/config.yaml (system)
//
// Environment variables override config file values.
// Format: FUNDAMENTALISTA_<SECTION>_<KEY>, e.g. FUNDAMENTALISTA_SOURCES_FINNHUB_API_KEY.
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")
	v.AddConfigPath(filepath.Join(homeDir(), ".fundamentalista"))
	v.AddConfigPath("/etc/fundamentalista")

	v.SetEnvPrefix("FUNDAMENTALISTA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// No config file — defaults + env vars.
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	overrideFromEnv(&cfg)
	return &cfg, nil
}

// LoadFromFile reads configuration from a specific file path.
func LoadFromFile(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigFile(path)
	v.SetEnvPrefix("FUNDAMENTALISTA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file %s: %w", path, err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	overrideFromEnv(&cfg)
	return &cfg, nil
}

// Default returns the built-in defaults without touching the filesystem.
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	var cfg Config
	_ = v.Unmarshal(&cfg)
	return &cfg
}

// setDefaults sets sensible defaults for all config values.
func setDefaults(v *viper.Viper) {
	// Source defaults: Fundamentus is the canonical Brazilian fundamentals
	// page, Finnhub and Yahoo fill gaps.
	v.SetDefault("sources.priority", []string{"fundamentus", "finnhub", "yfinance"})
	v.SetDefault("sources.fetch_timeout_sec", 30)
	v.SetDefault("sources.cache_ttl_sec", 1800)
	v.SetDefault("sources.news_limit", 7)

	// Valuation defaults.
	v.SetDefault("valuation.weights", map[string]float64{
		"graham":       0.3,
		"ddm":          0.2,
		"pe_adjusted":  0.3,
		"pvp_adjusted": 0.2,
	})
	v.SetDefault("valuation.required_return", 0.12)
	v.SetDefault("valuation.ddm_price_cap_multiple", 5.0)
	v.SetDefault("valuation.pe_base_multiple", 8.0)
	v.SetDefault("valuation.pe_step_multiple", 1.5)
	v.SetDefault("valuation.min_pe_multiple", 5.0)
	v.SetDefault("valuation.max_pe_multiple", 25.0)
	v.SetDefault("valuation.pvp_base_multiple", 1.0)
	v.SetDefault("valuation.pvp_tier1_roe", 0.10)
	v.SetDefault("valuation.pvp_tier1", 1.5)
	v.SetDefault("valuation.pvp_tier2_roe", 0.15)
	v.SetDefault("valuation.pvp_tier2", 2.0)
	v.SetDefault("valuation.pvp_tier3_roe", 0.20)
	v.SetDefault("valuation.pvp_tier3", 2.5)

	// Scoring defaults: 0–100 scale split at 40/60.
	v.SetDefault("scoring.sell_below", 40.0)
	v.SetDefault("scoring.buy_above", 60.0)
	v.SetDefault("scoring.upside_weight", 0.40)
	v.SetDefault("scoring.profitability_weight", 0.30)
	v.SetDefault("scoring.balance_weight", 0.15)
	v.SetDefault("scoring.magic_formula_weight", 0.15)

	// Export defaults.
	v.SetDefault("export.dir", "analises")

	// API defaults.
	v.SetDefault("api.host", "0.0.0.0")
	v.SetDefault("api.port", 8080)
	v.SetDefault("api.cors_origins", []string{"http://localhost:3000"})

	// Logging defaults.
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.activity_file", "")
}

// overrideFromEnv explicitly reads sensitive keys from environment variables.
func overrideFromEnv(cfg *Config) {
	if key := os.Getenv("FUNDAMENTALISTA_SOURCES_FINNHUB_API_KEY"); key != "" {
		cfg.Sources.FinnhubAPIKey = key
	}
	// Legacy variable name kept for compatibility with older deployments.
	if key := os.Getenv("FINNHUB_API_KEY"); key != "" && cfg.Sources.FinnhubAPIKey == "" {
		cfg.Sources.FinnhubAPIKey = key
	}
}

// homeDir returns the user's home directory.
func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
