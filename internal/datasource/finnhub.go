package datasource

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"github.com/adalbertobrant/fundamentalistapro/pkg/models"
	"github.com/adalbertobrant/fundamentalistapro/pkg/utils"
)

const finnhubBaseURL = "https://finnhub.io/api/v1"

// SourceFinnhub is the provenance id of the Finnhub REST source.
const SourceFinnhub = "finnhub"

// Finnhub fetches basic financials and quotes from the Finnhub REST API.
// It needs an API key; without one the source reports every ticker as
// unknown instead of failing the run.
type Finnhub struct {
	apiKey  string
	cache   *Cache
	limiter *RateLimiter
}

// NewFinnhub creates the Finnhub source with the given API key.
func NewFinnhub(apiKey string, cacheTTL time.Duration) *Finnhub {
	return &Finnhub{
		apiKey:  apiKey,
		cache:   NewCache(cacheTTL),
		limiter: NewRateLimiter(30, time.Minute), // free tier: 60/min, stay well under
	}
}

// Name returns the source id.
func (f *Finnhub) Name() string { return SourceFinnhub }

// finnhubMetrics mirrors the /stock/metric response. Pointers distinguish
// absent metrics from real zeros.
type finnhubMetrics struct {
	Metric struct {
		PETTM                 *float64 `json:"peTTM"`
		PBAnnual              *float64 `json:"pbAnnual"`
		EPSTTM                *float64 `json:"epsTTM"`
		BookValuePerShare     *float64 `json:"bookValuePerShareAnnual"`
		ROETTM                *float64 `json:"roeTTM"`
		ROITTM                *float64 `json:"roiTTM"`
		GrossMarginTTM        *float64 `json:"grossMarginTTM"`
		OperatingMarginTTM    *float64 `json:"operatingMarginTTM"`
		NetProfitMarginTTM    *float64 `json:"netProfitMarginTTM"`
		CurrentRatioAnnual    *float64 `json:"currentRatioAnnual"`
		DividendYieldAnnual   *float64 `json:"dividendYieldIndicatedAnnual"`
		RevenueGrowth5Y       *float64 `json:"revenueGrowth5Y"`
		TotalDebtToEquity     *float64 `json:"totalDebt/totalEquityAnnual"`
		EnterpriseValue       *float64 `json:"enterpriseValue"`
		SharesOutstandingBase *float64 `json:"shareOutstanding"`
	} `json:"metric"`
}

// finnhubQuote mirrors the /quote response.
type finnhubQuote struct {
	Current float64 `json:"c"`
}

// Fetch retrieves basic financials and the latest quote for the ticker.
func (f *Finnhub) Fetch(ctx context.Context, ticker string) (*models.RawSourceRecord, error) {
	symbol := utils.PrepareTickerVariants(ticker).Finnhub

	if f.apiKey == "" {
		return nil, fmt.Errorf("finnhub %s (no API key): %w", symbol, ErrTickerNotFound)
	}

	cacheKey := "fh:" + symbol
	if cached, ok := f.cache.Get(cacheKey); ok {
		return cached.(*models.RawSourceRecord), nil
	}

	rec := models.NewRawSourceRecord(SourceFinnhub, symbol)
	rec.FetchedAt = time.Now().UTC()

	var metrics finnhubMetrics
	if err := f.getJSON(ctx, "/stock/metric", url.Values{"symbol": {symbol}, "metric": {"all"}}, &metrics); err != nil {
		return nil, err
	}

	m := metrics.Metric
	setPtr(rec, models.FieldPE, m.PETTM, 1)
	setPtr(rec, models.FieldPB, m.PBAnnual, 1)
	setPtr(rec, models.FieldEPS, m.EPSTTM, 1)
	setPtr(rec, models.FieldBVPS, m.BookValuePerShare, 1)
	// Finnhub reports percentages as whole numbers; canonical values are fractions.
	setPtr(rec, models.FieldROE, m.ROETTM, 0.01)
	setPtr(rec, models.FieldROIC, m.ROITTM, 0.01)
	setPtr(rec, models.FieldGrossMargin, m.GrossMarginTTM, 0.01)
	setPtr(rec, models.FieldEBITMargin, m.OperatingMarginTTM, 0.01)
	setPtr(rec, models.FieldNetMargin, m.NetProfitMarginTTM, 0.01)
	setPtr(rec, models.FieldDividendYield, m.DividendYieldAnnual, 0.01)
	setPtr(rec, models.FieldRevenueGrowth5Y, m.RevenueGrowth5Y, 0.01)
	setPtr(rec, models.FieldCurrentRatio, m.CurrentRatioAnnual, 1)
	setPtr(rec, models.FieldGrossDebtToEquity, m.TotalDebtToEquity, 1)
	setPtr(rec, models.FieldEnterpriseValue, m.EnterpriseValue, 1e6) // reported in millions
	setPtr(rec, models.FieldSharesOutstanding, m.SharesOutstandingBase, 1e6)

	var quote finnhubQuote
	if err := f.getJSON(ctx, "/quote", url.Values{"symbol": {symbol}}, &quote); err == nil && quote.Current > 0 {
		rec.SetNum(models.FieldPrice, quote.Current)
	}

	if rec.Empty() {
		return nil, fmt.Errorf("finnhub %s: %w", symbol, ErrTickerNotFound)
	}

	f.cache.Set(cacheKey, rec)
	return rec, nil
}

// getJSON performs an authenticated GET and decodes the JSON response.
func (f *Finnhub) getJSON(ctx context.Context, path string, params url.Values, out any) error {
	if err := f.limiter.Wait(ctx); err != nil {
		return err
	}

	params.Set("token", f.apiKey)
	body, _, err := doGet(ctx, finnhubBaseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("finnhub %s: %w", path, err)
	}
	defer body.Close()

	if err := json.NewDecoder(body).Decode(out); err != nil {
		return fmt.Errorf("decode finnhub %s: %w", path, err)
	}
	return nil
}

// setPtr stores an optional metric, scaled into canonical units.
func setPtr(rec *models.RawSourceRecord, field models.Field, v *float64, scale float64) {
	if v != nil {
		rec.SetNum(field, *v*scale)
	}
}
