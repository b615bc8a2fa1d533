package datasource

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/adalbertobrant/fundamentalistapro/pkg/models"
	"github.com/adalbertobrant/fundamentalistapro/pkg/utils"
)

// SourceYFinance is the provenance id of the Yahoo Finance source.
const SourceYFinance = "yfinance"

// YFinance fetches quotes, dividend history and OHLCV candles from the
// public Yahoo Finance chart API. Brazilian listings use the ".SA" suffix.
type YFinance struct {
	cache   *Cache
	limiter *RateLimiter
}

// NewYFinance creates the Yahoo Finance source.
func NewYFinance(cacheTTL time.Duration) *YFinance {
	return &YFinance{
		cache:   NewCache(cacheTTL),
		limiter: NewRateLimiter(5, time.Second), // 5 req/s
	}
}

// Name returns the source id.
func (y *YFinance) Name() string { return SourceYFinance }

// --- Yahoo Finance v8 chart API types ---

type yfChartResponse struct {
	Chart struct {
		Result []yfChartResult `json:"result"`
		Error  *yfError        `json:"error"`
	} `json:"chart"`
}

type yfChartResult struct {
	Meta       yfChartMeta  `json:"meta"`
	Timestamp  []int64      `json:"timestamp"`
	Events     *yfEvents    `json:"events"`
	Indicators yfIndicators `json:"indicators"`
}

type yfChartMeta struct {
	Symbol             string  `json:"symbol"`
	Currency           string  `json:"currency"`
	LongName           string  `json:"longName"`
	ShortName          string  `json:"shortName"`
	RegularMarketPrice float64 `json:"regularMarketPrice"`
}

type yfEvents struct {
	Dividends map[string]yfDividend `json:"dividends"`
}

type yfDividend struct {
	Amount float64 `json:"amount"`
	Date   int64   `json:"date"`
}

type yfIndicators struct {
	Quote []yfOHLCV `json:"quote"`
}

type yfOHLCV struct {
	Open   []*float64 `json:"open"`
	High   []*float64 `json:"high"`
	Low    []*float64 `json:"low"`
	Close  []*float64 `json:"close"`
	Volume []*int64   `json:"volume"`
}

type yfError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

// Fetch returns a record with the current quote plus one year of dividend
// history. Yahoo contributes little beyond price and payouts for Brazilian
// listings, which is exactly the gap it fills behind Fundamentus.
func (y *YFinance) Fetch(ctx context.Context, ticker string) (*models.RawSourceRecord, error) {
	symbol := utils.PrepareTickerVariants(ticker).Yahoo

	cacheKey := "yf:" + symbol
	if cached, ok := y.cache.Get(cacheKey); ok {
		return cached.(*models.RawSourceRecord), nil
	}

	result, err := y.chart(ctx, symbol, "1y", "1d", true)
	if err != nil {
		return nil, err
	}

	rec := models.NewRawSourceRecord(SourceYFinance, utils.NormalizeTicker(ticker))
	rec.FetchedAt = time.Now().UTC()
	rec.CompanyName = coalesce(result.Meta.LongName, result.Meta.ShortName)

	if result.Meta.RegularMarketPrice > 0 {
		rec.SetNum(models.FieldPrice, result.Meta.RegularMarketPrice)
	}

	if result.Events != nil {
		for _, d := range result.Events.Dividends {
			rec.Dividends = append(rec.Dividends, models.DividendPayment{
				Date:   time.Unix(d.Date, 0).UTC(),
				Amount: d.Amount,
			})
		}
		sort.Slice(rec.Dividends, func(i, j int) bool {
			return rec.Dividends[i].Date.Before(rec.Dividends[j].Date)
		})
		// Trailing-12-month yield from the payout history and the quote.
		if price := result.Meta.RegularMarketPrice; price > 0 {
			var sum float64
			cutoff := time.Now().AddDate(-1, 0, 0)
			for _, d := range rec.Dividends {
				if d.Date.After(cutoff) {
					sum += d.Amount
				}
			}
			if sum > 0 {
				rec.SetNum(models.FieldDividendYield, sum/price)
			}
		}
	}

	if rec.Empty() {
		return nil, fmt.Errorf("yfinance %s: %w", symbol, ErrTickerNotFound)
	}

	y.cache.Set(cacheKey, rec)
	return rec, nil
}

// GetChart returns OHLCV candles for the charting endpoint. rng is a Yahoo
// range string such as "1mo", "6mo" or "1y".
func (y *YFinance) GetChart(ctx context.Context, ticker, rng string) ([]models.OHLCV, error) {
	symbol := utils.PrepareTickerVariants(ticker).Yahoo

	cacheKey := "yf:chart:" + symbol + ":" + rng
	if cached, ok := y.cache.Get(cacheKey); ok {
		return cached.([]models.OHLCV), nil
	}

	result, err := y.chart(ctx, symbol, rng, "1d", false)
	if err != nil {
		return nil, err
	}
	if len(result.Indicators.Quote) == 0 {
		return nil, fmt.Errorf("yfinance chart %s: empty response", symbol)
	}

	q := result.Indicators.Quote[0]
	candles := make([]models.OHLCV, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		if i >= len(q.Close) || q.Close[i] == nil {
			continue // market holiday gap
		}
		c := models.OHLCV{
			Timestamp: time.Unix(ts, 0).UTC(),
			Close:     *q.Close[i],
		}
		if i < len(q.Open) && q.Open[i] != nil {
			c.Open = *q.Open[i]
		}
		if i < len(q.High) && q.High[i] != nil {
			c.High = *q.High[i]
		}
		if i < len(q.Low) && q.Low[i] != nil {
			c.Low = *q.Low[i]
		}
		if i < len(q.Volume) && q.Volume[i] != nil {
			c.Volume = *q.Volume[i]
		}
		candles = append(candles, c)
	}

	y.cache.Set(cacheKey, candles)
	return candles, nil
}

// chart calls the v8 chart endpoint and unwraps the single result.
func (y *YFinance) chart(ctx context.Context, symbol, rng, interval string, withDividends bool) (*yfChartResult, error) {
	if err := y.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	url := fmt.Sprintf("https://query1.finance.yahoo.com/v8/finance/chart/%s?range=%s&interval=%s",
		symbol, rng, interval)
	if withDividends {
		url += "&events=div"
	}

	body, _, err := doGet(ctx, url, map[string]string{
		"Accept": "application/json",
	})
	if err != nil {
		return nil, fmt.Errorf("yfinance chart %s: %w", symbol, err)
	}
	defer body.Close()

	var resp yfChartResponse
	if err := json.NewDecoder(body).Decode(&resp); err != nil {
		return nil, fmt.Errorf("parse yfinance chart: %w", err)
	}

	if resp.Chart.Error != nil {
		return nil, fmt.Errorf("yfinance API error %s: %s", resp.Chart.Error.Code, resp.Chart.Error.Description)
	}
	if len(resp.Chart.Result) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrTickerNotFound, symbol)
	}
	return &resp.Chart.Result[0], nil
}

// coalesce returns the first non-empty string.
func coalesce(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
