package models

import "time"

// Recommendation is the three-state verdict emitted by the scorer.
type Recommendation string

const (
	Comprar Recommendation = "COMPRAR"
	Vender  Recommendation = "VENDER"
	Neutro  Recommendation = "NEUTRO"
)

// AnalysisResult is the terminal record of one analysis run. It packages
// the reconciled fundamentals, every model's estimate (including the
// not-computable ones), the aggregated fair price, the bounded score and
// the recommendation. Immutable once assembled.
type AnalysisResult struct {
	Ticker         string                `json:"ticker"`
	CompanyName    string                `json:"company_name,omitempty"`
	Fundamentals   CanonicalFundamentals `json:"fundamentals"`
	Estimates      []ValuationEstimate   `json:"estimates"`
	Aggregated     AggregatedValuation   `json:"aggregated"`
	MagicFormula   MagicFormulaRatios    `json:"magic_formula"`
	Score          float64               `json:"score"`
	Recommendation Recommendation        `json:"recommendation"`
	LowConfidence  bool                  `json:"low_confidence"`
	Strengths      []string              `json:"strengths,omitempty"`
	Weaknesses     []string              `json:"weaknesses,omitempty"`
	GeneratedAt    time.Time             `json:"generated_at"`
}

// Estimate returns the estimate produced by the given model, if present.
func (r *AnalysisResult) Estimate(m ModelName) (ValuationEstimate, bool) {
	for _, e := range r.Estimates {
		if e.Model == m {
			return e, true
		}
	}
	return ValuationEstimate{}, false
}

// OHLCV is a single candlestick bar, served to the charting collaborator.
type OHLCV struct {
	Timestamp time.Time `json:"timestamp"`
	Open      float64   `json:"open"`
	High      float64   `json:"high"`
	Low       float64   `json:"low"`
	Close     float64   `json:"close"`
	Volume    int64     `json:"volume"`
}

// NewsArticle is a headline delivered by the news collaborator.
type NewsArticle struct {
	Source      string    `json:"source"`
	Title       string    `json:"title"`
	Summary     string    `json:"summary,omitempty"`
	URL         string    `json:"url"`
	PublishedAt time.Time `json:"published_at"`
}
