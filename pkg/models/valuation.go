package models

// ModelName identifies one valuation model.
type ModelName string

const (
	ModelGraham       ModelName = "graham"
	ModelDDM          ModelName = "ddm"
	ModelAdjustedPE   ModelName = "pe_adjusted"
	ModelAdjustedPVP  ModelName = "pvp_adjusted"
	ModelMagicFormula ModelName = "magic_formula"
)

// PriceModels lists the models whose estimates feed the weighted fair price.
// Magic Formula produces ratios for the scorer, not a price.
var PriceModels = []ModelName{ModelGraham, ModelDDM, ModelAdjustedPE, ModelAdjustedPVP}

// MagicFormulaRatios holds Greenblatt's two ranking ratios. Each ratio is
// undefined when its denominator could not be resolved or is zero.
type MagicFormulaRatios struct {
	EarningsYield     float64 `json:"earnings_yield,omitempty"`
	EarningsYieldOK   bool    `json:"earnings_yield_ok"`
	ReturnOnCapital   float64 `json:"return_on_capital,omitempty"`
	ReturnOnCapitalOK bool    `json:"return_on_capital_ok"`
}

// ValuationEstimate is the output of a single calculator: either a fair
// price or an explicit not-computable marker with the reason. The inputs
// slice records which canonical fields the calculator consumed.
type ValuationEstimate struct {
	Model      ModelName           `json:"model"`
	FairPrice  float64             `json:"fair_price,omitempty"`
	Computable bool                `json:"computable"`
	Reason     string              `json:"reason,omitempty"`
	Inputs     []Field             `json:"inputs,omitempty"`
	Ratios     *MagicFormulaRatios `json:"ratios,omitempty"` // magic formula only
}

// Computed builds a computable estimate.
func Computed(m ModelName, fairPrice float64, inputs ...Field) ValuationEstimate {
	return ValuationEstimate{Model: m, FairPrice: fairPrice, Computable: true, Inputs: inputs}
}

// NotComputable builds an estimate that could not be derived from the
// available fundamentals. It is a valid outcome, not an error.
func NotComputable(m ModelName, reason string, inputs ...Field) ValuationEstimate {
	return ValuationEstimate{Model: m, Reason: reason, Inputs: inputs}
}

// WeightedEstimate is one model's contribution to the aggregated valuation.
// Weight is the renormalized weight actually applied; it is zero for
// not-computable estimates.
type WeightedEstimate struct {
	Model      ModelName `json:"model"`
	FairPrice  float64   `json:"fair_price,omitempty"`
	Weight     float64   `json:"weight"`
	Computable bool      `json:"computable"`
}

// AggregatedValuation is the single weighted fair price combining all
// price-producing estimates. When no estimate is computable the aggregate
// itself is not computable; it never defaults to zero or to the quote.
type AggregatedValuation struct {
	FairPrice     float64            `json:"fair_price,omitempty"`
	Computable    bool               `json:"computable"`
	Contributions []WeightedEstimate `json:"contributions"`
}
