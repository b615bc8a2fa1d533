// Package score converts a reconciled fundamentals record plus the
// aggregated valuation into a bounded 0–100 score and a three-state
// recommendation (COMPRAR / NEUTRO / VENDER).
package score

import (
	"fmt"

	"github.com/adalbertobrant/fundamentalistapro/pkg/models"
)

// Score scale bounds. Band boundaries move via Params; the scale itself
// is fixed so scores from different configurations stay comparable.
const (
	ScaleMin = 0.0
	ScaleMid = 50.0
	ScaleMax = 100.0
)

// Params holds the scorer's weights and recommendation band boundaries.
type Params struct {
	SellBelow float64 // scores below this are VENDER
	BuyAbove  float64 // scores at or above this are COMPRAR

	UpsideWeight        float64
	ProfitabilityWeight float64
	BalanceWeight       float64
	MagicFormulaWeight  float64
}

// DefaultParams returns the built-in scorer configuration.
func DefaultParams() Params {
	return Params{
		SellBelow:           40,
		BuyAbove:            60,
		UpsideWeight:        0.40,
		ProfitabilityWeight: 0.30,
		BalanceWeight:       0.15,
		MagicFormulaWeight:  0.15,
	}
}

// Result is the scorer's output. LowConfidence marks runs where the
// aggregated fair price was not computable and the score fell back to the
// non-price signals only.
type Result struct {
	Score          float64
	Recommendation models.Recommendation
	LowConfidence  bool
	Strengths      []string
	Weaknesses     []string
}

// signal is one scored group, normalized to [-1, 1].
type signal struct {
	weight float64
	value  float64
	ok     bool // false when every input of the group is unresolved
}

// Score evaluates the fundamentals and valuation into a bounded score and
// recommendation. It never fails: fully unresolved inputs produce the
// neutral midpoint with LowConfidence set.
func Score(f models.CanonicalFundamentals, agg models.AggregatedValuation, mf models.MagicFormulaRatios, p Params) Result {
	res := Result{}

	upside := upsideSignal(f, agg, p, &res)
	res.LowConfidence = !upside.ok

	signals := []signal{
		upside,
		profitabilitySignal(f, p, &res),
		balanceSignal(f, p, &res),
		magicFormulaSignal(mf, p, &res),
	}

	var weighted, totalWeight float64
	for _, s := range signals {
		if !s.ok {
			continue
		}
		weighted += s.weight * s.value
		totalWeight += s.weight
	}

	score := ScaleMid
	if totalWeight > 0 {
		// Renormalize over the available groups so a missing price signal
		// reduces confidence, not the score's range.
		score = ScaleMid + ScaleMid*(weighted/totalWeight)
	} else {
		res.LowConfidence = true
	}

	if score < ScaleMin {
		score = ScaleMin
	}
	if score > ScaleMax {
		score = ScaleMax
	}
	res.Score = score
	res.Recommendation = Recommend(score, p)
	return res
}

// Recommend maps a score onto the three ordered recommendation bands.
func Recommend(score float64, p Params) models.Recommendation {
	switch {
	case score < p.SellBelow:
		return models.Vender
	case score >= p.BuyAbove:
		return models.Comprar
	default:
		return models.Neutro
	}
}

// upsideSignal scores the discount of the aggregated fair price against
// the current quote. Not computable when either side is missing.
func upsideSignal(f models.CanonicalFundamentals, agg models.AggregatedValuation, p Params, res *Result) signal {
	price, priceOK := f.Get(models.FieldPrice)
	if !agg.Computable || !priceOK || price <= 0 {
		return signal{weight: p.UpsideWeight}
	}

	upside := (agg.FairPrice - price) / price

	var pts float64
	switch {
	case upside > 0.30:
		pts = 3
	case upside > 0.15:
		pts = 2
	case upside > 0.05:
		pts = 1
	case upside < -0.30:
		pts = -3
	case upside < -0.15:
		pts = -2
	case upside < -0.05:
		pts = -1
	}

	if upside > 0 {
		res.Strengths = append(res.Strengths,
			fmt.Sprintf("Potencial de valorização sobre a cotação atual: %.2f%%", upside*100))
	} else if upside < 0 {
		res.Weaknesses = append(res.Weaknesses,
			fmt.Sprintf("Cotação acima do preço justo ponderado: %.2f%%", upside*100))
	}

	return signal{weight: p.UpsideWeight, value: pts / 3, ok: true}
}

// profitabilitySignal scores ROE and ROIC sign and magnitude.
func profitabilitySignal(f models.CanonicalFundamentals, p Params, res *Result) signal {
	var pts, max float64
	any := false

	if roe, ok := f.Get(models.FieldROE); ok {
		any = true
		max += 2
		switch {
		case roe > 0.20:
			pts += 2
			res.Strengths = append(res.Strengths, fmt.Sprintf("ROE excelente: %.2f%%", roe*100))
		case roe > 0.10:
			pts++
			res.Strengths = append(res.Strengths, fmt.Sprintf("ROE bom: %.2f%%", roe*100))
		case roe < 0:
			pts -= 2
			res.Weaknesses = append(res.Weaknesses, fmt.Sprintf("ROE negativo: %.2f%%", roe*100))
		}
	}

	if roic, ok := f.Get(models.FieldROIC); ok {
		any = true
		max += 2
		switch {
		case roic > 0.15:
			pts += 2
			res.Strengths = append(res.Strengths, fmt.Sprintf("ROIC excelente: %.2f%%", roic*100))
		case roic > 0.10:
			pts++
			res.Strengths = append(res.Strengths, fmt.Sprintf("ROIC bom: %.2f%%", roic*100))
		case roic < 0:
			pts -= 2
			res.Weaknesses = append(res.Weaknesses, fmt.Sprintf("ROIC negativo: %.2f%%", roic*100))
		}
	}

	if !any {
		return signal{weight: p.ProfitabilityWeight}
	}
	return signal{weight: p.ProfitabilityWeight, value: pts / max, ok: true}
}

// balanceSignal scores leverage, liquidity, earnings multiple and revenue
// growth sanity checks.
func balanceSignal(f models.CanonicalFundamentals, p Params, res *Result) signal {
	var pts, max float64
	any := false

	if de, ok := f.Get(models.FieldGrossDebtToEquity); ok {
		any = true
		max += 2
		switch {
		case de >= 0 && de < 0.5:
			pts++
			res.Strengths = append(res.Strengths, fmt.Sprintf("Endividamento baixo (dívida bruta/PL): %.2f", de))
		case de > 1.0:
			pts--
			res.Weaknesses = append(res.Weaknesses, fmt.Sprintf("Endividamento alto (dívida bruta/PL): %.2f", de))
		case de < 0:
			pts -= 2
			res.Weaknesses = append(res.Weaknesses, fmt.Sprintf("Dívida bruta/PL negativa (PL negativo?): %.2f", de))
		}
	}

	if cr, ok := f.Get(models.FieldCurrentRatio); ok {
		any = true
		max++
		switch {
		case cr > 2.0:
			pts++
			res.Strengths = append(res.Strengths, fmt.Sprintf("Liquidez corrente ótima: %.2f", cr))
		case cr < 1.0:
			pts--
			res.Weaknesses = append(res.Weaknesses, fmt.Sprintf("Liquidez corrente baixa: %.2f", cr))
		}
	}

	if pl, ok := f.Get(models.FieldPE); ok {
		any = true
		max++
		if pl < 10 {
			pts++
			res.Strengths = append(res.Strengths, fmt.Sprintf("P/L baixo: %.2f", pl))
		}
	}

	if cres, ok := f.Get(models.FieldRevenueGrowth5Y); ok {
		any = true
		max++
		switch {
		case cres > 0.10:
			pts++
			res.Strengths = append(res.Strengths, fmt.Sprintf("Crescimento da receita (5a) bom: %.2f%%", cres*100))
		case cres < 0:
			pts--
			res.Weaknesses = append(res.Weaknesses, fmt.Sprintf("Crescimento da receita (5a) negativo: %.2f%%", cres*100))
		}
	}

	if !any {
		return signal{weight: p.BalanceWeight}
	}
	return signal{weight: p.BalanceWeight, value: pts / max, ok: true}
}

// magicFormulaSignal scores Greenblatt's earnings yield and return on capital.
func magicFormulaSignal(mf models.MagicFormulaRatios, p Params, res *Result) signal {
	var pts, max float64
	any := false

	if mf.EarningsYieldOK {
		any = true
		max++
		switch {
		case mf.EarningsYield > 0.10:
			pts++
			res.Strengths = append(res.Strengths, fmt.Sprintf("Earnings yield (Greenblatt) atrativo: %.2f%%", mf.EarningsYield*100))
		case mf.EarningsYield < 0:
			pts--
			res.Weaknesses = append(res.Weaknesses, fmt.Sprintf("Earnings yield (Greenblatt) negativo: %.2f%%", mf.EarningsYield*100))
		}
	}

	if mf.ReturnOnCapitalOK {
		any = true
		max++
		switch {
		case mf.ReturnOnCapital > 0.15:
			pts++
			res.Strengths = append(res.Strengths, fmt.Sprintf("Retorno sobre capital (Greenblatt) alto: %.2f%%", mf.ReturnOnCapital*100))
		case mf.ReturnOnCapital < 0:
			pts--
			res.Weaknesses = append(res.Weaknesses, fmt.Sprintf("Retorno sobre capital (Greenblatt) negativo: %.2f%%", mf.ReturnOnCapital*100))
		}
	}

	if !any {
		return signal{weight: p.MagicFormulaWeight}
	}
	return signal{weight: p.MagicFormulaWeight, value: pts / max, ok: true}
}
