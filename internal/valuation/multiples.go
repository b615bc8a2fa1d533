package valuation

import (
	"github.com/adalbertobrant/fundamentalistapro/pkg/models"
)

// AdjustedPE estimates fair price as EPS times a quality-adjusted earnings
// multiple. The multiple starts at a conservative base, earns steps for
// strong profitability and liquidity, and is clamped to a configured range
// so outliers cannot skew the aggregate.
type AdjustedPE struct {
	Params Params
}

func (AdjustedPE) Model() models.ModelName { return models.ModelAdjustedPE }

func (a AdjustedPE) Estimate(f models.CanonicalFundamentals) models.ValuationEstimate {
	inputs := []models.Field{models.FieldEPS, models.FieldROE, models.FieldCurrentRatio}

	eps, epsOK := f.Get(models.FieldEPS)
	if !epsOK {
		return models.NotComputable(models.ModelAdjustedPE, "EPS unresolved", inputs...)
	}
	if eps <= 0 {
		return models.NotComputable(models.ModelAdjustedPE, "EPS must be positive", inputs...)
	}

	quality := 0.0
	if roe, ok := f.Get(models.FieldROE); ok {
		switch {
		case roe > 0.15:
			quality += 3
		case roe > 0.10:
			quality += 2
		}
	}
	if cr, ok := f.Get(models.FieldCurrentRatio); ok && cr > 1.5 {
		quality += 2
	}

	multiple := a.Params.PEBaseMultiple + quality*a.Params.PEStepMultiple
	multiple = clamp(multiple, a.Params.MinPEMultiple, a.Params.MaxPEMultiple)

	return models.Computed(models.ModelAdjustedPE, eps*multiple, inputs...)
}

// AdjustedPVP estimates fair price as book value per share times an
// ROE-tiered book multiple: the more capital-efficient the company, the
// larger the premium over book it can sustain.
type AdjustedPVP struct {
	Params Params
}

func (AdjustedPVP) Model() models.ModelName { return models.ModelAdjustedPVP }

func (a AdjustedPVP) Estimate(f models.CanonicalFundamentals) models.ValuationEstimate {
	inputs := []models.Field{models.FieldBVPS, models.FieldROE}

	bvps, bvpsOK := f.Get(models.FieldBVPS)
	if !bvpsOK {
		return models.NotComputable(models.ModelAdjustedPVP, "book value per share unresolved", inputs...)
	}
	if bvps <= 0 {
		return models.NotComputable(models.ModelAdjustedPVP, "book value per share must be positive", inputs...)
	}

	multiple := a.Params.PVPBaseMultiple
	if roe, ok := f.Get(models.FieldROE); ok {
		switch {
		case roe > a.Params.PVPTier3ROE:
			multiple = a.Params.PVPTier3
		case roe > a.Params.PVPTier2ROE:
			multiple = a.Params.PVPTier2
		case roe > a.Params.PVPTier1ROE:
			multiple = a.Params.PVPTier1
		}
	}

	return models.Computed(models.ModelAdjustedPVP, bvps*multiple, inputs...)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
