// Package valuation implements the fair-price estimators. Each calculator
// is a pure function over a reconciled fundamentals record: it either
// produces a fair price or an explicit not-computable estimate, and it
// never fails on missing or out-of-domain inputs.
package valuation

import (
	"github.com/adalbertobrant/fundamentalistapro/pkg/models"
)

// Params holds every tunable constant of the estimators. They are
// configuration, not code: the engine builds Params from the loaded
// config so deployments can adjust them without recompiling.
type Params struct {
	// DDM
	RequiredReturn      float64
	DDMPriceCapMultiple float64

	// Adjusted P/E
	PEBaseMultiple float64
	PEStepMultiple float64
	MinPEMultiple  float64
	MaxPEMultiple  float64

	// Adjusted P/VP (ROE-tiered book multiples)
	PVPBaseMultiple float64
	PVPTier1ROE     float64
	PVPTier1        float64
	PVPTier2ROE     float64
	PVPTier2        float64
	PVPTier3ROE     float64
	PVPTier3        float64
}

// DefaultParams returns the built-in estimator constants.
func DefaultParams() Params {
	return Params{
		RequiredReturn:      0.12,
		DDMPriceCapMultiple: 5.0,
		PEBaseMultiple:      8.0,
		PEStepMultiple:      1.5,
		MinPEMultiple:       5.0,
		MaxPEMultiple:       25.0,
		PVPBaseMultiple:     1.0,
		PVPTier1ROE:         0.10,
		PVPTier1:            1.5,
		PVPTier2ROE:         0.15,
		PVPTier2:            2.0,
		PVPTier3ROE:         0.20,
		PVPTier3:            2.5,
	}
}

// Calculator estimates a fair price (or ratios) from canonical fundamentals.
type Calculator interface {
	Model() models.ModelName
	Estimate(f models.CanonicalFundamentals) models.ValuationEstimate
}

// Calculators returns the full estimator set in canonical order:
// Graham, DDM, adjusted P/E, adjusted P/VP and the Magic Formula ratios.
// The calculators are mutually independent and may run concurrently.
func Calculators(p Params) []Calculator {
	return []Calculator{
		Graham{},
		DDM{Params: p},
		AdjustedPE{Params: p},
		AdjustedPVP{Params: p},
		MagicFormula{},
	}
}
