package valuation

import (
	"math"

	"github.com/adalbertobrant/fundamentalistapro/pkg/models"
)

// Graham implements Benjamin Graham's intrinsic value heuristic:
// fair price = √(22.5 × EPS × book value per share).
type Graham struct{}

// grahamFactor is Graham's 22.5 constant (a 15× earnings multiple times a
// 1.5× book multiple).
const grahamFactor = 22.5

func (Graham) Model() models.ModelName { return models.ModelGraham }

func (Graham) Estimate(f models.CanonicalFundamentals) models.ValuationEstimate {
	inputs := []models.Field{models.FieldEPS, models.FieldBVPS}

	eps, epsOK := f.Get(models.FieldEPS)
	bvps, bvpsOK := f.Get(models.FieldBVPS)

	if !epsOK || !bvpsOK {
		return models.NotComputable(models.ModelGraham, "EPS or book value per share unresolved", inputs...)
	}
	// The square root is only meaningful for a positive product; a company
	// with losses or negative equity has no Graham number.
	if eps <= 0 || bvps <= 0 {
		return models.NotComputable(models.ModelGraham, "EPS and book value per share must be positive", inputs...)
	}

	return models.Computed(models.ModelGraham, math.Sqrt(grahamFactor*eps*bvps), inputs...)
}
