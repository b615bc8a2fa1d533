package valuation

import (
	"github.com/adalbertobrant/fundamentalistapro/pkg/models"
)

// MagicFormula computes Greenblatt's two ranking ratios:
//
//	Earnings Yield    = EBIT / Enterprise Value
//	Return on Capital = EBIT / (net working capital + net fixed assets)
//
// It produces no fair price; the ratios feed the scorer only and the
// estimate is always excluded from the weighted fair price.
type MagicFormula struct{}

func (MagicFormula) Model() models.ModelName { return models.ModelMagicFormula }

func (MagicFormula) Estimate(f models.CanonicalFundamentals) models.ValuationEstimate {
	inputs := []models.Field{
		models.FieldEBIT, models.FieldEnterpriseValue,
		models.FieldCurrentAssets, models.FieldCurrentLiabilities,
		models.FieldNetFixedAssets,
	}

	ratios := &models.MagicFormulaRatios{}

	ebit, ebitOK := f.Get(models.FieldEBIT)

	if ev, ok := f.Get(models.FieldEnterpriseValue); ebitOK && ok && ev != 0 {
		ratios.EarningsYield = ebit / ev
		ratios.EarningsYieldOK = true
	}

	ca, caOK := f.Get(models.FieldCurrentAssets)
	cl, clOK := f.Get(models.FieldCurrentLiabilities)
	nfa, nfaOK := f.Get(models.FieldNetFixedAssets)
	if ebitOK && caOK && clOK && nfaOK {
		capital := (ca - cl) + nfa
		if capital != 0 {
			ratios.ReturnOnCapital = ebit / capital
			ratios.ReturnOnCapitalOK = true
		}
	}

	est := models.NotComputable(models.ModelMagicFormula, "ratios-only model, produces no price estimate", inputs...)
	est.Ratios = ratios
	return est
}
