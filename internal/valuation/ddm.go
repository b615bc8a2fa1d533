package valuation

import (
	"github.com/adalbertobrant/fundamentalistapro/pkg/models"
)

// DDM implements a simplified Gordon-growth dividend discount model:
// fair price = D1 / (r − g), with g estimated from ROE and the retention
// ratio. The formula is only valid for a perpetually growing dividend
// below the discount rate, so r must be strictly greater than g.
type DDM struct {
	Params Params
}

func (DDM) Model() models.ModelName { return models.ModelDDM }

func (d DDM) Estimate(f models.CanonicalFundamentals) models.ValuationEstimate {
	inputs := []models.Field{
		models.FieldPrice, models.FieldDividendYield,
		models.FieldROE, models.FieldEPS,
	}

	price, priceOK := f.Get(models.FieldPrice)
	yield, yieldOK := f.Get(models.FieldDividendYield)
	roe, roeOK := f.Get(models.FieldROE)
	eps, epsOK := f.Get(models.FieldEPS)

	if !priceOK || !yieldOK || !roeOK || !epsOK {
		return models.NotComputable(models.ModelDDM, "price, dividend yield, ROE or EPS unresolved", inputs...)
	}
	if price <= 0 || yield <= 0 || roe <= 0 || eps <= 0 {
		return models.NotComputable(models.ModelDDM, "requires positive price, dividend yield, ROE and EPS", inputs...)
	}

	// Dividend per share and payout from the trailing yield.
	dps := price * yield
	payout := dps / eps
	if payout < 0 || payout > 1 {
		return models.NotComputable(models.ModelDDM, "payout ratio outside [0,1]", inputs...)
	}

	// Sustainable growth: ROE times the retention ratio.
	g := roe * (1 - payout)
	r := d.Params.RequiredReturn
	if g < 0 || r <= g {
		return models.NotComputable(models.ModelDDM, "required return must exceed dividend growth", inputs...)
	}

	d1 := dps * (1 + g)
	fair := d1 / (r - g)

	// Cap the estimate so an aggressive growth assumption cannot dominate
	// the aggregated fair price.
	if limit := d.Params.DDMPriceCapMultiple * price; d.Params.DDMPriceCapMultiple > 0 && fair > limit {
		fair = limit
	}

	return models.Computed(models.ModelDDM, fair, inputs...)
}
