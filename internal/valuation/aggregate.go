package valuation

import (
	"github.com/adalbertobrant/fundamentalistapro/pkg/models"
)

// Aggregate combines the price-producing estimates into one weighted fair
// price. A not-computable estimate contributes weight zero; the remaining
// weights are renormalized to sum to 1 before the mean is taken. When no
// estimate is computable the aggregate itself is not computable — the
// marker propagates instead of collapsing to zero or to the quote.
//
// weights maps model name → base weight. Models absent from the map get
// weight zero; the Magic Formula is excluded regardless because it
// produces no price.
func Aggregate(estimates []models.ValuationEstimate, weights map[models.ModelName]float64) models.AggregatedValuation {
	agg := models.AggregatedValuation{
		Contributions: make([]models.WeightedEstimate, 0, len(models.PriceModels)),
	}

	priceModel := make(map[models.ModelName]bool, len(models.PriceModels))
	for _, m := range models.PriceModels {
		priceModel[m] = true
	}

	var totalWeight float64
	usable := make([]models.ValuationEstimate, 0, len(estimates))
	for _, est := range estimates {
		if !priceModel[est.Model] {
			continue
		}
		if est.Computable && weights[est.Model] > 0 {
			usable = append(usable, est)
			totalWeight += weights[est.Model]
		}
	}

	var fair float64
	for _, est := range usable {
		fair += est.FairPrice * (weights[est.Model] / totalWeight)
	}

	for _, est := range estimates {
		if !priceModel[est.Model] {
			continue
		}
		we := models.WeightedEstimate{
			Model:      est.Model,
			Computable: est.Computable,
		}
		if est.Computable {
			we.FairPrice = est.FairPrice
			if totalWeight > 0 && weights[est.Model] > 0 {
				we.Weight = weights[est.Model] / totalWeight
			}
		}
		agg.Contributions = append(agg.Contributions, we)
	}

	if len(usable) > 0 && totalWeight > 0 {
		agg.FairPrice = fair
		agg.Computable = true
	}

	return agg
}
