// Package reconcile merges per-source raw fundamentals records into one
// canonical record under a source-priority policy. All fallback logic is
// centralized here: sources produce whatever they have and the reconciler
// decides, per field, which value wins.
package reconcile

import (
	"math"

	"github.com/adalbertobrant/fundamentalistapro/pkg/models"
)

// Reconcile resolves each known field to the first valid value found while
// walking the sources in priority order. Fields for which no source has a
// valid value stay unresolved. Once written a field is never overwritten
// within the same pass.
//
// Sources present in records but missing from priority are consulted after
// the prioritized ones, in record order. An all-empty input produces a
// fully unresolved record — a valid degraded outcome, not an error.
func Reconcile(records []*models.RawSourceRecord, priority []string) models.CanonicalFundamentals {
	ordered := orderRecords(records, priority)

	canonical := models.CanonicalFundamentals{
		Fields:  make(map[models.Field]models.ResolvedField),
		Sources: make([]string, 0, len(ordered)),
	}
	for _, rec := range ordered {
		canonical.Sources = append(canonical.Sources, rec.Source)
	}

	for _, field := range models.KnownFields() {
		for _, rec := range ordered {
			raw, ok := rec.Value(field)
			if !ok || !raw.IsNumber {
				continue
			}
			if !Valid(field, raw.Number) {
				continue
			}
			canonical.Fields[field] = models.ResolvedField{
				Value:  raw.Number,
				Source: rec.Source,
			}
			break // first valid source wins
		}
	}

	for _, rec := range ordered {
		if canonical.Ticker == "" && rec.Ticker != "" {
			canonical.Ticker = rec.Ticker
		}
		if canonical.CompanyName == "" && rec.CompanyName != "" {
			canonical.CompanyName = rec.CompanyName
		}
		if len(canonical.Dividends) == 0 && len(rec.Dividends) > 0 {
			canonical.Dividends = append(canonical.Dividends, rec.Dividends...)
		}
	}

	return canonical
}

// orderRecords arranges records by priority, appending unlisted sources in
// their original order. Duplicate records for the same source keep only
// the first occurrence.
func orderRecords(records []*models.RawSourceRecord, priority []string) []*models.RawSourceRecord {
	bySource := make(map[string]*models.RawSourceRecord, len(records))
	var extras []*models.RawSourceRecord

	listed := make(map[string]bool, len(priority))
	for _, src := range priority {
		listed[src] = true
	}

	for _, rec := range records {
		if rec == nil {
			continue
		}
		if _, seen := bySource[rec.Source]; seen {
			continue
		}
		bySource[rec.Source] = rec
		if !listed[rec.Source] {
			extras = append(extras, rec)
		}
	}

	ordered := make([]*models.RawSourceRecord, 0, len(bySource))
	for _, src := range priority {
		if rec, ok := bySource[src]; ok {
			ordered = append(ordered, rec)
		}
	}
	return append(ordered, extras...)
}

// Per-field validity domains. A value outside its domain is treated
// exactly like a missing value; the field falls through to the next source.
const (
	maxRatio    = 1e4  // sanity bound for price multiples
	maxFraction = 10.0 // sanity bound for percentage-derived fractions
)

// Valid reports whether v is an acceptable value for the given field.
func Valid(field models.Field, v float64) bool {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return false
	}

	switch field {
	case models.FieldPrice:
		return v > 0
	case models.FieldPE, models.FieldPB:
		// Multiples computed from a zero or negative denominator are
		// meaningless for the downstream heuristics.
		return v > 0 && v < maxRatio
	case models.FieldDividendYield:
		return v >= 0 && v <= 1
	case models.FieldEnterpriseValue, models.FieldSharesOutstanding:
		return v > 0
	case models.FieldCurrentAssets, models.FieldCurrentLiabilities,
		models.FieldNetFixedAssets:
		return v >= 0
	case models.FieldCurrentRatio:
		return v >= 0 && v < maxRatio
	case models.FieldROE, models.FieldROIC,
		models.FieldGrossMargin, models.FieldEBITMargin, models.FieldNetMargin,
		models.FieldRevenueGrowth5Y:
		// Signed-allowed fractions: losses and contractions are real data.
		return v >= -maxFraction && v <= maxFraction
	case models.FieldGrossDebtToEquity:
		return v > -maxRatio && v < maxRatio
	case models.FieldEPS, models.FieldBVPS,
		models.FieldEBIT, models.FieldNetIncome, models.FieldNetRevenue,
		models.FieldNetDebt, models.FieldTotalEquity:
		// Signed-allowed absolutes; individual calculators impose their
		// own stricter requirements (e.g. Graham needs EPS > 0).
		return true
	default:
		return true
	}
}
