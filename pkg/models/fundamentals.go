package models

// ResolvedField is a reconciled metric tagged with the source that won it.
type ResolvedField struct {
	Value  float64 `json:"value"`
	Source string  `json:"source"`
}

// CanonicalFundamentals is the reconciled fundamentals record for one
// analysis run. Every field resolves to at most one value; a field absent
// from Fields is unresolved, meaning no source supplied a valid value.
// The record is built once by the reconciler and read-only afterwards.
type CanonicalFundamentals struct {
	Ticker      string                  `json:"ticker"`
	CompanyName string                  `json:"company_name,omitempty"`
	Fields      map[Field]ResolvedField `json:"fields"`
	Dividends   []DividendPayment       `json:"dividends,omitempty"`
	Sources     []string                `json:"sources"` // priority order used
}

// Get returns the resolved value for a field and whether it is resolved.
func (c CanonicalFundamentals) Get(f Field) (float64, bool) {
	rf, ok := c.Fields[f]
	return rf.Value, ok
}

// GetOr returns the resolved value for a field, or def when unresolved.
func (c CanonicalFundamentals) GetOr(f Field, def float64) float64 {
	if rf, ok := c.Fields[f]; ok {
		return rf.Value
	}
	return def
}

// Provenance returns the source id that supplied a field's value.
func (c CanonicalFundamentals) Provenance(f Field) (string, bool) {
	rf, ok := c.Fields[f]
	return rf.Source, ok
}

// Resolved reports whether the field has a value.
func (c CanonicalFundamentals) Resolved(f Field) bool {
	_, ok := c.Fields[f]
	return ok
}

// ResolvedCount returns how many fields carry a value.
func (c CanonicalFundamentals) ResolvedCount() int {
	return len(c.Fields)
}
