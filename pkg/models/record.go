// Package models defines the core data structures used throughout the
// Analisador Fundamentalista PRO engine.
package models

import "time"

// Field identifies a single fundamental metric inside a source record.
// The string values follow the Fundamentus naming so that exported
// records stay recognizable to Brazilian-market users.
type Field string

const (
	FieldPrice              Field = "cotacao"
	FieldPE                 Field = "p_l"
	FieldPB                 Field = "p_vp"
	FieldDividendYield      Field = "div_yield"
	FieldEPS                Field = "lpa"
	FieldBVPS               Field = "vpa"
	FieldROE                Field = "roe"
	FieldROIC               Field = "roic"
	FieldGrossMargin        Field = "margem_bruta"
	FieldEBITMargin         Field = "margem_ebit"
	FieldNetMargin          Field = "margem_liquida"
	FieldCurrentRatio       Field = "liquidez_corrente"
	FieldGrossDebtToEquity  Field = "div_bruta_patrimonio"
	FieldRevenueGrowth5Y    Field = "cres_receita_5a"
	FieldEBIT               Field = "ebit_12m"
	FieldNetIncome          Field = "lucro_liquido_12m"
	FieldNetRevenue         Field = "receita_liquida_12m"
	FieldEnterpriseValue    Field = "valor_firma"
	FieldNetDebt            Field = "divida_liquida"
	FieldSharesOutstanding  Field = "numero_acoes"
	FieldCurrentAssets      Field = "ativo_circulante"
	FieldCurrentLiabilities Field = "passivo_circulante"
	FieldNetFixedAssets     Field = "ativo_imobilizado"
	FieldTotalEquity        Field = "patrimonio_liquido"
)

// knownFields lists every field in a fixed order. Reconciliation iterates
// this slice so that two passes over the same input produce identical output.
var knownFields = []Field{
	FieldPrice, FieldPE, FieldPB, FieldDividendYield,
	FieldEPS, FieldBVPS, FieldROE, FieldROIC,
	FieldGrossMargin, FieldEBITMargin, FieldNetMargin,
	FieldCurrentRatio, FieldGrossDebtToEquity, FieldRevenueGrowth5Y,
	FieldEBIT, FieldNetIncome, FieldNetRevenue,
	FieldEnterpriseValue, FieldNetDebt, FieldSharesOutstanding,
	FieldCurrentAssets, FieldCurrentLiabilities, FieldNetFixedAssets,
	FieldTotalEquity,
}

// KnownFields returns all fields the reconciler understands, in canonical order.
func KnownFields() []Field {
	out := make([]Field, len(knownFields))
	copy(out, knownFields)
	return out
}

// RawValue is an optional numeric-or-textual value inside a RawSourceRecord.
// Scrapers that fail to parse a cell keep the original text so the failure
// is visible downstream instead of silently becoming zero.
type RawValue struct {
	Number   float64 `json:"number,omitempty"`
	Text     string  `json:"text,omitempty"`
	IsNumber bool    `json:"is_number"`
}

// Num wraps a parsed numeric value.
func Num(v float64) RawValue { return RawValue{Number: v, IsNumber: true} }

// Text wraps a value that could not be parsed as a number.
func Text(s string) RawValue { return RawValue{Text: s} }

// DividendPayment is a single historical dividend payout.
type DividendPayment struct {
	Date   time.Time `json:"date"`
	Amount float64   `json:"amount"`
}

// RawSourceRecord is the per-source fundamentals snapshot delivered by a
// fetch collaborator. Fields may be absent or present-but-invalid; the
// record is immutable once fetched.
type RawSourceRecord struct {
	Source      string             `json:"source"`
	Ticker      string             `json:"ticker"`
	CompanyName string             `json:"company_name,omitempty"`
	FetchedAt   time.Time          `json:"fetched_at"`
	Values      map[Field]RawValue `json:"values"`
	Dividends   []DividendPayment  `json:"dividends,omitempty"`
}

// NewRawSourceRecord creates an empty record for the given source and ticker.
func NewRawSourceRecord(source, ticker string) *RawSourceRecord {
	return &RawSourceRecord{
		Source: source,
		Ticker: ticker,
		Values: make(map[Field]RawValue),
	}
}

// SetNum stores a numeric value for a field.
func (r *RawSourceRecord) SetNum(f Field, v float64) {
	r.Values[f] = Num(v)
}

// SetText stores an unparsed textual value for a field.
func (r *RawSourceRecord) SetText(f Field, s string) {
	r.Values[f] = Text(s)
}

// Value returns the raw value for a field, if present.
func (r *RawSourceRecord) Value(f Field) (RawValue, bool) {
	v, ok := r.Values[f]
	return v, ok
}

// Empty reports whether the record carries no values at all.
func (r *RawSourceRecord) Empty() bool {
	return len(r.Values) == 0 && len(r.Dividends) == 0
}
