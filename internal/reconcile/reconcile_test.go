package reconcile

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/adalbertobrant/fundamentalistapro/pkg/models"
)

var testPriority = []string{"fundamentus", "finnhub", "yfinance"}

func record(source string, values map[models.Field]float64) *models.RawSourceRecord {
	rec := models.NewRawSourceRecord(source, "PETR4")
	for f, v := range values {
		rec.SetNum(f, v)
	}
	return rec
}

func TestPriorityOrderRespected(t *testing.T) {
	records := []*models.RawSourceRecord{
		record("yfinance", map[models.Field]float64{models.FieldPrice: 30.00, models.FieldEPS: 4.1}),
		record("fundamentus", map[models.Field]float64{models.FieldPrice: 28.44}),
		record("finnhub", map[models.Field]float64{models.FieldPrice: 28.50, models.FieldEPS: 4.0}),
	}

	c := Reconcile(records, testPriority)

	if v, _ := c.Get(models.FieldPrice); v != 28.44 {
		t.Errorf("price = %v, want fundamentus value 28.44", v)
	}
	if src, _ := c.Provenance(models.FieldPrice); src != "fundamentus" {
		t.Errorf("price provenance = %q, want fundamentus", src)
	}

	// Fundamentus has no EPS, so the next source in priority wins.
	if v, _ := c.Get(models.FieldEPS); v != 4.0 {
		t.Errorf("eps = %v, want finnhub value 4.0", v)
	}
	if src, _ := c.Provenance(models.FieldEPS); src != "finnhub" {
		t.Errorf("eps provenance = %q, want finnhub", src)
	}
}

func TestInvalidValueFallsThrough(t *testing.T) {
	fund := record("fundamentus", nil)
	fund.SetNum(models.FieldPrice, -3.0) // outside the price domain
	fund.SetText(models.FieldPE, "n/d")  // textual, never valid

	fh := record("finnhub", map[models.Field]float64{
		models.FieldPrice: 28.50,
		models.FieldPE:    7.1,
	})

	c := Reconcile([]*models.RawSourceRecord{fund, fh}, testPriority)

	if v, _ := c.Get(models.FieldPrice); v != 28.50 {
		t.Errorf("price = %v, want fallback 28.50", v)
	}
	if v, _ := c.Get(models.FieldPE); v != 7.1 {
		t.Errorf("pe = %v, want fallback 7.1", v)
	}
}

func TestUnresolvedWhenNoValidValue(t *testing.T) {
	fund := record("fundamentus", nil)
	fund.SetNum(models.FieldPB, 0) // zero multiple is invalid

	c := Reconcile([]*models.RawSourceRecord{fund}, testPriority)

	if c.Resolved(models.FieldPB) {
		t.Error("P/VP should be unresolved when every source is invalid")
	}
	if c.Resolved(models.FieldROE) {
		t.Error("ROE should be unresolved when absent from all sources")
	}
}

func TestAllSourcesEmpty(t *testing.T) {
	records := []*models.RawSourceRecord{
		record("fundamentus", nil),
		record("finnhub", nil),
	}

	c := Reconcile(records, testPriority)

	if c.ResolvedCount() != 0 {
		t.Errorf("expected fully unresolved record, got %d fields", c.ResolvedCount())
	}
	if len(c.Sources) != 2 {
		t.Errorf("sources consulted = %v", c.Sources)
	}
}

func TestNoRecordsAtAll(t *testing.T) {
	c := Reconcile(nil, testPriority)
	if c.ResolvedCount() != 0 {
		t.Errorf("expected empty canonical record, got %d fields", c.ResolvedCount())
	}
}

func TestUnlistedSourceConsultedLast(t *testing.T) {
	records := []*models.RawSourceRecord{
		record("b3direct", map[models.Field]float64{models.FieldPrice: 29.0, models.FieldROE: 0.18}),
		record("fundamentus", map[models.Field]float64{models.FieldPrice: 28.44}),
	}

	c := Reconcile(records, testPriority)

	if v, _ := c.Get(models.FieldPrice); v != 28.44 {
		t.Errorf("prioritized source should win: price = %v", v)
	}
	if v, _ := c.Get(models.FieldROE); v != 0.18 {
		t.Errorf("unlisted source should still contribute: roe = %v", v)
	}
}

func TestIdempotence(t *testing.T) {
	records := []*models.RawSourceRecord{
		record("fundamentus", map[models.Field]float64{
			models.FieldPrice: 28.44, models.FieldEPS: 4.2, models.FieldBVPS: 26.8,
			models.FieldROE: 0.157, models.FieldEBIT: 102345,
		}),
		record("finnhub", map[models.Field]float64{
			models.FieldPrice: 28.50, models.FieldDividendYield: 0.08,
		}),
	}

	a := Reconcile(records, testPriority)
	b := Reconcile(records, testPriority)

	ja, err := json.Marshal(a)
	if err != nil {
		t.Fatal(err)
	}
	jb, err := json.Marshal(b)
	if err != nil {
		t.Fatal(err)
	}
	if string(ja) != string(jb) {
		t.Error("reconciling the same input twice produced different records")
	}
}

func TestValidityDomains(t *testing.T) {
	cases := []struct {
		field models.Field
		value float64
		want  bool
	}{
		{models.FieldPrice, 28.44, true},
		{models.FieldPrice, 0, false},
		{models.FieldPrice, -1, false},
		{models.FieldPE, 7.5, true},
		{models.FieldPE, -3, false},
		{models.FieldDividendYield, 0.08, true},
		{models.FieldDividendYield, 1.2, false},
		{models.FieldDividendYield, -0.01, false},
		{models.FieldNetMargin, -0.15, true}, // signed-allowed
		{models.FieldEPS, -2.5, true},        // losses are valid data
		{models.FieldBVPS, -1.0, true},       // negative equity is data too
		{models.FieldSharesOutstanding, 0, false},
		{models.FieldCurrentLiabilities, 0, true},
		{models.FieldPrice, math.NaN(), false},
		{models.FieldROE, math.Inf(1), false},
	}
	for _, c := range cases {
		if got := Valid(c.field, c.value); got != c.want {
			t.Errorf("Valid(%s, %v) = %v, want %v", c.field, c.value, got, c.want)
		}
	}
}
