package datasource

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"

	"github.com/adalbertobrant/fundamentalistapro/pkg/models"
)

// detailsPageHTML mimics the structure of a Fundamentus details page:
// label/data cell pairs for the main indicators and titled tables for the
// income statement and balance sheet.
const detailsPageHTML = `
<html><body>
<table>
  <tr>
    <td class="label"><span class="txt">Papel</span></td>
    <td class="data"><span class="txt">PETR4</span></td>
    <td class="label"><span class="txt">Cotação</span></td>
    <td class="data"><span class="txt">30,50</span></td>
  </tr>
  <tr>
    <td class="label"><span class="txt">Empresa</span></td>
    <td class="data"><span class="txt">PETROBRAS PN</span></td>
    <td class="label"><span class="txt">Nro. Ações</span></td>
    <td class="data"><span class="txt">13.044.500.000</span></td>
  </tr>
</table>
<table>
  <tr>
    <td class="label"><span class="txt">P/L</span></td>
    <td class="data"><span class="txt">4,50</span></td>
    <td class="label"><span class="txt">LPA</span></td>
    <td class="data"><span class="txt">6,78</span></td>
  </tr>
  <tr>
    <td class="label"><span class="txt">P/VP</span></td>
    <td class="data"><span class="txt">1,20</span></td>
    <td class="label"><span class="txt">VPA</span></td>
    <td class="data"><span class="txt">25,40</span></td>
  </tr>
  <tr>
    <td class="label"><span class="txt">Div. Yield</span></td>
    <td class="data"><span class="txt">12,5%</span></td>
    <td class="label"><span class="txt">ROE</span></td>
    <td class="data"><span class="txt">22,3%</span></td>
  </tr>
  <tr>
    <td class="label"><span class="txt">ROIC</span></td>
    <td class="data"><span class="txt">-</span></td>
    <td class="label"><span class="txt">Liquidez Corr</span></td>
    <td class="data"><span class="txt">1,10</span></td>
  </tr>
</table>
<table>
  <tr><td class="nivel2"><span class="txt">Dados Balanço Patrimonial</span></td></tr>
  <tr>
    <td class="label"><span class="txt">Ativo Circulante</span></td>
    <td class="data"><span class="txt">163.052.000.000</span></td>
    <td class="label"><span class="txt">Passivo Circulante</span></td>
    <td class="data"><span class="txt">116.147.000.000</span></td>
  </tr>
  <tr>
    <td class="label"><span class="txt">Ativo Imobilizado</span></td>
    <td class="data"><span class="txt">700.000.000.000</span></td>
    <td class="label"><span class="txt">Patrim. Líq</span></td>
    <td class="data"><span class="txt">380.000.000.000</span></td>
  </tr>
</table>
<table>
  <tr><td class="nivel2"><span class="txt">Dados demonstrativos de resultados</span></td></tr>
  <tr>
    <td class="label"><span class="txt">Receita Líquida</span></td>
    <td class="data"><span class="txt">500.000.000.000</span></td>
    <td class="label"><span class="txt">Receita Líquida</span></td>
    <td class="data"><span class="txt">120.000.000.000</span></td>
  </tr>
  <tr>
    <td class="label"><span class="txt">EBIT</span></td>
    <td class="data"><span class="txt">180.000.000.000</span></td>
    <td class="label"><span class="txt">EBIT</span></td>
    <td class="data"><span class="txt">45.000.000.000</span></td>
  </tr>
</table>
</body></html>`

func parseFixture(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		t.Fatalf("parse fixture: %v", err)
	}
	return doc
}

func TestParseDetailsPage(t *testing.T) {
	doc := parseFixture(t, detailsPageHTML)

	rec, err := parseDetailsPage(doc, "PETR4")
	if err != nil {
		t.Fatalf("parseDetailsPage: %v", err)
	}

	if rec.Source != SourceFundamentus {
		t.Errorf("source = %q", rec.Source)
	}
	if rec.CompanyName != "PETROBRAS PN" {
		t.Errorf("company = %q", rec.CompanyName)
	}

	wantNums := map[models.Field]float64{
		models.FieldPrice:              30.50,
		models.FieldPE:                 4.50,
		models.FieldPB:                 1.20,
		models.FieldEPS:                6.78,
		models.FieldBVPS:               25.40,
		models.FieldDividendYield:      0.125,
		models.FieldROE:                0.223,
		models.FieldCurrentRatio:       1.10,
		models.FieldSharesOutstanding:  13_044_500_000,
		models.FieldCurrentAssets:      163_052_000_000,
		models.FieldCurrentLiabilities: 116_147_000_000,
		models.FieldNetFixedAssets:     700_000_000_000,
		models.FieldTotalEquity:        380_000_000_000,
	}
	for field, want := range wantNums {
		v, ok := rec.Value(field)
		if !ok || !v.IsNumber {
			t.Errorf("%s: missing or non-numeric", field)
			continue
		}
		if math.Abs(v.Number-want) > 1e-9 {
			t.Errorf("%s = %v, want %v", field, v.Number, want)
		}
	}

	// Dash cells mean "no value" and must stay absent.
	if _, ok := rec.Value(models.FieldROIC); ok {
		t.Error("ROIC: dash cell must not produce a value")
	}
}

func TestParseDetailsPageKeepsTwelveMonthColumn(t *testing.T) {
	doc := parseFixture(t, detailsPageHTML)

	rec, err := parseDetailsPage(doc, "PETR4")
	if err != nil {
		t.Fatalf("parseDetailsPage: %v", err)
	}

	// The income statement repeats each label: first 12 months, then 3.
	if v, ok := rec.Value(models.FieldNetRevenue); !ok || v.Number != 500_000_000_000 {
		t.Errorf("net revenue = %+v, want the 12-month column", v)
	}
	if v, ok := rec.Value(models.FieldEBIT); !ok || v.Number != 180_000_000_000 {
		t.Errorf("ebit = %+v, want the 12-month column", v)
	}
}

func TestParseDetailsPageUnknownTicker(t *testing.T) {
	doc := parseFixture(t, "<html><body><h1>Papel não encontrado</h1></body></html>")

	_, err := parseDetailsPage(doc, "XPTO3")
	if !errors.Is(err, ErrTickerNotFound) {
		t.Errorf("err = %v, want ErrTickerNotFound", err)
	}
}

func TestFindLabelValueMissing(t *testing.T) {
	doc := parseFixture(t, detailsPageHTML)
	if got := findLabelValue(doc, "Valor da Firma"); got != "" {
		t.Errorf("absent label returned %q", got)
	}
}
