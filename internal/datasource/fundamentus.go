package datasource

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/adalbertobrant/fundamentalistapro/pkg/models"
	"github.com/adalbertobrant/fundamentalistapro/pkg/utils"
)

const fundamentusBaseURL = "https://www.fundamentus.com.br"

// SourceFundamentus is the provenance id of the Fundamentus scraper.
const SourceFundamentus = "fundamentus"

// fundamentusLabels maps the indicator labels of the Fundamentus details
// page onto canonical fields. Percent-valued indicators come back as
// fractions from the Brazilian number parser.
var fundamentusLabels = map[string]models.Field{
	"Cotação":        models.FieldPrice,
	"P/L":            models.FieldPE,
	"P/VP":           models.FieldPB,
	"Div. Yield":     models.FieldDividendYield,
	"LPA":            models.FieldEPS,
	"VPA":            models.FieldBVPS,
	"ROE":            models.FieldROE,
	"ROIC":           models.FieldROIC,
	"Marg. Bruta":    models.FieldGrossMargin,
	"Marg. EBIT":     models.FieldEBITMargin,
	"Marg. Líquida":  models.FieldNetMargin,
	"Liquidez Corr":  models.FieldCurrentRatio,
	"Div Br/ Patrim": models.FieldGrossDebtToEquity,
	"Cres. Rec (5a)": models.FieldRevenueGrowth5Y,
	"Valor da Firma": models.FieldEnterpriseValue,
	"Dív. Líquida":   models.FieldNetDebt,
	"Nro. Ações":     models.FieldSharesOutstanding,
}

// Fundamentus scrapes www.fundamentus.com.br, the canonical public page
// for Brazilian-listed company fundamentals.
type Fundamentus struct {
	cache   *Cache
	limiter *RateLimiter
}

// NewFundamentus creates the Fundamentus source.
func NewFundamentus(cacheTTL time.Duration) *Fundamentus {
	return &Fundamentus{
		cache:   NewCache(cacheTTL),
		limiter: NewRateLimiter(1, time.Second), // conservative: 1 req/s
	}
}

// Name returns the source id.
func (f *Fundamentus) Name() string { return SourceFundamentus }

// Fetch scrapes the details page for the ticker and extracts the main
// indicators, the income statement and the balance sheet.
func (f *Fundamentus) Fetch(ctx context.Context, ticker string) (*models.RawSourceRecord, error) {
	symbol := utils.PrepareTickerVariants(ticker).Fundamentus

	cacheKey := "fund:" + symbol
	if cached, ok := f.cache.Get(cacheKey); ok {
		return cached.(*models.RawSourceRecord), nil
	}

	doc, err := f.fetchPage(ctx, symbol)
	if err != nil {
		return nil, err
	}

	rec, err := parseDetailsPage(doc, symbol)
	if err != nil {
		return nil, err
	}

	f.cache.Set(cacheKey, rec)
	return rec, nil
}

// parseDetailsPage extracts a raw record from a parsed details page.
func parseDetailsPage(doc *goquery.Document, symbol string) (*models.RawSourceRecord, error) {
	// A valid details page always carries the "Papel" indicator; its
	// absence means Fundamentus does not know the ticker.
	if findLabelValue(doc, "Papel") == "" {
		return nil, fmt.Errorf("fundamentus %s: %w", symbol, ErrTickerNotFound)
	}

	rec := models.NewRawSourceRecord(SourceFundamentus, symbol)
	rec.FetchedAt = time.Now().UTC()
	rec.CompanyName = findLabelValue(doc, "Empresa")

	for label, field := range fundamentusLabels {
		text := findLabelValue(doc, label)
		if text == "" {
			continue
		}
		setParsed(rec, field, text)
	}

	parseIncomeStatement(doc, rec)
	parseBalanceSheet(doc, rec)

	return rec, nil
}

// fetchPage downloads and parses the Fundamentus details page.
func (f *Fundamentus) fetchPage(ctx context.Context, symbol string) (*goquery.Document, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/detalhes.php?papel=%s", fundamentusBaseURL, symbol)
	body, _, err := doGet(ctx, url, map[string]string{
		"Accept": "text/html",
	})
	if err != nil {
		return nil, fmt.Errorf("fundamentus %s: %w", symbol, err)
	}
	defer body.Close()

	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return nil, fmt.Errorf("parse fundamentus HTML: %w", err)
	}

	return doc, nil
}

// parseIncomeStatement extracts the trailing-12-month figures from the
// income statement table. The page repeats each label twice per row, first
// the 12-month column then the 3-month one; only the first occurrence is kept.
func parseIncomeStatement(doc *goquery.Document, rec *models.RawSourceRecord) {
	wanted := map[string]models.Field{
		"Receita Líquida": models.FieldNetRevenue,
		"EBIT":            models.FieldEBIT,
		"Lucro Líquido":   models.FieldNetIncome,
	}

	table := findTitledTable(doc, "Dados demonstrativos de resultados", "Demonstrativo de Resultados")
	if table == nil {
		return
	}

	eachLabelValue(table, func(label, value string) {
		field, ok := wanted[label]
		if !ok {
			return
		}
		if _, present := rec.Value(field); present {
			return // 12-month column already captured
		}
		setParsed(rec, field, value)
	})
}

// parseBalanceSheet extracts the working-capital and fixed-asset lines.
func parseBalanceSheet(doc *goquery.Document, rec *models.RawSourceRecord) {
	table := findTitledTable(doc, "Dados Balanço Patrimonial", "Balanço Patrimonial")
	if table == nil {
		return
	}

	eachLabelValue(table, func(label, value string) {
		switch label {
		case "Ativo Circulante":
			setParsed(rec, models.FieldCurrentAssets, value)
		case "Passivo Circulante":
			setParsed(rec, models.FieldCurrentLiabilities, value)
		case "Ativo Imobilizado", "Imobilizado":
			setParsed(rec, models.FieldNetFixedAssets, value)
		case "Ativo Não Circulante":
			// Fallback when the page omits the fixed-assets line.
			if _, ok := rec.Value(models.FieldNetFixedAssets); !ok {
				setParsed(rec, models.FieldNetFixedAssets, value)
			}
		case "Patrim. Líq":
			setParsed(rec, models.FieldTotalEquity, value)
		}
	})
}

// setParsed parses a Brazilian-formatted cell into the record. Cells that
// fail to parse are stored as text so the failure stays visible; dash cells
// mean "no value" and are skipped.
func setParsed(rec *models.RawSourceRecord, field models.Field, text string) {
	v, present, err := utils.ParseBRNumber(text)
	switch {
	case err != nil:
		rec.SetText(field, text)
	case present:
		rec.SetNum(field, v)
	}
}

// findLabelValue locates an indicator by its label span and returns the
// text of the adjacent data cell.
func findLabelValue(doc *goquery.Document, label string) string {
	var value string
	doc.Find("td.label span.txt").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		if strings.TrimSpace(sel.Text()) != label {
			return true
		}
		data := sel.Closest("td").Next()
		if data.Length() > 0 {
			value = strings.TrimSpace(data.Find("span.txt").First().Text())
			if value == "" {
				value = strings.TrimSpace(data.Text())
			}
		}
		return false
	})
	return value
}

// findTitledTable returns the table whose nivel2 header matches one of the
// candidate titles, or nil.
func findTitledTable(doc *goquery.Document, titles ...string) *goquery.Selection {
	var table *goquery.Selection
	doc.Find("table").EachWithBreak(func(_ int, t *goquery.Selection) bool {
		header := strings.TrimSpace(t.Find("td.nivel2 span.txt").First().Text())
		for _, title := range titles {
			if header == title {
				table = t
				return false
			}
		}
		return true
	})
	return table
}

// eachLabelValue walks the label/data cell pairs of a Fundamentus table.
// Rows carry alternating td.label / td.data cells.
func eachLabelValue(table *goquery.Selection, fn func(label, value string)) {
	table.Find("tr").Each(func(_ int, row *goquery.Selection) {
		var labels, values []string
		row.Find("td.label span.txt").Each(func(_ int, sel *goquery.Selection) {
			labels = append(labels, strings.TrimSpace(sel.Text()))
		})
		row.Find("td.data span.txt").Each(func(_ int, sel *goquery.Selection) {
			values = append(values, strings.TrimSpace(sel.Text()))
		})
		for i, label := range labels {
			if i < len(values) {
				fn(label, values[i])
			}
		}
	})
}
