package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/adalbertobrant/fundamentalistapro/internal/config"
	"github.com/adalbertobrant/fundamentalistapro/internal/engine"
	"github.com/adalbertobrant/fundamentalistapro/pkg/models"
)

type stubFetcher struct {
	records []*models.RawSourceRecord
}

func (s *stubFetcher) FetchAll(_ context.Context, _ string) []*models.RawSourceRecord {
	return s.records
}

type stubCharts struct {
	candles []models.OHLCV
}

func (s *stubCharts) GetChart(_ context.Context, _, _ string) ([]models.OHLCV, error) {
	return s.candles, nil
}

type stubNews struct {
	articles []models.NewsArticle
}

func (s *stubNews) GetStockNews(_ context.Context, _ string, _ int) ([]models.NewsArticle, error) {
	return s.articles, nil
}

func (s *stubNews) GetMarketNews(_ context.Context, _ int) ([]models.NewsArticle, error) {
	return s.articles, nil
}

func newTestServer() *Server {
	rec := models.NewRawSourceRecord("fundamentus", "PETR4")
	rec.CompanyName = "PETROBRAS PN"
	rec.SetNum(models.FieldPrice, 30)
	rec.SetNum(models.FieldEPS, 6.5)
	rec.SetNum(models.FieldBVPS, 25)

	cfg := config.Default()
	eng := engine.New(&stubFetcher{records: []*models.RawSourceRecord{rec}}, cfg, zerolog.Nop())

	charts := &stubCharts{candles: []models.OHLCV{
		{Timestamp: time.Now().UTC(), Open: 29, High: 31, Low: 28, Close: 30, Volume: 1000},
	}}
	news := &stubNews{articles: []models.NewsArticle{
		{Source: "Valor", Title: "Petrobras anuncia dividendos", URL: "https://example.com/1"},
	}}

	return NewServer(cfg, eng, charts, news, zerolog.Nop())
}

func doRequest(t *testing.T, srv *Server, method, path string) (*httptest.ResponseRecorder, APIResponse) {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	rr := httptest.NewRecorder()
	srv.Router().ServeHTTP(rr, req)

	var resp APIResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("%s %s: decode response: %v", method, path, err)
	}
	return rr, resp
}

func TestHealthEndpoint(t *testing.T) {
	srv := newTestServer()
	rr, resp := doRequest(t, srv, http.MethodGet, "/health")

	if rr.Code != http.StatusOK || !resp.Success {
		t.Errorf("health: code=%d success=%v", rr.Code, resp.Success)
	}
}

func TestAnalyzeEndpoint(t *testing.T) {
	srv := newTestServer()
	rr, resp := doRequest(t, srv, http.MethodGet, "/api/v1/analyze/PETR4")

	if rr.Code != http.StatusOK || !resp.Success {
		t.Fatalf("analyze: code=%d success=%v error=%q", rr.Code, resp.Success, resp.Error)
	}

	data, err := json.Marshal(resp.Data)
	if err != nil {
		t.Fatal(err)
	}
	var result models.AnalysisResult
	if err := json.Unmarshal(data, &result); err != nil {
		t.Fatalf("decode analysis: %v", err)
	}
	if result.Ticker != "PETR4" || result.CompanyName != "PETROBRAS PN" {
		t.Errorf("unexpected result: %s %s", result.Ticker, result.CompanyName)
	}
	if len(result.Estimates) != 5 {
		t.Errorf("expected 5 estimates, got %d", len(result.Estimates))
	}
}

func TestAnalyzeEndpointMalformedTicker(t *testing.T) {
	srv := newTestServer()
	rr, resp := doRequest(t, srv, http.MethodGet, "/api/v1/analyze/NOTATICKER")

	if rr.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for malformed ticker, got %d", rr.Code)
	}
	if resp.Success || resp.Error == "" {
		t.Errorf("expected an error payload, got %+v", resp)
	}
}

func TestNewsEndpoint(t *testing.T) {
	srv := newTestServer()
	rr, resp := doRequest(t, srv, http.MethodGet, "/api/v1/news/PETR4")

	if rr.Code != http.StatusOK || !resp.Success {
		t.Fatalf("news: code=%d success=%v", rr.Code, resp.Success)
	}
}

func TestChartEndpoint(t *testing.T) {
	srv := newTestServer()
	rr, resp := doRequest(t, srv, http.MethodGet, "/api/v1/chart/PETR4?range=1mo")

	if rr.Code != http.StatusOK || !resp.Success {
		t.Fatalf("chart: code=%d success=%v", rr.Code, resp.Success)
	}
}

func TestChartEndpointRejectsBadTicker(t *testing.T) {
	srv := newTestServer()
	rr, _ := doRequest(t, srv, http.MethodGet, "/api/v1/chart/BAD")

	if rr.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rr.Code)
	}
}

func TestSourcesEndpoint(t *testing.T) {
	srv := newTestServer()
	rr, resp := doRequest(t, srv, http.MethodGet, "/api/v1/sources")

	if rr.Code != http.StatusOK || !resp.Success {
		t.Fatalf("sources: code=%d success=%v", rr.Code, resp.Success)
	}
}
