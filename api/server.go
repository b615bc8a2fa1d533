// Package api provides the HTTP REST API for the Analisador Fundamentalista
// PRO: analysis runs, headlines, dividend history and price charts.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"github.com/adalbertobrant/fundamentalistapro/internal/config"
	"github.com/adalbertobrant/fundamentalistapro/internal/engine"
	"github.com/adalbertobrant/fundamentalistapro/pkg/models"
	"github.com/adalbertobrant/fundamentalistapro/pkg/utils"
)

// ChartSource serves OHLCV candles for the chart endpoint.
type ChartSource interface {
	GetChart(ctx context.Context, ticker, rng string) ([]models.OHLCV, error)
}

// NewsSource serves headlines for the news endpoint.
type NewsSource interface {
	GetStockNews(ctx context.Context, ticker string, limit int) ([]models.NewsArticle, error)
	GetMarketNews(ctx context.Context, limit int) ([]models.NewsArticle, error)
}

// Server is the HTTP API server.
type Server struct {
	router chi.Router
	cfg    *config.Config
	engine *engine.Engine
	charts ChartSource
	news   NewsSource
	log    zerolog.Logger
}

// NewServer creates a configured API server with all routes and middleware.
func NewServer(cfg *config.Config, eng *engine.Engine, charts ChartSource, news NewsSource, log zerolog.Logger) *Server {
	srv := &Server{
		cfg:    cfg,
		engine: eng,
		charts: charts,
		news:   news,
		log:    log,
	}
	srv.router = srv.buildRouter()
	return srv
}

// Router returns the chi router for testing.
func (s *Server) Router() chi.Router {
	return s.router
}

// ListenAndServe starts the HTTP server with graceful shutdown.
func (s *Server) ListenAndServe(addr string) error {
	httpSrv := &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Fatal().Err(err).Msg("HTTP server error")
		}
	}()
	s.log.Info().Str("addr", addr).Msg("API server listening")

	<-done
	s.log.Info().Msg("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	return httpSrv.Shutdown(ctx)
}

// buildRouter configures all routes and middleware.
func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(120 * time.Second))

	origins := []string{"*"}
	if len(s.cfg.API.CORSOrigins) > 0 {
		origins = s.cfg.API.CORSOrigins
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", s.handleHealth)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Get("/analyze/{ticker}", s.handleAnalyze)
		r.Get("/news", s.handleMarketNews)
		r.Get("/news/{ticker}", s.handleStockNews)
		r.Get("/dividends/{ticker}", s.handleDividends)
		r.Get("/chart/{ticker}", s.handleChart)
		r.Get("/sources", s.handleSources)
	})

	return r
}

// APIResponse is the standard JSON envelope.
type APIResponse struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data: map[string]any{
			"status":  "ok",
			"time":    time.Now().UTC().Format(time.RFC3339),
			"sources": s.cfg.Sources.Priority,
		},
	})
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	ticker := chi.URLParam(r, "ticker")

	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Minute)
	defer cancel()

	result, err := s.engine.Analyze(ctx, ticker)
	if err != nil {
		if errors.Is(err, utils.ErrMalformedTicker) {
			s.writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    result,
	})
}

func (s *Server) handleMarketNews(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	articles, err := s.news.GetMarketNews(ctx, s.cfg.Sources.NewsLimit)
	if err != nil {
		s.writeError(w, http.StatusBadGateway, err.Error())
		return
	}

	s.writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    articles,
	})
}

func (s *Server) handleStockNews(w http.ResponseWriter, r *http.Request) {
	ticker := chi.URLParam(r, "ticker")
	if err := utils.ValidateTicker(ticker); err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	articles, err := s.news.GetStockNews(ctx, ticker, s.cfg.Sources.NewsLimit)
	if err != nil {
		s.writeError(w, http.StatusBadGateway, err.Error())
		return
	}

	s.writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    articles,
	})
}

func (s *Server) handleDividends(w http.ResponseWriter, r *http.Request) {
	ticker := chi.URLParam(r, "ticker")

	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Minute)
	defer cancel()

	result, err := s.engine.Analyze(ctx, ticker)
	if err != nil {
		if errors.Is(err, utils.ErrMalformedTicker) {
			s.writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data: map[string]any{
			"ticker":    result.Ticker,
			"dividends": result.Fundamentals.Dividends,
		},
	})
}

func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	ticker := chi.URLParam(r, "ticker")
	if err := utils.ValidateTicker(ticker); err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	rng := r.URL.Query().Get("range")
	if rng == "" {
		rng = "6mo"
	}

	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	candles, err := s.charts.GetChart(ctx, ticker, rng)
	if err != nil {
		s.writeError(w, http.StatusBadGateway, err.Error())
		return
	}

	s.writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    candles,
	})
}

func (s *Server) handleSources(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data: map[string]any{
			"priority":           s.cfg.Sources.Priority,
			"finnhub_configured": s.cfg.Sources.FinnhubAPIKey != "",
		},
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Error().Err(err).Msg("failed to write JSON response")
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, APIResponse{
		Success: false,
		Error:   msg,
	})
}
