// Package engine orchestrates one analysis run: ticker validation, fetch,
// reconciliation, valuation, aggregation and scoring, assembled into a
// single AnalysisResult.
package engine

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/adalbertobrant/fundamentalistapro/internal/config"
	"github.com/adalbertobrant/fundamentalistapro/internal/reconcile"
	"github.com/adalbertobrant/fundamentalistapro/internal/score"
	"github.com/adalbertobrant/fundamentalistapro/internal/valuation"
	"github.com/adalbertobrant/fundamentalistapro/pkg/models"
	"github.com/adalbertobrant/fundamentalistapro/pkg/utils"
)

// Fetcher delivers the per-source raw records for a ticker. A source that
// fails or returns nothing simply contributes no record; the engine treats
// missing data as unresolved fields, never as an error.
type Fetcher interface {
	FetchAll(ctx context.Context, ticker string) []*models.RawSourceRecord
}

// Engine runs the full analysis pipeline.
type Engine struct {
	fetcher   Fetcher
	priority  []string
	weights   map[models.ModelName]float64
	valParams valuation.Params
	scoParams score.Params
	log       zerolog.Logger
}

// New builds an Engine from the loaded configuration.
func New(fetcher Fetcher, cfg *config.Config, log zerolog.Logger) *Engine {
	weights := make(map[models.ModelName]float64, len(cfg.Valuation.Weights))
	for name, w := range cfg.Valuation.Weights {
		weights[models.ModelName(name)] = w
	}

	return &Engine{
		fetcher:  fetcher,
		priority: cfg.Sources.Priority,
		weights:  weights,
		valParams: valuation.Params{
			RequiredReturn:      cfg.Valuation.RequiredReturn,
			DDMPriceCapMultiple: cfg.Valuation.DDMPriceCapMultiple,
			PEBaseMultiple:      cfg.Valuation.PEBaseMultiple,
			PEStepMultiple:      cfg.Valuation.PEStepMultiple,
			MinPEMultiple:       cfg.Valuation.MinPEMultiple,
			MaxPEMultiple:       cfg.Valuation.MaxPEMultiple,
			PVPBaseMultiple:     cfg.Valuation.PVPBaseMultiple,
			PVPTier1ROE:         cfg.Valuation.PVPTier1ROE,
			PVPTier1:            cfg.Valuation.PVPTier1,
			PVPTier2ROE:         cfg.Valuation.PVPTier2ROE,
			PVPTier2:            cfg.Valuation.PVPTier2,
			PVPTier3ROE:         cfg.Valuation.PVPTier3ROE,
			PVPTier3:            cfg.Valuation.PVPTier3,
		},
		scoParams: score.Params{
			SellBelow:           cfg.Scoring.SellBelow,
			BuyAbove:            cfg.Scoring.BuyAbove,
			UpsideWeight:        cfg.Scoring.UpsideWeight,
			ProfitabilityWeight: cfg.Scoring.ProfitabilityWeight,
			BalanceWeight:       cfg.Scoring.BalanceWeight,
			MagicFormulaWeight:  cfg.Scoring.MagicFormulaWeight,
		},
		log: log,
	}
}

// Analyze runs the pipeline for one ticker. The only reportable error is a
// malformed ticker; every other degradation (unreachable sources, sparse
// data, models that cannot price) is carried inside the result.
func (e *Engine) Analyze(ctx context.Context, ticker string) (*models.AnalysisResult, error) {
	if err := utils.ValidateTicker(ticker); err != nil {
		return nil, err
	}
	base := utils.NormalizeTicker(ticker)

	start := time.Now()
	records := e.fetcher.FetchAll(ctx, base)
	e.log.Debug().
		Str("ticker", base).
		Int("sources", len(records)).
		Dur("fetch", time.Since(start)).
		Msg("fetch complete")

	fundamentals := reconcile.Reconcile(records, e.priority)
	if fundamentals.Ticker == "" {
		fundamentals.Ticker = base
	}

	estimates := e.valuate(ctx, fundamentals)
	agg := valuation.Aggregate(estimates, e.weights)

	var magic models.MagicFormulaRatios
	for _, est := range estimates {
		if est.Model == models.ModelMagicFormula && est.Ratios != nil {
			magic = *est.Ratios
		}
	}

	verdict := score.Score(fundamentals, agg, magic, e.scoParams)

	e.log.Info().
		Str("ticker", base).
		Int("resolved_fields", fundamentals.ResolvedCount()).
		Bool("fair_price_computable", agg.Computable).
		Float64("score", verdict.Score).
		Str("recommendation", string(verdict.Recommendation)).
		Bool("low_confidence", verdict.LowConfidence).
		Dur("elapsed", time.Since(start)).
		Msg("analysis complete")

	return &models.AnalysisResult{
		Ticker:         base,
		CompanyName:    fundamentals.CompanyName,
		Fundamentals:   fundamentals,
		Estimates:      estimates,
		Aggregated:     agg,
		MagicFormula:   magic,
		Score:          verdict.Score,
		Recommendation: verdict.Recommendation,
		LowConfidence:  verdict.LowConfidence,
		Strengths:      verdict.Strengths,
		Weaknesses:     verdict.Weaknesses,
		GeneratedAt:    time.Now().UTC(),
	}, nil
}

// valuate runs every calculator concurrently. The calculators are pure and
// never fail, so the group collects results only; estimate order stays
// canonical regardless of completion order.
func (e *Engine) valuate(ctx context.Context, f models.CanonicalFundamentals) []models.ValuationEstimate {
	calcs := valuation.Calculators(e.valParams)
	estimates := make([]models.ValuationEstimate, len(calcs))

	g, _ := errgroup.WithContext(ctx)
	for i, c := range calcs {
		i, c := i, c
		g.Go(func() error {
			estimates[i] = c.Estimate(f)
			return nil
		})
	}
	_ = g.Wait()

	return estimates
}
