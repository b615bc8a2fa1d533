// Analisador Fundamentalista PRO — análise fundamentalista de ações B3.
//
// Main CLI entrypoint using cobra command framework.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/adalbertobrant/fundamentalistapro/api"
	"github.com/adalbertobrant/fundamentalistapro/internal/config"
	"github.com/adalbertobrant/fundamentalistapro/internal/datasource"
	"github.com/adalbertobrant/fundamentalistapro/internal/engine"
	"github.com/adalbertobrant/fundamentalistapro/internal/export"
	"github.com/adalbertobrant/fundamentalistapro/pkg/logger"
	"github.com/adalbertobrant/fundamentalistapro/pkg/models"
	"github.com/adalbertobrant/fundamentalistapro/pkg/utils"
)

// Build-time variables (set via -ldflags).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Global state shared across commands, set in PersistentPreRunE.
var (
	cfg *config.Config
	log zerolog.Logger
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "fundamentalista",
	Short: "Analisador Fundamentalista PRO — análise de ações B3",
	Long: `Analisador Fundamentalista PRO
Concilia fundamentos de múltiplas fontes (Fundamentus, Finnhub, Yahoo
Finance), calcula preço justo por cinco modelos (Graham, DDM, P/L e P/VP
ajustados, Fórmula Mágica) e emite nota e recomendação.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		configFile, _ := cmd.Flags().GetString("config")
		if configFile != "" {
			cfg, err = config.LoadFromFile(configFile)
		} else {
			cfg, err = config.Load()
		}
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		level := cfg.Logging.Level
		if override, _ := cmd.Flags().GetString("log-level"); override != "" {
			level = override
		}
		log, err = logger.New(logger.Config{
			Level:  level,
			Format: cfg.Logging.Format,
		})
		if err != nil {
			return fmt.Errorf("failed to set up logging: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file path (default: ./config/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "log level override (debug, info, warn, error)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(newsCmd)
	rootCmd.AddCommand(sourcesCmd)
	rootCmd.AddCommand(serveCmd)
}

// buildStack assembles the source registry, aggregator and engine from the
// loaded config.
func buildStack() (*engine.Engine, *datasource.YFinance, *datasource.News) {
	cacheTTL := time.Duration(cfg.Sources.CacheTTLSec) * time.Second
	yf := datasource.NewYFinance(cacheTTL)

	registry := datasource.NewRegistry(cfg.Sources.Priority)
	registry.Register(datasource.NewFundamentus(cacheTTL))
	registry.Register(datasource.NewFinnhub(cfg.Sources.FinnhubAPIKey, cacheTTL))
	registry.Register(yf)

	timeout := time.Duration(cfg.Sources.FetchTimeoutSec) * time.Second
	agg := datasource.NewAggregator(registry, timeout, log)

	return engine.New(agg, cfg, log), yf, datasource.NewNews()
}

// --- Version Command ---

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("Analisador Fundamentalista PRO %s\n", version)
		fmt.Printf("  commit:  %s\n", commit)
		fmt.Printf("  built:   %s\n", date)
	},
}

// --- Analyze Command ---

var analyzeCmd = &cobra.Command{
	Use:   "analyze [ticker]",
	Short: "Analisa uma ação e imprime preço justo, nota e recomendação",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), 2*time.Minute)
		defer cancel()

		eng, _, _ := buildStack()
		activity, err := logger.NewActivity(cfg.Logging.ActivityFile)
		if err != nil {
			return err
		}

		result, err := eng.Analyze(ctx, args[0])
		if err != nil {
			activity.Record(utils.NormalizeTicker(args[0]), "error")
			return err
		}
		activity.Record(result.Ticker, "ok")

		printResult(result)

		if save, _ := cmd.Flags().GetBool("save"); save {
			path, err := export.New(cfg.Export.Dir).Export(result)
			if err != nil {
				return err
			}
			fmt.Printf("\nAnálise salva em %s\n", path)
		}
		return nil
	},
}

func init() {
	analyzeCmd.Flags().Bool("save", false, "salva a análise em JSON no diretório de exportação")
}

// printResult renders an analysis to the terminal.
func printResult(r *models.AnalysisResult) {
	name := r.CompanyName
	if name == "" {
		name = r.Ticker
	}
	fmt.Printf("\n%s (%s)\n", name, r.Ticker)
	fmt.Printf("Fontes consultadas: %d · campos resolvidos: %d\n\n",
		len(r.Fundamentals.Sources), r.Fundamentals.ResolvedCount())

	if price, ok := r.Fundamentals.Get(models.FieldPrice); ok {
		fmt.Printf("Cotação atual:  %s\n", utils.FormatBRL(price))
	}

	fmt.Println("\nPreço justo por modelo:")
	for _, est := range r.Estimates {
		if est.Model == models.ModelMagicFormula {
			continue
		}
		if est.Computable {
			fmt.Printf("  %-14s %s\n", est.Model, utils.FormatBRL(est.FairPrice))
		} else {
			fmt.Printf("  %-14s n/d (%s)\n", est.Model, est.Reason)
		}
	}

	if r.Aggregated.Computable {
		fmt.Printf("\nPreço justo ponderado: %s\n", utils.FormatBRL(r.Aggregated.FairPrice))
	} else {
		fmt.Println("\nPreço justo ponderado: não calculável com os dados disponíveis")
	}

	if r.MagicFormula.EarningsYieldOK {
		fmt.Printf("Earnings yield (Greenblatt): %s\n", utils.FormatPct(r.MagicFormula.EarningsYield))
	}
	if r.MagicFormula.ReturnOnCapitalOK {
		fmt.Printf("Retorno s/ capital (Greenblatt): %s\n", utils.FormatPct(r.MagicFormula.ReturnOnCapital))
	}

	confidence := ""
	if r.LowConfidence {
		confidence = " (confiança reduzida)"
	}
	fmt.Printf("\nNota: %.1f/100 · Recomendação: %s%s\n", r.Score, r.Recommendation, confidence)

	if len(r.Strengths) > 0 {
		fmt.Println("\nPontos fortes:")
		for _, s := range r.Strengths {
			fmt.Printf("  + %s\n", s)
		}
	}
	if len(r.Weaknesses) > 0 {
		fmt.Println("\nPontos fracos:")
		for _, w := range r.Weaknesses {
			fmt.Printf("  - %s\n", w)
		}
	}
}

// --- News Command ---

var newsCmd = &cobra.Command{
	Use:   "news [ticker]",
	Short: "Mostra manchetes recentes sobre uma ação",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := utils.ValidateTicker(args[0]); err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
		defer cancel()

		_, _, news := buildStack()
		articles, err := news.GetStockNews(ctx, args[0], cfg.Sources.NewsLimit)
		if err != nil {
			return err
		}

		if len(articles) == 0 {
			fmt.Println("Nenhuma manchete encontrada.")
			return nil
		}
		for _, a := range articles {
			fmt.Printf("• %s\n  %s (%s)\n", a.Title, a.URL, a.Source)
		}
		return nil
	},
}

// --- Sources Command ---

var sourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: "Lista as fontes de dados e sua ordem de prioridade",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("Fontes em ordem de prioridade:")
		for i, name := range cfg.Sources.Priority {
			note := ""
			if name == datasource.SourceFinnhub && cfg.Sources.FinnhubAPIKey == "" {
				note = " (sem chave de API — inativa)"
			}
			fmt.Printf("  %d. %s%s\n", i+1, name, note)
		}
	},
}

// --- Serve Command ---

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Inicia o servidor HTTP da API",
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, yf, news := buildStack()
		srv := api.NewServer(cfg, eng, yf, news, log)

		addr := fmt.Sprintf("%s:%d", cfg.API.Host, cfg.API.Port)
		return srv.ListenAndServe(addr)
	},
}
