package main

import (
	"context"
	"net/http"

	"chart-analyst/analysis"
	"chart-analyst/config"
	"chart-analyst/internal/api"
	"chart-analyst/internal/app"
	"chart-analyst/marketdata"
	"chart-analyst/observability"

	"github.com/joho/godotenv"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		observability.Info("no .env file found, using environment variables")
	}

	observability.InitLogger(true)
	observability.InitMetrics()

	// A configuration error is the only condition that halts startup; in
	// particular a missing analysis credential must stop here, before any
	// remote call could be attempted.
	cfg, err := config.Load()
	if err != nil {
		observability.Fatal("invalid configuration", "error", err)
	}

	ctx := context.Background()

	var provider marketdata.Provider
	switch cfg.HTTP.MarketDataProvider {
	case config.ProviderAlpaca:
		provider = marketdata.NewAlpacaProvider(cfg.Alpaca.APIKey, cfg.Alpaca.APISecret)
	case config.ProviderAlphaVantage:
		provider = marketdata.NewAlphaVantageProvider(cfg.AlphaVantage.APIKey)
	}

	var analyzer analysis.Analyzer
	switch cfg.Analysis.Backend {
	case config.BackendBedrock:
		analyzer, err = analysis.NewBedrockAnalyzer(ctx, cfg.Analysis, observability.Logger)
		if err != nil {
			observability.Fatal("failed to initialize bedrock analyzer", "error", err)
		}
	case config.BackendChat:
		analyzer, err = analysis.NewChatCompletionAnalyzer(cfg.Analysis, observability.Logger)
		if err != nil {
			observability.Fatal("failed to initialize chat analyzer", "error", err)
		}
	}

	application := app.New(cfg, provider, analyzer)
	handler := api.NewHandler(application, cfg)
	router := api.NewRouter(handler, cfg)

	observability.Info("starting server",
		"addr", cfg.HTTP.Addr,
		"backend", cfg.Analysis.Backend,
		"provider", cfg.HTTP.MarketDataProvider)

	if err := http.ListenAndServe(cfg.HTTP.Addr, router); err != nil {
		observability.Fatal("server stopped", "error", err)
	}
}
