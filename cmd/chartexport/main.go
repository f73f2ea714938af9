// chartexport is a standalone one-shot utility: fetch daily bars for a
// ticker, render a candlestick chart and print it as a base64-encoded
// string. It is not part of the interactive dashboard backend.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"chart-analyst/chart"
	"chart-analyst/config"
	"chart-analyst/marketdata"
	"chart-analyst/observability"

	"github.com/joho/godotenv"
)

func main() {
	ticker := flag.String("ticker", "AAPL", "ticker symbol to chart")
	startFlag := flag.String("start", "2023-01-01", "start date (YYYY-MM-DD)")
	endFlag := flag.String("end", "2024-12-14", "end date (YYYY-MM-DD)")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		observability.Info("no .env file found, using environment variables")
	}
	observability.InitLogger(false)

	start, err := time.Parse("2006-01-02", *startFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid start date: %v\n", err)
		os.Exit(1)
	}
	end, err := time.Parse("2006-01-02", *endFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid end date: %v\n", err)
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(1)
	}

	var provider marketdata.Provider
	switch cfg.HTTP.MarketDataProvider {
	case config.ProviderAlpaca:
		provider = marketdata.NewAlpacaProvider(cfg.Alpaca.APIKey, cfg.Alpaca.APISecret)
	default:
		provider = marketdata.NewAlphaVantageProvider(cfg.AlphaVantage.APIKey)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	series, err := provider.GetDailyBars(ctx, *ticker, start, end)
	if err != nil {
		fmt.Fprintf(os.Stderr, "fetch failed: %v\n", err)
		os.Exit(1)
	}

	svg, err := chart.RenderSVG(*ticker, series)
	if err != nil {
		fmt.Fprintf(os.Stderr, "render failed: %v\n", err)
		os.Exit(1)
	}

	encoded := chart.EncodeBase64(svg)
	if len(encoded) > 60 {
		fmt.Printf("Base64 Image Data: %s...[truncated]...%s\n", encoded[:30], encoded[len(encoded)-30:])
	} else {
		fmt.Printf("Base64 Image Data: %s\n", encoded)
	}
}
