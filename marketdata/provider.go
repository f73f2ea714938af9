// Package marketdata fetches historical daily OHLCV bars from external
// providers and normalizes them into a validated PriceSeries.
package marketdata

import (
	"context"
	"time"

	"chart-analyst/models"
)

// Provider is the outbound data-fetch collaborator: historical daily bars
// for (ticker, start, end), returned as a validated ascending series
type Provider interface {
	GetDailyBars(ctx context.Context, symbol string, start, end time.Time) (models.PriceSeries, error)
}

// Compile-time interface verification
var _ Provider = (*AlpacaProvider)(nil)
var _ Provider = (*AlphaVantageProvider)(nil)
