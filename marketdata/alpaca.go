package marketdata

import (
	"context"
	"fmt"
	"time"

	"chart-analyst/models"
	"chart-analyst/observability"

	"github.com/alpacahq/alpaca-trade-api-go/v3/marketdata"
	"github.com/shopspring/decimal"
)

// AlpacaProvider fetches daily bars through the Alpaca market data SDK
type AlpacaProvider struct {
	dataClient *marketdata.Client
}

// NewAlpacaProvider creates a new AlpacaProvider instance
func NewAlpacaProvider(apiKey, apiSecret string) *AlpacaProvider {
	return &AlpacaProvider{
		dataClient: marketdata.NewClient(marketdata.ClientOpts{
			APIKey:    apiKey,
			APISecret: apiSecret,
		}),
	}
}

// GetDailyBars returns historical daily bars for a symbol
func (p *AlpacaProvider) GetDailyBars(ctx context.Context, symbol string, start, end time.Time) (models.PriceSeries, error) {
	metrics := observability.GetMetrics()
	metrics.RecordExternalAPIRequest(BreakerAlpaca, "bars")
	timer := metrics.NewTimer()

	bars, err := WithCircuitBreaker(ctx, BreakerAlpaca, func() ([]marketdata.Bar, error) {
		return p.dataClient.GetBars(symbol, marketdata.GetBarsRequest{
			TimeFrame: marketdata.OneDay,
			Start:     start,
			End:       end,
		})
	})

	timer.ObserveExternalAPI(BreakerAlpaca, "bars")
	if err != nil {
		metrics.RecordExternalAPIError(BreakerAlpaca, "bars", "request_failed")
		return nil, fmt.Errorf("failed to get bars for %s: %w", symbol, err)
	}

	series := make(models.PriceSeries, 0, len(bars))
	for _, bar := range bars {
		series = append(series, models.PriceBar{
			Date:   bar.Timestamp.UTC().Truncate(24 * time.Hour),
			Open:   decimal.NewFromFloat(bar.Open),
			High:   decimal.NewFromFloat(bar.High),
			Low:    decimal.NewFromFloat(bar.Low),
			Close:  decimal.NewFromFloat(bar.Close),
			Volume: int64(bar.Volume),
		})
	}

	if err := series.Validate(); err != nil {
		return nil, fmt.Errorf("alpaca returned an invalid series for %s: %w", symbol, err)
	}

	return series, nil
}
