package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"chart-analyst/models"
	"chart-analyst/observability"

	"github.com/shopspring/decimal"
)

// AlphaVantageProvider fetches daily bars from the Alpha Vantage
// TIME_SERIES_DAILY endpoint
type AlphaVantageProvider struct {
	apiKey     string
	httpClient *http.Client
	baseURL    string
}

// NewAlphaVantageProvider creates a new AlphaVantageProvider instance
func NewAlphaVantageProvider(apiKey string) *AlphaVantageProvider {
	return &AlphaVantageProvider{
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    "https://www.alphavantage.co/query",
	}
}

// dailyResponse carries the provider's two-level layout: an outer series
// key and inner "1. open" … "5. volume" column keys per date
type dailyResponse struct {
	ErrorMessage string                       `json:"Error Message"`
	Note         string                       `json:"Note"`
	TimeSeries   map[string]map[string]string `json:"Time Series (Daily)"`
}

// GetDailyBars returns daily bars for a symbol within [start, end],
// ascending by date. The provider's multi-level column keys are normalized
// into flat OHLCV fields; rows that fail to parse are skipped.
func (p *AlphaVantageProvider) GetDailyBars(ctx context.Context, symbol string, start, end time.Time) (models.PriceSeries, error) {
	metrics := observability.GetMetrics()
	metrics.RecordExternalAPIRequest(BreakerAlphaVantage, "daily")
	timer := metrics.NewTimer()

	resp, err := WithCircuitBreaker(ctx, BreakerAlphaVantage, func() (*dailyResponse, error) {
		return p.fetchDaily(ctx, symbol)
	})

	timer.ObserveExternalAPI(BreakerAlphaVantage, "daily")
	if err != nil {
		metrics.RecordExternalAPIError(BreakerAlphaVantage, "daily", "request_failed")
		return nil, err
	}

	series := make(models.PriceSeries, 0, len(resp.TimeSeries))
	for dateStr, columns := range resp.TimeSeries {
		bar, err := normalizeRow(dateStr, columns)
		if err != nil {
			observability.Warn("skipping malformed bar", "symbol", symbol, "date", dateStr, "error", err)
			continue
		}
		if bar.Date.Before(start) || bar.Date.After(end) {
			continue
		}
		series = append(series, bar)
	}

	sort.Slice(series, func(i, j int) bool { return series[i].Date.Before(series[j].Date) })

	if err := series.Validate(); err != nil {
		return nil, fmt.Errorf("alphavantage returned an invalid series for %s: %w", symbol, err)
	}

	return series, nil
}

func (p *AlphaVantageProvider) fetchDaily(ctx context.Context, symbol string) (*dailyResponse, error) {
	params := url.Values{}
	params.Set("function", "TIME_SERIES_DAILY")
	params.Set("symbol", symbol)
	params.Set("outputsize", "full")
	params.Set("apikey", p.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch daily series: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("alphavantage returned HTTP %d", resp.StatusCode)
	}

	var parsed dailyResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("failed to decode daily series: %w", err)
	}

	if parsed.ErrorMessage != "" {
		return nil, fmt.Errorf("alphavantage error: %s", parsed.ErrorMessage)
	}
	if parsed.Note != "" {
		return nil, fmt.Errorf("alphavantage throttled: %s", parsed.Note)
	}
	if len(parsed.TimeSeries) == 0 {
		return nil, fmt.Errorf("alphavantage returned no daily series for %s", symbol)
	}

	return &parsed, nil
}

// normalizeRow flattens one date's numbered column keys into a PriceBar
func normalizeRow(dateStr string, columns map[string]string) (models.PriceBar, error) {
	date, err := time.Parse("2006-01-02", dateStr)
	if err != nil {
		return models.PriceBar{}, fmt.Errorf("bad date %q: %w", dateStr, err)
	}

	flat := make(map[string]string, len(columns))
	for key, value := range columns {
		flat[normalizeColumnKey(key)] = value
	}

	open, err := parsePrice(flat, "open")
	if err != nil {
		return models.PriceBar{}, err
	}
	high, err := parsePrice(flat, "high")
	if err != nil {
		return models.PriceBar{}, err
	}
	low, err := parsePrice(flat, "low")
	if err != nil {
		return models.PriceBar{}, err
	}
	closePx, err := parsePrice(flat, "close")
	if err != nil {
		return models.PriceBar{}, err
	}

	volumeStr, ok := flat["volume"]
	if !ok {
		return models.PriceBar{}, fmt.Errorf("missing volume column")
	}
	volume, err := strconv.ParseInt(volumeStr, 10, 64)
	if err != nil {
		return models.PriceBar{}, fmt.Errorf("bad volume %q: %w", volumeStr, err)
	}

	bar := models.PriceBar{
		Date:   date,
		Open:   open,
		High:   high,
		Low:    low,
		Close:  closePx,
		Volume: volume,
	}
	if err := bar.Validate(); err != nil {
		return models.PriceBar{}, err
	}
	return bar, nil
}

// normalizeColumnKey strips the "1. " ordinal prefix Alpha Vantage puts on
// its column names, leaving the flat OHLCV name
func normalizeColumnKey(key string) string {
	if i := strings.Index(key, ". "); i >= 0 {
		key = key[i+2:]
	}
	return strings.ToLower(strings.TrimSpace(key))
}

func parsePrice(flat map[string]string, column string) (decimal.Decimal, error) {
	raw, ok := flat[column]
	if !ok {
		return decimal.Zero, fmt.Errorf("missing %s column", column)
	}
	value, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("bad %s %q: %w", column, raw, err)
	}
	return value, nil
}
