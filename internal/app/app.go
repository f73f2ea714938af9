// Package app holds the per-session state of the dashboard backend: the
// last fetched price series (immutable once stored) and the single-flight
// gate around the remote analysis call.
package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"chart-analyst/analysis"
	"chart-analyst/config"
	"chart-analyst/indicators"
	"chart-analyst/marketdata"
	"chart-analyst/models"
)

// ErrAnalysisInFlight is returned when a second analysis is triggered while
// one is still outstanding. Analysis is single-flight and non-reentrant;
// the caller is expected to try again after the current run completes.
var ErrAnalysisInFlight = errors.New("an analysis is already in flight")

// ErrNoData is returned when indicators or analysis are requested before
// any series has been fetched
var ErrNoData = errors.New("no price data fetched yet")

// session is the immutable result of one fetch
type session struct {
	ticker string
	start  time.Time
	end    time.Time
	series models.PriceSeries
}

// App wires the data provider and analyzer to the HTTP surface
type App struct {
	cfg      *config.Config
	provider marketdata.Provider
	analyzer analysis.Analyzer

	mu      sync.RWMutex
	current *session

	// Capacity 1: at most one analysis request in flight at a time
	analysisSem chan struct{}
}

// New creates a new App
func New(cfg *config.Config, provider marketdata.Provider, analyzer analysis.Analyzer) *App {
	return &App{
		cfg:         cfg,
		provider:    provider,
		analyzer:    analyzer,
		analysisSem: make(chan struct{}, 1),
	}
}

// FetchData retrieves bars for the ticker and date range, validates them,
// and replaces the session series. The stored series is never mutated
// afterwards; indicators and analysis both read from it.
func (a *App) FetchData(ctx context.Context, ticker string, start, end time.Time) (models.PriceSeries, error) {
	if ticker == "" {
		return nil, fmt.Errorf("ticker is required")
	}
	if end.Before(start) {
		return nil, fmt.Errorf("end date %s precedes start date %s", end.Format("2006-01-02"), start.Format("2006-01-02"))
	}

	series, err := a.provider.GetDailyBars(ctx, ticker, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch price data: %w", err)
	}

	a.mu.Lock()
	a.current = &session{ticker: ticker, start: start, end: end, series: series}
	a.mu.Unlock()

	return series, nil
}

// Series returns the stored series, or ErrNoData before the first fetch
func (a *App) Series() (models.PriceSeries, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.current == nil {
		return nil, ErrNoData
	}
	return a.current.series, nil
}

// Indicators computes the selected indicator subset over the stored series
func (a *App) Indicators(specs []indicators.Spec) ([]indicators.Computed, error) {
	series, err := a.Series()
	if err != nil {
		return nil, err
	}

	var computed []indicators.Computed
	for _, spec := range specs {
		computed = append(computed, indicators.Compute(series, spec)...)
	}
	return computed, nil
}

// RunAnalysis builds a fresh AnalysisRequest over the stored series and
// sends it to the remote backend. Single-flight: a concurrent trigger gets
// ErrAnalysisInFlight instead of queuing. Cancellation is not supported
// beyond the backend's fixed timeout.
func (a *App) RunAnalysis(ctx context.Context) (models.AnalysisResult, error) {
	a.mu.RLock()
	current := a.current
	a.mu.RUnlock()
	if current == nil {
		return models.AnalysisResult{}, ErrNoData
	}

	select {
	case a.analysisSem <- struct{}{}:
		defer func() { <-a.analysisSem }()
	default:
		return models.AnalysisResult{}, ErrAnalysisInFlight
	}

	req := models.NewAnalysisRequest(current.ticker, current.start, current.end, current.series)
	return a.analyzer.Analyze(ctx, req), nil
}
