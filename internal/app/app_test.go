package app

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"chart-analyst/config"
	"chart-analyst/indicators"
	"chart-analyst/models"
)

type stubProvider struct {
	series models.PriceSeries
	err    error
	calls  int
}

func (s *stubProvider) GetDailyBars(ctx context.Context, symbol string, start, end time.Time) (models.PriceSeries, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.series, nil
}

type stubAnalyzer struct {
	mu     sync.Mutex
	calls  int
	block  chan struct{}
	result models.AnalysisResult
}

func (s *stubAnalyzer) Analyze(ctx context.Context, req models.AnalysisRequest) models.AnalysisResult {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
	if s.block != nil {
		<-s.block
	}
	return s.result
}

func makeSeries(n int) models.PriceSeries {
	base := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	series := make(models.PriceSeries, n)
	for i := range series {
		px := decimal.NewFromInt(int64(100 + i))
		series[i] = models.PriceBar{
			Date:   base.AddDate(0, 0, i),
			Open:   px,
			High:   px.Add(decimal.NewFromInt(1)),
			Low:    px.Sub(decimal.NewFromInt(1)),
			Close:  px,
			Volume: 1000,
		}
	}
	return series
}

func newTestApp(provider *stubProvider, analyzer *stubAnalyzer) *App {
	return New(config.NewTestConfig(), provider, analyzer)
}

func TestFetchData_StoresSeries(t *testing.T) {
	provider := &stubProvider{series: makeSeries(5)}
	app := newTestApp(provider, &stubAnalyzer{})

	got, err := app.FetchData(context.Background(), "AAPL", day("2024-01-01"), day("2024-01-31"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 5 {
		t.Fatalf("got %d bars, want 5", len(got))
	}

	stored, err := app.Series()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(stored) != 5 {
		t.Errorf("stored %d bars, want 5", len(stored))
	}
}

func TestFetchData_Validation(t *testing.T) {
	provider := &stubProvider{series: makeSeries(5)}
	app := newTestApp(provider, &stubAnalyzer{})

	if _, err := app.FetchData(context.Background(), "", day("2024-01-01"), day("2024-01-31")); err == nil {
		t.Error("expected an error for an empty ticker")
	}
	if _, err := app.FetchData(context.Background(), "AAPL", day("2024-01-31"), day("2024-01-01")); err == nil {
		t.Error("expected an error for an inverted date range")
	}
	if provider.calls != 0 {
		t.Errorf("provider was called %d times for invalid input", provider.calls)
	}
}

func TestFetchData_ProviderError(t *testing.T) {
	providerErr := errors.New("provider down")
	app := newTestApp(&stubProvider{err: providerErr}, &stubAnalyzer{})

	_, err := app.FetchData(context.Background(), "AAPL", day("2024-01-01"), day("2024-01-31"))
	if !errors.Is(err, providerErr) {
		t.Fatalf("error = %v, want it to wrap the provider error", err)
	}

	if _, err := app.Series(); !errors.Is(err, ErrNoData) {
		t.Errorf("Series after failed fetch = %v, want ErrNoData", err)
	}
}

func TestIndicators_BeforeFetch(t *testing.T) {
	app := newTestApp(&stubProvider{}, &stubAnalyzer{})

	_, err := app.Indicators([]indicators.Spec{indicators.SMASpec{Window: 3}})
	if !errors.Is(err, ErrNoData) {
		t.Fatalf("error = %v, want ErrNoData", err)
	}
}

func TestIndicators_OverStoredSeries(t *testing.T) {
	app := newTestApp(&stubProvider{series: makeSeries(30)}, &stubAnalyzer{})
	if _, err := app.FetchData(context.Background(), "AAPL", day("2024-01-01"), day("2024-03-01")); err != nil {
		t.Fatalf("fetch failed: %v", err)
	}

	computed, err := app.Indicators([]indicators.Spec{
		indicators.SMASpec{Window: 20},
		indicators.BollingerSpec{Window: 20, K: 2.0},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// SMA yields one output, Bollinger three
	if len(computed) != 4 {
		t.Fatalf("got %d computed series, want 4", len(computed))
	}
}

func TestRunAnalysis_BeforeFetch(t *testing.T) {
	app := newTestApp(&stubProvider{}, &stubAnalyzer{})

	_, err := app.RunAnalysis(context.Background())
	if !errors.Is(err, ErrNoData) {
		t.Fatalf("error = %v, want ErrNoData", err)
	}
}

func TestRunAnalysis_ReturnsAnalyzerResult(t *testing.T) {
	analyzer := &stubAnalyzer{result: models.Success("HOLD with medium confidence")}
	app := newTestApp(&stubProvider{series: makeSeries(5)}, analyzer)
	if _, err := app.FetchData(context.Background(), "AAPL", day("2024-01-01"), day("2024-01-31")); err != nil {
		t.Fatalf("fetch failed: %v", err)
	}

	result, err := app.RunAnalysis(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.OK || result.Text != "HOLD with medium confidence" {
		t.Errorf("result = %+v, want the analyzer's success", result)
	}
}

func TestRunAnalysis_SingleFlight(t *testing.T) {
	analyzer := &stubAnalyzer{
		block:  make(chan struct{}),
		result: models.Success("ok"),
	}
	app := newTestApp(&stubProvider{series: makeSeries(5)}, analyzer)
	if _, err := app.FetchData(context.Background(), "AAPL", day("2024-01-01"), day("2024-01-31")); err != nil {
		t.Fatalf("fetch failed: %v", err)
	}

	firstDone := make(chan error, 1)
	go func() {
		_, err := app.RunAnalysis(context.Background())
		firstDone <- err
	}()

	// Wait for the first run to reach the analyzer
	deadline := time.After(time.Second)
	for {
		analyzer.mu.Lock()
		started := analyzer.calls > 0
		analyzer.mu.Unlock()
		if started {
			break
		}
		select {
		case <-deadline:
			t.Fatal("first analysis never started")
		case <-time.After(time.Millisecond):
		}
	}

	_, err := app.RunAnalysis(context.Background())
	if !errors.Is(err, ErrAnalysisInFlight) {
		t.Fatalf("second trigger error = %v, want ErrAnalysisInFlight", err)
	}

	close(analyzer.block)
	if err := <-firstDone; err != nil {
		t.Fatalf("first analysis error = %v", err)
	}

	// The slot is free again once the first run completes
	analyzer.block = nil
	if _, err := app.RunAnalysis(context.Background()); err != nil {
		t.Fatalf("analysis after completion error = %v", err)
	}

	analyzer.mu.Lock()
	defer analyzer.mu.Unlock()
	if analyzer.calls != 2 {
		t.Errorf("analyzer ran %d times, want 2", analyzer.calls)
	}
}

func day(s string) time.Time {
	d, _ := time.Parse("2006-01-02", s)
	return d
}
