package models

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func bar(date string, open, high, low, closePx float64, volume int64) PriceBar {
	d, _ := time.Parse("2006-01-02", date)
	return PriceBar{
		Date:   d,
		Open:   decimal.NewFromFloat(open),
		High:   decimal.NewFromFloat(high),
		Low:    decimal.NewFromFloat(low),
		Close:  decimal.NewFromFloat(closePx),
		Volume: volume,
	}
}

func TestPriceBar_Validate(t *testing.T) {
	tests := []struct {
		name    string
		bar     PriceBar
		wantErr bool
	}{
		{"valid bar", bar("2024-01-02", 10, 12, 9, 11, 1000), false},
		{"flat bar", bar("2024-01-02", 10, 10, 10, 10, 0), false},
		{"low above open", bar("2024-01-02", 10, 12, 11, 11.5, 1000), true},
		{"high below close", bar("2024-01-02", 10, 10.5, 9, 11, 1000), true},
		{"negative volume", bar("2024-01-02", 10, 12, 9, 11, -1), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.bar.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestPriceSeries_Validate(t *testing.T) {
	tests := []struct {
		name    string
		series  PriceSeries
		wantErr bool
	}{
		{"empty series", PriceSeries{}, false},
		{
			"ascending dates",
			PriceSeries{bar("2024-01-02", 10, 12, 9, 11, 1), bar("2024-01-03", 11, 13, 10, 12, 1)},
			false,
		},
		{
			"duplicate dates",
			PriceSeries{bar("2024-01-02", 10, 12, 9, 11, 1), bar("2024-01-02", 11, 13, 10, 12, 1)},
			true,
		},
		{
			"descending dates",
			PriceSeries{bar("2024-01-03", 10, 12, 9, 11, 1), bar("2024-01-02", 11, 13, 10, 12, 1)},
			true,
		},
		{
			"invalid bar inside series",
			PriceSeries{bar("2024-01-02", 10, 12, 9, 11, 1), bar("2024-01-03", 11, 10, 10, 12, 1)},
			true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.series.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestNewAnalysisRequest(t *testing.T) {
	series := PriceSeries{bar("2024-01-02", 10, 12, 9, 11, 1)}
	start, _ := time.Parse("2006-01-02", "2024-01-01")
	end, _ := time.Parse("2006-01-02", "2024-01-31")

	req := NewAnalysisRequest("AAPL", start, end, series)

	if req.Ticker != "AAPL" {
		t.Errorf("Ticker = %s, want AAPL", req.Ticker)
	}
	if req.ID.String() == "00000000-0000-0000-0000-000000000000" {
		t.Error("request ID should be populated")
	}
	if len(req.Series) != 1 {
		t.Errorf("Series length = %d, want 1", len(req.Series))
	}
}

func TestAnalysisResult_Variants(t *testing.T) {
	success := Success("BUY, High confidence")
	if !success.OK || success.Text != "BUY, High confidence" || success.Kind != "" {
		t.Errorf("Success() built unexpected result: %+v", success)
	}

	failure := Failure(ErrKindHTTP, "analysis endpoint returned HTTP 500", "internal error")
	if failure.OK || failure.Kind != ErrKindHTTP || failure.Detail != "internal error" {
		t.Errorf("Failure() built unexpected result: %+v", failure)
	}
}
