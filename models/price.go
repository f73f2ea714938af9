package models

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// PriceBar represents one day's OHLCV record for a ticker
type PriceBar struct {
	Date   time.Time       `json:"date"`
	Open   decimal.Decimal `json:"open"`
	High   decimal.Decimal `json:"high"`
	Low    decimal.Decimal `json:"low"`
	Close  decimal.Decimal `json:"close"`
	Volume int64           `json:"volume"`
}

// Validate checks the bar invariant: low <= open,close <= high and volume >= 0
func (b PriceBar) Validate() error {
	if b.Volume < 0 {
		return fmt.Errorf("bar %s: volume must be non-negative, got %d", b.Date.Format("2006-01-02"), b.Volume)
	}
	if b.Low.GreaterThan(b.Open) || b.Low.GreaterThan(b.Close) {
		return fmt.Errorf("bar %s: low %s exceeds open %s or close %s", b.Date.Format("2006-01-02"), b.Low, b.Open, b.Close)
	}
	if b.High.LessThan(b.Open) || b.High.LessThan(b.Close) {
		return fmt.Errorf("bar %s: high %s below open %s or close %s", b.Date.Format("2006-01-02"), b.High, b.Open, b.Close)
	}
	return nil
}

// PriceSeries is an ordered sequence of daily bars, strictly increasing by
// date with no duplicates. It is treated as immutable once fetched.
type PriceSeries []PriceBar

// Validate checks every bar invariant and the strict date ordering
func (s PriceSeries) Validate() error {
	for i, bar := range s {
		if err := bar.Validate(); err != nil {
			return err
		}
		if i > 0 && !s[i-1].Date.Before(bar.Date) {
			return fmt.Errorf("series not strictly increasing by date at %s", bar.Date.Format("2006-01-02"))
		}
	}
	return nil
}

// Closes returns the close prices as float64 for indicator math
func (s PriceSeries) Closes() []float64 {
	closes := make([]float64, len(s))
	for i, bar := range s {
		closes[i] = bar.Close.InexactFloat64()
	}
	return closes
}

// Dates returns the date column of the series
func (s PriceSeries) Dates() []time.Time {
	dates := make([]time.Time, len(s))
	for i, bar := range s {
		dates[i] = bar.Date
	}
	return dates
}
