package chart

import (
	"encoding/base64"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"chart-analyst/models"
)

func bar(day int, open, high, low, closePx float64) models.PriceBar {
	return models.PriceBar{
		Date:   time.Date(2024, 1, day, 0, 0, 0, 0, time.UTC),
		Open:   decimal.NewFromFloat(open),
		High:   decimal.NewFromFloat(high),
		Low:    decimal.NewFromFloat(low),
		Close:  decimal.NewFromFloat(closePx),
		Volume: 1000,
	}
}

func TestRenderSVG_EmptySeries(t *testing.T) {
	if _, err := RenderSVG("AAPL", nil); err == nil {
		t.Fatal("expected an error for an empty series")
	}
}

func TestRenderSVG_Structure(t *testing.T) {
	series := models.PriceSeries{
		bar(2, 100, 105, 99, 104),  // up day
		bar(3, 104, 106, 101, 102), // down day
	}

	data, err := RenderSVG("AAPL daily", series)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	svg := string(data)
	if !strings.HasPrefix(svg, "<svg ") || !strings.HasSuffix(svg, "</svg>") {
		t.Fatal("output is not a well-formed SVG document")
	}
	if !strings.Contains(svg, "AAPL daily") {
		t.Error("title missing from the chart")
	}
	if !strings.Contains(svg, "#2e7d32") {
		t.Error("up day not rendered green")
	}
	if !strings.Contains(svg, "#d32f2f") {
		t.Error("down day not rendered red")
	}
	// One wick line and one body rect per bar, plus the background rect
	if got := strings.Count(svg, "<line "); got != 2 {
		t.Errorf("got %d wicks, want 2", got)
	}
	if got := strings.Count(svg, "<rect "); got != 3 {
		t.Errorf("got %d rects, want 3", got)
	}
}

func TestRenderSVG_FlatSeries(t *testing.T) {
	// All prices identical; rendering must not divide by a zero range
	series := models.PriceSeries{
		bar(2, 100, 100, 100, 100),
		bar(3, 100, 100, 100, 100),
	}

	if _, err := RenderSVG("FLAT", series); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestEncodeBase64_RoundTrip(t *testing.T) {
	data, err := RenderSVG("AAPL", models.PriceSeries{bar(2, 100, 105, 99, 104)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	encoded := EncodeBase64(data)
	decoded, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		t.Fatalf("encoded chart is not valid base64: %v", err)
	}
	if string(decoded) != string(data) {
		t.Error("base64 round trip altered the chart bytes")
	}
}
