// Package chart renders a price series as a candlestick SVG, used by the
// one-shot export utility. The interactive dashboard renders its own charts;
// nothing here is part of the service surface.
package chart

import (
	"encoding/base64"
	"fmt"
	"strings"

	"chart-analyst/models"
)

const (
	defaultWidth  = 960
	defaultHeight = 480
	marginX       = 40.0
	marginY       = 20.0
)

// RenderSVG draws the series as a candlestick chart. Bars where close >= open
// render green, the rest red. Returns an error for an empty series.
func RenderSVG(title string, series models.PriceSeries) ([]byte, error) {
	if len(series) == 0 {
		return nil, fmt.Errorf("cannot render an empty series")
	}

	low := series[0].Low.InexactFloat64()
	high := series[0].High.InexactFloat64()
	for _, bar := range series {
		if l := bar.Low.InexactFloat64(); l < low {
			low = l
		}
		if h := bar.High.InexactFloat64(); h > high {
			high = h
		}
	}
	if high == low {
		high = low + 1
	}

	plotW := float64(defaultWidth) - 2*marginX
	plotH := float64(defaultHeight) - 2*marginY
	slot := plotW / float64(len(series))
	bodyW := slot * 0.6

	// y grows downward in SVG, so invert the price axis
	y := func(price float64) float64 {
		return marginY + plotH*(high-price)/(high-low)
	}

	var b strings.Builder
	fmt.Fprintf(&b, `<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">`,
		defaultWidth, defaultHeight, defaultWidth, defaultHeight)
	fmt.Fprintf(&b, `<rect width="%d" height="%d" fill="white"/>`, defaultWidth, defaultHeight)
	fmt.Fprintf(&b, `<text x="%f" y="%f" font-family="sans-serif" font-size="14">%s</text>`,
		marginX, marginY-4, title)

	for i, bar := range series {
		cx := marginX + slot*(float64(i)+0.5)
		open := bar.Open.InexactFloat64()
		closePx := bar.Close.InexactFloat64()

		color := "#d32f2f"
		if closePx >= open {
			color = "#2e7d32"
		}

		// Wick
		fmt.Fprintf(&b, `<line x1="%f" y1="%f" x2="%f" y2="%f" stroke="%s" stroke-width="1"/>`,
			cx, y(bar.High.InexactFloat64()), cx, y(bar.Low.InexactFloat64()), color)

		// Body
		top, bottom := open, closePx
		if closePx > open {
			top, bottom = closePx, open
		}
		bodyH := y(bottom) - y(top)
		if bodyH < 1 {
			bodyH = 1
		}
		fmt.Fprintf(&b, `<rect x="%f" y="%f" width="%f" height="%f" fill="%s"/>`,
			cx-bodyW/2, y(top), bodyW, bodyH, color)
	}

	b.WriteString(`</svg>`)
	return []byte(b.String()), nil
}

// EncodeBase64 returns the standard base64 encoding of rendered chart bytes
func EncodeBase64(data []byte) string {
	return base64.StdEncoding.EncodeToString(data)
}
