// Package indicators computes derived series (SMA, EMA, Bollinger Bands,
// VWAP) over an ordered daily price series. All functions are pure and never
// mutate their input; warm-up gaps are expressed through a defined-mask so
// no placeholder value is ever mistaken for a real one.
package indicators

import (
	"math"
	"time"

	"chart-analyst/models"
)

// Series is a derived value per bar of the source series. Values[i] is
// meaningful only where Defined[i] is true (warm-up windows and zero-volume
// VWAP prefixes leave gaps).
type Series struct {
	Dates   []time.Time `json:"dates"`
	Values  []float64   `json:"values"`
	Defined []bool      `json:"defined"`
}

func newSeries(ps models.PriceSeries) Series {
	return Series{
		Dates:   ps.Dates(),
		Values:  make([]float64, len(ps)),
		Defined: make([]bool, len(ps)),
	}
}

// At returns the value at index i and whether it is defined
func (s Series) At(i int) (float64, bool) {
	if i < 0 || i >= len(s.Values) || !s.Defined[i] {
		return 0, false
	}
	return s.Values[i], true
}

// DefinedCount returns the number of defined values
func (s Series) DefinedCount() int {
	n := 0
	for _, d := range s.Defined {
		if d {
			n++
		}
	}
	return n
}

// SMA computes the simple moving average of close prices over a trailing
// window. Values are undefined for the first window-1 bars. A window larger
// than the series leaves every value undefined; an empty series yields an
// empty output.
func SMA(ps models.PriceSeries, window int) Series {
	out := newSeries(ps)
	if window <= 0 || len(ps) == 0 {
		return out
	}

	closes := ps.Closes()
	sum := 0.0
	for i, c := range closes {
		sum += c
		if i >= window {
			sum -= closes[i-window]
		}
		if i >= window-1 {
			out.Values[i] = sum / float64(window)
			out.Defined[i] = true
		}
	}
	return out
}

// EMA computes the exponential moving average of close prices with smoothing
// factor 2/(span+1), seeded by the first close. Defined for every index, no
// warm-up gap.
func EMA(ps models.PriceSeries, span int) Series {
	out := newSeries(ps)
	if span <= 0 || len(ps) == 0 {
		return out
	}

	alpha := 2.0 / float64(span+1)
	closes := ps.Closes()
	prev := closes[0]
	for i, c := range closes {
		if i == 0 {
			out.Values[i] = c
		} else {
			prev = alpha*c + (1-alpha)*prev
			out.Values[i] = prev
		}
		out.Defined[i] = true
	}
	return out
}

// Bands holds the Bollinger envelope around the window SMA
type Bands struct {
	Upper  Series `json:"upper"`
	Middle Series `json:"middle"`
	Lower  Series `json:"lower"`
}

// Bollinger computes upper/lower bands at k sample standard deviations
// around the window SMA. Gap policy follows SMA: undefined for i < window-1.
func Bollinger(ps models.PriceSeries, window int, k float64) Bands {
	mid := SMA(ps, window)
	upper := newSeries(ps)
	lower := newSeries(ps)
	if window <= 0 || len(ps) == 0 {
		return Bands{Upper: upper, Middle: mid, Lower: lower}
	}

	closes := ps.Closes()
	for i := window - 1; i < len(closes); i++ {
		mean := mid.Values[i]
		sd := sampleStddev(closes[i-window+1:i+1], mean)
		upper.Values[i] = mean + k*sd
		lower.Values[i] = mean - k*sd
		upper.Defined[i] = true
		lower.Defined[i] = true
	}
	return Bands{Upper: upper, Middle: mid, Lower: lower}
}

// sampleStddev computes the ddof=1 standard deviation of the window. A
// one-element window has no sample variance and yields zero.
func sampleStddev(window []float64, mean float64) float64 {
	if len(window) < 2 {
		return 0
	}
	sq := 0.0
	for _, v := range window {
		d := v - mean
		sq += d * d
	}
	return math.Sqrt(sq / float64(len(window)-1))
}

// VWAP computes the cumulative volume-weighted average price from the start
// of the series: cum(close*volume)/cum(volume). Indices where cumulative
// volume is still zero are left undefined rather than dividing by zero.
func VWAP(ps models.PriceSeries) Series {
	out := newSeries(ps)
	cumPV := 0.0
	cumVol := 0.0
	for i, bar := range ps {
		vol := float64(bar.Volume)
		cumPV += bar.Close.InexactFloat64() * vol
		cumVol += vol
		if cumVol > 0 {
			out.Values[i] = cumPV / cumVol
			out.Defined[i] = true
		}
	}
	return out
}
