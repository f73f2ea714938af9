package indicators

import (
	"fmt"
	"strings"

	"chart-analyst/models"
)

// Spec identifies one indicator together with its parameters. The set is
// closed: SMASpec, EMASpec, BollingerSpec and VWAPSpec are the only
// implementations, and Compute dispatches over them exhaustively.
type Spec interface {
	// Name is the display label, e.g. "SMA(20)" or "BB(20,2.0)"
	Name() string
	sealed()
}

// SMASpec selects a simple moving average with the given window
type SMASpec struct {
	Window int `json:"window"`
}

// EMASpec selects an exponential moving average with the given span
type EMASpec struct {
	Span int `json:"span"`
}

// BollingerSpec selects Bollinger Bands with window and band width k
type BollingerSpec struct {
	Window int     `json:"window"`
	K      float64 `json:"k"`
}

// VWAPSpec selects the cumulative volume-weighted average price
type VWAPSpec struct{}

func (s SMASpec) Name() string       { return fmt.Sprintf("SMA(%d)", s.Window) }
func (s EMASpec) Name() string       { return fmt.Sprintf("EMA(%d)", s.Span) }
func (s BollingerSpec) Name() string { return fmt.Sprintf("BB(%d,%.1f)", s.Window, s.K) }
func (s VWAPSpec) Name() string      { return "VWAP" }

func (SMASpec) sealed()       {}
func (EMASpec) sealed()       {}
func (BollingerSpec) sealed() {}
func (VWAPSpec) sealed()      {}

// Computed pairs a labelled output series with the spec that produced it.
// Bollinger produces three outputs (upper, middle, lower).
type Computed struct {
	Label  string `json:"label"`
	Series Series `json:"series"`
}

// Compute evaluates one indicator spec against a price series
func Compute(ps models.PriceSeries, spec Spec) []Computed {
	switch s := spec.(type) {
	case SMASpec:
		return []Computed{{Label: s.Name(), Series: SMA(ps, s.Window)}}
	case EMASpec:
		return []Computed{{Label: s.Name(), Series: EMA(ps, s.Span)}}
	case BollingerSpec:
		bands := Bollinger(ps, s.Window, s.K)
		return []Computed{
			{Label: s.Name() + " upper", Series: bands.Upper},
			{Label: s.Name() + " middle", Series: bands.Middle},
			{Label: s.Name() + " lower", Series: bands.Lower},
		}
	case VWAPSpec:
		return []Computed{{Label: s.Name(), Series: VWAP(ps)}}
	default:
		// Unreachable: Spec is sealed
		panic(fmt.Sprintf("unknown indicator spec %T", spec))
	}
}

// Default parameters matching the dashboard's 20-day presets
const (
	DefaultWindow = 20
	DefaultSpan   = 20
	DefaultK      = 2.0
)

// ParseSpec maps an indicator name from the API (sma, ema, bollinger, vwap)
// to a spec with default parameters
func ParseSpec(name string) (Spec, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "sma":
		return SMASpec{Window: DefaultWindow}, nil
	case "ema":
		return EMASpec{Span: DefaultSpan}, nil
	case "bollinger", "bb":
		return BollingerSpec{Window: DefaultWindow, K: DefaultK}, nil
	case "vwap":
		return VWAPSpec{}, nil
	default:
		return nil, fmt.Errorf("unknown indicator %q (want sma, ema, bollinger or vwap)", name)
	}
}
