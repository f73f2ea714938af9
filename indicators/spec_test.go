package indicators

import (
	"testing"
)

func TestParseSpec(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Spec
		wantErr bool
	}{
		{"SMA", "sma", SMASpec{Window: DefaultWindow}, false},
		{"SMA upper case", "SMA", SMASpec{Window: DefaultWindow}, false},
		{"EMA with spaces", " ema ", EMASpec{Span: DefaultSpan}, false},
		{"Bollinger", "bollinger", BollingerSpec{Window: DefaultWindow, K: DefaultK}, false},
		{"Bollinger short form", "bb", BollingerSpec{Window: DefaultWindow, K: DefaultK}, false},
		{"VWAP", "vwap", VWAPSpec{}, false},
		{"unknown", "rsi", nil, true},
		{"empty", "", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseSpec(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Errorf("ParseSpec(%q) expected an error", tt.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseSpec(%q) unexpected error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParseSpec(%q) = %#v, want %#v", tt.input, got, tt.want)
			}
		})
	}
}

func TestCompute_Dispatch(t *testing.T) {
	closes := []float64{10, 11, 12, 13, 14, 15}
	series := testSeries(closes, uniformVolumes(len(closes), 100))

	tests := []struct {
		name        string
		spec        Spec
		wantOutputs int
	}{
		{"SMA", SMASpec{Window: 3}, 1},
		{"EMA", EMASpec{Span: 3}, 1},
		{"Bollinger yields three series", BollingerSpec{Window: 3, K: 2}, 3},
		{"VWAP", VWAPSpec{}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			computed := Compute(series, tt.spec)
			if len(computed) != tt.wantOutputs {
				t.Fatalf("Compute() produced %d outputs, want %d", len(computed), tt.wantOutputs)
			}
			for _, c := range computed {
				if c.Label == "" {
					t.Error("computed output has an empty label")
				}
				if len(c.Series.Values) != len(series) {
					t.Errorf("output %q length = %d, want %d", c.Label, len(c.Series.Values), len(series))
				}
			}
		})
	}
}

func TestCompute_DoesNotMutateInput(t *testing.T) {
	closes := []float64{10, 11, 12, 13}
	series := testSeries(closes, uniformVolumes(len(closes), 100))

	before := make([]float64, len(series))
	for i, bar := range series {
		before[i] = bar.Close.InexactFloat64()
	}

	Compute(series, VWAPSpec{})
	Compute(series, SMASpec{Window: 2})

	for i, bar := range series {
		if bar.Close.InexactFloat64() != before[i] {
			t.Fatalf("input series mutated at index %d", i)
		}
	}
}
