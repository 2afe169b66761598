package anim

import (
	"errors"
	"math"
	"testing"

	"github.com/tanema/gween/ease"
)

func TestRangeAt(t *testing.T) {
	tests := []struct {
		name   string
		domain []float64
		out    []float64
		opts   Options
		x      float64
		want   float64
	}{
		{"midpoint", []float64{0, 1}, []float64{1080, 0}, Options{}, 0.5, 540},
		{"second segment", []float64{0, 0.3, 1}, []float64{0.8, 1.1, 1}, Options{}, 0.65, 1.05},
		{"breakpoint", []float64{0, 0.3, 1}, []float64{0.8, 1.1, 1}, Options{}, 0.3, 1.1},
		{"clamp left", []float64{0.5, 1}, []float64{0, 1}, ClampLeft, 0.2, 0},
		{"clamp right", []float64{0, 0.5}, []float64{1, 0}, ClampRight, 0.9, 0},
		{"extend left", []float64{0, 1}, []float64{0, 10}, Options{}, -1, -10},
		{"extend right", []float64{0, 1, 2}, []float64{0, 10, 30}, Options{}, 3, 50},
		{"zero width segment start", []float64{0, 1, 1, 2}, []float64{0, 1, 5, 6}, Options{}, 1, 1},
		{"after zero width segment", []float64{0, 1, 1, 2}, []float64{0, 1, 5, 6}, Options{}, 1.5, 5.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Interpolate(tt.x, tt.domain, tt.out, tt.opts)
			if err != nil {
				t.Fatalf("Interpolate: %v", err)
			}
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRangeConfigurationFaults(t *testing.T) {
	tests := []struct {
		name   string
		domain []float64
		out    []float64
		want   error
	}{
		{"length mismatch", []float64{0, 1}, []float64{0}, ErrRangeLength},
		{"too short", []float64{0}, []float64{0}, ErrRangeShort},
		{"non monotonic", []float64{0, 1, 0.5}, []float64{0, 1, 2}, ErrRangeOrder},
		{"nan", []float64{0, math.NaN()}, []float64{0, 1}, ErrRangeOrder},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Interpolate(0.5, tt.domain, tt.out, Options{}); !errors.Is(err, tt.want) {
				t.Errorf("error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestRangeInvertRoundTrip(t *testing.T) {
	ranges := []Range{
		MustRange([]float64{0, 0.5, 1}, []float64{10, 20, 80}, ClampBoth),
		MustRange([]float64{0, 1}, []float64{1920, 0}, ClampBoth),
	}
	for _, r := range ranges {
		inv, err := r.Invert()
		if err != nil {
			t.Fatalf("Invert: %v", err)
		}
		lo, hi := r.At(0), r.At(1)
		if lo > hi {
			lo, hi = hi, lo
		}
		for i := 0; i <= 20; i++ {
			y := lo + (hi-lo)*float64(i)/20
			if got := r.At(inv.At(y)); math.Abs(got-y) > 1e-9 {
				t.Errorf("round trip of %v gave %v", y, got)
			}
		}
	}
}

func TestRangeEasing(t *testing.T) {
	r := MustRange([]float64{0, 1}, []float64{0, 100}, Options{Easing: ease.InOutCubic})
	if got := r.At(0.25); !(got < 25) {
		t.Errorf("eased value %v should lag linear 25", got)
	}
	if got := r.At(1); math.Abs(got-100) > 1e-4 {
		t.Errorf("eased end = %v, want 100", got)
	}
}

func TestCrossfadeSeam(t *testing.T) {
	before := MustRange([]float64{0, 0.5}, []float64{1, 0}, ClampRight)
	after := MustRange([]float64{0.5, 1}, []float64{0, 1}, ClampLeft)

	tests := []struct {
		p             float64
		before, after float64
	}{
		{0, 1, 0},
		{0.5, 0, 0},
		{1, 0, 1},
	}
	for _, tt := range tests {
		if got := before.At(tt.p); got != tt.before {
			t.Errorf("before(%v) = %v, want %v", tt.p, got, tt.before)
		}
		if got := after.At(tt.p); got != tt.after {
			t.Errorf("after(%v) = %v, want %v", tt.p, got, tt.after)
		}
	}
}
