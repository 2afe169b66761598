package anim

import (
	"errors"
	"math"
	"testing"
)

func TestSpringBeforeTrigger(t *testing.T) {
	s := MustSpring(SpringConfig{DampingRatio: 0.4, Mass: 1})
	for _, f := range []float64{-1, -0.5, -30, -1e6} {
		if got := s.Progress(f, 30); got != 0 {
			t.Errorf("Progress(%v) = %v, want exactly 0", f, got)
		}
	}
	if got := s.Progress(0, 30); got != 0 {
		t.Errorf("Progress(0) = %v, want 0", got)
	}
}

func TestSpringRejectsInvalidConfig(t *testing.T) {
	tests := []SpringConfig{
		{DampingRatio: 0, Mass: 1},
		{DampingRatio: -1, Mass: 1},
		{DampingRatio: 1, Mass: 0},
		{DampingRatio: 1, Mass: -2},
		{DampingRatio: math.NaN(), Mass: 1},
		{DampingRatio: 1, Mass: 1, Stiffness: -5},
	}
	for _, cfg := range tests {
		if _, err := NewSpring(cfg); !errors.Is(err, ErrInvalidSpring) {
			t.Errorf("NewSpring(%+v) error = %v, want ErrInvalidSpring", cfg, err)
		}
	}
}

func TestSpringNoOvershootWhenDamped(t *testing.T) {
	for _, ratio := range []float64{1, 1.5, 3} {
		s := MustSpring(SpringConfig{DampingRatio: ratio, Mass: 1})
		prev := 0.0
		for f := 0; f <= 3000; f++ {
			p := s.Progress(float64(f), 30)
			if p > 1 {
				t.Fatalf("ratio %.1f: overshoot %v at frame %d", ratio, p, f)
			}
			if p < prev-1e-12 {
				t.Fatalf("ratio %.1f: not monotonic at frame %d (%v < %v)", ratio, f, p, prev)
			}
			prev = p
		}
		if settle := s.SettleFrames(30, 3000); settle >= 3000 {
			t.Errorf("ratio %.1f: did not settle within 3000 frames", ratio)
		}
	}
}

func TestSpringOvershootsWhenUnderdamped(t *testing.T) {
	s := MustSpring(SpringConfig{DampingRatio: 0.3, Mass: 1})
	overshot := false
	for f := 0; f < 300; f++ {
		if s.Progress(float64(f), 30) > 1 {
			overshot = true
			break
		}
	}
	if !overshot {
		t.Error("expected underdamped spring to exceed 1")
	}
	if p := s.Progress(3000, 30); p != 1 {
		t.Errorf("Progress(3000) = %v, want settled at 1", p)
	}
}

func TestSpringIsReentrant(t *testing.T) {
	s := MustSpring(SpringConfig{DampingRatio: 0.6, Mass: 0.8})
	frames := []float64{12, 3, 12, 40.5, 3, 40.5}
	seen := map[float64]float64{}
	for _, f := range frames {
		p := s.Progress(f, 30)
		if prev, ok := seen[f]; ok && prev != p {
			t.Errorf("Progress(%v) changed between calls: %v then %v", f, prev, p)
		}
		seen[f] = p
	}
}

func TestSpringFractionalFrames(t *testing.T) {
	s := MustSpring(SpringConfig{DampingRatio: 1, Mass: 1})
	a, b, c := s.Progress(10, 30), s.Progress(10.5, 30), s.Progress(11, 30)
	if !(a < b && b < c) {
		t.Errorf("expected %v < %v < %v", a, b, c)
	}
}

func TestSpringHeavierIsSlower(t *testing.T) {
	light := MustSpring(SpringConfig{DampingRatio: 1, Mass: 0.5})
	heavy := MustSpring(SpringConfig{DampingRatio: 1, Mass: 2})
	if light.Progress(10, 30) <= heavy.Progress(10, 30) {
		t.Error("expected lighter spring to progress faster")
	}
}

func TestFromDamping(t *testing.T) {
	tests := []struct {
		damping, mass float64
		want          float64
	}{
		{200, 1, 1},
		{20, 0.5, 1},
		{30, 0.8, 1},
		{20, 1, 1},
		{10, 1, 0.5},
		{5, 0.25, 0.5},
	}
	for _, tt := range tests {
		cfg := FromDamping(tt.damping, tt.mass)
		if math.Abs(cfg.DampingRatio-tt.want) > 1e-9 || cfg.Mass != tt.mass {
			t.Errorf("FromDamping(%v, %v) = %+v, want ratio %v", tt.damping, tt.mass, cfg, tt.want)
		}
	}

	// Any overdamped coefficient moves exactly like the critical spring.
	heavy := MustSpring(FromDamping(200, 1))
	critical := MustSpring(SpringConfig{DampingRatio: 1, Mass: 1})
	for f := 0.0; f <= 60; f += 5 {
		if heavy.Progress(f, 30) != critical.Progress(f, 30) {
			t.Errorf("frame %v: %v != %v", f, heavy.Progress(f, 30), critical.Progress(f, 30))
		}
	}
}
