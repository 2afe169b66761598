package anim

import (
	"errors"
	"fmt"

	"github.com/tanema/gween/ease"
)

// Extrapolation selects what happens outside the breakpoint domain.
type Extrapolation int

const (
	// Extend continues the nearest segment's slope.
	Extend Extrapolation = iota
	// Clamp holds the nearest endpoint value.
	Clamp
)

func (e Extrapolation) String() string {
	switch e {
	case Clamp:
		return "clamp"
	default:
		return "extend"
	}
}

// ParseExtrapolation accepts "clamp", "extend" and the empty string (extend).
func ParseExtrapolation(s string) (Extrapolation, error) {
	switch s {
	case "", "extend":
		return Extend, nil
	case "clamp":
		return Clamp, nil
	default:
		return Extend, fmt.Errorf("unknown extrapolation %q", s)
	}
}

var (
	ErrRangeLength = errors.New("domain and range lengths differ")
	ErrRangeShort  = errors.New("at least two breakpoints are required")
	ErrRangeOrder  = errors.New("domain must be non-decreasing")
)

// Options controls extrapolation on each side and an optional easing
// applied to the position inside each segment.
type Options struct {
	Left   Extrapolation
	Right  Extrapolation
	Easing ease.TweenFunc
}

// ClampBoth clamps on both sides.
var ClampBoth = Options{Left: Clamp, Right: Clamp}

// ClampRight clamps only past the last breakpoint.
var ClampRight = Options{Right: Clamp}

// ClampLeft clamps only before the first breakpoint.
var ClampLeft = Options{Left: Clamp}

// Range maps a scalar through ordered breakpoints.
type Range struct {
	domain []float64
	out    []float64
	opts   Options
}

// NewRange validates and copies the breakpoints.
func NewRange(domain, out []float64, opts Options) (Range, error) {
	if len(domain) != len(out) {
		return Range{}, fmt.Errorf("%w: %d vs %d", ErrRangeLength, len(domain), len(out))
	}
	if len(domain) < 2 {
		return Range{}, fmt.Errorf("%w: got %d", ErrRangeShort, len(domain))
	}
	for i := 1; i < len(domain); i++ {
		if !(domain[i] >= domain[i-1]) {
			return Range{}, fmt.Errorf("%w: %v at index %d follows %v", ErrRangeOrder, domain[i], i, domain[i-1])
		}
	}
	r := Range{
		domain: append([]float64(nil), domain...),
		out:    append([]float64(nil), out...),
		opts:   opts,
	}
	return r, nil
}

// MustRange is NewRange for package-level constants.
func MustRange(domain, out []float64, opts Options) Range {
	r, err := NewRange(domain, out, opts)
	if err != nil {
		panic(err)
	}
	return r
}

// Interpolate validates the breakpoints and evaluates them at x in one call.
func Interpolate(x float64, domain, out []float64, opts Options) (float64, error) {
	r, err := NewRange(domain, out, opts)
	if err != nil {
		return 0, err
	}
	return r.At(x), nil
}

// At evaluates the mapping at x.
func (r Range) At(x float64) float64 {
	n := len(r.domain)
	if n == 0 {
		return 0
	}

	if x < r.domain[0] {
		if r.opts.Left == Clamp {
			return r.out[0]
		}
		return r.extrapolate(x, 0)
	}
	if x > r.domain[n-1] {
		if r.opts.Right == Clamp {
			return r.out[n-1]
		}
		return r.extrapolate(x, n-2)
	}

	i := 1
	for i < n-1 && x > r.domain[i] {
		i++
	}
	d0, d1 := r.domain[i-1], r.domain[i]
	if d1 == d0 {
		return r.out[i]
	}
	t := (x - d0) / (d1 - d0)
	if r.opts.Easing != nil {
		t = float64(r.opts.Easing(float32(t), 0, 1, 1))
	}
	return r.out[i-1] + t*(r.out[i]-r.out[i-1])
}

// extrapolate extends segment i linearly.
func (r Range) extrapolate(x float64, i int) float64 {
	d0, d1 := r.domain[i], r.domain[i+1]
	if d1 == d0 {
		if x < d0 {
			return r.out[i]
		}
		return r.out[i+1]
	}
	slope := (r.out[i+1] - r.out[i]) / (d1 - d0)
	return r.out[i] + (x-d0)*slope
}

// Invert swaps domain and range. The outputs must be monotonic.
func (r Range) Invert() (Range, error) {
	n := len(r.out)
	domain := append([]float64(nil), r.out...)
	out := append([]float64(nil), r.domain...)
	if n > 1 && domain[n-1] < domain[0] {
		for i, j := 0, n-1; i < j; i, j = i+1, j-1 {
			domain[i], domain[j] = domain[j], domain[i]
			out[i], out[j] = out[j], out[i]
		}
	}
	return NewRange(domain, out, Options{Left: r.opts.Left, Right: r.opts.Right})
}
