package anim

import "fmt"

// Bounds selects how a window treats its end frame.
type Bounds int

const (
	// ClosedOpen is active on [start, start+duration).
	ClosedOpen Bounds = iota
	// ClosedClosed is active on [start, start+duration].
	ClosedClosed
	// Latched is active on every frame at or after start.
	Latched
)

func (b Bounds) String() string {
	switch b {
	case ClosedClosed:
		return "closed_closed"
	case Latched:
		return "latched"
	default:
		return "closed_open"
	}
}

// ParseBounds accepts the String forms; the empty string is ClosedOpen.
func ParseBounds(s string) (Bounds, error) {
	switch s {
	case "", "closed_open":
		return ClosedOpen, nil
	case "closed_closed":
		return ClosedClosed, nil
	case "latched":
		return Latched, nil
	default:
		return ClosedOpen, fmt.Errorf("unknown window bounds %q", s)
	}
}

// Window is the activation interval of a scene, in frames.
type Window struct {
	Start    int
	Duration int
	Bounds   Bounds
}

// End is the first frame after the nominal window.
func (w Window) End() int {
	return w.Start + w.Duration
}

// Active reports whether the window covers frame.
// Negative starts or durations never activate.
func (w Window) Active(frame int) bool {
	if w.Start < 0 || w.Duration < 0 || frame < w.Start {
		return false
	}
	switch w.Bounds {
	case Latched:
		return true
	case ClosedClosed:
		return frame <= w.End()
	default:
		return frame < w.End()
	}
}

// Local is the frame offset from the window start. It is negative before
// the window opens; consult Active first.
func (w Window) Local(frame int) int {
	return frame - w.Start
}

// Ratio is Local divided by Duration, or 0 for a zero-length window.
func (w Window) Ratio(frame int) float64 {
	if w.Duration <= 0 {
		return 0
	}
	return float64(w.Local(frame)) / float64(w.Duration)
}

// Fits reports whether the nominal window lies inside a composition of
// total frames.
func (w Window) Fits(total int) bool {
	return w.Start >= 0 && w.Duration >= 0 && w.End() <= total
}
