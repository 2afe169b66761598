package timeline

import (
	"fmt"

	"github.com/ivlev/promo2video/internal/anim"
)

// Anchor is one point of a volume envelope.
type Anchor struct {
	Frame  float64
	Volume float64
}

// Envelope is a piecewise linear volume curve over frames, held constant
// before the first and after the last anchor.
type Envelope struct {
	anchors []Anchor
	curve   anim.Range
}

// NewEnvelope validates anchors: at least two, frames non-decreasing and
// volumes in [0, 1].
func NewEnvelope(anchors []Anchor) (*Envelope, error) {
	frames := make([]float64, len(anchors))
	volumes := make([]float64, len(anchors))
	for i, a := range anchors {
		if a.Volume < 0 || a.Volume > 1 {
			return nil, fmt.Errorf("anchor %d: volume %v outside [0, 1]", i, a.Volume)
		}
		frames[i], volumes[i] = a.Frame, a.Volume
	}
	curve, err := anim.NewRange(frames, volumes, anim.ClampBoth)
	if err != nil {
		return nil, fmt.Errorf("volume envelope: %w", err)
	}
	return &Envelope{anchors: append([]Anchor(nil), anchors...), curve: curve}, nil
}

// Constant is a flat envelope.
func Constant(volume float64) *Envelope {
	e, err := NewEnvelope([]Anchor{{0, volume}, {1, volume}})
	if err != nil {
		panic(err)
	}
	return e
}

// At returns the volume at frame.
func (e *Envelope) At(frame float64) float64 {
	return e.curve.At(frame)
}

// Anchors returns a copy of the anchors.
func (e *Envelope) Anchors() []Anchor {
	return append([]Anchor(nil), e.anchors...)
}
