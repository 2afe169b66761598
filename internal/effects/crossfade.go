package effects

import (
	"image/color"

	"github.com/ivlev/promo2video/internal/anim"
	"github.com/ivlev/promo2video/internal/media"
	"github.com/ivlev/promo2video/internal/scene"
)

var (
	beforeOpacity = anim.MustRange([]float64{0, 0.5}, []float64{1, 0}, anim.ClampRight)
	afterOpacity  = anim.MustRange([]float64{0.5, 1}, []float64{0, 1}, anim.ClampLeft)
)

// Crossfade swaps a "before" image for an "after" image. The first half of
// the spring fades the before image out, the second half fades the after
// image in, so both are hidden exactly at the seam.
type Crossfade struct {
	Before   *media.Element
	After    *media.Element
	Backdrop color.NRGBA
	Spring   anim.Spring
}

// NewCrossfade returns a before/after transition.
func NewCrossfade(before, after *media.Element) *Crossfade {
	return &Crossfade{
		Before:   before,
		After:    after,
		Backdrop: color.NRGBA{A: 77},
		Spring:   CrossfadeSpring,
	}
}

// Opacities maps spring progress to the two layer opacities.
func Opacities(p float64) (before, after float64) {
	return beforeOpacity.At(p), afterOpacity.At(p)
}

func (c *Crossfade) Render(clock anim.Clock, w anim.Window) scene.Node {
	vp := viewport(clock)
	before, after := Opacities(progress(c.Spring, clock, w))

	return scene.Group("crossfade", vp, anim.Identity(),
		scene.FillNode(vp, c.Backdrop),
		scene.MediaNode(vp, c.Before, scene.Cover, 0).WithVisual(anim.Visual{Scale: 1, Opacity: before}),
		scene.MediaNode(vp, c.After, scene.Cover, 0).WithVisual(anim.Visual{Scale: 1, Opacity: after}),
	)
}
