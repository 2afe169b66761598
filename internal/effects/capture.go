package effects

import (
	"image/color"

	"github.com/ivlev/promo2video/internal/anim"
	"github.com/ivlev/promo2video/internal/media"
	"github.com/ivlev/promo2video/internal/scene"
)

var (
	captureScale   = anim.MustRange([]float64{0, 1}, []float64{0.95, 1}, anim.Options{})
	captureOpacity = anim.MustRange([]float64{0, 0.3}, []float64{0, 1}, anim.ClampBoth)
)

// Capture reveals a screenshot or screen recording in a centered card that
// settles from 95% to full size while fading in. Stills and videos animate
// identically; for video the media time follows the window.
type Capture struct {
	Media     *media.Element
	StartFrom float64 // seconds into the clip at window start
	Backdrop  color.NRGBA
	Shadow    *scene.Shadow
	Spring    anim.Spring
}

// NewCapture returns a capture card for el.
func NewCapture(el *media.Element) *Capture {
	return &Capture{
		Media:    el,
		Backdrop: color.NRGBA{A: 77},
		Shadow:   &scene.Shadow{OffsetY: 5, Blur: 25, Color: color.NRGBA{A: 51}},
		Spring:   CaptureSpring,
	}
}

// Motion is the card transform.
func (c *Capture) Motion(clock anim.Clock, w anim.Window) anim.Visual {
	p := progress(c.Spring, clock, w)
	return anim.Visual{
		Scale:   captureScale.At(p),
		Opacity: captureOpacity.At(p),
	}.Normalized()
}

func (c *Capture) Render(clock anim.Clock, w anim.Window) scene.Node {
	vp := viewport(clock)
	card := inset(clock, 0.9, 0.8)

	at := 0.0
	if c.Media != nil && c.Media.Ref.Kind == media.Video {
		at = mediaSeconds(clock, w, c.StartFrom)
	}
	body := scene.MediaNode(scene.Rect{W: card.W, H: card.H}, c.Media, scene.Cover, at)

	cardNode := scene.Group("capture-card", card, c.Motion(clock, w), body)
	cardNode.Radius = 10
	cardNode.Shadow = c.Shadow
	return scene.Group("capture", vp, anim.Identity(), scene.FillNode(vp, c.Backdrop), cardNode)
}
