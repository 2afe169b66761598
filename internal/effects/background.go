package effects

import (
	"github.com/ivlev/promo2video/internal/anim"
	"github.com/ivlev/promo2video/internal/media"
	"github.com/ivlev/promo2video/internal/scene"
)

// Gradient is a static full-frame linear gradient.
type Gradient struct {
	Spec scene.Gradient
}

func NewGradient(g scene.Gradient) *Gradient {
	return &Gradient{Spec: g}
}

func (g *Gradient) Render(clock anim.Clock, _ anim.Window) scene.Node {
	return scene.GradientNode(viewport(clock), g.Spec)
}

// Backdrop plays full-bleed media at a fixed opacity, typically a looping
// background video under the other scenes.
type Backdrop struct {
	Media     *media.Element
	Opacity   float64
	StartFrom float64
}

func NewBackdrop(el *media.Element, opacity float64) *Backdrop {
	return &Backdrop{Media: el, Opacity: opacity}
}

func (b *Backdrop) Render(clock anim.Clock, w anim.Window) scene.Node {
	at := 0.0
	if b.Media != nil && b.Media.Ref.Kind == media.Video {
		at = mediaSeconds(clock, w, b.StartFrom)
	}
	n := scene.MediaNode(viewport(clock), b.Media, scene.Cover, at)
	return n.WithVisual(anim.Visual{Scale: 1, Opacity: b.Opacity})
}
