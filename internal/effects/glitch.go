package effects

import (
	"image/color"

	"github.com/ivlev/promo2video/internal/anim"
	"github.com/ivlev/promo2video/internal/scene"
)

// GlitchCut is a short flash of flat color shaken diagonally by a few
// pixels every frame. The shake is seeded, so a frame always renders the
// same offset.
type GlitchCut struct {
	Fill      color.NRGBA
	Amplitude float64
	Seed      uint64
}

func NewGlitchCut(seed uint64) *GlitchCut {
	return &GlitchCut{Fill: color.NRGBA{A: 0xff}, Amplitude: 10, Seed: seed}
}

// Offset is the shake for frame.
func (g *GlitchCut) Offset(frame int) float64 {
	return anim.Jitter(g.Seed, frame, g.Amplitude)
}

func (g *GlitchCut) Render(clock anim.Clock, w anim.Window) scene.Node {
	vp := viewport(clock)
	off := g.Offset(clock.Frame)
	v := anim.Visual{TranslateX: off, TranslateY: -off, Scale: 1, Opacity: 1}
	return scene.Group("glitch", vp, v, scene.FillNode(vp, g.Fill))
}
