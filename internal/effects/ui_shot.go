package effects

import (
	"github.com/ivlev/promo2video/internal/anim"
	"github.com/ivlev/promo2video/internal/media"
	"github.com/ivlev/promo2video/internal/scene"
)

var (
	shotScale    = anim.MustRange([]float64{0, 1}, []float64{1.2, 1}, anim.Options{})
	shotRotation = anim.MustRange([]float64{0, 1}, []float64{4, 0}, anim.Options{})
	shotOpacity  = anim.MustRange([]float64{0, 0.1}, []float64{0, 1}, anim.ClampBoth)
)

// UIShot drops a full-bleed screenshot into place: it starts slightly
// enlarged and tilted and straightens out as the spring settles.
type UIShot struct {
	Media  *media.Element
	Spring anim.Spring
}

func NewUIShot(el *media.Element) *UIShot {
	return &UIShot{Media: el, Spring: ShotSpring}
}

// Motion is the screenshot transform.
func (u *UIShot) Motion(clock anim.Clock, w anim.Window) anim.Visual {
	p := progress(u.Spring, clock, w)
	return anim.Visual{
		Scale:    shotScale.At(p),
		Rotation: shotRotation.At(p),
		Opacity:  shotOpacity.At(p),
	}.Normalized()
}

func (u *UIShot) Render(clock anim.Clock, w anim.Window) scene.Node {
	vp := viewport(clock)
	return scene.Group("ui-shot", vp, u.Motion(clock, w),
		scene.MediaNode(vp, u.Media, scene.Cover, 0),
	)
}
