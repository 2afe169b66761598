package effects

import (
	"github.com/ivlev/promo2video/internal/anim"
	"github.com/ivlev/promo2video/internal/scene"
)

// Effect renders the visual tree of one scene for one frame. Implementations
// derive everything from the clock and the scene window; they keep no state
// between calls, so frames may be evaluated in any order or in parallel.
type Effect interface {
	Render(clock anim.Clock, w anim.Window) scene.Node
}

// Spring defaults for each primitive, as damping coefficient and mass. All
// of them come out critically damped: the motion settles without bounce and
// the visible overshoot of the reveals comes from their scale breakpoints.
var (
	TextSpring      = anim.MustSpring(anim.FromDamping(200, 1))
	CaptureSpring   = anim.MustSpring(anim.FromDamping(100, 1))
	CrossfadeSpring = anim.MustSpring(anim.FromDamping(20, 0.5))
	WordmarkSpring  = anim.MustSpring(anim.FromDamping(30, 0.8))
	CTASpring       = anim.MustSpring(anim.FromDamping(20, 0.6))
	ShotSpring      = anim.MustSpring(anim.FromDamping(50, 1))
)

// progress evaluates s at the window-local frame.
func progress(s anim.Spring, clock anim.Clock, w anim.Window) float64 {
	return s.Progress(float64(w.Local(clock.Frame)), clock.FPS)
}

// viewport is the full-frame box.
func viewport(clock anim.Clock) scene.Rect {
	return scene.Rect{W: float64(clock.Width), H: float64(clock.Height)}
}

// inset returns a box of the given fractions of the viewport, centered.
func inset(clock anim.Clock, fw, fh float64) scene.Rect {
	w, h := float64(clock.Width)*fw, float64(clock.Height)*fh
	return scene.Rect{
		X: (float64(clock.Width) - w) / 2,
		Y: (float64(clock.Height) - h) / 2,
		W: w,
		H: h,
	}
}

// mediaSeconds is the playback position of media that starts with the
// window, offset by startFrom seconds.
func mediaSeconds(clock anim.Clock, w anim.Window, startFrom float64) float64 {
	return clock.Seconds(float64(w.Local(clock.Frame))) + startFrom
}
