package effects

import (
	"errors"
	"fmt"

	"github.com/tanema/gween/ease"

	"github.com/ivlev/promo2video/internal/anim"
	"github.com/ivlev/promo2video/internal/media"
	"github.com/ivlev/promo2video/internal/scene"
)

var ErrNoKeyframes = errors.New("ken burns needs at least one keyframe")

// Keyframe is a camera position at a time offset in seconds. X and Y are the
// focus point as fractions of the frame, Zoom is relative to a cover fit.
type Keyframe struct {
	Time float64 `yaml:"time"`
	X    float64 `yaml:"x"`
	Y    float64 `yaml:"y"`
	Zoom float64 `yaml:"zoom"`
}

// CameraState is the interpolated camera for one frame.
type CameraState struct {
	X, Y, Zoom float64
}

// KenBurns pans and zooms over a still. Keyframes are authored against
// Length seconds and stretched to the actual scene duration.
type KenBurns struct {
	Media *media.Element
	// Length is the timeline the keyframes were written for; zero means the
	// keyframe times are used as is.
	Length float64

	keyframes []Keyframe
	easing    ease.TweenFunc
}

// NewKenBurns validates keyframes. A nil easing defaults to in-out cubic.
func NewKenBurns(el *media.Element, keyframes []Keyframe, length float64, easing ease.TweenFunc) (*KenBurns, error) {
	if len(keyframes) == 0 {
		return nil, ErrNoKeyframes
	}
	for i, kf := range keyframes {
		if kf.Zoom <= 0 {
			return nil, fmt.Errorf("keyframe %d: zoom must be positive, got %v", i, kf.Zoom)
		}
		if i > 0 && kf.Time < keyframes[i-1].Time {
			return nil, fmt.Errorf("keyframe %d: %w", i, anim.ErrRangeOrder)
		}
	}
	if easing == nil {
		easing = ease.InOutCubic
	}
	return &KenBurns{
		Media:     el,
		Length:    length,
		keyframes: append([]Keyframe(nil), keyframes...),
		easing:    easing,
	}, nil
}

// Camera interpolates the keyframes at t seconds into a scene of duration
// seconds. Before the first and after the last keyframe the camera holds.
func (k *KenBurns) Camera(t, duration float64) CameraState {
	first := k.keyframes[0]
	if len(k.keyframes) == 1 {
		return CameraState{X: first.X, Y: first.Y, Zoom: first.Zoom}
	}

	scale := 1.0
	if k.Length > 0 && duration > 0 {
		scale = duration / k.Length
	}

	n := len(k.keyframes)
	times := make([]float64, n)
	xs := make([]float64, n)
	ys := make([]float64, n)
	zooms := make([]float64, n)
	for i, kf := range k.keyframes {
		times[i] = kf.Time * scale
		xs[i], ys[i], zooms[i] = kf.X, kf.Y, kf.Zoom
	}

	opts := anim.Options{Left: anim.Clamp, Right: anim.Clamp, Easing: k.easing}
	return CameraState{
		X:    anim.MustRange(times, xs, opts).At(t),
		Y:    anim.MustRange(times, ys, opts).At(t),
		Zoom: anim.MustRange(times, zooms, opts).At(t),
	}
}

func (k *KenBurns) Render(clock anim.Clock, w anim.Window) scene.Node {
	vp := viewport(clock)
	cam := k.Camera(clock.Seconds(float64(w.Local(clock.Frame))), clock.Seconds(float64(w.Duration)))

	// Scaling happens around the frame center, so shifting by the focus
	// point's distance from the center keeps it in the middle of the shot.
	v := anim.Visual{
		TranslateX: (0.5 - cam.X) * vp.W * cam.Zoom,
		TranslateY: (0.5 - cam.Y) * vp.H * cam.Zoom,
		Scale:      cam.Zoom,
		Opacity:    1,
	}
	return scene.Group("ken-burns", vp, anim.Identity(),
		scene.MediaNode(vp, k.Media, scene.Cover, 0).WithVisual(v),
	)
}
