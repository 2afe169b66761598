package anim

// Clock is the per-frame input supplied by the host renderer.
// Nothing in the engine reads ambient time; every computation takes a Clock.
type Clock struct {
	Frame  int
	FPS    int
	Width  int
	Height int
}

// At returns a copy of the clock moved to another frame.
func (c Clock) At(frame int) Clock {
	c.Frame = frame
	return c
}

// Seconds converts a frame count to seconds at the clock's rate.
func (c Clock) Seconds(frames float64) float64 {
	if c.FPS <= 0 {
		return 0
	}
	return frames / float64(c.FPS)
}

// Frames converts seconds to a (possibly fractional) frame count.
func (c Clock) Frames(seconds float64) float64 {
	return seconds * float64(c.FPS)
}

// Visual is the transform and opacity of one element for one frame.
// It is recomputed from scratch every frame.
type Visual struct {
	TranslateX float64 `json:"translate_x"`
	TranslateY float64 `json:"translate_y"`
	Scale      float64 `json:"scale"`
	Rotation   float64 `json:"rotation"` // degrees, clockwise
	Opacity    float64 `json:"opacity"`
}

// Identity is a fully opaque, untransformed element.
func Identity() Visual {
	return Visual{Scale: 1, Opacity: 1}
}

// Normalized clamps opacity to [0,1].
func (v Visual) Normalized() Visual {
	v.Opacity = clamp01(v.Opacity)
	return v
}

// Visible reports whether drawing the element would change any pixel.
func (v Visual) Visible() bool {
	return v.Opacity > 0 && v.Scale != 0
}

func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
