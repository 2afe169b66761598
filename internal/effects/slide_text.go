package effects

import (
	"image/color"

	"github.com/ivlev/promo2video/internal/anim"
	"github.com/ivlev/promo2video/internal/scene"
)

// SlideText is a full-frame banner that slides in from the right and, when
// Exit is set, slides out to the left during the last half second of its
// window.
type SlideText struct {
	Text     scene.Text
	Backdrop color.NRGBA
	Blur     float64 // backdrop blur deviation in px, 0 for none
	Exit     bool
	Spring   anim.Spring
	// PaddingX is the horizontal margin of the text column.
	PaddingX float64
}

// NewSlideText returns a banner with the default typography.
func NewSlideText(content string, backdrop, textBg color.NRGBA, exit bool) *SlideText {
	return &SlideText{
		Text: scene.Text{
			Content:    content,
			Font:       "Roboto-Bold",
			Size:       80,
			Color:      color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff},
			Background: textBg,
			PaddingX:   30,
			PaddingY:   20,
			Radius:     50,
		},
		Backdrop: backdrop,
		Exit:     exit,
		Spring:   TextSpring,
		PaddingX: 80,
	}
}

// Motion is the banner transform. Entry and exit are two independent spring
// evaluations; their displacements add and their opacities multiply.
func (s *SlideText) Motion(clock anim.Clock, w anim.Window) anim.Visual {
	width := float64(clock.Width)
	from := float64(w.Start)
	frame := float64(clock.Frame)

	in := s.Spring.Progress(frame-from, clock.FPS)
	translateIn := width * (1 - in)
	opacityIn := in

	translateOut, opacityOut := 0.0, 1.0
	if s.Exit {
		exitAt := from + float64(w.Duration) - 0.5*float64(clock.FPS)
		out := s.Spring.Progress(frame-exitAt, clock.FPS)
		translateOut = -width * out
		opacityOut = 1 - out
	}

	return anim.Visual{
		TranslateX: translateIn + translateOut,
		Scale:      1,
		Opacity:    opacityIn * opacityOut,
	}.Normalized()
}

func (s *SlideText) Render(clock anim.Clock, w anim.Window) scene.Node {
	vp := viewport(clock)
	column := scene.Rect{X: s.PaddingX, W: vp.W - 2*s.PaddingX, H: vp.H}
	banner := scene.Group("slide-text", vp, s.Motion(clock, w),
		scene.FillNode(vp, s.Backdrop),
		scene.TextNode(column, s.Text),
	)
	banner.Blur = s.Blur
	return banner
}
