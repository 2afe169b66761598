package effects

import (
	"image/color"

	"github.com/ivlev/promo2video/internal/anim"
	"github.com/ivlev/promo2video/internal/media"
	"github.com/ivlev/promo2video/internal/scene"
)

// Scroll pans vertically through a stack of full-height pages at constant
// speed: the first page is in view when the window opens and the last one
// when it closes.
type Scroll struct {
	Pages      []*media.Element
	Background color.NRGBA
}

// NewScroll returns a scroll-through over pages on a white background.
func NewScroll(pages []*media.Element) *Scroll {
	return &Scroll{Pages: pages, Background: color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}}
}

// ScrollOffset is the vertical shift of the page stack. A zero duration
// yields 0 instead of dividing by zero; the offset itself is not clamped.
func ScrollOffset(local, duration, pages int, height float64) float64 {
	if duration <= 0 || pages < 2 {
		return 0
	}
	ratio := float64(local) / float64(duration)
	return -(ratio * height * float64(pages-1))
}

func (s *Scroll) Render(clock anim.Clock, w anim.Window) scene.Node {
	vp := viewport(clock)
	if len(s.Pages) == 0 {
		return scene.Group("scroll", vp, anim.Identity(),
			scene.FillNode(vp, color.NRGBA{R: 0x80, G: 0x80, B: 0x80, A: 0xff}),
			scene.TextNode(vp, scene.Text{
				Content: "MethodScroll:\nNo images provided.",
				Font:    "Roboto-Regular",
				Size:    30,
				Color:   color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff},
			}),
		)
	}

	offset := ScrollOffset(w.Local(clock.Frame), w.Duration, len(s.Pages), vp.H)
	pages := make([]scene.Node, len(s.Pages))
	for i, el := range s.Pages {
		pages[i] = scene.MediaNode(scene.Rect{Y: float64(i) * vp.H, W: vp.W, H: vp.H}, el, scene.Contain, 0)
	}

	stackBox := scene.Rect{W: vp.W, H: vp.H * float64(len(s.Pages))}
	stack := scene.Group("scroll-stack", stackBox, anim.Visual{TranslateY: offset, Scale: 1, Opacity: 1}, pages...)
	return scene.Group("scroll", vp, anim.Identity(), scene.FillNode(vp, s.Background), stack)
}
