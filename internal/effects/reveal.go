package effects

import (
	"image/color"

	"github.com/ivlev/promo2video/internal/anim"
	"github.com/ivlev/promo2video/internal/scene"
)

var (
	white = color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}

	wordmarkScale   = anim.MustRange([]float64{0, 0.3, 1}, []float64{0.8, 1.1, 1}, anim.Options{})
	wordmarkOpacity = anim.MustRange([]float64{0, 0.2}, []float64{0, 1}, anim.ClampBoth)

	// The button overshoots to 1.1 and rests at 1 from 80% progress on.
	ctaScale   = anim.MustRange([]float64{0, 0.6, 0.8}, []float64{0.8, 1.1, 1}, anim.ClampRight)
	ctaOpacity = anim.MustRange([]float64{0, 0.3}, []float64{0, 1}, anim.ClampBoth)
)

// Wordmark pops a brand name onto a white card: it grows past full size and
// settles back while fading in.
type Wordmark struct {
	Text       scene.Text
	Background color.NRGBA
	Spring     anim.Spring
}

// NewWordmark returns the brand reveal for name.
func NewWordmark(name string) *Wordmark {
	return &Wordmark{
		Text: scene.Text{
			Content:  name,
			Font:     "Roboto-Bold",
			Size:     120,
			Color:    color.NRGBA{R: 0x00, G: 0x89, B: 0xe6, A: 0xff},
			PaddingX: 40,
			PaddingY: 20,
			Radius:   10,
			Shadow:   &scene.Shadow{OffsetY: 4, Blur: 20, Color: color.NRGBA{R: 0x00, G: 0x89, B: 0xe6, A: 51}},
		},
		Background: white,
		Spring:     WordmarkSpring,
	}
}

// Motion is the wordmark transform.
func (m *Wordmark) Motion(clock anim.Clock, w anim.Window) anim.Visual {
	p := progress(m.Spring, clock, w)
	return anim.Visual{Scale: wordmarkScale.At(p), Opacity: wordmarkOpacity.At(p)}.Normalized()
}

func (m *Wordmark) Render(clock anim.Clock, w anim.Window) scene.Node {
	vp := viewport(clock)
	return scene.Group("wordmark", vp, anim.Identity(),
		scene.FillNode(vp, m.Background),
		scene.TextNode(vp, m.Text).WithVisual(m.Motion(clock, w)),
	)
}

// CallToAction is the closing card: a pill button that pops in, a caption
// that fades in with it and, when QR is set, a scannable code under both.
type CallToAction struct {
	Button     scene.Text
	Caption    scene.Text
	QR         string
	Background color.NRGBA
	Spring     anim.Spring
}

// NewCallToAction returns the closing card with the default styling.
func NewCallToAction(label, caption string) *CallToAction {
	return &CallToAction{
		Button: scene.Text{
			Content:    label,
			Font:       "Roboto-Bold",
			Size:       60,
			Color:      white,
			Background: color.NRGBA{R: 0xe3, G: 0xa4, B: 0x1b, A: 0xff},
			PaddingX:   40,
			PaddingY:   20,
			Radius:     50,
		},
		Caption: scene.Text{
			Content: caption,
			Font:    "Roboto-Regular",
			Size:    36,
			Color:   color.NRGBA{R: 0x33, G: 0x33, B: 0x33, A: 0xff},
		},
		Background: white,
		Spring:     CTASpring,
	}
}

// Motion returns the button transform and the shared opacity.
func (c *CallToAction) Motion(clock anim.Clock, w anim.Window) anim.Visual {
	p := progress(c.Spring, clock, w)
	return anim.Visual{Scale: ctaScale.At(p), Opacity: ctaOpacity.At(p)}.Normalized()
}

func (c *CallToAction) Render(clock anim.Clock, w anim.Window) scene.Node {
	vp := viewport(clock)
	motion := c.Motion(clock, w)
	fade := anim.Visual{Scale: 1, Opacity: motion.Opacity}

	buttonH := c.Button.Size + 2*c.Button.PaddingY
	captionH := c.Caption.Size * 1.5
	gap := 80.0
	column := buttonH + gap + captionH
	qrSize := 0.0
	if c.QR != "" {
		qrSize = vp.W * 0.3
		column += gap + qrSize
	}

	top := (vp.H - column) / 2
	children := []scene.Node{
		scene.FillNode(vp, c.Background),
		scene.TextNode(scene.Rect{Y: top, W: vp.W, H: buttonH}, c.Button).WithVisual(motion),
		scene.TextNode(scene.Rect{Y: top + buttonH + gap, W: vp.W, H: captionH}, c.Caption).WithVisual(fade),
	}
	if c.QR != "" {
		box := scene.Rect{X: (vp.W - qrSize) / 2, Y: top + buttonH + gap + captionH + gap, W: qrSize, H: qrSize}
		children = append(children, scene.QRNode(box, c.QR).WithVisual(fade))
	}
	return scene.Group("call-to-action", vp, anim.Identity(), children...)
}
