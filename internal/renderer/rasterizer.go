// Package renderer rasterizes scene frames into RGBA images.
package renderer

import (
	"context"
	"errors"
	"fmt"
	"image"
	"math"
	"sync"

	"golang.org/x/image/draw"
	"golang.org/x/image/math/f64"

	"github.com/ivlev/promo2video/internal/media"
	"github.com/ivlev/promo2video/internal/scene"
)

var ErrFrameSize = errors.New("destination does not match frame size")

// Rasterizer draws scene frames. It is safe for concurrent use; each call
// to Draw must get its own destination image.
type Rasterizer struct {
	Loader media.Loader
	Fonts  *FontBook

	gradients sync.Map // string -> *image.RGBA
	codes     sync.Map // string -> image.Image
	shadows   sync.Map // string -> *image.NRGBA
}

// NewRasterizer returns a rasterizer loading media through loader. A nil
// font book uses the built-in Go fonts only.
func NewRasterizer(loader media.Loader, fonts *FontBook) *Rasterizer {
	if fonts == nil {
		fonts = NewFontBook("", nil)
	}
	return &Rasterizer{Loader: loader, Fonts: fonts}
}

// Draw paints f onto dst, replacing its previous content.
func (r *Rasterizer) Draw(ctx context.Context, f scene.Frame, dst *image.RGBA) error {
	b := dst.Bounds()
	if b.Dx() != f.Width || b.Dy() != f.Height {
		return fmt.Errorf("%w: %v vs %dx%d", ErrFrameSize, b.Size(), f.Width, f.Height)
	}
	draw.Draw(dst, b, image.NewUniform(f.Background), image.Point{}, draw.Src)

	base := translate(float64(b.Min.X), float64(b.Min.Y))
	for _, l := range f.Layers {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := r.node(ctx, dst, l.Root, base, 1, float64(f.Width), float64(f.Height)); err != nil {
			return fmt.Errorf("layer %s: %w", l.Scene, err)
		}
	}
	return nil
}

// Render allocates an image for f and draws it.
func (r *Rasterizer) Render(ctx context.Context, f scene.Frame) (*image.RGBA, error) {
	img := image.NewRGBA(image.Rect(0, 0, f.Width, f.Height))
	if err := r.Draw(ctx, f, img); err != nil {
		return nil, err
	}
	return img, nil
}

func (r *Rasterizer) node(ctx context.Context, dst draw.Image, n scene.Node, parent f64.Aff3, alpha, pw, ph float64) error {
	if !n.Visual.Visible() {
		return nil
	}
	alpha *= n.Visual.Opacity
	if alpha <= 0 {
		return nil
	}

	box := n.Box
	if box.W == 0 {
		box.W = pw
	}
	if box.H == 0 {
		box.H = ph
	}
	m := mul(parent, local(box, n.Visual))
	if n.Shadow != nil {
		r.shadow(dst, m, box.W, box.H, n.Radius, n.Shadow, alpha)
	}
	if n.Blur > 0 {
		backdropBlur(dst, m, box.W, box.H, n.Blur, alpha)
	}

	switch n.Kind {
	case scene.KindGroup:
		if n.Radius > 0 {
			return r.clippedGroup(ctx, dst, n, m, alpha, box)
		}
		for _, c := range n.Children {
			if err := r.node(ctx, dst, c, m, alpha, box.W, box.H); err != nil {
				return err
			}
		}
	case scene.KindFill:
		fillRounded(dst, m, box.W, box.H, n.Radius, n.Fill, alpha)
	case scene.KindGradient:
		if n.Gradient != nil {
			img := r.gradient(int(math.Ceil(box.W)), int(math.Ceil(box.H)), *n.Gradient)
			composite(dst, img, img.Rect, m, alpha)
		}
	case scene.KindMedia:
		return r.media(ctx, dst, n, m, alpha, box)
	case scene.KindText:
		return r.drawText(dst, m, box.W, box.H, n.Text, alpha)
	case scene.KindQRCode:
		return r.qr(dst, n.QR, m, alpha, box)
	}
	return nil
}

// clippedGroup draws the children offscreen and masks them with the
// group's rounded corners.
func (r *Rasterizer) clippedGroup(ctx context.Context, dst draw.Image, n scene.Node, m f64.Aff3, alpha float64, box scene.Rect) error {
	w, h := int(math.Ceil(box.W)), int(math.Ceil(box.H))
	if w <= 0 || h <= 0 {
		return nil
	}
	layer := image.NewRGBA(image.Rect(0, 0, w, h))
	for _, c := range n.Children {
		if err := r.node(ctx, layer, c, identity, 1, box.W, box.H); err != nil {
			return err
		}
	}
	mask := roundedMask(w, h, n.Radius, alpha)
	if p, ok := offset(m); ok {
		draw.DrawMask(dst, layer.Rect.Add(p), layer, image.Point{}, mask, image.Point{}, draw.Over)
		return nil
	}
	draw.ApproxBiLinear.Transform(dst, m, layer, layer.Rect, draw.Over, &draw.Options{SrcMask: mask})
	return nil
}

func (r *Rasterizer) media(ctx context.Context, dst draw.Image, n scene.Node, m f64.Aff3, alpha float64, box scene.Rect) error {
	if n.Media == nil {
		return nil
	}
	res := n.Media.Load(ctx, r.Loader, n.MediaTime)
	if !res.OK() {
		p := res.Placeholder
		fillRounded(dst, m, box.W, box.H, 0, p.Fill, alpha)
		return r.drawText(dst, m, box.W, box.H, &scene.Text{
			Content: p.Label,
			Font:    "Roboto-Regular",
			Size:    24,
			Color:   p.Ink,
		}, alpha)
	}

	src := res.Image
	sr, place := fit(src.Bounds(), box.W, box.H, n.Fit)
	composite(dst, src, sr, mul(m, place), alpha)
	return nil
}

// fit returns the part of an image with bounds b that is visible in a w×h
// box and the transform placing it there. Cover crops the overflow so the
// image never spills out of its box.
func fit(b image.Rectangle, w, h float64, mode scene.Fit) (image.Rectangle, f64.Aff3) {
	iw, ih := float64(b.Dx()), float64(b.Dy())
	if iw == 0 || ih == 0 {
		return image.Rectangle{}, identity
	}

	if mode == scene.Contain {
		s := math.Min(w/iw, h/ih)
		ox, oy := (w-iw*s)/2, (h-ih*s)/2
		return b, mul(translate(ox, oy), mul(scale(s), translate(-float64(b.Min.X), -float64(b.Min.Y))))
	}

	s := math.Max(w/iw, h/ih)
	vw, vh := w/s, h/s
	x0 := float64(b.Min.X) + (iw-vw)/2
	y0 := float64(b.Min.Y) + (ih-vh)/2
	sr := image.Rect(
		int(math.Floor(x0)), int(math.Floor(y0)),
		int(math.Ceil(x0+vw)), int(math.Ceil(y0+vh)),
	).Intersect(b)
	return sr, mul(scale(s), translate(-x0, -y0))
}

func (r *Rasterizer) gradient(w, h int, g scene.Gradient) *image.RGBA {
	key := fmt.Sprintf("%dx%d/%v/%v/%v", w, h, g.Angle, g.From, g.To)
	if img, ok := r.gradients.Load(key); ok {
		return img.(*image.RGBA)
	}
	img, _ := r.gradients.LoadOrStore(key, gradientImage(w, h, g))
	return img.(*image.RGBA)
}

func (r *Rasterizer) qr(dst draw.Image, content string, m f64.Aff3, alpha float64, box scene.Rect) error {
	if content == "" {
		return nil
	}
	size := int(math.Min(box.W, box.H))
	key := fmt.Sprintf("%d/%s", size, content)
	img, ok := r.codes.Load(key)
	if !ok {
		code, err := qrImage(content, size)
		if err != nil {
			return fmt.Errorf("qr code: %w", err)
		}
		img, _ = r.codes.LoadOrStore(key, code)
	}
	src := img.(image.Image)
	sr, place := fit(src.Bounds(), box.W, box.H, scene.Contain)
	composite(dst, src, sr, mul(m, place), alpha)
	return nil
}
