package renderer

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/disintegration/imaging"
	"golang.org/x/image/draw"
	"golang.org/x/image/math/f64"

	"github.com/ivlev/promo2video/internal/scene"
)

// bounds is the pixel rectangle covering a w×h box placed by m.
func bounds(m f64.Aff3, w, h float64) image.Rectangle {
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, c := range [4][2]float64{{0, 0}, {w, 0}, {0, h}, {w, h}} {
		x := m[0]*c[0] + m[1]*c[1] + m[2]
		y := m[3]*c[0] + m[4]*c[1] + m[5]
		minX, maxX = math.Min(minX, x), math.Max(maxX, x)
		minY, maxY = math.Min(minY, y), math.Max(maxY, y)
	}
	return image.Rect(int(math.Floor(minX)), int(math.Floor(minY)), int(math.Ceil(maxX)), int(math.Ceil(maxY)))
}

// backdropBlur blurs what is already drawn under the box, like CSS
// backdrop-filter: blur(sigma). Pixels around the box feed the kernel but
// stay untouched.
func backdropBlur(dst draw.Image, m f64.Aff3, w, h, sigma, alpha float64) {
	area := bounds(m, w, h).Intersect(dst.Bounds())
	if sigma <= 0 || alpha <= 0 || area.Empty() {
		return
	}
	pad := int(math.Ceil(3 * sigma))
	src := area.Inset(-pad).Intersect(dst.Bounds())
	blurred := imaging.Blur(imaging.Crop(dst, src), sigma)
	draw.DrawMask(dst, area, blurred, area.Min.Sub(src.Min), alphaMask(alpha), image.Point{}, draw.Over)
}

// shadow draws s for a w×h box with corner radius placed by m.
func (r *Rasterizer) shadow(dst draw.Image, m f64.Aff3, w, h, radius float64, s *scene.Shadow, alpha float64) {
	if s == nil || s.Color.A == 0 || w <= 0 || h <= 0 {
		return
	}
	iw, ih := int(math.Ceil(w)), int(math.Ceil(h))
	key := fmt.Sprintf("%dx%d/%g/%+v", iw, ih, radius, *s)
	v, ok := r.shadows.Load(key)
	if !ok {
		v, _ = r.shadows.LoadOrStore(key, shadowImage(iw, ih, radius, *s))
	}
	img := v.(*image.NRGBA)
	pad := float64(shadowPad(s.Blur))
	composite(dst, img, img.Rect, mul(m, translate(s.OffsetX-pad, s.OffsetY-pad)), alpha)
}

func shadowPad(blur float64) int {
	return int(math.Ceil(1.5 * blur))
}

// shadowImage is the blurred silhouette of the box with the box itself cut
// out. Its origin sits at (OffsetX-pad, OffsetY-pad) in box space.
func shadowImage(w, h int, radius float64, s scene.Shadow) *image.NRGBA {
	pad := shadowPad(s.Blur)
	img := image.NewNRGBA(image.Rect(0, 0, w+2*pad, h+2*pad))
	fillRounded(img, translate(float64(pad), float64(pad)), float64(w), float64(h), radius, color.NRGBA{R: s.Color.R, G: s.Color.G, B: s.Color.B, A: 0xff}, 1)
	if s.Blur > 0 {
		img = imaging.Blur(img, s.Blur/2)
	}

	shape := roundedMask(w, h, radius, 1)
	ox := pad - int(math.Round(s.OffsetX))
	oy := pad - int(math.Round(s.OffsetY))
	tint := float64(s.Color.A) / 255
	for y := 0; y < img.Rect.Dy(); y++ {
		for x := 0; x < img.Rect.Dx(); x++ {
			i := y*img.Stride + x*4
			a := float64(img.Pix[i+3]) * tint
			if bx, by := x-ox, y-oy; bx >= 0 && by >= 0 && bx < w && by < h {
				a *= 1 - float64(shape.Pix[by*shape.Stride+bx])/255
			}
			img.Pix[i+3] = uint8(math.Round(a))
		}
	}
	return img
}
