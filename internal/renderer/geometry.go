package renderer

import (
	"image"
	"image/color"
	"math"

	"golang.org/x/image/draw"
	"golang.org/x/image/math/f64"

	"github.com/ivlev/promo2video/internal/anim"
	"github.com/ivlev/promo2video/internal/scene"
)

var identity = f64.Aff3{1, 0, 0, 0, 1, 0}

// mul returns p∘q: q is applied first.
func mul(p, q f64.Aff3) f64.Aff3 {
	return f64.Aff3{
		p[0]*q[0] + p[1]*q[3], p[0]*q[1] + p[1]*q[4], p[0]*q[2] + p[1]*q[5] + p[2],
		p[3]*q[0] + p[4]*q[3], p[3]*q[1] + p[4]*q[4], p[3]*q[2] + p[4]*q[5] + p[5],
	}
}

func translate(x, y float64) f64.Aff3 {
	return f64.Aff3{1, 0, x, 0, 1, y}
}

func scale(s float64) f64.Aff3 {
	return f64.Aff3{s, 0, 0, 0, s, 0}
}

// local maps a node's own coordinates into its parent's: the box origin,
// then the visual transform around the box center. Rotation is clockwise
// in screen space.
func local(box scene.Rect, v anim.Visual) f64.Aff3 {
	cx, cy := box.W/2, box.H/2
	sin, cos := math.Sincos(v.Rotation * math.Pi / 180)
	a, b := v.Scale*cos, -v.Scale*sin
	d, e := v.Scale*sin, v.Scale*cos
	return f64.Aff3{
		a, b, box.X + cx + v.TranslateX - (a*cx + b*cy),
		d, e, box.Y + cy + v.TranslateY - (d*cx + e*cy),
	}
}

// offset reports whether m is a pure whole-pixel translation.
func offset(m f64.Aff3) (image.Point, bool) {
	if m[0] != 1 || m[1] != 0 || m[3] != 0 || m[4] != 1 {
		return image.Point{}, false
	}
	x, y := math.Round(m[2]), math.Round(m[5])
	if math.Abs(m[2]-x) > 1e-3 || math.Abs(m[5]-y) > 1e-3 {
		return image.Point{}, false
	}
	return image.Pt(int(x), int(y)), true
}

func alphaMask(alpha float64) image.Image {
	if alpha >= 1 {
		return nil
	}
	return image.NewUniform(color.Alpha{A: uint8(math.Round(alpha * 255))})
}

// composite draws sr of src onto dst through m with the given opacity.
func composite(dst draw.Image, src image.Image, sr image.Rectangle, m f64.Aff3, alpha float64) {
	if alpha <= 0 || sr.Empty() {
		return
	}
	mask := alphaMask(alpha)
	if p, ok := offset(m); ok {
		draw.DrawMask(dst, sr.Add(p), src, sr.Min, mask, image.Point{}, draw.Over)
		return
	}
	var opts *draw.Options
	if mask != nil {
		opts = &draw.Options{SrcMask: mask}
	}
	draw.ApproxBiLinear.Transform(dst, m, src, sr, draw.Over, opts)
}

// roundedMask is the coverage of a w×h rectangle with corner radius r,
// scaled by alpha.
func roundedMask(w, h int, r, alpha float64) *image.Alpha {
	mask := image.NewAlpha(image.Rect(0, 0, w, h))
	r = math.Min(r, math.Min(float64(w), float64(h))/2)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			cov := cornerCoverage(float64(x)+0.5, float64(y)+0.5, float64(w), float64(h), r)
			mask.Pix[y*mask.Stride+x] = uint8(math.Round(cov * alpha * 255))
		}
	}
	return mask
}

// cornerCoverage is 1 inside the rounded rectangle and ramps to 0 over one
// pixel at the corner arcs.
func cornerCoverage(px, py, w, h, r float64) float64 {
	if r <= 0 {
		return 1
	}
	cx := math.Max(r, math.Min(px, w-r))
	cy := math.Max(r, math.Min(py, h-r))
	dist := math.Hypot(px-cx, py-cy)
	return math.Max(0, math.Min(1, r-dist+0.5))
}

// fillRounded paints a w×h box of color c through m.
func fillRounded(dst draw.Image, m f64.Aff3, w, h, radius float64, c color.NRGBA, alpha float64) {
	if c.A == 0 || w <= 0 || h <= 0 {
		return
	}
	src := image.NewUniform(c)
	iw, ih := int(math.Ceil(w)), int(math.Ceil(h))
	sr := image.Rect(0, 0, iw, ih)

	if radius <= 0 {
		if p, ok := offset(m); ok {
			draw.DrawMask(dst, sr.Add(p), src, image.Point{}, alphaMask(alpha), image.Point{}, draw.Over)
			return
		}
		composite(dst, src, sr, m, alpha)
		return
	}

	mask := roundedMask(iw, ih, radius, alpha)
	if p, ok := offset(m); ok {
		draw.DrawMask(dst, sr.Add(p), src, image.Point{}, mask, image.Point{}, draw.Over)
		return
	}
	draw.ApproxBiLinear.Transform(dst, m, src, sr, draw.Over, &draw.Options{SrcMask: mask})
}

// gradientImage renders a CSS-style linear gradient: 0° runs bottom to top,
// 90° left to right, and the gradient line spans the box corner to corner.
func gradientImage(w, h int, g scene.Gradient) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	sin, cos := math.Sincos(g.Angle * math.Pi / 180)
	dx, dy := sin, -cos
	length := math.Abs(float64(w)*sin) + math.Abs(float64(h)*cos)
	if length == 0 {
		length = 1
	}
	cx, cy := float64(w)/2, float64(h)/2
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			t := ((float64(x)+0.5-cx)*dx+(float64(y)+0.5-cy)*dy)/length + 0.5
			t = math.Max(0, math.Min(1, t))
			img.Set(x, y, scene.Blend(g.From, g.To, t))
		}
	}
	return img
}
