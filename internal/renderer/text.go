package renderer

import (
	"image"
	"math"
	"strings"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/math/f64"
	"golang.org/x/image/math/fixed"

	"github.com/ivlev/promo2video/internal/scene"
)

// wrap breaks content at explicit newlines and then greedily at spaces so
// that no line is wider than maxWidth, unless a single word is.
func wrap(face font.Face, content string, maxWidth fixed.Int26_6) []string {
	var lines []string
	for _, para := range strings.Split(content, "\n") {
		words := strings.Fields(para)
		if len(words) == 0 {
			lines = append(lines, "")
			continue
		}
		line := words[0]
		for _, w := range words[1:] {
			candidate := line + " " + w
			if font.MeasureString(face, candidate) > maxWidth {
				lines = append(lines, line)
				line = w
				continue
			}
			line = candidate
		}
		lines = append(lines, line)
	}
	return lines
}

// textBlock renders t as a centered column on its pill background. The
// returned image is just large enough for the pill.
func (r *Rasterizer) textBlock(t *scene.Text, boxW float64) (*image.RGBA, error) {
	face, err := r.Fonts.Face(t.Font, t.Size)
	if err != nil {
		return nil, err
	}
	defer face.Close()

	maxW := fixed.Int26_6(math.Max(boxW-2*t.PaddingX, 1) * 64)
	lines := wrap(face, t.Content, maxW)

	m := face.Metrics()
	lineH := m.Height.Ceil()
	var textW fixed.Int26_6
	widths := make([]fixed.Int26_6, len(lines))
	for i, l := range lines {
		widths[i] = font.MeasureString(face, l)
		if widths[i] > textW {
			textW = widths[i]
		}
	}

	w := textW.Ceil() + int(math.Ceil(2*t.PaddingX))
	h := lineH*len(lines) + int(math.Ceil(2*t.PaddingY))
	img := image.NewRGBA(image.Rect(0, 0, w, h))

	if t.Background.A > 0 {
		radius := math.Min(t.Radius, float64(h)/2)
		fillRounded(img, f64.Aff3{1, 0, 0, 0, 1, 0}, float64(w), float64(h), radius, t.Background, 1)
	}

	d := font.Drawer{Dst: img, Src: image.NewUniform(t.Color), Face: face}
	for i, l := range lines {
		x := (fixed.I(w) - widths[i]) / 2
		y := fixed.I(int(math.Ceil(t.PaddingY))+i*lineH) + m.Ascent
		d.Dot = fixed.Point26_6{X: x, Y: y}
		d.DrawString(l)
	}
	return img, nil
}

// drawText places the text block in the middle of a w×h box.
func (r *Rasterizer) drawText(dst draw.Image, m f64.Aff3, w, h float64, t *scene.Text, alpha float64) error {
	if t == nil || (t.Content == "" && t.Background.A == 0) {
		return nil
	}
	block, err := r.textBlock(t, w)
	if err != nil {
		return err
	}
	bw, bh := float64(block.Rect.Dx()), float64(block.Rect.Dy())
	place := mul(m, translate((w-bw)/2, (h-bh)/2))
	if t.Shadow != nil {
		r.shadow(dst, place, bw, bh, math.Min(t.Radius, bh/2), t.Shadow, alpha)
	}
	composite(dst, block, block.Rect, place, alpha)
	return nil
}
