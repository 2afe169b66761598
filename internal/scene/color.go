package scene

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

var namedColors = map[string]color.NRGBA{
	"transparent": {},
	"white":       {R: 0xff, G: 0xff, B: 0xff, A: 0xff},
	"black":       {A: 0xff},
	"grey":        {R: 0x80, G: 0x80, B: 0x80, A: 0xff},
	"gray":        {R: 0x80, G: 0x80, B: 0x80, A: 0xff},
}

// ParseColor accepts "#rgb", "#rrggbb", "rgb(r,g,b)", "rgba(r,g,b,a)" and a
// few names. The empty string is transparent.
func ParseColor(s string) (color.NRGBA, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	if s == "" {
		return color.NRGBA{}, nil
	}
	if c, ok := namedColors[s]; ok {
		return c, nil
	}

	if strings.HasPrefix(s, "#") {
		if len(s) == 4 {
			s = "#" + strings.Repeat(s[1:2], 2) + strings.Repeat(s[2:3], 2) + strings.Repeat(s[3:4], 2)
		}
		c, err := colorful.Hex(s)
		if err != nil {
			return color.NRGBA{}, fmt.Errorf("color %q: %w", s, err)
		}
		r, g, b := c.RGB255()
		return color.NRGBA{R: r, G: g, B: b, A: 0xff}, nil
	}

	fn, args, ok := strings.Cut(s, "(")
	if !ok || !strings.HasSuffix(args, ")") || (fn != "rgb" && fn != "rgba") {
		return color.NRGBA{}, fmt.Errorf("unsupported color %q", s)
	}
	parts := strings.Split(strings.TrimSuffix(args, ")"), ",")
	if len(parts) != len(fn) {
		return color.NRGBA{}, fmt.Errorf("color %q: want %d components", s, len(fn))
	}

	var c [4]float64
	c[3] = 1
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return color.NRGBA{}, fmt.Errorf("color %q: %w", s, err)
		}
		c[i] = v
	}
	return color.NRGBA{
		R: channel(c[0]),
		G: channel(c[1]),
		B: channel(c[2]),
		A: channel(c[3] * 255),
	}, nil
}

// MustColor is ParseColor for literals.
func MustColor(s string) color.NRGBA {
	c, err := ParseColor(s)
	if err != nil {
		panic(err)
	}
	return c
}

// Blend mixes two colors in sRGB space, t in [0,1].
func Blend(from, to color.NRGBA, t float64) color.NRGBA {
	a, _ := colorful.MakeColor(opaque(from))
	b, _ := colorful.MakeColor(opaque(to))
	r, g, bl := a.BlendRgb(b, t).Clamped().RGB255()
	alpha := float64(from.A) + (float64(to.A)-float64(from.A))*t
	return color.NRGBA{R: r, G: g, B: bl, A: channel(alpha)}
}

func opaque(c color.NRGBA) color.NRGBA {
	c.A = 0xff
	return c
}

func channel(v float64) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return uint8(v + 0.5)
}
