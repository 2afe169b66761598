// Package scene holds the declarative visual tree produced for one frame.
// Nodes describe what to draw and with which transform; they carry no
// pixels and no state between frames.
package scene

import (
	"image/color"

	"github.com/ivlev/promo2video/internal/anim"
	"github.com/ivlev/promo2video/internal/media"
)

// Kind selects how a node is drawn.
type Kind int

const (
	KindGroup Kind = iota
	KindFill
	KindGradient
	KindMedia
	KindText
	KindQRCode
)

func (k Kind) String() string {
	switch k {
	case KindFill:
		return "fill"
	case KindGradient:
		return "gradient"
	case KindMedia:
		return "media"
	case KindText:
		return "text"
	case KindQRCode:
		return "qrcode"
	default:
		return "group"
	}
}

func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Fit is how media is scaled into its box.
type Fit int

const (
	Cover Fit = iota
	Contain
)

func (f Fit) MarshalText() ([]byte, error) {
	if f == Contain {
		return []byte("contain"), nil
	}
	return []byte("cover"), nil
}

// Rect is a box in the parent's coordinate space. A zero width or height
// means "same as the parent".
type Rect struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// Text is a centered, wrapped text block.
type Text struct {
	Content    string      `json:"content"`
	Font       string      `json:"font"`
	Size       float64     `json:"size"`
	Color      color.NRGBA `json:"color"`
	Background color.NRGBA `json:"background"` // pill behind the text, transparent by default
	PaddingX   float64     `json:"padding_x"`
	PaddingY   float64     `json:"padding_y"`
	Radius     float64     `json:"radius"`
	Shadow     *Shadow     `json:"shadow,omitempty"` // cast by the pill
}

// Shadow is an outer drop shadow in CSS box-shadow terms: Blur is the blur
// radius, so the Gaussian deviation is Blur/2. It is not drawn under the
// element itself.
type Shadow struct {
	OffsetX float64     `json:"offset_x"`
	OffsetY float64     `json:"offset_y"`
	Blur    float64     `json:"blur"`
	Color   color.NRGBA `json:"color"`
}

// Gradient is a two-stop linear gradient. Angle follows CSS: 0 points up,
// 90 points right.
type Gradient struct {
	Angle float64     `json:"angle"`
	From  color.NRGBA `json:"from"`
	To    color.NRGBA `json:"to"`
}

// Node is one element of the visual tree. The Visual transform is applied
// around the center of Box; children are laid out inside Box.
type Node struct {
	Kind     Kind        `json:"kind"`
	Name     string      `json:"name,omitempty"`
	Box      Rect        `json:"box"`
	Visual   anim.Visual `json:"visual"`
	Fill     color.NRGBA `json:"fill"`
	Radius   float64     `json:"radius,omitempty"`
	Gradient *Gradient   `json:"gradient,omitempty"`
	Text     *Text       `json:"text,omitempty"`
	QR       string      `json:"qr,omitempty"`
	Blur     float64     `json:"blur,omitempty"` // backdrop blur deviation in px
	Shadow   *Shadow     `json:"shadow,omitempty"`

	Media     *media.Element `json:"-"`
	Source    string         `json:"source,omitempty"`
	MediaTime float64        `json:"media_time,omitempty"`
	Fit       Fit            `json:"fit"`

	Children []Node `json:"children,omitempty"`
}

// Layer is the output of one active scene.
type Layer struct {
	Scene string `json:"scene"`
	Z     int    `json:"z"`
	Root  Node   `json:"root"`
}

// Frame is the composed output for one frame index, layers in draw order.
type Frame struct {
	Index      int         `json:"index"`
	Width      int         `json:"width"`
	Height     int         `json:"height"`
	Background color.NRGBA `json:"background"`
	Layers     []Layer     `json:"layers"`
	Volume     float64     `json:"volume"`
}

// Group returns a container node.
func Group(name string, box Rect, v anim.Visual, children ...Node) Node {
	return Node{Kind: KindGroup, Name: name, Box: box, Visual: v.Normalized(), Children: children}
}

// FillNode returns a flat color box.
func FillNode(box Rect, c color.NRGBA) Node {
	return Node{Kind: KindFill, Box: box, Visual: anim.Identity(), Fill: c}
}

// GradientNode returns a gradient box.
func GradientNode(box Rect, g Gradient) Node {
	return Node{Kind: KindGradient, Box: box, Visual: anim.Identity(), Gradient: &g}
}

// MediaNode returns a node drawing el at media time at (seconds).
func MediaNode(box Rect, el *media.Element, fit Fit, at float64) Node {
	n := Node{Kind: KindMedia, Box: box, Visual: anim.Identity(), Media: el, Fit: fit, MediaTime: at}
	if el != nil {
		n.Source = el.Ref.String()
	}
	return n
}

// TextNode returns a text block centered in box.
func TextNode(box Rect, t Text) Node {
	return Node{Kind: KindText, Box: box, Visual: anim.Identity(), Text: &t}
}

// QRNode returns a QR code for content drawn into box.
func QRNode(box Rect, content string) Node {
	return Node{Kind: KindQRCode, Box: box, Visual: anim.Identity(), QR: content}
}

// WithVisual returns n with its transform replaced.
func (n Node) WithVisual(v anim.Visual) Node {
	n.Visual = v.Normalized()
	return n
}

// Walk calls fn for n and every descendant, depth first.
func (n Node) Walk(fn func(Node)) {
	fn(n)
	for _, c := range n.Children {
		c.Walk(fn)
	}
}
