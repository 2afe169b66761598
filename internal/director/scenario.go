package director

import (
	"github.com/ivlev/promo2video/internal/anim"
	"github.com/ivlev/promo2video/internal/effects"
)

// Scenario is the YAML form of a composition. All times are in seconds and
// are aligned to whole frames when the composition is built.
type Scenario struct {
	Version    string      `yaml:"version"`
	ID         string      `yaml:"id"`
	FPS        int         `yaml:"fps"`
	Width      int         `yaml:"width"`
	Height     int         `yaml:"height"`
	Frames     int         `yaml:"frames,omitempty"`   // total length in frames
	Duration   float64     `yaml:"duration,omitempty"` // used when Frames is zero
	Background string      `yaml:"background,omitempty"`
	Audio      *AudioTrack `yaml:"audio,omitempty"`
	Scenes     []SceneSpec `yaml:"scenes"`
}

// AudioTrack is the soundtrack and its volume curve.
type AudioTrack struct {
	Source    string        `yaml:"source"`
	StartFrom float64       `yaml:"start_from,omitempty"`
	EndAt     float64       `yaml:"end_at,omitempty"`
	Volume    []VolumePoint `yaml:"volume,omitempty"`
}

// VolumePoint is one anchor of the volume curve.
type VolumePoint struct {
	At     float64 `yaml:"at"`
	Volume float64 `yaml:"volume"`
}

// SceneSpec describes one scene. Which fields apply depends on Kind.
type SceneSpec struct {
	ID       string  `yaml:"id"`
	Kind     string  `yaml:"kind"`
	From     float64 `yaml:"from"`
	Duration float64 `yaml:"duration"`
	Bounds   string  `yaml:"bounds,omitempty"` // closed_open, closed_closed or latched
	Z        int     `yaml:"z"`

	Text           string  `yaml:"text,omitempty"`
	Background     string  `yaml:"bg,omitempty"`
	TextBackground string  `yaml:"text_bg,omitempty"`
	Blur           float64 `yaml:"blur,omitempty"` // backdrop blur in px
	Exit           *bool   `yaml:"exit,omitempty"`

	Media     string   `yaml:"media,omitempty"`
	Images    []string `yaml:"images,omitempty"`
	Before    string   `yaml:"before,omitempty"`
	After     string   `yaml:"after,omitempty"`
	StartFrom float64  `yaml:"start_from,omitempty"`
	Opacity   *float64 `yaml:"opacity,omitempty"`
	Fallback  string   `yaml:"fallback,omitempty"`

	Label   string `yaml:"label,omitempty"`
	Caption string `yaml:"caption,omitempty"`
	QR      string `yaml:"qr,omitempty"`

	Gradient  *GradientSpec      `yaml:"gradient,omitempty"`
	Keyframes []effects.Keyframe `yaml:"keyframes,omitempty"`
	Length    float64            `yaml:"length,omitempty"` // timeline the keyframes were authored for
	Easing    string             `yaml:"easing,omitempty"`
	Seed      uint64             `yaml:"seed,omitempty"`
	Spring    *anim.SpringConfig `yaml:"spring,omitempty"`
}

// GradientSpec is a CSS-style linear gradient.
type GradientSpec struct {
	Angle float64 `yaml:"angle"`
	From  string  `yaml:"from"`
	To    string  `yaml:"to"`
}
