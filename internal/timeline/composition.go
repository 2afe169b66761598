// Package timeline sequences scenes into frames. A Composition is evaluated
// one frame at a time and has no state of its own, so any frame can be
// produced in any order.
package timeline

import (
	"errors"
	"fmt"
	"image/color"
	"sort"

	"github.com/ivlev/promo2video/internal/anim"
	"github.com/ivlev/promo2video/internal/effects"
	"github.com/ivlev/promo2video/internal/scene"
)

var (
	ErrFrameRange  = errors.New("frame outside composition")
	ErrComposition = errors.New("invalid composition")
)

// Scene is one entry of the timeline: an effect shown during a window at a
// stacking depth. Higher Z draws on top; equal Z keeps declaration order.
type Scene struct {
	ID     string
	Window anim.Window
	Z      int
	Effect effects.Effect
}

// Audio is the soundtrack of a composition.
type Audio struct {
	Source    string
	StartFrom float64 // seconds skipped at the head of the file
	EndAt     int     // frame at which playback stops; 0 plays to the end
	Volume    *Envelope
}

// Composition is a fixed-size, fixed-rate sequence of scenes.
type Composition struct {
	ID         string
	FPS        int
	Width      int
	Height     int
	Frames     int
	Background color.NRGBA
	Scenes     []Scene
	Audio      *Audio
}

// Validate checks the composition geometry and scene definitions. It does
// not reject scenes that overflow the end; those are reported by Overflowing
// and never activate.
func (c *Composition) Validate() error {
	switch {
	case c.FPS <= 0:
		return fmt.Errorf("%w: fps must be positive, got %d", ErrComposition, c.FPS)
	case c.Width <= 0 || c.Height <= 0:
		return fmt.Errorf("%w: size %dx%d", ErrComposition, c.Width, c.Height)
	case c.Frames <= 0:
		return fmt.Errorf("%w: frames must be positive, got %d", ErrComposition, c.Frames)
	}
	seen := make(map[string]bool, len(c.Scenes))
	for i, s := range c.Scenes {
		if s.Effect == nil {
			return fmt.Errorf("%w: scene %d (%s) has no effect", ErrComposition, i, s.ID)
		}
		if s.Window.Start < 0 || s.Window.Duration < 0 {
			return fmt.Errorf("%w: scene %s has a negative window", ErrComposition, s.ID)
		}
		if s.ID != "" && seen[s.ID] {
			return fmt.Errorf("%w: duplicate scene id %q", ErrComposition, s.ID)
		}
		seen[s.ID] = true
	}
	return nil
}

// Overflowing lists the scenes whose nominal window runs past the last
// frame. Latched scenes are exempt since they have no end.
func (c *Composition) Overflowing() []string {
	var ids []string
	for _, s := range c.Scenes {
		if s.Window.Bounds != anim.Latched && !s.Window.Fits(c.Frames) {
			ids = append(ids, s.ID)
		}
	}
	return ids
}

// Duration is the composition length in seconds.
func (c *Composition) Duration() float64 {
	return float64(c.Frames) / float64(c.FPS)
}

// Clock returns the clock for frame.
func (c *Composition) Clock(frame int) anim.Clock {
	return anim.Clock{Frame: frame, FPS: c.FPS, Width: c.Width, Height: c.Height}
}

// Active returns the scenes visible at frame in draw order.
func (c *Composition) Active(frame int) []Scene {
	var active []Scene
	for _, s := range c.Scenes {
		if c.activates(s, frame) {
			active = append(active, s)
		}
	}
	sort.SliceStable(active, func(i, j int) bool {
		return active[i].Z < active[j].Z
	})
	return active
}

func (c *Composition) activates(s Scene, frame int) bool {
	if s.Window.Bounds != anim.Latched && !s.Window.Fits(c.Frames) {
		return false
	}
	return s.Window.Active(frame)
}

// Volume is the soundtrack gain at frame; 0 once playback has stopped or
// when there is no soundtrack.
func (c *Composition) Volume(frame int) float64 {
	if c.Audio == nil {
		return 0
	}
	if c.Audio.EndAt > 0 && frame >= c.Audio.EndAt {
		return 0
	}
	if c.Audio.Volume == nil {
		return 1
	}
	return c.Audio.Volume.At(float64(frame))
}

// Evaluate composes frame.
func (c *Composition) Evaluate(frame int) (scene.Frame, error) {
	if frame < 0 || frame >= c.Frames {
		return scene.Frame{}, fmt.Errorf("%w: %d not in [0, %d)", ErrFrameRange, frame, c.Frames)
	}
	clock := c.Clock(frame)
	active := c.Active(frame)

	out := scene.Frame{
		Index:      frame,
		Width:      c.Width,
		Height:     c.Height,
		Background: c.Background,
		Layers:     make([]scene.Layer, 0, len(active)),
		Volume:     c.Volume(frame),
	}
	for _, s := range active {
		out.Layers = append(out.Layers, scene.Layer{
			Scene: s.ID,
			Z:     s.Z,
			Root:  s.Effect.Render(clock, s.Window),
		})
	}
	return out, nil
}
