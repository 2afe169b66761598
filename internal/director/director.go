// Package director turns YAML scenarios into timeline compositions.
package director

import (
	"errors"
	"fmt"
	"image/color"

	"github.com/charmbracelet/log"

	"github.com/ivlev/promo2video/internal/anim"
	"github.com/ivlev/promo2video/internal/media"
	"github.com/ivlev/promo2video/internal/scene"
	"github.com/ivlev/promo2video/internal/timeline"
)

var (
	// ErrScenario wraps every configuration fault found while building.
	ErrScenario           = errors.New("invalid scenario")
	ErrUnknownComposition = errors.New("unknown composition")
)

// Director builds compositions from scenarios.
type Director struct {
	Logger *log.Logger
}

// NewDirector creates a director that reports warnings to logger.
func NewDirector(logger *log.Logger) *Director {
	return &Director{Logger: logger}
}

// Build validates s and assembles its composition. Every media reference
// gets its own element, so a failure in one scene never blanks another.
func (d *Director) Build(s *Scenario) (*timeline.Composition, error) {
	if s.FPS <= 0 {
		return nil, fmt.Errorf("%w: %s: fps must be positive", ErrScenario, s.ID)
	}
	frames := s.Frames
	if frames == 0 {
		frames = toFrames(s.Duration, s.FPS)
	}

	comp := &timeline.Composition{
		ID:         s.ID,
		FPS:        s.FPS,
		Width:      s.Width,
		Height:     s.Height,
		Frames:     frames,
		Background: color.NRGBA{A: 0xff},
	}
	if s.Background != "" {
		bg, err := scene.ParseColor(s.Background)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: background: %v", ErrScenario, s.ID, err)
		}
		comp.Background = bg
	}

	for i, spec := range s.Scenes {
		sc, err := d.buildScene(s.FPS, spec)
		if err != nil {
			id := spec.ID
			if id == "" {
				id = fmt.Sprintf("#%d", i)
			}
			return nil, fmt.Errorf("%w: %s: scene %s: %v", ErrScenario, s.ID, id, err)
		}
		comp.Scenes = append(comp.Scenes, sc)
	}

	if s.Audio != nil {
		audio, err := buildAudio(s.Audio, s.FPS)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: audio: %v", ErrScenario, s.ID, err)
		}
		comp.Audio = audio
	}

	if err := comp.Validate(); err != nil {
		return nil, err
	}
	if d.Logger != nil {
		for _, id := range comp.Overflowing() {
			d.Logger.Warn("scene runs past the end of the composition and will not be shown", "composition", s.ID, "scene", id)
		}
	}
	return comp, nil
}

func (d *Director) buildScene(fps int, spec SceneSpec) (timeline.Scene, error) {
	bounds, err := anim.ParseBounds(spec.Bounds)
	if err != nil {
		return timeline.Scene{}, err
	}
	build, ok := kinds[spec.Kind]
	if !ok {
		return timeline.Scene{}, fmt.Errorf("unknown kind %q", spec.Kind)
	}
	effect, err := build(spec)
	if err != nil {
		return timeline.Scene{}, fmt.Errorf("%s: %w", spec.Kind, err)
	}
	return timeline.Scene{
		ID: spec.ID,
		Window: anim.Window{
			Start:    toFrames(spec.From, fps),
			Duration: toFrames(spec.Duration, fps),
			Bounds:   bounds,
		},
		Z:      spec.Z,
		Effect: effect,
	}, nil
}

func buildAudio(a *AudioTrack, fps int) (*timeline.Audio, error) {
	if a.Source == "" {
		return nil, errors.New("missing source")
	}
	audio := &timeline.Audio{
		Source:    a.Source,
		StartFrom: a.StartFrom,
		EndAt:     toFrames(a.EndAt, fps),
	}
	if len(a.Volume) > 0 {
		anchors := make([]timeline.Anchor, len(a.Volume))
		for i, p := range a.Volume {
			anchors[i] = timeline.Anchor{Frame: float64(toFrames(p.At, fps)), Volume: p.Volume}
		}
		env, err := timeline.NewEnvelope(anchors)
		if err != nil {
			return nil, err
		}
		audio.Volume = env
	}
	return audio, nil
}

// Assets lists every media reference a scenario uses, in scene order and
// without duplicates.
func Assets(s *Scenario) ([]media.Reference, error) {
	seen := make(map[string]bool)
	var refs []media.Reference
	add := func(name string) error {
		if name == "" || seen[name] {
			return nil
		}
		ref, err := media.ParseReference(name)
		if err != nil {
			return err
		}
		seen[name] = true
		refs = append(refs, ref)
		return nil
	}
	for _, spec := range s.Scenes {
		names := append([]string{spec.Media, spec.Before, spec.After}, spec.Images...)
		for _, name := range names {
			if err := add(name); err != nil {
				return nil, fmt.Errorf("scene %s: %w", spec.ID, err)
			}
		}
	}
	return refs, nil
}
