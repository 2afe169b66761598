package director

import (
	"errors"
	"fmt"
	"image/color"
	"sort"

	"github.com/ivlev/promo2video/internal/anim"
	"github.com/ivlev/promo2video/internal/effects"
	"github.com/ivlev/promo2video/internal/media"
	"github.com/ivlev/promo2video/internal/scene"
)

type builder func(spec SceneSpec) (effects.Effect, error)

// kinds maps a scene kind to its effect constructor.
var kinds = map[string]builder{
	"gradient":       buildGradient,
	"backdrop":       buildBackdrop,
	"slide_text":     buildSlideText,
	"glitch":         buildGlitch,
	"ui_shot":        buildUIShot,
	"screen_capture": buildCapture,
	"video_capture":  buildCapture,
	"scroll":         buildScroll,
	"crossfade":      buildCrossfade,
	"wordmark":       buildWordmark,
	"cta":            buildCTA,
	"ken_burns":      buildKenBurns,
}

// Kinds returns the registered scene kinds.
func Kinds() []string {
	names := make([]string, 0, len(kinds))
	for k := range kinds {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

var errNoMedia = errors.New("media is required")

func element(name, fallback string) (*media.Element, error) {
	if name == "" {
		return nil, errNoMedia
	}
	ref, err := media.ParseReference(name)
	if err != nil {
		return nil, err
	}
	return media.NewElement(ref, fallback), nil
}

func optionalColor(s string, def color.NRGBA) (color.NRGBA, error) {
	if s == "" {
		return def, nil
	}
	return scene.ParseColor(s)
}

func spring(cfg *anim.SpringConfig, def anim.Spring) (anim.Spring, error) {
	if cfg == nil {
		return def, nil
	}
	return anim.NewSpring(*cfg)
}

func buildGradient(spec SceneSpec) (effects.Effect, error) {
	g := spec.Gradient
	if g == nil {
		g = &GradientSpec{Angle: 135, From: "#0089e6", To: "#e55e00"}
	}
	from, err := scene.ParseColor(g.From)
	if err != nil {
		return nil, err
	}
	to, err := scene.ParseColor(g.To)
	if err != nil {
		return nil, err
	}
	return effects.NewGradient(scene.Gradient{Angle: g.Angle, From: from, To: to}), nil
}

func buildBackdrop(spec SceneSpec) (effects.Effect, error) {
	el, err := element(spec.Media, spec.Fallback)
	if err != nil {
		return nil, err
	}
	opacity := 1.0
	if spec.Opacity != nil {
		opacity = *spec.Opacity
	}
	if opacity < 0 || opacity > 1 {
		return nil, fmt.Errorf("opacity %v outside [0, 1]", opacity)
	}
	b := effects.NewBackdrop(el, opacity)
	b.StartFrom = spec.StartFrom
	return b, nil
}

func buildSlideText(spec SceneSpec) (effects.Effect, error) {
	bg, err := optionalColor(spec.Background, color.NRGBA{})
	if err != nil {
		return nil, fmt.Errorf("bg: %w", err)
	}
	textBg, err := optionalColor(spec.TextBackground, color.NRGBA{})
	if err != nil {
		return nil, fmt.Errorf("text_bg: %w", err)
	}
	exit := true
	if spec.Exit != nil {
		exit = *spec.Exit
	}
	if spec.Blur < 0 {
		return nil, fmt.Errorf("blur %v: must not be negative", spec.Blur)
	}
	s := effects.NewSlideText(spec.Text, bg, textBg, exit)
	s.Blur = spec.Blur
	if s.Spring, err = spring(spec.Spring, s.Spring); err != nil {
		return nil, err
	}
	return s, nil
}

func buildGlitch(spec SceneSpec) (effects.Effect, error) {
	seed := spec.Seed
	if seed == 0 {
		seed = 1
	}
	g := effects.NewGlitchCut(seed)
	fill, err := optionalColor(spec.Background, g.Fill)
	if err != nil {
		return nil, err
	}
	g.Fill = fill
	return g, nil
}

func buildUIShot(spec SceneSpec) (effects.Effect, error) {
	el, err := element(spec.Media, spec.Fallback)
	if err != nil {
		return nil, err
	}
	u := effects.NewUIShot(el)
	if u.Spring, err = spring(spec.Spring, u.Spring); err != nil {
		return nil, err
	}
	return u, nil
}

func buildCapture(spec SceneSpec) (effects.Effect, error) {
	fallback := spec.Fallback
	if fallback == "" {
		fallback = "Error loading " + spec.Media
	}
	el, err := element(spec.Media, fallback)
	if err != nil {
		return nil, err
	}
	if spec.Kind == "video_capture" && el.Ref.Kind != media.Video {
		return nil, fmt.Errorf("%s is not a video", spec.Media)
	}
	c := effects.NewCapture(el)
	c.StartFrom = spec.StartFrom
	if c.Spring, err = spring(spec.Spring, c.Spring); err != nil {
		return nil, err
	}
	return c, nil
}

func buildScroll(spec SceneSpec) (effects.Effect, error) {
	pages := make([]*media.Element, 0, len(spec.Images))
	for i, name := range spec.Images {
		el, err := element(name, fmt.Sprintf("Image %d non disponible", i+1))
		if err != nil {
			return nil, err
		}
		pages = append(pages, el)
	}
	s := effects.NewScroll(pages)
	bg, err := optionalColor(spec.Background, s.Background)
	if err != nil {
		return nil, err
	}
	s.Background = bg
	return s, nil
}

func buildCrossfade(spec SceneSpec) (effects.Effect, error) {
	before, err := element(spec.Before, "Error loading "+spec.Before)
	if err != nil {
		return nil, fmt.Errorf("before: %w", err)
	}
	after, err := element(spec.After, "Error loading "+spec.After)
	if err != nil {
		return nil, fmt.Errorf("after: %w", err)
	}
	c := effects.NewCrossfade(before, after)
	if c.Spring, err = spring(spec.Spring, c.Spring); err != nil {
		return nil, err
	}
	return c, nil
}

func buildWordmark(spec SceneSpec) (effects.Effect, error) {
	if spec.Text == "" {
		return nil, errors.New("text is required")
	}
	m := effects.NewWordmark(spec.Text)
	var err error
	if m.Spring, err = spring(spec.Spring, m.Spring); err != nil {
		return nil, err
	}
	return m, nil
}

func buildCTA(spec SceneSpec) (effects.Effect, error) {
	if spec.Label == "" {
		return nil, errors.New("label is required")
	}
	c := effects.NewCallToAction(spec.Label, spec.Caption)
	c.QR = spec.QR
	var err error
	if c.Spring, err = spring(spec.Spring, c.Spring); err != nil {
		return nil, err
	}
	return c, nil
}

func buildKenBurns(spec SceneSpec) (effects.Effect, error) {
	el, err := element(spec.Media, spec.Fallback)
	if err != nil {
		return nil, err
	}
	fn, err := easing(spec.Easing)
	if err != nil {
		return nil, err
	}
	return effects.NewKenBurns(el, spec.Keyframes, spec.Length, fn)
}
