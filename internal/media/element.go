package media

import (
	"context"
	"image"
	"image/color"
	"sync"
)

// DefaultFallbackLabel is shown when an element has no label of its own.
const DefaultFallbackLabel = "Image non disponible"

// Placeholder is the flat substitute drawn in place of media that failed.
type Placeholder struct {
	Label string
	Fill  color.NRGBA
	Ink   color.NRGBA
}

// Result is what an Element yields for one frame: either the media image or
// a placeholder, never both.
type Result struct {
	Image       image.Image
	Placeholder *Placeholder
}

// OK reports whether the result carries real media.
func (r Result) OK() bool {
	return r.Image != nil
}

// FailureObserver is implemented by loaders that want to hear about the
// first failure of each element.
type FailureObserver interface {
	MediaFailed(ref Reference, err error)
}

// Element guards one media reference. The first load failure is latched for
// the lifetime of the element: every later Load returns the placeholder
// without touching the loader again.
type Element struct {
	Ref          Reference
	FallbackText string

	mu  sync.Mutex
	err error
}

// NewElement returns an element for ref with the given placeholder label.
func NewElement(ref Reference, fallbackText string) *Element {
	return &Element{Ref: ref, FallbackText: fallbackText}
}

// Load fetches the media at the given media time in seconds (ignored for
// stills). Failures never propagate; cancellation of ctx yields the
// placeholder for this call only.
func (e *Element) Load(ctx context.Context, l Loader, at float64) Result {
	if e.Err() != nil {
		return e.fallback()
	}
	if l == nil {
		return e.fallback()
	}

	img, err := l.Load(ctx, e.Ref, at)
	if err == nil && img != nil {
		return Result{Image: img}
	}
	if ctx.Err() != nil {
		return e.fallback()
	}
	if err == nil {
		err = errEmptyImage
	}

	e.mu.Lock()
	first := e.err == nil
	if first {
		e.err = err
	}
	e.mu.Unlock()

	if obs, ok := l.(FailureObserver); ok && first {
		obs.MediaFailed(e.Ref, err)
	}
	return e.fallback()
}

// Err returns the latched failure, if any.
func (e *Element) Err() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.err
}

func (e *Element) fallback() Result {
	label := e.FallbackText
	if label == "" {
		label = DefaultFallbackLabel
	}
	return Result{Placeholder: &Placeholder{
		Label: label,
		Fill:  color.NRGBA{R: 0xf0, G: 0xf0, B: 0xf0, A: 0xff},
		Ink:   color.NRGBA{R: 0x55, G: 0x55, B: 0x55, A: 0xff},
	}}
}
