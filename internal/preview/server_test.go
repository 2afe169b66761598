package preview

import (
	"bytes"
	"encoding/json"
	"fmt"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/ivlev/promo2video/internal/anim"
	"github.com/ivlev/promo2video/internal/director"
	"github.com/ivlev/promo2video/internal/metrics"
	"github.com/ivlev/promo2video/internal/renderer"
	"github.com/ivlev/promo2video/internal/scene"
	"github.com/ivlev/promo2video/internal/timeline"
)

type fillEffect struct{}

func (fillEffect) Render(clock anim.Clock, w anim.Window) scene.Node {
	return scene.FillNode(scene.Rect{}, color.NRGBA{G: 255, A: 255})
}

type fakeCatalog map[string]*timeline.Composition

func (c fakeCatalog) IDs() []string {
	ids := make([]string, 0, len(c))
	for id := range c {
		ids = append(ids, id)
	}
	return ids
}

func (c fakeCatalog) Composition(id string) (*timeline.Composition, error) {
	comp, ok := c[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", director.ErrUnknownComposition, id)
	}
	return comp, nil
}

func newTestServer(t *testing.T, c Catalog) (*Server, http.Handler) {
	t.Helper()
	l := log.NewWithOptions(&bytes.Buffer{}, log.Options{Level: log.ErrorLevel})
	s := NewServer(c, renderer.NewRasterizer(nil, nil), l, metrics.New())
	return s, s.Routes()
}

func smallCatalog() fakeCatalog {
	return fakeCatalog{"Tiny": {
		ID: "Tiny", FPS: 30, Width: 4, Height: 4, Frames: 10,
		Background: color.NRGBA{A: 255},
		Scenes: []timeline.Scene{
			{ID: "green", Window: anim.Window{Start: 5, Duration: 5}, Effect: fillEffect{}},
		},
	}}
}

func get(h http.Handler, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestListBuiltins(t *testing.T) {
	cat, err := director.NewCatalog(nil)
	if err != nil {
		t.Fatal(err)
	}
	_, h := newTestServer(t, cat)

	rec := get(h, "/compositions")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var list []Summary
	if err := json.NewDecoder(rec.Body).Decode(&list); err != nil {
		t.Fatal(err)
	}
	want := map[string]int{"StartBridgeAd": 1440, "CreeFicheAd": 1290}
	if len(list) != len(want) {
		t.Fatalf("list = %+v", list)
	}
	for _, s := range list {
		if want[s.ID] != s.Frames || s.FPS != 30 || s.Width != 1080 || s.Height != 1920 {
			t.Errorf("unexpected summary %+v", s)
		}
	}
}

func TestFrameJSON(t *testing.T) {
	cat, err := director.NewCatalog(nil)
	if err != nil {
		t.Fatal(err)
	}
	_, h := newTestServer(t, cat)

	rec := get(h, "/compositions/StartBridgeAd/frames/1030")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var f struct {
		Index  int `json:"index"`
		Layers []struct {
			Scene string `json:"scene"`
		} `json:"layers"`
		Volume float64 `json:"volume"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&f); err != nil {
		t.Fatal(err)
	}
	if f.Index != 1030 || len(f.Layers) == 0 || f.Layers[0].Scene != "background" {
		t.Errorf("unexpected frame %+v", f)
	}
	if f.Volume < 0.59 || f.Volume > 0.61 {
		t.Errorf("volume = %v, want 0.6", f.Volume)
	}
}

func TestFramePNG(t *testing.T) {
	_, h := newTestServer(t, smallCatalog())

	tests := []struct {
		frame int
		want  color.RGBA
	}{
		{0, color.RGBA{A: 255}},
		{7, color.RGBA{G: 255, A: 255}},
	}
	for _, tt := range tests {
		rec := get(h, fmt.Sprintf("/compositions/Tiny/frames/%d.png", tt.frame))
		if rec.Code != http.StatusOK {
			t.Fatalf("frame %d: status = %d", tt.frame, rec.Code)
		}
		if ct := rec.Header().Get("Content-Type"); ct != "image/png" {
			t.Errorf("content type = %q", ct)
		}
		img, err := png.Decode(rec.Body)
		if err != nil {
			t.Fatal(err)
		}
		if got := color.RGBAModel.Convert(img.At(1, 1)).(color.RGBA); got != tt.want {
			t.Errorf("frame %d: pixel = %v, want %v", tt.frame, got, tt.want)
		}
	}
}

func TestFrameErrors(t *testing.T) {
	_, h := newTestServer(t, smallCatalog())

	tests := []struct {
		path string
		want int
	}{
		{"/compositions/Nope/frames/0", http.StatusNotFound},
		{"/compositions/Nope/frames/0.png", http.StatusNotFound},
		{"/compositions/Tiny/frames/abc", http.StatusBadRequest},
		{"/compositions/Tiny/frames/10", http.StatusBadRequest},
		{"/compositions/Tiny/frames/-1.png", http.StatusBadRequest},
	}
	for _, tt := range tests {
		if rec := get(h, tt.path); rec.Code != tt.want {
			t.Errorf("%s: status = %d, want %d", tt.path, rec.Code, tt.want)
		}
	}
}

func TestMetricsEndpoint(t *testing.T) {
	s, h := newTestServer(t, smallCatalog())
	s.metrics.IncFallback("video")

	rec := get(h, "/metrics")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "promo_media_fallbacks_total") {
		t.Errorf("metrics: %d %s", rec.Code, rec.Body.String())
	}
}

var _ Renderer = (*renderer.Rasterizer)(nil)
