// Package preview serves composed frames over HTTP for inspection.
package preview

import (
	"context"
	"encoding/json"
	"errors"
	"image"
	"image/png"
	"net/http"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"

	"github.com/ivlev/promo2video/internal/director"
	"github.com/ivlev/promo2video/internal/logger"
	"github.com/ivlev/promo2video/internal/metrics"
	"github.com/ivlev/promo2video/internal/scene"
	"github.com/ivlev/promo2video/internal/timeline"
)

// Catalog looks up compositions by id.
type Catalog interface {
	IDs() []string
	Composition(id string) (*timeline.Composition, error)
}

// Renderer rasterizes one evaluated frame.
type Renderer interface {
	Render(ctx context.Context, f scene.Frame) (*image.RGBA, error)
}

type Server struct {
	catalog  Catalog
	renderer Renderer
	log      *log.Logger
	metrics  *metrics.Metrics
}

// NewServer returns a preview server. Metrics may be nil to disable /metrics.
func NewServer(c Catalog, r Renderer, l *log.Logger, m *metrics.Metrics) *Server {
	return &Server{catalog: c, renderer: r, log: l, metrics: m}
}

// Summary describes one composition in the listing.
type Summary struct {
	ID       string  `json:"id"`
	FPS      int     `json:"fps"`
	Width    int     `json:"width"`
	Height   int     `json:"height"`
	Frames   int     `json:"frames"`
	Duration float64 `json:"duration"`
}

// Routes builds the chi router.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(logger.RequestLogger(s.log))
	if s.metrics != nil {
		r.Handle("/metrics", s.metrics.Handler())
	}
	r.Get("/compositions", s.List)
	r.Get("/compositions/{id}/frames/{frame}", s.Frame)
	return r
}

// List handles GET /compositions.
func (s *Server) List(w http.ResponseWriter, r *http.Request) {
	out := make([]Summary, 0)
	for _, id := range s.catalog.IDs() {
		comp, err := s.catalog.Composition(id)
		if err != nil {
			s.log.Error("composition failed to build", "id", id, "err", err)
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		out = append(out, Summary{
			ID: comp.ID, FPS: comp.FPS, Width: comp.Width, Height: comp.Height,
			Frames: comp.Frames, Duration: comp.Duration(),
		})
	}
	writeJSON(w, out)
}

// Frame handles GET /compositions/{id}/frames/{frame} (JSON visual tree)
// and /compositions/{id}/frames/{frame}.png (rasterized).
func (s *Server) Frame(w http.ResponseWriter, r *http.Request) {
	comp, err := s.catalog.Composition(chi.URLParam(r, "id"))
	if errors.Is(err, director.ErrUnknownComposition) {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	if err != nil {
		s.log.Error("composition failed to build", "err", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	param, asPNG := strings.CutSuffix(chi.URLParam(r, "frame"), ".png")
	index, err := strconv.Atoi(param)
	if err != nil || index < 0 || index >= comp.Frames {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	frame, err := comp.Evaluate(index)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	if !asPNG {
		writeJSON(w, frame)
		return
	}

	img, err := s.renderer.Render(r.Context(), frame)
	if err != nil {
		s.log.Error("render failed", "id", comp.ID, "frame", index, "err", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	if err := png.Encode(w, img); err != nil {
		s.log.Debug("png write failed", "err", err)
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
