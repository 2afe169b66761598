package metrics

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCounters(t *testing.T) {
	m := New()
	m.ObserveFrame("StartBridgeAd", 0.02)
	m.ObserveFrame("StartBridgeAd", 0.03)
	m.ObserveFrame("CreeFicheAd", 0.01)
	m.IncFallback("video")

	if got := testutil.ToFloat64(m.framesRendered.WithLabelValues("StartBridgeAd")); got != 2 {
		t.Errorf("StartBridgeAd frames = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.mediaFallbacks.WithLabelValues("video")); got != 1 {
		t.Errorf("video fallbacks = %v, want 1", got)
	}
	if got := testutil.CollectAndCount(m.renderDuration); got != 1 {
		t.Errorf("histogram series = %d, want 1", got)
	}

	m.WorkerStarted()
	m.WorkerStarted()
	m.WorkerDone()
	if got := testutil.ToFloat64(m.activeWorkers); got != 1 {
		t.Errorf("active workers = %v, want 1", got)
	}
}

func TestWriteToTextfile(t *testing.T) {
	m := New()
	m.ObserveFrame("CreeFicheAd", 0.01)

	path := filepath.Join(t.TempDir(), "render.prom")
	if err := m.WriteToTextfile(path); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `promo_frames_rendered_total{composition="CreeFicheAd"} 1`) {
		t.Errorf("textfile missing counter:\n%s", data)
	}
}

func TestHandler(t *testing.T) {
	m := New()
	m.IncFallback("image")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `promo_media_fallbacks_total{kind="image"} 1`) {
		t.Errorf("exposition missing fallback counter:\n%s", rec.Body.String())
	}
}
