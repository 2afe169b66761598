package engine

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/ivlev/promo2video/internal/anim"
	"github.com/ivlev/promo2video/internal/config"
	"github.com/ivlev/promo2video/internal/media"
	"github.com/ivlev/promo2video/internal/metrics"
	"github.com/ivlev/promo2video/internal/scene"
	"github.com/ivlev/promo2video/internal/timeline"
	"github.com/ivlev/promo2video/internal/video"
)

type fillEffect struct{}

func (fillEffect) Render(clock anim.Clock, w anim.Window) scene.Node {
	return scene.FillNode(scene.Rect{W: float64(clock.Width), H: float64(clock.Height)}, color.NRGBA{R: 255, A: 255})
}

// indexRenderer stamps the frame index into the first pixel.
type indexRenderer struct {
	fail int
}

func (r indexRenderer) Draw(ctx context.Context, f scene.Frame, dst *image.RGBA) error {
	if r.fail > 0 && f.Index == r.fail {
		return errors.New("boom")
	}
	dst.Pix[0] = uint8(f.Index)
	dst.Pix[3] = 0xff
	return nil
}

type recordingEncoder struct {
	opts   video.Options
	frames []int
	closed bool
}

func (e *recordingEncoder) Open(ctx context.Context, opts video.Options) (video.Stream, error) {
	e.opts = opts
	return e, nil
}

func (e *recordingEncoder) WriteFrame(img image.Image) error {
	e.frames = append(e.frames, int(img.(*image.RGBA).Pix[0]))
	return nil
}

func (e *recordingEncoder) Close() error {
	e.closed = true
	return nil
}

func testComposition(frames int) *timeline.Composition {
	return &timeline.Composition{
		ID: "Test", FPS: 30, Width: 8, Height: 8, Frames: frames,
		Background: color.NRGBA{A: 255},
		Scenes: []timeline.Scene{
			{ID: "fill", Window: anim.Window{Start: 0, Duration: frames}, Effect: fillEffect{}},
		},
	}
}

func quietLogger() *log.Logger {
	return log.NewWithOptions(&bytes.Buffer{}, log.Options{Level: log.ErrorLevel})
}

func TestRunWritesFramesInOrder(t *testing.T) {
	tests := []struct {
		name       string
		start, end int
		workers    int
		want       []int
	}{
		{"all frames", 0, -1, 3, []int{0, 1, 2, 3, 4, 5, 6}},
		{"sub range", 2, 5, 2, []int{2, 3, 4}},
		{"single worker", 5, 7, 1, []int{5, 6}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &config.Config{OutputVideo: "out.mp4", Workers: tt.workers, FrameStart: tt.start, FrameEnd: tt.end, Quality: 23}
			enc := &recordingEncoder{}
			p := NewVideoProject(cfg, testComposition(7), indexRenderer{}, enc, quietLogger())
			p.Metrics = metrics.New()

			if err := p.Run(context.Background()); err != nil {
				t.Fatal(err)
			}
			if !enc.closed {
				t.Error("stream was not closed")
			}
			if len(enc.frames) != len(tt.want) {
				t.Fatalf("frames = %v, want %v", enc.frames, tt.want)
			}
			for i := range tt.want {
				if enc.frames[i] != tt.want[i] {
					t.Fatalf("frames = %v, want %v", enc.frames, tt.want)
				}
			}
			if enc.opts.Width != 8 || enc.opts.FPS != 30 || enc.opts.Output != "out.mp4" || enc.opts.Audio != nil {
				t.Errorf("unexpected options %+v", enc.opts)
			}
		})
	}
}

func TestRunErrors(t *testing.T) {
	cfg := &config.Config{Workers: 2, FrameStart: 0, FrameEnd: 9}
	p := NewVideoProject(cfg, testComposition(7), indexRenderer{}, &recordingEncoder{}, quietLogger())
	if err := p.Run(context.Background()); !errors.Is(err, ErrRange) {
		t.Errorf("expected ErrRange, got %v", err)
	}

	enc := &recordingEncoder{}
	cfg = &config.Config{Workers: 2, FrameEnd: -1}
	p = NewVideoProject(cfg, testComposition(7), indexRenderer{fail: 3}, enc, quietLogger())
	err := p.Run(context.Background())
	if err == nil || !strings.Contains(err.Error(), "boom") {
		t.Fatalf("expected render failure, got %v", err)
	}
	if !enc.closed {
		t.Error("stream should be closed after a failure")
	}
	if len(enc.frames) != 2 {
		t.Errorf("frames before the failing batch should be written, got %v", enc.frames)
	}
}

func TestAudioTrack(t *testing.T) {
	env, err := timeline.NewEnvelope([]timeline.Anchor{{Frame: 0, Volume: 0.6}, {Frame: 1200, Volume: 0.6}, {Frame: 1380, Volume: 0.9}})
	if err != nil {
		t.Fatal(err)
	}
	a := &timeline.Audio{Source: "music.mp3", StartFrom: 2, EndAt: 1440, Volume: env}

	track := audioTrack(a, "/assets/music.mp3", 30, 0, 1440)
	if track.Path != "/assets/music.mp3" || track.Start != 2 || math.Abs(track.Duration-48) > 1e-9 {
		t.Errorf("unexpected track %+v", track)
	}
	if !strings.Contains(track.Volume, "if(lt(t,46.000000),0.600000+(t-40.000000)") {
		t.Errorf("volume expression: %s", track.Volume)
	}

	track = audioTrack(a, "m.mp3", 30, 300, 1440)
	if math.Abs(track.Start-12) > 1e-9 || math.Abs(track.Duration-38) > 1e-9 {
		t.Errorf("offset track %+v", track)
	}
	if !strings.Contains(track.Volume, "(t+10.000000)") {
		t.Errorf("offset missing from %s", track.Volume)
	}

	a.EndAt = 900
	track = audioTrack(a, "m.mp3", 30, 0, 1440)
	if math.Abs(track.Duration-30) > 1e-9 {
		t.Errorf("duration should stop at EndAt, got %v", track.Duration)
	}
	if got := audioTrack(a, "m.mp3", 30, 900, 1440); got != nil {
		t.Errorf("range after EndAt should have no audio, got %+v", got)
	}

	a.Volume = nil
	if got := audioTrack(a, "m.mp3", 30, 0, 30); got.Volume != "" {
		t.Errorf("no envelope should keep full gain, got %q", got.Volume)
	}
}

func TestSoundtrackMissingFile(t *testing.T) {
	comp := testComposition(7)
	comp.Audio = &timeline.Audio{Source: "missing.mp3"}
	var buf bytes.Buffer
	logger := log.NewWithOptions(&buf, log.Options{Level: log.WarnLevel})

	enc := &recordingEncoder{}
	p := NewVideoProject(&config.Config{Workers: 4, FrameEnd: -1}, comp, indexRenderer{}, enc, logger)
	p.Resolver = media.DirResolver{Root: t.TempDir()}
	p.Assets = []media.Reference{media.MustReference("hero.png")}

	if err := p.Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	if enc.opts.Audio != nil {
		t.Errorf("missing soundtrack should render silent, got %+v", enc.opts.Audio)
	}
	for _, want := range []string{"soundtrack missing", "asset missing"} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("log should mention %q:\n%s", want, buf.String())
		}
	}
}

func TestRenderStill(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stills", "frame.png")
	p := NewVideoProject(&config.Config{}, testComposition(7), indexRenderer{}, nil, quietLogger())

	if err := p.RenderStill(context.Background(), 4, path); err != nil {
		t.Fatal(err)
	}
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatal(err)
	}
	if img.Bounds().Dx() != 8 {
		t.Errorf("size = %v", img.Bounds())
	}
	if r, _, _, _ := img.At(0, 0).RGBA(); r>>8 != 4 {
		t.Errorf("first pixel red = %d, want frame index 4", r>>8)
	}

	if err := p.RenderStill(context.Background(), 7, path); !errors.Is(err, timeline.ErrFrameRange) {
		t.Errorf("expected ErrFrameRange, got %v", err)
	}
}
