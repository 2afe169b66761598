package engine

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/ivlev/promo2video/internal/config"
	"github.com/ivlev/promo2video/internal/media"
	"github.com/ivlev/promo2video/internal/metrics"
	"github.com/ivlev/promo2video/internal/scene"
	"github.com/ivlev/promo2video/internal/system"
	"github.com/ivlev/promo2video/internal/timeline"
	"github.com/ivlev/promo2video/internal/video"
)

// ErrRange is returned when the requested frames fall outside the composition.
var ErrRange = errors.New("frame range outside composition")

// FrameRenderer paints an evaluated frame into dst.
type FrameRenderer interface {
	Draw(ctx context.Context, f scene.Frame, dst *image.RGBA) error
}

type VideoProject struct {
	Config      *config.Config
	Composition *timeline.Composition
	Renderer    FrameRenderer
	Encoder     video.VideoEncoder
	// Resolver locates the soundtrack and is used for the asset preflight.
	Resolver media.Resolver
	// Assets are checked before rendering; missing ones only warn, the
	// frames show placeholders.
	Assets  []media.Reference
	Logger  *log.Logger
	Metrics *metrics.Metrics
}

func NewVideoProject(cfg *config.Config, comp *timeline.Composition, r FrameRenderer, ve video.VideoEncoder, logger *log.Logger) *VideoProject {
	return &VideoProject{
		Config:      cfg,
		Composition: comp,
		Renderer:    r,
		Encoder:     ve,
		Logger:      logger,
	}
}

// Stats summarizes a finished run.
type Stats struct {
	Frames int
	Total  time.Duration
	Render time.Duration
	Encode time.Duration
}

func (s Stats) FPS() float64 {
	if s.Total <= 0 {
		return 0
	}
	return float64(s.Frames) / s.Total.Seconds()
}

// Run renders the configured frame range and streams it to the encoder.
func (p *VideoProject) Run(ctx context.Context) error {
	startTime := time.Now()
	comp := p.Composition

	start, end, err := p.frameRange()
	if err != nil {
		return err
	}
	workers := p.workers()

	p.preflight()
	audio := p.soundtrack(ctx, start, end)

	p.Logger.Info("render",
		"composition", comp.ID,
		"frames", fmt.Sprintf("%d:%d", start, end),
		"size", fmt.Sprintf("%dx%d", comp.Width, comp.Height),
		"fps", comp.FPS,
		"workers", workers,
		"encoder", p.Config.VideoEncoder,
	)

	stream, err := p.Encoder.Open(ctx, video.Options{
		Width:   comp.Width,
		Height:  comp.Height,
		FPS:     comp.FPS,
		Output:  p.Config.OutputVideo,
		Codec:   p.Config.VideoEncoder,
		Quality: p.Config.Quality,
		Audio:   audio,
	})
	if err != nil {
		return fmt.Errorf("open encoder: %w", err)
	}

	stats := Stats{Frames: end - start}
	pool := system.NewFramePool(comp.Width, comp.Height)
	for batch := start; batch < end; batch += workers {
		n := min(workers, end-batch)
		frames := make([]*image.RGBA, n)

		renderStart := time.Now()
		g, gctx := errgroup.WithContext(ctx)
		for i := 0; i < n; i++ {
			frames[i] = pool.Get()
			g.Go(func() error {
				return p.renderFrame(gctx, batch+i, frames[i])
			})
		}
		err := g.Wait()
		stats.Render += time.Since(renderStart)
		if err != nil {
			releaseAll(pool, frames)
			stream.Close()
			return err
		}

		// Кадры пишутся строго по порядку
		encodeStart := time.Now()
		for i, img := range frames {
			if err := stream.WriteFrame(img); err != nil {
				releaseAll(pool, frames)
				stream.Close()
				return fmt.Errorf("frame %d: %w", batch+i, err)
			}
		}
		stats.Encode += time.Since(encodeStart)
		releaseAll(pool, frames)

		p.Logger.Debug("batch ready", "done", batch+n-start, "total", end-start)
	}

	encodeStart := time.Now()
	if err := stream.Close(); err != nil {
		return fmt.Errorf("finish encoding: %w", err)
	}
	stats.Encode += time.Since(encodeStart)
	stats.Total = time.Since(startTime)

	p.Logger.Info("video ready", "output", p.Config.OutputVideo, "frames", stats.Frames, "elapsed", stats.Total.Round(time.Millisecond))
	if p.Config.ShowStats {
		p.report(stats)
	}
	return nil
}

// RenderStill writes one frame as a PNG.
func (p *VideoProject) RenderStill(ctx context.Context, frame int, path string) error {
	comp := p.Composition
	img := image.NewRGBA(image.Rect(0, 0, comp.Width, comp.Height))

	if err := p.renderFrame(ctx, frame, img); err != nil {
		return err
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return err
	}
	p.Logger.Info("still written", "frame", frame, "path", path)
	return nil
}

func (p *VideoProject) renderFrame(ctx context.Context, frame int, dst *image.RGBA) error {
	if p.Metrics != nil {
		p.Metrics.WorkerStarted()
		defer p.Metrics.WorkerDone()
	}
	began := time.Now()

	f, err := p.Composition.Evaluate(frame)
	if err != nil {
		return err
	}
	if err := p.Renderer.Draw(ctx, f, dst); err != nil {
		return fmt.Errorf("frame %d: %w", frame, err)
	}

	if p.Metrics != nil {
		p.Metrics.ObserveFrame(p.Composition.ID, time.Since(began).Seconds())
	}
	return nil
}

func (p *VideoProject) frameRange() (int, int, error) {
	start, end := p.Config.FrameStart, p.Config.FrameEnd
	if end < 0 {
		end = p.Composition.Frames
	}
	if start < 0 || start >= end || end > p.Composition.Frames {
		return 0, 0, fmt.Errorf("%w: %d:%d of %d", ErrRange, start, end, p.Composition.Frames)
	}
	return start, end, nil
}

func (p *VideoProject) workers() int {
	if p.Config.Workers > 0 {
		return p.Config.Workers
	}
	comp := p.Composition
	return system.RecommendedWorkers(system.FrameBytes(comp.Width, comp.Height))
}

func (p *VideoProject) preflight() {
	if p.Resolver == nil {
		return
	}
	missing := 0
	for _, ref := range p.Assets {
		if _, err := p.Resolver.Resolve(ref.Path); err != nil {
			missing++
			p.Logger.Warn("asset missing, placeholder will be shown", "ref", ref.String(), "err", err)
		}
	}
	if missing > 0 {
		p.Logger.Warn("preflight", "missing", missing, "assets", len(p.Assets))
	}
}

// soundtrack prepares the audio for frames [start, end). Any problem with
// the file drops the audio with a warning instead of failing the render.
func (p *VideoProject) soundtrack(ctx context.Context, start, end int) *video.AudioTrack {
	a := p.Composition.Audio
	if a == nil || a.Source == "" || p.Resolver == nil {
		return nil
	}
	path, err := p.Resolver.Resolve(a.Source)
	if err != nil {
		p.Logger.Warn("soundtrack missing, rendering without audio", "source", a.Source, "err", err)
		return nil
	}

	track := audioTrack(a, path, p.Composition.FPS, start, end)
	if track == nil {
		return nil
	}
	if d, err := system.AudioDuration(ctx, path); err != nil {
		p.Logger.Warn("could not measure soundtrack", "path", path, "err", err)
	} else if need := track.Start + track.Duration; d+1e-3 < need {
		p.Logger.Warn("soundtrack shorter than the composition", "path", path, "duration", d, "needed", need)
	}
	return track
}

// audioTrack maps the composition audio onto the output range. It returns
// nil when playback has already stopped at start.
func audioTrack(a *timeline.Audio, path string, fps, start, end int) *video.AudioTrack {
	stop := end
	if a.EndAt > 0 && a.EndAt < stop {
		stop = a.EndAt
	}
	if stop <= start {
		return nil
	}

	offset := float64(start) / float64(fps)
	track := &video.AudioTrack{
		Path:     path,
		Start:    a.StartFrom + offset,
		Duration: float64(stop-start) / float64(fps),
	}
	if a.Volume != nil {
		anchors := a.Volume.Anchors()
		points := make([]video.VolumePoint, len(anchors))
		for i, an := range anchors {
			points[i] = video.VolumePoint{Time: an.Frame / float64(fps), Volume: an.Volume}
		}
		track.Volume = video.VolumeExpression(points, offset)
	}
	return track
}

func (p *VideoProject) report(s Stats) {
	p.Logger.Info("performance report",
		"build", p.Config.BuildVersion,
		"total", s.Total.Seconds(),
		"render", s.Render.Seconds(),
		"encode", s.Encode.Seconds(),
		"fps", s.FPS(),
	)

	// Логирование в файл
	logEntry := fmt.Sprintf("[%s] Build: %s | Composition: %s | Frames: %d | Total: %.2fs | Render: %.2fs | Encode: %.2fs | FPS: %.2f\n",
		time.Now().Format("2006-01-02 15:04:05"),
		p.Config.BuildVersion,
		p.Composition.ID,
		s.Frames,
		s.Total.Seconds(),
		s.Render.Seconds(),
		s.Encode.Seconds(),
		s.FPS(),
	)

	f, err := os.OpenFile("benchmark.log", os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err == nil {
		f.WriteString(logEntry)
		f.Close()
	} else {
		p.Logger.Warn("could not write benchmark.log", "err", err)
	}
}

func releaseAll(pool *system.FramePool, frames []*image.RGBA) {
	for _, img := range frames {
		pool.Put(img)
	}
}
