package video

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/draw"
	"io"
	"os/exec"
	"strings"
	"sync"
)

// ErrFrameSize is returned when a frame does not match the stream size.
var ErrFrameSize = errors.New("frame size does not match stream")

// AudioTrack is muxed under the rendered frames.
type AudioTrack struct {
	Path string
	// Start is the position in the file, in seconds, that lines up with the
	// first rendered frame.
	Start float64
	// Duration cuts the track after this many seconds; 0 keeps it all.
	Duration float64
	// Volume is an ffmpeg volume expression in t (seconds since Start).
	Volume string
}

// Options describe one output file.
type Options struct {
	Width, Height int
	FPS           int
	Output        string
	Codec         string
	Quality       int
	Audio         *AudioTrack
}

// Stream accepts frames in presentation order.
type Stream interface {
	WriteFrame(img image.Image) error
	Close() error
}

type VideoEncoder interface {
	Open(ctx context.Context, opts Options) (Stream, error)
}

// FFmpegEncoder pipes raw RGBA frames into an ffmpeg process.
type FFmpegEncoder struct {
	// Binary defaults to "ffmpeg" on PATH.
	Binary string
}

func (e *FFmpegEncoder) Open(ctx context.Context, opts Options) (Stream, error) {
	if opts.Width <= 0 || opts.Height <= 0 || opts.FPS <= 0 {
		return nil, fmt.Errorf("invalid stream geometry %dx%d@%d", opts.Width, opts.Height, opts.FPS)
	}
	bin := e.Binary
	if bin == "" {
		bin = "ffmpeg"
	}

	cmd := exec.CommandContext(ctx, bin, e.buildFFmpegArgs(opts)...)
	out := &logBuffer{}
	cmd.Stdout = out
	cmd.Stderr = out

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("stdin pipe error: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("ffmpeg start error: %w", err)
	}
	return &ffmpegStream{cmd: cmd, stdin: stdin, out: out, width: opts.Width, height: opts.Height}, nil
}

func (e *FFmpegEncoder) buildFFmpegArgs(opts Options) []string {
	codec := opts.Codec
	if codec == "" {
		codec = "libx264"
	}

	// Кадры идут через stdin в raw RGBA, без промежуточных файлов
	args := []string{
		"-y",
		"-f", "rawvideo",
		"-pixel_format", "rgba",
		"-video_size", fmt.Sprintf("%dx%d", opts.Width, opts.Height),
		"-framerate", fmt.Sprintf("%d", opts.FPS),
		"-i", "-",
	}

	if a := opts.Audio; a != nil && a.Path != "" {
		args = append(args, "-i", a.Path)
		args = append(args, "-filter_complex", audioFilter(a), "-map", "0:v", "-map", "[aout]", "-c:a", "aac", "-b:a", "192k")
	}

	args = append(args, "-r", fmt.Sprintf("%d", opts.FPS), "-pix_fmt", "yuv420p", "-c:v", codec)

	// Качество в зависимости от энкодера
	switch codec {
	case "h264_videotoolbox":
		bitrate := opts.Quality * 100 // кбит/с. 75 -> 7.5Мбит/с
		args = append(args, "-b:v", fmt.Sprintf("%dk", bitrate))
	case "h264_nvenc":
		args = append(args, "-cq", fmt.Sprintf("%d", opts.Quality))
	default: // libx264
		args = append(args, "-crf", fmt.Sprintf("%d", opts.Quality), "-preset", "medium")
	}

	args = append(args, "-movflags", "+faststart", opts.Output)
	return args
}

// audioFilter trims the soundtrack to the rendered range, restarts its
// timestamps and applies the volume curve.
func audioFilter(a *AudioTrack) string {
	trim := fmt.Sprintf("atrim=start=%f", a.Start)
	if a.Duration > 0 {
		trim += fmt.Sprintf(":end=%f", a.Start+a.Duration)
	}
	chain := []string{trim, "asetpts=PTS-STARTPTS"}
	if a.Volume != "" {
		chain = append(chain, fmt.Sprintf("volume='%s':eval=frame", a.Volume))
	}
	return "[1:a]" + strings.Join(chain, ",") + "[aout]"
}

type ffmpegStream struct {
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	out    *logBuffer
	width  int
	height int
	buf    *image.RGBA
}

func (s *ffmpegStream) WriteFrame(img image.Image) error {
	b := img.Bounds()
	if b.Dx() != s.width || b.Dy() != s.height {
		return fmt.Errorf("%w: got %v, want %dx%d", ErrFrameSize, b.Size(), s.width, s.height)
	}
	return s.writeRawRGBA(img)
}

func (s *ffmpegStream) writeRawRGBA(img image.Image) error {
	bounds := img.Bounds()
	rgba, ok := img.(*image.RGBA)
	if !ok || rgba.Stride != bounds.Dx()*4 || rgba.Rect.Min.X != 0 || rgba.Rect.Min.Y != 0 {
		if s.buf == nil {
			s.buf = image.NewRGBA(image.Rect(0, 0, s.width, s.height))
		}
		draw.Draw(s.buf, s.buf.Rect, img, bounds.Min, draw.Src)
		rgba = s.buf
	}
	if _, err := s.stdin.Write(rgba.Pix); err != nil {
		return fmt.Errorf("write raw error: %w: %s", err, tail(s.out.String()))
	}
	return nil
}

func (s *ffmpegStream) Close() error {
	s.stdin.Close()
	if err := s.cmd.Wait(); err != nil {
		return fmt.Errorf("ffmpeg wait error: %w, output: %s", err, tail(s.out.String()))
	}
	return nil
}

// logBuffer collects ffmpeg's output. exec copies stderr from its own
// goroutine until Wait, so reads before that need the lock.
type logBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *logBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *logBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// tail keeps the end of ffmpeg's log, where the actual error is.
func tail(s string) string {
	const max = 2000
	if len(s) > max {
		return "..." + s[len(s)-max:]
	}
	return s
}
