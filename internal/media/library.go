package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"os/exec"
	"strconv"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/gen2brain/go-fitz"
	_ "golang.org/x/image/webp"
	"golang.org/x/sync/singleflight"
)

var errEmptyImage = errors.New("loader returned no image")

// ErrNoFrame is returned when ffmpeg produces no picture for a video time.
var ErrNoFrame = errors.New("no video frame at requested time")

// Loader turns a reference into pixels. at is the media time in seconds and
// only matters for video.
type Loader interface {
	Load(ctx context.Context, ref Reference, at float64) (image.Image, error)
}

// Library is the production Loader: stills and PDF pages are decoded once
// and cached, video frames are grabbed with ffmpeg on demand.
type Library struct {
	Resolver Resolver
	DPI      int
	Logger   *log.Logger
	// OnFailure is called once per failing element, after logging.
	OnFailure func(ref Reference, err error)

	group  singleflight.Group
	mu     sync.RWMutex
	stills map[string]image.Image
}

// NewLibrary creates a library reading assets through r.
func NewLibrary(r Resolver, logger *log.Logger) *Library {
	return &Library{
		Resolver: r,
		DPI:      150,
		Logger:   logger,
		stills:   make(map[string]image.Image),
	}
}

func (l *Library) Load(ctx context.Context, ref Reference, at float64) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if ref.Kind == Video {
		return l.videoFrame(ctx, ref, at)
	}

	key := ref.String()
	l.mu.RLock()
	img, ok := l.stills[key]
	l.mu.RUnlock()
	if ok {
		return img, nil
	}

	v, err, _ := l.group.Do(key, func() (interface{}, error) {
		path, err := l.Resolver.Resolve(ref.Path)
		if err != nil {
			return nil, err
		}
		var img image.Image
		if ref.Kind == PDFPage {
			img, err = renderPDFPage(path, ref.Page, l.DPI)
		} else {
			img, err = decodeFile(path)
		}
		if err != nil {
			return nil, err
		}
		l.mu.Lock()
		l.stills[key] = img
		l.mu.Unlock()
		return img, nil
	})
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", key, err)
	}
	return v.(image.Image), nil
}

// MediaFailed implements FailureObserver.
func (l *Library) MediaFailed(ref Reference, err error) {
	if l.Logger != nil {
		l.Logger.Warn("media unavailable, using placeholder", "ref", ref.String(), "kind", ref.Kind, "err", err)
	}
	if l.OnFailure != nil {
		l.OnFailure(ref, err)
	}
}

func decodeFile(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, err
	}
	return img, nil
}

// renderPDFPage opens its own document so concurrent workers never share
// a fitz handle.
func renderPDFPage(path string, page, dpi int) (image.Image, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return nil, err
	}
	defer doc.Close()

	if page < 0 || page >= doc.NumPage() {
		return nil, fmt.Errorf("page %d out of range (document has %d)", page+1, doc.NumPage())
	}
	img, err := doc.ImageDPI(page, float64(dpi))
	if err != nil {
		return nil, err
	}
	return img, nil
}

func (l *Library) videoFrame(ctx context.Context, ref Reference, at float64) (image.Image, error) {
	path, err := l.Resolver.Resolve(ref.Path)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", ref.Path, err)
	}
	if at < 0 {
		at = 0
	}

	key := ref.Path + "@" + strconv.FormatFloat(at, 'f', 4, 64)
	v, err, _ := l.group.Do(key, func() (interface{}, error) {
		img, err := grabFrame(ctx, path, []string{"-ss", strconv.FormatFloat(at, 'f', 4, 64)})
		if errors.Is(err, ErrNoFrame) {
			// Past the end of the clip: hold its last picture.
			img, err = grabFrame(ctx, path, []string{"-sseof", "-0.1"})
		}
		return img, err
	})
	if err != nil {
		return nil, fmt.Errorf("load %s at %.3fs: %w", ref.Path, at, err)
	}
	return v.(image.Image), nil
}

func grabFrame(ctx context.Context, path string, seek []string) (image.Image, error) {
	args := append([]string{"-v", "error"}, seek...)
	args = append(args, "-i", path, "-frames:v", "1", "-f", "image2pipe", "-vcodec", "png", "-")

	cmd := exec.CommandContext(ctx, "ffmpeg", args...)
	var out, stderr bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("ffmpeg: %w: %s", err, stderr.String())
	}
	if out.Len() == 0 {
		return nil, ErrNoFrame
	}
	img, _, err := image.Decode(&out)
	return img, err
}
