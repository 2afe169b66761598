package renderer

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gomedium"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

// FontBook resolves font family names such as "Roboto-Bold" to TTF files in
// Dir. Families that are not installed fall back to the closest Go font.
type FontBook struct {
	Dir    string
	Logger *log.Logger

	mu    sync.Mutex
	fonts map[string]*opentype.Font
}

func NewFontBook(dir string, logger *log.Logger) *FontBook {
	return &FontBook{Dir: dir, Logger: logger, fonts: make(map[string]*opentype.Font)}
}

// Font returns the parsed font for name. It never fails: a missing or
// broken file is logged once and replaced by a fallback.
func (b *FontBook) Font(name string) *opentype.Font {
	b.mu.Lock()
	defer b.mu.Unlock()
	if f, ok := b.fonts[name]; ok {
		return f
	}

	f, err := b.load(name)
	if err != nil {
		if b.Logger != nil {
			b.Logger.Warn("using fallback font", "font", name, "err", err)
		}
		f = fallbackFont(name)
	}
	b.fonts[name] = f
	return f
}

// Face returns a new face at size pixels. Faces are not safe for concurrent
// use; callers close them when done.
func (b *FontBook) Face(name string, size float64) (font.Face, error) {
	return opentype.NewFace(b.Font(name), &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingNone,
	})
}

func (b *FontBook) load(name string) (*opentype.Font, error) {
	if b.Dir == "" || name == "" {
		return nil, fmt.Errorf("no font directory")
	}
	for _, ext := range []string{".ttf", ".otf"} {
		data, err := os.ReadFile(filepath.Join(b.Dir, name+ext))
		if err != nil {
			continue
		}
		return opentype.Parse(data)
	}
	return nil, fmt.Errorf("%s not found in %s", name, b.Dir)
}

func fallbackFont(name string) *opentype.Font {
	n := strings.ToLower(name)
	data := goregular.TTF
	switch {
	case strings.Contains(n, "mono"):
		data = gomono.TTF
	case strings.Contains(n, "bold"):
		data = gobold.TTF
	case strings.Contains(n, "medium"):
		data = gomedium.TTF
	}
	f, err := opentype.Parse(data)
	if err != nil {
		// The embedded Go fonts always parse.
		panic(err)
	}
	return f
}
