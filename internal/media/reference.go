package media

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
)

// Kind is the type of media a Reference points at.
type Kind int

const (
	Image Kind = iota
	Video
	PDFPage
)

func (k Kind) String() string {
	switch k {
	case Video:
		return "video"
	case PDFPage:
		return "pdf"
	default:
		return "image"
	}
}

// Reference is a symbolic asset name plus its kind. Page is only meaningful
// for PDFPage and is zero based.
type Reference struct {
	Path string
	Kind Kind
	Page int
}

func (r Reference) String() string {
	if r.Kind == PDFPage {
		return fmt.Sprintf("%s#%d", r.Path, r.Page+1)
	}
	return r.Path
}

var videoExtensions = []string{".mp4", ".mov", ".webm", ".mkv", ".m4v"}

// ParseReference infers the kind from the extension. PDF pages are written
// "file.pdf#N" with N starting at 1; a bare PDF means its first page.
func ParseReference(name string) (Reference, error) {
	if name == "" {
		return Reference{}, fmt.Errorf("empty media reference")
	}

	path, fragment, hasFragment := strings.Cut(name, "#")
	ext := strings.ToLower(filepath.Ext(path))

	if ext == ".pdf" {
		page := 0
		if hasFragment {
			n, err := strconv.Atoi(fragment)
			if err != nil || n < 1 {
				return Reference{}, fmt.Errorf("invalid pdf page in %q", name)
			}
			page = n - 1
		}
		return Reference{Path: path, Kind: PDFPage, Page: page}, nil
	}
	if hasFragment {
		return Reference{}, fmt.Errorf("page fragment only allowed on pdf references: %q", name)
	}

	for _, v := range videoExtensions {
		if ext == v {
			return Reference{Path: path, Kind: Video}, nil
		}
	}
	return Reference{Path: path, Kind: Image}, nil
}

// MustReference is ParseReference for literals.
func MustReference(name string) Reference {
	r, err := ParseReference(name)
	if err != nil {
		panic(err)
	}
	return r
}
