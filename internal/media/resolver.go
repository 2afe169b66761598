package media

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrOutsideRoot is returned for names that escape the asset directory.
var ErrOutsideRoot = errors.New("asset path escapes root")

// Resolver maps symbolic asset names to readable file paths.
type Resolver interface {
	Resolve(name string) (string, error)
}

// DirResolver resolves names relative to a static asset directory.
type DirResolver struct {
	Root string
}

func (d DirResolver) Resolve(name string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(name))
	if filepath.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s", ErrOutsideRoot, name)
	}
	path := filepath.Join(d.Root, clean)
	if _, err := os.Stat(path); err != nil {
		return "", err
	}
	return path, nil
}
