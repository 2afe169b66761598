package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// ErrFrameRange is returned for a malformed -frames value.
var ErrFrameRange = errors.New("invalid frame range")

type Config struct {
	Composition  string
	ScenarioFile string
	// ExportFile receives the selected scenario as YAML instead of rendering.
	ExportFile   string
	AssetsDir    string
	FontsDir     string
	OutputVideo  string
	Workers      int
	VideoEncoder string
	Quality      int
	// FrameStart/FrameEnd select a half-open range; FrameEnd < 0 means the
	// end of the composition.
	FrameStart   int
	FrameEnd     int
	StillFrame   int
	StillOutput  string
	ServeAddr    string
	LogLevel     string
	LogFormat    string
	MetricsFile  string
	ShowStats    bool
	ListOnly     bool
	BuildVersion string
}

// Load reads .env files into the process environment. A missing file is
// not an error; variables already set win.
func Load(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if _, err := os.Stat(f); errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return fmt.Errorf("load %s: %w", f, err)
		}
	}
	return nil
}

func GetEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func GetEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(strings.TrimSpace(value)); err == nil {
			return i
		}
	}
	return fallback
}

// ParseFrameRange parses "start:end", "start:" or "" into a half-open range.
// An open end is returned as -1.
func ParseFrameRange(s string) (int, int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, -1, nil
	}
	from, to, ok := strings.Cut(s, ":")
	if !ok {
		return 0, 0, fmt.Errorf("%w: %q (want start:end)", ErrFrameRange, s)
	}

	start, end := 0, -1
	var err error
	if from != "" {
		if start, err = strconv.Atoi(from); err != nil || start < 0 {
			return 0, 0, fmt.Errorf("%w: start %q", ErrFrameRange, from)
		}
	}
	if to != "" {
		if end, err = strconv.Atoi(to); err != nil || end <= start {
			return 0, 0, fmt.Errorf("%w: end %q", ErrFrameRange, to)
		}
	}
	return start, end, nil
}
