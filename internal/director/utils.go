package director

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/tanema/gween/ease"
)

// FindScenarios lists the YAML files in dir, sorted by name.
func FindScenarios(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenarios directory: %w", err)
	}

	var scenarios []string
	for _, entry := range entries {
		name := entry.Name()
		if !entry.IsDir() && (strings.HasSuffix(name, ".yaml") || strings.HasSuffix(name, ".yml")) {
			scenarios = append(scenarios, filepath.Join(dir, name))
		}
	}
	sort.Strings(scenarios)
	return scenarios, nil
}

// toFrames aligns seconds to the nearest whole frame.
func toFrames(seconds float64, fps int) int {
	return int(math.Round(seconds * float64(fps)))
}

var easings = map[string]ease.TweenFunc{
	"linear":       ease.Linear,
	"in_out_quad":  ease.InOutQuad,
	"in_out_cubic": ease.InOutCubic,
	"out_cubic":    ease.OutCubic,
	"in_out_sine":  ease.InOutSine,
	"out_back":     ease.OutBack,
}

// easing looks up a named easing; the empty name is nil (the caller's default).
func easing(name string) (ease.TweenFunc, error) {
	if name == "" {
		return nil, nil
	}
	fn, ok := easings[name]
	if !ok {
		return nil, fmt.Errorf("unknown easing %q", name)
	}
	return fn, nil
}
