package director

import (
	"embed"
	"fmt"
	"path"
	"sort"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/ivlev/promo2video/internal/timeline"
)

//go:embed scenarios/*.yaml
var builtin embed.FS

// Catalog holds the known scenarios by id: the built-in ads plus any
// loaded from disk, which replace built-ins of the same id.
type Catalog struct {
	director *Director
	logger   *log.Logger

	mu        sync.Mutex
	scenarios map[string]*Scenario
	built     map[string]*timeline.Composition
}

// NewCatalog returns a catalog preloaded with the built-in scenarios.
func NewCatalog(logger *log.Logger) (*Catalog, error) {
	c := &Catalog{
		director:  NewDirector(logger),
		logger:    logger,
		scenarios: make(map[string]*Scenario),
		built:     make(map[string]*timeline.Composition),
	}
	entries, err := builtin.ReadDir("scenarios")
	if err != nil {
		return nil, err
	}
	for _, e := range entries {
		data, err := builtin.ReadFile(path.Join("scenarios", e.Name()))
		if err != nil {
			return nil, err
		}
		s, err := ParseScenario(data)
		if err != nil {
			return nil, fmt.Errorf("built-in %s: %w", e.Name(), err)
		}
		c.Add(s)
	}
	return c, nil
}

// Add registers s, replacing any scenario with the same id.
func (c *Catalog) Add(s *Scenario) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.scenarios[s.ID]; ok && c.logger != nil {
		c.logger.Debug("scenario overrides an existing one", "id", s.ID)
	}
	c.scenarios[s.ID] = s
	delete(c.built, s.ID)
}

// LoadFile reads one scenario file into the catalog and returns its id.
func (c *Catalog) LoadFile(file string) (string, error) {
	s, err := ReadScenario(file)
	if err != nil {
		return "", err
	}
	c.Add(s)
	return s.ID, nil
}

// LoadDir adds every scenario file in dir.
func (c *Catalog) LoadDir(dir string) error {
	files, err := FindScenarios(dir)
	if err != nil {
		return err
	}
	for _, f := range files {
		if _, err := c.LoadFile(f); err != nil {
			return err
		}
	}
	return nil
}

// IDs returns the scenario ids in sorted order.
func (c *Catalog) IDs() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	ids := make([]string, 0, len(c.scenarios))
	for id := range c.scenarios {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Scenario returns the scenario for id.
func (c *Catalog) Scenario(id string) (*Scenario, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, ok := c.scenarios[id]
	return s, ok
}

// Composition builds the composition for id on first use and returns the
// same instance afterwards, so media elements keep their failure state for
// the lifetime of the catalog.
func (c *Catalog) Composition(id string) (*timeline.Composition, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if comp, ok := c.built[id]; ok {
		return comp, nil
	}
	s, ok := c.scenarios[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownComposition, id)
	}
	comp, err := c.director.Build(s)
	if err != nil {
		return nil, err
	}
	c.built[id] = comp
	return comp, nil
}
