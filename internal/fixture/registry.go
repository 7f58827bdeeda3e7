package fixture

import (
	"sort"
	"sync"

	apperrors "github.com/utafrali/catalog-fixtures/pkg/errors"
)

// Registry maps fixture names to fixtures.
type Registry struct {
	mu       sync.RWMutex
	fixtures map[string]Fixture
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{fixtures: make(map[string]Fixture)}
}

// Register adds f under f.Name().
func (r *Registry) Register(f Fixture) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := f.Name()
	if _, ok := r.fixtures[name]; ok {
		return apperrors.AlreadyExists("fixture", "name", name)
	}
	r.fixtures[name] = f
	return nil
}

// Get returns the fixture registered under name.
func (r *Registry) Get(name string) (Fixture, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	f, ok := r.fixtures[name]
	if !ok {
		return nil, apperrors.NotFound("fixture", name)
	}
	return f, nil
}

// Names returns the registered fixture names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.fixtures))
	for name := range r.fixtures {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
