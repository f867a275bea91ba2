package dialect

import (
	"maps"
	"slices"
	"strings"
	"sync"
)

// registered dialects, keyed by lower-cased name
var (
	registryMu sync.RWMutex
	registry   = make(map[string]*Dialect)
)

// Get looks a dialect up by name, case-insensitively.
func Get(name string) (*Dialect, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	d, ok := registry[strings.ToLower(name)]
	return d, ok
}

// Register adds d to the registry, replacing any dialect of the same name.
// Dialect packages call it from init.
func Register(d *Dialect) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[strings.ToLower(d.Name)] = d
}

// List returns the registered dialect names in sorted order.
func List() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	return slices.Sorted(maps.Keys(registry))
}
