package module

import (
	"sort"
	"sync"
)

// process wide port registry filled by api.Mount during bootstrap
var (
	mu  sync.RWMutex
	reg = map[string]any{}
)

// Register stores a module's ports under its name, nil ports are skipped
func Register(m Module) {
	if m == nil || m.Ports() == nil {
		return
	}
	mu.Lock()
	reg[m.Name()] = m.Ports()
	mu.Unlock()
}

// PortsAs fetches and type asserts the ports registered under name
func PortsAs[T any](name string) (T, bool) {
	mu.RLock()
	v, ok := reg[name]
	mu.RUnlock()
	out, ok2 := v.(T)
	return out, ok && ok2
}

// Names lists registered module names, sorted
func Names() []string {
	mu.RLock()
	defer mu.RUnlock()
	out := make([]string, 0, len(reg))
	for k := range reg {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Reset clears the registry for tests
func Reset() {
	mu.Lock()
	reg = map[string]any{}
	mu.Unlock()
}
