package ecs

import "sync"

// resourceTable is the default ResourceContainer: a name-to-value map
// guarded by an RWMutex. Unlike the core containers it is synchronized,
// because async work groups may read resources while the owner goroutine
// serves other groups.
type resourceTable struct {
	mu      sync.RWMutex
	entries map[string]any
}

func newResourceContainer() *resourceTable {
	return &resourceTable{entries: make(map[string]any)}
}

func (t *resourceTable) Get(name string) (any, bool) {
	t.mu.RLock()
	value, ok := t.entries[name]
	t.mu.RUnlock()
	return value, ok
}

func (t *resourceTable) Set(name string, value any) {
	t.mu.Lock()
	t.entries[name] = value
	t.mu.Unlock()
}

func (t *resourceTable) Delete(name string) {
	t.mu.Lock()
	delete(t.entries, name)
	t.mu.Unlock()
}

// Range visits a snapshot of the entries, so the callback may mutate the
// container without deadlocking.
func (t *resourceTable) Range(visit func(string, any) bool) {
	t.mu.RLock()
	snapshot := make(map[string]any, len(t.entries))
	for name, value := range t.entries {
		snapshot[name] = value
	}
	t.mu.RUnlock()
	for name, value := range snapshot {
		if !visit(name, value) {
			return
		}
	}
}

var _ ResourceContainer = (*resourceTable)(nil)

// GetResource fetches a named resource and asserts it to T. The second
// return is false when the resource is absent or holds a different type.
func GetResource[T any](container ResourceContainer, name string) (T, bool) {
	value, ok := container.Get(name)
	if !ok {
		var zero T
		return zero, false
	}
	typed, ok := value.(T)
	return typed, ok
}
