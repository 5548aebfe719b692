package ecs

import (
	"reflect"

	"github.com/cespare/xxhash/v2"
)

// ComponentType names a component storage bucket. The name is derived from
// the Go type; the 64-bit id is its xxhash, used as the registry map key so
// hot-path lookups hash an integer instead of a string.
type ComponentType string

// ID returns the stable 64-bit identifier of the type.
func (t ComponentType) ID() uint64 {
	return xxhash.Sum64String(string(t))
}

// TypeOf derives the ComponentType for a Go component type. Named types are
// qualified by their full import path, so same-named components declared in
// different packages stay distinct. Unnamed types, which carry no package
// path, fall back to their Go syntax.
func TypeOf[T any]() ComponentType {
	t := reflect.TypeFor[T]()
	if t.PkgPath() != "" {
		return ComponentType(t.PkgPath() + "." + t.Name())
	}
	return ComponentType(t.String())
}

// ComponentStore is the type-erased face of a ComponentArray. It exposes only
// what the registry needs to fan out entity cleanup without knowing T.
type ComponentStore interface {
	ComponentType() ComponentType
	Len() int
	Has(Entity) bool
	// EntityRemoved drops the entity's component if present and is a no-op
	// otherwise. Called for every registered store when an entity dies.
	EntityRemoved(Entity)
	Clear()
}

// ComponentArray stores one component value per entity as a sparse set: a
// sparse index keyed by entity slot plus two parallel packed arrays holding
// the values and their owning entities. Lookup is O(1) through the sparse
// index; iteration walks the packed arrays with no holes.
//
// Removal swaps the target with the last packed element, which permanently
// reorders the survivors. Iteration order is therefore not stable across
// removals; dependent code must not assume otherwise.
//
// Like the EntityManager, the array is not internally synchronized.
type ComponentArray[T any] struct {
	typ    ComponentType
	sparse []int32
	dense  []T
	owners []Entity
}

const sparseAbsent = int32(-1)

// NewComponentArray constructs an empty array. Most callers obtain arrays
// through RegisterComponent rather than directly.
func NewComponentArray[T any]() *ComponentArray[T] {
	return &ComponentArray[T]{typ: TypeOf[T]()}
}

// ComponentType returns the type identity of the stored components.
func (a *ComponentArray[T]) ComponentType() ComponentType {
	return a.typ
}

// Len returns the number of stored components.
func (a *ComponentArray[T]) Len() int {
	return len(a.dense)
}

// Has reports whether the entity owns a component here. Stale handles whose
// slot was recycled do not match: the packed owner is compared by value,
// generation included.
func (a *ComponentArray[T]) Has(e Entity) bool {
	if e.index >= uint32(len(a.sparse)) {
		return false
	}
	i := a.sparse[e.index]
	return i != sparseAbsent && a.owners[i] == e
}

// Add stores a component for the entity. Adding to an entity that already
// has one is a caller bug and is rejected with ErrComponentPresent.
func (a *ComponentArray[T]) Add(e Entity, value T) error {
	if !e.IsValid() {
		return ErrInvalidEntity
	}
	if a.Has(e) {
		return ErrComponentPresent
	}

	a.ensureSparse(int(e.index) + 1)
	a.sparse[e.index] = int32(len(a.dense))
	a.dense = append(a.dense, value)
	a.owners = append(a.owners, e)
	return nil
}

// Remove drops the entity's component, returning false if it had none. The
// last packed element is swapped into the vacated slot, so the packed arrays
// stay contiguous at the cost of reordering.
func (a *ComponentArray[T]) Remove(e Entity) bool {
	if !a.Has(e) {
		return false
	}

	i := a.sparse[e.index]
	last := int32(len(a.dense) - 1)
	if i != last {
		a.dense[i] = a.dense[last]
		a.owners[i] = a.owners[last]
		a.sparse[a.owners[i].index] = i
	}

	var zero T
	a.dense[last] = zero
	a.dense = a.dense[:last]
	a.owners = a.owners[:last]
	a.sparse[e.index] = sparseAbsent
	return true
}

// Get returns a pointer to the entity's component for in-place mutation, or
// (nil, false) if absent. The pointer aims into packed storage and is
// invalidated by any Add or Remove on this array.
func (a *ComponentArray[T]) Get(e Entity) (*T, bool) {
	if !a.Has(e) {
		return nil, false
	}
	return &a.dense[a.sparse[e.index]], true
}

// Data exposes the packed component values for tight iteration. The slice
// aliases internal storage; structural mutation invalidates it.
func (a *ComponentArray[T]) Data() []T {
	return a.dense
}

// GetEntity maps a packed index back to its owning entity. Out-of-range
// indices yield InvalidEntity.
func (a *ComponentArray[T]) GetEntity(i int) Entity {
	if i < 0 || i >= len(a.owners) {
		return InvalidEntity
	}
	return a.owners[i]
}

// EntityRemoved implements the registry cleanup hook: Remove, but tolerant
// of entities that have no component here.
func (a *ComponentArray[T]) EntityRemoved(e Entity) {
	a.Remove(e)
}

// Clear drops every component while keeping allocated capacity.
func (a *ComponentArray[T]) Clear() {
	for i := range a.sparse {
		a.sparse[i] = sparseAbsent
	}
	clear(a.dense)
	a.dense = a.dense[:0]
	a.owners = a.owners[:0]
}

func (a *ComponentArray[T]) ensureSparse(size int) {
	for len(a.sparse) < size {
		a.sparse = append(a.sparse, sparseAbsent)
	}
}

var _ ComponentStore = (*ComponentArray[int])(nil)
