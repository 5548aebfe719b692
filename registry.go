package ecs

// ComponentRegistry owns one ComponentArray per registered component type,
// erased behind the ComponentStore interface. It is the single place that
// guarantees no array retains a dead entity: OnEntityDestroyed fans cleanup
// out to every registered store, whether or not the entity held a component
// there.
type ComponentRegistry struct {
	stores map[uint64]ComponentStore
	// registration order, for deterministic fan-out and introspection
	order []ComponentStore
}

// NewComponentRegistry constructs an empty registry.
func NewComponentRegistry() *ComponentRegistry {
	return &ComponentRegistry{stores: make(map[uint64]ComponentStore)}
}

// RegisterComponent creates and stores the array for T, returning it for
// immediate use. Each type registers exactly once, during initialization,
// before any entity is given a component of that type.
//
// Free function rather than method: Go methods cannot introduce type
// parameters.
func RegisterComponent[T any](r *ComponentRegistry) (*ComponentArray[T], error) {
	arr := NewComponentArray[T]()
	id := arr.ComponentType().ID()
	if _, exists := r.stores[id]; exists {
		return nil, ErrComponentAlreadyRegistered
	}
	r.stores[id] = arr
	r.order = append(r.order, arr)
	return arr, nil
}

// GetComponentArray returns the shared array for T. Requesting an
// unregistered type is a caller bug, reported as ErrComponentNotRegistered.
func GetComponentArray[T any](r *ComponentRegistry) (*ComponentArray[T], error) {
	store, ok := r.stores[TypeOf[T]().ID()]
	if !ok {
		return nil, ErrComponentNotRegistered
	}
	return store.(*ComponentArray[T]), nil
}

// Store returns the type-erased store for a component type, if registered.
func (r *ComponentRegistry) Store(t ComponentType) (ComponentStore, bool) {
	store, ok := r.stores[t.ID()]
	return store, ok
}

// Types lists the registered component types in registration order.
func (r *ComponentRegistry) Types() []ComponentType {
	out := make([]ComponentType, 0, len(r.order))
	for _, store := range r.order {
		out = append(out, store.ComponentType())
	}
	return out
}

// OnEntityDestroyed removes the entity from every registered store. Safe to
// call for entities holding components in some, all, or none of them.
func (r *ComponentRegistry) OnEntityDestroyed(e Entity) {
	for _, store := range r.order {
		store.EntityRemoved(e)
	}
}
