package ecs

import (
	"fmt"
	"math"
)

// Entity identifies an entity slot and encodes a generation for stale-handle
// detection. It carries no data of its own; treat it as an opaque copyable
// handle. Code that stores an Entity which may outlive its target must
// re-validate with EntityManager.IsAlive before use.
type Entity struct {
	index      uint32
	generation uint32
}

// InvalidEntity is the reserved "no entity" sentinel. It is never returned by
// EntityManager.CreateEntity.
var InvalidEntity = Entity{index: math.MaxUint32, generation: math.MaxUint32}

// NewEntity constructs a handle from raw parts. Intended for tests and tools;
// handles for live entities come from CreateEntity.
func NewEntity(index, generation uint32) Entity {
	return Entity{index: index, generation: generation}
}

// Index returns the backing slot index of the entity.
func (e Entity) Index() uint32 {
	return e.index
}

// Generation returns the generation counter associated with the entity.
func (e Entity) Generation() uint32 {
	return e.generation
}

// IsValid reports whether the handle is distinct from the invalid sentinel.
// A valid handle may still refer to a destroyed entity; see IsAlive.
func (e Entity) IsValid() bool {
	return e != InvalidEntity
}

// String renders the entity for debugging purposes.
func (e Entity) String() string {
	if !e.IsValid() {
		return "Entity(invalid)"
	}
	return fmt.Sprintf("Entity(%d:%d)", e.index, e.generation)
}

// EntityManager allocates and recycles entity handles. Each slot keeps a
// generation counter that is bumped on destroy, so stale handles are rejected
// without scanning their holders.
//
// The manager is not internally synchronized; structural mutation belongs to
// a single owning goroutine (conventionally the world's update loop).
type EntityManager struct {
	generations []uint32
	free        []uint32
	alive       uint32
}

// NewEntityManager constructs an empty manager.
func NewEntityManager() *EntityManager {
	return &EntityManager{}
}

// CreateEntity issues a new handle, reusing the oldest freed slot when one is
// available. Recycled slots carry the generation left behind by the destroy
// that freed them; fresh slots start at generation zero.
func (m *EntityManager) CreateEntity() Entity {
	var index uint32
	if len(m.free) > 0 {
		index = m.free[0]
		m.free = m.free[1:]
	} else {
		index = uint32(len(m.generations))
		m.generations = append(m.generations, 0)
	}

	m.alive++
	return Entity{index: index, generation: m.generations[index]}
}

// DestroyEntity releases the handle, returning true on success. Destroying a
// dead or stale handle is a caller bug; it is reported as false rather than
// corrupting the slot table. The slot's generation is bumped, invalidating
// every copy of the handle, and the index joins the back of the free queue.
func (m *EntityManager) DestroyEntity(e Entity) bool {
	if !m.IsAlive(e) {
		return false
	}

	m.generations[e.index]++
	m.free = append(m.free, e.index)
	m.alive--
	return true
}

// IsAlive reports whether the handle refers to a currently allocated entity.
func (m *EntityManager) IsAlive(e Entity) bool {
	if e.index >= uint32(len(m.generations)) {
		return false
	}
	return m.generations[e.index] == e.generation
}

// Count returns the number of live entities.
func (m *EntityManager) Count() int {
	return int(m.alive)
}

// Capacity returns the number of slots ever allocated, live or recyclable.
func (m *EntityManager) Capacity() int {
	return len(m.generations)
}
