package ecs

import "github.com/google/uuid"

// World is the coordinating context that owns one EntityManager, one
// ComponentRegistry, one HierarchyManager and one resource container. It is
// the single place where entity destruction fans out to both the component
// arrays and the hierarchy, so neither ever retains a dead entity.
type World struct {
	id        string
	entities  *EntityManager
	registry  *ComponentRegistry
	hierarchy *HierarchyManager
	resources ResourceContainer
	logger    Logger
}

// WorldOption customizes world construction.
type WorldOption func(*World)

// NewWorld constructs a world with default managers. Each world gets a UUID
// instance id that shows up as a structured-logging field.
func NewWorld(opts ...WorldOption) *World {
	w := &World{
		id:        uuid.NewString(),
		entities:  NewEntityManager(),
		registry:  NewComponentRegistry(),
		hierarchy: NewHierarchyManager(),
		resources: newResourceContainer(),
		logger:    noopLogger{},
	}
	for _, opt := range opts {
		opt(w)
	}
	w.logger = w.logger.With("world", w.id)
	return w
}

// WithEntityManager overrides the default entity manager.
func WithEntityManager(em *EntityManager) WorldOption {
	return func(w *World) {
		if em != nil {
			w.entities = em
		}
	}
}

// WithComponentRegistry overrides the default component registry.
func WithComponentRegistry(registry *ComponentRegistry) WorldOption {
	return func(w *World) {
		if registry != nil {
			w.registry = registry
		}
	}
}

// WithHierarchyManager overrides the default hierarchy manager.
func WithHierarchyManager(hierarchy *HierarchyManager) WorldOption {
	return func(w *World) {
		if hierarchy != nil {
			w.hierarchy = hierarchy
		}
	}
}

// WithResourceContainer overrides the default resource container.
func WithResourceContainer(container ResourceContainer) WorldOption {
	return func(w *World) {
		if container != nil {
			w.resources = container
		}
	}
}

// WithLogger sets the world logger. Defaults to a no-op logger.
func WithLogger(logger Logger) WorldOption {
	return func(w *World) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// ID returns the world's instance identifier.
func (w *World) ID() string {
	return w.id
}

// Entities exposes the backing entity manager.
func (w *World) Entities() *EntityManager {
	return w.entities
}

// Components exposes the component registry.
func (w *World) Components() *ComponentRegistry {
	return w.registry
}

// Hierarchy exposes the hierarchy manager.
func (w *World) Hierarchy() *HierarchyManager {
	return w.hierarchy
}

// Resources exposes the shared resource container.
func (w *World) Resources() ResourceContainer {
	return w.resources
}

// Logger returns the world logger.
func (w *World) Logger() Logger {
	return w.logger
}

// CreateEntity allocates a fresh entity handle.
func (w *World) CreateEntity() Entity {
	return w.entities.CreateEntity()
}

// DestroyEntity destroys the entity and cleans up after it everywhere:
// every registered component array drops its component, the hierarchy
// detaches it and orphans its children. Returns false for dead or stale
// handles, leaving all state untouched.
func (w *World) DestroyEntity(e Entity) bool {
	if !w.entities.DestroyEntity(e) {
		return false
	}
	w.registry.OnEntityDestroyed(e)
	w.hierarchy.OnEntityDestroyed(e)
	return true
}

// IsAlive reports whether the handle refers to a live entity.
func (w *World) IsAlive(e Entity) bool {
	return w.entities.IsAlive(e)
}

// ApplyCommands executes deferred commands against the world in order,
// stopping at the first failure.
func (w *World) ApplyCommands(commands []Command) error {
	for _, cmd := range commands {
		if cmd == nil {
			continue
		}
		if err := cmd.Apply(w); err != nil {
			return err
		}
	}
	return nil
}
