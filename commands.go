package ecs

import "fmt"

// NewCreateEntityCommand enqueues a new entity creation. If target is
// non-nil it receives the allocated handle when the command applies.
func NewCreateEntityCommand(target *Entity) Command {
	return createEntityCommand{target: target}
}

// NewDestroyEntityCommand enqueues an entity destruction, with full registry
// and hierarchy cleanup.
func NewDestroyEntityCommand(e Entity) Command {
	return destroyEntityCommand{entity: e}
}

// NewAddComponentCommand enqueues a component addition for entity e.
func NewAddComponentCommand[T any](e Entity, value T) Command {
	return addComponentCommand[T]{entity: e, value: value}
}

// NewRemoveComponentCommand enqueues a component removal for entity e.
// Applying is a no-op if the entity has no T by then.
func NewRemoveComponentCommand[T any](e Entity) Command {
	return removeComponentCommand[T]{entity: e}
}

// NewSetParentCommand enqueues a reparenting of child under parent.
func NewSetParentCommand(child, parent Entity) Command {
	return setParentCommand{child: child, parent: parent}
}

// NewRemoveParentCommand enqueues a detach; child becomes a root.
func NewRemoveParentCommand(child Entity) Command {
	return removeParentCommand{child: child}
}

type createEntityCommand struct {
	target *Entity
}

func (c createEntityCommand) Apply(world *World) error {
	e := world.CreateEntity()
	if c.target != nil {
		*c.target = e
	}
	return nil
}

type destroyEntityCommand struct {
	entity Entity
}

func (c destroyEntityCommand) Apply(world *World) error {
	if !c.entity.IsValid() {
		return fmt.Errorf("ecs: destroy invalid entity: %w", ErrInvalidEntity)
	}
	if !world.DestroyEntity(c.entity) {
		return fmt.Errorf("ecs: destroy stale entity %v: %w", c.entity, ErrInvalidEntity)
	}
	return nil
}

type addComponentCommand[T any] struct {
	entity Entity
	value  T
}

func (c addComponentCommand[T]) Apply(world *World) error {
	arr, err := GetComponentArray[T](world.registry)
	if err != nil {
		return err
	}
	return arr.Add(c.entity, c.value)
}

type removeComponentCommand[T any] struct {
	entity Entity
}

func (c removeComponentCommand[T]) Apply(world *World) error {
	arr, err := GetComponentArray[T](world.registry)
	if err != nil {
		return err
	}
	arr.Remove(c.entity)
	return nil
}

type setParentCommand struct {
	child  Entity
	parent Entity
}

func (c setParentCommand) Apply(world *World) error {
	if !c.child.IsValid() || !c.parent.IsValid() {
		return ErrInvalidEntity
	}
	world.hierarchy.SetParent(c.child, c.parent)
	return nil
}

type removeParentCommand struct {
	child Entity
}

func (c removeParentCommand) Apply(world *World) error {
	world.hierarchy.RemoveParent(c.child)
	return nil
}

var (
	_ Command = createEntityCommand{}
	_ Command = destroyEntityCommand{}
	_ Command = addComponentCommand[int]{}
	_ Command = removeComponentCommand[int]{}
	_ Command = setParentCommand{}
	_ Command = removeParentCommand{}
)
