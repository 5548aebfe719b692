package ecs_test

import (
	"errors"
	"testing"

	"github.com/voxelforge/ecs"
)

func TestCreateEntityCommand(t *testing.T) {
	world := ecs.NewWorld()

	created := ecs.InvalidEntity
	cmd := ecs.NewCreateEntityCommand(&created)
	if err := cmd.Apply(world); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if !created.IsValid() {
		t.Fatalf("expected command to populate the target handle")
	}
	if !world.IsAlive(created) {
		t.Fatalf("expected created entity to be alive")
	}
}

func TestDestroyEntityCommand(t *testing.T) {
	world := ecs.NewWorld()
	e := world.CreateEntity()

	if err := ecs.NewDestroyEntityCommand(e).Apply(world); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if world.IsAlive(e) {
		t.Fatalf("expected entity to be destroyed")
	}

	if err := ecs.NewDestroyEntityCommand(e).Apply(world); !errors.Is(err, ecs.ErrInvalidEntity) {
		t.Fatalf("expected ErrInvalidEntity for stale destroy, got %v", err)
	}
}

func TestAddAndRemoveComponentCommands(t *testing.T) {
	world := ecs.NewWorld()
	positions, err := ecs.RegisterComponent[position](world.Components())
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	e := world.CreateEntity()

	if err := ecs.NewAddComponentCommand(e, position{X: 3}).Apply(world); err != nil {
		t.Fatalf("add command: %v", err)
	}
	got, ok := positions.Get(e)
	if !ok || got.X != 3 {
		t.Fatalf("unexpected component after add command: %v %v", got, ok)
	}

	if err := ecs.NewRemoveComponentCommand[position](e).Apply(world); err != nil {
		t.Fatalf("remove command: %v", err)
	}
	if positions.Has(e) {
		t.Fatalf("expected component removed")
	}
}

func TestAddComponentCommandUnregisteredType(t *testing.T) {
	world := ecs.NewWorld()
	e := world.CreateEntity()

	err := ecs.NewAddComponentCommand(e, velocity{X: 1}).Apply(world)
	if !errors.Is(err, ecs.ErrComponentNotRegistered) {
		t.Fatalf("expected ErrComponentNotRegistered, got %v", err)
	}
}

func TestSetParentAndRemoveParentCommands(t *testing.T) {
	world := ecs.NewWorld()
	parent := world.CreateEntity()
	child := world.CreateEntity()

	if err := ecs.NewSetParentCommand(child, parent).Apply(world); err != nil {
		t.Fatalf("set parent: %v", err)
	}
	if world.Hierarchy().GetParent(child) != parent {
		t.Fatalf("expected parent link after command")
	}

	if err := ecs.NewRemoveParentCommand(child).Apply(world); err != nil {
		t.Fatalf("remove parent: %v", err)
	}
	if world.Hierarchy().GetParent(child) != ecs.InvalidEntity {
		t.Fatalf("expected child detached after command")
	}
}

func TestSetParentCommandRejectsInvalidEntities(t *testing.T) {
	world := ecs.NewWorld()
	child := world.CreateEntity()

	if err := ecs.NewSetParentCommand(child, ecs.InvalidEntity).Apply(world); !errors.Is(err, ecs.ErrInvalidEntity) {
		t.Fatalf("expected ErrInvalidEntity, got %v", err)
	}
}

func TestWorldApplyCommandsStopsAtFirstError(t *testing.T) {
	world := ecs.NewWorld()
	stale := world.CreateEntity()
	world.DestroyEntity(stale)

	created := ecs.InvalidEntity
	commands := []ecs.Command{
		ecs.NewDestroyEntityCommand(stale),
		ecs.NewCreateEntityCommand(&created),
	}
	if err := world.ApplyCommands(commands); err == nil {
		t.Fatalf("expected error from stale destroy")
	}
	if created != ecs.InvalidEntity {
		t.Fatalf("commands after a failure must not run")
	}
}
