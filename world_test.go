package ecs_test

import (
	"testing"

	"github.com/voxelforge/ecs"
)

func TestWorldCreateAndDestroyEntity(t *testing.T) {
	world := ecs.NewWorld()

	e := world.CreateEntity()
	if !world.IsAlive(e) {
		t.Fatalf("expected created entity to be alive")
	}
	if !world.DestroyEntity(e) {
		t.Fatalf("expected destroy to succeed")
	}
	if world.IsAlive(e) {
		t.Fatalf("expected destroyed entity to be dead")
	}
	if world.DestroyEntity(e) {
		t.Fatalf("expected stale destroy to fail")
	}
}

func TestWorldDestroyFansOutToStoresAndHierarchy(t *testing.T) {
	world := ecs.NewWorld()
	positions, err := ecs.RegisterComponent[position](world.Components())
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	parent := world.CreateEntity()
	child := world.CreateEntity()
	positions.Add(parent, position{X: 1})
	positions.Add(child, position{X: 2})
	world.Hierarchy().SetParent(child, parent)

	if !world.DestroyEntity(parent) {
		t.Fatalf("destroy parent: expected success")
	}

	if positions.Has(parent) {
		t.Fatalf("destroyed entity must lose its components")
	}
	if !positions.Has(child) {
		t.Fatalf("child must keep its components")
	}
	if world.Hierarchy().GetParent(child) != ecs.InvalidEntity {
		t.Fatalf("child must be orphaned, not destroyed")
	}
	if !world.IsAlive(child) {
		t.Fatalf("child must stay alive after parent destroy")
	}
}

func TestWorldIDsAreUnique(t *testing.T) {
	a := ecs.NewWorld()
	b := ecs.NewWorld()
	if a.ID() == "" || a.ID() == b.ID() {
		t.Fatalf("expected distinct non-empty world ids")
	}
}

func TestWorldResources(t *testing.T) {
	world := ecs.NewWorld()
	world.Resources().Set("clock", 42)

	value, ok := world.Resources().Get("clock")
	if !ok || value.(int) != 42 {
		t.Fatalf("unexpected resource value: %v %v", value, ok)
	}

	world.Resources().Delete("clock")
	if _, ok := world.Resources().Get("clock"); ok {
		t.Fatalf("expected resource to be deleted")
	}
}

func TestGetResourceTyped(t *testing.T) {
	world := ecs.NewWorld()
	world.Resources().Set("gravity", float32(9.81))

	gravity, ok := ecs.GetResource[float32](world.Resources(), "gravity")
	if !ok || gravity != 9.81 {
		t.Fatalf("unexpected typed resource: %v %v", gravity, ok)
	}
	if _, ok := ecs.GetResource[string](world.Resources(), "gravity"); ok {
		t.Fatalf("expected type mismatch to report absence")
	}
	if _, ok := ecs.GetResource[int](world.Resources(), "missing"); ok {
		t.Fatalf("expected missing resource to report absence")
	}
}
