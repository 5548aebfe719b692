package ecs_test

import (
	"errors"
	"testing"

	"github.com/voxelforge/ecs"
	alphaparts "github.com/voxelforge/ecs/internal/alpha/parts"
	betaparts "github.com/voxelforge/ecs/internal/beta/parts"
)

func TestRegisterComponentReturnsArray(t *testing.T) {
	registry := ecs.NewComponentRegistry()

	positions, err := ecs.RegisterComponent[position](registry)
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if positions == nil {
		t.Fatalf("expected array from registration")
	}

	fetched, err := ecs.GetComponentArray[position](registry)
	if err != nil {
		t.Fatalf("get array: %v", err)
	}
	if fetched != positions {
		t.Fatalf("expected registry to return the registered array")
	}
}

func TestRegisterComponentRejectsDuplicate(t *testing.T) {
	registry := ecs.NewComponentRegistry()
	if _, err := ecs.RegisterComponent[position](registry); err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, err := ecs.RegisterComponent[position](registry); !errors.Is(err, ecs.ErrComponentAlreadyRegistered) {
		t.Fatalf("expected ErrComponentAlreadyRegistered, got %v", err)
	}
}

func TestRegistryDistinguishesSameNamedTypes(t *testing.T) {
	registry := ecs.NewComponentRegistry()

	alphaAnchors, err := ecs.RegisterComponent[alphaparts.Anchor](registry)
	if err != nil {
		t.Fatalf("register alpha anchor: %v", err)
	}
	betaAnchors, err := ecs.RegisterComponent[betaparts.Anchor](registry)
	if err != nil {
		t.Fatalf("same-named type from another package rejected: %v", err)
	}

	if ecs.TypeOf[alphaparts.Anchor]() == ecs.TypeOf[betaparts.Anchor]() {
		t.Fatalf("expected distinct identities, both are %q", ecs.TypeOf[alphaparts.Anchor]())
	}

	gotAlpha, err := ecs.GetComponentArray[alphaparts.Anchor](registry)
	if err != nil || gotAlpha != alphaAnchors {
		t.Fatalf("alpha anchor lookup resolved wrong array (err %v)", err)
	}
	gotBeta, err := ecs.GetComponentArray[betaparts.Anchor](registry)
	if err != nil || gotBeta != betaAnchors {
		t.Fatalf("beta anchor lookup resolved wrong array (err %v)", err)
	}
}

func TestGetComponentArrayUnregistered(t *testing.T) {
	registry := ecs.NewComponentRegistry()
	if _, err := ecs.GetComponentArray[position](registry); !errors.Is(err, ecs.ErrComponentNotRegistered) {
		t.Fatalf("expected ErrComponentNotRegistered, got %v", err)
	}
}

func TestRegistryOnEntityDestroyedFansOut(t *testing.T) {
	manager := ecs.NewEntityManager()
	registry := ecs.NewComponentRegistry()

	positions, _ := ecs.RegisterComponent[position](registry)
	velocities, _ := ecs.RegisterComponent[velocity](registry)
	healths, _ := ecs.RegisterComponent[health](registry)

	e := manager.CreateEntity()
	survivor := manager.CreateEntity()

	positions.Add(e, position{X: 1})
	velocities.Add(e, velocity{X: 2})
	positions.Add(survivor, position{X: 3})
	healths.Add(survivor, health{Current: 1})

	registry.OnEntityDestroyed(e)

	if positions.Has(e) || velocities.Has(e) {
		t.Fatalf("destroyed entity must be removed from every store")
	}
	if !positions.Has(survivor) || !healths.Has(survivor) {
		t.Fatalf("other entities must keep their components")
	}
}

func TestRegistryTypesListsRegistrations(t *testing.T) {
	registry := ecs.NewComponentRegistry()
	ecs.RegisterComponent[position](registry)
	ecs.RegisterComponent[velocity](registry)

	types := registry.Types()
	if len(types) != 2 {
		t.Fatalf("expected 2 registered types, got %d", len(types))
	}
	seen := make(map[ecs.ComponentType]bool, len(types))
	for _, typ := range types {
		seen[typ] = true
	}
	if !seen[ecs.TypeOf[position]()] || !seen[ecs.TypeOf[velocity]()] {
		t.Fatalf("unexpected type listing: %v", types)
	}
}
