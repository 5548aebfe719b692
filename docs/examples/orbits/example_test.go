package orbits

import (
	"context"
	"testing"

	"github.com/voxelforge/ecs"
	"github.com/voxelforge/ecs/scene"
)

func TestSimulationRunsAndMovesBodies(t *testing.T) {
	sim, err := NewSimulation(nil)
	if err != nil {
		t.Fatalf("new simulation: %v", err)
	}

	transforms, err := ecs.GetComponentArray[scene.Transform](sim.World.Components())
	if err != nil {
		t.Fatalf("transforms: %v", err)
	}
	bodies, err := ecs.GetComponentArray[Body](sim.World.Components())
	if err != nil {
		t.Fatalf("bodies: %v", err)
	}

	if err := sim.Run(context.Background(), 30); err != nil {
		t.Fatalf("run: %v", err)
	}

	moved := false
	for i := 0; i < bodies.Len(); i++ {
		owner := bodies.GetEntity(i)
		if owner == sim.Sun {
			continue
		}
		transform, ok := transforms.Get(owner)
		if !ok {
			t.Fatalf("body without transform")
		}
		pos := transform.WorldPosition()
		if pos.Z() != 0 {
			moved = true
		}
	}
	if !moved {
		t.Fatalf("expected orbiting bodies to leave the X axis after 30 steps")
	}
}
