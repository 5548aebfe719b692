package orbits

import (
	"context"
	"fmt"
	"time"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/voxelforge/ecs"
	"github.com/voxelforge/ecs/scene"
)

// Simulation bundles a world, its scheduler, and the orbit hierarchy.
type Simulation struct {
	World     *ecs.World
	Scheduler ecs.Scheduler
	Sun       ecs.Entity
}

// NewSimulation builds a sun with two planets and one moon, wired through the
// hierarchy so moon world positions compose planet and sun motion.
func NewSimulation(logger ecs.Logger) (*Simulation, error) {
	world := ecs.NewWorld(ecs.WithLogger(logger))
	registry := world.Components()

	if _, err := ecs.RegisterComponent[scene.Transform](registry); err != nil {
		return nil, err
	}
	if _, err := ecs.RegisterComponent[Orbit](registry); err != nil {
		return nil, err
	}
	if _, err := ecs.RegisterComponent[Spin](registry); err != nil {
		return nil, err
	}
	if _, err := ecs.RegisterComponent[Body](registry); err != nil {
		return nil, err
	}

	sun, err := spawnBody(world, "sun", 1000, ecs.InvalidEntity, 0, 0)
	if err != nil {
		return nil, err
	}
	inner, err := spawnBody(world, "inner", 10, sun, 5, 1.2)
	if err != nil {
		return nil, err
	}
	if _, err := spawnBody(world, "outer", 30, sun, 12, 0.4); err != nil {
		return nil, err
	}
	if _, err := spawnBody(world, "inner-moon", 1, inner, 1.5, 3.0); err != nil {
		return nil, err
	}

	scheduler, err := ecs.NewScheduler(world)
	if err != nil {
		return nil, err
	}

	orbitSystem, err := NewOrbitSystem(world)
	if err != nil {
		return nil, err
	}
	spinSystem, err := NewSpinSystem(world)
	if err != nil {
		return nil, err
	}
	transformSystem, err := scene.NewTransformSystem(registry, world.Hierarchy())
	if err != nil {
		return nil, err
	}
	reportSystem, err := NewReportSystem(world)
	if err != nil {
		return nil, err
	}

	if _, err := scheduler.RegisterWorkGroup(ecs.WorkGroupConfig{
		ID:      "motion",
		Systems: []ecs.System{orbitSystem, spinSystem},
	}); err != nil {
		return nil, err
	}
	if _, err := scheduler.RegisterWorkGroup(ecs.WorkGroupConfig{
		ID:      "propagation",
		Systems: []ecs.System{transformSystem.AsSystem()},
	}); err != nil {
		return nil, err
	}
	if _, err := scheduler.RegisterWorkGroup(ecs.WorkGroupConfig{
		ID:      "reporting",
		Systems: []ecs.System{reportSystem},
	}); err != nil {
		return nil, err
	}

	scheduler.Builder().WithSyncOrder([]ecs.WorkGroupID{"motion", "propagation", "reporting"})

	return &Simulation{World: world, Scheduler: scheduler, Sun: sun}, nil
}

func spawnBody(world *ecs.World, name string, mass float32, parent ecs.Entity, radius, speed float32) (ecs.Entity, error) {
	registry := world.Components()
	e := world.CreateEntity()

	transforms, err := ecs.GetComponentArray[scene.Transform](registry)
	if err != nil {
		return ecs.InvalidEntity, err
	}
	if err := transforms.Add(e, scene.NewTransformAt(mgl32.Vec3{radius, 0, 0})); err != nil {
		return ecs.InvalidEntity, err
	}

	bodies, err := ecs.GetComponentArray[Body](registry)
	if err != nil {
		return ecs.InvalidEntity, err
	}
	if err := bodies.Add(e, Body{Name: name, Mass: mass}); err != nil {
		return ecs.InvalidEntity, err
	}

	if parent != ecs.InvalidEntity {
		orbits, err := ecs.GetComponentArray[Orbit](registry)
		if err != nil {
			return ecs.InvalidEntity, err
		}
		if err := orbits.Add(e, Orbit{Radius: radius, AngularSpeed: speed}); err != nil {
			return ecs.InvalidEntity, err
		}
		world.Hierarchy().SetParent(e, parent)
	} else {
		spins, err := ecs.GetComponentArray[Spin](registry)
		if err != nil {
			return ecs.InvalidEntity, err
		}
		if err := spins.Add(e, Spin{Speed: 0.5}); err != nil {
			return ecs.InvalidEntity, err
		}
	}
	return e, nil
}

// Run advances the simulation by the requested number of fixed steps.
func (s *Simulation) Run(ctx context.Context, steps int) error {
	const step = time.Second / 60
	if err := s.Scheduler.Run(ctx, steps, step); err != nil {
		return fmt.Errorf("orbits: simulation failed: %w", err)
	}
	return nil
}
