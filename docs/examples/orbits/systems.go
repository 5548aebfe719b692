package orbits

import (
	"context"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/voxelforge/ecs"
	"github.com/voxelforge/ecs/scene"
)

// OrbitSystem advances orbit angles and writes the resulting local position
// into each entity's transform.
type OrbitSystem struct {
	view *ecs.View2[Orbit, scene.Transform]
}

func NewOrbitSystem(world *ecs.World) (*OrbitSystem, error) {
	view, err := ecs.NewView2[Orbit, scene.Transform](world.Components(), world.Entities())
	if err != nil {
		return nil, err
	}
	return &OrbitSystem{view: view}, nil
}

func (s *OrbitSystem) Descriptor() ecs.SystemDescriptor {
	return ecs.SystemDescriptor{
		Name:   "orbits.orbit",
		Writes: []ecs.ComponentType{ecs.TypeOf[Orbit](), ecs.TypeOf[scene.Transform]()},
	}
}

func (s *OrbitSystem) Run(ctx context.Context, exec ecs.ExecutionContext) ecs.SystemResult {
	dt := float32(exec.TimeDelta().Seconds())
	s.view.Each(func(e ecs.Entity, orbit *Orbit, transform *scene.Transform) {
		orbit.Angle += orbit.AngularSpeed * dt
		transform.SetLocalPosition(orbit.orbitPosition())
	})
	return ecs.SystemResult{}
}

// SpinSystem rotates entities in place around the Y axis.
type SpinSystem struct {
	view *ecs.View2[Spin, scene.Transform]
}

func NewSpinSystem(world *ecs.World) (*SpinSystem, error) {
	view, err := ecs.NewView2[Spin, scene.Transform](world.Components(), world.Entities())
	if err != nil {
		return nil, err
	}
	return &SpinSystem{view: view}, nil
}

func (s *SpinSystem) Descriptor() ecs.SystemDescriptor {
	return ecs.SystemDescriptor{
		Name:   "orbits.spin",
		Writes: []ecs.ComponentType{ecs.TypeOf[Spin](), ecs.TypeOf[scene.Transform]()},
	}
}

func (s *SpinSystem) Run(ctx context.Context, exec ecs.ExecutionContext) ecs.SystemResult {
	dt := float32(exec.TimeDelta().Seconds())
	s.view.Each(func(e ecs.Entity, spin *Spin, transform *scene.Transform) {
		delta := mgl32.QuatRotate(spin.Speed*dt, mgl32.Vec3{0, 1, 0})
		transform.SetLocalRotation(transform.LocalRotation.Mul(delta))
	})
	return ecs.SystemResult{}
}

// ReportSystem logs world positions of named bodies, reading the matrices
// produced by the transform pass.
type ReportSystem struct {
	bodies     *ecs.ComponentArray[Body]
	transforms *ecs.ComponentArray[scene.Transform]
}

func NewReportSystem(world *ecs.World) (*ReportSystem, error) {
	bodies, err := ecs.GetComponentArray[Body](world.Components())
	if err != nil {
		return nil, err
	}
	transforms, err := ecs.GetComponentArray[scene.Transform](world.Components())
	if err != nil {
		return nil, err
	}
	return &ReportSystem{bodies: bodies, transforms: transforms}, nil
}

func (s *ReportSystem) Descriptor() ecs.SystemDescriptor {
	return ecs.SystemDescriptor{
		Name:     "orbits.report",
		Reads:    []ecs.ComponentType{ecs.TypeOf[Body](), ecs.TypeOf[scene.Transform]()},
		RunEvery: ecs.TickInterval{Every: 60},
	}
}

func (s *ReportSystem) Run(ctx context.Context, exec ecs.ExecutionContext) ecs.SystemResult {
	logger := exec.Logger()
	for i := 0; i < s.bodies.Len(); i++ {
		owner := s.bodies.GetEntity(i)
		body, _ := s.bodies.Get(owner)
		transform, ok := s.transforms.Get(owner)
		if !ok {
			continue
		}
		pos := transform.WorldPosition()
		logger.Info("body position",
			"name", body.Name,
			"x", pos.X(), "y", pos.Y(), "z", pos.Z(),
			"tick", exec.TickIndex(),
		)
	}
	return ecs.SystemResult{}
}
