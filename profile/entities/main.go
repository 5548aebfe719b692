// Profiling:
// go build ./profile/entities
// go tool pprof -http=":8000" -nodefraction=0.001 ./entities mem.pprof

package main

import (
	"github.com/pkg/profile"

	"github.com/voxelforge/ecs"
)

type position struct {
	X, Y, Z float32
}

type velocity struct {
	X, Y, Z float32
}

func main() {
	rounds := 50
	iters := 10000
	entities := 1000
	p := profile.Start(profile.MemProfileAllocs, profile.ProfilePath("."), profile.NoShutdownHook)
	run(rounds, iters, entities)
	p.Stop()
}

func run(rounds, iters, numEntities int) {
	for r := 0; r < rounds; r++ {
		world := ecs.NewWorld()
		registry := world.Components()
		positions, _ := ecs.RegisterComponent[position](registry)
		velocities, _ := ecs.RegisterComponent[velocity](registry)
		view, err := ecs.NewView2[position, velocity](registry, world.Entities())
		if err != nil {
			panic(err)
		}

		for i := 0; i < iters; i++ {
			spawned := make([]ecs.Entity, 0, numEntities)
			for n := 0; n < numEntities; n++ {
				e := world.CreateEntity()
				positions.Add(e, position{})
				velocities.Add(e, velocity{X: 1, Y: 2, Z: 3})
				spawned = append(spawned, e)
			}
			view.Each(func(e ecs.Entity, pos *position, vel *velocity) {
				pos.X += vel.X
				pos.Y += vel.Y
				pos.Z += vel.Z
			})
			for _, e := range spawned {
				world.DestroyEntity(e)
			}
		}
	}
}
