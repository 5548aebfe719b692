// Package orbits demonstrates wiring the entity registry, hierarchy, and
// transform propagation into a small scheduler-driven simulation: planets
// orbit a sun, moons orbit planets, and world positions fall out of the
// hierarchy pass.
package orbits

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Orbit drives an entity around its parent at a fixed radius.
type Orbit struct {
	Radius       float32
	AngularSpeed float32 // radians per second
	Angle        float32
}

// Spin rotates an entity around its own Y axis.
type Spin struct {
	Speed float32 // radians per second
}

// Body carries display metadata for an orbiting entity.
type Body struct {
	Name string
	Mass float32
}

// orbitPosition converts the current angle into a parent-relative position.
func (o Orbit) orbitPosition() mgl32.Vec3 {
	sin, cos := math.Sincos(float64(o.Angle))
	return mgl32.Vec3{o.Radius * float32(cos), 0, o.Radius * float32(sin)}
}
