// Package scene provides spatial components and systems layered on the core
// entity registry: local transforms, parent-relative placement, and world
// matrix propagation down the entity hierarchy.
package scene

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Transform holds an entity's placement relative to its parent, plus the
// cached world matrix produced by the propagation pass.
type Transform struct {
	LocalPosition mgl32.Vec3
	LocalRotation mgl32.Quat
	LocalScale    mgl32.Vec3
	WorldMatrix   mgl32.Mat4
	Dirty         bool
}

// NewTransform returns an identity transform marked dirty so the next
// propagation pass computes its world matrix.
func NewTransform() Transform {
	return Transform{
		LocalRotation: mgl32.QuatIdent(),
		LocalScale:    mgl32.Vec3{1, 1, 1},
		WorldMatrix:   mgl32.Ident4(),
		Dirty:         true,
	}
}

// NewTransformAt returns a dirty transform positioned at the given point.
func NewTransformAt(position mgl32.Vec3) Transform {
	t := NewTransform()
	t.LocalPosition = position
	return t
}

// LocalMatrix composes translation, rotation, and scale in that order.
func (t *Transform) LocalMatrix() mgl32.Mat4 {
	translate := mgl32.Translate3D(t.LocalPosition.X(), t.LocalPosition.Y(), t.LocalPosition.Z())
	rotate := t.LocalRotation.Mat4()
	scale := mgl32.Scale3D(t.LocalScale.X(), t.LocalScale.Y(), t.LocalScale.Z())
	return translate.Mul4(rotate).Mul4(scale)
}

// SetLocalPosition updates the position and marks the transform dirty.
func (t *Transform) SetLocalPosition(position mgl32.Vec3) {
	t.LocalPosition = position
	t.Dirty = true
}

// SetLocalRotation updates the rotation and marks the transform dirty.
func (t *Transform) SetLocalRotation(rotation mgl32.Quat) {
	t.LocalRotation = rotation
	t.Dirty = true
}

// SetLocalScale updates the scale and marks the transform dirty.
func (t *Transform) SetLocalScale(scale mgl32.Vec3) {
	t.LocalScale = scale
	t.Dirty = true
}

// WorldPosition extracts the translation column of the cached world matrix.
// Only meaningful after a propagation pass has run.
func (t *Transform) WorldPosition() mgl32.Vec3 {
	col := t.WorldMatrix.Col(3)
	return mgl32.Vec3{col.X(), col.Y(), col.Z()}
}

// MarkDirty forces the next propagation pass to recompute the world matrix.
func (t *Transform) MarkDirty() {
	t.Dirty = true
}
