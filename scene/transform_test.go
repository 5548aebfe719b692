package scene_test

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voxelforge/ecs"
	"github.com/voxelforge/ecs/scene"
)

const epsilon = 1e-5

func newSceneWorld(t *testing.T) (*ecs.World, *ecs.ComponentArray[scene.Transform], *scene.TransformSystem) {
	t.Helper()
	world := ecs.NewWorld()
	transforms, err := ecs.RegisterComponent[scene.Transform](world.Components())
	require.NoError(t, err)
	system, err := scene.NewTransformSystem(world.Components(), world.Hierarchy())
	require.NoError(t, err)
	return world, transforms, system
}

func TestNewTransformDefaults(t *testing.T) {
	transform := scene.NewTransform()

	assert.Equal(t, mgl32.Vec3{}, transform.LocalPosition)
	assert.Equal(t, mgl32.QuatIdent(), transform.LocalRotation)
	assert.Equal(t, mgl32.Vec3{1, 1, 1}, transform.LocalScale)
	assert.True(t, transform.Dirty)
}

func TestTransformSystemRequiresRegisteredComponent(t *testing.T) {
	world := ecs.NewWorld()
	_, err := scene.NewTransformSystem(world.Components(), world.Hierarchy())
	require.ErrorIs(t, err, ecs.ErrComponentNotRegistered)
}

func TestTransformSystemComputesRootWorldMatrix(t *testing.T) {
	world, transforms, system := newSceneWorld(t)

	e := world.CreateEntity()
	require.NoError(t, transforms.Add(e, scene.NewTransformAt(mgl32.Vec3{3, 4, 5})))

	system.Update(0)

	transform, ok := transforms.Get(e)
	require.True(t, ok)
	assert.False(t, transform.Dirty)
	assert.True(t, transform.WorldMatrix.ApproxEqualThreshold(mgl32.Translate3D(3, 4, 5), epsilon))
}

func TestTransformSystemComposesParentChain(t *testing.T) {
	world, transforms, system := newSceneWorld(t)

	root := world.CreateEntity()
	child := world.CreateEntity()
	grandchild := world.CreateEntity()

	require.NoError(t, transforms.Add(root, scene.NewTransform()))
	require.NoError(t, transforms.Add(child, scene.NewTransformAt(mgl32.Vec3{1, 0, 0})))
	require.NoError(t, transforms.Add(grandchild, scene.NewTransformAt(mgl32.Vec3{0, 1, 0})))

	world.Hierarchy().SetParent(child, root)
	world.Hierarchy().SetParent(grandchild, child)

	system.Update(0)

	childTransform, ok := transforms.Get(child)
	require.True(t, ok)
	assert.True(t, childTransform.WorldPosition().ApproxEqualThreshold(mgl32.Vec3{1, 0, 0}, epsilon))

	grandchildTransform, ok := transforms.Get(grandchild)
	require.True(t, ok)
	assert.True(t, grandchildTransform.WorldPosition().ApproxEqualThreshold(mgl32.Vec3{1, 1, 0}, epsilon))
}

func TestTransformSystemAppliesParentRotation(t *testing.T) {
	world, transforms, system := newSceneWorld(t)

	root := world.CreateEntity()
	child := world.CreateEntity()

	rootTransform := scene.NewTransform()
	rootTransform.LocalRotation = mgl32.QuatRotate(mgl32.DegToRad(90), mgl32.Vec3{0, 0, 1})
	require.NoError(t, transforms.Add(root, rootTransform))
	require.NoError(t, transforms.Add(child, scene.NewTransformAt(mgl32.Vec3{1, 0, 0})))

	world.Hierarchy().SetParent(child, root)

	system.Update(0)

	childTransform, ok := transforms.Get(child)
	require.True(t, ok)
	assert.True(t, childTransform.WorldPosition().ApproxEqualThreshold(mgl32.Vec3{0, 1, 0}, epsilon))
}

func TestTransformSystemAppliesParentScale(t *testing.T) {
	world, transforms, system := newSceneWorld(t)

	root := world.CreateEntity()
	child := world.CreateEntity()

	rootTransform := scene.NewTransform()
	rootTransform.LocalScale = mgl32.Vec3{2, 2, 2}
	require.NoError(t, transforms.Add(root, rootTransform))
	require.NoError(t, transforms.Add(child, scene.NewTransformAt(mgl32.Vec3{1, 0, 0})))

	world.Hierarchy().SetParent(child, root)

	system.Update(0)

	childTransform, ok := transforms.Get(child)
	require.True(t, ok)
	assert.True(t, childTransform.WorldPosition().ApproxEqualThreshold(mgl32.Vec3{2, 0, 0}, epsilon))
}

func TestTransformSystemStopsAtEntitiesWithoutTransforms(t *testing.T) {
	world, transforms, system := newSceneWorld(t)

	root := world.CreateEntity()
	bare := world.CreateEntity()
	leaf := world.CreateEntity()

	require.NoError(t, transforms.Add(root, scene.NewTransform()))
	require.NoError(t, transforms.Add(leaf, scene.NewTransformAt(mgl32.Vec3{1, 0, 0})))

	world.Hierarchy().SetParent(bare, root)
	world.Hierarchy().SetParent(leaf, bare)

	system.Update(0)

	leafTransform, ok := transforms.Get(leaf)
	require.True(t, ok)
	assert.True(t, leafTransform.Dirty, "subtree below a transform-less entity must be skipped")
}

func TestTransformSystemCoversEntitiesOutsideHierarchy(t *testing.T) {
	world, transforms, system := newSceneWorld(t)

	loner := world.CreateEntity()
	require.NoError(t, transforms.Add(loner, scene.NewTransformAt(mgl32.Vec3{7, 0, 0})))

	system.Update(0)

	transform, ok := transforms.Get(loner)
	require.True(t, ok)
	assert.False(t, transform.Dirty)
	assert.True(t, transform.WorldPosition().ApproxEqualThreshold(mgl32.Vec3{7, 0, 0}, epsilon))
}

func TestTransformSystemRecomputesAfterLocalChange(t *testing.T) {
	world, transforms, system := newSceneWorld(t)

	e := world.CreateEntity()
	require.NoError(t, transforms.Add(e, scene.NewTransform()))
	system.Update(0)

	transform, ok := transforms.Get(e)
	require.True(t, ok)
	transform.SetLocalPosition(mgl32.Vec3{5, 5, 5})
	require.True(t, transform.Dirty)

	system.Update(0)
	assert.True(t, transform.WorldPosition().ApproxEqualThreshold(mgl32.Vec3{5, 5, 5}, epsilon))
	assert.False(t, transform.Dirty)
}
