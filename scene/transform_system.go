package scene

import (
	"context"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/voxelforge/ecs"
)

// TransformSystem walks the hierarchy top-down each update, composing each
// entity's local matrix with its parent's world matrix. Entities without a
// parent use their local matrix as the world matrix. A hierarchy node that
// lacks a transform component ends propagation for its subtree.
type TransformSystem struct {
	transforms *ecs.ComponentArray[Transform]
	hierarchy  *ecs.HierarchyManager
}

// NewTransformSystem binds the system to a registry and hierarchy. The
// Transform component must already be registered.
func NewTransformSystem(registry *ecs.ComponentRegistry, hierarchy *ecs.HierarchyManager) (*TransformSystem, error) {
	transforms, err := ecs.GetComponentArray[Transform](registry)
	if err != nil {
		return nil, err
	}
	return &TransformSystem{transforms: transforms, hierarchy: hierarchy}, nil
}

// Update recomputes world matrices for every transform reachable from a
// hierarchy root or owned by an entity outside the hierarchy.
func (s *TransformSystem) Update(dt float32) {
	visited := make(map[ecs.Entity]struct{}, s.transforms.Len())

	for _, root := range s.hierarchy.GetRootEntities() {
		s.propagate(root, mgl32.Ident4(), visited)
	}

	// Entities that never joined the hierarchy still need world matrices.
	for i := 0; i < s.transforms.Len(); i++ {
		owner := s.transforms.GetEntity(i)
		if _, ok := visited[owner]; ok {
			continue
		}
		if s.hierarchy.GetParent(owner) != ecs.InvalidEntity {
			continue
		}
		s.propagate(owner, mgl32.Ident4(), visited)
	}
}

func (s *TransformSystem) propagate(e ecs.Entity, parentWorld mgl32.Mat4, visited map[ecs.Entity]struct{}) {
	transform, ok := s.transforms.Get(e)
	if !ok {
		return
	}
	visited[e] = struct{}{}

	transform.WorldMatrix = parentWorld.Mul4(transform.LocalMatrix())
	transform.Dirty = false

	for _, child := range s.hierarchy.GetChildren(e) {
		s.propagate(child, transform.WorldMatrix, visited)
	}
}

// AsSystem wraps the transform pass for scheduler registration.
func (s *TransformSystem) AsSystem() ecs.System {
	return transformSchedulerSystem{inner: s}
}

type transformSchedulerSystem struct {
	inner *TransformSystem
}

func (t transformSchedulerSystem) Descriptor() ecs.SystemDescriptor {
	return ecs.SystemDescriptor{
		Name:   "scene.transform",
		Writes: []ecs.ComponentType{ecs.TypeOf[Transform]()},
	}
}

func (t transformSchedulerSystem) Run(ctx context.Context, exec ecs.ExecutionContext) ecs.SystemResult {
	if err := ctx.Err(); err != nil {
		return ecs.SystemResult{Err: err}
	}
	t.inner.Update(float32(exec.TimeDelta().Seconds()))
	return ecs.SystemResult{}
}
