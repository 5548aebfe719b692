package ecs

// HierarchyManager tracks parent/child adjacency between entities, kept
// deliberately outside any component array so packed component data stays
// flat and traversal-order-agnostic. All reparenting must go through
// SetParent/RemoveParent; mutating component data to express hierarchy
// silently breaks the parent/child invariants.
//
// Invariant: parents[c] == p exactly when c appears in children[p]. An
// entity known to the hierarchy but absent from parents is a root.
type HierarchyManager struct {
	parents  map[Entity]Entity
	children map[Entity][]Entity
	// every entity that has participated in the hierarchy and has not been
	// destroyed; GetRootEntities reports the parentless members of this set.
	// Membership outlives the links: an entity detached by RemoveParent, or
	// orphaned when its parent dies, keeps reporting as a root until it is
	// destroyed itself. Only OnEntityDestroyed removes an entry.
	known map[Entity]struct{}
}

// NewHierarchyManager constructs an empty hierarchy.
func NewHierarchyManager() *HierarchyManager {
	return &HierarchyManager{
		parents:  make(map[Entity]Entity),
		children: make(map[Entity][]Entity),
		known:    make(map[Entity]struct{}),
	}
}

// SetParent attaches child to parent, detaching it from any previous parent
// first. No cycle detection is performed: parenting an entity under one of
// its own descendants is a caller error and leaves traversal undefined.
func (h *HierarchyManager) SetParent(child, parent Entity) {
	h.detach(child)
	h.parents[child] = parent
	h.children[parent] = append(h.children[parent], child)
	h.known[child] = struct{}{}
	h.known[parent] = struct{}{}
}

// RemoveParent detaches child from its parent, making it a root. The child
// stays a member of the hierarchy, and a reported root, until destroyed.
// No-op for entities that are already roots.
func (h *HierarchyManager) RemoveParent(child Entity) {
	h.detach(child)
}

// GetParent returns the child's parent, or InvalidEntity for roots.
func (h *HierarchyManager) GetParent(child Entity) Entity {
	if parent, ok := h.parents[child]; ok {
		return parent
	}
	return InvalidEntity
}

// GetChildren returns the entity's children in attachment order. The slice
// aliases live hierarchy state: callers that reparent while iterating must
// copy it first.
func (h *HierarchyManager) GetChildren(parent Entity) []Entity {
	return h.children[parent]
}

// HasChildren reports whether the entity has at least one child.
func (h *HierarchyManager) HasChildren(e Entity) bool {
	return len(h.children[e]) > 0
}

// GetRootEntities returns every entity known to the hierarchy that has no
// parent itself, deduplicated, including former participants whose links
// were since removed. Order is unspecified.
func (h *HierarchyManager) GetRootEntities() []Entity {
	var roots []Entity
	for e := range h.known {
		if _, hasParent := h.parents[e]; !hasParent {
			roots = append(roots, e)
		}
	}
	return roots
}

// OnEntityDestroyed detaches the entity from its parent and orphans its
// children: they become roots, they are not destroyed. Destruction cascades,
// if wanted, are the caller's to implement.
func (h *HierarchyManager) OnEntityDestroyed(e Entity) {
	h.detach(e)
	for _, child := range h.children[e] {
		delete(h.parents, child)
	}
	delete(h.children, e)
	delete(h.known, e)
}

// TraverseDepthFirst walks the subtree under root in pre-order: root first,
// then each child's subtree in attachment order. Recursive, with no depth
// bound; degenerate or cyclic hierarchies risk unbounded recursion.
func (h *HierarchyManager) TraverseDepthFirst(root Entity, visit func(Entity)) {
	if visit == nil {
		return
	}
	visit(root)
	for _, child := range h.children[root] {
		h.TraverseDepthFirst(child, visit)
	}
}

func (h *HierarchyManager) detach(child Entity) {
	parent, ok := h.parents[child]
	if !ok {
		return
	}
	delete(h.parents, child)

	siblings := h.children[parent]
	for i, sibling := range siblings {
		if sibling == child {
			h.children[parent] = append(siblings[:i], siblings[i+1:]...)
			break
		}
	}
	if len(h.children[parent]) == 0 {
		delete(h.children, parent)
	}
}
