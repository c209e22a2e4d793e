package entity

import (
	"iter"
	"slices"
)

// AddEntity appends children in argument order. Nil, disposed and duplicate
// children are skipped, as are e itself and any ancestor of e. A child owned by
// another entity is detached from it first, regardless of its lock.
func (e *Entity) AddEntity(children ...*Entity) *Entity {
	for _, child := range children {
		if child == nil || child == e || child.disposed {
			continue
		}
		if child.parent == e || e.indexOf(child) != -1 {
			continue
		}
		if child.isAncestorOf(e) {
			e.warn("refusing to add an ancestor as a child", fieldEntity("child", child))
			continue
		}
		if child.parent != nil {
			child.parent.detach(child)
		}
		child.parent = e
		e.children = append(e.children, child)
		e.publish(EventChildAdded, map[string]any{"child": child.ID()})
	}
	return e
}

// GetEntities returns a copy of the direct children.
func (e *Entity) GetEntities() []*Entity {
	return slices.Clone(e.children)
}

func (e *Entity) GetEntityByID(id string) *Entity {
	return e.GetEntityByProperty("id", id)
}

func (e *Entity) GetEntityByName(name string) *Entity {
	return e.GetEntityByProperty("name", name)
}

// GetEntityByProperty searches depth first, checking e before its children,
// and returns the first entity whose property equals value.
func (e *Entity) GetEntityByProperty(key string, value any) *Entity {
	return e.FindEntity(func(n *Entity) bool {
		v, ok := n.Property(key)
		return ok && v == value
	})
}

// FindEntity returns the first entity in pre-order for which match is true.
func (e *Entity) FindEntity(match func(*Entity) bool) *Entity {
	var found *Entity
	e.Traverse(func(n *Entity) bool {
		if match(n) {
			found = n
			return true
		}
		return false
	})
	return found
}

// RemoveEntity drops child from e. A locked child is only removed when force
// is set. The removed subtree is left intact and may be reattached or disposed
// later. Returns the child when it was removed, nil otherwise.
func (e *Entity) RemoveEntity(child *Entity, force bool) *Entity {
	if child == nil {
		return nil
	}
	if child.Locked && !force {
		return nil
	}
	if !e.detach(child) {
		return nil
	}
	return child
}

func (e *Entity) detach(child *Entity) bool {
	i := e.indexOf(child)
	if i == -1 {
		return false
	}
	e.children = slices.Delete(e.children, i, i+1)
	child.parent = nil
	e.publish(EventChildRemoved, map[string]any{"child": child.ID()})
	return true
}

// Traverse visits e and its descendants in pre-order. Returning true from fn
// stops the whole walk; Traverse then reports true.
func (e *Entity) Traverse(fn func(*Entity) bool) bool {
	if fn(e) {
		return true
	}
	for _, child := range e.children {
		if child.Traverse(fn) {
			return true
		}
	}
	return false
}

// TraverseEntities is Traverse over a snapshot of each child list, so fn may
// add or remove children of the entity it is visiting.
func (e *Entity) TraverseEntities(fn func(*Entity) bool) bool {
	if fn(e) {
		return true
	}
	for _, child := range e.GetEntities() {
		if child.TraverseEntities(fn) {
			return true
		}
	}
	return false
}

// All yields e and its descendants in pre-order.
func (e *Entity) All() iter.Seq[*Entity] {
	return func(yield func(*Entity) bool) {
		e.Traverse(func(n *Entity) bool { return !yield(n) })
	}
}

// ChangeParent moves e under newParent, or reorders it under its current
// parent when newParent is nil. A negative index keeps the sibling position e
// had under its old parent, clamped to the new child list.
func (e *Entity) ChangeParent(newParent *Entity, newIndex int) *Entity {
	if newParent == nil {
		newParent = e.parent
	}
	if newParent == nil || newParent.disposed {
		return nil
	}

	if newIndex < 0 && e.parent != nil {
		newIndex = e.parent.indexOf(e)
	}
	if e.parent != newParent {
		newParent.AddEntity(e)
		if e.parent != newParent {
			return nil
		}
	}
	if newIndex >= 0 {
		newParent.moveChild(e, newIndex)
	}
	return e
}

func (e *Entity) moveChild(child *Entity, index int) {
	from := e.indexOf(child)
	if from == -1 {
		return
	}
	e.children = slices.Delete(e.children, from, from+1)
	index = min(index, len(e.children))
	e.children = slices.Insert(e.children, index, child)
}

// ParentEntity returns the topmost ancestor of e, e included, that sits
// directly under a stage or world. Without such a boundary it returns the
// root.
func (e *Entity) ParentEntity() *Entity {
	n := e
	for n.parent != nil {
		if n.parent.boundary != BoundaryNone {
			return n
		}
		n = n.parent
	}
	return n
}

// ParentStage returns the nearest stage or world at or above e.
func (e *Entity) ParentStage() *Entity {
	for n := e; n != nil; n = n.parent {
		if n.boundary != BoundaryNone {
			return n
		}
	}
	return nil
}

// ParentWorld returns the nearest world at or above e.
func (e *Entity) ParentWorld() *Entity {
	for n := e; n != nil; n = n.parent {
		if n.boundary == BoundaryWorld {
			return n
		}
	}
	return nil
}

// RemoveFromParent removes e from its parent, honoring Locked.
func (e *Entity) RemoveFromParent() *Entity {
	if e.parent != nil {
		e.parent.RemoveEntity(e, false)
	}
	return e
}

func (e *Entity) indexOf(child *Entity) int {
	return slices.Index(e.children, child)
}

// isAncestorOf reports whether e appears on the parent chain of n.
func (e *Entity) isAncestorOf(n *Entity) bool {
	for p := n.parent; p != nil; p = p.parent {
		if p == e {
			return true
		}
	}
	return false
}
