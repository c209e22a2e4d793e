package entity

import "github.com/salinityengine/salinity/internal/core/component"

// Dispose tears down e: every component is removed and disposed, every child
// is disposed, and e leaves its parent even when locked. A disposed entity
// must not be reused. Calling Dispose again is a no-op.
func (e *Entity) Dispose() {
	if e.disposed {
		return
	}
	e.clear()
	if e.parent != nil {
		e.parent.detach(e)
	}
	e.disposed = true
	e.publish(EventDisposed, nil)
}

func (e *Entity) clear() {
	for len(e.components) > 0 {
		c := e.components[0]
		e.RemoveComponent(c)
		if d, ok := c.(component.Disposer); ok {
			d.Dispose()
		}
	}
	for len(e.children) > 0 {
		e.children[0].Dispose()
	}
}

// Copy replaces the state of e with that of source. Name, category, locked
// and visible are copied; ids are not. Components are re-added from their
// serialized data without expanding dependencies. With recursive set, each
// child of source is deep cloned and attached.
func (e *Entity) Copy(source *Entity, recursive bool) *Entity {
	if source == nil || source == e {
		return e
	}
	if e.isAncestorOf(source) {
		// clear would dispose source before it is read.
		source = source.Clone(recursive)
		defer source.Dispose()
	}
	e.clear()

	e.CopyFrom(&source.Thing)
	e.Category = source.Category
	e.Locked = source.Locked
	e.Visible = source.Visible

	for _, c := range source.components {
		e.AddComponent(c.Type(), c.ToJSON().Data, false)
	}
	if recursive {
		for _, child := range source.children {
			e.AddEntity(child.Clone(true))
		}
	}
	return e
}

// Clone builds a new entity of the same type with fresh ids and copies e into
// it.
func (e *Entity) Clone(recursive bool) *Entity {
	var n *Entity
	if factory, ok := e.env.resolve(e.Type()); ok {
		n = factory(e.env, e.Name())
	}
	if n == nil {
		n = newEntity(e.env, e.Type(), e.boundary, e.Name())
	}
	return n.Copy(e, recursive)
}
