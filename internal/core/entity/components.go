package entity

import (
	"slices"

	"github.com/salinityengine/salinity/internal/core/component"
	"github.com/salinityengine/salinity/internal/core/observability/log"
)

// AddComponent attaches a component of type typ initialized with data.
//
// A single-multiplicity type already present is reused and reinitialized;
// otherwise a new instance is appended. When includeDependencies is set, every
// declared dependency missing from the entity is added with its own
// dependencies left unexpanded. Returns nil for unregistered types.
func (e *Entity) AddComponent(typ string, data component.Data, includeDependencies bool) component.Component {
	def, ok := e.env.lookupComponent(typ)
	if !ok {
		e.warn("unknown component type", log.String("type", typ))
		return nil
	}

	c := e.GetComponent(typ)
	created := false
	if c == nil || def.Multiplicity == component.Multiple {
		c = def.Construct()
		if c == nil {
			e.warn("component constructor returned nil", log.String("type", typ))
			return nil
		}
		e.components = append(e.components, c)
		created = true
	}

	if includeDependencies {
		for _, dep := range def.Dependencies {
			if e.GetComponent(dep) == nil {
				e.AddComponent(dep, nil, false)
			}
		}
	}

	e.initComponent(c, def.Sanitize(data))
	if created {
		e.publish(EventComponentAdded, map[string]any{"type": typ, "component": c.ID()})
	}
	return c
}

// AttachComponent appends an already constructed component without checking
// multiplicity and reinitializes it from its own serialized data. A component
// bound to another entity is removed from it first; one already held by e is
// only reinitialized.
func (e *Entity) AttachComponent(c component.Component) component.Component {
	if c == nil {
		return nil
	}
	if slices.Contains(e.components, c) {
		e.initComponent(c, c.ToJSON().Data)
		return c
	}
	if owner, ok := c.Owner().(*Entity); ok && owner != e {
		owner.RemoveComponent(c)
	}
	e.components = append(e.components, c)
	e.initComponent(c, c.ToJSON().Data)
	e.publish(EventComponentAdded, map[string]any{"type": c.Type(), "component": c.ID()})
	return c
}

// UpdateComponent merges data into the index-th component of type typ and
// reinitializes it. Returns nil when there is no such component.
func (e *Entity) UpdateComponent(typ string, data component.Data, index int) component.Component {
	c := e.componentAt(typ, index)
	if c == nil {
		return nil
	}
	merged := c.Data().Clone()
	for k, v := range data {
		merged[k] = v
	}
	e.reinitComponent(c, e.sanitize(typ, merged))
	return c
}

// ReplaceComponent reinitializes the index-th component of type typ from data
// alone, discarding its previous data.
func (e *Entity) ReplaceComponent(typ string, data component.Data, index int) component.Component {
	c := e.componentAt(typ, index)
	if c == nil {
		return nil
	}
	e.reinitComponent(c, e.sanitize(typ, data))
	return c
}

// GetComponent returns the first component of type typ.
func (e *Entity) GetComponent(typ string) component.Component {
	return e.GetComponentByProperty("type", typ)
}

// GetComponentWithID returns the component of type typ carrying id.
func (e *Entity) GetComponentWithID(typ, id string) component.Component {
	matches := e.GetComponentsWithProperties(component.Filter{"type": typ, "id": id})
	if len(matches) == 0 {
		return nil
	}
	return matches[0]
}

func (e *Entity) GetComponentByID(id string) component.Component {
	return e.GetComponentByProperty("id", id)
}

func (e *Entity) GetComponentsByType(typ string) []component.Component {
	return e.GetComponentsWithProperties(component.Filter{"type": typ})
}

// GetComponentByProperty returns the first component whose property equals
// value.
func (e *Entity) GetComponentByProperty(key string, value any) component.Component {
	f := component.Filter{key: value}
	for _, c := range e.components {
		if component.Matches(c, f) {
			return c
		}
	}
	return nil
}

// GetComponentsWithProperties returns every component matching all pairs of f,
// in list order.
func (e *Entity) GetComponentsWithProperties(f component.Filter) []component.Component {
	var out []component.Component
	for _, c := range e.components {
		if component.Matches(c, f) {
			out = append(out, c)
		}
	}
	return out
}

// Components returns a copy of the component list.
func (e *Entity) Components() []component.Component {
	return append([]component.Component(nil), e.components...)
}

// RemoveComponent detaches c and drops it from the list. It does not dispose
// the component.
func (e *Entity) RemoveComponent(c component.Component) component.Component {
	if c == nil {
		return nil
	}
	for i, existing := range e.components {
		if existing != c {
			continue
		}
		copy(e.components[i:], e.components[i+1:])
		e.components[len(e.components)-1] = nil
		e.components = e.components[:len(e.components)-1]
		detach(c)
		e.publish(EventComponentRemoved, map[string]any{"type": c.Type(), "component": c.ID()})
		return c
	}
	e.warn("component not found", log.String("type", c.Type()), log.String("component", c.ID()))
	return nil
}

// RebuildComponents reinitializes every component from its own serialized
// data, in list order.
func (e *Entity) RebuildComponents() *Entity {
	for _, c := range e.Components() {
		e.reinitComponent(c, c.ToJSON().Data)
	}
	return e
}

// TraverseComponents calls fn for each component until fn returns true.
func (e *Entity) TraverseComponents(fn func(component.Component) bool) {
	for _, c := range e.Components() {
		if fn(c) {
			return
		}
	}
}

func (e *Entity) componentAt(typ string, index int) component.Component {
	matches := e.GetComponentsByType(typ)
	if index < 0 || index >= len(matches) {
		return nil
	}
	return matches[index]
}

func (e *Entity) sanitize(typ string, data component.Data) component.Data {
	if def, ok := e.env.lookupComponent(typ); ok {
		return def.Sanitize(data)
	}
	return data.Clone()
}

func (e *Entity) initComponent(c component.Component, data component.Data) {
	detach(c)
	c.Bind(e)
	c.Init(data)
	c.Attach()
}

func (e *Entity) reinitComponent(c component.Component, data component.Data) {
	detach(c)
	c.Init(data)
	c.Attach()
}

func detach(c component.Component) {
	if c.Attached() {
		c.Detach()
	}
}
