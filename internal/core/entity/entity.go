// Package entity implements the scene graph: a tree of entities, each owning an
// ordered list of components and an ordered list of children.
//
// Trees are not safe for concurrent mutation. A caller sharing a tree between
// goroutines must hold exclusive access to a subtree for the duration of any
// structural operation (add, remove, reparent, dispose, copy, load).
package entity

import (
	"github.com/salinityengine/salinity/internal/core/component"
	"github.com/salinityengine/salinity/internal/core/events/bus"
	"github.com/salinityengine/salinity/internal/core/observability/log"
	"github.com/salinityengine/salinity/internal/core/thing"
)

// Built-in entity type names.
const (
	TypeEntity = "Entity"
	TypeStage  = "Stage"
	TypeWorld  = "World"
)

// Events published on Env.Events.
const (
	EventChildAdded       = "entity.child_added"
	EventChildRemoved     = "entity.child_removed"
	EventComponentAdded   = "entity.component_added"
	EventComponentRemoved = "entity.component_removed"
	EventDisposed         = "entity.disposed"
)

// Boundary marks entity kinds that bound ancestor searches.
type Boundary uint8

const (
	BoundaryNone Boundary = iota
	BoundaryStage
	BoundaryWorld
)

// Env carries the collaborators an entity consults. It is shared by every
// entity of a tree and handed to children built during deserialization.
type Env struct {
	Components component.Lookup
	Types      *TypeRegistry
	Log        log.Log
	Events     bus.EventBus
}

func NewEnv(components component.Lookup, types *TypeRegistry, logger log.Log, events bus.EventBus) *Env {
	return &Env{Components: components, Types: types, Log: logger, Events: events}
}

func (env *Env) lookupComponent(typ string) (component.Definition, bool) {
	if env.Components == nil {
		return component.Definition{}, false
	}
	return env.Components.Lookup(typ)
}

// resolve finds the factory for an entity type. Without a type registry only
// the built-in types resolve.
func (env *Env) resolve(typ string) (Factory, bool) {
	if env.Types != nil {
		return env.Types.Resolve(typ)
	}
	switch typ {
	case TypeEntity:
		return New, true
	case TypeStage:
		return NewStage, true
	case TypeWorld:
		return NewWorld, true
	}
	return nil, false
}

func (env *Env) logger() log.Log {
	if env.Log == nil {
		return log.NewNop()
	}
	return env.Log
}

// Entity is a scene graph vertex. A single struct serves every entity type; the
// type tag and boundary kind distinguish stages and worlds from plain entities.
type Entity struct {
	thing.Thing

	Category string
	Locked   bool
	Visible  bool

	env        *Env
	boundary   Boundary
	components []component.Component
	children   []*Entity
	parent     *Entity
	disposed   bool
}

// New creates a plain entity.
func New(env *Env, name string) *Entity {
	return newEntity(env, TypeEntity, BoundaryNone, name)
}

// NewStage creates an entity that bounds ParentEntity and ParentStage searches.
func NewStage(env *Env, name string) *Entity {
	return newEntity(env, TypeStage, BoundaryStage, name)
}

// NewWorld creates the outermost boundary entity.
func NewWorld(env *Env, name string) *Entity {
	return newEntity(env, TypeWorld, BoundaryWorld, name)
}

func newEntity(env *Env, typ string, boundary Boundary, name string) *Entity {
	if env == nil {
		env = &Env{}
	}
	return &Entity{
		Thing:    thing.New(typ, name),
		Visible:  true,
		env:      env,
		boundary: boundary,
	}
}

// Environment returns the collaborators this entity was built with.
func (e *Entity) Environment() *Env { return e.env }

func (e *Entity) Boundary() Boundary { return e.boundary }
func (e *Entity) IsStage() bool { return e.boundary == BoundaryStage }
func (e *Entity) IsWorld() bool { return e.boundary == BoundaryWorld }
func (e *Entity) IsDisposed() bool { return e.disposed }

// Parent returns the owning entity, or nil for a root.
func (e *Entity) Parent() *Entity { return e.parent }

// Property reads a named field for property-based lookups.
func (e *Entity) Property(key string) (any, bool) {
	switch key {
	case "id":
		return e.ID(), true
	case "name":
		return e.Name(), true
	case "type":
		return e.Type(), true
	case "category":
		return e.Category, true
	case "locked":
		return e.Locked, true
	case "visible":
		return e.Visible, true
	default:
		return nil, false
	}
}

func (e *Entity) warn(msg string, fields ...log.Field) {
	fields = append(fields, log.String("entity", e.ID()), log.String("entity_name", e.Name()))
	e.env.logger().Warn(msg, fields...)
}

func (e *Entity) publish(typ string, data map[string]any) {
	if e.env.Events == nil {
		return
	}
	if err := e.env.Events.Publish(bus.NewEvent(typ, e.ID(), data)); err != nil {
		e.env.logger().Debug("event handler failed", log.String("event", typ), log.Error(err))
	}
}

func fieldEntity(key string, n *Entity) log.Field {
	return log.String(key, n.ID())
}
