// Package component defines the behaviour units attached to entities and the
// registry that describes how each component type is built and validated.
package component

import (
	"reflect"

	"github.com/salinityengine/salinity/internal/core/thing"
)

// Data is the validated field set of a component.
type Data map[string]any

// Clone returns a deep copy of nested maps and slices. Numbers are widened to
// float64 so data compares equal whichever codec decoded it.
func (d Data) Clone() Data {
	if d == nil {
		return Data{}
	}
	out := make(Data, len(d))
	for k, v := range d {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case Data:
		return t.Clone()
	case map[string]any:
		return map[string]any(Data(t).Clone())
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = cloneValue(e)
		}
		return out
	case []string:
		return append([]string(nil), t...)
	case int:
		return float64(t)
	case int8:
		return float64(t)
	case int16:
		return float64(t)
	case int32:
		return float64(t)
	case int64:
		return float64(t)
	case uint:
		return float64(t)
	case uint8:
		return float64(t)
	case uint16:
		return float64(t)
	case uint32:
		return float64(t)
	case uint64:
		return float64(t)
	case float32:
		return float64(t)
	default:
		return v
	}
}

// Record is the serialized form of a component.
type Record struct {
	Meta thing.Meta `json:"meta" yaml:"meta"`
	ID   string     `json:"id" yaml:"id"`
	Data Data       `json:"data" yaml:"data"`
}

// Owner is the entity a component is bound to. Components hold it as a
// non-owning back reference.
type Owner interface {
	ID() string
	Name() string
	Type() string
}

// Component is the binding contract between an entity and a behaviour unit.
type Component interface {
	Type() string
	ID() string
	SetID(id string)

	Owner() Owner
	Bind(owner Owner)

	Data() Data
	Init(data Data)
	Attach()
	Detach()
	Attached() bool

	ToJSON() Record
}

// Disposer is implemented by components holding resources that outlive
// detachment.
type Disposer interface {
	Dispose()
}

// Base implements Component and is meant to be embedded.
type Base struct {
	typ      string
	id       string
	owner    Owner
	data     Data
	attached bool
}

func NewBase(typ string) Base {
	return Base{typ: typ, id: thing.NewID(), data: Data{}}
}

func (b *Base) Type() string { return b.typ }
func (b *Base) ID() string { return b.id }
func (b *Base) SetID(id string) { b.id = id }
func (b *Base) Owner() Owner { return b.owner }
func (b *Base) Bind(owner Owner) { b.owner = owner }
func (b *Base) Data() Data { return b.data }
func (b *Base) Attached() bool { return b.attached }
func (b *Base) Init(data Data) { b.data = data.Clone() }
func (b *Base) Attach() { b.attached = true }
func (b *Base) Detach() { b.attached = false }

func (b *Base) ToJSON() Record {
	return Record{
		Meta: thing.Meta{Type: b.typ, Version: thing.Version},
		ID:   b.id,
		Data: b.data.Clone(),
	}
}

// Basic is a data-only component, used for types declared purely through
// definitions.
type Basic struct {
	Base
}

func NewBasic(typ string) *Basic {
	return &Basic{Base: NewBase(typ)}
}

// Filter is a conjunctive set of property/value pairs.
type Filter map[string]any

// Property reads "type", "id", or a data field of c.
func Property(c Component, key string) (any, bool) {
	switch key {
	case "type":
		return c.Type(), true
	case "id":
		return c.ID(), true
	}
	v, ok := c.Data()[key]
	return v, ok
}

// Matches reports whether c carries every pair in f.
func Matches(c Component, f Filter) bool {
	for key, want := range f {
		got, ok := Property(c, key)
		if !ok || !reflect.DeepEqual(cloneValue(got), cloneValue(want)) {
			return false
		}
	}
	return true
}
