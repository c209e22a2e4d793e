package entity

import (
	"errors"
	"fmt"

	"github.com/salinityengine/salinity/internal/core/component"
	"github.com/salinityengine/salinity/internal/core/observability/log"
	"github.com/salinityengine/salinity/internal/core/thing"
)

var ErrUnknownType = errors.New("unknown entity type")

// Record is the serialized form of an entity subtree. Category, Locked and
// Visible are pointers so that absent fields leave the target untouched on
// load.
type Record struct {
	thing.Record `yaml:",inline"`

	Category   *string            `json:"category,omitempty" yaml:"category,omitempty"`
	Locked     *bool              `json:"locked,omitempty" yaml:"locked,omitempty"`
	Visible    *bool              `json:"visible,omitempty" yaml:"visible,omitempty"`
	Components []component.Record `json:"components" yaml:"components"`
	Children   []Record           `json:"children" yaml:"children"`
}

// ToJSON serializes e, and its children when recursive is set.
func (e *Entity) ToJSON(recursive bool) Record {
	category, locked, visible := e.Category, e.Locked, e.Visible
	r := Record{
		Record:     e.ToRecord(),
		Category:   &category,
		Locked:     &locked,
		Visible:    &visible,
		Components: make([]component.Record, 0, len(e.components)),
		Children:   []Record{},
	}
	for _, c := range e.components {
		r.Components = append(r.Components, c.ToJSON())
	}
	if recursive {
		for _, child := range e.children {
			r.Children = append(r.Children, child.ToJSON(true))
		}
	}
	return r
}

// FromJSON loads r into e, appending to whatever e already holds. Components
// and children of unknown types are skipped with a warning.
func (e *Entity) FromJSON(r Record) *Entity {
	e.FromRecord(r.Record)
	if r.Category != nil {
		e.Category = *r.Category
	}
	if r.Locked != nil {
		e.Locked = *r.Locked
	}
	if r.Visible != nil {
		e.Visible = *r.Visible
	}

	for _, cr := range r.Components {
		if cr.Meta.Type == "" {
			continue
		}
		c := e.AddComponent(cr.Meta.Type, cr.Data, false)
		if c != nil && cr.ID != "" {
			c.SetID(cr.ID)
		}
	}

	for _, cr := range r.Children {
		factory, ok := e.env.resolve(cr.Meta.Type)
		if !ok {
			e.warn("unknown child type", log.String("type", cr.Meta.Type))
			continue
		}
		child := factory(e.env, cr.Name)
		if child == nil {
			continue
		}
		e.AddEntity(child.FromJSON(cr))
	}
	return e
}

// Load builds a new root entity from r, resolving its type through the
// environment's type registry.
func Load(env *Env, r Record) (*Entity, error) {
	if env == nil {
		env = &Env{}
	}
	typ := r.Meta.Type
	if typ == "" {
		typ = TypeEntity
	}
	factory, ok := env.resolve(typ)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownType, typ)
	}
	root := factory(env, r.Name)
	if root == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownType, typ)
	}
	return root.FromJSON(r), nil
}
