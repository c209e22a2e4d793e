// Package assets keeps the shared, uuid-keyed resources a project references
// from its scene graph, such as color palettes and scripts.
package assets

import (
	"github.com/salinityengine/salinity/internal/core/thing"
)

// Built-in asset kinds.
const (
	TypePalette = "Palette"
	TypeScript  = "Script"
)

// Record is the serialized form of an asset.
type Record struct {
	thing.Record `yaml:",inline"`

	Category string         `json:"category,omitempty" yaml:"category,omitempty"`
	Data     map[string]any `json:"data,omitempty" yaml:"data,omitempty"`
}

// Asset is a named resource stored in a Registry.
type Asset interface {
	ID() string
	Name() string
	SetName(name string)
	Type() string
	Category() string
	BuiltIn() bool

	ToJSON() Record
	FromJSON(r Record)
}

// Disposer is implemented by assets that release resources on removal.
type Disposer interface {
	Dispose()
}

// Base carries the fields common to every asset kind and is meant to be
// embedded.
type Base struct {
	thing.Thing

	category string
	builtIn  bool
}

func NewBase(typ, name string) Base {
	return Base{Thing: thing.New(typ, name)}
}

func (b *Base) Category() string { return b.category }
func (b *Base) SetCategory(category string) { b.category = category }
func (b *Base) BuiltIn() bool { return b.builtIn }

// MarkBuiltIn flags the asset so that Registry.Clear keeps it.
func (b *Base) MarkBuiltIn() { b.builtIn = true }

func (b *Base) record(data map[string]any) Record {
	return Record{Record: b.ToRecord(), Category: b.category, Data: data}
}

func (b *Base) load(r Record) {
	b.FromRecord(r.Record)
	if r.Category != "" {
		b.category = r.Category
	}
}
