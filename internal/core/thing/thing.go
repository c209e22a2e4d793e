// Package thing holds the identity base shared by entities and assets.
package thing

import "github.com/google/uuid"

// Version is stamped into every serialized record.
const Version = "1.0"

// Meta is the metadata block at the head of every serialized record.
type Meta struct {
	Type    string `json:"type" yaml:"type"`
	Version string `json:"version" yaml:"version"`
}

// Record is the serialized identity of a Thing.
type Record struct {
	Meta Meta   `json:"meta" yaml:"meta"`
	ID   string `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`
}

// Thing supplies a unique id, a display name and an immutable type tag.
type Thing struct {
	id   string
	name string
	typ  string
}

// New returns a Thing of the given type with a fresh id. An empty name
// defaults to the type.
func New(typ, name string) Thing {
	t := Thing{id: NewID(), typ: typ}
	t.SetName(name)
	return t
}

// NewID generates a globally unique identifier.
func NewID() string {
	return uuid.NewString()
}

func (t *Thing) ID() string { return t.id }
func (t *Thing) Name() string { return t.name }
func (t *Thing) Type() string { return t.typ }

func (t *Thing) SetName(name string) {
	if name == "" {
		name = t.typ
	}
	t.name = name
}

// CopyFrom copies the display name. The id is never copied.
func (t *Thing) CopyFrom(source *Thing) {
	t.name = source.name
}

func (t *Thing) Meta() Meta {
	return Meta{Type: t.typ, Version: Version}
}

func (t *Thing) ToRecord() Record {
	return Record{Meta: t.Meta(), ID: t.id, Name: t.name}
}

// FromRecord restores name and id from a trusted record. Empty fields leave
// the current values untouched.
func (t *Thing) FromRecord(r Record) {
	if r.Name != "" {
		t.name = r.Name
	}
	if r.ID != "" {
		t.id = r.ID
	}
}
