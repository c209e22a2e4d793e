package entity

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

var ErrDuplicateType = errors.New("entity type already registered")

// Factory constructs an empty entity of one concrete type.
type Factory func(env *Env, name string) *Entity

type typeEntry struct {
	boundary Boundary
	factory  Factory
}

// TypeRegistry maps serialized type tags to entity factories. It is consulted
// when children are rebuilt from records and when entities are cloned.
type TypeRegistry struct {
	mu    sync.RWMutex
	types map[string]typeEntry
}

// NewTypeRegistry returns a registry holding the built-in Entity, Stage and
// World types.
func NewTypeRegistry() *TypeRegistry {
	r := &TypeRegistry{}
	r.Reset()
	return r
}

// Register adds a type. A nil factory builds a plain entity carrying the given
// type tag and boundary kind.
func (r *TypeRegistry) Register(name string, boundary Boundary, factory Factory) error {
	if name == "" {
		return errors.New("entity type name is empty")
	}
	if factory == nil {
		factory = func(env *Env, entityName string) *Entity {
			return newEntity(env, name, boundary, entityName)
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.types[name]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateType, name)
	}
	r.types[name] = typeEntry{boundary: boundary, factory: factory}
	return nil
}

// Resolve returns the factory registered for name.
func (r *TypeRegistry) Resolve(name string) (Factory, bool) {
	if r == nil {
		return nil, false
	}
	r.mu.RLock()
	entry, ok := r.types[name]
	r.mu.RUnlock()
	return entry.factory, ok
}

func (r *TypeRegistry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.types))
	for name := range r.types {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Reset drops every registration except the built-in types.
func (r *TypeRegistry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.types = map[string]typeEntry{
		TypeEntity: {boundary: BoundaryNone, factory: New},
		TypeStage:  {boundary: BoundaryStage, factory: NewStage},
		TypeWorld:  {boundary: BoundaryWorld, factory: NewWorld},
	}
}
