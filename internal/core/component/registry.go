package component

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

var (
	ErrDuplicate         = errors.New("component type already registered")
	ErrInvalidDefinition = errors.New("invalid component definition")
)

// Multiplicity declares whether an entity holds one or many components of a
// type.
type Multiplicity uint8

const (
	Single Multiplicity = iota
	Multiple
)

func (m Multiplicity) String() string {
	if m == Multiple {
		return "multiple"
	}
	return "single"
}

// Definition describes how a component type is built and validated.
type Definition struct {
	Name         string
	Multiplicity Multiplicity
	Dependencies []string
	Defaults     Data

	// New constructs an empty component. Nil means a Basic component.
	New func() Component
	// Sanitizer runs after defaults are applied.
	Sanitizer func(Data) Data
}

// Construct returns a fresh, unbound component.
func (d Definition) Construct() Component {
	if d.New != nil {
		return d.New()
	}
	return NewBasic(d.Name)
}

// Sanitize returns a validated copy of data. The input is never mutated.
func (d Definition) Sanitize(data Data) Data {
	out := data.Clone()
	for k, v := range d.Defaults {
		if _, ok := out[k]; !ok {
			out[k] = cloneValue(v)
		}
	}
	if d.Sanitizer != nil {
		out = d.Sanitizer(out)
		if out == nil {
			out = Data{}
		}
	}
	return out
}

// Lookup resolves a type name to its definition.
type Lookup interface {
	Lookup(name string) (Definition, bool)
}

// Registry is an in-memory, concurrency-safe definition store.
type Registry struct {
	mu   sync.RWMutex
	defs map[string]Definition
}

var _ Lookup = (*Registry)(nil)

func NewRegistry() *Registry {
	return &Registry{defs: make(map[string]Definition)}
}

func (r *Registry) Register(def Definition) error {
	if def.Name == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidDefinition)
	}
	for _, dep := range def.Dependencies {
		if dep == def.Name {
			return fmt.Errorf("%w: %s depends on itself", ErrInvalidDefinition, def.Name)
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.defs[def.Name]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicate, def.Name)
	}
	def.Dependencies = append([]string(nil), def.Dependencies...)
	def.Defaults = def.Defaults.Clone()
	r.defs[def.Name] = def
	return nil
}

func (r *Registry) MustRegister(defs ...Definition) {
	for _, def := range defs {
		if err := r.Register(def); err != nil {
			panic(err)
		}
	}
}

func (r *Registry) Lookup(name string) (Definition, bool) {
	r.mu.RLock()
	def, ok := r.defs[name]
	r.mu.RUnlock()
	return def, ok
}

func (r *Registry) Unregister(name string) {
	r.mu.Lock()
	delete(r.defs, name)
	r.mu.Unlock()
}

// Names returns the registered type names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.defs))
	for name := range r.defs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Reset drops every definition.
func (r *Registry) Reset() {
	r.mu.Lock()
	r.defs = make(map[string]Definition)
	r.mu.Unlock()
}
