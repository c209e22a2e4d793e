package assets

import (
	"context"
	"fmt"
	"os"
	"slices"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/salinityengine/salinity/internal/core/observability/log"
)

// Library is the serialized asset set, grouped by asset type.
type Library map[string][]Record

// Constructor builds an empty asset of one kind.
type Constructor func() Asset

// Registry stores assets by id in insertion order.
type Registry struct {
	mu     sync.RWMutex
	kinds  map[string]Constructor
	assets map[string]Asset
	order  []string
	log    log.Log
}

// NewRegistry returns a registry that knows the Palette and Script kinds.
func NewRegistry(logger log.Log) *Registry {
	if logger == nil {
		logger = log.NewNop()
	}
	r := &Registry{
		kinds:  make(map[string]Constructor),
		assets: make(map[string]Asset),
		log:    logger,
	}
	r.RegisterKind(TypePalette, func() Asset { return NewPalette("") })
	r.RegisterKind(TypeScript, func() Asset { return NewScript("", "") })
	return r
}

// RegisterKind makes a type loadable by FromJSON. Registering a name twice
// replaces the constructor.
func (r *Registry) RegisterKind(typ string, ctor Constructor) {
	r.mu.Lock()
	r.kinds[typ] = ctor
	r.mu.Unlock()
}

func (r *Registry) Kinds() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.kinds))
	for name := range r.kinds {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

func (r *Registry) Get(id string) (Asset, bool) {
	r.mu.RLock()
	a, ok := r.assets[id]
	r.mu.RUnlock()
	return a, ok
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.assets)
}

// Library returns the assets matching typ and category, compared case
// insensitively. An empty argument matches everything.
func (r *Registry) Library(typ, category string) []Asset {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []Asset
	for _, id := range r.order {
		a := r.assets[id]
		if typ != "" && !strings.EqualFold(a.Type(), typ) {
			continue
		}
		if category != "" && !strings.EqualFold(a.Category(), category) {
			continue
		}
		out = append(out, a)
	}
	return out
}

// Add stores assets by id, replacing any asset already stored under the same
// id. Unnamed assets are named after their type. Returns the first asset
// stored.
func (r *Registry) Add(assets ...Asset) Asset {
	r.mu.Lock()
	defer r.mu.Unlock()
	var first Asset
	for _, a := range assets {
		if a == nil || a.ID() == "" {
			continue
		}
		if a.Name() == "" {
			a.SetName(a.Type())
		}
		if _, exists := r.assets[a.ID()]; !exists {
			r.order = append(r.order, a.ID())
		}
		r.assets[a.ID()] = a
		if first == nil {
			first = a
		}
	}
	return first
}

// Remove deletes assets, disposing them when dispose is set.
func (r *Registry) Remove(dispose bool, assets ...Asset) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range assets {
		if a == nil {
			continue
		}
		r.removeLocked(a.ID(), dispose)
	}
}

func (r *Registry) removeLocked(id string, dispose bool) {
	a, ok := r.assets[id]
	if !ok {
		return
	}
	if d, ok := a.(Disposer); ok && dispose {
		d.Dispose()
	}
	delete(r.assets, id)
	if i := slices.Index(r.order, id); i != -1 {
		r.order = slices.Delete(r.order, i, i+1)
	}
}

// Clear removes and disposes every asset not marked built-in.
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, id := range slices.Clone(r.order) {
		if r.assets[id].BuiltIn() {
			continue
		}
		r.removeLocked(id, true)
	}
}

// ToJSON serializes every asset of a registered kind, grouped by type.
func (r *Registry) ToJSON() Library {
	r.mu.RLock()
	defer r.mu.RUnlock()
	lib := Library{}
	for _, id := range r.order {
		a := r.assets[id]
		if _, known := r.kinds[a.Type()]; !known {
			continue
		}
		lib[a.Type()] = append(lib[a.Type()], a.ToJSON())
	}
	return lib
}

// FromJSON clears the registry and loads lib. Groups of unregistered types are
// skipped with a warning.
func (r *Registry) FromJSON(lib Library) {
	r.Clear()
	r.load(lib)
}

func (r *Registry) load(lib Library) {
	types := make([]string, 0, len(lib))
	for typ := range lib {
		types = append(types, typ)
	}
	slices.Sort(types)

	for _, typ := range types {
		r.mu.RLock()
		ctor, ok := r.kinds[typ]
		r.mu.RUnlock()
		if !ok {
			r.log.Warn("unknown asset type", log.String("type", typ), log.Int("count", len(lib[typ])))
			continue
		}
		for _, rec := range lib[typ] {
			a := ctor()
			a.FromJSON(rec)
			r.Add(a)
		}
	}
}

// LoadFiles reads asset libraries from paths concurrently and merges them into
// the registry in argument order. JSON and YAML files are both accepted. No
// asset is added unless every file decodes.
func (r *Registry) LoadFiles(ctx context.Context, paths ...string) error {
	libs := make([]Library, len(paths))
	g, ctx := errgroup.WithContext(ctx)
	for i, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			raw, err := os.ReadFile(path)
			if err != nil {
				return err
			}
			var lib Library
			if err := yaml.Unmarshal(raw, &lib); err != nil {
				return fmt.Errorf("assets: decode %s: %w", path, err)
			}
			libs[i] = lib
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	for _, lib := range libs {
		r.load(lib)
	}
	return nil
}
