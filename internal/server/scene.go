package server

import (
	"sync"

	"github.com/salinityengine/salinity/internal/core/assets"
	"github.com/salinityengine/salinity/internal/core/document"
	"github.com/salinityengine/salinity/internal/core/entity"
	"github.com/salinityengine/salinity/internal/core/events/bus"
)

// EventSceneReplaced is published after Live.Replace swaps the scene.
const EventSceneReplaced = "scene.replaced"

// Live owns the scene served by the inspector. Every access goes through its
// mutex, which gives the tree the exclusive access it needs.
type Live struct {
	mu     sync.Mutex
	name   string
	env    *entity.Env
	assets *assets.Registry
	root   *entity.Entity
}

// NewLive serves root, which may be nil for an empty scene.
func NewLive(name string, env *entity.Env, lib *assets.Registry, root *entity.Entity) *Live {
	if lib == nil {
		lib = assets.NewRegistry(env.Log)
	}
	return &Live{name: name, env: env, assets: lib, root: root}
}

// Snapshot serializes the current scene and asset library.
func (l *Live) Snapshot() document.Document {
	l.mu.Lock()
	defer l.mu.Unlock()
	return document.Build(l.name, l.root, l.assets)
}

// Replace rebuilds the scene from doc and disposes the previous tree.
func (l *Live) Replace(doc document.Document) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	root, err := doc.Restore(l.env, l.assets)
	if err != nil {
		return err
	}
	old := l.root
	l.root = root
	if doc.Name != "" {
		l.name = doc.Name
	}
	if old != nil {
		old.Dispose()
	}
	if l.env.Events != nil {
		_ = l.env.Events.Publish(bus.NewEvent(EventSceneReplaced, root.ID(), map[string]any{"name": l.name}))
	}
	return nil
}

// Do runs fn with exclusive access to the scene root.
func (l *Live) Do(fn func(root *entity.Entity)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fn(l.root)
}
