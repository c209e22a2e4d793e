package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/salinityengine/salinity/internal/core/component"
	"github.com/salinityengine/salinity/internal/core/events/bus"
	"github.com/salinityengine/salinity/internal/core/observability/log"
)

// tracked records its lifecycle calls into a shared journal.
type tracked struct {
	component.Base
	journal  *[]string
	disposed bool
}

func (c *tracked) Init(data component.Data) {
	*c.journal = append(*c.journal, "init:"+c.Type())
	c.Base.Init(data)
}

func (c *tracked) Attach() {
	*c.journal = append(*c.journal, "attach:"+c.Type())
	c.Base.Attach()
}

func (c *tracked) Detach() {
	*c.journal = append(*c.journal, "detach:"+c.Type())
	c.Base.Detach()
}

func (c *tracked) Dispose() { c.disposed = true }

type fixture struct {
	env     *Env
	logs    *observer.ObservedLogs
	journal []string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{}

	core, logs := observer.New(zap.DebugLevel)
	f.logs = logs

	reg := component.NewRegistry()
	reg.MustRegister(
		component.Definition{Name: "Transform", Defaults: component.Data{"x": 0.0, "y": 0.0}},
		component.Definition{Name: "Material", Defaults: component.Data{"color": "white"}},
		component.Definition{
			Name:         "Sprite",
			Multiplicity: component.Multiple,
			Dependencies: []string{"Transform", "Material"},
		},
		component.Definition{
			Name: "Script",
			New: func() component.Component {
				return &tracked{Base: component.NewBase("Script"), journal: &f.journal}
			},
		},
		component.Definition{Name: "Outer", Dependencies: []string{"Sprite"}},
	)

	f.env = NewEnv(reg, NewTypeRegistry(), log.NewFromCore(core), nil)
	return f
}

func (f *fixture) warnings(msg string) int {
	return f.logs.FilterMessage(msg).Len()
}

func TestNewEntityDefaults(t *testing.T) {
	e := New(nil, "")
	assert.Equal(t, TypeEntity, e.Type())
	assert.Equal(t, TypeEntity, e.Name())
	assert.NotEmpty(t, e.ID())
	assert.True(t, e.Visible)
	assert.False(t, e.Locked)
	assert.Nil(t, e.Parent())
	assert.Empty(t, e.Components())
	assert.Empty(t, e.GetEntities())

	assert.True(t, NewStage(nil, "s").IsStage())
	assert.True(t, NewWorld(nil, "w").IsWorld())
	assert.NotEqual(t, New(nil, "a").ID(), New(nil, "a").ID())
}

func TestAddComponentUnknownType(t *testing.T) {
	f := newFixture(t)
	e := New(f.env, "hero")

	assert.Nil(t, e.AddComponent("Nope", nil, true))
	assert.Empty(t, e.Components())
	assert.Equal(t, 1, f.warnings("unknown component type"))
}

func TestAddComponentMultiplicity(t *testing.T) {
	f := newFixture(t)
	e := New(f.env, "hero")

	first := e.AddComponent("Transform", component.Data{"x": 1.0}, true)
	second := e.AddComponent("Transform", component.Data{"x": 2.0}, true)
	require.NotNil(t, first)
	assert.Same(t, first, second)
	assert.Len(t, e.GetComponentsByType("Transform"), 1)
	assert.Equal(t, 2.0, first.Data()["x"])

	a := e.AddComponent("Sprite", nil, false)
	b := e.AddComponent("Sprite", nil, false)
	assert.NotSame(t, a, b)
	assert.Len(t, e.GetComponentsByType("Sprite"), 2)
}

func TestAddComponentDependencies(t *testing.T) {
	f := newFixture(t)

	e := New(f.env, "hero")
	e.AddComponent("Sprite", nil, true)
	types := []string{}
	for _, c := range e.Components() {
		types = append(types, c.Type())
	}
	assert.Equal(t, []string{"Sprite", "Transform", "Material"}, types)

	existing := New(f.env, "with-transform")
	tr := existing.AddComponent("Transform", nil, true)
	existing.AddComponent("Sprite", nil, true)
	assert.Len(t, existing.GetComponentsByType("Transform"), 1)
	assert.Same(t, tr, existing.GetComponent("Transform"))

	bare := New(f.env, "bare")
	bare.AddComponent("Sprite", nil, false)
	assert.Nil(t, bare.GetComponent("Transform"))
}

func TestAddComponentDependenciesAreNotTransitive(t *testing.T) {
	f := newFixture(t)
	e := New(f.env, "hero")

	e.AddComponent("Outer", nil, true)
	assert.NotNil(t, e.GetComponent("Sprite"))
	assert.Nil(t, e.GetComponent("Transform"))
	assert.Nil(t, e.GetComponent("Material"))
}

func TestAddComponentSanitizesAndBinds(t *testing.T) {
	f := newFixture(t)
	e := New(f.env, "hero")

	c := e.AddComponent("Transform", component.Data{"x": 3.0}, true)
	assert.Equal(t, component.Data{"x": 3.0, "y": 0.0}, c.Data())
	assert.Same(t, e, c.Owner())
	assert.True(t, c.Attached())
}

func TestComponentLifecycleOrder(t *testing.T) {
	f := newFixture(t)
	e := New(f.env, "hero")

	e.AddComponent("Script", nil, true)
	assert.Equal(t, []string{"init:Script", "attach:Script"}, f.journal)

	f.journal = nil
	e.AddComponent("Script", component.Data{"src": "x"}, true)
	assert.Equal(t, []string{"detach:Script", "init:Script", "attach:Script"}, f.journal)

	f.journal = nil
	e.RebuildComponents()
	assert.Equal(t, []string{"detach:Script", "init:Script", "attach:Script"}, f.journal)
	assert.Equal(t, "x", e.GetComponent("Script").Data()["src"])
}

func TestAttachComponent(t *testing.T) {
	f := newFixture(t)
	e := New(f.env, "hero")

	c := component.NewBasic("Anything")
	c.Init(component.Data{"k": "v"})
	require.Same(t, c, e.AttachComponent(c))
	assert.True(t, c.Attached())
	assert.Same(t, e, c.Owner())
	assert.Equal(t, "v", c.Data()["k"])

	// No multiplicity check for pre-built components.
	e.AttachComponent(component.NewBasic("Anything"))
	assert.Len(t, e.GetComponentsByType("Anything"), 2)
	assert.Nil(t, e.AttachComponent(nil))
}

func TestAttachComponentMovesFromPreviousOwner(t *testing.T) {
	f := newFixture(t)
	a := New(f.env, "a")
	b := New(f.env, "b")

	c := a.AddComponent("Transform", component.Data{"x": 4.0}, false)
	require.NotNil(t, c)
	require.Same(t, c, b.AttachComponent(c))

	assert.Empty(t, a.Components())
	assert.Equal(t, []component.Component{c}, b.Components())
	assert.Same(t, b, c.Owner())
	assert.Equal(t, 4.0, c.Data()["x"])

	a.Dispose()
	assert.True(t, c.Attached())
	assert.Same(t, c, b.GetComponent("Transform"))

	// Attaching a held component again does not duplicate it.
	b.AttachComponent(c)
	assert.Len(t, b.Components(), 1)
	assert.True(t, c.Attached())
}

func TestUpdateAndReplaceComponentByIndex(t *testing.T) {
	f := newFixture(t)
	e := New(f.env, "hero")

	e.AddComponent("Sprite", component.Data{"frame": 1.0, "alpha": 1.0}, false)
	e.AddComponent("Sprite", component.Data{"frame": 2.0, "alpha": 1.0}, false)

	updated := e.UpdateComponent("Sprite", component.Data{"frame": 9.0}, 1)
	require.NotNil(t, updated)
	assert.Equal(t, component.Data{"frame": 9.0, "alpha": 1.0}, updated.Data())
	assert.Equal(t, 1.0, e.GetComponentsByType("Sprite")[0].Data()["frame"])

	replaced := e.ReplaceComponent("Sprite", component.Data{"frame": 5.0}, 0)
	require.NotNil(t, replaced)
	assert.Equal(t, component.Data{"frame": 5.0}, replaced.Data())

	assert.Nil(t, e.UpdateComponent("Sprite", nil, 2))
	assert.Nil(t, e.ReplaceComponent("Transform", nil, 0))
	assert.Nil(t, e.UpdateComponent("Sprite", nil, -1))
}

func TestComponentQueries(t *testing.T) {
	f := newFixture(t)
	e := New(f.env, "hero")

	a := e.AddComponent("Sprite", component.Data{"layer": "bg", "frame": 1.0}, false)
	b := e.AddComponent("Sprite", component.Data{"layer": "fg", "frame": 1.0}, false)
	tr := e.AddComponent("Transform", nil, false)

	assert.Same(t, a, e.GetComponent("Sprite"))
	assert.Same(t, b, e.GetComponentWithID("Sprite", b.ID()))
	assert.Nil(t, e.GetComponentWithID("Transform", b.ID()))
	assert.Same(t, tr, e.GetComponentByID(tr.ID()))
	assert.Same(t, b, e.GetComponentByProperty("layer", "fg"))
	assert.Len(t, e.GetComponentsWithProperties(component.Filter{"type": "Sprite", "frame": 1.0}), 2)
	assert.Empty(t, e.GetComponentsWithProperties(component.Filter{"type": "Sprite", "layer": "mid"}))

	var visited []string
	e.TraverseComponents(func(c component.Component) bool {
		visited = append(visited, c.ID())
		return c == b
	})
	assert.Equal(t, []string{a.ID(), b.ID()}, visited)
}

func TestRemoveComponent(t *testing.T) {
	f := newFixture(t)
	e := New(f.env, "hero")

	c := e.AddComponent("Script", nil, true).(*tracked)
	assert.Same(t, c, e.RemoveComponent(c))
	assert.Empty(t, e.Components())
	assert.False(t, c.Attached())
	assert.False(t, c.disposed)

	assert.Nil(t, e.RemoveComponent(c))
	assert.Equal(t, 1, f.warnings("component not found"))
	assert.Nil(t, e.RemoveComponent(nil))
}

func TestEntityEventsArePublished(t *testing.T) {
	f := newFixture(t)
	events := bus.New()
	f.env.Events = events

	var seen []string
	_, err := events.Subscribe(bus.AllEvents, func(ev bus.Event) error {
		seen = append(seen, ev.Type)
		return nil
	})
	require.NoError(t, err)

	parent := New(f.env, "parent")
	child := New(f.env, "child")
	c := child.AddComponent("Transform", nil, true)
	parent.AddEntity(child)
	child.RemoveComponent(c)
	parent.RemoveEntity(child, false)
	child.Dispose()

	assert.Equal(t, []string{
		EventComponentAdded,
		EventChildAdded,
		EventComponentRemoved,
		EventChildRemoved,
		EventDisposed,
	}, seen)
}

func TestEntityProperty(t *testing.T) {
	e := New(nil, "hero")
	e.Category = "npc"

	v, ok := e.Property("category")
	assert.True(t, ok)
	assert.Equal(t, "npc", v)

	_, ok = e.Property("missing")
	assert.False(t, ok)
}
