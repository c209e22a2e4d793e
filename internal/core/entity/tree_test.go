package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func names(list []*Entity) []string {
	out := make([]string, 0, len(list))
	for _, e := range list {
		out = append(out, e.Name())
	}
	return out
}

func TestAddEntity(t *testing.T) {
	parent := New(nil, "parent")
	a, b := New(nil, "a"), New(nil, "b")

	parent.AddEntity(a, nil, b, a, parent)
	assert.Equal(t, []string{"a", "b"}, names(parent.GetEntities()))
	assert.Same(t, parent, a.Parent())
	assert.Same(t, parent, b.Parent())
}

func TestAddEntityMovesFromPreviousParent(t *testing.T) {
	p1, p2 := New(nil, "p1"), New(nil, "p2")
	child := New(nil, "child")
	child.Locked = true

	p1.AddEntity(child)
	p2.AddEntity(child)

	assert.Empty(t, p1.GetEntities())
	assert.Equal(t, []string{"child"}, names(p2.GetEntities()))
	assert.Same(t, p2, child.Parent())
}

func TestAddEntityRejectsAncestors(t *testing.T) {
	root := New(nil, "root")
	mid := New(nil, "mid")
	leaf := New(nil, "leaf")
	root.AddEntity(mid)
	mid.AddEntity(leaf)

	leaf.AddEntity(root)
	assert.Nil(t, root.Parent())
	assert.Empty(t, leaf.GetEntities())
}

func TestGetEntitiesReturnsCopy(t *testing.T) {
	parent := New(nil, "parent")
	parent.AddEntity(New(nil, "a"))

	list := parent.GetEntities()
	list[0] = nil
	assert.NotNil(t, parent.GetEntities()[0])
}

func TestEntityLookups(t *testing.T) {
	root := New(nil, "root")
	a := New(nil, "a")
	b := New(nil, "b")
	deep := New(nil, "b")
	deep.Category = "prefab"
	root.AddEntity(a, b)
	a.AddEntity(deep)

	assert.Same(t, root, root.GetEntityByName("root"))
	assert.Same(t, deep, root.GetEntityByName("b"), "depth first visits a's subtree before b")
	assert.Same(t, b, root.GetEntityByID(b.ID()))
	assert.Same(t, deep, root.GetEntityByProperty("category", "prefab"))
	assert.Nil(t, root.GetEntityByName("missing"))
	assert.Nil(t, root.GetEntityByProperty("unknown", "x"))
}

func TestRemoveEntity(t *testing.T) {
	parent := New(nil, "parent")
	child := New(nil, "child")
	parent.AddEntity(child)

	assert.Same(t, child, parent.RemoveEntity(child, false))
	assert.Nil(t, child.Parent())
	assert.Empty(t, parent.GetEntities())
	assert.False(t, child.IsDisposed())

	assert.Nil(t, parent.RemoveEntity(child, false))
	assert.Nil(t, parent.RemoveEntity(nil, true))

	// Orphans stay reusable.
	other := New(nil, "other")
	other.AddEntity(child)
	assert.Same(t, other, child.Parent())
}

func TestRemoveLockedEntity(t *testing.T) {
	parent := New(nil, "parent")
	child := New(nil, "child")
	child.Locked = true
	parent.AddEntity(child)

	assert.Nil(t, parent.RemoveEntity(child, false))
	assert.Same(t, parent, child.Parent())
	assert.Len(t, parent.GetEntities(), 1)

	child.RemoveFromParent()
	assert.Same(t, parent, child.Parent())

	assert.Same(t, child, parent.RemoveEntity(child, true))
	assert.Nil(t, child.Parent())
	assert.Empty(t, parent.GetEntities())
}

func TestRemoveFromParent(t *testing.T) {
	parent := New(nil, "parent")
	child := New(nil, "child")
	parent.AddEntity(child)

	assert.Same(t, child, child.RemoveFromParent())
	assert.Nil(t, child.Parent())
	assert.Same(t, child, child.RemoveFromParent())
}

func buildTree() (*Entity, map[string]*Entity) {
	nodes := map[string]*Entity{}
	for _, n := range []string{"root", "a", "a1", "a2", "b", "b1"} {
		nodes[n] = New(nil, n)
	}
	nodes["root"].AddEntity(nodes["a"], nodes["b"])
	nodes["a"].AddEntity(nodes["a1"], nodes["a2"])
	nodes["b"].AddEntity(nodes["b1"])
	return nodes["root"], nodes
}

func TestTraversePreOrder(t *testing.T) {
	root, _ := buildTree()

	var visited []string
	stopped := root.Traverse(func(e *Entity) bool {
		visited = append(visited, e.Name())
		return false
	})
	assert.False(t, stopped)
	assert.Equal(t, []string{"root", "a", "a1", "a2", "b", "b1"}, visited)
}

func TestTraverseStopHaltsWholeWalk(t *testing.T) {
	root, _ := buildTree()

	var visited []string
	stopped := root.Traverse(func(e *Entity) bool {
		visited = append(visited, e.Name())
		return e.Name() == "a1"
	})
	assert.True(t, stopped)
	assert.Equal(t, []string{"root", "a", "a1"}, visited)

	visited = nil
	root.TraverseEntities(func(e *Entity) bool {
		visited = append(visited, e.Name())
		return e.Name() == "a2"
	})
	assert.Equal(t, []string{"root", "a", "a1", "a2"}, visited)
}

func TestTraverseEntitiesToleratesMutation(t *testing.T) {
	root, nodes := buildTree()

	var visited []string
	root.TraverseEntities(func(e *Entity) bool {
		visited = append(visited, e.Name())
		if e == nodes["a"] {
			root.RemoveEntity(nodes["b"], false)
		}
		return false
	})
	assert.Equal(t, []string{"root", "a", "a1", "a2", "b", "b1"}, visited)
	assert.Equal(t, []string{"a"}, names(root.GetEntities()))
}

func TestAllIterator(t *testing.T) {
	root, _ := buildTree()

	var visited []string
	for e := range root.All() {
		visited = append(visited, e.Name())
		if e.Name() == "a2" {
			break
		}
	}
	assert.Equal(t, []string{"root", "a", "a1", "a2"}, visited)
}

func TestChangeParent(t *testing.T) {
	root, nodes := buildTree()
	a2 := nodes["a2"]

	require.Same(t, a2, a2.ChangeParent(nodes["b"], -1))
	assert.Same(t, nodes["b"], a2.Parent())
	assert.Equal(t, []string{"a1"}, names(nodes["a"].GetEntities()))
	assert.Equal(t, []string{"b1", "a2"}, names(nodes["b"].GetEntities()), "old index 1 is kept")

	a2.ChangeParent(root, 0)
	assert.Equal(t, []string{"a2", "a", "b"}, names(root.GetEntities()))
	assert.Equal(t, []string{"b1"}, names(nodes["b"].GetEntities()))

	count := 0
	for _, c := range root.GetEntities() {
		if c == a2 {
			count++
		}
	}
	assert.Equal(t, 1, count)
}

func TestChangeParentReordersUnderCurrentParent(t *testing.T) {
	root, nodes := buildTree()

	nodes["a"].ChangeParent(nil, 1)
	assert.Equal(t, []string{"b", "a"}, names(root.GetEntities()))

	nodes["a"].ChangeParent(nil, 10)
	assert.Equal(t, []string{"b", "a"}, names(root.GetEntities()))

	nodes["a"].ChangeParent(nil, -1)
	assert.Equal(t, []string{"b", "a"}, names(root.GetEntities()))

	assert.Nil(t, root.ChangeParent(nil, 0), "a root has no parent to reorder under")
}

func TestChangeParentRejectsDescendant(t *testing.T) {
	root, nodes := buildTree()

	assert.Nil(t, nodes["a"].ChangeParent(nodes["a1"], -1))
	assert.Same(t, root, nodes["a"].Parent())
	assert.Empty(t, nodes["a1"].GetEntities())
}

func TestAncestorQueries(t *testing.T) {
	world := NewWorld(nil, "world")
	stage := NewStage(nil, "stage")
	group := New(nil, "group")
	leaf := New(nil, "leaf")
	world.AddEntity(stage)
	stage.AddEntity(group)
	group.AddEntity(leaf)

	assert.Same(t, group, leaf.ParentEntity())
	assert.Same(t, group, group.ParentEntity())
	assert.Same(t, stage, stage.ParentEntity())
	assert.Same(t, stage, leaf.ParentStage())
	assert.Same(t, stage, stage.ParentStage())
	assert.Same(t, world, leaf.ParentWorld())
	assert.Same(t, world, world.ParentStage())

	loose := New(nil, "loose")
	inner := New(nil, "inner")
	loose.AddEntity(inner)
	assert.Same(t, loose, inner.ParentEntity())
	assert.Nil(t, inner.ParentStage())
	assert.Nil(t, inner.ParentWorld())
}
