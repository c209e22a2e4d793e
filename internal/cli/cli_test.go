package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/salinityengine/salinity/internal/core/component"
	"github.com/salinityengine/salinity/internal/core/document"
	"github.com/salinityengine/salinity/internal/core/entity"
)

const definitions = `components:
  - name: Transform
    defaults: {x: 0, y: 0}
  - name: Sprite
    dependencies: [Transform]
`

type workspace struct {
	dir    string
	config string
}

func newWorkspace(t *testing.T) *workspace {
	t.Helper()
	dir := t.TempDir()
	defs := filepath.Join(dir, "components.yaml")
	require.NoError(t, os.WriteFile(defs, []byte(definitions), 0o644))

	cfg := "log:\n  level: error\n" +
		"storage:\n  path: " + filepath.Join(dir, "project.db") + "\n" +
		"components:\n  definitions: " + defs + "\n"
	path := filepath.Join(dir, "salinity.yaml")
	require.NoError(t, os.WriteFile(path, []byte(cfg), 0o644))
	return &workspace{dir: dir, config: path}
}

func (w *workspace) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := NewRootCommand()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--config", w.config}, args...))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func (w *workspace) writeScene(t *testing.T, name string, components ...string) string {
	t.Helper()
	reg := component.NewRegistry()
	reg.MustRegister(
		component.Definition{Name: "Transform"},
		component.Definition{Name: "Sprite"},
		component.Definition{Name: "Ghost"},
	)
	env := entity.NewEnv(reg, nil, nil, nil)
	root := entity.NewWorld(env, "level")
	hero := entity.New(env, "hero")
	for _, c := range components {
		hero.AddComponent(c, nil, false)
	}
	root.AddEntity(hero)

	path := filepath.Join(w.dir, name)
	require.NoError(t, document.WriteFile(path, document.Build("demo", root, nil), ""))
	return path
}

func TestValidate(t *testing.T) {
	w := newWorkspace(t)
	good := w.writeScene(t, "good.json", "Transform", "Sprite")

	out, err := w.run(t, "validate", good)
	require.NoError(t, err)
	assert.Contains(t, out, "ok\t"+good)
	assert.Contains(t, out, "entities=2 components=2")

	bad := w.writeScene(t, "bad.yaml", "Ghost")
	out, err = w.run(t, "validate", good, bad)
	assert.ErrorIs(t, err, errInvalid)
	assert.Contains(t, out, `unknown component "Ghost"`)
}

func TestValidateUnreadableFile(t *testing.T) {
	w := newWorkspace(t)
	out, err := w.run(t, "validate", filepath.Join(w.dir, "missing.json"))
	assert.ErrorIs(t, err, errInvalid)
	assert.Contains(t, out, "FAIL")
}

func TestConvert(t *testing.T) {
	w := newWorkspace(t)
	src := w.writeScene(t, "scene.json", "Transform")
	outDir := filepath.Join(w.dir, "out")

	out, err := w.run(t, "convert", "--to", "cbor", "--out", outDir, src)
	require.NoError(t, err)
	dst := filepath.Join(outDir, "scene.cbor")
	assert.Contains(t, out, dst)

	converted, err := document.ReadFile(dst)
	require.NoError(t, err)
	original, err := document.ReadFile(src)
	require.NoError(t, err)
	assert.Equal(t, original.Root.Children[0].ID, converted.Root.Children[0].ID)

	_, err = w.run(t, "convert", "--to", "xml", src)
	assert.ErrorIs(t, err, document.ErrUnknownFormat)
}

func TestQuery(t *testing.T) {
	w := newWorkspace(t)
	src := w.writeScene(t, "scene.yaml", "Transform")

	out, err := w.run(t, "query", "$.root.children[*].name", src)
	require.NoError(t, err)
	var names []string
	require.NoError(t, json.Unmarshal([]byte(out), &names))
	assert.Equal(t, []string{"hero"}, names)
}

func TestStoreRoundTrip(t *testing.T) {
	w := newWorkspace(t)
	src := w.writeScene(t, "scene.json", "Transform")

	out, err := w.run(t, "store", "put", "levels/one", src)
	require.NoError(t, err)
	assert.Equal(t, "stored levels/one\n", out)

	out, err = w.run(t, "store", "put", "levels/one", src)
	require.NoError(t, err)
	assert.Equal(t, "unchanged levels/one\n", out)

	out, err = w.run(t, "store", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "levels/one")
	assert.Contains(t, out, "demo")

	exported := filepath.Join(w.dir, "exported.yaml")
	_, err = w.run(t, "store", "get", "levels/one", "-o", exported)
	require.NoError(t, err)
	doc, err := document.ReadFile(exported)
	require.NoError(t, err)
	assert.Equal(t, "hero", doc.Root.Children[0].Name)

	_, err = w.run(t, "store", "delete", "levels/one")
	require.NoError(t, err)
	_, err = w.run(t, "store", "get", "levels/one")
	assert.Error(t, err)
}

func TestBadConfig(t *testing.T) {
	w := newWorkspace(t)
	require.NoError(t, os.WriteFile(w.config, []byte("log:\n  level: loud\n"), 0o644))
	_, err := w.run(t, "store", "list")
	assert.Error(t, err)
}
