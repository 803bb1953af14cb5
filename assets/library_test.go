package assets

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/milk9111/twobd/obj"
	"github.com/milk9111/twobd/render"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestModelFromEmbedded(t *testing.T) {
	lib := NewLibrary(nil, "")

	m, err := lib.Model("assets/models/pyramid.obj", obj.Options{})
	require.NoError(t, err)
	assert.Positive(t, m.Data().TriangleCount())
	assert.Equal(t, 2, m.Refs())

	again, err := lib.Model("models/pyramid.obj", obj.Options{})
	require.NoError(t, err)
	assert.Same(t, m, again)
	assert.Equal(t, 3, m.Refs())
	assert.Equal(t, 1, lib.Meshes())

	m.Release()
	again.Release()
	lib.Close()
	assert.True(t, m.Released())
	assert.Zero(t, lib.Meshes())
}

func TestModelPrefersDisk(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "models"), 0o755))
	quad := "v 0 0 0\nv 1 0 0\nv 1 1 0\nv 0 1 0\nf 1 2 3\nf 1 3 4\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "models", "pyramid.obj"), []byte(quad), 0o644))

	lib := NewLibrary(nil, dir)
	defer lib.Close()

	m, err := lib.Model("models/pyramid.obj", obj.Options{})
	require.NoError(t, err)
	defer m.Release()
	assert.Equal(t, 2, m.Data().TriangleCount())

	// not on disk, so the embedded spider is used
	s, err := lib.Model("models/spider.obj", obj.Options{})
	require.NoError(t, err)
	defer s.Release()
	assert.Positive(t, s.VertexCount())
}

func TestModelMissing(t *testing.T) {
	lib := NewLibrary(nil, t.TempDir())
	_, err := lib.Model("models/teapot.obj", obj.Options{})
	assert.ErrorIs(t, err, obj.ErrFileNotFound)
	assert.Zero(t, lib.Meshes())
}

func TestEvictKeepsHeldMeshesAlive(t *testing.T) {
	lib := NewLibrary(nil, "")
	defer lib.Close()

	m, err := lib.Model("models/pyramid.obj", obj.Options{})
	require.NoError(t, err)
	lib.Evict("models/pyramid.obj")
	assert.Zero(t, lib.Meshes())
	assert.False(t, m.Released())
	assert.Equal(t, 1, m.Refs())

	fresh, err := lib.Model("models/pyramid.obj", obj.Options{})
	require.NoError(t, err)
	assert.NotSame(t, m, fresh)
	m.Release()
	fresh.Release()
}

func TestPrimitivesShadersTextures(t *testing.T) {
	lib := NewLibrary(nil, "")
	defer lib.Close()

	calls := 0
	build := func() render.MeshData { calls++; return render.Cube() }
	a := lib.Primitive("cube", build)
	b := lib.Primitive("cube", build)
	assert.Same(t, a, b)
	assert.Equal(t, 1, calls)
	a.Release()
	b.Release()

	s := lib.Shader("lit", "lit.vs", "lit.fs")
	assert.Same(t, s, lib.Shader("lit", "lit.vs", "lit.fs"))
	assert.Equal(t, "lit.vs", s.Vertex)

	changed := lib.Shader("lit", "other.vs", "other.fs")
	assert.NotSame(t, s, changed)
	assert.NotEqual(t, s.ID(), changed.ID())
	assert.Equal(t, "other.fs", changed.Fragment)

	tex := lib.Texture("sky", render.TextureCube, "a", "b", "c", "d", "e", "f")
	assert.Same(t, tex, lib.Texture("sky", render.TextureCube, "a", "b", "c", "d", "e", "f"))
	assert.Len(t, tex.Sources, 6)
	flat := lib.Texture("sky", render.Texture2D, "a")
	assert.NotSame(t, tex, flat)
	assert.Equal(t, render.Texture2D, flat.Kind)
}

func TestLoadFile(t *testing.T) {
	src, err := LoadFile("assets/shaders/lit.vs.glsl")
	require.NoError(t, err)
	assert.Contains(t, string(src), "a_ModelViewProjection")
}
