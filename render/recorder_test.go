package render

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorderDrawRequiresShader(t *testing.T) {
	rec := NewRecorder()
	m := NewMesh("tri", MeshData{Vertices: make([]Vertex, 3)})
	assert.ErrorIs(t, rec.DrawMesh(m), ErrNoShaderBound)
	assert.ErrorIs(t, rec.SetUniform("a_Time", float32(1)), ErrNoShaderBound)
}

func TestRecorderReleasesUploadedMeshes(t *testing.T) {
	rec := NewRecorder()
	require.NoError(t, rec.BindShader(NewShader("s", "", "")))

	m := NewMesh("tri", MeshData{Vertices: make([]Vertex, 3)})
	require.NoError(t, rec.DrawMesh(m))
	require.NoError(t, rec.DrawMesh(m))
	assert.Equal(t, 1, rec.Uploaded())
	assert.Equal(t, []*Mesh{m, m}, rec.Draws())

	m.Release()
	assert.Equal(t, 0, rec.Uploaded())
	assert.Equal(t, 1, rec.Count(OpReleaseMesh))
	assert.ErrorIs(t, rec.DrawMesh(m), ErrMeshReleased)
}

func TestRecorderTracksState(t *testing.T) {
	rec := NewRecorder()
	assert.Equal(t, DefaultRasterState(), rec.RasterState())

	s := DefaultRasterState()
	s.Wireframe = true
	rec.SetRasterState(s)
	rec.SetViewport(image.Rect(0, 0, 10, 10))
	rec.Clear(color.Black)

	assert.True(t, rec.RasterState().Wireframe)
	require.Len(t, rec.Calls, 3)
	assert.Equal(t, image.Rect(0, 0, 10, 10), rec.Calls[2].Rect)

	rec.Reset()
	assert.Empty(t, rec.Calls)
	assert.True(t, rec.RasterState().Wireframe)
}
