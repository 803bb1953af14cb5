package render

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func uniformNames(m *Material) []string {
	var names []string
	for name := range m.Uniforms() {
		names = append(names, name)
	}
	return names
}

func TestMaterialKeepsFirstSetOrder(t *testing.T) {
	m := NewMaterial("water", NewShader("water", "water.vs", "water.fs"))
	require.NoError(t, m.Set("a_Color", mgl32.Vec4{0, 0, 1, 1}))
	require.NoError(t, m.Set("a_WaveHeight", 0.5))
	require.NoError(t, m.Set("a_Color", mgl32.Vec4{0, 1, 0, 1}))

	assert.Equal(t, []string{"a_Color", "a_WaveHeight"}, uniformNames(m))

	v, ok := m.Get("a_Color")
	require.True(t, ok)
	assert.Equal(t, mgl32.Vec4{0, 1, 0, 1}, v)
}

func TestMaterialNormalizesValues(t *testing.T) {
	m := NewMaterial("m", nil)
	require.NoError(t, m.Set("f", 1.5))
	require.NoError(t, m.Set("i", 3))
	require.NoError(t, m.Set("b", true))

	f, _ := m.Get("f")
	i, _ := m.Get("i")
	b, _ := m.Get("b")
	assert.Equal(t, float32(1.5), f)
	assert.Equal(t, int32(3), i)
	assert.Equal(t, int32(1), b)
}

func TestMaterialRejectsUnsupportedValues(t *testing.T) {
	m := NewMaterial("m", nil)
	tests := []struct {
		name  string
		value any
	}{
		{name: "string", value: "red"},
		{name: "nil_texture", value: (*Texture)(nil)},
		{name: "slice", value: []float32{1, 2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := m.Set("u", tt.value)
			assert.ErrorIs(t, err, ErrUnsupportedUniform)
		})
	}
	assert.Empty(t, uniformNames(m))
}

func TestMaterialApply(t *testing.T) {
	shader := NewShader("lit", "lit.vs", "lit.fs")
	m := NewMaterial("lit", shader)
	require.NoError(t, m.Set("a_Color", mgl32.Vec4{1, 0, 0, 1}))
	require.NoError(t, m.Set("a_AmbientPower", 0.2))

	rec := NewRecorder()
	assert.ErrorIs(t, m.Apply(rec), ErrNoShaderBound)

	require.NoError(t, rec.BindShader(shader))
	require.NoError(t, m.Apply(rec))
	assert.Equal(t, 2, rec.Count(OpSetUniform))
	assert.Equal(t, []any{float32(0.2)}, rec.Uniforms("a_AmbientPower"))
}

func TestMaterialNilID(t *testing.T) {
	var m *Material
	assert.Zero(t, m.ID())
}
