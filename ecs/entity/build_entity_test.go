package entity

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/milk9111/twobd/ecs"
	"github.com/milk9111/twobd/ecs/component"
	"github.com/milk9111/twobd/ecs/system"
	"github.com/milk9111/twobd/render"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newContext(t *testing.T) (*BuildContext, *render.Mesh) {
	t.Helper()
	ctx := NewBuildContext(nil)
	mesh := render.NewMesh("cube", render.Cube())
	ctx.Meshes["cube"] = mesh
	ctx.Materials["lit"] = render.NewMaterial("lit", render.NewShader("lit", "vs", "fs"))
	return ctx, mesh
}

func TestBuildEntityInline(t *testing.T) {
	ctx, mesh := newContext(t)
	w := ecs.NewWorld()

	e, err := BuildEntity(w, map[string]any{
		"name": "box",
		"transform": map[string]any{
			"position": []any{1, 2, 3},
			"rotation": []any{0, 0, 90},
		},
		"renderable": map[string]any{"mesh": "cube", "material": "lit"},
		"behaviour": map[string]any{
			"type":     "motion",
			"velocity": []any{1, 0, 0},
		},
		"body": map[string]any{"width": 2, "static": true},
	}, ctx)
	require.NoError(t, err)

	name, err := ecs.Get(w, e, component.NameComponent.Kind())
	require.NoError(t, err)
	assert.Equal(t, "box", name.Value)

	tr, err := ecs.Get(w, e, component.TransformComponent.Kind())
	require.NoError(t, err)
	assert.Equal(t, mgl32.Vec3{1, 2, 3}, tr.Position)
	assert.Equal(t, mgl32.Vec3{0, 0, 90}, tr.Rotation)
	assert.Equal(t, mgl32.Vec3{1, 1, 1}, tr.Scale)

	r, err := ecs.Get(w, e, component.RenderableComponent.Kind())
	require.NoError(t, err)
	assert.Same(t, mesh, r.Mesh)
	assert.Equal(t, 2, mesh.Refs())

	ub, err := ecs.Get(w, e, system.UpdateBehaviourComponent.Kind())
	require.NoError(t, err)
	assert.IsType(t, &system.Motion{}, ub.Behaviour)

	rb, err := ecs.Get(w, e, component.RigidBodyComponent.Kind())
	require.NoError(t, err)
	assert.Equal(t, 2.0, rb.Width)
	assert.True(t, rb.Static)
	assert.Equal(t, 1.0, rb.Mass)
}

func TestBuildEntityFailuresLeaveNothing(t *testing.T) {
	tests := []struct {
		name       string
		components map[string]any
		want       error
	}{
		{
			name:       "unknown component",
			components: map[string]any{"sprite": map[string]any{}},
			want:       ErrUnknownComponent,
		},
		{
			name: "unknown mesh",
			components: map[string]any{
				"renderable": map[string]any{"mesh": "sphere", "material": "lit"},
			},
			want: ErrUnknownReference,
		},
		{
			name: "unknown material after mesh",
			components: map[string]any{
				"renderable": map[string]any{"mesh": "cube", "material": "gold"},
			},
			want: ErrUnknownReference,
		},
		{
			name: "bad behaviour",
			components: map[string]any{
				"renderable": map[string]any{"mesh": "cube", "material": "lit"},
				"behaviour":  map[string]any{"type": "teleport"},
			},
			want: ErrUnknownBehaviour,
		},
		{
			name: "zero scale",
			components: map[string]any{
				"transform": map[string]any{"scale": []any{1, 0, 1}},
			},
			want: component.ErrDegenerateScale,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, mesh := newContext(t)
			w := ecs.NewWorld()

			_, err := BuildEntity(w, tt.components, ctx)
			assert.ErrorIs(t, err, tt.want)
			assert.Empty(t, ecs.Entities(w))
			assert.Equal(t, 1, mesh.Refs())
		})
	}
}

func TestBuildPrefabMergesOverrides(t *testing.T) {
	ctx, _ := newContext(t)
	w := ecs.NewWorld()

	e, err := BuildPrefab(w, "crate", map[string]any{
		"transform": map[string]any{"position": []any{5, 5, 0}},
	}, ctx)
	require.NoError(t, err)

	name, _ := ecs.Get(w, e, component.NameComponent.Kind())
	assert.Equal(t, "crate", name.Value)
	tr, _ := ecs.Get(w, e, component.TransformComponent.Kind())
	assert.Equal(t, mgl32.Vec3{5, 5, 0}, tr.Position)
	rb, _ := ecs.Get(w, e, component.RigidBodyComponent.Kind())
	assert.Equal(t, 2.0, rb.Mass)
	assert.Equal(t, 0.6, rb.Friction)

	_, err = BuildPrefab(w, "nothing-here", nil, ctx)
	assert.ErrorContains(t, err, `build entity: load "nothing-here"`)
}

func TestScriptsCompileOnceAndKeepOwnState(t *testing.T) {
	ctx, _ := newContext(t)
	w := ecs.NewWorld()

	script := map[string]any{"type": "script", "script": "patrol"}
	a, err := BuildEntity(w, map[string]any{"transform": map[string]any{}, "behaviour": script}, ctx)
	require.NoError(t, err)
	b, err := BuildEntity(w, map[string]any{
		"transform": map[string]any{"position": []any{3, 0, 0}},
		"behaviour": script,
	}, ctx)
	require.NoError(t, err)
	assert.Len(t, ctx.scripts, 1)

	require.NoError(t, system.NewUpdateSystem().Update(ecs.Tick{World: w, Delta: 0.5}))

	ta, _ := ecs.Get(w, a, component.TransformComponent.Kind())
	tb, _ := ecs.Get(w, b, component.TransformComponent.Kind())
	assert.InDelta(t, 1, ta.Position.X(), 1e-5)
	assert.InDelta(t, 3, tb.Position.X(), 1e-5)

	// b hit the wall and turned around, a did not
	require.NoError(t, system.NewUpdateSystem().Update(ecs.Tick{World: w, Delta: 0.5}))
	assert.InDelta(t, 2, ta.Position.X(), 1e-5)
	assert.InDelta(t, 2, tb.Position.X(), 1e-5)

	_, err = BuildEntity(w, map[string]any{
		"transform": map[string]any{},
		"behaviour": map[string]any{"type": "script", "script": "missing"},
	}, ctx)
	assert.ErrorContains(t, err, `load script "missing"`)
}

func TestKeyMoveDefaults(t *testing.T) {
	ctx, _ := newContext(t)
	w := ecs.NewWorld()
	e, err := BuildEntity(w, map[string]any{
		"transform": map[string]any{},
		"behaviour": map[string]any{"type": "key_move"},
	}, ctx)
	require.NoError(t, err)

	ub, _ := ecs.Get(w, e, system.UpdateBehaviourComponent.Kind())
	assert.Equal(t, &system.KeyMove{Speed: 2, TurnSpeed: 90}, ub.Behaviour)
}

func TestNames(t *testing.T) {
	assert.Equal(t, []string{"behaviour", "body", "name", "renderable", "transform"}, Names())
}
