package system

import (
	"image"
	"image/color"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/milk9111/twobd/ecs"
	"github.com/milk9111/twobd/ecs/component"
	"github.com/milk9111/twobd/render"
	"github.com/milk9111/twobd/scene"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestScene() *scene.Scene {
	sc := scene.New("test")
	sc.Camera = render.NewPerspective(45, 1, 0.1, 100)
	sc.Camera.Position = mgl32.Vec3{0, 0, 10}
	return sc
}

func addDrawable(t *testing.T, sc *scene.Scene, mesh *render.Mesh, mat *render.Material) ecs.Entity {
	t.Helper()
	e := addTransform(t, sc.World, mgl32.Vec3{})
	require.NoError(t, ecs.Add(sc.World, e, component.RenderableComponent.Kind(), &component.Renderable{
		Mesh:     mesh,
		Material: mat,
	}))
	return e
}

func testView() View {
	return View{Rect: image.Rect(0, 0, 64, 64)}
}

func TestRenderSkipsIncompleteRenderables(t *testing.T) {
	sc := newTestScene()
	shader := render.NewShader("lit", "", "")
	mesh := render.NewMesh("cube", render.Cube())
	mat := render.NewMaterial("m", shader)

	transformOnly := addTransform(t, sc.World, mgl32.Vec3{})
	noMesh := addDrawable(t, sc, nil, mat)
	noMaterial := addDrawable(t, sc, mesh, nil)
	noShader := addDrawable(t, sc, mesh, render.NewMaterial("bare", nil))
	drawn := addDrawable(t, sc, mesh, mat)

	calls, skipped := CollectDrawCalls(sc.World)
	require.Len(t, calls, 1)
	assert.Equal(t, drawn, calls[0].Entity)
	assert.Equal(t, 3, skipped)
	for _, c := range calls {
		assert.NotContains(t, []ecs.Entity{transformOnly, noMesh, noMaterial, noShader}, c.Entity)
	}

	rec := render.NewRecorder()
	stats, err := NewRenderSystem().Draw(rec, sc, testView(), 0)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.DrawCalls)
	assert.Equal(t, 3, stats.Skipped)
	assert.Equal(t, []*render.Mesh{mesh}, rec.Draws())
}

func TestSortDrawCalls(t *testing.T) {
	s1 := render.NewShader("s1", "", "")
	s2 := render.NewShader("s2", "", "")
	a := render.NewMaterial("a", s1)
	b := render.NewMaterial("b", s2)
	c := render.NewMaterial("c", s1)
	glass := render.NewMaterial("glass", s1)
	glass.Transparent = true

	calls := []DrawCall{
		{Entity: 1, Material: glass},
		{Entity: 2, Material: b},
		{Entity: 3, Material: a},
		{Entity: 4, Material: c},
		{Entity: 5, Material: a},
		{Entity: 6, Material: b},
	}
	SortDrawCalls(calls)

	order := func() []ecs.Entity {
		out := make([]ecs.Entity, len(calls))
		for i, c := range calls {
			out[i] = c.Entity
		}
		return out
	}
	want := []ecs.Entity{3, 5, 4, 2, 6, 1}
	assert.Equal(t, want, order())

	SortDrawCalls(calls)
	assert.Equal(t, want, order(), "sorting twice must not reorder")
}

func TestRenderMinimalRebinds(t *testing.T) {
	sc := newTestScene()
	s1 := render.NewShader("s1", "", "")
	s2 := render.NewShader("s2", "", "")
	a := render.NewMaterial("a", s1)
	require.NoError(t, a.Set("a_Color", mgl32.Vec4{1, 0, 0, 1}))
	b := render.NewMaterial("b", s2)
	glass := render.NewMaterial("glass", s1)
	glass.Transparent = true
	mesh := render.NewMesh("cube", render.Cube())

	addDrawable(t, sc, mesh, glass)
	addDrawable(t, sc, mesh, a)
	addDrawable(t, sc, mesh, b)
	addDrawable(t, sc, mesh, a)

	rec := render.NewRecorder()
	stats, err := NewRenderSystem().Draw(rec, sc, testView(), 1.5)
	require.NoError(t, err)

	assert.Equal(t, 4, stats.DrawCalls)
	assert.Equal(t, 3, stats.ShaderBinds)
	assert.Equal(t, 3, stats.MaterialApplies)
	assert.Equal(t, 3, rec.Count(render.OpBindShader))
	assert.Len(t, rec.Uniforms(render.UniformTime), 3)
	assert.Equal(t, float32(1.5), rec.Uniforms(render.UniformTime)[0])
	assert.Len(t, rec.Uniforms(render.UniformMVP), 4)
	assert.Len(t, rec.Uniforms(render.UniformNormal), 4)
	assert.Len(t, rec.Uniforms("a_Color"), 1)

	var binds []*render.Shader
	for _, c := range rec.Calls {
		if c.Op == render.OpBindShader {
			binds = append(binds, c.Shader)
		}
	}
	assert.Equal(t, []*render.Shader{s1, s2, s1}, binds)
}

func TestRenderUploadsMatrices(t *testing.T) {
	sc := newTestScene()
	shader := render.NewShader("lit", "", "")
	mesh := render.NewMesh("cube", render.Cube())
	e := addDrawable(t, sc, mesh, render.NewMaterial("m", shader))

	tr, _ := ecs.Get(sc.World, e, component.TransformComponent.Kind())
	tr.Position = mgl32.Vec3{1, 2, 3}

	rec := render.NewRecorder()
	_, err := NewRenderSystem().Draw(rec, sc, testView(), 0)
	require.NoError(t, err)

	model := rec.Uniforms(render.UniformModel)
	require.Len(t, model, 1)
	assert.Equal(t, mgl32.Translate3D(1, 2, 3), model[0])
	assert.Equal(t, []any{sc.Camera.Position}, rec.Uniforms(render.UniformCameraPos))
	assert.Equal(t, sc.Camera.ViewProjection().Mul4(mgl32.Translate3D(1, 2, 3)), rec.Uniforms(render.UniformMVP)[0])
}

func TestRenderRejectsDegenerateTransform(t *testing.T) {
	sc := newTestScene()
	mesh := render.NewMesh("cube", render.Cube())
	e := addDrawable(t, sc, mesh, render.NewMaterial("m", render.NewShader("s", "", "")))
	tr, _ := ecs.Get(sc.World, e, component.TransformComponent.Kind())
	tr.Scale = mgl32.Vec3{1, 0, 1}

	_, err := NewRenderSystem().Draw(render.NewRecorder(), sc, testView(), 0)
	assert.ErrorIs(t, err, component.ErrDegenerateScale)
}

func TestRenderSkyboxSharedShaderCountsBind(t *testing.T) {
	sc := newTestScene()
	shader := render.NewShader("lit", "", "")
	addDrawable(t, sc, render.NewMesh("cube", render.Cube()), render.NewMaterial("m", shader))
	sc.Skybox = &scene.Skybox{Mesh: render.NewMesh("sky", render.InvertedCube()), Shader: shader}

	rec := render.NewRecorder()
	stats, err := NewRenderSystem().Draw(rec, sc, testView(), 0)
	require.NoError(t, err)
	assert.Equal(t, 2, rec.Count(render.OpBindShader))
	assert.Equal(t, 2, stats.ShaderBinds)
}

func TestRenderSkyboxLastWithStateRestore(t *testing.T) {
	sc := newTestScene()
	mesh := render.NewMesh("cube", render.Cube())
	addDrawable(t, sc, mesh, render.NewMaterial("m", render.NewShader("lit", "", "")))

	skyShader := render.NewShader("cubemap", "", "")
	skyTex := &render.Texture{Name: "sky", Kind: render.TextureCube}
	sc.Skybox = &scene.Skybox{Mesh: render.NewMesh("sky", render.InvertedCube()), Shader: skyShader, Texture: skyTex}

	rec := render.NewRecorder()
	entry := rec.RasterState()
	stats, err := NewRenderSystem().Draw(rec, sc, testView(), 0)
	require.NoError(t, err)
	assert.True(t, stats.Skybox)
	assert.Equal(t, 2, stats.ShaderBinds)
	assert.Equal(t, rec.Count(render.OpBindShader), stats.ShaderBinds)

	draws := rec.Draws()
	require.Len(t, draws, 2)
	assert.Same(t, sc.Skybox.Mesh, draws[1])

	var skyDraw render.Call
	for _, c := range rec.Calls {
		if c.Op == render.OpDrawMesh && c.Mesh == sc.Skybox.Mesh {
			skyDraw = c
		}
	}
	assert.False(t, skyDraw.State.Cull)
	assert.False(t, skyDraw.State.DepthWrite)
	assert.Equal(t, render.DepthLessEqual, skyDraw.State.DepthFunc)

	assert.Equal(t, entry, rec.RasterState())
	assert.Equal(t, []any{skyTex}, rec.Uniforms(render.UniformSkyboxImage))

	view := rec.Uniforms(render.UniformView)
	require.Len(t, view, 1)
	assert.Equal(t, float32(0), view[0].(mgl32.Mat4).Col(3).Vec3().Len())
}

func TestRenderViewportsAndWireframe(t *testing.T) {
	sc := newTestScene()
	addDrawable(t, sc, render.NewMesh("cube", render.Cube()), render.NewMaterial("m", render.NewShader("s", "", "")))

	top := render.NewOrtho(10, 1, 0.1, 100)
	views := []View{
		{Rect: image.Rect(0, 0, 32, 32), Border: 2, BorderColor: color.White, ClearColor: color.Black},
		{Camera: top, Rect: image.Rect(32, 0, 64, 32), Wireframe: true},
	}

	rec := render.NewRecorder()
	stats, err := NewRenderSystem().DrawViews(rec, sc, views, 0)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.DrawCalls)

	var rects []image.Rectangle
	for _, c := range rec.Calls {
		if c.Op == render.OpSetViewport {
			rects = append(rects, c.Rect)
		}
	}
	assert.Equal(t, []image.Rectangle{
		image.Rect(0, 0, 32, 32),
		image.Rect(2, 2, 30, 30),
		image.Rect(32, 0, 64, 32),
	}, rects)
	assert.Equal(t, 2, rec.Count(render.OpClear))

	draws := 0
	for _, c := range rec.Calls {
		if c.Op == render.OpDrawMesh {
			assert.Equal(t, draws == 1, c.State.Wireframe)
			draws++
		}
	}
	assert.False(t, rec.RasterState().Wireframe)
}

func TestRenderErrors(t *testing.T) {
	r := NewRenderSystem()
	_, err := r.Draw(render.NewRecorder(), nil, testView(), 0)
	assert.ErrorIs(t, err, scene.ErrNoCurrentScene)

	_, err = r.Draw(render.NewRecorder(), scene.New("nocam"), testView(), 0)
	assert.ErrorIs(t, err, ErrNoCamera)

	sc := newTestScene()
	mesh := render.NewMesh("gone", render.Cube())
	addDrawable(t, sc, mesh, render.NewMaterial("m", render.NewShader("s", "", "")))
	mesh.Release()
	_, err = r.Draw(render.NewRecorder(), sc, testView(), 0)
	assert.ErrorIs(t, err, render.ErrMeshReleased)
}
