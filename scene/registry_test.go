package scene

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/milk9111/twobd/ecs"
	"github.com/milk9111/twobd/ecs/component"
	"github.com/milk9111/twobd/render"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmptyRegistryHasNoCurrent(t *testing.T) {
	r := NewRegistry(nil)
	_, err := r.Current()
	assert.ErrorIs(t, err, ErrNoCurrentScene)
	_, err = r.Next()
	assert.ErrorIs(t, err, ErrNoCurrentScene)
	assert.Zero(t, r.Len())
}

func TestSetCurrentBeforeRegister(t *testing.T) {
	r := NewRegistry(nil)
	assert.ErrorIs(t, r.SetCurrent("X"), ErrUnknownScene)

	x, err := r.Register("X")
	require.NoError(t, err)
	require.NoError(t, r.SetCurrent("X"))

	cur, err := r.Current()
	require.NoError(t, err)
	assert.Same(t, x, cur)
	assert.Same(t, x.World, cur.World)
}

func TestFirstRegisteredIsCurrent(t *testing.T) {
	r := NewRegistry(nil)
	_, err := r.Register("Test")
	require.NoError(t, err)
	_, err = r.Register("Test2")
	require.NoError(t, err)

	assert.Equal(t, "Test", r.CurrentName())
	assert.Equal(t, []string{"Test", "Test2"}, r.Names())
}

func TestDuplicateScene(t *testing.T) {
	r := NewRegistry(nil)
	_, err := r.Register("Test")
	require.NoError(t, err)
	_, err = r.Register("Test")
	assert.ErrorIs(t, err, ErrDuplicateScene)
	assert.Equal(t, 1, r.Len())
}

func TestSwitchingKeepsOtherScenes(t *testing.T) {
	r := NewRegistry(nil)
	a, _ := r.Register("a")
	_, _ = r.Register("b")

	e := ecs.CreateEntity(a.World)
	_, err := ecs.Attach(a.World, e, component.TransformComponent.Kind())
	require.NoError(t, err)

	next, err := r.Next()
	require.NoError(t, err)
	assert.Equal(t, "b", next.Name)

	next, err = r.Next()
	require.NoError(t, err)
	assert.Same(t, a, next)
	assert.True(t, ecs.Has(a.World, e, component.TransformComponent.Kind()))
}

func TestReplaceTearsDownOld(t *testing.T) {
	r := NewRegistry(nil)
	old, _ := r.Register("level")

	mesh := render.NewMesh("cube", render.Cube())
	e := ecs.CreateEntity(old.World)
	require.NoError(t, ecs.Add(old.World, e, component.RenderableComponent.Kind(), &component.Renderable{
		Mesh:     mesh.Retain(),
		Material: render.NewMaterial("m", nil),
	}))
	require.Equal(t, 2, mesh.Refs())

	fresh := New("level")
	require.NoError(t, r.Replace(fresh))
	assert.Equal(t, 1, mesh.Refs())

	got, ok := r.Get("level")
	require.True(t, ok)
	assert.Same(t, fresh, got)

	assert.ErrorIs(t, r.Replace(New("missing")), ErrUnknownScene)
}

func TestTeardownReleasesMeshes(t *testing.T) {
	sc := New("s")
	mesh := render.NewMesh("plane", render.SubdividedPlane(2, 2, false))
	sky := render.NewMesh("sky", render.InvertedCube())
	sc.Skybox = &Skybox{Mesh: sky}
	sc.Camera = render.NewPerspective(45, 1, 0.1, 100)

	for i := 0; i < 3; i++ {
		e := ecs.CreateEntity(sc.World)
		tr := component.NewTransform(mgl32.Vec3{float32(i), 0, 0})
		require.NoError(t, ecs.Add(sc.World, e, component.TransformComponent.Kind(), &tr))
		require.NoError(t, ecs.Add(sc.World, e, component.RenderableComponent.Kind(), &component.Renderable{Mesh: mesh.Retain()}))
	}
	mesh.Release()
	require.Equal(t, 3, mesh.Refs())

	closed := false
	sc.Systems = ecs.NewScheduler(closer{&closed})

	sc.Teardown()
	assert.True(t, mesh.Released())
	assert.True(t, sky.Released())
	assert.Nil(t, sc.Skybox)
	assert.Nil(t, sc.Systems)
	assert.True(t, closed)
	assert.Empty(t, ecs.Entities(sc.World))
}

func TestDestroyReleasesMesh(t *testing.T) {
	sc := New("s")
	mesh := render.NewMesh("cube", render.Cube())
	e := ecs.CreateEntity(sc.World)
	require.NoError(t, ecs.Add(sc.World, e, component.RenderableComponent.Kind(), &component.Renderable{Mesh: mesh.Retain()}))

	assert.True(t, sc.Destroy(e))
	assert.Equal(t, 1, mesh.Refs())
	assert.False(t, sc.Destroy(e))
}

type closer struct{ closed *bool }

func (c closer) Update(ecs.Tick) error {
	return nil
}

func (c closer) Close() {
	*c.closed = true
}
