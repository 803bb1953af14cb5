package system

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"sort"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/milk9111/twobd/ecs"
	"github.com/milk9111/twobd/ecs/component"
	"github.com/milk9111/twobd/render"
	"github.com/milk9111/twobd/scene"
)

var ErrNoCamera = errors.New("system: no camera for view")

// DrawCall is one entity's draw, gathered before sorting.
type DrawCall struct {
	Entity    ecs.Entity
	Mesh      *render.Mesh
	Material  *render.Material
	Transform *component.Transform
}

func (c DrawCall) transparent() bool {
	return c.Material.Transparent
}

var identity = component.NewTransform(mgl32.Vec3{})

// CollectDrawCalls gathers every renderable whose mesh, material and shader
// are all set. It also returns how many renderables were left out.
func CollectDrawCalls(w *ecs.World) ([]DrawCall, int) {
	var calls []DrawCall
	skipped := 0
	ecs.ForEach(w, component.RenderableComponent.Kind(), func(e ecs.Entity, r *component.Renderable) {
		if !r.Drawable() || r.Material.Shader() == nil {
			skipped++
			return
		}
		tr, ok := ecs.Lookup(w, e, component.TransformComponent.Kind())
		if !ok {
			tr = &identity
		}
		calls = append(calls, DrawCall{Entity: e, Mesh: r.Mesh, Material: r.Material, Transform: tr})
	})
	return calls, skipped
}

// SortDrawCalls orders opaque before transparent, then by shader, then by
// material. Equal keys keep their relative order.
func SortDrawCalls(calls []DrawCall) {
	sort.SliceStable(calls, func(i, j int) bool {
		a, b := calls[i], calls[j]
		if a.transparent() != b.transparent() {
			return !a.transparent()
		}
		if sa, sb := a.Material.Shader().ID(), b.Material.Shader().ID(); sa != sb {
			return sa < sb
		}
		return a.Material.ID() < b.Material.ID()
	})
}

// View is one viewport onto a scene. A nil Camera uses the scene's.
type View struct {
	Camera      *render.Camera
	Rect        image.Rectangle
	Border      int
	BorderColor color.Color
	ClearColor  color.Color
	Wireframe   bool
}

type FrameStats struct {
	DrawCalls       int
	Skipped         int
	ShaderBinds     int
	MaterialApplies int
	Skybox          bool
}

// Add accumulates o into s.
func (s *FrameStats) Add(o FrameStats) {
	s.DrawCalls += o.DrawCalls
	s.Skipped += o.Skipped
	s.ShaderBinds += o.ShaderBinds
	s.MaterialApplies += o.MaterialApplies
	s.Skybox = s.Skybox || o.Skybox
}

type RenderSystem struct{}

func NewRenderSystem() *RenderSystem {
	return &RenderSystem{}
}

// DrawViews draws sc once per view and sums the stats.
func (r *RenderSystem) DrawViews(dev render.Device, sc *scene.Scene, views []View, elapsed float64) (FrameStats, error) {
	var total FrameStats
	for _, v := range views {
		stats, err := r.Draw(dev, sc, v, elapsed)
		total.Add(stats)
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// Draw renders sc into view. The device's raster state is the same on
// return as on entry.
func (r *RenderSystem) Draw(dev render.Device, sc *scene.Scene, view View, elapsed float64) (FrameStats, error) {
	var stats FrameStats
	if sc == nil {
		return stats, scene.ErrNoCurrentScene
	}
	cam := view.Camera
	if cam == nil {
		cam = sc.Camera
	}
	if cam == nil {
		return stats, fmt.Errorf("scene %s: %w", sc.Name, ErrNoCamera)
	}

	inner := view.Rect
	if view.Border > 0 {
		if view.BorderColor != nil {
			dev.SetViewport(view.Rect)
			dev.Clear(view.BorderColor)
		}
		inner = view.Rect.Inset(view.Border)
	}
	dev.SetViewport(inner)
	if view.ClearColor != nil {
		dev.Clear(view.ClearColor)
	}
	if inner.Dy() > 0 {
		cam.SetAspect(float32(inner.Dx()) / float32(inner.Dy()))
	}

	entry := dev.RasterState()
	if entry.Wireframe != view.Wireframe {
		s := entry
		s.Wireframe = view.Wireframe
		dev.SetRasterState(s)
		defer dev.SetRasterState(entry)
	}

	calls, skipped := CollectDrawCalls(sc.World)
	stats.Skipped = skipped
	SortDrawCalls(calls)

	viewProj := cam.ViewProjection()
	var shader *render.Shader
	var material *render.Material
	for _, c := range calls {
		if err := c.Transform.Validate(); err != nil {
			return stats, fmt.Errorf("draw %s: %w", c.Entity, err)
		}
		if s := c.Material.Shader(); s != shader {
			if err := bindShader(dev, s, cam, elapsed); err != nil {
				return stats, err
			}
			shader = s
			stats.ShaderBinds++
		}
		if c.Material != material {
			if err := c.Material.Apply(dev); err != nil {
				return stats, err
			}
			material = c.Material
			stats.MaterialApplies++
		}

		model := c.Transform.WorldMatrix()
		if err := setUniforms(dev,
			render.UniformMVP, viewProj.Mul4(model),
			render.UniformModel, model,
			render.UniformNormal, c.Transform.NormalMatrix(),
		); err != nil {
			return stats, err
		}
		if err := dev.DrawMesh(c.Mesh); err != nil {
			return stats, fmt.Errorf("draw %s: %w", c.Entity, err)
		}
		stats.DrawCalls++
	}

	if sc.Skybox != nil && sc.Skybox.Mesh != nil && sc.Skybox.Shader != nil {
		if err := drawSkybox(dev, sc.Skybox, cam, elapsed); err != nil {
			return stats, err
		}
		stats.Skybox = true
		stats.ShaderBinds++
	}
	return stats, nil
}

func bindShader(dev render.Device, s *render.Shader, cam *render.Camera, elapsed float64) error {
	if err := dev.BindShader(s); err != nil {
		return fmt.Errorf("bind %s: %w", s.Name, err)
	}
	return setUniforms(dev,
		render.UniformCameraPos, cam.Position,
		render.UniformTime, float32(elapsed),
	)
}

// drawSkybox draws the box with culling off, depth LEQUAL and depth writes
// off, then puts the previous raster state back.
func drawSkybox(dev render.Device, sky *scene.Skybox, cam *render.Camera, elapsed float64) error {
	prev := dev.RasterState()
	s := prev
	s.Cull = false
	s.DepthTest = true
	s.DepthFunc = render.DepthLessEqual
	s.DepthWrite = false
	dev.SetRasterState(s)
	defer dev.SetRasterState(prev)

	if err := bindShader(dev, sky.Shader, cam, elapsed); err != nil {
		return err
	}
	// Rotation only, so the box stays centred on the eye.
	view := cam.View().Mat3().Mat4()
	if err := setUniforms(dev,
		render.UniformView, view,
		render.UniformProjection, cam.Projection,
	); err != nil {
		return err
	}
	if sky.Texture != nil {
		if err := dev.SetUniform(render.UniformSkyboxImage, sky.Texture); err != nil {
			return err
		}
	}
	if err := dev.DrawMesh(sky.Mesh); err != nil {
		return fmt.Errorf("draw skybox: %w", err)
	}
	return nil
}

func setUniforms(dev render.Device, kv ...any) error {
	for i := 0; i+1 < len(kv); i += 2 {
		name := kv[i].(string)
		if err := dev.SetUniform(name, kv[i+1]); err != nil {
			return err
		}
	}
	return nil
}
