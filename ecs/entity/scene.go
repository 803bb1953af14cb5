package entity

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/milk9111/twobd/assets"
	"github.com/milk9111/twobd/ecs"
	"github.com/milk9111/twobd/ecs/system"
	"github.com/milk9111/twobd/levels"
	"github.com/milk9111/twobd/obj"
	"github.com/milk9111/twobd/render"
	"github.com/milk9111/twobd/scene"
	"go.uber.org/zap"
)

type BuildOptions struct {
	Log     *zap.Logger
	Aspect  float32
	Gravity float64
	Seed    uint64
}

// BuildScene turns a level into a ready scene: resources from lib, one
// entity per level entry, and an update-then-physics scheduler.
func BuildScene(lvl *levels.Level, lib *assets.Library, opts BuildOptions) (*scene.Scene, error) {
	if opts.Log == nil {
		opts.Log = zap.NewNop()
	}
	if opts.Aspect <= 0 {
		opts.Aspect = 1
	}

	sc := scene.New(lvl.Name)
	ctx := NewBuildContext(opts.Log)
	ctx.Seed = opts.Seed
	defer func() {
		for _, m := range ctx.Meshes {
			m.Release()
		}
	}()

	if err := buildScene(sc, lvl, lib, ctx, opts); err != nil {
		sc.Teardown()
		return nil, fmt.Errorf("entity: scene %s: %w", lvl.Name, err)
	}

	opts.Log.Debug("built scene",
		zap.String("scene", sc.Name),
		zap.Int("entities", len(ecs.Entities(sc.World))),
		zap.Int("cameras", len(sc.Cameras)),
		zap.Bool("skybox", sc.Skybox != nil))
	return sc, nil
}

func buildScene(sc *scene.Scene, lvl *levels.Level, lib *assets.Library, ctx *BuildContext, opts BuildOptions) error {
	shaders := make(map[string]*render.Shader, len(lvl.Shaders))
	for _, s := range lvl.Shaders {
		shaders[s.Name] = lib.Shader(s.Name, s.Vertex, s.Fragment)
	}

	textures := make(map[string]*render.Texture, len(lvl.Textures))
	for _, t := range lvl.Textures {
		kind, err := t.TextureKind()
		if err != nil {
			return err
		}
		textures[t.Name] = lib.Texture(t.Name, kind, t.Sources...)
	}

	for _, m := range lvl.Materials {
		shader, ok := shaders[m.Shader]
		if !ok {
			return fmt.Errorf("%w: material %s: shader %q", levels.ErrUnknownName, m.Name, m.Shader)
		}
		mat := render.NewMaterial(m.Name, shader)
		mat.Transparent = m.Transparent
		for _, u := range m.Uniforms {
			v, err := u.Resolve(textures)
			if err != nil {
				return err
			}
			if err := mat.Set(u.Name, v); err != nil {
				return err
			}
		}
		ctx.Materials[m.Name] = mat
	}

	for _, m := range lvl.Meshes {
		if data, ok := m.Generate(); ok {
			ctx.Meshes[m.Name] = lib.Primitive(m.PrimitiveKey(), func() render.MeshData { return data })
			continue
		}
		mesh, err := lib.Model(m.OBJ, obj.Options{Color: m.Color.Vec4(), FlipV: m.FlipV})
		if err != nil {
			return fmt.Errorf("mesh %s: %w", m.Name, err)
		}
		ctx.Meshes[m.Name] = mesh
	}

	for _, c := range lvl.Cameras {
		sc.Cameras = append(sc.Cameras, c.Camera(opts.Aspect))
	}
	if len(sc.Cameras) == 0 {
		sc.Cameras = append(sc.Cameras, defaultCamera(opts.Aspect))
	}
	sc.Camera = sc.Cameras[0]

	if lvl.Skybox != nil {
		sc.Skybox = &scene.Skybox{
			Mesh:    lib.Primitive(levels.PrimitiveInvertedCube, render.InvertedCube),
			Shader:  shaders[lvl.Skybox.Shader],
			Texture: textures[lvl.Skybox.Texture],
		}
	}

	for i, spec := range lvl.Entities {
		var err error
		if spec.Prefab != "" {
			_, err = BuildPrefab(sc.World, spec.Prefab, spec.Components, ctx)
		} else {
			_, err = BuildEntity(sc.World, spec.Components, ctx)
		}
		if err != nil {
			return fmt.Errorf("entity %d: %w", i, err)
		}
	}

	sc.Systems = ecs.NewScheduler(
		system.NewUpdateSystem(),
		system.NewPhysicsSystem(opts.Log, opts.Gravity),
	)
	return nil
}

func defaultCamera(aspect float32) *render.Camera {
	cam := render.NewPerspective(60, aspect, 0.01, 1000)
	cam.Position = mgl32.Vec3{0, -10, 5}
	cam.LookAt(mgl32.Vec3{}, mgl32.Vec3{0, 0, 1})
	return cam
}
