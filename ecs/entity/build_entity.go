package entity

import (
	"errors"
	"fmt"
	"sort"

	"github.com/milk9111/twobd/ecs"
	"github.com/milk9111/twobd/ecs/component"
	"github.com/milk9111/twobd/ecs/system"
	"github.com/milk9111/twobd/prefabs"
	"github.com/milk9111/twobd/render"
	"go.uber.org/zap"
)

var (
	ErrUnknownComponent = errors.New("entity: unknown component")
	ErrUnknownBehaviour = errors.New("entity: unknown behaviour type")
	ErrUnknownReference = errors.New("entity: unknown mesh or material")
)

// BuildContext carries the named resources entity specs refer to. Meshes
// are borrowed: every renderable built takes its own reference.
type BuildContext struct {
	Log       *zap.Logger
	Meshes    map[string]*render.Mesh
	Materials map[string]*render.Material
	Seed      uint64

	source  string
	scripts map[string]*system.Script
}

func NewBuildContext(log *zap.Logger) *BuildContext {
	if log == nil {
		log = zap.NewNop()
	}
	return &BuildContext{
		Log:       log,
		Meshes:    make(map[string]*render.Mesh),
		Materials: make(map[string]*render.Material),
		scripts:   make(map[string]*system.Script),
	}
}

// script compiles name once and hands out clones with their own state.
func (ctx *BuildContext) script(name string) (*system.Script, error) {
	if s, ok := ctx.scripts[name]; ok {
		return s.Clone(), nil
	}
	src, err := prefabs.LoadScript(name)
	if err != nil {
		return nil, fmt.Errorf("load script %q: %w", name, err)
	}
	s, err := system.NewScript(name, src)
	if err != nil {
		return nil, err
	}
	ctx.Log.Debug("compiled script", zap.String("name", name))
	ctx.scripts[name] = s
	return s.Clone(), nil
}

type componentBuildFn func(w *ecs.World, e ecs.Entity, raw any, ctx *BuildContext) error

var componentRegistry = map[string]componentBuildFn{
	"name":       addName,
	"transform":  addTransform,
	"renderable": addRenderable,
	"behaviour":  addBehaviour,
	"body":       addBody,
}

var componentBuildOrder = []string{
	"name",
	"transform",
	"renderable",
	"behaviour",
	"body",
}

// BuildPrefab builds the named prefab with overrides merged over its
// components. An entity without a name component takes the prefab's name.
func BuildPrefab(w *ecs.World, prefab string, overrides map[string]any, ctx *BuildContext) (ecs.Entity, error) {
	spec, err := prefabs.LoadEntityBuildSpec(prefab)
	if err != nil {
		return 0, fmt.Errorf("build entity: load %q: %w", prefab, err)
	}
	if len(spec.Components) == 0 {
		return 0, fmt.Errorf("build entity: prefab %q does not define components", prefab)
	}

	components := spec.Merge(overrides)
	if _, ok := components["name"]; !ok && spec.Name != "" {
		components["name"] = spec.Name
	}

	ctx.source = prefab
	defer func() { ctx.source = "" }()
	return BuildEntity(w, components, ctx)
}

// BuildEntity creates one entity from a component map. On error nothing is
// left behind in w.
func BuildEntity(w *ecs.World, components map[string]any, ctx *BuildContext) (ecs.Entity, error) {
	if w == nil {
		return 0, fmt.Errorf("build entity: world is nil")
	}
	if ctx == nil {
		ctx = NewBuildContext(nil)
	}
	source := ctx.source
	if source == "" {
		source = "inline"
	}

	for name := range components {
		if _, ok := componentRegistry[name]; !ok {
			return 0, fmt.Errorf("build entity: %q: %w %q", source, ErrUnknownComponent, name)
		}
	}

	e := ecs.CreateEntity(w)
	for _, name := range componentBuildOrder {
		raw, ok := components[name]
		if !ok {
			continue
		}
		if err := componentRegistry[name](w, e, raw, ctx); err != nil {
			ecs.DestroyEntity(w, e)
			return 0, fmt.Errorf("build entity: %q: add %q: %w", source, name, err)
		}
	}

	return e, nil
}

// Names lists the component names BuildEntity understands.
func Names() []string {
	names := make([]string, 0, len(componentRegistry))
	for name := range componentRegistry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func addName(w *ecs.World, e ecs.Entity, raw any, _ *BuildContext) error {
	name, err := prefabs.DecodeComponentSpec[string](raw)
	if err != nil {
		return fmt.Errorf("decode name: %w", err)
	}
	return ecs.Add(w, e, component.NameComponent.Kind(), &component.Name{Value: name})
}

type transformSpec = prefabs.TransformComponentSpec

func addTransform(w *ecs.World, e ecs.Entity, raw any, _ *BuildContext) error {
	spec, err := prefabs.DecodeComponentSpec[transformSpec](raw)
	if err != nil {
		return fmt.Errorf("decode transform spec: %w", err)
	}
	pos, rot, scale := spec.Transform()
	tr := &component.Transform{Position: pos, Rotation: rot, Scale: scale}
	if err := tr.Validate(); err != nil {
		return err
	}
	return ecs.Add(w, e, component.TransformComponent.Kind(), tr)
}

type renderableSpec = prefabs.RenderableComponentSpec

func addRenderable(w *ecs.World, e ecs.Entity, raw any, ctx *BuildContext) error {
	spec, err := prefabs.DecodeComponentSpec[renderableSpec](raw)
	if err != nil {
		return fmt.Errorf("decode renderable spec: %w", err)
	}
	mesh, ok := ctx.Meshes[spec.Mesh]
	if !ok {
		return fmt.Errorf("%w: mesh %q", ErrUnknownReference, spec.Mesh)
	}
	mat, ok := ctx.Materials[spec.Material]
	if !ok {
		return fmt.Errorf("%w: material %q", ErrUnknownReference, spec.Material)
	}
	return ecs.Add(w, e, component.RenderableComponent.Kind(), &component.Renderable{
		Mesh:     mesh.Retain(),
		Material: mat,
	})
}

type behaviourSpec = prefabs.BehaviourComponentSpec

func addBehaviour(w *ecs.World, e ecs.Entity, raw any, ctx *BuildContext) error {
	spec, err := prefabs.DecodeComponentSpec[behaviourSpec](raw)
	if err != nil {
		return fmt.Errorf("decode behaviour spec: %w", err)
	}

	var b system.Behaviour
	switch spec.Type {
	case prefabs.BehaviourMotion:
		b = &system.Motion{Velocity: spec.Velocity.Vec(), AngularVelocity: spec.AngularVelocity.Vec()}
	case prefabs.BehaviourPin:
		b = &system.Pin{Position: spec.Position.Vec()}
	case prefabs.BehaviourRandomPin:
		seed := spec.Seed
		if seed == 0 {
			seed = ctx.Seed ^ uint64(e)
		}
		b = system.NewRandomPin(seed, prefabs.Vec3s(spec.Positions)...)
	case prefabs.BehaviourKeyMove:
		km := &system.KeyMove{Speed: spec.Speed, TurnSpeed: spec.TurnSpeed}
		if km.Speed == 0 {
			km.Speed = 2
		}
		if km.TurnSpeed == 0 {
			km.TurnSpeed = 90
		}
		b = km
	case prefabs.BehaviourScript:
		s, err := ctx.script(spec.Script)
		if err != nil {
			return err
		}
		b = s
	default:
		return fmt.Errorf("%w %q", ErrUnknownBehaviour, spec.Type)
	}
	return system.SetBehaviour(w, e, b)
}

type bodySpec = prefabs.BodyComponentSpec

func addBody(w *ecs.World, e ecs.Entity, raw any, _ *BuildContext) error {
	spec, err := prefabs.DecodeComponentSpec[bodySpec](raw)
	if err != nil {
		return fmt.Errorf("decode body spec: %w", err)
	}
	rb, err := ecs.Attach(w, e, component.RigidBodyComponent.Kind())
	if err != nil {
		return err
	}
	rb.Width = spec.Width
	rb.Height = spec.Height
	rb.Static = spec.Static
	if spec.Mass > 0 {
		rb.Mass = spec.Mass
	}
	if spec.Friction > 0 {
		rb.Friction = spec.Friction
	}
	return nil
}
