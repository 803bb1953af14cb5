package system

import (
	"fmt"

	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/milk9111/twobd/ecs"
	"github.com/milk9111/twobd/ecs/component"
)

const scriptDispatch = `
update(__engine, __state, __dt)
`

// Script is a behaviour written in tengo. The source must define
// update(engine, state, dt); state is a map kept between ticks.
type Script struct {
	name     string
	compiled *tengo.Compiled
	state    *tengo.Map
}

// NewScript compiles src. A missing update function is a compile error.
func NewScript(name string, src []byte) (*Script, error) {
	full := make([]byte, 0, len(src)+len(scriptDispatch))
	full = append(full, src...)
	full = append(full, scriptDispatch...)

	script := tengo.NewScript(full)
	_ = script.Add("__engine", map[string]any{})
	_ = script.Add("__state", map[string]any{})
	_ = script.Add("__dt", 0.0)
	script.SetImports(stdlib.GetModuleMap(stdlib.AllModuleNames()...))

	compiled, err := script.Compile()
	if err != nil {
		return nil, fmt.Errorf("script %s: %w", name, err)
	}
	return &Script{
		name:     name,
		compiled: compiled,
		state:    &tengo.Map{Value: map[string]tengo.Object{}},
	}, nil
}

func (s *Script) Name() string {
	return s.name
}

// Clone shares the compiled program but starts with empty state, so one
// compile can serve every instance of a prefab.
func (s *Script) Clone() *Script {
	return &Script{
		name:     s.name,
		compiled: s.compiled.Clone(),
		state:    &tengo.Map{Value: map[string]tengo.Object{}},
	}
}

// State returns the script's state value for key.
func (s *Script) State(key string) any {
	v, ok := s.state.Value[key]
	if !ok {
		return nil
	}
	return tengo.ToInterface(v)
}

func (s *Script) Update(t ecs.Tick, e ecs.Entity) error {
	tr, err := ecs.Get(t.World, e, component.TransformComponent.Kind())
	if err != nil {
		return fmt.Errorf("script %s: %w", s.name, err)
	}
	if err := s.compiled.Set("__engine", buildScriptEngine(t, e, tr)); err != nil {
		return err
	}
	if err := s.compiled.Set("__state", s.state); err != nil {
		return err
	}
	if err := s.compiled.Set("__dt", t.Delta); err != nil {
		return err
	}
	if err := s.compiled.Run(); err != nil {
		return fmt.Errorf("script %s: %w", s.name, err)
	}
	return nil
}

func buildScriptEngine(t ecs.Tick, e ecs.Entity, tr *component.Transform) *tengo.ImmutableMap {
	values := map[string]tengo.Object{}

	values["position"] = vecGetter("position", func() mgl32.Vec3 { return tr.Position })
	values["set_position"] = vecSetter("set_position", func(v mgl32.Vec3) { tr.Position = v })
	values["rotation"] = vecGetter("rotation", func() mgl32.Vec3 { return tr.Rotation })
	values["set_rotation"] = vecSetter("set_rotation", func(v mgl32.Vec3) { tr.Rotation = v })
	values["scale"] = vecGetter("scale", func() mgl32.Vec3 { return tr.Scale })
	values["set_scale"] = vecSetter("set_scale", func(v mgl32.Vec3) { tr.Scale = v })

	values["pressed"] = &tengo.UserFunction{Name: "pressed", Value: func(args ...tengo.Object) (tengo.Object, error) {
		if len(args) != 1 {
			return nil, tengo.ErrWrongNumArguments
		}
		action, ok := tengo.ToString(args[0])
		if !ok {
			return nil, tengo.ErrInvalidArgumentType{Name: "action", Expected: "string", Found: args[0].TypeName()}
		}
		if t.Pressed(action) {
			return tengo.TrueValue, nil
		}
		return tengo.FalseValue, nil
	}}

	values["elapsed"] = &tengo.UserFunction{Name: "elapsed", Value: func(args ...tengo.Object) (tengo.Object, error) {
		return &tengo.Float{Value: t.Elapsed}, nil
	}}

	values["entity"] = &tengo.UserFunction{Name: "entity", Value: func(args ...tengo.Object) (tengo.Object, error) {
		return &tengo.Int{Value: int64(e)}, nil
	}}

	return &tengo.ImmutableMap{Value: values}
}

func vecGetter(name string, get func() mgl32.Vec3) *tengo.UserFunction {
	return &tengo.UserFunction{Name: name, Value: func(args ...tengo.Object) (tengo.Object, error) {
		v := get()
		return &tengo.Array{Value: []tengo.Object{
			&tengo.Float{Value: float64(v.X())},
			&tengo.Float{Value: float64(v.Y())},
			&tengo.Float{Value: float64(v.Z())},
		}}, nil
	}}
}

func vecSetter(name string, set func(mgl32.Vec3)) *tengo.UserFunction {
	return &tengo.UserFunction{Name: name, Value: func(args ...tengo.Object) (tengo.Object, error) {
		if len(args) != 3 {
			return nil, tengo.ErrWrongNumArguments
		}
		var v mgl32.Vec3
		for i, arg := range args {
			f, ok := tengo.ToFloat64(arg)
			if !ok {
				return nil, tengo.ErrInvalidArgumentType{Name: "xyz"[i : i+1], Expected: "float", Found: arg.TypeName()}
			}
			v[i] = float32(f)
		}
		set(v)
		return tengo.UndefinedValue, nil
	}}
}
