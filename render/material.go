package render

import (
	"errors"
	"fmt"
	"iter"
	"sync/atomic"

	"github.com/go-gl/mathgl/mgl32"
)

var ErrUnsupportedUniform = errors.New("render: unsupported uniform type")

var nextMaterialID atomic.Uint64

type uniform struct {
	name  string
	value any
}

// Material binds a shader to an ordered set of uniform values. It is built
// once at load time and only read while drawing.
type Material struct {
	id          uint64
	Name        string
	shader      *Shader
	uniforms    []uniform
	index       map[string]int
	Transparent bool
}

func NewMaterial(name string, shader *Shader) *Material {
	return &Material{
		id:     nextMaterialID.Add(1),
		Name:   name,
		shader: shader,
		index:  make(map[string]int),
	}
}

func (m *Material) ID() uint64 {
	if m == nil {
		return 0
	}
	return m.id
}

func (m *Material) Shader() *Shader {
	return m.shader
}

// Set assigns a uniform. A name keeps its first position when overwritten.
func (m *Material) Set(name string, value any) error {
	v, err := normalizeUniform(value)
	if err != nil {
		return fmt.Errorf("material %s: uniform %s: %w", m.Name, name, err)
	}
	if i, ok := m.index[name]; ok {
		m.uniforms[i].value = v
		return nil
	}
	m.index[name] = len(m.uniforms)
	m.uniforms = append(m.uniforms, uniform{name: name, value: v})
	return nil
}

func (m *Material) Get(name string) (any, bool) {
	i, ok := m.index[name]
	if !ok {
		return nil, false
	}
	return m.uniforms[i].value, true
}

// Uniforms yields the uniforms in the order they were first set.
func (m *Material) Uniforms() iter.Seq2[string, any] {
	return func(yield func(string, any) bool) {
		for _, u := range m.uniforms {
			if !yield(u.name, u.value) {
				return
			}
		}
	}
}

// Apply writes every uniform to the bound shader.
func (m *Material) Apply(dev Device) error {
	for _, u := range m.uniforms {
		if err := dev.SetUniform(u.name, u.value); err != nil {
			return fmt.Errorf("material %s: %w", m.Name, err)
		}
	}
	return nil
}

func normalizeUniform(v any) (any, error) {
	switch x := v.(type) {
	case float32, int32, mgl32.Vec2, mgl32.Vec3, mgl32.Vec4, mgl32.Mat3, mgl32.Mat4:
		return x, nil
	case float64:
		return float32(x), nil
	case int:
		return int32(x), nil
	case bool:
		if x {
			return int32(1), nil
		}
		return int32(0), nil
	case *Texture:
		if x == nil {
			return nil, ErrUnsupportedUniform
		}
		return x, nil
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnsupportedUniform, v)
	}
}
