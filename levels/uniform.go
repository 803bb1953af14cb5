package levels

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/milk9111/twobd/prefabs"
	"github.com/milk9111/twobd/render"
)

// UniformSpec sets one material uniform. Exactly one of Value, Color or
// Texture is used. Numbers decode as int32 unless Type is "float"; lists
// of 2, 3, 4, 9 or 16 numbers become vectors and matrices.
type UniformSpec struct {
	Name    string             `yaml:"name"`
	Type    string             `yaml:"type"`
	Value   any                `yaml:"value"`
	Color   *prefabs.YAMLColor `yaml:"color"`
	Texture string             `yaml:"texture"`
}

// Resolve turns the spec into a value Material.Set accepts.
func (u UniformSpec) Resolve(textures map[string]*render.Texture) (any, error) {
	switch {
	case u.Texture != "":
		t, ok := textures[u.Texture]
		if !ok {
			return nil, fmt.Errorf("%w: uniform %s: texture %q", ErrUnknownName, u.Name, u.Texture)
		}
		return t, nil
	case u.Color != nil:
		c := u.Color.Vec4()
		if u.Type == "vec3" {
			return c.Vec3(), nil
		}
		return c, nil
	}

	switch v := u.Value.(type) {
	case int:
		if u.Type == "float" {
			return float32(v), nil
		}
		return int32(v), nil
	case float64:
		return float32(v), nil
	case bool:
		return v, nil
	case []any:
		return vectorUniform(u.Name, v)
	case nil:
		return nil, fmt.Errorf("%w: uniform %s has no value", ErrInvalidLevel, u.Name)
	default:
		return nil, fmt.Errorf("%w: uniform %s: unsupported value %T", ErrInvalidLevel, u.Name, u.Value)
	}
}

func vectorUniform(name string, raw []any) (any, error) {
	fs := make([]float32, len(raw))
	for i, r := range raw {
		switch n := r.(type) {
		case int:
			fs[i] = float32(n)
		case float64:
			fs[i] = float32(n)
		default:
			return nil, fmt.Errorf("%w: uniform %s: element %d is %T", ErrInvalidLevel, name, i, r)
		}
	}

	switch len(fs) {
	case 2:
		return mgl32.Vec2{fs[0], fs[1]}, nil
	case 3:
		return mgl32.Vec3{fs[0], fs[1], fs[2]}, nil
	case 4:
		return mgl32.Vec4{fs[0], fs[1], fs[2], fs[3]}, nil
	case 9:
		return mgl32.Mat3(fs), nil
	case 16:
		return mgl32.Mat4(fs), nil
	default:
		return nil, fmt.Errorf("%w: uniform %s: %d elements", ErrInvalidLevel, name, len(fs))
	}
}
