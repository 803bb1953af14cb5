package prefabs

import (
	"fmt"
	"image/color"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/milk9111/twobd/common"
	"gopkg.in/yaml.v3"
)

func LoadSpec[T any](filename string) (T, error) {
	var zero T
	data, err := Load(filename)
	if err != nil {
		return zero, fmt.Errorf("prefabs: load %s: %w", filename, err)
	}

	var spec T
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return zero, fmt.Errorf("prefabs: unmarshal %s: %w", filename, err)
	}

	return spec, nil
}

// Vec3 is written as a three element yaml sequence.
type Vec3 [3]float32

func (v Vec3) Vec() mgl32.Vec3 {
	return mgl32.Vec3(v)
}

// Vec3s converts a list of positions.
func Vec3s(vs []Vec3) []mgl32.Vec3 {
	out := make([]mgl32.Vec3, len(vs))
	for i, v := range vs {
		out[i] = v.Vec()
	}
	return out
}

// YAMLColor accepts a colour name or "#rrggbb[aa]".
type YAMLColor struct {
	color.Color
}

func (c *YAMLColor) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("color must be a string")
	}
	parsed, err := common.ParseColor(value.Value)
	if err != nil {
		return err
	}
	c.Color = parsed
	return nil
}

// Vec4 returns the colour as 0..1 components; unset is white.
func (c YAMLColor) Vec4() mgl32.Vec4 {
	if c.Color == nil {
		return mgl32.Vec4{1, 1, 1, 1}
	}
	return common.ColorVec4(c.Color)
}

type TransformComponentSpec struct {
	Position Vec3  `yaml:"position"`
	Rotation Vec3  `yaml:"rotation"`
	Scale    *Vec3 `yaml:"scale"`
}

// Transform applies the spec; a missing scale is unit scale.
func (s TransformComponentSpec) Transform() (position, rotation, scale mgl32.Vec3) {
	scale = mgl32.Vec3{1, 1, 1}
	if s.Scale != nil {
		scale = s.Scale.Vec()
	}
	return s.Position.Vec(), s.Rotation.Vec(), scale
}

// RenderableComponentSpec names a mesh and a material declared by the level.
type RenderableComponentSpec struct {
	Mesh     string `yaml:"mesh"`
	Material string `yaml:"material"`
}

const (
	BehaviourMotion    = "motion"
	BehaviourPin       = "pin"
	BehaviourRandomPin = "random_pin"
	BehaviourKeyMove   = "key_move"
	BehaviourScript    = "script"
)

type BehaviourComponentSpec struct {
	Type string `yaml:"type"`

	Velocity        Vec3 `yaml:"velocity"`
	AngularVelocity Vec3 `yaml:"angular_velocity"`

	Position  Vec3   `yaml:"position"`
	Positions []Vec3 `yaml:"positions"`
	Seed      uint64 `yaml:"seed"`

	Speed     float64 `yaml:"speed"`
	TurnSpeed float64 `yaml:"turn_speed"`

	Script string `yaml:"script"`
}

// BodyComponentSpec is a box collider. Zero width or height falls back to
// the transform's scale; zero mass and friction keep the defaults.
type BodyComponentSpec struct {
	Width    float64 `yaml:"width"`
	Height   float64 `yaml:"height"`
	Mass     float64 `yaml:"mass"`
	Friction float64 `yaml:"friction"`
	Static   bool    `yaml:"static"`
}
