package levels

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/milk9111/twobd/prefabs"
	"github.com/milk9111/twobd/render"
)

var (
	ErrInvalidLevel = errors.New("levels: invalid level")
	ErrUnknownName  = errors.New("levels: unknown name")
)

type Level struct {
	Name      string         `yaml:"name"`
	Cameras   []CameraSpec   `yaml:"cameras"`
	Skybox    *SkyboxSpec    `yaml:"skybox"`
	Shaders   []ShaderSpec   `yaml:"shaders"`
	Textures  []TextureSpec  `yaml:"textures"`
	Materials []MaterialSpec `yaml:"materials"`
	Meshes    []MeshSpec     `yaml:"meshes"`
	Entities  []EntitySpec   `yaml:"entities"`
}

type CameraSpec struct {
	Position  prefabs.Vec3  `yaml:"position"`
	Target    prefabs.Vec3  `yaml:"target"`
	Up        *prefabs.Vec3 `yaml:"up"`
	FOV       float32       `yaml:"fov"`
	OrthoSize float32       `yaml:"ortho_size"`
	Near      float32       `yaml:"near"`
	Far       float32       `yaml:"far"`
	PinnedUp  bool          `yaml:"pinned_up"`
}

// Camera builds the camera for a viewport of the given aspect. A positive
// ortho size selects an orthographic projection.
func (s CameraSpec) Camera(aspect float32) *render.Camera {
	near, far := s.Near, s.Far
	if near <= 0 {
		near = 0.01
	}
	if far <= near {
		far = 1000
	}

	var cam *render.Camera
	if s.OrthoSize > 0 {
		cam = render.NewOrtho(s.OrthoSize, aspect, near, far)
	} else {
		fov := s.FOV
		if fov <= 0 {
			fov = 60
		}
		cam = render.NewPerspective(fov, aspect, near, far)
	}

	up := mgl32.Vec3{0, 0, 1}
	if s.Up != nil {
		up = s.Up.Vec()
	}
	cam.Position = s.Position.Vec()
	if s.Target != s.Position {
		cam.LookAt(s.Target.Vec(), up)
	}
	if s.PinnedUp {
		cam.PinnedUp = &up
	}
	return cam
}

type SkyboxSpec struct {
	Shader  string `yaml:"shader"`
	Texture string `yaml:"texture"`
}

type ShaderSpec struct {
	Name     string `yaml:"name"`
	Vertex   string `yaml:"vertex"`
	Fragment string `yaml:"fragment"`
}

type TextureSpec struct {
	Name    string   `yaml:"name"`
	Kind    string   `yaml:"kind"`
	Sources []string `yaml:"sources"`
}

func (s TextureSpec) TextureKind() (render.TextureKind, error) {
	switch s.Kind {
	case "", "2d":
		if len(s.Sources) > 1 {
			return 0, fmt.Errorf("%w: texture %s: 2d takes one source", ErrInvalidLevel, s.Name)
		}
		return render.Texture2D, nil
	case "cube":
		if len(s.Sources) != 6 {
			return 0, fmt.Errorf("%w: texture %s: cube map needs 6 sources, got %d", ErrInvalidLevel, s.Name, len(s.Sources))
		}
		return render.TextureCube, nil
	default:
		return 0, fmt.Errorf("%w: texture %s: kind %q", ErrInvalidLevel, s.Name, s.Kind)
	}
}

type MaterialSpec struct {
	Name        string        `yaml:"name"`
	Shader      string        `yaml:"shader"`
	Transparent bool          `yaml:"transparent"`
	Uniforms    []UniformSpec `yaml:"uniforms"`
}

const (
	PrimitivePlane        = "plane"
	PrimitiveCube         = "cube"
	PrimitiveInvertedCube = "inverted_cube"
)

// MeshSpec is either an OBJ file or a generated primitive.
type MeshSpec struct {
	Name string `yaml:"name"`

	OBJ   string            `yaml:"obj"`
	FlipV bool              `yaml:"flip_v"`
	Color prefabs.YAMLColor `yaml:"color"`

	Primitive string  `yaml:"primitive"`
	Size      float32 `yaml:"size"`
	Divisions int     `yaml:"divisions"`
	Invert    bool    `yaml:"invert"`
}

// Generate builds primitive geometry. ok is false for OBJ meshes.
func (s MeshSpec) Generate() (data render.MeshData, ok bool) {
	switch s.Primitive {
	case PrimitivePlane:
		size, div := s.Size, s.Divisions
		if size == 0 {
			size = 1
		}
		if div <= 0 {
			div = 1
		}
		return render.SubdividedPlane(size, div, s.Invert), true
	case PrimitiveCube:
		return render.Cube(), true
	case PrimitiveInvertedCube:
		return render.InvertedCube(), true
	}
	return render.MeshData{}, false
}

// PrimitiveKey identifies generated geometry so equal primitives share a mesh.
func (s MeshSpec) PrimitiveKey() string {
	return fmt.Sprintf("%s/%g/%d/%t", s.Primitive, s.Size, s.Divisions, s.Invert)
}

// EntitySpec places a prefab, optionally overriding some of its
// components, or declares components inline when Prefab is empty.
type EntitySpec struct {
	Prefab     string         `yaml:"prefab"`
	Components map[string]any `yaml:"components"`
}

// Validate checks names are unique per section and references resolve.
func (l *Level) Validate() error {
	shaders, err := uniqueNames("shader", l.Shaders, func(s ShaderSpec) string { return s.Name })
	if err != nil {
		return err
	}
	textures, err := uniqueNames("texture", l.Textures, func(s TextureSpec) string { return s.Name })
	if err != nil {
		return err
	}
	if _, err := uniqueNames("material", l.Materials, func(s MaterialSpec) string { return s.Name }); err != nil {
		return err
	}
	if _, err := uniqueNames("mesh", l.Meshes, func(s MeshSpec) string { return s.Name }); err != nil {
		return err
	}

	for _, t := range l.Textures {
		if _, err := t.TextureKind(); err != nil {
			return err
		}
	}
	for _, m := range l.Materials {
		if !shaders[m.Shader] {
			return fmt.Errorf("%w: material %s: shader %q", ErrUnknownName, m.Name, m.Shader)
		}
		for _, u := range m.Uniforms {
			if u.Texture != "" && !textures[u.Texture] {
				return fmt.Errorf("%w: material %s: texture %q", ErrUnknownName, m.Name, u.Texture)
			}
		}
	}
	for _, m := range l.Meshes {
		_, generated := m.Generate()
		if generated == (m.OBJ != "") {
			return fmt.Errorf("%w: mesh %s: set exactly one of obj or a known primitive", ErrInvalidLevel, m.Name)
		}
	}
	if l.Skybox != nil {
		if !shaders[l.Skybox.Shader] {
			return fmt.Errorf("%w: skybox shader %q", ErrUnknownName, l.Skybox.Shader)
		}
		if !textures[l.Skybox.Texture] {
			return fmt.Errorf("%w: skybox texture %q", ErrUnknownName, l.Skybox.Texture)
		}
	}
	for i, e := range l.Entities {
		if e.Prefab == "" && len(e.Components) == 0 {
			return fmt.Errorf("%w: entity %d has neither prefab nor components", ErrInvalidLevel, i)
		}
	}
	return nil
}

func uniqueNames[T any](kind string, items []T, name func(T) string) (map[string]bool, error) {
	seen := make(map[string]bool, len(items))
	for _, it := range items {
		n := name(it)
		if n == "" {
			return nil, fmt.Errorf("%w: %s without a name", ErrInvalidLevel, kind)
		}
		if seen[n] {
			return nil, fmt.Errorf("%w: duplicate %s %q", ErrInvalidLevel, kind, n)
		}
		seen[n] = true
	}
	return seen, nil
}
