package render

import "sync/atomic"

var nextShaderID atomic.Uint64

// Shader is a handle to a program built elsewhere. Sources are opaque
// paths handed to whatever compiles them.
type Shader struct {
	id       uint64
	Name     string
	Vertex   string
	Fragment string
}

func NewShader(name, vertex, fragment string) *Shader {
	return &Shader{
		id:       nextShaderID.Add(1),
		Name:     name,
		Vertex:   vertex,
		Fragment: fragment,
	}
}

// ID orders shaders by creation.
func (s *Shader) ID() uint64 {
	if s == nil {
		return 0
	}
	return s.id
}

type TextureKind uint8

const (
	Texture2D TextureKind = iota
	TextureCube
)

func (k TextureKind) String() string {
	if k == TextureCube {
		return "cube"
	}
	return "2d"
}

// Texture is an opaque image handle. Sources holds one path for 2D textures
// and six (+x, -x, +y, -y, +z, -z) for cube maps.
type Texture struct {
	Name    string
	Kind    TextureKind
	Sources []string
}
