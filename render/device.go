package render

import (
	"errors"
	"image"
	"image/color"
)

var ErrNoShaderBound = errors.New("render: no shader bound")

// Uniform names written by the scheduler.
const (
	UniformCameraPos   = "a_CameraPos"
	UniformTime        = "a_Time"
	UniformMVP         = "a_ModelViewProjection"
	UniformModel       = "a_Model"
	UniformNormal      = "a_NormalMatrix"
	UniformView        = "a_View"
	UniformProjection  = "a_Projection"
	UniformColor       = "a_Color"
	UniformSkyboxImage = "s_Skybox"
)

type DepthFunc uint8

const (
	DepthLess DepthFunc = iota
	DepthLessEqual
	DepthAlways
)

func (f DepthFunc) String() string {
	switch f {
	case DepthLessEqual:
		return "lequal"
	case DepthAlways:
		return "always"
	default:
		return "less"
	}
}

// RasterState is the fixed-function state the scheduler toggles.
type RasterState struct {
	Cull       bool
	DepthTest  bool
	DepthFunc  DepthFunc
	DepthWrite bool
	Wireframe  bool
}

// DefaultRasterState is back-face culling with a writing LESS depth test.
func DefaultRasterState() RasterState {
	return RasterState{
		Cull:       true,
		DepthTest:  true,
		DepthFunc:  DepthLess,
		DepthWrite: true,
	}
}

// Device is the drawing backend. Uniform values are the types Material
// accepts. All calls come from the frame loop goroutine.
type Device interface {
	BindShader(s *Shader) error
	SetUniform(name string, value any) error
	DrawMesh(m *Mesh) error

	RasterState() RasterState
	SetRasterState(RasterState)

	SetViewport(r image.Rectangle)
	Clear(c color.Color)
}
