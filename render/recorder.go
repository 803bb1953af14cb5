package render

import (
	"fmt"
	"image"
	"image/color"
)

type Op uint8

const (
	OpBindShader Op = iota + 1
	OpSetUniform
	OpDrawMesh
	OpSetRasterState
	OpSetViewport
	OpClear
	OpReleaseMesh
)

func (o Op) String() string {
	switch o {
	case OpBindShader:
		return "bind"
	case OpSetUniform:
		return "uniform"
	case OpDrawMesh:
		return "draw"
	case OpSetRasterState:
		return "state"
	case OpSetViewport:
		return "viewport"
	case OpClear:
		return "clear"
	case OpReleaseMesh:
		return "release"
	default:
		return fmt.Sprintf("op(%d)", uint8(o))
	}
}

// Call is one recorded Device call.
type Call struct {
	Op      Op
	Shader  *Shader
	Uniform string
	Value   any
	Mesh    *Mesh
	State   RasterState
	Rect    image.Rectangle
	Color   color.Color
}

// Recorder is a Device that keeps a log of what it was asked to do. It
// backs the headless runner and the scheduler tests.
type Recorder struct {
	Calls []Call

	bound    *Shader
	state    RasterState
	viewport image.Rectangle
	uploaded map[*Mesh]bool
}

func NewRecorder() *Recorder {
	return &Recorder{
		state:    DefaultRasterState(),
		uploaded: make(map[*Mesh]bool),
	}
}

func (r *Recorder) BindShader(s *Shader) error {
	if s == nil {
		return fmt.Errorf("render: bind nil shader")
	}
	r.bound = s
	r.Calls = append(r.Calls, Call{Op: OpBindShader, Shader: s})
	return nil
}

func (r *Recorder) SetUniform(name string, value any) error {
	if r.bound == nil {
		return fmt.Errorf("set %s: %w", name, ErrNoShaderBound)
	}
	r.Calls = append(r.Calls, Call{Op: OpSetUniform, Shader: r.bound, Uniform: name, Value: value})
	return nil
}

func (r *Recorder) DrawMesh(m *Mesh) error {
	if m == nil || m.Released() {
		return ErrMeshReleased
	}
	if r.bound == nil {
		return fmt.Errorf("draw %s: %w", m.Name(), ErrNoShaderBound)
	}
	if r.uploaded == nil {
		r.uploaded = make(map[*Mesh]bool)
	}
	if !r.uploaded[m] {
		r.uploaded[m] = true
		m.OnRelease(func(m *Mesh) {
			delete(r.uploaded, m)
			r.Calls = append(r.Calls, Call{Op: OpReleaseMesh, Mesh: m})
		})
	}
	r.Calls = append(r.Calls, Call{Op: OpDrawMesh, Shader: r.bound, Mesh: m, State: r.state})
	return nil
}

func (r *Recorder) RasterState() RasterState {
	return r.state
}

func (r *Recorder) SetRasterState(s RasterState) {
	r.state = s
	r.Calls = append(r.Calls, Call{Op: OpSetRasterState, State: s})
}

func (r *Recorder) SetViewport(rect image.Rectangle) {
	r.viewport = rect
	r.Calls = append(r.Calls, Call{Op: OpSetViewport, Rect: rect})
}

func (r *Recorder) Clear(c color.Color) {
	r.Calls = append(r.Calls, Call{Op: OpClear, Rect: r.viewport, Color: c})
}

// Uploaded reports how many live meshes the recorder has seen drawn.
func (r *Recorder) Uploaded() int {
	return len(r.uploaded)
}

// Count returns how many calls of op were recorded.
func (r *Recorder) Count(op Op) int {
	n := 0
	for _, c := range r.Calls {
		if c.Op == op {
			n++
		}
	}
	return n
}

// Draws returns the drawn meshes in order.
func (r *Recorder) Draws() []*Mesh {
	var out []*Mesh
	for _, c := range r.Calls {
		if c.Op == OpDrawMesh {
			out = append(out, c.Mesh)
		}
	}
	return out
}

// Uniforms returns every value written to name, in order.
func (r *Recorder) Uniforms(name string) []any {
	var out []any
	for _, c := range r.Calls {
		if c.Op == OpSetUniform && c.Uniform == name {
			out = append(out, c.Value)
		}
	}
	return out
}

// Reset forgets the call log but keeps bound state and uploads.
func (r *Recorder) Reset() {
	r.Calls = r.Calls[:0]
}
