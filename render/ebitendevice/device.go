// Package ebitendevice draws meshes into ebiten images on the CPU: vertices
// are projected by the bound a_ModelViewProjection, flat shaded and filled
// back to front within each mesh.
package ebitendevice

import (
	"fmt"
	"image"
	"image/color"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/milk9111/twobd/render"
)

// Device implements render.Device. Draws made with depth writes off land on
// a background layer that Present puts beneath everything else.
type Device struct {
	fg, bg *ebiten.Image
	white  *ebiten.Image

	bound    *render.Shader
	uniforms map[string]any
	state    render.RasterState
	viewport image.Rectangle
	meshes   map[*render.Mesh]struct{}

	vertices []ebiten.Vertex
	indices  []uint16
}

func New(width, height int) *Device {
	white := ebiten.NewImage(3, 3)
	white.Fill(color.White)
	d := &Device{
		white:    white.SubImage(image.Rect(1, 1, 2, 2)).(*ebiten.Image),
		uniforms: make(map[string]any),
		state:    render.DefaultRasterState(),
		meshes:   make(map[*render.Mesh]struct{}),
	}
	d.Resize(width, height)
	return d
}

// Resize reallocates the layers when the window size changes.
func (d *Device) Resize(width, height int) {
	width, height = max(width, 1), max(height, 1)
	if d.fg != nil {
		if b := d.fg.Bounds(); b.Dx() == width && b.Dy() == height {
			return
		}
		d.fg.Deallocate()
		d.bg.Deallocate()
	}
	d.fg = ebiten.NewImage(width, height)
	d.bg = ebiten.NewImage(width, height)
	d.viewport = image.Rect(0, 0, width, height)
}

func (d *Device) Bounds() image.Rectangle {
	return d.fg.Bounds()
}

// BeginFrame clears both layers.
func (d *Device) BeginFrame() {
	d.fg.Clear()
	d.bg.Clear()
}

// Present composites the layers onto screen.
func (d *Device) Present(screen *ebiten.Image) {
	screen.DrawImage(d.bg, nil)
	screen.DrawImage(d.fg, nil)
}

// Meshes reports how many live meshes have been drawn.
func (d *Device) Meshes() int {
	return len(d.meshes)
}

func (d *Device) BindShader(s *render.Shader) error {
	if s == nil {
		return fmt.Errorf("ebitendevice: bind nil shader")
	}
	d.bound = s
	clear(d.uniforms)
	return nil
}

func (d *Device) SetUniform(name string, value any) error {
	if d.bound == nil {
		return fmt.Errorf("set %s: %w", name, render.ErrNoShaderBound)
	}
	d.uniforms[name] = value
	return nil
}

func (d *Device) RasterState() render.RasterState {
	return d.state
}

func (d *Device) SetRasterState(s render.RasterState) {
	d.state = s
}

func (d *Device) SetViewport(r image.Rectangle) {
	d.viewport = r.Intersect(d.fg.Bounds())
}

// Clear fills the viewport of the background with c and empties the
// foreground there.
func (d *Device) Clear(c color.Color) {
	if d.viewport.Empty() {
		return
	}
	d.layer(d.bg).Fill(c)
	d.layer(d.fg).Clear()
}

func (d *Device) layer(img *ebiten.Image) *ebiten.Image {
	return img.SubImage(d.viewport).(*ebiten.Image)
}

func (d *Device) mat4(name string) mgl32.Mat4 {
	if m, ok := d.uniforms[name].(mgl32.Mat4); ok {
		return m
	}
	return mgl32.Ident4()
}

func (d *Device) DrawMesh(m *render.Mesh) error {
	if m == nil || m.Released() {
		return render.ErrMeshReleased
	}
	if d.bound == nil {
		return fmt.Errorf("draw %s: %w", m.Name(), render.ErrNoShaderBound)
	}
	if _, ok := d.meshes[m]; !ok {
		d.meshes[m] = struct{}{}
		m.OnRelease(func(m *render.Mesh) { delete(d.meshes, m) })
	}
	if d.viewport.Empty() {
		return nil
	}

	mvp := d.mat4(render.UniformMVP)
	if _, ok := d.uniforms[render.UniformMVP]; !ok {
		if v, ok := d.uniforms[render.UniformView].(mgl32.Mat4); ok {
			mvp = d.mat4(render.UniformProjection).Mul4(v)
		}
	}
	tint := render.White
	if c, ok := d.uniforms[render.UniformColor].(mgl32.Vec4); ok {
		tint = c
	}

	p := projection{
		mvp:      mvp,
		model:    d.mat4(render.UniformModel),
		tint:     tint,
		viewport: d.viewport,
		cull:     d.state.Cull,
		light:    defaultLight,
	}
	tris := p.project(m.Data())

	target := d.fg
	if !d.state.DepthWrite {
		target = d.bg
	}
	target = d.layer(target)

	if d.state.Wireframe {
		for _, t := range tris {
			clr := color.NRGBA{R: uint8(t.color.X() * 255), G: uint8(t.color.Y() * 255), B: uint8(t.color.Z() * 255), A: 255}
			for i := 0; i < 3; i++ {
				a, b := t.pts[i], t.pts[(i+1)%3]
				vector.StrokeLine(target, a.X(), a.Y(), b.X(), b.Y(), 1, clr, true)
			}
		}
		return nil
	}
	d.fill(target, tris)
	return nil
}

// fill batches triangles into DrawTriangles calls within the uint16 index
// range.
func (d *Device) fill(target *ebiten.Image, tris []triangle) {
	const maxBatch = 65535 / 3
	for start := 0; start < len(tris); start += maxBatch {
		end := min(start+maxBatch, len(tris))
		d.vertices = d.vertices[:0]
		d.indices = d.indices[:0]
		for _, t := range tris[start:end] {
			base := uint16(len(d.vertices))
			for _, p := range t.pts {
				d.vertices = append(d.vertices, ebiten.Vertex{
					DstX:   p.X(),
					DstY:   p.Y(),
					SrcX:   1,
					SrcY:   1,
					ColorR: t.color.X(),
					ColorG: t.color.Y(),
					ColorB: t.color.Z(),
					ColorA: t.color.W(),
				})
			}
			d.indices = append(d.indices, base, base+1, base+2)
		}
		target.DrawTriangles(d.vertices, d.indices, d.white, &ebiten.DrawTrianglesOptions{})
	}
}
