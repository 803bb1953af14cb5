package ebitendevice

import (
	"image"
	"sort"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/milk9111/twobd/common"
	"github.com/milk9111/twobd/render"
)

const (
	ambient = 0.25
	minW    = 1e-5
)

// defaultLight points from the scene towards the light.
var defaultLight = mgl32.Vec3{0.3, 0.5, 1}.Normalize()

// triangle is a shaded, screen-space triangle ready to fill.
type triangle struct {
	pts   [3]mgl32.Vec2
	depth float32
	color mgl32.Vec4
}

type projection struct {
	mvp      mgl32.Mat4
	model    mgl32.Mat4
	tint     mgl32.Vec4
	viewport image.Rectangle
	cull     bool
	light    mgl32.Vec3
}

// project transforms, culls and flat-shades data, returning triangles
// ordered far to near.
func (p projection) project(data render.MeshData) []triangle {
	vp := p.viewport
	out := make([]triangle, 0, data.TriangleCount())
	data.Triangles(func(ia, ib, ic uint32) {
		n := uint32(len(data.Vertices))
		if ia >= n || ib >= n || ic >= n {
			return
		}
		verts := [3]render.Vertex{data.Vertices[ia], data.Vertices[ib], data.Vertices[ic]}

		var ndc [3]mgl32.Vec3
		for i, v := range verts {
			clip := p.mvp.Mul4x1(v.Position.Vec4(1))
			if clip.W() <= minW {
				return
			}
			ndc[i] = clip.Vec3().Mul(1 / clip.W())
		}
		if outside(ndc) {
			return
		}

		area := (ndc[1].X()-ndc[0].X())*(ndc[2].Y()-ndc[0].Y()) -
			(ndc[1].Y()-ndc[0].Y())*(ndc[2].X()-ndc[0].X())
		if p.cull && area <= 0 {
			return
		}

		var tri triangle
		for i := range ndc {
			tri.pts[i] = mgl32.Vec2{
				float32(vp.Min.X) + (ndc[i].X()+1)/2*float32(vp.Dx()),
				float32(vp.Min.Y) + (1-ndc[i].Y())/2*float32(vp.Dy()),
			}
			tri.depth += ndc[i].Z() / 3
		}
		tri.color = p.shade(verts)
		out = append(out, tri)
	})

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].depth > out[j].depth
	})
	return out
}

func outside(ndc [3]mgl32.Vec3) bool {
	for axis := 0; axis < 3; axis++ {
		if ndc[0][axis] > 1 && ndc[1][axis] > 1 && ndc[2][axis] > 1 {
			return true
		}
		if ndc[0][axis] < -1 && ndc[1][axis] < -1 && ndc[2][axis] < -1 {
			return true
		}
	}
	return false
}

func (p projection) shade(verts [3]render.Vertex) mgl32.Vec4 {
	var world [3]mgl32.Vec3
	var base mgl32.Vec4
	for i, v := range verts {
		world[i] = p.model.Mul4x1(v.Position.Vec4(1)).Vec3()
		base = base.Add(v.Color.Mul(1.0 / 3))
	}

	light := float32(1)
	normal := world[1].Sub(world[0]).Cross(world[2].Sub(world[0]))
	if normal.Len() > 0 {
		light = common.Lerp(ambient, 1, max(0, normal.Normalize().Dot(p.light)))
	}

	c := mgl32.Vec4{
		base.X() * p.tint.X() * light,
		base.Y() * p.tint.Y() * light,
		base.Z() * p.tint.Z() * light,
		base.W() * p.tint.W(),
	}
	for i := range c {
		c[i] = mgl32.Clamp(c[i], 0, 1)
	}
	return c
}
