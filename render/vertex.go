package render

import "github.com/go-gl/mathgl/mgl32"

// Vertex is the interleaved layout every mesh uses.
type Vertex struct {
	Position mgl32.Vec3
	Color    mgl32.Vec4
	Normal   mgl32.Vec3
	UV       mgl32.Vec2
}

// White is the default vertex colour.
var White = mgl32.Vec4{1, 1, 1, 1}

// MeshData is CPU-side geometry. With no Indices the vertices are read as a
// plain triangle list.
type MeshData struct {
	Vertices []Vertex
	Indices  []uint32
}

// TriangleCount returns the number of triangles the data describes.
func (d MeshData) TriangleCount() int {
	if len(d.Indices) > 0 {
		return len(d.Indices) / 3
	}
	return len(d.Vertices) / 3
}

// Triangles calls fn with the vertex indices of every triangle.
func (d MeshData) Triangles(fn func(a, b, c uint32)) {
	if len(d.Indices) > 0 {
		for i := 0; i+2 < len(d.Indices); i += 3 {
			fn(d.Indices[i], d.Indices[i+1], d.Indices[i+2])
		}
		return
	}
	for i := 0; i+2 < len(d.Vertices); i += 3 {
		fn(uint32(i), uint32(i+1), uint32(i+2))
	}
}

// Bounds returns the axis-aligned extent of the vertex positions.
func (d MeshData) Bounds() (lo, hi mgl32.Vec3) {
	if len(d.Vertices) == 0 {
		return lo, hi
	}
	lo = d.Vertices[0].Position
	hi = lo
	for _, v := range d.Vertices[1:] {
		for i := 0; i < 3; i++ {
			lo[i] = min(lo[i], v.Position[i])
			hi[i] = max(hi[i], v.Position[i])
		}
	}
	return lo, hi
}
