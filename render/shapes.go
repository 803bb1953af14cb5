package render

import "github.com/go-gl/mathgl/mgl32"

var cubeFaces = [6]struct {
	normal, u, v mgl32.Vec3
}{
	{mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 0, -1}, mgl32.Vec3{0, 1, 0}},
	{mgl32.Vec3{-1, 0, 0}, mgl32.Vec3{0, 0, 1}, mgl32.Vec3{0, 1, 0}},
	{mgl32.Vec3{0, 1, 0}, mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 0, -1}},
	{mgl32.Vec3{0, -1, 0}, mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 0, 1}},
	{mgl32.Vec3{0, 0, 1}, mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 1, 0}},
	{mgl32.Vec3{0, 0, -1}, mgl32.Vec3{-1, 0, 0}, mgl32.Vec3{0, 1, 0}},
}

// Cube is a unit cube centred on the origin with outward faces.
func Cube() MeshData {
	return cube(false)
}

// InvertedCube faces inward, for skyboxes seen from inside.
func InvertedCube() MeshData {
	return cube(true)
}

func cube(inverted bool) MeshData {
	var d MeshData
	for _, f := range cubeFaces {
		base := uint32(len(d.Vertices))
		normal := f.normal
		if inverted {
			normal = normal.Mul(-1)
		}
		corners := [4][2]float32{{-1, -1}, {1, -1}, {1, 1}, {-1, 1}}
		for _, c := range corners {
			pos := f.normal.Mul(0.5).Add(f.u.Mul(c[0] * 0.5)).Add(f.v.Mul(c[1] * 0.5))
			d.Vertices = append(d.Vertices, Vertex{
				Position: pos,
				Color:    White,
				Normal:   normal,
				UV:       mgl32.Vec2{(c[0] + 1) / 2, (c[1] + 1) / 2},
			})
		}
		if inverted {
			d.Indices = append(d.Indices, base, base+2, base+1, base, base+3, base+2)
		} else {
			d.Indices = append(d.Indices, base, base+1, base+2, base, base+2, base+3)
		}
	}
	return d
}

// SubdividedPlane is a size x size square in the XY plane facing +Z, split
// into divisions x divisions quads. invert flips it to face -Z.
func SubdividedPlane(size float32, divisions int, invert bool) MeshData {
	if divisions < 1 {
		divisions = 1
	}
	normal := mgl32.Vec3{0, 0, 1}
	if invert {
		normal = mgl32.Vec3{0, 0, -1}
	}
	step := size / float32(divisions)
	half := size / 2
	row := uint32(divisions + 1)

	d := MeshData{
		Vertices: make([]Vertex, 0, (divisions+1)*(divisions+1)),
		Indices:  make([]uint32, 0, divisions*divisions*6),
	}
	for iy := 0; iy <= divisions; iy++ {
		for ix := 0; ix <= divisions; ix++ {
			d.Vertices = append(d.Vertices, Vertex{
				Position: mgl32.Vec3{-half + float32(ix)*step, -half + float32(iy)*step, 0},
				Color:    White,
				Normal:   normal,
				UV:       mgl32.Vec2{float32(ix) / float32(divisions), float32(iy) / float32(divisions)},
			})
		}
	}
	for iy := 0; iy < divisions; iy++ {
		for ix := 0; ix < divisions; ix++ {
			a := uint32(iy)*row + uint32(ix)
			b, c, e := a+1, a+row+1, a+row
			if invert {
				d.Indices = append(d.Indices, a, c, b, a, e, c)
			} else {
				d.Indices = append(d.Indices, a, b, c, a, c, e)
			}
		}
	}
	return d
}
