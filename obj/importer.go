// Package obj reads Wavefront OBJ text meshes into flat triangle lists.
//
// Only triangulated files are accepted: every face must name exactly three
// corners. Each face emits three fresh vertices, so shared corners are
// duplicated rather than indexed.
package obj

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/milk9111/twobd/render"
)

var (
	ErrFileNotFound    = errors.New("obj: file not found")
	ErrMalformedFace   = errors.New("obj: malformed face")
	ErrMalformedRecord = errors.New("obj: malformed record")
)

// Options tune the vertices Parse emits.
type Options struct {
	// Color is written to every vertex. The zero value means white.
	Color mgl32.Vec4
	// FlipV stores 1-v, for textures whose origin is the top-left corner.
	FlipV bool
}

// Import reads the OBJ file at path.
func Import(path string) (render.MeshData, error) {
	return ImportWith(path, Options{})
}

// ImportWith reads the OBJ file at path with explicit options.
func ImportWith(path string, opts Options) (render.MeshData, error) {
	f, err := os.Open(path)
	if err != nil {
		return render.MeshData{}, fmt.Errorf("%w: %s: %v", ErrFileNotFound, path, err)
	}
	defer f.Close()

	data, err := Parse(f, opts)
	if err != nil {
		return render.MeshData{}, fmt.Errorf("%s: %w", path, err)
	}
	return data, nil
}

// ImportFS reads an OBJ file from fsys.
func ImportFS(fsys fs.FS, path string, opts Options) (render.MeshData, error) {
	f, err := fsys.Open(path)
	if err != nil {
		return render.MeshData{}, fmt.Errorf("%w: %s: %v", ErrFileNotFound, path, err)
	}
	defer f.Close()

	data, err := Parse(f, opts)
	if err != nil {
		return render.MeshData{}, fmt.Errorf("%s: %w", path, err)
	}
	return data, nil
}

type corner struct {
	v, t, n int
	hasT    bool
	hasN    bool
}

type parser struct {
	opts      Options
	positions []mgl32.Vec3
	uvs       []mgl32.Vec2
	normals   []mgl32.Vec3
	out       []render.Vertex
}

// Parse reads OBJ records from r.
func Parse(r io.Reader, opts Options) (render.MeshData, error) {
	if opts.Color == (mgl32.Vec4{}) {
		opts.Color = render.White
	}
	p := &parser{opts: opts}

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	line := 0
	for sc.Scan() {
		line++
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
			continue
		}
		var err error
		switch fields[0] {
		case "v":
			var v []float32
			if v, err = floats(fields[1:], 3); err == nil {
				p.positions = append(p.positions, mgl32.Vec3{v[0], v[1], v[2]})
			}
		case "vt":
			var v []float32
			if v, err = floats(fields[1:], 2); err == nil {
				if opts.FlipV {
					v[1] = 1 - v[1]
				}
				p.uvs = append(p.uvs, mgl32.Vec2{v[0], v[1]})
			}
		case "vn":
			var v []float32
			if v, err = floats(fields[1:], 3); err == nil {
				p.normals = append(p.normals, mgl32.Vec3{v[0], v[1], v[2]})
			}
		case "f":
			err = p.face(fields[1:])
		default:
			// o, g, s, usemtl, mtllib and friends carry nothing we draw.
		}
		if err != nil {
			return render.MeshData{}, fmt.Errorf("line %d: %w", line, err)
		}
	}
	if err := sc.Err(); err != nil {
		return render.MeshData{}, fmt.Errorf("obj: read: %w", err)
	}
	return render.MeshData{Vertices: p.out}, nil
}

func floats(fields []string, n int) ([]float32, error) {
	if len(fields) < n {
		return nil, fmt.Errorf("%w: want %d values, got %d", ErrMalformedRecord, n, len(fields))
	}
	out := make([]float32, n)
	for i := 0; i < n; i++ {
		f, err := strconv.ParseFloat(fields[i], 32)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrMalformedRecord, fields[i])
		}
		out[i] = float32(f)
	}
	return out, nil
}

func (p *parser) face(fields []string) error {
	if len(fields) != 3 {
		return fmt.Errorf("%w: %d corners, want 3", ErrMalformedFace, len(fields))
	}
	var cs [3]corner
	for i, f := range fields {
		c, err := p.corner(f)
		if err != nil {
			return err
		}
		cs[i] = c
	}

	a, b, c := p.positions[cs[0].v], p.positions[cs[1].v], p.positions[cs[2].v]
	flat := b.Sub(a).Cross(c.Sub(a))
	if flat.Len() > 0 {
		flat = flat.Normalize()
	}

	for _, cr := range cs {
		v := render.Vertex{
			Position: p.positions[cr.v],
			Color:    p.opts.Color,
			Normal:   flat,
		}
		if cr.hasT {
			v.UV = p.uvs[cr.t]
		}
		if cr.hasN {
			v.Normal = p.normals[cr.n]
		}
		p.out = append(p.out, v)
	}
	return nil
}

// corner parses v, v/t, v//n or v/t/n.
func (p *parser) corner(s string) (corner, error) {
	parts := strings.Split(s, "/")
	if len(parts) > 3 || parts[0] == "" {
		return corner{}, fmt.Errorf("%w: corner %q", ErrMalformedFace, s)
	}
	var c corner
	var err error
	if c.v, err = resolve(parts[0], len(p.positions)); err != nil {
		return corner{}, fmt.Errorf("%w: corner %q: %v", ErrMalformedFace, s, err)
	}
	if len(parts) > 1 && parts[1] != "" {
		if c.t, err = resolve(parts[1], len(p.uvs)); err != nil {
			return corner{}, fmt.Errorf("%w: corner %q: %v", ErrMalformedFace, s, err)
		}
		c.hasT = true
	}
	if len(parts) > 2 && parts[2] != "" {
		if c.n, err = resolve(parts[2], len(p.normals)); err != nil {
			return corner{}, fmt.Errorf("%w: corner %q: %v", ErrMalformedFace, s, err)
		}
		c.hasN = true
	}
	return c, nil
}

// resolve turns a 1-based (or negative, relative) OBJ index into a 0-based one.
func resolve(s string, n int) (int, error) {
	i, err := strconv.Atoi(s)
	if err != nil {
		return 0, err
	}
	switch {
	case i > 0 && i <= n:
		return i - 1, nil
	case i < 0 && -i <= n:
		return n + i, nil
	default:
		return 0, fmt.Errorf("index %d out of range [1,%d]", i, n)
	}
}
