package render

import (
	"errors"
	"sync/atomic"
)

var ErrMeshReleased = errors.New("render: mesh released")

var nextMeshID atomic.Uint64

// Mesh is shared geometry. Owners Retain it and Release it when done; the
// last Release runs the OnRelease hooks (devices use them to free their
// buffers) exactly once.
type Mesh struct {
	id    uint64
	name  string
	data  MeshData
	refs  int
	hooks []func(*Mesh)
	dead  bool
}

// NewMesh returns a mesh holding one reference.
func NewMesh(name string, data MeshData) *Mesh {
	return &Mesh{
		id:   nextMeshID.Add(1),
		name: name,
		data: data,
		refs: 1,
	}
}

func (m *Mesh) ID() uint64 { return m.id }
func (m *Mesh) Name() string { return m.name }
func (m *Mesh) Data() MeshData { return m.data }
func (m *Mesh) Refs() int { return m.refs }
func (m *Mesh) Released() bool { return m.dead }
func (m *Mesh) VertexCount() int { return len(m.data.Vertices) }

// Retain adds an owner and returns m for chaining.
func (m *Mesh) Retain() *Mesh {
	if m.dead {
		panic("render: retain of released mesh " + m.name)
	}
	m.refs++
	return m
}

// Release drops an owner. It reports whether this was the last one.
func (m *Mesh) Release() bool {
	if m == nil || m.dead {
		return false
	}
	m.refs--
	if m.refs > 0 {
		return false
	}
	m.dead = true
	hooks := m.hooks
	m.hooks = nil
	for i := len(hooks) - 1; i >= 0; i-- {
		hooks[i](m)
	}
	m.data = MeshData{}
	return true
}

// OnRelease registers fn to run when the last owner releases m.
func (m *Mesh) OnRelease(fn func(*Mesh)) {
	if fn == nil || m.dead {
		return
	}
	m.hooks = append(m.hooks, fn)
}
