package component

import "github.com/milk9111/twobd/render"

// Renderable pairs a shared mesh with a shared material. Either field may be
// nil while a scene is being assembled; such entities are not drawn.
type Renderable struct {
	Mesh     *render.Mesh
	Material *render.Material
}

var RenderableComponent = NewComponent[Renderable]()

// Release drops the mesh reference. Calling it again is a no-op.
func (r *Renderable) Release() {
	r.Mesh.Release()
	r.Mesh = nil
}

// Drawable reports whether both references are set.
func (r *Renderable) Drawable() bool {
	return r != nil && r.Mesh != nil && r.Material != nil
}
