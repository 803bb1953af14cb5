package scene

import (
	"github.com/milk9111/twobd/ecs"
	"github.com/milk9111/twobd/ecs/component"
	"github.com/milk9111/twobd/render"
)

// Skybox is drawn after everything else in the scene.
type Skybox struct {
	Mesh    *render.Mesh
	Shader  *render.Shader
	Texture *render.Texture
}

// Scene owns one entity store. Systems is the scene's per-frame update
// pipeline; a nil scheduler means update dispatch only. Camera is the
// primary view; Cameras holds every view the scene declares, Camera first.
type Scene struct {
	Name    string
	World   *ecs.World
	Skybox  *Skybox
	Camera  *render.Camera
	Cameras []*render.Camera
	Systems *ecs.Scheduler
}

func New(name string) *Scene {
	return &Scene{Name: name, World: ecs.NewWorld()}
}

// Destroy releases e's mesh reference and removes the entity.
func (s *Scene) Destroy(e ecs.Entity) bool {
	return ecs.DestroyEntity(s.World, e)
}

// Teardown closes the scene's systems, releases every mesh reference it
// holds and leaves it with an empty world.
func (s *Scene) Teardown() {
	s.Systems.Close()
	s.Systems = nil
	ecs.ForEach(s.World, component.RenderableComponent.Kind(), func(_ ecs.Entity, r *component.Renderable) {
		r.Release()
	})
	if s.Skybox != nil {
		s.Skybox.Mesh.Release()
		s.Skybox = nil
	}
	s.World = ecs.NewWorld()
}
