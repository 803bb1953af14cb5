package system

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/jakecoffman/cp"
	"github.com/milk9111/twobd/ecs"
	"github.com/milk9111/twobd/ecs/component"
	"go.uber.org/zap"
)

// PhysicsSystem simulates RigidBody entities as boxes in the XY plane.
// Dynamic bodies write their position back to Transform X/Y and their
// angle to Rotation Z; static bodies only collide. A Transform moved by
// anything else since the last write-back is pushed into the body before
// the step.
type PhysicsSystem struct {
	log   *zap.Logger
	space *cp.Space

	entities map[ecs.Entity]*bodyInfo
}

type bodyInfo struct {
	body   *cp.Body
	shape  *cp.Shape
	static bool

	// last values written to the Transform
	x, y, angle float32
}

func NewPhysicsSystem(log *zap.Logger, gravity float64) *PhysicsSystem {
	if log == nil {
		log = zap.NewNop()
	}
	space := cp.NewSpace()
	space.Iterations = 20
	space.SetGravity(cp.Vector{X: 0, Y: gravity})
	return &PhysicsSystem{
		log:      log,
		space:    space,
		entities: make(map[ecs.Entity]*bodyInfo),
	}
}

// Bodies reports how many entities are in the simulation.
func (ps *PhysicsSystem) Bodies() int {
	return len(ps.entities)
}

func (ps *PhysicsSystem) Update(t ecs.Tick) error {
	if ps == nil || t.World == nil {
		return nil
	}
	ps.syncEntities(t.World)
	ps.pushTransforms(t.World)
	if t.Delta > 0 {
		ps.space.Step(t.Delta)
	}
	ps.syncTransforms(t.World)
	return nil
}

func (ps *PhysicsSystem) syncEntities(w *ecs.World) {
	for e, info := range ps.entities {
		if !ecs.IsAlive(w, e) || !ecs.Has(w, e, component.RigidBodyComponent.Kind()) {
			ps.removeBody(info)
			delete(ps.entities, e)
		}
	}

	for e := range ecs.View(w, component.TransformComponent.ID(), component.RigidBodyComponent.ID()) {
		if _, ok := ps.entities[e]; ok {
			continue
		}
		tr, _ := ecs.Lookup(w, e, component.TransformComponent.Kind())
		rb, _ := ecs.Lookup(w, e, component.RigidBodyComponent.Kind())
		info := ps.createBody(tr, rb)
		ps.entities[e] = info
		ps.log.Debug("physics body created",
			zap.Stringer("entity", e),
			zap.Bool("static", rb.Static),
			zap.Float64("width", rb.Width),
			zap.Float64("height", rb.Height))
	}
}

func boxSize(tr *component.Transform, rb *component.RigidBody) (float64, float64) {
	width, height := rb.Width, rb.Height
	if width <= 0 {
		width = float64(tr.Scale.X())
	}
	if height <= 0 {
		height = float64(tr.Scale.Y())
	}
	return width, height
}

func (ps *PhysicsSystem) createBody(tr *component.Transform, rb *component.RigidBody) *bodyInfo {
	width, height := boxSize(tr, rb)
	cx, cy := float64(tr.Position.X()), float64(tr.Position.Y())
	info := &bodyInfo{
		static: rb.Static,
		x:      tr.Position.X(),
		y:      tr.Position.Y(),
		angle:  tr.Rotation.Z(),
	}

	if rb.Static {
		bb := cp.BB{L: cx - width/2, B: cy - height/2, R: cx + width/2, T: cy + height/2}
		shape := cp.NewBox2(ps.space.StaticBody, bb, 0)
		shape.SetFriction(rb.Friction)
		ps.space.AddShape(shape)

		info.body = ps.space.StaticBody
		info.shape = shape
		rb.Body, rb.Shape = info.body, shape
		return info
	}

	mass := rb.Mass
	if mass <= 0 {
		mass = 1
	}
	body := cp.NewBody(mass, cp.MomentForBox(mass, width, height))
	body.SetPosition(cp.Vector{X: cx, Y: cy})
	body.SetAngle(float64(mgl32.DegToRad(tr.Rotation.Z())))

	shape := cp.NewBox(body, width, height, 0)
	shape.SetFriction(rb.Friction)

	ps.space.AddBody(body)
	ps.space.AddShape(shape)

	info.body = body
	info.shape = shape
	rb.Body, rb.Shape = body, shape
	return info
}

func (ps *PhysicsSystem) removeBody(info *bodyInfo) {
	if info.shape != nil {
		ps.space.RemoveShape(info.shape)
	}
	if !info.static && info.body != nil {
		ps.space.RemoveBody(info.body)
	}
}

func (ps *PhysicsSystem) pushTransforms(w *ecs.World) {
	for e, info := range ps.entities {
		if info.static {
			continue
		}
		tr, ok := ecs.Lookup(w, e, component.TransformComponent.Kind())
		if !ok {
			continue
		}
		if x, y := tr.Position.X(), tr.Position.Y(); x != info.x || y != info.y {
			info.body.SetPosition(cp.Vector{X: float64(x), Y: float64(y)})
			info.x, info.y = x, y
		}
		if a := tr.Rotation.Z(); a != info.angle {
			info.body.SetAngle(float64(mgl32.DegToRad(a)))
			info.angle = a
		}
	}
}

func (ps *PhysicsSystem) syncTransforms(w *ecs.World) {
	for e, info := range ps.entities {
		if info.static {
			continue
		}
		tr, ok := ecs.Lookup(w, e, component.TransformComponent.Kind())
		if !ok {
			continue
		}
		pos := info.body.Position()
		tr.Position[0] = float32(pos.X)
		tr.Position[1] = float32(pos.Y)
		tr.Rotation[2] = mgl32.RadToDeg(float32(info.body.Angle()))
		info.x, info.y, info.angle = tr.Position[0], tr.Position[1], tr.Rotation[2]
	}
}

// Close empties the space.
func (ps *PhysicsSystem) Close() {
	if ps == nil {
		return
	}
	for e, info := range ps.entities {
		ps.removeBody(info)
		delete(ps.entities, e)
	}
}
