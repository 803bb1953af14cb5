package system

import (
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/milk9111/twobd/ecs"
	"github.com/milk9111/twobd/ecs/component"
	"github.com/milk9111/twobd/scene"
)

// Input actions read by the built-in behaviours.
const (
	ActionForward   = "forward"
	ActionBack      = "back"
	ActionLeft      = "left"
	ActionRight     = "right"
	ActionTurnLeft  = "turn_left"
	ActionTurnRight = "turn_right"
)

// Behaviour is per-entity tick logic. It may change its own entity but must
// not rely on other entities having been updated yet this frame.
type Behaviour interface {
	Update(t ecs.Tick, e ecs.Entity) error
}

type BehaviourFunc func(t ecs.Tick, e ecs.Entity) error

func (f BehaviourFunc) Update(t ecs.Tick, e ecs.Entity) error {
	return f(t, e)
}

type UpdateBehaviour struct {
	Behaviour Behaviour
}

var UpdateBehaviourComponent = component.NewComponent[UpdateBehaviour]()

// SetBehaviour gives e its behaviour, replacing any previous one.
func SetBehaviour(w *ecs.World, e ecs.Entity, b Behaviour) error {
	return ecs.Add(w, e, UpdateBehaviourComponent.Kind(), &UpdateBehaviour{Behaviour: b})
}

// UpdateSystem runs every entity's behaviour once per tick, one at a time.
type UpdateSystem struct{}

func NewUpdateSystem() *UpdateSystem {
	return &UpdateSystem{}
}

func (s *UpdateSystem) Update(t ecs.Tick) error {
	if t.World == nil {
		return nil
	}
	// Behaviours may create or destroy entities, so walk a snapshot.
	for _, e := range ecs.Query(t.World, UpdateBehaviourComponent.ID()) {
		ub, ok := ecs.Lookup(t.World, e, UpdateBehaviourComponent.Kind())
		if !ok || ub.Behaviour == nil {
			continue
		}
		if err := ub.Behaviour.Update(t, e); err != nil {
			return fmt.Errorf("update %s: %w", e, err)
		}
	}
	return nil
}

// UpdateScene runs one frame of the current scene's systems.
func UpdateScene(reg *scene.Registry, in ecs.Input, dt, elapsed float64) error {
	sc, err := reg.Current()
	if err != nil {
		return err
	}
	t := ecs.Tick{World: sc.World, Input: in, Delta: dt, Elapsed: elapsed}
	if sc.Systems != nil {
		return sc.Systems.Update(t)
	}
	return NewUpdateSystem().Update(t)
}

func transformOf(t ecs.Tick, e ecs.Entity) (*component.Transform, error) {
	return ecs.Get(t.World, e, component.TransformComponent.Kind())
}

// Motion moves and spins at constant rates per second.
type Motion struct {
	Velocity        mgl32.Vec3
	AngularVelocity mgl32.Vec3
}

func (m *Motion) Update(t ecs.Tick, e ecs.Entity) error {
	tr, err := transformOf(t, e)
	if err != nil {
		return err
	}
	dt := float32(t.Delta)
	tr.Translate(m.Velocity.Mul(dt))
	tr.Rotate(m.AngularVelocity.Mul(dt))
	return nil
}

// Pin holds the entity at Position.
type Pin struct {
	Position mgl32.Vec3
}

func (p *Pin) Update(t ecs.Tick, e ecs.Entity) error {
	tr, err := transformOf(t, e)
	if err != nil {
		return err
	}
	tr.Position = p.Position
	return nil
}

// RandomPin picks one of Positions on its first tick and holds it there.
type RandomPin struct {
	Positions []mgl32.Vec3

	rng    *rand.Rand
	chosen int
}

func NewRandomPin(seed uint64, positions ...mgl32.Vec3) *RandomPin {
	return &RandomPin{
		Positions: positions,
		rng:       rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		chosen:    -1,
	}
}

// Chosen returns the picked index, or -1 before the first tick.
func (p *RandomPin) Chosen() int {
	return p.chosen
}

func (p *RandomPin) Update(t ecs.Tick, e ecs.Entity) error {
	if len(p.Positions) == 0 {
		return nil
	}
	tr, err := transformOf(t, e)
	if err != nil {
		return err
	}
	if p.chosen < 0 {
		p.chosen = p.rng.IntN(len(p.Positions))
	}
	tr.Position = p.Positions[p.chosen]
	return nil
}

// KeyMove drives an entity around the XY plane from input actions. Speed is
// units per second, TurnSpeed degrees per second about Z. At zero heading
// forward is +Y.
type KeyMove struct {
	Speed     float64
	TurnSpeed float64
}

func (k *KeyMove) Update(t ecs.Tick, e ecs.Entity) error {
	tr, err := transformOf(t, e)
	if err != nil {
		return err
	}

	turn := 0.0
	if t.Pressed(ActionTurnLeft) {
		turn++
	}
	if t.Pressed(ActionTurnRight) {
		turn--
	}
	tr.Rotation[2] += float32(turn * k.TurnSpeed * t.Delta)

	var fwd, side float64
	if t.Pressed(ActionForward) {
		fwd++
	}
	if t.Pressed(ActionBack) {
		fwd--
	}
	if t.Pressed(ActionRight) {
		side++
	}
	if t.Pressed(ActionLeft) {
		side--
	}
	if fwd == 0 && side == 0 {
		return nil
	}

	heading := float64(mgl32.DegToRad(tr.Rotation.Z()))
	sin, cos := math.Sincos(heading)
	step := k.Speed * t.Delta
	dx := (-sin*fwd + cos*side) * step
	dy := (cos*fwd + sin*side) * step
	tr.Translate(mgl32.Vec3{float32(dx), float32(dy), 0})
	return nil
}
