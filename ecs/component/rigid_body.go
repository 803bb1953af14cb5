package component

import "github.com/jakecoffman/cp"

// RigidBody is a box collider in the XY plane. Static bodies never move;
// dynamic ones drive their Transform's X, Y and Z rotation.
type RigidBody struct {
	Width    float64
	Height   float64
	Mass     float64
	Friction float64
	Static   bool

	Body  *cp.Body
	Shape *cp.Shape
}

var RigidBodyComponent = NewComponent[RigidBody]()

func (b *RigidBody) Init() {
	b.Mass = 1
	b.Friction = 0.8
}
