package component

import (
	"errors"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

var ErrDegenerateScale = errors.New("ecs: transform scale must be finite and nonzero")

// Transform places an entity in the world. Rotation is Euler angles in
// degrees, applied X then Y then Z.
type Transform struct {
	Position mgl32.Vec3
	Rotation mgl32.Vec3
	Scale    mgl32.Vec3
}

var TransformComponent = NewComponent[Transform]()

// NewTransform returns a unit-scale transform at pos.
func NewTransform(pos mgl32.Vec3) Transform {
	return Transform{Position: pos, Scale: mgl32.Vec3{1, 1, 1}}
}

// Init gives an attached Transform unit scale.
func (t *Transform) Init() {
	t.Scale = mgl32.Vec3{1, 1, 1}
}

// WorldMatrix composes translate * rotate * scale.
func (t Transform) WorldMatrix() mgl32.Mat4 {
	return mgl32.Translate3D(t.Position.X(), t.Position.Y(), t.Position.Z()).
		Mul4(t.rotationMatrix()).
		Mul4(mgl32.Scale3D(t.Scale.X(), t.Scale.Y(), t.Scale.Z()))
}

// NormalMatrix is the inverse-transpose of the world matrix's upper 3x3.
// The result is meaningless when Validate fails.
func (t Transform) NormalMatrix() mgl32.Mat3 {
	return t.WorldMatrix().Mat3().Inv().Transpose()
}

func (t Transform) rotationMatrix() mgl32.Mat4 {
	rx := mgl32.DegToRad(t.Rotation.X())
	ry := mgl32.DegToRad(t.Rotation.Y())
	rz := mgl32.DegToRad(t.Rotation.Z())
	return mgl32.HomogRotate3DZ(rz).
		Mul4(mgl32.HomogRotate3DY(ry)).
		Mul4(mgl32.HomogRotate3DX(rx))
}

// Validate reports ErrDegenerateScale for a zero, infinite or NaN scale axis.
func (t Transform) Validate() error {
	for _, s := range t.Scale {
		f := float64(s)
		if s == 0 || math.IsNaN(f) || math.IsInf(f, 0) {
			return ErrDegenerateScale
		}
	}
	return nil
}

// Translate moves the transform by d.
func (t *Transform) Translate(d mgl32.Vec3) {
	t.Position = t.Position.Add(d)
}

// Rotate adds Euler degrees to the rotation.
func (t *Transform) Rotate(deg mgl32.Vec3) {
	t.Rotation = t.Rotation.Add(deg)
}
