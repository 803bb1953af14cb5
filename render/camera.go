package render

import "github.com/go-gl/mathgl/mgl32"

// Camera is a free-look camera. When PinnedUp is set, Rotate keeps the up
// vector locked to it so the horizon never rolls.
type Camera struct {
	Position mgl32.Vec3
	Forward  mgl32.Vec3
	Up       mgl32.Vec3
	PinnedUp *mgl32.Vec3

	Projection mgl32.Mat4

	ortho     bool
	fovY      float32
	orthoSize float32
	near, far float32
	aspect    float32
}

// NewPerspective returns a camera at the origin looking down -Z.
func NewPerspective(fovYDeg, aspect, near, far float32) *Camera {
	c := &Camera{
		Forward: mgl32.Vec3{0, 0, -1},
		Up:      mgl32.Vec3{0, 1, 0},
		fovY:    fovYDeg,
		near:    near,
		far:     far,
		aspect:  aspect,
	}
	c.updateProjection()
	return c
}

// NewOrtho returns an orthographic camera whose view is size units tall.
func NewOrtho(size, aspect, near, far float32) *Camera {
	c := &Camera{
		Forward:   mgl32.Vec3{0, 0, -1},
		Up:        mgl32.Vec3{0, 1, 0},
		ortho:     true,
		orthoSize: size,
		near:      near,
		far:       far,
		aspect:    aspect,
	}
	c.updateProjection()
	return c
}

func (c *Camera) Orthographic() bool {
	return c.ortho
}

// SetAspect rebuilds the projection for a new viewport shape.
func (c *Camera) SetAspect(aspect float32) {
	if aspect <= 0 || aspect == c.aspect {
		return
	}
	c.aspect = aspect
	c.updateProjection()
}

func (c *Camera) updateProjection() {
	if c.ortho {
		h := c.orthoSize / 2
		w := h * c.aspect
		c.Projection = mgl32.Ortho(-w, w, -h, h, c.near, c.far)
		return
	}
	c.Projection = mgl32.Perspective(mgl32.DegToRad(c.fovY), c.aspect, c.near, c.far)
}

func (c *Camera) View() mgl32.Mat4 {
	return mgl32.LookAtV(c.Position, c.Position.Add(c.Forward), c.Up)
}

func (c *Camera) ViewProjection() mgl32.Mat4 {
	return c.Projection.Mul4(c.View())
}

// LookAt points the camera at target.
func (c *Camera) LookAt(target, up mgl32.Vec3) {
	dir := target.Sub(c.Position)
	if dir.Len() == 0 {
		return
	}
	c.Forward = dir.Normalize()
	c.Up = c.orthogonalUp(up)
}

// Move translates in camera space: X right, Y up, Z forward.
func (c *Camera) Move(local mgl32.Vec3) {
	right := c.Forward.Cross(c.Up).Normalize()
	c.Position = c.Position.
		Add(right.Mul(local.X())).
		Add(c.Up.Mul(local.Y())).
		Add(c.Forward.Mul(local.Z()))
}

// Rotate applies pitch (X), yaw (Y) and roll (Z) in radians.
func (c *Camera) Rotate(r mgl32.Vec3) {
	right := c.Forward.Cross(c.Up).Normalize()
	q := mgl32.QuatRotate(r.X(), right).
		Mul(mgl32.QuatRotate(r.Y(), c.Up)).
		Mul(mgl32.QuatRotate(r.Z(), c.Forward))
	c.Forward = q.Rotate(c.Forward).Normalize()
	up := q.Rotate(c.Up)
	if c.PinnedUp != nil {
		up = *c.PinnedUp
	}
	c.Up = c.orthogonalUp(up)
}

func (c *Camera) orthogonalUp(up mgl32.Vec3) mgl32.Vec3 {
	right := c.Forward.Cross(up)
	if right.Len() < 1e-6 {
		return c.Up
	}
	return right.Normalize().Cross(c.Forward).Normalize()
}
