package graphics

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

const (
	minPitch    = -89.0
	maxPitch    = 89.0
	minDistance = 1.0
	maxDistance = 500.0
)

// Camera orbits a target point and produces the view and projection
// matrices for the renderer.
type Camera struct {
	Target      mgl32.Vec3
	Up          mgl32.Vec3
	FOV         float32 // vertical, degrees
	AspectRatio float32
	NearPlane   float32
	FarPlane    float32

	// Orbit state, degrees and world units.
	yaw      float32
	pitch    float32
	distance float32

	position   mgl32.Vec3
	view       mgl32.Mat4
	projection mgl32.Mat4
}

// NewCamera places a camera at position looking at target.
func NewCamera(position, target mgl32.Vec3) *Camera {
	c := &Camera{
		Target:      target,
		Up:          mgl32.Vec3{0, 1, 0},
		FOV:         45.0,
		AspectRatio: 1,
		NearPlane:   0.1,
		FarPlane:    1000.0,
	}

	offset := position.Sub(target)
	c.distance = offset.Len()
	if c.distance < minDistance {
		c.distance = minDistance
		offset = mgl32.Vec3{0, 0, -c.distance}
	}
	c.pitch = mgl32.RadToDeg(float32(math.Asin(float64(offset.Y() / c.distance))))
	c.yaw = mgl32.RadToDeg(float32(math.Atan2(float64(offset.Z()), float64(offset.X()))))

	c.UpdateProjectionMatrix()
	c.Update()
	return c
}

// SetAspectRatio sets width/height of the output surface. The projection
// matrix changes only after UpdateProjectionMatrix.
func (c *Camera) SetAspectRatio(aspect float32) {
	if aspect > 0 {
		c.AspectRatio = aspect
	}
}

// UpdateProjectionMatrix recomputes the perspective projection.
func (c *Camera) UpdateProjectionMatrix() {
	c.projection = mgl32.Perspective(mgl32.DegToRad(c.FOV), c.AspectRatio, c.NearPlane, c.FarPlane)
}

// Orbit rotates the camera around the target.
func (c *Camera) Orbit(dYaw, dPitch float32) {
	c.yaw += dYaw
	c.pitch = mgl32.Clamp(c.pitch+dPitch, minPitch, maxPitch)
}

// Zoom scales the distance to the target; factors below one move closer.
func (c *Camera) Zoom(factor float32) {
	if factor <= 0 {
		return
	}
	c.distance = mgl32.Clamp(c.distance*factor, minDistance, maxDistance)
}

// Update recomputes the eye position and view matrix from the orbit state.
func (c *Camera) Update() {
	yaw := float64(mgl32.DegToRad(c.yaw))
	pitch := float64(mgl32.DegToRad(c.pitch))
	offset := mgl32.Vec3{
		float32(math.Cos(pitch) * math.Cos(yaw)),
		float32(math.Sin(pitch)),
		float32(math.Cos(pitch) * math.Sin(yaw)),
	}.Mul(c.distance)

	c.position = c.Target.Add(offset)
	c.view = mgl32.LookAtV(c.position, c.Target, c.Up)
}

// Position returns the eye position as of the last Update.
func (c *Camera) Position() mgl32.Vec3 { return c.position }

func (c *Camera) ViewMatrix() mgl32.Mat4       { return c.view }
func (c *Camera) ProjectionMatrix() mgl32.Mat4 { return c.projection }
