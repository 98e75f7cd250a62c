package geometry

import (
	"mini-terrain/internal/gpu"

	"github.com/go-gl/mathgl/mgl32"
)

// Square is a unit quad in the XY plane. The flat program draws it straight
// into clip space as the sky backdrop.
type Square struct {
	mesh
	Center mgl32.Vec3
}

// NewSquare builds and uploads a quad spanning [-1, 1] around center.
func NewSquare(dev gpu.Device, center mgl32.Vec3) *Square {
	s := &Square{Center: center}
	cx, cy, cz := center.X(), center.Y(), center.Z()
	positions := []float32{
		cx - 1, cy - 1, cz, 1,
		cx + 1, cy - 1, cz, 1,
		cx + 1, cy + 1, cz, 1,
		cx - 1, cy + 1, cz, 1,
	}
	normals := []float32{
		0, 0, 1, 0,
		0, 0, 1, 0,
		0, 0, 1, 0,
		0, 0, 1, 0,
	}
	indices := []uint32{0, 1, 2, 0, 2, 3}
	s.upload(dev, positions, normals, indices)
	return s
}
