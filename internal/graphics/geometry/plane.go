package geometry

import (
	"mini-terrain/internal/gpu"

	"github.com/go-gl/mathgl/mgl32"
)

// MaxPlaneSubdivisions caps the tessellation at 1024x1024 cells.
const MaxPlaneSubdivisions = 10

// Plane is a flat grid in the XZ plane facing +Y. The terrain shaders
// displace its vertices.
type Plane struct {
	mesh
	Center       mgl32.Vec3
	Scale        mgl32.Vec2
	Subdivisions int // 2^Subdivisions cells per side
}

// NewPlane builds and uploads a plane of scale.X by scale.Y world units.
func NewPlane(dev gpu.Device, center mgl32.Vec3, scale mgl32.Vec2, subdivisions int) *Plane {
	if subdivisions < 0 {
		subdivisions = 0
	}
	if subdivisions > MaxPlaneSubdivisions {
		subdivisions = MaxPlaneSubdivisions
	}
	p := &Plane{Center: center, Scale: scale, Subdivisions: subdivisions}
	positions, normals, indices := p.tessellate()
	p.upload(dev, positions, normals, indices)
	return p
}

func (p *Plane) tessellate() (positions, normals []float32, indices []uint32) {
	cells := 1 << p.Subdivisions
	side := cells + 1
	step := 1 / float32(cells)

	positions = make([]float32, 0, side*side*4)
	normals = make([]float32, 0, side*side*4)
	for z := 0; z < side; z++ {
		for x := 0; x < side; x++ {
			px := p.Center.X() + (float32(x)*step-0.5)*p.Scale.X()
			pz := p.Center.Z() + (float32(z)*step-0.5)*p.Scale.Y()
			positions = append(positions, px, p.Center.Y(), pz, 1)
			normals = append(normals, 0, 1, 0, 0)
		}
	}

	indices = make([]uint32, 0, cells*cells*6)
	for z := 0; z < cells; z++ {
		for x := 0; x < cells; x++ {
			i := uint32(z*side + x)
			below := i + uint32(side)
			indices = append(indices, i, below, i+1, i+1, below, below+1)
		}
	}
	return positions, normals, indices
}
