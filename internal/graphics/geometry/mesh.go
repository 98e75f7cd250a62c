// Package geometry builds the static meshes the viewer draws.
package geometry

import (
	"mini-terrain/internal/gpu"
)

// mesh owns the GPU buffers of one indexed triangle list. Positions and
// normals are stored as four floats per vertex.
type mesh struct {
	dev   gpu.Device
	pos   gpu.Buffer
	nor   gpu.Buffer
	idx   gpu.Buffer
	count int32
}

func (m *mesh) upload(dev gpu.Device, positions, normals []float32, indices []uint32) {
	m.dev = dev

	m.idx = dev.CreateBuffer()
	dev.BindBuffer(gpu.ElementArrayBuffer, m.idx)
	dev.BufferIndices(gpu.ElementArrayBuffer, indices)
	m.count = int32(len(indices))

	m.pos = dev.CreateBuffer()
	dev.BindBuffer(gpu.ArrayBuffer, m.pos)
	dev.BufferFloats(gpu.ArrayBuffer, positions)

	if len(normals) > 0 {
		m.nor = dev.CreateBuffer()
		dev.BindBuffer(gpu.ArrayBuffer, m.nor)
		dev.BufferFloats(gpu.ArrayBuffer, normals)
	}
}

func (m *mesh) bind(target gpu.BufferTarget, b gpu.Buffer) bool {
	if b == 0 {
		return false
	}
	m.dev.BindBuffer(target, b)
	return true
}

func (m *mesh) BindPositions() bool { return m.bind(gpu.ArrayBuffer, m.pos) }
func (m *mesh) BindNormals() bool   { return m.bind(gpu.ArrayBuffer, m.nor) }
func (m *mesh) BindIndices() bool   { return m.bind(gpu.ElementArrayBuffer, m.idx) }

func (m *mesh) DrawMode() gpu.DrawMode { return gpu.Triangles }
func (m *mesh) ElementCount() int32    { return m.count }

// Release deletes the buffers. Calling it twice is harmless.
func (m *mesh) Release() {
	for _, b := range []*gpu.Buffer{&m.pos, &m.nor, &m.idx} {
		if *b != 0 {
			m.dev.DeleteBuffer(*b)
			*b = 0
		}
	}
	m.count = 0
}
